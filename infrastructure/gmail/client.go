package gmail

import (
	"context"
	"encoding/base64"
	"fmt"
	"mime"
	"net/http"
	"strings"

	"poke-battle-logger/domain/notification"
	"poke-battle-logger/domain/video"

	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

// GmailService defines the interface for Gmail API operations
// This allows mocking the Gmail API in tests
type GmailService interface {
	SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error)
}

// GoogleGmailService is the production implementation using the Gmail API
type GoogleGmailService struct {
	service *gmail.Service
}

// NewGoogleGmailService creates the Gmail API service from an authorized HTTP client
func NewGoogleGmailService(ctx context.Context, client *http.Client) (*GoogleGmailService, error) {
	srv, err := gmail.NewService(ctx, option.WithHTTPClient(client))
	if err != nil {
		return nil, fmt.Errorf("unable to create gmail service: %w", err)
	}
	return &GoogleGmailService{service: srv}, nil
}

// SendMessage sends an email via Gmail API
func (s *GoogleGmailService) SendMessage(ctx context.Context, userID string, message *gmail.Message) (*gmail.Message, error) {
	return s.service.Users.Messages.Send(userID, message).Context(ctx).Do()
}

// Client implements notification.EmailSender using Gmail API
type Client struct {
	gmailService GmailService
	from         notification.Recipient
	templates    map[notification.Kind]notification.EmailTemplate
}

// ClientOption is a functional option for configuring Client
type ClientOption func(*Client)

// WithGmailService sets a custom Gmail service (for testing)
func WithGmailService(svc GmailService) ClientOption {
	return func(c *Client) {
		c.gmailService = svc
	}
}

// WithTemplate overrides the template of one mail kind
func WithTemplate(kind notification.Kind, tmpl notification.EmailTemplate) ClientOption {
	return func(c *Client) {
		c.templates[kind] = tmpl
	}
}

// NewClient creates a new Gmail client
func NewClient(from notification.Recipient, opts ...ClientOption) *Client {
	c := &Client{
		from: from,
		templates: map[notification.Kind]notification.EmailTemplate{
			notification.KindCompleted:        notification.CompletedTemplate,
			notification.KindLabelingRequired: notification.LabelingTemplate,
		},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// Send sends an email using the Gmail API
func (c *Client) Send(ctx context.Context, req *notification.EmailRequest) error {
	if err := req.Validate(); err != nil {
		return fmt.Errorf("invalid email request: %w", err)
	}

	tmpl, ok := c.templates[req.Kind]
	if !ok {
		return fmt.Errorf("%w: %q", notification.ErrUnknownKind, req.Kind)
	}
	data := notification.NewTemplateData(req, video.DeepLink(req.VideoID, 0))

	subject, err := tmpl.RenderSubject(data)
	if err != nil {
		return fmt.Errorf("failed to render subject: %w", err)
	}

	plainText, err := tmpl.RenderPlainText(data)
	if err != nil {
		return fmt.Errorf("failed to render plain text: %w", err)
	}

	htmlBody, err := tmpl.RenderHTML(data)
	if err != nil {
		return fmt.Errorf("failed to render HTML: %w", err)
	}

	rawMessage := c.buildMIMEMessage(req, subject, plainText, htmlBody)

	message := &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString([]byte(rawMessage)),
	}

	if _, err := c.gmailService.SendMessage(ctx, "me", message); err != nil {
		return fmt.Errorf("%w: %v", notification.ErrSendFailed, err)
	}

	return nil
}

// buildMIMEMessage builds a RFC 2822 MIME message
func (c *Client) buildMIMEMessage(req *notification.EmailRequest, subject, plainText, htmlBody string) string {
	var msg strings.Builder

	msg.WriteString(fmt.Sprintf("From: %s\r\n", formatAddress(c.from)))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", formatAddresses(req.To)))
	if len(req.CC) > 0 {
		msg.WriteString(fmt.Sprintf("Cc: %s\r\n", formatAddresses(req.CC)))
	}

	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.QEncoding.Encode("UTF-8", subject)))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: multipart/alternative; boundary=\"boundary42\"\r\n\r\n")

	msg.WriteString("--boundary42\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(plainText)
	msg.WriteString("\r\n\r\n")

	msg.WriteString("--boundary42\r\n")
	msg.WriteString("Content-Type: text/html; charset=\"UTF-8\"\r\n\r\n")
	msg.WriteString(htmlBody)
	msg.WriteString("\r\n\r\n")

	msg.WriteString("--boundary42--\r\n")

	return msg.String()
}

// formatAddress leaves ASCII names as typed; Japanese in-game names are
// RFC 2047 encoded
func formatAddress(r notification.Recipient) string {
	if r.Name == "" {
		return r.Address
	}
	return fmt.Sprintf("%s <%s>", mime.QEncoding.Encode("UTF-8", r.Name), r.Address)
}

func formatAddresses(recipients []notification.Recipient) string {
	addrs := make([]string, len(recipients))
	for i, r := range recipients {
		addrs[i] = formatAddress(r)
	}
	return strings.Join(addrs, ", ")
}

// Ensure Client implements notification.EmailSender
var _ notification.EmailSender = (*Client)(nil)
