package notification

import (
	"bytes"
	"fmt"
	"text/template"
)

// TemplateData contains all the fields available for email template rendering
type TemplateData struct {
	Greeting     string // Dynamic greeting based on recipient count
	TrainerName  string
	VideoID      string
	VideoURL     string
	Battles      int
	Wins         int
	Losses       int
	WinRate      string // e.g., "66.7%"
	UnknownCount int
	FolderURL    string
	SenderName   string
}

// EmailTemplate contains the templates for rendering emails
type EmailTemplate struct {
	SubjectFormat string
	PlainText     string
	HTML          string
}

// CompletedTemplate reports the battles extracted from a video
var CompletedTemplate = EmailTemplate{
	SubjectFormat: "{{.TrainerName}}: {{.Battles}} battles logged from {{.VideoID}}",
	PlainText: `{{.Greeting}}

Your video {{.VideoURL}} has been processed.

Battles: {{.Battles}}
Wins: {{.Wins}}
Losses: {{.Losses}}
Win rate: {{.WinRate}}

~{{.SenderName}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
Your video <a href="{{.VideoURL}}">{{.VideoID}}</a> has been processed.<br><br>
Battles: {{.Battles}}<br>
Wins: {{.Wins}}<br>
Losses: {{.Losses}}<br>
Win rate: {{.WinRate}}<br><br>
~{{.SenderName}}</div>`,
}

// LabelingTemplate asks for unknown crops to be labeled before a re-run
var LabelingTemplate = EmailTemplate{
	SubjectFormat: "{{.TrainerName}}: {{.UnknownCount}} pokemon need a label ({{.VideoID}})",
	PlainText: `{{.Greeting}}

Processing of {{.VideoURL}} stopped because {{.UnknownCount}} pokemon could not be identified.
Please label the images in {{.FolderURL}} and run the extraction again.

~{{.SenderName}}`,
	HTML: `<div dir="ltr">{{.Greeting}}<br><br>
Processing of <a href="{{.VideoURL}}">{{.VideoID}}</a> stopped because {{.UnknownCount}} pokemon could not be identified.<br>
Please label the images in <a href="{{.FolderURL}}">this folder</a> and run the extraction again.<br><br>
~{{.SenderName}}</div>`,
}

// TemplateFor returns the template of a mail kind
func TemplateFor(kind Kind) (EmailTemplate, error) {
	switch kind {
	case KindCompleted:
		return CompletedTemplate, nil
	case KindLabelingRequired:
		return LabelingTemplate, nil
	default:
		return EmailTemplate{}, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// FormatGreeting creates an appropriate greeting based on number of recipients
// 1 recipient: "Dear Ash,"
// 2 recipients: "Dear Ash & Misty,"
// 3+ recipients: "Hey Everyone!"
func FormatGreeting(recipients []Recipient) string {
	switch len(recipients) {
	case 0:
		return "Hello,"
	case 1:
		return fmt.Sprintf("Dear %s,", getFirstName(recipients[0].Name))
	case 2:
		return fmt.Sprintf("Dear %s & %s,", getFirstName(recipients[0].Name), getFirstName(recipients[1].Name))
	default:
		return "Hey Everyone!"
	}
}

// getFirstName extracts the first name from a full name
func getFirstName(fullName string) string {
	if fullName == "" {
		return "Friend"
	}
	for i, c := range fullName {
		if c == ' ' {
			return fullName[:i]
		}
	}
	return fullName
}

// FormatWinRate renders wins over battles as a percentage
func FormatWinRate(wins, battles int) string {
	if battles == 0 {
		return "n/a"
	}
	return fmt.Sprintf("%.1f%%", float64(wins)*100/float64(battles))
}

// NewTemplateData builds the render data for a request
func NewTemplateData(req *EmailRequest, videoURL string) TemplateData {
	return TemplateData{
		Greeting:     FormatGreeting(req.To),
		TrainerName:  req.TrainerName,
		VideoID:      req.VideoID,
		VideoURL:     videoURL,
		Battles:      req.Battles,
		Wins:         req.Wins,
		Losses:       req.Losses,
		WinRate:      FormatWinRate(req.Wins, req.Battles),
		UnknownCount: req.UnknownCount,
		FolderURL:    req.FolderURL,
		SenderName:   req.SenderName,
	}
}

// RenderSubject renders the email subject using the template
func (t *EmailTemplate) RenderSubject(data TemplateData) (string, error) {
	return renderTemplate("subject", t.SubjectFormat, data)
}

// RenderPlainText renders the plain text email body
func (t *EmailTemplate) RenderPlainText(data TemplateData) (string, error) {
	return renderTemplate("plaintext", t.PlainText, data)
}

// RenderHTML renders the HTML email body
func (t *EmailTemplate) RenderHTML(data TemplateData) (string, error) {
	return renderTemplate("html", t.HTML, data)
}

func renderTemplate(name, tmplStr string, data TemplateData) (string, error) {
	tmpl, err := template.New(name).Parse(tmplStr)
	if err != nil {
		return "", fmt.Errorf("failed to parse template: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("failed to execute template: %w", err)
	}

	return buf.String(), nil
}
