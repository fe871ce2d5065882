package notification

import "context"

// Recipient represents an email recipient with name and address
type Recipient struct {
	Name    string
	Address string
}

// Kind selects which mail is sent at the end of a run
type Kind string

const (
	// KindCompleted reports a successful extraction with its counts
	KindCompleted Kind = "completed"
	// KindLabelingRequired asks the trainer to label unknown pokemon crops
	KindLabelingRequired Kind = "labeling_required"
)

// EmailRequest contains all the data needed to send a run notification
type EmailRequest struct {
	Kind        Kind
	To          []Recipient // Primary recipients
	CC          []Recipient // Carbon copy recipients
	TrainerName string      // In-game trainer the video belongs to
	VideoID     string      // YouTube video ID that was processed
	Battles     int
	Wins        int
	Losses      int
	// UnknownCount is the number of crops waiting for a label
	UnknownCount int
	FolderURL    string // Drive folder holding the unknown crops
	SenderName   string // Name to sign the email
}

// Validate checks that the email request has all required fields
func (r *EmailRequest) Validate() error {
	if len(r.To) == 0 {
		return ErrNoRecipients
	}
	for _, to := range r.To {
		if to.Address == "" {
			return ErrInvalidRecipient
		}
	}
	if r.VideoID == "" {
		return ErrNoVideoID
	}
	switch r.Kind {
	case KindCompleted:
		if r.Wins+r.Losses != r.Battles {
			return ErrCountMismatch
		}
	case KindLabelingRequired:
		if r.FolderURL == "" {
			return ErrNoFolderURL
		}
	default:
		return ErrUnknownKind
	}
	return nil
}

// EmailSender defines the interface for sending emails
type EmailSender interface {
	Send(ctx context.Context, req *EmailRequest) error
}
