package notification

import "errors"

var (
	// ErrNoRecipients is returned when no To recipients are provided
	ErrNoRecipients = errors.New("at least one recipient is required")

	// ErrInvalidRecipient is returned when a recipient has no email address
	ErrInvalidRecipient = errors.New("recipient must have an email address")

	// ErrNoVideoID is returned when the processed video is not named
	ErrNoVideoID = errors.New("video ID is required")

	// ErrCountMismatch is returned when wins and losses do not add up to the battle count
	ErrCountMismatch = errors.New("wins and losses must add up to the battle count")

	// ErrNoFolderURL is returned when a labeling mail has no folder to point at
	ErrNoFolderURL = errors.New("labeling mail needs the unknown-sample folder URL")

	// ErrUnknownKind is returned for an unsupported mail kind
	ErrUnknownKind = errors.New("unknown notification kind")

	// ErrSendFailed is returned when the email fails to send
	ErrSendFailed = errors.New("failed to send email")
)
