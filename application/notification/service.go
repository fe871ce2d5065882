package notification

import (
	"context"

	"poke-battle-logger/domain/notification"
)

// Service handles end-of-run mails
type Service struct {
	sender     notification.EmailSender
	senderName string
	cc         []notification.Recipient
}

// NewService creates a new notification service
func NewService(sender notification.EmailSender, senderName string, cc []notification.Recipient) *Service {
	return &Service{
		sender:     sender,
		senderName: senderName,
		cc:         cc,
	}
}

// Trainer is the addressee of a run notification
type Trainer struct {
	Name  string
	Email string
}

// Completed reports a finished extraction with its battle counts
func (s *Service) Completed(ctx context.Context, to Trainer, videoID string, battles, wins, losses int) error {
	return s.sender.Send(ctx, &notification.EmailRequest{
		Kind:        notification.KindCompleted,
		To:          []notification.Recipient{{Name: to.Name, Address: to.Email}},
		CC:          s.cc,
		TrainerName: to.Name,
		VideoID:     videoID,
		Battles:     battles,
		Wins:        wins,
		Losses:      losses,
		SenderName:  s.senderName,
	})
}

// LabelingRequired asks the trainer to label the crops that stopped a run
func (s *Service) LabelingRequired(ctx context.Context, to Trainer, videoID string, unknown int, folderURL string) error {
	return s.sender.Send(ctx, &notification.EmailRequest{
		Kind:         notification.KindLabelingRequired,
		To:           []notification.Recipient{{Name: to.Name, Address: to.Email}},
		CC:           s.cc,
		TrainerName:  to.Name,
		VideoID:      videoID,
		UnknownCount: unknown,
		FolderURL:    folderURL,
		SenderName:   s.senderName,
	})
}
