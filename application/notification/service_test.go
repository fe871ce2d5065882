package notification

import (
	"context"
	"errors"
	"testing"

	"poke-battle-logger/domain/notification"
)

type mockSender struct {
	requests []*notification.EmailRequest
	err      error
}

func (m *mockSender) Send(ctx context.Context, req *notification.EmailRequest) error {
	m.requests = append(m.requests, req)
	return m.err
}

func TestService_Completed(t *testing.T) {
	sender := &mockSender{}
	cc := []notification.Recipient{{Name: "Coach", Address: "coach@example.com"}}
	svc := NewService(sender, "logger", cc)

	err := svc.Completed(context.Background(), Trainer{Name: "Satoshi", Email: "ash@example.com"}, "abc123", 3, 2, 1)
	if err != nil {
		t.Fatalf("Completed() error = %v", err)
	}

	req := sender.requests[0]
	if req.Kind != notification.KindCompleted {
		t.Errorf("Kind = %q, want %q", req.Kind, notification.KindCompleted)
	}
	if req.To[0].Address != "ash@example.com" || req.TrainerName != "Satoshi" {
		t.Errorf("To = %+v, TrainerName = %q", req.To, req.TrainerName)
	}
	if req.Battles != 3 || req.Wins != 2 || req.Losses != 1 {
		t.Errorf("counts = %d/%d/%d, want 3/2/1", req.Battles, req.Wins, req.Losses)
	}
	if len(req.CC) != 1 || req.SenderName != "logger" {
		t.Errorf("CC = %+v, SenderName = %q", req.CC, req.SenderName)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("built request does not validate: %v", err)
	}
}

func TestService_LabelingRequired(t *testing.T) {
	sender := &mockSender{err: notification.ErrSendFailed}
	svc := NewService(sender, "logger", nil)

	err := svc.LabelingRequired(context.Background(), Trainer{Name: "Satoshi", Email: "ash@example.com"}, "abc123", 4, "https://drive.google.com/drive/folders/xyz")
	if !errors.Is(err, notification.ErrSendFailed) {
		t.Errorf("LabelingRequired() error = %v, want %v", err, notification.ErrSendFailed)
	}

	req := sender.requests[0]
	if req.Kind != notification.KindLabelingRequired || req.UnknownCount != 4 {
		t.Errorf("request = %+v", req)
	}
	if err := req.Validate(); err != nil {
		t.Errorf("built request does not validate: %v", err)
	}
}
