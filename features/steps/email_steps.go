//go:build integration

package steps

import (
	"context"
	"encoding/base64"
	"fmt"
	"strings"

	"poke-battle-logger/cmd"
	"poke-battle-logger/domain/notification"
	"poke-battle-logger/infrastructure/config"
	"poke-battle-logger/infrastructure/gmail"
	"poke-battle-logger/infrastructure/storage"

	"github.com/cucumber/godog"
	gmailapi "google.golang.org/api/gmail/v1"
)

// outbox records the raw MIME text of every message handed to the Gmail API
type outbox struct {
	raw []string
}

func (o *outbox) SendMessage(ctx context.Context, userID string, message *gmailapi.Message) (*gmailapi.Message, error) {
	decoded, err := base64.URLEncoding.DecodeString(message.Raw)
	if err != nil {
		return nil, err
	}
	o.raw = append(o.raw, string(decoded))
	return &gmailapi.Message{Id: fmt.Sprintf("msg-%d", len(o.raw))}, nil
}

type summaryTable map[string]storage.Summary

func (s summaryTable) VideoSummary(ctx context.Context, videoID string) (storage.Summary, error) {
	return s[videoID], nil
}

type emailContext struct {
	config    *config.Config
	summaries summaryTable
	outbox    *outbox
	result    *commandResult
}

var SharedEmailContext = &emailContext{}

func InitializeEmailScenario(ctx *godog.ScenarioContext) {
	testCtx := SharedEmailContext
	testCtx.result = SharedResult

	ctx.Before(func(c context.Context, sc *godog.Scenario) (context.Context, error) {
		testCtx.config = &config.Config{Trainers: map[string]config.TrainerConfig{}}
		testCtx.config.Email.FromName = "Battle Logger"
		testCtx.config.Email.FromAddress = "logger@example.com"
		testCtx.config.Email.SenderName = "Oak"
		testCtx.config.ApplyDefaults()
		testCtx.summaries = summaryTable{}
		testCtx.outbox = &outbox{}
		return c, nil
	})

	ctx.Step(`^trainer "([^"]*)" with id (\d+) and email "([^"]*)" is configured$`, testCtx.trainerIsConfigured)
	ctx.Step(`^"([^"]*)" is copied on every mail$`, testCtx.isCopiedOnEveryMail)
	ctx.Step(`^video "([^"]*)" has (\d+) wins and (\d+) losses stored$`, testCtx.videoHasStored)
	ctx.Step(`^I send the summary of video "([^"]*)" to "([^"]*)"$`, testCtx.iSendTheSummary)
	ctx.Step(`^(\d+) messages? should be sent$`, testCtx.messagesShouldBeSent)
	ctx.Step(`^the message should contain "([^"]*)"$`, testCtx.theMessageShouldContain)
}

func (c *emailContext) trainerIsConfigured(key string, id int64, email string) error {
	c.config.Trainers[key] = config.TrainerConfig{ID: id, Name: key, Email: email}
	return nil
}

func (c *emailContext) isCopiedOnEveryMail(email string) error {
	c.config.Email.DefaultCC = append(c.config.Email.DefaultCC, config.RecipientConfig{Address: email})
	return nil
}

func (c *emailContext) videoHasStored(videoID string, wins, losses int) error {
	c.summaries[videoID] = storage.Summary{Battles: wins + losses, Wins: wins, Losses: losses}
	return nil
}

func (c *emailContext) iSendTheSummary(videoID, trainerKey string) error {
	client := gmail.NewClient(
		notification.Recipient{Name: c.config.Email.FromName, Address: c.config.Email.FromAddress},
		gmail.WithGmailService(c.outbox),
	)
	c.result.run(func() error {
		return cmd.RunSendEmailWithDependencies(context.Background(), c.config, c.summaries, client, videoID, trainerKey, c.result.output)
	})
	return nil
}

func (c *emailContext) messagesShouldBeSent(n int) error {
	if len(c.outbox.raw) != n {
		return fmt.Errorf("expected %d messages, got %d", n, len(c.outbox.raw))
	}
	return nil
}

func (c *emailContext) theMessageShouldContain(expected string) error {
	if len(c.outbox.raw) == 0 {
		return fmt.Errorf("no message was sent")
	}
	last := c.outbox.raw[len(c.outbox.raw)-1]
	if !strings.Contains(last, expected) {
		return fmt.Errorf("expected message to contain %q but got:\n%s", expected, last)
	}
	return nil
}
