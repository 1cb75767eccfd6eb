package slack

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/slack-go/slack"

	"github.com/hammingai/hammingctl/internal/ci"
	"github.com/hammingai/hammingctl/internal/msg"
	"github.com/hammingai/hammingctl/internal/report"
)

// When controls in which cases a notification is sent.
type When string

const (
	SendNever     When = "never"
	SendAlways    When = "always"
	SendOnFailure When = "failure"
)

// ParseWhen returns the notification policy named s. An empty s selects SendOnFailure.
func ParseWhen(s string) (When, error) {
	switch When(s) {
	case "":
		return SendOnFailure, nil
	case SendNever, SendAlways, SendOnFailure:
		return When(s), nil
	}
	return "", fmt.Errorf(msg.InvalidNotifyPolicy, s)
}

// Poster posts messages to slack channels. Satisfied by *slack.Client.
type Poster interface {
	PostMessageContext(ctx context.Context, channelID string, options ...slack.MsgOption) (string, string, error)
}

// Reporter collects test results and posts a summary of them to slack channels.
type Reporter struct {
	Token       string
	Channels    []string
	Send        When
	TestResults []report.TestResult
	// Client overrides the slack client built from Token.
	Client Poster

	lock sync.Mutex
}

// Add adds the test result that can be used by any other action.
func (r *Reporter) Add(t report.TestResult) {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.TestResults = append(r.TestResults, t)
}

// Render does nothing; messages are sent by SendMessage.
func (r *Reporter) Render() {}

// Reset resets the reporter to its initial state. This action will delete all test results.
func (r *Reporter) Reset() {
	r.lock.Lock()
	defer r.lock.Unlock()
	r.TestResults = make([]report.TestResult, 0)
}

// SendMessage posts the summary to every channel, if the policy asks for it.
func (r *Reporter) SendMessage(ctx context.Context, passed bool) {
	r.lock.Lock()
	defer r.lock.Unlock()

	if !r.shouldSendNotification(passed) {
		return
	}

	client := r.Client
	if client == nil {
		client = slack.New(r.Token)
	}
	attachment := r.newMsg(passed)

	for _, c := range r.Channels {
		channelID, timestamp, err := client.PostMessageContext(ctx, c,
			slack.MsgOptionText("hammingctl test results", false),
			slack.MsgOptionAttachments(attachment),
		)
		if err != nil {
			log.Error().Err(err).Str("channel", c).Msg("Failed to send message to slack.")
			continue
		}
		log.Info().Msgf("Message successfully sent to slack channel %s at %s", channelID, timestamp)
	}
}

func (r *Reporter) shouldSendNotification(passed bool) bool {
	if r.Token == "" && r.Client == nil {
		return false
	}
	if len(r.Channels) == 0 || len(r.TestResults) == 0 {
		return false
	}

	switch r.Send {
	case SendAlways:
		return true
	case SendOnFailure:
		return !passed
	default:
		return false
	}
}

func (r *Reporter) newMsg(passed bool) slack.Attachment {
	color := "#F00000"
	if passed {
		color = "#008000"
	}
	return slack.Attachment{
		Color:  color,
		Blocks: slack.Blocks{BlockSet: r.createBlocks(passed)},
	}
}

func (r *Reporter) createBlocks(passed bool) []slack.Block {
	failed := 0
	for _, t := range r.TestResults {
		if !t.Passed() {
			failed++
		}
	}

	title := fmt.Sprintf("All %d test runs passed", len(r.TestResults))
	if !passed {
		title = fmt.Sprintf("%d of %d test runs did not pass", failed, len(r.TestResults))
	}

	blocks := []slack.Block{
		slack.NewHeaderBlock(slack.NewTextBlockObject(slack.PlainTextType, title, true, false)),
	}

	for _, t := range r.TestResults {
		blocks = append(blocks, resultSection(t))
	}

	elements := []slack.MixedElement{
		slack.NewTextBlockObject(slack.MarkdownType, time.Now().UTC().Format(time.RFC1123), false, false),
	}
	if ci.IsAvailable() {
		if origin := ci.GetCI().OriginURL; origin != "" {
			elements = append(elements, slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("<%s|CI build>", origin), false, false))
		}
	}
	blocks = append(blocks, slack.NewContextBlock("", elements...))

	return blocks
}

func resultSection(t report.TestResult) *slack.SectionBlock {
	icon := ":x:"
	if t.Passed() {
		icon = ":white_check_mark:"
	}

	name := t.Name
	if name == "" {
		name = t.RunID
	}
	if t.URL != "" {
		name = fmt.Sprintf("<%s|%s>", t.URL, name)
	}

	status := t.Status
	if t.TimedOut {
		status += " (timed out)"
	}

	fields := []*slack.TextBlockObject{
		slack.NewTextBlockObject(slack.MarkdownType, "*Status*\n"+status, false, false),
	}
	if t.Results != nil {
		s := t.Summary()
		fields = append(fields, slack.NewTextBlockObject(slack.MarkdownType,
			fmt.Sprintf("*Calls*\n%d total, %d failed", s.Total, s.Failed), false, false))
	}

	text := slack.NewTextBlockObject(slack.MarkdownType, fmt.Sprintf("%s *%s* (%s)", icon, name, t.Direction), false, false)
	return slack.NewSectionBlock(text, fields, nil)
}
