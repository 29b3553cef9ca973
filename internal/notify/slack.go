// Package notify posts target lifecycle notifications to Slack.
package notify

import (
	"fmt"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"

	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/target"
)

// SlackAPI abstracts the Slack API client for testing.
type SlackAPI interface {
	PostMessage(channelID string, options ...slack.MsgOption) (string, string, error)
}

// SlackNotifier posts a message to a channel whenever a target reaches a
// terminal state. It satisfies target.Notifier.
type SlackNotifier struct {
	api     SlackAPI
	channel string
	logger  zerolog.Logger
}

// NewSlackNotifier creates a notifier posting to the given channel.
func NewSlackNotifier(botToken, channel string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		api:     slack.New(botToken),
		channel: channel,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// NewSlackNotifierWithAPI creates a notifier with a custom API client.
func NewSlackNotifierWithAPI(api SlackAPI, channel string, logger zerolog.Logger) *SlackNotifier {
	return &SlackNotifier{
		api:     api,
		channel: channel,
		logger:  logger.With().Str("component", "notify").Logger(),
	}
}

// NotifyTargetCompletion posts the outcome of an extraction. Posting is best
// effort: failures are logged, never propagated to the pipeline.
func (n *SlackNotifier) NotifyTargetCompletion(t *store.Target) {
	if t == nil {
		return
	}

	_, _, err := n.api.PostMessage(n.channel,
		slack.MsgOptionText(completionSummary(t), false),
		slack.MsgOptionBlocks(buildCompletionBlocks(t)...),
	)
	if err != nil {
		n.logger.Warn().Err(err).Str("target_id", t.ID).Msg("failed to post completion message")
		return
	}
	n.logger.Debug().Str("target_id", t.ID).Str("status", t.Status).Msg("posted completion message")
}

// completionSummary returns the plain-text fallback for the notification.
func completionSummary(t *store.Target) string {
	name := t.CompanyName
	if name == "" {
		name = t.WebsiteURL
	}
	if t.Status == target.StatusReady {
		return fmt.Sprintf("Brand extraction ready for %s", name)
	}
	return fmt.Sprintf("Brand extraction failed for %s", name)
}

func buildCompletionBlocks(t *store.Target) []slack.Block {
	var headline, detail string
	if t.Status == target.StatusReady {
		headline = ":white_check_mark: *Brand target ready*"
		detail = fmt.Sprintf("<%s|%s> is ready for personalization.", t.WebsiteURL, displayName(t))
	} else {
		headline = ":x: *Brand extraction failed*"
		detail = fmt.Sprintf("%s could not be extracted: %s", displayName(t), truncate(t.ErrorMessage, 200))
	}

	return []slack.Block{
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", headline, false, false),
			nil, nil,
		),
		slack.NewSectionBlock(
			slack.NewTextBlockObject("mrkdwn", detail, false, false),
			nil, nil,
		),
		slack.NewContextBlock("",
			slack.NewTextBlockObject("mrkdwn",
				fmt.Sprintf("target `%s` in project `%s`", t.ID, t.ProjectID), false, false),
		),
	}
}

func displayName(t *store.Target) string {
	if t.CompanyName != "" {
		return t.CompanyName
	}
	return t.WebsiteURL
}

// truncate shortens s to max runes, appending "…" if truncated. Cutting on a
// rune boundary keeps multi-byte error messages valid UTF-8.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max]) + "…"
}
