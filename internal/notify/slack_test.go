package notify

import (
	"errors"
	"sync"
	"testing"
	"unicode/utf8"

	"github.com/rs/zerolog"
	"github.com/slack-go/slack"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/target"
)

type stubAPI struct {
	mu       sync.Mutex
	channels []string
	err      error
}

func (s *stubAPI) PostMessage(channelID string, options ...slack.MsgOption) (string, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.channels = append(s.channels, channelID)
	return channelID, "123.456", s.err
}

func TestNotifyTargetCompletion(t *testing.T) {
	api := &stubAPI{}
	n := NewSlackNotifierWithAPI(api, "#branding", zerolog.Nop())

	n.NotifyTargetCompletion(&store.Target{
		ID:         "tgt-1",
		ProjectID:  "proj-1",
		WebsiteURL: "https://acme.example",
		Status:     target.StatusReady,
	})

	require.Len(t, api.channels, 1)
	assert.Equal(t, "#branding", api.channels[0])
}

func TestNotifyIgnoresPostFailure(t *testing.T) {
	api := &stubAPI{err: errors.New("channel_not_found")}
	n := NewSlackNotifierWithAPI(api, "#branding", zerolog.Nop())

	// Must not panic or propagate anything.
	n.NotifyTargetCompletion(&store.Target{
		ID:           "tgt-2",
		ProjectID:    "proj-1",
		CompanyName:  "Acme",
		Status:       target.StatusFailed,
		ErrorMessage: "site unreachable",
	})
	require.Len(t, api.channels, 1)
}

func TestNotifyNilTarget(t *testing.T) {
	api := &stubAPI{}
	n := NewSlackNotifierWithAPI(api, "#branding", zerolog.Nop())
	n.NotifyTargetCompletion(nil)
	assert.Empty(t, api.channels)
}

func TestCompletionSummary(t *testing.T) {
	ready := &store.Target{CompanyName: "Acme", Status: target.StatusReady}
	assert.Equal(t, "Brand extraction ready for Acme", completionSummary(ready))

	failed := &store.Target{WebsiteURL: "https://acme.example", Status: target.StatusFailed}
	assert.Equal(t, "Brand extraction failed for https://acme.example", completionSummary(failed))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "short", truncate("short", 10))
	assert.Equal(t, "abc…", truncate("abcdef", 3))

	// Multi-byte runes are never cut mid-sequence.
	got := truncate("ü-fehler: Verbindung fehlgeschlagen", 9)
	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, "ü-fehler:…", got)
}
