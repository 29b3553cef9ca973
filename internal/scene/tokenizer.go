// Package scene converts project scenes from hard-coded visual values to
// theme-token references.
package scene

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	perrors "github.com/brandforge/personalizer/internal/errors"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/store"
)

// themeMarkers are the source patterns that indicate a scene already reads
// from the shared theme object. The check is a pattern match, not a parse:
// missing a tokenized scene only costs a redundant rewrite, but a false
// positive would skip a scene that still carries hard-coded values, so the
// marker set stays conservative.
var themeMarkers = []string{
	"useBrandTheme(",
	"theme.colors.",
	"theme.fonts.",
	"theme.assets.",
	"theme.copy.",
	"theme?.colors",
}

// IsTokenized reports whether the scene source already references the theme.
func IsTokenized(sourceCode string) bool {
	for _, marker := range themeMarkers {
		if strings.Contains(sourceCode, marker) {
			return true
		}
	}
	return false
}

// Store is the persistence surface the tokenizer needs.
type Store interface {
	GetProject(id string) (*store.Project, error)
	ListScenes(projectID string) ([]*store.Scene, error)
	UpdateSceneSource(id, sourceCode string) error
}

// Editor is the tokenization mode of the scene code editor collaborator.
type Editor interface {
	Tokenize(ctx context.Context, sourceCode string) (string, error)
}

// SceneResult is the per-scene outcome of a tokenization pass.
type SceneResult struct {
	SceneID string `json:"scene_id"`
	Skipped bool   `json:"skipped,omitempty"`
	Updated bool   `json:"updated,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result aggregates one tokenization pass over a project.
type Result struct {
	Total   int           `json:"total"`
	Updated int           `json:"updated"`
	Skipped int           `json:"skipped"`
	Results []SceneResult `json:"results"`
}

// Tokenizer runs the project-wide tokenization pass.
type Tokenizer struct {
	store   Store
	editor  Editor
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewTokenizer creates a tokenizer.
func NewTokenizer(st Store, ed Editor, logger zerolog.Logger) *Tokenizer {
	return &Tokenizer{
		store:  st,
		editor: ed,
		logger: logger.With().Str("component", "tokenizer").Logger(),
	}
}

// SetMetrics sets the optional metrics collector.
func (tk *Tokenizer) SetMetrics(m *metrics.Metrics) { tk.metrics = m }

// TokenizeProject rewrites every untokenized scene in the project. Already
// tokenized scenes are skipped, so a second pass over the same project is a
// no-op. A single scene's failure never aborts the pass; it surfaces in that
// scene's result entry and in a smaller updated count.
func (tk *Tokenizer) TokenizeProject(ctx context.Context, projectID string) (*Result, error) {
	proj, err := tk.store.GetProject(projectID)
	if err != nil {
		return nil, fmt.Errorf("looking up project: %w", err)
	}
	if proj == nil {
		return nil, fmt.Errorf("%w: project %s", perrors.ErrNotFound, projectID)
	}

	scenes, err := tk.store.ListScenes(projectID)
	if err != nil {
		return nil, fmt.Errorf("listing scenes: %w", err)
	}

	res := &Result{Total: len(scenes), Results: make([]SceneResult, 0, len(scenes))}

	for _, sc := range scenes {
		entry := SceneResult{SceneID: sc.ID}

		if IsTokenized(sc.SourceCode) {
			entry.Skipped = true
			res.Skipped++
			res.Results = append(res.Results, entry)
			continue
		}

		rewritten, err := tk.editor.Tokenize(ctx, sc.SourceCode)
		if err != nil {
			entry.Error = err.Error()
			tk.recordEdit("failed")
			tk.logger.Warn().Err(err).Str("scene_id", sc.ID).Msg("scene tokenization failed")
			res.Results = append(res.Results, entry)
			continue
		}

		if err := tk.store.UpdateSceneSource(sc.ID, rewritten); err != nil {
			entry.Error = err.Error()
			tk.recordEdit("failed")
			tk.logger.Error().Err(err).Str("scene_id", sc.ID).Msg("failed to persist tokenized source")
			res.Results = append(res.Results, entry)
			continue
		}

		entry.Updated = true
		res.Updated++
		tk.recordEdit("updated")
		res.Results = append(res.Results, entry)
	}

	tk.logger.Info().
		Str("project_id", projectID).
		Int("total", res.Total).
		Int("updated", res.Updated).
		Int("skipped", res.Skipped).
		Msg("tokenization pass complete")

	return res, nil
}

func (tk *Tokenizer) recordEdit(outcome string) {
	if tk.metrics != nil {
		tk.metrics.RecordSceneEdit("tokenize", outcome)
	}
}
