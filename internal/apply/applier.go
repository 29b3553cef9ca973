// Package apply orchestrates applying one target's brand theme to a set of
// project scenes, with per-scene failure isolation and idempotent re-runs.
package apply

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/brandforge/personalizer/internal/editor"
	perrors "github.com/brandforge/personalizer/internal/errors"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/target"
	"github.com/brandforge/personalizer/internal/theme"
)

// Store is the persistence surface the applier needs.
type Store interface {
	GetProject(id string) (*store.Project, error)
	GetTarget(id string) (*store.Target, error)
	ListScenes(projectID string) ([]*store.Scene, error)
	GetScene(id string) (*store.Scene, error)
	UpdateSceneSource(id, sourceCode string) error
	MergeSceneStatuses(targetID string, entries map[string]theme.SceneStatusEntry) error
}

// Editor is the brand-application mode of the scene code editor collaborator.
type Editor interface {
	ApplyTheme(ctx context.Context, sourceCode string, th theme.BrandTheme) (*editor.EditResult, error)
}

// SceneOutcome is the per-scene result of one application run.
type SceneOutcome struct {
	SceneID string `json:"scene_id"`
	Summary string `json:"summary,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Result aggregates one ApplyBrand run. It is always complete: every targeted
// scene has exactly one entry in Results, success or failure.
type Result struct {
	Total   int            `json:"total"`
	Updated int            `json:"updated"`
	Results []SceneOutcome `json:"results"`
}

// Applier applies a ready target's theme to selected scenes.
type Applier struct {
	store   Store
	editor  Editor
	workers int
	metrics *metrics.Metrics
	logger  zerolog.Logger
}

// NewApplier creates an applier. workers bounds how many scene rewrites run
// concurrently within one ApplyBrand call.
func NewApplier(st Store, ed Editor, workers int, logger zerolog.Logger) *Applier {
	if workers <= 0 {
		workers = 4
	}
	return &Applier{
		store:   st,
		editor:  ed,
		workers: workers,
		logger:  logger.With().Str("component", "applier").Logger(),
	}
}

// SetMetrics sets the optional metrics collector.
func (a *Applier) SetMetrics(m *metrics.Metrics) { a.metrics = m }

// ApplyBrand rewrites the selected scenes with the target's theme. sceneIDs
// nil means every scene in the project; an empty non-nil slice is rejected.
// Scene attempts run independently: one scene's failure never discards
// sibling rewrites, and the call returns only after every attempt resolved.
// Prior status entries for scenes outside the selection are preserved.
func (a *Applier) ApplyBrand(ctx context.Context, projectID, targetID string, sceneIDs []string) (*Result, error) {
	tgt, brandTheme, err := a.resolveTarget(projectID, targetID)
	if err != nil {
		return nil, err
	}

	scenes, err := a.resolveScenes(projectID, sceneIDs)
	if err != nil {
		return nil, err
	}

	if len(scenes) == 0 {
		return &Result{Results: []SceneOutcome{}}, nil
	}

	// Optimistically mark every targeted scene in_progress so observers can
	// tell "queued for this run" from "untouched".
	now := time.Now().UTC()
	inProgress := make(map[string]theme.SceneStatusEntry, len(scenes))
	for _, sc := range scenes {
		inProgress[sc.ID] = theme.SceneStatusEntry{Status: theme.SceneInProgress, UpdatedAt: now}
	}
	if err := a.store.MergeSceneStatuses(targetID, inProgress); err != nil {
		return nil, fmt.Errorf("marking scenes in progress: %w", err)
	}

	// Fan out one attempt per scene, each writing its own result slot, and
	// join. No shared accumulator: slots are disjoint by index.
	outcomes := make([]SceneOutcome, len(scenes))
	entries := make([]theme.SceneStatusEntry, len(scenes))
	sem := make(chan struct{}, a.workers)
	var wg sync.WaitGroup

	for i, sc := range scenes {
		wg.Add(1)
		go func(i int, sc *store.Scene) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()
			outcomes[i], entries[i] = a.applyScene(ctx, sc, brandTheme)
		}(i, sc)
	}
	wg.Wait()

	final := make(map[string]theme.SceneStatusEntry, len(scenes))
	res := &Result{Total: len(scenes), Results: outcomes}
	for i, sc := range scenes {
		final[sc.ID] = entries[i]
		if entries[i].Status == theme.SceneCompleted {
			res.Updated++
		}
	}

	if err := a.store.MergeSceneStatuses(targetID, final); err != nil {
		return nil, fmt.Errorf("recording scene statuses: %w", err)
	}

	a.logger.Info().
		Str("project_id", projectID).
		Str("target_id", tgt.ID).
		Int("total", res.Total).
		Int("updated", res.Updated).
		Msg("brand application complete")

	return res, nil
}

// resolveTarget validates the target and returns its theme. All failures here
// happen synchronously, before any collaborator call.
func (a *Applier) resolveTarget(projectID, targetID string) (*store.Target, theme.BrandTheme, error) {
	var zero theme.BrandTheme

	proj, err := a.store.GetProject(projectID)
	if err != nil {
		return nil, zero, fmt.Errorf("looking up project: %w", err)
	}
	if proj == nil {
		return nil, zero, fmt.Errorf("%w: project %s", perrors.ErrNotFound, projectID)
	}

	tgt, err := a.store.GetTarget(targetID)
	if err != nil {
		return nil, zero, fmt.Errorf("looking up target: %w", err)
	}
	if tgt == nil || tgt.ProjectID != projectID {
		return nil, zero, fmt.Errorf("%w: target %s", perrors.ErrNotFound, targetID)
	}
	if tgt.Status != target.StatusReady || tgt.BrandTheme == nil {
		return nil, zero, fmt.Errorf("%w: target %s is %s", perrors.ErrNotReady, targetID, tgt.Status)
	}

	return tgt, tgt.BrandTheme.Clone(), nil
}

// resolveScenes loads the selection. nil means all scenes; an explicit empty
// selection is a caller bug and rejected.
func (a *Applier) resolveScenes(projectID string, sceneIDs []string) ([]*store.Scene, error) {
	if sceneIDs == nil {
		scenes, err := a.store.ListScenes(projectID)
		if err != nil {
			return nil, fmt.Errorf("listing scenes: %w", err)
		}
		return scenes, nil
	}

	if len(sceneIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one scene id is required", perrors.ErrInvalidInput)
	}

	scenes := make([]*store.Scene, 0, len(sceneIDs))
	for _, id := range sceneIDs {
		sc, err := a.store.GetScene(id)
		if err != nil {
			return nil, fmt.Errorf("looking up scene %s: %w", id, err)
		}
		if sc == nil || sc.ProjectID != projectID {
			return nil, fmt.Errorf("%w: scene %s", perrors.ErrNotFound, id)
		}
		scenes = append(scenes, sc)
	}
	return scenes, nil
}

// applyScene runs one scene's attempt and returns its outcome and status
// entry. It never returns an error: collaborator failures become the scene's
// failed entry.
func (a *Applier) applyScene(ctx context.Context, sc *store.Scene, th theme.BrandTheme) (SceneOutcome, theme.SceneStatusEntry) {
	res, err := a.editor.ApplyTheme(ctx, sc.SourceCode, th)
	if err != nil {
		a.recordEdit("failed")
		a.logger.Warn().Err(err).Str("scene_id", sc.ID).Msg("scene brand application failed")
		return SceneOutcome{SceneID: sc.ID, Error: err.Error()},
			theme.SceneStatusEntry{Status: theme.SceneFailed, Message: err.Error(), UpdatedAt: time.Now().UTC()}
	}

	if err := a.store.UpdateSceneSource(sc.ID, res.SourceCode); err != nil {
		a.recordEdit("failed")
		a.logger.Error().Err(err).Str("scene_id", sc.ID).Msg("failed to persist rewritten scene")
		return SceneOutcome{SceneID: sc.ID, Error: err.Error()},
			theme.SceneStatusEntry{Status: theme.SceneFailed, Message: err.Error(), UpdatedAt: time.Now().UTC()}
	}

	a.recordEdit("updated")
	return SceneOutcome{SceneID: sc.ID, Summary: res.Summary},
		theme.SceneStatusEntry{Status: theme.SceneCompleted, Summary: res.Summary, UpdatedAt: time.Now().UTC()}
}

func (a *Applier) recordEdit(outcome string) {
	if a.metrics != nil {
		a.metrics.RecordSceneEdit("apply", outcome)
	}
}
