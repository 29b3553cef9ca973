// Package target owns the personalization target lifecycle:
// pending → extracting → ready | failed, with re-extraction returning a
// terminal target to extracting.
package target

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	perrors "github.com/brandforge/personalizer/internal/errors"
	"github.com/brandforge/personalizer/internal/extract"
	"github.com/brandforge/personalizer/internal/metrics"
	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/theme"
)

// Target status values.
const (
	StatusPending    = "pending"
	StatusExtracting = "extracting"
	StatusReady      = "ready"
	StatusFailed     = "failed"
)

// Store is the persistence surface the manager needs.
type Store interface {
	GetProject(id string) (*store.Project, error)
	SaveTarget(t *store.Target) error
	GetTarget(id string) (*store.Target, error)
	ListTargets(projectID string) ([]*store.Target, error)
	UpdateTargetStatus(id, status, errorMessage string) error
	SetTargetReady(id string, th theme.BrandTheme) error
}

// Extractor is the brand extraction collaborator surface.
type Extractor interface {
	Extract(ctx context.Context, url string) (*extract.RawBrandData, error)
	Analyze(ctx context.Context, raw *extract.RawBrandData) (*theme.PartialTheme, error)
}

// Notifier is told when a target reaches a terminal state. Implementations
// must be safe for concurrent use.
type Notifier interface {
	NotifyTargetCompletion(t *store.Target)
}

// Manager drives the target state machine. It is the sole writer of target
// status and theme.
type Manager struct {
	store     Store
	extractor Extractor
	defaults  theme.BrandTheme
	notifier  Notifier
	metrics   *metrics.Metrics
	timeout   time.Duration
	logger    zerolog.Logger
	wg        sync.WaitGroup
}

// Config holds manager construction parameters.
type Config struct {
	Defaults          theme.BrandTheme
	ExtractionTimeout time.Duration
}

// NewManager creates a target lifecycle manager.
func NewManager(st Store, ex Extractor, cfg Config, logger zerolog.Logger) *Manager {
	if cfg.ExtractionTimeout <= 0 {
		cfg.ExtractionTimeout = 90 * time.Second
	}
	return &Manager{
		store:     st,
		extractor: ex,
		defaults:  cfg.Defaults,
		timeout:   cfg.ExtractionTimeout,
		logger:    logger.With().Str("component", "target").Logger(),
	}
}

// SetNotifier sets the optional completion notifier.
func (m *Manager) SetNotifier(n Notifier) { m.notifier = n }

// SetMetrics sets the optional metrics collector.
func (m *Manager) SetMetrics(mc *metrics.Metrics) { m.metrics = mc }

// Wait blocks until all in-flight extractions finish. Used on shutdown and in
// tests.
func (m *Manager) Wait() { m.wg.Wait() }

// CreateRequest holds target creation inputs.
type CreateRequest struct {
	ProjectID    string
	WebsiteURL   string
	CompanyName  string
	ContactEmail string
	Sector       string
	Notes        string
}

// CreateFromURL creates a target and dispatches extraction. The returned
// target is already in extracting; the terminal state lands asynchronously.
// Duplicate URLs within a project are allowed — one company may be
// re-extracted over time as distinct targets.
func (m *Manager) CreateFromURL(ctx context.Context, req CreateRequest) (*store.Target, error) {
	if strings.TrimSpace(req.WebsiteURL) == "" {
		return nil, fmt.Errorf("%w: website url is required", perrors.ErrInvalidInput)
	}

	proj, err := m.store.GetProject(req.ProjectID)
	if err != nil {
		return nil, fmt.Errorf("looking up project: %w", err)
	}
	if proj == nil {
		return nil, fmt.Errorf("%w: project %s", perrors.ErrNotFound, req.ProjectID)
	}

	t := &store.Target{
		ID:           uuid.New().String(),
		ProjectID:    req.ProjectID,
		WebsiteURL:   req.WebsiteURL,
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		Sector:       req.Sector,
		Notes:        req.Notes,
		Status:       StatusPending,
	}
	if err := m.store.SaveTarget(t); err != nil {
		return nil, fmt.Errorf("saving target: %w", err)
	}

	if err := m.store.UpdateTargetStatus(t.ID, StatusExtracting, ""); err != nil {
		return nil, fmt.Errorf("dispatching extraction: %w", err)
	}
	t.Status = StatusExtracting

	m.dispatch(t.ID, t.WebsiteURL)

	m.logger.Info().
		Str("target_id", t.ID).
		Str("project_id", t.ProjectID).
		Str("url", t.WebsiteURL).
		Msg("target created, extraction dispatched")

	return t, nil
}

// Get retrieves a target by ID.
func (m *Manager) Get(ctx context.Context, targetID string) (*store.Target, error) {
	t, err := m.store.GetTarget(targetID)
	if err != nil {
		return nil, fmt.Errorf("getting target: %w", err)
	}
	if t == nil {
		return nil, fmt.Errorf("%w: target %s", perrors.ErrNotFound, targetID)
	}
	return t, nil
}

// List retrieves all targets for a project, newest first.
func (m *Manager) List(ctx context.Context, projectID string) ([]*store.Target, error) {
	targets, err := m.store.ListTargets(projectID)
	if err != nil {
		return nil, fmt.Errorf("listing targets: %w", err)
	}
	return targets, nil
}

// Refresh re-dispatches extraction for a ready or failed target. The stored
// scene statuses survive re-extraction. Retrying is caller-driven; the
// manager never retries in the background on its own.
func (m *Manager) Refresh(ctx context.Context, targetID string) (*store.Target, error) {
	t, err := m.Get(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if t.Status == StatusExtracting {
		return nil, fmt.Errorf("%w: extraction already running for target %s", perrors.ErrInvalidInput, targetID)
	}

	if err := m.store.UpdateTargetStatus(t.ID, StatusExtracting, ""); err != nil {
		return nil, fmt.Errorf("dispatching re-extraction: %w", err)
	}
	t.Status = StatusExtracting
	t.ErrorMessage = ""

	m.dispatch(t.ID, t.WebsiteURL)

	m.logger.Info().Str("target_id", t.ID).Msg("re-extraction dispatched")
	return t, nil
}

// dispatch runs extraction in its own goroutine. The caller has already moved
// the target to extracting; this goroutine owns the terminal transition.
func (m *Manager) dispatch(targetID, url string) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.timeout)
		defer cancel()
		m.runExtraction(ctx, targetID, url)
	}()
}

func (m *Manager) runExtraction(ctx context.Context, targetID, url string) {
	log := m.logger.With().Str("target_id", targetID).Str("url", url).Logger()

	partial, err := m.extractAndAnalyze(ctx, url)
	if err != nil {
		// Collaborator failures become target state, never escaping errors.
		msg := fmt.Sprintf("brand extraction failed: %v", err)
		if uerr := m.store.UpdateTargetStatus(targetID, StatusFailed, msg); uerr != nil {
			log.Error().Err(uerr).Msg("failed to record extraction failure")
		}
		if m.metrics != nil {
			m.metrics.RecordExtraction("failed")
		}
		log.Warn().Err(err).Msg("extraction failed")
		m.notifyCompletion(targetID)
		return
	}

	th := theme.Synthesize(partial, m.defaults)
	th.Meta.SourceURL = url

	if err := m.store.SetTargetReady(targetID, th); err != nil {
		log.Error().Err(err).Msg("failed to store synthesized theme")
		_ = m.store.UpdateTargetStatus(targetID, StatusFailed, "failed to store extracted theme")
		if m.metrics != nil {
			m.metrics.RecordExtraction("failed")
		}
		m.notifyCompletion(targetID)
		return
	}

	if m.metrics != nil {
		m.metrics.RecordExtraction("ready")
	}
	log.Info().Msg("target ready")
	m.notifyCompletion(targetID)
}

func (m *Manager) extractAndAnalyze(ctx context.Context, url string) (*theme.PartialTheme, error) {
	raw, err := m.extractor.Extract(ctx, url)
	if err != nil {
		return nil, err
	}
	return m.extractor.Analyze(ctx, raw)
}

func (m *Manager) notifyCompletion(targetID string) {
	if m.notifier == nil {
		return
	}
	t, err := m.store.GetTarget(targetID)
	if err != nil || t == nil {
		return
	}
	m.notifier.NotifyTargetCompletion(t)
}
