package api

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/brandforge/personalizer/internal/apply"
	perrors "github.com/brandforge/personalizer/internal/errors"
	"github.com/brandforge/personalizer/internal/health"
	"github.com/brandforge/personalizer/internal/scene"
	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/target"
)

// TargetService drives the target lifecycle.
type TargetService interface {
	CreateFromURL(ctx context.Context, req target.CreateRequest) (*store.Target, error)
	Get(ctx context.Context, targetID string) (*store.Target, error)
	List(ctx context.Context, projectID string) ([]*store.Target, error)
	Refresh(ctx context.Context, targetID string) (*store.Target, error)
}

// TokenizeService runs project tokenization passes.
type TokenizeService interface {
	TokenizeProject(ctx context.Context, projectID string) (*scene.Result, error)
}

// ApplyService applies a target's theme to scenes.
type ApplyService interface {
	ApplyBrand(ctx context.Context, projectID, targetID string, sceneIDs []string) (*apply.Result, error)
}

// Handlers holds dependencies for HTTP handlers.
type Handlers struct {
	targets   TargetService
	tokenizer TokenizeService
	applier   ApplyService
	checker   *health.Checker
	logger    zerolog.Logger
	startTime time.Time
	version   string
}

// NewHandlers creates a new Handlers instance.
func NewHandlers(targets TargetService, tokenizer TokenizeService, applier ApplyService, checker *health.Checker, version string, logger zerolog.Logger) *Handlers {
	return &Handlers{
		targets:   targets,
		tokenizer: tokenizer,
		applier:   applier,
		checker:   checker,
		logger:    logger.With().Str("component", "handlers").Logger(),
		startTime: time.Now(),
		version:   version,
	}
}

// CreateTarget handles POST /api/v1/projects/:projectID/targets.
func (h *Handlers) CreateTarget(c *fiber.Ctx) error {
	var req CreateTargetRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	if strings.TrimSpace(req.WebsiteURL) == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_website_url", "Bad Request",
			"Website URL is required")
	}

	t, err := h.targets.CreateFromURL(c.Context(), target.CreateRequest{
		ProjectID:    c.Params("projectID"),
		WebsiteURL:   req.WebsiteURL,
		CompanyName:  req.CompanyName,
		ContactEmail: req.ContactEmail,
		Sector:       req.Sector,
		Notes:        req.Notes,
	})
	if err != nil {
		return h.serviceError(c, err)
	}

	// Extraction runs asynchronously; the target is returned mid-flight.
	return c.Status(fiber.StatusAccepted).JSON(TargetResponse{Target: targetView(t)})
}

// ListTargets handles GET /api/v1/projects/:projectID/targets.
func (h *Handlers) ListTargets(c *fiber.Ctx) error {
	targets, err := h.targets.List(c.Context(), c.Params("projectID"))
	if err != nil {
		return h.serviceError(c, err)
	}

	views := make([]TargetView, 0, len(targets))
	for _, t := range targets {
		views = append(views, targetView(t))
	}
	return c.JSON(TargetListResponse{Targets: views, Total: len(views)})
}

// GetTarget handles GET /api/v1/targets/:id.
func (h *Handlers) GetTarget(c *fiber.Ctx) error {
	t, err := h.targets.Get(c.Context(), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(TargetResponse{Target: targetView(t)})
}

// RefreshTarget handles POST /api/v1/targets/:id/refresh.
func (h *Handlers) RefreshTarget(c *fiber.Ctx) error {
	t, err := h.targets.Refresh(c.Context(), c.Params("id"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.Status(fiber.StatusAccepted).JSON(TargetResponse{Target: targetView(t)})
}

// TokenizeProject handles POST /api/v1/projects/:projectID/tokenize.
func (h *Handlers) TokenizeProject(c *fiber.Ctx) error {
	res, err := h.tokenizer.TokenizeProject(c.Context(), c.Params("projectID"))
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(res)
}

// ApplyBrand handles POST /api/v1/projects/:projectID/apply.
func (h *Handlers) ApplyBrand(c *fiber.Ctx) error {
	var req ApplyRequest
	if err := c.BodyParser(&req); err != nil {
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_body", "Bad Request",
			"Invalid request body: "+err.Error())
	}

	if req.TargetID == "" {
		return problemResponse(c, fiber.StatusBadRequest,
			"missing_target_id", "Bad Request",
			"Target ID is required")
	}

	res, err := h.applier.ApplyBrand(c.Context(), c.Params("projectID"), req.TargetID, req.SceneIDs)
	if err != nil {
		return h.serviceError(c, err)
	}
	return c.JSON(res)
}

// HealthDetail handles GET /api/v1/health.
func (h *Handlers) HealthDetail(c *fiber.Ctx) error {
	results := h.checker.RunAll(c.Context())

	integrations := make(map[string]string, len(results))
	overall := "ok"
	for name, status := range results {
		integrations[name] = string(status)
		if status == health.StatusDown {
			overall = "degraded"
		}
	}

	return c.JSON(HealthDetailResponse{
		Status:       overall,
		Integrations: integrations,
		Uptime:       time.Since(h.startTime).Round(time.Second).String(),
		Version:      h.version,
	})
}

// Liveness handles GET /healthz.
func (h *Handlers) Liveness(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// Readiness handles GET /readyz.
func (h *Handlers) Readiness(c *fiber.Ctx) error {
	if !h.checker.IsReady(c.Context()) {
		return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
			"status": "not_ready",
		})
	}
	return c.JSON(fiber.Map{"status": "ready"})
}

// serviceError maps pipeline errors onto problem responses.
func (h *Handlers) serviceError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, perrors.ErrNotFound):
		return problemResponse(c, fiber.StatusNotFound,
			"not_found", "Not Found", err.Error())
	case errors.Is(err, perrors.ErrInvalidInput):
		return problemResponse(c, fiber.StatusBadRequest,
			"invalid_input", "Bad Request", err.Error())
	case errors.Is(err, perrors.ErrNotReady):
		return problemResponse(c, fiber.StatusConflict,
			"not_ready", "Conflict", err.Error())
	default:
		h.logger.Error().Err(err).Str("path", c.Path()).Msg("request failed")
		return problemResponse(c, fiber.StatusInternalServerError,
			"internal_error", "Internal Server Error",
			"An internal error occurred")
	}
}
