// Package api exposes the personalization pipeline over HTTP.
package api

import (
	"github.com/brandforge/personalizer/internal/store"
	"github.com/brandforge/personalizer/internal/theme"
)

// ProblemDetail is an RFC 7807 error body.
type ProblemDetail struct {
	Type     string `json:"type"`
	Title    string `json:"title"`
	Status   int    `json:"status"`
	Detail   string `json:"detail"`
	Instance string `json:"instance,omitempty"`
}

// CreateTargetRequest is the body of POST /api/v1/projects/:projectID/targets.
type CreateTargetRequest struct {
	WebsiteURL   string `json:"website_url"`
	CompanyName  string `json:"company_name,omitempty"`
	ContactEmail string `json:"contact_email,omitempty"`
	Sector       string `json:"sector,omitempty"`
	Notes        string `json:"notes,omitempty"`
}

// TargetView is the API shape of a personalization target.
type TargetView struct {
	ID           string            `json:"id"`
	ProjectID    string            `json:"project_id"`
	WebsiteURL   string            `json:"website_url"`
	CompanyName  string            `json:"company_name,omitempty"`
	ContactEmail string            `json:"contact_email,omitempty"`
	Sector       string            `json:"sector,omitempty"`
	Status       string            `json:"status"`
	Notes        string            `json:"notes,omitempty"`
	ErrorMessage string            `json:"error_message,omitempty"`
	BrandTheme   *theme.BrandTheme `json:"brand_theme,omitempty"`
	CreatedAt    int64             `json:"created_at"`
	UpdatedAt    int64             `json:"updated_at"`
	ExtractedAt  int64             `json:"extracted_at,omitempty"`
}

func targetView(t *store.Target) TargetView {
	return TargetView{
		ID:           t.ID,
		ProjectID:    t.ProjectID,
		WebsiteURL:   t.WebsiteURL,
		CompanyName:  t.CompanyName,
		ContactEmail: t.ContactEmail,
		Sector:       t.Sector,
		Status:       t.Status,
		Notes:        t.Notes,
		ErrorMessage: t.ErrorMessage,
		BrandTheme:   t.BrandTheme,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		ExtractedAt:  t.ExtractedAt,
	}
}

// TargetResponse wraps a single target.
type TargetResponse struct {
	Target TargetView `json:"target"`
}

// TargetListResponse wraps a target listing.
type TargetListResponse struct {
	Targets []TargetView `json:"targets"`
	Total   int          `json:"total"`
}

// ApplyRequest is the body of POST /api/v1/projects/:projectID/apply.
// SceneIDs absent means all scenes; present but empty is rejected.
type ApplyRequest struct {
	TargetID string   `json:"target_id"`
	SceneIDs []string `json:"scene_ids"`
}

// HealthDetailResponse is the body of GET /api/v1/health.
type HealthDetailResponse struct {
	Status       string            `json:"status"`
	Integrations map[string]string `json:"integrations"`
	Uptime       string            `json:"uptime"`
	Version      string            `json:"version"`
}
