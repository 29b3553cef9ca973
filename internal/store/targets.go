package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/brandforge/personalizer/internal/theme"
)

// Target represents a personalization target row.
type Target struct {
	ID           string
	ProjectID    string
	WebsiteURL   string
	CompanyName  string
	ContactEmail string
	Sector       string
	Status       string // pending, extracting, ready, failed
	Notes        string
	ErrorMessage string
	BrandTheme   *theme.BrandTheme
	CreatedAt    int64 // unix ms
	UpdatedAt    int64 // unix ms
	ExtractedAt  int64 // unix ms, 0 = never extracted
}

// SaveTarget inserts or updates a target.
func (s *Store) SaveTarget(t *Target) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if t.CreatedAt == 0 {
		t.CreatedAt = now
	}
	t.UpdatedAt = now

	themeJSON, err := marshalTheme(t.BrandTheme)
	if err != nil {
		return err
	}

	query := `
	INSERT OR REPLACE INTO targets (
		id, project_id, website_url, company_name, contact_email, sector,
		status, notes, error_message, brand_theme, created_at, updated_at, extracted_at
	) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err = s.db.Exec(query,
		t.ID, t.ProjectID, t.WebsiteURL,
		nullable(t.CompanyName), nullable(t.ContactEmail), nullable(t.Sector),
		t.Status, nullable(t.Notes), nullable(t.ErrorMessage), themeJSON,
		t.CreatedAt, t.UpdatedAt,
		sql.NullInt64{Int64: t.ExtractedAt, Valid: t.ExtractedAt != 0},
	)
	if err != nil {
		return fmt.Errorf("failed to save target: %w", err)
	}
	return nil
}

// GetTarget retrieves a target by ID. Returns nil if not found.
func (s *Store) GetTarget(id string) (*Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getTargetLocked(id)
}

func (s *Store) getTargetLocked(id string) (*Target, error) {
	query := `
	SELECT id, project_id, website_url, company_name, contact_email, sector,
	       status, notes, error_message, brand_theme, created_at, updated_at, extracted_at
	FROM targets WHERE id = ?
	`
	t, err := scanTarget(s.db.QueryRow(query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get target: %w", err)
	}
	return t, nil
}

// ListTargets retrieves all targets for a project, newest first.
func (s *Store) ListTargets(projectID string) ([]*Target, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, project_id, website_url, company_name, contact_email, sector,
	       status, notes, error_message, brand_theme, created_at, updated_at, extracted_at
	FROM targets WHERE project_id = ? ORDER BY created_at DESC
	`

	rows, err := s.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list targets: %w", err)
	}
	defer rows.Close()

	var targets []*Target
	for rows.Next() {
		t, err := scanTarget(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan target: %w", err)
		}
		targets = append(targets, t)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating targets: %w", err)
	}

	return targets, nil
}

// UpdateTargetStatus updates a target's status and, for failures, the error
// message. The error message is cleared on non-failed statuses.
func (s *Store) UpdateTargetStatus(id, status, errorMessage string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `UPDATE targets SET status = ?, error_message = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.Exec(query, status, nullable(errorMessage), time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update target status: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("target not found: %s", id)
	}

	return nil
}

// SetTargetReady stores the synthesized theme and marks the target ready.
// An existing scene status map on the stored theme is carried over so that
// re-extraction does not erase personalization progress.
func (s *Store) SetTargetReady(id string, th theme.BrandTheme) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, err := s.getTargetLocked(id)
	if err != nil {
		return err
	}
	if existing == nil {
		return fmt.Errorf("target not found: %s", id)
	}

	if existing.BrandTheme != nil && len(existing.BrandTheme.Meta.SceneStatuses) > 0 {
		merged := theme.CloneStatuses(existing.BrandTheme.Meta.SceneStatuses)
		for k, v := range th.Meta.SceneStatuses {
			merged[k] = v
		}
		th.Meta.SceneStatuses = merged
	}

	themeJSON, err := marshalTheme(&th)
	if err != nil {
		return err
	}

	now := time.Now().UnixMilli()
	query := `
	UPDATE targets
	SET status = 'ready', brand_theme = ?, error_message = NULL, extracted_at = ?, updated_at = ?
	WHERE id = ?
	`
	if _, err := s.db.Exec(query, themeJSON, now, now, id); err != nil {
		return fmt.Errorf("failed to store theme: %w", err)
	}
	return nil
}

// MergeSceneStatuses merges the given entries into the target's persisted
// scene status map. Entries for scenes not named in the input are preserved
// byte-for-byte; the whole read-merge-write runs under the store lock so
// concurrent merges interleave at entry granularity.
func (s *Store) MergeSceneStatuses(targetID string, entries map[string]theme.SceneStatusEntry) error {
	if len(entries) == 0 {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t, err := s.getTargetLocked(targetID)
	if err != nil {
		return err
	}
	if t == nil {
		return fmt.Errorf("target not found: %s", targetID)
	}
	if t.BrandTheme == nil {
		return fmt.Errorf("target %s has no theme to merge statuses into", targetID)
	}

	th := t.BrandTheme.Clone()
	for sceneID, entry := range entries {
		th.Meta.SceneStatuses[sceneID] = entry
	}

	themeJSON, err := marshalTheme(&th)
	if err != nil {
		return err
	}

	query := `UPDATE targets SET brand_theme = ?, updated_at = ? WHERE id = ?`
	if _, err := s.db.Exec(query, themeJSON, time.Now().UnixMilli(), targetID); err != nil {
		return fmt.Errorf("failed to merge scene statuses: %w", err)
	}
	return nil
}

// CountTargetsByStatus returns target counts grouped by status.
func (s *Store) CountTargetsByStatus() (map[string]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`SELECT status, COUNT(*) FROM targets GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to count targets: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var status string
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[status] = n
	}
	return counts, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTarget(row rowScanner) (*Target, error) {
	t := &Target{}
	var companyName, contactEmail, sector, notes, errMsg, themeJSON sql.NullString
	var extractedAt sql.NullInt64

	err := row.Scan(
		&t.ID, &t.ProjectID, &t.WebsiteURL, &companyName, &contactEmail, &sector,
		&t.Status, &notes, &errMsg, &themeJSON,
		&t.CreatedAt, &t.UpdatedAt, &extractedAt,
	)
	if err != nil {
		return nil, err
	}

	t.CompanyName = companyName.String
	t.ContactEmail = contactEmail.String
	t.Sector = sector.String
	t.Notes = notes.String
	t.ErrorMessage = errMsg.String
	if extractedAt.Valid {
		t.ExtractedAt = extractedAt.Int64
	}
	if themeJSON.Valid && themeJSON.String != "" {
		var th theme.BrandTheme
		if err := json.Unmarshal([]byte(themeJSON.String), &th); err != nil {
			return nil, fmt.Errorf("failed to decode stored theme: %w", err)
		}
		t.BrandTheme = &th
	}

	return t, nil
}

func marshalTheme(th *theme.BrandTheme) (sql.NullString, error) {
	if th == nil {
		return sql.NullString{}, nil
	}
	b, err := json.Marshal(th)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode theme: %w", err)
	}
	return sql.NullString{String: string(b), Valid: true}, nil
}

func nullable(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
