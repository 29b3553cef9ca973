package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Project represents a video project row.
type Project struct {
	ID        string
	Title     string
	Format    string // landscape, portrait, square
	OwnerID   string
	CreatedAt int64 // unix ms
	UpdatedAt int64 // unix ms
}

// SaveProject inserts or updates a project.
func (s *Store) SaveProject(p *Project) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if p.CreatedAt == 0 {
		p.CreatedAt = now
	}
	p.UpdatedAt = now

	query := `
	INSERT OR REPLACE INTO projects (id, title, format, owner_id, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?)
	`

	if _, err := s.db.Exec(query, p.ID, p.Title, p.Format, p.OwnerID, p.CreatedAt, p.UpdatedAt); err != nil {
		return fmt.Errorf("failed to save project: %w", err)
	}
	return nil
}

// GetProject retrieves a project by ID. Returns nil if not found.
func (s *Store) GetProject(id string) (*Project, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	p := &Project{}
	query := `SELECT id, title, format, owner_id, created_at, updated_at FROM projects WHERE id = ?`

	err := s.db.QueryRow(query, id).Scan(&p.ID, &p.Title, &p.Format, &p.OwnerID, &p.CreatedAt, &p.UpdatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return p, nil
}

// ProjectDuration returns the summed frame count of the project's scenes.
func (s *Store) ProjectDuration(projectID string) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var total sql.NullInt64
	err := s.db.QueryRow(`SELECT SUM(duration) FROM scenes WHERE project_id = ?`, projectID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("failed to sum scene durations: %w", err)
	}
	return int(total.Int64), nil
}
