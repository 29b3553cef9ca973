package store

import (
	"database/sql"
	"fmt"
	"time"
)

// Scene represents a scene row. SourceCode is mutated only by the tokenization
// pass and the brand application pass.
type Scene struct {
	ID         string
	ProjectID  string
	Name       string
	Order      int
	Duration   int // frame count
	SourceCode string
	CreatedAt  int64 // unix ms
	UpdatedAt  int64 // unix ms
}

// SaveScene inserts or updates a scene.
func (s *Store) SaveScene(sc *Scene) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixMilli()
	if sc.CreatedAt == 0 {
		sc.CreatedAt = now
	}
	sc.UpdatedAt = now

	query := `
	INSERT OR REPLACE INTO scenes (id, project_id, name, ord, duration, source_code, created_at, updated_at)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := s.db.Exec(query, sc.ID, sc.ProjectID, sc.Name, sc.Order, sc.Duration, sc.SourceCode, sc.CreatedAt, sc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to save scene: %w", err)
	}
	return nil
}

// GetScene retrieves a scene by ID. Returns nil if not found.
func (s *Store) GetScene(id string) (*Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	sc := &Scene{}
	query := `
	SELECT id, project_id, name, ord, duration, source_code, created_at, updated_at
	FROM scenes WHERE id = ?
	`

	err := s.db.QueryRow(query, id).Scan(
		&sc.ID, &sc.ProjectID, &sc.Name, &sc.Order, &sc.Duration,
		&sc.SourceCode, &sc.CreatedAt, &sc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get scene: %w", err)
	}
	return sc, nil
}

// ListScenes retrieves a project's scenes ordered by their position.
func (s *Store) ListScenes(projectID string) ([]*Scene, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `
	SELECT id, project_id, name, ord, duration, source_code, created_at, updated_at
	FROM scenes WHERE project_id = ? ORDER BY ord ASC
	`

	rows, err := s.db.Query(query, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list scenes: %w", err)
	}
	defer rows.Close()

	var scenes []*Scene
	for rows.Next() {
		sc := &Scene{}
		err := rows.Scan(
			&sc.ID, &sc.ProjectID, &sc.Name, &sc.Order, &sc.Duration,
			&sc.SourceCode, &sc.CreatedAt, &sc.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan scene: %w", err)
		}
		scenes = append(scenes, sc)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating scenes: %w", err)
	}

	return scenes, nil
}

// UpdateSceneSource persists a rewritten scene source.
func (s *Store) UpdateSceneSource(id, sourceCode string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `UPDATE scenes SET source_code = ?, updated_at = ? WHERE id = ?`
	result, err := s.db.Exec(query, sourceCode, time.Now().UnixMilli(), id)
	if err != nil {
		return fmt.Errorf("failed to update scene source: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("scene not found: %s", id)
	}

	return nil
}
