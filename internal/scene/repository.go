package scene

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"
)

// Repository defines the interface for scene persistence operations.
type Repository interface {
	// GetByID retrieves a scene by its unique identifier.
	// Returns ErrNotFound if the scene does not exist.
	GetByID(ctx context.Context, id string) (*Scene, error)

	// ListByHome retrieves all scenes in a home.
	ListByHome(ctx context.Context, homeID string) ([]Scene, error)

	// Activate marks one scene active and all other scenes in the home
	// inactive, in a single atomic statement. Returns ErrNotFound if
	// the scene does not exist in the home.
	Activate(ctx context.Context, homeID, sceneID string) error
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed scene repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const sceneColumns = `id, home_id, name, icon, description, scope, room_ids,
	rules, device_states, is_active, created_at, updated_at`

// GetByID retrieves a scene by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	s, err := scanScene(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying scene by id: %w", err)
	}
	return s, nil
}

// ListByHome retrieves all scenes in a home.
func (r *SQLiteRepository) ListByHome(ctx context.Context, homeID string) ([]Scene, error) {
	query := `SELECT ` + sceneColumns + ` FROM scenes WHERE home_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, homeID)
	if err != nil {
		return nil, fmt.Errorf("querying scenes by home: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query

	var scenes []Scene
	for rows.Next() {
		s, err := scanScene(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning scene row: %w", err)
		}
		scenes = append(scenes, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating scene rows: %w", err)
	}
	return scenes, nil
}

// Activate marks one scene active and deactivates its siblings.
//
// The exclusivity invariant (at most one active scene per home) is
// enforced by a single UPDATE so two concurrent activations cannot
// leave two scenes active.
func (r *SQLiteRepository) Activate(ctx context.Context, homeID, sceneID string) error {
	query := `
		UPDATE scenes
		SET is_active = (id = ?), updated_at = ?
		WHERE home_id = ?`

	result, err := r.db.ExecContext(ctx, query,
		sceneID, time.Now().UTC().Format(time.RFC3339), homeID)
	if err != nil {
		return fmt.Errorf("activating scene: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking activation result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanScene scans a scene row into a Scene struct.
func scanScene(s scanner) (*Scene, error) {
	var (
		sc         Scene
		scope      string
		roomsJSON  string
		rulesJSON  string
		statesJSON string
		isActive   int
		createdAt  string
		updatedAt  string
	)

	err := s.Scan(
		&sc.ID, &sc.HomeID, &sc.Name, &sc.Icon, &sc.Description, &scope,
		&roomsJSON, &rulesJSON, &statesJSON, &isActive, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	sc.Scope = Scope(scope)
	sc.IsActive = isActive != 0

	if err := json.Unmarshal([]byte(roomsJSON), &sc.RoomIDs); err != nil {
		return nil, fmt.Errorf("unmarshalling room ids: %w", err)
	}
	if err := json.Unmarshal([]byte(rulesJSON), &sc.Rules); err != nil {
		return nil, fmt.Errorf("unmarshalling rules: %w", err)
	}
	if err := json.Unmarshal([]byte(statesJSON), &sc.DeviceStates); err != nil {
		return nil, fmt.Errorf("unmarshalling device states: %w", err)
	}

	sc.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	sc.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &sc, nil
}
