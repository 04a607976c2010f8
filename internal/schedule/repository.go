package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

// Repository defines the interface for schedule persistence operations.
type Repository interface {
	// ListEnabled retrieves all enabled schedules across homes.
	ListEnabled(ctx context.Context) ([]Schedule, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed schedule repository.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// ListEnabled retrieves all enabled schedules across homes.
func (r *SQLiteRepository) ListEnabled(ctx context.Context) ([]Schedule, error) {
	query := `
		SELECT id, home_id, name, time, days, actions, enabled, created_at, updated_at
		FROM schedules
		WHERE enabled = 1
		ORDER BY time`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("querying enabled schedules: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query

	var schedules []Schedule
	for rows.Next() {
		var (
			s            Schedule
			daysJSON     string
			actionsJSON  string
			enabled      int
			createdAt    string
			updatedAt    string
		)

		err := rows.Scan(&s.ID, &s.HomeID, &s.Name, &s.Time, &daysJSON,
			&actionsJSON, &enabled, &createdAt, &updatedAt)
		if err != nil {
			return nil, fmt.Errorf("scanning schedule row: %w", err)
		}

		s.Enabled = enabled != 0
		if err := json.Unmarshal([]byte(daysJSON), &s.Days); err != nil {
			return nil, fmt.Errorf("unmarshalling days: %w", err)
		}
		if err := json.Unmarshal([]byte(actionsJSON), &s.Actions); err != nil {
			return nil, fmt.Errorf("unmarshalling actions: %w", err)
		}
		s.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		s.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

		schedules = append(schedules, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating schedule rows: %w", err)
	}
	return schedules, nil
}
