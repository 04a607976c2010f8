package device

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Repository defines the interface for device persistence operations.
// This abstraction allows for different implementations (SQLite, mock, etc.)
// and enables unit testing without database dependencies.
type Repository interface {
	// GetByID retrieves a device by its unique identifier.
	// Returns ErrNotFound if the device does not exist.
	GetByID(ctx context.Context, id string) (*Device, error)

	// GetWithHub retrieves a device together with its owning hub.
	// Returns ErrNotFound if the device does not exist, ErrHubNotFound
	// if the device references a missing hub.
	GetWithHub(ctx context.Context, id string) (*Device, *Hub, error)

	// ListByHome retrieves all devices in a home.
	ListByHome(ctx context.Context, homeID string) ([]Device, error)

	// UpdateState applies a partial state update to a device.
	// Nil patch fields are left unchanged; an empty patch is a no-op.
	// Returns ErrNotFound if the device does not exist.
	UpdateState(ctx context.Context, id string, patch StatePatch) error
}

// HubRepository defines the interface for hub persistence operations.
type HubRepository interface {
	// GetByID retrieves a hub by its unique identifier.
	// Returns ErrHubNotFound if the hub does not exist.
	GetByID(ctx context.Context, id string) (*Hub, error)

	// ListByHome retrieves all hubs in a home.
	ListByHome(ctx context.Context, homeID string) ([]Hub, error)
}

// SQLiteRepository implements Repository using SQLite.
type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository creates a new SQLite-backed device repository.
// The db parameter should be an open SQLite connection.
func NewSQLiteRepository(db *sql.DB) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

const deviceColumns = `id, hub_id, home_id, room_id, name, type, category,
	is_active, value, unit, signal_mappings, metadata, created_at, updated_at`

// GetByID retrieves a device by its unique identifier.
func (r *SQLiteRepository) GetByID(ctx context.Context, id string) (*Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	dev, err := scanDevice(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("querying device by id: %w", err)
	}
	return dev, nil
}

// GetWithHub retrieves a device together with its owning hub.
func (r *SQLiteRepository) GetWithHub(ctx context.Context, id string) (*Device, *Hub, error) {
	dev, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	hub, err := NewSQLiteHubRepository(r.db).GetByID(ctx, dev.HubID)
	if err != nil {
		return nil, nil, fmt.Errorf("loading hub %s for device %s: %w", dev.HubID, id, err)
	}

	return dev, hub, nil
}

// ListByHome retrieves all devices in a home.
func (r *SQLiteRepository) ListByHome(ctx context.Context, homeID string) ([]Device, error) {
	query := `SELECT ` + deviceColumns + ` FROM devices WHERE home_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, homeID)
	if err != nil {
		return nil, fmt.Errorf("querying devices by home: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query

	var devices []Device
	for rows.Next() {
		dev, err := scanDevice(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning device row: %w", err)
		}
		devices = append(devices, *dev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating device rows: %w", err)
	}
	return devices, nil
}

// UpdateState applies a partial state update to a device.
// The SET clause is built dynamically so untouched columns keep their values.
func (r *SQLiteRepository) UpdateState(ctx context.Context, id string, patch StatePatch) error {
	if patch.IsEmpty() {
		return nil
	}

	var sets []string
	var args []any

	if patch.IsActive != nil {
		sets = append(sets, "is_active = ?")
		args = append(args, boolToInt(*patch.IsActive))
	}
	if patch.Value != nil {
		sets = append(sets, "value = ?")
		args = append(args, *patch.Value)
	}
	if patch.Unit != nil {
		sets = append(sets, "unit = ?")
		args = append(args, *patch.Unit)
	}
	if patch.SignalMappings != nil {
		mappingsJSON, err := json.Marshal(patch.SignalMappings)
		if err != nil {
			return fmt.Errorf("marshalling signal mappings: %w", err)
		}
		sets = append(sets, "signal_mappings = ?")
		args = append(args, string(mappingsJSON))
	}

	sets = append(sets, "updated_at = ?")
	args = append(args, time.Now().UTC().Format(time.RFC3339))
	args = append(args, id)

	query := "UPDATE devices SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	result, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("updating device state: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking update result: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// SQLiteHubRepository implements HubRepository using SQLite.
type SQLiteHubRepository struct {
	db *sql.DB
}

// NewSQLiteHubRepository creates a new SQLite-backed hub repository.
func NewSQLiteHubRepository(db *sql.DB) *SQLiteHubRepository {
	return &SQLiteHubRepository{db: db}
}

const hubColumns = `id, home_id, room_id, serial_number, name, status, hub_type,
	mqtt_topic, wifi_ssid, wifi_connected, metadata, created_at, updated_at`

// GetByID retrieves a hub by its unique identifier.
func (r *SQLiteHubRepository) GetByID(ctx context.Context, id string) (*Hub, error) {
	query := `SELECT ` + hubColumns + ` FROM hubs WHERE id = ?`

	row := r.db.QueryRowContext(ctx, query, id)
	hub, err := scanHub(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrHubNotFound
		}
		return nil, fmt.Errorf("querying hub by id: %w", err)
	}
	return hub, nil
}

// ListByHome retrieves all hubs in a home.
func (r *SQLiteHubRepository) ListByHome(ctx context.Context, homeID string) ([]Hub, error) {
	query := `SELECT ` + hubColumns + ` FROM hubs WHERE home_id = ? ORDER BY name`

	rows, err := r.db.QueryContext(ctx, query, homeID)
	if err != nil {
		return nil, fmt.Errorf("querying hubs by home: %w", err)
	}
	defer rows.Close() //nolint:errcheck // Read-only query

	var hubs []Hub
	for rows.Next() {
		hub, err := scanHub(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning hub row: %w", err)
		}
		hubs = append(hubs, *hub)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating hub rows: %w", err)
	}
	return hubs, nil
}

// scanner abstracts sql.Row and sql.Rows for shared scan logic.
type scanner interface {
	Scan(dest ...any) error
}

// scanDevice scans a device row into a Device struct.
func scanDevice(s scanner) (*Device, error) {
	var (
		dev          Device
		roomID       sql.NullString
		value        sql.NullFloat64
		unit         sql.NullString
		isActive     int
		mappingsJSON string
		metadataJSON string
		createdAt    string
		updatedAt    string
	)

	err := s.Scan(
		&dev.ID, &dev.HubID, &dev.HomeID, &roomID, &dev.Name, &dev.Type,
		&dev.Category, &isActive, &value, &unit, &mappingsJSON, &metadataJSON,
		&createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	dev.IsActive = isActive != 0
	if roomID.Valid {
		dev.RoomID = &roomID.String
	}
	if value.Valid {
		dev.Value = &value.Float64
	}
	if unit.Valid {
		dev.Unit = &unit.String
	}

	if err := json.Unmarshal([]byte(mappingsJSON), &dev.SignalMappings); err != nil {
		return nil, fmt.Errorf("unmarshalling signal mappings: %w", err)
	}
	if err := json.Unmarshal([]byte(metadataJSON), &dev.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling metadata: %w", err)
	}

	dev.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	dev.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &dev, nil
}

// scanHub scans a hub row into a Hub struct.
func scanHub(s scanner) (*Hub, error) {
	var (
		hub           Hub
		roomID        sql.NullString
		wifiConnected int
		metadataJSON  string
		createdAt     string
		updatedAt     string
	)

	err := s.Scan(
		&hub.ID, &hub.HomeID, &roomID, &hub.SerialNumber, &hub.Name,
		&hub.Status, &hub.HubType, &hub.MQTTTopic, &hub.WifiSSID,
		&wifiConnected, &metadataJSON, &createdAt, &updatedAt,
	)
	if err != nil {
		return nil, err
	}

	hub.WifiConnected = wifiConnected != 0
	if roomID.Valid {
		hub.RoomID = &roomID.String
	}

	if err := json.Unmarshal([]byte(metadataJSON), &hub.Metadata); err != nil {
		return nil, fmt.Errorf("unmarshalling hub metadata: %w", err)
	}

	hub.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	hub.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)

	return &hub, nil
}

// boolToInt converts a bool to SQLite's integer representation.
func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
