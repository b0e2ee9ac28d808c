// Package sqlite keeps a ledger of completed asset requests in a SQLite database.
package sqlite

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/assetbot/pkg/ports"
	"github.com/georgysavva/scany/v2/sqlscan"
	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

//go:embed schema.sql
var schema string

var (
	// ErrRequestNotFound is returned by Get and UpdateStatus for unknown ids.
	ErrRequestNotFound = errors.New("asset request not found")
	// ErrInvalidStatus is returned by UpdateStatus for statuses outside ports.RequestStatus.
	ErrInvalidStatus = errors.New("invalid request status")
)

// Recorder implements ports.RequestRecorder and ports.RequestReviewer.
type Recorder struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and applies the schema.
// Use ":memory:" for a throwaway database.
func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	// A single connection keeps ":memory:" databases alive and serializes writers.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}
	return &Recorder{db: db, now: time.Now}, nil
}

func (r *Recorder) DB() *sql.DB {
	return r.db
}

func (r *Recorder) Close() error {
	return r.db.Close()
}

// Record inserts req, filling ID, Status and CreatedAt when unset.
func (r *Recorder) Record(ctx context.Context, req *ports.AssetRequest) error {
	if req.ID == "" {
		req.ID = uuid.New().String()
	}
	if req.Status == "" {
		req.Status = ports.RequestPending
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now().UTC()
	}

	query := `INSERT INTO asset_requests
		(id, session_key, identity, asset_type, configuration, reason, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, query,
		req.ID, req.SessionKey, req.Identity, req.AssetType,
		req.Configuration, req.Reason, string(req.Status), req.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to record asset request: %w", err)
	}
	return nil
}

// Get returns one request by id.
func (r *Recorder) Get(ctx context.Context, id string) (*ports.AssetRequest, error) {
	var req ports.AssetRequest
	query := `SELECT id, session_key, identity, asset_type, configuration, reason, status, created_at
		FROM asset_requests WHERE id = ?`
	if err := sqlscan.Get(ctx, r.db, &req, query, id); err != nil {
		if sqlscan.NotFound(err) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("failed to get asset request: %w", err)
	}
	return &req, nil
}

// UpdateStatus sets the review status of the request with the given id.
func (r *Recorder) UpdateStatus(ctx context.Context, id string, status ports.RequestStatus) error {
	if !status.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}
	res, err := r.db.ExecContext(ctx, `UPDATE asset_requests SET status = ? WHERE id = ?`, string(status), id)
	if err != nil {
		return fmt.Errorf("failed to update asset request %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update asset request %s: %w", id, err)
	}
	if n == 0 {
		return ErrRequestNotFound
	}
	return nil
}

// List returns the requests of one session, oldest first. An empty key lists every request.
func (r *Recorder) List(ctx context.Context, sessionKey string) ([]ports.AssetRequest, error) {
	query := `SELECT id, session_key, identity, asset_type, configuration, reason, status, created_at
		FROM asset_requests WHERE (? = '' OR session_key = ?) ORDER BY created_at, rowid`
	var out []ports.AssetRequest
	if err := sqlscan.Select(ctx, r.db, &out, query, sessionKey, sessionKey); err != nil {
		return nil, fmt.Errorf("failed to list asset requests: %w", err)
	}
	return out, nil
}
