package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/halcyonfit/halcyon-engine/internal/domain"
	"github.com/halcyonfit/halcyon-engine/internal/platform/logger"
	"github.com/halcyonfit/halcyon-engine/internal/store"
)

// SQLiteRecordStore implements the store.RecordStore interface using an
// embedded SQLite database as the storage backend. Timestamps are stored
// as Unix nanoseconds so version comparisons are exact.
type SQLiteRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewSQLiteRecordStore creates a new SQLite implementation of the
// RecordStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewSQLiteRecordStore(db store.DBTX, logger *slog.Logger) *SQLiteRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &SQLiteRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

// Ensure SQLiteRecordStore implements store.RecordStore interface
var _ store.RecordStore = (*SQLiteRecordStore)(nil)

// Upsert implements store.RecordStore.Upsert
// It writes the record with dirty=1, creating the row on first write and
// replacing the payload on subsequent writes (last write wins). The
// last-synced timestamp of an existing row is preserved.
func (s *SQLiteRecordStore) Upsert(ctx context.Context, record *domain.Record) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("record validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO records (id, user_id, kind, payload, dirty, updated_at, last_synced_at)
		VALUES (?, ?, ?, ?, 1, ?, NULL)
		ON CONFLICT(id) DO UPDATE SET
			payload = excluded.payload,
			dirty = 1,
			updated_at = excluded.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID.String(),
		record.UserID.String(),
		string(record.Kind),
		[]byte(record.Payload),
		record.UpdatedAt.UnixNano(),
	)
	if err != nil {
		log.Error("failed to upsert record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: upserting record: %v", store.ErrStorageFailure, err)
	}

	log.Debug("record upserted",
		slog.String("record_id", record.ID.String()),
		slog.String("kind", string(record.Kind)))
	return nil
}

// Get implements store.RecordStore.Get
// Returns store.ErrRecordNotFound if the record does not exist.
func (s *SQLiteRecordStore) Get(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, kind, payload, dirty, updated_at, last_synced_at
		FROM records
		WHERE id = ?
	`
	record, err := scanRecord(s.db.QueryRowContext(ctx, query, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrRecordNotFound
		}
		log.Error("failed to get record",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return nil, fmt.Errorf("%w: getting record: %v", store.ErrStorageFailure, err)
	}
	return record, nil
}

// MarkSynced implements store.RecordStore.MarkSynced
// The update applies only if the stored payload version is not newer than
// the pushed one; a record rewritten mid-push stays dirty and
// store.ErrStaleVersion is returned. The update and its classification
// read run in one transaction when the store holds a full database handle.
func (s *SQLiteRecordStore) MarkSynced(ctx context.Context, id uuid.UUID, version, syncedAt time.Time) error {
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.markSynced(ctx, tx, id, version, syncedAt)
		})
	}
	return s.markSynced(ctx, s.db, id, version, syncedAt)
}

func (s *SQLiteRecordStore) markSynced(ctx context.Context, q store.DBTX, id uuid.UUID, version, syncedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE records
		SET dirty = 0, last_synced_at = ?
		WHERE id = ? AND updated_at <= ?
	`
	result, err := q.ExecContext(ctx, query, syncedAt.UnixNano(), id.String(), version.UnixNano())
	if err != nil {
		log.Error("failed to mark record synced",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return fmt.Errorf("%w: marking record synced: %v", store.ErrStorageFailure, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: reading affected rows: %v", store.ErrStorageFailure, err)
	}
	if affected > 0 {
		return nil
	}

	// Nothing updated: either the record is gone or a newer version landed.
	var exists int
	err = q.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE id = ?", id.String()).Scan(&exists)
	if err != nil {
		return fmt.Errorf("%w: checking record existence: %v", store.ErrStorageFailure, err)
	}
	if exists == 0 {
		return store.ErrRecordNotFound
	}

	log.Debug("record rewritten after pushed version, staying dirty",
		slog.String("record_id", id.String()))
	return store.ErrStaleVersion
}

// ListDirty implements store.RecordStore.ListDirty
func (s *SQLiteRecordStore) ListDirty(ctx context.Context) ([]*domain.Record, error) {
	return s.listDirty(ctx, time.Time{})
}

// ListDirtySince implements store.RecordStore.ListDirtySince
func (s *SQLiteRecordStore) ListDirtySince(ctx context.Context, since time.Time) ([]*domain.Record, error) {
	return s.listDirty(ctx, since)
}

func (s *SQLiteRecordStore) listDirty(ctx context.Context, since time.Time) ([]*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, kind, payload, dirty, updated_at, last_synced_at
		FROM records
		WHERE dirty = 1 AND updated_at >= ?
		ORDER BY updated_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, since.UnixNano())
	if err != nil {
		log.Error("failed to list dirty records", slog.String("error", err.Error()))
		return nil, fmt.Errorf("%w: listing dirty records: %v", store.ErrStorageFailure, err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scanning dirty record: %v", store.ErrStorageFailure, err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: iterating dirty records: %v", store.ErrStorageFailure, err)
	}
	return records, nil
}

// CountDirty implements store.RecordStore.CountDirty
func (s *SQLiteRecordStore) CountDirty(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE dirty = 1").Scan(&count)
	if err != nil {
		log.Error("failed to count dirty records", slog.String("error", err.Error()))
		return 0, fmt.Errorf("%w: counting dirty records: %v", store.ErrStorageFailure, err)
	}
	return count, nil
}

// rowScanner covers both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

// scanRecord maps one result row to a domain record.
func scanRecord(row rowScanner) (*domain.Record, error) {
	var (
		idStr        string
		userIDStr    string
		kind         string
		payload      []byte
		dirty        int
		updatedAt    int64
		lastSyncedAt sql.NullInt64
	)
	if err := row.Scan(&idStr, &userIDStr, &kind, &payload, &dirty, &updatedAt, &lastSyncedAt); err != nil {
		return nil, err
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, fmt.Errorf("parsing record id %q: %w", idStr, err)
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return nil, fmt.Errorf("parsing user id %q: %w", userIDStr, err)
	}

	record := &domain.Record{
		ID:        id,
		UserID:    userID,
		Kind:      domain.RecordKind(kind),
		Payload:   payload,
		Dirty:     dirty != 0,
		UpdatedAt: time.Unix(0, updatedAt).UTC(),
	}
	if lastSyncedAt.Valid {
		syncedAt := time.Unix(0, lastSyncedAt.Int64).UTC()
		record.LastSyncedAt = &syncedAt
	}
	return record, nil
}
