package postgres

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

// PostgresRecordStore implements the store.RecordStore interface
// using a PostgreSQL database as the storage backend.
type PostgresRecordStore struct {
	db     store.DBTX
	logger *slog.Logger
}

// NewPostgresRecordStore creates a new PostgreSQL implementation of the
// RecordStore interface. It accepts a database connection or transaction
// that should be initialized and managed by the caller. If logger is nil,
// a default logger will be used.
func NewPostgresRecordStore(db store.DBTX, logger *slog.Logger) *PostgresRecordStore {
	if db == nil {
		panic("db cannot be nil")
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &PostgresRecordStore{
		db:     db,
		logger: logger.With(slog.String("component", "record_store")),
	}
}

// Ensure PostgresRecordStore implements store.RecordStore interface
var _ store.RecordStore = (*PostgresRecordStore)(nil)

// Upsert implements store.RecordStore.Upsert
func (s *PostgresRecordStore) Upsert(ctx context.Context, record *domain.Record) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	if err := record.Validate(); err != nil {
		log.Warn("record validation failed during upsert",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return fmt.Errorf("%w: %v", store.ErrInvalidEntity, err)
	}

	query := `
		INSERT INTO records (id, user_id, kind, payload, dirty, updated_at, last_synced_at)
		VALUES ($1, $2, $3, $4, TRUE, $5, NULL)
		ON CONFLICT (id) DO UPDATE SET
			payload = EXCLUDED.payload,
			dirty = TRUE,
			updated_at = EXCLUDED.updated_at
	`
	_, err := s.db.ExecContext(
		ctx,
		query,
		record.ID,
		record.UserID,
		string(record.Kind),
		[]byte(record.Payload),
		record.UpdatedAt,
	)
	if err != nil {
		log.Error("failed to upsert record",
			slog.String("error", err.Error()),
			slog.String("record_id", record.ID.String()))
		return MapError(err)
	}
	return nil
}

// Get implements store.RecordStore.Get
// Returns store.ErrRecordNotFound if the record does not exist.
func (s *PostgresRecordStore) Get(ctx context.Context, id uuid.UUID) (*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, kind, payload, dirty, updated_at, last_synced_at
		FROM records
		WHERE id = $1
	`
	var (
		record       domain.Record
		kind         string
		payload      []byte
		lastSyncedAt sql.NullTime
	)
	err := s.db.QueryRowContext(ctx, query, id).Scan(
		&record.ID,
		&record.UserID,
		&kind,
		&payload,
		&record.Dirty,
		&record.UpdatedAt,
		&lastSyncedAt,
	)
	if err != nil {
		if !errors.Is(err, sql.ErrNoRows) {
			log.Error("failed to get record",
				slog.String("error", err.Error()),
				slog.String("record_id", id.String()))
		}
		return nil, MapError(err)
	}

	record.Kind = domain.RecordKind(kind)
	record.Payload = payload
	if lastSyncedAt.Valid {
		syncedAt := lastSyncedAt.Time.UTC()
		record.LastSyncedAt = &syncedAt
	}
	record.UpdatedAt = record.UpdatedAt.UTC()
	return &record, nil
}

// MarkSynced implements store.RecordStore.MarkSynced
// The update applies only if the stored payload version is not newer than
// the pushed one; a record rewritten mid-push stays dirty and
// store.ErrStaleVersion is returned. The update and its classification
// read run in one transaction when the store holds a full database handle,
// so the two statements cannot straddle pool connections.
func (s *PostgresRecordStore) MarkSynced(ctx context.Context, id uuid.UUID, version, syncedAt time.Time) error {
	if db, ok := s.db.(*sql.DB); ok {
		return store.RunInTransaction(ctx, db, func(ctx context.Context, tx *sql.Tx) error {
			return s.markSynced(ctx, tx, id, version, syncedAt)
		})
	}
	return s.markSynced(ctx, s.db, id, version, syncedAt)
}

func (s *PostgresRecordStore) markSynced(ctx context.Context, q store.DBTX, id uuid.UUID, version, syncedAt time.Time) error {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		UPDATE records
		SET dirty = FALSE, last_synced_at = $1
		WHERE id = $2 AND updated_at <= $3
	`
	result, err := q.ExecContext(ctx, query, syncedAt, id, version)
	if err != nil {
		log.Error("failed to mark record synced",
			slog.String("error", err.Error()),
			slog.String("record_id", id.String()))
		return MapError(err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return MapError(err)
	}
	if affected > 0 {
		return nil
	}

	var exists bool
	err = q.QueryRowContext(ctx,
		"SELECT EXISTS (SELECT 1 FROM records WHERE id = $1)", id).Scan(&exists)
	if err != nil {
		return MapError(err)
	}
	if !exists {
		return store.ErrRecordNotFound
	}

	log.Debug("record rewritten after pushed version, staying dirty",
		slog.String("record_id", id.String()))
	return store.ErrStaleVersion
}

// ListDirty implements store.RecordStore.ListDirty
func (s *PostgresRecordStore) ListDirty(ctx context.Context) ([]*domain.Record, error) {
	return s.listDirty(ctx, time.Time{})
}

// ListDirtySince implements store.RecordStore.ListDirtySince
func (s *PostgresRecordStore) ListDirtySince(ctx context.Context, since time.Time) ([]*domain.Record, error) {
	return s.listDirty(ctx, since)
}

func (s *PostgresRecordStore) listDirty(ctx context.Context, since time.Time) ([]*domain.Record, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	query := `
		SELECT id, user_id, kind, payload, dirty, updated_at, last_synced_at
		FROM records
		WHERE dirty AND updated_at >= $1
		ORDER BY updated_at ASC
	`
	rows, err := s.db.QueryContext(ctx, query, since)
	if err != nil {
		log.Error("failed to list dirty records", slog.String("error", err.Error()))
		return nil, MapError(err)
	}
	defer func() { _ = rows.Close() }()

	var records []*domain.Record
	for rows.Next() {
		var (
			record       domain.Record
			kind         string
			payload      []byte
			lastSyncedAt sql.NullTime
		)
		if err := rows.Scan(
			&record.ID,
			&record.UserID,
			&kind,
			&payload,
			&record.Dirty,
			&record.UpdatedAt,
			&lastSyncedAt,
		); err != nil {
			return nil, MapError(err)
		}
		record.Kind = domain.RecordKind(kind)
		record.Payload = payload
		record.UpdatedAt = record.UpdatedAt.UTC()
		if lastSyncedAt.Valid {
			syncedAt := lastSyncedAt.Time.UTC()
			record.LastSyncedAt = &syncedAt
		}
		records = append(records, &record)
	}
	if err := rows.Err(); err != nil {
		return nil, MapError(err)
	}
	return records, nil
}

// CountDirty implements store.RecordStore.CountDirty
func (s *PostgresRecordStore) CountDirty(ctx context.Context) (int, error) {
	log := logger.FromContextOrDefault(ctx, s.logger)

	var count int
	err := s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM records WHERE dirty").Scan(&count)
	if err != nil {
		log.Error("failed to count dirty records", slog.String("error", err.Error()))
		return 0, MapError(err)
	}
	return count, nil
}
