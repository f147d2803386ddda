package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contractdesk/negotiation/internal/application/port"
	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// EntryRepository implements port.EntryRepository. The entries table is
// append-only: no update or delete path exists.
type EntryRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewEntryRepository creates a new entry repository
func NewEntryRepository(db *sql.DB, logger *zap.Logger) port.EntryRepository {
	return &EntryRepository{
		db:     db,
		logger: logger,
	}
}

// Append persists a new history entry, assigning its ID and the server-side
// creation timestamp
func (r *EntryRepository) Append(ctx context.Context, e *entity.Entry) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO negotiation_entries (
			negotiation_id, actor_id, entry_type, price, deadline, notes, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?)
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		e.NegotiationID,
		e.ActorID,
		e.Type.String(),
		e.Price,
		e.Deadline,
		e.Notes,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to append entry", zap.String("negotiation_id", e.NegotiationID), zap.Error(err))
		return fmt.Errorf("failed to append entry: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}

	e.ID = id
	e.CreatedAt = now
	return nil
}

// ListByNegotiationID retrieves all entries for a negotiation in append order
func (r *EntryRepository) ListByNegotiationID(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
	query := `
		SELECT id, negotiation_id, actor_id, entry_type, price, deadline, notes, created_at
		FROM negotiation_entries
		WHERE negotiation_id = ?
		ORDER BY id ASC
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, negotiationID)
	if err != nil {
		r.logger.Error("Failed to list entries", zap.String("negotiation_id", negotiationID), zap.Error(err))
		return nil, fmt.Errorf("failed to list entries: %w", err)
	}
	defer rows.Close()

	var entries []*entity.Entry
	for rows.Next() {
		var e entity.Entry
		var entryType string
		var price sql.NullFloat64
		var deadline sql.NullTime

		err := rows.Scan(
			&e.ID,
			&e.NegotiationID,
			&e.ActorID,
			&entryType,
			&price,
			&deadline,
			&e.Notes,
			&e.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}

		e.Type = entity.EntryType(entryType)
		if price.Valid {
			e.Price = &price.Float64
		}
		if deadline.Valid {
			e.Deadline = &deadline.Time
		}

		entries = append(entries, &e)
	}

	return entries, rows.Err()
}

// getExecutor returns the ambient transaction when present, the pool otherwise
func (r *EntryRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.EntryRepository = (*EntryRepository)(nil)
