package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/contractdesk/negotiation/internal/application/port"
	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/domain/workflow"
	"github.com/contractdesk/negotiation/internal/infrastructure/persistence/sqlite"
	"go.uber.org/zap"
)

// NegotiationRepository implements port.NegotiationRepository
type NegotiationRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewNegotiationRepository creates a new negotiation repository
func NewNegotiationRepository(db *sql.DB, logger *zap.Logger) port.NegotiationRepository {
	return &NegotiationRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new negotiation
func (r *NegotiationRepository) Create(ctx context.Context, n *entity.Negotiation) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO negotiations (
			id, contract_id, requester_id, provider_id, status, version,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		n.ID,
		n.ContractID,
		n.RequesterID,
		n.ProviderID,
		n.Status.String(),
		n.Version,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create negotiation", zap.Error(err))
		return fmt.Errorf("failed to create negotiation: %w", err)
	}

	n.CreatedAt = now
	n.UpdatedAt = now
	return nil
}

// GetByID retrieves a negotiation by ID. Returns (nil, nil) when absent.
func (r *NegotiationRepository) GetByID(ctx context.Context, id string) (*entity.Negotiation, error) {
	query := `
		SELECT id, contract_id, requester_id, provider_id, status,
			final_price, final_deadline, version, created_at, updated_at
		FROM negotiations
		WHERE id = ?
	`

	n, err := scanNegotiation(r.getExecutor(ctx).QueryRowContext(ctx, query, id))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get negotiation", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}

	return n, nil
}

// UpdateStatus transitions the negotiation guarded by an optimistic version
// check. Zero affected rows means another writer committed first and yields
// entity.ErrConflict.
func (r *NegotiationRepository) UpdateStatus(ctx context.Context, id string, fromVersion int64, status workflow.State, finalTerms *entity.FinalTerms) error {
	query := `
		UPDATE negotiations
		SET status = ?, final_price = ?, final_deadline = ?,
			version = version + 1, updated_at = ?
		WHERE id = ? AND version = ?
	`

	var finalPrice *float64
	var finalDeadline *time.Time
	if finalTerms != nil {
		finalPrice = finalTerms.Price
		finalDeadline = finalTerms.Deadline
	}

	result, err := r.getExecutor(ctx).ExecContext(ctx, query,
		status.String(),
		finalPrice,
		finalDeadline,
		time.Now().UTC(),
		id,
		fromVersion,
	)
	if err != nil {
		r.logger.Error("Failed to update negotiation status", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update negotiation status: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("negotiation %s at version %d: %w", id, fromVersion, entity.ErrConflict)
	}

	return nil
}

// ListByParticipant retrieves negotiations where the actor is requester or
// provider, most recent first
func (r *NegotiationRepository) ListByParticipant(ctx context.Context, actorID string, limit, offset int) ([]*entity.Negotiation, error) {
	query := `
		SELECT id, contract_id, requester_id, provider_id, status,
			final_price, final_deadline, version, created_at, updated_at
		FROM negotiations
		WHERE requester_id = ? OR provider_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ? OFFSET ?
	`

	rows, err := r.getExecutor(ctx).QueryContext(ctx, query, actorID, actorID, limit, offset)
	if err != nil {
		r.logger.Error("Failed to list negotiations", zap.String("actor_id", actorID), zap.Error(err))
		return nil, fmt.Errorf("failed to list negotiations: %w", err)
	}
	defer rows.Close()

	var negotiations []*entity.Negotiation
	for rows.Next() {
		n, err := scanNegotiation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan negotiation: %w", err)
		}
		negotiations = append(negotiations, n)
	}

	return negotiations, rows.Err()
}

// rowScanner covers both *sql.Row and *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNegotiation(row rowScanner) (*entity.Negotiation, error) {
	var n entity.Negotiation
	var status string
	var finalPrice sql.NullFloat64
	var finalDeadline sql.NullTime

	err := row.Scan(
		&n.ID,
		&n.ContractID,
		&n.RequesterID,
		&n.ProviderID,
		&status,
		&finalPrice,
		&finalDeadline,
		&n.Version,
		&n.CreatedAt,
		&n.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	n.Status = workflow.State(status)

	if finalPrice.Valid || finalDeadline.Valid {
		terms := &entity.FinalTerms{}
		if finalPrice.Valid {
			terms.Price = &finalPrice.Float64
		}
		if finalDeadline.Valid {
			terms.Deadline = &finalDeadline.Time
		}
		n.FinalTerms = terms
	}

	return &n, nil
}

// getExecutor returns the ambient transaction when present, the pool otherwise
func (r *NegotiationRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.NegotiationRepository = (*NegotiationRepository)(nil)
