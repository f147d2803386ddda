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

// ContractRepository implements port.ContractRepository
type ContractRepository struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewContractRepository creates a new contract repository
func NewContractRepository(db *sql.DB, logger *zap.Logger) port.ContractRepository {
	return &ContractRepository{
		db:     db,
		logger: logger,
	}
}

// Create persists a new contract
func (r *ContractRepository) Create(ctx context.Context, c *entity.Contract) error {
	now := time.Now().UTC()

	query := `
		INSERT INTO contracts (
			id, requester_id, provider_id, status, total_value,
			service_start, service_end, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.getExecutor(ctx).ExecContext(ctx, query,
		c.ID,
		c.RequesterID,
		c.ProviderID,
		string(c.Status),
		c.TotalValue,
		c.ServiceStart,
		c.ServiceEnd,
		now,
		now,
	)
	if err != nil {
		r.logger.Error("Failed to create contract", zap.Error(err))
		return fmt.Errorf("failed to create contract: %w", err)
	}

	c.CreatedAt = now
	c.UpdatedAt = now
	return nil
}

// GetByID retrieves a contract by ID. Returns (nil, nil) when absent.
func (r *ContractRepository) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	query := `
		SELECT id, requester_id, provider_id, status, total_value,
			service_start, service_end, created_at, updated_at
		FROM contracts
		WHERE id = ?
	`

	var c entity.Contract
	var status string
	var serviceStart, serviceEnd sql.NullTime

	err := r.getExecutor(ctx).QueryRowContext(ctx, query, id).Scan(
		&c.ID,
		&c.RequesterID,
		&c.ProviderID,
		&status,
		&c.TotalValue,
		&serviceStart,
		&serviceEnd,
		&c.CreatedAt,
		&c.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		r.logger.Error("Failed to get contract", zap.String("id", id), zap.Error(err))
		return nil, fmt.Errorf("failed to get contract: %w", err)
	}

	c.Status = entity.ContractStatus(status)
	if serviceStart.Valid {
		c.ServiceStart = &serviceStart.Time
	}
	if serviceEnd.Valid {
		c.ServiceEnd = &serviceEnd.Time
	}

	return &c, nil
}

// UpdateTerms writes the settled price and deadline onto the contract.
// Nil fields leave the stored value unchanged.
func (r *ContractRepository) UpdateTerms(ctx context.Context, id string, price *float64, deadline *time.Time) error {
	query := `
		UPDATE contracts
		SET total_value = COALESCE(?, total_value),
			service_end = COALESCE(?, service_end),
			updated_at = ?
		WHERE id = ?
	`

	result, err := r.getExecutor(ctx).ExecContext(ctx, query, price, deadline, time.Now().UTC(), id)
	if err != nil {
		r.logger.Error("Failed to update contract terms", zap.String("id", id), zap.Error(err))
		return fmt.Errorf("failed to update contract terms: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if affected == 0 {
		return fmt.Errorf("contract %s: %w", id, entity.ErrNotFound)
	}

	return nil
}

// getExecutor returns the ambient transaction when present, the pool otherwise
func (r *ContractRepository) getExecutor(ctx context.Context) sqlite.Executor {
	if tx := sqlite.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.db
}

// Verify interface compliance
var _ port.ContractRepository = (*ContractRepository)(nil)
