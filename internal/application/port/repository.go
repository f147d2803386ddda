package port

import (
	"context"
	"time"

	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/domain/workflow"
)

// NegotiationRepository defines persistence operations for Negotiation
type NegotiationRepository interface {
	// Create persists a new negotiation
	Create(ctx context.Context, n *entity.Negotiation) error

	// GetByID retrieves a negotiation by ID; returns (nil, nil) when absent
	GetByID(ctx context.Context, id string) (*entity.Negotiation, error)

	// UpdateStatus transitions the negotiation guarded by an optimistic
	// version check. fromVersion must match the stored version or the
	// update fails with entity.ErrConflict. finalTerms is written only
	// when non-nil.
	UpdateStatus(ctx context.Context, id string, fromVersion int64, status workflow.State, finalTerms *entity.FinalTerms) error

	// ListByParticipant retrieves negotiations where the actor is
	// requester or provider, newest first
	ListByParticipant(ctx context.Context, actorID string, limit, offset int) ([]*entity.Negotiation, error)
}

// EntryRepository defines persistence operations for the append-only history log.
// There are deliberately no update or delete operations.
type EntryRepository interface {
	// Append adds an entry to the log, assigning its ID and server-side timestamp
	Append(ctx context.Context, e *entity.Entry) error

	// ListByNegotiationID retrieves all entries in append order
	ListByNegotiationID(ctx context.Context, negotiationID string) ([]*entity.Entry, error)
}

// ContractRepository defines persistence operations for Contract
type ContractRepository interface {
	// Create persists a new contract
	Create(ctx context.Context, c *entity.Contract) error

	// GetByID retrieves a contract by ID; returns (nil, nil) when absent
	GetByID(ctx context.Context, id string) (*entity.Contract, error)

	// UpdateTerms writes the settled price and/or deadline. Nil fields
	// leave the corresponding columns unchanged. Must run inside the
	// same transaction as the negotiation status write.
	UpdateTerms(ctx context.Context, id string, price *float64, deadline *time.Time) error
}

// TransactionManager handles database transactions
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
