package service

import (
	"context"
	"fmt"

	"github.com/contractdesk/negotiation/internal/application/port"
	"github.com/contractdesk/negotiation/internal/domain/entity"
)

// TermsApplier settles accepted negotiation terms onto the contract.
// The contract's price and deadline fields are mutated through this
// component only, and always inside the caller's transaction so that the
// contract update and the negotiation status change commit or roll back
// together.
type TermsApplier struct {
	contractRepo port.ContractRepository
	logger       Logger
}

// NewTermsApplier creates a new TermsApplier
func NewTermsApplier(contractRepo port.ContractRepository, logger Logger) *TermsApplier {
	return &TermsApplier{
		contractRepo: contractRepo,
		logger:       logger,
	}
}

// ApplyAcceptedTerms writes the resolved terms to the negotiation's contract.
// Absent fields leave the corresponding contract fields unchanged. A missing
// contract or one whose status no longer permits settlement fails the whole
// accept with entity.ErrConflict.
func (a *TermsApplier) ApplyAcceptedTerms(ctx context.Context, n *entity.Negotiation, terms *entity.FinalTerms) (*entity.Contract, error) {
	contract, err := a.contractRepo.GetByID(ctx, n.ContractID)
	if err != nil {
		return nil, fmt.Errorf("load contract: %w", err)
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: contract %s vanished before settlement", entity.ErrConflict, n.ContractID)
	}
	if !contract.Status.AllowsNegotiation() {
		return nil, fmt.Errorf("%w: contract %s is %s", entity.ErrConflict, contract.ID, contract.Status)
	}

	if terms == nil || (terms.Price == nil && terms.Deadline == nil) {
		a.logger.Info("No terms to settle", "negotiation_id", n.ID, "contract_id", contract.ID)
		return contract, nil
	}

	if err := a.contractRepo.UpdateTerms(ctx, contract.ID, terms.Price, terms.Deadline); err != nil {
		return nil, fmt.Errorf("update contract terms: %w", err)
	}

	if terms.Price != nil {
		contract.TotalValue = *terms.Price
	}
	if terms.Deadline != nil {
		contract.ServiceEnd = terms.Deadline
	}

	a.logger.Info("Contract terms settled",
		"negotiation_id", n.ID,
		"contract_id", contract.ID,
	)

	return contract, nil
}
