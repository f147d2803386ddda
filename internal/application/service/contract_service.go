package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contractdesk/negotiation/internal/application/port"
	"github.com/contractdesk/negotiation/internal/domain/entity"
)

// CreateContractInput carries the fields needed to register a contract
type CreateContractInput struct {
	RequesterID  string
	ProviderID   string
	TotalValue   float64
	ServiceStart *time.Time
	ServiceEnd   *time.Time
}

// ContractService manages the contracts negotiations settle against.
// It never touches price/deadline fields after creation; settlement
// goes through the TermsApplier.
type ContractService interface {
	Create(ctx context.Context, in CreateContractInput) (*entity.Contract, error)
	Get(ctx context.Context, id string) (*entity.Contract, error)
}

type contractServiceImpl struct {
	contractRepo port.ContractRepository
	logger       Logger
}

// NewContractService creates a new ContractService
func NewContractService(contractRepo port.ContractRepository, logger Logger) ContractService {
	return &contractServiceImpl{
		contractRepo: contractRepo,
		logger:       logger,
	}
}

// Create registers a new contract in PENDING status
func (s *contractServiceImpl) Create(ctx context.Context, in CreateContractInput) (*entity.Contract, error) {
	if strings.TrimSpace(in.RequesterID) == "" {
		return nil, entity.NewValidationError("requester_id", "requester is required")
	}
	if strings.TrimSpace(in.ProviderID) == "" {
		return nil, entity.NewValidationError("provider_id", "provider is required")
	}
	if in.RequesterID == in.ProviderID {
		return nil, entity.NewValidationError("provider_id", "requester and provider must differ")
	}
	if in.TotalValue < 0 {
		return nil, entity.NewValidationError("total_value", "total value must be non-negative")
	}

	contract := &entity.Contract{
		ID:           newID(),
		RequesterID:  in.RequesterID,
		ProviderID:   in.ProviderID,
		Status:       entity.ContractPending,
		TotalValue:   in.TotalValue,
		ServiceStart: in.ServiceStart,
		ServiceEnd:   in.ServiceEnd,
	}

	if err := s.contractRepo.Create(ctx, contract); err != nil {
		s.logger.Error("Failed to create contract", "error", err)
		return nil, err
	}

	s.logger.Info("Contract created", "id", contract.ID)
	return contract, nil
}

// Get retrieves a contract by ID
func (s *contractServiceImpl) Get(ctx context.Context, id string) (*entity.Contract, error) {
	contract, err := s.contractRepo.GetByID(ctx, id)
	if err != nil {
		s.logger.Error("Failed to get contract", "error", err, "id", id)
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("contract %s: %w", id, entity.ErrNotFound)
	}
	return contract, nil
}
