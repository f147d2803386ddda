package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/contractdesk/negotiation/internal/application/dispatcher"
	"github.com/contractdesk/negotiation/internal/application/port"
	appwf "github.com/contractdesk/negotiation/internal/application/workflow"
	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/domain/event"
	"github.com/contractdesk/negotiation/internal/domain/guard"
	"github.com/contractdesk/negotiation/internal/domain/workflow"
)

// Logger interface for minimal logging dependency
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
}

// Decision is the outcome requested by a finalize call
type Decision string

const (
	DecisionAccept Decision = "accept"
	DecisionReject Decision = "reject"
)

// CreateNegotiationInput carries the initial proposal opening a negotiation
type CreateNegotiationInput struct {
	ContractID string
	Price      *float64
	Deadline   *time.Time
	Notes      string
}

// EntryInput carries a proposal, response or message to append
type EntryInput struct {
	Type     entity.EntryType
	Price    *float64
	Deadline *time.Time
	Notes    string
}

// NegotiationService manages the negotiation lifecycle: proposal exchange,
// finalization and settlement of agreed terms onto the contract.
type NegotiationService interface {
	Create(ctx context.Context, actor entity.ActorContext, in CreateNegotiationInput) (*entity.Negotiation, error)
	AddEntry(ctx context.Context, actor entity.ActorContext, negotiationID string, in EntryInput) (*entity.Entry, error)
	Finalize(ctx context.Context, actor entity.ActorContext, negotiationID string, decision Decision) (*entity.Negotiation, error)
	Cancel(ctx context.Context, actor entity.ActorContext, negotiationID string) (*entity.Negotiation, error)
	Get(ctx context.Context, negotiationID string) (*entity.Negotiation, []*entity.Entry, error)
	History(ctx context.Context, negotiationID string) ([]*entity.Entry, error)
	ListByParticipant(ctx context.Context, actorID string, limit, offset int) ([]*entity.Negotiation, error)
}

type negotiationServiceImpl struct {
	negotiationRepo port.NegotiationRepository
	entryRepo       port.EntryRepository
	contractRepo    port.ContractRepository
	applier         *TermsApplier
	txManager       port.TransactionManager
	events          dispatcher.Dispatcher
	logger          Logger
}

// NewNegotiationService creates a new NegotiationService
func NewNegotiationService(
	negotiationRepo port.NegotiationRepository,
	entryRepo port.EntryRepository,
	contractRepo port.ContractRepository,
	applier *TermsApplier,
	txManager port.TransactionManager,
	events dispatcher.Dispatcher,
	logger Logger,
) NegotiationService {
	return &negotiationServiceImpl{
		negotiationRepo: negotiationRepo,
		entryRepo:       entryRepo,
		contractRepo:    contractRepo,
		applier:         applier,
		txManager:       txManager,
		events:          events,
		logger:          logger,
	}
}

// Create opens a negotiation against a contract with an initial proposal.
// Only the contract's requester may open one, and only while the contract
// status permits negotiation.
func (s *negotiationServiceImpl) Create(ctx context.Context, actor entity.ActorContext, in CreateNegotiationInput) (*entity.Negotiation, error) {
	contract, err := s.contractRepo.GetByID(ctx, in.ContractID)
	if err != nil {
		s.logger.Error("Failed to load contract", "error", err, "contract_id", in.ContractID)
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("contract %s: %w", in.ContractID, entity.ErrNotFound)
	}

	if actor.ID != contract.RequesterID {
		return nil, fmt.Errorf("%w: only the contract requester may open a negotiation", guard.ErrForbidden)
	}

	if !contract.Status.AllowsNegotiation() {
		return nil, fmt.Errorf("%w: contract status %s does not permit negotiation", workflow.ErrInvalidState, contract.Status)
	}

	n := &entity.Negotiation{
		ID:          newID(),
		ContractID:  contract.ID,
		RequesterID: contract.RequesterID,
		ProviderID:  contract.ProviderID,
		Status:      workflow.StateAwaitingProvider,
		Version:     1,
	}

	opening := &entity.Entry{
		NegotiationID: n.ID,
		ActorID:       actor.ID,
		Type:          entity.EntryProposal,
		Price:         in.Price,
		Deadline:      in.Deadline,
		Notes:         in.Notes,
	}
	if err := opening.Validate(); err != nil {
		return nil, err
	}

	// A negotiation is never persisted without its first entry.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.negotiationRepo.Create(txCtx, n); err != nil {
			return fmt.Errorf("create negotiation: %w", err)
		}
		if err := s.entryRepo.Append(txCtx, opening); err != nil {
			return fmt.Errorf("append opening proposal: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to create negotiation", "error", err, "contract_id", in.ContractID)
		return nil, err
	}

	s.logger.Info("Negotiation created", "id", n.ID, "contract_id", n.ContractID)
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeNegotiationCreated, n.ID, n.ContractID, actor.ID, nil))

	return n, nil
}

// AddEntry appends a proposal, response or message to the negotiation history.
func (s *negotiationServiceImpl) AddEntry(ctx context.Context, actor entity.ActorContext, negotiationID string, in EntryInput) (*entity.Entry, error) {
	n, err := s.load(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	if n.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: negotiation %s is %s", workflow.ErrInvalidTransition, n.ID, n.Status)
	}

	action, trigger, err := entryKind(in.Type)
	if err != nil {
		return nil, err
	}

	if err := guard.CanAct(n, actor, action); err != nil {
		return nil, err
	}

	entry := &entity.Entry{
		NegotiationID: n.ID,
		ActorID:       actor.ID,
		Type:          in.Type,
		Price:         in.Price,
		Deadline:      in.Deadline,
		Notes:         in.Notes,
	}
	if err := entry.Validate(); err != nil {
		return nil, err
	}

	machine := appwf.BuildNegotiationStateMachine(n.Status)
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}
	nextStatus := machine.State()

	// The version check serializes concurrent appends on one negotiation;
	// the loser observes a conflict even when the status did not change.
	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.negotiationRepo.UpdateStatus(txCtx, n.ID, n.Version, nextStatus, nil); err != nil {
			return err
		}
		if err := s.entryRepo.Append(txCtx, entry); err != nil {
			return fmt.Errorf("append entry: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to add entry", "error", err, "negotiation_id", n.ID, "type", in.Type)
		return nil, err
	}

	s.logger.Info("Entry added", "negotiation_id", n.ID, "type", in.Type, "status", nextStatus)
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeEntryAdded, n.ID, n.ContractID, actor.ID, map[string]interface{}{
		"entry_type": in.Type.String(),
	}))

	return entry, nil
}

// Finalize concludes the negotiation. Accepting resolves the final terms
// from the history and settles them onto the contract in the same atomic
// unit as the status change; rejecting leaves the contract untouched.
func (s *negotiationServiceImpl) Finalize(ctx context.Context, actor entity.ActorContext, negotiationID string, decision Decision) (*entity.Negotiation, error) {
	n, err := s.load(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	if n.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: negotiation %s is %s", workflow.ErrInvalidTransition, n.ID, n.Status)
	}

	var action guard.Action
	var trigger workflow.Trigger
	var eventType event.Type
	switch decision {
	case DecisionAccept:
		action, trigger, eventType = guard.ActionAccept, workflow.TriggerAccept, event.TypeNegotiationAccepted
	case DecisionReject:
		action, trigger, eventType = guard.ActionReject, workflow.TriggerReject, event.TypeNegotiationRejected
	default:
		return nil, entity.NewValidationError("decision", "must be accept or reject")
	}

	if err := guard.CanAct(n, actor, action); err != nil {
		return nil, err
	}

	machine := appwf.BuildNegotiationStateMachine(n.Status)
	if err := machine.Fire(ctx, trigger); err != nil {
		return nil, err
	}
	nextStatus := machine.State()

	role, _ := n.RoleOf(actor.ID)
	audit := auditEntry(n.ID, actor.ID, string(decision)+"ed", role)

	var finalTerms *entity.FinalTerms

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if decision == DecisionAccept {
			entries, err := s.entryRepo.ListByNegotiationID(txCtx, n.ID)
			if err != nil {
				return fmt.Errorf("load history: %w", err)
			}
			finalTerms = resolveFinalTerms(entries)

			if _, err := s.applier.ApplyAcceptedTerms(txCtx, n, finalTerms); err != nil {
				return err
			}
		}

		if err := s.negotiationRepo.UpdateStatus(txCtx, n.ID, n.Version, nextStatus, finalTerms); err != nil {
			return err
		}
		if err := s.entryRepo.Append(txCtx, audit); err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to finalize negotiation", "error", err, "negotiation_id", n.ID, "decision", decision)
		return nil, err
	}

	n.Status = nextStatus
	n.FinalTerms = finalTerms
	n.Version++

	s.logger.Info("Negotiation finalized", "negotiation_id", n.ID, "decision", decision, "status", nextStatus)

	payload := map[string]interface{}{}
	if finalTerms != nil && finalTerms.Price != nil {
		payload["price"] = *finalTerms.Price
	}
	s.events.DispatchAsync(ctx, event.NewEvent(eventType, n.ID, n.ContractID, actor.ID, payload))

	return n, nil
}

// Cancel withdraws the negotiation. Only the requester may cancel, from any
// non-terminal status; the contract is left untouched.
func (s *negotiationServiceImpl) Cancel(ctx context.Context, actor entity.ActorContext, negotiationID string) (*entity.Negotiation, error) {
	n, err := s.load(ctx, negotiationID)
	if err != nil {
		return nil, err
	}

	if n.Status.IsTerminal() {
		return nil, fmt.Errorf("%w: negotiation %s is %s", workflow.ErrInvalidTransition, n.ID, n.Status)
	}

	if err := guard.CanAct(n, actor, guard.ActionCancel); err != nil {
		return nil, err
	}

	machine := appwf.BuildNegotiationStateMachine(n.Status)
	if err := machine.Fire(ctx, workflow.TriggerCancel); err != nil {
		return nil, err
	}
	nextStatus := machine.State()

	role, _ := n.RoleOf(actor.ID)
	audit := auditEntry(n.ID, actor.ID, "cancelled", role)

	err = s.txManager.WithTransaction(ctx, func(txCtx context.Context) error {
		if err := s.negotiationRepo.UpdateStatus(txCtx, n.ID, n.Version, nextStatus, nil); err != nil {
			return err
		}
		if err := s.entryRepo.Append(txCtx, audit); err != nil {
			return fmt.Errorf("append audit entry: %w", err)
		}
		return nil
	})
	if err != nil {
		s.logger.Error("Failed to cancel negotiation", "error", err, "negotiation_id", n.ID)
		return nil, err
	}

	n.Status = nextStatus
	n.Version++

	s.logger.Info("Negotiation cancelled", "negotiation_id", n.ID)
	s.events.DispatchAsync(ctx, event.NewEvent(event.TypeNegotiationCancelled, n.ID, n.ContractID, actor.ID, nil))

	return n, nil
}

// Get retrieves a negotiation together with its full history
func (s *negotiationServiceImpl) Get(ctx context.Context, negotiationID string) (*entity.Negotiation, []*entity.Entry, error) {
	n, err := s.load(ctx, negotiationID)
	if err != nil {
		return nil, nil, err
	}

	entries, err := s.entryRepo.ListByNegotiationID(ctx, negotiationID)
	if err != nil {
		s.logger.Error("Failed to load history", "error", err, "negotiation_id", negotiationID)
		return nil, nil, err
	}

	return n, entries, nil
}

// History retrieves the negotiation's entries in append order
func (s *negotiationServiceImpl) History(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
	if _, err := s.load(ctx, negotiationID); err != nil {
		return nil, err
	}
	return s.entryRepo.ListByNegotiationID(ctx, negotiationID)
}

// ListByParticipant retrieves negotiations the actor takes part in
func (s *negotiationServiceImpl) ListByParticipant(ctx context.Context, actorID string, limit, offset int) ([]*entity.Negotiation, error) {
	negotiations, err := s.negotiationRepo.ListByParticipant(ctx, actorID, limit, offset)
	if err != nil {
		s.logger.Error("Failed to list negotiations", "error", err, "actor_id", actorID)
		return nil, err
	}
	return negotiations, nil
}

func (s *negotiationServiceImpl) load(ctx context.Context, negotiationID string) (*entity.Negotiation, error) {
	n, err := s.negotiationRepo.GetByID(ctx, negotiationID)
	if err != nil {
		s.logger.Error("Failed to load negotiation", "error", err, "negotiation_id", negotiationID)
		return nil, err
	}
	if n == nil {
		return nil, fmt.Errorf("negotiation %s: %w", negotiationID, entity.ErrNotFound)
	}
	return n, nil
}

// entryKind maps an entry type to the guard action and state machine trigger it implies
func entryKind(t entity.EntryType) (guard.Action, workflow.Trigger, error) {
	switch t {
	case entity.EntryProposal:
		return guard.ActionPropose, workflow.TriggerPropose, nil
	case entity.EntryResponse:
		return guard.ActionRespond, workflow.TriggerRespond, nil
	case entity.EntryMessage:
		return guard.ActionMessage, workflow.TriggerMessage, nil
	default:
		return "", "", entity.NewValidationError("type", "unknown entry type")
	}
}

// resolveFinalTerms derives the settled terms from the most recent
// proposal/response carrying terms. A negotiation accepted before any
// terms were exchanged settles nothing onto the contract.
func resolveFinalTerms(entries []*entity.Entry) *entity.FinalTerms {
	last := entity.LastTermsEntry(entries)
	if last == nil {
		return &entity.FinalTerms{}
	}
	return &entity.FinalTerms{Price: last.Price, Deadline: last.Deadline}
}

// auditEntry builds the explanatory message recorded alongside a terminal transition
func auditEntry(negotiationID, actorID, outcome string, role entity.Role) *entity.Entry {
	return &entity.Entry{
		NegotiationID: negotiationID,
		ActorID:       actorID,
		Type:          entity.EntryMessage,
		Notes:         fmt.Sprintf("negotiation %s by %s", outcome, strings.ToLower(role.String())),
	}
}
