package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/contractdesk/negotiation/internal/application/dispatcher"
	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/domain/guard"
	"github.com/contractdesk/negotiation/internal/domain/workflow"
)

const (
	requesterID = "user-requester"
	providerID  = "user-provider"
	strangerID  = "user-stranger"
	contractID  = "contract-1"
)

// Mock repositories

type mockNegotiationRepo struct {
	createFunc            func(ctx context.Context, n *entity.Negotiation) error
	getByIDFunc           func(ctx context.Context, id string) (*entity.Negotiation, error)
	updateStatusFunc      func(ctx context.Context, id string, fromVersion int64, status workflow.State, finalTerms *entity.FinalTerms) error
	listByParticipantFunc func(ctx context.Context, actorID string, limit, offset int) ([]*entity.Negotiation, error)

	updates []statusUpdate
}

type statusUpdate struct {
	id          string
	fromVersion int64
	status      workflow.State
	finalTerms  *entity.FinalTerms
}

func (m *mockNegotiationRepo) Create(ctx context.Context, n *entity.Negotiation) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, n)
	}
	return nil
}

func (m *mockNegotiationRepo) GetByID(ctx context.Context, id string) (*entity.Negotiation, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return nil, nil
}

func (m *mockNegotiationRepo) UpdateStatus(ctx context.Context, id string, fromVersion int64, status workflow.State, finalTerms *entity.FinalTerms) error {
	if m.updateStatusFunc != nil {
		return m.updateStatusFunc(ctx, id, fromVersion, status, finalTerms)
	}
	m.updates = append(m.updates, statusUpdate{id, fromVersion, status, finalTerms})
	return nil
}

func (m *mockNegotiationRepo) ListByParticipant(ctx context.Context, actorID string, limit, offset int) ([]*entity.Negotiation, error) {
	if m.listByParticipantFunc != nil {
		return m.listByParticipantFunc(ctx, actorID, limit, offset)
	}
	return []*entity.Negotiation{}, nil
}

type mockEntryRepo struct {
	appendFunc func(ctx context.Context, e *entity.Entry) error
	listFunc   func(ctx context.Context, negotiationID string) ([]*entity.Entry, error)

	appended []*entity.Entry
}

func (m *mockEntryRepo) Append(ctx context.Context, e *entity.Entry) error {
	if m.appendFunc != nil {
		return m.appendFunc(ctx, e)
	}
	e.ID = int64(len(m.appended) + 1)
	e.CreatedAt = time.Now()
	m.appended = append(m.appended, e)
	return nil
}

func (m *mockEntryRepo) ListByNegotiationID(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
	if m.listFunc != nil {
		return m.listFunc(ctx, negotiationID)
	}
	return m.appended, nil
}

type mockContractRepo struct {
	createFunc      func(ctx context.Context, c *entity.Contract) error
	getByIDFunc     func(ctx context.Context, id string) (*entity.Contract, error)
	updateTermsFunc func(ctx context.Context, id string, price *float64, deadline *time.Time) error

	termsUpdates []termsUpdate
}

type termsUpdate struct {
	id       string
	price    *float64
	deadline *time.Time
}

func (m *mockContractRepo) Create(ctx context.Context, c *entity.Contract) error {
	if m.createFunc != nil {
		return m.createFunc(ctx, c)
	}
	return nil
}

func (m *mockContractRepo) GetByID(ctx context.Context, id string) (*entity.Contract, error) {
	if m.getByIDFunc != nil {
		return m.getByIDFunc(ctx, id)
	}
	return &entity.Contract{
		ID:          id,
		RequesterID: requesterID,
		ProviderID:  providerID,
		Status:      entity.ContractPending,
		TotalValue:  200,
	}, nil
}

func (m *mockContractRepo) UpdateTerms(ctx context.Context, id string, price *float64, deadline *time.Time) error {
	if m.updateTermsFunc != nil {
		return m.updateTermsFunc(ctx, id, price, deadline)
	}
	m.termsUpdates = append(m.termsUpdates, termsUpdate{id, price, deadline})
	return nil
}

type mockTxManager struct {
	withTransactionFunc func(ctx context.Context, fn func(ctx context.Context) error) error
}

func (m *mockTxManager) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	if m.withTransactionFunc != nil {
		return m.withTransactionFunc(ctx, fn)
	}
	return fn(ctx)
}

type mockServiceLogger struct{}

func (m *mockServiceLogger) Info(msg string, keysAndValues ...interface{})  {}
func (m *mockServiceLogger) Error(msg string, keysAndValues ...interface{}) {}

type fixture struct {
	negotiations *mockNegotiationRepo
	entries      *mockEntryRepo
	contracts    *mockContractRepo
	tx           *mockTxManager
	svc          NegotiationService
}

func newFixture() *fixture {
	f := &fixture{
		negotiations: &mockNegotiationRepo{},
		entries:      &mockEntryRepo{},
		contracts:    &mockContractRepo{},
		tx:           &mockTxManager{},
	}
	logger := &mockServiceLogger{}
	applier := NewTermsApplier(f.contracts, logger)
	f.svc = NewNegotiationService(f.negotiations, f.entries, f.contracts, applier, f.tx, dispatcher.NewDispatcher(), logger)
	return f
}

func awaiting(status workflow.State) *entity.Negotiation {
	return &entity.Negotiation{
		ID:          "neg-1",
		ContractID:  contractID,
		RequesterID: requesterID,
		ProviderID:  providerID,
		Status:      status,
		Version:     3,
	}
}

func price(v float64) *float64 { return &v }

func TestNegotiationService_Create(t *testing.T) {
	f := newFixture()

	n, err := f.svc.Create(context.Background(), entity.ActorContext{ID: requesterID}, CreateNegotiationInput{
		ContractID: contractID,
		Price:      price(150),
		Notes:      "please reduce",
	})
	if err != nil {
		t.Fatalf("Create() unexpected error: %v", err)
	}

	if n.Status != workflow.StateAwaitingProvider {
		t.Errorf("status = %s, want %s", n.Status, workflow.StateAwaitingProvider)
	}
	if n.RequesterID != requesterID || n.ProviderID != providerID {
		t.Error("participants not copied from contract")
	}
	if n.ID == "" {
		t.Error("negotiation ID not assigned")
	}
	if len(f.entries.appended) != 1 {
		t.Fatalf("history length = %d, want 1", len(f.entries.appended))
	}
	opening := f.entries.appended[0]
	if opening.Type != entity.EntryProposal || opening.ActorID != requesterID {
		t.Errorf("opening entry = %+v, want requester proposal", opening)
	}
	if opening.Price == nil || *opening.Price != 150 {
		t.Error("opening proposal should carry the price")
	}
}

func TestNegotiationService_CreateErrors(t *testing.T) {
	tests := []struct {
		name     string
		actorID  string
		contract *entity.Contract
		input    CreateNegotiationInput
		wantErr  error
	}{
		{
			name:     "contract not found",
			actorID:  requesterID,
			contract: nil,
			input:    CreateNegotiationInput{ContractID: contractID, Notes: "hi"},
			wantErr:  entity.ErrNotFound,
		},
		{
			name:    "caller is not the contract requester",
			actorID: providerID,
			contract: &entity.Contract{
				ID: contractID, RequesterID: requesterID, ProviderID: providerID,
				Status: entity.ContractPending,
			},
			input:   CreateNegotiationInput{ContractID: contractID, Notes: "hi"},
			wantErr: guard.ErrForbidden,
		},
		{
			name:    "contract status disallows negotiation",
			actorID: requesterID,
			contract: &entity.Contract{
				ID: contractID, RequesterID: requesterID, ProviderID: providerID,
				Status: entity.ContractCancelled,
			},
			input:   CreateNegotiationInput{ContractID: contractID, Notes: "hi"},
			wantErr: workflow.ErrInvalidState,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.contracts.getByIDFunc = func(ctx context.Context, id string) (*entity.Contract, error) {
				return tt.contract, nil
			}

			_, err := f.svc.Create(context.Background(), entity.ActorContext{ID: tt.actorID}, tt.input)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Create() error = %v, want %v", err, tt.wantErr)
			}
			if len(f.entries.appended) != 0 {
				t.Error("failed Create() must not append history entries")
			}
		})
	}
}

func TestNegotiationService_CreateValidation(t *testing.T) {
	f := newFixture()

	_, err := f.svc.Create(context.Background(), entity.ActorContext{ID: requesterID}, CreateNegotiationInput{
		ContractID: contractID,
		Price:      price(-5),
		Notes:      "bad",
	})
	if !entity.IsValidation(err) {
		t.Errorf("Create() error = %v, want validation error", err)
	}

	_, err = f.svc.Create(context.Background(), entity.ActorContext{ID: requesterID}, CreateNegotiationInput{
		ContractID: contractID,
	})
	if !entity.IsValidation(err) {
		t.Errorf("Create() with empty notes error = %v, want validation error", err)
	}
}

func TestNegotiationService_AddEntry(t *testing.T) {
	tests := []struct {
		name       string
		status     workflow.State
		actorID    string
		entryType  entity.EntryType
		wantStatus workflow.State
	}{
		{"provider responds", workflow.StateAwaitingProvider, providerID, entity.EntryResponse, workflow.StateAwaitingRequester},
		{"requester counter-proposes", workflow.StateAwaitingRequester, requesterID, entity.EntryProposal, workflow.StateAwaitingProvider},
		{"requester message keeps status", workflow.StateAwaitingProvider, requesterID, entity.EntryMessage, workflow.StateAwaitingProvider},
		{"provider message keeps status", workflow.StateAwaitingRequester, providerID, entity.EntryMessage, workflow.StateAwaitingRequester},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
				return awaiting(tt.status), nil
			}

			entry, err := f.svc.AddEntry(context.Background(), entity.ActorContext{ID: tt.actorID}, "neg-1", EntryInput{
				Type:  tt.entryType,
				Price: termsPriceFor(tt.entryType),
				Notes: "some notes",
			})
			if err != nil {
				t.Fatalf("AddEntry() unexpected error: %v", err)
			}
			if entry.ActorID != tt.actorID {
				t.Errorf("entry actor = %s, want %s", entry.ActorID, tt.actorID)
			}

			if len(f.negotiations.updates) != 1 {
				t.Fatalf("UpdateStatus called %d times, want 1", len(f.negotiations.updates))
			}
			update := f.negotiations.updates[0]
			if update.status != tt.wantStatus {
				t.Errorf("new status = %s, want %s", update.status, tt.wantStatus)
			}
			if update.fromVersion != 3 {
				t.Errorf("version check = %d, want 3", update.fromVersion)
			}
			if len(f.entries.appended) != 1 {
				t.Errorf("history length = %d, want 1", len(f.entries.appended))
			}
		})
	}
}

func termsPriceFor(t entity.EntryType) *float64 {
	if t.CarriesTerms() {
		return price(100)
	}
	return nil
}

func TestNegotiationService_AddEntryAuthorization(t *testing.T) {
	tests := []struct {
		name      string
		status    workflow.State
		actorID   string
		entryType entity.EntryType
	}{
		{"third party responds", workflow.StateAwaitingProvider, strangerID, entity.EntryResponse},
		{"third party messages", workflow.StateAwaitingProvider, strangerID, entity.EntryMessage},
		{"requester proposes out of turn", workflow.StateAwaitingProvider, requesterID, entity.EntryProposal},
		{"provider responds out of turn", workflow.StateAwaitingRequester, providerID, entity.EntryResponse},
		{"provider sends proposal", workflow.StateAwaitingRequester, providerID, entity.EntryProposal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
				return awaiting(tt.status), nil
			}

			_, err := f.svc.AddEntry(context.Background(), entity.ActorContext{ID: tt.actorID}, "neg-1", EntryInput{
				Type:  tt.entryType,
				Notes: "nope",
			})
			if !errors.Is(err, guard.ErrForbidden) {
				t.Errorf("AddEntry() error = %v, want ErrForbidden", err)
			}
			if len(f.entries.appended) != 0 || len(f.negotiations.updates) != 0 {
				t.Error("forbidden AddEntry() must not touch state")
			}
		})
	}
}

func TestNegotiationService_TerminalLock(t *testing.T) {
	for _, status := range []workflow.State{workflow.StateAccepted, workflow.StateRejected, workflow.StateCancelled} {
		t.Run(string(status), func(t *testing.T) {
			f := newFixture()
			f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
				return awaiting(status), nil
			}

			_, err := f.svc.AddEntry(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1", EntryInput{
				Type:  entity.EntryMessage,
				Notes: "anyone there?",
			})
			if !errors.Is(err, workflow.ErrInvalidTransition) {
				t.Errorf("AddEntry() error = %v, want ErrInvalidTransition", err)
			}

			_, err = f.svc.Finalize(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1", DecisionReject)
			if !errors.Is(err, workflow.ErrInvalidTransition) {
				t.Errorf("Finalize() error = %v, want ErrInvalidTransition", err)
			}

			_, err = f.svc.Cancel(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1")
			if !errors.Is(err, workflow.ErrInvalidTransition) {
				t.Errorf("Cancel() error = %v, want ErrInvalidTransition", err)
			}

			if len(f.entries.appended) != 0 || len(f.negotiations.updates) != 0 || len(f.contracts.termsUpdates) != 0 {
				t.Error("terminal negotiation must stay unchanged")
			}
		})
	}
}

func TestNegotiationService_FinalizeAccept(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingRequester), nil
	}
	f.entries.listFunc = func(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
		return []*entity.Entry{
			{ID: 1, Type: entity.EntryProposal, ActorID: requesterID, Price: price(150), Notes: "please reduce"},
			{ID: 2, Type: entity.EntryResponse, ActorID: providerID, Price: price(130), Notes: "counter"},
		}, nil
	}

	n, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1", DecisionAccept)
	if err != nil {
		t.Fatalf("Finalize() unexpected error: %v", err)
	}

	if n.Status != workflow.StateAccepted {
		t.Errorf("status = %s, want %s", n.Status, workflow.StateAccepted)
	}
	if n.FinalTerms == nil || n.FinalTerms.Price == nil || *n.FinalTerms.Price != 130 {
		t.Errorf("final terms = %+v, want price 130", n.FinalTerms)
	}

	// Contract settled with the last responded price.
	if len(f.contracts.termsUpdates) != 1 {
		t.Fatalf("contract UpdateTerms called %d times, want 1", len(f.contracts.termsUpdates))
	}
	settled := f.contracts.termsUpdates[0]
	if settled.id != contractID || settled.price == nil || *settled.price != 130 {
		t.Errorf("settled terms = %+v, want price 130 on %s", settled, contractID)
	}

	// Negotiation row updated with final terms under version check.
	if len(f.negotiations.updates) != 1 {
		t.Fatalf("UpdateStatus called %d times, want 1", len(f.negotiations.updates))
	}
	update := f.negotiations.updates[0]
	if update.status != workflow.StateAccepted || update.finalTerms == nil {
		t.Errorf("negotiation update = %+v, want accepted with terms", update)
	}

	// Audit trail records who concluded the negotiation.
	if len(f.entries.appended) != 1 {
		t.Fatalf("audit entries = %d, want 1", len(f.entries.appended))
	}
	audit := f.entries.appended[0]
	if audit.Type != entity.EntryMessage || audit.Notes != "negotiation accepted by requester" {
		t.Errorf("audit entry = %+v", audit)
	}
}

func TestNegotiationService_FinalizeAcceptWithoutTerms(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingProvider), nil
	}
	f.entries.listFunc = func(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
		return []*entity.Entry{
			{ID: 1, Type: entity.EntryMessage, ActorID: requesterID, Notes: "shall we keep the original terms?"},
		}, nil
	}

	n, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: providerID}, "neg-1", DecisionAccept)
	if err != nil {
		t.Fatalf("Finalize() unexpected error: %v", err)
	}

	if n.Status != workflow.StateAccepted {
		t.Errorf("status = %s, want %s", n.Status, workflow.StateAccepted)
	}
	if len(f.contracts.termsUpdates) != 0 {
		t.Error("contract fields must stay unchanged when no terms were exchanged")
	}
}

func TestNegotiationService_FinalizeReject(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingProvider), nil
	}

	n, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: providerID}, "neg-1", DecisionReject)
	if err != nil {
		t.Fatalf("Finalize() unexpected error: %v", err)
	}

	if n.Status != workflow.StateRejected {
		t.Errorf("status = %s, want %s", n.Status, workflow.StateRejected)
	}
	if len(f.contracts.termsUpdates) != 0 {
		t.Error("reject must not touch the contract")
	}
	if len(f.entries.appended) != 1 || f.entries.appended[0].Notes != "negotiation rejected by provider" {
		t.Errorf("audit entries = %+v", f.entries.appended)
	}
}

func TestNegotiationService_FinalizeOutOfTurn(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingRequester), nil
	}

	// Provider cannot finalize while the requester holds the turn.
	for _, decision := range []Decision{DecisionAccept, DecisionReject} {
		_, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: providerID}, "neg-1", decision)
		if !errors.Is(err, guard.ErrForbidden) {
			t.Errorf("Finalize(%s) error = %v, want ErrForbidden", decision, err)
		}
	}
	if len(f.negotiations.updates) != 0 || len(f.entries.appended) != 0 {
		t.Error("forbidden finalize must not touch state")
	}
}

func TestNegotiationService_FinalizeAcceptContractConflict(t *testing.T) {
	tests := []struct {
		name     string
		contract *entity.Contract
	}{
		{"contract vanished", nil},
		{"contract no longer negotiable", &entity.Contract{
			ID: contractID, RequesterID: requesterID, ProviderID: providerID,
			Status: entity.ContractCompleted,
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
				return awaiting(workflow.StateAwaitingRequester), nil
			}
			f.entries.listFunc = func(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
				return []*entity.Entry{
					{ID: 1, Type: entity.EntryProposal, ActorID: requesterID, Price: price(150), Notes: "offer"},
				}, nil
			}
			f.contracts.getByIDFunc = func(ctx context.Context, id string) (*entity.Contract, error) {
				return tt.contract, nil
			}

			_, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1", DecisionAccept)
			if !errors.Is(err, entity.ErrConflict) {
				t.Errorf("Finalize() error = %v, want ErrConflict", err)
			}

			// The transaction aborts before any write lands.
			if len(f.negotiations.updates) != 0 || len(f.entries.appended) != 0 || len(f.contracts.termsUpdates) != 0 {
				t.Error("failed accept must leave negotiation and contract untouched")
			}
		})
	}
}

func TestNegotiationService_ConcurrentFinalizeLosesOnVersion(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingRequester), nil
	}
	f.entries.listFunc = func(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
		return []*entity.Entry{
			{ID: 1, Type: entity.EntryProposal, ActorID: requesterID, Price: price(150), Notes: "offer"},
		}, nil
	}
	// Another finalize committed first; the version check misses.
	f.negotiations.updateStatusFunc = func(ctx context.Context, id string, fromVersion int64, status workflow.State, finalTerms *entity.FinalTerms) error {
		return entity.ErrConflict
	}

	_, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1", DecisionAccept)
	if !errors.Is(err, entity.ErrConflict) {
		t.Errorf("Finalize() error = %v, want ErrConflict", err)
	}
}

func TestNegotiationService_Cancel(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingProvider), nil
	}

	n, err := f.svc.Cancel(context.Background(), entity.ActorContext{ID: requesterID}, "neg-1")
	if err != nil {
		t.Fatalf("Cancel() unexpected error: %v", err)
	}
	if n.Status != workflow.StateCancelled {
		t.Errorf("status = %s, want %s", n.Status, workflow.StateCancelled)
	}
	if len(f.entries.appended) != 1 || f.entries.appended[0].Notes != "negotiation cancelled by requester" {
		t.Errorf("audit entries = %+v", f.entries.appended)
	}

	// Providers cannot cancel.
	f2 := newFixture()
	f2.negotiations.getByIDFunc = f.negotiations.getByIDFunc
	_, err = f2.svc.Cancel(context.Background(), entity.ActorContext{ID: providerID}, "neg-1")
	if !errors.Is(err, guard.ErrForbidden) {
		t.Errorf("Cancel() by provider error = %v, want ErrForbidden", err)
	}
}

func TestNegotiationService_GetAndHistory(t *testing.T) {
	f := newFixture()

	_, _, err := f.svc.Get(context.Background(), "missing")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("Get() error = %v, want ErrNotFound", err)
	}

	_, err = f.svc.History(context.Background(), "missing")
	if !errors.Is(err, entity.ErrNotFound) {
		t.Errorf("History() error = %v, want ErrNotFound", err)
	}

	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingProvider), nil
	}
	f.entries.listFunc = func(ctx context.Context, negotiationID string) ([]*entity.Entry, error) {
		return []*entity.Entry{
			{ID: 1, Type: entity.EntryProposal, Notes: "offer"},
			{ID: 2, Type: entity.EntryMessage, Notes: "note"},
		}, nil
	}

	n, entries, err := f.svc.Get(context.Background(), "neg-1")
	if err != nil {
		t.Fatalf("Get() unexpected error: %v", err)
	}
	if n.ID != "neg-1" || len(entries) != 2 {
		t.Errorf("Get() = %v with %d entries, want neg-1 with 2", n.ID, len(entries))
	}
}

func TestNegotiationService_FinalizeInvalidDecision(t *testing.T) {
	f := newFixture()
	f.negotiations.getByIDFunc = func(ctx context.Context, id string) (*entity.Negotiation, error) {
		return awaiting(workflow.StateAwaitingProvider), nil
	}

	_, err := f.svc.Finalize(context.Background(), entity.ActorContext{ID: providerID}, "neg-1", Decision("maybe"))
	if !entity.IsValidation(err) {
		t.Errorf("Finalize() error = %v, want validation error", err)
	}
}
