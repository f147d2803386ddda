// Package notification delivers best-effort updates to the counterparty of
// a negotiation. Delivery runs on the async event path: failures are logged
// and never affect the transaction that produced the event.
package notification

import (
	"context"
	"fmt"

	"github.com/contractdesk/negotiation/internal/application/dispatcher"
	"github.com/contractdesk/negotiation/internal/application/port"
	"github.com/contractdesk/negotiation/internal/domain/event"
	"go.uber.org/zap"
)

// Notifier resolves the counterparty of the acting participant and records
// the notification. The delivery channel is the structured log; a real
// transport can be slotted in behind Deliver.
type Notifier struct {
	negotiationRepo port.NegotiationRepository
	logger          *zap.Logger
}

// NewNotifier creates a new Notifier
func NewNotifier(negotiationRepo port.NegotiationRepository, logger *zap.Logger) *Notifier {
	return &Notifier{
		negotiationRepo: negotiationRepo,
		logger:          logger,
	}
}

// Register subscribes the notifier to every negotiation event type
func (n *Notifier) Register(d dispatcher.Dispatcher) {
	for _, t := range []event.Type{
		event.TypeNegotiationCreated,
		event.TypeEntryAdded,
		event.TypeNegotiationAccepted,
		event.TypeNegotiationRejected,
		event.TypeNegotiationCancelled,
	} {
		d.SubscribeNamed(t, "counterparty-notifier", n.Handle)
	}
}

// Handle notifies the participant who did not perform the action
func (n *Notifier) Handle(ctx context.Context, evt *event.Event) error {
	negotiation, err := n.negotiationRepo.GetByID(ctx, evt.NegotiationID)
	if err != nil {
		return fmt.Errorf("load negotiation for notification: %w", err)
	}
	if negotiation == nil {
		return fmt.Errorf("negotiation %s not found for notification", evt.NegotiationID)
	}

	recipient := negotiation.RequesterID
	if evt.ActorID == negotiation.RequesterID {
		recipient = negotiation.ProviderID
	}

	return n.Deliver(ctx, recipient, evt)
}

// Deliver records the notification for the recipient
func (n *Notifier) Deliver(_ context.Context, recipient string, evt *event.Event) error {
	n.logger.Info("Notifying participant",
		zap.String("recipient", recipient),
		zap.String("event_type", string(evt.Type)),
		zap.String("negotiation_id", evt.NegotiationID),
		zap.String("contract_id", evt.ContractID),
		zap.String("actor_id", evt.ActorID),
	)
	return nil
}
