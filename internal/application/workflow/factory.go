package workflow

import (
	domainwf "github.com/contractdesk/negotiation/internal/domain/workflow"
)

// BuildNegotiationStateMachine creates a state machine configured for the
// negotiation lifecycle. Plain messages are self-transitions: they are
// permitted from either non-terminal state and leave the status unchanged.
func BuildNegotiationStateMachine(initialState domainwf.State) domainwf.StateMachine {
	builder := domainwf.NewBuilder()

	// AWAITING_PROVIDER state transitions
	builder.Configure(domainwf.StateAwaitingProvider).
		Permit(domainwf.TriggerRespond, domainwf.StateAwaitingRequester).
		Permit(domainwf.TriggerMessage, domainwf.StateAwaitingProvider).
		Permit(domainwf.TriggerAccept, domainwf.StateAccepted).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerCancel, domainwf.StateCancelled)

	// AWAITING_REQUESTER state transitions
	builder.Configure(domainwf.StateAwaitingRequester).
		Permit(domainwf.TriggerPropose, domainwf.StateAwaitingProvider).
		Permit(domainwf.TriggerMessage, domainwf.StateAwaitingRequester).
		Permit(domainwf.TriggerAccept, domainwf.StateAccepted).
		Permit(domainwf.TriggerReject, domainwf.StateRejected).
		Permit(domainwf.TriggerCancel, domainwf.StateCancelled)

	// ACCEPTED, REJECTED and CANCELLED are terminal states - no outgoing transitions

	return builder.Build(initialState)
}
