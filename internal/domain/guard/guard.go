// Package guard decides whether an actor may perform an action on a
// negotiation, given their relationship to it and its current status.
// The policy is an explicit table, not inferred from call sites.
package guard

import (
	"errors"
	"fmt"

	"github.com/contractdesk/negotiation/internal/domain/entity"
	"github.com/contractdesk/negotiation/internal/domain/workflow"
)

// ErrForbidden is returned when the actor is not authorized for the attempted action
var ErrForbidden = errors.New("forbidden")

// Action is an operation an actor can attempt on a negotiation
type Action string

const (
	ActionPropose Action = "PROPOSE"
	ActionRespond Action = "RESPOND"
	ActionMessage Action = "MESSAGE"
	ActionAccept  Action = "ACCEPT"
	ActionReject  Action = "REJECT"
	ActionCancel  Action = "CANCEL"
)

// String returns the string representation of the action
func (a Action) String() string {
	return string(a)
}

// rule describes who may perform an action and from which status.
// An empty status set means any status is acceptable to the guard;
// the state machine still rejects terminal states.
type rule struct {
	roles    map[entity.Role]bool
	statuses map[workflow.State]bool
}

// Finalize policy: only the turn-holding party may accept or reject.
// The non-turn-holding party waits for the exchange to come back to them.
var policy = map[Action]rule{
	ActionPropose: {
		roles:    map[entity.Role]bool{entity.RoleRequester: true},
		statuses: map[workflow.State]bool{workflow.StateAwaitingRequester: true},
	},
	ActionRespond: {
		roles:    map[entity.Role]bool{entity.RoleProvider: true},
		statuses: map[workflow.State]bool{workflow.StateAwaitingProvider: true},
	},
	ActionMessage: {
		roles: map[entity.Role]bool{entity.RoleRequester: true, entity.RoleProvider: true},
	},
	ActionAccept: {
		roles: map[entity.Role]bool{entity.RoleRequester: true, entity.RoleProvider: true},
		statuses: map[workflow.State]bool{
			workflow.StateAwaitingRequester: true,
			workflow.StateAwaitingProvider:  true,
		},
	},
	ActionReject: {
		roles: map[entity.Role]bool{entity.RoleRequester: true, entity.RoleProvider: true},
		statuses: map[workflow.State]bool{
			workflow.StateAwaitingRequester: true,
			workflow.StateAwaitingProvider:  true,
		},
	},
	ActionCancel: {
		roles: map[entity.Role]bool{entity.RoleRequester: true},
	},
}

// CanAct returns nil when the actor may perform the action on the negotiation,
// or an error wrapping ErrForbidden otherwise.
func CanAct(n *entity.Negotiation, actor entity.ActorContext, action Action) error {
	role, ok := n.RoleOf(actor.ID)
	if !ok {
		return fmt.Errorf("%w: actor %s is not a participant", ErrForbidden, actor.ID)
	}

	r, ok := policy[action]
	if !ok {
		return fmt.Errorf("%w: unknown action %s", ErrForbidden, action)
	}

	if !r.roles[role] {
		return fmt.Errorf("%w: role %s cannot perform %s", ErrForbidden, role, action)
	}

	if r.statuses != nil && !r.statuses[n.Status] {
		return fmt.Errorf("%w: %s not permitted while status is %s", ErrForbidden, action, n.Status)
	}

	// Accept and reject are reserved for the party whose turn it is.
	if action == ActionAccept || action == ActionReject {
		holder, ok := n.TurnHolder()
		if !ok || holder != role {
			return fmt.Errorf("%w: %s may only finalize when it is their turn", ErrForbidden, role)
		}
	}

	return nil
}
