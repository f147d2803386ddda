package entity

import (
	"time"

	"github.com/contractdesk/negotiation/internal/domain/workflow"
)

// Role identifies which side of a negotiation an actor is on.
type Role string

const (
	RoleRequester Role = "REQUESTER"
	RoleProvider  Role = "PROVIDER"
)

// String returns the string representation of the role
func (r Role) String() string {
	return string(r)
}

// Negotiation represents a proposal exchange tied to one contract.
// RequesterID and ProviderID are immutable after creation.
type Negotiation struct {
	ID          string         `json:"id"`
	ContractID  string         `json:"contract_id"`
	RequesterID string         `json:"requester_id"`
	ProviderID  string         `json:"provider_id"`
	Status      workflow.State `json:"status"`
	FinalTerms  *FinalTerms    `json:"final_terms,omitempty"`
	Version     int64          `json:"version"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

// FinalTerms holds the price/deadline pair settled onto the contract
// when a negotiation is accepted. Absent fields leave the corresponding
// contract field unchanged.
type FinalTerms struct {
	Price    *float64   `json:"price,omitempty"`
	Deadline *time.Time `json:"deadline,omitempty"`
}

// IsParticipant reports whether the actor is one of the two registered parties.
func (n *Negotiation) IsParticipant(actorID string) bool {
	return actorID == n.RequesterID || actorID == n.ProviderID
}

// RoleOf returns the actor's role on this negotiation. The second return
// value is false for non-participants.
func (n *Negotiation) RoleOf(actorID string) (Role, bool) {
	switch actorID {
	case n.RequesterID:
		return RoleRequester, true
	case n.ProviderID:
		return RoleProvider, true
	default:
		return "", false
	}
}

// TurnHolder returns the participant expected to act in the current status.
// Terminal states have no turn holder.
func (n *Negotiation) TurnHolder() (Role, bool) {
	switch n.Status {
	case workflow.StateAwaitingProvider:
		return RoleProvider, true
	case workflow.StateAwaitingRequester:
		return RoleRequester, true
	default:
		return "", false
	}
}
