package entity

import "time"

// ContractStatus is the lifecycle status of a service contract.
// The negotiation engine only reads it to gate negotiation and settlement.
type ContractStatus string

const (
	ContractPending   ContractStatus = "PENDING"
	ContractAccepted  ContractStatus = "ACCEPTED"
	ContractCompleted ContractStatus = "COMPLETED"
	ContractCancelled ContractStatus = "CANCELLED"
)

// String returns the string representation of the contract status
func (s ContractStatus) String() string {
	return string(s)
}

// AllowsNegotiation reports whether a negotiation may be opened or settled
// against a contract in this status.
func (s ContractStatus) AllowsNegotiation() bool {
	return s == ContractPending || s == ContractAccepted
}

// Contract is the external entity whose price/deadline fields the engine
// settles. TotalValue and ServiceEnd are mutated exclusively through the
// terms applier.
type Contract struct {
	ID           string         `json:"id"`
	RequesterID  string         `json:"requester_id"`
	ProviderID   string         `json:"provider_id"`
	Status       ContractStatus `json:"status"`
	TotalValue   float64        `json:"total_value"`
	ServiceStart *time.Time     `json:"service_start,omitempty"`
	ServiceEnd   *time.Time     `json:"service_end,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}
