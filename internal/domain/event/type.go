package event

// Type identifies the type of domain event
type Type string

const (
	TypeNegotiationCreated   Type = "negotiation.created"
	TypeEntryAdded           Type = "negotiation.entry_added"
	TypeNegotiationAccepted  Type = "negotiation.accepted"
	TypeNegotiationRejected  Type = "negotiation.rejected"
	TypeNegotiationCancelled Type = "negotiation.cancelled"
)

// String returns the string representation of the event type
func (t Type) String() string {
	return string(t)
}

// IsValid checks if the event type is one of the defined constants
func (t Type) IsValid() bool {
	switch t {
	case TypeNegotiationCreated,
		TypeEntryAdded,
		TypeNegotiationAccepted,
		TypeNegotiationRejected,
		TypeNegotiationCancelled:
		return true
	}
	return false
}
