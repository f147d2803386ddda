package entity

import (
	"strings"
	"time"
)

// EntryType is a closed set of history entry variants. Proposals and
// responses may carry price/deadline terms; messages carry notes only.
type EntryType string

const (
	EntryProposal EntryType = "PROPOSAL"
	EntryResponse EntryType = "RESPONSE"
	EntryMessage  EntryType = "MESSAGE"
)

// String returns the string representation of the entry type
func (t EntryType) String() string {
	return string(t)
}

// IsValid returns true if the entry type is one of the known variants
func (t EntryType) IsValid() bool {
	switch t {
	case EntryProposal, EntryResponse, EntryMessage:
		return true
	}
	return false
}

// CarriesTerms reports whether this entry type may carry price/deadline.
func (t EntryType) CarriesTerms() bool {
	return t == EntryProposal || t == EntryResponse
}

// MaxNotesLen bounds the notes field of a history entry.
const MaxNotesLen = 2000

// Entry is one immutable record in a negotiation's history log.
// CreatedAt is assigned by the server at append time; client-supplied
// timestamps are ignored.
type Entry struct {
	ID            int64      `json:"id"`
	NegotiationID string     `json:"negotiation_id"`
	ActorID       string     `json:"actor_id"`
	Type          EntryType  `json:"type"`
	Price         *float64   `json:"price,omitempty"`
	Deadline      *time.Time `json:"deadline,omitempty"`
	Notes         string     `json:"notes"`
	CreatedAt     time.Time  `json:"created_at"`
}

// Validate checks the entry payload before it is appended to the log.
func (e *Entry) Validate() error {
	if !e.Type.IsValid() {
		return NewValidationError("type", "unknown entry type")
	}
	if strings.TrimSpace(e.Notes) == "" {
		return NewValidationError("notes", "notes are required")
	}
	if len(e.Notes) > MaxNotesLen {
		return NewValidationError("notes", "notes exceed maximum length")
	}
	if e.Price != nil && *e.Price < 0 {
		return NewValidationError("price", "price must be non-negative")
	}
	if e.Deadline != nil && e.Deadline.IsZero() {
		return NewValidationError("deadline", "deadline must be a valid point in time")
	}
	if !e.Type.CarriesTerms() && (e.Price != nil || e.Deadline != nil) {
		return NewValidationError("type", "message entries cannot carry price or deadline")
	}
	return nil
}

// HasTerms reports whether the entry carries at least one of price/deadline.
func (e *Entry) HasTerms() bool {
	return e.Type.CarriesTerms() && (e.Price != nil || e.Deadline != nil)
}

// LastTermsEntry scans entries from most recent to oldest and returns the
// first proposal or response carrying at least one of price/deadline.
// Entries must be in append order. Returns nil when no entry carries terms.
func LastTermsEntry(entries []*Entry) *Entry {
	for i := len(entries) - 1; i >= 0; i-- {
		if entries[i].HasTerms() {
			return entries[i]
		}
	}
	return nil
}
