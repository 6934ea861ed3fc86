package audit

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/alprsearch/internal/domain/search/constraint"
)

// Entry records who ran a search, why, and the exact query sent upstream.
type Entry struct {
	ID         string             `json:"id"`
	User       string             `json:"user"`
	CaseNumber string             `json:"caseNumber"`
	Reason     string             `json:"reason"`
	Request    constraint.Request `json:"request"`
	SearchedAt time.Time          `json:"searchedAt"`
}

// New creates an audit entry. The id is assigned by the store.
func New(user, caseNumber, reason string, req constraint.Request, at time.Time) Entry {
	return Entry{
		User:       user,
		CaseNumber: caseNumber,
		Reason:     reason,
		Request:    req,
		SearchedAt: at,
	}
}

// Fields flattens the entry into string fields for hash storage.
func (e Entry) Fields() (map[string]string, error) {
	raw, err := json.Marshal(e.Request)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}
	return map[string]string{
		"id":          e.ID,
		"user":        e.User,
		"case_number": e.CaseNumber,
		"reason":      e.Reason,
		"request":     string(raw),
		"searched_at": e.SearchedAt.UTC().Format(time.RFC3339Nano),
	}, nil
}

// FromFields reverses Fields.
func FromFields(m map[string]string) (Entry, error) {
	e := Entry{
		ID:         m["id"],
		User:       m["user"],
		CaseNumber: m["case_number"],
		Reason:     m["reason"],
	}
	if raw := m["request"]; raw != "" {
		if err := json.Unmarshal([]byte(raw), &e.Request); err != nil {
			return Entry{}, fmt.Errorf("unmarshal request: %w", err)
		}
	}
	if ts := m["searched_at"]; ts != "" {
		t, err := time.Parse(time.RFC3339Nano, ts)
		if err != nil {
			return Entry{}, fmt.Errorf("parse searched_at: %w", err)
		}
		e.SearchedAt = t
	}
	return e, nil
}
