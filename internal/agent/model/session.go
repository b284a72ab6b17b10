package model

import (
	"context"
	"time"
)

// Session carries the slots collected so far for one call. It is the only
// state shared between the otherwise independent turns of a call.
type Session struct {
	CallID string            `json:"call_id"`
	Domain Domain            `json:"domain"`
	Fields map[string]string `json:"fields"`

	// Task records which collection flow is in progress, so follow-up
	// answers ("my name is...") keep filling slots even when they carry no
	// intent keywords of their own.
	Task string `json:"task,omitempty"`

	Version   int64     `json:"version"`
	UpdatedAt time.Time `json:"updated_at"`
}

// NewSession creates an empty session for the first turn of a call.
func NewSession(callID string, domain Domain) *Session {
	return &Session{
		CallID: callID,
		Domain: domain,
		Fields: map[string]string{},
	}
}

// Missing returns the checklist fields that are still empty, in checklist
// order.
func (s *Session) Missing(checklist []string) []string {
	var missing []string
	for _, f := range checklist {
		if s.Fields[f] == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// MergeFields merges overlay into a copy of base under the slot rules:
// a field already set in base is never overwritten, except priority which
// may only escalate.
func MergeFields(base, overlay map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overlay))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overlay {
		if v == "" {
			continue
		}
		if k == FieldPriority {
			if cur, ok := merged[k]; ok && cur != "" {
				merged[k] = string(Escalate(ParsePriority(cur), ParsePriority(v)))
				continue
			}
			merged[k] = v
			continue
		}
		if merged[k] == "" {
			merged[k] = v
		}
	}
	return merged
}

// SessionRepository is the durable session store keyed by call id.
type SessionRepository interface {
	// Get retrieves the session for a call, or (nil, nil) when none exists
	// yet so the caller can create one lazily.
	Get(ctx context.Context, callID string) (*Session, error)

	// Put persists the session if the stored version still equals
	// expectedVersion, bumping the version on success. A lost race returns
	// errx.ErrVersionConflict and leaves the stored session untouched.
	Put(ctx context.Context, session *Session, expectedVersion int64) error
}

// TurnRequest is one utterance arriving from the transport layer. An empty
// Utterance signals that no speech was detected.
type TurnRequest struct {
	CallID    string `json:"call_id"`
	Domain    Domain `json:"domain"`
	Utterance string `json:"utterance"`
}

// TurnResponse tells the transport layer what to say and whether to keep
// listening or hand the caller to a live line.
type TurnResponse struct {
	ReplyText         string `json:"reply_text"`
	ContinueListening bool   `json:"continue_listening"`
	TransferToHuman   bool   `json:"transfer_to_human"`
}
