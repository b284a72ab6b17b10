// Package classify maps one utterance plus a domain context to an intent
// label and, for the financial domain, a priority hint.
package classify

import (
	"context"
	"strings"

	"github.com/voicedesk/server/internal/agent/model"
)

// Classifier never fails: implementations recover internally and fall back
// to the deterministic keyword rules.
type Classifier interface {
	Classify(ctx context.Context, text string, domain model.Domain) model.Classification
}

// Keyword sets for the deterministic rule path. Urgency keywords are checked
// first for the financial domain regardless of other matches.
var (
	reservationKeywords = []string{"reservation", "book", "table", "reserve"}
	menuKeywords        = []string{"menu", "food", "dish", "price", "cost"}
	hoursKeywords       = []string{"hours", "open", "close", "location", "address"}

	urgentKeywords  = []string{"fraud", "stolen", "unauthorized", "locked"}
	accountKeywords = []string{"account", "balance", "statement"}
	loanKeywords    = []string{"loan", "credit", "mortgage"}
)

// RuleBased classifies by keyword matching. It is both the standalone
// classifier when no model backend is configured and the fallback path of
// the model-backed variant.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Classify(_ context.Context, text string, domain model.Domain) model.Classification {
	lower := strings.ToLower(text)

	switch domain {
	case model.DomainRestaurant:
		switch {
		case containsAny(lower, reservationKeywords):
			return model.Classification{Intent: model.IntentReservation, Confidence: 0.8}
		case containsAny(lower, menuKeywords):
			return model.Classification{Intent: model.IntentMenuInquiry, Confidence: 0.8}
		case containsAny(lower, hoursKeywords):
			return model.Classification{Intent: model.IntentHoursLocation, Confidence: 0.8}
		default:
			return model.Classification{Intent: model.IntentOther, Confidence: 0.5}
		}

	case model.DomainFinancial:
		// Urgency wins over topic even when both appear in one utterance.
		switch {
		case containsAny(lower, urgentKeywords):
			return model.Classification{Intent: model.IntentAccountInquiry, Priority: model.PriorityUrgent, Confidence: 0.8}
		case containsAny(lower, accountKeywords):
			return model.Classification{Intent: model.IntentAccountInquiry, Priority: model.PriorityMedium, Confidence: 0.8}
		case containsAny(lower, loanKeywords):
			return model.Classification{Intent: model.IntentLoanApplication, Priority: model.PriorityMedium, Confidence: 0.8}
		default:
			return model.Classification{Intent: model.IntentGeneral, Priority: model.PriorityMedium, Confidence: 0.5}
		}
	}

	return model.Classification{Intent: model.IntentOther, Confidence: 0.5}
}

func containsAny(lower string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

var _ Classifier = (*RuleBased)(nil)
