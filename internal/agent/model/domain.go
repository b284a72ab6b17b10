package model

import "fmt"

// Domain identifies which conversation task a call belongs to. It is fixed
// for the lifetime of the call.
type Domain string

const (
	DomainRestaurant Domain = "restaurant"
	DomainFinancial  Domain = "financial"
)

// ParseDomain validates a transport-supplied domain tag.
func ParseDomain(v string) (Domain, error) {
	switch Domain(v) {
	case DomainRestaurant:
		return DomainRestaurant, nil
	case DomainFinancial:
		return DomainFinancial, nil
	default:
		return "", fmt.Errorf("unknown domain %q", v)
	}
}

// Intent labels produced by the classifier.
const (
	IntentReservation     = "RESERVATION"
	IntentMenuInquiry     = "MENU_INQUIRY"
	IntentHoursLocation   = "HOURS_LOCATION"
	IntentOther           = "OTHER"
	IntentAccountInquiry  = "ACCOUNT_INQUIRY"
	IntentLoanApplication = "LOAN_APPLICATION"
	IntentGeneral         = "GENERAL"
)

// Field names used in session slots and finalized records.
const (
	FieldName      = "name"
	FieldPhone     = "phone"
	FieldEmail     = "email"
	FieldDate      = "date"
	FieldTime      = "time"
	FieldPartySize = "party_size"
	FieldReason    = "reason"
	FieldPriority  = "priority"
)

// Checklist returns the ordered required fields for a domain. The order is a
// contract: the first missing field in this list is the one asked for next.
func Checklist(d Domain) []string {
	switch d {
	case DomainRestaurant:
		return []string{FieldName, FieldPhone, FieldDate, FieldTime, FieldPartySize}
	case DomainFinancial:
		return []string{FieldName, FieldPhone, FieldReason}
	default:
		return nil
	}
}

// Classification is the transient result of classifying one utterance.
type Classification struct {
	Intent     string            `json:"intent"`
	Confidence float64           `json:"confidence"`
	Priority   Priority          `json:"priority,omitempty"`
	Entities   map[string]string `json:"entities,omitempty"`
}

// Priority ranks a financial inquiry for follow-up.
type Priority string

const (
	PriorityLow    Priority = "LOW"
	PriorityMedium Priority = "MEDIUM"
	PriorityHigh   Priority = "HIGH"
	PriorityUrgent Priority = "URGENT"
)

var priorityRank = map[Priority]int{
	PriorityLow:    1,
	PriorityMedium: 2,
	PriorityHigh:   3,
	PriorityUrgent: 4,
}

// ParsePriority maps a stored value onto the enum, defaulting to MEDIUM for
// absent or unrecognized values.
func ParsePriority(v string) Priority {
	p := Priority(v)
	if _, ok := priorityRank[p]; ok {
		return p
	}
	return PriorityMedium
}

// Escalate returns the higher of two priorities. Priority may only go up
// across turns, never down.
func Escalate(cur, next Priority) Priority {
	if priorityRank[next] > priorityRank[cur] {
		return next
	}
	return cur
}
