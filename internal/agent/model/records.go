package model

import (
	"context"
	"time"
)

// ReservationStatus tracks the lifecycle of a booked table.
type ReservationStatus string

const (
	ReservationConfirmed ReservationStatus = "confirmed"
	ReservationCancelled ReservationStatus = "cancelled"
	ReservationCompleted ReservationStatus = "completed"
	ReservationNoShow    ReservationStatus = "no_show"
)

// Reservation is the immutable record finalized from a completed restaurant
// call. At most one exists per call id.
type Reservation struct {
	ID           string            `json:"id"`
	CallID       string            `json:"call_id"`
	CustomerName string            `json:"name"`
	Phone        string            `json:"phone"`
	Email        string            `json:"email,omitempty"`
	Date         string            `json:"date"`
	Time         string            `json:"time"`
	PartySize    string            `json:"party_size"`
	Status       ReservationStatus `json:"status"`
	CreatedAt    time.Time         `json:"created_at"`
}

// Inquiry is the immutable record finalized from a completed after-hours
// financial call. At most one exists per call id.
type Inquiry struct {
	ID                string    `json:"id"`
	CallID            string    `json:"call_id"`
	CustomerName      string    `json:"name"`
	Phone             string    `json:"phone"`
	Email             string    `json:"email,omitempty"`
	Reason            string    `json:"reason"`
	Priority          Priority  `json:"priority"`
	CallTime          time.Time `json:"call_time"`
	FollowUpCompleted bool      `json:"follow_up_completed"`
	CreatedAt         time.Time `json:"created_at"`
}

// MenuItem backs menu inquiries with injectable business content.
type MenuItem struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       string `json:"price"`
	Category    string `json:"category"`
	Allergens   string `json:"allergens,omitempty"`
	Available   bool   `json:"available"`
}

// RecordStore persists finalized records and menu content. Find methods
// return (nil, nil) when no record exists for the call.
type RecordStore interface {
	CreateReservation(ctx context.Context, r *Reservation) error
	FindReservationByCall(ctx context.Context, callID string) (*Reservation, error)
	ListReservations(ctx context.Context, limit int) ([]Reservation, error)

	CreateInquiry(ctx context.Context, i *Inquiry) error
	FindInquiryByCall(ctx context.Context, callID string) (*Inquiry, error)
	ListInquiries(ctx context.Context, limit int) ([]Inquiry, error)

	Counts(ctx context.Context) (reservations, inquiries int, err error)

	SearchMenuItems(ctx context.Context, query string) ([]MenuItem, error)
}

// Notifier dispatches staff/customer notifications for finalized records.
// Notifications are fire-and-forget: implementations log failures and never
// propagate them back to the dialogue manager.
type Notifier interface {
	ReservationConfirmed(ctx context.Context, r *Reservation)
	InquiryRecorded(ctx context.Context, i *Inquiry)
}

// Topics understood by the ContentProvider.
const (
	TopicMenu  = "menu"
	TopicHours = "hours"
)

// ContentProvider answers informational questions (menu facts, hours and
// location) from injected business content.
type ContentProvider interface {
	Lookup(ctx context.Context, topic, query string) (string, error)
}
