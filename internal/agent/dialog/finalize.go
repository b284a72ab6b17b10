package dialog

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/voicedesk/server/internal/agent/model"
	logx "github.com/voicedesk/server/pkg/logger"
)

// Finalizer converts a completed session's slots into a durable business
// record exactly once per call. The record store's unique call-id constraint
// backs the check under races; a creation that loses that race resolves to
// the record the winner created.
type Finalizer struct {
	records  model.RecordStore
	notifier model.Notifier
}

func NewFinalizer(records model.RecordStore, notifier model.Notifier) *Finalizer {
	return &Finalizer{records: records, notifier: notifier}
}

func (f *Finalizer) FinalizeReservation(ctx context.Context, sess *model.Session) (*model.Reservation, error) {
	if err := requireChecklist(sess); err != nil {
		return nil, err
	}

	existing, err := f.records.FindReservationByCall(ctx, sess.CallID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	rec := &model.Reservation{
		ID:           uuid.NewString(),
		CallID:       sess.CallID,
		CustomerName: sess.Fields[model.FieldName],
		Phone:        sess.Fields[model.FieldPhone],
		Email:        sess.Fields[model.FieldEmail],
		Date:         sess.Fields[model.FieldDate],
		Time:         sess.Fields[model.FieldTime],
		PartySize:    sess.Fields[model.FieldPartySize],
		Status:       model.ReservationConfirmed,
		CreatedAt:    time.Now().UTC(),
	}

	if err := f.records.CreateReservation(ctx, rec); err != nil {
		// a concurrent terminal turn may have won the unique call-id insert
		if winner, ferr := f.records.FindReservationByCall(ctx, sess.CallID); ferr == nil && winner != nil {
			return winner, nil
		}
		return nil, err
	}

	logx.Info().
		Str("reservation_id", rec.ID).
		Str("call_id", rec.CallID).
		Str("customer", rec.CustomerName).
		Msg("reservation created")
	f.notifier.ReservationConfirmed(ctx, rec)
	return rec, nil
}

func (f *Finalizer) FinalizeInquiry(ctx context.Context, sess *model.Session) (*model.Inquiry, error) {
	if err := requireChecklist(sess); err != nil {
		return nil, err
	}

	existing, err := f.records.FindInquiryByCall(ctx, sess.CallID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	now := time.Now().UTC()
	inq := &model.Inquiry{
		ID:           uuid.NewString(),
		CallID:       sess.CallID,
		CustomerName: sess.Fields[model.FieldName],
		Phone:        sess.Fields[model.FieldPhone],
		Email:        sess.Fields[model.FieldEmail],
		Reason:       sess.Fields[model.FieldReason],
		Priority:     model.ParsePriority(sess.Fields[model.FieldPriority]),
		CallTime:     now,
		CreatedAt:    now,
	}

	if err := f.records.CreateInquiry(ctx, inq); err != nil {
		if winner, ferr := f.records.FindInquiryByCall(ctx, sess.CallID); ferr == nil && winner != nil {
			return winner, nil
		}
		return nil, err
	}

	logx.Info().
		Str("inquiry_id", inq.ID).
		Str("call_id", inq.CallID).
		Str("customer", inq.CustomerName).
		Str("priority", string(inq.Priority)).
		Msg("financial inquiry created")
	f.notifier.InquiryRecorded(ctx, inq)
	return inq, nil
}

// requireChecklist re-validates completion defensively; it must hold by
// construction when the manager transitions to COMPLETE.
func requireChecklist(sess *model.Session) error {
	if missing := sess.Missing(model.Checklist(sess.Domain)); len(missing) > 0 {
		return fmt.Errorf("finalize with missing fields %v for call %s", missing, sess.CallID)
	}
	return nil
}
