// Package notify dispatches staff and customer notifications for finalized
// records. Delivery is fire-and-forget: failures are logged here and never
// reach the dialogue manager.
package notify

import (
	"context"
	"fmt"

	"github.com/voicedesk/server/internal/agent/model"
	logx "github.com/voicedesk/server/pkg/logger"
)

// LogNotifier composes the outbound message texts and logs them instead of
// sending. It stands in for an SMS gateway when no delivery credentials are
// configured, matching the service's demo mode.
type LogNotifier struct {
	business model.BusinessConfig
}

func NewLogNotifier(business model.BusinessConfig) *LogNotifier {
	return &LogNotifier{business: business}
}

func (n *LogNotifier) ReservationConfirmed(_ context.Context, r *model.Reservation) {
	msg := fmt.Sprintf(
		"Hi %s! Your table for %s is confirmed for %s at %s at %s. Call %s for changes.",
		r.CustomerName, r.PartySize, r.Date, r.Time, n.business.RestaurantName, n.business.RestaurantPhone,
	)
	logx.Info().
		Str("reservation_id", r.ID).
		Str("to", r.Phone).
		Str("message", msg).
		Msg("would send reservation confirmation")
}

func (n *LogNotifier) InquiryRecorded(_ context.Context, i *model.Inquiry) {
	logx.Info().
		Str("inquiry_id", i.ID).
		Str("priority", string(i.Priority)).
		Str("customer", i.CustomerName).
		Msg("staff notification for new inquiry")

	if (i.Priority == model.PriorityUrgent || i.Priority == model.PriorityHigh) && n.business.OncallStaffPhone != "" {
		reason := i.Reason
		if len(reason) > 100 {
			reason = reason[:100] + "..."
		}
		msg := fmt.Sprintf(
			"URGENT: New %s priority inquiry from %s (%s). Reason: %s",
			i.Priority, i.CustomerName, i.Phone, reason,
		)
		logx.Info().
			Str("to", n.business.OncallStaffPhone).
			Str("message", msg).
			Msg("would send urgent staff SMS")
	}
}

var _ model.Notifier = (*LogNotifier)(nil)
