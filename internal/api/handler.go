// Package api exposes the voice webhook and admin endpoints over HTTP.
// Each voice turn is an independent request carrying the transport's call id
// and recognized speech; continuity lives entirely in the session store.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/voicedesk/server/internal/agent/dialog"
	"github.com/voicedesk/server/internal/agent/model"
	logx "github.com/voicedesk/server/pkg/logger"
)

// Handler handles HTTP requests.
type Handler struct {
	dialog   *dialog.Manager
	records  model.RecordStore
	business model.BusinessConfig

	// now is injectable so business-hours routing is testable
	now func() time.Time
}

// NewHandler creates a new handler.
func NewHandler(dialog *dialog.Manager, records model.RecordStore, business model.BusinessConfig) *Handler {
	return &Handler{
		dialog:   dialog,
		records:  records,
		business: business,
		now:      time.Now,
	}
}

// RegisterRoutes registers routes with the echo server.
func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.POST("/voice/restaurant", h.RestaurantCall)
	e.POST("/voice/restaurant/process", h.RestaurantProcess)
	e.POST("/voice/financial", h.FinancialCall)
	e.POST("/voice/financial/process", h.FinancialProcess)

	e.GET("/admin/reservations", h.AdminReservations)
	e.GET("/admin/inquiries", h.AdminInquiries)
	e.GET("/admin/stats", h.AdminStats)

	e.GET("/health", h.Health)
}

// Health returns health status.
func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":     "healthy",
		"service":    "voice agent",
		"restaurant": h.business.RestaurantName,
		"financial":  h.business.CreditUnionName,
	})
}

// RestaurantCall greets a new restaurant caller.
// POST /voice/restaurant
func (h *Handler) RestaurantCall(c echo.Context) error {
	callID := c.FormValue("CallSid")
	logx.Info().Str("call_id", callID).Str("from", c.FormValue("From")).Msg("restaurant call started")

	greeting := fmt.Sprintf(
		"Hello! Welcome to %s. I'm your AI assistant. I can help you make a reservation, answer questions about our menu, or provide information about our restaurant. How can I help you today?",
		h.business.RestaurantName,
	)
	return c.JSON(http.StatusOK, model.TurnResponse{
		ReplyText:         greeting,
		ContinueListening: true,
	})
}

// RestaurantProcess handles one restaurant utterance.
// POST /voice/restaurant/process
func (h *Handler) RestaurantProcess(c echo.Context) error {
	return h.process(c, model.DomainRestaurant)
}

// FinancialCall greets a financial caller. During business hours the call is
// handed straight to a human; after hours the AI collects callback details.
// POST /voice/financial
func (h *Handler) FinancialCall(c echo.Context) error {
	callID := c.FormValue("CallSid")
	logx.Info().Str("call_id", callID).Str("from", c.FormValue("From")).Msg("financial call started")

	if h.business.IsBusinessHours(h.now()) {
		return c.JSON(http.StatusOK, model.TurnResponse{
			ReplyText: fmt.Sprintf(
				"Thank you for calling %s. Please hold while I transfer you to our customer service team.",
				h.business.CreditUnionName,
			),
			TransferToHuman: true,
		})
	}

	greeting := fmt.Sprintf(
		"Thank you for calling %s. Our offices are currently closed, but I'm here to help collect your information so our team can assist you first thing tomorrow. This will just take a moment.",
		h.business.CreditUnionName,
	)
	return c.JSON(http.StatusOK, model.TurnResponse{
		ReplyText:         greeting,
		ContinueListening: true,
	})
}

// FinancialProcess handles one after-hours financial utterance.
// POST /voice/financial/process
func (h *Handler) FinancialProcess(c echo.Context) error {
	return h.process(c, model.DomainFinancial)
}

func (h *Handler) process(c echo.Context, domain model.Domain) error {
	req := model.TurnRequest{
		CallID:    c.FormValue("CallSid"),
		Domain:    domain,
		Utterance: c.FormValue("SpeechResult"),
	}
	resp := h.dialog.Turn(c.Request().Context(), req)
	return c.JSON(http.StatusOK, resp)
}

// AdminReservations returns recent reservations.
// GET /admin/reservations
func (h *Handler) AdminReservations(c echo.Context) error {
	reservations, err := h.records.ListReservations(c.Request().Context(), 50)
	if err != nil {
		logx.Error().Err(err).Msg("failed to list reservations")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list reservations"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":        len(reservations),
		"reservations": reservations,
	})
}

// AdminInquiries returns recent financial inquiries.
// GET /admin/inquiries
func (h *Handler) AdminInquiries(c echo.Context) error {
	inquiries, err := h.records.ListInquiries(c.Request().Context(), 50)
	if err != nil {
		logx.Error().Err(err).Msg("failed to list inquiries")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to list inquiries"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total":     len(inquiries),
		"inquiries": inquiries,
	})
}

// AdminStats returns system counters.
// GET /admin/stats
func (h *Handler) AdminStats(c echo.Context) error {
	reservations, inquiries, err := h.records.Counts(c.Request().Context())
	if err != nil {
		logx.Error().Err(err).Msg("failed to count records")
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to count records"})
	}
	return c.JSON(http.StatusOK, map[string]any{
		"total_reservations": reservations,
		"total_inquiries":    inquiries,
		"system_status":      "operational",
	})
}
