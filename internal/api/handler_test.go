package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk/server/internal/agent/classify"
	"github.com/voicedesk/server/internal/agent/dialog"
	"github.com/voicedesk/server/internal/agent/extract"
	"github.com/voicedesk/server/internal/agent/model"
	"github.com/voicedesk/server/internal/agent/repo"
	"github.com/voicedesk/server/internal/info"
	"github.com/voicedesk/server/internal/notify"
	"github.com/voicedesk/server/internal/store"
)

var testBusiness = model.BusinessConfig{
	RestaurantName:     "Mario's Italian Restaurant",
	RestaurantHours:    "Monday through Sunday from 11 AM to 10 PM",
	RestaurantAddress:  "123 Main Street",
	CreditUnionName:    "Community First Credit Union",
	BusinessHoursStart: 9,
	BusinessHoursEnd:   17,
}

func newTestServer(t *testing.T) (*echo.Echo, *Handler) {
	t.Helper()

	records, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "voicedesk_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { records.Close() })
	require.NoError(t, records.SeedMenu(t.Context()))

	manager := dialog.NewManager(
		repo.NewMemorySessionRepository(),
		classify.NewRuleBased(),
		extract.NewRuleBased(),
		dialog.NewFinalizer(records, notify.NewLogNotifier(testBusiness)),
		info.NewProvider(records, testBusiness),
	)

	h := NewHandler(manager, records, testBusiness)
	e := echo.New()
	h.RegisterRoutes(e)
	return e, h
}

func postForm(e *echo.Echo, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decodeTurn(t *testing.T, rec *httptest.ResponseRecorder) model.TurnResponse {
	t.Helper()
	var resp model.TurnResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "healthy", body["status"])
	assert.Equal(t, "Mario's Italian Restaurant", body["restaurant"])
}

func TestRestaurantCallGreets(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postForm(e, "/voice/restaurant", url.Values{"CallSid": {"CA1"}, "From": {"+15550001111"}})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Contains(t, resp.ReplyText, "Welcome to Mario's Italian Restaurant")
	assert.True(t, resp.ContinueListening)
	assert.False(t, resp.TransferToHuman)
}

func TestFinancialCallTransfersDuringBusinessHours(t *testing.T) {
	e, h := newTestServer(t)
	h.now = func() time.Time {
		return time.Date(2025, 3, 3, 10, 0, 0, 0, time.UTC) // Monday 10:00
	}

	rec := postForm(e, "/voice/financial", url.Values{"CallSid": {"CA2"}})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Contains(t, resp.ReplyText, "transfer you to our customer service team")
	assert.True(t, resp.TransferToHuman)
	assert.False(t, resp.ContinueListening)
}

func TestFinancialCallCollectsAfterHours(t *testing.T) {
	e, h := newTestServer(t)
	h.now = func() time.Time {
		return time.Date(2025, 3, 3, 22, 0, 0, 0, time.UTC) // Monday 22:00
	}

	rec := postForm(e, "/voice/financial", url.Values{"CallSid": {"CA3"}})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Contains(t, resp.ReplyText, "currently closed")
	assert.True(t, resp.ContinueListening)
	assert.False(t, resp.TransferToHuman)
}

func TestRestaurantProcessAsksForName(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postForm(e, "/voice/restaurant/process", url.Values{
		"CallSid":      {"CA4"},
		"SpeechResult": {"I'd like to make a reservation"},
	})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Contains(t, resp.ReplyText, "your full name")
	assert.True(t, resp.ContinueListening)
}

func TestProcessWithoutSpeechReprompts(t *testing.T) {
	e, _ := newTestServer(t)

	rec := postForm(e, "/voice/restaurant/process", url.Values{"CallSid": {"CA5"}})

	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeTurn(t, rec)
	assert.Contains(t, resp.ReplyText, "didn't catch that")
	assert.True(t, resp.ContinueListening)
}

func TestFinancialCallEndToEndOverHTTP(t *testing.T) {
	e, _ := newTestServer(t)
	turn := func(speech string) model.TurnResponse {
		rec := postForm(e, "/voice/financial/process", url.Values{
			"CallSid":      {"CA6"},
			"SpeechResult": {speech},
		})
		require.Equal(t, http.StatusOK, rec.Code)
		return decodeTurn(t, rec)
	}

	resp := turn("someone made an unauthorized charge on my account")
	assert.True(t, resp.ContinueListening)

	resp = turn("my name is jane doe")
	assert.True(t, resp.ContinueListening)

	resp = turn("call me back at 555-123-4567")
	assert.Contains(t, resp.ReplyText, "Thank you, Jane Doe!")
	assert.False(t, resp.ContinueListening)

	req := httptest.NewRequest(http.MethodGet, "/admin/inquiries", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Total     int             `json:"total"`
		Inquiries []model.Inquiry `json:"inquiries"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	require.Equal(t, 1, body.Total)
	assert.Equal(t, "Jane Doe", body.Inquiries[0].CustomerName)
	assert.Equal(t, model.PriorityUrgent, body.Inquiries[0].Priority)
	assert.Equal(t, "someone made an unauthorized charge on my account", body.Inquiries[0].Reason)
}

func TestAdminStats(t *testing.T) {
	e, _ := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, float64(0), body["total_reservations"])
	assert.Equal(t, "operational", body["system_status"])
}
