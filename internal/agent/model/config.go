package model

import "time"

// ================ Config ================

// BusinessConfig carries per-deployment business facts. It is passed into
// the dialogue manager and collaborators at construction time so tests can
// exercise multiple configurations in isolation.
type BusinessConfig struct {
	RestaurantName    string `envconfig:"RESTAURANT_NAME" default:"Restaurant"`
	RestaurantPhone   string `envconfig:"RESTAURANT_PHONE"`
	RestaurantAddress string `envconfig:"RESTAURANT_ADDRESS" default:"[Your Restaurant Address]"`
	RestaurantHours   string `envconfig:"RESTAURANT_HOURS" default:"Monday through Sunday from 11 AM to 10 PM"`

	CreditUnionName  string `envconfig:"CREDIT_UNION_NAME" default:"Credit Union"`
	CreditUnionPhone string `envconfig:"CREDIT_UNION_PHONE"`

	// Business hours window in 24-hour local time, Monday through Friday.
	BusinessHoursStart int    `envconfig:"BUSINESS_HOURS_START" default:"9"`
	BusinessHoursEnd   int    `envconfig:"BUSINESS_HOURS_END" default:"17"`
	OncallStaffPhone   string `envconfig:"ONCALL_STAFF_PHONE"`
}

// IsBusinessHours reports whether the financial line is staffed at the given
// time. Calls inside the window transfer straight to a human.
func (c BusinessConfig) IsBusinessHours(now time.Time) bool {
	wd := now.Weekday()
	if wd == time.Saturday || wd == time.Sunday {
		return false
	}
	h := now.Hour()
	return h >= c.BusinessHoursStart && h < c.BusinessHoursEnd
}

// BackendModelConfig configures the hosted language model used by the
// model-backed classifier and extractor. An empty API key leaves the service
// on the deterministic rule path.
type BackendModelConfig struct {
	Model       string  `envconfig:"BACKEND_MODEL" default:"gemini-2.5-flash-lite"`
	MaxTokens   int     `envconfig:"BACKEND_MAX_TOKENS" default:"300"`
	Temperature float32 `envconfig:"BACKEND_TEMPERATURE" default:"0.1"`
	Timeout     string  `envconfig:"BACKEND_TIMEOUT" default:"2s"`
}

// SessionConfig controls session retention in the store.
type SessionConfig struct {
	TTL string `envconfig:"SESSION_TTL" default:"30m"`
}
