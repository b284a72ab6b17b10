package classify

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/voicedesk/server/internal/agent/model"
)

// maxReplyLen bounds the model reply before parsing.
const maxReplyLen = 8 * 1024

var knownIntents = map[model.Domain]map[string]bool{
	model.DomainRestaurant: {
		model.IntentReservation:   true,
		model.IntentMenuInquiry:   true,
		model.IntentHoursLocation: true,
		model.IntentOther:         true,
	},
	model.DomainFinancial: {
		model.IntentAccountInquiry:  true,
		model.IntentLoanApplication: true,
		model.IntentGeneral:         true,
	},
}

// parseClassification decodes the model's JSON reply defensively. Anything
// unexpected is an error; the caller falls back to the rule path.
func parseClassification(content string, domain model.Domain) (model.Classification, error) {
	var cls model.Classification

	if len(content) > maxReplyLen {
		return cls, fmt.Errorf("model reply too large (%d bytes)", len(content))
	}
	content = stripCodeFence(strings.TrimSpace(content))
	if !strings.HasPrefix(content, "{") || !strings.HasSuffix(content, "}") {
		return cls, fmt.Errorf("model reply is not a json object")
	}

	var raw struct {
		Intent     string  `json:"intent"`
		Confidence float64 `json:"confidence"`
		Priority   string  `json:"priority"`
	}
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return cls, fmt.Errorf("decode model reply: %w", err)
	}

	intent := strings.ToUpper(strings.TrimSpace(raw.Intent))
	if !knownIntents[domain][intent] {
		return cls, fmt.Errorf("unknown intent %q for domain %s", raw.Intent, domain)
	}
	if raw.Confidence < 0 || raw.Confidence > 1 {
		return cls, fmt.Errorf("confidence %v out of range", raw.Confidence)
	}

	cls.Intent = intent
	cls.Confidence = raw.Confidence
	if domain == model.DomainFinancial {
		cls.Priority = model.ParsePriority(strings.ToUpper(strings.TrimSpace(raw.Priority)))
	}
	return cls, nil
}

func stripCodeFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
