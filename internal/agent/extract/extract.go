// Package extract recognizes structured fields in free-form utterance text
// and merges them into the slots already collected for a call.
package extract

import (
	"context"
	"regexp"
	"strings"

	"github.com/voicedesk/server/internal/agent/model"
)

// Extractor returns a new field set that is known plus any newly recognized
// values. A field already set in known is never overwritten; priority may
// only escalate.
type Extractor interface {
	Extract(ctx context.Context, text string, known map[string]string, domain model.Domain) map[string]string
}

var (
	phonePattern = regexp.MustCompile(`(\+?1[\s.-]?)?\(?([0-9]{3})\)?[\s.-]?([0-9]{3})[\s.-]?([0-9]{4})`)
	emailPattern = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)

	datePattern    = regexp.MustCompile(`(?i)\b(?:january|february|march|april|may|june|july|august|september|october|november|december)\s+\d{1,2}(?:st|nd|rd|th)?\b|\b\d{1,2}/\d{1,2}(?:/\d{2,4})?\b|\b(?:today|tomorrow|tonight)\b`)
	timePattern    = regexp.MustCompile(`(?i)\b\d{1,2}(?::\d{2})?\s*(?:a\.?m\.?|p\.?m\.?)\b|\b(?:noon|midnight)\b`)
	partyPattern   = regexp.MustCompile(`(?i)\b(?:for|party of)\s+(\d{1,2}|one|two|three|four|five|six|seven|eight|nine|ten|eleven|twelve)\b`)
	peoplePattern  = regexp.MustCompile(`(?i)\b(\d{1,2})\s+(?:people|persons|guests)\b`)
	nonDigitOrPlus = regexp.MustCompile(`[^0-9]`)
)

var numberWords = map[string]string{
	"one": "1", "two": "2", "three": "3", "four": "4",
	"five": "5", "six": "6", "seven": "7", "eight": "8",
	"nine": "9", "ten": "10", "eleven": "11", "twelve": "12",
}

// Priority keyword sets, same precedence as the classifier: urgent always
// wins over high.
var (
	urgentKeywords = []string{"fraud", "stolen", "unauthorized", "locked", "emergency", "hack"}
	highKeywords   = []string{"payment", "due", "deadline", "billing", "dispute", "access", "urgent"}
)

var nameCues = []string{"my name is", "i am", "this is"}

// RuleBased is the deterministic pattern-matching extractor.
type RuleBased struct{}

func NewRuleBased() *RuleBased {
	return &RuleBased{}
}

func (r *RuleBased) Extract(_ context.Context, text string, known map[string]string, domain model.Domain) map[string]string {
	overlay := map[string]string{}

	if phone := ExtractPhone(text); phone != "" {
		overlay[model.FieldPhone] = phone
	}
	if email := ExtractEmail(text); email != "" {
		overlay[model.FieldEmail] = email
	}
	if known[model.FieldName] == "" {
		if name := extractName(text); name != "" {
			overlay[model.FieldName] = name
		}
	}

	switch domain {
	case model.DomainRestaurant:
		if d := datePattern.FindString(text); d != "" {
			overlay[model.FieldDate] = d
		}
		if t := timePattern.FindString(text); t != "" {
			overlay[model.FieldTime] = t
		}
		if size := extractPartySize(text); size != "" {
			overlay[model.FieldPartySize] = size
		}

	case model.DomainFinancial:
		if known[model.FieldReason] == "" {
			overlay[model.FieldReason] = text
		}
		overlay[model.FieldPriority] = string(DetectPriority(text))
	}

	return model.MergeFields(known, overlay)
}

// ExtractPhone finds a North American number tolerant of separators and an
// optional country prefix, normalized to +1 plus ten digits.
func ExtractPhone(text string) string {
	m := phonePattern.FindStringSubmatch(text)
	if m == nil {
		return ""
	}
	digits := nonDigitOrPlus.ReplaceAllString(m[2]+m[3]+m[4], "")
	if len(digits) != 10 {
		return ""
	}
	return "+1" + digits
}

// ExtractEmail finds a standard local-part "@" domain address.
func ExtractEmail(text string) string {
	return emailPattern.FindString(text)
}

// extractName is a best-effort heuristic: it only fires on an introduction
// cue and takes the one or two tokens after the cue word, title-cased. False
// positives are accepted.
func extractName(text string) string {
	lower := strings.ToLower(text)
	cued := false
	for _, cue := range nameCues {
		if strings.Contains(lower, cue) {
			cued = true
			break
		}
	}
	if !cued {
		return ""
	}

	words := strings.Fields(text)
	start := -1
	for i, w := range words {
		switch strings.ToLower(strings.Trim(w, ",.!?")) {
		case "is", "am":
			start = i + 1
		}
		if start > 0 {
			break
		}
	}
	if start <= 0 || start >= len(words) {
		return ""
	}

	end := start + 2
	if end > len(words) {
		end = len(words)
	}
	parts := make([]string, 0, 2)
	for _, w := range words[start:end] {
		w = strings.Trim(w, ",.!?")
		if w == "" {
			continue
		}
		parts = append(parts, titleCase(w))
	}
	return strings.Join(parts, " ")
}

func extractPartySize(text string) string {
	if m := partyPattern.FindStringSubmatch(text); m != nil {
		return normalizeCount(m[1])
	}
	if m := peoplePattern.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	return ""
}

func normalizeCount(v string) string {
	if n, ok := numberWords[strings.ToLower(v)]; ok {
		return n
	}
	return v
}

// DetectPriority derives the urgency of one utterance from keyword sets.
// Urgent keywords take precedence over high-priority ones regardless of
// where they appear in the text.
func DetectPriority(text string) model.Priority {
	lower := strings.ToLower(text)
	for _, kw := range urgentKeywords {
		if strings.Contains(lower, kw) {
			return model.PriorityUrgent
		}
	}
	for _, kw := range highKeywords {
		if strings.Contains(lower, kw) {
			return model.PriorityHigh
		}
	}
	return model.PriorityMedium
}

func titleCase(w string) string {
	if w == "" {
		return w
	}
	return strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
}

var _ Extractor = (*RuleBased)(nil)
