package extract

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/voicedesk/server/internal/agent/model"
)

func TestExtractPhoneNormalizes(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"call me at (555) 123-4567", "+15551234567"},
		{"my number is 555-123-4567", "+15551234567"},
		{"it's 5551234567", "+15551234567"},
		{"reach me on 555.123.4567", "+15551234567"},
		{"1-555-123-4567 works", "+15551234567"},
		{"+1 555 123 4567", "+15551234567"},
		{"no number here", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractPhone(tt.text), "text %q", tt.text)
	}
}

func TestExtractEmail(t *testing.T) {
	assert.Equal(t, "jane.doe@example.com", ExtractEmail("you can email jane.doe@example.com anytime"))
	assert.Equal(t, "", ExtractEmail("jane.doe at example dot com"))
}

func TestExtractNameNeedsCue(t *testing.T) {
	r := NewRuleBased()
	ctx := context.Background()

	got := r.Extract(ctx, "my name is john smith", map[string]string{}, model.DomainFinancial)
	assert.Equal(t, "John Smith", got[model.FieldName])

	got = r.Extract(ctx, "this is sarah", map[string]string{}, model.DomainFinancial)
	assert.Equal(t, "Sarah", got[model.FieldName])

	// no introduction cue, no name
	got = r.Extract(ctx, "john smith here", map[string]string{}, model.DomainRestaurant)
	assert.Empty(t, got[model.FieldName])
}

func TestFirstValueWins(t *testing.T) {
	r := NewRuleBased()
	ctx := context.Background()

	known := map[string]string{model.FieldName: "John Smith"}
	got := r.Extract(ctx, "my name is somebody else", known, model.DomainRestaurant)
	assert.Equal(t, "John Smith", got[model.FieldName])

	known = map[string]string{model.FieldPhone: "+15551234567"}
	got = r.Extract(ctx, "actually use 555-999-8888", known, model.DomainRestaurant)
	assert.Equal(t, "+15551234567", got[model.FieldPhone])
}

func TestExtractIsPureOnKnown(t *testing.T) {
	r := NewRuleBased()
	known := map[string]string{model.FieldName: "John"}

	got := r.Extract(context.Background(), "call 555-123-4567", known, model.DomainRestaurant)

	assert.Equal(t, "+15551234567", got[model.FieldPhone])
	assert.NotContains(t, known, model.FieldPhone, "input map must not be mutated")
}

func TestExtractReservationDetails(t *testing.T) {
	r := NewRuleBased()
	got := r.Extract(context.Background(), "March 5th at 7pm for four", map[string]string{}, model.DomainRestaurant)

	assert.Equal(t, "March 5th", got[model.FieldDate])
	assert.Equal(t, "7pm", got[model.FieldTime])
	assert.Equal(t, "4", got[model.FieldPartySize])
}

func TestExtractPartySizeForms(t *testing.T) {
	tests := []struct {
		text string
		want string
	}{
		{"a table for two please", "2"},
		{"party of 6", "6"},
		{"we are 4 people", "4"},
		{"for my anniversary", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, extractPartySize(tt.text), "text %q", tt.text)
	}
}

func TestReasonStoredVerbatimOnce(t *testing.T) {
	r := NewRuleBased()
	ctx := context.Background()

	got := r.Extract(ctx, "my card was stolen, please help", map[string]string{}, model.DomainFinancial)
	assert.Equal(t, "my card was stolen, please help", got[model.FieldReason])

	// later utterances never replace the reason
	got = r.Extract(ctx, "my name is jane", got, model.DomainFinancial)
	assert.Equal(t, "my card was stolen, please help", got[model.FieldReason])
}

func TestPriorityEscalatesNeverDowngrades(t *testing.T) {
	r := NewRuleBased()
	ctx := context.Background()

	got := r.Extract(ctx, "my payment is past due", map[string]string{}, model.DomainFinancial)
	assert.Equal(t, string(model.PriorityHigh), got[model.FieldPriority])

	got = r.Extract(ctx, "also someone hacked my account, emergency", got, model.DomainFinancial)
	assert.Equal(t, string(model.PriorityUrgent), got[model.FieldPriority])

	// a calm follow-up turn must not downgrade
	got = r.Extract(ctx, "my name is jane doe", got, model.DomainFinancial)
	assert.Equal(t, string(model.PriorityUrgent), got[model.FieldPriority])
}

func TestDetectPriorityPrecedence(t *testing.T) {
	// urgent keyword beats high keyword in the same utterance
	assert.Equal(t, model.PriorityUrgent, DetectPriority("payment due and card stolen"))
	assert.Equal(t, model.PriorityHigh, DetectPriority("my payment deadline is tomorrow"))
	assert.Equal(t, model.PriorityMedium, DetectPriority("just checking in"))
}

func TestParseFieldReply(t *testing.T) {
	overlay, err := parseFieldReply(`{"name": "Jane Doe", "phone": "+15551234567", "priority": "urgent", "member_number": "12345", "email": null}`)
	assert.NoError(t, err)
	assert.Equal(t, "Jane Doe", overlay[model.FieldName])
	assert.Equal(t, "+15551234567", overlay[model.FieldPhone])
	assert.Equal(t, string(model.PriorityUrgent), overlay[model.FieldPriority])
	assert.NotContains(t, overlay, "member_number", "unknown fields are dropped")
	assert.NotContains(t, overlay, model.FieldEmail, "null values are dropped")
}
