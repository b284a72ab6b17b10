package extract

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/voicedesk/server/internal/agent/model"
	logx "github.com/voicedesk/server/pkg/logger"
)

const extractSystemPrompt = "Extract customer information and respond with only valid JSON."

const extractPrompt = `Extract customer information from: %q
Current data: %s

Extract and update any of these fields:
- name: full customer name
- phone: phone number (format as +1XXXXXXXXXX)
- email: email address (if provided)
- reason: reason for calling or issue description
- date: requested reservation date
- time: requested reservation time
- party_size: number of guests

Determine priority based on keywords:
- URGENT: fraud, account locked, emergency, stolen card
- HIGH: payment due, loan deadline, cannot access account
- MEDIUM: general questions, account information
- LOW: information request, general inquiry

Respond with ONLY a valid JSON object of the recognized fields.
Include a "priority" field with the determined priority level.`

// allowed names a model reply may set; anything else is dropped.
var allowedFields = map[string]bool{
	model.FieldName:      true,
	model.FieldPhone:     true,
	model.FieldEmail:     true,
	model.FieldReason:    true,
	model.FieldDate:      true,
	model.FieldTime:      true,
	model.FieldPartySize: true,
	model.FieldPriority:  true,
}

// ModelBacked extracts with a hosted chat model under a bounded timeout and
// falls back to the rule recognizers on any failure. Model output passes
// through the same first-value-wins merge as the rule path, so the slot
// invariants hold regardless of backend.
type ModelBacked struct {
	chatModel einomodel.BaseChatModel
	fallback  *RuleBased
	timeout   time.Duration
}

func NewModelBacked(chatModel einomodel.BaseChatModel, timeout time.Duration) *ModelBacked {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	return &ModelBacked{
		chatModel: chatModel,
		fallback:  NewRuleBased(),
		timeout:   timeout,
	}
}

func (m *ModelBacked) Extract(ctx context.Context, text string, known map[string]string, domain model.Domain) map[string]string {
	overlay, err := m.extractWithModel(ctx, text, known)
	if err != nil {
		logx.Warn().Err(err).Str("domain", string(domain)).Msg("model extraction failed, using rule fallback")
		return m.fallback.Extract(ctx, text, known, domain)
	}

	if domain == model.DomainFinancial && known[model.FieldReason] == "" && overlay[model.FieldReason] == "" {
		overlay[model.FieldReason] = text
	}
	if domain != model.DomainFinancial {
		delete(overlay, model.FieldReason)
		delete(overlay, model.FieldPriority)
	}

	return model.MergeFields(known, overlay)
}

func (m *ModelBacked) extractWithModel(ctx context.Context, text string, known map[string]string) (overlay map[string]string, err error) {
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "extractor").Msgf("panic recovered: %v", r)
			err = fmt.Errorf("extractor panic")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	knownJSON, err := json.Marshal(known)
	if err != nil {
		return nil, fmt.Errorf("marshal known fields: %w", err)
	}

	messages := []*schema.Message{
		schema.SystemMessage(extractSystemPrompt),
		schema.UserMessage(fmt.Sprintf(extractPrompt, text, knownJSON)),
	}

	out, err := m.chatModel.Generate(ctx, messages)
	if err != nil {
		return nil, fmt.Errorf("generate: %w", err)
	}
	if out == nil || out.Content == "" {
		return nil, fmt.Errorf("empty model reply")
	}

	return parseFieldReply(out.Content)
}

func parseFieldReply(content string) (map[string]string, error) {
	content = strings.TrimSpace(content)
	if fenced := strings.TrimPrefix(content, "```json"); fenced != content {
		content = strings.TrimSuffix(strings.TrimSpace(fenced), "```")
	} else if fenced := strings.TrimPrefix(content, "```"); fenced != content {
		content = strings.TrimSuffix(strings.TrimSpace(fenced), "```")
	}
	content = strings.TrimSpace(content)

	var raw map[string]any
	if err := json.Unmarshal([]byte(content), &raw); err != nil {
		return nil, fmt.Errorf("decode model reply: %w", err)
	}

	overlay := map[string]string{}
	for k, v := range raw {
		k = strings.ToLower(strings.TrimSpace(k))
		if !allowedFields[k] {
			continue
		}
		s, ok := v.(string)
		if !ok {
			s = strings.TrimSpace(fmt.Sprint(v))
		}
		s = strings.TrimSpace(s)
		if s == "" || s == "null" || s == "<nil>" {
			continue
		}
		if k == model.FieldPriority {
			s = string(model.ParsePriority(strings.ToUpper(s)))
		}
		overlay[k] = s
	}
	return overlay, nil
}

var _ Extractor = (*ModelBacked)(nil)
