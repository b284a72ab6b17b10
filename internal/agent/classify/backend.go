package classify

import (
	"context"
	"fmt"
	"time"

	einomodel "github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/voicedesk/server/internal/agent/model"
	logx "github.com/voicedesk/server/pkg/logger"
)

const classifySystemPrompt = "You are an AI that classifies customer requests. Always respond with valid JSON and nothing else."

const restaurantClassifyPrompt = `Classify this restaurant customer request:
%q

Categories:
- RESERVATION: booking, changing, canceling reservations
- MENU_INQUIRY: questions about food, ingredients, prices
- HOURS_LOCATION: operating hours, address, directions
- OTHER: anything else

Respond in JSON format:
{"intent": "CATEGORY", "confidence": 0.9}`

const financialClassifyPrompt = `Classify this financial services request:
%q

Categories:
- ACCOUNT_INQUIRY: account questions, balance, statements, fraud, locked accounts
- LOAN_APPLICATION: loan questions, applications
- GENERAL: general questions

Priority levels:
- URGENT: fraud, locked account, emergency
- HIGH: payment issues, loan deadlines
- MEDIUM: general inquiries
- LOW: information requests

Respond in JSON format:
{"intent": "CATEGORY", "priority": "LEVEL", "confidence": 0.9}`

// ModelBacked classifies with a hosted chat model under a bounded timeout and
// falls back to the deterministic rules on any failure, malformed reply, or
// latency. Callers never observe an error.
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

func (m *ModelBacked) Classify(ctx context.Context, text string, domain model.Domain) model.Classification {
	cls, err := m.classifyWithModel(ctx, text, domain)
	if err != nil {
		logx.Warn().Err(err).Str("domain", string(domain)).Msg("model classification failed, using rule fallback")
		return m.fallback.Classify(ctx, text, domain)
	}
	return cls
}

func (m *ModelBacked) classifyWithModel(ctx context.Context, text string, domain model.Domain) (cls model.Classification, err error) {
	// panic safety: a broken backend must never take the turn down
	defer func() {
		if r := recover(); r != nil {
			logx.Error().Str("component", "classifier").Msgf("panic recovered: %v", r)
			err = fmt.Errorf("classifier panic")
		}
	}()

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	var prompt string
	switch domain {
	case model.DomainRestaurant:
		prompt = fmt.Sprintf(restaurantClassifyPrompt, text)
	case model.DomainFinancial:
		prompt = fmt.Sprintf(financialClassifyPrompt, text)
	default:
		return cls, fmt.Errorf("unknown domain %q", domain)
	}

	messages := []*schema.Message{
		schema.SystemMessage(classifySystemPrompt),
		schema.UserMessage(prompt),
	}

	out, err := m.chatModel.Generate(ctx, messages)
	if err != nil {
		return cls, fmt.Errorf("generate: %w", err)
	}
	if out == nil || out.Content == "" {
		return cls, fmt.Errorf("empty model reply")
	}

	return parseClassification(out.Content, domain)
}

var _ Classifier = (*ModelBacked)(nil)
