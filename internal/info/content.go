// Package info answers informational questions from injected business
// content: menu facts from the record store, hours and address from the
// deployment configuration.
package info

import (
	"context"
	"fmt"
	"strings"

	"github.com/voicedesk/server/internal/agent/model"
)

// MenuSearcher is the slice of the record store this provider needs.
type MenuSearcher interface {
	SearchMenuItems(ctx context.Context, query string) ([]model.MenuItem, error)
}

// Provider implements model.ContentProvider.
type Provider struct {
	menu     MenuSearcher
	business model.BusinessConfig
}

func NewProvider(menu MenuSearcher, business model.BusinessConfig) *Provider {
	return &Provider{menu: menu, business: business}
}

func (p *Provider) Lookup(ctx context.Context, topic, query string) (string, error) {
	switch topic {
	case model.TopicMenu:
		return p.menuAnswer(ctx, query)
	case model.TopicHours:
		return p.hoursAnswer(), nil
	default:
		return "", fmt.Errorf("unknown content topic %q", topic)
	}
}

func (p *Provider) menuAnswer(ctx context.Context, query string) (string, error) {
	items, err := p.menu.SearchMenuItems(ctx, bestMenuKeyword(query))
	if err != nil {
		return "", err
	}
	if len(items) == 0 {
		return "I can help you with information about our menu. What would you like to know about our dishes?", nil
	}

	var b strings.Builder
	b.WriteString("Here's what I found on our menu: ")
	for i, item := range items {
		if i > 0 {
			b.WriteString("; ")
		}
		fmt.Fprintf(&b, "%s, %s, %s", item.Name, item.Description, item.Price)
	}
	b.WriteString(".")
	return b.String(), nil
}

func (p *Provider) hoursAnswer() string {
	return fmt.Sprintf(
		"We're open %s. We're located at %s. Is there anything else I can help you with?",
		p.business.RestaurantHours, p.business.RestaurantAddress,
	)
}

// bestMenuKeyword picks the most specific token of the utterance to match
// against menu rows; very short or generic words would match everything.
func bestMenuKeyword(query string) string {
	best := ""
	for _, w := range strings.Fields(strings.ToLower(query)) {
		w = strings.Trim(w, ",.!?")
		if isGenericMenuWord(w) || len(w) < 4 {
			continue
		}
		if len(w) > len(best) {
			best = w
		}
	}
	return best
}

func isGenericMenuWord(w string) bool {
	switch w {
	case "menu", "food", "dish", "dishes", "price", "cost", "have", "what", "what's", "your", "about", "tell", "know":
		return true
	}
	return false
}

var _ model.ContentProvider = (*Provider)(nil)
