package info

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk/server/internal/agent/model"
)

type fakeMenu struct {
	lastQuery string
	items     []model.MenuItem
}

func (f *fakeMenu) SearchMenuItems(ctx context.Context, query string) ([]model.MenuItem, error) {
	f.lastQuery = query
	return f.items, nil
}

func TestMenuLookupUsesSpecificKeyword(t *testing.T) {
	menu := &fakeMenu{items: []model.MenuItem{
		{Name: "Grilled Salmon", Description: "Fresh Atlantic salmon", Price: "$24.99"},
	}}
	p := NewProvider(menu, model.BusinessConfig{})

	answer, err := p.Lookup(context.Background(), model.TopicMenu, "do you have salmon on the menu?")
	require.NoError(t, err)

	assert.Equal(t, "salmon", menu.lastQuery, "generic words like menu must not drive the search")
	assert.Contains(t, answer, "Grilled Salmon")
	assert.Contains(t, answer, "$24.99")
}

func TestMenuLookupWithoutMatchesStaysHelpful(t *testing.T) {
	p := NewProvider(&fakeMenu{}, model.BusinessConfig{})

	answer, err := p.Lookup(context.Background(), model.TopicMenu, "what's on the menu")
	require.NoError(t, err)
	assert.Contains(t, answer, "information about our menu")
}

func TestHoursLookupUsesBusinessConfig(t *testing.T) {
	p := NewProvider(&fakeMenu{}, model.BusinessConfig{
		RestaurantHours:   "Tuesday through Sunday from 5 PM to 10 PM",
		RestaurantAddress: "123 Main Street",
	})

	answer, err := p.Lookup(context.Background(), model.TopicHours, "where are you located")
	require.NoError(t, err)
	assert.Contains(t, answer, "Tuesday through Sunday")
	assert.Contains(t, answer, "123 Main Street")
}

func TestUnknownTopicErrors(t *testing.T) {
	p := NewProvider(&fakeMenu{}, model.BusinessConfig{})

	_, err := p.Lookup(context.Background(), "weather", "")
	assert.Error(t, err)
}
