package repo

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voicedesk/server/internal/agent/model"
	errx "github.com/voicedesk/server/internal/core/error"
)

func TestMemoryRepoGetMissingReturnsNil(t *testing.T) {
	r := NewMemorySessionRepository()

	sess, err := r.Get(context.Background(), "unknown")
	require.NoError(t, err)
	assert.Nil(t, sess)
}

func TestMemoryRepoPutBumpsVersion(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	sess := model.NewSession("c1", model.DomainFinancial)
	require.NoError(t, r.Put(ctx, sess, 0))
	assert.Equal(t, int64(1), sess.Version)

	sess.Fields[model.FieldName] = "Jane"
	require.NoError(t, r.Put(ctx, sess, 1))
	assert.Equal(t, int64(2), sess.Version)

	loaded, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", loaded.Fields[model.FieldName])
	assert.Equal(t, int64(2), loaded.Version)
}

func TestMemoryRepoRejectsStaleVersion(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	sess := model.NewSession("c1", model.DomainRestaurant)
	require.NoError(t, r.Put(ctx, sess, 0))

	stale := model.NewSession("c1", model.DomainRestaurant)
	err := r.Put(ctx, stale, 0)
	assert.ErrorIs(t, err, errx.ErrVersionConflict)

	// creating with a nonzero expectation is also a conflict
	err = r.Put(ctx, model.NewSession("c2", model.DomainRestaurant), 3)
	assert.ErrorIs(t, err, errx.ErrVersionConflict)
}

func TestMemoryRepoStoresClones(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	sess := model.NewSession("c1", model.DomainFinancial)
	sess.Fields[model.FieldName] = "Jane"
	require.NoError(t, r.Put(ctx, sess, 0))

	sess.Fields[model.FieldName] = "mutated after put"
	loaded, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", loaded.Fields[model.FieldName])

	loaded.Fields[model.FieldName] = "mutated after get"
	again, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	assert.Equal(t, "Jane", again.Fields[model.FieldName])
}

func TestConcurrentWritesSameCallExactlyOneWins(t *testing.T) {
	r := NewMemorySessionRepository()
	ctx := context.Background()

	base := model.NewSession("c1", model.DomainFinancial)
	require.NoError(t, r.Put(ctx, base, 0))

	const writers = 8
	var wg sync.WaitGroup
	errs := make([]error, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			sess, err := r.Get(ctx, "c1")
			if err != nil {
				errs[i] = err
				return
			}
			sess.Fields[model.FieldPhone] = "+15551234567"
			errs[i] = r.Put(ctx, sess, sess.Version)
		}(i)
	}
	wg.Wait()

	conflicts := 0
	for _, err := range errs {
		if errors.Is(err, errx.ErrVersionConflict) {
			conflicts++
		} else {
			require.NoError(t, err)
		}
	}

	loaded, err := r.Get(ctx, "c1")
	require.NoError(t, err)
	// every committed write bumped the version exactly once
	assert.Equal(t, int64(1+(writers-conflicts)), loaded.Version)
	assert.Equal(t, "+15551234567", loaded.Fields[model.FieldPhone])
}
