package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/espalier/pkg/adapters/redis"
	"github.com/aretw0/espalier/pkg/document"
	"github.com/aretw0/espalier/pkg/ports"
)

func newTestStore(t *testing.T, opts ...redis.Option) (*redis.Store, *miniredis.Miniredis) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{Addr: mr.Addr()})
	return redis.NewFromClient(client, opts...), mr
}

func TestRedisStore_Contract(t *testing.T) {
	store, _ := newTestStore(t)
	ports.RunDraftStoreContract(t, store)
}

func TestRedisStore_TTL_Expiration(t *testing.T) {
	store, mr := newTestStore(t, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	doc := &document.Document{
		Name: "ephemeral",
		Nodes: []document.NodeDoc{
			{ID: "a", Kind: "Action", Label: "HALT"},
		},
	}
	require.NoError(t, store.Save(ctx, "ephemeral", doc))

	names, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, names, "ephemeral")

	// miniredis time is virtual; advance past the TTL.
	mr.FastForward(2 * time.Second)

	_, err = store.Load(ctx, "ephemeral")
	assert.Error(t, err, "draft should have expired")

	names, err = store.List(ctx)
	require.NoError(t, err)
	assert.NotContains(t, names, "ephemeral", "List prunes expired index entries")

	// The prune removed the last index member, so the ZSET itself is gone.
	assert.False(t, mr.Exists("espalier:draft:index"))
}

func TestRedisStore_Prefix(t *testing.T) {
	store, mr := newTestStore(t, redis.WithPrefix("other:"))
	ctx := context.Background()

	doc := &document.Document{Name: "d"}
	require.NoError(t, store.Save(ctx, "d", doc))

	assert.True(t, mr.Exists("other:d"))
	assert.False(t, mr.Exists("espalier:draft:d"))
}
