package qcache

import (
	"context"
	"testing"

	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/alicebob/miniredis/v2"
	"github.com/disgoorg/snowflake/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingStore counts BatchGet calls so tests can tell a cache hit from a
// live read.
type countingStore struct {
	sheetstore.Store
	batchGets int
}

func (c *countingStore) BatchGet(ctx context.Context, ranges ...string) ([][][]string, error) {
	c.batchGets++
	return c.Store.BatchGet(ctx, ranges...)
}

func newTestCache(t *testing.T) (*Cache, *countingStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	mem := sheetstore.NewMemory()
	row := sheetstore.QuestRow{QuestID: "q-1", Title: "Cached Quest", Slots: 3}
	require.NoError(t, mem.Append(context.Background(), sheetstore.RangeQuests, [][]string{row.Values()}))

	store := &countingStore{Store: mem}
	return New(rdb, store), store, mr
}

func TestSnapshotReadThrough(t *testing.T) {
	cache, store, _ := newTestCache(t)
	ctx := context.Background()

	snap, err := cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.batchGets)

	quest, ok := snap.FindQuest("q-1")
	require.True(t, ok)
	assert.Equal(t, "Cached Quest", quest.Title)

	// Within the TTL the snapshot is served from the cache.
	_, err = cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.batchGets)
}

func TestSnapshotTTLExpiry(t *testing.T) {
	cache, store, mr := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Snapshot(ctx)
	require.NoError(t, err)

	mr.FastForward(snapshotTTL + 1)

	_, err = cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.batchGets)
}

func TestInvalidateForcesLiveRead(t *testing.T) {
	cache, store, _ := newTestCache(t)
	ctx := context.Background()

	_, err := cache.Snapshot(ctx)
	require.NoError(t, err)
	require.NoError(t, cache.Invalidate(ctx))

	_, err = cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, store.batchGets)
}

func TestSnapshotDecodeFailureRefetches(t *testing.T) {
	cache, store, mr := newTestCache(t)
	ctx := context.Background()

	require.NoError(t, mr.Set("sheet_data_cache", "{not json"))

	_, err := cache.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, store.batchGets)
}

func TestGuildConfigDefaultsToZero(t *testing.T) {
	cache, _, _ := newTestCache(t)

	cfg, err := cache.GuildConfig(context.Background(), snowflake.ID(42))
	require.NoError(t, err)
	assert.Nil(t, cfg.QuestGiverRoleID)
	assert.Nil(t, cfg.AnnouncementChannelID)
}

func TestGuildConfigRoundTripAndNoTTL(t *testing.T) {
	cache, _, mr := newTestCache(t)
	ctx := context.Background()
	guildID := snowflake.ID(42)

	roleID := snowflake.ID(777)
	require.NoError(t, cache.SetGuildConfig(ctx, guildID, GuildConfig{QuestGiverRoleID: &roleID}))

	// Guild config never expires, unlike the snapshot key.
	mr.FastForward(snapshotTTL * 10)

	cfg, err := cache.GuildConfig(ctx, guildID)
	require.NoError(t, err)
	require.NotNil(t, cfg.QuestGiverRoleID)
	assert.Equal(t, roleID, *cfg.QuestGiverRoleID)
}

func TestGuildConfigServedFromLocalLRU(t *testing.T) {
	cache, _, mr := newTestCache(t)
	ctx := context.Background()
	guildID := snowflake.ID(42)

	roleID := snowflake.ID(777)
	require.NoError(t, cache.SetGuildConfig(ctx, guildID, GuildConfig{PingRoleID: &roleID}))

	// Even with redis wiped, the local layer still answers.
	mr.FlushAll()

	cfg, err := cache.GuildConfig(ctx, guildID)
	require.NoError(t, err)
	require.NotNil(t, cfg.PingRoleID)
	assert.Equal(t, roleID, *cfg.PingRoleID)
}
