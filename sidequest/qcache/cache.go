// Package qcache is the read-through cache in front of the sheet store.
// One fixed key holds the full quest/participant/community snapshot with a
// 60 second TTL; per-guild configuration lives under its own keys with no
// TTL and an in-process LRU in front.
package qcache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/GenshikenITB/SideQuestGST/sidequest/sheetstore"
	"github.com/disgoorg/snowflake/v2"
	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
)

const (
	snapshotKey = "sheet_data_cache"
	snapshotTTL = 60 * time.Second

	guildLocalSize = 128
)

func guildKey(guildID snowflake.ID) string {
	return fmt.Sprintf("guild_config:%s", guildID)
}

type Cache struct {
	rdb        *redis.Client
	store      sheetstore.Store
	guildLocal *lru.Cache
}

func New(rdb *redis.Client, store sheetstore.Store) *Cache {
	guildLocal, _ := lru.New(guildLocalSize)
	return &Cache{
		rdb:        rdb,
		store:      store,
		guildLocal: guildLocal,
	}
}

// Snapshot returns the cached table snapshot, refilling it from the store
// on miss or decode failure. Write paths never touch this key; freshness
// after a mutation is bounded by the TTL unless Invalidate is called.
func (c *Cache) Snapshot(ctx context.Context) (*Snapshot, error) {
	cached, err := c.rdb.Get(ctx, snapshotKey).Result()
	if err == nil {
		var snap Snapshot
		if jsonErr := json.Unmarshal([]byte(cached), &snap); jsonErr == nil {
			return &snap, nil
		}
		slog.Warn("Snapshot cache decode failed, refetching",
			slog.String("key", snapshotKey))
	} else if !errors.Is(err, redis.Nil) {
		slog.Warn("Snapshot cache read failed, falling back to store",
			slog.Any("error", err))
	}

	ranges, err := c.store.BatchGet(ctx,
		sheetstore.RangeQuests,
		sheetstore.RangeParticipants,
		sheetstore.RangeCommunities,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to read sheet snapshot: %w", err)
	}
	if len(ranges) < 3 {
		return nil, fmt.Errorf("expected 3 ranges, got %d", len(ranges))
	}

	snap := &Snapshot{
		QuestRows:       ranges[0],
		ParticipantRows: ranges[1],
		CommunityRows:   ranges[2],
	}

	if data, jsonErr := json.Marshal(snap); jsonErr == nil {
		if setErr := c.rdb.Set(ctx, snapshotKey, data, snapshotTTL).Err(); setErr != nil {
			slog.Warn("Snapshot cache fill failed", slog.Any("error", setErr))
		}
	}
	return snap, nil
}

// Invalidate drops the snapshot key, forcing the next read to hit the
// store. This is the pipeline's only strong-consistency lever.
func (c *Cache) Invalidate(ctx context.Context) error {
	return c.rdb.Del(ctx, snapshotKey).Err()
}

// GuildConfig returns the stored configuration for a guild, or the zero
// config when none has been saved yet.
func (c *Cache) GuildConfig(ctx context.Context, guildID snowflake.ID) (GuildConfig, error) {
	if cached, ok := c.guildLocal.Get(guildID); ok {
		return cached.(GuildConfig), nil
	}

	data, err := c.rdb.Get(ctx, guildKey(guildID)).Result()
	if errors.Is(err, redis.Nil) {
		return GuildConfig{}, nil
	}
	if err != nil {
		return GuildConfig{}, fmt.Errorf("failed to read guild config: %w", err)
	}

	var cfg GuildConfig
	if err := json.Unmarshal([]byte(data), &cfg); err != nil {
		return GuildConfig{}, nil
	}
	c.guildLocal.Add(guildID, cfg)
	return cfg, nil
}

// SetGuildConfig stores a guild configuration with no expiry; it is cached
// indefinitely until overwritten.
func (c *Cache) SetGuildConfig(ctx context.Context, guildID snowflake.ID, cfg GuildConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := c.rdb.Set(ctx, guildKey(guildID), data, 0).Err(); err != nil {
		return fmt.Errorf("failed to store guild config: %w", err)
	}
	c.guildLocal.Add(guildID, cfg)
	return nil
}

type GuildConfig struct {
	AnnouncementChannelID *snowflake.ID `json:"announcement_channel_id,omitempty"`
	ProofChannelID        *snowflake.ID `json:"proof_channel_id,omitempty"`
	LogChannelID          *snowflake.ID `json:"log_channel_id,omitempty"`
	PingRoleID            *snowflake.ID `json:"ping_role_id,omitempty"`
	QuestGiverRoleID      *snowflake.ID `json:"quest_giver_role_id,omitempty"`
	VerifierRoleID        *snowflake.ID `json:"verifier_role_id,omitempty"`
}
