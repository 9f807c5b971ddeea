package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// ErrSlotClaimed is returned by SlotGate.Claim when another request already
// holds the slot.
var ErrSlotClaimed = errors.New("slot already claimed")

// claimSlotScript sets the claim key only when it is absent. Redis runs the
// script atomically, so exactly one concurrent caller gets 1.
var claimSlotScript = redis.NewScript(`
	if redis.call('EXISTS', KEYS[1]) == 1 then
		return 0
	end
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return 1
`)

const (
	RedisSlotClaimKeyPrefix = "slot:claim:"

	// A claim not confirmed within this window expires on its own.
	pendingClaimTTL = 30 * time.Second

	// Batch size for startup sync - process 500 records at a time
	syncBatchSize = 500
)

// SlotGate rejects booking losers before they reach the store. The store's
// compare-and-swap stays the authority; the gate only sheds load.
type SlotGate interface {
	Claim(ctx context.Context, slot *entity.Slot) error
	// Confirm keeps a claim for as long as the slot can matter.
	Confirm(ctx context.Context, slot *entity.Slot) error
	Release(ctx context.Context, slotID uuid.UUID) error
	SyncOnStartup(ctx context.Context) error
}

type redisSlotGate struct {
	client *redis.Client
	store  repository.SlotStore
	log    *logrus.Logger
	maxTTL time.Duration
}

func NewRedisSlotGate(client *redis.Client, store repository.SlotStore, log *logrus.Logger, maxTTL time.Duration) SlotGate {
	return &redisSlotGate{client: client, store: store, log: log, maxTTL: maxTTL}
}

func claimKey(slotID uuid.UUID) string {
	return RedisSlotClaimKeyPrefix + slotID.String()
}

func (g *redisSlotGate) Claim(ctx context.Context, slot *entity.Slot) error {
	claimed, err := claimSlotScript.Run(ctx, g.client, []string{claimKey(slot.ID)}, 1, pendingClaimTTL.Milliseconds()).Int()
	if err != nil {
		return fmt.Errorf("lua claim for slot %s: %w", slot.ID, err)
	}
	if claimed == 0 {
		return ErrSlotClaimed
	}
	g.log.Debugf("Claimed slot %s in Redis", slot.ID)
	return nil
}

func (g *redisSlotGate) Confirm(ctx context.Context, slot *entity.Slot) error {
	ttl := g.calculateTTL(slot.StartsAt)
	if err := g.client.Set(ctx, claimKey(slot.ID), 1, ttl).Err(); err != nil {
		return fmt.Errorf("confirm claim for slot %s: %w", slot.ID, err)
	}
	g.log.Debugf("Confirmed claim for slot %s, TTL=%v", slot.ID, ttl)
	return nil
}

func (g *redisSlotGate) Release(ctx context.Context, slotID uuid.UUID) error {
	if err := g.client.Del(ctx, claimKey(slotID)).Err(); err != nil {
		return fmt.Errorf("release claim for slot %s: %w", slotID, err)
	}
	g.log.Debugf("Released claim for slot %s", slotID)
	return nil
}

// SyncOnStartup rebuilds claim keys for every non-open slot that has not
// started yet. Should be called before accepting traffic.
func (g *redisSlotGate) SyncOnStartup(ctx context.Context) error {
	g.log.Info("Starting slot gate re-sync from store...")
	startTime := time.Now()

	if err := g.client.Ping(ctx).Err(); err != nil {
		g.log.Warnf("Redis is not available, skipping sync: %+v", err)
		return fmt.Errorf("redis ping failed: %w", err)
	}

	since := time.Now().UTC().Truncate(24 * time.Hour)
	offset := 0
	totalSynced := 0

	for {
		slots, err := g.store.ListClaimedSlots(ctx, since, offset, syncBatchSize)
		if err != nil {
			g.log.Errorf("Failed to query claimed slots at offset %d: %+v", offset, err)
			return fmt.Errorf("query claimed slots at offset %d: %w", offset, err)
		}
		if len(slots) == 0 {
			break
		}

		// New pipeline per batch keeps memory flat.
		pipe := g.client.TxPipeline()
		for i := range slots {
			pipe.Set(ctx, claimKey(slots[i].ID), 1, g.calculateTTL(slots[i].StartsAt))
		}
		if _, err := pipe.Exec(ctx); err != nil {
			g.log.Errorf("Failed to execute pipeline for batch at offset %d: %+v", offset, err)
			return fmt.Errorf("pipeline exec at offset %d: %w", offset, err)
		}

		totalSynced += len(slots)
		if len(slots) < syncBatchSize {
			break
		}
		offset += syncBatchSize

		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
	}

	g.log.Infof("Slot gate re-sync completed: %d slots synced in %v", totalSynced, time.Since(startTime))
	return nil
}

// calculateTTL keeps a claim until a day after the slot starts, capped by
// maxTTL.
func (g *redisSlotGate) calculateTTL(startsAt time.Time) time.Duration {
	ttl := time.Until(startsAt.Add(24 * time.Hour))
	if ttl <= 0 {
		return time.Minute
	}
	if g.maxTTL > 0 && ttl > g.maxTTL {
		return g.maxTTL
	}
	return ttl
}

type noopSlotGate struct{}

// NewNoopSlotGate is used when Redis is disabled.
func NewNoopSlotGate() SlotGate {
	return noopSlotGate{}
}

func (noopSlotGate) Claim(context.Context, *entity.Slot) error   { return nil }
func (noopSlotGate) Confirm(context.Context, *entity.Slot) error { return nil }
func (noopSlotGate) Release(context.Context, uuid.UUID) error    { return nil }
func (noopSlotGate) SyncOnStartup(context.Context) error         { return nil }
