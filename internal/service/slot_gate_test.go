package service

import (
	"context"
	"io"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"hospital-scheduling/internal/domain/entity"
	"hospital-scheduling/internal/repository/memory"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func futureSlot() *entity.Slot {
	startsAt := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Minute)
	return &entity.Slot{
		ID:             uuid.New(),
		DoctorID:       uuid.New(),
		HospitalID:     uuid.New(),
		SlotDate:       startsAt.Truncate(24 * time.Hour),
		StartTime:      startsAt.Format(entity.ClockLayout),
		StartsAt:       startsAt,
		Specialization: "Cardiology",
		Fee:            decimal.NewFromInt(200),
	}
}

func TestSlotGateClaimOnce(t *testing.T) {
	mr, client := newTestRedis(t)
	gate := NewRedisSlotGate(client, memory.NewSlotStore(memory.NewLedgerRepository()), newTestLogger(), 0)
	slot := futureSlot()

	var (
		wg      sync.WaitGroup
		winners atomic.Int32
	)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := gate.Claim(context.Background(), slot); err == nil {
				winners.Add(1)
			} else {
				assert.ErrorIs(t, err, ErrSlotClaimed)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), winners.Load())
	key := RedisSlotClaimKeyPrefix + slot.ID.String()
	assert.True(t, mr.Exists(key))
	assert.LessOrEqual(t, mr.TTL(key), pendingClaimTTL)

	require.NoError(t, gate.Confirm(context.Background(), slot))
	assert.Greater(t, mr.TTL(key), 24*time.Hour)
}

func TestSlotGateUnconfirmedClaimExpires(t *testing.T) {
	mr, client := newTestRedis(t)
	gate := NewRedisSlotGate(client, memory.NewSlotStore(memory.NewLedgerRepository()), newTestLogger(), 0)
	slot := futureSlot()
	ctx := context.Background()

	require.NoError(t, gate.Claim(ctx, slot))
	mr.FastForward(pendingClaimTTL + time.Second)
	assert.NoError(t, gate.Claim(ctx, slot))
}

func TestSlotGateReleaseAllowsNewClaim(t *testing.T) {
	_, client := newTestRedis(t)
	gate := NewRedisSlotGate(client, memory.NewSlotStore(memory.NewLedgerRepository()), newTestLogger(), time.Hour)
	slot := futureSlot()
	ctx := context.Background()

	require.NoError(t, gate.Claim(ctx, slot))
	require.ErrorIs(t, gate.Claim(ctx, slot), ErrSlotClaimed)
	require.NoError(t, gate.Release(ctx, slot.ID))
	assert.NoError(t, gate.Claim(ctx, slot))
}

func TestSlotGateSyncOnStartupRestoresClaims(t *testing.T) {
	mr, client := newTestRedis(t)
	ctx := context.Background()
	store := memory.NewSlotStore(memory.NewLedgerRepository())

	booked := futureSlot()
	open := futureSlot()
	require.NoError(t, store.CreateSlot(ctx, booked))
	require.NoError(t, store.CreateSlot(ctx, open))
	_, err := store.ReserveSlot(ctx, booked.ID, &entity.Booking{PatientID: uuid.New()})
	require.NoError(t, err)

	gate := NewRedisSlotGate(client, store, newTestLogger(), 0)
	require.NoError(t, gate.SyncOnStartup(ctx))

	assert.True(t, mr.Exists(RedisSlotClaimKeyPrefix+booked.ID.String()))
	assert.False(t, mr.Exists(RedisSlotClaimKeyPrefix+open.ID.String()))
	assert.ErrorIs(t, gate.Claim(ctx, booked), ErrSlotClaimed)
}

func TestSlotGateReportsRedisFailure(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	gate := NewRedisSlotGate(client, memory.NewSlotStore(memory.NewLedgerRepository()), newTestLogger(), 0)
	mr.Close()

	err = gate.Claim(context.Background(), futureSlot())
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrSlotClaimed)
}
