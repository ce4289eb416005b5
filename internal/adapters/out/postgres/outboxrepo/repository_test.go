package outboxrepo_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"handoff/internal/adapters/out/postgres/outboxrepo"
	"handoff/internal/adapters/out/postgres/sqlitetest"
	"handoff/internal/core/domain/model/kernel"
	"handoff/internal/core/domain/services"
	"handoff/internal/core/ports"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var t0 = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

func TestOutbox_EnqueueAndFetch(t *testing.T) {
	ctx := context.Background()
	db := sqlitetest.Open(t)
	tick := t0
	outbox := outboxrepo.NewGormOutbox(db, func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	})
	store := outboxrepo.NewGormStore(db)

	missionID := kernel.NewUUID()
	recipient := kernel.NewUUID()
	require.NoError(t, outbox.EnqueueNotification(ctx, missionID, services.Notification{
		Recipient: recipient,
		Title:     "Delivery confirmed",
		Body:      "done",
		Payload:   map[string]string{"type": "delivery.confirmed"},
	}))
	require.NoError(t, outbox.EnqueueSettlement(ctx, missionID))
	require.NoError(t, outbox.EnqueueSettlement(ctx, missionID))

	msgs, err := store.FetchPending(ctx, 10, 5)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	assert.Equal(t, ports.OutboxNotification, msgs[0].Kind)
	require.NotNil(t, msgs[0].Notification)
	assert.True(t, msgs[0].Notification.Recipient.IsEqual(recipient))
	assert.Equal(t, "delivery.confirmed", msgs[0].Notification.Payload["type"])
	assert.True(t, msgs[0].MissionID.IsEqual(missionID))

	assert.Equal(t, ports.OutboxSettlement, msgs[1].Kind)
	assert.Nil(t, msgs[1].Notification)
	assert.True(t, msgs[1].MissionID.IsEqual(missionID))
}

func TestStore_MarkDispatchedAndFailed(t *testing.T) {
	ctx := context.Background()
	db := sqlitetest.Open(t)
	outbox := outboxrepo.NewGormOutbox(db, func() time.Time { return t0 })
	store := outboxrepo.NewGormStore(db)

	first, second := kernel.NewUUID(), kernel.NewUUID()
	require.NoError(t, outbox.EnqueueSettlement(ctx, first))
	require.NoError(t, outbox.EnqueueSettlement(ctx, second))

	msgs, err := store.FetchPending(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 2)

	byMission := map[string]ports.OutboxMessage{}
	for _, m := range msgs {
		byMission[m.MissionID.String()] = m
	}

	require.NoError(t, store.MarkDispatched(ctx, byMission[first.String()].ID, t0.Add(time.Minute)))
	require.NoError(t, store.MarkFailed(ctx, byMission[second.String()].ID, errors.New("timeout")))

	msgs, err = store.FetchPending(ctx, 10, 2)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, 1, msgs[0].AttemptCount)

	require.NoError(t, store.MarkFailed(ctx, msgs[0].ID, errors.New("timeout")))
	msgs, err = store.FetchPending(ctx, 10, 2)
	require.NoError(t, err)
	assert.Empty(t, msgs)
}

func TestStore_ParksUndecodableRows(t *testing.T) {
	ctx := context.Background()
	db := sqlitetest.Open(t)
	store := outboxrepo.NewGormStore(db)
	outbox := outboxrepo.NewGormOutbox(db, func() time.Time { return t0 })

	require.NoError(t, db.Create(&outboxrepo.MessageDTO{
		ID:          kernel.NewUUID().Bytes(),
		Kind:        "carrier-pigeon",
		AggregateID: kernel.NewUUID().Bytes(),
		DedupKey:    "bogus",
		Payload:     "{}",
		CreatedAt:   t0.Add(-time.Hour),
	}).Error)
	require.NoError(t, outbox.EnqueueSettlement(ctx, kernel.NewUUID()))

	msgs, err := store.FetchPending(ctx, 10, 3)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, ports.OutboxSettlement, msgs[0].Kind)

	msgs, err = store.FetchPending(ctx, 10, 3)
	require.NoError(t, err)
	assert.Len(t, msgs, 1)
}

func TestSettlementDedupKey(t *testing.T) {
	id := kernel.NewUUID()
	assert.Equal(t, "settlement:"+id.String(), outboxrepo.SettlementDedupKey(id))
}
