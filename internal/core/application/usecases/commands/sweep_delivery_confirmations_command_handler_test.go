package commands_test

import (
	"testing"
	"time"

	"handoff/internal/core/application/usecases/commands"
	"handoff/internal/core/domain/model/mission"
	"handoff/internal/core/domain/model/parcel"
	"handoff/internal/core/ports"
	"handoff/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sweep(t *testing.T, f *fixture, factory commands.UoWFactory) commands.SweepReport {
	t.Helper()
	cmd, err := commands.NewSweepDeliveryConfirmationsCommand(0)
	require.NoError(t, err)
	report, err := commands.NewSweepDeliveryConfirmationsCommandHandler(factory, f.clock).Handle(t.Context(), cmd)
	require.NoError(t, err)
	return report
}

func TestSweep_LeavesOpenWindowsAlone(t *testing.T) {
	f := newFixture(t)
	delivered := f.delivered()

	f.clock.Set(t0.Add(12 * time.Hour))
	report := sweep(t, f, f.uows)

	assert.Zero(t, report.Visited())
	m := f.loadMission(delivered.Mission.ID)
	view := m.DeliveryView(f.clock.Now())
	assert.Equal(t, mission.DeliveryAwaitingConfirmation, view.Status)
	assert.Equal(t, 1, view.HoursRemaining)
}

func TestSweep_AutoConfirmsExpiredWindowOnce(t *testing.T) {
	f := newFixture(t)
	delivered := f.delivered()

	notified := f.outboxCount(ports.OutboxNotification)
	f.clock.Set(t0.Add(14 * time.Hour))
	report := sweep(t, f, f.uows)

	require.Equal(t, 1, report.Visited())
	assert.Equal(t, 1, report.Count(commands.SweepConfirmed))
	require.NoError(t, report.Err())

	m := f.loadMission(delivered.Mission.ID)
	assert.Equal(t, mission.Delivered, m.Status())
	assert.True(t, m.AutoConfirmed())
	require.NotNil(t, m.ClientConfirmedAt())
	assert.Equal(t, t0.Add(14*time.Hour), *m.ClientConfirmedAt())
	assert.Equal(t, mission.DeliveryAutoConfirmed, m.DeliveryView(f.clock.Now()).Status)
	assert.Equal(t, parcel.Delivered, f.loadParcel(delivered.Parcel.ID).Status())
	assert.Equal(t, 1, f.carrierStats().CompletedDeliveries())
	assert.Equal(t, int64(1), f.outboxCount(ports.OutboxSettlement))
	assert.Equal(t, int64(2), f.outboxCount(ports.OutboxNotification)-notified)

	again := sweep(t, f, f.uows)
	assert.Zero(t, again.Visited())
	assert.Equal(t, int64(1), f.outboxCount(ports.OutboxSettlement))

	_, err := commands.NewClientConfirmDeliveryCommandHandler(f.uows, f.clock).
		Handle(t.Context(), confirmCommand(t, f, delivered, nil))
	require.ErrorIs(t, err, errs.ErrAlreadyResolved)
	assert.Contains(t, err.Error(), "AUTO_CONFIRMED")
}

func TestSweep_SkipsContestedMissions(t *testing.T) {
	f := newFixture(t)
	delivered := f.delivered()

	_, err := commands.NewClientContestDeliveryCommandHandler(f.uows, f.clock).
		Handle(t.Context(), contestCommand(t, f, delivered))
	require.NoError(t, err)

	f.clock.Set(t0.Add(48 * time.Hour))
	report := sweep(t, f, f.uows)

	assert.Zero(t, report.Visited())
	m := f.loadMission(delivered.Mission.ID)
	assert.Equal(t, mission.PickedUp, m.Status())
	assert.False(t, m.AutoConfirmed())
	assert.Zero(t, f.outboxCount(ports.OutboxSettlement))
}

func TestSweep_LosingARaceIsSkipped(t *testing.T) {
	f := newFixture(t)
	delivered := f.delivered()
	stale := f.loadMission(delivered.Mission.ID)

	f.clock.Set(t0.Add(13*time.Hour + time.Minute))
	_, err := commands.NewClientConfirmDeliveryCommandHandler(f.uows, f.clock).
		Handle(t.Context(), confirmCommand(t, f, delivered, nil))
	require.NoError(t, err)

	report := sweep(t, f, f.staleUoWs(stale))

	require.Equal(t, 1, report.Visited())
	assert.Equal(t, 1, report.Count(commands.SweepSkipped))
	require.NoError(t, report.Err())

	m := f.loadMission(delivered.Mission.ID)
	assert.Equal(t, mission.ResolvedConfirmed, m.Resolution())
	assert.False(t, m.AutoConfirmed())
	assert.Equal(t, 1, f.carrierStats().CompletedDeliveries())
	assert.Equal(t, int64(1), f.outboxCount(ports.OutboxSettlement))
}

func TestSweep_ContinuesAfterFailures(t *testing.T) {
	f := newFixture(t)
	first := f.delivered()
	second := f.delivered()

	// Detach the first mission from its parcel row so loading it fails.
	require.NoError(t, f.db.Exec("DELETE FROM parcels WHERE id = ?", first.Parcel.ID.Bytes()).Error)

	f.clock.Set(t0.Add(14 * time.Hour))
	report := sweep(t, f, f.uows)

	require.Equal(t, 2, report.Visited())
	assert.Equal(t, 1, report.Count(commands.SweepFailed))
	assert.Equal(t, 1, report.Count(commands.SweepConfirmed))
	require.Error(t, report.Err())
	assert.ErrorIs(t, report.Err(), errs.ErrObjectNotFound)
	assert.Contains(t, report.Err().Error(), first.Mission.ID.String())
	assert.True(t, f.loadMission(second.Mission.ID).AutoConfirmed())
}

func TestSweep_ConflictOnUnresolvedMissionFails(t *testing.T) {
	f := newFixture(t)
	delivered := f.delivered()

	f.clock.Set(t0.Add(14 * time.Hour))
	report := sweep(t, f, f.racedCarrierUoWs())

	require.Equal(t, 1, report.Visited())
	assert.Equal(t, 1, report.Count(commands.SweepFailed))
	assert.Zero(t, report.Count(commands.SweepSkipped))
	require.Error(t, report.Err())
	assert.ErrorIs(t, report.Err(), errs.ErrConflict)
	assert.Contains(t, report.Err().Error(), delivered.Mission.ID.String())

	m := f.loadMission(delivered.Mission.ID)
	assert.Equal(t, mission.Unresolved, m.Resolution())
	assert.Zero(t, f.outboxCount(ports.OutboxSettlement))

	retried := sweep(t, f, f.uows)
	assert.Equal(t, 1, retried.Count(commands.SweepConfirmed))
	assert.True(t, f.loadMission(delivered.Mission.ID).AutoConfirmed())
}
