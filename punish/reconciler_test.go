package punish

import (
	"context"
	"testing"
	"time"

	"github.com/kasuganosora/modguard/cache"
	"github.com/kasuganosora/modguard/model"
	"github.com/kasuganosora/modguard/scheduler"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestSweepEvictsExpiredEntries(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.Issue(ctx, IssueRequest{
		Type: model.TypeTempBan, Target: Target{Identity: "uuid-sweep"},
		IssuerIdentity: "staff-1", IssuerName: "mod", Duration: time.Hour,
	}).Await()
	require.NoError(t, err)

	sched := scheduler.New(zap.NewNop())
	defer sched.Stop()
	fx.svc.RegisterTasks(sched, 10*time.Millisecond, 0, 0)
	assert.Contains(t, sched.ListTickers(), "punishment-cache-sweep")

	// Still effective: the sweep must leave the entry alone.
	time.Sleep(30 * time.Millisecond)
	_, ok := fx.cache.Get(model.CategoryBan, cache.ByIdentity, "uuid-sweep")
	require.True(t, ok)

	fx.advance(2 * time.Hour)
	assert.Eventually(t, func() bool {
		_, ok := fx.cache.Get(model.CategoryBan, cache.ByIdentity, "uuid-sweep")
		return !ok
	}, time.Second, 10*time.Millisecond, "expired entry must be swept")
}

func TestDecayTaskReducesPoints(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.TouchPlayer(ctx, "uuid-decay", "dave", "").Await()
	require.NoError(t, err)
	_, err = fx.svc.AdjustPoints(ctx, "uuid-decay", 5, "staff-1", "mod").Await()
	require.NoError(t, err)

	sched := scheduler.New(zap.NewNop())
	defer sched.Stop()
	fx.svc.RegisterTasks(sched, 0, 10*time.Millisecond, 2)
	assert.Contains(t, sched.ListTickers(), "points-decay")

	assert.Eventually(t, func() bool {
		p, err := fx.store.GetPlayer(ctx, "uuid-decay")
		return err == nil && p != nil && p.Points == 0
	}, time.Second, 10*time.Millisecond, "decay must floor the score at zero")
}

func TestDecayCatchupRunsBeforeFirstInterval(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()

	_, err := fx.svc.TouchPlayer(ctx, "uuid-catchup", "erin", "").Await()
	require.NoError(t, err)
	_, err = fx.svc.AdjustPoints(ctx, "uuid-catchup", 2, "staff-1", "mod").Await()
	require.NoError(t, err)

	sched := scheduler.New(zap.NewNop())
	defer sched.Stop()
	// Interval long enough that the ticker cannot fire inside the test
	// window; only the one-shot at the half interval can.
	fx.svc.RegisterTasks(sched, 0, 2*time.Second, 2)

	assert.Eventually(t, func() bool {
		p, err := fx.store.GetPlayer(ctx, "uuid-catchup")
		return err == nil && p != nil && p.Points == 0
	}, 1800*time.Millisecond, 20*time.Millisecond, "one-shot decay must run before the first tick")
}

func TestRegisterTasksSkipsDisabledIntervals(t *testing.T) {
	fx := newFixture(t)

	sched := scheduler.New(zap.NewNop())
	defer sched.Stop()
	fx.svc.RegisterTasks(sched, 0, 0, 1)
	assert.Empty(t, sched.ListTickers())
}
