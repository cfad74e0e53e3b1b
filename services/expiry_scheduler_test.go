package services

import (
	"testing"
	"time"

	"github.com/Devesh-Pathak7/Splite-Eat/config"
	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newScheduler(f *fixture) *ExpiryScheduler {
	return NewExpiryScheduler(f.svc, f.db, config.Default(), f.clock, f.pub)
}

func TestSweepExpiresStaleSessions(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	// Nothing stale yet.
	sched := newScheduler(f)
	assert.Equal(t, 0, sched.SweepOnce())

	f.clock.Advance(f.cfg.SessionTTL + time.Second)
	assert.Equal(t, 1, sched.SweepOnce())
	assert.Equal(t, 1, f.pub.count("session.expired"))

	var got models.HalfOrderSession
	require.NoError(t, f.db.First(&got, session.ID).Error)
	assert.Equal(t, models.SessionStatusExpired, got.Status)

	// Sweeping again finds nothing: EXPIRED is terminal.
	assert.Equal(t, 0, sched.SweepOnce())
	assert.Equal(t, 1, f.pub.count("session.expired"))
}

func TestSweepSkipsJoinedSessions(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	_, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)

	f.clock.Advance(f.cfg.SessionTTL + time.Second)
	sched := newScheduler(f)
	assert.Equal(t, 0, sched.SweepOnce())

	var got models.HalfOrderSession
	require.NoError(t, f.db.First(&got, session.ID).Error)
	assert.Equal(t, models.SessionStatusJoined, got.Status)
}

func TestSweepWritesAuditEntries(t *testing.T) {
	f := setupFixture(t)
	f.createSession(t, "T1")

	f.clock.Advance(f.cfg.SessionTTL + time.Second)
	newScheduler(f).SweepOnce()

	var count int64
	require.NoError(t, f.db.Model(&models.AuditLog{}).
		Where("action = ?", models.AuditActionExpireSession).
		Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestSchedulerStartStop(t *testing.T) {
	f := setupFixture(t)
	sched := newScheduler(f)
	sched.Interval = 10 * time.Millisecond

	sched.Start()
	time.Sleep(30 * time.Millisecond)
	sched.Stop()
}
