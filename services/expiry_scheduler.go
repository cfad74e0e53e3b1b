package services

import (
	"errors"
	"time"

	"github.com/Devesh-Pathak7/Splite-Eat/config"
	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/realtime"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"gorm.io/gorm"
)

// ExpiryScheduler sweeps for ACTIVE sessions past their expiry on a fixed
// interval and transitions them to EXPIRED. Each candidate is handled in
// its own transaction under the same per-session row lock as Join, one
// row at a time, so the sweep can never deadlock against a racing join.
type ExpiryScheduler struct {
	coordinator *HalfOrderService
	db          *gorm.DB
	clock       utils.Clock
	pub         realtime.Publisher
	Interval    time.Duration
	stopChan    chan struct{}
}

func NewExpiryScheduler(coordinator *HalfOrderService, db *gorm.DB, cfg *config.Config, clock utils.Clock, pub realtime.Publisher) *ExpiryScheduler {
	return &ExpiryScheduler{
		coordinator: coordinator,
		db:          db,
		clock:       clock,
		pub:         pub,
		Interval:    cfg.ExpirySweepInterval,
		stopChan:    make(chan struct{}),
	}
}

func (es *ExpiryScheduler) Start() {
	go func() {
		ticker := time.NewTicker(es.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				es.SweepOnce()
			case <-es.stopChan:
				return
			}
		}
	}()
	utils.InfoLogger.Printf("Expiry scheduler started (interval %s)", es.Interval)
}

func (es *ExpiryScheduler) Stop() {
	close(es.stopChan)
}

// SweepOnce expires every stale session it can reach and returns how many
// it transitioned. A failure on one session (for example a lock timeout
// against a concurrent join) is logged and the sweep moves on.
func (es *ExpiryScheduler) SweepOnce() int {
	now := es.clock.Now()

	var candidateIDs []uint
	err := es.db.Model(&models.HalfOrderSession{}).
		Where("status = ? AND expires_at <= ?", models.SessionStatusActive, now).
		Pluck("id", &candidateIDs).Error
	if err != nil {
		utils.ErrorLogger.Printf("Expiry sweep: failed to list candidates: %v", err)
		return 0
	}

	expired := 0
	for _, id := range candidateIDs {
		if err := es.expireOne(id); err != nil {
			if errors.Is(err, errSessionNoLongerStale) {
				continue
			}
			utils.ErrorLogger.Printf("Expiry sweep: session %d: %v", id, err)
			continue
		}
		es.coordinator.publishExpired(id)
		expired++
	}

	if expired > 0 {
		utils.InfoLogger.Printf("Expiry sweep: expired %d half-order sessions", expired)
	}
	return expired
}

// errSessionNoLongerStale marks the benign case where a session was
// joined or cancelled between candidate selection and lock acquisition.
var errSessionNoLongerStale = errors.New("session no longer stale")

func (es *ExpiryScheduler) expireOne(id uint) error {
	tx, cancel := es.coordinator.begin()
	defer cancel()

	session, err := lockSession(tx, id)
	if err != nil {
		tx.Rollback()
		return err
	}

	// Re-check after acquiring the lock: another caller may have joined,
	// cancelled or lazily expired the row since the candidate scan.
	now := es.clock.Now()
	if session.Status != models.SessionStatusActive || session.ExpiresAt.After(now) {
		tx.Rollback()
		return errSessionNoLongerStale
	}

	if err := es.coordinator.expireLocked(tx, session, now); err != nil {
		tx.Rollback()
		return err
	}
	return tx.Commit().Error
}
