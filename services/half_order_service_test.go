package services

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/Devesh-Pathak7/Splite-Eat/config"
	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestMain(m *testing.M) {
	utils.InitLogger()
	m.Run()
}

// fakePublisher records published events so tests can assert the
// exactly-one-event-per-transition property.
type fakePublisher struct {
	mu     sync.Mutex
	events []string
}

func (f *fakePublisher) Publish(event string, data interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, event)
}

func (f *fakePublisher) count(event string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, e := range f.events {
		if e == event {
			n++
		}
	}
	return n
}

type fixture struct {
	db    *gorm.DB
	clock *utils.FixedClock
	pub   *fakePublisher
	svc   *HalfOrderService
	item  models.MenuItem
	cfg   *config.Config
}

func setupFixture(t *testing.T) *fixture {
	t.Helper()

	// One shared in-memory database per test; a single connection keeps
	// sqlite's whole-file locking out of the way of the row-lock logic
	// under test.
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(
		&models.Restaurant{},
		&models.Table{},
		&models.MenuItem{},
		&models.HalfOrderSession{},
		&models.PairedOrder{},
		&models.Order{},
		&models.AuditLog{},
	))

	restaurant := models.Restaurant{Name: "Test Restaurant"}
	require.NoError(t, db.Create(&restaurant).Error)

	half := 260.0
	item := models.MenuItem{
		RestaurantID: restaurant.ID,
		Name:         "Family Biryani",
		Price:        480,
		HalfPrice:    &half,
		Available:    true,
	}
	require.NoError(t, db.Create(&item).Error)

	clock := &utils.FixedClock{Current: time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)}
	pub := &fakePublisher{}
	cfg := config.Default()
	svc := NewHalfOrderService(db, cfg, clock, pub)

	return &fixture{db: db, clock: clock, pub: pub, svc: svc, item: item, cfg: cfg}
}

func (f *fixture) createSession(t *testing.T, tableNo string) *models.HalfOrderSession {
	t.Helper()
	session, err := f.svc.CreateSession(CreateSessionInput{
		RestaurantID:   f.item.RestaurantID,
		TableNo:        tableNo,
		CustomerName:   "Asha",
		CustomerMobile: "9000000001",
		MenuItemID:     f.item.ID,
	})
	require.NoError(t, err)
	return session
}

func TestCreateSessionDuplicateGuard(t *testing.T) {
	f := setupFixture(t)

	first := f.createSession(t, "T1")

	// A second advertisement for the same item while the first is live
	// must be rejected with enough detail to offer "join instead".
	f.clock.Advance(1 * time.Minute)
	_, err := f.svc.CreateSession(CreateSessionInput{
		RestaurantID:   f.item.RestaurantID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
		MenuItemID:     f.item.ID,
	})
	var dup *DuplicateSessionError
	require.ErrorAs(t, err, &dup)
	require.Len(t, dup.Existing, 1)
	assert.Equal(t, first.ID, dup.Existing[0].ID)
	assert.Equal(t, "T1", dup.Existing[0].TableNo)

	// Once the first session reaches a terminal state, creation opens up.
	require.NoError(t, f.svc.Cancel(first.ID, models.RoleCustomer, nil))
	_, err = f.svc.CreateSession(CreateSessionInput{
		RestaurantID:   f.item.RestaurantID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
		MenuItemID:     f.item.ID,
	})
	assert.NoError(t, err)
}

func TestCreateSessionStaleActiveRowDoesNotBlock(t *testing.T) {
	f := setupFixture(t)

	f.createSession(t, "T1")

	// Past the TTL the first row is still ACTIVE in storage (the sweeper
	// has not run), but it must not block a fresh advertisement.
	f.clock.Advance(f.cfg.SessionTTL + time.Minute)
	_, err := f.svc.CreateSession(CreateSessionInput{
		RestaurantID:   f.item.RestaurantID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
		MenuItemID:     f.item.ID,
	})
	assert.NoError(t, err)
}

func TestCreateSessionRejectsNonHalfItem(t *testing.T) {
	f := setupFixture(t)

	full := models.MenuItem{RestaurantID: f.item.RestaurantID, Name: "Espresso", Price: 120, Available: true}
	require.NoError(t, f.db.Create(&full).Error)

	_, err := f.svc.CreateSession(CreateSessionInput{
		RestaurantID:   f.item.RestaurantID,
		TableNo:        "T1",
		CustomerName:   "Asha",
		CustomerMobile: "9000000001",
		MenuItemID:     full.ID,
	})
	assert.ErrorIs(t, err, ErrMenuItemNotHalfable)

	_, err = f.svc.CreateSession(CreateSessionInput{
		RestaurantID:   f.item.RestaurantID,
		TableNo:        "T1",
		CustomerName:   "Asha",
		CustomerMobile: "9000000001",
		MenuItemID:     9999,
	})
	assert.ErrorIs(t, err, ErrMenuItemNotFound)
}

func TestJoinHappyPath(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	pairing, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)
	assert.Equal(t, models.PairingStatusPending, pairing.Status)
	assert.Equal(t, 520.0, pairing.TotalPrice) // two halves

	var got models.HalfOrderSession
	require.NoError(t, f.db.First(&got, session.ID).Error)
	assert.Equal(t, models.SessionStatusJoined, got.Status)
	require.NotNil(t, got.JoinedByTableNo)
	assert.Equal(t, "T2", *got.JoinedByTableNo)
	require.NotNil(t, got.JoinedAt)
}

func TestJoinConcurrentSingleWinner(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	const joiners = 8
	var wg sync.WaitGroup
	results := make([]error, joiners)

	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = f.svc.Join(JoinInput{
				SessionID:      session.ID,
				TableNo:        fmt.Sprintf("T%d", i+2),
				CustomerName:   fmt.Sprintf("Guest %d", i+2),
				CustomerMobile: fmt.Sprintf("90000000%02d", i+2),
			})
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, ErrSessionNotJoinable)
	}
	assert.Equal(t, 1, wins, "exactly one joiner must win")

	var pairings int64
	require.NoError(t, f.db.Model(&models.PairedOrder{}).Where("session_id = ?", session.ID).Count(&pairings).Error)
	assert.EqualValues(t, 1, pairings)

	var got models.HalfOrderSession
	require.NoError(t, f.db.First(&got, session.ID).Error)
	assert.Equal(t, models.SessionStatusJoined, got.Status)
}

func TestJoinDuplicateTable(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	pairing, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)

	// Same table again: rejected as a duplicate join, and the original
	// pairing is untouched.
	_, err = f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	assert.ErrorIs(t, err, ErrAlreadyJoined)

	var got models.PairedOrder
	require.NoError(t, f.db.First(&got, pairing.ID).Error)
	assert.Equal(t, models.PairingStatusPending, got.Status)

	var count int64
	require.NoError(t, f.db.Model(&models.PairedOrder{}).Where("session_id = ?", session.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestJoinSelf(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	_, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T1",
		CustomerName:   "Asha",
		CustomerMobile: "9000000001",
	})
	assert.ErrorIs(t, err, ErrSelfJoin)
}

func TestJoinExpiredSessionLazilyExpires(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	f.clock.Advance(f.cfg.SessionTTL + time.Minute)

	_, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	assert.ErrorIs(t, err, ErrSessionExpired)

	// The join attempt itself flipped the row; no sweeper involved.
	var got models.HalfOrderSession
	require.NoError(t, f.db.First(&got, session.ID).Error)
	assert.Equal(t, models.SessionStatusExpired, got.Status)

	active, err := f.svc.ListActive(f.item.RestaurantID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestJoinUnknownSession(t *testing.T) {
	f := setupFixture(t)

	_, err := f.svc.Join(JoinInput{
		SessionID:      4242,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestCancelWindow(t *testing.T) {
	f := setupFixture(t)

	// Customer cancel inside the window succeeds.
	first := f.createSession(t, "T1")
	f.clock.Advance(4 * time.Minute)
	assert.NoError(t, f.svc.Cancel(first.ID, models.RoleCustomer, nil))

	// Outside the window the customer is refused but staff are not.
	second := f.createSession(t, "T1")
	f.clock.Advance(6 * time.Minute)
	err := f.svc.Cancel(second.ID, models.RoleCustomer, nil)
	assert.ErrorIs(t, err, ErrCancelWindowExpired)

	staffID := uint(7)
	assert.NoError(t, f.svc.Cancel(second.ID, models.RoleStaff, &staffID))

	var got models.HalfOrderSession
	require.NoError(t, f.db.First(&got, second.ID).Error)
	assert.Equal(t, models.SessionStatusCancelled, got.Status)
}

func TestCancelTerminalSession(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	_, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)

	err = f.svc.Cancel(session.ID, models.RoleAdmin, nil)
	assert.ErrorIs(t, err, ErrSessionNotCancellable)
}

func TestListActiveFiltersStaleRows(t *testing.T) {
	f := setupFixture(t)
	f.createSession(t, "T1")

	active, err := f.svc.ListActive(f.item.RestaurantID)
	require.NoError(t, err)
	require.Len(t, active, 1)

	// Past the TTL the row is stale even though the sweeper has not
	// touched it; ListActive must not advertise it.
	f.clock.Advance(f.cfg.SessionTTL + time.Second)
	active, err = f.svc.ListActive(f.item.RestaurantID)
	require.NoError(t, err)
	assert.Empty(t, active)
}

func TestEventsFollowCommits(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")
	assert.Equal(t, 1, f.pub.count("session.created"))

	_, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)
	assert.Equal(t, 1, f.pub.count("session.joined"))
	assert.Equal(t, 1, f.pub.count("paired.created"))

	// A rejected join publishes nothing.
	before := len(f.pub.events)
	_, err = f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T3",
		CustomerName:   "Chen",
		CustomerMobile: "9000000003",
	})
	require.Error(t, err)
	assert.Equal(t, before, len(f.pub.events))
}

func TestConsumePairing(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	pairing, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)

	consumed, err := f.svc.ConsumePairing(pairing.ID, 101)
	require.NoError(t, err)
	assert.Equal(t, models.PairingStatusCompleted, consumed.Status)
	require.NotNil(t, consumed.OrderID)
	assert.EqualValues(t, 101, *consumed.OrderID)
	require.NotNil(t, consumed.CompletedAt)

	// A second consumption attempt must be refused: no double billing.
	_, err = f.svc.ConsumePairing(pairing.ID, 102)
	assert.ErrorIs(t, err, ErrPairingNotAvailable)

	var got models.PairedOrder
	require.NoError(t, f.db.First(&got, pairing.ID).Error)
	require.NotNil(t, got.OrderID)
	assert.EqualValues(t, 101, *got.OrderID)
}

func TestAuditTrailWrittenWithMutations(t *testing.T) {
	f := setupFixture(t)
	session := f.createSession(t, "T1")

	_, err := f.svc.Join(JoinInput{
		SessionID:      session.ID,
		TableNo:        "T2",
		CustomerName:   "Bilal",
		CustomerMobile: "9000000002",
	})
	require.NoError(t, err)

	var actions []string
	require.NoError(t, f.db.Model(&models.AuditLog{}).Order("id").Pluck("action", &actions).Error)
	assert.Equal(t, []string{models.AuditActionCreate, models.AuditActionJoinSession}, actions)
}

func TestDuplicateSessionErrorMessage(t *testing.T) {
	err := &DuplicateSessionError{Existing: []models.HalfOrderSession{{
		ID: 3, TableNo: "T1", CustomerName: "Asha", MenuItemName: "Family Biryani",
	}}}
	assert.Contains(t, err.Error(), "session 3")
	assert.Contains(t, err.Error(), "T1")

	var target *DuplicateSessionError
	assert.True(t, errors.As(err, &target))
}
