package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Devesh-Pathak7/Splite-Eat/config"
	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/realtime"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// HalfOrderService coordinates half-order sessions: it creates them,
// arbitrates concurrent joins, cancels them and hands pairings over to
// order creation. All mutation runs under a per-session row lock
// (SELECT ... FOR UPDATE); events are published only after the
// transaction has committed, never while the lock is held.
type HalfOrderService struct {
	db    *gorm.DB
	cfg   *config.Config
	clock utils.Clock
	pub   realtime.Publisher
}

func NewHalfOrderService(db *gorm.DB, cfg *config.Config, clock utils.Clock, pub realtime.Publisher) *HalfOrderService {
	return &HalfOrderService{db: db, cfg: cfg, clock: clock, pub: pub}
}

type CreateSessionInput struct {
	RestaurantID   uint
	TableNo        string
	CustomerName   string
	CustomerMobile string
	MenuItemID     uint
}

type JoinInput struct {
	SessionID      uint
	TableNo        string
	CustomerName   string
	CustomerMobile string
}

// begin opens a transaction whose statements carry the configured lock
// wait deadline, so a thundering herd on one session fails fast with
// ErrLockTimeout instead of hanging.
func (s *HalfOrderService) begin() (*gorm.DB, context.CancelFunc) {
	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.LockWaitTimeout)
	return s.db.WithContext(ctx).Begin(), cancel
}

// lockSession acquires the pessimistic row lock for one session. Lock
// granularity is per row: joins, cancels and expiries racing on the same
// session serialize here while other sessions proceed in parallel.
func lockSession(tx *gorm.DB, id uint) (*models.HalfOrderSession, error) {
	var session models.HalfOrderSession
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&session, id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrSessionNotFound
		}
		return nil, translateLockErr(err)
	}
	return &session, nil
}

// CreateSession opens a new half-order advertisement. At most one live
// session may exist per (restaurant, menu item); a stale ACTIVE row whose
// expiry has passed does not block creation.
func (s *HalfOrderService) CreateSession(in CreateSessionInput) (*models.HalfOrderSession, error) {
	var item models.MenuItem
	if err := s.db.Where("id = ? AND restaurant_id = ?", in.MenuItemID, in.RestaurantID).First(&item).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrMenuItemNotFound
		}
		return nil, fmt.Errorf("failed to load menu item: %w", err)
	}
	if !item.HalfEligible() {
		return nil, ErrMenuItemNotHalfable
	}

	now := s.clock.Now()

	var existing []models.HalfOrderSession
	err := s.db.
		Where("restaurant_id = ? AND menu_item_id = ? AND status = ? AND expires_at > ?",
			in.RestaurantID, in.MenuItemID, models.SessionStatusActive, now).
		Find(&existing).Error
	if err != nil {
		return nil, fmt.Errorf("failed to check for duplicate sessions: %w", err)
	}
	if len(existing) > 0 {
		return nil, &DuplicateSessionError{Existing: existing}
	}

	session := models.HalfOrderSession{
		RestaurantID:   in.RestaurantID,
		TableNo:        in.TableNo,
		CustomerName:   in.CustomerName,
		CustomerMobile: in.CustomerMobile,
		MenuItemID:     item.ID,
		MenuItemName:   item.Name,
		Status:         models.SessionStatusActive,
		CreatedAt:      now,
		ExpiresAt:      now.Add(s.cfg.SessionTTL),
	}

	tx, cancel := s.begin()
	defer cancel()
	if err := tx.Create(&session).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create session: %w", err)
	}
	if err := logAudit(tx, nil, models.RoleCustomer, models.AuditActionCreate, "half_order_session", session.ID, map[string]interface{}{
		"restaurant_id": in.RestaurantID,
		"table_no":      in.TableNo,
		"menu_item_id":  item.ID,
		"expires_at":    session.ExpiresAt,
	}); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit session: %w", err)
	}

	s.pub.Publish(realtime.EventSessionCreated, map[string]interface{}{
		"session_id":     session.ID,
		"restaurant_id":  session.RestaurantID,
		"table_no":       session.TableNo,
		"menu_item_name": session.MenuItemName,
		"customer_name":  session.CustomerName,
		"expires_at":     session.ExpiresAt,
	})
	utils.InfoLogger.Printf("Half-order session %d created by table %s (expires %s)",
		session.ID, session.TableNo, session.ExpiresAt.Format("15:04:05"))

	return &session, nil
}

// Join arbitrates a join attempt. Among N concurrent callers on one
// session exactly one commits the JOINED transition; the rest observe the
// terminal status after the lock is released and fail cleanly.
func (s *HalfOrderService) Join(in JoinInput) (*models.PairedOrder, error) {
	tx, cancel := s.begin()
	defer cancel()

	session, err := lockSession(tx, in.SessionID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}

	// Duplicate-join guard first: a table that already holds a pairing
	// against this session gets the specific rejection, not the generic
	// not-active one it would otherwise see after its own join flipped
	// the status.
	var dup int64
	if err := tx.Model(&models.PairedOrder{}).
		Where("session_id = ? AND joiner_table_no = ?", session.ID, in.TableNo).
		Count(&dup).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to check for duplicate join: %w", err)
	}
	if dup > 0 {
		tx.Rollback()
		return nil, ErrAlreadyJoined
	}

	if session.Status != models.SessionStatusActive {
		tx.Rollback()
		return nil, ErrSessionNotJoinable
	}

	now := s.clock.Now()
	if !session.ExpiresAt.After(now) {
		// Lazy expiry: this join attempt proved the row is stale, so
		// transition it now instead of waiting for the sweeper.
		if err := s.expireLocked(tx, session, now); err != nil {
			tx.Rollback()
			return nil, fmt.Errorf("failed to lazily expire session: %w", err)
		}
		if err := tx.Commit().Error; err != nil {
			return nil, fmt.Errorf("failed to commit lazy expiry: %w", err)
		}
		s.publishExpired(session.ID)
		return nil, ErrSessionExpired
	}

	if session.TableNo == in.TableNo {
		tx.Rollback()
		return nil, ErrSelfJoin
	}

	var item models.MenuItem
	if err := tx.First(&item, session.MenuItemID).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to load menu item for pricing: %w", err)
	}
	totalPrice := item.Price
	if item.HalfPrice != nil {
		totalPrice = *item.HalfPrice * 2
	}

	pairing := models.PairedOrder{
		SessionID:          session.ID,
		RestaurantID:       session.RestaurantID,
		MenuItemID:         item.ID,
		MenuItemName:       session.MenuItemName,
		TotalPrice:         totalPrice,
		JoinerTableNo:      in.TableNo,
		JoinerCustomerName: in.CustomerName,
		JoinerMobile:       in.CustomerMobile,
		Status:             models.PairingStatusPending,
		CreatedAt:          now,
	}
	if err := tx.Create(&pairing).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create pairing: %w", err)
	}

	session.Status = models.SessionStatusJoined
	session.JoinedByTableNo = &pairing.JoinerTableNo
	session.JoinedByCustomerName = &pairing.JoinerCustomerName
	session.JoinedAt = &now
	if err := tx.Save(session).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to update session: %w", err)
	}

	if err := logAudit(tx, nil, models.RoleCustomer, models.AuditActionJoinSession, "half_order_session", session.ID, map[string]interface{}{
		"paired_order_id": pairing.ID,
		"joiner_table":    in.TableNo,
		"original_table":  session.TableNo,
	}); err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit join: %w", err)
	}

	s.pub.Publish(realtime.EventSessionJoined, map[string]interface{}{
		"session_id":     session.ID,
		"pairing_id":     pairing.ID,
		"joiner_table":   pairing.JoinerTableNo,
		"original_table": session.TableNo,
		"table_pairing":  models.PairedTableLabel(session.TableNo, pairing.JoinerTableNo),
		"menu_item_name": pairing.MenuItemName,
		"total_price":    pairing.TotalPrice,
	})
	s.pub.Publish(realtime.EventPairedCreated, map[string]interface{}{
		"pairing_id":     pairing.ID,
		"menu_item_name": pairing.MenuItemName,
		"total_price":    pairing.TotalPrice,
		"status":         pairing.Status,
	})
	utils.InfoLogger.Printf("Session %d joined: table %s paired with table %s (pairing %d)",
		session.ID, session.TableNo, pairing.JoinerTableNo, pairing.ID)

	return &pairing, nil
}

// Cancel closes an ACTIVE session. Customers may cancel only within the
// configured window after creation; staff and admins may cancel any time
// before the session reaches a terminal state.
func (s *HalfOrderService) Cancel(sessionID uint, actorRole string, actorID *uint) error {
	tx, cancel := s.begin()
	defer cancel()

	session, err := lockSession(tx, sessionID)
	if err != nil {
		tx.Rollback()
		return err
	}

	if session.Status != models.SessionStatusActive {
		tx.Rollback()
		return ErrSessionNotCancellable
	}

	now := s.clock.Now()
	if !models.IsPrivileged(actorRole) {
		if actorRole != models.RoleCustomer {
			tx.Rollback()
			return ErrCancelNotPermitted
		}
		if now.Sub(session.CreatedAt) > s.cfg.CustomerCancelWindow {
			tx.Rollback()
			return ErrCancelWindowExpired
		}
	}

	session.Status = models.SessionStatusCancelled
	if err := tx.Save(session).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to cancel session: %w", err)
	}

	if err := tx.Model(&models.PairedOrder{}).
		Where("session_id = ? AND status = ?", session.ID, models.PairingStatusPending).
		Update("status", models.PairingStatusCancelled).Error; err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to cancel pending pairings: %w", err)
	}

	if err := logAudit(tx, actorID, actorRole, models.AuditActionCancel, "half_order_session", session.ID, map[string]interface{}{
		"elapsed_seconds": now.Sub(session.CreatedAt).Seconds(),
	}); err != nil {
		tx.Rollback()
		return fmt.Errorf("failed to write audit entry: %w", err)
	}

	if err := tx.Commit().Error; err != nil {
		return fmt.Errorf("failed to commit cancel: %w", err)
	}

	s.pub.Publish(realtime.EventSessionCancelled, map[string]interface{}{
		"session_id":   session.ID,
		"table_no":     session.TableNo,
		"cancelled_by": actorRole,
	})
	utils.InfoLogger.Printf("Session %d cancelled by %s", session.ID, actorRole)

	return nil
}

// ListActive returns the advertisable sessions for a restaurant. This is
// an advisory snapshot read without locks; a listed session may expire
// moments later.
func (s *HalfOrderService) ListActive(restaurantID uint) ([]models.HalfOrderSession, error) {
	var sessions []models.HalfOrderSession
	err := s.db.
		Where("restaurant_id = ? AND status = ? AND expires_at > ?",
			restaurantID, models.SessionStatusActive, s.clock.Now()).
		Order("created_at DESC").
		Find(&sessions).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list active sessions: %w", err)
	}
	return sessions, nil
}

// ConsumePairing transitions a PENDING pairing to COMPLETED and binds it
// to the order that consumed it. Used by order creation at checkout.
func (s *HalfOrderService) ConsumePairing(pairingID, orderID uint) (*models.PairedOrder, error) {
	tx, cancel := s.begin()
	defer cancel()

	pairing, err := s.consumePairingLocked(tx, pairingID, orderID)
	if err != nil {
		tx.Rollback()
		return nil, err
	}
	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit pairing consumption: %w", err)
	}
	return pairing, nil
}

// consumePairingLocked performs the lock-verify-complete sequence on the
// caller's transaction, so order creation can consume a pairing
// atomically with the order insert.
func (s *HalfOrderService) consumePairingLocked(tx *gorm.DB, pairingID, orderID uint) (*models.PairedOrder, error) {
	var pairing models.PairedOrder
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&pairing, pairingID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPairingNotFound
		}
		return nil, translateLockErr(err)
	}

	if pairing.Status != models.PairingStatusPending {
		return nil, ErrPairingNotAvailable
	}

	now := s.clock.Now()
	pairing.Status = models.PairingStatusCompleted
	pairing.OrderID = &orderID
	pairing.CompletedAt = &now
	if err := tx.Save(&pairing).Error; err != nil {
		return nil, fmt.Errorf("failed to complete pairing: %w", err)
	}

	if err := logAudit(tx, nil, "", models.AuditActionConsume, "paired_order", pairing.ID, map[string]interface{}{
		"order_id": orderID,
	}); err != nil {
		return nil, fmt.Errorf("failed to write audit entry: %w", err)
	}
	return &pairing, nil
}

// expireLocked flips an already-locked session to EXPIRED and cancels any
// pending pairings hanging off it. Callers commit and publish.
func (s *HalfOrderService) expireLocked(tx *gorm.DB, session *models.HalfOrderSession, now time.Time) error {
	session.Status = models.SessionStatusExpired
	if err := tx.Save(session).Error; err != nil {
		return err
	}
	if err := tx.Model(&models.PairedOrder{}).
		Where("session_id = ? AND status = ?", session.ID, models.PairingStatusPending).
		Update("status", models.PairingStatusCancelled).Error; err != nil {
		return err
	}
	return logAudit(tx, nil, "", models.AuditActionExpireSession, "half_order_session", session.ID, map[string]interface{}{
		"expired_at": now,
	})
}

func (s *HalfOrderService) publishExpired(sessionID uint) {
	s.pub.Publish(realtime.EventSessionExpired, map[string]interface{}{
		"session_id": sessionID,
	})
}
