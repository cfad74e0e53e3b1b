package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/Devesh-Pathak7/Splite-Eat/models"
)

// Business-rule rejections. These are never retried by the coordinator;
// the HTTP layer maps them to 4xx responses.
var (
	ErrSessionNotFound       = errors.New("half-order session not found")
	ErrMenuItemNotFound      = errors.New("menu item not found")
	ErrMenuItemNotHalfable   = errors.New("menu item does not support half orders")
	ErrSessionNotJoinable    = errors.New("session is not active")
	ErrSessionExpired        = errors.New("session has expired")
	ErrAlreadyJoined         = errors.New("table has already joined this session")
	ErrSelfJoin              = errors.New("cannot join your own table's half order")
	ErrSessionNotCancellable = errors.New("session is no longer cancellable")
	ErrCancelWindowExpired   = errors.New("customer cancel window has expired")
	ErrCancelNotPermitted    = errors.New("role is not permitted to cancel this session")
	ErrPairingNotFound       = errors.New("pairing not found")
	ErrPairingNotAvailable   = errors.New("pairing has already been consumed or cancelled")
)

// ErrLockTimeout is transient: the caller may retry with backoff.
var ErrLockTimeout = errors.New("timed out waiting for session lock")

// DuplicateSessionError rejects CreateSession when a live session already
// advertises the same menu item. It carries the conflicting sessions so
// the caller can offer "join instead".
type DuplicateSessionError struct {
	Existing []models.HalfOrderSession
}

func (e *DuplicateSessionError) Error() string {
	if len(e.Existing) == 1 {
		s := e.Existing[0]
		return fmt.Sprintf("an active half-order session for %q already exists (session %d, table %s, %s)",
			s.MenuItemName, s.ID, s.TableNo, s.CustomerName)
	}
	return fmt.Sprintf("%d active half-order sessions already exist for this menu item", len(e.Existing))
}

// translateLockErr maps a context deadline hit while waiting on a row
// lock to the retryable ErrLockTimeout.
func translateLockErr(err error) error {
	if errors.Is(err, context.DeadlineExceeded) {
		return ErrLockTimeout
	}
	return err
}
