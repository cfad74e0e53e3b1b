package controllers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/services"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/gin-gonic/gin"
)

type HalfOrderController struct {
	Coordinator *services.HalfOrderService
}

func NewHalfOrderController(coordinator *services.HalfOrderService) *HalfOrderController {
	return &HalfOrderController{Coordinator: coordinator}
}

// CreateSession -> POST /half-orders
func (hc *HalfOrderController) CreateSession(c *gin.Context) {
	var req struct {
		RestaurantID   uint   `json:"restaurant_id" binding:"required"`
		TableNo        string `json:"table_no" binding:"required"`
		CustomerName   string `json:"customer_name" binding:"required"`
		CustomerMobile string `json:"customer_mobile" binding:"required"`
		MenuItemID     uint   `json:"menu_item_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	session, err := hc.Coordinator.CreateSession(services.CreateSessionInput{
		RestaurantID:   req.RestaurantID,
		TableNo:        req.TableNo,
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
		MenuItemID:     req.MenuItemID,
	})
	if err != nil {
		var dup *services.DuplicateSessionError
		if errors.As(err, &dup) {
			c.JSON(http.StatusConflict, utils.JSONResponse{
				Status:  false,
				Message: dup.Error(),
				Data:    gin.H{"existing_sessions": dup.Existing},
			})
			return
		}
		respondCoordinatorError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Half-order session created", gin.H{
		"session_id": session.ID,
		"expires_at": session.ExpiresAt,
	})
}

// Join -> POST /half-orders/:session_id/join
func (hc *HalfOrderController) Join(c *gin.Context) {
	sessionID, err := parseID(c.Param("session_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var req struct {
		TableNo        string `json:"table_no" binding:"required"`
		CustomerName   string `json:"customer_name" binding:"required"`
		CustomerMobile string `json:"customer_mobile" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	pairing, err := hc.Coordinator.Join(services.JoinInput{
		SessionID:      sessionID,
		TableNo:        req.TableNo,
		CustomerName:   req.CustomerName,
		CustomerMobile: req.CustomerMobile,
	})
	if err != nil {
		respondCoordinatorError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Joined half-order session", gin.H{
		"pairing_id":  pairing.ID,
		"order_total": pairing.TotalPrice,
		"menu_item":   pairing.MenuItemName,
	})
}

// Cancel -> DELETE /half-orders/:session_id
// Staff and admins pass through AuthMiddleware; unauthenticated callers
// are treated as the session's customer and bound by the cancel window.
func (hc *HalfOrderController) Cancel(c *gin.Context) {
	sessionID, err := parseID(c.Param("session_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	role := models.RoleCustomer
	var actorID *uint
	if v, ok := c.Get("role"); ok {
		role = v.(string)
	}
	if v, ok := c.Get("userID"); ok {
		id := v.(uint)
		actorID = &id
	}

	if err := hc.Coordinator.Cancel(sessionID, role, actorID); err != nil {
		respondCoordinatorError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusOK, "Session cancelled", gin.H{
		"session_id": sessionID,
	})
}

// ListActive -> GET /restaurants/:restaurant_id/half-orders
func (hc *HalfOrderController) ListActive(c *gin.Context) {
	restaurantID, err := parseID(c.Param("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	sessions, err := hc.Coordinator.ListActive(restaurantID)
	if err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Active half-order sessions", sessions)
}

func parseID(raw string) (uint, error) {
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

// respondCoordinatorError maps coordinator errors onto HTTP statuses:
// conflicts to 409, permission rejections to 403, unknown resources to
// 404, transient lock timeouts to 503 so clients know to retry.
func respondCoordinatorError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, services.ErrSessionNotFound),
		errors.Is(err, services.ErrMenuItemNotFound),
		errors.Is(err, services.ErrPairingNotFound):
		utils.RespondError(c, http.StatusNotFound, err)
	case errors.Is(err, services.ErrSessionNotJoinable),
		errors.Is(err, services.ErrSessionExpired),
		errors.Is(err, services.ErrAlreadyJoined),
		errors.Is(err, services.ErrSessionNotCancellable),
		errors.Is(err, services.ErrPairingNotAvailable):
		utils.RespondError(c, http.StatusConflict, err)
	case errors.Is(err, services.ErrSelfJoin),
		errors.Is(err, services.ErrMenuItemNotHalfable):
		utils.RespondError(c, http.StatusBadRequest, err)
	case errors.Is(err, services.ErrCancelWindowExpired),
		errors.Is(err, services.ErrCancelNotPermitted):
		utils.RespondError(c, http.StatusForbidden, err)
	case errors.Is(err, services.ErrLockTimeout):
		utils.RespondError(c, http.StatusServiceUnavailable, err)
	default:
		utils.RespondError(c, http.StatusInternalServerError, err)
	}
}
