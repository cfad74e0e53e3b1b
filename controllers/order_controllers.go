package controllers

import (
	"net/http"

	"github.com/Devesh-Pathak7/Splite-Eat/services"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/gin-gonic/gin"
)

type OrderController struct {
	Orders *services.OrderService
}

func NewOrderController(orders *services.OrderService) *OrderController {
	return &OrderController{Orders: orders}
}

// Checkout -> POST /orders/checkout
// Creates the order that consumes a joined pairing.
func (oc *OrderController) Checkout(c *gin.Context) {
	var req struct {
		PairingID uint `json:"pairing_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.CreateFromPairing(req.PairingID)
	if err != nil {
		respondCoordinatorError(c, err)
		return
	}

	utils.RespondJSON(c, http.StatusCreated, "Order created", order)
}

// GetOrder -> GET /orders/:order_id
func (oc *OrderController) GetOrder(c *gin.Context) {
	orderID, err := parseID(c.Param("order_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	order, err := oc.Orders.GetOrder(orderID)
	if err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Order detail", order)
}
