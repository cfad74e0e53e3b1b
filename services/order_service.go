package services

import (
	"errors"
	"fmt"

	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/realtime"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"gorm.io/gorm"
)

// OrderService is the order-creation side of the coordinator boundary:
// checkout turns a PENDING pairing into an order, consuming the pairing
// in the same transaction so a pairing can never be billed twice.
type OrderService struct {
	db          *gorm.DB
	coordinator *HalfOrderService
	clock       utils.Clock
	pub         realtime.Publisher
}

func NewOrderService(db *gorm.DB, coordinator *HalfOrderService, clock utils.Clock, pub realtime.Publisher) *OrderService {
	return &OrderService{db: db, coordinator: coordinator, clock: clock, pub: pub}
}

// CreateFromPairing creates the checkout order for one pairing. If the
// pairing is not PENDING the whole operation fails and no order row is
// written.
func (s *OrderService) CreateFromPairing(pairingID uint) (*models.Order, error) {
	var pairing models.PairedOrder
	if err := s.db.Preload("Session").First(&pairing, pairingID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPairingNotFound
		}
		return nil, fmt.Errorf("failed to load pairing: %w", err)
	}

	now := s.clock.Now()
	order := models.Order{
		RestaurantID: pairing.RestaurantID,
		TableNo:      models.PairedTableLabel(pairing.Session.TableNo, pairing.JoinerTableNo),
		CustomerName: fmt.Sprintf("%s & %s", pairing.Session.CustomerName, pairing.JoinerCustomerName),
		OrderType:    "paired",
		Status:       models.OrderStatusPending,
		TotalAmount:  pairing.TotalPrice,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	tx := s.db.Begin()
	if err := tx.Create(&order).Error; err != nil {
		tx.Rollback()
		return nil, fmt.Errorf("failed to create order: %w", err)
	}

	// Consume under the pairing row lock inside this same transaction:
	// either the order and the COMPLETED pairing commit together, or
	// neither does.
	if _, err := s.coordinator.consumePairingLocked(tx, pairingID, order.ID); err != nil {
		tx.Rollback()
		return nil, err
	}

	if err := tx.Commit().Error; err != nil {
		return nil, fmt.Errorf("failed to commit order: %w", err)
	}

	s.pub.Publish(realtime.EventOrderCreated, map[string]interface{}{
		"order_id":      order.ID,
		"table_no":      order.TableNo,
		"customer_name": order.CustomerName,
		"total_amount":  order.TotalAmount,
		"status":        order.Status,
		"order_type":    order.OrderType,
	})
	utils.InfoLogger.Printf("Order %d created from pairing %d (%s)", order.ID, pairingID, order.TableNo)

	return &order, nil
}

// GetOrder returns one order with its consumed pairings.
func (s *OrderService) GetOrder(orderID uint) (*models.Order, error) {
	var order models.Order
	if err := s.db.Preload("Pairings").First(&order, orderID).Error; err != nil {
		return nil, err
	}
	return &order, nil
}
