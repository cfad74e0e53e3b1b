package controllers

import (
	"net/http"

	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"github.com/Devesh-Pathak7/Splite-Eat/utils"
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

type MenuController struct {
	DB *gorm.DB
}

func NewMenuController(db *gorm.DB) *MenuController {
	return &MenuController{DB: db}
}

// GetMenuItems -> GET /restaurants/:restaurant_id/menu
// ?half=true filters to items that can be advertised as half orders.
func (mc *MenuController) GetMenuItems(c *gin.Context) {
	restaurantID, err := parseID(c.Param("restaurant_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	query := mc.DB.Where("restaurant_id = ? AND available = ?", restaurantID, true)
	if c.Query("half") == "true" {
		query = query.Where("half_price IS NOT NULL AND half_price > 0")
	}

	var items []models.MenuItem
	if err := query.Find(&items).Error; err != nil {
		utils.RespondError(c, http.StatusInternalServerError, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu items", items)
}

// GetMenuItem -> GET /menu-items/:item_id
func (mc *MenuController) GetMenuItem(c *gin.Context) {
	itemID, err := parseID(c.Param("item_id"))
	if err != nil {
		utils.RespondError(c, http.StatusBadRequest, err)
		return
	}

	var item models.MenuItem
	if err := mc.DB.First(&item, itemID).Error; err != nil {
		utils.RespondError(c, http.StatusNotFound, err)
		return
	}
	utils.RespondJSON(c, http.StatusOK, "Menu item detail", item)
}
