package config

import (
	"github.com/Devesh-Pathak7/Splite-Eat/models"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Seed inserts a minimal development dataset: one restaurant, a few
// tables, two half-eligible menu items and a staff login. No-op when the
// restaurant table already has rows.
func Seed(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.Restaurant{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	restaurant := models.Restaurant{Name: "Splite Eat Demo", Location: "Main Street"}
	if err := db.Create(&restaurant).Error; err != nil {
		return err
	}

	for _, no := range []string{"T1", "T2", "T3", "T4"} {
		if err := db.Create(&models.Table{RestaurantID: restaurant.ID, TableNumber: no, Status: "available"}).Error; err != nil {
			return err
		}
	}

	half := func(v float64) *float64 { return &v }
	items := []models.MenuItem{
		{RestaurantID: restaurant.ID, Name: "Family Biryani", Category: "Mains", Price: 480, HalfPrice: half(260), Available: true},
		{RestaurantID: restaurant.ID, Name: "Large Pizza", Category: "Mains", Price: 540, HalfPrice: half(290), Available: true},
		{RestaurantID: restaurant.ID, Name: "Espresso", Category: "Drinks", Price: 120, Available: true},
	}
	for i := range items {
		if err := db.Create(&items[i]).Error; err != nil {
			return err
		}
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte("counter123"), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	return db.Create(&models.User{
		Name:         "Counter Admin",
		Email:        "counter@spliteeat.local",
		Password:     string(hashed),
		Role:         models.RoleAdmin,
		RestaurantID: &restaurant.ID,
	}).Error
}
