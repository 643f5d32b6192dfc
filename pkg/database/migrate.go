package database

import (
	"go-pos-inventory/internal/model"

	"gorm.io/gorm"
)

// Models lists every table owned by the application, in creation order
func Models() []interface{} {
	return []interface{}{
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Category{},
		&model.Ingredient{},
		&model.StockLedgerEntry{},
		&model.Product{},
		&model.RecipeEntry{},
		&model.Sale{},
		&model.SaleItem{},
	}
}

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(Models()...)
}
