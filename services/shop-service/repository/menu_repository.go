package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
)

type MenuRepository interface {
	FindByRole(ctx context.Context, roleID int) ([]models.Menu, error)
	Seed(ctx context.Context, menus []models.Menu, links []models.RoleMenu) error
}

type GormMenuRepository struct {
	db *gorm.DB
}

func NewGormMenuRepository(db *gorm.DB) *GormMenuRepository {
	return &GormMenuRepository{db: db}
}

func (r *GormMenuRepository) FindByRole(ctx context.Context, roleID int) ([]models.Menu, error) {
	var menus []models.Menu
	err := r.db.WithContext(ctx).
		Joins("JOIN role_menus ON role_menus.menu_id = menus.id").
		Where("role_menus.role_id = ?", roleID).
		Order("menus.sort_order ASC, menus.id ASC").
		Find(&menus).Error
	return menus, err
}

// Seed inserts missing rows only; edits made by operators survive restarts.
func (r *GormMenuRepository) Seed(ctx context.Context, menus []models.Menu, links []models.RoleMenu) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&menus).Error; err != nil {
			return err
		}
		return tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&links).Error
	})
}
