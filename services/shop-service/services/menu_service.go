package services

import (
	"context"

	"go.uber.org/zap"

	commonauth "github.com/Khizarkk7/storefront-backend/services/common/auth"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/models"
	"github.com/Khizarkk7/storefront-backend/services/shop-service/repository"
)

type MenuService interface {
	GetMenusByRole(ctx context.Context, roleID int) ([]models.Menu, *ServiceError)
	SeedDefaults(ctx context.Context) error
}

type menuServiceImpl struct {
	repo   repository.MenuRepository
	logger *zap.Logger
}

func NewMenuService(repo repository.MenuRepository, logger *zap.Logger) MenuService {
	return &menuServiceImpl{repo: repo, logger: logger}
}

func (s *menuServiceImpl) GetMenusByRole(ctx context.Context, roleID int) ([]models.Menu, *ServiceError) {
	if roleID <= 0 {
		return nil, &ServiceError{StatusCode: 400, Message: "invalid role id"}
	}
	flat, err := s.repo.FindByRole(ctx, roleID)
	if err != nil {
		s.logger.Error("Failed to load menus", zap.Int("role_id", roleID), zap.Error(err))
		return nil, &ServiceError{StatusCode: 500, Message: "failed to load menus"}
	}
	return BuildMenuTree(flat), nil
}

// BuildMenuTree nests children under their parent, keeping input order.
// Entries whose parent is not in the list are promoted to the top level.
func BuildMenuTree(flat []models.Menu) []models.Menu {
	present := make(map[int]bool, len(flat))
	for _, m := range flat {
		present[m.ID] = true
	}

	children := make(map[int][]models.Menu)
	for _, m := range flat {
		if m.ParentID != nil && present[*m.ParentID] && *m.ParentID != m.ID {
			children[*m.ParentID] = append(children[*m.ParentID], m)
		}
	}

	tree := make([]models.Menu, 0, len(flat))
	for _, m := range flat {
		if m.ParentID != nil && present[*m.ParentID] && *m.ParentID != m.ID {
			continue
		}
		m.Children = children[m.ID]
		if m.Children == nil {
			m.Children = []models.Menu{}
		}
		tree = append(tree, m)
	}
	return tree
}

func (s *menuServiceImpl) SeedDefaults(ctx context.Context) error {
	menus, links := DefaultMenus()
	if err := s.repo.Seed(ctx, menus, links); err != nil {
		return err
	}
	s.logger.Info("Menus seeded", zap.Int("menus", len(menus)), zap.Int("links", len(links)))
	return nil
}

func intPtr(v int) *int { return &v }

func DefaultMenus() ([]models.Menu, []models.RoleMenu) {
	menus := []models.Menu{
		{ID: 1, Title: "Dashboard", Route: "/admin/dashboard", Icon: "dashboard", SortOrder: 1},
		{ID: 2, Title: "Shops", Route: "/admin/shops", Icon: "store", SortOrder: 2},
		{ID: 3, Title: "Users", Route: "/admin/users", Icon: "people", SortOrder: 3},
		{ID: 4, Title: "Catalog", Icon: "inventory", SortOrder: 4},
		{ID: 5, Title: "Products", Route: "/admin/products", Icon: "category", ParentID: intPtr(4), SortOrder: 1},
		{ID: 6, Title: "Stock", Route: "/admin/stock", Icon: "warehouse", ParentID: intPtr(4), SortOrder: 2},
		{ID: 7, Title: "Orders", Route: "/admin/orders", Icon: "receipt", SortOrder: 5},
		{ID: 8, Title: "Promotions", Route: "/admin/promotions", Icon: "local_offer", SortOrder: 6},
		{ID: 9, Title: "Notifications", Route: "/admin/notifications", Icon: "notifications", SortOrder: 7},
		{ID: 10, Title: "My Shop", Route: "/admin/my-shop", Icon: "storefront", SortOrder: 2},
		{ID: 11, Title: "My Orders", Route: "/account/orders", Icon: "shopping_bag", SortOrder: 1},
		{ID: 12, Title: "Profile", Route: "/account/profile", Icon: "person", SortOrder: 2},
	}

	roleMenus := map[int][]int{
		commonauth.RoleIDSystemAdmin: {1, 2, 3, 4, 5, 6, 7, 8, 9, 12},
		commonauth.RoleIDShopAdmin:   {1, 10, 3, 4, 5, 6, 7, 12},
		commonauth.RoleIDCustomer:    {11, 12},
	}
	var links []models.RoleMenu
	for _, role := range []int{commonauth.RoleIDSystemAdmin, commonauth.RoleIDShopAdmin, commonauth.RoleIDCustomer} {
		for _, id := range roleMenus[role] {
			links = append(links, models.RoleMenu{RoleID: role, MenuID: id})
		}
	}
	return menus, links
}
