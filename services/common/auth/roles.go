package auth

import "strings"

const (
	RoleSystemAdmin = "system_admin"
	RoleShopAdmin   = "shop_admin"
	RoleCustomer    = "customer"
)

// Role ids are what the admin console stores and the menu table keys on.
const (
	RoleIDSystemAdmin = 1
	RoleIDShopAdmin   = 2
	RoleIDCustomer    = 3
)

var roleIDs = map[string]int{
	RoleSystemAdmin: RoleIDSystemAdmin,
	RoleShopAdmin:   RoleIDShopAdmin,
	RoleCustomer:    RoleIDCustomer,
}

// RoleID maps a role name to its id; unknown roles map to 0.
func RoleID(role string) int {
	return roleIDs[NormalizeRole(role)]
}

// RoleName maps a role id back to its name.
func RoleName(id int) string {
	for name, rid := range roleIDs {
		if rid == id {
			return name
		}
	}
	return ""
}

// NormalizeRole accepts the spellings older clients send ("systemAdmin",
// "ShopAdmin", "shop-admin") and returns the canonical role name.
func NormalizeRole(role string) string {
	r := strings.ToLower(strings.TrimSpace(role))
	r = strings.NewReplacer("-", "", "_", "", " ", "").Replace(r)
	switch r {
	case "systemadmin", "admin", "superadmin":
		return RoleSystemAdmin
	case "shopadmin":
		return RoleShopAdmin
	case "customer", "user":
		return RoleCustomer
	}
	return ""
}

// ValidRole reports whether role is one of the known roles.
func ValidRole(role string) bool {
	_, ok := roleIDs[role]
	return ok
}
