package models

// Menu is one entry of the admin console side bar.
type Menu struct {
	ID        int    `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Title     string `gorm:"size:100;not null" json:"title"`
	Route     string `gorm:"size:150" json:"route"`
	Icon      string `gorm:"size:60" json:"icon"`
	ParentID  *int   `gorm:"index" json:"parent_id,omitempty"`
	SortOrder int    `gorm:"default:0" json:"sort_order"`
	Children  []Menu `gorm:"-" json:"children"`
}

type RoleMenu struct {
	RoleID int `gorm:"primaryKey;autoIncrement:false"`
	MenuID int `gorm:"primaryKey;autoIncrement:false"`
}
