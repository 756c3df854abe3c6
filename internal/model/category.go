package model

import "time"

// Category is the top level of the two-level todo taxonomy.
// Subcategories are ordered by their own SortOrder.
type Category struct {
	ID            string        `json:"id"`
	UserID        string        `json:"user_id"`
	Name          string        `json:"name"`
	Icon          string        `json:"icon"`
	ColorLight    string        `json:"color_light"`
	ColorDark     string        `json:"color_dark"`
	SortOrder     int           `json:"sort_order"`
	CreatedAt     time.Time     `json:"created_at"`
	Subcategories []Subcategory `json:"subcategories"`
}

// Color returns the display color for the active theme.
func (c Category) Color(dark bool) string {
	if dark {
		return c.ColorDark
	}
	return c.ColorLight
}

// Subcategory belongs to exactly one Category; deleting the category
// deletes its subcategories.
type Subcategory struct {
	ID         string    `json:"id"`
	CategoryID string    `json:"category_id"`
	UserID     string    `json:"user_id"`
	Name       string    `json:"name"`
	Icon       string    `json:"icon"`
	SortOrder  int       `json:"sort_order"`
	CreatedAt  time.Time `json:"created_at"`
}

// SeedSubcategory is one entry of a default category's subcategory list.
type SeedSubcategory struct {
	Name      string
	Icon      string
	SortOrder int
}

// SeedCategory is one entry of the default category set created for new users.
type SeedCategory struct {
	Name          string
	Icon          string
	ColorLight    string
	ColorDark     string
	SortOrder     int
	Subcategories []SeedSubcategory
}

// DefaultCategories is inserted for a user whose category list is empty.
var DefaultCategories = []SeedCategory{
	{
		Name: "Работа", Icon: "Briefcase",
		ColorLight: "#D97706", ColorDark: "#E8943A", SortOrder: 0,
		Subcategories: []SeedSubcategory{
			{Name: "Программирование", Icon: "Code", SortOrder: 0},
			{Name: "YouTube", Icon: "Youtube", SortOrder: 1},
			{Name: "Другое", Icon: "MoreHorizontal", SortOrder: 2},
		},
	},
	{
		Name: "Учёба", Icon: "GraduationCap",
		ColorLight: "#7C6E8A", ColorDark: "#9688A4", SortOrder: 1,
		Subcategories: []SeedSubcategory{
			{Name: "Программирование", Icon: "Code", SortOrder: 0},
			{Name: "Французский", Icon: "Languages", SortOrder: 1},
			{Name: "Английский", Icon: "Languages", SortOrder: 2},
		},
	},
	{
		Name: "Хобби", Icon: "Palette",
		ColorLight: "#9B7653", ColorDark: "#B08D6A", SortOrder: 2,
		Subcategories: []SeedSubcategory{
			{Name: "Программирование", Icon: "Code", SortOrder: 0},
			{Name: "Музыка", Icon: "Music", SortOrder: 1},
			{Name: "Другое", Icon: "MoreHorizontal", SortOrder: 2},
		},
	},
	{
		Name: "Личное", Icon: "User",
		ColorLight: "#8B6F5C", ColorDark: "#A68B78", SortOrder: 3,
	},
	{
		Name: "Покупки", Icon: "ShoppingCart",
		ColorLight: "#B07D4B", ColorDark: "#C9945E", SortOrder: 4,
	},
	{
		Name: "Здоровье", Icon: "Heart",
		ColorLight: "#6B8F71", ColorDark: "#7FA886", SortOrder: 5,
	},
}
