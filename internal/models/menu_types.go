package models

// Meal types. The three slots are a closed enum; everything else is rejected.
const (
	MealBreakfast = "Breakfast"
	MealLunch     = "Lunch"
	MealDinner    = "Dinner"
)

// MealTypes lists the three slots in their display (and serving) order.
var MealTypes = []string{MealBreakfast, MealLunch, MealDinner}

// IsValidMealType reports whether mealType is Breakfast, Lunch or Dinner.
func IsValidMealType(mealType string) bool {
	switch mealType {
	case MealBreakfast, MealLunch, MealDinner:
		return true
	}
	return false
}

// MealOrder returns the serving position of a meal type (Breakfast=0, Lunch=1,
// Dinner=2). Unknown values sort last.
func MealOrder(mealType string) int {
	switch mealType {
	case MealBreakfast:
		return 0
	case MealLunch:
		return 1
	case MealDinner:
		return 2
	}
	return 3
}

// Menu is the model for the 'menus' table: a reusable named recipe for one meal slot.
type Menu struct {
	ID          int64            `json:"id" db:"id"`
	MealType    string           `json:"mealType" db:"meal_type"`
	Title       string           `json:"title" db:"title"`
	Description string           `json:"description" db:"description"`
	Ingredients []MenuIngredient `json:"ingredients,omitempty" db:"-"`
}

// MenuIngredient is the model for the 'menu_ingredients' table. It belongs to
// exactly one Menu and points at an inventory item by id only — the inventory
// item may be deleted out from under it, and readers must cope.
type MenuIngredient struct {
	ID          int64   `json:"id" db:"id"`
	MenuID      int64   `json:"menuId" db:"menu_id"`
	InventoryID int64   `json:"inventoryId" db:"inventory_id"`
	Quantity    float64 `json:"quantity" db:"quantity"`
	Unit        *string `json:"unit,omitempty" db:"unit"`

	// Joined from inventory_items for display; empty when the item is gone.
	InventoryName string `json:"inventoryName,omitempty" db:"-"`
}
