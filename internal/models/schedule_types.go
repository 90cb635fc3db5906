package models

import (
	"time"
)

// MenuSchedule is the model for the 'menu_schedules' table: one menu applied to
// one (date, meal slot). MenuID is nullable because the source menu may be
// deleted after scheduling; the schedule record survives it.
type MenuSchedule struct {
	ID       int64              `json:"id" db:"id"`
	Date     time.Time          `json:"date" db:"date"`
	MealType string             `json:"mealType" db:"meal_type"`
	MenuID   *int64             `json:"menuId,omitempty" db:"menu_id"`
	Notes    *string            `json:"notes,omitempty" db:"notes"`
	Items    []MenuScheduleItem `json:"items,omitempty" db:"-"`
}

// MenuScheduleItem is the model for the 'menu_schedule_items' table. It is the
// audit snapshot of one deduction: the quantity recorded here is what was
// actually taken from stock, frozen at scheduling time and independent of any
// later edits to the source menu.
type MenuScheduleItem struct {
	ID           int64   `json:"id" db:"id"`
	ScheduleID   int64   `json:"scheduleId" db:"schedule_id"`
	InventoryID  int64   `json:"inventoryId" db:"inventory_id"`
	QuantityUsed float64 `json:"quantityUsed" db:"quantity_used"`
}
