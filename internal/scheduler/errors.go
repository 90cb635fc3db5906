package scheduler

import (
	"errors"
	"fmt"
	"strings"
)

// ErrEmptySelection is returned when a scheduling request names no meal slot.
var ErrEmptySelection = errors.New("no meal slot selected")

// ErrNotPermitted is returned when the caller's capability set does not allow
// the attempted operation.
var ErrNotPermitted = errors.New("operation not permitted for this role")

// ErrScheduleNotFound is returned by DeleteSchedule for an unknown id.
var ErrScheduleNotFound = errors.New("schedule not found")

// ValidationError covers caller mistakes that are fixable by resubmission:
// an unknown meal slot, a menu id that doesn't exist, an empty title.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// DataIntegrityError reports a menu ingredient pointing at an inventory item
// that no longer exists. It aborts the whole request before any write.
type DataIntegrityError struct {
	MealType    string
	MenuID      int64
	InventoryID int64
}

func (e *DataIntegrityError) Error() string {
	return fmt.Sprintf("%s: menu %d references missing inventory item %d",
		e.MealType, e.MenuID, e.InventoryID)
}

// Shortage describes one under-stocked item found by the sufficiency check.
type Shortage struct {
	InventoryID int64   `json:"inventoryId"`
	Name        string  `json:"name"`
	Unit        string  `json:"unit"`
	Need        float64 `json:"need"`
	Have        float64 `json:"have"`
}

// InsufficientStockError carries every under-stocked item at once, so the
// caller can show all problems in a single response rather than one per retry.
type InsufficientStockError struct {
	Shortages []Shortage
}

func (e *InsufficientStockError) Error() string {
	parts := make([]string, 0, len(e.Shortages))
	for _, s := range e.Shortages {
		parts = append(parts, fmt.Sprintf("%s (need %g, have %g %s)", s.Name, s.Need, s.Have, s.Unit))
	}
	return "insufficient stock: " + strings.Join(parts, ", ")
}
