package models

import (
	"time"
)

// Units of measure accepted for inventory items. "pcs" is the default.
var InventoryUnits = []string{"pcs", "kg", "g", "l", "ml", "oz", "lb", "pack"}

// IsValidUnit reports whether unit is one of the accepted units of measure.
func IsValidUnit(unit string) bool {
	for _, u := range InventoryUnits {
		if u == unit {
			return true
		}
	}
	return false
}

// InventoryItem is the model for the 'inventory_items' table.
// Quantity is a float because stock is tracked in litres/kilos as well as pieces.
type InventoryItem struct {
	ID                int64     `json:"id" db:"id"`
	Name              string    `json:"name" db:"name"`
	Unit              string    `json:"unit" db:"unit"`
	Quantity          float64   `json:"quantity" db:"quantity"`
	LowStockThreshold float64   `json:"lowStockThreshold" db:"low_stock_threshold"`
	UpdatedAt         time.Time `json:"updatedAt" db:"updated_at"`

	// LowStock is derived on reads, never stored.
	LowStock bool `json:"lowStock" db:"-"`
}

// IsLow reports whether the item sits at or below its low-stock threshold.
// Items with no threshold configured are never flagged.
func (i *InventoryItem) IsLow() bool {
	return i.LowStockThreshold > 0 && i.Quantity <= i.LowStockThreshold
}
