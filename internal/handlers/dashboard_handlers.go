package handlers

import (
	"net/http"

	"github.com/careops/dietary-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Dashboard Handlers ---
//

// GetDashboardStats is the handler for GET /v1/dashboard. It backs the home
// screen tiles: headline counts plus the items currently at or below their
// low-stock threshold.
func (h *Handlers) GetDashboardStats(c *gin.Context) {
	var residentCount, inventoryCount, menuCount, scheduleCount int64

	counts := []struct {
		query string
		dest  *int64
	}{
		{"SELECT COUNT(*) FROM residents", &residentCount},
		{"SELECT COUNT(*) FROM inventory_items", &inventoryCount},
		{"SELECT COUNT(*) FROM menus", &menuCount},
		{"SELECT COUNT(*) FROM menu_schedules WHERE date >= CURDATE()", &scheduleCount},
	}
	for _, count := range counts {
		if err := h.DB.QueryRow(count.query).Scan(count.dest); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard stats"})
			return
		}
	}

	rows, err := h.DB.Query(`
		SELECT id, name, unit, quantity, low_stock_threshold, updated_at
		FROM inventory_items
		WHERE low_stock_threshold > 0 AND quantity <= low_stock_threshold
		ORDER BY name`)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load low-stock items"})
		return
	}
	defer rows.Close()

	lowStock := []models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Unit, &item.Quantity,
			&item.LowStockThreshold, &item.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan low-stock item"})
			return
		}
		item.LowStock = true
		lowStock = append(lowStock, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"residents":         residentCount,
		"inventoryItems":    inventoryCount,
		"menus":             menuCount,
		"upcomingSchedules": scheduleCount,
		"lowStockItems":     lowStock,
	})
}
