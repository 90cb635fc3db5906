package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/careops/dietary-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Inventory Item Handlers ---
//

// InventoryItemInput defines the JSON for creating/updating an inventory item
type InventoryItemInput struct {
	Name              string  `json:"name" binding:"required"`
	Unit              string  `json:"unit"`
	Quantity          float64 `json:"quantity"`
	LowStockThreshold float64 `json:"lowStockThreshold" binding:"gte=0"`
}

// CreateInventoryItem is the handler for POST /v1/inventory
func (h *Handlers) CreateInventoryItem(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input InventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Unit == "" {
		input.Unit = "pcs"
	}
	if !models.IsValidUnit(input.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit: " + input.Unit})
		return
	}

	// 2. --- Save to Database ---
	query := `
		INSERT INTO inventory_items (name, unit, quantity, low_stock_threshold, updated_at)
		VALUES (?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query,
		input.Name, input.Unit, input.Quantity, input.LowStockThreshold, time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to create inventory item (name taken?)"})
		return
	}
	id, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Inventory item created successfully",
		"id":      id,
	})
}

// GetInventoryItems is the handler for GET /v1/inventory
func (h *Handlers) GetInventoryItems(c *gin.Context) {
	query := `
		SELECT id, name, unit, quantity, low_stock_threshold, updated_at
		FROM inventory_items
		ORDER BY name`
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	items := []models.InventoryItem{}
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(
			&item.ID, &item.Name, &item.Unit, &item.Quantity,
			&item.LowStockThreshold, &item.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan inventory item"})
			return
		}
		item.LowStock = item.IsLow()
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{"items": items})
}

// GetInventoryItem is the handler for GET /v1/inventory/:id
func (h *Handlers) GetInventoryItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var item models.InventoryItem
	query := `
		SELECT id, name, unit, quantity, low_stock_threshold, updated_at
		FROM inventory_items
		WHERE id = ?`
	err = h.DB.QueryRow(query, itemID).Scan(
		&item.ID, &item.Name, &item.Unit, &item.Quantity,
		&item.LowStockThreshold, &item.UpdatedAt,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}
	item.LowStock = item.IsLow()

	c.JSON(http.StatusOK, gin.H{"item": item})
}

// UpdateInventoryItem is the handler for PUT /v1/inventory/:id
func (h *Handlers) UpdateInventoryItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var input InventoryItemInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if input.Unit == "" {
		input.Unit = "pcs"
	}
	if !models.IsValidUnit(input.Unit) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid unit: " + input.Unit})
		return
	}

	query := `
		UPDATE inventory_items
		SET name = ?, unit = ?, quantity = ?, low_stock_threshold = ?, updated_at = ?
		WHERE id = ?`
	result, err := h.DB.Exec(query,
		input.Name, input.Unit, input.Quantity, input.LowStockThreshold, time.Now(), itemID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update inventory item"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		var exists int64
		if err := h.DB.QueryRow("SELECT id FROM inventory_items WHERE id = ?", itemID).Scan(&exists); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item updated successfully"})
}

// BumpInput defines the JSON for POST /v1/inventory/:id/bump
type BumpInput struct {
	Delta float64 `json:"delta" binding:"required"`
}

// BumpInventoryItem is the handler for POST /v1/inventory/:id/bump. It applies
// a signed manual adjustment to the quantity on hand. Unlike the scheduling
// engine, this path does not stop the quantity going negative.
func (h *Handlers) BumpInventoryItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	var input BumpInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.DB.Exec(`
		UPDATE inventory_items
		SET quantity = quantity + ?, updated_at = ?
		WHERE id = ?`,
		input.Delta, time.Now(), itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to adjust quantity"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	var quantity float64
	_ = h.DB.QueryRow("SELECT quantity FROM inventory_items WHERE id = ?", itemID).Scan(&quantity)

	c.JSON(http.StatusOK, gin.H{
		"message":  "Quantity adjusted successfully",
		"quantity": quantity,
	})
}

// DeleteInventoryItem is the handler for DELETE /v1/inventory/:id
//
// No cascade guard: menus and schedule snapshots referencing this item keep
// their rows and render a placeholder where the name used to be.
func (h *Handlers) DeleteInventoryItem(c *gin.Context) {
	itemID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid item ID"})
		return
	}

	result, err := h.DB.Exec("DELETE FROM inventory_items WHERE id = ?", itemID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete inventory item"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Inventory item not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Inventory item deleted successfully"})
}
