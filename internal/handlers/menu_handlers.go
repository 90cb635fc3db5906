package handlers

import (
	"database/sql"
	"net/http"
	"strconv"

	"github.com/careops/dietary-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Menu Catalog Handlers ---
//

// MenuIngredientInput is one ingredient line of a menu being saved.
type MenuIngredientInput struct {
	InventoryID int64   `json:"inventoryId" binding:"required"`
	Quantity    float64 `json:"quantity"`
	Unit        *string `json:"unit"`
}

// MenuInput defines the JSON for creating/updating a menu.
type MenuInput struct {
	MealType    string                `json:"mealType" binding:"required"`
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Ingredients []MenuIngredientInput `json:"ingredients"`
}

// validateMenuInput applies the authoring rules: a real meal slot, a title and
// at least one ingredient. Returns false after writing the error response.
func validateMenuInput(c *gin.Context, input *MenuInput) bool {
	if !models.IsValidMealType(input.MealType) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal type: " + input.MealType})
		return false
	}
	if input.Title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Menu title is required"})
		return false
	}
	if len(input.Ingredients) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "A menu needs at least one ingredient"})
		return false
	}
	return true
}

// insertIngredients writes a menu's ingredient list inside the given transaction.
func insertIngredients(tx *sql.Tx, menuID int64, ingredients []MenuIngredientInput) error {
	query := `
		INSERT INTO menu_ingredients (menu_id, inventory_id, quantity, unit)
		VALUES (?, ?, ?, ?)`
	for _, ing := range ingredients {
		if _, err := tx.Exec(query, menuID, ing.InventoryID, ing.Quantity, ing.Unit); err != nil {
			return err
		}
	}
	return nil
}

// CreateMenu is the handler for POST /v1/menus
func (h *Handlers) CreateMenu(c *gin.Context) {
	if !callerCapabilities(c).CanAuthorMenus {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your role cannot author menus"})
		return
	}

	var input MenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validateMenuInput(c, &input) {
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		INSERT INTO menus (meal_type, title, description)
		VALUES (?, ?, ?)`,
		input.MealType, input.Title, input.Description)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create menu"})
		return
	}
	menuID, _ := result.LastInsertId()

	if err := insertIngredients(tx, menuID, input.Ingredients); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save menu ingredients"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit menu"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"message": "Menu created successfully",
		"id":      menuID,
	})
}

// GetMenus is the handler for GET /v1/menus (optionally ?meal_type=Lunch)
func (h *Handlers) GetMenus(c *gin.Context) {
	query := "SELECT id, meal_type, title, description FROM menus"
	args := []interface{}{}

	if mealType := c.Query("meal_type"); mealType != "" {
		if !models.IsValidMealType(mealType) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid meal type: " + mealType})
			return
		}
		query += " WHERE meal_type = ?"
		args = append(args, mealType)
	}
	query += " ORDER BY title"

	rows, err := h.DB.Query(query, args...)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	menus := []models.Menu{}
	for rows.Next() {
		var m models.Menu
		var description sql.NullString
		if err := rows.Scan(&m.ID, &m.MealType, &m.Title, &description); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan menu"})
			return
		}
		m.Description = description.String
		menus = append(menus, m)
	}

	c.JSON(http.StatusOK, gin.H{"menus": menus})
}

// GetMenu is the handler for GET /v1/menus/:id. The ingredient list comes back
// with inventory names resolved where the items still exist.
func (h *Handlers) GetMenu(c *gin.Context) {
	menuID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu ID"})
		return
	}

	var m models.Menu
	var description sql.NullString
	err = h.DB.QueryRow(
		"SELECT id, meal_type, title, description FROM menus WHERE id = ?", menuID,
	).Scan(&m.ID, &m.MealType, &m.Title, &description)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
		return
	}
	m.Description = description.String

	rows, err := h.DB.Query(`
		SELECT mi.id, mi.menu_id, mi.inventory_id, mi.quantity, mi.unit, i.name
		FROM menu_ingredients mi
		LEFT JOIN inventory_items i ON mi.inventory_id = i.id
		WHERE mi.menu_id = ?
		ORDER BY mi.id`, menuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	for rows.Next() {
		var ing models.MenuIngredient
		var name sql.NullString
		if err := rows.Scan(&ing.ID, &ing.MenuID, &ing.InventoryID, &ing.Quantity, &ing.Unit, &name); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan ingredient"})
			return
		}
		ing.InventoryName = name.String
		m.Ingredients = append(m.Ingredients, ing)
	}

	c.JSON(http.StatusOK, gin.H{"menu": m})
}

// UpdateMenu is the handler for PUT /v1/menus/:id. The ingredient list is a
// full replace, not a merge: whatever is sent becomes the whole list.
func (h *Handlers) UpdateMenu(c *gin.Context) {
	if !callerCapabilities(c).CanAuthorMenus {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your role cannot author menus"})
		return
	}

	menuID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu ID"})
		return
	}

	var input MenuInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !validateMenuInput(c, &input) {
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	result, err := tx.Exec(`
		UPDATE menus
		SET meal_type = ?, title = ?, description = ?
		WHERE id = ?`,
		input.MealType, input.Title, input.Description, menuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update menu"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		var exists int64
		if err := tx.QueryRow("SELECT id FROM menus WHERE id = ?", menuID).Scan(&exists); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
			return
		}
	}

	if _, err := tx.Exec("DELETE FROM menu_ingredients WHERE menu_id = ?", menuID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to replace ingredients"})
		return
	}
	if err := insertIngredients(tx, menuID, input.Ingredients); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save menu ingredients"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit menu"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu updated successfully"})
}

// DeleteMenu is the handler for DELETE /v1/menus/:id
//
// Existing schedules that reference the menu are left alone; they fall back to
// a placeholder title when displayed.
func (h *Handlers) DeleteMenu(c *gin.Context) {
	if !callerCapabilities(c).CanAuthorMenus {
		c.JSON(http.StatusForbidden, gin.H{"error": "Your role cannot author menus"})
		return
	}

	menuID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid menu ID"})
		return
	}

	tx, err := h.DB.Begin()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to start transaction"})
		return
	}
	defer tx.Rollback()

	if _, err := tx.Exec("DELETE FROM menu_ingredients WHERE menu_id = ?", menuID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu ingredients"})
		return
	}
	result, err := tx.Exec("DELETE FROM menus WHERE id = ?", menuID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete menu"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Menu not found"})
		return
	}

	if err := tx.Commit(); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to commit deletion"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Menu deleted successfully"})
}
