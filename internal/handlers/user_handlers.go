package handlers

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/careops/dietary-golang/internal/auth"
	"github.com/careops/dietary-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Auth & Staff Handlers ---
//

// LoginInput defines the JSON for POST /v1/login
type LoginInput struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// Login is the handler for POST /v1/login
func (h *Handlers) Login(c *gin.Context) {
	// 1. --- Bind & Validate JSON ---
	var input LoginInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// 2. --- Look up the user ---
	var user models.User
	query := `
		SELECT id, first_name, last_name, username, role, password_hash, must_change_password
		FROM users
		WHERE username = ?`
	err := h.DB.QueryRow(query, input.Username).Scan(
		&user.ID, &user.FirstName, &user.LastName, &user.Username,
		&user.Role, &user.PasswordHash, &user.MustChangePassword,
	)
	if err != nil {
		// Same response for unknown user and bad password.
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	// 3. --- Check the password ---
	pw := models.Password{Hash: user.PasswordHash}
	match, err := pw.Matches(input.Password)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to verify password"})
		return
	}
	if !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid username or password"})
		return
	}

	// 4. --- Issue a token ---
	token, err := auth.GenerateToken(user.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"token":              token,
		"role":               user.Role,
		"mustChangePassword": user.MustChangePassword,
	})
}

// ChangePasswordInput defines the JSON for POST /v1/change-password
type ChangePasswordInput struct {
	CurrentPassword string `json:"currentPassword" binding:"required"`
	NewPassword     string `json:"newPassword" binding:"required,min=4"`
}

// ChangePassword is the handler for POST /v1/change-password. It also clears
// the must_change_password flag set on freshly created staff accounts.
func (h *Handlers) ChangePassword(c *gin.Context) {
	userID_raw, _ := c.Get("userID")
	userID := userID_raw.(int64)

	var input ChangePasswordInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var currentHash string
	err := h.DB.QueryRow("SELECT password_hash FROM users WHERE id = ?", userID).Scan(&currentHash)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load account"})
		return
	}

	pw := models.Password{Hash: currentHash}
	match, err := pw.Matches(input.CurrentPassword)
	if err != nil || !match {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Current password is incorrect"})
		return
	}

	if err := pw.Set(input.NewPassword); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	_, err = h.DB.Exec(`
		UPDATE users
		SET password_hash = ?, must_change_password = FALSE, updated_at = ?
		WHERE id = ?`,
		pw.Hash, time.Now(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update password"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password updated successfully"})
}

// StaffInput defines the JSON for creating/updating a staff account
type StaffInput struct {
	FirstName  string  `json:"firstName"`
	LastName   string  `json:"lastName"`
	Username   string  `json:"username" binding:"required"`
	EmployeeID *string `json:"employeeId"`
	Email      *string `json:"email"`
	Role       string  `json:"role" binding:"required"`
	Password   string  `json:"password"`
}

// CreateStaff is the handler for POST /v1/staff (Manager-only).
// New accounts are created with must_change_password set so the initial
// password handed to the employee only works once.
func (h *Handlers) CreateStaff(c *gin.Context) {
	var input StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role: " + input.Role})
		return
	}
	if input.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Password is required"})
		return
	}

	var pw models.Password
	if err := pw.Set(input.Password); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
		return
	}

	now := time.Now()
	query := `
		INSERT INTO users (first_name, last_name, username, employee_id, email, role,
		                   password_hash, must_change_password, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, TRUE, ?, ?)`
	result, err := h.DB.Exec(query,
		input.FirstName, input.LastName, input.Username, input.EmployeeID,
		input.Email, input.Role, pw.Hash, now, now,
	)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Failed to create staff account (username taken?)"})
		return
	}
	id, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Staff account created successfully",
		"id":      id,
	})
}

// GetStaff is the handler for GET /v1/staff (Manager-only).
func (h *Handlers) GetStaff(c *gin.Context) {
	query := `
		SELECT id, first_name, last_name, username, employee_id, email, role,
		       must_change_password, created_at, updated_at
		FROM users
		ORDER BY last_name, first_name`
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	staff := []models.User{}
	for rows.Next() {
		var u models.User
		if err := rows.Scan(
			&u.ID, &u.FirstName, &u.LastName, &u.Username, &u.EmployeeID, &u.Email,
			&u.Role, &u.MustChangePassword, &u.CreatedAt, &u.UpdatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan staff row"})
			return
		}
		staff = append(staff, u)
	}

	c.JSON(http.StatusOK, gin.H{"staff": staff})
}

// UpdateStaff is the handler for PUT /v1/staff/:id (Manager-only).
// A non-empty password resets the account and re-arms must_change_password.
func (h *Handlers) UpdateStaff(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff ID"})
		return
	}

	var input StaffInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !models.IsValidRole(input.Role) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid role: " + input.Role})
		return
	}

	var result sql.Result
	if input.Password != "" {
		var pw models.Password
		if err := pw.Set(input.Password); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to hash password"})
			return
		}
		result, err = h.DB.Exec(`
			UPDATE users
			SET first_name = ?, last_name = ?, username = ?, employee_id = ?, email = ?,
			    role = ?, password_hash = ?, must_change_password = TRUE, updated_at = ?
			WHERE id = ?`,
			input.FirstName, input.LastName, input.Username, input.EmployeeID,
			input.Email, input.Role, pw.Hash, time.Now(), staffID)
	} else {
		result, err = h.DB.Exec(`
			UPDATE users
			SET first_name = ?, last_name = ?, username = ?, employee_id = ?, email = ?,
			    role = ?, updated_at = ?
			WHERE id = ?`,
			input.FirstName, input.LastName, input.Username, input.EmployeeID,
			input.Email, input.Role, time.Now(), staffID)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update staff account"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		// Also hit when nothing changed; treat an unknown id as the real miss.
		var exists int64
		if err := h.DB.QueryRow("SELECT id FROM users WHERE id = ?", staffID).Scan(&exists); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Staff account not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff account updated successfully"})
}

// DeleteStaff is the handler for DELETE /v1/staff/:id (Manager-only).
func (h *Handlers) DeleteStaff(c *gin.Context) {
	staffID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid staff ID"})
		return
	}

	// Managers cannot delete themselves; the last manager must survive.
	userID_raw, _ := c.Get("userID")
	if userID_raw.(int64) == staffID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "You cannot delete your own account"})
		return
	}

	result, err := h.DB.Exec("DELETE FROM users WHERE id = ?", staffID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete staff account"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Staff account not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Staff account deleted successfully"})
}
