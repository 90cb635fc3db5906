package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/careops/dietary-golang/internal/models"
	"github.com/gin-gonic/gin"
)

//
// --- Resident Handlers ---
//

// ResidentInput defines the JSON for creating/updating a resident.
// Birthday arrives as a string so we can accept several date formats.
type ResidentInput struct {
	FirstName   string  `json:"firstName" binding:"required"`
	LastName    string  `json:"lastName" binding:"required"`
	Birthday    *string `json:"birthday"`
	Medications *string `json:"medications"`
	Illnesses   *string `json:"illnesses"`
	Allergies   *string `json:"allergies"`
	Fluids      *string `json:"fluids"`
	Diet        *string `json:"diet"`
	Notes       *string `json:"notes"`
}

func (in *ResidentInput) birthday(c *gin.Context) (*time.Time, bool) {
	if in.Birthday == nil || *in.Birthday == "" {
		return nil, true
	}
	t, ok := parseDate(*in.Birthday)
	if !ok {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid birthday format (use YYYY-MM-DD)"})
		return nil, false
	}
	return &t, true
}

// CreateResident is the handler for POST /v1/residents
func (h *Handlers) CreateResident(c *gin.Context) {
	var input ResidentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bday, ok := input.birthday(c)
	if !ok {
		return
	}

	query := `
		INSERT INTO residents (first_name, last_name, birthday, medications, illnesses,
		                       allergies, fluids, diet, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	result, err := h.DB.Exec(query,
		input.FirstName, input.LastName, bday, input.Medications, input.Illnesses,
		input.Allergies, input.Fluids, input.Diet, input.Notes, time.Now(),
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create resident"})
		return
	}
	id, _ := result.LastInsertId()

	c.JSON(http.StatusCreated, gin.H{
		"message": "Resident created successfully",
		"id":      id,
	})
}

// GetResidents is the handler for GET /v1/residents
func (h *Handlers) GetResidents(c *gin.Context) {
	query := `
		SELECT id, first_name, last_name, birthday, medications, illnesses,
		       allergies, fluids, diet, notes, created_at
		FROM residents
		ORDER BY last_name, first_name`
	rows, err := h.DB.Query(query)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Database query failed"})
		return
	}
	defer rows.Close()

	residents := []models.Resident{}
	for rows.Next() {
		var r models.Resident
		if err := rows.Scan(
			&r.ID, &r.FirstName, &r.LastName, &r.Birthday, &r.Medications, &r.Illnesses,
			&r.Allergies, &r.Fluids, &r.Diet, &r.Notes, &r.CreatedAt,
		); err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to scan resident"})
			return
		}
		r.Age = models.CalcAge(r.Birthday)
		residents = append(residents, r)
	}

	c.JSON(http.StatusOK, gin.H{"residents": residents})
}

// GetResident is the handler for GET /v1/residents/:id
func (h *Handlers) GetResident(c *gin.Context) {
	residentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident ID"})
		return
	}

	var r models.Resident
	query := `
		SELECT id, first_name, last_name, birthday, medications, illnesses,
		       allergies, fluids, diet, notes, created_at
		FROM residents
		WHERE id = ?`
	err = h.DB.QueryRow(query, residentID).Scan(
		&r.ID, &r.FirstName, &r.LastName, &r.Birthday, &r.Medications, &r.Illnesses,
		&r.Allergies, &r.Fluids, &r.Diet, &r.Notes, &r.CreatedAt,
	)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
		return
	}
	r.Age = models.CalcAge(r.Birthday)

	c.JSON(http.StatusOK, gin.H{"resident": r})
}

// UpdateResident is the handler for PUT /v1/residents/:id
func (h *Handlers) UpdateResident(c *gin.Context) {
	residentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident ID"})
		return
	}

	var input ResidentInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	bday, ok := input.birthday(c)
	if !ok {
		return
	}

	query := `
		UPDATE residents
		SET first_name = ?, last_name = ?, birthday = ?, medications = ?, illnesses = ?,
		    allergies = ?, fluids = ?, diet = ?, notes = ?
		WHERE id = ?`
	result, err := h.DB.Exec(query,
		input.FirstName, input.LastName, bday, input.Medications, input.Illnesses,
		input.Allergies, input.Fluids, input.Diet, input.Notes, residentID,
	)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update resident"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		var exists int64
		if err := h.DB.QueryRow("SELECT id FROM residents WHERE id = ?", residentID).Scan(&exists); err != nil {
			c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
			return
		}
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resident updated successfully"})
}

// DeleteResident is the handler for DELETE /v1/residents/:id
func (h *Handlers) DeleteResident(c *gin.Context) {
	residentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid resident ID"})
		return
	}

	result, err := h.DB.Exec("DELETE FROM residents WHERE id = ?", residentID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete resident"})
		return
	}
	if affected, _ := result.RowsAffected(); affected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Resident not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Resident deleted successfully"})
}
