package models

import (
	"time"
)

// Resident is the model for the 'residents' table.
// Pointers are used for nullable columns so the JSON stays clean.
type Resident struct {
	ID          int64      `json:"id" db:"id"`
	FirstName   string     `json:"firstName" db:"first_name"`
	LastName    string     `json:"lastName" db:"last_name"`
	Birthday    *time.Time `json:"birthday,omitempty" db:"birthday"`
	Medications *string    `json:"medications,omitempty" db:"medications"`
	Illnesses   *string    `json:"illnesses,omitempty" db:"illnesses"`
	Allergies   *string    `json:"allergies,omitempty" db:"allergies"`
	Fluids      *string    `json:"fluids,omitempty" db:"fluids"`
	Diet        *string    `json:"diet,omitempty" db:"diet"`
	Notes       *string    `json:"notes,omitempty" db:"notes"`
	CreatedAt   time.Time  `json:"createdAt" db:"created_at"`

	// Age is computed from Birthday at read time, never stored.
	Age *int `json:"age,omitempty" db:"-"`
}

// CalcAge returns the whole years between bday and today, or nil without a birthday.
func CalcAge(bday *time.Time) *int {
	if bday == nil {
		return nil
	}
	now := time.Now()
	years := now.Year() - bday.Year()
	if now.Month() < bday.Month() || (now.Month() == bday.Month() && now.Day() < bday.Day()) {
		years--
	}
	if years < 0 {
		years = 0
	}
	return &years
}
