package scheduler

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/careops/dietary-golang/internal/auth"
	"github.com/careops/dietary-golang/internal/models"
)

//
// --- Scheduling Engine ---
//
// Applies reusable menus to concrete (date, meal slot) pairs and deducts the
// required quantities from inventory, all inside one transaction. The
// sufficiency check runs over the combined demand of every slot in the
// request: Breakfast and Dinner sharing an item must have their needs summed
// before either is compared against stock.
//

// Selection is one meal slot's requested menu. Overrides are keyed by
// menu_ingredient id and carried as raw strings: a value that parses as a
// number replaces the menu's default quantity (zero included), anything else
// falls back to the default.
type Selection struct {
	MenuID    int64            `json:"menuId"`
	Overrides map[int64]string `json:"overrides,omitempty"`
}

// Deduction is one line of the post-commit summary, aggregated per item.
type Deduction struct {
	ItemName string  `json:"itemName"`
	Unit     string  `json:"unit"`
	Amount   float64 `json:"amountDeducted"`
}

// Engine owns the scheduling transaction. It talks to the database directly;
// there is no cached state.
type Engine struct {
	DB *sql.DB
}

func NewEngine(db *sql.DB) *Engine {
	return &Engine{DB: db}
}

// plannedItem is one resolved ingredient of one slot: which inventory row it
// draws from and how much it will consume.
type plannedItem struct {
	inventoryID int64
	quantity    float64
}

// stockRow caches the locked state of one inventory row for the duration of
// the transaction.
type stockRow struct {
	name string
	unit string
	have float64
}

// effectiveQuantity resolves the amount one ingredient will consume: the
// override when it parses as a number, the menu's default otherwise. An
// explicit "0" is a real zero, not "use default".
func effectiveQuantity(override string, hasOverride bool, defaultQty float64) float64 {
	if !hasOverride {
		return defaultQty
	}
	v, err := strconv.ParseFloat(strings.TrimSpace(override), 64)
	if err != nil {
		return defaultQty
	}
	return v
}

// aggregateDemand sums planned consumption per inventory id across every slot
// in the request. The returned order preserves first appearance so error
// reports and summaries come out stable.
func aggregateDemand(planned map[string][]plannedItem) (map[int64]float64, []int64) {
	demand := make(map[int64]float64)
	var order []int64
	for _, mealType := range models.MealTypes {
		for _, item := range planned[mealType] {
			if _, seen := demand[item.inventoryID]; !seen {
				order = append(order, item.inventoryID)
			}
			demand[item.inventoryID] += item.quantity
		}
	}
	return demand, order
}

// findShortages compares aggregated demand against on-hand stock and returns
// every item that falls short. Demand equal to stock passes.
func findShortages(demand map[int64]float64, order []int64, stock map[int64]*stockRow) []Shortage {
	var shortages []Shortage
	for _, id := range order {
		row := stock[id]
		if demand[id] > row.have {
			shortages = append(shortages, Shortage{
				InventoryID: id,
				Name:        row.name,
				Unit:        row.unit,
				Need:        demand[id],
				Have:        row.have,
			})
		}
	}
	return shortages
}

// ScheduleMenus atomically applies the selected menus to the given date.
//
// Either every slot in the request gets its schedule replaced and its
// deductions applied, or nothing is written and the error says why. The
// inventory rows involved are locked for the whole check-then-deduct sequence
// so two concurrent requests cannot both pass the check against the same
// stock.
func (e *Engine) ScheduleMenus(ctx context.Context, caps auth.Capabilities, day time.Time, selections map[string]Selection, notes string) ([]Deduction, error) {
	if !caps.CanSchedule {
		return nil, ErrNotPermitted
	}

	// 1. --- Reject an empty request ---
	if len(selections) == 0 {
		return nil, ErrEmptySelection
	}
	for mealType := range selections {
		if !models.IsValidMealType(mealType) {
			return nil, &ValidationError{Reason: "invalid meal type: " + mealType}
		}
	}

	dateStr := day.Format("2006-01-02")

	tx, err := e.DB.BeginTx(ctx, &sql.TxOptions{Isolation: sql.LevelSerializable})
	if err != nil {
		return nil, err
	}
	defer tx.Rollback() // safety net; no-op after Commit

	// 2. --- Resolve each slot's menu into planned consumption ---
	// Inventory rows are locked (FOR UPDATE) as they are first touched, so the
	// quantities read here cannot move under us before the deduction commits.
	planned := make(map[string][]plannedItem)
	stock := make(map[int64]*stockRow)

	for _, mealType := range models.MealTypes {
		sel, ok := selections[mealType]
		if !ok {
			continue
		}

		var menuID int64
		err := tx.QueryRowContext(ctx, "SELECT id FROM menus WHERE id = ?", sel.MenuID).Scan(&menuID)
		if err != nil {
			if err == sql.ErrNoRows {
				return nil, &ValidationError{Reason: mealType + ": menu not found"}
			}
			return nil, err
		}

		rows, err := tx.QueryContext(ctx, `
			SELECT id, inventory_id, quantity
			FROM menu_ingredients
			WHERE menu_id = ?
			ORDER BY id`, menuID)
		if err != nil {
			return nil, err
		}

		type ingredientRow struct {
			id          int64
			inventoryID int64
			quantity    float64
		}
		var ingredients []ingredientRow
		for rows.Next() {
			var ing ingredientRow
			if err := rows.Scan(&ing.id, &ing.inventoryID, &ing.quantity); err != nil {
				rows.Close()
				return nil, err
			}
			ingredients = append(ingredients, ing)
		}
		if err := rows.Err(); err != nil {
			rows.Close()
			return nil, err
		}
		rows.Close()

		for _, ing := range ingredients {
			override, hasOverride := sel.Overrides[ing.id]
			qty := effectiveQuantity(override, hasOverride, ing.quantity)

			if _, cached := stock[ing.inventoryID]; !cached {
				var row stockRow
				err := tx.QueryRowContext(ctx, `
					SELECT name, unit, quantity
					FROM inventory_items
					WHERE id = ?
					FOR UPDATE`, ing.inventoryID).Scan(&row.name, &row.unit, &row.have)
				if err != nil {
					if err == sql.ErrNoRows {
						return nil, &DataIntegrityError{
							MealType:    mealType,
							MenuID:      menuID,
							InventoryID: ing.inventoryID,
						}
					}
					return nil, err
				}
				stock[ing.inventoryID] = &row
			}

			planned[mealType] = append(planned[mealType], plannedItem{
				inventoryID: ing.inventoryID,
				quantity:    qty,
			})
		}
	}

	// 3. + 4. --- Aggregate demand across slots, then check sufficiency ---
	demand, order := aggregateDemand(planned)
	if shortages := findShortages(demand, order, stock); len(shortages) > 0 {
		return nil, &InsufficientStockError{Shortages: shortages}
	}

	// 5. --- Replace schedules and apply deductions, slot by slot ---
	// Keyed on the request, not on planned consumption: a menu whose
	// ingredient rows were removed out-of-band still claims its slot, it just
	// deducts nothing.
	now := time.Now()
	for _, mealType := range models.MealTypes {
		sel, ok := selections[mealType]
		if !ok {
			continue
		}

		// Replace semantics: drop any existing schedule for this (date, slot)
		// together with its item snapshots. Removing it never restocks.
		_, err = tx.ExecContext(ctx, `
			DELETE FROM menu_schedule_items
			WHERE schedule_id IN (SELECT id FROM menu_schedules WHERE date = ? AND meal_type = ?)`,
			dateStr, mealType)
		if err != nil {
			return nil, err
		}
		_, err = tx.ExecContext(ctx,
			"DELETE FROM menu_schedules WHERE date = ? AND meal_type = ?", dateStr, mealType)
		if err != nil {
			return nil, err
		}

		menuID := sel.MenuID
		schedule := models.MenuSchedule{
			Date:     day,
			MealType: mealType,
			MenuID:   &menuID,
			Notes:    &notes,
		}
		result, err := tx.ExecContext(ctx, `
			INSERT INTO menu_schedules (date, meal_type, menu_id, notes)
			VALUES (?, ?, ?, ?)`,
			dateStr, schedule.MealType, schedule.MenuID, schedule.Notes)
		if err != nil {
			return nil, err
		}
		schedule.ID, err = result.LastInsertId()
		if err != nil {
			return nil, err
		}

		for _, item := range planned[mealType] {
			snapshot := models.MenuScheduleItem{
				ScheduleID:   schedule.ID,
				InventoryID:  item.inventoryID,
				QuantityUsed: item.quantity,
			}
			_, err = tx.ExecContext(ctx, `
				INSERT INTO menu_schedule_items (schedule_id, inventory_id, quantity_used)
				VALUES (?, ?, ?)`,
				snapshot.ScheduleID, snapshot.InventoryID, snapshot.QuantityUsed)
			if err != nil {
				return nil, err
			}
			_, err = tx.ExecContext(ctx, `
				UPDATE inventory_items
				SET quantity = quantity - ?, updated_at = ?
				WHERE id = ?`,
				snapshot.QuantityUsed, now, snapshot.InventoryID)
			if err != nil {
				return nil, err
			}
		}
	}

	// 6. --- Commit everything as one unit ---
	if err := tx.Commit(); err != nil {
		return nil, err
	}

	summary := make([]Deduction, 0, len(order))
	for _, id := range order {
		row := stock[id]
		summary = append(summary, Deduction{
			ItemName: row.name,
			Unit:     row.unit,
			Amount:   demand[id],
		})
	}
	return summary, nil
}

// DeleteSchedule removes one schedule and its item snapshots. Deducted
// inventory stays deducted: the meal may already have been prepared, so
// deleting the record is bookkeeping, not a refund.
func (e *Engine) DeleteSchedule(ctx context.Context, caps auth.Capabilities, scheduleID int64) error {
	if !caps.CanSchedule {
		return ErrNotPermitted
	}

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"DELETE FROM menu_schedule_items WHERE schedule_id = ?", scheduleID)
	if err != nil {
		return err
	}
	result, err := tx.ExecContext(ctx,
		"DELETE FROM menu_schedules WHERE id = ?", scheduleID)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrScheduleNotFound
	}

	return tx.Commit()
}
