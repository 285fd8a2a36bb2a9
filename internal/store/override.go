package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

type OverrideStore struct {
	db *sql.DB
}

func NewOverrideStore(db *sql.DB) *OverrideStore {
	return &OverrideStore{db: db}
}

func scanOverride(scanner interface{ Scan(...any) error }) (*model.TaskOverride, error) {
	var o model.TaskOverride
	var effectiveTo sql.NullTime
	err := scanner.Scan(
		&o.ID, &o.HouseholdID, &o.TaskID, &o.Scope, &o.EffectiveFrom,
		&effectiveTo, &o.Action, &o.NewFrequency, &o.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if effectiveTo.Valid {
		t := effectiveTo.Time
		o.EffectiveTo = &t
	}
	return &o, nil
}

const overrideCols = `id, household_id, task_id, scope, effective_from, effective_to, action, new_frequency, created_at`

func (s *OverrideStore) Create(householdID, taskID int64, scope model.OverrideScope, from time.Time, to *time.Time, action model.OverrideAction, newFrequency string) (*model.TaskOverride, error) {
	if !model.ValidScope(scope) {
		return nil, fmt.Errorf("invalid override scope: %q", scope)
	}
	if !model.ValidAction(action) {
		return nil, fmt.Errorf("invalid override action: %q", action)
	}
	if to == nil && scope != model.ScopeAlways {
		return nil, fmt.Errorf("open-ended window requires scope %q, got %q", model.ScopeAlways, scope)
	}
	if to != nil && to.Before(from) {
		return nil, fmt.Errorf("effective_to precedes effective_from")
	}
	if action == model.ActionFrequencyChange && newFrequency == "" {
		return nil, fmt.Errorf("frequency_change requires new_frequency")
	}

	result, err := s.db.Exec(
		`INSERT INTO task_overrides (household_id, task_id, scope, effective_from, effective_to, action, new_frequency)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		householdID, taskID, scope, from, to, action, newFrequency,
	)
	if err != nil {
		return nil, fmt.Errorf("insert override: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OverrideStore) GetByID(id int64) (*model.TaskOverride, error) {
	row := s.db.QueryRow(`SELECT `+overrideCols+` FROM task_overrides WHERE id = ?`, id)
	ov, err := scanOverride(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get override by id: %w", err)
	}
	return ov, nil
}

func (s *OverrideStore) ListByTask(householdID, taskID int64) ([]*model.TaskOverride, error) {
	rows, err := s.db.Query(
		`SELECT `+overrideCols+` FROM task_overrides
		 WHERE household_id = ? AND task_id = ?
		 ORDER BY created_at, id`,
		householdID, taskID,
	)
	if err != nil {
		return nil, fmt.Errorf("list overrides by task: %w", err)
	}
	defer rows.Close()
	return collectOverrides(rows)
}

func (s *OverrideStore) ListByHousehold(householdID int64) ([]*model.TaskOverride, error) {
	rows, err := s.db.Query(
		`SELECT `+overrideCols+` FROM task_overrides
		 WHERE household_id = ?
		 ORDER BY created_at, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list overrides: %w", err)
	}
	defer rows.Close()
	return collectOverrides(rows)
}

func collectOverrides(rows *sql.Rows) ([]*model.TaskOverride, error) {
	var out []*model.TaskOverride
	for rows.Next() {
		ov, err := scanOverride(rows)
		if err != nil {
			return nil, fmt.Errorf("scan override: %w", err)
		}
		out = append(out, ov)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate overrides: %w", err)
	}
	return out, nil
}

func (s *OverrideStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM task_overrides WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete override: %w", err)
	}
	return nil
}
