package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/evenly-app/evenly/internal/boost"
	"github.com/evenly-app/evenly/internal/model"
)

type OccurrenceStore struct {
	db *sql.DB
}

func NewOccurrenceStore(db *sql.DB) *OccurrenceStore {
	return &OccurrenceStore{db: db}
}

func scanOccurrence(scanner interface{ Scan(...any) error }) (*model.Occurrence, error) {
	var o model.Occurrence
	var assigned sql.NullInt64
	var dueAt, lastReminded sql.NullTime
	err := scanner.Scan(
		&o.ID, &o.TaskID, &o.HouseholdID, &o.Date, &assigned, &o.Status,
		&o.CoopRole, &o.IsCritical, &o.BoostEnabled, &o.BackupRequested, &dueAt,
		&o.ReminderLevel, &lastReminded, &o.CreatedAt, &o.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if assigned.Valid {
		o.AssignedPerson = &assigned.Int64
	}
	if dueAt.Valid {
		t := dueAt.Time
		o.DueAt = &t
	}
	if lastReminded.Valid {
		t := lastReminded.Time
		o.LastRemindedAt = &t
	}
	return &o, nil
}

const occurrenceCols = `id, task_id, household_id, date, assigned_person, status, coop_role, is_critical, boost_enabled, backup_requested, due_at, reminder_level, last_reminded_at, created_at, updated_at`

func (s *OccurrenceStore) Create(taskID, householdID int64, date time.Time, assignedPerson *int64, coopRole string, isCritical, boostEnabled bool, dueAt *time.Time) (*model.Occurrence, error) {
	result, err := s.db.Exec(
		`INSERT INTO occurrences (task_id, household_id, date, assigned_person, coop_role, is_critical, boost_enabled, due_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		taskID, householdID, date, assignedPerson, coopRole, isCritical, boostEnabled, dueAt,
	)
	if err != nil {
		return nil, fmt.Errorf("insert occurrence: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *OccurrenceStore) GetByID(id int64) (*model.Occurrence, error) {
	row := s.db.QueryRow(`SELECT `+occurrenceCols+` FROM occurrences WHERE id = ?`, id)
	occ, err := scanOccurrence(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get occurrence by id: %w", err)
	}
	return occ, nil
}

func (s *OccurrenceStore) ListByHousehold(householdID int64) ([]*model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+` FROM occurrences WHERE household_id = ? ORDER BY date, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list occurrences: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

// ListByDateRange returns occurrences with date in [start, end).
func (s *OccurrenceStore) ListByDateRange(householdID int64, start, end time.Time) ([]*model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+` FROM occurrences
		 WHERE household_id = ? AND date >= ? AND date < ?
		 ORDER BY date, id`,
		householdID, start, end,
	)
	if err != nil {
		return nil, fmt.Errorf("list occurrences by date range: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

func (s *OccurrenceStore) ListByStatus(householdID int64, status model.OccurrenceStatus) ([]*model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+` FROM occurrences
		 WHERE household_id = ? AND status = ?
		 ORDER BY date, id`,
		householdID, status,
	)
	if err != nil {
		return nil, fmt.Errorf("list occurrences by status: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

func (s *OccurrenceStore) ListByPerson(householdID, personID int64) ([]*model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+` FROM occurrences
		 WHERE household_id = ? AND assigned_person = ?
		 ORDER BY date, id`,
		householdID, personID,
	)
	if err != nil {
		return nil, fmt.Errorf("list occurrences by person: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

func (s *OccurrenceStore) ListCritical(householdID int64) ([]*model.Occurrence, error) {
	rows, err := s.db.Query(
		`SELECT `+occurrenceCols+` FROM occurrences
		 WHERE household_id = ? AND is_critical = 1
		 ORDER BY date, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list critical occurrences: %w", err)
	}
	defer rows.Close()
	return collectOccurrences(rows)
}

func collectOccurrences(rows *sql.Rows) ([]*model.Occurrence, error) {
	var out []*model.Occurrence
	for rows.Next() {
		occ, err := scanOccurrence(rows)
		if err != nil {
			return nil, fmt.Errorf("scan occurrence: %w", err)
		}
		out = append(out, occ)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate occurrences: %w", err)
	}
	return out, nil
}

// ListBoostCandidates returns scheduled, boost-enabled occurrences with a
// due time, joined with their task title for notification copy.
func (s *OccurrenceStore) ListBoostCandidates(householdID int64) ([]boost.Item, error) {
	rows, err := s.db.Query(
		`SELECT o.id, o.task_id, o.household_id, o.date, o.assigned_person, o.status,
		        o.coop_role, o.is_critical, o.boost_enabled, o.due_at,
		        o.reminder_level, o.last_reminded_at, o.created_at, o.updated_at,
		        t.title
		 FROM occurrences o
		 JOIN tasks t ON t.id = o.task_id
		 WHERE o.household_id = ? AND o.status = 'scheduled'
		   AND o.boost_enabled = 1 AND o.due_at IS NOT NULL
		 ORDER BY o.due_at, o.id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list boost candidates: %w", err)
	}
	defer rows.Close()

	var items []boost.Item
	for rows.Next() {
		var o model.Occurrence
		var assigned sql.NullInt64
		var dueAt, lastReminded sql.NullTime
		var title string
		err := rows.Scan(
			&o.ID, &o.TaskID, &o.HouseholdID, &o.Date, &assigned, &o.Status,
			&o.CoopRole, &o.IsCritical, &o.BoostEnabled, &dueAt,
			&o.ReminderLevel, &lastReminded, &o.CreatedAt, &o.UpdatedAt,
			&title,
		)
		if err != nil {
			return nil, fmt.Errorf("scan boost candidate: %w", err)
		}
		if assigned.Valid {
			o.AssignedPerson = &assigned.Int64
		}
		if dueAt.Valid {
			t := dueAt.Time
			o.DueAt = &t
		}
		if lastReminded.Valid {
			t := lastReminded.Time
			o.LastRemindedAt = &t
		}
		items = append(items, boost.Item{Occurrence: o, TaskTitle: title})
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boost candidates: %w", err)
	}
	return items, nil
}

// PromoteReminder bumps the reminder level only if it still holds the value
// the caller observed. Returns false when another writer got there first.
func (s *OccurrenceStore) PromoteReminder(id int64, fromLevel, toLevel int, at time.Time) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE occurrences
		 SET reminder_level = ?, last_reminded_at = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND reminder_level = ?`,
		toLevel, at, id, fromLevel,
	)
	if err != nil {
		return false, fmt.Errorf("promote reminder: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n == 1, nil
}

// ResetReminder returns an occurrence to the unreminded state. This is the
// only path by which a reminder level decreases.
func (s *OccurrenceStore) ResetReminder(id int64) error {
	_, err := s.db.Exec(
		`UPDATE occurrences
		 SET reminder_level = 0, last_reminded_at = NULL, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		id,
	)
	if err != nil {
		return fmt.Errorf("reset reminder: %w", err)
	}
	return nil
}

func (s *OccurrenceStore) UpdateStatus(id int64, status model.OccurrenceStatus) (*model.Occurrence, error) {
	if !model.ValidStatus(status) {
		return nil, fmt.Errorf("invalid occurrence status: %q", status)
	}
	_, err := s.db.Exec(
		`UPDATE occurrences SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		status, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update occurrence status: %w", err)
	}
	return s.GetByID(id)
}

func (s *OccurrenceStore) Reassign(id int64, personID *int64) (*model.Occurrence, error) {
	_, err := s.db.Exec(
		`UPDATE occurrences SET assigned_person = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		personID, id,
	)
	if err != nil {
		return nil, fmt.Errorf("reassign occurrence: %w", err)
	}
	return s.GetByID(id)
}

func (s *OccurrenceStore) Reschedule(id int64, date time.Time, dueAt *time.Time) (*model.Occurrence, error) {
	_, err := s.db.Exec(
		`UPDATE occurrences SET date = ?, due_at = ?, status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		date, dueAt, model.StatusScheduled, id,
	)
	if err != nil {
		return nil, fmt.Errorf("reschedule occurrence: %w", err)
	}
	return s.GetByID(id)
}

// SetBackupRequested flags the occurrence as wanting a backup assignee.
// The flag surfaces to the household; the actual reassignment happens
// through Reassign once someone steps up.
func (s *OccurrenceStore) SetBackupRequested(id int64, requested bool) (*model.Occurrence, error) {
	_, err := s.db.Exec(
		`UPDATE occurrences SET backup_requested = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		requested, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set backup requested: %w", err)
	}
	return s.GetByID(id)
}
