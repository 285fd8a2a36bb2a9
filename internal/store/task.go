package store

import (
	"database/sql"
	"fmt"

	"github.com/evenly-app/evenly/internal/model"
)

type TaskStore struct {
	db *sql.DB
}

func NewTaskStore(db *sql.DB) *TaskStore {
	return &TaskStore{db: db}
}

func scanTask(scanner interface{ Scan(...any) error }) (*model.Task, error) {
	var t model.Task
	err := scanner.Scan(
		&t.ID, &t.HouseholdID, &t.Title, &t.Category, &t.DefaultDuration,
		&t.Difficulty, &t.Frequency, &t.CreatedAt, &t.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

const taskCols = `id, household_id, title, category, default_duration, difficulty, frequency, created_at, updated_at`

func (s *TaskStore) Create(householdID int64, title, category string, defaultDuration, difficulty int, frequency string) (*model.Task, error) {
	if title == "" {
		return nil, fmt.Errorf("task title must not be empty")
	}
	if difficulty < 1 || difficulty > 3 {
		return nil, fmt.Errorf("difficulty must be 1..3, got %d", difficulty)
	}
	if defaultDuration <= 0 {
		return nil, fmt.Errorf("default duration must be positive, got %d", defaultDuration)
	}

	result, err := s.db.Exec(
		`INSERT INTO tasks (household_id, title, category, default_duration, difficulty, frequency)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, title, category, defaultDuration, difficulty, frequency,
	)
	if err != nil {
		return nil, fmt.Errorf("insert task: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) GetByID(id int64) (*model.Task, error) {
	row := s.db.QueryRow(`SELECT `+taskCols+` FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get task by id: %w", err)
	}
	return t, nil
}

func (s *TaskStore) ListByHousehold(householdID int64) ([]*model.Task, error) {
	rows, err := s.db.Query(
		`SELECT `+taskCols+` FROM tasks WHERE household_id = ? ORDER BY title, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	defer rows.Close()

	var out []*model.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, fmt.Errorf("scan task: %w", err)
		}
		out = append(out, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate tasks: %w", err)
	}
	return out, nil
}

func (s *TaskStore) Update(id int64, title, category string, defaultDuration, difficulty int, frequency string) (*model.Task, error) {
	if difficulty < 1 || difficulty > 3 {
		return nil, fmt.Errorf("difficulty must be 1..3, got %d", difficulty)
	}
	_, err := s.db.Exec(
		`UPDATE tasks SET title = ?, category = ?, default_duration = ?, difficulty = ?, frequency = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		title, category, defaultDuration, difficulty, frequency, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update task: %w", err)
	}
	return s.GetByID(id)
}

func (s *TaskStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM tasks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete task: %w", err)
	}
	return nil
}
