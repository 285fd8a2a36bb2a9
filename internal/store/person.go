package store

import (
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/evenly-app/evenly/internal/model"
)

type PersonStore struct {
	db *sql.DB
}

func NewPersonStore(db *sql.DB) *PersonStore {
	return &PersonStore{db: db}
}

func scanPerson(scanner interface{ Scan(...any) error }) (*model.Person, error) {
	var p model.Person
	var tags, noGo string
	err := scanner.Scan(
		&p.ID, &p.HouseholdID, &p.Name, &p.Role, &p.WeeklyTimeBudget,
		&tags, &noGo, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(tags), &p.DislikedTags); err != nil {
		return nil, fmt.Errorf("decode disliked tags: %w", err)
	}
	if err := json.Unmarshal([]byte(noGo), &p.NoGoTaskIDs); err != nil {
		return nil, fmt.Errorf("decode no-go task ids: %w", err)
	}
	return &p, nil
}

const personCols = `id, household_id, name, role, weekly_time_budget, disliked_tags, no_go_task_ids, created_at, updated_at`

func encodeJSON(v any) (string, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (s *PersonStore) Create(householdID int64, name string, role model.PersonRole, weeklyBudget int, dislikedTags []string, noGoTaskIDs []int64) (*model.Person, error) {
	if role != model.RoleAdult && role != model.RoleChild {
		return nil, fmt.Errorf("invalid person role: %q", role)
	}
	if dislikedTags == nil {
		dislikedTags = []string{}
	}
	if noGoTaskIDs == nil {
		noGoTaskIDs = []int64{}
	}
	tags, err := encodeJSON(dislikedTags)
	if err != nil {
		return nil, fmt.Errorf("encode disliked tags: %w", err)
	}
	noGo, err := encodeJSON(noGoTaskIDs)
	if err != nil {
		return nil, fmt.Errorf("encode no-go task ids: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO people (household_id, name, role, weekly_time_budget, disliked_tags, no_go_task_ids)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		householdID, name, role, weeklyBudget, tags, noGo,
	)
	if err != nil {
		return nil, fmt.Errorf("insert person: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *PersonStore) GetByID(id int64) (*model.Person, error) {
	row := s.db.QueryRow(`SELECT `+personCols+` FROM people WHERE id = ?`, id)
	p, err := scanPerson(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get person by id: %w", err)
	}
	return p, nil
}

func (s *PersonStore) ListByHousehold(householdID int64) ([]*model.Person, error) {
	rows, err := s.db.Query(
		`SELECT `+personCols+` FROM people WHERE household_id = ? ORDER BY name, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list people: %w", err)
	}
	defer rows.Close()

	var out []*model.Person
	for rows.Next() {
		p, err := scanPerson(rows)
		if err != nil {
			return nil, fmt.Errorf("scan person: %w", err)
		}
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate people: %w", err)
	}
	return out, nil
}

func (s *PersonStore) Update(id int64, name string, weeklyBudget int, dislikedTags []string, noGoTaskIDs []int64) (*model.Person, error) {
	if dislikedTags == nil {
		dislikedTags = []string{}
	}
	if noGoTaskIDs == nil {
		noGoTaskIDs = []int64{}
	}
	tags, err := encodeJSON(dislikedTags)
	if err != nil {
		return nil, fmt.Errorf("encode disliked tags: %w", err)
	}
	noGo, err := encodeJSON(noGoTaskIDs)
	if err != nil {
		return nil, fmt.Errorf("encode no-go task ids: %w", err)
	}
	_, err = s.db.Exec(
		`UPDATE people SET name = ?, weekly_time_budget = ?, disliked_tags = ?, no_go_task_ids = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ?`,
		name, weeklyBudget, tags, noGo, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update person: %w", err)
	}
	return s.GetByID(id)
}

func (s *PersonStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM people WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete person: %w", err)
	}
	return nil
}
