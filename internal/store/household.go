package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

type HouseholdStore struct {
	db *sql.DB
}

func NewHouseholdStore(db *sql.DB) *HouseholdStore {
	return &HouseholdStore{db: db}
}

func scanHousehold(scanner interface{ Scan(...any) error }) (*model.Household, error) {
	var h model.Household
	err := scanner.Scan(&h.ID, &h.Name, &h.Timezone, &h.CreatedAt, &h.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &h, nil
}

func scanHouseholdMember(scanner interface{ Scan(...any) error }) (*model.HouseholdMember, error) {
	var m model.HouseholdMember
	err := scanner.Scan(&m.ID, &m.HouseholdID, &m.UserID, &m.Role, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

const householdCols = `id, name, timezone, created_at, updated_at`
const householdMemberCols = `id, household_id, user_id, role, created_at, updated_at`

func (s *HouseholdStore) Create(name, timezone string) (*model.Household, error) {
	if timezone == "" {
		timezone = model.DefaultTimezone
	}
	if _, err := model.LoadTimezone(timezone); err != nil {
		return nil, fmt.Errorf("create household: %w", err)
	}
	result, err := s.db.Exec(`INSERT INTO households (name, timezone) VALUES (?, ?)`, name, timezone)
	if err != nil {
		return nil, fmt.Errorf("insert household: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) GetByID(id int64) (*model.Household, error) {
	row := s.db.QueryRow(`SELECT `+householdCols+` FROM households WHERE id = ?`, id)
	h, err := scanHousehold(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get household: %w", err)
	}
	return h, nil
}

func (s *HouseholdStore) Update(id int64, name, timezone string) (*model.Household, error) {
	if _, err := model.LoadTimezone(timezone); err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	_, err := s.db.Exec(
		`UPDATE households SET name = ?, timezone = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		name, timezone, id,
	)
	if err != nil {
		return nil, fmt.Errorf("update household: %w", err)
	}
	return s.GetByID(id)
}

func (s *HouseholdStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM households WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete household: %w", err)
	}
	return nil
}

// BoostSettings loads and validates the household's boost configuration
// along with its timezone. A household that never configured boosts gets
// the defaults; a malformed or invalid blob is an error, never silently
// ignored.
func (s *HouseholdStore) BoostSettings(householdID int64) (model.BoostSettings, *time.Location, error) {
	var blob, timezone string
	row := s.db.QueryRow(`SELECT boost_settings, timezone FROM households WHERE id = ?`, householdID)
	if err := row.Scan(&blob, &timezone); err != nil {
		return model.BoostSettings{}, nil, fmt.Errorf("get boost settings: %w", err)
	}

	loc, err := model.LoadTimezone(timezone)
	if err != nil {
		return model.BoostSettings{}, nil, fmt.Errorf("household %d: %w", householdID, err)
	}

	if blob == "" {
		return model.DefaultBoostSettings(), loc, nil
	}
	var settings model.BoostSettings
	if err := json.Unmarshal([]byte(blob), &settings); err != nil {
		return model.BoostSettings{}, nil, fmt.Errorf("decode boost settings for household %d: %w", householdID, err)
	}
	if err := settings.Validate(); err != nil {
		return model.BoostSettings{}, nil, fmt.Errorf("household %d: %w", householdID, err)
	}
	return settings, loc, nil
}

// SetBoostSettings validates then stores the boost configuration.
func (s *HouseholdStore) SetBoostSettings(householdID int64, settings model.BoostSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}
	blob, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("encode boost settings: %w", err)
	}
	result, err := s.db.Exec(
		`UPDATE households SET boost_settings = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?`,
		string(blob), householdID,
	)
	if err != nil {
		return fmt.Errorf("set boost settings: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("household %d not found", householdID)
	}
	return nil
}

// ListBoostHouseholdIDs returns every household that has configured boost
// settings. The enabled flag is checked downstream so a disabled household
// still shows up in sweep accounting.
func (s *HouseholdStore) ListBoostHouseholdIDs() ([]int64, error) {
	rows, err := s.db.Query(`SELECT id FROM households WHERE boost_settings != '' ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list boost households: %w", err)
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan household id: %w", err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate boost households: %w", err)
	}
	return ids, nil
}

func (s *HouseholdStore) AddMember(householdID, userID int64, role string) (*model.HouseholdMember, error) {
	result, err := s.db.Exec(
		`INSERT INTO household_members (household_id, user_id, role) VALUES (?, ?, ?)`,
		householdID, userID, role,
	)
	if err != nil {
		return nil, fmt.Errorf("add member: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+householdMemberCols+` FROM household_members WHERE id = ?`, id)
	return scanHouseholdMember(row)
}

func (s *HouseholdStore) RemoveMember(householdID, userID int64) error {
	_, err := s.db.Exec(
		`DELETE FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	if err != nil {
		return fmt.Errorf("remove member: %w", err)
	}
	return nil
}

func (s *HouseholdStore) GetMember(householdID, userID int64) (*model.HouseholdMember, error) {
	row := s.db.QueryRow(
		`SELECT `+householdMemberCols+` FROM household_members WHERE household_id = ? AND user_id = ?`,
		householdID, userID,
	)
	m, err := scanHouseholdMember(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get member: %w", err)
	}
	return m, nil
}

// FirstHouseholdForUser returns the id of the household the user joined
// first, or 0 if they belong to none.
func (s *HouseholdStore) FirstHouseholdForUser(userID int64) (int64, error) {
	var id int64
	err := s.db.QueryRow(
		`SELECT household_id FROM household_members WHERE user_id = ? ORDER BY created_at, id LIMIT 1`,
		userID,
	).Scan(&id)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("first household for user: %w", err)
	}
	return id, nil
}

func (s *HouseholdStore) ListMembers(householdID int64) ([]model.HouseholdMember, error) {
	rows, err := s.db.Query(
		`SELECT `+householdMemberCols+` FROM household_members WHERE household_id = ? ORDER BY created_at ASC`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list members: %w", err)
	}
	defer rows.Close()

	var members []model.HouseholdMember
	for rows.Next() {
		m, err := scanHouseholdMember(rows)
		if err != nil {
			return nil, fmt.Errorf("scan member: %w", err)
		}
		members = append(members, *m)
	}
	return members, rows.Err()
}
