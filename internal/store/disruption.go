package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/evenly-app/evenly/internal/model"
)

type DisruptionStore struct {
	db *sql.DB
}

func NewDisruptionStore(db *sql.DB) *DisruptionStore {
	return &DisruptionStore{db: db}
}

func scanDisruption(scanner interface{ Scan(...any) error }) (*model.Disruption, error) {
	var d model.Disruption
	var affected string
	err := scanner.Scan(
		&d.ID, &d.HouseholdID, &d.WeekStart, &d.Type, &affected,
		&d.NightsImpacted, &d.ConsentA, &d.ConsentB, &d.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal([]byte(affected), &d.AffectedPersonIDs); err != nil {
		return nil, fmt.Errorf("decode affected person ids: %w", err)
	}
	return &d, nil
}

const disruptionCols = `id, household_id, week_start, type, affected_person_ids, nights_impacted, consent_a, consent_b, created_at`

func (s *DisruptionStore) Create(householdID int64, weekStart time.Time, kind string, affectedPersonIDs []int64, nightsImpacted int) (*model.Disruption, error) {
	if nightsImpacted < 0 || nightsImpacted > 7 {
		return nil, fmt.Errorf("nights impacted must be 0..7, got %d", nightsImpacted)
	}
	if affectedPersonIDs == nil {
		affectedPersonIDs = []int64{}
	}
	affected, err := encodeJSON(affectedPersonIDs)
	if err != nil {
		return nil, fmt.Errorf("encode affected person ids: %w", err)
	}

	result, err := s.db.Exec(
		`INSERT INTO disruptions (household_id, week_start, type, affected_person_ids, nights_impacted)
		 VALUES (?, ?, ?, ?, ?)`,
		householdID, weekStart, kind, affected, nightsImpacted,
	)
	if err != nil {
		return nil, fmt.Errorf("insert disruption: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

func (s *DisruptionStore) GetByID(id int64) (*model.Disruption, error) {
	row := s.db.QueryRow(`SELECT `+disruptionCols+` FROM disruptions WHERE id = ?`, id)
	d, err := scanDisruption(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get disruption by id: %w", err)
	}
	return d, nil
}

func (s *DisruptionStore) ListByWeek(householdID int64, weekStart time.Time) ([]*model.Disruption, error) {
	rows, err := s.db.Query(
		`SELECT `+disruptionCols+` FROM disruptions
		 WHERE household_id = ? AND week_start = ?
		 ORDER BY id`,
		householdID, weekStart,
	)
	if err != nil {
		return nil, fmt.Errorf("list disruptions by week: %w", err)
	}
	defer rows.Close()
	return collectDisruptions(rows)
}

func (s *DisruptionStore) ListByHousehold(householdID int64) ([]*model.Disruption, error) {
	rows, err := s.db.Query(
		`SELECT `+disruptionCols+` FROM disruptions
		 WHERE household_id = ?
		 ORDER BY week_start, id`,
		householdID,
	)
	if err != nil {
		return nil, fmt.Errorf("list disruptions: %w", err)
	}
	defer rows.Close()
	return collectDisruptions(rows)
}

func collectDisruptions(rows *sql.Rows) ([]*model.Disruption, error) {
	var out []*model.Disruption
	for rows.Next() {
		d, err := scanDisruption(rows)
		if err != nil {
			return nil, fmt.Errorf("scan disruption: %w", err)
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate disruptions: %w", err)
	}
	return out, nil
}

// SetConsent records one partner's consent. Both flags must be set before
// the disruption softens any fairness score.
func (s *DisruptionStore) SetConsent(id int64, consentA, consentB bool) (*model.Disruption, error) {
	_, err := s.db.Exec(
		`UPDATE disruptions SET consent_a = ?, consent_b = ? WHERE id = ?`,
		consentA, consentB, id,
	)
	if err != nil {
		return nil, fmt.Errorf("set disruption consent: %w", err)
	}
	return s.GetByID(id)
}

func (s *DisruptionStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM disruptions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete disruption: %w", err)
	}
	return nil
}
