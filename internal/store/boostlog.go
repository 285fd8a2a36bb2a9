package store

import (
	"database/sql"
	"fmt"

	"github.com/evenly-app/evenly/internal/model"
)

// BoostLogStore persists boost delivery attempts and the interactions
// people take in response to them.
type BoostLogStore struct {
	db *sql.DB
}

func NewBoostLogStore(db *sql.DB) *BoostLogStore {
	return &BoostLogStore{db: db}
}

func scanAttempt(scanner interface{ Scan(...any) error }) (*model.BoostDeliveryAttempt, error) {
	var a model.BoostDeliveryAttempt
	err := scanner.Scan(
		&a.ID, &a.OccurrenceID, &a.HouseholdID, &a.Channel, &a.Tier,
		&a.Status, &a.Error, &a.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

const attemptCols = `id, occurrence_id, household_id, channel, tier, status, error, created_at`

// Record writes a delivery attempt row. Called before the channel send, so
// a crash mid-dispatch still leaves the attempt on record.
func (s *BoostLogStore) Record(attempt model.BoostDeliveryAttempt) error {
	_, err := s.db.Exec(
		`INSERT INTO boost_delivery_attempts (id, occurrence_id, household_id, channel, tier, status, error)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		attempt.ID, attempt.OccurrenceID, attempt.HouseholdID, attempt.Channel,
		attempt.Tier, attempt.Status, attempt.Error,
	)
	if err != nil {
		return fmt.Errorf("insert delivery attempt: %w", err)
	}
	return nil
}

// DeleteAttemptsOlderThan prunes delivery attempts past the retention
// window and returns how many rows went. Interactions are kept; they are
// the household's audit trail.
func (s *BoostLogStore) DeleteAttemptsOlderThan(days int) (int64, error) {
	result, err := s.db.Exec(
		`DELETE FROM boost_delivery_attempts WHERE created_at < datetime('now', ?)`,
		fmt.Sprintf("-%d days", days),
	)
	if err != nil {
		return 0, fmt.Errorf("prune delivery attempts: %w", err)
	}
	n, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return n, nil
}

// MarkResult finalizes an attempt after the channel send returns.
func (s *BoostLogStore) MarkResult(id, status, errMsg string) error {
	_, err := s.db.Exec(
		`UPDATE boost_delivery_attempts SET status = ?, error = ? WHERE id = ?`,
		status, errMsg, id,
	)
	if err != nil {
		return fmt.Errorf("mark delivery attempt: %w", err)
	}
	return nil
}

func (s *BoostLogStore) ListAttemptsByOccurrence(occurrenceID int64) ([]*model.BoostDeliveryAttempt, error) {
	rows, err := s.db.Query(
		`SELECT `+attemptCols+` FROM boost_delivery_attempts
		 WHERE occurrence_id = ?
		 ORDER BY created_at, id`,
		occurrenceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list delivery attempts: %w", err)
	}
	defer rows.Close()

	var out []*model.BoostDeliveryAttempt
	for rows.Next() {
		a, err := scanAttempt(rows)
		if err != nil {
			return nil, fmt.Errorf("scan delivery attempt: %w", err)
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate delivery attempts: %w", err)
	}
	return out, nil
}

func scanInteraction(scanner interface{ Scan(...any) error }) (*model.BoostInteraction, error) {
	var i model.BoostInteraction
	var personID sql.NullInt64
	err := scanner.Scan(
		&i.ID, &i.OccurrenceID, &i.HouseholdID, &personID,
		&i.InteractionType, &i.Notes, &i.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	if personID.Valid {
		i.PersonID = &personID.Int64
	}
	return &i, nil
}

const interactionCols = `id, occurrence_id, household_id, person_id, interaction_type, notes, created_at`

func (s *BoostLogStore) CreateInteraction(occurrenceID, householdID int64, personID *int64, interactionType, notes string) (*model.BoostInteraction, error) {
	if !model.ValidInteraction(interactionType) {
		return nil, fmt.Errorf("invalid interaction type: %q", interactionType)
	}
	result, err := s.db.Exec(
		`INSERT INTO boost_interactions (occurrence_id, household_id, person_id, interaction_type, notes)
		 VALUES (?, ?, ?, ?, ?)`,
		occurrenceID, householdID, personID, interactionType, notes,
	)
	if err != nil {
		return nil, fmt.Errorf("insert interaction: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	row := s.db.QueryRow(`SELECT `+interactionCols+` FROM boost_interactions WHERE id = ?`, id)
	return scanInteraction(row)
}

func (s *BoostLogStore) ListInteractionsByOccurrence(occurrenceID int64) ([]*model.BoostInteraction, error) {
	rows, err := s.db.Query(
		`SELECT `+interactionCols+` FROM boost_interactions
		 WHERE occurrence_id = ?
		 ORDER BY created_at, id`,
		occurrenceID,
	)
	if err != nil {
		return nil, fmt.Errorf("list interactions: %w", err)
	}
	defer rows.Close()

	var out []*model.BoostInteraction
	for rows.Next() {
		i, err := scanInteraction(rows)
		if err != nil {
			return nil, fmt.Errorf("scan interaction: %w", err)
		}
		out = append(out, i)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate interactions: %w", err)
	}
	return out, nil
}
