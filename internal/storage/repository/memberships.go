package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/studio-churn/internal/models"
)

const membershipColumns = `unique_id, member_id, first_name, last_name, email, membership_name,
	location, order_date, start_date, end_date, status, sessions_left, paid, comments, notes, tags`

type scanner interface {
	Scan(dest ...any) error
}

func scanMembership(row scanner) (models.Membership, error) {
	var m models.Membership
	var status string
	var tags []byte
	if err := row.Scan(&m.UniqueID, &m.MemberID, &m.FirstName, &m.LastName, &m.Email,
		&m.MembershipName, &m.Location, &m.OrderDate, &m.StartDate, &m.EndDate,
		&status, &m.SessionsLeft, &m.Paid, &m.Comments, &m.Notes, &tags); err != nil {
		return models.Membership{}, err
	}
	m.Status = models.MembershipStatus(status)
	if len(tags) > 0 {
		if err := json.Unmarshal(tags, &m.Tags); err != nil {
			return models.Membership{}, fmt.Errorf("decode tags: %w", err)
		}
	}
	return m, nil
}

// ListMemberships возвращает весь справочник абонементов в порядке загрузки.
func (s *Storage) ListMemberships(ctx context.Context) ([]models.Membership, error) {
	const op = "storage.ListMemberships"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + membershipColumns + ` FROM memberships ORDER BY row_no`
	rows, err := s.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Membership{}
	for rows.Next() {
		m, err := scanMembership(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}

// GetMembership возвращает абонемент по unique_id.
func (s *Storage) GetMembership(ctx context.Context, uniqueID string) (*models.Membership, error) {
	const op = "storage.GetMembership"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	query := `SELECT ` + membershipColumns + ` FROM memberships WHERE unique_id = $1`
	m, err := scanMembership(s.DB.QueryRowContext(ctx, query, uniqueID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &m, nil
}

// UpsertMemberships записывает пачку абонементов в одной транзакции.
// Существующие записи обновляются по unique_id, аннотации персонала при этом сохраняются.
func (s *Storage) UpsertMemberships(ctx context.Context, records []models.Membership) (int, error) {
	const op = "storage.UpsertMemberships"
	if err := checkCtx(ctx, op); err != nil {
		return 0, err
	}

	tx, err := s.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO memberships (unique_id, member_id, first_name,
			      last_name, email, membership_name, location, order_date, start_date, end_date,
			      status, sessions_left, paid)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
			  ON CONFLICT (unique_id) DO UPDATE SET
			      member_id = EXCLUDED.member_id, first_name = EXCLUDED.first_name,
			      last_name = EXCLUDED.last_name, email = EXCLUDED.email,
			      membership_name = EXCLUDED.membership_name, location = EXCLUDED.location,
			      order_date = EXCLUDED.order_date, start_date = EXCLUDED.start_date,
			      end_date = EXCLUDED.end_date, status = EXCLUDED.status,
			      sessions_left = EXCLUDED.sessions_left, paid = EXCLUDED.paid`)
	if err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = stmt.Close()
	}()

	for _, m := range records {
		if _, err := stmt.ExecContext(ctx, m.UniqueID, m.MemberID, m.FirstName, m.LastName, m.Email,
			m.MembershipName, m.Location, m.OrderDate, m.StartDate, m.EndDate,
			string(m.Status), m.SessionsLeft, m.Paid); err != nil {
			return 0, fmt.Errorf("%s: %s: %w", op, m.UniqueID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("%s: %w", op, err)
	}
	return len(records), nil
}

// UpdateAnnotations сохраняет комментарии, заметки и теги персонала.
func (s *Storage) UpdateAnnotations(ctx context.Context, uniqueID, comments, notes string, tags []string) error {
	const op = "storage.UpdateAnnotations"
	if err := checkCtx(ctx, op); err != nil {
		return err
	}

	if tags == nil {
		tags = []string{}
	}
	tagsJSON, err := json.Marshal(tags)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	result, err := s.DB.ExecContext(ctx, `UPDATE memberships
			  SET comments = $1, notes = $2, tags = $3::jsonb
			  WHERE unique_id = $4`, comments, notes, string(tagsJSON), uniqueID)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return nil
}
