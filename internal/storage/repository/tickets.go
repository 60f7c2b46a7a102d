package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/magabrotheeeer/studio-churn/internal/models"
)

// CreateTicket сохраняет тикет. Если у тикета задан DedupeKey и такой ключ уже есть,
// вставка пропускается и возвращается false.
func (s *Storage) CreateTicket(ctx context.Context, t models.Ticket) (bool, error) {
	const op = "storage.CreateTicket"
	if err := checkCtx(ctx, op); err != nil {
		return false, err
	}

	fields, err := json.Marshal(t.Fields)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	if t.Fields == nil {
		fields = []byte("{}")
	}
	var dedupe sql.NullString
	if t.DedupeKey != "" {
		dedupe = sql.NullString{String: t.DedupeKey, Valid: true}
	}

	result, err := s.DB.ExecContext(ctx, `INSERT INTO tickets (id, subject, status, author, member_id,
			      fields, dedupe_key, created_at)
			  VALUES ($1, $2, $3, $4, $5, $6::jsonb, $7, $8)
			  ON CONFLICT (dedupe_key) DO NOTHING`,
		t.ID, t.Subject, string(t.Status), t.Author, t.MemberID, string(fields), dedupe, t.CreatedAt)
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}
	return rowsAffected == 1, nil
}

func scanTicket(row scanner) (models.Ticket, error) {
	var t models.Ticket
	var status string
	var fields []byte
	if err := row.Scan(&t.ID, &t.Subject, &status, &t.Author, &t.MemberID, &fields, &t.CreatedAt); err != nil {
		return models.Ticket{}, err
	}
	t.Status = models.TicketStatus(status)
	if len(fields) > 0 {
		if err := json.Unmarshal(fields, &t.Fields); err != nil {
			return models.Ticket{}, fmt.Errorf("decode fields: %w", err)
		}
	}
	return t, nil
}

// GetTicket возвращает тикет по ID.
func (s *Storage) GetTicket(ctx context.Context, id string) (*models.Ticket, error) {
	const op = "storage.GetTicket"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	row := s.DB.QueryRowContext(ctx, `SELECT id, subject, status, author, member_id, fields, created_at
			  FROM tickets WHERE id = $1`, id)
	t, err := scanTicket(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &t, nil
}

// ListTickets возвращает тикеты от новых к старым с пагинацией.
func (s *Storage) ListTickets(ctx context.Context, limit, offset int) ([]models.Ticket, error) {
	const op = "storage.ListTickets"
	if err := checkCtx(ctx, op); err != nil {
		return nil, err
	}

	rows, err := s.DB.QueryContext(ctx, `SELECT id, subject, status, author, member_id, fields, created_at
			  FROM tickets
			  ORDER BY created_at DESC, id
			  LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	defer func() {
		_ = rows.Close()
	}()

	result := []models.Ticket{}
	for rows.Next() {
		t, err := scanTicket(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", op, err)
		}
		result = append(result, t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return result, nil
}
