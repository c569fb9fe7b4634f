package questions

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/askstage/backend/internal/models"
)

// PostgresStore keeps one row per question. The application id column is
// distinct from the serial primary key. Vote updates are a single
// conditional UPDATE, so concurrent votes cannot lose increments the way
// the file variant can.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a Postgres-backed question store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

const questionColumns = `id, speaker, text, approved, votes, created_at`

func scanQuestion(row pgx.Row) (*models.Question, error) {
	var q models.Question
	err := row.Scan(&q.ID, &q.Speaker, &q.Text, &q.Approved, &q.Votes, &q.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("scan question: %w", err)
	}
	return &q, nil
}

func (s *PostgresStore) ListBySpeaker(ctx context.Context, speaker string) ([]models.Question, error) {
	const query = `SELECT ` + questionColumns + ` FROM questions
		WHERE speaker = $1
		ORDER BY votes DESC, created_at DESC`
	rows, err := s.pool.Query(ctx, query, speaker)
	if err != nil {
		return nil, fmt.Errorf("list questions: %w", err)
	}
	defer rows.Close()

	var out []models.Question
	for rows.Next() {
		var q models.Question
		if err := rows.Scan(&q.ID, &q.Speaker, &q.Text, &q.Approved, &q.Votes, &q.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan question: %w", err)
		}
		out = append(out, q)
	}
	return out, rows.Err()
}

func (s *PostgresStore) Create(ctx context.Context, speaker, text string) (*models.Question, error) {
	text, err := normalizeText(text)
	if err != nil {
		return nil, err
	}
	id, err := newQuestionID()
	if err != nil {
		return nil, err
	}
	const query = `INSERT INTO questions (id, speaker, text, approved, votes, created_at)
		VALUES ($1, $2, $3, FALSE, 0, $4)
		RETURNING ` + questionColumns
	return scanQuestion(s.pool.QueryRow(ctx, query, id, speaker, text, nowMillis()))
}

func (s *PostgresStore) SetApproved(ctx context.Context, id string, approved bool) (*models.Question, error) {
	const query = `UPDATE questions SET approved = $2 WHERE id = $1
		RETURNING ` + questionColumns
	return scanQuestion(s.pool.QueryRow(ctx, query, id, approved))
}

func (s *PostgresStore) IncrementVotes(ctx context.Context, id string, delta int) (*models.Question, error) {
	const query = `UPDATE questions SET votes = GREATEST(votes + $2, 0) WHERE id = $1
		RETURNING ` + questionColumns
	return scanQuestion(s.pool.QueryRow(ctx, query, id, delta))
}

func (s *PostgresStore) Delete(ctx context.Context, id string) (*models.Question, error) {
	const query = `DELETE FROM questions WHERE id = $1
		RETURNING ` + questionColumns
	return scanQuestion(s.pool.QueryRow(ctx, query, id))
}
