package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/zopper-dev/salesdost/backend/internal/domain"
)

func (r *Repository) CreateTestSubmission(submission *domain.TestSubmission) error {
	responses, err := json.Marshal(submission.Responses)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	query := `
		INSERT INTO test_submissions (sec_id, score, total_questions, completion_time_seconds, responses)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at
	`

	args := []any{submission.SECID, submission.Score, submission.TotalQuestions, submission.CompletionTimeSeconds, responses}
	if err := r.dbpool.QueryRowContext(ctx, query, args...).Scan(&submission.ID, &submission.CreatedAt); err != nil {
		return err
	}

	return nil
}

func (r *Repository) ListTestSubmissionsBySEC(secID int64) ([]*domain.TestSubmission, error) {
	query := `
		SELECT id, score, total_questions, completion_time_seconds, responses, created_at
		FROM test_submissions WHERE sec_id = $1
		ORDER BY created_at DESC
	`

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(r.cfg.Database.QueryTimeout)*time.Second)
	defer cancel()

	rows, err := r.dbpool.QueryContext(ctx, query, secID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	submissions := make([]*domain.TestSubmission, 0)
	for rows.Next() {
		submission := &domain.TestSubmission{
			SECID: secID,
		}
		var responses []byte
		dst := []any{&submission.ID, &submission.Score, &submission.TotalQuestions, &submission.CompletionTimeSeconds, &responses, &submission.CreatedAt}
		if err := rows.Scan(dst...); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(responses, &submission.Responses); err != nil {
			return nil, err
		}
		submissions = append(submissions, submission)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return submissions, nil
}
