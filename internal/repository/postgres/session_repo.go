package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"go-tutoring-backend/internal/domain"
)

type sessionRepo struct {
	db *pgxpool.Pool
}

func NewSessionRepository(db *pgxpool.Pool) domain.SessionRepository {
	return &sessionRepo{db: db}
}

func (r *sessionRepo) Create(ctx context.Context, session *domain.Session) error {
	query := `
		INSERT INTO tutoring_sessions (id, tutor_id, student_id, subject, scheduled_at, duration_minutes, status, notes, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.Exec(ctx, query,
		session.ID,
		session.TutorID,
		session.StudentID,
		session.Subject,
		session.ScheduledAt,
		session.DurationMinutes,
		session.Status,
		session.Notes,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	return nil
}

func (r *sessionRepo) GetByID(ctx context.Context, id string) (*domain.Session, error) {
	query := `
		SELECT id, tutor_id, student_id, subject, scheduled_at, duration_minutes, status, notes, created_at, updated_at
		FROM tutoring_sessions
		WHERE id = $1
	`

	s := &domain.Session{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.TutorID, &s.StudentID, &s.Subject, &s.ScheduledAt,
		&s.DurationMinutes, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get session: %w", err)
	}

	return s, nil
}

func (r *sessionRepo) ListByTutor(ctx context.Context, tutorID string, status *domain.SessionStatus, limit, offset int) ([]domain.Session, error) {
	query := `
		SELECT id, tutor_id, student_id, subject, scheduled_at, duration_minutes, status, notes, created_at, updated_at
		FROM tutoring_sessions
		WHERE tutor_id = $1 AND ($2::text IS NULL OR status = $2)
		ORDER BY scheduled_at DESC
		LIMIT $3 OFFSET $4
	`

	rows, err := r.db.Query(ctx, query, tutorID, status, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		var s domain.Session
		err := rows.Scan(
			&s.ID, &s.TutorID, &s.StudentID, &s.Subject, &s.ScheduledAt,
			&s.DurationMinutes, &s.Status, &s.Notes, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate sessions: %w", err)
	}

	return sessions, nil
}

func (r *sessionRepo) UpdateStatus(ctx context.Context, id string, status domain.SessionStatus) error {
	query := `
		UPDATE tutoring_sessions
		SET status = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status)
	if err != nil {
		return fmt.Errorf("failed to update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("session not found: %s", id)
	}

	return nil
}

func (r *sessionRepo) CountCompletedByTutor(ctx context.Context, tutorID string) (int64, error) {
	query := `
		SELECT COUNT(*)
		FROM tutoring_sessions
		WHERE tutor_id = $1 AND status = 'completed'
	`

	var count int64
	if err := r.db.QueryRow(ctx, query, tutorID).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count completed sessions: %w", err)
	}

	return count, nil
}

func (r *sessionRepo) SumCompletedHoursByTutor(ctx context.Context, tutorID string) (float64, error) {
	query := `
		SELECT COALESCE(SUM(duration_minutes), 0) / 60.0
		FROM tutoring_sessions
		WHERE tutor_id = $1 AND status = 'completed'
	`

	var hours float64
	if err := r.db.QueryRow(ctx, query, tutorID).Scan(&hours); err != nil {
		return 0, fmt.Errorf("failed to sum taught hours: %w", err)
	}

	return hours, nil
}
