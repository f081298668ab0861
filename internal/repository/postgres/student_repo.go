package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"

	"go-tutoring-backend/internal/domain"
)

type studentRepo struct {
	db *pgxpool.Pool
}

func NewStudentRepository(db *pgxpool.Pool) domain.StudentRepository {
	return &studentRepo{db: db}
}

func (r *studentRepo) Create(ctx context.Context, student *domain.Student) error {
	query := `
		INSERT INTO students (id, tutor_id, full_name, email, grade_level, subjects, archived, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`

	_, err := r.db.Exec(ctx, query,
		student.ID,
		student.TutorID,
		student.FullName,
		student.Email,
		student.GradeLevel,
		pq.Array(student.Subjects),
		student.Archived,
		student.CreatedAt,
		student.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create student: %w", err)
	}

	return nil
}

func (r *studentRepo) GetByID(ctx context.Context, id string) (*domain.Student, error) {
	query := `
		SELECT id, tutor_id, full_name, email, grade_level, subjects, archived, created_at, updated_at
		FROM students
		WHERE id = $1
	`

	s := &domain.Student{}
	err := r.db.QueryRow(ctx, query, id).Scan(
		&s.ID, &s.TutorID, &s.FullName, &s.Email, &s.GradeLevel,
		pq.Array(&s.Subjects), &s.Archived, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get student: %w", err)
	}

	return s, nil
}

func (r *studentRepo) ListByTutor(ctx context.Context, tutorID string, includeArchived bool) ([]domain.Student, error) {
	query := `
		SELECT id, tutor_id, full_name, email, grade_level, subjects, archived, created_at, updated_at
		FROM students
		WHERE tutor_id = $1 AND (archived = FALSE OR $2)
		ORDER BY full_name
	`

	rows, err := r.db.Query(ctx, query, tutorID, includeArchived)
	if err != nil {
		return nil, fmt.Errorf("failed to list students: %w", err)
	}
	defer rows.Close()

	var students []domain.Student
	for rows.Next() {
		var s domain.Student
		err := rows.Scan(
			&s.ID, &s.TutorID, &s.FullName, &s.Email, &s.GradeLevel,
			pq.Array(&s.Subjects), &s.Archived, &s.CreatedAt, &s.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan student: %w", err)
		}
		students = append(students, s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate students: %w", err)
	}

	return students, nil
}

func (r *studentRepo) Update(ctx context.Context, student *domain.Student) error {
	query := `
		UPDATE students
		SET full_name = $2, email = $3, grade_level = $4, subjects = $5, updated_at = $6
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query,
		student.ID,
		student.FullName,
		student.Email,
		student.GradeLevel,
		pq.Array(student.Subjects),
		student.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student not found: %s", student.ID)
	}

	return nil
}

func (r *studentRepo) SetArchived(ctx context.Context, id string, archived bool) error {
	query := `
		UPDATE students
		SET archived = $2, updated_at = NOW()
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, archived)
	if err != nil {
		return fmt.Errorf("failed to archive student: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("student not found: %s", id)
	}

	return nil
}
