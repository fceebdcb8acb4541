package postgres

import (
	"context"
	"database/sql"
	"errors"

	"freelance/internal/domain"
	"freelance/internal/repository"
)

// ProjectRepository is a PostgreSQL implementation of repository.ProjectRepository.
type ProjectRepository struct {
	q Querier
}

// NewProjectRepository creates a new PostgreSQL project repository.
func NewProjectRepository(db *sql.DB) *ProjectRepository {
	return &ProjectRepository{q: db}
}

const projectColumns = `id, title, description, deadline, budget, status, created_by, created_at, updated_at`

// Create persists a new project.
func (r *ProjectRepository) Create(ctx context.Context, project *domain.Project) error {
	query := `
		INSERT INTO projects (id, title, description, deadline, budget, status, created_by)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := r.q.ExecContext(ctx, query,
		project.ID,
		project.Title,
		project.Description,
		project.Deadline,
		project.Budget,
		project.Status,
		project.CreatedBy,
	)
	return err
}

// CreateBatch persists a batch of projects, returning the number inserted.
func (r *ProjectRepository) CreateBatch(ctx context.Context, projects []*domain.Project) (int, error) {
	inserted := 0
	for _, p := range projects {
		if err := r.Create(ctx, p); err != nil {
			return inserted, err
		}
		inserted++
	}
	return inserted, nil
}

// GetByID retrieves a project by ID.
func (r *ProjectRepository) GetByID(ctx context.Context, id string) (*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE id = $1`
	return scanProject(r.q.QueryRowContext(ctx, query, id))
}

// GetByOwner retrieves all projects created by a user, newest first.
func (r *ProjectRepository) GetByOwner(ctx context.Context, ownerID string) ([]*domain.Project, error) {
	query := `SELECT ` + projectColumns + ` FROM projects WHERE created_by = $1 ORDER BY created_at DESC`

	rows, err := r.q.QueryContext(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var projects []*domain.Project
	for rows.Next() {
		var p domain.Project
		if err := rows.Scan(
			&p.ID, &p.Title, &p.Description, &p.Deadline, &p.Budget,
			&p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}
		projects = append(projects, &p)
	}
	return projects, rows.Err()
}

// Update applies a partial update and returns the updated project.
// Nil fields keep their current value.
func (r *ProjectRepository) Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error) {
	query := `
		UPDATE projects
		SET title       = COALESCE($2, title),
		    description = COALESCE($3, description),
		    status      = COALESCE($4, status),
		    budget      = COALESCE($5, budget),
		    updated_at  = NOW()
		WHERE id = $1
		RETURNING ` + projectColumns

	var status *string
	if update.Status != nil {
		s := string(*update.Status)
		status = &s
	}

	return scanProject(r.q.QueryRowContext(ctx, query, id,
		update.Title,
		update.Description,
		status,
		update.Budget,
	))
}

// Delete removes a project and returns the deleted record.
func (r *ProjectRepository) Delete(ctx context.Context, id string) (*domain.Project, error) {
	query := `DELETE FROM projects WHERE id = $1 RETURNING ` + projectColumns
	return scanProject(r.q.QueryRowContext(ctx, query, id))
}

func scanProject(row *sql.Row) (*domain.Project, error) {
	var p domain.Project
	err := row.Scan(
		&p.ID, &p.Title, &p.Description, &p.Deadline, &p.Budget,
		&p.Status, &p.CreatedBy, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrNotFound
		}
		return nil, err
	}
	return &p, nil
}
