package repository

import (
	"context"

	"freelance/internal/domain"
)

// ProjectRepository defines the persistence operations for projects.
type ProjectRepository interface {
	// Create persists a new project.
	Create(ctx context.Context, project *domain.Project) error

	// CreateBatch persists a batch of projects, returning the number inserted.
	CreateBatch(ctx context.Context, projects []*domain.Project) (int, error)

	// GetByID retrieves a project by ID.
	GetByID(ctx context.Context, id string) (*domain.Project, error)

	// GetByOwner retrieves all projects created by a user, newest first.
	GetByOwner(ctx context.Context, ownerID string) ([]*domain.Project, error)

	// Update applies a partial update and returns the updated project.
	Update(ctx context.Context, id string, update domain.ProjectUpdate) (*domain.Project, error)

	// Delete removes a project and returns the deleted record.
	Delete(ctx context.Context, id string) (*domain.Project, error)
}
