package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"freelance/internal/domain"
	"freelance/internal/repository"
)

// ProjectService handles project CRUD and bulk import/export.
type ProjectService struct {
	projectRepo repository.ProjectRepository
	log         *logrus.Logger
}

// NewProjectService creates a new ProjectService.
func NewProjectService(projectRepo repository.ProjectRepository, log *logrus.Logger) *ProjectService {
	return &ProjectService{projectRepo: projectRepo, log: log}
}

// CreateProjectRequest contains the parameters for creating a project.
type CreateProjectRequest struct {
	Title       string
	Description string
	Deadline    time.Time
	Budget      float64
	Status      domain.ProjectStatus
	CreatedBy   string
}

// CreateProject validates and persists a new project. Status defaults to
// Pending when absent.
func (s *ProjectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*domain.Project, error) {
	if req.Title == "" || req.Deadline.IsZero() || req.Budget <= 0 {
		return nil, ErrMissingProjectFields
	}

	status := req.Status
	if status == "" {
		status = domain.ProjectStatusPending
	}
	if !domain.ValidProjectStatus(status) {
		return nil, ErrInvalidProjectStatus
	}

	project := &domain.Project{
		ID:          uuid.New().String(),
		Title:       req.Title,
		Description: req.Description,
		Deadline:    req.Deadline,
		Budget:      req.Budget,
		Status:      status,
		CreatedBy:   req.CreatedBy,
	}

	if err := s.projectRepo.Create(ctx, project); err != nil {
		return nil, err
	}
	return project, nil
}

// ListProjects retrieves the caller's projects, newest first.
func (s *ProjectService) ListProjects(ctx context.Context, ownerID string) ([]*domain.Project, error) {
	return s.projectRepo.GetByOwner(ctx, ownerID)
}

// GetProject retrieves a project by ID.
func (s *ProjectService) GetProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, ErrInvalidProjectID
	}
	return s.projectRepo.GetByID(ctx, projectID)
}

// UpdateProject applies a partial update to a project.
func (s *ProjectService) UpdateProject(ctx context.Context, projectID string, update domain.ProjectUpdate) (*domain.Project, error) {
	if projectID == "" {
		return nil, ErrInvalidProjectID
	}
	if update.Empty() {
		return nil, ErrEmptyProjectUpdate
	}
	if update.Status != nil && !domain.ValidProjectStatus(*update.Status) {
		return nil, ErrInvalidProjectStatus
	}
	return s.projectRepo.Update(ctx, projectID, update)
}

// DeleteProject removes a project and returns the deleted record.
func (s *ProjectService) DeleteProject(ctx context.Context, projectID string) (*domain.Project, error) {
	if projectID == "" {
		return nil, ErrInvalidProjectID
	}
	project, err := s.projectRepo.Delete(ctx, projectID)
	if err != nil {
		return nil, err
	}
	s.log.WithField("project_id", projectID).Info("project deleted")
	return project, nil
}
