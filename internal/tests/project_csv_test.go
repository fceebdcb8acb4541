package tests

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"freelance/internal/domain"
	"freelance/internal/service"
)

func TestCreateProject_Validation(t *testing.T) {
	t.Parallel()

	svc := service.NewProjectService(NewMockProjectRepository(), NewTestLogger())

	_, err := svc.CreateProject(context.Background(), service.CreateProjectRequest{
		Title: "No deadline", Budget: 100,
	})
	if !errors.Is(err, service.ErrMissingProjectFields) {
		t.Errorf("expected ErrMissingProjectFields, got %v", err)
	}

	_, err = svc.CreateProject(context.Background(), service.CreateProjectRequest{
		Title: "Bad status", Deadline: time.Now(), Budget: 100, Status: "Archived",
	})
	if !errors.Is(err, service.ErrInvalidProjectStatus) {
		t.Errorf("expected ErrInvalidProjectStatus, got %v", err)
	}
}

func TestCreateProject_DefaultsToPending(t *testing.T) {
	t.Parallel()

	svc := service.NewProjectService(NewMockProjectRepository(), NewTestLogger())

	project, err := svc.CreateProject(context.Background(), service.CreateProjectRequest{
		Title:     "Site redesign",
		Deadline:  time.Now().AddDate(0, 1, 0),
		Budget:    2500,
		CreatedBy: "user-1",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Status != domain.ProjectStatusPending {
		t.Errorf("expected default status Pending, got %s", project.Status)
	}
}

func TestUpdateProject_RequiresAField(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{ID: "proj-1", Title: "Old"})
	svc := service.NewProjectService(projectRepo, NewTestLogger())

	_, err := svc.UpdateProject(context.Background(), "proj-1", domain.ProjectUpdate{})
	if !errors.Is(err, service.ErrEmptyProjectUpdate) {
		t.Errorf("expected ErrEmptyProjectUpdate, got %v", err)
	}

	title := "New"
	project, err := svc.UpdateProject(context.Background(), "proj-1", domain.ProjectUpdate{Title: &title})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if project.Title != "New" {
		t.Errorf("expected updated title, got %s", project.Title)
	}
}

func TestImportProjects_InsertsOnlyValidRows(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	svc := service.NewProjectService(projectRepo, NewTestLogger())

	input := strings.Join([]string{
		"title,description,deadline,budget,status",
		"Logo design,New branding,2026-10-01,500,Pending",
		",missing title,2026-10-01,500,Pending",
		"Bad budget,desc,2026-10-01,not-a-number,Pending",
		"App build,,2026-12-15,8000,Ongoing",
	}, "\n")

	count, err := svc.ImportProjects(context.Background(), "user-1", strings.NewReader(input))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 2 {
		t.Errorf("expected 2 imported rows, got %d", count)
	}
	if projectRepo.CountProjects() != 2 {
		t.Errorf("expected 2 stored projects, got %d", projectRepo.CountProjects())
	}

	projects, _ := projectRepo.GetByOwner(context.Background(), "user-1")
	if len(projects) != 2 {
		t.Errorf("imported rows must belong to the importing user, got %d", len(projects))
	}
}

func TestImportProjects_NoValidRows(t *testing.T) {
	t.Parallel()

	svc := service.NewProjectService(NewMockProjectRepository(), NewTestLogger())

	input := "title,deadline,budget\n,2026-01-01,100\n"
	_, err := svc.ImportProjects(context.Background(), "user-1", strings.NewReader(input))
	if !errors.Is(err, service.ErrEmptyImport) {
		t.Errorf("expected ErrEmptyImport, got %v", err)
	}
}

func TestExportProjects_WritesCSV(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	projectRepo.AddProject(&domain.Project{
		ID:        "proj-1",
		Title:     "Logo design",
		Deadline:  time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC),
		Budget:    500,
		Status:    domain.ProjectStatusPending,
		CreatedBy: "user-1",
	})
	svc := service.NewProjectService(projectRepo, NewTestLogger())

	var buf bytes.Buffer
	if err := svc.ExportProjects(context.Background(), "user-1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	out := buf.String()
	if !strings.HasPrefix(out, "title,description,deadline,budget,status") {
		t.Errorf("expected header row, got %q", out)
	}
	if !strings.Contains(out, "Logo design") {
		t.Errorf("expected project row in output, got %q", out)
	}
}

func TestExportProjects_EmptyIsAnError(t *testing.T) {
	t.Parallel()

	svc := service.NewProjectService(NewMockProjectRepository(), NewTestLogger())

	var buf bytes.Buffer
	err := svc.ExportProjects(context.Background(), "user-1", &buf)
	if !errors.Is(err, service.ErrNoProjects) {
		t.Errorf("expected ErrNoProjects, got %v", err)
	}
}

func TestImportExport_RoundTrip(t *testing.T) {
	t.Parallel()

	projectRepo := NewMockProjectRepository()
	svc := service.NewProjectService(projectRepo, NewTestLogger())

	if _, err := svc.CreateProject(context.Background(), service.CreateProjectRequest{
		Title:     "App build",
		Deadline:  time.Date(2026, 12, 15, 0, 0, 0, 0, time.UTC),
		Budget:    8000,
		Status:    domain.ProjectStatusOngoing,
		CreatedBy: "user-1",
	}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var buf bytes.Buffer
	if err := svc.ExportProjects(context.Background(), "user-1", &buf); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	count, err := svc.ImportProjects(context.Background(), "user-2", &buf)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if count != 1 {
		t.Errorf("expected exported row to re-import, got %d", count)
	}
}
