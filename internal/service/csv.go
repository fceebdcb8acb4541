package service

import (
	"context"
	"encoding/csv"
	"errors"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"freelance/internal/domain"
)

// csvHeader is the column layout used by both export and import.
var csvHeader = []string{"title", "description", "deadline", "budget", "status"}

// deadlineLayouts are the date formats accepted on import.
var deadlineLayouts = []string{time.RFC3339, "2006-01-02"}

// ExportProjects writes the caller's projects to w as CSV.
func (s *ProjectService) ExportProjects(ctx context.Context, ownerID string, w io.Writer) error {
	projects, err := s.projectRepo.GetByOwner(ctx, ownerID)
	if err != nil {
		return err
	}
	if len(projects) == 0 {
		return ErrNoProjects
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}
	for _, p := range projects {
		record := []string{
			p.Title,
			p.Description,
			p.Deadline.Format(time.RFC3339),
			strconv.FormatFloat(p.Budget, 'f', 2, 64),
			string(p.Status),
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ImportProjects reads CSV rows from r and bulk-inserts the valid ones for
// the given owner, returning the number inserted. A row is valid when it
// has a title, a parseable deadline, and a positive numeric budget; other
// rows are skipped rather than failing the whole import.
func (s *ProjectService) ImportProjects(ctx context.Context, ownerID string, r io.Reader) (int, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1 // rows may omit trailing columns
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err != nil {
		return 0, ErrEmptyImport
	}
	index := columnIndex(header)

	var projects []*domain.Project
	skipped := 0
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return 0, err
		}

		project, ok := projectFromRecord(record, index, ownerID)
		if !ok {
			skipped++
			continue
		}
		projects = append(projects, project)
	}

	if len(projects) == 0 {
		return 0, ErrEmptyImport
	}

	inserted, err := s.projectRepo.CreateBatch(ctx, projects)
	if err != nil {
		return inserted, err
	}
	if skipped > 0 {
		s.log.WithField("skipped", skipped).Warn("import skipped invalid rows")
	}
	return inserted, nil
}

// columnIndex maps lowercase header names to their positions.
func columnIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.ToLower(strings.TrimSpace(name))] = i
	}
	return index
}

func field(record []string, index map[string]int, name string) string {
	i, ok := index[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

func projectFromRecord(record []string, index map[string]int, ownerID string) (*domain.Project, bool) {
	title := field(record, index, "title")
	if title == "" {
		return nil, false
	}

	deadline, ok := parseDeadline(field(record, index, "deadline"))
	if !ok {
		return nil, false
	}

	budget, err := strconv.ParseFloat(field(record, index, "budget"), 64)
	if err != nil || budget <= 0 {
		return nil, false
	}

	status := domain.ProjectStatus(field(record, index, "status"))
	if status == "" {
		status = domain.ProjectStatusPending
	}
	if !domain.ValidProjectStatus(status) {
		return nil, false
	}

	return &domain.Project{
		ID:          uuid.New().String(),
		Title:       title,
		Description: field(record, index, "description"),
		Deadline:    deadline,
		Budget:      budget,
		Status:      status,
		CreatedBy:   ownerID,
	}, true
}

func parseDeadline(value string) (time.Time, bool) {
	if value == "" {
		return time.Time{}, false
	}
	for _, layout := range deadlineLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
