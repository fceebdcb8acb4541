package domain

import "time"

// ProjectStatus represents the current status of a project.
type ProjectStatus string

const (
	ProjectStatusPending   ProjectStatus = "Pending"
	ProjectStatusOngoing   ProjectStatus = "Ongoing"
	ProjectStatusCompleted ProjectStatus = "Completed"
)

// ValidProjectStatus reports whether s is one of the enumerated statuses.
func ValidProjectStatus(s ProjectStatus) bool {
	switch s {
	case ProjectStatusPending, ProjectStatusOngoing, ProjectStatusCompleted:
		return true
	}
	return false
}

// Project represents a freelance project owned by the user that created it.
type Project struct {
	ID          string
	Title       string
	Description string
	Deadline    time.Time
	Budget      float64
	Status      ProjectStatus
	CreatedBy   string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// ProjectUpdate carries the fields of a partial project update.
// Nil fields are left unchanged.
type ProjectUpdate struct {
	Title       *string
	Description *string
	Status      *ProjectStatus
	Budget      *float64
}

// Empty reports whether the update changes nothing.
func (u ProjectUpdate) Empty() bool {
	return u.Title == nil && u.Description == nil && u.Status == nil && u.Budget == nil
}
