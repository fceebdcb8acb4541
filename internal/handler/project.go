package handler

import (
	"bytes"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"freelance/internal/domain"
	"freelance/internal/middleware"
	"freelance/internal/service"
)

// ProjectHandler handles HTTP requests for projects.
type ProjectHandler struct {
	projectService *service.ProjectService
}

// NewProjectHandler creates a new ProjectHandler.
func NewProjectHandler(projectService *service.ProjectService) *ProjectHandler {
	return &ProjectHandler{projectService: projectService}
}

// CreateProjectRequest is the HTTP request body for creating a project.
type CreateProjectRequest struct {
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status"`
}

// ProjectResponse is the HTTP representation of a project.
type ProjectResponse struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Deadline    string  `json:"deadline"`
	Budget      float64 `json:"budget"`
	Status      string  `json:"status"`
	CreatedBy   string  `json:"createdBy"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt"`
}

func toProjectResponse(p *domain.Project) ProjectResponse {
	return ProjectResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Deadline:    p.Deadline.Format(time.RFC3339),
		Budget:      p.Budget,
		Status:      string(p.Status),
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   p.UpdatedAt.Format(time.RFC3339),
	}
}

// CreateProject handles POST /api/projects/create
func (h *ProjectHandler) CreateProject(c *gin.Context) {
	var req CreateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	deadline, err := parseDeadline(req.Deadline)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "deadline must be an RFC3339 or YYYY-MM-DD date"})
		return
	}

	project, err := h.projectService.CreateProject(c.Request.Context(), service.CreateProjectRequest{
		Title:       req.Title,
		Description: req.Description,
		Deadline:    deadline,
		Budget:      req.Budget,
		Status:      domain.ProjectStatus(req.Status),
		CreatedBy:   c.GetString(middleware.ContextUserID),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"message": "Project created successfully",
		"project": toProjectResponse(project),
	})
}

// GetAllProjects handles GET /api/projects/all
func (h *ProjectHandler) GetAllProjects(c *gin.Context) {
	projects, err := h.projectService.ListProjects(c.Request.Context(), c.GetString(middleware.ContextUserID))
	if err != nil {
		respondError(c, err)
		return
	}
	if len(projects) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"message": "No projects found for this user."})
		return
	}

	response := make([]ProjectResponse, 0, len(projects))
	for _, p := range projects {
		response = append(response, toProjectResponse(p))
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message":  "Projects retrieved successfully",
		"projects": response,
	})
}

// GetProjectByID handles GET /api/projects/get-by-id/:projectId
func (h *ProjectHandler) GetProjectByID(c *gin.Context) {
	project, err := h.projectService.GetProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message": "Project details fetched successfully.",
		"project": toProjectResponse(project),
	})
}

// UpdateProjectRequest is the HTTP request body for a partial update.
type UpdateProjectRequest struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Status      *string  `json:"status"`
	Budget      *float64 `json:"budget"`
}

// UpdateProject handles PUT /api/projects/update/:projectId
func (h *ProjectHandler) UpdateProject(c *gin.Context) {
	var req UpdateProjectRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	var status *domain.ProjectStatus
	if req.Status != nil {
		s := domain.ProjectStatus(*req.Status)
		status = &s
	}

	project, err := h.projectService.UpdateProject(c.Request.Context(), c.Param("projectId"), domain.ProjectUpdate{
		Title:       req.Title,
		Description: req.Description,
		Status:      status,
		Budget:      req.Budget,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message": "Project updated successfully.",
		"project": toProjectResponse(project),
	})
}

// DeleteProject handles DELETE /api/projects/delete/:projectId
func (h *ProjectHandler) DeleteProject(c *gin.Context) {
	project, err := h.projectService.DeleteProject(c.Request.Context(), c.Param("projectId"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{
		"message": "Project deleted successfully.",
		"project": toProjectResponse(project),
	})
}

// ExportProjects handles POST /api/projects/export
func (h *ProjectHandler) ExportProjects(c *gin.Context) {
	var buf bytes.Buffer
	err := h.projectService.ExportProjects(c.Request.Context(), c.GetString(middleware.ContextUserID), &buf)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="projects.csv"`)
	c.Data(http.StatusOK, "text/csv", buf.Bytes())
}

// ImportProjects handles POST /api/projects/import
func (h *ProjectHandler) ImportProjects(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "No file uploaded. Please upload a CSV file."})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, err)
		return
	}
	defer file.Close()

	count, err := h.projectService.ImportProjects(c.Request.Context(), c.GetString(middleware.ContextUserID), file)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, gin.H{
		"message":       "Projects imported successfully",
		"importedCount": count,
	})
}

func parseDeadline(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
