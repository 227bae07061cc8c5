package partner

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectService provides application-level project operations
type ProjectService struct {
	projectRepo partner.ProjectRepository
	clientRepo  partner.ClientRepository
}

// NewProjectService creates a new ProjectService
func NewProjectService(projectRepo partner.ProjectRepository, clientRepo partner.ClientRepository) *ProjectService {
	return &ProjectService{
		projectRepo: projectRepo,
		clientRepo:  clientRepo,
	}
}

// ===================== Requests =====================

// CreateProjectRequest is the input for opening a project
type CreateProjectRequest struct {
	ClientID    uuid.UUID        `json:"client_id" binding:"required"`
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	HourlyRate  decimal.Decimal  `json:"hourly_rate"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
}

// UpdateProjectRequest is the input for updating a project
type UpdateProjectRequest struct {
	Name        string           `json:"name" binding:"required"`
	Description string           `json:"description"`
	HourlyRate  decimal.Decimal  `json:"hourly_rate"`
	Budget      *decimal.Decimal `json:"budget"`
	StartDate   *time.Time       `json:"start_date"`
	EndDate     *time.Time       `json:"end_date"`
}

// ===================== Responses =====================

// ProjectResponse represents a project in API responses
type ProjectResponse struct {
	ID          uuid.UUID        `json:"id"`
	ClientID    uuid.UUID        `json:"client_id"`
	Name        string           `json:"name"`
	Description string           `json:"description,omitempty"`
	HourlyRate  decimal.Decimal  `json:"hourly_rate"`
	Budget      *decimal.Decimal `json:"budget,omitempty"`
	StartDate   *time.Time       `json:"start_date,omitempty"`
	EndDate     *time.Time       `json:"end_date,omitempty"`
	Status      string           `json:"status"`
	CreatedAt   time.Time        `json:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at"`
}

func toProjectResponse(project *partner.Project) *ProjectResponse {
	return &ProjectResponse{
		ID:          project.ID,
		ClientID:    project.ClientID,
		Name:        project.Name,
		Description: project.Description,
		HourlyRate:  project.HourlyRate,
		Budget:      project.Budget,
		StartDate:   project.StartDate,
		EndDate:     project.EndDate,
		Status:      string(project.Status),
		CreatedAt:   project.CreatedAt,
		UpdatedAt:   project.UpdatedAt,
	}
}

// ===================== Operations =====================

// CreateProject opens a new project for an existing client
func (s *ProjectService) CreateProject(ctx context.Context, req CreateProjectRequest) (*ProjectResponse, error) {
	client, err := s.clientRepo.FindByID(ctx, req.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
	}

	project, err := partner.NewProject(req.ClientID, req.Name, req.HourlyRate)
	if err != nil {
		return nil, err
	}
	project.Description = req.Description
	if err := project.SetBudget(req.Budget); err != nil {
		return nil, err
	}
	if err := project.SetSchedule(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// GetProject gets a project by ID
func (s *ProjectService) GetProject(ctx context.Context, id uuid.UUID) (*ProjectResponse, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// ListProjects lists projects with pagination
func (s *ProjectService) ListProjects(ctx context.Context, filter shared.Filter) ([]ProjectResponse, int64, error) {
	projects, err := s.projectRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.projectRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = *toProjectResponse(&projects[i])
	}
	return responses, total, nil
}

// ListClientProjects lists projects belonging to one client
func (s *ProjectService) ListClientProjects(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]ProjectResponse, error) {
	projects, err := s.projectRepo.FindByClient(ctx, clientID, filter)
	if err != nil {
		return nil, err
	}

	responses := make([]ProjectResponse, len(projects))
	for i := range projects {
		responses[i] = *toProjectResponse(&projects[i])
	}
	return responses, nil
}

// UpdateProject updates a project's details
func (s *ProjectService) UpdateProject(ctx context.Context, id uuid.UUID, req UpdateProjectRequest) (*ProjectResponse, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := project.Update(req.Name, req.Description, req.HourlyRate); err != nil {
		return nil, err
	}
	if err := project.SetBudget(req.Budget); err != nil {
		return nil, err
	}
	if err := project.SetSchedule(req.StartDate, req.EndDate); err != nil {
		return nil, err
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// TransitionProject applies a lifecycle action: hold, resume, complete,
// or archive.
func (s *ProjectService) TransitionProject(ctx context.Context, id uuid.UUID, action string) (*ProjectResponse, error) {
	project, err := s.findProject(ctx, id)
	if err != nil {
		return nil, err
	}

	switch action {
	case "hold":
		err = project.Hold()
	case "resume":
		err = project.Resume()
	case "complete":
		err = project.Complete()
	case "archive":
		project.Archive()
	default:
		return nil, shared.NewDomainError("INVALID_INPUT", "Unknown project action")
	}
	if err != nil {
		return nil, err
	}

	if err := s.projectRepo.Save(ctx, project); err != nil {
		return nil, err
	}
	return toProjectResponse(project), nil
}

// DeleteProject removes a project
func (s *ProjectService) DeleteProject(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findProject(ctx, id); err != nil {
		return err
	}
	return s.projectRepo.Delete(ctx, id)
}

func (s *ProjectService) findProject(ctx context.Context, id uuid.UUID) (*partner.Project, error) {
	project, err := s.projectRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if project == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Project not found")
	}
	return project, nil
}
