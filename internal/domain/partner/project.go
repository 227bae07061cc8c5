package partner

import (
	"time"

	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProjectStatus represents the lifecycle state of a project
type ProjectStatus string

const (
	ProjectStatusActive    ProjectStatus = "ACTIVE"
	ProjectStatusOnHold    ProjectStatus = "ON_HOLD"
	ProjectStatusCompleted ProjectStatus = "COMPLETED"
	ProjectStatusArchived  ProjectStatus = "ARCHIVED"
)

// IsValid checks if the status is a valid ProjectStatus
func (s ProjectStatus) IsValid() bool {
	switch s {
	case ProjectStatusActive, ProjectStatusOnHold, ProjectStatusCompleted, ProjectStatusArchived:
		return true
	}
	return false
}

// Project is a client engagement that invoices can be attributed to
type Project struct {
	shared.BaseAggregateRoot
	ClientID    uuid.UUID
	Name        string
	Description string
	HourlyRate  decimal.Decimal
	Budget      *decimal.Decimal
	StartDate   *time.Time
	EndDate     *time.Time
	Status      ProjectStatus
}

// NewProject creates a new project for a client
func NewProject(clientID uuid.UUID, name string, hourlyRate decimal.Decimal) (*Project, error) {
	if clientID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Client ID is required")
	}
	if name == "" {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project name cannot be empty")
	}
	if len(name) > 255 {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Project name cannot exceed 255 characters")
	}
	if hourlyRate.IsNegative() {
		return nil, shared.NewDomainError("INVALID_PROJECT", "Hourly rate cannot be negative")
	}

	project := &Project{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		ClientID:          clientID,
		Name:              name,
		HourlyRate:        hourlyRate,
		Status:            ProjectStatusActive,
	}

	project.AddDomainEvent(NewProjectCreatedEvent(project.ID, clientID, name))
	return project, nil
}

// Update changes the project's basic information
func (p *Project) Update(name, description string, hourlyRate decimal.Decimal) error {
	if name == "" {
		return shared.NewDomainError("INVALID_PROJECT", "Project name cannot be empty")
	}
	if hourlyRate.IsNegative() {
		return shared.NewDomainError("INVALID_PROJECT", "Hourly rate cannot be negative")
	}

	p.Name = name
	p.Description = description
	p.HourlyRate = hourlyRate
	p.UpdatedAt = time.Now()
	return nil
}

// SetBudget sets or clears the project budget
func (p *Project) SetBudget(budget *decimal.Decimal) error {
	if budget != nil && budget.IsNegative() {
		return shared.NewDomainError("INVALID_PROJECT", "Budget cannot be negative")
	}
	p.Budget = budget
	p.UpdatedAt = time.Now()
	return nil
}

// SetSchedule sets the project's start and end dates
func (p *Project) SetSchedule(start, end *time.Time) error {
	if start != nil && end != nil && end.Before(*start) {
		return shared.NewDomainError("INVALID_DATE_RANGE", "End date cannot be before start date")
	}
	p.StartDate = start
	p.EndDate = end
	p.UpdatedAt = time.Now()
	return nil
}

// Hold pauses an active project
func (p *Project) Hold() error {
	if p.Status != ProjectStatusActive {
		return shared.NewDomainError("INVALID_STATE", "Only active projects can be put on hold")
	}
	p.Status = ProjectStatusOnHold
	p.UpdatedAt = time.Now()
	return nil
}

// Resume reactivates a project on hold
func (p *Project) Resume() error {
	if p.Status != ProjectStatusOnHold {
		return shared.NewDomainError("INVALID_STATE", "Only projects on hold can be resumed")
	}
	p.Status = ProjectStatusActive
	p.UpdatedAt = time.Now()
	return nil
}

// Complete marks the project as finished
func (p *Project) Complete() error {
	if p.Status == ProjectStatusArchived {
		return shared.NewDomainError("INVALID_STATE", "Archived projects cannot be completed")
	}
	p.Status = ProjectStatusCompleted
	p.UpdatedAt = time.Now()
	return nil
}

// Archive retires the project from active listings
func (p *Project) Archive() {
	p.Status = ProjectStatusArchived
	p.UpdatedAt = time.Now()
}
