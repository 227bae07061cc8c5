package partner

import (
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// Event type constants for the partner context
const (
	EventTypeClientCreated  = "partner.client.created"
	EventTypeProjectCreated = "partner.project.created"
)

// ClientCreatedEvent is raised when a new client is registered
type ClientCreatedEvent struct {
	shared.BaseDomainEvent
	Name string `json:"name"`
}

// NewClientCreatedEvent creates a new ClientCreatedEvent
func NewClientCreatedEvent(clientID uuid.UUID, name string) *ClientCreatedEvent {
	return &ClientCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeClientCreated, "Client", clientID),
		Name:            name,
	}
}

// ProjectCreatedEvent is raised when a new project is opened for a client
type ProjectCreatedEvent struct {
	shared.BaseDomainEvent
	ClientID uuid.UUID `json:"client_id"`
	Name     string    `json:"name"`
}

// NewProjectCreatedEvent creates a new ProjectCreatedEvent
func NewProjectCreatedEvent(projectID, clientID uuid.UUID, name string) *ProjectCreatedEvent {
	return &ProjectCreatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeProjectCreated, "Project", projectID),
		ClientID:        clientID,
		Name:            name,
	}
}
