package partner

import (
	"context"
	"time"

	"github.com/taxfolio/backend/internal/domain/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ClientService provides application-level client operations
type ClientService struct {
	clientRepo partner.ClientRepository
}

// NewClientService creates a new ClientService
func NewClientService(clientRepo partner.ClientRepository) *ClientService {
	return &ClientService{clientRepo: clientRepo}
}

// ===================== Requests =====================

// CreateClientRequest is the input for registering a client
type CreateClientRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	GSTIN         string `json:"gstin" binding:"omitempty,gstin"`
	BillingAddr   string `json:"billing_address"`
	ShippingAddr  string `json:"shipping_address"`
	ContactPerson string `json:"contact_person"`
	Notes         string `json:"notes"`
}

// UpdateClientRequest is the input for updating a client
type UpdateClientRequest struct {
	Name          string `json:"name" binding:"required"`
	Email         string `json:"email" binding:"omitempty,email"`
	Phone         string `json:"phone"`
	GSTIN         string `json:"gstin" binding:"omitempty,gstin"`
	BillingAddr   string `json:"billing_address"`
	ShippingAddr  string `json:"shipping_address"`
	ContactPerson string `json:"contact_person"`
	Notes         string `json:"notes"`
}

// ===================== Responses =====================

// ClientResponse represents a client in API responses
type ClientResponse struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email,omitempty"`
	Phone         string    `json:"phone,omitempty"`
	GSTIN         string    `json:"gstin,omitempty"`
	StateCode     string    `json:"state_code,omitempty"`
	Registered    bool      `json:"registered"`
	BillingAddr   string    `json:"billing_address,omitempty"`
	ShippingAddr  string    `json:"shipping_address,omitempty"`
	ContactPerson string    `json:"contact_person,omitempty"`
	Notes         string    `json:"notes,omitempty"`
	Status        string    `json:"status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

func toClientResponse(client *partner.Client) *ClientResponse {
	return &ClientResponse{
		ID:            client.ID,
		Name:          client.Name,
		Email:         client.Email,
		Phone:         client.Phone,
		GSTIN:         client.GSTIN,
		StateCode:     client.StateCode,
		Registered:    client.IsRegistered(),
		BillingAddr:   client.BillingAddr,
		ShippingAddr:  client.ShippingAddr,
		ContactPerson: client.ContactPerson,
		Notes:         client.Notes,
		Status:        string(client.Status),
		CreatedAt:     client.CreatedAt,
		UpdatedAt:     client.UpdatedAt,
	}
}

// ===================== Operations =====================

// CreateClient registers a new client
func (s *ClientService) CreateClient(ctx context.Context, req CreateClientRequest) (*ClientResponse, error) {
	client, err := partner.NewClient(req.Name, req.Email, req.GSTIN)
	if err != nil {
		return nil, err
	}
	client.Phone = req.Phone
	client.ContactPerson = req.ContactPerson
	client.SetAddresses(req.BillingAddr, req.ShippingAddr)
	client.SetNotes(req.Notes)

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// GetClient gets a client by ID
func (s *ClientService) GetClient(ctx context.Context, id uuid.UUID) (*ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// ListClients lists clients with pagination and search
func (s *ClientService) ListClients(ctx context.Context, filter shared.Filter) ([]ClientResponse, int64, error) {
	clients, err := s.clientRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	total, err := s.clientRepo.Count(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	responses := make([]ClientResponse, len(clients))
	for i := range clients {
		responses[i] = *toClientResponse(&clients[i])
	}
	return responses, total, nil
}

// UpdateClient updates a client's details including registration
func (s *ClientService) UpdateClient(ctx context.Context, id uuid.UUID, req UpdateClientRequest) (*ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := client.Update(req.Name, req.Email, req.Phone, req.ContactPerson); err != nil {
		return nil, err
	}
	if err := client.SetGSTIN(req.GSTIN); err != nil {
		return nil, err
	}
	client.SetAddresses(req.BillingAddr, req.ShippingAddr)
	client.SetNotes(req.Notes)

	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// SetClientActive toggles the client's billable status
func (s *ClientService) SetClientActive(ctx context.Context, id uuid.UUID, active bool) (*ClientResponse, error) {
	client, err := s.findClient(ctx, id)
	if err != nil {
		return nil, err
	}

	if active {
		client.Activate()
	} else {
		client.Deactivate()
	}
	if err := s.clientRepo.Save(ctx, client); err != nil {
		return nil, err
	}
	return toClientResponse(client), nil
}

// DeleteClient removes a client
func (s *ClientService) DeleteClient(ctx context.Context, id uuid.UUID) error {
	if _, err := s.findClient(ctx, id); err != nil {
		return err
	}
	return s.clientRepo.Delete(ctx, id)
}

func (s *ClientService) findClient(ctx context.Context, id uuid.UUID) (*partner.Client, error) {
	client, err := s.clientRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if client == nil {
		return nil, shared.NewDomainError("NOT_FOUND", "Client not found")
	}
	return client, nil
}
