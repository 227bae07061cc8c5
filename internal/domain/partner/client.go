package partner

import (
	"regexp"
	"strings"
	"time"

	"github.com/taxfolio/backend/internal/domain/shared"
)

// ClientStatus represents the status of a client
type ClientStatus string

const (
	ClientStatusActive   ClientStatus = "ACTIVE"
	ClientStatusInactive ClientStatus = "INACTIVE"
)

// IsValid checks if the status is a valid ClientStatus
func (s ClientStatus) IsValid() bool {
	return s == ClientStatusActive || s == ClientStatusInactive
}

// gstinPattern matches the 15-character GSTIN format: two-digit state code,
// ten-character PAN, entity number, the literal Z, and a check character.
var gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z][1-9A-Z]Z[0-9A-Z]$`)

// IsValidGSTIN reports whether the value is a structurally valid GSTIN.
// The checksum character is not verified.
func IsValidGSTIN(gstin string) bool {
	return gstinPattern.MatchString(gstin)
}

// StateCodeFromGSTIN extracts the two-digit registration state code.
// Returns an empty string for anything that is not a valid GSTIN, which
// downstream tax resolution treats as an unregistered buyer.
func StateCodeFromGSTIN(gstin string) string {
	if !IsValidGSTIN(gstin) {
		return ""
	}
	return gstin[:2]
}

// Client is a billable customer of the business
type Client struct {
	shared.BaseAggregateRoot
	Name          string
	Email         string
	Phone         string
	GSTIN         string
	StateCode     string
	BillingAddr   string
	ShippingAddr  string
	ContactPerson string
	Notes         string
	Status        ClientStatus
}

func validateClientName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_CLIENT", "Client name cannot be empty")
	}
	if len(name) > 255 {
		return shared.NewDomainError("INVALID_CLIENT", "Client name cannot exceed 255 characters")
	}
	return nil
}

func validateClientGSTIN(gstin string) error {
	if gstin != "" && !IsValidGSTIN(gstin) {
		return shared.NewDomainError("INVALID_GSTIN", "GSTIN must be a valid 15-character registration number")
	}
	return nil
}

// NewClient creates a new client. GSTIN is optional; when present it must
// be structurally valid and its state code is captured for tax resolution.
func NewClient(name, email, gstin string) (*Client, error) {
	if err := validateClientName(name); err != nil {
		return nil, err
	}
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if err := validateClientGSTIN(gstin); err != nil {
		return nil, err
	}

	client := &Client{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Email:             email,
		GSTIN:             gstin,
		StateCode:         StateCodeFromGSTIN(gstin),
		Status:            ClientStatusActive,
	}

	client.AddDomainEvent(NewClientCreatedEvent(client.ID, name))
	return client, nil
}

// IsRegistered reports whether the client carries a usable GSTIN
func (c *Client) IsRegistered() bool {
	return c.StateCode != ""
}

// Update changes the client's basic information
func (c *Client) Update(name, email, phone, contactPerson string) error {
	if err := validateClientName(name); err != nil {
		return err
	}

	c.Name = name
	c.Email = email
	c.Phone = phone
	c.ContactPerson = contactPerson
	c.UpdatedAt = time.Now()
	return nil
}

// SetGSTIN updates the registration number and derived state code.
// An empty value clears registration.
func (c *Client) SetGSTIN(gstin string) error {
	gstin = strings.ToUpper(strings.TrimSpace(gstin))
	if err := validateClientGSTIN(gstin); err != nil {
		return err
	}

	c.GSTIN = gstin
	c.StateCode = StateCodeFromGSTIN(gstin)
	c.UpdatedAt = time.Now()
	return nil
}

// SetAddresses updates billing and shipping addresses
func (c *Client) SetAddresses(billing, shipping string) {
	c.BillingAddr = billing
	c.ShippingAddr = shipping
	c.UpdatedAt = time.Now()
}

// SetNotes updates free-form notes
func (c *Client) SetNotes(notes string) {
	c.Notes = notes
	c.UpdatedAt = time.Now()
}

// Activate marks the client as active
func (c *Client) Activate() {
	c.Status = ClientStatusActive
	c.UpdatedAt = time.Now()
}

// Deactivate marks the client as inactive. Inactive clients keep their
// invoice history but cannot receive new invoices.
func (c *Client) Deactivate() {
	c.Status = ClientStatusInactive
	c.UpdatedAt = time.Now()
}

// IsActive returns true when the client can be billed
func (c *Client) IsActive() bool {
	return c.Status == ClientStatusActive
}
