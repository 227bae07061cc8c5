package models

import (
	"time"

	"github.com/taxfolio/backend/internal/domain/partner"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ClientModel is the persistence model for the Client aggregate root.
type ClientModel struct {
	AggregateModel
	Name          string               `gorm:"type:varchar(255);not null;index"`
	Email         string               `gorm:"type:varchar(255)"`
	Phone         string               `gorm:"type:varchar(30)"`
	GSTIN         string               `gorm:"type:varchar(15);index"`
	StateCode     string               `gorm:"type:varchar(2)"`
	BillingAddr   string               `gorm:"type:text"`
	ShippingAddr  string               `gorm:"type:text"`
	ContactPerson string               `gorm:"type:varchar(255)"`
	Notes         string               `gorm:"type:text"`
	Status        partner.ClientStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (ClientModel) TableName() string {
	return "clients"
}

// ToDomain converts the persistence model to a domain Client
func (m *ClientModel) ToDomain() *partner.Client {
	return &partner.Client{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		Name:              m.Name,
		Email:             m.Email,
		Phone:             m.Phone,
		GSTIN:             m.GSTIN,
		StateCode:         m.StateCode,
		BillingAddr:       m.BillingAddr,
		ShippingAddr:      m.ShippingAddr,
		ContactPerson:     m.ContactPerson,
		Notes:             m.Notes,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Client
func (m *ClientModel) FromDomain(client *partner.Client) {
	m.FromDomainAggregateRoot(client.BaseAggregateRoot)
	m.Name = client.Name
	m.Email = client.Email
	m.Phone = client.Phone
	m.GSTIN = client.GSTIN
	m.StateCode = client.StateCode
	m.BillingAddr = client.BillingAddr
	m.ShippingAddr = client.ShippingAddr
	m.ContactPerson = client.ContactPerson
	m.Notes = client.Notes
	m.Status = client.Status
}

// ProjectModel is the persistence model for the Project aggregate root.
type ProjectModel struct {
	AggregateModel
	ClientID    uuid.UUID             `gorm:"type:uuid;not null;index"`
	Name        string                `gorm:"type:varchar(255);not null"`
	Description string                `gorm:"type:text"`
	HourlyRate  decimal.Decimal       `gorm:"type:decimal(18,4);not null"`
	Budget      *decimal.Decimal      `gorm:"type:decimal(18,4)"`
	StartDate   *time.Time            `gorm:"index"`
	EndDate     *time.Time            `gorm:"index"`
	Status      partner.ProjectStatus `gorm:"type:varchar(20);not null;default:'ACTIVE';index"`
}

// TableName returns the table name for GORM
func (ProjectModel) TableName() string {
	return "projects"
}

// ToDomain converts the persistence model to a domain Project
func (m *ProjectModel) ToDomain() *partner.Project {
	return &partner.Project{
		BaseAggregateRoot: m.ToDomainAggregateRoot(),
		ClientID:          m.ClientID,
		Name:              m.Name,
		Description:       m.Description,
		HourlyRate:        m.HourlyRate,
		Budget:            m.Budget,
		StartDate:         m.StartDate,
		EndDate:           m.EndDate,
		Status:            m.Status,
	}
}

// FromDomain populates the persistence model from a domain Project
func (m *ProjectModel) FromDomain(project *partner.Project) {
	m.FromDomainAggregateRoot(project.BaseAggregateRoot)
	m.ClientID = project.ClientID
	m.Name = project.Name
	m.Description = project.Description
	m.HourlyRate = project.HourlyRate
	m.Budget = project.Budget
	m.StartDate = project.StartDate
	m.EndDate = project.EndDate
	m.Status = project.Status
}
