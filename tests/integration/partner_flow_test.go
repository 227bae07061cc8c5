package integration

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	partnerapp "github.com/taxfolio/backend/internal/application/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/infrastructure/persistence"
)

func TestPartnerFlow_ClientAndProjects(t *testing.T) {
	tdb := NewTestDB(t)
	ctx := context.Background()

	clientRepo := persistence.NewGormClientRepository(tdb.DB)
	projectRepo := persistence.NewGormProjectRepository(tdb.DB)
	clientService := partnerapp.NewClientService(clientRepo)
	projectService := partnerapp.NewProjectService(projectRepo, clientRepo)

	client, err := clientService.CreateClient(ctx, partnerapp.CreateClientRequest{
		Name:  "Deccan Textiles",
		Email: "accounts@deccan.in",
		GSTIN: "27AAPFU0939F1ZV",
	})
	require.NoError(t, err)
	assert.Equal(t, "27", client.StateCode)
	assert.True(t, client.Registered)
	assert.Equal(t, "ACTIVE", client.Status)

	updated, err := clientService.UpdateClient(ctx, client.ID, partnerapp.UpdateClientRequest{
		Name:  "Deccan Textiles Pvt Ltd",
		Email: "accounts@deccan.in",
		GSTIN: "27AAPFU0939F1ZV",
		Phone: "+91 98450 00000",
	})
	require.NoError(t, err)
	assert.Equal(t, "Deccan Textiles Pvt Ltd", updated.Name)

	budget := decimal.NewFromInt(500000)
	project, err := projectService.CreateProject(ctx, partnerapp.CreateProjectRequest{
		ClientID:   client.ID,
		Name:       "Warehouse automation",
		HourlyRate: decimal.NewFromInt(2000),
		Budget:     &budget,
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", project.Status)

	held, err := projectService.TransitionProject(ctx, project.ID, "hold")
	require.NoError(t, err)
	assert.Equal(t, "ON_HOLD", held.Status)

	resumed, err := projectService.TransitionProject(ctx, project.ID, "resume")
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", resumed.Status)

	completed, err := projectService.TransitionProject(ctx, project.ID, "complete")
	require.NoError(t, err)
	assert.Equal(t, "COMPLETED", completed.Status)

	// completed projects cannot go back on hold
	_, err = projectService.TransitionProject(ctx, project.ID, "hold")
	require.Error(t, err)
	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INVALID_STATE", domainErr.Code)

	projects, err := projectService.ListClientProjects(ctx, client.ID, shared.Filter{Page: 1, PageSize: 20})
	require.NoError(t, err)
	require.Len(t, projects, 1)

	deactivated, err := clientService.SetClientActive(ctx, client.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", deactivated.Status)

	clients, total, err := clientService.ListClients(ctx, shared.Filter{Page: 1, PageSize: 20, Search: "Deccan"})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, clients, 1)
}
