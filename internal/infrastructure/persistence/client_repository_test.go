package persistence

import (
	"context"
	"testing"

	"github.com/taxfolio/backend/internal/domain/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupPartnerTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&models.ClientModel{}, &models.ProjectModel{})
	require.NoError(t, err)

	return db
}

func TestClientRepository_CRUD(t *testing.T) {
	db := setupPartnerTestDB(t)
	repo := NewGormClientRepository(db)
	ctx := context.Background()

	client, err := partner.NewClient("Acme Traders", "billing@acme.in", "29ABCDE1234F1Z5")
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, client))

	t.Run("round trips the aggregate", func(t *testing.T) {
		found, err := repo.FindByID(ctx, client.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, "Acme Traders", found.Name)
		assert.Equal(t, "29", found.StateCode)
		assert.Equal(t, partner.ClientStatusActive, found.Status)
	})

	t.Run("finds by GSTIN with normalization", func(t *testing.T) {
		found, err := repo.FindByGSTIN(ctx, "  29abcde1234f1z5 ")
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, client.ID, found.ID)
	})

	t.Run("returns nil for unknown client", func(t *testing.T) {
		found, err := repo.FindByID(ctx, uuid.New())
		require.NoError(t, err)
		assert.Nil(t, found)
	})

	t.Run("lists and counts", func(t *testing.T) {
		clients, err := repo.FindAll(ctx, shared.Filter{Page: 1, PageSize: 10})
		require.NoError(t, err)
		assert.Len(t, clients, 1)

		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("deletes", func(t *testing.T) {
		require.NoError(t, repo.Delete(ctx, client.ID))
		assert.ErrorIs(t, repo.Delete(ctx, client.ID), shared.ErrNotFound)
	})
}

func TestProjectRepository_CRUD(t *testing.T) {
	db := setupPartnerTestDB(t)
	repo := NewGormProjectRepository(db)
	ctx := context.Background()

	clientID := uuid.New()
	project, err := partner.NewProject(clientID, "ERP rollout", decimal.NewFromInt(2500))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, project))

	other, err := partner.NewProject(uuid.New(), "Side gig", decimal.NewFromInt(1000))
	require.NoError(t, err)
	require.NoError(t, repo.Save(ctx, other))

	t.Run("finds by client", func(t *testing.T) {
		projects, err := repo.FindByClient(ctx, clientID, shared.Filter{})
		require.NoError(t, err)
		require.Len(t, projects, 1)
		assert.Equal(t, project.ID, projects[0].ID)
	})

	t.Run("persists lifecycle changes", func(t *testing.T) {
		require.NoError(t, project.Hold())
		require.NoError(t, repo.Save(ctx, project))

		found, err := repo.FindByID(ctx, project.ID)
		require.NoError(t, err)
		require.NotNil(t, found)
		assert.Equal(t, partner.ProjectStatusOnHold, found.Status)
	})

	t.Run("counts all projects", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
