package partner

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestProject(t *testing.T) *Project {
	t.Helper()
	project, err := NewProject(uuid.New(), "Website revamp", decimal.NewFromInt(2500))
	require.NoError(t, err)
	return project
}

func TestNewProject(t *testing.T) {
	t.Run("valid project", func(t *testing.T) {
		project := createTestProject(t)
		assert.Equal(t, ProjectStatusActive, project.Status)
		assert.Len(t, project.GetDomainEvents(), 1)
	})

	t.Run("missing client", func(t *testing.T) {
		_, err := NewProject(uuid.Nil, "X", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("empty name", func(t *testing.T) {
		_, err := NewProject(uuid.New(), "", decimal.Zero)
		assert.Error(t, err)
	})

	t.Run("negative rate", func(t *testing.T) {
		_, err := NewProject(uuid.New(), "X", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestProject_Schedule(t *testing.T) {
	project := createTestProject(t)
	start := time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 3, 0)

	require.NoError(t, project.SetSchedule(&start, &end))
	assert.Equal(t, start, *project.StartDate)

	bad := start.AddDate(0, 0, -1)
	assert.Error(t, project.SetSchedule(&start, &bad))
}

func TestProject_StatusTransitions(t *testing.T) {
	project := createTestProject(t)

	require.NoError(t, project.Hold())
	assert.Equal(t, ProjectStatusOnHold, project.Status)
	assert.Error(t, project.Hold())

	require.NoError(t, project.Resume())
	assert.Equal(t, ProjectStatusActive, project.Status)

	require.NoError(t, project.Complete())
	assert.Equal(t, ProjectStatusCompleted, project.Status)

	project.Archive()
	assert.Equal(t, ProjectStatusArchived, project.Status)
	assert.Error(t, project.Complete())
}

func TestProject_Budget(t *testing.T) {
	project := createTestProject(t)

	budget := decimal.NewFromInt(500000)
	require.NoError(t, project.SetBudget(&budget))
	assert.True(t, project.Budget.Equal(budget))

	negative := decimal.NewFromInt(-1)
	assert.Error(t, project.SetBudget(&negative))

	require.NoError(t, project.SetBudget(nil))
	assert.Nil(t, project.Budget)
}
