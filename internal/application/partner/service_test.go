package partner

import (
	"context"
	"testing"

	domainpartner "github.com/taxfolio/backend/internal/domain/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memClientRepo struct {
	clients map[uuid.UUID]*domainpartner.Client
}

func newMemClientRepo() *memClientRepo {
	return &memClientRepo{clients: make(map[uuid.UUID]*domainpartner.Client)}
}

func (r *memClientRepo) FindByID(_ context.Context, id uuid.UUID) (*domainpartner.Client, error) {
	if c, ok := r.clients[id]; ok {
		clone := *c
		return &clone, nil
	}
	return nil, nil
}

func (r *memClientRepo) FindByGSTIN(_ context.Context, gstin string) (*domainpartner.Client, error) {
	for _, c := range r.clients {
		if c.GSTIN == gstin {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memClientRepo) FindAll(_ context.Context, _ shared.Filter) ([]domainpartner.Client, error) {
	var out []domainpartner.Client
	for _, c := range r.clients {
		out = append(out, *c)
	}
	return out, nil
}

func (r *memClientRepo) Save(_ context.Context, client *domainpartner.Client) error {
	clone := *client
	r.clients[client.ID] = &clone
	return nil
}

func (r *memClientRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.clients, id)
	return nil
}

func (r *memClientRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.clients)), nil
}

type memProjectRepo struct {
	projects map[uuid.UUID]*domainpartner.Project
}

func newMemProjectRepo() *memProjectRepo {
	return &memProjectRepo{projects: make(map[uuid.UUID]*domainpartner.Project)}
}

func (r *memProjectRepo) FindByID(_ context.Context, id uuid.UUID) (*domainpartner.Project, error) {
	if p, ok := r.projects[id]; ok {
		clone := *p
		return &clone, nil
	}
	return nil, nil
}

func (r *memProjectRepo) FindByClient(_ context.Context, clientID uuid.UUID, _ shared.Filter) ([]domainpartner.Project, error) {
	var out []domainpartner.Project
	for _, p := range r.projects {
		if p.ClientID == clientID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memProjectRepo) FindAll(_ context.Context, _ shared.Filter) ([]domainpartner.Project, error) {
	var out []domainpartner.Project
	for _, p := range r.projects {
		out = append(out, *p)
	}
	return out, nil
}

func (r *memProjectRepo) Save(_ context.Context, project *domainpartner.Project) error {
	clone := *project
	r.projects[project.ID] = &clone
	return nil
}

func (r *memProjectRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(r.projects, id)
	return nil
}

func (r *memProjectRepo) Count(_ context.Context, _ shared.Filter) (int64, error) {
	return int64(len(r.projects)), nil
}

func TestClientService_CRUD(t *testing.T) {
	repo := newMemClientRepo()
	svc := NewClientService(repo)
	ctx := context.Background()

	created, err := svc.CreateClient(ctx, CreateClientRequest{
		Name:  "Acme Traders",
		Email: "billing@acme.example",
		GSTIN: "29ABCDE1234F1Z5",
	})
	require.NoError(t, err)
	assert.Equal(t, "29", created.StateCode)
	assert.True(t, created.Registered)

	fetched, err := svc.GetClient(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.Name, fetched.Name)

	updated, err := svc.UpdateClient(ctx, created.ID, UpdateClientRequest{
		Name:  "Acme Global",
		GSTIN: "", // deregistered
	})
	require.NoError(t, err)
	assert.False(t, updated.Registered)

	deactivated, err := svc.SetClientActive(ctx, created.ID, false)
	require.NoError(t, err)
	assert.Equal(t, "INACTIVE", deactivated.Status)

	require.NoError(t, svc.DeleteClient(ctx, created.ID))
	_, err = svc.GetClient(ctx, created.ID)
	assert.Error(t, err)
}

func TestClientService_RejectsBadGSTIN(t *testing.T) {
	svc := NewClientService(newMemClientRepo())

	_, err := svc.CreateClient(context.Background(), CreateClientRequest{
		Name:  "Acme",
		GSTIN: "INVALID",
	})
	assert.Error(t, err)
}

func TestProjectService_Flow(t *testing.T) {
	clientRepo := newMemClientRepo()
	projectRepo := newMemProjectRepo()
	clients := NewClientService(clientRepo)
	projects := NewProjectService(projectRepo, clientRepo)
	ctx := context.Background()

	client, err := clients.CreateClient(ctx, CreateClientRequest{Name: "Acme"})
	require.NoError(t, err)

	t.Run("requires existing client", func(t *testing.T) {
		_, err := projects.CreateProject(ctx, CreateProjectRequest{
			ClientID: uuid.New(),
			Name:     "Orphan",
		})
		assert.Error(t, err)
	})

	created, err := projects.CreateProject(ctx, CreateProjectRequest{
		ClientID:   client.ID,
		Name:       "Website revamp",
		HourlyRate: decimal.NewFromInt(2500),
	})
	require.NoError(t, err)
	assert.Equal(t, "ACTIVE", created.Status)

	held, err := projects.TransitionProject(ctx, created.ID, "hold")
	require.NoError(t, err)
	assert.Equal(t, "ON_HOLD", held.Status)

	_, err = projects.TransitionProject(ctx, created.ID, "bogus")
	assert.Error(t, err)

	listed, err := projects.ListClientProjects(ctx, client.ID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}
