package persistence

import (
	"context"
	"errors"

	"github.com/taxfolio/backend/internal/domain/partner"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormProjectRepository implements partner.ProjectRepository using GORM
type GormProjectRepository struct {
	db *gorm.DB
}

// NewGormProjectRepository creates a new GormProjectRepository
func NewGormProjectRepository(db *gorm.DB) *GormProjectRepository {
	return &GormProjectRepository{db: db}
}

// FindByID finds a project by its ID
func (r *GormProjectRepository) FindByID(ctx context.Context, id uuid.UUID) (*partner.Project, error) {
	var model models.ProjectModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByClient finds projects belonging to a client
func (r *GormProjectRepository) FindByClient(ctx context.Context, clientID uuid.UUID, filter shared.Filter) ([]partner.Project, error) {
	var projectModels []models.ProjectModel
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{}).
		Where("client_id = ?", clientID)
	query = r.applyProjectSearch(query, filter)
	query = applyBaseFilter(query, filter, "created_at DESC")

	if err := query.Find(&projectModels).Error; err != nil {
		return nil, err
	}
	return toDomainProjects(projectModels), nil
}

// FindAll finds projects matching the filter
func (r *GormProjectRepository) FindAll(ctx context.Context, filter shared.Filter) ([]partner.Project, error) {
	var projectModels []models.ProjectModel
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	query = r.applyProjectSearch(query, filter)
	query = applyBaseFilter(query, filter, "created_at DESC")

	if err := query.Find(&projectModels).Error; err != nil {
		return nil, err
	}
	return toDomainProjects(projectModels), nil
}

// Save creates or updates a project
func (r *GormProjectRepository) Save(ctx context.Context, project *partner.Project) error {
	var model models.ProjectModel
	model.FromDomain(project)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a project
func (r *GormProjectRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.ProjectModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts projects matching the filter
func (r *GormProjectRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.ProjectModel{})
	query = r.applyProjectSearch(query, filter)
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormProjectRepository) applyProjectSearch(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		searchPattern := "%" + filter.Search + "%"
		query = query.Where("name ILIKE ? OR description ILIKE ?",
			searchPattern, searchPattern)
	}
	return query
}

func toDomainProjects(projectModels []models.ProjectModel) []partner.Project {
	projects := make([]partner.Project, len(projectModels))
	for i, model := range projectModels {
		projects[i] = *model.ToDomain()
	}
	return projects
}

// Ensure GormProjectRepository implements ProjectRepository
var _ partner.ProjectRepository = (*GormProjectRepository)(nil)
