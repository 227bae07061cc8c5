package persistence

import (
	"context"
	"errors"

	"github.com/taxfolio/backend/internal/domain/billing"
	"github.com/taxfolio/backend/internal/domain/shared"
	"github.com/taxfolio/backend/internal/infrastructure/persistence/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormLateFeeRuleRepository implements billing.LateFeeRuleRepository using GORM
type GormLateFeeRuleRepository struct {
	db *gorm.DB
}

// NewGormLateFeeRuleRepository creates a new GormLateFeeRuleRepository
func NewGormLateFeeRuleRepository(db *gorm.DB) *GormLateFeeRuleRepository {
	return &GormLateFeeRuleRepository{db: db}
}

// FindByID finds a late fee rule by its ID
func (r *GormLateFeeRuleRepository) FindByID(ctx context.Context, id uuid.UUID) (*billing.LateFeeRule, error) {
	var model models.LateFeeRuleModel
	if err := r.db.WithContext(ctx).
		First(&model, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds late fee rules matching the filter
func (r *GormLateFeeRuleRepository) FindAll(ctx context.Context, filter shared.Filter) ([]billing.LateFeeRule, error) {
	var ruleModels []models.LateFeeRuleModel
	query := r.db.WithContext(ctx).Model(&models.LateFeeRuleModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	query = applyBaseFilter(query, filter, "created_at DESC")

	if err := query.Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return toDomainRules(ruleModels), nil
}

// FindActive finds all active late fee rules
func (r *GormLateFeeRuleRepository) FindActive(ctx context.Context) ([]billing.LateFeeRule, error) {
	var ruleModels []models.LateFeeRuleModel
	if err := r.db.WithContext(ctx).
		Where("active = ?", true).
		Order("created_at ASC").
		Find(&ruleModels).Error; err != nil {
		return nil, err
	}
	return toDomainRules(ruleModels), nil
}

// Save creates or updates a late fee rule
func (r *GormLateFeeRuleRepository) Save(ctx context.Context, rule *billing.LateFeeRule) error {
	var model models.LateFeeRuleModel
	model.FromDomain(rule)
	return r.db.WithContext(ctx).Save(&model).Error
}

// Delete removes a late fee rule
func (r *GormLateFeeRuleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&models.LateFeeRuleModel{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts late fee rules matching the filter
func (r *GormLateFeeRuleRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LateFeeRuleModel{})
	if filter.Search != "" {
		query = query.Where("name ILIKE ?", "%"+filter.Search+"%")
	}
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func toDomainRules(ruleModels []models.LateFeeRuleModel) []billing.LateFeeRule {
	rules := make([]billing.LateFeeRule, len(ruleModels))
	for i, model := range ruleModels {
		rules[i] = *model.ToDomain()
	}
	return rules
}

// Ensure GormLateFeeRuleRepository implements LateFeeRuleRepository
var _ billing.LateFeeRuleRepository = (*GormLateFeeRuleRepository)(nil)
