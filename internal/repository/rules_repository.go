package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/ThinkGrid-Labs/altis-engine/internal/altiserr"
	"github.com/ThinkGrid-Labs/altis-engine/internal/businessrules"
)

// RulesRepository reads and writes the business_rules override table that
// businessrules.Rules is seeded from at boot.
type RulesRepository struct {
	db *gorm.DB
}

func NewRulesRepository(db *gorm.DB) *RulesRepository {
	return &RulesRepository{db: db}
}

// LoadAll returns every override row currently persisted.
func (r *RulesRepository) LoadAll(ctx context.Context) ([]businessrules.OverrideRow, error) {
	var rows []businessrules.OverrideRow
	if err := r.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, altiserr.NewInternal("rules.load_overrides", "failed to load business rule overrides", err)
	}
	return rows, nil
}

// Upsert persists a single key/value override, replacing any existing value.
func (r *RulesRepository) Upsert(ctx context.Context, key, value string) error {
	row := businessrules.OverrideRow{Key: key, Value: value}
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "key"}},
			DoUpdates: clause.AssignmentColumns([]string{"value"}),
		}).
		Create(&row).Error
	if err != nil {
		return altiserr.NewInternal("rules.upsert_override", "failed to persist business rule override", err)
	}
	return nil
}
