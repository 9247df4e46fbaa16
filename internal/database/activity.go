package database

import (
	"context"

	"pooldesk/internal/models"

	"go.uber.org/zap"
)

type ActivityFilter struct {
	ProjectID  uint
	CustomerID uint
	Type       models.ActivityType
	Limit      int
}

// журнал только на добавление: ни Update, ни Delete здесь нет
func (s *Store) CreateActivity(ctx context.Context, a *models.Activity) error {
	return translate("create activity", "activity", 0, s.db.WithContext(ctx).Create(a).Error)
}

func (s *Store) ListActivities(ctx context.Context, f ActivityFilter) ([]models.Activity, error) {
	q := s.db.WithContext(ctx).Model(&models.Activity{})
	if f.ProjectID != 0 {
		q = q.Where("project_id = ?", f.ProjectID)
	}
	if f.CustomerID != 0 {
		q = q.Where("customer_id = ?", f.CustomerID)
	}
	if f.Type != "" {
		q = q.Where("type = ?", f.Type)
	}
	limit := f.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	var out []models.Activity
	if err := q.Order("created_at desc").Order("id desc").Limit(limit).Find(&out).Error; err != nil {
		return nil, translate("list activities", "activity", 0, err)
	}
	return out, nil
}

// LogActivity пишет запись журнала; ошибку только логируем, основную операцию не валим.
func (s *Store) LogActivity(ctx context.Context, log *zap.Logger, a models.Activity) {
	if err := s.CreateActivity(ctx, &a); err != nil {
		log.Warn("failed to write activity", zap.String("type", string(a.Type)), zap.Error(err))
	}
}
