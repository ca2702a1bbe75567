package repository

import (
	"context"

	"gorm.io/gorm"

	"routine-planner/internal/model"
)

// CategoryCount is the number of schedules in one category.
type CategoryCount struct {
	Category model.Category
	Count    int
}

// CategoryQuery picks the schedules counted by CountByCategory. With Date set it
// counts schedules dated that day plus every routine; with Since set it counts
// dated schedules from that day on.
type CategoryQuery struct {
	UserID uint
	Date   string
	Since  string
}

// CategoryRepository aggregates schedules per category.
type CategoryRepository struct {
	db *gorm.DB
}

func NewCategoryRepository(db *gorm.DB) *CategoryRepository {
	return &CategoryRepository{db: db}
}

// CountByCategory groups matching schedules by category, largest group first.
func (r *CategoryRepository) CountByCategory(ctx context.Context, q CategoryQuery) ([]CategoryCount, error) {
	db := r.db.WithContext(ctx).Model(&model.Schedule{}).Where("user_id = ?", q.UserID)
	switch {
	case q.Date != "":
		db = db.Where("(date = ? OR is_routine = ?)", q.Date, true)
	case q.Since != "":
		db = db.Where("is_routine = ? AND date >= ?", false, q.Since)
	}

	var rows []struct {
		Category string
		Count    int
	}
	err := db.Select("category, COUNT(*) AS count").
		Group("category").
		Order("count DESC, category ASC").
		Scan(&rows).Error
	if err != nil {
		return nil, wrapErr("count", "categories", "", err)
	}

	counts := make([]CategoryCount, 0, len(rows))
	for _, row := range rows {
		category := model.Category(row.Category)
		if category == "" {
			category = model.CategoryPersonal
		}
		counts = append(counts, CategoryCount{Category: category, Count: row.Count})
	}
	return counts, nil
}
