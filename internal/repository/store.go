package repository

import "gorm.io/gorm"

// Store bundles the repositories the services talk to.
type Store struct {
	*ScheduleRepository
	*ProfileRepository
	Users      *UserRepository
	Categories *CategoryRepository
}

func NewStore(db *gorm.DB) *Store {
	return &Store{
		ScheduleRepository: NewScheduleRepository(db),
		ProfileRepository:  NewProfileRepository(db),
		Users:              NewUserRepository(db),
		Categories:         NewCategoryRepository(db),
	}
}
