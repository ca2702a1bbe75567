package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the derived position of a schedule within its day.
type Status string

const (
	StatusTodo     Status = "todo"
	StatusUpcoming Status = "upcoming"
	StatusSoon     Status = "soon"
	StatusOngoing  Status = "ongoing"
	StatusDone     Status = "done"
)

// DateLayout is the storage format of Schedule.Date and Schedule.CompletedOn.
const DateLayout = "2006-01-02"

// Schedule is a single planned activity. Dated schedules happen once on Date
// (nil Date means "today"); routine schedules repeat every Day of the week.
type Schedule struct {
	ID          string `gorm:"primaryKey;type:text"`
	UserID      uint   `gorm:"index;not null"`
	Title       string `gorm:"not null"`
	Time        string `gorm:"not null"` // "HH:MM - HH:MM"
	Description string
	Category    Category `gorm:"type:text;not null;default:Personal;check:category IN ('Personal','Work','Study','Health')"`
	Status      Status   `gorm:"type:text;not null;default:todo"`
	IsRoutine   bool     `gorm:"index;not null;default:false"`
	Day         string   `gorm:"index"` // weekday name, routines only
	Date        *string  `gorm:"index"` // YYYY-MM-DD, dated only
	Duration    int      `gorm:"not null;default:0"`
	CompletedOn *string  // YYYY-MM-DD of the last completion
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// BeforeCreate assigns an opaque id when the caller did not.
func (s *Schedule) BeforeCreate(*gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// DoneOn reports the stored done flag as seen on the given day. A routine is
// only done on the date it was last completed; a dated schedule stays done.
func (s Schedule) DoneOn(day string) bool {
	if s.IsRoutine {
		return s.CompletedOn != nil && *s.CompletedOn == day
	}
	return s.Status == StatusDone
}

// ScheduleKind narrows a query to dated or routine schedules.
type ScheduleKind int

const (
	KindAny ScheduleKind = iota
	KindDated
	KindRoutine
)

// ScheduleFilter selects schedules from the store. Zero fields do not filter.
type ScheduleFilter struct {
	UserID uint
	Kind   ScheduleKind
	// Date matches dated schedules exactly; IncludeUndated also matches a nil date.
	Date           string
	IncludeUndated bool
	// Dated schedules on or after Since (YYYY-MM-DD).
	Since string
	// Routine schedules on this weekday name.
	Day string
}

// SchedulePatch lists the columns an update may change. Nil fields are kept.
type SchedulePatch struct {
	Title       *string
	Time        *string
	Description *string
	Category    *Category
	Status      *Status
	Day         *string
	Duration    *int
	CompletedOn *string
}
