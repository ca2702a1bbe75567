package model

// Category is the closed set of areas a schedule can belong to.
// The store enforces it with a check constraint.
type Category string

const (
	CategoryPersonal Category = "Personal"
	CategoryWork     Category = "Work"
	CategoryStudy    Category = "Study"
	CategoryHealth   Category = "Health"
)

// Categories lists every allowed category in display order.
var Categories = []Category{CategoryPersonal, CategoryWork, CategoryStudy, CategoryHealth}

func (c Category) Valid() bool {
	switch c {
	case CategoryPersonal, CategoryWork, CategoryStudy, CategoryHealth:
		return true
	}
	return false
}
