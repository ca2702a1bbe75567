package repository

import (
	"errors"
	"fmt"

	"gorm.io/gorm"

	"routine-planner/internal/model"
)

// OpError records which store operation failed and on what.
type OpError struct {
	Op       string
	Resource string
	ID       string
	Err      error
}

func (e *OpError) Error() string {
	if e == nil {
		return ""
	}
	if e.ID != "" {
		return fmt.Sprintf("%s %s %s: %v", e.Op, e.Resource, e.ID, e.Err)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.Resource, e.Err)
}

func (e *OpError) Unwrap() error { return e.Err }

// wrapErr maps gorm's not-found onto model.ErrNotFound so callers need not import gorm.
func wrapErr(op, resource, id string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gorm.ErrRecordNotFound) {
		err = model.ErrNotFound
	}
	return &OpError{Op: op, Resource: resource, ID: id, Err: err}
}
