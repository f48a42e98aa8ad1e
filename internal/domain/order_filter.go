package domain

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// OrderFilter has AND semantics across fields, OR semantics within each field slice
type OrderFilter struct {
	IDs        []uuid.UUID
	Categories []CustomerCategory
	Statuses   []OrderStatus
	CreatedAt  *TimeRange
}

func (f OrderFilter) IsEmpty() bool {
	return len(f.IDs) == 0 && len(f.Categories) == 0 && len(f.Statuses) == 0 && f.CreatedAt == nil
}

func (f OrderFilter) Validate() error {
	if f.IsEmpty() {
		return errors.New("all fields are empty")
	}

	if f.CreatedAt != nil {
		if err := f.CreatedAt.Validate(); err != nil {
			return fmt.Errorf("createdAt: %w", err)
		}
	}

	return nil
}

type TimeRange struct {
	Before *time.Time
	After  *time.Time
}

func (t TimeRange) Validate() error {
	if t.Before == nil && t.After == nil {
		return errors.New("both Before and After are nil")
	}

	if t.Before != nil && t.After != nil {
		if t.Before.Before(*t.After) {
			return fmt.Errorf("before is before After")
		}
	}

	return nil
}
