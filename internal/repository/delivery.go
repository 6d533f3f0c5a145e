package repository

import (
	"context"

	"posapi/internal/model"
)

// DeliveryRepository defines data access for receipt delivery logs using SQL
// queries only. No business logic here — strictly persistence operations.
type DeliveryRepository interface {
	// Create inserts a new delivery log row.
	// Returns the stored row (may include values set by the DB).
	Create(ctx context.Context, d *model.Delivery) (*model.Delivery, error)

	// FindByID returns a delivery log row by its ID.
	FindByID(ctx context.Context, id string) (*model.Delivery, error)

	// List returns a paginated list of delivery logs and total rows count.
	List(ctx context.Context, pq PageQuery) (*PageResult[model.Delivery], error)
}

// PageQuery holds limit/offset pagination parameters.
type PageQuery struct {
	Limit  int
	Offset int
}

// PageResult is a generic pagination result wrapper.
// T is typically a model type.
type PageResult[T any] struct {
	Items []T
	Total int
}
