package postgres

import (
	"context"
	"database/sql"

	"posapi/internal/model"
	"posapi/internal/repository"
)

// DeliveryPostgres is a PostgreSQL implementation of
// repository.DeliveryRepository. It uses database/sql with parameterized
// queries and contains no business logic.
type DeliveryPostgres struct {
	db *sql.DB
}

// NewDeliveryPostgres creates a new DeliveryPostgres repository.
func NewDeliveryPostgres(db *sql.DB) *DeliveryPostgres {
	return &DeliveryPostgres{db: db}
}

var _ repository.DeliveryRepository = (*DeliveryPostgres)(nil)

// Create inserts a new delivery log row and returns the stored record.
func (r *DeliveryPostgres) Create(ctx context.Context, d *model.Delivery) (*model.Delivery, error) {
	const q = `
		INSERT INTO receipt_deliveries (id, transaction_id, customer_email, notified, archived, archive_key, archive_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, transaction_id, customer_email, notified, archived, archive_key, archive_url, created_at
	`
	row := r.db.QueryRowContext(ctx, q,
		d.ID,
		d.TransactionID,
		d.CustomerEmail,
		d.Notified,
		d.Archived,
		d.ArchiveKey,
		d.ArchiveURL,
		d.CreatedAt,
	)
	var out model.Delivery
	if err := row.Scan(
		&out.ID,
		&out.TransactionID,
		&out.CustomerEmail,
		&out.Notified,
		&out.Archived,
		&out.ArchiveKey,
		&out.ArchiveURL,
		&out.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &out, nil
}

// FindByID fetches a single delivery log row by its ID.
func (r *DeliveryPostgres) FindByID(ctx context.Context, id string) (*model.Delivery, error) {
	const q = `
		SELECT id, transaction_id, customer_email, notified, archived, archive_key, archive_url, created_at
		FROM receipt_deliveries
		WHERE id = $1
	`
	row := r.db.QueryRowContext(ctx, q, id)
	var d model.Delivery
	if err := row.Scan(
		&d.ID,
		&d.TransactionID,
		&d.CustomerEmail,
		&d.Notified,
		&d.Archived,
		&d.ArchiveKey,
		&d.ArchiveURL,
		&d.CreatedAt,
	); err != nil {
		return nil, err
	}
	return &d, nil
}

// List returns delivery logs using LIMIT/OFFSET pagination and a total count.
func (r *DeliveryPostgres) List(ctx context.Context, pq repository.PageQuery) (*repository.PageResult[model.Delivery], error) {
	const qCount = `SELECT COUNT(*) FROM receipt_deliveries`
	var total int
	if err := r.db.QueryRowContext(ctx, qCount).Scan(&total); err != nil {
		return nil, err
	}

	const qList = `
		SELECT id, transaction_id, customer_email, notified, archived, archive_key, archive_url, created_at
		FROM receipt_deliveries
		ORDER BY created_at DESC, id DESC
		LIMIT $1 OFFSET $2
	`
	rows, err := r.db.QueryContext(ctx, qList, pq.Limit, pq.Offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	items := make([]model.Delivery, 0)
	for rows.Next() {
		var d model.Delivery
		if err := rows.Scan(
			&d.ID,
			&d.TransactionID,
			&d.CustomerEmail,
			&d.Notified,
			&d.Archived,
			&d.ArchiveKey,
			&d.ArchiveURL,
			&d.CreatedAt,
		); err != nil {
			return nil, err
		}
		items = append(items, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &repository.PageResult[model.Delivery]{
		Items: items,
		Total: total,
	}, nil
}
