package model

import "time"

// Package model contains pure domain models with no database-specific
// dependencies or tags beyond JSON. No business logic here.

// PurchasedItem is one line of a multi-item purchase.
type PurchasedItem struct {
	ProductName string  `json:"productName"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
	TotalPrice  float64 `json:"totalPrice"`
}

// ReceiptRequest is the finalized purchase record handed to the delivery
// pipeline after checkout completes. IsMultiple selects which item shape is
// active: the single-item fields (ProductName/Quantity/Price) or Items.
type ReceiptRequest struct {
	CustomerName    string          `json:"customerName"`
	Email           string          `json:"email"`
	IsMultiple      bool            `json:"isMultiple"`
	ProductName     string          `json:"productName,omitempty"`
	Quantity        int             `json:"quantity,omitempty"`
	Price           float64         `json:"price,omitempty"`
	Items           []PurchasedItem `json:"items,omitempty"`
	TotalPrice      float64         `json:"totalPrice"`
	PaymentMethod   string          `json:"paymentMethod"`
	TransactionID   string          `json:"transactionId"`
	TransactionDate time.Time       `json:"transactionDate"`
}

// ReceiptDocument is the transient rendered receipt artifact. The pipeline
// orchestrator owns its lifecycle; other components only borrow the path.
type ReceiptDocument struct {
	Path     string
	Filename string
}

// ArchiveLocation identifies an archived receipt in object storage.
type ArchiveLocation struct {
	Key string
	URL string
}

// DeliveryOutcome accumulates per-stage results of one pipeline run.
// Notified must be true for the run to count as a success; Archived may be
// false without failing it.
type DeliveryOutcome struct {
	Notified bool
	Archived bool
	Location *ArchiveLocation
}

// Delivery is the persisted log row recording one pipeline run.
type Delivery struct {
	ID            string    `json:"id"`
	TransactionID string    `json:"transaction_id"`
	CustomerEmail string    `json:"customer_email"`
	Notified      bool      `json:"notified"`
	Archived      bool      `json:"archived"`
	ArchiveKey    string    `json:"archive_key,omitempty"`
	ArchiveURL    string    `json:"archive_url,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
