package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"posapi/internal/mail"
	"posapi/internal/model"
	"posapi/internal/receipt"
	"posapi/internal/repository"
)

var (
	ErrIDRequired = errors.New("id is required")
	ErrNotFound   = errors.New("delivery not found")
)

// ValidationError reports an incomplete or out-of-range receipt request. The
// caller can fix the input and retry; nothing is retried internally and no
// resources are touched.
type ValidationError struct {
	Problems []string
}

func (e *ValidationError) Error() string {
	return "invalid receipt request: " + strings.Join(e.Problems, "; ")
}

// DeliveryListResult is the service-level DTO for paginated delivery logs.
type DeliveryListResult struct {
	Items []model.Delivery `json:"data"`
	Total int              `json:"total"`
}

// ReceiptService defines the use cases around receipt delivery.
type ReceiptService interface {
	// Deliver runs the post-purchase pipeline for one finalized transaction:
	// validate, synthesize the document, notify the purchaser, archive the
	// document (best effort), clean up the transient file, and report the
	// outcome. Notification failure is fatal; archival failure is not.
	Deliver(ctx context.Context, req model.ReceiptRequest) (*model.DeliveryOutcome, error)

	// List returns delivery log rows using limit/offset and a total count.
	List(ctx context.Context, limit, offset int) (*DeliveryListResult, error)

	// Get returns a single delivery log row by its ID.
	Get(ctx context.Context, id string) (*model.Delivery, error)
}

// receiptService is a concrete implementation of ReceiptService. It holds no
// per-request state; concurrent deliveries are isolated by construction.
type receiptService struct {
	syn        receipt.Synthesizer
	mailer     mail.Mailer
	archiver   Archiver
	deliveries repository.DeliveryRepository
	log        *zap.Logger
}

// NewReceiptService constructs a new ReceiptService with explicitly injected
// collaborators.
func NewReceiptService(syn receipt.Synthesizer, mailer mail.Mailer, archiver Archiver, deliveries repository.DeliveryRepository, log *zap.Logger) ReceiptService {
	return &receiptService{
		syn:        syn,
		mailer:     mailer,
		archiver:   archiver,
		deliveries: deliveries,
		log:        log,
	}
}

// validate checks the request invariants for its active item mode.
func validate(req model.ReceiptRequest) []string {
	var problems []string

	if req.CustomerName == "" {
		problems = append(problems, "customerName is required")
	}
	if req.Email == "" {
		problems = append(problems, "email is required")
	}
	if req.PaymentMethod == "" {
		problems = append(problems, "paymentMethod is required")
	}
	if req.TransactionID == "" {
		problems = append(problems, "transactionId is required")
	}
	if req.TotalPrice <= 0 {
		problems = append(problems, "totalPrice must be a positive number")
	}

	if req.IsMultiple {
		if len(req.Items) == 0 {
			problems = append(problems, "items must not be empty")
		}
		for i, it := range req.Items {
			if it.ProductName == "" {
				problems = append(problems, fmt.Sprintf("items[%d].productName is required", i))
			}
			if it.Quantity <= 0 {
				problems = append(problems, fmt.Sprintf("items[%d].quantity must be a positive number", i))
			}
			if it.Price <= 0 {
				problems = append(problems, fmt.Sprintf("items[%d].price must be a positive number", i))
			}
		}
	} else {
		if req.ProductName == "" {
			problems = append(problems, "productName is required")
		}
		if req.Quantity <= 0 {
			problems = append(problems, "quantity must be a positive number")
		}
		if req.Price <= 0 {
			problems = append(problems, "price must be a positive number")
		}
	}

	return problems
}

func (s *receiptService) Deliver(ctx context.Context, req model.ReceiptRequest) (*model.DeliveryOutcome, error) {
	if problems := validate(req); len(problems) > 0 {
		return nil, &ValidationError{Problems: problems}
	}

	doc, err := s.syn.Synthesize(req)
	if err != nil {
		return nil, err
	}
	// The orchestrator owns the transient file: it is removed on every path
	// once created, success or failure.
	defer s.cleanup(doc)

	if err := s.mailer.SendReceipt(ctx, req.Email, doc, req); err != nil {
		return nil, err
	}

	outcome := &model.DeliveryOutcome{Notified: true}

	loc, err := s.archiver.Archive(ctx, doc)
	if err != nil {
		s.log.Warn("receipt archival failed",
			zap.String("transaction_id", req.TransactionID),
			zap.Error(err))
	} else {
		outcome.Archived = true
		outcome.Location = loc
	}

	s.record(ctx, req, outcome)

	return outcome, nil
}

// cleanup deletes the transient receipt file. Failure is logged and swallowed;
// it never alters the reported outcome.
func (s *receiptService) cleanup(doc *model.ReceiptDocument) {
	if err := os.Remove(doc.Path); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.log.Warn("receipt cleanup failed",
			zap.String("path", doc.Path),
			zap.Error(err))
	}
}

// record persists the delivery log row. Persistence failure is logged only.
func (s *receiptService) record(ctx context.Context, req model.ReceiptRequest, outcome *model.DeliveryOutcome) {
	d := &model.Delivery{
		ID:            uuid.NewString(),
		TransactionID: req.TransactionID,
		CustomerEmail: req.Email,
		Notified:      outcome.Notified,
		Archived:      outcome.Archived,
		CreatedAt:     time.Now().UTC(),
	}
	if outcome.Location != nil {
		d.ArchiveKey = outcome.Location.Key
		d.ArchiveURL = outcome.Location.URL
	}

	if _, err := s.deliveries.Create(ctx, d); err != nil {
		s.log.Error("record delivery failed",
			zap.String("transaction_id", req.TransactionID),
			zap.Error(err))
	}
}

// List returns paginated delivery log rows without exposing repository types.
func (s *receiptService) List(ctx context.Context, limit, offset int) (*DeliveryListResult, error) {
	if limit <= 0 {
		limit = 10
	}
	if offset < 0 {
		offset = 0
	}

	res, err := s.deliveries.List(ctx, repository.PageQuery{Limit: limit, Offset: offset})
	if err != nil {
		return nil, err
	}
	return &DeliveryListResult{Items: res.Items, Total: res.Total}, nil
}

// Get returns a delivery log row by ID.
func (s *receiptService) Get(ctx context.Context, id string) (*model.Delivery, error) {
	if id == "" {
		return nil, ErrIDRequired
	}
	d, err := s.deliveries.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return d, nil
}
