package handler

import (
	"context"
	"database/sql"
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"posapi/internal/mail"
	"posapi/internal/model"
	"posapi/internal/receipt"
	"posapi/internal/service"
)

// RegisterRoutes attaches HTTP routes to the provided Fiber app.
// Keep handlers minimal and free of business logic.
func RegisterRoutes(app *fiber.App, db *sql.DB, svc service.ReceiptService) {
	// Serve the OpenAPI document and Swagger UI
	app.Get("/openapi.yaml", func(c *fiber.Ctx) error {
		c.Type("yaml")
		return c.SendFile("openapi.yaml")
	})
	app.Get("/docs", func(c *fiber.Ctx) error {
		html := `<!DOCTYPE html>
<html lang="en">
<head>
  <meta charset="UTF-8" />
  <meta name="viewport" content="width=device-width, initial-scale=1" />
  <title>API Docs</title>
  <link rel="stylesheet" href="https://unpkg.com/swagger-ui-dist@5/swagger-ui.css" />
</head>
<body>
  <div id="swagger-ui"></div>
  <script src="https://unpkg.com/swagger-ui-dist@5/swagger-ui-bundle.js"></script>
  <script>
    window.ui = SwaggerUIBundle({
      url: '/openapi.yaml',
      dom_id: '#swagger-ui',
      presets: [SwaggerUIBundle.presets.apis],
      layout: 'BaseLayout'
    });
  </script>
</body>
</html>`
		return c.Type("html").SendString(html)
	})

	app.Get("/health", HealthCheck(db))
	app.Get("/healthz", LivenessProbe())

	app.Post("/receipts", CreateReceipt(svc))
	app.Get("/receipts", ListDeliveries(svc))
	app.Get("/receipts/:id", GetDelivery(svc))
}

// HealthCheck checks DB connectivity only.
func HealthCheck(db *sql.DB) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 2*time.Second)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			return writeError(c, fiber.StatusServiceUnavailable, "SERVICE_UNAVAILABLE", "dependency unavailable")
		}
		return c.Status(fiber.StatusOK).JSON(fiber.Map{"status": "healthy"})
	}
}

// LivenessProbe is a simple liveness probe.
func LivenessProbe() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.SendStatus(fiber.StatusOK)
	}
}

// receiptResponse keeps the wire field names the checkout frontend already
// consumes, including the drive-era archive naming.
type receiptResponse struct {
	Message     string `json:"message"`
	EmailSent   bool   `json:"emailSent"`
	DriveUpload bool   `json:"driveUpload"`
	DriveFileID string `json:"driveFileId,omitempty"`
	FileURL     string `json:"fileUrl,omitempty"`
}

// CreateReceipt runs the receipt delivery pipeline for a finalized
// transaction. Validation problems map to 400 with field details; generation
// and notification failures map to 500; a degraded archival state still
// reports success.
func CreateReceipt(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req model.ReceiptRequest
		if err := c.BodyParser(&req); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_BODY", "cannot parse request body")
		}

		outcome, err := svc.Deliver(c.UserContext(), req)
		if err != nil {
			var valErr *service.ValidationError
			if errors.As(err, &valErr) {
				return writeError(c, fiber.StatusBadRequest, "INVALID_RECEIPT_REQUEST", "invalid receipt request", valErr.Problems...)
			}
			var genErr *receipt.GenerationError
			if errors.As(err, &genErr) {
				return writeError(c, fiber.StatusInternalServerError, "RECEIPT_GENERATION_FAILED", "failed to generate receipt")
			}
			var notifErr *mail.NotificationError
			if errors.As(err, &notifErr) {
				return writeError(c, fiber.StatusInternalServerError, "RECEIPT_EMAIL_FAILED", "failed to send receipt email")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}

		resp := receiptResponse{
			EmailSent:   outcome.Notified,
			DriveUpload: outcome.Archived,
		}
		if outcome.Archived && outcome.Location != nil {
			resp.Message = "Receipt emailed and archived"
			resp.DriveFileID = outcome.Location.Key
			resp.FileURL = outcome.Location.URL
		} else {
			resp.Message = "Receipt emailed; archival unavailable"
		}
		return c.Status(fiber.StatusOK).JSON(resp)
	}
}

// ListDeliveries returns delivery log rows with limit & offset.
func ListDeliveries(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		limitStr := c.Query("limit", "10")
		offsetStr := c.Query("offset", "0")
		limit, err := strconv.Atoi(limitStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_LIMIT", "invalid limit")
		}
		offset, err := strconv.Atoi(offsetStr)
		if err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_OFFSET", "invalid offset")
		}

		res, err := svc.List(c.UserContext(), limit, offset)
		if err != nil {
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(res)
	}
}

// GetDelivery returns a delivery log row by ID.
func GetDelivery(svc service.ReceiptService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		if _, err := uuid.Parse(id); err != nil {
			return writeError(c, fiber.StatusBadRequest, "INVALID_ID", "invalid id format")
		}
		d, err := svc.Get(c.UserContext(), id)
		if err != nil {
			if errors.Is(err, service.ErrNotFound) {
				return writeError(c, fiber.StatusNotFound, "NOT_FOUND", "delivery not found")
			}
			return writeError(c, fiber.StatusInternalServerError, "INTERNAL_ERROR", "internal server error")
		}
		return c.JSON(d)
	}
}
