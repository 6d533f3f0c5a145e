package handler

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"posapi/internal/mail"
	"posapi/internal/model"
	"posapi/internal/service"
	serviceMocks "posapi/internal/service/mocks"
)

func TestHealthCheck(t *testing.T) {
	db, dbMock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	defer db.Close()

	app := fiber.New()
	app.Get("/health", HealthCheck(db))

	t.Run("healthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(nil)

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]string
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "healthy", body["status"])
	})

	t.Run("unhealthy", func(t *testing.T) {
		dbMock.ExpectPing().WillReturnError(errors.New("db error"))

		req := httptest.NewRequest(http.MethodGet, "/health", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "SERVICE_UNAVAILABLE", body.Error.Code)
	})
}

func TestLivenessProbe(t *testing.T) {
	app := fiber.New()
	app.Get("/healthz", LivenessProbe())

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	resp, _ := app.Test(req)

	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func postReceipt(t *testing.T, app *fiber.App, payload any) *http.Response {
	t.Helper()
	b, err := json.Marshal(payload)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/receipts", bytes.NewReader(b))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestCreateReceipt(t *testing.T) {
	newApp := func() (*fiber.App, *serviceMocks.MockReceiptService) {
		mockSvc := new(serviceMocks.MockReceiptService)
		app := fiber.New()
		app.Post("/receipts", CreateReceipt(mockSvc))
		return app, mockSvc
	}

	t.Run("success with archival", func(t *testing.T) {
		app, mockSvc := newApp()
		mockSvc.On("Deliver", mock.Anything, mock.Anything).Return(&model.DeliveryOutcome{
			Notified: true,
			Archived: true,
			Location: &model.ArchiveLocation{
				Key: "receipts/receipt-TXN-1002.pdf",
				URL: "https://store.example.com/receipts/receipt-TXN-1002.pdf",
			},
		}, nil).Once()

		resp := postReceipt(t, app, model.ReceiptRequest{TransactionID: "TXN-1002"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["emailSent"])
		assert.Equal(t, true, body["driveUpload"])
		assert.Equal(t, "receipts/receipt-TXN-1002.pdf", body["driveFileId"])
		assert.Equal(t, "https://store.example.com/receipts/receipt-TXN-1002.pdf", body["fileUrl"])
		mockSvc.AssertExpectations(t)
	})

	t.Run("success with degraded archival", func(t *testing.T) {
		app, mockSvc := newApp()
		mockSvc.On("Deliver", mock.Anything, mock.Anything).Return(&model.DeliveryOutcome{
			Notified: true,
			Archived: false,
		}, nil).Once()

		resp := postReceipt(t, app, model.ReceiptRequest{TransactionID: "TXN-1001"})

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var body map[string]any
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, true, body["emailSent"])
		assert.Equal(t, false, body["driveUpload"])
		_, hasURL := body["fileUrl"]
		assert.False(t, hasURL)
	})

	t.Run("validation failure returns 400 with details", func(t *testing.T) {
		app, mockSvc := newApp()
		mockSvc.On("Deliver", mock.Anything, mock.Anything).
			Return(nil, &service.ValidationError{Problems: []string{"paymentMethod is required"}}).Once()

		resp := postReceipt(t, app, model.ReceiptRequest{})

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_RECEIPT_REQUEST", body.Error.Code)
		assert.Contains(t, body.Error.Details, "paymentMethod is required")
	})

	t.Run("notification failure returns 500", func(t *testing.T) {
		app, mockSvc := newApp()
		mockSvc.On("Deliver", mock.Anything, mock.Anything).
			Return(nil, &mail.NotificationError{Err: errors.New("smtp down")}).Once()

		resp := postReceipt(t, app, model.ReceiptRequest{TransactionID: "TXN-1003"})

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "RECEIPT_EMAIL_FAILED", body.Error.Code)
	})

	t.Run("malformed body returns 400", func(t *testing.T) {
		app, mockSvc := newApp()

		req := httptest.NewRequest(http.MethodPost, "/receipts", bytes.NewReader([]byte("{not json")))
		req.Header.Set("Content-Type", "application/json")
		resp, err := app.Test(req)
		require.NoError(t, err)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		mockSvc.AssertNotCalled(t, "Deliver", mock.Anything, mock.Anything)
	})
}

func TestListDeliveries(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Get("/receipts", ListDeliveries(mockSvc))

	t.Run("success", func(t *testing.T) {
		expectedRes := &service.DeliveryListResult{
			Items: []model.Delivery{{ID: uuid.New().String(), TransactionID: "TXN-1001"}},
			Total: 1,
		}
		mockSvc.On("List", mock.Anything, 10, 0).Return(expectedRes, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts?limit=10&offset=0", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var result service.DeliveryListResult
		json.NewDecoder(resp.Body).Decode(&result)
		assert.Len(t, result.Items, 1)
		assert.Equal(t, 1, result.Total)
		mockSvc.AssertExpectations(t)
	})

	t.Run("invalid limit", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/receipts?limit=abc", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "INVALID_LIMIT", body.Error.Code)
	})

	t.Run("service error", func(t *testing.T) {
		mockSvc.On("List", mock.Anything, 5, 0).Return(nil, errors.New("db fail")).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts?limit=5", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
	})
}

func TestGetDelivery(t *testing.T) {
	mockSvc := new(serviceMocks.MockReceiptService)
	app := fiber.New()
	app.Get("/receipts/:id", GetDelivery(mockSvc))

	t.Run("success", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(&model.Delivery{ID: id}, nil).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusOK, resp.StatusCode)

		var d model.Delivery
		json.NewDecoder(resp.Body).Decode(&d)
		assert.Equal(t, id, d.ID)
	})

	t.Run("invalid id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/receipts/not-a-uuid", nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("not found", func(t *testing.T) {
		id := uuid.New().String()
		mockSvc.On("Get", mock.Anything, id).Return(nil, service.ErrNotFound).Once()

		req := httptest.NewRequest(http.MethodGet, "/receipts/"+id, nil)
		resp, _ := app.Test(req)

		assert.Equal(t, http.StatusNotFound, resp.StatusCode)

		var body errorPayload
		json.NewDecoder(resp.Body).Decode(&body)
		assert.Equal(t, "NOT_FOUND", body.Error.Code)
	})
}
