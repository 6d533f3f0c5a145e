package service

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"posapi/internal/config"
	"posapi/internal/model"
	"posapi/internal/storage"
	storeMocks "posapi/internal/storage/mocks"
)

func writeTempReceipt(t *testing.T) *model.ReceiptDocument {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "receipt-TXN-1001.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.4 test"), 0o600))
	return &model.ReceiptDocument{Path: path, Filename: "receipt-TXN-1001.pdf"}
}

func archiveConfig(folder string) config.MinIOConfig {
	return config.MinIOConfig{Folder: folder, PresignExpirySec: 3600}
}

func TestReceiptArchiver_Archive(t *testing.T) {
	ctx := context.Background()
	permErr := fmt.Errorf("AccessDenied: %w", storage.ErrPermissionDenied)

	tests := []struct {
		name       string
		folder     string
		setupMocks func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument)
		wantKey    string
		wantURL    string
		wantErr    bool
		wantPuts   int
	}{
		{
			name:   "primary placement succeeds",
			folder: "receipts",
			setupMocks: func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument) {
				mStore.On("Put", ctx, "receipts/"+doc.Filename, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "receipts/" + doc.Filename}, nil)
				mStore.On("PresignGet", ctx, "receipts/"+doc.Filename, mock.Anything).
					Return("https://store.example.com/receipts/"+doc.Filename, nil)
			},
			wantKey:  "receipts/receipt-TXN-1001.pdf",
			wantURL:  "https://store.example.com/receipts/receipt-TXN-1001.pdf",
			wantPuts: 1,
		},
		{
			name:   "permission denial falls back to root once",
			folder: "receipts",
			setupMocks: func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument) {
				mStore.On("Put", ctx, "receipts/"+doc.Filename, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, permErr)
				mStore.On("Put", ctx, doc.Filename, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: doc.Filename}, nil)
				mStore.On("PresignGet", ctx, doc.Filename, mock.Anything).
					Return("https://store.example.com/"+doc.Filename, nil)
			},
			wantKey:  "receipt-TXN-1001.pdf",
			wantURL:  "https://store.example.com/receipt-TXN-1001.pdf",
			wantPuts: 2,
		},
		{
			name:   "permission denial on both attempts fails",
			folder: "receipts",
			setupMocks: func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument) {
				mStore.On("Put", ctx, mock.Anything, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, permErr)
			},
			wantErr:  true,
			wantPuts: 2,
		},
		{
			name:   "non-permission failure is not retried",
			folder: "receipts",
			setupMocks: func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument) {
				mStore.On("Put", ctx, "receipts/"+doc.Filename, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, errors.New("connection reset"))
			},
			wantErr:  true,
			wantPuts: 1,
		},
		{
			name:   "no folder configured means no fallback",
			folder: "",
			setupMocks: func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument) {
				mStore.On("Put", ctx, doc.Filename, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{}, permErr)
			},
			wantErr:  true,
			wantPuts: 1,
		},
		{
			name:   "presign failure surfaces as archival error",
			folder: "receipts",
			setupMocks: func(mStore *storeMocks.MockStorage, doc *model.ReceiptDocument) {
				mStore.On("Put", ctx, "receipts/"+doc.Filename, mock.Anything, mock.Anything).
					Return(storage.ObjectInfo{Key: "receipts/" + doc.Filename}, nil)
				mStore.On("PresignGet", ctx, "receipts/"+doc.Filename, mock.Anything).
					Return("", errors.New("presign fail"))
			},
			wantErr:  true,
			wantPuts: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			doc := writeTempReceipt(t)
			mStore := new(storeMocks.MockStorage)
			tt.setupMocks(mStore, doc)

			a := NewReceiptArchiver(mStore, archiveConfig(tt.folder))
			loc, err := a.Archive(ctx, doc)

			if tt.wantErr {
				assert.Nil(t, loc)
				var archErr *ArchivalError
				assert.ErrorAs(t, err, &archErr)
			} else {
				require.NoError(t, err)
				assert.Equal(t, tt.wantKey, loc.Key)
				assert.Equal(t, tt.wantURL, loc.URL)
			}

			mStore.AssertNumberOfCalls(t, "Put", tt.wantPuts)
			mStore.AssertExpectations(t)
		})
	}
}

func TestReceiptArchiver_MissingFile(t *testing.T) {
	mStore := new(storeMocks.MockStorage)
	a := NewReceiptArchiver(mStore, archiveConfig("receipts"))

	loc, err := a.Archive(context.Background(), &model.ReceiptDocument{
		Path:     filepath.Join(t.TempDir(), "gone.pdf"),
		Filename: "gone.pdf",
	})

	assert.Nil(t, loc)
	var archErr *ArchivalError
	assert.ErrorAs(t, err, &archErr)
	mStore.AssertNotCalled(t, "Put", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
