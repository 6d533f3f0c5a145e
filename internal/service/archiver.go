package service

import (
	"context"
	"errors"
	"io"
	"os"
	"path"
	"time"

	"posapi/internal/config"
	"posapi/internal/model"
	"posapi/internal/storage"
)

// ArchivalError wraps exhaustion of the primary-then-fallback placement
// attempts. The pipeline absorbs it: archival failure downgrades the outcome
// but never aborts an already-notified delivery.
type ArchivalError struct {
	Err error
}

func (e *ArchivalError) Error() string { return "archive receipt: " + e.Err.Error() }
func (e *ArchivalError) Unwrap() error { return e.Err }

// Archiver uploads a receipt document to durable object storage and returns a
// resolvable share location.
type Archiver interface {
	Archive(ctx context.Context, doc *model.ReceiptDocument) (*model.ArchiveLocation, error)
}

// receiptArchiver places receipts under a configured folder prefix, falling
// back once to the bucket root when the folder rejects the write with a
// permission error.
type receiptArchiver struct {
	store      storage.Storage
	folder     string
	presignTTL time.Duration
}

// NewReceiptArchiver constructs an Archiver over the given object store.
func NewReceiptArchiver(store storage.Storage, cfg config.MinIOConfig) Archiver {
	ttl := time.Duration(cfg.PresignExpirySec) * time.Second
	if ttl <= 0 {
		ttl = 7 * 24 * time.Hour
	}
	return &receiptArchiver{store: store, folder: cfg.Folder, presignTTL: ttl}
}

// Archive uploads the document and presigns a download URL. Only a permission
// rejection of the folder placement triggers the root fallback, and only once;
// any other failure category surfaces immediately.
func (a *receiptArchiver) Archive(ctx context.Context, doc *model.ReceiptDocument) (*model.ArchiveLocation, error) {
	f, err := os.Open(doc.Path)
	if err != nil {
		return nil, &ArchivalError{Err: err}
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, &ArchivalError{Err: err}
	}

	opt := storage.PutObjectOptions{
		Size:        st.Size(),
		ContentType: "application/pdf",
	}

	key := doc.Filename
	if a.folder != "" {
		key = path.Join(a.folder, doc.Filename)
	}

	info, err := a.store.Put(ctx, key, f, opt)
	if err != nil {
		if !errors.Is(err, storage.ErrPermissionDenied) || key == doc.Filename {
			return nil, &ArchivalError{Err: err}
		}
		// Folder rejected the write; retry once at the bucket root.
		if _, err := f.Seek(0, io.SeekStart); err != nil {
			return nil, &ArchivalError{Err: err}
		}
		info, err = a.store.Put(ctx, doc.Filename, f, opt)
		if err != nil {
			return nil, &ArchivalError{Err: err}
		}
	}

	url, err := a.store.PresignGet(ctx, info.Key, a.presignTTL)
	if err != nil {
		return nil, &ArchivalError{Err: err}
	}

	return &model.ArchiveLocation{Key: info.Key, URL: url}, nil
}
