package app

import (
	"context"
	"errors"
	"log"
	"strings"

	"docuquery/internal/model"
	"docuquery/internal/pkg/pdfextract"
	"docuquery/internal/storage"
)

var ErrNotPDF = errors.New("only PDF files are supported")

// BlobStore is the slice of the object store the services use. Satisfied by
// *storage.BlobStore.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// UploadStore is the slice of the upload repository the library service needs.
type UploadStore interface {
	Create(upload *model.Upload) error
	ListByUserEmail(email string) ([]model.Upload, error)
}

// UploadEventPublisher emits the post-upload audit event. Satisfied by
// *rabbitmq.EventPublisher; nil disables publication.
type UploadEventPublisher interface {
	PublishUploadEvent(ctx context.Context, event model.UploadEvent) error
}

// TextExtractor turns PDF bytes into plain text. pdfextract.ExtractText in
// production.
type TextExtractor func(data []byte) (string, error)

// LibraryService owns the upload workflow and the per-user file listing.
type LibraryService struct {
	uploads UploadStore
	blobs   BlobStore
	events  UploadEventPublisher
	extract TextExtractor
}

func NewLibraryService(uploads UploadStore, blobs BlobStore, events UploadEventPublisher, extract TextExtractor) *LibraryService {
	if extract == nil {
		extract = pdfextract.ExtractText
	}
	return &LibraryService{
		uploads: uploads,
		blobs:   blobs,
		events:  events,
		extract: extract,
	}
}

type UploadInput struct {
	Email       string
	Filename    string
	ContentType string
	Data        []byte
}

// Upload stores the raw PDF, extracts and stores its text, then records the
// upload. Steps run in that order and earlier steps are not rolled back when
// a later one fails.
func (s *LibraryService) Upload(ctx context.Context, input UploadInput) (*model.Upload, error) {
	email := strings.TrimSpace(input.Email)
	filename := strings.TrimSpace(input.Filename)
	if email == "" || filename == "" || len(input.Data) == 0 {
		return nil, ErrInvalidInput
	}
	if input.ContentType != "application/pdf" {
		return nil, ErrNotPDF
	}

	if err := s.blobs.Put(ctx, storage.PDFKey(email, filename), input.Data, "application/pdf"); err != nil {
		return nil, err
	}

	text, err := s.extract(input.Data)
	if err != nil {
		return nil, err
	}

	if err := s.blobs.Put(ctx, storage.TextKey(email, filename), []byte(text), "text/plain; charset=utf-8"); err != nil {
		return nil, err
	}

	upload := &model.Upload{
		Filename:  filename,
		UserEmail: email,
	}
	if err := s.uploads.Create(upload); err != nil {
		return nil, err
	}

	if s.events != nil {
		event := model.UploadEvent{
			UserEmail: email,
			Filename:  filename,
			Size:      int64(len(input.Data)),
		}
		if err := s.events.PublishUploadEvent(ctx, event); err != nil {
			log.Printf("publish upload event failed: %v", err)
		}
	}

	return upload, nil
}

// ListFiles returns the principal's uploads in database default order.
func (s *LibraryService) ListFiles(email string) ([]model.Upload, error) {
	if strings.TrimSpace(email) == "" {
		return nil, ErrInvalidInput
	}
	return s.uploads.ListByUserEmail(email)
}
