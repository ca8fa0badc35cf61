package app

import (
	"context"
	"errors"
	"testing"

	"docuquery/internal/model"
	"docuquery/internal/storage"
)

type fakeBlobStore struct {
	objects map[string][]byte
	putErr  map[string]error
	puts    []string
}

func newFakeBlobStore() *fakeBlobStore {
	return &fakeBlobStore{
		objects: make(map[string][]byte),
		putErr:  make(map[string]error),
	}
}

func (f *fakeBlobStore) Put(_ context.Context, key string, data []byte, _ string) error {
	if err := f.putErr[key]; err != nil {
		return err
	}
	f.objects[key] = append([]byte(nil), data...)
	f.puts = append(f.puts, key)
	return nil
}

func (f *fakeBlobStore) Get(_ context.Context, key string) ([]byte, error) {
	data, ok := f.objects[key]
	if !ok {
		return nil, storage.ErrObjectNotFound
	}
	return data, nil
}

type fakeUploadStore struct {
	uploads   []model.Upload
	createErr error
}

func (f *fakeUploadStore) Create(upload *model.Upload) error {
	if f.createErr != nil {
		return f.createErr
	}
	upload.ID = uint(len(f.uploads) + 1)
	f.uploads = append(f.uploads, *upload)
	return nil
}

func (f *fakeUploadStore) ListByUserEmail(email string) ([]model.Upload, error) {
	var owned []model.Upload
	for _, u := range f.uploads {
		if u.UserEmail == email {
			owned = append(owned, u)
		}
	}
	return owned, nil
}

type fakeEventPublisher struct {
	events []model.UploadEvent
	err    error
}

func (f *fakeEventPublisher) PublishUploadEvent(_ context.Context, event model.UploadEvent) error {
	if f.err != nil {
		return f.err
	}
	f.events = append(f.events, event)
	return nil
}

func staticExtractor(text string) TextExtractor {
	return func([]byte) (string, error) { return text, nil }
}

func TestUploadRejectsNonPDFBeforeAnyWrite(t *testing.T) {
	blobs := newFakeBlobStore()
	uploads := &fakeUploadStore{}
	svc := NewLibraryService(uploads, blobs, nil, staticExtractor("text"))

	_, err := svc.Upload(context.Background(), UploadInput{
		Email:       "u@x.com",
		Filename:    "doc.pdf",
		ContentType: "text/plain",
		Data:        []byte("not a pdf"),
	})
	if !errors.Is(err, ErrNotPDF) {
		t.Fatalf("expected ErrNotPDF, got %v", err)
	}
	if len(blobs.puts) != 0 {
		t.Fatalf("expected no blob writes, got %v", blobs.puts)
	}
	if len(uploads.uploads) != 0 {
		t.Fatalf("expected no upload rows, got %d", len(uploads.uploads))
	}
}

func TestUploadStoresBothBlobsAndOneRow(t *testing.T) {
	blobs := newFakeBlobStore()
	uploads := &fakeUploadStore{}
	events := &fakeEventPublisher{}
	svc := NewLibraryService(uploads, blobs, events, staticExtractor("page one textpage two text"))

	pdfBytes := []byte("%PDF-1.4 fake")
	upload, err := svc.Upload(context.Background(), UploadInput{
		Email:       "u@x.com",
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Data:        pdfBytes,
	})
	if err != nil {
		t.Fatalf("upload failed: %v", err)
	}
	if upload.Filename != "doc.pdf" || upload.UserEmail != "u@x.com" {
		t.Fatalf("unexpected upload row: %+v", upload)
	}

	gotPDF, ok := blobs.objects["u@x.com/doc.pdf"]
	if !ok || string(gotPDF) != string(pdfBytes) {
		t.Fatalf("pdf blob missing or altered: %q", gotPDF)
	}
	gotText, ok := blobs.objects["u@x.com/doc.pdf.txt"]
	if !ok || string(gotText) != "page one textpage two text" {
		t.Fatalf("text blob missing or altered: %q", gotText)
	}
	if len(uploads.uploads) != 1 {
		t.Fatalf("expected exactly one upload row, got %d", len(uploads.uploads))
	}
	if len(events.events) != 1 || events.events[0].Size != int64(len(pdfBytes)) {
		t.Fatalf("expected one upload event with size %d, got %+v", len(pdfBytes), events.events)
	}
}

func TestUploadLeavesEarlierWritesOnLaterFailure(t *testing.T) {
	blobs := newFakeBlobStore()
	blobs.putErr["u@x.com/doc.pdf.txt"] = errors.New("storage down")
	uploads := &fakeUploadStore{}
	svc := NewLibraryService(uploads, blobs, nil, staticExtractor("text"))

	_, err := svc.Upload(context.Background(), UploadInput{
		Email:       "u@x.com",
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	// The raw PDF stays behind; no compensation is attempted.
	if _, ok := blobs.objects["u@x.com/doc.pdf"]; !ok {
		t.Fatal("expected raw pdf blob to remain")
	}
	if len(uploads.uploads) != 0 {
		t.Fatalf("expected no upload rows, got %d", len(uploads.uploads))
	}
}

func TestUploadExtractionFailureStopsBeforeTextWrite(t *testing.T) {
	blobs := newFakeBlobStore()
	uploads := &fakeUploadStore{}
	svc := NewLibraryService(uploads, blobs, nil, func([]byte) (string, error) {
		return "", errors.New("broken pdf")
	})

	_, err := svc.Upload(context.Background(), UploadInput{
		Email:       "u@x.com",
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
	})
	if err == nil {
		t.Fatal("expected error")
	}
	if len(blobs.puts) != 1 || blobs.puts[0] != "u@x.com/doc.pdf" {
		t.Fatalf("expected only the raw pdf write, got %v", blobs.puts)
	}
	if len(uploads.uploads) != 0 {
		t.Fatalf("expected no upload rows, got %d", len(uploads.uploads))
	}
}

func TestUploadEventFailureDoesNotFailUpload(t *testing.T) {
	blobs := newFakeBlobStore()
	uploads := &fakeUploadStore{}
	events := &fakeEventPublisher{err: errors.New("broker down")}
	svc := NewLibraryService(uploads, blobs, events, staticExtractor("text"))

	_, err := svc.Upload(context.Background(), UploadInput{
		Email:       "u@x.com",
		Filename:    "doc.pdf",
		ContentType: "application/pdf",
		Data:        []byte("%PDF"),
	})
	if err != nil {
		t.Fatalf("upload should succeed despite publish failure, got %v", err)
	}
	if len(uploads.uploads) != 1 {
		t.Fatalf("expected one upload row, got %d", len(uploads.uploads))
	}
}

func TestListFilesScopedToPrincipal(t *testing.T) {
	uploads := &fakeUploadStore{}
	_ = uploads.Create(&model.Upload{Filename: "doc.pdf", UserEmail: "u@x.com"})
	_ = uploads.Create(&model.Upload{Filename: "doc.pdf", UserEmail: "other@x.com"})
	svc := NewLibraryService(uploads, newFakeBlobStore(), nil, staticExtractor("text"))

	files, err := svc.ListFiles("u@x.com")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(files) != 1 || files[0].UserEmail != "u@x.com" {
		t.Fatalf("expected only u@x.com rows, got %+v", files)
	}
}
