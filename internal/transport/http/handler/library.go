package handler

import (
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"docuquery/internal/app"
	"docuquery/internal/transport/http/response"
)

const maxPDFSize = 20 << 20 // 20 MB

type LibraryHandler struct {
	libraryService *app.LibraryService
}

func NewLibraryHandler(libraryService *app.LibraryService) *LibraryHandler {
	return &LibraryHandler{libraryService: libraryService}
}

// Upload accepts a multipart "file" part that must be a PDF, stores the raw
// bytes and extracted text, and records the upload.
func (h *LibraryHandler) Upload(c *gin.Context) {
	email, ok := getEmailFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}

	file, err := c.FormFile("file")
	if err != nil {
		response.Error(c, http.StatusBadRequest, "missing file")
		return
	}
	if file.Size > maxPDFSize {
		response.Error(c, http.StatusBadRequest, "file too large (max 20MB)")
		return
	}
	if file.Header.Get("Content-Type") != "application/pdf" {
		response.Error(c, http.StatusBadRequest, "Only PDF files are supported.")
		return
	}

	f, err := file.Open()
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read file")
		return
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "failed to read file")
		return
	}

	upload, err := h.libraryService.Upload(c.Request.Context(), app.UploadInput{
		Email:       email,
		Filename:    file.Filename,
		ContentType: file.Header.Get("Content-Type"),
		Data:        data,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNotPDF):
			response.Error(c, http.StatusBadRequest, "Only PDF files are supported.")
		case errors.Is(err, app.ErrInvalidInput):
			response.Error(c, http.StatusBadRequest, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, "Upload failed: "+err.Error())
		}
		return
	}

	response.OK(c, gin.H{
		"filename": upload.Filename,
		"message":  "Uploaded successfully.",
	})
}

// MyFiles lists the principal's uploads as {filename, uploaded}.
func (h *LibraryHandler) MyFiles(c *gin.Context) {
	email, ok := getEmailFromContext(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, "invalid token payload")
		return
	}

	uploads, err := h.libraryService.ListFiles(email)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, "list files failed")
		return
	}

	files := make([]gin.H, 0, len(uploads))
	for _, u := range uploads {
		files = append(files, gin.H{
			"filename": u.Filename,
			"uploaded": u.UploadTime.Format(time.RFC3339),
		})
	}
	response.OK(c, files)
}
