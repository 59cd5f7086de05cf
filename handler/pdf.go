package handler

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/AshwinGadhvi/BoloForm/apperr"
	"github.com/AshwinGadhvi/BoloForm/middleware"
	"github.com/AshwinGadhvi/BoloForm/service"
)

type PDFHandler struct {
	documents *service.DocumentService
	files     service.FileStore
}

func NewPDFHandler(documents *service.DocumentService, files service.FileStore) *PDFHandler {
	return &PDFHandler{
		documents: documents,
		files:     files,
	}
}

// actionMeta collects request attribution for the audit log.
func actionMeta(c *gin.Context) service.ActionMeta {
	return service.ActionMeta{
		Actor:     middleware.GetUsername(c),
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
}

// writeError maps service errors onto HTTP status codes.
func writeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apperr.ErrValidation):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Document not found"})
	case errors.Is(err, apperr.ErrCorruptSource):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "Source PDF cannot be processed"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal error"})
	}
}

// Upload handles PDF file upload
func (h *PDFHandler) Upload(c *gin.Context) {
	file, header, err := c.Request.FormFile("pdf")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No file provided"})
		return
	}
	defer file.Close()

	// Validate file type - PDF only
	ext := strings.ToLower(filepath.Ext(header.Filename))
	if ext != ".pdf" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF files are allowed"})
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read file"})
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType != "" && contentType != "application/octet-stream" && !strings.Contains(contentType, "pdf") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return
	}
	detectedType := http.DetectContentType(data)
	if !strings.Contains(detectedType, "pdf") && detectedType != "application/octet-stream" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid file type"})
		return
	}

	title := strings.TrimSuffix(header.Filename, ext)
	doc, err := h.documents.Upload(c.Request.Context(), title, middleware.GetUsername(c), data, actionMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, doc)
}

// List returns all documents owned by the current user
func (h *PDFHandler) List(c *gin.Context) {
	docs, err := h.documents.List(c.Request.Context(), middleware.GetUsername(c))
	if err != nil {
		writeError(c, err)
		return
	}

	result := make([]gin.H, len(docs))
	for i, doc := range docs {
		result[i] = gin.H{
			"id":         doc.ID,
			"title":      doc.Title,
			"created_at": doc.CreatedAt.Format("2006-01-02T15:04:05Z07:00"),
			"updated_at": doc.UpdatedAt.Format("2006-01-02T15:04:05Z07:00"),
		}
	}

	c.JSON(http.StatusOK, gin.H{"documents": result})
}

// Get returns a single document with its elements and a presigned URL
// for the original PDF
func (h *PDFHandler) Get(c *gin.Context) {
	doc, err := h.documents.Get(c.Request.Context(), c.Param("id"), middleware.GetUsername(c))
	if err != nil {
		writeError(c, err)
		return
	}

	pdfURL, err := h.files.PresignedURL(c.Request.Context(), doc.ObjectName)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate URL"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"document": doc,
		"pdf_url":  pdfURL,
	})
}

// Save replaces the document's element list
func (h *PDFHandler) Save(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Failed to read request body"})
		return
	}

	elements, err := h.documents.SaveElements(c.Request.Context(), c.Param("id"), middleware.GetUsername(c), raw, actionMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"elements": elements})
}

// Download burns the saved elements into the PDF and streams the result
func (h *PDFHandler) Download(c *gin.Context) {
	doc, out, err := h.documents.Download(c.Request.Context(), c.Param("id"), middleware.GetUsername(c), actionMeta(c))
	if err != nil {
		writeError(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", doc.Title+"-signed.pdf"))
	c.Data(http.StatusOK, "application/pdf", out)
}

// Delete removes a document
func (h *PDFHandler) Delete(c *gin.Context) {
	if err := h.documents.Delete(c.Request.Context(), c.Param("id"), middleware.GetUsername(c), actionMeta(c)); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Document deleted"})
}
