// File: internal/handlers/knowledge_handler.go
package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/companionhq/companion/internal/repository/knowledge"
	"github.com/companionhq/companion/internal/services"
	"github.com/companionhq/companion/internal/services/extract"
)

const uploadPreviewLength = 100

// KnowledgeHandler serves knowledge-base uploads, listing and deletion.
type KnowledgeHandler struct {
	KnowledgeService *services.KnowledgeService
	MaxUploadBytes   int64
	Logger           services.Logger
}

func NewKnowledgeHandler(ks *services.KnowledgeService, maxUploadBytes int64, logger services.Logger) *KnowledgeHandler {
	if logger == nil {
		logger = &services.NoOpLogger{}
	}
	return &KnowledgeHandler{KnowledgeService: ks, MaxUploadBytes: maxUploadBytes, Logger: logger}
}

// Upload accepts a multipart file plus userId/title fields, extracts its
// text and stores it as a knowledge document.
func (h *KnowledgeHandler) Upload(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(h.MaxUploadBytes); err != nil {
		writeError(w, "Invalid multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, "No file uploaded", http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		writeError(w, "Failed to read uploaded file", http.StatusInternalServerError)
		return
	}

	mimeType := header.Header.Get("Content-Type")
	userID := r.FormValue("userId")
	title := r.FormValue("title")

	doc, err := h.KnowledgeService.Upload(r.Context(), userID, title, header.Filename, mimeType, data)
	if err != nil {
		if errors.Is(err, extract.ErrUnsupportedType) {
			writeError(w, "Unsupported file type", http.StatusBadRequest)
			return
		}
		h.Logger.Error("knowledge upload failed", "userId", userID, "error", err.Error())
		writeError(w, "Failed to process file", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"knowledgeId": doc.ID,
		"title":       doc.Title,
		"content":     services.Preview(doc.Content, uploadPreviewLength),
	})
}

// List returns every knowledge document the user owns, newest first.
func (h *KnowledgeHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := mux.Vars(r)["userId"]

	docs, err := h.KnowledgeService.ListByUser(r.Context(), userID)
	if err != nil {
		writeError(w, "Failed to fetch knowledge", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, docs)
}

// Delete removes one knowledge document by id.
func (h *KnowledgeHandler) Delete(w http.ResponseWriter, r *http.Request) {
	documentID := mux.Vars(r)["documentId"]

	if err := h.KnowledgeService.Delete(r.Context(), documentID); err != nil {
		if errors.Is(err, knowledge.ErrDocumentNotFound) {
			writeError(w, "Document not found", http.StatusNotFound)
			return
		}
		writeError(w, "Failed to delete document", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Document deleted successfully"})
}
