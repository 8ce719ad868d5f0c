package handler

import (
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/vyrodovalexey/library-api/internal/insight"
	"github.com/vyrodovalexey/library-api/internal/store"
)

// BookInsights handles GET /books/{id}/ai-insights requests. The reply of the
// text-generation service is passed through unchanged.
func (h *BookHandler) BookInsights(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	book, err := h.books.GetByID(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	resp, err := h.generator.Generate(ctx, insight.Prompt(book))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	w.Header().Set("Content-Type", resp.ContentType)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(resp.Body); err != nil {
		h.logger.Error("failed to write insight response", zap.Int64("book_id", id), zap.Error(err))
	}
}
