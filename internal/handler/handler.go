// Package handler provides HTTP request handlers for the library API.
package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/library-api/internal/apperr"
	"github.com/vyrodovalexey/library-api/internal/insight"
	"github.com/vyrodovalexey/library-api/internal/model"
	"github.com/vyrodovalexey/library-api/internal/store"
)

// Version is the application version.
const Version = "1.0.0"

// Response messages that are not tied to a book field.
const (
	MsgInvalidBody   = "Invalid request body"
	MsgInternalError = "Internal server error"
	MsgInvalidBookID = "Invalid book id: "
)

const (
	statusHealthy  = "healthy"
	statusReady    = "ready"
	statusNotReady = "not ready"
)

// maxRequestBodyBytes bounds the size of a decoded request body.
const maxRequestBodyBytes = 1 << 20

// BookService is the catalog behaviour the handlers depend on.
type BookService interface {
	Create(ctx context.Context, book *model.Book) (*model.Book, error)
	ExistsByISBN(ctx context.Context, isbn string) (bool, error)
	GetAll(ctx context.Context) ([]model.Book, error)
	GetByID(ctx context.Context, id int64) (*model.Book, error)
	Update(ctx context.Context, id int64, fields *model.Book) (*model.Book, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, title, author *string) ([]model.Book, error)
	Ping(ctx context.Context) error
}

// BookHandler handles REST API requests for books.
type BookHandler struct {
	books     BookService
	generator insight.Generator
	logger    *zap.Logger
}

// NewBookHandler creates a new BookHandler instance.
func NewBookHandler(books BookService, generator insight.Generator, logger *zap.Logger) *BookHandler {
	return &BookHandler{
		books:     books,
		generator: generator,
		logger:    logger,
	}
}

// RegisterRoutes registers the API routes with the router.
// The search route is registered ahead of the {id} routes so that
// "/books/search" is never read as an id.
func (h *BookHandler) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/health", h.HealthCheck).Methods(http.MethodGet)
	router.HandleFunc("/ready", h.ReadyCheck).Methods(http.MethodGet)

	router.HandleFunc("/books", h.ListBooks).Methods(http.MethodGet)
	router.HandleFunc("/books", h.CreateBook).Methods(http.MethodPost)
	router.HandleFunc("/books/search", h.SearchBooks).Methods(http.MethodGet)
	router.HandleFunc("/books/{id}", h.GetBook).Methods(http.MethodGet)
	router.HandleFunc("/books/{id}", h.UpdateBook).Methods(http.MethodPut)
	router.HandleFunc("/books/{id}", h.DeleteBook).Methods(http.MethodDelete)
	router.HandleFunc("/books/{id}/ai-insights", h.BookInsights).Methods(http.MethodGet)
}

// HealthCheck handles GET /health requests.
func (h *BookHandler) HealthCheck(w http.ResponseWriter, _ *http.Request) {
	h.writeJSON(w, http.StatusOK, model.HealthResponse{
		Status:  statusHealthy,
		Version: Version,
	})
}

// ReadyCheck handles GET /ready requests by pinging the record store.
func (h *BookHandler) ReadyCheck(w http.ResponseWriter, r *http.Request) {
	if err := h.books.Ping(r.Context()); err != nil {
		h.logger.Warn("readiness check failed", zap.Error(err))
		h.writeJSON(w, http.StatusServiceUnavailable, model.ReadyResponse{Status: statusNotReady})
		return
	}

	h.writeJSON(w, http.StatusOK, model.ReadyResponse{Status: statusReady})
}

// writeJSON writes a JSON response with the given status code.
func (h *BookHandler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if data == nil {
		return
	}

	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to encode response", zap.Error(err))
	}
}

// writeError translates err into an HTTP response. Domain errors carry their
// own status and body; anything else is logged and hidden behind a 500.
func (h *BookHandler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	if appErr, ok := apperr.As(err); ok {
		if appErr.Kind == apperr.KindValidation || appErr.Kind == apperr.KindDuplicate {
			h.logger.Warn("request rejected",
				zap.String("kind", appErr.Kind.String()),
				zap.Any("fields", appErr.Fields),
				zap.String("path", r.URL.Path),
			)
		}
		h.writeJSON(w, appErr.Status(), appErr.Fields)
		return
	}

	h.logger.Error("request failed",
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)
	h.writeJSON(w, http.StatusInternalServerError, model.ErrorBody(MsgInternalError))
}

// translate maps store sentinels to domain errors for the book with id.
func translate(err error, id int64) error {
	switch {
	case errors.Is(err, store.ErrDuplicateISBN):
		return apperr.DuplicateISBN()
	case errors.Is(err, store.ErrNotFound):
		return apperr.NotFound(id)
	default:
		return err
	}
}
