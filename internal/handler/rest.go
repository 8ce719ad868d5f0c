package handler

import (
	"encoding/json"
	"net/http"
	"net/url"
	"strconv"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/vyrodovalexey/library-api/internal/apperr"
	"github.com/vyrodovalexey/library-api/internal/model"
)

// ListBooks handles GET /books requests.
func (h *BookHandler) ListBooks(w http.ResponseWriter, r *http.Request) {
	books, err := h.books.GetAll(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, books)
}

// GetBook handles GET /books/{id} requests.
func (h *BookHandler) GetBook(w http.ResponseWriter, r *http.Request) {
	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	book, err := h.books.GetByID(r.Context(), id)
	if err != nil {
		h.writeError(w, r, translate(err, id))
		return
	}

	h.writeJSON(w, http.StatusOK, book)
}

// CreateBook handles POST /books requests.
func (h *BookHandler) CreateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	input, ok := h.decodeBook(w, r)
	if !ok {
		return
	}

	if errs := input.Validate(); len(errs) > 0 {
		h.writeError(w, r, apperr.Validation(errs))
		return
	}

	exists, err := h.books.ExistsByISBN(ctx, input.ISBN)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if exists {
		h.writeError(w, r, apperr.DuplicateISBN())
		return
	}

	book, err := h.books.Create(ctx, input)
	if err != nil {
		h.writeError(w, r, translate(err, 0))
		return
	}

	h.logger.Info("book created", zap.Int64("book_id", book.ID), zap.String("isbn", book.ISBN))
	h.writeJSON(w, http.StatusCreated, book)
}

// UpdateBook handles PUT /books/{id} requests.
// Checks run in order: body shape, existence, ISBN collision.
func (h *BookHandler) UpdateBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	input, ok := h.decodeBook(w, r)
	if !ok {
		return
	}

	if errs := input.Validate(); len(errs) > 0 {
		h.writeError(w, r, apperr.Validation(errs))
		return
	}

	existing, err := h.books.GetByID(ctx, id)
	if err != nil {
		h.writeError(w, r, translate(err, id))
		return
	}

	if existing.ISBN != input.ISBN {
		exists, err := h.books.ExistsByISBN(ctx, input.ISBN)
		if err != nil {
			h.writeError(w, r, err)
			return
		}
		if exists {
			h.writeError(w, r, apperr.DuplicateISBN())
			return
		}
	}

	book, err := h.books.Update(ctx, id, input)
	if err != nil {
		h.writeError(w, r, translate(err, id))
		return
	}

	h.writeJSON(w, http.StatusOK, book)
}

// DeleteBook handles DELETE /books/{id} requests.
func (h *BookHandler) DeleteBook(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, ok := h.bookID(w, r)
	if !ok {
		return
	}

	if _, err := h.books.GetByID(ctx, id); err != nil {
		h.writeError(w, r, translate(err, id))
		return
	}

	if err := h.books.Delete(ctx, id); err != nil {
		h.writeError(w, r, translate(err, id))
		return
	}

	h.logger.Info("book deleted", zap.Int64("book_id", id))
	w.WriteHeader(http.StatusNoContent)
}

// SearchBooks handles GET /books/search requests. A query parameter that is
// present filters even when empty; an absent one places no constraint.
func (h *BookHandler) SearchBooks(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	books, err := h.books.Search(r.Context(), queryParam(query, "title"), queryParam(query, "author"))
	if err != nil {
		h.writeError(w, r, err)
		return
	}

	h.writeJSON(w, http.StatusOK, books)
}

// bookID parses the {id} path variable. Only a value that is not an integer
// is rejected; on failure it writes the 400 response and returns false.
func (h *BookHandler) bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	raw := mux.Vars(r)["id"]

	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		h.logger.Warn("invalid book id", zap.String("id", raw))
		h.writeJSON(w, http.StatusBadRequest, model.ErrorBody(MsgInvalidBookID+raw))
		return 0, false
	}

	return id, true
}

// decodeBook decodes the request body. On failure it writes the 400
// response and returns false.
func (h *BookHandler) decodeBook(w http.ResponseWriter, r *http.Request) (*model.Book, bool) {
	var input model.Book
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBodyBytes)).Decode(&input); err != nil {
		h.logger.Warn("invalid request body", zap.Error(err))
		h.writeJSON(w, http.StatusBadRequest, model.ErrorBody(MsgInvalidBody))
		return nil, false
	}

	return &input, true
}

func queryParam(query url.Values, key string) *string {
	values, ok := query[key]
	if !ok || len(values) == 0 {
		return nil
	}
	value := values[0]
	return &value
}
