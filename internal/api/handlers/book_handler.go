package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/isdelr/bookshelf-be/internal/httputil"
	"github.com/isdelr/bookshelf-be/internal/services"
	"github.com/rs/zerolog/log"
)

// BookHandler handles HTTP requests related to books. Every request is
// scoped to the authenticated user.
type BookHandler struct {
	service services.BookServiceProvider
	events  services.EventServiceProvider
}

// NewBookHandler creates a new BookHandler.
func NewBookHandler(service services.BookServiceProvider, events services.EventServiceProvider) *BookHandler {
	return &BookHandler{service: service, events: events}
}

// BookPayload is the body of create and update requests.
type BookPayload struct {
	Title  string `json:"title"`
	Author string `json:"author"`
}

// Validate checks the payload after surrounding whitespace is removed.
func (p BookPayload) Validate() error {
	return validation.ValidateStruct(&p,
		validation.Field(&p.Title, validation.Required, validation.Length(1, 255)),
		validation.Field(&p.Author, validation.Required, validation.Length(1, 255)),
	)
}

func decodeBook(w http.ResponseWriter, r *http.Request) (BookPayload, bool) {
	var payload BookPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		httputil.Error(w, http.StatusBadRequest, "Invalid request body")
		return payload, false
	}
	payload.Title = strings.TrimSpace(payload.Title)
	payload.Author = strings.TrimSpace(payload.Author)
	if err := payload.Validate(); err != nil {
		httputil.Error(w, http.StatusUnprocessableEntity, err.Error())
		return payload, false
	}
	return payload, true
}

// bookID parses the {id} path parameter; a malformed id is treated as absent.
func bookID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httputil.Error(w, http.StatusNotFound, "Book not found")
		return 0, false
	}
	return id, true
}

func (h *BookHandler) fail(w http.ResponseWriter, err error, msg string, id int64) {
	if errors.Is(err, services.ErrNotFound) {
		httputil.Error(w, http.StatusNotFound, "Book not found")
		return
	}
	log.Error().Err(err).Int64("book_id", id).Msg(msg)
	httputil.Error(w, http.StatusInternalServerError, "Internal server error")
}

// GetAll handles the request to list the user's books.
func (h *BookHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	books, err := h.service.GetBooksByOwner(r.Context(), user.ID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to retrieve books")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	httputil.JSON(w, http.StatusOK, books)
}

// Get handles the request to get a single book by its ID.
func (h *BookHandler) Get(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	book, err := h.service.GetBook(r.Context(), user.ID, id)
	if err != nil {
		h.fail(w, err, "Failed to get book", id)
		return
	}
	httputil.JSON(w, http.StatusOK, book)
}

// Create handles the request to create a new book owned by the caller.
func (h *BookHandler) Create(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	payload, ok := decodeBook(w, r)
	if !ok {
		return
	}
	book, err := h.service.CreateBook(r.Context(), user.ID, payload.Title, payload.Author)
	if err != nil {
		log.Error().Err(err).Int64("user_id", user.ID).Msg("Failed to create book")
		httputil.Error(w, http.StatusInternalServerError, "Internal server error")
		return
	}
	recordEvent(r.Context(), h.events, "book.create", "info", fmt.Sprintf("Added %q", book.Title), user.ID)
	httputil.JSON(w, http.StatusOK, book)
}

// Update handles the request to update an existing book.
func (h *BookHandler) Update(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	payload, ok := decodeBook(w, r)
	if !ok {
		return
	}
	book, err := h.service.UpdateBook(r.Context(), user.ID, id, payload.Title, payload.Author)
	if err != nil {
		h.fail(w, err, "Failed to update book", id)
		return
	}
	recordEvent(r.Context(), h.events, "book.update", "info", fmt.Sprintf("Updated %q", book.Title), user.ID)
	httputil.JSON(w, http.StatusOK, book)
}

// Delete handles the request to delete a book.
func (h *BookHandler) Delete(w http.ResponseWriter, r *http.Request) {
	user, ok := currentUser(w, r)
	if !ok {
		return
	}
	id, ok := bookID(w, r)
	if !ok {
		return
	}
	if err := h.service.DeleteBook(r.Context(), user.ID, id); err != nil {
		h.fail(w, err, "Failed to delete book", id)
		return
	}
	recordEvent(r.Context(), h.events, "book.delete", "info", fmt.Sprintf("Deleted book %d", id), user.ID)
	httputil.JSON(w, http.StatusOK, map[string]bool{"ok": true})
}
