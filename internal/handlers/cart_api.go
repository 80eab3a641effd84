package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// SessionCookie identifies a visitor's cart
const SessionCookie = "cart_session"

// CartAPIHandler serves GET/POST /api/cart and DELETE /api/cart/{entryID}
type CartAPIHandler struct {
	store     *CartStore
	catalog   *Catalog
	totalSkew int64
	logger    zerolog.Logger
}

// NewCartAPIHandler creates a new cart API handler.
// totalSkew is added to every reported total to emulate a storefront with a broken total.
func NewCartAPIHandler(store *CartStore, catalog *Catalog, totalSkew int64, logger zerolog.Logger) *CartAPIHandler {
	return &CartAPIHandler{store: store, catalog: catalog, totalSkew: totalSkew, logger: logger}
}

// AddRequest is the body of POST /api/cart
type AddRequest struct {
	ProductID int `json:"productId"`
}

// CartResponse is the body returned for GET /api/cart
type CartResponse struct {
	Items []CartEntry `json:"items"`
	Total int64       `json:"total"`
}

// ErrorResponse represents an error response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// ServeHTTP dispatches on method and path
func (h *CartAPIHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	session := h.session(w, r)
	entryID := strings.Trim(strings.TrimPrefix(r.URL.Path, "/api/cart"), "/")

	switch {
	case r.Method == http.MethodGet && entryID == "":
		h.list(w, session)
	case r.Method == http.MethodPost && entryID == "":
		h.add(w, r, session)
	case r.Method == http.MethodDelete && entryID != "":
		h.remove(w, session, entryID)
	default:
		sendErrorResponse(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *CartAPIHandler) list(w http.ResponseWriter, session string) {
	entries := h.store.List(session)
	resp := CartResponse{Items: entries, Total: h.totalSkew}
	for _, e := range entries {
		resp.Total += e.Price
	}
	sendJSON(w, http.StatusOK, resp, h.logger)
}

func (h *CartAPIHandler) add(w http.ResponseWriter, r *http.Request, session string) {
	var req AddRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		sendErrorResponse(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	product, ok := h.catalog.Get(req.ProductID)
	if !ok {
		sendErrorResponse(w, "Unknown product", http.StatusNotFound)
		return
	}

	entry := h.store.Add(session, product)
	h.logger.Info().Str("session", session).Str("product", product.Name).Str("entry", entry.ID).Msg("product added to cart")
	sendJSON(w, http.StatusCreated, entry, h.logger)
}

func (h *CartAPIHandler) remove(w http.ResponseWriter, session, entryID string) {
	if !h.store.Remove(session, entryID) {
		sendErrorResponse(w, "Cart entry not found", http.StatusNotFound)
		return
	}
	h.logger.Info().Str("session", session).Str("entry", entryID).Msg("cart entry deleted")
	w.WriteHeader(http.StatusNoContent)
}

// session returns the visitor's cart session, issuing a cookie on first contact
func (h *CartAPIHandler) session(w http.ResponseWriter, r *http.Request) string {
	if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
		return c.Value
	}
	id := uuid.New().String()
	http.SetCookie(w, &http.Cookie{Name: SessionCookie, Value: id, Path: "/", HttpOnly: true, SameSite: http.SameSiteLaxMode})
	return id
}

func sendJSON(w http.ResponseWriter, status int, body any, logger zerolog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logger.Error().Err(err).Msg("failed to encode response")
	}
}

// sendErrorResponse sends a JSON error response
func sendErrorResponse(w http.ResponseWriter, message string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   http.StatusText(statusCode),
		Message: message,
	})
}
