package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/foteam/sessionstore/internal/core/domain"
	"github.com/foteam/sessionstore/internal/core/service"
)

// Cart item keys inside the stored record.
const (
	itemKeyID    = "id"
	itemKeyPrice = "price"
)

// maxCartItems bounds the cart so one session cannot grow without limit.
const maxCartItems = 500

// loadCart converts the stored cart list. Entries that are not item maps
// are skipped.
func loadCart(s *service.Session) []CartItem {
	raw, _ := s.Get(domain.KeyCart, nil).([]any)
	items := make([]CartItem, 0, len(raw))
	for _, v := range raw {
		m, ok := v.(map[string]any)
		if !ok {
			continue
		}
		id, ok := domain.AsInt64(m[itemKeyID])
		if !ok {
			continue
		}
		price, _ := domain.AsInt64(m[itemKeyPrice])
		items = append(items, CartItem{PhotoID: id, Price: price})
	}
	return items
}

func storeCart(s *service.Session, items []CartItem) bool {
	raw := make([]any, 0, len(items))
	for _, it := range items {
		raw = append(raw, map[string]any{
			itemKeyID:    it.PhotoID,
			itemKeyPrice: it.Price,
		})
	}
	return s.Set(domain.KeyCart, raw)
}

func cartResponse(s *service.Session, items []CartItem) CartResponse {
	resp := CartResponse{
		Items:   items,
		Count:   len(items),
		Renewed: s.Renewed(),
	}
	for _, it := range items {
		resp.Total += it.Price
	}
	return resp
}

func (h *Handler) session(w http.ResponseWriter, r *http.Request) *service.Session {
	s := service.FromContext(r.Context())
	if s == nil {
		h.writeError(w, r, http.StatusInternalServerError, domain.ErrInternalServer.Code, "no session attached to request")
	}
	return s
}

// handleGetCart handles GET /cart.
func (h *Handler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	h.writeJSON(w, r, http.StatusOK, cartResponse(s, loadCart(s)))
}

// handleAddItem handles POST /cart/items. Adding a photo already in the
// cart is not an error; the response reports added=false.
func (h *Handler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	var req AddItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "invalid request body")
		return
	}
	if req.PhotoID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "photo_id must be positive")
		return
	}
	if req.Price < 0 {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "price must not be negative")
		return
	}

	items := loadCart(s)
	for _, it := range items {
		if it.PhotoID == req.PhotoID {
			h.writeJSON(w, r, http.StatusOK, AddItemResponse{Added: false, Cart: cartResponse(s, items)})
			return
		}
	}
	if len(items) >= maxCartItems {
		h.writeError(w, r, http.StatusConflict, domain.ErrCartFull.Code, domain.ErrCartFull.Message)
		return
	}

	items = append(items, CartItem{PhotoID: req.PhotoID, Price: req.Price})
	if !storeCart(s, items) {
		h.handleServiceError(w, r, domain.ErrSessionDestroyed)
		return
	}
	h.writeJSON(w, r, http.StatusCreated, AddItemResponse{Added: true, Cart: cartResponse(s, items)})
}

// handleRemoveItem handles DELETE /cart/items/{photo_id}.
func (h *Handler) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}

	photoID, err := strconv.ParseInt(r.PathValue("photo_id"), 10, 64)
	if err != nil || photoID <= 0 {
		h.writeError(w, r, http.StatusBadRequest, domain.ErrInvalidArgument.Code, "invalid photo_id")
		return
	}

	items := loadCart(s)
	kept := items[:0]
	for _, it := range items {
		if it.PhotoID != photoID {
			kept = append(kept, it)
		}
	}
	if len(kept) == len(items) {
		h.writeError(w, r, http.StatusNotFound, domain.ErrItemNotFound.Code, "photo not in cart")
		return
	}
	if !storeCart(s, kept) {
		h.handleServiceError(w, r, domain.ErrSessionDestroyed)
		return
	}
	h.writeJSON(w, r, http.StatusOK, cartResponse(s, kept))
}

// handleClearCart handles DELETE /cart.
func (h *Handler) handleClearCart(w http.ResponseWriter, r *http.Request) {
	s := h.session(w, r)
	if s == nil {
		return
	}
	if !storeCart(s, nil) {
		h.handleServiceError(w, r, domain.ErrSessionDestroyed)
		return
	}
	h.writeJSON(w, r, http.StatusOK, cartResponse(s, []CartItem{}))
}
