// Package api exposes the cart engine over HTTP.
//
// Handlers are presentation glue: they translate requests into actions,
// dispatch them, and render the resulting state. All mutation flows through
// the dispatcher's single-writer loop; handlers never touch state directly.
// Display rounding to 2 decimals happens here and only here.
package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/roach88/cartwheel/internal/cart"
	"github.com/roach88/cartwheel/internal/coupon"
	"github.com/roach88/cartwheel/internal/engine"
	"github.com/roach88/cartwheel/internal/session"
)

// Server is the cart HTTP API server.
type Server struct {
	dispatcher *engine.Dispatcher
	coupons    *coupon.Applier
	merger     *session.Merger // nil for anonymous-only deployments
}

// NewServer creates an API server over the given dispatcher.
func NewServer(d *engine.Dispatcher, coupons *coupon.Applier) *Server {
	return &Server{dispatcher: d, coupons: coupons}
}

// SetMerger enables the session merge endpoint for authenticated deployments.
func (s *Server) SetMerger(m *session.Merger) { s.merger = m }

// Handler returns the chi router with all routes mounted.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", s.handleGetCart)
		r.Post("/reset", s.handleReset)
		r.Post("/items", s.handleAddItems)
		r.Delete("/items/{variantKey}", s.handleRemoveItem)
		r.Put("/items/{variantKey}/quantity", s.handleSetQuantity)
		r.Post("/coupon", s.handleApplyCoupon)
		r.Delete("/coupon", s.handleRemoveCoupon)
		r.Post("/merge", s.handleMerge)
	})

	return r
}

// cartView is the rendered cart: same shape as the state, with currency
// amounts rounded for display and the grand total precomputed.
type cartView struct {
	Items          []cart.LineItem `json:"items"`
	DeliveryCharge float64         `json:"deliveryCharge"`
	Total          float64         `json:"total"`
	GrandTotal     float64         `json:"grandTotal"`
	ActiveCoupon   string          `json:"activeCoupon,omitempty"`
}

func (s *Server) view(state cart.State) cartView {
	v := cartView{
		Items:          state.Items,
		DeliveryCharge: cart.Round2(state.DeliveryCharge),
		Total:          cart.Round2(state.Total),
		GrandTotal:     cart.Round2(state.Total + state.DeliveryCharge),
	}
	if s.coupons != nil {
		v.ActiveCoupon = s.coupons.Active()
	}
	return v
}

func (s *Server) handleGetCart(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.view(s.dispatcher.State()))
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	state, err := s.dispatcher.DispatchWait(r.Context(), cart.Reset{})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(state))
}

func (s *Server) handleAddItems(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Items []cart.LineItem `json:"items"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if len(body.Items) == 0 {
		writeError(w, http.StatusBadRequest, errors.New("items required"))
		return
	}

	state, err := s.dispatcher.DispatchWait(r.Context(), cart.AddItems{Items: body.Items})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(state))
}

func (s *Server) handleRemoveItem(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "variantKey")

	state, err := s.dispatcher.DispatchWait(r.Context(), cart.RemoveItem{VariantKey: key})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(state))
}

func (s *Server) handleSetQuantity(w http.ResponseWriter, r *http.Request) {
	key := chi.URLParam(r, "variantKey")

	var body struct {
		Quantity int `json:"quantity"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	// Quantity below 1 is a no-op in the reducer; reject it loudly here so
	// a buggy client learns instead of silently keeping the old quantity.
	if body.Quantity < 1 {
		writeError(w, http.StatusUnprocessableEntity, errors.New("quantity must be at least 1; use DELETE to remove"))
		return
	}

	state, err := s.dispatcher.DispatchWait(r.Context(), cart.SetItemQuantity{
		VariantKey: key,
		Quantity:   body.Quantity,
	})
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(state))
}

func (s *Server) handleApplyCoupon(w http.ResponseWriter, r *http.Request) {
	if s.coupons == nil {
		writeError(w, http.StatusNotFound, errors.New("coupons not enabled"))
		return
	}

	var body struct {
		Code string `json:"code"`
	}
	if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}

	if _, err := s.coupons.Apply(r.Context(), body.Code); err != nil {
		if errors.Is(err, coupon.ErrNoSuchCoupon) {
			writeError(w, http.StatusUnprocessableEntity, err)
			return
		}
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(s.dispatcher.State()))
}

func (s *Server) handleRemoveCoupon(w http.ResponseWriter, r *http.Request) {
	if s.coupons == nil {
		writeError(w, http.StatusNotFound, errors.New("coupons not enabled"))
		return
	}
	if err := s.coupons.Remove(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(s.dispatcher.State()))
}

func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	if s.merger == nil {
		writeError(w, http.StatusNotFound, errors.New("session merge not enabled"))
		return
	}

	state, err := s.merger.Merge(r.Context())
	if err != nil {
		if errors.Is(err, session.ErrAlreadyMerged) {
			writeError(w, http.StatusConflict, err)
			return
		}
		// Merge failure is user-visible and retryable; the local cart is
		// untouched.
		writeError(w, http.StatusBadGateway, err)
		return
	}
	writeJSON(w, http.StatusOK, s.view(state))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, err error) {
	writeJSON(w, status, map[string]string{"error": err.Error()})
}
