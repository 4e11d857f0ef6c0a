package httpx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/domain/entity"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/core/ports"
	"github.com/jcmexdev/storefront-gateway/internal/api-gateway/infra/httpx/middlewares"
)

const (
	DefaultPlaceholderImage = "https://via.placeholder.com/150"
	maxRequestBody          = 1 << 20
)

// Handler serves the storefront API: catalog passthrough, carts and orders.
type Handler struct {
	catalog          ports.Catalog
	carts            ports.CartService
	orders           ports.OrderService
	placeholderImage string
	timeout          time.Duration
	now              func() time.Time
}

type HandlerOptions struct {
	PlaceholderImageURL string
	// RequestTimeout bounds the work done per request. Zero means no limit
	// beyond the client connection.
	RequestTimeout time.Duration
}

func NewHandler(catalog ports.Catalog, carts ports.CartService, orders ports.OrderService, opts HandlerOptions) *Handler {
	placeholder := opts.PlaceholderImageURL
	if placeholder == "" {
		placeholder = DefaultPlaceholderImage
	}
	return &Handler{
		catalog:          catalog,
		carts:            carts,
		orders:           orders,
		placeholderImage: placeholder,
		timeout:          opts.RequestTimeout,
		now:              time.Now,
	}
}

func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "OK", Timestamp: h.timestamp()})
}

// Test returns a fixed payload so site builders can check connectivity
// without touching the product API.
func (h *Handler) Test(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, Envelope{
		Success: true,
		Message: "API is working",
		Data: map[string]any{
			"test_product": ProductResponse{
				Name:  "Test Product",
				Price: 99.99,
				Image: h.placeholderImage,
			},
		},
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) ListProducts(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			h.fail(w, r, fmt.Errorf("%w: limit must be a positive integer", entity.ErrValidation), "Failed to fetch products")
			return
		}
		limit = n
	}

	ctx, cancel := h.context(r)
	defer cancel()

	items, err := h.catalog.FetchItems(ctx, limit)
	if err != nil {
		h.fail(w, r, err, "Failed to fetch products")
		return
	}

	products := make([]ProductResponse, len(items))
	for i, it := range items {
		products[i] = mapProduct(it, h.placeholderImage)
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Data:      ProductsResponse{Products: products},
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) GetItem(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	item, err := h.catalog.FetchItem(ctx, chi.URLParam(r, "id"))
	if err != nil {
		h.fail(w, r, err, "Failed to fetch item")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Data:      mapProduct(*item, h.placeholderImage),
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) CreateCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	cart, err := h.carts.CreateCart(ctx)
	if err != nil {
		h.fail(w, r, err, "Failed to create cart")
		return
	}
	writeJSON(w, http.StatusCreated, Envelope{
		Success:   true,
		CartID:    cart.ID,
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) AddCartItem(w http.ResponseWriter, r *http.Request) {
	var req AddItemRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "Failed to add item to cart")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	cart, err := h.carts.AddItem(ctx, chi.URLParam(r, "cartId"), string(req.ItemID), req.Quantity)
	if err != nil {
		h.fail(w, r, err, "Failed to add item to cart")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Cart:      mapCart(cart),
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) GetCart(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := h.context(r)
	defer cancel()

	cart, err := h.carts.GetCart(ctx, chi.URLParam(r, "cartId"))
	if err != nil {
		h.fail(w, r, err, "Failed to get cart")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Cart:      mapCart(cart),
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) CreateOrder(w http.ResponseWriter, r *http.Request) {
	var req CreateOrderRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "Failed to create order")
		return
	}

	ctx, cancel := h.context(r)
	defer cancel()

	order, err := h.orders.CreateOrder(ctx, req.CartID, req.ShippingDetails)
	if err != nil {
		h.fail(w, r, err, "Failed to create order")
		return
	}

	writeJSON(w, http.StatusCreated, Envelope{
		Success:   true,
		Order:     mapOrder(order),
		Timestamp: h.timestamp(),
	})
}

// Checkout acknowledges an order submitted as a plain item list, for
// storefronts that keep the cart client side.
func (h *Handler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req CheckoutRequest
	if err := decodeJSON(w, r, &req); err != nil {
		h.fail(w, r, err, "Failed to process checkout")
		return
	}

	items := make([]entity.CheckoutItem, len(req.Items))
	for i, it := range req.Items {
		id := it.ID
		if id == "" {
			id = it.ItemID
		}
		items[i] = entity.CheckoutItem{
			ItemID:   string(id),
			Name:     it.Name,
			Price:    it.Price,
			Quantity: it.Quantity,
		}
	}

	ctx, cancel := h.context(r)
	defer cancel()

	ack, err := h.orders.Checkout(ctx, items, req.CustomerInfo)
	if err != nil {
		h.fail(w, r, err, "Failed to process checkout")
		return
	}
	writeJSON(w, http.StatusOK, Envelope{
		Success:   true,
		Message:   "Order received",
		Data:      mapCheckoutAck(ack),
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) context(r *http.Request) (context.Context, context.CancelFunc) {
	if h.timeout <= 0 {
		return context.WithCancel(r.Context())
	}
	return context.WithTimeout(r.Context(), h.timeout)
}

func (h *Handler) timestamp() string {
	return formatTime(h.now())
}

// fail maps err onto the status table and writes the error envelope:
// validation 400, not found 404, everything else 500.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error, message string) {
	status := http.StatusInternalServerError
	var details any

	var upErr *entity.UpstreamError
	switch {
	case errors.Is(err, entity.ErrValidation):
		status = http.StatusBadRequest
		details = err.Error()
	case errors.Is(err, entity.ErrNotFound):
		status = http.StatusNotFound
		details = err.Error()
	case errors.As(err, &upErr):
		details = upErr.Details()
	default:
		details = err.Error()
	}

	attrs := []any{
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"request_id", middlewares.RequestID(r.Context()),
		"error", err,
	}
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		attrs = append(attrs, "route", rctx.RoutePattern())
	}
	if status >= http.StatusInternalServerError {
		slog.ErrorContext(r.Context(), message, attrs...)
	} else {
		slog.WarnContext(r.Context(), message, attrs...)
	}

	writeJSON(w, status, Envelope{
		Success:   false,
		Error:     message,
		Details:   details,
		Timestamp: h.timestamp(),
	})
}

// decodeJSON reads a bounded JSON body. Syntax errors and an empty body are
// reported as validation failures.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxRequestBody)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("%w: request body is required", entity.ErrValidation)
		}
		return fmt.Errorf("%w: invalid JSON body: %v", entity.ErrValidation, err)
	}
	return nil
}

// NotFound and MethodNotAllowed keep unrouted requests on the envelope.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, Envelope{
		Success:   false,
		Error:     "Route not found",
		Details:   r.Method + " " + r.URL.Path,
		Timestamp: h.timestamp(),
	})
}

func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusMethodNotAllowed, Envelope{
		Success:   false,
		Error:     "Method not allowed",
		Details:   r.Method + " " + r.URL.Path,
		Timestamp: h.timestamp(),
	})
}

// writeJSON encodes before writing the status line so an unencodable value
// becomes a 500 envelope instead of a committed status with an empty body.
func writeJSON(w http.ResponseWriter, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		slog.Error("encode response", "error", err)
		status = http.StatusInternalServerError
		body, _ = json.Marshal(Envelope{
			Success:   false,
			Error:     "Failed to encode response",
			Timestamp: formatTime(time.Now()),
		})
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(body, '\n'))
}
