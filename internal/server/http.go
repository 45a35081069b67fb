package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"example/storefront/internal/logger"
	"example/storefront/internal/models"
	"example/storefront/internal/service"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
)

// Shop is the set of operations the transport layer exposes.
// *service.Shop implements it.
type Shop interface {
	Ping(ctx context.Context) error

	ListProducts(ctx context.Context) ([]models.Product, error)
	GetProduct(ctx context.Context, id uuid.UUID) (models.Product, error)
	CreateProduct(ctx context.Context, in service.NewProduct) (models.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, changes service.ProductChanges) (models.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error

	ListCustomers(ctx context.Context) ([]models.Customer, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (models.Customer, error)
	CreateCustomer(ctx context.Context, in service.NewCustomer) (models.Customer, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, changes service.CustomerChanges) (models.Customer, error)
	DeleteCustomer(ctx context.Context, id uuid.UUID) error
	GetBalance(ctx context.Context, email string) (models.Balance, error)

	ListPurchases(ctx context.Context) ([]models.PurchaseDetail, error)
	GetPurchase(ctx context.Context, id uuid.UUID) (models.PurchaseDetail, error)
	CustomerPurchases(ctx context.Context, email string) ([]models.PurchaseDetail, error)
	AttemptPurchase(ctx context.Context, req service.PurchaseRequest) (service.PurchaseResult, error)
	UpdatePurchase(ctx context.Context, id uuid.UUID, changes service.PurchaseChanges) (service.PurchaseResult, error)
	DeletePurchase(ctx context.Context, id uuid.UUID) error

	SalesReport(ctx context.Context) (models.SalesReport, error)
	PurchaseReport(ctx context.Context) (models.PurchaseReport, error)
}

// Options tune the router
type Options struct {
	// CORSOrigin is the single origin allowed to call the API from a browser
	CORSOrigin string
	// Verbose exposes internal error messages to clients
	Verbose bool
}

// Handler serves the REST and WebSocket transports of a Shop
type Handler struct {
	shop    Shop
	verbose bool
}

// Router builds the full HTTP handler
func Router(shop Shop, opts Options) http.Handler {
	h := &Handler{shop: shop, verbose: opts.Verbose}

	r := mux.NewRouter()
	r.HandleFunc("/", h.banner).Methods(http.MethodGet)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	r.HandleFunc("/ws", h.HandleWebSocket)
	mountDocs(r)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/products", h.listProducts).Methods(http.MethodGet)
	api.HandleFunc("/products", h.createProduct).Methods(http.MethodPost)
	api.HandleFunc("/products/{id}", h.getProduct).Methods(http.MethodGet)
	api.HandleFunc("/products/{id}", h.updateProduct).Methods(http.MethodPut)
	api.HandleFunc("/products/{id}", h.deleteProduct).Methods(http.MethodDelete)

	api.HandleFunc("/customers", h.listCustomers).Methods(http.MethodGet)
	api.HandleFunc("/customers", h.createCustomer).Methods(http.MethodPost)
	api.HandleFunc("/customers/{email}/balance", h.getBalance).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.getCustomer).Methods(http.MethodGet)
	api.HandleFunc("/customers/{id}", h.updateCustomer).Methods(http.MethodPut)
	api.HandleFunc("/customers/{id}", h.deleteCustomer).Methods(http.MethodDelete)

	// Fixed paths go before /purchases/{id} so they are not read as ids.
	api.HandleFunc("/purchases", h.listPurchases).Methods(http.MethodGet)
	api.HandleFunc("/purchases", h.createPurchase).Methods(http.MethodPost)
	api.HandleFunc("/purchases/report", h.salesReport).Methods(http.MethodGet)
	api.HandleFunc("/purchases/sales-report", h.salesReport).Methods(http.MethodGet)
	api.HandleFunc("/purchases/daily-report", h.purchaseReport).Methods(http.MethodGet)
	api.HandleFunc("/purchases/customer/{customerId}", h.customerPurchases).Methods(http.MethodGet)
	api.HandleFunc("/purchases/{id}", h.getPurchase).Methods(http.MethodGet)
	api.HandleFunc("/purchases/{id}", h.updatePurchase).Methods(http.MethodPut)
	api.HandleFunc("/purchases/{id}", h.deletePurchase).Methods(http.MethodDelete)

	return logMiddleware(corsMiddleware(opts.CORSOrigin)(r))
}

func (h *Handler) banner(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "Storefront API Server\nREST under /api, WebSocket actions on /ws, docs at /api-docs\n")
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.shop.Ping(ctx); err != nil {
		logger.Log.Warnw("Health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// pathID parses the named route variable as a UUID. A malformed id cannot
// name an existing row, so it is reported as not found.
func pathID(r *http.Request, name, entity string) (uuid.UUID, error) {
	raw := mux.Vars(r)[name]
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, models.NotFound(entity, raw)
	}
	return id, nil
}
