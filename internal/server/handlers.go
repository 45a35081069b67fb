package server

import (
	"net/http"

	"example/storefront/internal/logger"
	"example/storefront/internal/service"

	"github.com/gorilla/mux"
)

// Products

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.shop.ListProducts(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.shop.GetProduct(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in service.NewProduct
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.shop.CreateProduct(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var changes service.ProductChanges
	if err := decodeBody(r, &changes); err != nil {
		h.writeError(w, r, err)
		return
	}
	product, err := h.shop.UpdateProduct(r.Context(), id, changes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "product")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.shop.DeleteProduct(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Customers

func (h *Handler) listCustomers(w http.ResponseWriter, r *http.Request) {
	customers, err := h.shop.ListCustomers(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customers)
}

func (h *Handler) getCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "customer")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	customer, err := h.shop.GetCustomer(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) createCustomer(w http.ResponseWriter, r *http.Request) {
	var in service.NewCustomer
	if err := decodeBody(r, &in); err != nil {
		h.writeError(w, r, err)
		return
	}
	customer, err := h.shop.CreateCustomer(r.Context(), in)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, customer)
}

func (h *Handler) updateCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "customer")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var changes service.CustomerChanges
	if err := decodeBody(r, &changes); err != nil {
		h.writeError(w, r, err)
		return
	}
	customer, err := h.shop.UpdateCustomer(r.Context(), id, changes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, customer)
}

func (h *Handler) deleteCustomer(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "customer")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.shop.DeleteCustomer(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) getBalance(w http.ResponseWriter, r *http.Request) {
	email := mux.Vars(r)["email"]
	logger.Log.Debugw("Balance lookup", "email", email)

	balance, err := h.shop.GetBalance(r.Context(), email)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, balance)
}

// Purchases

func (h *Handler) listPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.shop.ListPurchases(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

func (h *Handler) getPurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "purchase")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	purchase, err := h.shop.GetPurchase(r.Context(), id)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchase)
}

func (h *Handler) createPurchase(w http.ResponseWriter, r *http.Request) {
	var req service.PurchaseRequest
	if err := decodeBody(r, &req); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.shop.AttemptPurchase(r.Context(), req)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, result)
}

func (h *Handler) updatePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "purchase")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	var changes service.PurchaseChanges
	if err := decodeBody(r, &changes); err != nil {
		h.writeError(w, r, err)
		return
	}
	result, err := h.shop.UpdatePurchase(r.Context(), id, changes)
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}

func (h *Handler) deletePurchase(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id", "purchase")
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	if err := h.shop.DeletePurchase(r.Context(), id); err != nil {
		h.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *Handler) customerPurchases(w http.ResponseWriter, r *http.Request) {
	purchases, err := h.shop.CustomerPurchases(r.Context(), mux.Vars(r)["customerId"])
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, purchases)
}

// Reports

func (h *Handler) salesReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.shop.SalesReport(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

func (h *Handler) purchaseReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.shop.PurchaseReport(r.Context())
	if err != nil {
		h.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, report)
}
