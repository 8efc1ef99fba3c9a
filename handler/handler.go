// Package handler provides the HTTP handlers for the shop API.
package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/aquinn/shop-api/kv"
	"github.com/aquinn/shop-api/model"
	"github.com/aquinn/shop-api/query"
	"github.com/aquinn/shop-api/store"
)

// Handler holds the server dependencies and registers routes.
type Handler struct {
	users    *store.Users
	products *store.Products
	kv       kv.Store
	mux      *http.ServeMux
}

// New creates a Handler over the given backing store and wires up all
// routes.
func New(s kv.Store) *Handler {
	h := &Handler{
		users:    store.NewUsers(s),
		products: store.NewProducts(s),
		kv:       s,
		mux:      http.NewServeMux(),
	}
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.mux.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.mux.HandleFunc("GET /api/health", h.health)

	// --- Users ---
	h.mux.HandleFunc("GET /api/users", h.listUsers)
	h.mux.HandleFunc("GET /api/users/{id}", h.getUser)
	h.mux.HandleFunc("POST /api/users", h.createUser)
	h.mux.HandleFunc("PUT /api/users/{id}", h.updateUser)
	h.mux.HandleFunc("DELETE /api/users/{id}", h.deleteUser)

	// --- Products ---
	h.mux.HandleFunc("GET /api/products", h.listProducts)
	h.mux.HandleFunc("GET /api/products/categories", h.listCategories)
	h.mux.HandleFunc("GET /api/products/{id}", h.getProduct)
	h.mux.HandleFunc("POST /api/products", h.createProduct)
	h.mux.HandleFunc("PUT /api/products/{id}", h.updateProduct)
	h.mux.HandleFunc("DELETE /api/products/{id}", h.deleteProduct)

	// Seed / status endpoint dispatches on method itself.
	h.mux.HandleFunc("/api/init", h.initData)

	// Method-less fallbacks so an unsupported verb on a known path
	// gets a 405 instead of falling through to the 404 handler. The
	// {id} fallback also covers /api/products/categories, so an
	// unsupported verb there answers 405 like every other known path.
	h.mux.HandleFunc("/api/users", h.methodNotAllowed)
	h.mux.HandleFunc("/api/users/{id}", h.methodNotAllowed)
	h.mux.HandleFunc("/api/products", h.methodNotAllowed)
	h.mux.HandleFunc("/api/products/{id}", h.methodNotAllowed)

	h.mux.HandleFunc("/", h.notFound)
}

// ---------- helpers ----------

type envelope map[string]any

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeData(w http.ResponseWriter, status int, data any) {
	writeJSON(w, status, envelope{"success": true, "data": data})
}

func writeMessage(w http.ResponseWriter, status int, msg string, data any) {
	writeJSON(w, status, envelope{"success": true, "message": msg, "data": data})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, envelope{"success": false, "error": msg})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// storeError maps adapter errors onto the response taxonomy. notFound
// names the entity so 404 bodies read naturally.
func storeError(w http.ResponseWriter, err error, notFound string) {
	var verr *model.ValidationError
	switch {
	case errors.As(err, &verr):
		writeError(w, http.StatusBadRequest, verr.Error())
	case errors.Is(err, store.ErrConflict):
		writeError(w, http.StatusBadRequest, "email already registered")
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusNotFound, notFound)
	default:
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

// idParam parses the {id} path segment. A non-numeric id can't name
// any record, so callers treat the error as not-found.
func idParam(r *http.Request) (int, error) {
	return strconv.Atoi(r.PathValue("id"))
}

// ---------- status endpoints ----------

func (h *Handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": model.Now(),
	})
}

func (h *Handler) notFound(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusNotFound, map[string]string{
		"error": "not found",
		"path":  r.URL.Path,
	})
}

func (h *Handler) methodNotAllowed(w http.ResponseWriter, _ *http.Request) {
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// ---------- users ----------

func (h *Handler) listUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.users.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	page := query.Paginate(users, query.ParseParams(r.URL.Query()))
	writeData(w, http.StatusOK, listBody("users", page))
}

func (h *Handler) getUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	user, err := h.users.Get(r.Context(), id)
	if err != nil {
		storeError(w, err, "user not found")
		return
	}
	writeData(w, http.StatusOK, user)
}

func (h *Handler) createUser(w http.ResponseWriter, r *http.Request) {
	var in model.NewUser
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	user, err := h.users.Create(r.Context(), in)
	if err != nil {
		storeError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusCreated, "user created", user)
}

func (h *Handler) updateUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	var patch model.UserUpdate
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	user, err := h.users.Update(r.Context(), id, patch)
	if err != nil {
		storeError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusOK, "user updated", user)
}

func (h *Handler) deleteUser(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "user not found")
		return
	}
	user, err := h.users.Delete(r.Context(), id)
	if err != nil {
		storeError(w, err, "user not found")
		return
	}
	writeMessage(w, http.StatusOK, "user deleted", user)
}

// ---------- products ----------

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.products.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	filtered := query.ParseProductFilter(r.URL.Query()).Apply(products)
	page := query.Paginate(filtered, query.ParseParams(r.URL.Query()))
	writeData(w, http.StatusOK, listBody("products", page))
}

func (h *Handler) listCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.products.Categories(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeData(w, http.StatusOK, categories)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	product, err := h.products.Get(r.Context(), id)
	if err != nil {
		storeError(w, err, "product not found")
		return
	}
	writeData(w, http.StatusOK, product)
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var in model.NewProduct
	if err := readJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	product, err := h.products.Create(r.Context(), in)
	if err != nil {
		storeError(w, err, "product not found")
		return
	}
	writeMessage(w, http.StatusCreated, "product created", product)
}

func (h *Handler) updateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	var patch model.ProductUpdate
	if err := readJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	product, err := h.products.Update(r.Context(), id, patch)
	if err != nil {
		storeError(w, err, "product not found")
		return
	}
	writeMessage(w, http.StatusOK, "product updated", product)
}

func (h *Handler) deleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := idParam(r)
	if err != nil {
		writeError(w, http.StatusNotFound, "product not found")
		return
	}
	product, err := h.products.Delete(r.Context(), id)
	if err != nil {
		storeError(w, err, "product not found")
		return
	}
	writeMessage(w, http.StatusOK, "product deleted", product)
}

// ---------- seed / status ----------

func (h *Handler) initData(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		users, products, err := store.Status(r.Context(), h.kv)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeData(w, http.StatusOK, envelope{
			"users":    users,
			"products": products,
			"hasData":  users > 0 || products > 0,
		})
	case http.MethodPost:
		users, products, err := store.Seed(r.Context(), h.kv)
		if err != nil {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		writeMessage(w, http.StatusOK, "database seeded", envelope{
			"users":    users,
			"products": products,
		})
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// listBody builds the list envelope, naming the items field after the
// entity as the deployed API always has.
func listBody[T any](itemsField string, page query.Page[T]) envelope {
	body := envelope{
		itemsField:    page.Items,
		"total":       page.Total,
		"currentPage": page.CurrentPage,
		"totalPages":  page.TotalPages,
	}
	if page.Next != nil {
		body["next"] = page.Next
	}
	if page.Previous != nil {
		body["previous"] = page.Previous
	}
	return body
}
