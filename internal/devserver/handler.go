package devserver

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"
	"github.com/zelena-gryadka/gryadka/internal/catalog"
)

const (
	maxLimit     = 200
	defaultLimit = catalog.DefaultPageSize
)

// Handler exposes the catalog endpoints.
type Handler struct {
	store *Store
}

func NewHandler(store *Store) *Handler { return &Handler{store: store} }

// RegisterRoutes mounts the listing at basePath, facets at basePath/filters
// and product detail at basePath/{slug}.
func (h *Handler) RegisterRoutes(r chi.Router, basePath string) {
	basePath = "/" + strings.Trim(basePath, "/")

	r.Get(basePath, h.listProducts)
	r.Get(basePath+"/", h.listProducts)
	r.Get(basePath+"/filters", h.filters)
	r.Get(basePath+"/{slug}", h.product)
}

// fieldError mirrors the validation error entries of the production API.
type fieldError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

type detail struct {
	Detail any `json:"detail"`
}

// productJSON renders the price as a JSON number without losing precision.
type productJSON struct {
	ID          int64       `json:"id"`
	Name        string      `json:"name"`
	Slug        string      `json:"slug"`
	Description string      `json:"description"`
	Supplier    *string     `json:"supplier"`
	Category    *string     `json:"category"`
	Price       json.Number `json:"price"`
	ImageURL    *string     `json:"image_url"`
}

func toJSON(p catalog.ProductSummary) productJSON {
	return productJSON{
		ID:          p.ID,
		Name:        p.Name,
		Slug:        p.Slug,
		Description: p.Description,
		Supplier:    optional(p.Supplier),
		Category:    optional(p.Category),
		Price:       json.Number(p.Price.String()),
		ImageURL:    optional(p.ImageURL),
	}
}

func optional(s string) *string {
	if s == "" {
		return nil
	}

	return &s
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	filter, errs := parseFilter(r)
	if len(errs) > 0 {
		respond(w, http.StatusUnprocessableEntity, detail{Detail: errs})

		return
	}

	page := h.store.Search(filter)

	out := make([]productJSON, 0, len(page))
	for _, p := range page {
		out = append(out, toJSON(p))
	}

	respond(w, http.StatusOK, out)
}

func (h *Handler) filters(w http.ResponseWriter, _ *http.Request) {
	respond(w, http.StatusOK, h.store.Facets())
}

func (h *Handler) product(w http.ResponseWriter, r *http.Request) {
	p, ok := h.store.Product(chi.URLParam(r, "slug"))
	if !ok {
		respond(w, http.StatusNotFound, detail{Detail: "Product not found"})

		return
	}

	respond(w, http.StatusOK, toJSON(p))
}

func parseFilter(r *http.Request) (Filter, []fieldError) {
	q := r.URL.Query()

	f := Filter{
		Text:     q.Get("q"),
		Category: q.Get("category"),
		Supplier: q.Get("supplier"),
		Sort:     catalog.SortKey(q.Get("sort")),
		Limit:    defaultLimit,
	}

	var errs []fieldError

	if raw := q.Get("skip"); raw != "" {
		n, err := strconv.Atoi(raw)

		switch {
		case err != nil:
			errs = append(errs, fieldError{Loc: []string{"query", "skip"}, Msg: "Input should be a valid integer", Type: "int_parsing"})
		case n < 0:
			errs = append(errs, fieldError{Loc: []string{"query", "skip"}, Msg: "Input should be greater than or equal to 0", Type: "greater_than_equal"})
		default:
			f.Skip = n
		}
	}

	if raw := q.Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)

		switch {
		case err != nil:
			errs = append(errs, fieldError{Loc: []string{"query", "limit"}, Msg: "Input should be a valid integer", Type: "int_parsing"})
		case n < 1:
			errs = append(errs, fieldError{Loc: []string{"query", "limit"}, Msg: "Input should be greater than or equal to 1", Type: "greater_than_equal"})
		case n > maxLimit:
			errs = append(errs, fieldError{Loc: []string{"query", "limit"}, Msg: "Input should be less than or equal to 200", Type: "less_than_equal"})
		default:
			f.Limit = n
		}
	}

	for _, bound := range []struct {
		name string
		dst  **decimal.Decimal
	}{
		{"min_price", &f.MinPrice},
		{"max_price", &f.MaxPrice},
	} {
		raw := strings.TrimSpace(q.Get(bound.name))
		if raw == "" {
			continue
		}

		d, err := decimal.NewFromString(raw)
		if err != nil {
			errs = append(errs, fieldError{Loc: []string{"query", bound.name}, Msg: "Input should be a valid number, unable to parse string as a number", Type: "float_parsing"})

			continue
		}

		*bound.dst = &d
	}

	return f, errs
}

func respond(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
