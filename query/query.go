// Package query implements filtering and pagination over entity
// collections. Everything here is a pure function of its inputs; the
// source slice is never modified.
package query

import (
	"math"
	"net/url"
	"strconv"
	"strings"

	"github.com/aquinn/shop-api/model"
)

const (
	DefaultPage  = 1
	DefaultLimit = 10
)

// Params are the pagination inputs shared by every list endpoint.
type Params struct {
	Page  int
	Limit int
}

// ParseParams reads page and limit from a query string. Missing,
// malformed or non-positive values fall back to the defaults rather
// than erroring.
func ParseParams(q url.Values) Params {
	return Params{
		Page:  intOrDefault(q.Get("page"), DefaultPage),
		Limit: intOrDefault(q.Get("limit"), DefaultLimit),
	}
}

func intOrDefault(s string, def int) int {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return def
	}
	return n
}

// Cursor points at an adjacent page in a paginated listing.
type Cursor struct {
	Page  int `json:"page"`
	Limit int `json:"limit"`
}

// Page is one page of a collection plus the bookkeeping a client needs
// to walk the rest. Next and Previous are nil at the respective ends.
type Page[T any] struct {
	Items       []T
	Total       int
	CurrentPage int
	TotalPages  int
	Next        *Cursor
	Previous    *Cursor
}

// Paginate slices items for p. Out-of-range pages yield an empty Items
// slice, never an error.
func Paginate[T any](items []T, p Params) Page[T] {
	total := len(items)
	res := Page[T]{
		Items:       []T{},
		Total:       total,
		CurrentPage: p.Page,
	}
	if total > 0 {
		res.TotalPages = (total-1)/p.Limit + 1
	}
	// Pages past the last one stay empty. Checking against TotalPages
	// first also bounds the index arithmetic below, which would
	// otherwise wrap negative for syntactically valid but absurd page
	// or limit values and panic on the slice.
	if p.Page <= res.TotalPages {
		start := (p.Page - 1) * p.Limit
		end := start + p.Limit
		if end > total {
			end = total
		}
		res.Items = append(res.Items, items[start:end]...)
		if end < total {
			res.Next = &Cursor{Page: p.Page + 1, Limit: p.Limit}
		}
	}
	if p.Page > 1 {
		res.Previous = &Cursor{Page: p.Page - 1, Limit: p.Limit}
	}
	return res
}

// ProductFilter is the optional narrowing applied to product listings.
// Zero-valued fields are no-ops, so the empty filter passes everything
// through.
type ProductFilter struct {
	Category string
	MinPrice *float64
	MaxPrice *float64
	Search   string
}

// ParseProductFilter reads the product list filters from a query
// string. Unparsable price bounds are dropped, matching the rule that
// bad list inputs degrade rather than fail. NaN and infinite bounds
// count as unparsable; ParseFloat accepts them but they make nonsense
// of the comparisons.
func ParseProductFilter(q url.Values) ProductFilter {
	f := ProductFilter{
		Category: q.Get("category"),
		Search:   q.Get("search"),
	}
	if v, ok := parseBound(q.Get("minPrice")); ok {
		f.MinPrice = &v
	}
	if v, ok := parseBound(q.Get("maxPrice")); ok {
		f.MaxPrice = &v
	}
	return f
}

func parseBound(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// Apply filters products in order: category, minPrice, maxPrice,
// search. Filters AND together. Category and search are
// case-insensitive substring matches; search looks at name and
// description. Price bounds are inclusive.
func (f ProductFilter) Apply(products []model.Product) []model.Product {
	out := make([]model.Product, 0, len(products))
	for _, p := range products {
		if f.Category != "" && !containsFold(p.Category, f.Category) {
			continue
		}
		if f.MinPrice != nil && p.Price < *f.MinPrice {
			continue
		}
		if f.MaxPrice != nil && p.Price > *f.MaxPrice {
			continue
		}
		if f.Search != "" && !containsFold(p.Name, f.Search) && !containsFold(p.Description, f.Search) {
			continue
		}
		out = append(out, p)
	}
	return out
}

func containsFold(s, substr string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(substr))
}
