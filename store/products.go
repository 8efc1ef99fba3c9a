package store

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/aquinn/shop-api/kv"
	"github.com/aquinn/shop-api/model"
)

// Products persists product records. See the package comment for the
// key layout.
type Products struct {
	kv kv.Store
	mu sync.Mutex // serializes Create's id assignment, as in Users
}

func NewProducts(s kv.Store) *Products {
	return &Products{kv: s}
}

// Get returns the product with the given id, or ErrNotFound.
func (p *Products) Get(ctx context.Context, id int) (model.Product, error) {
	b, found, err := p.kv.Get(ctx, productKey(id))
	if err != nil {
		return model.Product{}, err
	}
	if !found {
		return model.Product{}, ErrNotFound
	}
	var product model.Product
	if err := json.Unmarshal(b, &product); err != nil {
		return model.Product{}, err
	}
	return product, nil
}

// List returns every product, sorted ascending by id. Index members
// whose record is missing are skipped.
func (p *Products) List(ctx context.Context) ([]model.Product, error) {
	ids, err := indexIDs(ctx, p.kv, productIndex)
	if err != nil {
		return nil, err
	}
	products := make([]model.Product, 0, len(ids))
	for _, id := range ids {
		product, err := p.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, nil
}

// Categories returns the distinct product categories in order of first
// appearance over the id-sorted listing.
func (p *Products) Categories(ctx context.Context) ([]string, error) {
	products, err := p.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(products))
	categories := []string{}
	for _, product := range products {
		if _, ok := seen[product.Category]; ok {
			continue
		}
		seen[product.Category] = struct{}{}
		categories = append(categories, product.Category)
	}
	return categories, nil
}

// Create validates in, assigns the next id and persists the record.
func (p *Products) Create(ctx context.Context, in model.NewProduct) (model.Product, error) {
	if err := in.Validate(); err != nil {
		return model.Product{}, err
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	ids, err := indexIDs(ctx, p.kv, productIndex)
	if err != nil {
		return model.Product{}, err
	}

	product := model.Product{
		ID:          nextID(ids),
		Name:        in.Name,
		Price:       *in.Price,
		Category:    in.Category,
		Description: in.Description,
		CreatedAt:   model.Now(),
	}
	if in.Stock != nil {
		product.Stock = *in.Stock
	}
	if err := p.put(ctx, product); err != nil {
		return model.Product{}, err
	}
	if err := p.kv.SAdd(ctx, productIndex, strconv.Itoa(product.ID)); err != nil {
		return model.Product{}, err
	}
	return product, nil
}

// Update merges patch onto the stored record and writes it back.
// Returns ErrNotFound if id has no record.
func (p *Products) Update(ctx context.Context, id int, patch model.ProductUpdate) (model.Product, error) {
	cur, err := p.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	updated := patch.Apply(cur, model.Now())
	if err := p.put(ctx, updated); err != nil {
		return model.Product{}, err
	}
	return updated, nil
}

// Delete removes the record and its index entry, returning the
// record's prior state. Returns ErrNotFound if id has no record.
func (p *Products) Delete(ctx context.Context, id int) (model.Product, error) {
	cur, err := p.Get(ctx, id)
	if err != nil {
		return model.Product{}, err
	}
	if err := p.kv.Delete(ctx, productKey(id)); err != nil {
		return model.Product{}, err
	}
	if err := p.kv.SRem(ctx, productIndex, strconv.Itoa(id)); err != nil {
		return model.Product{}, err
	}
	return cur, nil
}

func (p *Products) put(ctx context.Context, product model.Product) error {
	b, err := json.Marshal(product)
	if err != nil {
		return err
	}
	return p.kv.Set(ctx, productKey(product.ID), b)
}
