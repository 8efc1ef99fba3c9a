// Package model defines the user and product entities, the request
// shapes that create and patch them, and their validation rules.
package model

import "time"

// User is a registered account. Age is optional and serializes as null
// when unset, matching the wire format clients already depend on.
type User struct {
	ID        int    `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Age       *int   `json:"age"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

// Product is a catalog entry.
type Product struct {
	ID          int     `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Category    string  `json:"category"`
	Description string  `json:"description"`
	Stock       int     `json:"stock"`
	CreatedAt   string  `json:"createdAt"`
	UpdatedAt   string  `json:"updatedAt,omitempty"`
}

// ValidationError reports a request body that fails the entity's
// presence or value checks. The message is safe to return to clients.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// Now returns the current time in the timestamp format records carry.
func Now() string {
	return time.Now().UTC().Format(time.RFC3339)
}

// NewUser is the body of a user create request.
type NewUser struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   *int   `json:"age"`
}

func (n NewUser) Validate() error {
	if n.Name == "" || n.Email == "" {
		return &ValidationError{Msg: "name and email are required"}
	}
	return nil
}

// NewProduct is the body of a product create request. Price and stock
// are pointers so a missing field can be told apart from zero.
type NewProduct struct {
	Name        string   `json:"name"`
	Price       *float64 `json:"price"`
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Stock       *int     `json:"stock"`
}

func (n NewProduct) Validate() error {
	if n.Name == "" || n.Price == nil || n.Category == "" {
		return &ValidationError{Msg: "name, price and category are required"}
	}
	if *n.Price <= 0 {
		return &ValidationError{Msg: "price must be a positive number"}
	}
	return nil
}

// UserUpdate is the body of a user update request. Fields left out of
// the JSON stay nil and keep the record's prior value. Empty strings
// also keep the prior value, which is how the deployed API has always
// behaved.
type UserUpdate struct {
	Name  *string `json:"name"`
	Email *string `json:"email"`
	Age   *int    `json:"age"`
}

// Apply merges the patch onto cur and refreshes UpdatedAt.
func (u UserUpdate) Apply(cur User, now string) User {
	if u.Name != nil && *u.Name != "" {
		cur.Name = *u.Name
	}
	if u.Email != nil && *u.Email != "" {
		cur.Email = *u.Email
	}
	if u.Age != nil {
		cur.Age = u.Age
	}
	cur.UpdatedAt = now
	return cur
}

// ProductUpdate is the body of a product update request. Description
// may be set to the empty string; name and category treat empty as
// absent, like UserUpdate's string fields.
type ProductUpdate struct {
	Name        *string  `json:"name"`
	Price       *float64 `json:"price"`
	Category    *string  `json:"category"`
	Description *string  `json:"description"`
	Stock       *int     `json:"stock"`
}

// Apply merges the patch onto cur and refreshes UpdatedAt.
func (p ProductUpdate) Apply(cur Product, now string) Product {
	if p.Name != nil && *p.Name != "" {
		cur.Name = *p.Name
	}
	if p.Price != nil {
		cur.Price = *p.Price
	}
	if p.Category != nil && *p.Category != "" {
		cur.Category = *p.Category
	}
	if p.Description != nil {
		cur.Description = *p.Description
	}
	if p.Stock != nil {
		cur.Stock = *p.Stock
	}
	cur.UpdatedAt = now
	return cur
}
