package store

import (
	"context"
	"encoding/json"
	"strconv"

	"github.com/aquinn/shop-api/kv"
	"github.com/aquinn/shop-api/model"
)

func intp(n int) *int { return &n }

// SampleUsers and SampleProducts are the fixtures Seed writes, for
// demos and local development.
var SampleUsers = []model.User{
	{ID: 1, Name: "Alice Zhang", Email: "alice@example.com", Age: intp(25), CreatedAt: "2024-01-01T00:00:00Z"},
	{ID: 2, Name: "Bob Li", Email: "bob@example.com", Age: intp(30), CreatedAt: "2024-01-02T00:00:00Z"},
	{ID: 3, Name: "Carol Wang", Email: "carol@example.com", Age: intp(28), CreatedAt: "2024-01-03T00:00:00Z"},
}

var SampleProducts = []model.Product{
	{ID: 1, Name: "iPhone 15", Price: 5999, Category: "phones", Description: "Latest iPhone model", Stock: 100, CreatedAt: "2024-01-01T00:00:00Z"},
	{ID: 2, Name: "MacBook Pro", Price: 12999, Category: "laptops", Description: "Professional grade laptop", Stock: 50, CreatedAt: "2024-01-02T00:00:00Z"},
	{ID: 3, Name: "AirPods Pro", Price: 1999, Category: "audio", Description: "Wireless noise-cancelling earbuds", Stock: 200, CreatedAt: "2024-01-03T00:00:00Z"},
}

// Seed drops both index sets and writes the sample fixtures. Record
// keys from previous generations are left behind; only the indexes are
// reset, which is what enumeration goes through.
func Seed(ctx context.Context, s kv.Store) (users, products int, err error) {
	if err := s.Delete(ctx, userIndex); err != nil {
		return 0, 0, err
	}
	if err := s.Delete(ctx, productIndex); err != nil {
		return 0, 0, err
	}
	for _, u := range SampleUsers {
		b, err := json.Marshal(u)
		if err != nil {
			return 0, 0, err
		}
		if err := s.Set(ctx, userKey(u.ID), b); err != nil {
			return 0, 0, err
		}
		if err := s.SAdd(ctx, userIndex, strconv.Itoa(u.ID)); err != nil {
			return 0, 0, err
		}
	}
	for _, p := range SampleProducts {
		b, err := json.Marshal(p)
		if err != nil {
			return 0, 0, err
		}
		if err := s.Set(ctx, productKey(p.ID), b); err != nil {
			return 0, 0, err
		}
		if err := s.SAdd(ctx, productIndex, strconv.Itoa(p.ID)); err != nil {
			return 0, 0, err
		}
	}
	return len(SampleUsers), len(SampleProducts), nil
}

// Status reports how many ids each index currently holds.
func Status(ctx context.Context, s kv.Store) (users, products int, err error) {
	uids, err := s.SMembers(ctx, userIndex)
	if err != nil {
		return 0, 0, err
	}
	pids, err := s.SMembers(ctx, productIndex)
	if err != nil {
		return 0, 0, err
	}
	return len(uids), len(pids), nil
}
