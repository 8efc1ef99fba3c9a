package store

import (
	"context"
	"encoding/json"
	"strconv"
	"sync"

	"github.com/aquinn/shop-api/kv"
	"github.com/aquinn/shop-api/model"
)

// Users persists user records. See the package comment for the key
// layout.
type Users struct {
	kv kv.Store

	// mu serializes Create's read-modify-write so two in-process
	// requests cannot mint the same id or both pass the email scan.
	// Two separate processes sharing a remote store can still race.
	mu sync.Mutex
}

func NewUsers(s kv.Store) *Users {
	return &Users{kv: s}
}

// Get returns the user with the given id, or ErrNotFound.
func (u *Users) Get(ctx context.Context, id int) (model.User, error) {
	b, found, err := u.kv.Get(ctx, userKey(id))
	if err != nil {
		return model.User{}, err
	}
	if !found {
		return model.User{}, ErrNotFound
	}
	var user model.User
	if err := json.Unmarshal(b, &user); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// List returns every user, sorted ascending by id. Index members whose
// record is missing are skipped.
func (u *Users) List(ctx context.Context) ([]model.User, error) {
	ids, err := indexIDs(ctx, u.kv, userIndex)
	if err != nil {
		return nil, err
	}
	users := make([]model.User, 0, len(ids))
	for _, id := range ids {
		user, err := u.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

// Create validates in, rejects duplicate emails with ErrConflict,
// assigns the next id and persists the record.
func (u *Users) Create(ctx context.Context, in model.NewUser) (model.User, error) {
	if err := in.Validate(); err != nil {
		return model.User{}, err
	}

	u.mu.Lock()
	defer u.mu.Unlock()

	ids, err := indexIDs(ctx, u.kv, userIndex)
	if err != nil {
		return model.User{}, err
	}
	for _, id := range ids {
		existing, err := u.Get(ctx, id)
		if err == ErrNotFound {
			continue
		}
		if err != nil {
			return model.User{}, err
		}
		if existing.Email == in.Email {
			return model.User{}, ErrConflict
		}
	}

	user := model.User{
		ID:        nextID(ids),
		Name:      in.Name,
		Email:     in.Email,
		Age:       in.Age,
		CreatedAt: model.Now(),
	}
	if err := u.put(ctx, user); err != nil {
		return model.User{}, err
	}
	if err := u.kv.SAdd(ctx, userIndex, strconv.Itoa(user.ID)); err != nil {
		return model.User{}, err
	}
	return user, nil
}

// Update merges patch onto the stored record and writes it back.
// Returns ErrNotFound if id has no record.
func (u *Users) Update(ctx context.Context, id int, patch model.UserUpdate) (model.User, error) {
	cur, err := u.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	updated := patch.Apply(cur, model.Now())
	if err := u.put(ctx, updated); err != nil {
		return model.User{}, err
	}
	return updated, nil
}

// Delete removes the record and its index entry, returning the
// record's prior state. Returns ErrNotFound if id has no record.
func (u *Users) Delete(ctx context.Context, id int) (model.User, error) {
	cur, err := u.Get(ctx, id)
	if err != nil {
		return model.User{}, err
	}
	if err := u.kv.Delete(ctx, userKey(id)); err != nil {
		return model.User{}, err
	}
	if err := u.kv.SRem(ctx, userIndex, strconv.Itoa(id)); err != nil {
		return model.User{}, err
	}
	return cur, nil
}

func (u *Users) put(ctx context.Context, user model.User) error {
	b, err := json.Marshal(user)
	if err != nil {
		return err
	}
	return u.kv.Set(ctx, userKey(user.ID), b)
}
