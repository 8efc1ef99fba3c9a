package store_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/aquinn/shop-api/kv"
	"github.com/aquinn/shop-api/model"
	"github.com/aquinn/shop-api/store"
)

func f64p(f float64) *float64 { return &f }

func TestUsersCreateAndGet(t *testing.T) {
	ctx := context.Background()
	users := store.NewUsers(kv.NewMemory())

	created, err := users.Create(ctx, model.NewUser{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)
	require.NotEmpty(t, created.CreatedAt)
	require.Empty(t, created.UpdatedAt)

	got, err := users.Get(ctx, 1)
	require.NoError(t, err)
	require.Equal(t, created, got)
}

func TestUsersCreateValidation(t *testing.T) {
	ctx := context.Background()
	users := store.NewUsers(kv.NewMemory())

	_, err := users.Create(ctx, model.NewUser{Name: "Bob"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Empty(t, all)
}

func TestUsersDuplicateEmail(t *testing.T) {
	ctx := context.Background()
	users := store.NewUsers(kv.NewMemory())

	_, err := users.Create(ctx, model.NewUser{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = users.Create(ctx, model.NewUser{Name: "Other Bob", Email: "bob@example.com"})
	require.ErrorIs(t, err, store.ErrConflict)

	// the failed create must not have persisted anything
	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUsersIDAssignment(t *testing.T) {
	ctx := context.Background()
	users := store.NewUsers(kv.NewMemory())

	for i, email := range []string{"a@x.com", "b@x.com", "c@x.com"} {
		u, err := users.Create(ctx, model.NewUser{Name: "u", Email: email})
		require.NoError(t, err)
		require.Equal(t, i+1, u.ID)
	}

	// deleting the middle record must not let its id be reused
	_, err := users.Delete(ctx, 2)
	require.NoError(t, err)
	u, err := users.Create(ctx, model.NewUser{Name: "u", Email: "d@x.com"})
	require.NoError(t, err)
	require.Equal(t, 4, u.ID)

	// deleting the highest id frees it for the next create
	_, err = users.Delete(ctx, 4)
	require.NoError(t, err)
	u, err = users.Create(ctx, model.NewUser{Name: "u", Email: "e@x.com"})
	require.NoError(t, err)
	require.Equal(t, 4, u.ID)
}

func TestUsersUpdate(t *testing.T) {
	ctx := context.Background()
	users := store.NewUsers(kv.NewMemory())

	created, err := users.Create(ctx, model.NewUser{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	name := "Robert"
	updated, err := users.Update(ctx, created.ID, model.UserUpdate{Name: &name})
	require.NoError(t, err)
	require.Equal(t, "Robert", updated.Name)
	require.Equal(t, "bob@example.com", updated.Email)
	require.NotEmpty(t, updated.UpdatedAt)
	require.Equal(t, created.CreatedAt, updated.CreatedAt)

	got, err := users.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated, got)

	_, err = users.Update(ctx, 99, model.UserUpdate{Name: &name})
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestUsersDelete(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	users := store.NewUsers(mem)

	created, err := users.Create(ctx, model.NewUser{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	deleted, err := users.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created, deleted)

	_, err = users.Get(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	members, err := mem.SMembers(ctx, "users:list")
	require.NoError(t, err)
	require.Empty(t, members)
}

func TestUsersDeleteMissingLeavesStoreAlone(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	users := store.NewUsers(mem)

	_, err := users.Create(ctx, model.NewUser{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	_, err = users.Delete(ctx, 42)
	require.ErrorIs(t, err, store.ErrNotFound)

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
}

func TestUsersListSkipsDanglingIndexMembers(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()
	users := store.NewUsers(mem)

	_, err := users.Create(ctx, model.NewUser{Name: "Bob", Email: "bob@example.com"})
	require.NoError(t, err)

	// an index member with no record behind it is tolerated, not fatal
	require.NoError(t, mem.SAdd(ctx, "users:list", "99"))
	require.NoError(t, mem.SAdd(ctx, "users:list", "not-a-number"))

	all, err := users.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	require.Equal(t, 1, all[0].ID)
}

func TestUsersListSortedByID(t *testing.T) {
	ctx := context.Background()
	users := store.NewUsers(kv.NewMemory())

	for _, email := range []string{"a@x.com", "b@x.com", "c@x.com", "d@x.com"} {
		_, err := users.Create(ctx, model.NewUser{Name: "u", Email: email})
		require.NoError(t, err)
	}

	all, err := users.List(ctx)
	require.NoError(t, err)
	for i, u := range all {
		require.Equal(t, i+1, u.ID)
	}
}

func TestProductsCreate(t *testing.T) {
	ctx := context.Background()
	products := store.NewProducts(kv.NewMemory())

	created, err := products.Create(ctx, model.NewProduct{
		Name:     "Widget",
		Price:    f64p(9.5),
		Category: "tools",
	})
	require.NoError(t, err)
	require.Equal(t, 1, created.ID)
	require.Equal(t, 9.5, created.Price)
	require.Equal(t, "", created.Description)
	require.Equal(t, 0, created.Stock)

	_, err = products.Create(ctx, model.NewProduct{Name: "Bad", Price: f64p(-1), Category: "tools"})
	var verr *model.ValidationError
	require.ErrorAs(t, err, &verr)
	require.Equal(t, "price must be a positive number", verr.Error())
}

func TestProductsUpdateAndDelete(t *testing.T) {
	ctx := context.Background()
	products := store.NewProducts(kv.NewMemory())

	created, err := products.Create(ctx, model.NewProduct{
		Name:     "Widget",
		Price:    f64p(10),
		Category: "tools",
	})
	require.NoError(t, err)

	updated, err := products.Update(ctx, created.ID, model.ProductUpdate{Price: f64p(12)})
	require.NoError(t, err)
	require.Equal(t, 12.0, updated.Price)
	require.Equal(t, "Widget", updated.Name)

	deleted, err := products.Delete(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, updated, deleted)

	_, err = products.Delete(ctx, created.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestProductsCategories(t *testing.T) {
	ctx := context.Background()
	products := store.NewProducts(kv.NewMemory())

	for _, p := range []model.NewProduct{
		{Name: "a", Price: f64p(1), Category: "tools"},
		{Name: "b", Price: f64p(2), Category: "audio"},
		{Name: "c", Price: f64p(3), Category: "tools"},
	} {
		_, err := products.Create(ctx, p)
		require.NoError(t, err)
	}

	categories, err := products.Categories(ctx)
	require.NoError(t, err)
	require.Equal(t, []string{"tools", "audio"}, categories)
}

func TestSeedAndStatus(t *testing.T) {
	ctx := context.Background()
	mem := kv.NewMemory()

	users, productCount, err := store.Status(ctx, mem)
	require.NoError(t, err)
	require.Zero(t, users)
	require.Zero(t, productCount)

	users, productCount, err = store.Seed(ctx, mem)
	require.NoError(t, err)
	require.Equal(t, len(store.SampleUsers), users)
	require.Equal(t, len(store.SampleProducts), productCount)

	users, productCount, err = store.Status(ctx, mem)
	require.NoError(t, err)
	require.Equal(t, len(store.SampleUsers), users)
	require.Equal(t, len(store.SampleProducts), productCount)

	// seeding twice resets rather than accumulates
	_, _, err = store.Seed(ctx, mem)
	require.NoError(t, err)
	users, productCount, err = store.Status(ctx, mem)
	require.NoError(t, err)
	require.Equal(t, len(store.SampleUsers), users)
	require.Equal(t, len(store.SampleProducts), productCount)

	all, err := store.NewUsers(mem).List(ctx)
	require.NoError(t, err)
	require.Equal(t, store.SampleUsers, all)
}
