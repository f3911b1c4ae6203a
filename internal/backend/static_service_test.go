package backend_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"hesapvitrini.com/vitrine/internal/backend"
)

func TestStaticServiceDeleteCategoryCascades(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	ctx := context.Background()

	require.NoError(t, svc.DeleteCategory(ctx, "admin-token", "cat-lol"))

	accounts, err := svc.Accounts(ctx, "", backend.AccountFilter{})
	require.NoError(t, err)
	for _, a := range accounts {
		require.NotEqual(t, "cat-lol", a.CategoryID)
	}
	categories, err := svc.Categories(ctx)
	require.NoError(t, err)
	require.Len(t, categories, 1)
}

func TestStaticServiceAdminOnlyWrites(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	_, err := svc.CreateCategory(context.Background(), "user-token", backend.CategoryInput{Name: "X"})
	require.ErrorIs(t, err, backend.ErrForbidden)

	_, err = svc.CreateCategory(context.Background(), "", backend.CategoryInput{Name: "X"})
	require.ErrorIs(t, err, backend.ErrUnauthorized)
}

func TestStaticServiceMarksSold(t *testing.T) {
	t.Parallel()

	svc := backend.NewStaticService()
	updated, err := svc.UpdateAccount(context.Background(), "admin-token", "acc-1", backend.AccountUpdate{
		Name:   "Immortal 3 Hesap",
		Status: backend.StatusSold,
	})
	require.NoError(t, err)
	require.Equal(t, backend.StatusSold, updated.Status)
	require.NotNil(t, updated.SoldAt)
}
