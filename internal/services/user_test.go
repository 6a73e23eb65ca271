package services_test

import (
	"context"
	"fmt"
	"net/http"
	"testing"

	"github.com/ggorockee/coffeemode/internal/services"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserServiceCreate(t *testing.T) {
	svc := services.NewUserService(newStores(t).users)
	ctx := context.Background()

	user, err := svc.Create(ctx, &services.CreateUserRequest{Name: "Kim", Email: " Kim@Example.com "})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "kim@example.com", user.Email)
	assert.Equal(t, "user", user.Role)

	got, err := svc.GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)

	_, err = svc.Create(ctx, &services.CreateUserRequest{Name: "Other", Email: "kim@example.com"})
	require.ErrorIs(t, err, services.ErrEmailAlreadyUsed)
	assert.Equal(t, http.StatusConflict, services.Classify(err).Status)

	_, err = svc.GetByID(ctx, "missing")
	assert.ErrorIs(t, err, services.ErrUserNotFound)
}

func TestUserServiceCreateValidation(t *testing.T) {
	svc := services.NewUserService(newStores(t).users)
	ctx := context.Background()

	for _, req := range []services.CreateUserRequest{
		{Email: "a@b.c"},
		{Name: "n"},
		{Name: "n", Email: "not-an-email"},
		{Name: "n", Email: "a@b.c", Role: "root"},
	} {
		_, err := svc.Create(ctx, &req)
		assert.ErrorIs(t, err, services.ErrInvalidInput, "%+v", req)
	}
}

func TestUserServiceList(t *testing.T) {
	svc := services.NewUserService(newStores(t).users)
	ctx := context.Background()

	for i := 0; i < 12; i++ {
		_, err := svc.Create(ctx, &services.CreateUserRequest{Name: fmt.Sprintf("u%d", i), Email: fmt.Sprintf("u%d@example.com", i)})
		require.NoError(t, err)
	}

	page, err := svc.List(ctx, 0, 0)
	require.NoError(t, err)
	assert.Len(t, page.Users, services.DefaultPageSize)
	assert.EqualValues(t, 12, page.TotalCount)
	assert.Equal(t, 2, page.TotalPages)

	last, err := svc.List(ctx, 1, 10)
	require.NoError(t, err)
	assert.Len(t, last.Users, 2)

	empty, err := svc.List(ctx, 5, 10)
	require.NoError(t, err)
	assert.NotNil(t, empty.Users)
	assert.Empty(t, empty.Users)

	_, err = svc.List(ctx, 0, services.MaxPageSize+1)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
	_, err = svc.List(ctx, -1, 10)
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}

func TestUserServiceMe(t *testing.T) {
	svc := services.NewUserService(newStores(t).users)
	ctx := context.Background()
	id := services.Identity{UID: "firebase-uid-1", Email: "lee@example.com"}

	first, err := svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "lee", first.Name)
	require.NotNil(t, first.FirebaseUID)
	assert.Equal(t, "firebase-uid-1", *first.FirebaseUID)

	second, err := svc.Me(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	_, err = svc.Me(ctx, services.Identity{UID: "no-email"})
	assert.ErrorIs(t, err, services.ErrInvalidInput)
}
