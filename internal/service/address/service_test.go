package address

import (
	"context"
	"errors"
	"testing"

	"customer-accounts/internal/authz"
	"customer-accounts/internal/domain"
	"customer-accounts/internal/repository/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (*Service, *memory.Store, string) {
	t.Helper()
	store := memory.New()
	owner, err := store.Customers().Create(context.Background(), domain.Customer{
		FirstName: "Asha", LastName: "Rao", Email: "asha@example.com", Phone: "9000000001", PasswordHash: "h",
	})
	require.NoError(t, err)
	return New(store.Addresses(), nil), store, owner.ID
}

func validInput() Input {
	return Input{HouseColony: "12 MG Road", City: "Bengaluru", State: "KA", Pincode: "560001"}
}

func TestCreate_DefaultsCountry(t *testing.T) {
	svc, _, owner := setup(t)

	a, err := svc.Create(context.Background(), authz.Actor{CustomerID: owner}, owner, validInput())
	require.NoError(t, err)
	assert.Equal(t, "India", a.Country)
	assert.Equal(t, owner, a.CustomerID)
	assert.Nil(t, a.Landmark)
}

func TestCreate_TrimsAndKeepsExplicitCountry(t *testing.T) {
	svc, _, owner := setup(t)
	in := validInput()
	in.Country = " Nepal "
	blank := "   "
	in.Landmark = &blank

	a, err := svc.Create(context.Background(), authz.Actor{CustomerID: owner}, owner, in)
	require.NoError(t, err)
	assert.Equal(t, "Nepal", a.Country)
	assert.Nil(t, a.Landmark)
}

func TestCreate_AnonymousIsForbidden(t *testing.T) {
	svc, _, owner := setup(t)
	_, err := svc.Create(context.Background(), authz.Anonymous, owner, validInput())
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.NotErrorIs(t, err, domain.ErrUnauthenticated)
	assert.Equal(t, authz.NotProvided, err.Error())
}

func TestCreate_AnyAuthenticatedActor(t *testing.T) {
	svc, _, owner := setup(t)
	other := authz.Actor{CustomerID: "5a0f5c4e-1111-4b8e-9a55-000000000002"}
	_, err := svc.Create(context.Background(), other, owner, validInput())
	assert.NoError(t, err)
}

func TestCreate_Validation(t *testing.T) {
	svc, _, owner := setup(t)
	actor := authz.Actor{CustomerID: owner}

	_, err := svc.Create(context.Background(), actor, "not-a-uuid", Input{City: "Pune"})
	require.ErrorIs(t, err, domain.ErrValidation)
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, map[string]string{
		"customer_id":  "must be a valid UUID",
		"house_colony": "this field is required",
		"state":        "this field is required",
		"pincode":      "this field is required",
	}, derr.Fields)
}

func TestCreate_UnknownCustomer(t *testing.T) {
	svc, _, owner := setup(t)
	_, err := svc.Create(context.Background(), authz.Actor{CustomerID: owner}, "5a0f5c4e-1111-4b8e-9a55-000000000009", validInput())
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestUpdate_OwnerOnly(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, authz.Actor{CustomerID: owner}, owner, validInput())
	require.NoError(t, err)

	patch := Patch{City: domain.Some("Mysuru")}

	_, err = svc.Update(ctx, authz.Anonymous, a.ID, patch)
	assert.ErrorIs(t, err, domain.ErrForbidden)

	_, err = svc.Update(ctx, authz.Actor{CustomerID: "5a0f5c4e-1111-4b8e-9a55-000000000002"}, a.ID, patch)
	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, "you can only update your own address", err.Error())

	_, err = svc.Update(ctx, authz.Actor{CustomerID: owner}, "5a0f5c4e-1111-4b8e-9a55-00000000000f", patch)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	up, err := svc.Update(ctx, authz.Actor{CustomerID: owner}, a.ID, patch)
	require.NoError(t, err)
	assert.Equal(t, "Mysuru", up.City)
	assert.Equal(t, "12 MG Road", up.HouseColony)
	assert.Equal(t, owner, up.CustomerID)
}

func TestUpdate_PatchRules(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()
	actor := authz.Actor{CustomerID: owner}
	in := validInput()
	lm := "Temple"
	in.Landmark = &lm
	a, err := svc.Create(ctx, actor, owner, in)
	require.NoError(t, err)

	_, err = svc.Update(ctx, actor, a.ID, Patch{
		City:    domain.Optional[string]{Set: true, Null: true},
		Country: domain.Some(""),
	})
	require.ErrorIs(t, err, domain.ErrValidation)
	var derr *domain.Error
	require.True(t, errors.As(err, &derr))
	assert.Equal(t, "this field may not be null", derr.Fields["city"])
	assert.Equal(t, "this field is required", derr.Fields["country"])

	cleared, err := svc.Update(ctx, actor, a.ID, Patch{Landmark: domain.Optional[string]{Set: true, Null: true}})
	require.NoError(t, err)
	assert.Nil(t, cleared.Landmark)

	set, err := svc.Update(ctx, actor, a.ID, Patch{Landmark: domain.Some(" Lake ")})
	require.NoError(t, err)
	require.NotNil(t, set.Landmark)
	assert.Equal(t, "Lake", *set.Landmark)
}

func TestDelete_OwnerOnly(t *testing.T) {
	svc, _, owner := setup(t)
	ctx := context.Background()
	a, err := svc.Create(ctx, authz.Actor{CustomerID: owner}, owner, validInput())
	require.NoError(t, err)

	err = svc.Delete(ctx, authz.Actor{CustomerID: "5a0f5c4e-1111-4b8e-9a55-000000000002"}, a.ID)
	assert.ErrorIs(t, err, domain.ErrForbidden)
	assert.ErrorIs(t, svc.Delete(ctx, authz.Anonymous, a.ID), domain.ErrForbidden)

	require.NoError(t, svc.Delete(ctx, authz.Actor{CustomerID: owner}, a.ID))
	_, err = svc.Get(ctx, a.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.ErrorIs(t, svc.Delete(ctx, authz.Actor{CustomerID: owner}, a.ID), domain.ErrNotFound)
}

func TestList_FilterByCustomer(t *testing.T) {
	svc, store, owner := setup(t)
	ctx := context.Background()
	other, err := store.Customers().Create(ctx, domain.Customer{Email: "b@example.com", Phone: "9000000002"})
	require.NoError(t, err)

	_, err = svc.Create(ctx, authz.Actor{CustomerID: owner}, owner, validInput())
	require.NoError(t, err)
	_, err = svc.Create(ctx, authz.Actor{CustomerID: owner}, other.ID, validInput())
	require.NoError(t, err)

	all, err := svc.List(ctx, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	mine, err := svc.List(ctx, owner)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, owner, mine[0].CustomerID)

	_, err = svc.List(ctx, "garbage")
	assert.ErrorIs(t, err, domain.ErrValidation)
}
