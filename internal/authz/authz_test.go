package authz

import (
	"errors"
	"testing"

	"customer-accounts/internal/domain"
	"github.com/stretchr/testify/assert"
)

func TestAllowed_Matrix(t *testing.T) {
	owner := Actor{CustomerID: "owner"}
	other := Actor{CustomerID: "other"}

	cases := []struct {
		name     string
		actor    Actor
		resource Resource
		action   Action
		ownerID  string
		want     bool
	}{
		{"anonymous lists customers", Anonymous, ResourceCustomer, ActionList, "", true},
		{"anonymous retrieves address", Anonymous, ResourceAddress, ActionRetrieve, "owner", true},
		{"anonymous registers", Anonymous, ResourceCustomer, ActionCreate, "", true},
		{"anonymous logs in", Anonymous, ResourceCustomer, ActionLogin, "", true},
		{"owner updates self", owner, ResourceCustomer, ActionUpdate, "owner", true},
		{"owner deletes self", owner, ResourceCustomer, ActionDelete, "owner", true},
		{"other updates customer", other, ResourceCustomer, ActionUpdate, "owner", false},
		{"other deletes customer", other, ResourceCustomer, ActionDelete, "owner", false},
		{"anonymous updates customer", Anonymous, ResourceCustomer, ActionUpdate, "owner", false},
		{"anonymous creates address", Anonymous, ResourceAddress, ActionCreate, "owner", false},
		{"any actor creates address", other, ResourceAddress, ActionCreate, "owner", true},
		{"owner updates address", owner, ResourceAddress, ActionUpdate, "owner", true},
		{"other deletes address", other, ResourceAddress, ActionDelete, "owner", false},
		{"missing owner never matches", owner, ResourceAddress, ActionUpdate, "", false},
		{"unknown action", owner, ResourceAddress, Action("archive"), "owner", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Allowed(tc.actor, tc.resource, tc.action, tc.ownerID))
		})
	}
}

func TestCheck_ErrorKinds(t *testing.T) {
	assert.NoError(t, Check(Actor{CustomerID: "a"}, ResourceCustomer, ActionUpdate, "a"))

	err := Check(Actor{CustomerID: "b"}, ResourceCustomer, ActionUpdate, "a")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.Equal(t, "you can only update your own account", err.Error())

	err = Check(Anonymous, ResourceAddress, ActionDelete, "a")
	assert.True(t, errors.Is(err, domain.ErrForbidden))
	assert.False(t, errors.Is(err, domain.ErrUnauthenticated))
	assert.Equal(t, NotProvided, err.Error())

	err = Check(Anonymous, ResourceAddress, ActionCreate, "")
	assert.True(t, errors.Is(err, domain.ErrForbidden))

	assert.NoError(t, Check(Anonymous, ResourceCustomer, ActionLogin, ""))
	assert.NoError(t, Check(Anonymous, ResourceAddress, ActionList, ""))
}
