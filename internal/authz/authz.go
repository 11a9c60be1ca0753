// Package authz holds the permission rules for customer and address actions.
// Rules are pure functions of the actor and the owning customer id.
package authz

import "customer-accounts/internal/domain"

// Actor is the identity attached to a request by the surrounding system.
// An empty CustomerID is the anonymous actor.
type Actor struct {
	CustomerID string
}

// Anonymous is the actor of a request without identity.
var Anonymous = Actor{}

// Authenticated reports whether the actor carries a customer identity.
func (a Actor) Authenticated() bool {
	return a.CustomerID != ""
}

type Resource string

const (
	ResourceCustomer Resource = "customer"
	ResourceAddress  Resource = "address"
)

type Action string

const (
	ActionList     Action = "list"
	ActionRetrieve Action = "retrieve"
	ActionCreate   Action = "create"
	ActionUpdate   Action = "update"
	ActionDelete   Action = "delete"
	ActionLogin    Action = "login"
)

// Allowed reports whether actor may perform action on a resource owned by
// ownerID. For customers the owner is the customer itself; ownerID is
// ignored for actions that need no owner.
func Allowed(actor Actor, resource Resource, action Action, ownerID string) bool {
	switch action {
	case ActionList, ActionRetrieve, ActionLogin:
		return true
	case ActionCreate:
		if resource == ResourceCustomer {
			return true
		}
		return actor.Authenticated()
	case ActionUpdate, ActionDelete:
		return actor.Authenticated() && ownerID != "" && actor.CustomerID == ownerID
	}
	return false
}

// NotProvided is the message of a write refused to the anonymous actor.
const NotProvided = "authentication credentials were not provided"

// Check is Allowed returning a typed outcome. Every refusal is forbidden;
// the message tells an anonymous caller apart from a foreign one.
func Check(actor Actor, resource Resource, action Action, ownerID string) error {
	if Allowed(actor, resource, action, ownerID) {
		return nil
	}
	if !actor.Authenticated() {
		return domain.Forbidden(NotProvided)
	}
	return domain.Forbidden("you can only " + string(action) + " your own " + resource.noun())
}

func (r Resource) noun() string {
	if r == ResourceCustomer {
		return "account"
	}
	return string(r)
}
