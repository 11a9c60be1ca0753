package customer

import (
	"context"

	"customer-accounts/internal/domain"
)

// Changes is a resolved customer patch. Only set fields are written.
// PasswordHash is set only when a new raw password was supplied.
// Addresses, when set (even to an empty slice), replaces every stored
// address of the customer; when unset, addresses are left as they are.
type Changes struct {
	FirstName    domain.Optional[string]
	LastName     domain.Optional[string]
	Email        domain.Optional[string]
	Phone        domain.Optional[string]
	PasswordHash domain.Optional[string]
	Addresses    domain.Optional[[]domain.Address]
}

// Repository persists customers together with their addresses. Every method
// treats a customer and its addresses as one consistency unit.
type Repository interface {
	// Create stores c and every address in c.Addresses atomically.
	Create(ctx context.Context, c domain.Customer) (*domain.Customer, error)
	GetByID(ctx context.Context, id string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	List(ctx context.Context) ([]domain.Customer, error)
	Update(ctx context.Context, id string, ch Changes) (*domain.Customer, error)
	// Delete removes the customer and its addresses.
	Delete(ctx context.Context, id string) error
}
