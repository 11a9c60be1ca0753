package address

import (
	"context"

	"customer-accounts/internal/domain"
)

// Changes is a resolved address patch. Unset fields are left untouched; a
// null Landmark clears it. The owning customer is not patchable.
type Changes struct {
	HouseColony domain.Optional[string]
	Landmark    domain.Optional[string]
	City        domain.Optional[string]
	State       domain.Optional[string]
	Pincode     domain.Optional[string]
	Country     domain.Optional[string]
}

// Repository persists and fetches standalone addresses.
type Repository interface {
	Create(ctx context.Context, a domain.Address) (*domain.Address, error)
	GetByID(ctx context.Context, id string) (*domain.Address, error)
	// List returns every address, or only those of customerID when it is non-empty.
	List(ctx context.Context, customerID string) ([]domain.Address, error)
	Update(ctx context.Context, id string, ch Changes) (*domain.Address, error)
	Delete(ctx context.Context, id string) error
}
