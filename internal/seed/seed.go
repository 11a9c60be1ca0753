package seed

import (
	"context"
	"errors"
	"fmt"

	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	addresssvc "customer-accounts/internal/service/address"
	customersvc "customer-accounts/internal/service/customer"
	"go.uber.org/zap"
)

// DemoPassword is the password of every seeded customer.
const DemoPassword = "demo-password"

type Registrar interface {
	Register(ctx context.Context, in customersvc.RegisterInput) (*domain.Customer, error)
}

func landmark(s string) *string { return &s }

// Customers returns the demo customers registered by Apply.
func Customers() []customersvc.RegisterInput {
	return []customersvc.RegisterInput{
		{
			FirstName: "Demo",
			LastName:  "Customer",
			Email:     "demo@example.com",
			Phone:     "9000000000",
			Password:  DemoPassword,
			Addresses: []addresssvc.Input{
				{
					HouseColony: "221 Residency Road",
					Landmark:    landmark("Opposite City Mall"),
					City:        "Bengaluru",
					State:       "Karnataka",
					Pincode:     "560025",
				},
				{
					HouseColony: "14 Marine Lines",
					City:        "Mumbai",
					State:       "Maharashtra",
					Pincode:     "400002",
				},
			},
		},
		{
			FirstName: "Second",
			LastName:  "Customer",
			Email:     "second@example.com",
			Phone:     "9000000009",
			Password:  DemoPassword,
		},
	}
}

// Apply registers the demo customers. Customers that already exist are left
// untouched, so running it twice is harmless.
func Apply(ctx context.Context, r Registrar, log *zap.Logger) error {
	log = logger.OrNop(log)
	for _, in := range Customers() {
		c, err := r.Register(ctx, in)
		if errors.Is(err, domain.ErrConflict) {
			log.Info("seed: customer exists", zap.String("email", in.Email))
			continue
		}
		if err != nil {
			return fmt.Errorf("register %s: %w", in.Email, err)
		}
		log.Info("seed: customer registered", zap.String("email", c.Email), zap.String("customer_id", c.ID))
	}
	return nil
}
