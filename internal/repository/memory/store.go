// Package memory keeps customers and addresses in process memory. It
// satisfies the same repository contracts as the Postgres implementations
// and backs STORAGE_DRIVER=memory and the service and HTTP tests.
package memory

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"

	"customer-accounts/internal/domain"
	addressrepo "customer-accounts/internal/repository/address"
	customerrepo "customer-accounts/internal/repository/customer"
	"github.com/google/uuid"
)

// Store holds every customer and address behind one lock, so each call
// observes and mutates the customer aggregate atomically.
type Store struct {
	mu        sync.RWMutex
	customers []domain.Customer // without Addresses
	addresses []domain.Address
	now       func() time.Time
}

// New returns an empty Store.
func New() *Store {
	return &Store{now: time.Now}
}

// Customers returns the customer repository view of the store.
func (s *Store) Customers() customerrepo.Repository {
	return customers{s}
}

// Addresses returns the address repository view of the store.
func (s *Store) Addresses() addressrepo.Repository {
	return addresses{s}
}

// Ping reports readiness; an in-memory store is always ready unless ctx is done.
func (s *Store) Ping(ctx context.Context) error {
	return ctx.Err()
}

func (s *Store) customerIndex(id string) int {
	return slices.IndexFunc(s.customers, func(c domain.Customer) bool { return c.ID == id })
}

func (s *Store) addressIndex(id string) int {
	return slices.IndexFunc(s.addresses, func(a domain.Address) bool { return a.ID == id })
}

// checkUnique reports a conflict if email or phone belongs to a customer other than self.
func (s *Store) checkUnique(self, email, phone string) error {
	for _, c := range s.customers {
		if c.ID == self {
			continue
		}
		if email != "" && c.Email == email {
			return domain.Conflict("customer with this email already exists")
		}
		if phone != "" && c.Phone == phone {
			return domain.Conflict("customer with this phone already exists")
		}
	}
	return nil
}

func (s *Store) newAddress(customerID string, a domain.Address, at time.Time) domain.Address {
	a.ID = uuid.NewString()
	a.CustomerID = customerID
	a.Landmark = cloneString(a.Landmark)
	if a.Country == "" {
		a.Country = domain.DefaultCountry
	}
	a.CreatedAt = at
	return a
}

func (s *Store) aggregate(c domain.Customer) *domain.Customer {
	c.Addresses = []domain.Address{}
	for _, a := range s.addresses {
		if a.CustomerID == c.ID {
			c.Addresses = append(c.Addresses, cloneAddress(a))
		}
	}
	return &c
}

func cloneAddress(a domain.Address) domain.Address {
	a.Landmark = cloneString(a.Landmark)
	return a
}

func cloneString(p *string) *string {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

type customers struct{ s *Store }

func (r customers) Create(ctx context.Context, c domain.Customer) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	c.Email = strings.ToLower(c.Email)
	if err := s.checkUnique("", c.Email, c.Phone); err != nil {
		return nil, err
	}

	now := s.now()
	c.ID = uuid.NewString()
	c.CreatedAt = now
	for _, a := range c.Addresses {
		s.addresses = append(s.addresses, s.newAddress(c.ID, a, now))
	}
	c.Addresses = nil
	s.customers = append(s.customers, c)
	return s.aggregate(c), nil
}

func (r customers) GetByID(ctx context.Context, id string) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.customerIndex(id)
	if i < 0 {
		return nil, domain.NotFound("customer not found")
	}
	return s.aggregate(s.customers[i]), nil
}

func (r customers) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	email = strings.ToLower(email)
	i := slices.IndexFunc(s.customers, func(c domain.Customer) bool { return c.Email == email })
	if i < 0 {
		return nil, domain.NotFound("customer not found")
	}
	return s.aggregate(s.customers[i]), nil
}

func (r customers) List(ctx context.Context) ([]domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		out = append(out, *s.aggregate(c))
	}
	return out, nil
}

func (r customers) Update(ctx context.Context, id string, ch customerrepo.Changes) (*domain.Customer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.customerIndex(id)
	if i < 0 {
		return nil, domain.NotFound("customer not found")
	}

	c := s.customers[i]
	if v, ok := ch.FirstName.Get(); ok {
		c.FirstName = v
	}
	if v, ok := ch.LastName.Get(); ok {
		c.LastName = v
	}
	if v, ok := ch.Email.Get(); ok {
		c.Email = strings.ToLower(v)
	}
	if v, ok := ch.Phone.Get(); ok {
		c.Phone = v
	}
	if v, ok := ch.PasswordHash.Get(); ok {
		c.PasswordHash = v
	}
	if err := s.checkUnique(id, c.Email, c.Phone); err != nil {
		return nil, err
	}

	s.customers[i] = c
	if ch.Addresses.Set {
		s.addresses = slices.DeleteFunc(s.addresses, func(a domain.Address) bool { return a.CustomerID == id })
		now := s.now()
		for _, a := range ch.Addresses.Value {
			s.addresses = append(s.addresses, s.newAddress(id, a, now))
		}
	}
	return s.aggregate(c), nil
}

func (r customers) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.customerIndex(id)
	if i < 0 {
		return domain.NotFound("customer not found")
	}
	s.customers = slices.Delete(s.customers, i, i+1)
	s.addresses = slices.DeleteFunc(s.addresses, func(a domain.Address) bool { return a.CustomerID == id })
	return nil
}

type addresses struct{ s *Store }

func (r addresses) Create(ctx context.Context, a domain.Address) (*domain.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.customerIndex(a.CustomerID) < 0 {
		return nil, domain.NotFound("customer not found")
	}
	created := s.newAddress(a.CustomerID, a, s.now())
	s.addresses = append(s.addresses, created)
	out := cloneAddress(created)
	return &out, nil
}

func (r addresses) GetByID(ctx context.Context, id string) (*domain.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	i := s.addressIndex(id)
	if i < 0 {
		return nil, domain.NotFound("address not found")
	}
	out := cloneAddress(s.addresses[i])
	return &out, nil
}

func (r addresses) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := []domain.Address{}
	for _, a := range s.addresses {
		if customerID == "" || a.CustomerID == customerID {
			out = append(out, cloneAddress(a))
		}
	}
	return out, nil
}

func (r addresses) Update(ctx context.Context, id string, ch addressrepo.Changes) (*domain.Address, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.addressIndex(id)
	if i < 0 {
		return nil, domain.NotFound("address not found")
	}
	a := s.addresses[i]
	if v, ok := ch.HouseColony.Get(); ok {
		a.HouseColony = v
	}
	if ch.Landmark.Set {
		if v, ok := ch.Landmark.Get(); ok {
			a.Landmark = &v
		} else {
			a.Landmark = nil
		}
	}
	if v, ok := ch.City.Get(); ok {
		a.City = v
	}
	if v, ok := ch.State.Get(); ok {
		a.State = v
	}
	if v, ok := ch.Pincode.Get(); ok {
		a.Pincode = v
	}
	if v, ok := ch.Country.Get(); ok {
		a.Country = v
	}
	s.addresses[i] = a
	out := cloneAddress(a)
	return &out, nil
}

func (r addresses) Delete(ctx context.Context, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s := r.s
	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.addressIndex(id)
	if i < 0 {
		return domain.NotFound("address not found")
	}
	s.addresses = slices.Delete(s.addresses, i, i+1)
	return nil
}
