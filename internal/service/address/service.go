package address

import (
	"context"
	"strings"

	"customer-accounts/internal/authz"
	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	addressrepo "customer-accounts/internal/repository/address"
	"customer-accounts/internal/validation"
	"go.uber.org/zap"
)

// Input is a full address payload, used standalone and nested in customer
// payloads.
type Input struct {
	HouseColony string  `json:"house_colony" validate:"required,max=255"`
	Landmark    *string `json:"landmark" validate:"omitempty,max=255"`
	City        string  `json:"city" validate:"required,max=100"`
	State       string  `json:"state" validate:"required,max=100"`
	Pincode     string  `json:"pincode" validate:"required,max=10"`
	Country     string  `json:"country" validate:"omitempty,max=100"`
}

// Normalize trims every field and drops a blank landmark.
func (in Input) Normalize() Input {
	out := Input{
		HouseColony: strings.TrimSpace(in.HouseColony),
		City:        strings.TrimSpace(in.City),
		State:       strings.TrimSpace(in.State),
		Pincode:     strings.TrimSpace(in.Pincode),
		Country:     strings.TrimSpace(in.Country),
	}
	if in.Landmark != nil {
		if lm := strings.TrimSpace(*in.Landmark); lm != "" {
			out.Landmark = &lm
		}
	}
	return out
}

// ToDomain converts a normalized input into an address of customerID.
// An omitted country becomes domain.DefaultCountry.
func (in Input) ToDomain(customerID string) domain.Address {
	country := in.Country
	if country == "" {
		country = domain.DefaultCountry
	}
	return domain.Address{
		CustomerID:  customerID,
		HouseColony: in.HouseColony,
		Landmark:    in.Landmark,
		City:        in.City,
		State:       in.State,
		Pincode:     in.Pincode,
		Country:     country,
	}
}

// Patch is a partial address update. customer_id is not patchable.
type Patch struct {
	HouseColony domain.Optional[string] `json:"house_colony"`
	Landmark    domain.Optional[string] `json:"landmark"`
	City        domain.Optional[string] `json:"city"`
	State       domain.Optional[string] `json:"state"`
	Pincode     domain.Optional[string] `json:"pincode"`
	Country     domain.Optional[string] `json:"country"`
}

// Service handles standalone address operations.
type Service struct {
	repo     addressrepo.Repository
	validate *validation.Validator
	logger   *zap.Logger
}

func New(repo addressrepo.Repository, log *zap.Logger) *Service {
	return &Service{repo: repo, validate: validation.New(), logger: logger.OrNop(log)}
}

// List returns all addresses, or only those of customerID when it is set.
func (s *Service) List(ctx context.Context, customerID string) ([]domain.Address, error) {
	if customerID != "" {
		fields := map[string]string{}
		s.validate.Var(fields, "customer_id", customerID, "uuid")
		if err := validation.Result(fields); err != nil {
			return nil, err
		}
	}
	return s.repo.List(ctx, customerID)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Address, error) {
	return s.repo.GetByID(ctx, id)
}

// Create adds an address to customerID. Any authenticated actor may create.
func (s *Service) Create(ctx context.Context, actor authz.Actor, customerID string, in Input) (*domain.Address, error) {
	if err := authz.Check(actor, authz.ResourceAddress, authz.ActionCreate, customerID); err != nil {
		return nil, err
	}

	in = in.Normalize()
	customerID = strings.TrimSpace(customerID)
	fields := map[string]string{}
	s.validate.Var(fields, "customer_id", customerID, "required,uuid")
	s.validate.StructInto(fields, "", in)
	if err := validation.Result(fields); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, in.ToDomain(customerID))
	if err != nil {
		return nil, err
	}
	s.logger.Info("address created",
		zap.String("address_id", created.ID),
		zap.String("customer_id", created.CustomerID),
		zap.String("actor", actor.CustomerID),
	)
	return created, nil
}

// Update applies p to the address if the actor owns it.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, p Patch) (*domain.Address, error) {
	if err := s.authorize(ctx, actor, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	ch, err := s.changes(p)
	if err != nil {
		return nil, err
	}
	return s.repo.Update(ctx, id, ch)
}

// Delete removes the address if the actor owns it.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := s.authorize(ctx, actor, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("address deleted", zap.String("address_id", id), zap.String("actor", actor.CustomerID))
	return nil
}

// authorize refuses anonymous actors first, then reports missing addresses,
// then addresses owned by someone else.
func (s *Service) authorize(ctx context.Context, actor authz.Actor, action authz.Action, id string) error {
	if !actor.Authenticated() {
		return authz.Check(actor, authz.ResourceAddress, action, "")
	}
	current, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	return authz.Check(actor, authz.ResourceAddress, action, current.CustomerID)
}

func (s *Service) changes(p Patch) (addressrepo.Changes, error) {
	fields := map[string]string{}
	ch := addressrepo.Changes{
		HouseColony: s.validate.PatchString(fields, "house_colony", p.HouseColony, "required,max=255"),
		City:        s.validate.PatchString(fields, "city", p.City, "required,max=100"),
		State:       s.validate.PatchString(fields, "state", p.State, "required,max=100"),
		Pincode:     s.validate.PatchString(fields, "pincode", p.Pincode, "required,max=10"),
		Country:     s.validate.PatchString(fields, "country", p.Country, "required,max=100"),
		Landmark:    p.Landmark,
	}
	// A null or blank landmark clears it.
	if v, ok := p.Landmark.Get(); ok {
		v = strings.TrimSpace(v)
		s.validate.Var(fields, "landmark", v, "max=255")
		ch.Landmark = domain.Some(v)
		if v == "" {
			ch.Landmark = domain.Optional[string]{Set: true, Null: true}
		}
	}
	if err := validation.Result(fields); err != nil {
		return addressrepo.Changes{}, err
	}
	return ch, nil
}
