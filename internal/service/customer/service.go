package customer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"customer-accounts/internal/authz"
	"customer-accounts/internal/credential"
	"customer-accounts/internal/domain"
	"customer-accounts/internal/logger"
	custrepo "customer-accounts/internal/repository/customer"
	addresssvc "customer-accounts/internal/service/address"
	"customer-accounts/internal/validation"
	"go.uber.org/zap"
)

// LoginSucceeded is the message returned with a successful login.
const LoginSucceeded = "login successful"

// bcrypt rejects passwords longer than 72 bytes.
const passwordTag = "required,max=72"

// Service handles registration, login and profile maintenance.
type Service struct {
	repo     custrepo.Repository
	creds    *credential.Store
	validate *validation.Validator
	logger   *zap.Logger
}

// New creates a Service. A nil credential store hashes with bcrypt.DefaultCost.
func New(repo custrepo.Repository, creds *credential.Store, log *zap.Logger) *Service {
	if creds == nil {
		creds = &credential.Store{}
	}
	return &Service{
		repo:     repo,
		creds:    creds,
		validate: validation.New(),
		logger:   logger.OrNop(log),
	}
}

// RegisterInput captures fields expected by the registration endpoint.
type RegisterInput struct {
	FirstName string             `json:"first_name" validate:"required,max=100"`
	LastName  string             `json:"last_name" validate:"required,max=100"`
	Email     string             `json:"email" validate:"required,email,max=254"`
	Phone     string             `json:"phone" validate:"required,max=15"`
	Password  string             `json:"password" validate:"required,max=72"`
	Addresses []addresssvc.Input `json:"addresses" validate:"dive"`
}

// UpdateInput is a partial profile update. A present Addresses, even an empty
// one, replaces every stored address; an absent one leaves them alone.
type UpdateInput struct {
	FirstName domain.Optional[string]             `json:"first_name"`
	LastName  domain.Optional[string]             `json:"last_name"`
	Email     domain.Optional[string]             `json:"email"`
	Phone     domain.Optional[string]             `json:"phone"`
	Password  domain.Optional[string]             `json:"password"`
	Addresses domain.Optional[[]addresssvc.Input] `json:"addresses"`
}

// LoginResult is the outcome of a successful login. No token is issued.
type LoginResult struct {
	Message    string `json:"message"`
	CustomerID string `json:"customer_id"`
}

// Register creates a customer and its addresses in one step.
func (s *Service) Register(ctx context.Context, in RegisterInput) (*domain.Customer, error) {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = normalizeEmail(in.Email)
	in.Phone = strings.TrimSpace(in.Phone)
	for i := range in.Addresses {
		in.Addresses[i] = in.Addresses[i].Normalize()
	}
	if err := s.validate.Struct(in); err != nil {
		return nil, err
	}

	hashed, err := s.hash(in.Password)
	if err != nil {
		return nil, err
	}

	addresses := make([]domain.Address, 0, len(in.Addresses))
	for _, a := range in.Addresses {
		addresses = append(addresses, a.ToDomain(""))
	}

	created, err := s.repo.Create(ctx, domain.Customer{
		FirstName:    in.FirstName,
		LastName:     in.LastName,
		Email:        in.Email,
		Phone:        in.Phone,
		PasswordHash: hashed,
		Addresses:    addresses,
	})
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer registered", zap.String("customer_id", created.ID), zap.Int("addresses", len(created.Addresses)))
	return created, nil
}

// Login checks email and password. An unknown email is NotFound and a wrong
// password is Unauthenticated.
func (s *Service) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	email = normalizeEmail(email)
	fields := map[string]string{}
	s.validate.Var(fields, "email", email, "required")
	s.validate.Var(fields, "password", password, "required")
	if len(fields) > 0 {
		return nil, domain.Validation("email and password are required", fields)
	}

	c, err := s.repo.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if !s.creds.Verify(password, c.PasswordHash) {
		s.logger.Info("login rejected", zap.String("customer_id", c.ID))
		return nil, domain.Unauthenticated("invalid password")
	}
	return &LoginResult{Message: LoginSucceeded, CustomerID: c.ID}, nil
}

func (s *Service) List(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.List(ctx)
}

func (s *Service) Get(ctx context.Context, id string) (*domain.Customer, error) {
	return s.repo.GetByID(ctx, id)
}

// Update applies in to the actor's own customer record.
func (s *Service) Update(ctx context.Context, actor authz.Actor, id string, in UpdateInput) (*domain.Customer, error) {
	if err := s.authorize(ctx, actor, authz.ActionUpdate, id); err != nil {
		return nil, err
	}

	ch, err := s.changes(in)
	if err != nil {
		return nil, err
	}
	if raw, ok := in.Password.Get(); ok {
		hashed, err := s.hash(raw)
		if err != nil {
			return nil, err
		}
		ch.PasswordHash = domain.Some(hashed)
	}

	updated, err := s.repo.Update(ctx, id, ch)
	if err != nil {
		return nil, err
	}
	s.logger.Info("customer updated",
		zap.String("customer_id", id),
		zap.Bool("password_changed", ch.PasswordHash.Set),
		zap.Bool("addresses_replaced", ch.Addresses.Set),
	)
	return updated, nil
}

// Delete removes the actor's own customer record and its addresses.
func (s *Service) Delete(ctx context.Context, actor authz.Actor, id string) error {
	if err := s.authorize(ctx, actor, authz.ActionDelete, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.logger.Info("customer deleted", zap.String("customer_id", id))
	return nil
}

// authorize refuses anonymous actors outright, then reports a missing
// customer ahead of a foreign one.
func (s *Service) authorize(ctx context.Context, actor authz.Actor, action authz.Action, id string) error {
	err := authz.Check(actor, authz.ResourceCustomer, action, id)
	if err == nil || !actor.Authenticated() {
		return err
	}
	if _, gerr := s.repo.GetByID(ctx, id); gerr != nil {
		return gerr
	}
	return err
}

func (s *Service) changes(in UpdateInput) (custrepo.Changes, error) {
	fields := map[string]string{}
	email := in.Email
	if v, ok := email.Get(); ok {
		email = domain.Some(normalizeEmail(v))
	}
	ch := custrepo.Changes{
		FirstName: s.validate.PatchString(fields, "first_name", in.FirstName, "required,max=100"),
		LastName:  s.validate.PatchString(fields, "last_name", in.LastName, "required,max=100"),
		Email:     s.validate.PatchString(fields, "email", email, "required,email,max=254"),
		Phone:     s.validate.PatchString(fields, "phone", in.Phone, "required,max=15"),
	}

	if in.Password.Set {
		if in.Password.Null {
			fields["password"] = validation.NotNull
		} else {
			s.validate.Var(fields, "password", in.Password.Value, passwordTag)
		}
	}

	if in.Addresses.Set {
		if in.Addresses.Null {
			fields["addresses"] = validation.NotNull
		} else {
			addresses := make([]domain.Address, 0, len(in.Addresses.Value))
			for i, a := range in.Addresses.Value {
				a = a.Normalize()
				s.validate.StructInto(fields, fmt.Sprintf("addresses[%d].", i), a)
				addresses = append(addresses, a.ToDomain(""))
			}
			ch.Addresses = domain.Some(addresses)
		}
	}

	if err := validation.Result(fields); err != nil {
		return custrepo.Changes{}, err
	}
	return ch, nil
}

func (s *Service) hash(raw string) (string, error) {
	hashed, err := s.creds.Hash(raw)
	if errors.Is(err, credential.ErrTooLong) {
		return "", domain.Validation("password: "+err.Error(), map[string]string{"password": "ensure this field has no more than 72 bytes"})
	}
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return hashed, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
