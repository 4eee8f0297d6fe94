package customer

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
)

// Sentinel errors for customer input validation.
var (
	ErrNameRequired  = fmt.Errorf("name required")
	ErrEmailRequired = fmt.Errorf("email required")
)

// CreateCustomerRequest holds the input for registering a customer.
type CreateCustomerRequest struct {
	Name  string
	Email string
}

// Service encapsulates customer registration business logic.
type Service struct {
	customers Repository
}

// NewService creates a customer Service backed by the given repository.
func NewService(customers Repository) *Service {
	return &Service{customers: customers}
}

// CreateCustomer registers a new customer, rejecting duplicate email
// addresses with ErrDuplicateEmail.
func (s *Service) CreateCustomer(ctx context.Context, req CreateCustomerRequest) (*Customer, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" {
		return nil, ErrNameRequired
	}
	if email == "" {
		return nil, ErrEmailRequired
	}

	existing, err := s.customers.GetByEmail(ctx, email)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, errors.Wrap(err, "lookup customer by email")
	}
	if existing != nil {
		return nil, ErrDuplicateEmail
	}

	c := &Customer{
		ID:    uuid.New().String(),
		Name:  name,
		Email: email,
	}
	if err := s.customers.Create(ctx, c); err != nil {
		return nil, errors.Wrap(err, "create customer")
	}

	return c, nil
}

// GetCustomer returns a customer by id, or ErrNotFound.
func (s *Service) GetCustomer(ctx context.Context, id string) (*Customer, error) {
	return s.customers.GetByID(ctx, id)
}
