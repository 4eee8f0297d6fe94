package customer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byEmail map[string]*Customer
	created []*Customer
}

func (m *mockRepo) Create(_ context.Context, c *Customer) error {
	m.created = append(m.created, c)
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, _ string) (*Customer, error) {
	return nil, ErrNotFound
}

func (m *mockRepo) GetByEmail(_ context.Context, email string) (*Customer, error) {
	c, ok := m.byEmail[email]
	if !ok {
		return nil, ErrNotFound
	}
	return c, nil
}

func TestCreateCustomer_Success(t *testing.T) {
	repo := &mockRepo{byEmail: map[string]*Customer{}}
	svc := NewService(repo)

	c, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Alice",
		Email: "alice@example.com",
	})

	require.NoError(t, err)
	assert.NotEmpty(t, c.ID)
	assert.Equal(t, "Alice", c.Name)
	require.Len(t, repo.created, 1)
}

func TestCreateCustomer_DuplicateEmail(t *testing.T) {
	repo := &mockRepo{byEmail: map[string]*Customer{
		"alice@example.com": {ID: "c1", Email: "alice@example.com"},
	}}
	svc := NewService(repo)

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{
		Name:  "Alice Again",
		Email: "alice@example.com",
	})

	require.ErrorIs(t, err, ErrDuplicateEmail)
	assert.Empty(t, repo.created)
}

func TestCreateCustomer_Validation(t *testing.T) {
	svc := NewService(&mockRepo{byEmail: map[string]*Customer{}})

	_, err := svc.CreateCustomer(context.Background(), CreateCustomerRequest{Email: "a@b.c"})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.CreateCustomer(context.Background(), CreateCustomerRequest{Name: "Alice"})
	require.ErrorIs(t, err, ErrEmailRequired)
}
