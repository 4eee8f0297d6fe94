package product

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	byName   map[string]*Product
	created  []*Product
	updated  []QuantityUpdate
	existing map[string]Product
}

func (m *mockRepo) List(_ context.Context) ([]Product, error) { return nil, nil }

func (m *mockRepo) GetByID(_ context.Context, _ string) (*Product, error) {
	return nil, ErrNotFound
}

func (m *mockRepo) GetByIDs(_ context.Context, _ []string) ([]Product, error) { return nil, nil }

func (m *mockRepo) GetByName(_ context.Context, name string) (*Product, error) {
	p, ok := m.byName[name]
	if !ok {
		return nil, ErrNotFound
	}
	return p, nil
}

func (m *mockRepo) Create(_ context.Context, p *Product) error {
	m.created = append(m.created, p)
	return nil
}

func (m *mockRepo) UpdateQuantities(_ context.Context, updates []QuantityUpdate) ([]Product, error) {
	var out []Product
	for _, u := range updates {
		p, ok := m.existing[u.ID]
		if !ok {
			continue
		}
		p.Quantity = u.Quantity
		m.existing[u.ID] = p
		m.updated = append(m.updated, u)
		out = append(out, p)
	}
	return out, nil
}

func TestCreateProduct_Success(t *testing.T) {
	repo := &mockRepo{byName: map[string]*Product{}}
	svc := NewService(repo)

	p, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.991"),
		Quantity: 5,
	})

	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, "Widget", p.Name)
	assert.True(t, decimal.RequireFromString("9.99").Equal(p.Price), "price rounded to 2 places")
	assert.Equal(t, 5, p.Quantity)
	require.Len(t, repo.created, 1)
}

func TestCreateProduct_DuplicateName(t *testing.T) {
	repo := &mockRepo{byName: map[string]*Product{
		"Widget": {ID: "p1", Name: "Widget"},
	}}
	svc := NewService(repo)

	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:     "Widget",
		Price:    decimal.RequireFromString("9.99"),
		Quantity: 5,
	})

	require.ErrorIs(t, err, ErrDuplicateName)
	assert.Empty(t, repo.created, "no write on duplicate name")
}

func TestUpdateStock_OverwritesQuantities(t *testing.T) {
	repo := &mockRepo{existing: map[string]Product{
		"p1": {ID: "p1", Name: "Widget", Quantity: 5},
		"p2": {ID: "p2", Name: "Gadget", Quantity: 3},
	}}
	svc := NewService(repo)

	updated, err := svc.UpdateStock(context.Background(), []QuantityUpdate{
		{ID: "p1", Quantity: 10},
		{ID: "p2", Quantity: 0},
	})

	require.NoError(t, err)
	require.Len(t, updated, 2)
	assert.Equal(t, 10, repo.existing["p1"].Quantity)
	assert.Equal(t, 0, repo.existing["p2"].Quantity)
}

func TestUpdateStock_SkipsUnknownIDs(t *testing.T) {
	repo := &mockRepo{existing: map[string]Product{
		"p1": {ID: "p1", Name: "Widget", Quantity: 5},
	}}
	svc := NewService(repo)

	updated, err := svc.UpdateStock(context.Background(), []QuantityUpdate{
		{ID: "p1", Quantity: 7},
		{ID: "gone", Quantity: 1},
	})

	require.NoError(t, err)
	require.Len(t, updated, 1, "unknown id dropped from result")
	assert.Equal(t, "p1", updated[0].ID)
}

func TestUpdateStock_Validation(t *testing.T) {
	svc := NewService(&mockRepo{})

	_, err := svc.UpdateStock(context.Background(), nil)
	require.ErrorIs(t, err, ErrUpdatesRequired)

	_, err = svc.UpdateStock(context.Background(), []QuantityUpdate{{ID: "p1", Quantity: -1}})
	require.ErrorIs(t, err, ErrNegativeQuantity)
}

func TestCreateProduct_Validation(t *testing.T) {
	svc := NewService(&mockRepo{byName: map[string]*Product{}})

	_, err := svc.CreateProduct(context.Background(), CreateProductRequest{Name: "  "})
	require.ErrorIs(t, err, ErrNameRequired)

	_, err = svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:  "Widget",
		Price: decimal.RequireFromString("-1"),
	})
	require.ErrorIs(t, err, ErrNegativePrice)

	_, err = svc.CreateProduct(context.Background(), CreateProductRequest{
		Name:     "Widget",
		Price:    decimal.RequireFromString("1.00"),
		Quantity: -1,
	})
	require.ErrorIs(t, err, ErrNegativeQuantity)
}
