package workflow_test

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/a-manpathan/kata-frontend/internal/controller"
	"github.com/a-manpathan/kata-frontend/internal/domain"
	"github.com/a-manpathan/kata-frontend/internal/session"
	"github.com/a-manpathan/kata-frontend/internal/workflow"
)

// shopGateway emulates the backend's state machine so whole user journeys can
// be exercised: purchases decrement, restocks increment, and the server, not
// the client, is the one refusing a purchase at zero stock.
type shopGateway struct {
	sweets []*domain.Sweet
	nextID int
}

func (g *shopGateway) find(id string) *domain.Sweet {
	for _, s := range g.sweets {
		if s.ID == id {
			return s
		}
	}
	return nil
}

func (g *shopGateway) ListSweets(context.Context) ([]domain.Sweet, error) {
	out := make([]domain.Sweet, 0, len(g.sweets))
	for _, s := range g.sweets {
		out = append(out, *s)
	}
	return out, nil
}

func (g *shopGateway) SearchSweets(_ context.Context, name string) ([]domain.Sweet, error) {
	out := []domain.Sweet{}
	for _, s := range g.sweets {
		if strings.Contains(strings.ToLower(s.Name), strings.ToLower(name)) {
			out = append(out, *s)
		}
	}
	return out, nil
}

func (g *shopGateway) CreateSweet(_ context.Context, draft domain.SweetDraft) (*domain.Sweet, error) {
	g.nextID++
	sweet := &domain.Sweet{
		ID:       fmt.Sprintf("s%d", g.nextID),
		Name:     draft.Name,
		Category: draft.Category,
		Price:    draft.Price,
		Quantity: draft.Quantity,
	}
	g.sweets = append(g.sweets, sweet)
	copied := *sweet
	return &copied, nil
}

func (g *shopGateway) UpdateSweet(_ context.Context, id string, draft domain.SweetDraft) (*domain.Sweet, error) {
	sweet := g.find(id)
	if sweet == nil {
		return nil, domain.ErrNotFound
	}
	sweet.Name = draft.Name
	sweet.Category = draft.Category
	sweet.Price = draft.Price
	sweet.Quantity = draft.Quantity
	copied := *sweet
	return &copied, nil
}

func (g *shopGateway) DeleteSweet(_ context.Context, id string) error {
	for i, s := range g.sweets {
		if s.ID == id {
			g.sweets = append(g.sweets[:i], g.sweets[i+1:]...)
			return nil
		}
	}
	return domain.ErrNotFound
}

func (g *shopGateway) PurchaseSweet(_ context.Context, id string) error {
	sweet := g.find(id)
	if sweet == nil {
		return domain.ErrNotFound
	}
	if sweet.Quantity == 0 {
		return domain.ErrOutOfStock
	}
	sweet.Quantity--
	return nil
}

func (g *shopGateway) RestockSweet(_ context.Context, id string, amount int) error {
	sweet := g.find(id)
	if sweet == nil {
		return domain.ErrNotFound
	}
	sweet.Quantity += amount
	return nil
}

func (g *shopGateway) Login(_ context.Context, email, _ string) (*domain.AuthResult, error) {
	return &domain.AuthResult{
		Token: "shop-token",
		User:  domain.User{ID: "u1", Email: email, Role: domain.RoleAdmin},
	}, nil
}

func (g *shopGateway) Register(context.Context, string, string) error { return nil }

func findView(t *testing.T, view *controller.Controller, name string) domain.Sweet {
	t.Helper()
	for _, s := range view.Snapshot().Sweets {
		if s.Name == name {
			return s
		}
	}
	t.Fatalf("sweet %q not in snapshot", name)
	return domain.Sweet{}
}

func TestTruffleLifecycle(t *testing.T) {
	gw := &shopGateway{}
	logger := testLogger()
	sess := session.NewStore(session.NewMemoryCredentialStore(), logger)
	view := controller.NewController(gw, sess, logger)
	flows := workflow.New(gw, view, sess, logger)
	ctx := context.Background()

	_, err := flows.Login(ctx, "admin@shop.test", "secret")
	require.NoError(t, err)

	// A freshly created sweet shows up in the next reload, fully stocked.
	require.NoError(t, flows.SaveSweet(ctx, domain.SweetDraft{
		Name: "Truffle", Category: "Chocolate", Price: "2.50", Quantity: 10,
	}))
	truffle := findView(t, view, "Truffle")
	assert.Equal(t, 10, truffle.Quantity)
	assert.Equal(t, "2.50", truffle.Price)
	assert.Equal(t, domain.InStock, domain.StockStatusOf(truffle.Quantity))

	// Six purchases bring it down to 4: low stock, still purchasable.
	for i := 0; i < 6; i++ {
		require.NoError(t, flows.PurchaseSweet(ctx, truffle.ID))
	}
	truffle = findView(t, view, "Truffle")
	assert.Equal(t, 4, truffle.Quantity)
	assert.Equal(t, domain.LowStock, domain.StockStatusOf(truffle.Quantity))
	assert.True(t, truffle.Purchasable())

	// Four more empty the shelf.
	for i := 0; i < 4; i++ {
		require.NoError(t, flows.PurchaseSweet(ctx, truffle.ID))
	}
	truffle = findView(t, view, "Truffle")
	assert.Equal(t, 0, truffle.Quantity)
	assert.Equal(t, domain.OutOfStock, domain.StockStatusOf(truffle.Quantity))
	assert.False(t, truffle.Purchasable(), "the purchase affordance must be disabled at zero")

	// The eleventh attempt through the workflow is refused before any call.
	err = flows.PurchaseSweet(ctx, truffle.ID)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)

	// Even bypassing the client-side gate, the server refuses and the
	// quantity stays at zero: authorization and stock live server-side.
	err = gw.PurchaseSweet(ctx, truffle.ID)
	assert.ErrorIs(t, err, domain.ErrOutOfStock)
	assert.Equal(t, 0, gw.find(truffle.ID).Quantity)

	// Restocking brings it back.
	require.NoError(t, flows.RestockSweet(ctx, truffle.ID, "8"))
	truffle = findView(t, view, "Truffle")
	assert.Equal(t, 8, truffle.Quantity)
	assert.Equal(t, domain.InStock, domain.StockStatusOf(truffle.Quantity))

	// Search is answered by the backend, not by filtering the snapshot.
	require.NoError(t, flows.SaveSweet(ctx, domain.SweetDraft{
		Name: "Gum Drops", Category: "Gummy", Price: "1.20", Quantity: 7,
	}))
	view.SetSearch(ctx, "gum")
	snapshot := view.Snapshot()
	require.Len(t, snapshot.Sweets, 1)
	assert.Equal(t, "Gum Drops", snapshot.Sweets[0].Name)

	// Deleting while a search is active reloads the same search.
	require.NoError(t, flows.DeleteSweet(ctx, snapshot.Sweets[0].ID, true))
	assert.Empty(t, view.Snapshot().Sweets)
	assert.Equal(t, "gum", view.Snapshot().Term)
}
