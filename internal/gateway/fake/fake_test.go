package fake

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totem-kiosk/internal/domain"
	"totem-kiosk/internal/gateway"
)

func TestSequentialDisplayIDs(t *testing.T) {
	g := New(domain.Menu{}, nil)
	for _, want := range []string{"001", "002"} {
		receipt, err := g.CreateOrder(context.Background(), gateway.OrderRequest{LocalID: "o-" + want})
		require.NoError(t, err)
		assert.Equal(t, want, receipt.DisplayID)
	}
	assert.Len(t, g.Orders(), 2)
}

func TestFailNext(t *testing.T) {
	g := New(domain.Menu{}, nil)
	boom := errors.New("boom")
	g.FailNext(1, boom)

	_, err := g.CreateOrder(context.Background(), gateway.OrderRequest{LocalID: "a"})
	assert.ErrorIs(t, err, boom)
	assert.Empty(t, g.Orders())

	receipt, err := g.CreateOrder(context.Background(), gateway.OrderRequest{LocalID: "b"})
	require.NoError(t, err)
	assert.Equal(t, "001", receipt.DisplayID)
}

func TestFailNextDefaultsToGatewayError(t *testing.T) {
	g := New(domain.Menu{}, nil)
	g.FailNext(1, nil)
	_, err := g.CreateOrder(context.Background(), gateway.OrderRequest{})
	var gwErr *domain.GatewayError
	assert.ErrorAs(t, err, &gwErr)
}

func TestSeedMenuWhenEmpty(t *testing.T) {
	menu, err := New(domain.Menu{}, nil).GetMenu(context.Background())
	require.NoError(t, err)
	_, ok := menu.Product("x-burger")
	assert.True(t, ok)
}

func TestFromCSV(t *testing.T) {
	path := filepath.Join(t.TempDir(), "menu.csv")
	data := "product.id,product.name,product.price,category.id\nmisto,Misto Quente,9.90,snacks\n"
	require.NoError(t, os.WriteFile(path, []byte(data), 0o600))

	g, err := FromCSV(context.Background(), path, nil)
	require.NoError(t, err)
	menu, err := g.GetMenu(context.Background())
	require.NoError(t, err)
	require.Len(t, menu.Products, 1)
	assert.Equal(t, "Misto Quente", menu.Products[0].Name)
	assert.Equal(t, "snacks", menu.Categories[0].ID)

	_, err = FromCSV(context.Background(), filepath.Join(t.TempDir(), "missing.csv"), nil)
	assert.Error(t, err)
}
