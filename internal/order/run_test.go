package order

import (
	"errors"
	"testing"

	"table-order/internal/xpkg/apperr"
)

func TestParseParams(t *testing.T) {
	t.Parallel()

	p, err := parseParams([]string{"--port", "8080", "--config-path", "x.yaml", "--seed-menu", "menu.yaml"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.orderParams.Port != 8080 || p.configPath != "x.yaml" || p.orderParams.SeedMenu != "menu.yaml" {
		t.Fatalf("unexpected params %+v %+v", p, p.orderParams)
	}

	if _, err := parseParams([]string{"--nope"}); !errors.Is(err, apperr.ErrParseCmd) {
		t.Fatalf("expected ErrParseCmd, got %v", err)
	}
}

func TestParseMenu(t *testing.T) {
	t.Parallel()

	items, err := parseMenu([]byte(`
items:
  - id: dosa
    name: Masala Dosa
    price: 120
    stock: 20
    category: South Indian
  - id: chai
    name: Masala Chai
    price: 30
    stock: 100
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(items) != 2 || items[0].Price != 120 || items[1].Stock != 100 {
		t.Fatalf("unexpected items %+v", items)
	}

	if _, err := parseMenu([]byte("items:\n  - id: x\n    name: X\n    price: -1\n")); err == nil {
		t.Fatal("expected negative price to be rejected")
	}
	if _, err := parseMenu([]byte("items:\n  - name: nameless\n")); err == nil {
		t.Fatal("expected missing id to be rejected")
	}
}
