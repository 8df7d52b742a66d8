package models

import "testing"

func TestCatalog(t *testing.T) {
	t.Parallel()

	c := NewCatalog([]MenuItem{
		{ID: "b", Name: "Biryani", Price: 250, Stock: 1},
		{ID: "a", Name: "Chai", Price: 100, Stock: 5},
		{ID: "b", Name: "Biryani", Price: 260, Stock: 2},
	})

	if c.Len() != 2 {
		t.Fatalf("expected 2 items, got %d", c.Len())
	}
	items := c.Items()
	if items[0].ID != "b" || items[1].ID != "a" {
		t.Fatalf("expected original order, got %+v", items)
	}
	if it, _ := c.Lookup("b"); it.Price != 260 {
		t.Fatalf("expected last duplicate to win, got %+v", it)
	}
	if c.Stock("missing") != 0 {
		t.Fatal("expected zero stock for unknown item")
	}
}

func TestOrderCloneIsDeep(t *testing.T) {
	t.Parallel()

	o := Order{ID: "o-1", Items: []OrderItem{{ItemID: "a", Status: ItemPending}}}
	c := o.Clone()
	c.Items[0].Status = ItemReady

	if o.Items[0].Status != ItemPending {
		t.Fatal("clone shares items with original")
	}
}
