package cart

import (
	"testing"
	"time"

	"github.com/twillco/storefront/pkg/catalog"
)

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestAdd_AssignsIncreasingIDs(t *testing.T) {
	c := New()
	c.now = fixedClock(time.UnixMilli(1700000000000))

	a := c.Add(Item{Product: catalog.TShirt, Price: 1999, Quantity: 1})
	b := c.Add(Item{Product: catalog.TShirt, Price: 1999, Quantity: 1})

	if a.ID != 1700000000000 {
		t.Errorf("Expected timestamp id, got %d", a.ID)
	}
	if b.ID <= a.ID {
		t.Errorf("Expected increasing ids, got %d then %d", a.ID, b.ID)
	}
}

func TestAdd_ComputesTotal(t *testing.T) {
	c := New()

	item := c.Add(Item{Product: catalog.Hoodie, Price: 3499, Quantity: 2})

	if item.Total != 6998 {
		t.Errorf("Expected total 6998, got %d", item.Total)
	}
	if c.Total() != 6998 {
		t.Errorf("Expected cart total 6998, got %d", c.Total())
	}
	if c.Count() != 2 {
		t.Errorf("Expected count 2, got %d", c.Count())
	}
}

func TestAdd_CoercesQuantity(t *testing.T) {
	c := New()

	item := c.Add(Item{Product: catalog.Tank, Price: 1699, Quantity: 0})

	if item.Quantity != 1 || item.Total != 1699 {
		t.Errorf("Expected quantity 1 total 1699, got %d / %d", item.Quantity, item.Total)
	}

	big := c.Add(Item{Product: catalog.Tank, Price: 1699, Quantity: 6236781434466533170})
	if big.Quantity != catalog.MaxQuantity || big.Total != 1699*catalog.MaxQuantity {
		t.Errorf("Expected quantity clamped to %d, got %d / %d", catalog.MaxQuantity, big.Quantity, big.Total)
	}
}

func TestRemove(t *testing.T) {
	c := New()
	a := c.Add(Item{Product: catalog.TShirt, Price: 1999, Quantity: 1})
	b := c.Add(Item{Product: catalog.Hoodie, Price: 3499, Quantity: 1})

	if !c.Remove(a.ID) {
		t.Fatal("Expected remove to succeed")
	}

	items := c.List()
	if len(items) != 1 || items[0].ID != b.ID {
		t.Errorf("Expected only the hoodie to remain, got %+v", items)
	}

	if c.Remove(a.ID) {
		t.Error("Expected second remove of the same id to be a no-op")
	}
	if c.Remove(12345) {
		t.Error("Expected remove of unknown id to be a no-op")
	}
	if c.Len() != 1 {
		t.Errorf("Expected 1 line, got %d", c.Len())
	}
}

func TestListPreservesOrderAndIsACopy(t *testing.T) {
	c := New()
	c.Add(Item{Product: catalog.TShirt, Price: 1999, Quantity: 1})
	c.Add(Item{Product: catalog.Sweatshirt, Price: 2999, Quantity: 3})
	c.Add(Item{Product: catalog.Tank, Price: 1699, Quantity: 1})

	items := c.List()
	want := []catalog.ProductType{catalog.TShirt, catalog.Sweatshirt, catalog.Tank}
	for i, p := range want {
		if items[i].Product != p {
			t.Errorf("items[%d] = %s, want %s", i, items[i].Product, p)
		}
	}

	items[0].Quantity = 99
	if c.List()[0].Quantity != 1 {
		t.Error("Expected List to return a copy")
	}

	if c.Total() != 1999+3*2999+1699 {
		t.Errorf("Unexpected total %d", c.Total())
	}
	if c.Count() != 5 {
		t.Errorf("Expected count 5, got %d", c.Count())
	}
}

func TestClear(t *testing.T) {
	c := New()
	c.Add(Item{Product: catalog.TShirt, Price: 1999, Quantity: 1})

	c.Clear()

	if c.Len() != 0 || c.Total() != 0 || c.Count() != 0 {
		t.Errorf("Expected empty cart, got len=%d total=%d count=%d", c.Len(), c.Total(), c.Count())
	}
}

func TestEmptyCart(t *testing.T) {
	c := New()

	if c.Total() != 0 {
		t.Errorf("Expected 0 total, got %d", c.Total())
	}
	if got := catalog.FormatUSD(c.Total()); got != "$0.00" {
		t.Errorf("Expected $0.00, got %s", got)
	}
	if len(c.List()) != 0 {
		t.Error("Expected no items")
	}
}
