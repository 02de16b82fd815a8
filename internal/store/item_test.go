package store

import (
	"testing"

	"github.com/dstrobel/einkauf/internal/database"
)

func setupItemTestDB(t *testing.T) *ItemStore {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		t.Fatalf("enable foreign keys: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewItemStore(db)
}

func strptr(s string) *string { return &s }

func TestCreateDefaults(t *testing.T) {
	s := setupItemTestDB(t)

	item, err := s.Create(CreateItemParams{Name: "Milch", Creator: strptr("Daniel")})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Name != "Milch" {
		t.Errorf("name = %q, want %q", item.Name, "Milch")
	}
	if item.Amount != 1 {
		t.Errorf("amount = %d, want default 1", item.Amount)
	}
	if item.Price != "0.0" {
		t.Errorf("price = %q, want default %q", item.Price, "0.0")
	}
	if !item.OnList {
		t.Error("new items must start on the active list")
	}
	if !item.IsOpen {
		t.Error("item_is_open should be written at creation")
	}
	if item.AddedAt == nil {
		t.Error("added_at should be stamped at creation")
	}
	if item.Creator == nil || *item.Creator != "Daniel" {
		t.Errorf("creator = %v, want Daniel", item.Creator)
	}
}

func TestCreateFullMetadata(t *testing.T) {
	s := setupItemTestDB(t)

	item, err := s.Create(CreateItemParams{
		Name:         "Käse 500g",
		Price:        "2.50",
		Amount:       3,
		Comment:      "der milde",
		OnWeeklyList: true,
		Supermarket:  strptr("Rewe"),
		Creator:      strptr("Anna"),
	})
	if err != nil {
		t.Fatalf("create item: %v", err)
	}
	if item.Price != "2.50" {
		t.Errorf("price = %q, want %q", item.Price, "2.50")
	}
	if item.Amount != 3 {
		t.Errorf("amount = %d, want 3", item.Amount)
	}
	if !item.OnWeeklyList {
		t.Error("weekly flag not stored")
	}
	if item.Supermarket == nil || *item.Supermarket != "Rewe" {
		t.Errorf("supermarket = %v, want Rewe", item.Supermarket)
	}
	if item.Comment != "der milde" {
		t.Errorf("comment = %q", item.Comment)
	}
}

func TestUpdateWritesDraftAtomically(t *testing.T) {
	s := setupItemTestDB(t)

	item, _ := s.Create(CreateItemParams{Name: "Brot"})
	updated, err := s.Update(item.ID, UpdateItemParams{
		Name:         "Vollkornbrot",
		Price:        "3.49",
		Comment:      "vom Bäcker",
		OnWeeklyList: true,
		Supermarket:  strptr("Edeka"),
	})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Name != "Vollkornbrot" || updated.Price != "3.49" || updated.Comment != "vom Bäcker" {
		t.Errorf("update did not apply all fields: %+v", updated)
	}
	if updated.Supermarket == nil || *updated.Supermarket != "Edeka" {
		t.Errorf("supermarket = %v, want Edeka", updated.Supermarket)
	}

	// nil supermarket serializes as NULL
	updated, err = s.Update(item.ID, UpdateItemParams{Name: "Vollkornbrot"})
	if err != nil {
		t.Fatalf("update item: %v", err)
	}
	if updated.Supermarket != nil {
		t.Errorf("supermarket = %v, want nil", *updated.Supermarket)
	}
}

func TestChangeAmountClampsAtZero(t *testing.T) {
	s := setupItemTestDB(t)

	item, _ := s.Create(CreateItemParams{Name: "Eier", Amount: 2})

	got, err := s.ChangeAmount(item.ID, -5)
	if err != nil {
		t.Fatalf("change amount: %v", err)
	}
	if got.Amount != 0 {
		t.Errorf("amount = %d, want 0 (clamped, not -3)", got.Amount)
	}

	// 0 is a valid stored value and the item stays on the list
	if !got.OnList {
		t.Error("zero amount must not remove the item from the list")
	}

	got, err = s.ChangeAmount(item.ID, 1)
	if err != nil {
		t.Fatalf("change amount: %v", err)
	}
	if got.Amount != 1 {
		t.Errorf("amount = %d, want 1", got.Amount)
	}
}

func TestChangeAmountNotFound(t *testing.T) {
	s := setupItemTestDB(t)

	got, err := s.ChangeAmount(9999, 1)
	if err != nil {
		t.Fatalf("change amount: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent item")
	}
}

func TestSetOnListPairsTimestampAndCreator(t *testing.T) {
	s := setupItemTestDB(t)

	item, _ := s.Create(CreateItemParams{Name: "Butter", Creator: strptr("Anna")})

	// Remove clears both together
	off, err := s.SetOnList(item.ID, false, nil)
	if err != nil {
		t.Fatalf("set off list: %v", err)
	}
	if off.OnList {
		t.Error("expected item off the list")
	}
	if off.AddedAt != nil {
		t.Errorf("added_at = %v, want nil after removal", *off.AddedAt)
	}
	if off.Creator != nil {
		t.Errorf("creator = %v, want nil after removal", *off.Creator)
	}

	// Re-add sets both together
	on, err := s.SetOnList(item.ID, true, strptr("Daniel"))
	if err != nil {
		t.Fatalf("set on list: %v", err)
	}
	if !on.OnList {
		t.Error("expected item on the list")
	}
	if on.AddedAt == nil {
		t.Error("added_at should be stamped on re-add")
	}
	if on.Creator == nil || *on.Creator != "Daniel" {
		t.Errorf("creator = %v, want Daniel", on.Creator)
	}
}

func TestListOnListFiltersByMembership(t *testing.T) {
	s := setupItemTestDB(t)

	a, _ := s.Create(CreateItemParams{Name: "Milch"})
	s.Create(CreateItemParams{Name: "Käse"})
	s.SetOnList(a.ID, false, nil)

	all, err := s.ListAll()
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 catalog items, got %d", len(all))
	}

	active, err := s.ListOnList()
	if err != nil {
		t.Fatalf("list on list: %v", err)
	}
	if len(active) != 1 {
		t.Fatalf("expected 1 active item, got %d", len(active))
	}
	if active[0].Name != "Käse" {
		t.Errorf("active item = %q, want Käse", active[0].Name)
	}
}

func TestDeleteIsPhysical(t *testing.T) {
	s := setupItemTestDB(t)

	item, _ := s.Create(CreateItemParams{Name: "Milch"})
	if err := s.Delete(item.ID); err != nil {
		t.Fatalf("delete item: %v", err)
	}

	got, err := s.GetByID(item.ID)
	if err != nil {
		t.Fatalf("get deleted item: %v", err)
	}
	if got != nil {
		t.Error("expected nil for deleted item")
	}
}

func TestDistinctSupermarkets(t *testing.T) {
	s := setupItemTestDB(t)

	s.Create(CreateItemParams{Name: "a", Supermarket: strptr("Rewe")})
	s.Create(CreateItemParams{Name: "b", Supermarket: strptr(" Aldi ")})
	s.Create(CreateItemParams{Name: "c", Supermarket: strptr("Rewe")})
	s.Create(CreateItemParams{Name: "d", Supermarket: strptr("  ")})
	s.Create(CreateItemParams{Name: "e"})

	names, err := s.DistinctSupermarkets()
	if err != nil {
		t.Fatalf("distinct supermarkets: %v", err)
	}
	want := []string{"Aldi", "Rewe"}
	if len(names) != len(want) {
		t.Fatalf("names = %v, want %v", names, want)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Errorf("names[%d] = %q, want %q", i, names[i], want[i])
		}
	}
}

func TestGetByIDNotFound(t *testing.T) {
	s := setupItemTestDB(t)

	got, err := s.GetByID(9999)
	if err != nil {
		t.Fatalf("get item: %v", err)
	}
	if got != nil {
		t.Error("expected nil for nonexistent item")
	}
}
