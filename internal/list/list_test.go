package list

import (
	"testing"

	"github.com/dstrobel/einkauf/internal/model"
)

func item(name, price string, amount int) model.Item {
	return model.Item{Name: name, Price: price, Amount: amount}
}

func strptr(s string) *string { return &s }

func TestParsePrice(t *testing.T) {
	tests := []struct {
		in   string
		want float64
	}{
		{"2.50", 2.5},
		{"0.0", 0},
		{" 1.99 ", 1.99},
		{"", 0},
		{"abc", 0},
		{"1,99", 0}, // comma decimals are not parsed, they count as 0
	}
	for _, tt := range tests {
		if got := ParsePrice(tt.in); got != tt.want {
			t.Errorf("ParsePrice(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestTotal(t *testing.T) {
	items := []model.Item{
		item("Milch", "1.19", 2),
		item("Käse", "2.50", 3),
		item("Brot", "kost nix", 5), // non-numeric price contributes 0
		item("Eier", "", 1),
	}
	got := FormatPrice(Total(items))
	if got != "9.88" {
		t.Errorf("Total = %s, want 9.88", got)
	}
}

func TestTotalEmpty(t *testing.T) {
	if got := FormatPrice(Total(nil)); got != "0.00" {
		t.Errorf("Total(nil) = %s, want 0.00", got)
	}
}

func TestFilter(t *testing.T) {
	items := []model.Item{
		item("Milch", "", 1),
		item("Buttermilch", "", 1),
		item("Käse", "", 1),
	}

	got := Filter(items, "milch")
	if len(got) != 2 {
		t.Fatalf("Filter(milch) returned %d items, want 2", len(got))
	}

	if got := Filter(items, "MILCH"); len(got) != 2 {
		t.Errorf("Filter is not case-insensitive, got %d items", len(got))
	}

	if got := Filter(items, ""); len(got) != 3 {
		t.Errorf("empty term should return full set, got %d", len(got))
	}

	if got := Filter(items, "zzz"); len(got) != 0 {
		t.Errorf("Filter(zzz) = %d items, want 0", len(got))
	}
}

func TestExactMatch(t *testing.T) {
	items := []model.Item{item("milch", "", 1), item("Käse 500g", "", 1)}

	if got := ExactMatch(items, "Milch"); got == nil || got.Name != "milch" {
		t.Errorf("ExactMatch(Milch) = %v, want the existing milch row", got)
	}
	if got := ExactMatch(items, "  milch "); got == nil {
		t.Error("ExactMatch should trim the typed name")
	}
	if got := ExactMatch(items, "Mil"); got != nil {
		t.Errorf("substring is not an exact match, got %v", got)
	}
	if got := ExactMatch(items, "Quark"); got != nil {
		t.Errorf("ExactMatch(Quark) = %v, want nil", got)
	}
}

func TestSortByName(t *testing.T) {
	items := []model.Item{
		item("Zucker", "", 1),
		item("Äpfel", "", 1),
		item("apfelsaft", "", 1),
		item("Brot", "", 1),
	}

	sorted := Sort(items, SortName)
	// German collation treats ä like a, so the umlaut entries belong in the
	// a-block ahead of Brot and Zucker.
	if sorted[len(sorted)-1].Name != "Zucker" {
		t.Errorf("last item = %q, want Zucker", sorted[len(sorted)-1].Name)
	}
	if sorted[0].Name != "Äpfel" && sorted[0].Name != "apfelsaft" {
		t.Errorf("first item = %q, want one of the a-entries", sorted[0].Name)
	}
	pos := map[string]int{}
	for i, it := range sorted {
		pos[it.Name] = i
	}
	if pos["Äpfel"] > pos["Brot"] || pos["apfelsaft"] > pos["Brot"] {
		t.Errorf("umlaut entries should sort with the a-block, got %v", sorted)
	}
}

func TestSortBySupermarketTiesByName(t *testing.T) {
	items := []model.Item{
		{Name: "Milch", Supermarket: strptr("Rewe")},
		{Name: "Brot", Supermarket: strptr("Aldi")},
		{Name: "Käse", Supermarket: strptr("Rewe")},
		{Name: "Äpfel", Supermarket: strptr("Aldi")},
	}

	sorted := Sort(items, SortSupermarket)
	want := []string{"Äpfel", "Brot", "Käse", "Milch"}
	for i, name := range want {
		if sorted[i].Name != name {
			t.Errorf("sorted[%d] = %q, want %q (full order %v)", i, sorted[i].Name, name, sorted)
		}
	}
}

func TestSortByAddedNewestFirst(t *testing.T) {
	items := []model.Item{
		{Name: "alt", AddedAt: strptr("2024-01-01 10:00:00")},
		{Name: "ohne"}, // no timestamp sorts as epoch, i.e. last
		{Name: "neu", AddedAt: strptr("2024-06-01 10:00:00")},
	}

	sorted := Sort(items, SortAdded)
	want := []string{"neu", "alt", "ohne"}
	for i, name := range want {
		if sorted[i].Name != name {
			t.Errorf("sorted[%d] = %q, want %q", i, sorted[i].Name, name)
		}
	}
}

func TestSortNoneKeepsInsertionOrder(t *testing.T) {
	items := []model.Item{item("b", "", 1), item("a", "", 1)}
	sorted := Sort(items, SortNone)
	if sorted[0].Name != "b" || sorted[1].Name != "a" {
		t.Errorf("SortNone reordered the slice: %v", sorted)
	}
}

func TestSortDoesNotMutateInput(t *testing.T) {
	items := []model.Item{item("b", "", 1), item("a", "", 1)}
	Sort(items, SortName)
	if items[0].Name != "b" {
		t.Error("Sort mutated its input slice")
	}
}
