package handler

import (
	"fmt"
	"html/template"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/dstrobel/einkauf/internal/auth"
	"github.com/dstrobel/einkauf/internal/bus"
	"github.com/dstrobel/einkauf/internal/dateutil"
	"github.com/dstrobel/einkauf/internal/list"
	"github.com/dstrobel/einkauf/internal/model"
	"github.com/dstrobel/einkauf/internal/store"
)

// TemplateHandler renders the page and the HTMX partials. Views never hold
// state between requests: each partial is computed fresh from the store, and
// a change signal on the websocket makes every mounted view refetch its
// partial. A failed load returns an error status so HTMX leaves the previous
// content in place.
type TemplateHandler struct {
	items     *store.ItemStore
	bus       *bus.Bus
	templates *template.Template
	logger    *slog.Logger
}

func NewTemplateHandler(is *store.ItemStore, b *bus.Bus, logger *slog.Logger) *TemplateHandler {
	tmpl := template.Must(template.ParseGlob("web/templates/*.html"))
	return &TemplateHandler{
		items:     is,
		bus:       b,
		templates: tmpl,
		logger:    logger.With("component", "templates"),
	}
}

// itemView decorates a catalog row with display-ready fields.
type itemView struct {
	model.Item
	AddedDisplay string
	Creator      string
	Color        string
	UnitPrice    string
	LineTotal    string
}

type listData struct {
	Items []itemView
	Count int
	Total string
	Sort  string
}

type catalogData struct {
	Items []itemView
	Query string
}

// formData carries the creation form through its states: the bare input,
// the duplicate hint, the expanded sub-form, and the error banner.
type formData struct {
	Name         string
	Price        string
	Amount       int
	Comment      string
	OnWeeklyList bool
	Supermarket  string
	Supermarkets []string
	Match        *model.Item
	MatchOnList  bool
	Error        string
}

// editData carries the detail editor's draft plus the supermarket
// suggestions. The draft is independent of the stored row until saved.
type editData struct {
	Item         itemView
	Name         string
	Price        string
	Comment      string
	OnWeeklyList bool
	Supermarket  string
	Supermarkets []string
	Error        string
}

func toView(it model.Item, colors map[string]string) itemView {
	v := itemView{
		Item:         it,
		AddedDisplay: dateutil.Format(it.AddedAt),
		UnitPrice:    list.FormatPrice(list.ParsePrice(it.Price)),
		LineTotal:    list.FormatPrice(list.ParsePrice(it.Price) * float64(it.Amount)),
	}
	if it.Creator != nil {
		v.Creator = *it.Creator
	}
	if it.Supermarket != nil {
		v.Color = colors[strings.TrimSpace(*it.Supermarket)]
	}
	return v
}

func toViews(items []model.Item, colors map[string]string) []itemView {
	out := make([]itemView, 0, len(items))
	for _, it := range items {
		out = append(out, toView(it, colors))
	}
	return out
}

// Page renders the full application shell. The list and catalog sections
// load themselves via HTMX on mount.
func (h *TemplateHandler) Page(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}

	data := map[string]any{
		"Title": "Einkaufszettel",
		"User":  auth.Name(r.Context()),
	}
	h.render(w, "layout.html", data)
}

// ShoppingList renders the active list: on-list items under the requested
// sort key, with count, two-decimal total, and per-supermarket colors.
func (h *TemplateHandler) ShoppingList(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListOnList()
	if err != nil {
		h.logger.Error("load shopping list", "error", err)
		http.Error(w, "failed to load list", http.StatusInternalServerError)
		return
	}

	key := list.SortKey(r.URL.Query().Get("sort"))
	sorted := list.Sort(items, key)
	colors := list.StoreColors(items)

	h.renderPartial(w, "shopping-list", listData{
		Items: toViews(sorted, colors),
		Count: len(sorted),
		Total: list.FormatPrice(list.Total(sorted)),
		Sort:  string(key),
	})
}

// Catalog renders all items filtered by the search term. A blank term shows
// the full catalog.
func (h *TemplateHandler) Catalog(w http.ResponseWriter, r *http.Request) {
	items, err := h.items.ListAll()
	if err != nil {
		h.logger.Error("load catalog", "error", err)
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	query := r.URL.Query().Get("q")
	filtered := list.Filter(items, query)

	h.renderPartial(w, "item-catalog", catalogData{
		Items: toViews(filtered, nil),
		Query: query,
	})
}

// CatalogRows renders only the catalog's row list. The search box and the
// change-signal refetch both swap this fragment, so the input keeps focus and
// the typed term survives.
func (h *TemplateHandler) CatalogRows(w http.ResponseWriter, r *http.Request) {
	h.renderRows(w, r.URL.Query().Get("q"))
}

func (h *TemplateHandler) renderRows(w http.ResponseWriter, query string) {
	items, err := h.items.ListAll()
	if err != nil {
		h.logger.Error("load catalog", "error", err)
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	h.renderPartial(w, "catalog-items", catalogData{
		Items: toViews(list.Filter(items, query), nil),
		Query: query,
	})
}

// SupermarketOptions renders the suggestion datalist's options. The open
// creation sub-form refreshes only this fragment on a change signal, so the
// typed fields stay untouched.
func (h *TemplateHandler) SupermarketOptions(w http.ResponseWriter, r *http.Request) {
	names, err := h.items.DistinctSupermarkets()
	if err != nil {
		h.logger.Error("load supermarkets", "error", err)
		http.Error(w, "failed to load supermarkets", http.StatusInternalServerError)
		return
	}
	h.renderPartial(w, "supermarket-options", names)
}

// CreateForm renders the creation form in its idle state.
func (h *TemplateHandler) CreateForm(w http.ResponseWriter, r *http.Request) {
	h.renderPartial(w, "item-form", formData{Amount: 1})
}

// CheckName drives the creation form's lookup step. An empty name is a
// validation error before any store call; an exact case-insensitive match
// shows a hint instead of a sub-form; otherwise the expanded sub-form opens
// with the supermarket suggestions.
func (h *TemplateHandler) CheckName(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	name := strings.TrimSpace(r.FormValue("item_name"))
	if name == "" {
		h.renderPartial(w, "item-form", formData{
			Amount: 1,
			Error:  "Ein Name muss eingetragen werden",
		})
		return
	}

	items, err := h.items.ListAll()
	if err != nil {
		h.logger.Error("check name", "error", err)
		http.Error(w, "failed to check name", http.StatusInternalServerError)
		return
	}

	if match := list.ExactMatch(items, name); match != nil {
		h.renderPartial(w, "item-form", formData{
			Name:        name,
			Amount:      1,
			Match:       match,
			MatchOnList: match.OnList,
		})
		return
	}

	supermarkets, err := h.items.DistinctSupermarkets()
	if err != nil {
		h.logger.Error("load supermarkets", "error", err)
		http.Error(w, "failed to load supermarkets", http.StatusInternalServerError)
		return
	}

	h.renderPartial(w, "item-create-form", formData{
		Name:         name,
		Amount:       1,
		Supermarkets: supermarkets,
	})
}

// CreateCommit inserts the new item from the expanded sub-form. Success
// publishes the change signal and resets the form; failure keeps the entered
// values with an error banner.
func (h *TemplateHandler) CreateCommit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	f := formFromRequest(r)
	if f.Name == "" {
		h.renderPartial(w, "item-form", formData{
			Amount: 1,
			Error:  "Ein Name muss eingetragen werden",
		})
		return
	}

	items, err := h.items.ListAll()
	if err != nil {
		h.logger.Error("create commit lookup", "error", err)
		h.renderCreateError(w, f, "Der Artikel konnte nicht angelegt werden")
		return
	}
	if match := list.ExactMatch(items, f.Name); match != nil {
		f.Match = match
		f.MatchOnList = match.OnList
		h.renderPartial(w, "item-form", f)
		return
	}

	ac, _ := auth.FromContext(r.Context())
	var userID *int64
	var creator *string
	if ac.UserID != 0 {
		userID = &ac.UserID
		creator = &ac.Name
	}
	var supermarket *string
	if f.Supermarket != "" {
		supermarket = &f.Supermarket
	}

	if _, err := h.items.Create(store.CreateItemParams{
		UserID:       userID,
		Name:         f.Name,
		Price:        f.Price,
		Amount:       f.Amount,
		Comment:      f.Comment,
		OnWeeklyList: f.OnWeeklyList,
		Supermarket:  supermarket,
		Creator:      creator,
	}); err != nil {
		h.logger.Error("create item", "error", err)
		h.renderCreateError(w, f, "Der Artikel konnte nicht angelegt werden")
		return
	}

	h.bus.Publish()
	h.renderPartial(w, "item-form", formData{Amount: 1})
}

func (h *TemplateHandler) renderCreateError(w http.ResponseWriter, f formData, msg string) {
	supermarkets, err := h.items.DistinctSupermarkets()
	if err == nil {
		f.Supermarkets = supermarkets
	}
	f.Error = msg
	h.renderPartial(w, "item-create-form", f)
}

func formFromRequest(r *http.Request) formData {
	amount := 1
	if v := r.FormValue("item_amount"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			amount = n
		}
	}
	return formData{
		Name:         strings.TrimSpace(r.FormValue("item_name")),
		Price:        strings.TrimSpace(r.FormValue("item_price")),
		Amount:       amount,
		Comment:      strings.TrimSpace(r.FormValue("item_comment")),
		OnWeeklyList: r.FormValue("item_on_weekly_list") == "on",
		Supermarket:  strings.TrimSpace(r.FormValue("supermarket")),
	}
}

// Detail renders the modal in its viewing state.
func (h *TemplateHandler) Detail(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}
	h.renderPartial(w, "item-detail", toView(*item, nil))
}

// EditForm renders the modal's edit state: a draft seeded from the stored
// row, independent of it until saved.
func (h *TemplateHandler) EditForm(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	supermarkets, err := h.items.DistinctSupermarkets()
	if err != nil {
		h.logger.Error("load supermarkets", "error", err)
		http.Error(w, "failed to load supermarkets", http.StatusInternalServerError)
		return
	}

	d := editData{
		Item:         toView(*item, nil),
		Name:         item.Name,
		Price:        item.Price,
		Comment:      item.Comment,
		OnWeeklyList: item.OnWeeklyList,
		Supermarkets: supermarkets,
	}
	if item.Supermarket != nil {
		d.Supermarket = *item.Supermarket
	}
	h.renderPartial(w, "item-edit", d)
}

// Save writes the draft as one atomic update and returns to the viewing
// state. A failed save keeps the draft on screen with an error banner.
func (h *TemplateHandler) Save(w http.ResponseWriter, r *http.Request) {
	item, ok := h.loadItem(w, r)
	if !ok {
		return
	}

	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form data", http.StatusBadRequest)
		return
	}

	f := formFromRequest(r)
	draft := editData{
		Item:         toView(*item, nil),
		Name:         f.Name,
		Price:        f.Price,
		Comment:      f.Comment,
		OnWeeklyList: f.OnWeeklyList,
		Supermarket:  f.Supermarket,
	}

	if f.Name == "" {
		draft.Error = "Ein Name muss eingetragen werden"
		h.renderEditError(w, draft)
		return
	}

	var supermarket *string
	if f.Supermarket != "" {
		supermarket = &f.Supermarket
	}

	updated, err := h.items.Update(item.ID, store.UpdateItemParams{
		Name:         f.Name,
		Price:        f.Price,
		Comment:      f.Comment,
		OnWeeklyList: f.OnWeeklyList,
		Supermarket:  supermarket,
	})
	if err != nil {
		h.logger.Error("save item", "error", err)
		draft.Error = "Die Änderungen konnten nicht gespeichert werden"
		h.renderEditError(w, draft)
		return
	}

	h.bus.Publish()
	h.renderPartial(w, "item-detail", toView(*updated, nil))
}

func (h *TemplateHandler) renderEditError(w http.ResponseWriter, d editData) {
	if supermarkets, err := h.items.DistinctSupermarkets(); err == nil {
		d.Supermarkets = supermarkets
	}
	h.renderPartial(w, "item-edit", d)
}

// ChangeAmount applies a stepper click. The stepper persists immediately and
// is independent of the viewing/editing toggle: the response swaps only the
// amount control (plus the line total out of band), so an open edit draft is
// untouched. The fragment carries the clamped, authoritative value.
func (h *TemplateHandler) ChangeAmount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	delta, err := strconv.Atoi(r.FormValue("delta"))
	if err != nil {
		http.Error(w, "invalid delta", http.StatusBadRequest)
		return
	}

	item, err := h.items.ChangeAmount(id, delta)
	if err != nil {
		h.logger.Error("change amount", "error", err)
		http.Error(w, "failed to change amount", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	h.bus.Publish()
	h.renderPartial(w, "item-amount-update", toView(*item, nil))
}

// AddToList flips a catalog item onto the active list, stamping added_at and
// item_creator together, and re-renders the catalog rows.
func (h *TemplateHandler) AddToList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	name := auth.Name(r.Context())
	var creator *string
	if name != "" {
		creator = &name
	}

	item, err := h.items.SetOnList(id, true, creator)
	if err != nil {
		h.logger.Error("add to list", "error", err)
		http.Error(w, "failed to add item", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	h.bus.Publish()
	h.renderRows(w, r.URL.Query().Get("q"))
}

// RemoveFromList takes the item off the list, clearing added_at and
// item_creator together, and re-renders the catalog rows. The row toggle and
// the modal's remove action both land here.
func (h *TemplateHandler) RemoveFromList(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	item, err := h.items.SetOnList(id, false, nil)
	if err != nil {
		h.logger.Error("remove from list", "error", err)
		http.Error(w, "failed to remove item", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return
	}

	h.bus.Publish()
	h.renderRows(w, r.URL.Query().Get("q"))
}

// Delete removes the item from the catalog entirely and closes the modal.
// The confirmation dialog happens client-side before the request is sent.
func (h *TemplateHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return
	}

	if err := h.items.Delete(id); err != nil {
		h.logger.Error("delete item", "error", err)
		http.Error(w, "failed to delete item", http.StatusInternalServerError)
		return
	}

	h.bus.Publish()
	w.WriteHeader(http.StatusOK)
}

func (h *TemplateHandler) loadItem(w http.ResponseWriter, r *http.Request) (*model.Item, bool) {
	id, err := parseIDParam(r)
	if err != nil {
		http.Error(w, "invalid id", http.StatusBadRequest)
		return nil, false
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		h.logger.Error("get item", "error", err)
		http.Error(w, "failed to get item", http.StatusInternalServerError)
		return nil, false
	}
	if item == nil {
		http.Error(w, "item not found", http.StatusNotFound)
		return nil, false
	}
	return item, true
}

func (h *TemplateHandler) render(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		http.Error(w, "template error", http.StatusInternalServerError)
	}
}

func (h *TemplateHandler) renderPartial(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := h.templates.ExecuteTemplate(w, name, data); err != nil {
		h.logger.Error("template error", "template", name, "error", err)
		fmt.Fprint(w, `<div class="alert alert-error">Fehler beim Laden</div>`)
	}
}
