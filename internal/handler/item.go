package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"

	"github.com/dstrobel/einkauf/internal/auth"
	"github.com/dstrobel/einkauf/internal/bus"
	"github.com/dstrobel/einkauf/internal/list"
	"github.com/dstrobel/einkauf/internal/model"
	"github.com/dstrobel/einkauf/internal/store"
)

// ItemHandler is the JSON surface over the catalog, mirroring the HTMX
// partials for non-HTML clients. Every successful mutation publishes a change
// signal so mounted views refetch.
type ItemHandler struct {
	items  *store.ItemStore
	bus    *bus.Bus
	logger *slog.Logger
}

func NewItemHandler(is *store.ItemStore, b *bus.Bus, logger *slog.Logger) *ItemHandler {
	return &ItemHandler{
		items:  is,
		bus:    b,
		logger: logger.With("component", "items"),
	}
}

type itemRequest struct {
	Name         string  `json:"item_name"`
	Price        string  `json:"item_price"`
	Amount       int     `json:"item_amount"`
	Comment      string  `json:"item_comment"`
	OnWeeklyList bool    `json:"item_on_weekly_list"`
	Supermarket  *string `json:"supermarket"`
}

func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	var items []model.Item
	var err error
	if r.URL.Query().Get("on_list") == "true" {
		items, err = h.items.ListOnList()
	} else {
		items, err = h.items.ListAll()
	}
	if err != nil {
		h.logger.Error("list items", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list items"})
		return
	}
	if items == nil {
		items = []model.Item{}
	}
	writeJSON(w, http.StatusOK, items)
}

func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	item, err := h.items.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}
	writeJSON(w, http.StatusOK, item)
}

// Create inserts a new catalog item. A name that already exists under
// case-insensitive comparison is rejected; the duplicate guard lives here and
// in the creation form, not in the schema.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	existing, err := h.items.ListAll()
	if err != nil {
		h.logger.Error("duplicate check", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to check for duplicates"})
		return
	}
	if match := list.ExactMatch(existing, req.Name); match != nil {
		writeJSON(w, http.StatusConflict, map[string]any{
			"error": "item already exists",
			"item":  match,
		})
		return
	}

	ac, _ := auth.FromContext(r.Context())
	var userID *int64
	var creator *string
	if ac.UserID != 0 {
		userID = &ac.UserID
		creator = &ac.Name
	}

	item, err := h.items.Create(store.CreateItemParams{
		UserID:       userID,
		Name:         req.Name,
		Price:        req.Price,
		Amount:       req.Amount,
		Comment:      req.Comment,
		OnWeeklyList: req.OnWeeklyList,
		Supermarket:  req.Supermarket,
		Creator:      creator,
	})
	if err != nil {
		h.logger.Error("create item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to create item"})
		return
	}

	h.bus.Publish()
	writeJSON(w, http.StatusCreated, item)
}

func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.items.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	var req itemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	req.Name = strings.TrimSpace(req.Name)
	if req.Name == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "name is required"})
		return
	}

	item, err := h.items.Update(id, store.UpdateItemParams{
		Name:         req.Name,
		Price:        req.Price,
		Comment:      req.Comment,
		OnWeeklyList: req.OnWeeklyList,
		Supermarket:  req.Supermarket,
	})
	if err != nil {
		h.logger.Error("update item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}

	h.bus.Publish()
	writeJSON(w, http.StatusOK, item)
}

// ChangeAmount applies a stepper delta. The response carries the
// authoritative row after the clamp, which may differ from what the client
// computed optimistically.
func (h *ItemHandler) ChangeAmount(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var req struct {
		Delta int `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid JSON"})
		return
	}

	item, err := h.items.ChangeAmount(id, req.Delta)
	if err != nil {
		h.logger.Error("change amount", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to change amount"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.bus.Publish()
	writeJSON(w, http.StatusOK, item)
}

// AddToList flips an existing catalog item onto the active list, stamping
// added_at and item_creator together.
func (h *ItemHandler) AddToList(w http.ResponseWriter, r *http.Request) {
	h.setOnList(w, r, true)
}

// RemoveFromList takes an item off the active list, clearing added_at and
// item_creator together.
func (h *ItemHandler) RemoveFromList(w http.ResponseWriter, r *http.Request) {
	h.setOnList(w, r, false)
}

func (h *ItemHandler) setOnList(w http.ResponseWriter, r *http.Request, on bool) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	var creator *string
	if on {
		if name := auth.Name(r.Context()); name != "" {
			creator = &name
		}
	}

	item, err := h.items.SetOnList(id, on, creator)
	if err != nil {
		h.logger.Error("set on list", "error", err, "on", on)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to update item"})
		return
	}
	if item == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	h.bus.Publish()
	writeJSON(w, http.StatusOK, item)
}

func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := parseIDParam(r)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid id"})
		return
	}

	existing, err := h.items.GetByID(id)
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to get item"})
		return
	}
	if existing == nil {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "item not found"})
		return
	}

	if err := h.items.Delete(id); err != nil {
		h.logger.Error("delete item", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to delete item"})
		return
	}

	h.bus.Publish()
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) Supermarkets(w http.ResponseWriter, r *http.Request) {
	names, err := h.items.DistinctSupermarkets()
	if err != nil {
		h.logger.Error("list supermarkets", "error", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to list supermarkets"})
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, names)
}
