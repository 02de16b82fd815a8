package store

import (
	"database/sql"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dstrobel/einkauf/internal/dateutil"
	"github.com/dstrobel/einkauf/internal/model"
)

// ItemStore reads and writes the shared shopping catalog. Only id and
// item_on_list are used as filter columns; everything else is derived
// in memory by the views.
type ItemStore struct {
	db *sql.DB
}

func NewItemStore(db *sql.DB) *ItemStore {
	return &ItemStore{db: db}
}

func scanItem(scanner interface{ Scan(...any) error }) (*model.Item, error) {
	var item model.Item
	var userID sql.NullInt64
	var price, creator, supermarket, addedAt sql.NullString
	var onList, isOpen, onWeekly int

	err := scanner.Scan(
		&item.ID, &userID, &item.Name, &price, &item.Amount,
		&onList, &isOpen, &onWeekly, &item.Comment,
		&creator, &supermarket, &addedAt,
	)
	if err != nil {
		return nil, err
	}

	item.OnList = onList != 0
	item.IsOpen = isOpen != 0
	item.OnWeeklyList = onWeekly != 0
	if userID.Valid {
		item.UserID = &userID.Int64
	}
	if price.Valid {
		item.Price = price.String
	}
	if creator.Valid {
		item.Creator = &creator.String
	}
	if supermarket.Valid {
		item.Supermarket = &supermarket.String
	}
	if addedAt.Valid {
		item.AddedAt = &addedAt.String
	}
	return &item, nil
}

const itemCols = `id, user_id, item_name, item_price, item_amount, item_on_list, item_is_open, item_on_weekly_list, item_comment, item_creator, supermarket, added_at`

// ListAll returns the full catalog in insertion order.
func (s *ItemStore) ListAll() ([]model.Item, error) {
	return s.list(`SELECT ` + itemCols + ` FROM shopping_items ORDER BY id ASC`)
}

// ListOnList returns the items currently on the active shopping list, in
// insertion order.
func (s *ItemStore) ListOnList() ([]model.Item, error) {
	return s.list(`SELECT ` + itemCols + ` FROM shopping_items WHERE item_on_list = 1 ORDER BY id ASC`)
}

func (s *ItemStore) list(query string) ([]model.Item, error) {
	rows, err := s.db.Query(query)
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}
	defer rows.Close()

	var items []model.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (s *ItemStore) GetByID(id int64) (*model.Item, error) {
	row := s.db.QueryRow(`SELECT `+itemCols+` FROM shopping_items WHERE id = ?`, id)
	item, err := scanItem(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get item: %w", err)
	}
	return item, nil
}

// CreateItemParams carries the creation form's fields. Zero values get the
// form's defaults: Amount <= 0 becomes 1 and a blank Price becomes "0.0".
type CreateItemParams struct {
	UserID       *int64
	Name         string
	Price        string
	Amount       int
	Comment      string
	OnWeeklyList bool
	Supermarket  *string
	Creator      *string
}

// Create inserts a new catalog row. New items always start on the active
// list, with added_at stamped now and item_creator taken from the params.
// item_is_open is written for schema compatibility only.
func (s *ItemStore) Create(p CreateItemParams) (*model.Item, error) {
	if p.Amount <= 0 {
		p.Amount = 1
	}
	if strings.TrimSpace(p.Price) == "" {
		p.Price = "0.0"
	}

	result, err := s.db.Exec(
		`INSERT INTO shopping_items (user_id, item_name, item_price, item_amount, item_on_list, item_is_open, item_on_weekly_list, item_comment, item_creator, supermarket, added_at)
		 VALUES (?, ?, ?, ?, 1, 1, ?, ?, ?, ?, ?)`,
		nullInt64(p.UserID), p.Name, p.Price, p.Amount, p.OnWeeklyList,
		p.Comment, nullString(p.Creator), nullString(p.Supermarket), dateutil.Stamp(time.Now()),
	)
	if err != nil {
		return nil, fmt.Errorf("insert item: %w", err)
	}
	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}
	return s.GetByID(id)
}

// UpdateItemParams carries the detail editor's draft fields, written as one
// atomic update on save.
type UpdateItemParams struct {
	Name         string
	Price        string
	Comment      string
	OnWeeklyList bool
	Supermarket  *string
}

func (s *ItemStore) Update(id int64, p UpdateItemParams) (*model.Item, error) {
	_, err := s.db.Exec(
		`UPDATE shopping_items SET item_name = ?, item_price = ?, item_comment = ?, item_on_weekly_list = ?, supermarket = ? WHERE id = ?`,
		p.Name, p.Price, p.Comment, p.OnWeeklyList, nullString(p.Supermarket), id,
	)
	if err != nil {
		return nil, fmt.Errorf("update item: %w", err)
	}
	return s.GetByID(id)
}

// ChangeAmount applies a quantity-stepper delta, clamping at 0. A stored 0
// is valid and does not remove the item from the list.
func (s *ItemStore) ChangeAmount(id int64, delta int) (*model.Item, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	amount := item.Amount + delta
	if amount < 0 {
		amount = 0
	}

	_, err = s.db.Exec(`UPDATE shopping_items SET item_amount = ? WHERE id = ?`, amount, id)
	if err != nil {
		return nil, fmt.Errorf("change amount: %w", err)
	}
	return s.GetByID(id)
}

// SetOnList flips active-list membership. Adding stamps added_at and
// item_creator together; removing clears both together — never one without
// the other.
func (s *ItemStore) SetOnList(id int64, on bool, creator *string) (*model.Item, error) {
	item, err := s.GetByID(id)
	if err != nil {
		return nil, err
	}
	if item == nil {
		return nil, nil
	}

	if on {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET item_on_list = 1, added_at = ?, item_creator = ? WHERE id = ?`,
			dateutil.Stamp(time.Now()), nullString(creator), id,
		)
	} else {
		_, err = s.db.Exec(
			`UPDATE shopping_items SET item_on_list = 0, added_at = NULL, item_creator = NULL WHERE id = ?`,
			id,
		)
	}
	if err != nil {
		return nil, fmt.Errorf("set on list: %w", err)
	}
	return s.GetByID(id)
}

func (s *ItemStore) Delete(id int64) error {
	_, err := s.db.Exec(`DELETE FROM shopping_items WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	return nil
}

// DistinctSupermarkets returns every store name ever used: trimmed, blanks
// dropped, deduplicated, sorted. Feeds the creation form's suggestion list.
func (s *ItemStore) DistinctSupermarkets() ([]string, error) {
	rows, err := s.db.Query(`SELECT supermarket FROM shopping_items WHERE supermarket IS NOT NULL`)
	if err != nil {
		return nil, fmt.Errorf("list supermarkets: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]struct{})
	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan supermarket: %w", err)
		}
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Strings(names)
	return names, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullInt64(i *int64) sql.NullInt64 {
	if i == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: *i, Valid: true}
}
