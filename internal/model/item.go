package model

// Item is one row of the shared shopping catalog. An item exists once in the
// catalog and is flipped on and off the active shopping list via OnList.
type Item struct {
	ID           int64   `json:"id"`
	UserID       *int64  `json:"user_id"`
	Name         string  `json:"item_name"`
	Price        string  `json:"item_price"`
	Amount       int     `json:"item_amount"`
	OnList       bool    `json:"item_on_list"`
	IsOpen       bool    `json:"item_is_open"`
	OnWeeklyList bool    `json:"item_on_weekly_list"`
	Comment      string  `json:"item_comment"`
	Creator      *string `json:"item_creator"`
	Supermarket  *string `json:"supermarket"`
	// AddedAt is kept as the raw stored timestamp. Older rows carry values
	// without timezone info; dateutil normalizes them for display and sorting.
	AddedAt *string `json:"added_at"`
}
