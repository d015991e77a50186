package dto

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"time"
)

// Page size bounds for list endpoints.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrInvalidCursor is returned for a cursor this service did not issue.
var ErrInvalidCursor = errors.New("invalid cursor")

// PaginationRequest holds the paging query parameters of a list endpoint.
type PaginationRequest struct {
	// Cursor is the nextCursor of the previous page; empty for the first page.
	Cursor string `form:"cursor"`

	Limit int `form:"limit" validate:"omitempty,gte=1,lte=100"`
}

// GetLimit returns Limit clamped to (0, MaxLimit], or DefaultLimit when unset.
func (p *PaginationRequest) GetLimit() int {
	switch {
	case p.Limit <= 0:
		return DefaultLimit
	case p.Limit > MaxLimit:
		return MaxLimit
	default:
		return p.Limit
	}
}

// Validate rejects a cursor that does not decode.
func (p *PaginationRequest) Validate() error {
	_, err := p.After()
	return err
}

// After returns the id of the last task of the previous page, or "" when no
// cursor was sent.
func (p *PaginationRequest) After() (string, error) {
	if p.Cursor == "" {
		return "", nil
	}

	cursor, err := DecodeCursor(p.Cursor)
	if err != nil {
		return "", err
	}

	return cursor.ID, nil
}

// PaginatedResponse is one page of a list endpoint.
type PaginatedResponse[T any] struct {
	Items []T `json:"items"`

	// NextCursor is set only when HasMore is.
	NextCursor string `json:"nextCursor,omitempty"`
	HasMore    bool   `json:"hasMore"`
}

// NewPaginatedResponse builds a page. When hasMore is set the next cursor
// points at the last item.
func NewPaginatedResponse[T any](items []T, hasMore bool, cursorOf func(T) Cursor) *PaginatedResponse[T] {
	page := &PaginatedResponse[T]{Items: items, HasMore: hasMore}
	if page.Items == nil {
		page.Items = []T{}
	}

	if hasMore && len(items) > 0 {
		page.NextCursor = EncodeCursor(cursorOf(items[len(items)-1]))
	}

	return page
}

// Cursor marks a position in the newest-first task listing.
type Cursor struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"at"`
}

// EncodeCursor returns the opaque form of c handed to clients.
func EncodeCursor(c Cursor) string {
	raw, err := json.Marshal(c)
	if err != nil {
		return ""
	}

	return base64.RawURLEncoding.EncodeToString(raw)
}

// DecodeCursor parses a cursor produced by EncodeCursor.
func DecodeCursor(encoded string) (Cursor, error) {
	var c Cursor

	raw, err := base64.RawURLEncoding.DecodeString(encoded)
	if err != nil {
		return c, ErrInvalidCursor
	}

	if err := json.Unmarshal(raw, &c); err != nil || c.ID == "" {
		return Cursor{}, ErrInvalidCursor
	}

	return c, nil
}
