package todo

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// ListName identifies one of the three lists every user has.
type ListName string

// These constants refer to the lists supported by the app.
const (
	ListMy  ListName = "my"
	ListIn  ListName = "in"
	ListOut ListName = "out"
)

// AllLists is the order used whenever every list has to be refreshed.
var AllLists = []ListName{ListMy, ListIn, ListOut}

// ErrUnknownList is returned when a list name cannot be mapped to one of the three lists.
var ErrUnknownList = errors.New("unknown list")

// ParseListName maps every spelling seen on the wire to a canonical list. The push channel
// uses "" for the own list and the storage keys "_in"/"_out" show up in older payloads.
func ParseListName(name string) (ListName, error) {
	switch strings.TrimSpace(name) {
	case "", "my":
		return ListMy, nil
	case "in", "_in":
		return ListIn, nil
	case "out", "_out":
		return ListOut, nil
	}

	return "", fmt.Errorf("%w: %q", ErrUnknownList, name)
}

// PushName is the name used for the list in refresh events.
func (l ListName) PushName() string {
	if l == ListMy {
		return ""
	}

	return string(l)
}

// Origin tells where the counterparty's copy of an item currently sits.
type Origin string

const (
	// OriginOwn means there is no pending counterparty copy.
	OriginOwn Origin = ""
	// OriginIn means the counterparty still has the item in their incoming list.
	OriginIn Origin = "in"
	// OriginOut means the counterparty sent the item and it is still in their outgoing list.
	OriginOut Origin = "out"
)

// OriginOf returns the origin matching the list the counterparty copy is stored in.
func OriginOf(list ListName) Origin {
	switch list {
	case ListIn:
		return OriginIn
	case ListOut:
		return OriginOut
	}

	return OriginOwn
}

// Item is a todo as seen by one user in one of their lists.
type Item struct {
	ID          string `json:"id"`
	Message     string `json:"message"`
	Description string `json:"description,omitempty"`
	// CreateAt is in unix milliseconds.
	CreateAt int64  `json:"create_at"`
	PostID   string `json:"post_id,omitempty"`
	// User is the counterparty username, empty for private items.
	User   string `json:"user,omitempty"`
	Origin Origin `json:"list"`
	// Position is maintained within each list. It starts at 0 and increments by 1.
	Position        int `json:"position"`
	ForeignPosition int `json:"foreign_position"`
}

// CreatedAt returns the creation time of the item.
func (i Item) CreatedAt() time.Time {
	return time.UnixMilli(i.CreateAt)
}

// Lists holds the three lists of a user, as returned by the /lists endpoint.
type Lists struct {
	My  []Item `json:"my"`
	In  []Item `json:"in"`
	Out []Item `json:"out"`
}

// Get returns the items of the named list.
func (l Lists) Get(name ListName) []Item {
	switch name {
	case ListIn:
		return l.In
	case ListOut:
		return l.Out
	}

	return l.My
}

// ValidatePositions checks that positions are exactly 0..len-1 in order.
func ValidatePositions(items []Item) error {
	for i, item := range items {
		if item.Position != i {
			return fmt.Errorf("item %s at index %d has position %d", item.ID, i, item.Position)
		}
	}

	return nil
}
