package store

import (
	"context"
	"fmt"

	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"
)

// Fetcher loads one list from the server.
type Fetcher interface {
	List(ctx context.Context, list todo.ListName, reminder bool) ([]todo.Item, error)
}

// Refresher fetches lists and applies the results to a Store.
type Refresher struct {
	store   *Store
	fetcher Fetcher
}

// NewRefresher creates a Refresher filling store from fetcher.
func NewRefresher(store *Store, fetcher Fetcher) *Refresher {
	return &Refresher{store: store, fetcher: fetcher}
}

// Refresh fetches the given lists concurrently. Duplicates are fetched once. Lists that fail
// keep their data; the first error is returned.
func (r *Refresher) Refresh(ctx context.Context, lists ...todo.ListName) error {
	return r.refresh(ctx, false, lists)
}

// RefreshAll fetches the three lists. reminder is passed along with the own list.
func (r *Refresher) RefreshAll(ctx context.Context, reminder bool) error {
	return r.refresh(ctx, reminder, todo.AllLists)
}

func (r *Refresher) refresh(ctx context.Context, reminder bool, lists []todo.ListName) error {
	var g errgroup.Group

	seen := map[todo.ListName]bool{}

	for _, list := range lists {
		if seen[list] {
			continue
		}

		seen[list] = true
		list := list
		seq := r.store.Begin(list)

		g.Go(func() error {
			return r.fetch(ctx, list, seq, reminder && list == todo.ListMy)
		})
	}

	return g.Wait()
}

func (r *Refresher) fetch(ctx context.Context, list todo.ListName, seq uint64, reminder bool) error {
	items, err := r.fetcher.List(ctx, list, reminder)
	if err != nil {
		r.store.Abort(list)

		return fmt.Errorf("error fetching list %s: %w", list, err)
	}

	if err := todo.ValidatePositions(items); err != nil {
		r.store.Abort(list)

		return fmt.Errorf("invalid positions in list %s: %w", list, err)
	}

	if !r.store.Replace(list, items, seq) {
		log.Debug().Str("list", string(list)).Uint64("seq", seq).Msg("dropping stale list")
	}

	return nil
}
