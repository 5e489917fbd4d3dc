package db

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/matt-steen/todo-relay/pkg/todo"
	// use the sqlite db driver.
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog/log"
)

//go:embed base.sql
var baseSQL string

// Database manages the db connection and holds every user's lists.
type Database struct {
	conn *sql.DB
	now  func() time.Time
}

// NewDatabase connects to the sqlite database at the given filename and initializes the
// structure if not present.
func NewDatabase(ctx context.Context, filename string) (*Database, error) {
	conn, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", filename))
	if err != nil {
		return nil, fmt.Errorf("error connecting to sqlite db at %s: %w", filename, err)
	}

	// every mutation runs in a transaction; one connection keeps sqlite from reporting busy
	conn.SetMaxOpenConns(1)

	database := Database{
		conn: conn,
		now:  time.Now,
	}

	err = database.initialize(ctx)
	if err != nil {
		conn.Close()

		return nil, err
	}

	return &database, nil
}

func (d *Database) initialize(ctx context.Context) error {
	// run idempotent setup sql to create empty tables if they don't exist
	if _, err := d.conn.ExecContext(ctx, baseSQL); err != nil {
		return fmt.Errorf("error running base sql: %w", err)
	}

	return nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.conn.Close()
}

func (d *Database) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := d.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("error starting transaction: %w", err)
	}

	if err := fn(tx); err != nil {
		if rollbackErr := tx.Rollback(); rollbackErr != nil {
			log.Error().Err(rollbackErr).Msg("error rolling back transaction")
		}

		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("error committing transaction: %w", err)
	}

	return nil
}

// List returns the items in the given list of the user, ordered by rank.
func (d *Database) List(ctx context.Context, userID string, list todo.ListName) ([]todo.Item, error) {
	var items []todo.Item

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var err error

		items, err = listItems(ctx, tx, userID, list)

		return err
	})

	return items, err
}

// Lists returns the three lists of the user in one read.
func (d *Database) Lists(ctx context.Context, userID string) (todo.Lists, error) {
	var lists todo.Lists

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		var err error

		if lists.My, err = listItems(ctx, tx, userID, todo.ListMy); err != nil {
			return err
		}

		if lists.In, err = listItems(ctx, tx, userID, todo.ListIn); err != nil {
			return err
		}

		lists.Out, err = listItems(ctx, tx, userID, todo.ListOut)

		return err
	})

	return lists, err
}

func listItems(ctx context.Context, tx *sql.Tx, userID string, list todo.ListName) ([]todo.Item, error) {
	itemSQL := `SELECT r.item_id, r.rank, r.foreign_user_id, i.message, i.description, i.post_id, i.create_at,
					   f.list, f.rank
				FROM item_ref r
				JOIN item i ON i.id = r.item_id
				LEFT JOIN item_ref f ON f.user_id = r.foreign_user_id AND f.item_id = r.foreign_item_id
				WHERE r.user_id = $1 AND r.list = $2
				ORDER BY r.rank`

	rows, err := tx.QueryContext(ctx, itemSQL, userID, string(list))
	if err != nil {
		return nil, fmt.Errorf("error loading list %s for %s: %w", list, userID, err)
	}
	defer rows.Close()

	items := []todo.Item{}

	for rows.Next() {
		var (
			item        todo.Item
			foreignList sql.NullString
			foreignRank sql.NullInt64
		)

		err := rows.Scan(&item.ID, &item.Position, &item.User, &item.Message, &item.Description,
			&item.PostID, &item.CreateAt, &foreignList, &foreignRank)
		if err != nil {
			return nil, fmt.Errorf("error scanning list %s for %s: %w", list, userID, err)
		}

		if foreignList.Valid {
			item.Origin = todo.OriginOf(todo.ListName(foreignList.String))
			item.ForeignPosition = int(foreignRank.Int64)
		}

		items = append(items, item)
	}

	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error scanning list %s for %s: %w", list, userID, err)
	}

	return items, nil
}

func getRef(ctx context.Context, tx *sql.Tx, userID, itemID string) (*ref, error) {
	r := ref{userID: userID, itemID: itemID}

	var list string

	err := tx.QueryRowContext(ctx,
		`SELECT list, rank, foreign_user_id, foreign_item_id FROM item_ref WHERE user_id = $1 AND item_id = $2`,
		userID, itemID,
	).Scan(&list, &r.rank, &r.foreignUserID, &r.foreignItemID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}

	if err != nil {
		return nil, fmt.Errorf("error loading todo %s for %s: %w", itemID, userID, err)
	}

	r.list = todo.ListName(list)

	return &r, nil
}

// foreignRef returns the counterparty's ref of r, or nil if it no longer exists.
func foreignRef(ctx context.Context, tx *sql.Tx, r *ref) (*ref, error) {
	if !r.hasForeign() {
		return nil, nil
	}

	fr, err := getRef(ctx, tx, r.foreignUserID, r.foreignItemID)
	if errors.Is(err, ErrNotFound) {
		log.Warn().Str("user", r.foreignUserID).Str("item", r.foreignItemID).Msg("dangling foreign reference")

		return nil, nil
	}

	return fr, err
}

// appendRef stores r at the end of its list and updates r.rank accordingly.
func appendRef(ctx context.Context, tx *sql.Tx, r *ref) error {
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM item_ref WHERE user_id = $1 AND list = $2`, r.userID, string(r.list),
	).Scan(&r.rank)
	if err != nil {
		return fmt.Errorf("error counting list %s for %s: %w", r.list, r.userID, err)
	}

	_, err = tx.ExecContext(ctx,
		`INSERT INTO item_ref (user_id, item_id, list, rank, foreign_user_id, foreign_item_id)
		     VALUES ($1, $2, $3, $4, $5, $6)`,
		r.userID, r.itemID, string(r.list), r.rank, r.foreignUserID, r.foreignItemID,
	)
	if err != nil {
		return fmt.Errorf("error adding todo %s to list %s for %s: %w", r.itemID, r.list, r.userID, err)
	}

	return nil
}

// deleteRef removes r from its list and closes the gap it leaves behind.
func deleteRef(ctx context.Context, tx *sql.Tx, change *Change, r *ref) error {
	if err := touchShifted(ctx, tx, change, r, `r.rank > $3`); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx, `DELETE FROM item_ref WHERE user_id = $1 AND item_id = $2`, r.userID, r.itemID)
	if err != nil {
		return fmt.Errorf("error removing todo %s from %s: %w", r.itemID, r.userID, err)
	}

	_, err = tx.ExecContext(ctx,
		`UPDATE item_ref SET rank = rank - 1 WHERE user_id = $1 AND list = $2 AND rank > $3`,
		r.userID, string(r.list), r.rank,
	)
	if err != nil {
		return fmt.Errorf("error reranking list %s for %s: %w", r.list, r.userID, err)
	}

	return nil
}

// moveRef moves r to the end of another list, replacing its foreign reference.
func moveRef(ctx context.Context, tx *sql.Tx, change *Change, r *ref, list todo.ListName, foreignUserID, foreignItemID string) error {
	if err := deleteRef(ctx, tx, change, r); err != nil {
		return err
	}

	r.list = list
	r.foreignUserID = foreignUserID
	r.foreignItemID = foreignItemID

	return appendRef(ctx, tx, r)
}

// moveToTop gives r rank 0 in its list.
func moveToTop(ctx context.Context, tx *sql.Tx, change *Change, r *ref) error {
	if err := touchShifted(ctx, tx, change, r, `r.rank < $3`); err != nil {
		return err
	}

	_, err := tx.ExecContext(ctx,
		`UPDATE item_ref SET rank = rank + 1 WHERE user_id = $1 AND list = $2 AND rank < $3`,
		r.userID, string(r.list), r.rank,
	)
	if err != nil {
		return fmt.Errorf("error reranking list %s for %s: %w", r.list, r.userID, err)
	}

	_, err = tx.ExecContext(ctx, `UPDATE item_ref SET rank = 0 WHERE user_id = $1 AND item_id = $2`, r.userID, r.itemID)
	if err != nil {
		return fmt.Errorf("error moving todo %s to the top for %s: %w", r.itemID, r.userID, err)
	}

	r.rank = 0

	return nil
}

// touchShifted marks the counterparties of every ref whose rank is about to change, since
// they display that rank as a foreign position.
func touchShifted(ctx context.Context, tx *sql.Tx, change *Change, r *ref, rankFilter string) error {
	rows, err := tx.QueryContext(ctx,
		`SELECT f.user_id, f.list FROM item_ref r
		   JOIN item_ref f ON f.user_id = r.foreign_user_id AND f.item_id = r.foreign_item_id
		  WHERE r.user_id = $1 AND r.list = $2 AND `+rankFilter,
		r.userID, string(r.list), r.rank,
	)
	if err != nil {
		return fmt.Errorf("error loading shifted todos for %s: %w", r.userID, err)
	}
	defer rows.Close()

	for rows.Next() {
		var userID, list string

		if err := rows.Scan(&userID, &list); err != nil {
			return fmt.Errorf("error scanning shifted todos for %s: %w", r.userID, err)
		}

		change.touch(userID, todo.ListName(list))
	}

	return rows.Err()
}

func insertRecord(ctx context.Context, tx *sql.Tx, rec *record) error {
	_, err := tx.ExecContext(ctx,
		`INSERT INTO item (id, message, description, post_id, create_at) VALUES ($1, $2, $3, $4, $5)`,
		rec.id, rec.message, rec.description, rec.postID, rec.createAt,
	)
	if err != nil {
		return fmt.Errorf("error adding todo '%s': %w", rec.message, err)
	}

	return nil
}

func getRecord(ctx context.Context, tx *sql.Tx, itemID string) (*record, error) {
	rec := record{id: itemID}

	err := tx.QueryRowContext(ctx,
		`SELECT message, description, post_id, create_at FROM item WHERE id = $1`, itemID,
	).Scan(&rec.message, &rec.description, &rec.postID, &rec.createAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, itemID)
	}

	if err != nil {
		return nil, fmt.Errorf("error loading todo %s: %w", itemID, err)
	}

	return &rec, nil
}

func deleteRecord(ctx context.Context, tx *sql.Tx, itemID string) error {
	if _, err := tx.ExecContext(ctx, `DELETE FROM item WHERE id = $1`, itemID); err != nil {
		return fmt.Errorf("error deleting todo %s: %w", itemID, err)
	}

	return nil
}

func updateRecordText(ctx context.Context, tx *sql.Tx, itemID, message, description string) error {
	_, err := tx.ExecContext(ctx,
		`UPDATE item SET message = $1, description = $2 WHERE id = $3`, message, description, itemID,
	)
	if err != nil {
		return fmt.Errorf("error updating todo %s: %w", itemID, err)
	}

	return nil
}
