package db

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"
	"github.com/matt-steen/todo-relay/pkg/todo"
)

func (d *Database) newRecord(message, description, postID string) *record {
	return &record{
		id:          uuid.NewString(),
		message:     message,
		description: description,
		postID:      postID,
		createAt:    d.now().UnixMilli(),
	}
}

// AddItem creates a new todo with the given message and description; the todo is added
// at the end of the user's own list.
func (d *Database) AddItem(ctx context.Context, userID, message, description, postID string) (todo.Item, *Change, error) {
	rec := d.newRecord(message, description, postID)
	change := newChange()
	r := &ref{userID: userID, itemID: rec.id, list: todo.ListMy}

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertRecord(ctx, tx, rec); err != nil {
			return err
		}

		return appendRef(ctx, tx, r)
	})
	if err != nil {
		return todo.Item{}, nil, err
	}

	change.Message = message
	change.touch(userID, todo.ListMy)

	item := todo.Item{
		ID:          rec.id,
		Message:     rec.message,
		Description: rec.description,
		PostID:      rec.postID,
		CreateAt:    rec.createAt,
		Position:    r.rank,
	}

	return item, change, nil
}

// SendItem creates linked copies of a todo: one at the end of the sender's outgoing list and
// one at the end of the receiver's incoming list. It returns the id of the receiver's copy.
func (d *Database) SendItem(ctx context.Context, senderID, receiverID, message, description, postID string) (string, *Change, error) {
	senderRec := d.newRecord(message, description, postID)
	receiverRec := d.newRecord(message, description, postID)
	change := newChange()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		if err := insertRecord(ctx, tx, senderRec); err != nil {
			return err
		}

		if err := insertRecord(ctx, tx, receiverRec); err != nil {
			return err
		}

		err := appendRef(ctx, tx, &ref{
			userID: senderID, itemID: senderRec.id, list: todo.ListOut,
			foreignUserID: receiverID, foreignItemID: receiverRec.id,
		})
		if err != nil {
			return err
		}

		return appendRef(ctx, tx, &ref{
			userID: receiverID, itemID: receiverRec.id, list: todo.ListIn,
			foreignUserID: senderID, foreignItemID: senderRec.id,
		})
	})
	if err != nil {
		return "", nil, err
	}

	change.Message = message
	change.Counterparty = receiverID
	change.touch(senderID, todo.ListOut)
	change.touch(receiverID, todo.ListIn)

	return receiverRec.id, change, nil
}

// CompleteItem marks a todo as done. Both the user's copy and the counterparty's copy are
// dropped. Todos waiting in the user's outgoing list belong to the recipient and cannot be
// completed by the sender.
func (d *Database) CompleteItem(ctx context.Context, userID, itemID string) (*Change, error) {
	return d.dropItem(ctx, userID, itemID, func(r, _ *ref) error {
		if !todo.CanComplete(r.list) {
			return fmt.Errorf("%w: %s cannot be completed from list %s", ErrNotOwner, itemID, r.list)
		}

		return nil
	})
}

// RemoveItem deletes a todo from whichever list of the user holds it, together with the
// counterparty's copy. A sent todo can only be recalled while it is still in the recipient's
// incoming list.
func (d *Database) RemoveItem(ctx context.Context, userID, itemID string) (*Change, error) {
	return d.dropItem(ctx, userID, itemID, func(r, fr *ref) error {
		origin := todo.OriginOwn
		if fr != nil {
			origin = todo.OriginOf(fr.list)
		}

		if !todo.CanRemove(r.list, origin) {
			return fmt.Errorf("%w: %s cannot be removed from list %s", ErrNotOwner, itemID, r.list)
		}

		return nil
	})
}

func (d *Database) dropItem(ctx context.Context, userID, itemID string, allowed func(r, fr *ref) error) (*Change, error) {
	change := newChange()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRef(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		rec, err := getRecord(ctx, tx, itemID)
		if err != nil {
			return err
		}

		change.Message = rec.message

		fr, err := foreignRef(ctx, tx, r)
		if err != nil {
			return err
		}

		if err := allowed(r, fr); err != nil {
			return err
		}

		if err := deleteRef(ctx, tx, change, r); err != nil {
			return err
		}

		if err := deleteRecord(ctx, tx, itemID); err != nil {
			return err
		}

		change.touch(userID, r.list)

		if fr == nil {
			return nil
		}

		if err := deleteRef(ctx, tx, change, fr); err != nil {
			return err
		}

		if err := deleteRecord(ctx, tx, fr.itemID); err != nil {
			return err
		}

		change.Counterparty = fr.userID
		change.touch(fr.userID, fr.list)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// AcceptItem moves a todo from the user's incoming list to the end of their own list. The
// sender's copy is dropped: the todo now fully belongs to the user.
func (d *Database) AcceptItem(ctx context.Context, userID, itemID string) (*Change, error) {
	change := newChange()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRef(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		if r.list != todo.ListIn {
			return fmt.Errorf("%w: %s is in list %s", ErrNotPending, itemID, r.list)
		}

		rec, err := getRecord(ctx, tx, itemID)
		if err != nil {
			return err
		}

		change.Message = rec.message

		fr, err := foreignRef(ctx, tx, r)
		if err != nil {
			return err
		}

		if err := moveRef(ctx, tx, change, r, todo.ListMy, "", ""); err != nil {
			return err
		}

		change.touch(userID, todo.ListMy, todo.ListIn)

		if fr == nil {
			return nil
		}

		if err := deleteRef(ctx, tx, change, fr); err != nil {
			return err
		}

		if err := deleteRecord(ctx, tx, fr.itemID); err != nil {
			return err
		}

		change.Counterparty = fr.userID
		change.touch(fr.userID, fr.list)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// BumpItem moves the receiver's copy of a todo sent by the user to the top of the receiver's
// incoming list.
func (d *Database) BumpItem(ctx context.Context, userID, itemID string) (*Change, error) {
	change := newChange()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRef(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		if r.list != todo.ListOut {
			return fmt.Errorf("%w: %s is in list %s", ErrNotPending, itemID, r.list)
		}

		fr, err := foreignRef(ctx, tx, r)
		if err != nil {
			return err
		}

		if fr == nil || fr.list != todo.ListIn {
			return fmt.Errorf("%w: %s is no longer in the receiver's inbox", ErrNotPending, itemID)
		}

		rec, err := getRecord(ctx, tx, fr.itemID)
		if err != nil {
			return err
		}

		if err := moveToTop(ctx, tx, change, fr); err != nil {
			return err
		}

		change.Message = rec.message
		change.Counterparty = fr.userID
		change.touch(fr.userID, todo.ListIn)
		change.touch(userID, todo.ListOut)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// EditItem updates the text of a todo and of the counterparty's copy.
func (d *Database) EditItem(ctx context.Context, userID, itemID, message, description string) (*Change, error) {
	change := newChange()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRef(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		if err := updateRecordText(ctx, tx, itemID, message, description); err != nil {
			return err
		}

		change.Message = message
		change.touch(userID, r.list)

		fr, err := foreignRef(ctx, tx, r)
		if err != nil || fr == nil {
			return err
		}

		if err := updateRecordText(ctx, tx, fr.itemID, message, description); err != nil {
			return err
		}

		change.Counterparty = fr.userID
		change.touch(fr.userID, fr.list)

		return nil
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}

// ChangeAssignment sends a todo owned by the user to sendTo. Any pending copy held by a
// previous receiver is dropped. Assigning to oneself takes the todo back into the own list.
func (d *Database) ChangeAssignment(ctx context.Context, userID, itemID, sendTo string) (*Change, error) {
	change := newChange()

	err := d.withTx(ctx, func(tx *sql.Tx) error {
		r, err := getRef(ctx, tx, userID, itemID)
		if err != nil {
			return err
		}

		if r.list == todo.ListIn || (r.list == todo.ListMy && r.hasForeign()) {
			return fmt.Errorf("%w: %s", ErrNotOwner, itemID)
		}

		rec, err := getRecord(ctx, tx, itemID)
		if err != nil {
			return err
		}

		change.Message = rec.message

		fr, err := foreignRef(ctx, tx, r)
		if err != nil {
			return err
		}

		if fr != nil {
			if err := deleteRef(ctx, tx, change, fr); err != nil {
				return err
			}

			if err := deleteRecord(ctx, tx, fr.itemID); err != nil {
				return err
			}

			change.Counterparty = fr.userID
			change.touch(fr.userID, fr.list)
		}

		change.touch(userID, todo.ListMy, todo.ListOut)

		if sendTo == userID {
			return moveRef(ctx, tx, change, r, todo.ListMy, "", "")
		}

		receiverRec := d.newRecord(rec.message, rec.description, rec.postID)
		if err := insertRecord(ctx, tx, receiverRec); err != nil {
			return err
		}

		if err := moveRef(ctx, tx, change, r, todo.ListOut, sendTo, receiverRec.id); err != nil {
			return err
		}

		change.touch(sendTo, todo.ListIn)

		return appendRef(ctx, tx, &ref{
			userID: sendTo, itemID: receiverRec.id, list: todo.ListIn,
			foreignUserID: userID, foreignItemID: itemID,
		})
	})
	if err != nil {
		return nil, err
	}

	return change, nil
}
