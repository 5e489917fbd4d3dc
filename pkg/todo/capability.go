package todo

// CanRemove reports whether an item may be deleted. Anything in the own list or the inbox can
// be removed, and a sender may recall an item still sitting in the recipient's inbox.
func CanRemove(viewed ListName, origin Origin) bool {
	return viewed == ListMy || viewed == ListIn || origin == OriginIn
}

// CanComplete reports whether an item viewed in the given list may be marked as done.
func CanComplete(viewed ListName) bool {
	return viewed == ListMy || viewed == ListIn
}

// CanAccept reports whether an item viewed in the given list may be accepted.
func CanAccept(viewed ListName) bool {
	return viewed == ListIn
}

// CanBump reports whether the recipient of a sent item may be nudged.
func CanBump(viewed ListName, origin Origin) bool {
	return viewed == ListOut && origin == OriginIn
}

// Actions is the set of actions allowed on one item.
type Actions struct {
	Remove   bool
	Complete bool
	Accept   bool
	Bump     bool
}

// Any reports whether at least one action is allowed.
func (a Actions) Any() bool {
	return a.Remove || a.Complete || a.Accept || a.Bump
}

// Capabilities applies every predicate to an item viewed in the given list.
func Capabilities(viewed ListName, item Item) Actions {
	return Actions{
		Remove:   CanRemove(viewed, item.Origin),
		Complete: CanComplete(viewed),
		Accept:   CanAccept(viewed),
		Bump:     CanBump(viewed, item.Origin),
	}
}
