package controller

import (
	"fmt"

	"github.com/gdamore/tcell/v2"
)

// runeKeyBase maps runes onto tcell.Key values above the ones tcell defines, so that letter
// shortcuts share the events maps with special keys.
const runeKeyBase tcell.Key = 1024

// Shortcut keys.
var (
	KeyA = runeKey('a')
	KeyB = runeKey('b')
	KeyC = runeKey('c')
	KeyD = runeKey('d')
	KeyE = runeKey('e')
	KeyN = runeKey('n')
	KeyQ = runeKey('q')
	KeyR = runeKey('r')
	KeyS = runeKey('s')
	KeyU = runeKey('u')

	KeyShiftI = runeKey('I')
	KeyShiftM = runeKey('M')
	KeyShiftO = runeKey('O')
)

func runeKey(r rune) tcell.Key {
	return runeKeyBase + tcell.Key(r)
}

// AsKey returns the key of the event, mapping runes with runeKey.
func AsKey(evt *tcell.EventKey) tcell.Key {
	if evt.Key() != tcell.KeyRune {
		return evt.Key()
	}

	return runeKey(evt.Rune())
}

// initKeys registers display names for the rune keys so headers can list them.
func initKeys() {
	for _, r := range "abcdenqrsuIMO" {
		name := string(r)
		if r >= 'A' && r <= 'Z' {
			name = fmt.Sprintf("Shift-%c", r)
		}

		tcell.KeyNames[runeKey(r)] = name
	}
}
