package sim3graph

import "fmt"

// Key uniquely identifies an unknown in a factor graph. Keys are totally
// ordered; that ordering fixes the column-block order of every linear system
// assembled over them.
type Key uint64

// symbolShift places the tag character in the top byte of a Key, leaving
// 56 bits for the index.
const symbolShift = 56

const symbolIndexMask = (Key(1) << symbolShift) - 1

// Symbol builds a human-readable Key from a tag character and an index,
// e.g. Symbol('x', 7) for the 7th pose unknown. The tag occupies the top
// byte so keys with the same tag sort by index.
func Symbol(tag byte, index uint64) Key {
	return Key(tag)<<symbolShift | (Key(index) & symbolIndexMask)
}

// Tag returns the symbol tag character, or 0 for raw keys below the symbol
// range.
func (k Key) Tag() byte {
	return byte(k >> symbolShift)
}

// Index returns the symbol index portion of the key.
func (k Key) Index() uint64 {
	return uint64(k & symbolIndexMask)
}

// String renders symbol keys as "x7" and raw keys as their decimal value.
func (k Key) String() string {
	tag := k.Tag()
	if tag >= 'A' && tag <= 'z' {
		return fmt.Sprintf("%c%d", tag, k.Index())
	}
	return fmt.Sprintf("%d", uint64(k))
}
