package catalog

import (
	"encoding/binary"

	"github.com/poiesic/titlelens/core"
)

// Key prefixes
const (
	titlePrefix = "title:"
	orderPrefix = "titleord:"
	titleSeq    = "titleseq"
)

// makeTitleKey generates the primary key for a title by ID.
func makeTitleKey(id core.ID) []byte {
	return []byte(titlePrefix + string(id))
}

// makeOrderKey generates the insertion-order index key.
// Format: prefix + 8 byte big-endian sequence, so iteration follows insertion.
func makeOrderKey(seq uint64) []byte {
	buf := make([]byte, len(orderPrefix)+8)
	offset := copy(buf, orderPrefix)
	binary.BigEndian.PutUint64(buf[offset:], seq)
	return buf
}
