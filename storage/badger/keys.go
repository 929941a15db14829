package badger

import (
	"encoding/binary"

	"github.com/poiesic/wheretobuy/core"
)

const (
	productPrefix   = "prd:"
	productIDSeq    = "prdseq"
	placementPrefix = "plc:"
)

// idKey builds prefix + big-endian ID so keys sort by ID.
func idKey(prefix string, id core.ID) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], uint64(id))
	return buf
}

// makeProductKey generates a key for a product by ID.
func makeProductKey(id core.ID) []byte {
	return idKey(productPrefix, id)
}

// makePlacementKey generates the key holding all placements of a product.
func makePlacementKey(productID core.ID) []byte {
	return idKey(placementPrefix, productID)
}
