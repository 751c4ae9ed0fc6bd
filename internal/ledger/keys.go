package ledger

import (
	"encoding/binary"
	"errors"
)

// Keyspace (byte-wise, lexicographically sortable):
// - id/{id_be8}   entry for a minted id
// - run/{run_id}  run metadata; run ids are UUIDv7 so they sort by start time

var (
	idPrefix  = []byte("id/")
	runPrefix = []byte("run/")
)

// keyID builds the entry key. IDs are non-negative so big-endian order
// matches numeric order.
func keyID(id int64) []byte {
	k := make([]byte, 0, len(idPrefix)+8)
	k = append(k, idPrefix...)
	var b [8]byte
	binary.BigEndian.PutUint64(b[:], uint64(id))
	return append(k, b[:]...)
}

func idFromKey(k []byte) (int64, error) {
	if len(k) != len(idPrefix)+8 {
		return 0, errors.New("ledger: malformed id key")
	}
	return int64(binary.BigEndian.Uint64(k[len(idPrefix):])), nil
}

func keyRun(runID string) []byte {
	k := make([]byte, 0, len(runPrefix)+len(runID))
	k = append(k, runPrefix...)
	return append(k, runID...)
}
