package ledger

import (
	"encoding/binary"
	"encoding/json"
	"errors"
	"fmt"
	"hash/crc32"
)

// Value encoding: kind byte | payload | crc32c(kind|payload)
// The payload is JSON so `snowgen lookup` output is the stored document.

const (
	kindEntry byte = 'e'
	kindRun   byte = 'r'
)

var (
	castagnoli = crc32.MakeTable(crc32.Castagnoli)

	// ErrCorrupt is returned when a stored value fails its checksum.
	ErrCorrupt = errors.New("ledger: corrupt record")
)

func encodeRecord(kind byte, v any) ([]byte, error) {
	payload, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 0, 1+len(payload)+4)
	out = append(out, kind)
	out = append(out, payload...)
	var crcb [4]byte
	binary.BigEndian.PutUint32(crcb[:], crc32.Checksum(out, castagnoli))
	return append(out, crcb[:]...), nil
}

func decodeRecord(b []byte, kind byte, v any) error {
	if len(b) < 1+4 || b[0] != kind {
		return ErrCorrupt
	}
	body := b[:len(b)-4]
	if crc32.Checksum(body, castagnoli) != binary.BigEndian.Uint32(b[len(b)-4:]) {
		return ErrCorrupt
	}
	if err := json.Unmarshal(body[1:], v); err != nil {
		return fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	return nil
}
