package badger

import (
	"encoding/binary"
	"fmt"

	"github.com/poiesic/recorder/storage"
)

// Key layout for a log named "n":
//
//	n:len            big-endian uint64 record count
//	n:rec:<pos>      record at position pos, pos as big-endian uint64
const (
	lengthSuffix = ":len"
	recordInfix  = ":rec:"
)

func makeLengthKey(name string) []byte {
	return []byte(name + lengthSuffix)
}

// makeRecordPrefix returns the prefix shared by every record key of a log.
func makeRecordPrefix(name string) []byte {
	return []byte(name + recordInfix)
}

// makeRecordKey generates the key for the record at pos.
// Written in BigEndian order so lexicographic order matches position order.
func makeRecordKey(prefix []byte, pos uint64) []byte {
	buf := make([]byte, len(prefix)+8)
	offset := copy(buf, prefix)
	binary.BigEndian.PutUint64(buf[offset:], pos)
	return buf
}

func encodeLength(n uint64) []byte {
	return binary.BigEndian.AppendUint64(nil, n)
}

func decodeLength(val []byte) (uint64, error) {
	if len(val) != 8 {
		return 0, fmt.Errorf("%w: length value has %d bytes", storage.ErrTruncatedData, len(val))
	}
	return binary.BigEndian.Uint64(val), nil
}
