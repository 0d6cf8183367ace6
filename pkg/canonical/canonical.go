// Package canonical provides the deterministic byte encoding and the
// one-way digest used by the receipt chain. The encoding is
// order-independent: callers may assemble fields in any order and still
// obtain identical bytes, so stored receipts can be re-hashed for
// verification at any time.
package canonical

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"sort"
)

// Encode serializes fields into a deterministic byte string.
// Keys are sorted lexicographically; every key and value is written
// uvarint-length-prefixed so no separator can be forged by crafted input.
func Encode(fields map[string]string) []byte {
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var buf []byte
	var lenBuf [binary.MaxVarintLen64]byte
	appendStr := func(s string) {
		n := binary.PutUvarint(lenBuf[:], uint64(len(s)))
		buf = append(buf, lenBuf[:n]...)
		buf = append(buf, s...)
	}

	for _, k := range keys {
		appendStr(k)
		appendStr(fields[k])
	}
	return buf
}

// Digest computes the SHA-256 digest over the canonical encoding of fields.
func Digest(fields map[string]string) [sha256.Size]byte {
	return sha256.Sum256(Encode(fields))
}

// DigestHex returns the hex-encoded SHA-256 digest over the canonical
// encoding of fields. This is the form persisted on receipts.
func DigestHex(fields map[string]string) string {
	sum := Digest(fields)
	return hex.EncodeToString(sum[:])
}
