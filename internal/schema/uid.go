package schema

import (
	"encoding/hex"
	"fmt"
	"strings"

	"golang.org/x/crypto/sha3"
)

// UID is the deterministic schema identifier: a Keccak-256 digest over the
// packed (schema, resolver, revokable) triple.
type UID [32]byte

// Hex returns the 0x-prefixed hex form of the identifier.
func (u UID) Hex() string {
	return "0x" + hex.EncodeToString(u[:])
}

// DeriveUID computes the schema identifier for the given declaration
// triple. The digest is Keccak-256 over the ABI-style packed encoding
// used by the on-chain attestation registry: the UTF-8 schema bytes,
// the 20-byte resolver address, and a single 0x00/0x01 revokability
// byte, in that order. The function is pure and safe for concurrent use;
// equal triples always yield equal identifiers.
func DeriveUID(schema, resolver string, revokable bool) (UID, error) {
	addr, err := parseAddress(resolver)
	if err != nil {
		return UID{}, err
	}

	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(schema))
	h.Write(addr[:])
	if revokable {
		h.Write([]byte{1})
	} else {
		h.Write([]byte{0})
	}

	var uid UID
	copy(uid[:], h.Sum(nil))
	return uid, nil
}

func parseAddress(resolver string) ([20]byte, error) {
	var addr [20]byte
	if !strings.HasPrefix(resolver, "0x") {
		return addr, fmt.Errorf("resolver %q must be 0x-prefixed", resolver)
	}
	raw, err := hex.DecodeString(resolver[2:])
	if err != nil {
		return addr, fmt.Errorf("resolver %q is not valid hex: %w", resolver, err)
	}
	if len(raw) != len(addr) {
		return addr, fmt.Errorf("resolver %q must be %d bytes, got %d", resolver, len(addr), len(raw))
	}
	copy(addr[:], raw)
	return addr, nil
}
