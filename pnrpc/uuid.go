package pnrpc

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
)

// UUIDSize is the size of a 128-bit identifier on the wire.
const UUIDSize = 16

// UUID is a 128-bit identifier in its canonical (as-registered) byte layout.
type UUID [UUIDSize]byte

// UUIDPolicy selects how the three header identifiers are laid out on the wire.
//
// Conformant stacks expect the canonical layout; a class of non-conformant
// stacks byte-reverses the first three UUID fields regardless of the declared
// byte order and rejects connects that do not match.
type UUIDPolicy uint8

const (
	// UUIDAsReceived transmits identifiers in their canonical byte layout.
	UUIDAsReceived UUIDPolicy = iota
	// UUIDFieldSwapped byte-reverses the 4-byte, 2-byte and 2-byte leading
	// fields before transmission. The transform is its own inverse.
	UUIDFieldSwapped
)

// String returns string representation of the policy.
func (p UUIDPolicy) String() string {
	if p == UUIDFieldSwapped {
		return "field-swapped"
	}
	return "as-received"
}

// String formats the UUID in the usual 8-4-4-4-12 form.
func (u UUID) String() string {
	return fmt.Sprintf("%s-%s-%s-%s-%s",
		hex.EncodeToString(u[0:4]),
		hex.EncodeToString(u[4:6]),
		hex.EncodeToString(u[6:8]),
		hex.EncodeToString(u[8:10]),
		hex.EncodeToString(u[10:16]),
	)
}

// FieldSwapped returns a copy of the UUID with the leading 4-2-2 byte groups
// reversed. Applying it twice yields the original value.
func (u UUID) FieldSwapped() UUID {
	var out UUID
	out[0], out[1], out[2], out[3] = u[3], u[2], u[1], u[0]
	out[4], out[5] = u[5], u[4]
	out[6], out[7] = u[7], u[6]
	copy(out[8:], u[8:])

	return out
}

// apply returns the on-wire layout of the UUID under the given policy.
func (p UUIDPolicy) apply(u UUID) UUID {
	if p == UUIDFieldSwapped {
		return u.FieldSwapped()
	}
	return u
}

// copyUUID writes the on-wire UUID layout into dst, which must be UUIDSize bytes.
func copyUUID(dst []byte, u UUID) {
	copy(dst, u[:])
}

// uuidAt reads a UUID from the first UUIDSize bytes of src.
func uuidAt(src []byte) UUID {
	var u UUID
	copy(u[:], src)

	return u
}

// NewRandomUUID returns a random version 4 UUID.
func NewRandomUUID() UUID {
	var u UUID
	_, _ = rand.Read(u[:])
	u[6] = (u[6] & 0x0F) | 0x40
	u[8] = (u[8] & 0x3F) | 0x80

	return u
}
