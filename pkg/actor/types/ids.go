package types

import "fmt"

// NID identifies a node inside a logical cluster. Zero is a legal value;
// negative values are reserved for INVALID_ID.
type NID int32

// PID indexes a process inside a single node's process table.
type PID int32

const (
	// InvalidID marks an absent node or process slot. It is outside the
	// legal id range for both NID and PID.
	InvalidID = -1

	// KeyLength is the fixed width of the pre-shared key exchanged on
	// handshake. The wire format transmits KeyLength+1 bytes, the extra
	// byte being a NUL terminator to match the original C implementation's
	// `char buffer[KEYLENGTH + 1]`.
	KeyLength = 64

	// MaxRemoteNodes bounds the remote-node table.
	MaxRemoteNodes = 256
)

// InvalidNID and InvalidPID are the typed sentinels.
const (
	InvalidNID NID = InvalidID
	InvalidPID PID = InvalidID
)

// String renders a PID for use as a metrics label or log field.
func (p PID) String() string {
	return fmt.Sprintf("%d", int32(p))
}

// Address is the (nid, pid) pair that names a process cluster-wide.
type Address struct {
	NID NID
	PID PID
}

func (a Address) String() string {
	return fmt.Sprintf("%d.%d", a.NID, a.PID)
}

// IsValid reports whether both components are non-negative.
func (a Address) IsValid() bool {
	return a.NID >= 0 && a.PID >= 0
}
