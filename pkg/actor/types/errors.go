package types

import "errors"

// Kind enumerates the error taxonomy from the runtime's contract. Every
// synchronous API call and every process exit result carries one of these.
type Kind int

const (
	// OK is the zero value: no error.
	OK Kind = iota
	// InvalueKind marks a caller-supplied nonsense argument.
	InvalueKind
	// NoSlotsKind marks a full process table.
	NoSlotsKind
	// NoProcessKind marks an addressed pid that is not alive locally.
	NoProcessKind
	// NoNodeKind marks an addressed nid with no connected remote.
	NoNodeKind
	// TimeoutKind marks a mailbox or socket timeout.
	TimeoutKind
	// NetworkKind marks any socket-level failure.
	NetworkKind
	// GenericKind is the catch-all for process body errors.
	GenericKind
)

func (k Kind) String() string {
	switch k {
	case OK:
		return "OK"
	case InvalueKind:
		return "INVALUE"
	case NoSlotsKind:
		return "NO_SLOTS"
	case NoProcessKind:
		return "NO_PROCESS"
	case NoNodeKind:
		return "NO_NODE"
	case TimeoutKind:
		return "TIMEOUT"
	case NetworkKind:
		return "NETWORK"
	case GenericKind:
		return "GENERIC"
	default:
		return "UNKNOWN"
	}
}

// Error wraps a Kind with an optional underlying cause, comparable through
// errors.Is against the package-level sentinels below.
type Error struct {
	Kind  Kind
	Cause error
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return e.Kind.String() + ": " + e.Cause.Error()
	}
	return e.Kind.String()
}

func (e *Error) Unwrap() error {
	return e.Cause
}

// Is makes errors.Is(err, ErrNoNode) etc. work regardless of wrapped cause.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok {
		return false
	}
	return e.Kind == t.Kind
}

// NewError builds an *Error of the given kind, optionally wrapping cause.
func NewError(kind Kind, cause error) *Error {
	return &Error{Kind: kind, Cause: cause}
}

// Sentinel values for errors.Is comparisons, one per Kind.
var (
	ErrInvalue   = &Error{Kind: InvalueKind}
	ErrNoSlots   = &Error{Kind: NoSlotsKind}
	ErrNoProcess = &Error{Kind: NoProcessKind}
	ErrNoNode    = &Error{Kind: NoNodeKind}
	ErrTimeout   = &Error{Kind: TimeoutKind}
	ErrNetwork   = &Error{Kind: NetworkKind}
	ErrGeneric   = &Error{Kind: GenericKind}

	// errProtocolV is the cause wrapped by ErrUnsupportedProtocol, kept
	// distinct so checkVersion's %w-formatted message still unwraps to the
	// sentinel via errors.Is.
	errProtocolV = errors.New("protocol version not supported")

	// ErrUnsupportedProtocol marks a local protocol-compatibility gate
	// failure (distributer.Config.checkVersion), not a bit-exact wire error.
	ErrUnsupportedProtocol = &Error{Kind: InvalueKind, Cause: errProtocolV}
)

// KindOf extracts the Kind of err if it is (or wraps) an *Error, otherwise
// GenericKind for any other non-nil error and OK for nil.
func KindOf(err error) Kind {
	if err == nil {
		return OK
	}
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return GenericKind
}
