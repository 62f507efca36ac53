package types

import "encoding/binary"

// TypeTag is the opaque small integer a sender attaches to a message so the
// receiver can interpret the payload bytes. The runtime reserves
// ExitMessageTag for supervision notifications; every other value is free
// for application use.
type TypeTag int32

// ExitMessageTag is reserved for supervision exit notifications (spec.md
// §4.5). Negative so it never collides with an application tag, which by
// convention starts at zero (mirroring ACTOR_TYPE_CHAR == 0 in
// original_source/include/actor.h).
const ExitMessageTag TypeTag = -1

// Message is the owned envelope exchanged between processes. Ownership is
// exclusive: the sender holds it up to enqueue, the mailbox while queued,
// the receiver once taken.
type Message struct {
	SourceNID NID
	SourcePID PID
	DestNID   NID
	DestPID   PID
	Type      TypeTag
	Bytes     []byte
}

// Size returns the payload length, mirroring the wire header's size field.
func (m Message) Size() uint32 {
	return uint32(len(m.Bytes))
}

// IsExit reports whether this message carries a supervision notification.
func (m Message) IsExit() bool {
	return m.Type == ExitMessageTag
}

// ExitPayload is the fixed-width layout transmitted as an exit message's
// payload: three 32-bit little-endian integers, grounded directly in
// original_source/src/distributer.c's cast to actor_process_error_message_t
// and main.c's use of error_message->nid/pid/error.
type ExitPayload struct {
	NID  NID
	PID  PID
	Kind Kind
}

// EncodeExit serializes an ExitPayload to its wire form.
func EncodeExit(p ExitPayload) []byte {
	buf := make([]byte, 12)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(p.NID))
	binary.LittleEndian.PutUint32(buf[4:8], uint32(p.PID))
	binary.LittleEndian.PutUint32(buf[8:12], uint32(p.Kind))
	return buf
}

// DecodeExit parses bytes produced by EncodeExit. Returns false if the
// buffer is the wrong length.
func DecodeExit(data []byte) (ExitPayload, bool) {
	if len(data) != 12 {
		return ExitPayload{}, false
	}
	return ExitPayload{
		NID:  NID(int32(binary.LittleEndian.Uint32(data[0:4]))),
		PID:  PID(int32(binary.LittleEndian.Uint32(data[4:8]))),
		Kind: Kind(binary.LittleEndian.Uint32(data[8:12])),
	}, true
}
