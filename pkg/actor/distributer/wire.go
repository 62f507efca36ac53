// Package distributer splices remote nodes into the local pid space over a
// small framed TCP protocol: a pre-shared-key handshake followed by a
// length-prefixed message frame, per spec.md §4.6 and §6.
package distributer

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/jabolina/actorkit/pkg/actor/types"
)

// headerSize is the wire width of one frame header: dest_pid, size,
// type_tag, each a 32-bit little-endian field (spec.md §6 recommends
// 32-bit little-endian for portability across architectures).
const headerSize = 12

// header is the bit-exact frame header from spec.md §4.6/§6.
type header struct {
	destPID types.PID
	size    uint32
	tag     types.TypeTag
}

func encodeHeader(h header) []byte {
	buf := make([]byte, headerSize)
	binary.LittleEndian.PutUint32(buf[0:4], uint32(h.destPID))
	binary.LittleEndian.PutUint32(buf[4:8], h.size)
	binary.LittleEndian.PutUint32(buf[8:12], uint32(h.tag))
	return buf
}

func decodeHeader(buf []byte) (header, error) {
	if len(buf) != headerSize {
		return header{}, fmt.Errorf("short header: %d bytes", len(buf))
	}
	return header{
		destPID: types.PID(int32(binary.LittleEndian.Uint32(buf[0:4]))),
		size:    binary.LittleEndian.Uint32(buf[4:8]),
		tag:     types.TypeTag(int32(binary.LittleEndian.Uint32(buf[8:12]))),
	}, nil
}

// writeFrame writes one header followed by exactly len(payload) bytes, per
// spec.md §4.6's "one header followed by size payload bytes."
func writeFrame(w io.Writer, h header, payload []byte) error {
	if _, err := w.Write(encodeHeader(h)); err != nil {
		return err
	}
	if len(payload) == 0 {
		return nil
	}
	_, err := w.Write(payload)
	return err
}

// readFrame reads one header and its payload. Any short read closes the
// connection per spec.md §6 ("any short read, short write, or field out
// of bounds closes the connection") — io.ReadFull already surfaces a
// short read as an error, which the caller treats as NETWORK.
func readFrame(r io.Reader) (header, []byte, error) {
	buf := make([]byte, headerSize)
	if _, err := io.ReadFull(r, buf); err != nil {
		return header{}, nil, err
	}
	h, err := decodeHeader(buf)
	if err != nil {
		return header{}, nil, err
	}
	payload := make([]byte, h.size)
	if h.size > 0 {
		if _, err := io.ReadFull(r, payload); err != nil {
			return header{}, nil, err
		}
	}
	return h, payload, nil
}

// encodeKey pads key into the fixed KeyLength+1 buffer the handshake
// transmits, mirroring original_source/src/distributer.c's
// `char buffer[ACTOR_DISTRIBUTER_KEYLENGTH + 1]; strcpy(buffer, key);` —
// the extra byte is a NUL terminator.
func encodeKey(key string) ([]byte, error) {
	if len(key) > types.KeyLength {
		return nil, types.ErrInvalue
	}
	buf := make([]byte, types.KeyLength+1)
	copy(buf, key)
	return buf, nil
}

func decodeKey(buf []byte) string {
	for i, b := range buf {
		if b == 0 {
			return string(buf[:i])
		}
	}
	return string(buf)
}

func encodeNID(nid types.NID) []byte {
	buf := make([]byte, 4)
	binary.LittleEndian.PutUint32(buf, uint32(nid))
	return buf
}

func decodeNID(buf []byte) types.NID {
	return types.NID(int32(binary.LittleEndian.Uint32(buf)))
}
