package kitchenrpc

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"

	"github.com/google/uuid"
	"github.com/vmihailenco/msgpack/v5"
)

// Header and body keys.
const (
	KeyID       = "id"
	KeyFunction = "function"
	KeyArg      = "arg"
	KeyCode     = "code"
	KeyMessage  = "message"
	KeyResult   = "result"
)

// Response codes. Zero is success.
const (
	CodeOK          int32 = 0
	CodeNoFunc      int32 = -201
	CodeNoSuchFunc  int32 = -202
	CodeNoArg       int32 = -204
	CodeBadArg      int32 = -205
	CodeExecFailed  int32 = -206
	CodeUnresolved  int32 = -207
	CodeInvalidArgs int32 = -208
)

var (
	ErrReqHasNoFunc  = errors.New("request has no function")
	ErrNoSuchFunc    = errors.New("no such function")
	ErrReqHasNoArg   = errors.New("request has no argument")
	ErrPktIncomplete = errors.New("packet incomplete")
)

type Packet struct {
	H map[string][]byte `msgpack:"h,omitempty"`
	B map[string][]byte `msgpack:"b,omitempty"`
}

// ID returns the request id carried in the header.
func (p *Packet) ID() (uuid.UUID, error) {
	b, ok := p.H[KeyID]
	if !ok {
		return uuid.Nil, ErrPktIncomplete
	}
	return uuid.FromBytes(b)
}

// Code returns the response code carried in the body.
func (p *Packet) Code() (int32, error) {
	b, ok := p.B[KeyCode]
	if !ok || len(b) != 4 {
		return 0, ErrPktIncomplete
	}
	return int32(binary.LittleEndian.Uint32(b)), nil
}

func encodeCode(code int32) []byte {
	b := make([]byte, 4)
	binary.LittleEndian.PutUint32(b, uint32(code))
	return b
}

// NewRequest builds a request packet for fn with a fresh id.
func NewRequest(fn string, arg any) (*Packet, uuid.UUID, error) {
	id := uuid.New()
	pkt := &Packet{
		H: map[string][]byte{
			KeyID:       id[:],
			KeyFunction: []byte(fn),
		},
		B: map[string][]byte{},
	}
	if arg != nil {
		b, err := msgpack.Marshal(arg)
		if err != nil {
			return nil, uuid.Nil, err
		}
		pkt.B[KeyArg] = b
	}
	return pkt, id, nil
}

// NewResponse builds the answer to req.
func NewResponse(req *Packet, code int32, message string, result []byte) *Packet {
	pkt := &Packet{
		H: map[string][]byte{},
		B: map[string][]byte{
			KeyCode:    encodeCode(code),
			KeyMessage: []byte(message),
		},
	}
	if req != nil {
		if id, ok := req.H[KeyID]; ok {
			pkt.H[KeyID] = id
		}
		if fn, ok := req.H[KeyFunction]; ok {
			pkt.H[KeyFunction] = fn
		}
	}
	if result != nil {
		pkt.B[KeyResult] = result
	}
	return pkt
}

// PacketBuffer reassembles packets from a byte stream. Bytes of a packet
// that has not fully arrived stay buffered until the next Feed.
type PacketBuffer struct {
	buf bytes.Buffer
}

func (pb *PacketBuffer) Feed(data []byte) ([]*Packet, error) {
	pb.buf.Write(data)

	var results []*Packet
	for pb.buf.Len() > 0 {
		r := bytes.NewReader(pb.buf.Bytes())
		dec := msgpack.NewDecoder(r)
		v := new(Packet)
		if err := dec.Decode(v); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				// not enough data yet, stop
				break
			}
			return results, err
		}
		pb.buf.Next(int(r.Size()) - r.Len())
		results = append(results, v)
	}
	return results, nil
}

// Len reports the number of buffered bytes not yet decoded.
func (pb *PacketBuffer) Len() int {
	return pb.buf.Len()
}

func WritePacket(w io.Writer, pkt *Packet) error {
	b, err := msgpack.Marshal(pkt)
	if err != nil {
		return err
	}
	_, err = w.Write(b)
	return err
}
