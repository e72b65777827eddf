package sim

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// TraCI command and type constants, per the SUMO TraCI protocol.
const (
	cmdGetVersion byte = 0x00
	cmdSimStep    byte = 0x02
	cmdClose      byte = 0x7f

	cmdGetVehicleVar  byte = 0xa4
	respGetVehicleVar byte = 0xb4
	cmdGetSimVar      byte = 0xab
	respGetSimVar     byte = 0xbb

	// vehicle domain variables
	varIDList   byte = 0x00
	varSpeed    byte = 0x40
	varTypeID   byte = 0x4f
	varDistance byte = 0x84

	// simulation domain variables
	varTime        byte = 0x66
	varDeltaT      byte = 0x7b
	varMinExpected byte = 0x7d

	typeUByte      byte = 0x07
	typeInteger    byte = 0x09
	typeDouble     byte = 0x0b
	typeString     byte = 0x0c
	typeStringList byte = 0x0e

	statusOK byte = 0x00
)

// packet builds the payload of a single TraCI command.
type packet struct {
	buf bytes.Buffer
}

func (p *packet) writeByte(b byte) { p.buf.WriteByte(b) }

func (p *packet) writeInt(v int32) {
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(v))
	p.buf.Write(tmp[:])
}

func (p *packet) writeDouble(v float64) {
	var tmp [8]byte
	binary.BigEndian.PutUint64(tmp[:], math.Float64bits(v))
	p.buf.Write(tmp[:])
}

func (p *packet) writeString(s string) {
	p.writeInt(int32(len(s)))
	p.buf.WriteString(s)
}

// frame wraps a command payload into a full TraCI message: a 4-byte message
// length followed by one command with its own length header. Commands longer
// than 255 bytes use the extended 0x00 + int32 header form.
func frame(cmd byte, payload []byte) []byte {
	var body bytes.Buffer
	cmdLen := 2 + len(payload) // length byte + id byte + payload
	if cmdLen <= 255 {
		body.WriteByte(byte(cmdLen))
	} else {
		body.WriteByte(0)
		var tmp [4]byte
		binary.BigEndian.PutUint32(tmp[:], uint32(cmdLen+4))
		body.Write(tmp[:])
	}
	body.WriteByte(cmd)
	body.Write(payload)

	msg := make([]byte, 4+body.Len())
	binary.BigEndian.PutUint32(msg[:4], uint32(4+body.Len()))
	copy(msg[4:], body.Bytes())
	return msg
}

// reader walks a received message body.
type reader struct {
	data []byte
	off  int
}

func (r *reader) remaining() int { return len(r.data) - r.off }

func (r *reader) readByte() (byte, error) {
	if r.remaining() < 1 {
		return 0, io.ErrUnexpectedEOF
	}
	b := r.data[r.off]
	r.off++
	return b, nil
}

func (r *reader) readInt() (int32, error) {
	if r.remaining() < 4 {
		return 0, io.ErrUnexpectedEOF
	}
	v := int32(binary.BigEndian.Uint32(r.data[r.off:]))
	r.off += 4
	return v, nil
}

func (r *reader) readDouble() (float64, error) {
	if r.remaining() < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := math.Float64frombits(binary.BigEndian.Uint64(r.data[r.off:]))
	r.off += 8
	return v, nil
}

func (r *reader) readString() (string, error) {
	n, err := r.readInt()
	if err != nil {
		return "", err
	}
	if n < 0 || r.remaining() < int(n) {
		return "", io.ErrUnexpectedEOF
	}
	s := string(r.data[r.off : r.off+int(n)])
	r.off += int(n)
	return s, nil
}

func (r *reader) readStringList() ([]string, error) {
	n, err := r.readInt()
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, n)
	for i := int32(0); i < n; i++ {
		s, err := r.readString()
		if err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, nil
}

// readCommandHeader consumes a command length header (plain or extended) and
// the command id, returning the id and the payload length.
func (r *reader) readCommandHeader() (byte, int, error) {
	short, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	total := int(short)
	headerLen := 2 // length byte + id byte
	if short == 0 {
		ext, err := r.readInt()
		if err != nil {
			return 0, 0, err
		}
		total = int(ext)
		headerLen = 6
	}
	id, err := r.readByte()
	if err != nil {
		return 0, 0, err
	}
	return id, total - headerLen, nil
}

// readStatus consumes and checks a status command for the given request id.
func (r *reader) readStatus(request byte) error {
	id, _, err := r.readCommandHeader()
	if err != nil {
		return fmt.Errorf("read status header: %w", err)
	}
	if id != request {
		return fmt.Errorf("status for command 0x%02x, expected 0x%02x", id, request)
	}
	result, err := r.readByte()
	if err != nil {
		return fmt.Errorf("read status result: %w", err)
	}
	desc, err := r.readString()
	if err != nil {
		return fmt.Errorf("read status description: %w", err)
	}
	if result != statusOK {
		return fmt.Errorf("command 0x%02x failed: %s", request, desc)
	}
	return nil
}

func readMessage(r io.Reader) (*reader, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return nil, err
	}
	total := int(binary.BigEndian.Uint32(lenBuf[:]))
	if total < 4 {
		return nil, fmt.Errorf("invalid message length %d", total)
	}
	body := make([]byte, total-4)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return &reader{data: body}, nil
}
