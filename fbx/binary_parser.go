package fbx

import (
	"bytes"
	"encoding/binary"
	"io"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/anaminus/parse"
	"github.com/klauspost/compress/flate"
	"github.com/pkg/errors"
	"golang.org/x/text/encoding/charmap"
)

const (
	binaryMagic = "Kaydara FBX Binary  \x00\x1a\x00"

	// Files from this version on use 64-bit node record headers.
	largeHeaderVersion = 7500

	binarySeparator = "\x00\x01"
	asciiSeparator  = "::"

	readChunkSize = 64 * 1024
)

type binaryParser struct {
	r       *parse.BinaryReader
	version uint32
}

func newBinaryParser(r io.Reader) *binaryParser {
	return &binaryParser{r: parse.NewBinaryReader(r)}
}

// fail returns the pending error of the reader wrapped with the current
// offset, or nil. Short reads are reported as ErrTruncatedInput.
func (p *binaryParser) fail(err error) error {
	p.r.Add(0, err)
	err = p.r.Err()
	if err == nil {
		return nil
	}
	if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
		err = ErrTruncatedInput
	}
	return DataError{Offset: p.r.N(), Cause: err}
}

// readFull reads exactly n bytes. Memory grows with the data actually present,
// so a corrupt length does not trigger a huge allocation.
func (p *binaryParser) readFull(n int64) ([]byte, bool) {
	if n < 0 {
		p.r.Add(0, ErrTruncatedInput)
		return nil, true
	}
	if n <= readChunkSize {
		b := make([]byte, n)
		return b, p.r.Bytes(b)
	}
	var buf bytes.Buffer
	chunk := make([]byte, readChunkSize)
	for n > 0 {
		c := chunk
		if n < int64(len(c)) {
			c = c[:n]
		}
		if p.r.Bytes(c) {
			return nil, true
		}
		buf.Write(c)
		n -= int64(len(c))
	}
	return buf.Bytes(), false
}

func (p *binaryParser) skipTo(pos int64) bool {
	if d := pos - p.r.N(); d > 0 {
		_, failed := p.readFull(d)
		return failed
	}
	return false
}

func (p *binaryParser) readHeader() error {
	magic := make([]byte, len(binaryMagic))
	if p.r.Bytes(magic) {
		if errors.Is(p.r.Err(), io.EOF) || errors.Is(p.r.Err(), io.ErrUnexpectedEOF) {
			return DataError{Offset: 0, Cause: ErrInvalidHeader}
		}
		return p.fail(nil)
	}
	if string(magic) != binaryMagic {
		return DataError{Offset: 0, Cause: ErrInvalidHeader}
	}
	if p.r.Number(&p.version) {
		return p.fail(nil)
	}
	return nil
}

// readOffset reads one node header field, which is 64-bit wide in newer files.
func (p *binaryParser) readOffset(v *uint64) bool {
	if p.version >= largeHeaderVersion {
		return p.r.Number(v)
	}
	var v32 uint32
	if p.r.Number(&v32) {
		return true
	}
	*v = uint64(v32)
	return false
}

func (p *binaryParser) readString(raw []byte) string {
	var s string
	if utf8.Valid(raw) {
		s = string(raw)
	} else if b, err := charmap.Windows1252.NewDecoder().Bytes(raw); err == nil {
		s = string(b)
	} else {
		s = string(raw)
	}
	if strings.Contains(s, binarySeparator) {
		tokens := strings.Split(s, binarySeparator)
		for i, j := 0, len(tokens)-1; i < j; i, j = i+1, j-1 {
			tokens[i], tokens[j] = tokens[j], tokens[i]
		}
		s = strings.Join(tokens, asciiSeparator)
	}
	return s
}

// checkZlibHeader validates the two-byte zlib stream header.
func checkZlibHeader(cmf, flg byte) error {
	if cmf&0x0f != 8 || cmf>>4 > 7 {
		return errors.Wrapf(ErrInvalidCompressionHeader, "cmf 0x%02x", cmf)
	}
	if (uint16(cmf)<<8|uint16(flg))%31 != 0 {
		return errors.Wrapf(ErrInvalidCompressionHeader, "fcheck 0x%02x%02x", cmf, flg)
	}
	if flg&0x20 != 0 {
		return ErrUnsupportedCompressionDictionary
	}
	return nil
}

func inflate(payload []byte, size int64) ([]byte, error) {
	if len(payload) < 2 {
		return nil, ErrTruncatedInput
	}
	if err := checkZlibHeader(payload[0], payload[1]); err != nil {
		return nil, err
	}
	zr := flate.NewReader(bytes.NewReader(payload[2:]))
	defer zr.Close()
	data, err := io.ReadAll(io.LimitReader(zr, size))
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, errors.Wrap(err, "inflate")
	}
	if int64(len(data)) != size {
		return nil, errors.Wrapf(ErrTruncatedInput, "inflated %d of %d bytes", len(data), size)
	}
	return data, nil
}

func decodeArray(typ PropertyType, count int, data []byte) interface{} {
	le := binary.LittleEndian
	switch typ {
	case TypeBoolArray:
		v := make([]bool, count)
		for i := range v {
			v[i] = data[i] == 1
		}
		return v
	case TypeInt32Array:
		v := make([]int32, count)
		for i := range v {
			v[i] = int32(le.Uint32(data[i*4:]))
		}
		return v
	case TypeInt64Array:
		v := make([]int64, count)
		for i := range v {
			v[i] = int64(le.Uint64(data[i*8:]))
		}
		return v
	case TypeFloat32Array:
		v := make([]float32, count)
		for i := range v {
			v[i] = math.Float32frombits(le.Uint32(data[i*4:]))
		}
		return v
	case TypeFloat64Array:
		v := make([]float64, count)
		for i := range v {
			v[i] = math.Float64frombits(le.Uint64(data[i*8:]))
		}
		return v
	}
	return nil
}

func (p *binaryParser) readPropArray(typ PropertyType) (*Property, error) {
	var count, encoding, sz uint32
	if p.r.Number(&count) || p.r.Number(&encoding) || p.r.Number(&sz) {
		return nil, p.fail(nil)
	}
	start := p.r.N()
	size := int64(count) * int64(typ.elemSize())

	var data []byte
	switch encoding {
	case 0:
		if size > int64(sz) {
			return nil, DataError{Offset: start, Cause: errors.Wrapf(ErrTruncatedInput, "%d raw bytes in a %d byte array", size, sz)}
		}
		var failed bool
		if data, failed = p.readFull(size); failed {
			return nil, p.fail(nil)
		}
	case 1:
		payload, failed := p.readFull(int64(sz))
		if failed {
			return nil, p.fail(nil)
		}
		var err error
		if data, err = inflate(payload, size); err != nil {
			return nil, DataError{Offset: start, Cause: err}
		}
	default:
		return nil, DataError{Offset: start, Cause: errors.Wrapf(ErrUnsupportedCompressionEncoding, "encoding %d", encoding)}
	}
	if p.skipTo(start + int64(sz)) {
		return nil, p.fail(nil)
	}
	return &Property{Type: typ, Value: decodeArray(typ, int(count), data)}, nil
}

func (p *binaryParser) readProp() (*Property, error) {
	var tag uint8
	if p.r.Number(&tag) {
		return nil, p.fail(nil)
	}
	typ := PropertyType(tag)

	switch typ {
	case TypeInt16:
		var v int16
		if p.r.Number(&v) {
			return nil, p.fail(nil)
		}
		return &Property{typ, v}, nil
	case TypeBool:
		var v uint8
		if p.r.Number(&v) {
			return nil, p.fail(nil)
		}
		return &Property{typ, v == 1}, nil
	case TypeInt32:
		var v int32
		if p.r.Number(&v) {
			return nil, p.fail(nil)
		}
		return &Property{typ, v}, nil
	case TypeFloat32:
		var v float32
		if p.r.Number(&v) {
			return nil, p.fail(nil)
		}
		return &Property{typ, v}, nil
	case TypeFloat64:
		var v float64
		if p.r.Number(&v) {
			return nil, p.fail(nil)
		}
		return &Property{typ, v}, nil
	case TypeInt64:
		var v int64
		if p.r.Number(&v) {
			return nil, p.fail(nil)
		}
		return &Property{typ, v}, nil
	case TypeString, TypeRaw:
		var length uint32
		if p.r.Number(&length) {
			return nil, p.fail(nil)
		}
		raw, failed := p.readFull(int64(length))
		if failed {
			return nil, p.fail(nil)
		}
		if typ == TypeRaw {
			return &Property{typ, raw}, nil
		}
		return &Property{typ, p.readString(raw)}, nil
	case TypeBoolArray, TypeInt32Array, TypeInt64Array, TypeFloat32Array, TypeFloat64Array:
		return p.readPropArray(typ)
	}
	return nil, DataError{Offset: p.r.N() - 1, Cause: UnknownTypeError{Type: tag}}
}

// readNode returns nil for a terminator record.
func (p *binaryParser) readNode() (*Node, error) {
	var next, nprop, propsz uint64
	if p.readOffset(&next) || p.readOffset(&nprop) || p.readOffset(&propsz) {
		return nil, p.fail(nil)
	}
	var nameLen uint8
	if p.r.Number(&nameLen) {
		return nil, p.fail(nil)
	}
	name := make([]byte, nameLen)
	if p.r.Bytes(name) {
		return nil, p.fail(nil)
	}
	if next == 0 {
		return nil, nil
	}

	n := &Node{Name: string(name)}
	for i := uint64(0); i < nprop; i++ {
		prop, err := p.readProp()
		if err != nil {
			return nil, errors.Wrapf(err, "node %s property %d", n.Name, i)
		}
		n.Properties = append(n.Properties, prop)
	}

	for p.r.N() < int64(next) {
		child, err := p.readNode()
		if err != nil {
			return nil, err
		}
		if child == nil {
			break
		}
		n.Children = append(n.Children, child)
	}

	if p.r.N() > int64(next) {
		return nil, DataError{Offset: p.r.N(), Cause: errors.Wrapf(ErrNodeOverrun, "node %s ends at %d", n.Name, next)}
	}
	if p.skipTo(int64(next)) {
		return nil, p.fail(nil)
	}
	return n, nil
}

func (p *binaryParser) readNodes() ([]*Node, error) {
	var nodes []*Node
	for {
		node, err := p.readNode()
		if err != nil {
			return nil, err
		}
		if node == nil {
			return nodes, nil
		}
		nodes = append(nodes, node)
	}
}
