package fbx

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"reflect"

	"github.com/klauspost/compress/zlib"
)

// testWriter encodes nodes in the binary layout read by binaryParser.
type testWriter struct {
	buf      bytes.Buffer
	version  uint32
	compress bool
}

func (w *testWriter) u32(v uint32) {
	binary.Write(&w.buf, binary.LittleEndian, v)
}

func (w *testWriter) offset(v uint64) {
	if w.version >= largeHeaderVersion {
		binary.Write(&w.buf, binary.LittleEndian, v)
	} else {
		w.u32(uint32(v))
	}
}

func (w *testWriter) putOffset(pos int, v uint64) {
	b := w.buf.Bytes()
	if w.version >= largeHeaderVersion {
		binary.LittleEndian.PutUint64(b[pos:], v)
	} else {
		binary.LittleEndian.PutUint32(b[pos:], uint32(v))
	}
}

func (w *testWriter) offsetSize() int {
	if w.version >= largeHeaderVersion {
		return 8
	}
	return 4
}

func (w *testWriter) writeArray(count int, raw []byte) {
	payload := raw
	var encoding uint32
	if w.compress {
		var z bytes.Buffer
		zw := zlib.NewWriter(&z)
		zw.Write(raw)
		zw.Close()
		payload = z.Bytes()
		encoding = 1
	}
	w.u32(uint32(count))
	w.u32(encoding)
	w.u32(uint32(len(payload)))
	w.buf.Write(payload)
}

func (w *testWriter) writeProp(p *Property) {
	w.buf.WriteByte(byte(p.Type))
	switch v := p.Value.(type) {
	case bool:
		if v {
			w.buf.WriteByte(1)
		} else {
			w.buf.WriteByte(0)
		}
	case int16, int32, int64, float32, float64:
		binary.Write(&w.buf, binary.LittleEndian, v)
	case string:
		w.u32(uint32(len(v)))
		w.buf.WriteString(v)
	case []byte:
		w.u32(uint32(len(v)))
		w.buf.Write(v)
	case []bool:
		raw := make([]byte, len(v))
		for i, b := range v {
			if b {
				raw[i] = 1
			}
		}
		w.writeArray(len(v), raw)
	default:
		var raw bytes.Buffer
		binary.Write(&raw, binary.LittleEndian, v)
		w.writeArray(reflect.ValueOf(v).Len(), raw.Bytes())
	}
}

func (w *testWriter) terminator() {
	w.buf.Write(make([]byte, w.offsetSize()*3+1))
}

func (w *testWriter) writeNode(n *Node) {
	start := w.buf.Len()
	w.offset(0)
	w.offset(uint64(len(n.Properties)))
	w.offset(0)
	w.buf.WriteByte(byte(len(n.Name)))
	w.buf.WriteString(n.Name)

	propStart := w.buf.Len()
	for _, p := range n.Properties {
		w.writeProp(p)
	}
	propLen := w.buf.Len() - propStart

	for _, c := range n.Children {
		w.writeNode(c)
	}
	if len(n.Children) > 0 || len(n.Properties) == 0 {
		w.terminator()
	}
	w.putOffset(start, uint64(w.buf.Len()))
	w.putOffset(start+w.offsetSize()*2, uint64(propLen))
}

// encodeDocument writes a complete file. The footer code is derived from the
// CreationTimeStamp in nodes, or left zero when there is none.
func encodeDocument(version uint32, nodes []*Node, compress bool) []byte {
	w := &testWriter{version: version, compress: compress}
	w.buf.WriteString(binaryMagic)
	w.u32(version)
	for _, n := range nodes {
		w.writeNode(n)
	}
	w.terminator()

	var code [footerCodeSize]byte
	if ts, err := readTimestamp(nodes); err == nil {
		code, _ = FooterCode(ts)
	}
	w.buf.Write(code[:])
	w.buf.Write(make([]byte, footerZeroes1))
	w.u32(version)
	w.buf.Write(make([]byte, footerZeroes2))
	w.buf.Write(footerTrailer[:])
	return w.buf.Bytes()
}

const footerTailSize = footerZeroes1 + 4 + footerZeroes2 + footerCodeSize

// newProp maps Go values to properties. int becomes an I property.
func newProp(v interface{}) *Property {
	switch v := v.(type) {
	case int16:
		return &Property{TypeInt16, v}
	case bool:
		return &Property{TypeBool, v}
	case int:
		return &Property{TypeInt32, int32(v)}
	case int32:
		return &Property{TypeInt32, v}
	case float32:
		return &Property{TypeFloat32, v}
	case float64:
		return &Property{TypeFloat64, v}
	case int64:
		return &Property{TypeInt64, v}
	case []bool:
		return &Property{TypeBoolArray, v}
	case []int32:
		return &Property{TypeInt32Array, v}
	case []int64:
		return &Property{TypeInt64Array, v}
	case []float32:
		return &Property{TypeFloat32Array, v}
	case []float64:
		return &Property{TypeFloat64Array, v}
	case string:
		return &Property{TypeString, v}
	case []byte:
		return &Property{TypeRaw, v}
	}
	panic(fmt.Sprintf("unsupported property %T", v))
}

func props(v ...interface{}) []interface{} {
	return v
}

func node(name string, values []interface{}, children ...*Node) *Node {
	n := &Node{Name: name, Children: children}
	for _, v := range values {
		n.Properties = append(n.Properties, newProp(v))
	}
	return n
}

// p70 builds a Properties70 entry.
func p70(name, typ string, values ...interface{}) *Node {
	return node("P", append(props(name, typ, "", "A"), values...))
}

func headerExtension(ts Timestamp) *Node {
	return node("FBXHeaderExtension", nil,
		node("FBXHeaderVersion", props(1003)),
		node("CreationTimeStamp", nil,
			node("Version", props(1000)),
			node("Year", props(ts.Year)),
			node("Month", props(ts.Month)),
			node("Day", props(ts.Day)),
			node("Hour", props(ts.Hour)),
			node("Minute", props(ts.Minute)),
			node("Second", props(ts.Second)),
			node("Millisecond", props(ts.Millisecond)),
		),
		node("Creator", props("fbxreader test")),
	)
}

var testTimestamp = Timestamp{Year: 2024, Month: 3, Day: 7, Hour: 13, Minute: 45, Second: 22, Millisecond: 500}

func newTestDocument(nodes ...*Node) *Document {
	return &Document{Version: 7400, Nodes: nodes}
}
