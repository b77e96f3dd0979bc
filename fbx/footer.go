package fbx

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
)

const (
	footerCodeSize = 16
	footerZeroes1  = 20
	footerZeroes2  = 120
)

var (
	footerSourceID = [footerCodeSize]byte{0x58, 0xAB, 0xA9, 0xF0, 0x6C, 0xA2, 0xD8, 0x3F, 0x4D, 0x47, 0x49, 0xA3, 0xB4, 0xB2, 0xE7, 0x3D}
	footerKey      = [footerCodeSize]byte{0xE2, 0x4F, 0x7B, 0x5F, 0xCD, 0xE4, 0xC8, 0x6D, 0xDB, 0xD8, 0xFB, 0xD7, 0x40, 0x58, 0xC6, 0x78}
	footerTrailer  = [footerCodeSize]byte{0xF8, 0x5A, 0x8C, 0x6A, 0xDE, 0xF5, 0xD9, 0x7E, 0xEC, 0xE9, 0x0C, 0xE3, 0x75, 0x8F, 0x29, 0x0B}
)

// Timestamp is the content of FBXHeaderExtension/CreationTimeStamp.
type Timestamp struct {
	Year, Month, Day     int
	Hour, Minute, Second int
	Millisecond          int
}

func NewTimestamp(t time.Time) Timestamp {
	return Timestamp{
		Year: t.Year(), Month: int(t.Month()), Day: t.Day(),
		Hour: t.Hour(), Minute: t.Minute(), Second: t.Second(),
		Millisecond: t.Nanosecond() / int(time.Millisecond),
	}
}

// Validate checks every component against its range. Zero values are allowed.
func (ts Timestamp) Validate() error {
	for _, f := range []struct {
		name  string
		value int
		max   int
	}{
		{"Year", ts.Year, 9999},
		{"Month", ts.Month, 12},
		{"Day", ts.Day, 31},
		{"Hour", ts.Hour, 23},
		{"Minute", ts.Minute, 59},
		{"Second", ts.Second, 59},
		{"Millisecond", ts.Millisecond, 999},
	} {
		if f.value < 0 || f.value > f.max {
			return TimestampFieldError{Field: f.name, Value: f.value}
		}
	}
	return nil
}

func (ts Timestamp) String() string {
	return fmt.Sprintf("%04d-%02d-%02d %02d:%02d:%02d:%03d", ts.Year, ts.Month, ts.Day, ts.Hour, ts.Minute, ts.Second, ts.Millisecond)
}

// encrypt is the XOR feedback cipher used for the footer. b is cycled when
// shorter than a.
func encrypt(a *[footerCodeSize]byte, b []byte) {
	var c byte = 64
	for i := range a {
		a[i] = a[i] ^ (c ^ b[i%len(b)])
		c = a[i]
	}
}

// FooterCode derives the 16 byte footer code that follows the top-level
// node list.
func FooterCode(ts Timestamp) ([footerCodeSize]byte, error) {
	code := footerSourceID
	if err := ts.Validate(); err != nil {
		return code, err
	}
	mangled := []byte(fmt.Sprintf("%02d%02d%02d%02d%02d%04d%02d",
		ts.Second, ts.Month, ts.Hour, ts.Day, ts.Millisecond/10, ts.Year, ts.Minute))
	encrypt(&code, mangled)
	encrypt(&code, footerKey[:])
	encrypt(&code, mangled)
	return code, nil
}

// readTimestamp collects the CreationTimeStamp fields from the top-level nodes.
func readTimestamp(nodes []*Node) (Timestamp, error) {
	var ext *Node
	for _, n := range nodes {
		if n.Name == "FBXHeaderExtension" {
			ext = n
			break
		}
	}
	tsNode := ext.FindChild("CreationTimeStamp")
	if tsNode == nil {
		return Timestamp{}, ErrMissingTimestamp
	}

	var ts Timestamp
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"Year", &ts.Year},
		{"Month", &ts.Month},
		{"Day", &ts.Day},
		{"Hour", &ts.Hour},
		{"Minute", &ts.Minute},
		{"Second", &ts.Second},
		{"Millisecond", &ts.Millisecond},
	} {
		v, err := tsNode.FindChild(f.name).Prop(0).Int64()
		if err != nil {
			return Timestamp{}, errors.Wrapf(ErrMissingTimestamp, "no %s", f.name)
		}
		*f.v = int(v)
	}
	return ts, nil
}

// checkFooterTail reports every deviation from the fixed footer layout.
func checkFooterTail(tail []byte, offset int64, version uint32) Errors {
	var warns Errors
	want := make([]byte, 0, footerZeroes1+4+footerZeroes2+footerCodeSize)
	want = append(want, make([]byte, footerZeroes1)...)
	want = append(want, byte(version), byte(version>>8), byte(version>>16), byte(version>>24))
	want = append(want, make([]byte, footerZeroes2)...)
	want = append(want, footerTrailer[:]...)

	sections := []struct {
		reason     string
		start, end int
	}{
		{"non-zero padding", 0, footerZeroes1},
		{"version mismatch", footerZeroes1, footerZeroes1 + 4},
		{"non-zero padding", footerZeroes1 + 4, footerZeroes1 + 4 + footerZeroes2},
		{"unexpected trailer", footerZeroes1 + 4 + footerZeroes2, len(want)},
	}
	for _, s := range sections {
		if len(tail) < s.end {
			warns = warns.Append(FooterWarning{Offset: offset + int64(len(tail)), Reason: "truncated footer"})
			break
		}
		if string(tail[s.start:s.end]) != string(want[s.start:s.end]) {
			warns = warns.Append(FooterWarning{Offset: offset + int64(s.start), Reason: s.reason})
		}
	}
	return warns
}
