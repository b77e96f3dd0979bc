package fbx

import (
	"io"
	"os"

	"github.com/pkg/errors"
)

// Decoder decodes binary FBX documents.
type Decoder struct {
	// IgnoreFooterChecksum skips the footer code verification. The timestamp
	// is not required in that case.
	IgnoreFooterChecksum bool
}

// Decode reads a binary document from r. Deviations in the footer tail are
// returned in warn and never abort decoding.
func (d Decoder) Decode(r io.Reader) (doc *Document, warn, err error) {
	p := newBinaryParser(r)
	if err := p.readHeader(); err != nil {
		return nil, nil, err
	}

	nodes, err := p.readNodes()
	if err != nil {
		return nil, nil, err
	}
	doc = &Document{Version: p.version, Nodes: nodes}

	footerOffset := p.r.N()
	if p.r.Bytes(doc.FooterCode[:]) {
		return nil, nil, p.fail(nil)
	}
	if !d.IgnoreFooterChecksum {
		ts, err := readTimestamp(nodes)
		if err != nil {
			return nil, nil, DataError{Offset: footerOffset, Cause: err}
		}
		code, err := FooterCode(ts)
		if err != nil {
			return nil, nil, DataError{Offset: footerOffset, Cause: err}
		}
		if code != doc.FooterCode {
			return nil, nil, DataError{Offset: footerOffset, Cause: errors.Wrapf(ErrInvalidFooterChecksum, "timestamp %v", ts)}
		}
	}

	tailOffset := p.r.N()
	tail := make([]byte, footerZeroes1+4+footerZeroes2+footerCodeSize)
	p.r.Bytes(tail)
	if got := p.r.N() - tailOffset; got < int64(len(tail)) {
		tail = tail[:got]
	}
	doc.Warnings = checkFooterTail(tail, tailOffset, doc.Version)
	return doc, doc.Warnings.Return(), nil
}

// Parse decodes r with the default Decoder. Footer warnings are kept in
// Document.Warnings.
func Parse(r io.Reader) (*Document, error) {
	doc, _, err := Decoder{}.Decode(r)
	return doc, err
}

func Load(path string) (*Document, error) {
	r, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer r.Close()
	return Parse(r)
}
