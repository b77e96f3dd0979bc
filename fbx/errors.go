package fbx

import (
	"strconv"
	"strings"

	"github.com/pkg/errors"
)

var (
	ErrInvalidHeader                    = errors.New("invalid fbx header")
	ErrInvalidFooterChecksum            = errors.New("invalid footer checksum")
	ErrMissingTimestamp                 = errors.New("missing creation timestamp")
	ErrInvalidTimestampField            = errors.New("invalid timestamp field")
	ErrInvalidCompressionHeader         = errors.New("invalid compression header")
	ErrUnsupportedCompressionEncoding   = errors.New("unsupported compression encoding")
	ErrUnsupportedCompressionDictionary = errors.New("unsupported compression dictionary")
	ErrTruncatedInput                   = errors.New("truncated input")
	ErrMissingRequiredChild             = errors.New("missing required child")
	ErrUnknownPropertyType              = errors.New("unknown property type")
	ErrUnexpectedProperty               = errors.New("unexpected property")
	ErrNodeOverrun                      = errors.New("node overruns its end offset")
	ErrCyclicGraph                      = errors.New("cyclic connection graph")
)

// DataError is a decode failure at a byte offset of the input.
type DataError struct {
	Offset int64
	Cause  error
}

func (err DataError) Error() string {
	msg := "fbx: offset " + strconv.FormatInt(err.Offset, 10)
	if err.Cause == nil {
		return msg
	}
	return msg + ": " + err.Cause.Error()
}

func (err DataError) Unwrap() error {
	return err.Cause
}

// UnknownTypeError indicates a property tag outside the known set.
type UnknownTypeError struct {
	Type byte
}

func (err UnknownTypeError) Error() string {
	return "unknown property type " + strconv.QuoteRune(rune(err.Type))
}

func (err UnknownTypeError) Unwrap() error {
	return ErrUnknownPropertyType
}

// TimestampFieldError indicates a creation timestamp component out of range.
type TimestampFieldError struct {
	Field string
	Value int
}

func (err TimestampFieldError) Error() string {
	return "invalid timestamp field " + err.Field + ": " + strconv.Itoa(err.Value)
}

func (err TimestampFieldError) Unwrap() error {
	return ErrInvalidTimestampField
}

// MissingChildError indicates that an extractor could not find a required child node.
type MissingChildError struct {
	Node  string
	Child string
}

func (err MissingChildError) Error() string {
	return err.Node + ": missing required child " + strconv.Quote(err.Child)
}

func (err MissingChildError) Unwrap() error {
	return ErrMissingRequiredChild
}

// PropertyError indicates a property that is absent or holds an unexpected
// variant.
type PropertyError struct {
	// Node is the name of the node holding the property.
	Node string
	// Name is the Properties70 entry name, if any.
	Name string
	// Index is the position of the property within the node.
	Index int

	Cause error
}

func (err PropertyError) Error() string {
	var s strings.Builder
	s.WriteString(err.Node)
	if err.Name != "" {
		s.WriteString(" ")
		s.WriteString(strconv.Quote(err.Name))
	}
	s.WriteString(" property ")
	s.WriteString(strconv.Itoa(err.Index))
	if err.Cause != nil {
		s.WriteString(": ")
		s.WriteString(err.Cause.Error())
	}
	return s.String()
}

func (err PropertyError) Unwrap() error {
	return err.Cause
}

// CyclicGraphError indicates a connection that points back at one of its
// ancestors in the scene tree.
type CyclicGraphError struct {
	ID int64
}

func (err CyclicGraphError) Error() string {
	return "cyclic connection graph at id " + strconv.FormatInt(err.ID, 10)
}

func (err CyclicGraphError) Unwrap() error {
	return ErrCyclicGraph
}

// FooterWarning describes a deviation in the footer tail. It is never
// returned as a decode error.
type FooterWarning struct {
	Offset int64
	Reason string
}

func (err FooterWarning) Error() string {
	return "footer at " + strconv.FormatInt(err.Offset, 10) + ": " + err.Reason
}

// Errors collects failures of independent objects, such as one bad Model
// among many. The zero value is an empty list.
type Errors []error

func (errs Errors) Error() string {
	if len(errs) == 1 {
		return errs[0].Error()
	}
	msgs := make([]string, len(errs))
	for i, err := range errs {
		msgs[i] = strings.ReplaceAll(err.Error(), "\n", "\n  ")
	}
	return strconv.Itoa(len(errs)) + " errors:\n  " + strings.Join(msgs, "\n  ")
}

// Append adds the non-nil errors in err.
func (errs Errors) Append(err ...error) Errors {
	for _, e := range err {
		if e != nil {
			errs = append(errs, e)
		}
	}
	return errs
}

// Return is errs as an error, or nil when the list is empty.
func (errs Errors) Return() error {
	if len(errs) > 0 {
		return errs
	}
	return nil
}

func (errs Errors) Is(target error) bool {
	for _, err := range errs {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// Union flattens errs into a single Errors, nil when nothing remains.
func Union(errs ...error) error {
	var r Errors
	for _, err := range errs {
		if list, ok := err.(Errors); ok {
			r = r.Append(list...)
		} else {
			r = r.Append(err)
		}
	}
	return r.Return()
}
