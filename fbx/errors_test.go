package fbx

import (
	"testing"

	"github.com/pkg/errors"
)

func TestErrors(t *testing.T) {
	var errs Errors
	if errs.Append(nil, nil).Return() != nil {
		t.Error("empty list must return nil")
	}

	errs = errs.Append(ErrTruncatedInput, nil, MissingChildError{Node: "Pose", Child: "Node"})
	if len(errs) != 2 {
		t.Fatal("append: ", errs)
	}
	if !errors.Is(errs.Return(), ErrMissingRequiredChild) || errors.Is(errs, ErrCyclicGraph) {
		t.Error("Is: ", errs)
	}
	if got := (Errors{ErrTruncatedInput}).Error(); got != ErrTruncatedInput.Error() {
		t.Error("single error: ", got)
	}

	u := Union(nil, errs, ErrNodeOverrun, Errors{})
	if list, ok := u.(Errors); !ok || len(list) != 3 || list[2] != ErrNodeOverrun {
		t.Error("union: ", u)
	}
	if Union(nil, Errors{}) != nil {
		t.Error("union of nothing must be nil")
	}
}

func TestDataError(t *testing.T) {
	err := DataError{Offset: 27, Cause: ErrTruncatedInput}
	if err.Error() != "fbx: offset 27: truncated input" {
		t.Error("message: ", err.Error())
	}
	if !errors.Is(err, ErrTruncatedInput) {
		t.Error("DataError must unwrap to its cause")
	}
}
