package fbx

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// PropertyType is the one-byte tag preceding every property.
type PropertyType byte

const (
	TypeInt16        PropertyType = 'Y'
	TypeBool         PropertyType = 'C'
	TypeInt32        PropertyType = 'I'
	TypeFloat32      PropertyType = 'F'
	TypeFloat64      PropertyType = 'D'
	TypeInt64        PropertyType = 'L'
	TypeBoolArray    PropertyType = 'b'
	TypeInt32Array   PropertyType = 'i'
	TypeInt64Array   PropertyType = 'l'
	TypeFloat32Array PropertyType = 'f'
	TypeFloat64Array PropertyType = 'd'
	TypeString       PropertyType = 'S'
	TypeRaw          PropertyType = 'R'
)

// IsArray reports whether t is one of the length-prefixed array tags.
func (t PropertyType) IsArray() bool {
	switch t {
	case TypeBoolArray, TypeInt32Array, TypeInt64Array, TypeFloat32Array, TypeFloat64Array:
		return true
	}
	return false
}

// elemSize is the packed width of one array element.
func (t PropertyType) elemSize() int {
	switch t {
	case TypeBoolArray:
		return 1
	case TypeInt32Array, TypeFloat32Array:
		return 4
	case TypeInt64Array, TypeFloat64Array:
		return 8
	}
	return 0
}

func (t PropertyType) String() string {
	return string(rune(t))
}

// Property is one typed value attached to a node. Type determines the
// dynamic type of Value:
//
//	Y int16, C bool, I int32, F float32, D float64, L int64,
//	b []bool, i []int32, l []int64, f []float32, d []float64,
//	S string, R []byte
type Property struct {
	Type  PropertyType
	Value interface{}
}

type PropertyList []*Property

func (p PropertyList) Get(i int) *Property {
	if i < 0 || i >= len(p) {
		return nil
	}
	return p[i]
}

func (p *Property) mismatch(want string) error {
	if p == nil {
		return errors.Wrapf(ErrUnexpectedProperty, "want %s, got none", want)
	}
	return errors.Wrapf(ErrUnexpectedProperty, "want %s, got %s", want, p.Type)
}

// Count returns the element count of an array property, or 0.
func (p *Property) Count() int {
	if p == nil {
		return 0
	}
	switch v := p.Value.(type) {
	case []bool:
		return len(v)
	case []int32:
		return len(v)
	case []int64:
		return len(v)
	case []float32:
		return len(v)
	case []float64:
		return len(v)
	}
	return 0
}

// Int64 returns an integer scalar (Y, C, I, L) widened to int64.
func (p *Property) Int64() (int64, error) {
	if p != nil {
		switch v := p.Value.(type) {
		case int16:
			return int64(v), nil
		case int32:
			return int64(v), nil
		case int64:
			return v, nil
		case bool:
			if v {
				return 1, nil
			}
			return 0, nil
		}
	}
	return 0, p.mismatch("integer")
}

// Float64 returns any numeric scalar as float64.
func (p *Property) Float64() (float64, error) {
	if p != nil {
		switch v := p.Value.(type) {
		case float32:
			return float64(v), nil
		case float64:
			return v, nil
		case int16:
			return float64(v), nil
		case int32:
			return float64(v), nil
		case int64:
			return float64(v), nil
		}
	}
	return 0, p.mismatch("number")
}

func (p *Property) Bool() (bool, error) {
	if p != nil {
		if v, ok := p.Value.(bool); ok {
			return v, nil
		}
	}
	n, err := p.Int64()
	if err != nil {
		return false, p.mismatch("bool")
	}
	return n != 0, nil
}

// Text returns the value of a string property.
func (p *Property) Text() (string, error) {
	if p != nil {
		if v, ok := p.Value.(string); ok {
			return v, nil
		}
	}
	return "", p.mismatch("string")
}

func (p *Property) Bytes() ([]byte, error) {
	if p != nil {
		if v, ok := p.Value.([]byte); ok {
			return v, nil
		}
	}
	return nil, p.mismatch("raw")
}

func (p *Property) BoolArray() ([]bool, error) {
	if p != nil {
		if v, ok := p.Value.([]bool); ok {
			return v, nil
		}
	}
	return nil, p.mismatch("bool array")
}

func (p *Property) Int32Array() ([]int32, error) {
	if p != nil {
		if v, ok := p.Value.([]int32); ok {
			return v, nil
		}
	}
	return nil, p.mismatch("int32 array")
}

// Int64Array accepts l and i arrays.
func (p *Property) Int64Array() ([]int64, error) {
	if p != nil {
		switch v := p.Value.(type) {
		case []int64:
			return v, nil
		case []int32:
			r := make([]int64, len(v))
			for i, e := range v {
				r[i] = int64(e)
			}
			return r, nil
		}
	}
	return nil, p.mismatch("int64 array")
}

// Float32Array accepts f arrays and narrows d arrays.
func (p *Property) Float32Array() ([]float32, error) {
	if p != nil {
		switch v := p.Value.(type) {
		case []float32:
			return v, nil
		case []float64:
			r := make([]float32, len(v))
			for i, e := range v {
				r[i] = float32(e)
			}
			return r, nil
		}
	}
	return nil, p.mismatch("float array")
}

// Float64Array accepts d arrays and widens f arrays.
func (p *Property) Float64Array() ([]float64, error) {
	if p != nil {
		switch v := p.Value.(type) {
		case []float64:
			return v, nil
		case []float32:
			r := make([]float64, len(v))
			for i, e := range v {
				r[i] = float64(e)
			}
			return r, nil
		}
	}
	return nil, p.mismatch("double array")
}

func (p *Property) ToString(defvalue string) string {
	if p == nil {
		return defvalue
	}
	if v, ok := p.Value.(string); ok {
		return v
	} else if v, ok := p.Value.([]byte); ok {
		return string(v)
	}
	return defvalue
}

// Format renders the value the way it appears in an ASCII document.
func (p *Property) Format(full bool) string {
	if p == nil {
		return "<nil>"
	}
	if p.Type.IsArray() {
		if !full && p.Count() > 16 {
			return fmt.Sprintf("*%d { SKIPPED }", p.Count())
		}
		var arrayReplacer = strings.NewReplacer("[", "{ a: ", "]", " }", " ", ",")
		return fmt.Sprint("*", p.Count(), " ", arrayReplacer.Replace(fmt.Sprint(p.Value)))
	}
	switch v := p.Value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case []byte:
		return fmt.Sprintf("\"%x\"", v)
	case bool:
		if v {
			return "T"
		}
		return "F"
	default:
		return fmt.Sprint(v)
	}
}
