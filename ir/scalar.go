package ir

import (
	"fmt"
	"strings"
)

// ScalarType is the abstract column type independent of any backend.
type ScalarType int

const (
	ScalarInvalid ScalarType = iota
	ScalarBool
	ScalarUint8
	ScalarInt16
	ScalarInt32
	ScalarInt64
	ScalarDecimal
	ScalarFloat32
	ScalarFloat64
	ScalarString
	ScalarBytes
	ScalarDateTime
	ScalarDateTimeOffset
	ScalarDuration
	ScalarUUID
	ScalarVariant
)

// ScalarTypes lists every supported abstract type in declaration order.
var ScalarTypes = []ScalarType{
	ScalarBool,
	ScalarUint8,
	ScalarInt16,
	ScalarInt32,
	ScalarInt64,
	ScalarDecimal,
	ScalarFloat32,
	ScalarFloat64,
	ScalarString,
	ScalarBytes,
	ScalarDateTime,
	ScalarDateTimeOffset,
	ScalarDuration,
	ScalarUUID,
	ScalarVariant,
}

func (t ScalarType) String() string {
	switch t {
	case ScalarBool:
		return "bool"
	case ScalarUint8:
		return "uint8"
	case ScalarInt16:
		return "int16"
	case ScalarInt32:
		return "int32"
	case ScalarInt64:
		return "int64"
	case ScalarDecimal:
		return "decimal"
	case ScalarFloat32:
		return "float32"
	case ScalarFloat64:
		return "float64"
	case ScalarString:
		return "string"
	case ScalarBytes:
		return "bytes"
	case ScalarDateTime:
		return "datetime"
	case ScalarDateTimeOffset:
		return "datetimeoffset"
	case ScalarDuration:
		return "duration"
	case ScalarUUID:
		return "uuid"
	case ScalarVariant:
		return "variant"
	default:
		return fmt.Sprintf("ScalarType(%d)", int(t))
	}
}

// IsReference reports whether values of t are inherently nullable, so an
// optional wrapper is never applied to them.
func (t ScalarType) IsReference() bool {
	switch t {
	case ScalarString, ScalarBytes, ScalarVariant:
		return true
	default:
		return false
	}
}

// MarshalText encodes the type by name for JSON and YAML output.
func (t ScalarType) MarshalText() ([]byte, error) {
	return []byte(t.String()), nil
}

// UnmarshalText decodes a type name written by MarshalText.
func (t *ScalarType) UnmarshalText(text []byte) error {
	parsed, err := ParseScalarType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// ParseScalarType looks a type up by its name, ignoring case.
func ParseScalarType(name string) (ScalarType, error) {
	for _, t := range ScalarTypes {
		if strings.EqualFold(t.String(), name) {
			return t, nil
		}
	}
	return ScalarInvalid, fmt.Errorf("unknown scalar type %q", name)
}

// Type is an abstract type as reported by the backend: a scalar plus
// whether the column admits NULL for value kinds.
type Type struct {
	Scalar   ScalarType
	Optional bool
}

func (t Type) String() string {
	if t.Optional {
		return "*" + t.Scalar.String()
	}
	return t.Scalar.String()
}
