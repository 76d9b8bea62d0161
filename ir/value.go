package ir

import (
	"bytes"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	ValueNull ValueKind = iota
	ValueBool
	ValueInt
	ValueFloat
	ValueString
	ValueBytes
	ValueTime
	ValueUUID
	// ValueExpression holds raw SQL, such as a function call or a default
	// definition read back from the catalog.
	ValueExpression
)

func (k ValueKind) String() string {
	switch k {
	case ValueNull:
		return "null"
	case ValueBool:
		return "bool"
	case ValueInt:
		return "int"
	case ValueFloat:
		return "float"
	case ValueString:
		return "string"
	case ValueBytes:
		return "bytes"
	case ValueTime:
		return "time"
	case ValueUUID:
		return "uuid"
	case ValueExpression:
		return "expression"
	default:
		return fmt.Sprintf("ValueKind(%d)", int(k))
	}
}

// Value is an immutable scalar crossing the type-mapping boundary, used for
// column defaults and scalar results. The zero Value is NULL.
type Value struct {
	kind ValueKind
	b    bool
	i    int64
	f    float64
	s    string
	bs   []byte
	t    time.Time
	u    uuid.UUID
}

// Null returns the NULL value.
func Null() Value { return Value{} }

func Bool(v bool) Value { return Value{kind: ValueBool, b: v} }

func Int(v int64) Value { return Value{kind: ValueInt, i: v} }

func Float(v float64) Value { return Value{kind: ValueFloat, f: v} }

func String(v string) Value { return Value{kind: ValueString, s: v} }

func Time(v time.Time) Value { return Value{kind: ValueTime, t: v} }

func UUID(v uuid.UUID) Value { return Value{kind: ValueUUID, u: v} }

func Bytes(v []byte) Value { return Value{kind: ValueBytes, bs: bytes.Clone(v)} }

// Expression wraps raw SQL text. It is rendered verbatim, never quoted.
func Expression(v string) Value { return Value{kind: ValueExpression, s: v} }

func (v Value) Kind() ValueKind { return v.kind }

func (v Value) IsNull() bool { return v.kind == ValueNull }

func (v Value) AsBool() bool { return v.b }

func (v Value) AsInt() int64 { return v.i }

func (v Value) AsFloat() float64 { return v.f }

// AsString returns the text of a String or Expression value.
func (v Value) AsString() string { return v.s }

func (v Value) AsBytes() []byte { return bytes.Clone(v.bs) }

func (v Value) AsTime() time.Time { return v.t }

func (v Value) AsUUID() uuid.UUID { return v.u }

// Ptr returns a pointer to a copy of v, for optional fields.
func (v Value) Ptr() *Value { return &v }

// Equal reports whether both values hold the same variant and payload.
func (v Value) Equal(other Value) bool {
	return v.kind == other.kind && v.equalPayload(other)
}

func (v Value) equalPayload(o Value) bool {
	switch v.kind {
	case ValueNull:
		return true
	case ValueBool:
		return v.b == o.b
	case ValueInt:
		return v.i == o.i
	case ValueFloat:
		return v.f == o.f
	case ValueString, ValueExpression:
		return v.s == o.s
	case ValueBytes:
		return bytes.Equal(v.bs, o.bs)
	case ValueTime:
		return v.t.Equal(o.t)
	case ValueUUID:
		return v.u == o.u
	default:
		return false
	}
}

// Any returns the Go value held, suitable as a database/sql argument.
func (v Value) Any() any {
	switch v.kind {
	case ValueBool:
		return v.b
	case ValueInt:
		return v.i
	case ValueFloat:
		return v.f
	case ValueString, ValueExpression:
		return v.s
	case ValueBytes:
		return v.AsBytes()
	case ValueTime:
		return v.t
	case ValueUUID:
		return v.u.String()
	default:
		return nil
	}
}

func (v Value) String() string {
	switch v.kind {
	case ValueNull:
		return "NULL"
	case ValueBytes:
		return fmt.Sprintf("0x%X", v.bs)
	case ValueTime:
		return v.t.Format(time.RFC3339Nano)
	default:
		return fmt.Sprint(v.Any())
	}
}

// MarshalText renders the value for JSON and YAML output.
func (v Value) MarshalText() ([]byte, error) {
	return []byte(v.String()), nil
}

// ValueOf converts a Go scalar into a Value. Unsupported types yield an error.
func ValueOf(x any) (Value, error) {
	switch x := x.(type) {
	case nil:
		return Null(), nil
	case Value:
		return x, nil
	case bool:
		return Bool(x), nil
	case int:
		return Int(int64(x)), nil
	case int8:
		return Int(int64(x)), nil
	case int16:
		return Int(int64(x)), nil
	case int32:
		return Int(int64(x)), nil
	case int64:
		return Int(x), nil
	case uint8:
		return Int(int64(x)), nil
	case uint16:
		return Int(int64(x)), nil
	case uint32:
		return Int(int64(x)), nil
	case float32:
		return Float(float64(x)), nil
	case float64:
		return Float(x), nil
	case string:
		return String(x), nil
	case []byte:
		return Bytes(x), nil
	case time.Time:
		return Time(x), nil
	case uuid.UUID:
		return UUID(x), nil
	default:
		return Value{}, fmt.Errorf("unsupported scalar value of type %T", x)
	}
}
