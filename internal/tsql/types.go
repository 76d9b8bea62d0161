package tsql

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexmaris/gribble/ir"
)

// TypeID is a SQL Server system_type_id as reported by sys.columns and
// sys.types.
type TypeID int

const (
	TypeImage            TypeID = 34
	TypeText             TypeID = 35
	TypeUniqueIdentifier TypeID = 36
	TypeDate             TypeID = 40
	TypeTime             TypeID = 41
	TypeDateTime2        TypeID = 42
	TypeDateTimeOffset   TypeID = 43
	TypeTinyInt          TypeID = 48
	TypeSmallInt         TypeID = 52
	TypeInt              TypeID = 56
	TypeSmallDateTime    TypeID = 58
	TypeReal             TypeID = 59
	TypeMoney            TypeID = 60
	TypeDateTime         TypeID = 61
	TypeFloat            TypeID = 62
	TypeVariant          TypeID = 98
	TypeNText            TypeID = 99
	TypeBit              TypeID = 104
	TypeDecimal          TypeID = 106
	TypeNumeric          TypeID = 108
	TypeSmallMoney       TypeID = 122
	TypeBigInt           TypeID = 127
	TypeVarBinary        TypeID = 165
	TypeVarChar          TypeID = 167
	TypeBinary           TypeID = 173
	TypeChar             TypeID = 175
	TypeTimestamp        TypeID = 189
	TypeNVarChar         TypeID = 231
	TypeNChar            TypeID = 239
	TypeXML              TypeID = 241
)

// Native type names, lower case as stored in sys.types.
const (
	NameBigInt           = "bigint"
	NameBinary           = "binary"
	NameBit              = "bit"
	NameChar             = "char"
	NameDate             = "date"
	NameDateTime         = "datetime"
	NameDateTime2        = "datetime2"
	NameDateTimeOffset   = "datetimeoffset"
	NameDecimal          = "decimal"
	NameFloat            = "float"
	NameImage            = "image"
	NameInt              = "int"
	NameMoney            = "money"
	NameNChar            = "nchar"
	NameNText            = "ntext"
	NameNumeric          = "numeric"
	NameNVarChar         = "nvarchar"
	NameReal             = "real"
	NameRowVersion       = "rowversion"
	NameSmallDateTime    = "smalldatetime"
	NameSmallInt         = "smallint"
	NameSmallMoney       = "smallmoney"
	NameText             = "text"
	NameTime             = "time"
	NameTimestamp        = "timestamp"
	NameTinyInt          = "tinyint"
	NameUniqueIdentifier = "uniqueidentifier"
	NameVarBinary        = "varbinary"
	NameVarChar          = "varchar"
	NameVariant          = "sql_variant"
	NameXML              = "xml"
)

// MaxLength is the length marker used for unbounded string columns.
const MaxLength = "MAX"

var typeIDsByName = map[string]TypeID{
	NameBigInt:           TypeBigInt,
	NameBinary:           TypeBinary,
	NameBit:              TypeBit,
	NameChar:             TypeChar,
	NameDate:             TypeDate,
	NameDateTime:         TypeDateTime,
	NameDateTime2:        TypeDateTime2,
	NameDateTimeOffset:   TypeDateTimeOffset,
	NameDecimal:          TypeDecimal,
	NameFloat:            TypeFloat,
	NameImage:            TypeImage,
	NameInt:              TypeInt,
	NameMoney:            TypeMoney,
	NameNChar:            TypeNChar,
	NameNText:            TypeNText,
	NameNumeric:          TypeNumeric,
	NameNVarChar:         TypeNVarChar,
	NameReal:             TypeReal,
	NameRowVersion:       TypeTimestamp,
	NameSmallDateTime:    TypeSmallDateTime,
	NameSmallInt:         TypeSmallInt,
	NameSmallMoney:       TypeSmallMoney,
	NameText:             TypeText,
	NameTime:             TypeTime,
	NameTimestamp:        TypeTimestamp,
	NameTinyInt:          TypeTinyInt,
	NameUniqueIdentifier: TypeUniqueIdentifier,
	NameVarBinary:        TypeVarBinary,
	NameVarChar:          TypeVarChar,
	NameVariant:          TypeVariant,
	NameXML:              TypeXML,
}

// UnmappedTypeError reports a type with no counterpart on the other side of
// the mapping. Exactly one of Scalar, ID or Name is set.
type UnmappedTypeError struct {
	Scalar ir.ScalarType
	ID     TypeID
	Name   string
}

func (e *UnmappedTypeError) Error() string {
	switch {
	case e.Name != "":
		return fmt.Sprintf("no abstract type matches native type %q", e.Name)
	case e.ID != 0:
		return fmt.Sprintf("no abstract type matches native type id %d", int(e.ID))
	default:
		return fmt.Sprintf("no native type matches abstract type %s", e.Scalar)
	}
}

// NativeName renders the native type for t. Only strings honour length: a
// positive length is emitted verbatim and anything else becomes MAX.
func NativeName(t ir.ScalarType, length int) (string, error) {
	if t == ir.ScalarString {
		if length > 0 {
			return fmt.Sprintf("NVARCHAR(%d)", length), nil
		}
		return "NVARCHAR(" + MaxLength + ")", nil
	}
	switch t {
	case ir.ScalarBool:
		return "BIT", nil
	case ir.ScalarUint8:
		return "TINYINT", nil
	case ir.ScalarInt16:
		return "SMALLINT", nil
	case ir.ScalarInt32:
		return "INT", nil
	case ir.ScalarInt64:
		return "BIGINT", nil
	case ir.ScalarDecimal:
		return "DECIMAL", nil
	case ir.ScalarFloat32:
		return "REAL", nil
	case ir.ScalarFloat64:
		return "FLOAT", nil
	case ir.ScalarBytes:
		return "VARBINARY(" + MaxLength + ")", nil
	case ir.ScalarDateTime:
		return "DATETIME", nil
	case ir.ScalarDateTimeOffset:
		return "DATETIMEOFFSET", nil
	case ir.ScalarDuration:
		return "TIME", nil
	case ir.ScalarUUID:
		return "UNIQUEIDENTIFIER", nil
	case ir.ScalarVariant:
		return "SQL_VARIANT", nil
	default:
		return "", &UnmappedTypeError{Scalar: t}
	}
}

// TypeIDOf returns the id of the native type NativeName renders for t.
func TypeIDOf(t ir.ScalarType) (TypeID, error) {
	name, err := NativeName(t, 0)
	if err != nil {
		return 0, err
	}
	return typeIDFromName(name)
}

// TypeFromID maps a catalog type id to the abstract type. nullable only
// decides whether a value kind is reported as optional.
func TypeFromID(id TypeID, nullable bool) (ir.Type, error) {
	var scalar ir.ScalarType
	switch id {
	case TypeBigInt:
		scalar = ir.ScalarInt64
	case TypeBinary, TypeVarBinary, TypeImage, TypeTimestamp:
		scalar = ir.ScalarBytes
	case TypeBit:
		scalar = ir.ScalarBool
	case TypeChar, TypeVarChar, TypeText, TypeNChar, TypeNVarChar, TypeNText, TypeXML:
		scalar = ir.ScalarString
	case TypeDate, TypeDateTime, TypeDateTime2, TypeSmallDateTime:
		scalar = ir.ScalarDateTime
	case TypeDateTimeOffset:
		scalar = ir.ScalarDateTimeOffset
	case TypeDecimal, TypeNumeric, TypeMoney, TypeSmallMoney:
		scalar = ir.ScalarDecimal
	case TypeFloat:
		scalar = ir.ScalarFloat64
	case TypeInt:
		scalar = ir.ScalarInt32
	case TypeReal:
		scalar = ir.ScalarFloat32
	case TypeSmallInt:
		scalar = ir.ScalarInt16
	case TypeTinyInt:
		scalar = ir.ScalarUint8
	case TypeTime:
		scalar = ir.ScalarDuration
	case TypeUniqueIdentifier:
		scalar = ir.ScalarUUID
	case TypeVariant:
		scalar = ir.ScalarVariant
	default:
		return ir.Type{}, &UnmappedTypeError{ID: id}
	}
	return ir.Type{Scalar: scalar, Optional: nullable && !scalar.IsReference()}, nil
}

// TypeFromName resolves a native type name, case-insensitively and with an
// optional length suffix such as "nvarchar(500)", then maps it by id.
func TypeFromName(name string, nullable bool) (ir.Type, error) {
	id, err := typeIDFromName(name)
	if err != nil {
		return ir.Type{}, err
	}
	return TypeFromID(id, nullable)
}

func typeIDFromName(name string) (TypeID, error) {
	base := strings.ToLower(strings.TrimSpace(name))
	if i := strings.IndexByte(base, '('); i >= 0 {
		base = strings.TrimSpace(base[:i])
	}
	id, ok := typeIDsByName[base]
	if !ok {
		return 0, &UnmappedTypeError{Name: name}
	}
	return id, nil
}

// ParseLength extracts the declared length from a rendered type name.
// MAX and a missing suffix both yield 0.
func ParseLength(name string) int {
	open := strings.IndexByte(name, '(')
	end := strings.LastIndexByte(name, ')')
	if open < 0 || end < open {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimSpace(name[open+1 : end]))
	if err != nil {
		return 0
	}
	return n
}

// CharacterLength converts a sys.columns max_length (bytes, -1 for MAX) to
// the declared length of a column of type id.
func CharacterLength(id TypeID, maxLength int) int {
	if maxLength < 0 {
		return 0
	}
	switch id {
	case TypeNChar, TypeNVarChar:
		return maxLength / 2
	default:
		return maxLength
	}
}
