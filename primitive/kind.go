package primitive

import (
	"math"
	"reflect"
	"time"
)

//go:generate go tool stringer -type=KindEnum -output=kind_string.go

type KindEnum int

const (
	_ KindEnum = iota // skip zero value, use it as a default (invalid) value for KindEnum

	KindInt
	KindInt8
	KindInt16
	KindInt32
	KindInt64
	KindUint
	KindUint8
	KindUint16
	KindUint32
	KindUint64
	KindUintptr
	KindFloat32
	KindFloat64
	KindComplex64
	KindComplex128
	KindBool
	KindString
	KindTime
	KindDuration
	KindPrimitiveEnum // defined type over any number, boolean or string

	// KindTotal is a constant that represents the total number of kinds defined
	KindTotal = int(iota)
)

var goNames = [...]string{
	KindInt:        "int",
	KindInt8:       "int8",
	KindInt16:      "int16",
	KindInt32:      "int32",
	KindInt64:      "int64",
	KindUint:       "uint",
	KindUint8:      "uint8",
	KindUint16:     "uint16",
	KindUint32:     "uint32",
	KindUint64:     "uint64",
	KindUintptr:    "uintptr",
	KindFloat32:    "float32",
	KindFloat64:    "float64",
	KindComplex64:  "complex64",
	KindComplex128: "complex128",
	KindBool:       "bool",
	KindString:     "string",
	KindTime:       "time.Time",
	KindDuration:   "time.Duration",
}

// GoName returns the Go spelling of the kind's type. Defined types have no
// spelling of their own and return an empty string.
func (k KindEnum) GoName() string {
	if k > 0 && int(k) < len(goNames) {
		return goNames[k]
	}

	return ""
}

func (k KindEnum) IsNumber() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64, KindUintptr,
		KindFloat32, KindFloat64, KindComplex64, KindComplex128:
		return true
	}
}

func (k KindEnum) IsInteger() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64,
		KindUint, KindUint8, KindUint16, KindUint32, KindUint64, KindUintptr:
		return true
	}
}

func (k KindEnum) IsFloat() bool {
	switch k {
	default:
		return false
	case KindFloat32, KindFloat64:
		return true
	}
}

func (k KindEnum) IsComplex() bool {
	switch k {
	default:
		return false
	case KindComplex64, KindComplex128:
		return true
	}
}

func (k KindEnum) IsSigned() bool {
	switch k {
	default:
		return false
	case KindInt, KindInt8, KindInt16, KindInt32, KindInt64:
		return true
	}
}

func (k KindEnum) IsUnsigned() bool {
	switch k {
	default:
		return false
	case KindUint, KindUint8, KindUint16, KindUint32, KindUint64, KindUintptr:
		return true
	}
}

// IsBasic reports whether the kind is a predeclared boolean, numeric or
// string type: a type whose values are written as basic literals.
func (k KindEnum) IsBasic() bool {
	return k.IsNumber() || k == KindBool || k == KindString
}

func (k KindEnum) Bits() int {
	switch k {
	default:
		panic("only numeric kinds has meaningful bits amount, but requested for: " + k.String())
	case KindInt, KindUint, KindUintptr:
		power := 0
		for n := uint(math.MaxUint); n > 0; n >>= 1 {
			power++
		}
		return power
	case KindInt8, KindUint8:
		return 8
	case KindInt16, KindUint16:
		return 16
	case KindInt32, KindUint32:
		return 32
	case KindInt64, KindUint64:
		return 64
	case KindFloat32:
		return 32
	case KindFloat64, KindComplex64:
		return 64
	case KindComplex128:
		return 128
	}
}

// FromReflectKind classifies the underlying kind of a type, ignoring whether
// the type is defined.
func FromReflectKind(kind reflect.Kind) KindEnum {
	switch kind {
	case reflect.Int:
		return KindInt
	case reflect.Int8:
		return KindInt8
	case reflect.Int16:
		return KindInt16
	case reflect.Int32:
		return KindInt32
	case reflect.Int64:
		return KindInt64
	case reflect.Uint:
		return KindUint
	case reflect.Uint8:
		return KindUint8
	case reflect.Uint16:
		return KindUint16
	case reflect.Uint32:
		return KindUint32
	case reflect.Uint64:
		return KindUint64
	case reflect.Uintptr:
		return KindUintptr
	case reflect.Float32:
		return KindFloat32
	case reflect.Float64:
		return KindFloat64
	case reflect.Complex64:
		return KindComplex64
	case reflect.Complex128:
		return KindComplex128
	case reflect.Bool:
		return KindBool
	case reflect.String:
		return KindString
	default:
		return 0
	}
}

func FromReflectType(rtype reflect.Type) KindEnum {
	if rtype == nil {
		return 0
	}

	// check if true primitive type
	switch rtype {
	case reflect.TypeOf(time.Time{}):
		return KindTime
	case reflect.TypeOf(time.Duration(0)):
		return KindDuration
	}

	kind := FromReflectKind(rtype.Kind())
	if kind == 0 {
		return 0
	}

	// predeclared types have no package path
	if rtype.PkgPath() != "" {
		return KindPrimitiveEnum
	}

	return kind
}

// FromName classifies a predeclared type identifier. The byte and rune
// aliases are resolved.
func FromName(name string) KindEnum {
	switch name {
	case "byte":
		return KindUint8
	case "rune":
		return KindInt32
	}

	for k, n := range goNames {
		if n == name && n != "" {
			return KindEnum(k)
		}
	}

	return 0
}
