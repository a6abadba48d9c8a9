package primitive_test

import (
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/ahl/transmogrify/primitive"
)

func Example() {
	type IntEnum int
	type StringEnum string
	type Empty struct{}

	fmt.Println(primitive.FromReflectType(reflect.TypeOf(int(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf("")))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(IntEnum(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(StringEnum(""))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Duration(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(time.Time{})))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(complex64(0))))
	fmt.Println(primitive.FromReflectType(reflect.TypeOf(Empty{})))
	// Output:
	// KindInt
	// KindString
	// KindPrimitiveEnum
	// KindPrimitiveEnum
	// KindDuration
	// KindTime
	// KindComplex64
	// KindEnum(0)
}

func TestFromName(t *testing.T) {
	tests := []struct {
		name     string
		expected primitive.KindEnum
	}{
		{"int", primitive.KindInt},
		{"byte", primitive.KindUint8},
		{"rune", primitive.KindInt32},
		{"uintptr", primitive.KindUintptr},
		{"complex128", primitive.KindComplex128},
		{"string", primitive.KindString},
		{"any", 0},
		{"error", 0},
		{"Celsius", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, primitive.FromName(tt.name))
		})
	}
}

func TestKindEnum_Classification(t *testing.T) {
	assert.True(t, primitive.KindInt8.IsSigned())
	assert.True(t, primitive.KindUintptr.IsUnsigned())
	assert.True(t, primitive.KindComplex64.IsComplex())
	assert.True(t, primitive.KindString.IsBasic())
	assert.False(t, primitive.KindTime.IsBasic())
	assert.Equal(t, 16, primitive.KindUint16.Bits())
	assert.Equal(t, "float64", primitive.KindFloat64.GoName())
	assert.Empty(t, primitive.KindPrimitiveEnum.GoName())
	assert.Panics(t, func() { primitive.KindBool.Bits() })
}

func TestKindEnum_String(t *testing.T) {
	assert.Equal(t, "KindInt", primitive.KindInt.String())
	assert.Equal(t, "KindDuration", primitive.KindDuration.String())
	assert.Equal(t, "KindPrimitiveEnum", primitive.KindPrimitiveEnum.String())
	assert.Equal(t, "KindEnum(0)", primitive.KindEnum(0).String())
	assert.Equal(t, "KindEnum(99)", fmt.Sprint(primitive.KindEnum(99)))
}
