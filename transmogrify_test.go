package transmogrify_test

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ahl/transmogrify"
	"github.com/ahl/transmogrify/quote"
)

type point struct {
	X, Y int
}

func (p point) Transmogrify() quote.Fragment {
	return quote.Expr("$T{X: $x, Y: $y}", quote.Bind{
		"T": p.TransmogrifyType(),
		"x": transmogrify.Of(p.X),
		"y": transmogrify.Of(p.Y),
	})
}

func (point) TransmogrifyType() quote.Fragment {
	return quote.Qual("example.com/geo", "Point")
}

type celsius float64

type label string

type shape interface {
	sides() int
}

type triangle struct{}

func (triangle) sides() int { return 3 }

func init() {
	transmogrify.Register(func(l label) quote.Fragment {
		return quote.Expr("$new($s)", quote.Bind{
			"new": quote.Qual("example.com/labels", "New"),
			"s":   transmogrify.Of(string(l)),
		})
	})
	transmogrify.Register(func(s shape) quote.Fragment {
		return quote.Expr("$polygon($n)", quote.Bind{
			"polygon": quote.Qual("example.com/geo", "Polygon"),
			"n":       transmogrify.Of(s.sides()),
		})
	})
}

func source(t *testing.T, f quote.Fragment) string {
	t.Helper()

	src, err := f.Source()
	require.NoError(t, err)

	return src
}

func TestOf_Basic(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil", nil, "nil"},
		{"int", 42, "42"},
		{"negative int", -7, "-7"},
		{"min int8", int8(math.MinInt8), "-128"},
		{"min int64", int64(math.MinInt64), "-9223372036854775808"},
		{"max uint64", uint64(math.MaxUint64), "18446744073709551615"},
		{"bool", true, "true"},
		{"string", "a\"b\n", `"a\"b\n"`},
		{"float", 1.5, "1.5"},
		{"whole float", float64(2), "2.0"},
		{"negative float", -0.25, "-0.25"},
		{"float32", float32(0.1), "0.1"},
		{"large float", 1e21, "1e+21"},
		{"nan", math.NaN(), "math.NaN()"},
		{"positive infinity", math.Inf(1), "math.Inf(1)"},
		{"negative infinity", math.Inf(-1), "math.Inf(-1)"},
		{"negative zero", math.Copysign(0, -1), "math.Copysign(0, -1)"},
		{"complex", complex(1, -2), "complex(1.0, -2.0)"},
		{"defined float", celsius(21.5), "transmogrify_test.celsius(21.5)"},
		{"duration", 1500 * time.Millisecond, "time.Duration(1500000000)"},
		{"zero time", time.Time{}, "time.Time{}"},
		{"time", time.Unix(10, 5), "time.Unix(10, 5).UTC()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, source(t, transmogrify.Of(tt.value)))
		})
	}
}

func TestOf_Collections(t *testing.T) {
	tests := []struct {
		name     string
		value    any
		expected string
	}{
		{"nil slice", []int(nil), "nil"},
		{"empty slice", []int{}, "make([]int, 0)"},
		{"slice keeps order", []int{3, 1, 2}, "[]int{3, 1, 2}"},
		{"bytes", []byte("hi"), `[]byte("hi")`},
		{"array", [2]bool{true, false}, "[2]bool{true, false}"},
		{"nested", [][]string{{"a"}, nil}, `[][]string{[]string{"a"}, nil}`},
		{"nil map", map[string]int(nil), "nil"},
		{"empty map", map[string]int{}, "make(map[string]int)"},
		{"string keys", map[string]int{"b": 2, "a": 1}, `map[string]int{"a": 1, "b": 2}`},
		{"int keys", map[int]string{10: "x", 2: "y", -1: "z"}, `map[int]string{-1: "z", 2: "y", 10: "x"}`},
		{"bool keys", map[bool]int{true: 1, false: 0}, "map[bool]int{false: 0, true: 1}"},
		{"composite keys", map[[1]int]bool{{2}: true, {10}: false}, "map[[1]int]bool{[1]int{10}: false, [1]int{2}: true}"},
		{"set", map[string]struct{}{"b": {}, "a": {}}, `map[string]struct{}{"a": {}, "b": {}}`},
		{"empty struct", struct{}{}, "struct{}{}"},
		{"nil pointer", (*int)(nil), "nil"},
		{"pointer to basic", func() *int { v := 5; return &v }(), "func() *int { var v int = 5; return &v }()"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, source(t, transmogrify.Of(tt.value)))
		})
	}
}

func TestOf_Transmogrifier(t *testing.T) {
	assert.Equal(t, "geo.Point{X: 1, Y: 2}", source(t, transmogrify.Of(point{X: 1, Y: 2})))
	assert.Equal(t, "&geo.Point{X: 1, Y: -2}", source(t, transmogrify.Of(&point{X: 1, Y: -2})))

	f := transmogrify.Of([]*point{{X: 1}, nil})
	assert.Equal(t, "[]*geo.Point{&geo.Point{X: 1, Y: 0}, nil}", source(t, f))
	assert.Equal(t, []quote.Import{{Name: "geo", Path: "example.com/geo"}}, f.Imports())

	f = transmogrify.Of(map[string]point{"origin": {}})
	assert.Equal(t, `map[string]geo.Point{"origin": geo.Point{X: 0, Y: 0}}`, source(t, f))
}

func TestOf_RegisteredRules(t *testing.T) {
	assert.Equal(t, `labels.New("x")`, source(t, transmogrify.Of(label("x"))))
	assert.Equal(t, "geo.Polygon(3)", source(t, transmogrify.Of(triangle{})))

	var s shape = triangle{}
	assert.Equal(t, "[]any{geo.Polygon(3), nil}", source(t, transmogrify.Of([]any{s, nil})))
}

func TestOf_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		value any
	}{
		{"struct without rule", struct{ A int }{A: 1}},
		{"func", func() {}},
		{"chan", make(chan int)},
		{"nested", []any{1, func() {}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := transmogrify.Of(tt.value)
			require.Error(t, f.Err())
			assert.Contains(t, f.Err().Error(), "no rule")
		})
	}
}

func TestTypeFor(t *testing.T) {
	assert.Equal(t, "map[string][]int", source(t, transmogrify.TypeFor[map[string][]int]()))
	assert.Equal(t, "*[3]bool", source(t, transmogrify.TypeFor[*[3]bool]()))
	assert.Equal(t, "time.Duration", source(t, transmogrify.TypeFor[time.Duration]()))
	assert.Equal(t, "any", source(t, transmogrify.TypeFor[any]()))
	assert.Equal(t, "geo.Point", source(t, transmogrify.TypeFor[point]()))
	assert.Equal(t, "transmogrify_test.celsius", source(t, transmogrify.TypeFor[celsius]()))
	assert.Error(t, transmogrify.TypeFor[chan int]().Err())
}

func TestRegisterType(t *testing.T) {
	transmogrify.RegisterType[shape](quote.Qual("example.com/geo", "Shape"))
	assert.Equal(t, "[]geo.Shape", source(t, transmogrify.TypeFor[[]shape]()))
}

func TestFieldAndPositional(t *testing.T) {
	pair := struct {
		A int
		B string
	}{A: 1, B: "x"}

	assert.Equal(t, `"x"`, source(t, transmogrify.Field(pair, 1)))
	assert.Equal(t, "3.0", source(t, transmogrify.Field(celsius(3), 0)))
	assert.Error(t, transmogrify.Field(pair, 2).Err())
	assert.Error(t, transmogrify.Field(celsius(3), 1).Err())

	typ := quote.Qual("example.com/api", "Celsius")
	f := transmogrify.Positional(typ, celsius(3), transmogrify.Field(celsius(3), 0))
	assert.Equal(t, "api.Celsius(3.0)", source(t, f))

	typ = quote.Qual("example.com/api", "Pair")
	f = transmogrify.Positional(typ, pair, transmogrify.Field(pair, 0), transmogrify.Field(pair, 1))
	assert.Equal(t, `api.Pair{1, "x"}`, source(t, f))

	assert.Error(t, transmogrify.Positional(typ, celsius(3)).Err())
}

func TestAt(t *testing.T) {
	ok := transmogrify.At("model.go:3:2", "X", transmogrify.Of(1))
	assert.Equal(t, "1", source(t, ok))

	f := transmogrify.At("model.go:3:2", "X", transmogrify.Of(make(chan int)))
	require.Error(t, f.Err())
	assert.Equal(t, "model.go:3:2: field X: transmogrify: no rule for values of type chan int", f.Err().Error())
}

func TestUnderlyingAndIs(t *testing.T) {
	assert.Equal(t, float64(2), transmogrify.Underlying(celsius(2)))
	assert.Equal(t, "x", transmogrify.Underlying(label("x")))
	assert.Equal(t, 3, transmogrify.Underlying(3))

	assert.True(t, transmogrify.Is[shape](triangle{}))
	assert.False(t, transmogrify.Is[shape](point{}))
}
