package transmogrify

import (
	"go/ast"
	"go/token"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/ahl/transmogrify/primitive"
	"github.com/ahl/transmogrify/quote"
)

const timePkg = "time"

func leaf(rv reflect.Value) quote.Fragment {
	t := rv.Type()

	switch kind := primitive.FromReflectType(t); kind {
	case primitive.KindTime:
		return timeLit(rv)
	case primitive.KindDuration:
		return quote.Expr("$T($n)", quote.Bind{
			"T": quote.Qual(timePkg, "Duration"),
			"n": signedLit(rv.Int()),
		})
	case primitive.KindPrimitiveEnum:
		return quote.Expr("$T($lit)", quote.Bind{
			"T":   TypeOf(t),
			"lit": basicLit(rv, primitive.FromReflectKind(t.Kind())),
		})
	case 0:
		// composite, handled below
	default:
		return basicLit(rv, kind)
	}

	switch t.Kind() {
	case reflect.Pointer:
		return pointerLit(rv)
	case reflect.Slice:
		return sliceLit(rv)
	case reflect.Array:
		return quote.Expr("$T{$elems}", quote.Bind{"T": TypeOf(t), "elems": elems(rv)})
	case reflect.Map:
		return mapLit(rv)
	case reflect.Struct:
		if t.NumField() == 0 {
			return quote.Expr("$T{}", quote.Bind{"T": TypeOf(t)})
		}
	}

	return quote.Errorf("transmogrify: no rule for values of type %s", t)
}

func basicLit(rv reflect.Value, kind primitive.KindEnum) quote.Fragment {
	switch {
	case kind == primitive.KindBool:
		return quote.Ident(strconv.FormatBool(rv.Bool()))
	case kind == primitive.KindString:
		return quote.Lit(token.STRING, strconv.Quote(rv.String()))
	case kind.IsSigned():
		return signedLit(rv.Int())
	case kind.IsUnsigned():
		return quote.Lit(token.INT, strconv.FormatUint(rv.Uint(), 10))
	case kind.IsFloat():
		return floatLit(rv.Float(), kind.Bits())
	case kind.IsComplex():
		c := rv.Complex()
		return quote.Expr("complex($re, $im)", quote.Bind{
			"re": floatLit(real(c), kind.Bits()/2),
			"im": floatLit(imag(c), kind.Bits()/2),
		})
	default:
		return quote.Errorf("transmogrify: no rule for values of kind %s", kind)
	}
}

// boxed renders a value held by an interface. An untyped constant there
// takes its default type, so basic values of any other predeclared type are
// converted explicitly.
func boxed(rv reflect.Value) quote.Fragment {
	f := of(rv)

	t := rv.Type()
	if t.PkgPath() != "" || f.Err() != nil {
		return f
	}

	switch t.Kind() {
	case reflect.Int, reflect.Float64, reflect.Bool, reflect.String, reflect.Complex128:
		return f
	}

	if !primitive.FromReflectKind(t.Kind()).IsBasic() || isConversion(f, t.Name()) {
		return f
	}

	return quote.Expr("$T($v)", quote.Bind{"T": quote.Ident(t.Name()), "v": f})
}

// isConversion reports whether f is already a conversion to the named type.
func isConversion(f quote.Fragment, name string) bool {
	e, err := f.Expr()
	if err != nil {
		return false
	}

	call, ok := e.(*ast.CallExpr)
	if !ok {
		return false
	}

	id, ok := call.Fun.(*ast.Ident)

	return ok && id.Name == name
}

func signedLit(n int64) quote.Fragment {
	s := strconv.FormatInt(n, 10)
	if digits, ok := strings.CutPrefix(s, "-"); ok {
		return quote.Expr("-$n", quote.Bind{"n": quote.Lit(token.INT, digits)})
	}

	return quote.Lit(token.INT, s)
}

// floatLit renders a float of the given width. Values without a constant
// spelling come from math functions returning float64, so 32-bit ones are
// converted.
func floatLit(f float64, bits int) quote.Fragment {
	if special, ok := specialFloat(f); ok {
		if bits == 32 {
			return quote.Expr("float32($v)", quote.Bind{"v": special})
		}

		return special
	}

	s := strconv.FormatFloat(math.Abs(f), 'g', -1, bits)
	if !strings.ContainsAny(s, ".e") {
		s += ".0"
	}

	lit := quote.Lit(token.FLOAT, s)
	if math.Signbit(f) {
		return quote.Expr("-$n", quote.Bind{"n": lit})
	}

	return lit
}

// specialFloat returns the math call spelling f. ok is false when f has a
// literal spelling.
func specialFloat(f float64) (_ quote.Fragment, ok bool) {
	switch {
	case math.IsNaN(f):
		return quote.Expr("$nan()", quote.Bind{"nan": quote.Qual("math", "NaN")}), true
	case math.IsInf(f, 1):
		return quote.Expr("$inf(1)", quote.Bind{"inf": quote.Qual("math", "Inf")}), true
	case math.IsInf(f, -1):
		return quote.Expr("$inf(-1)", quote.Bind{"inf": quote.Qual("math", "Inf")}), true
	case f == 0 && math.Signbit(f):
		return quote.Expr("$copysign(0, -1)", quote.Bind{"copysign": quote.Qual("math", "Copysign")}), true
	default:
		return quote.Fragment{}, false
	}
}

func timeLit(rv reflect.Value) quote.Fragment {
	if !rv.CanInterface() {
		return quote.Errorf("transmogrify: %s: value is not accessible", rv.Type())
	}

	tm := rv.Interface().(time.Time)
	if tm.IsZero() {
		return quote.Expr("$T{}", quote.Bind{"T": quote.Qual(timePkg, "Time")})
	}

	return quote.Expr("$unix($s, $ns).UTC()", quote.Bind{
		"unix": quote.Qual(timePkg, "Unix"),
		"s":    signedLit(tm.Unix()),
		"ns":   signedLit(int64(tm.Nanosecond())),
	})
}

func pointerLit(rv reflect.Value) quote.Fragment {
	elem := of(rv.Elem())
	if err := elem.Err(); err != nil {
		return elem
	}

	if e, err := elem.Expr(); err == nil {
		if _, ok := e.(*ast.CompositeLit); ok {
			return quote.Expr("&$e", quote.Bind{"e": elem})
		}
	}

	return quote.Expr("func() *$T { var v $T = $e; return &v }()", quote.Bind{
		"T": TypeOf(rv.Type().Elem()),
		"e": elem,
	})
}

func sliceLit(rv reflect.Value) quote.Fragment {
	t := rv.Type()

	if t.Elem().Kind() == reflect.Uint8 && t.Elem().PkgPath() == "" {
		return quote.Expr("$T($s)", quote.Bind{
			"T": TypeOf(t),
			"s": quote.Lit(token.STRING, strconv.Quote(string(rv.Bytes()))),
		})
	}

	if rv.Len() == 0 {
		return quote.Expr("make($T, 0)", quote.Bind{"T": TypeOf(t)})
	}

	return quote.Expr("$T{$elems}", quote.Bind{"T": TypeOf(t), "elems": elems(rv)})
}

func elems(rv reflect.Value) quote.Fragment {
	out := make([]quote.Fragment, rv.Len())
	for i := range rv.Len() {
		out[i] = of(rv.Index(i))
	}

	return quote.List(out...)
}

func mapLit(rv reflect.Value) quote.Fragment {
	t := rv.Type()

	if rv.Len() == 0 {
		return quote.Expr("make($T)", quote.Bind{"T": TypeOf(t)})
	}

	set := t.Elem().Kind() == reflect.Struct && t.Elem().NumField() == 0

	entries := make([]quote.Fragment, 0, rv.Len())
	for _, k := range sortedKeys(rv) {
		var v quote.Fragment
		if set {
			v = quote.Node(&ast.CompositeLit{})
		} else {
			v = of(rv.MapIndex(k))
		}

		entries = append(entries, quote.KeyValue(of(k), v))
	}

	return quote.Expr("$T{$entries}", quote.Bind{"T": TypeOf(t), "entries": quote.List(entries...)})
}
