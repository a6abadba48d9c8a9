// Package nonzero provides integers that are statically known not to be zero.
package nonzero

import (
	"errors"
	"go/token"
	"reflect"
	"strconv"

	"github.com/ahl/transmogrify/primitive"
	"github.com/ahl/transmogrify/quote"
)

const pkgPath = "github.com/ahl/transmogrify/nonzero"

// ErrZero is returned by New for a zero value.
var ErrZero = errors.New("nonzero: value is zero")

// Integer is the set of integer types an Int can wrap.
type Integer interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 | ~uintptr
}

// Int is an integer of type T that is never zero. The zero Int is invalid
// and only exists as the zero value of structs holding one.
type Int[T Integer] struct {
	n T
}

// New returns n as an Int, or ErrZero.
func New[T Integer](n T) (Int[T], error) {
	if n == 0 {
		return Int[T]{}, ErrZero
	}

	return Int[T]{n: n}, nil
}

// MustNew is like New but panics on zero. Generated code uses it.
func MustNew[T Integer](n T) Int[T] {
	v, err := New(n)
	if err != nil {
		panic(err)
	}

	return v
}

// Get returns the wrapped integer.
func (v Int[T]) Get() T {
	return v.n
}

// Transmogrify renders v as `nonzero.MustNew[T](n)`.
func (v Int[T]) Transmogrify() quote.Fragment {
	if v.n == 0 {
		return quote.Errorf("nonzero: uninitialized %s", reflect.TypeFor[Int[T]]())
	}

	return quote.Expr("$mustNew[$T]($n)", quote.Bind{
		"mustNew": quote.Qual(pkgPath, "MustNew"),
		"T":       typeExpr[T](),
		"n":       literal(v.n),
	})
}

// TransmogrifyType renders the type as `nonzero.Int[T]`.
func (v Int[T]) TransmogrifyType() quote.Fragment {
	return quote.Expr("$Int[$T]", quote.Bind{
		"Int": quote.Qual(pkgPath, "Int"),
		"T":   typeExpr[T](),
	})
}

func typeExpr[T Integer]() quote.Fragment {
	t := reflect.TypeFor[T]()
	if t.PkgPath() == "" {
		return quote.Ident(t.Name())
	}

	return quote.Qual(t.PkgPath(), t.Name())
}

func literal[T Integer](n T) quote.Fragment {
	kind := primitive.FromReflectKind(reflect.TypeFor[T]().Kind())
	if kind.IsUnsigned() {
		return quote.Lit(token.INT, strconv.FormatUint(uint64(n), 10))
	}

	i := int64(n)
	if i < 0 {
		return quote.Expr("-$n", quote.Bind{"n": quote.Lit(token.INT, strconv.FormatUint(uint64(-(i+1))+1, 10))})
	}

	return quote.Lit(token.INT, strconv.FormatInt(i, 10))
}
