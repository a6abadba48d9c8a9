package quote

import (
	"go/ast"
	"go/token"
	"reflect"
)

var (
	posType    = reflect.TypeOf(token.NoPos)
	objectType = reflect.TypeOf((*ast.Object)(nil))
	scopeType  = reflect.TypeOf((*ast.Scope)(nil))
)

// clone returns a deep copy of a syntax tree. Object resolution data is
// dropped: it points back into the tree it came from.
func clone[N ast.Node](n N) N {
	return cloneValue(reflect.ValueOf(n)).Interface().(N)
}

func cloneValue(v reflect.Value) reflect.Value {
	switch v.Kind() {
	case reflect.Pointer:
		if v.IsNil() {
			return v
		}

		if v.Type() == objectType || v.Type() == scopeType {
			return reflect.Zero(v.Type())
		}

		c := reflect.New(v.Type().Elem())
		c.Elem().Set(cloneValue(v.Elem()))

		return c
	case reflect.Struct:
		c := reflect.New(v.Type()).Elem()
		for i := range v.NumField() {
			if c.Field(i).CanSet() {
				c.Field(i).Set(cloneValue(v.Field(i)))
			}
		}

		return c
	case reflect.Slice:
		if v.IsNil() {
			return v
		}

		c := reflect.MakeSlice(v.Type(), v.Len(), v.Len())
		for i := range v.Len() {
			c.Index(i).Set(cloneValue(v.Index(i)))
		}

		return c
	case reflect.Interface:
		if v.IsNil() {
			return v
		}

		c := reflect.New(v.Type()).Elem()
		c.Set(cloneValue(v.Elem()))

		return c
	default:
		return v
	}
}

// setPos moves every valid position in the tree to pos. Invalid positions
// stay invalid: the printer reads validity as syntax (a call's ellipsis, the
// parentheses of a declaration group).
func setPos(root ast.Node, pos token.Pos) {
	ast.Inspect(root, func(n ast.Node) bool {
		if n == nil {
			return false
		}

		v := reflect.ValueOf(n)
		if v.Kind() != reflect.Pointer || v.IsNil() {
			return true
		}

		v = v.Elem()
		if v.Kind() != reflect.Struct {
			return true
		}

		for i := range v.NumField() {
			f := v.Field(i)
			if f.Type() != posType || !f.CanSet() {
				continue
			}

			if token.Pos(f.Int()).IsValid() {
				f.SetInt(int64(pos))
			}
		}

		return true
	})
}

// layout is a two-line file set. Template nodes are detached from their
// source and placed on its first line; function bodies close on the second
// line so the printer never collapses them onto one line.
var layout = token.NewFileSet()

var detached, detachedEnd = func() (token.Pos, token.Pos) {
	f := layout.AddFile("", -1, 2)
	f.SetLines([]int{0, 1})

	return f.Pos(0), f.Pos(1)
}()

// detach places a tree on the layout file set.
func detach(root ast.Node) {
	setPos(root, detached)

	ast.Inspect(root, func(n ast.Node) bool {
		if fn, ok := n.(*ast.FuncDecl); ok && fn.Body != nil {
			fn.Body.Rbrace = detachedEnd
		}

		return true
	})
}
