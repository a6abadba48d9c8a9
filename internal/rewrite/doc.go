// Package rewrite turns hand-written skeleton functions into working
// transmogrify rules.
//
// A skeleton file is built only with the transmogrify tag. Functions in it
// marked //transmogrify:template take one self value and return a
// quote.Fragment. Their body starts either with a binding of fields of the
// self value:
//
//	//transmogrify:template
//	func (p Point) Transmogrify() quote.Fragment {
//		x, y := p.X, p.Y
//		panic("generated")
//	}
//
// or with a switch over it whose cases are patterns:
//
//	//transmogrify:template
//	func TransmogrifyValue(v Value) quote.Fragment {
//		switch v {
//		case Null:
//		case Bool(_):
//		case Object{Members: _}:
//		}
//		panic("generated")
//	}
//
// The rewriter keeps the patterns, drops the placeholder bodies and writes a
// companion file, built without the tag, in which every arm reconstructs the
// matched value.
package rewrite
