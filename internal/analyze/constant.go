package analyze

import (
	"go/ast"
	"go/constant"
	"go/token"
)

// builtins whose result differs from their argument.
var valueBuiltins = map[string]bool{
	"len": true, "cap": true, "real": true, "imag": true, "complex": true, "min": true, "max": true,
}

// evalConst evaluates a constant expression of the package being scanned.
// It returns nil when the value cannot be known without type checking: a
// reference to a constant of another file declared later, or to another
// package.
func (s *scan) evalConst(e ast.Expr, iota int) constant.Value {
	switch e := e.(type) {
	case *ast.BasicLit:
		v := constant.MakeFromLiteral(e.Value, e.Kind, 0)
		if v.Kind() == constant.Unknown {
			return nil
		}

		return v
	case *ast.Ident:
		switch e.Name {
		case "iota":
			return constant.MakeInt64(int64(iota))
		case "true", "false":
			return constant.MakeBool(e.Name == "true")
		}

		return s.constValues[e.Name]
	case *ast.ParenExpr:
		return s.evalConst(e.X, iota)
	case *ast.UnaryExpr:
		x := s.evalConst(e.X, iota)
		if x == nil {
			return nil
		}

		return unaryConst(e.Op, x)
	case *ast.BinaryExpr:
		x, y := s.evalConst(e.X, iota), s.evalConst(e.Y, iota)
		if x == nil || y == nil {
			return nil
		}

		return binaryConst(e.Op, x, y)
	case *ast.CallExpr:
		// A conversion T(x) keeps the value of x.
		id, ok := unparen(e.Fun).(*ast.Ident)
		if ok && len(e.Args) == 1 && !valueBuiltins[id.Name] {
			return s.evalConst(e.Args[0], iota)
		}
	}

	return nil
}

// unaryConst and binaryConst return nil for operands go/constant rejects; it
// panics on those.
func unaryConst(op token.Token, x constant.Value) (v constant.Value) {
	defer func() {
		if recover() != nil {
			v = nil
		}
	}()

	return constant.UnaryOp(op, x, 0)
}

func binaryConst(op token.Token, x, y constant.Value) (v constant.Value) {
	defer func() {
		if recover() != nil {
			v = nil
		}
	}()

	switch op {
	case token.SHL, token.SHR:
		s, ok := constant.Uint64Val(constant.ToInt(y))
		if !ok {
			return nil
		}

		return constant.Shift(x, op, uint(s))
	case token.EQL, token.NEQ, token.LSS, token.LEQ, token.GTR, token.GEQ:
		return constant.MakeBool(constant.Compare(x, op, y))
	case token.QUO:
		if x.Kind() == constant.Int && y.Kind() == constant.Int {
			op = token.QUO_ASSIGN
		}
	}

	return constant.BinaryOp(x, op, y)
}

// sameConst reports whether two evaluated constants are equal.
func sameConst(a, b constant.Value) bool {
	numeric := func(k constant.Kind) bool {
		return k == constant.Int || k == constant.Float || k == constant.Complex
	}

	if a.Kind() != b.Kind() && (!numeric(a.Kind()) || !numeric(b.Kind())) {
		return false
	}

	return constant.Compare(a, token.EQL, b)
}
