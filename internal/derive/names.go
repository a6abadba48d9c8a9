package derive

import (
	"go/token"
	"go/types"

	"github.com/ahl/transmogrify/internal/match"
)

// Names generated bodies refer to. Locals never shadow them.
const (
	receiverName = "v"
	typeHole     = "T"
	elementName  = "value_0"
)

// namer hands out local variable names for fields.
type namer struct {
	used map[string]bool
}

func newNamer(taken ...string) *namer {
	n := &namer{used: map[string]bool{
		receiverName:   true,
		typeHole:       true,
		elementName:    true,
		"quote":        true,
		"transmogrify": true,
	}}

	for _, name := range taken {
		n.used[name] = true
	}

	return n
}

// name returns a fresh lower-camel local for a field.
func (n *namer) name(field string) string {
	base := match.LowerCamel(field)
	if !token.IsIdentifier(base) || base == "_" {
		base = "value"
	}

	for n.used[base] || token.IsKeyword(base) || types.Universe.Lookup(base) != nil {
		base += "_"
	}

	n.used[base] = true

	return base
}
