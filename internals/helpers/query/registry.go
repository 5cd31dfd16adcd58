// internals/helpers/query/registry.go
package query

import (
	"fmt"
	"strings"
	"unicode"
)

// Table declares the filterable columns one joined table contributes to a
// report shape. Column names are the canonical snake_case ones; qualification
// happens at resolve time.
type Table struct {
	Name    string
	Columns []string
}

// Resolver is the static column registry for one report shape: an ordered
// list of joined side tables plus the default (primary) table that owns
// everything not explicitly routed elsewhere. Built once per shape at
// startup, never from reflection at request time, so an unknown column is
// rejected at the boundary instead of exploding inside the database.
type Resolver struct {
	Tables    []Table  // explicit routing for joined tables
	Default   Table    // primary table, complete column set
	TieBreak  string   // qualified id column appended to every sort
	FuzzyCols []string // qualified columns searched by fuzzy terms

	index map[string]string
}

var (
	ErrUnknownColumn = fmt.Errorf("query: unknown filter column")
	ErrBadValue      = fmt.Errorf("query: bad filter value")
)

// Resolve maps an external column name (camelCase or snake_case) to its
// qualified SQL column. When the same column is listed under more than one
// table, the last table in declaration order wins; report shapes rely on that
// to let ExtraInfo columns shadow Order columns of the same name.
func (r *Resolver) Resolve(col string) (string, error) {
	name := Decamelize(col)
	if r.index == nil {
		r.index = make(map[string]string, len(r.Default.Columns))
		for _, c := range r.Default.Columns {
			r.index[c] = r.Default.Name + "." + c
		}
		for _, t := range r.Tables {
			for _, c := range t.Columns {
				r.index[c] = t.Name + "." + c
			}
		}
	}
	if q, ok := r.index[name]; ok {
		return q, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownColumn, col)
}

// Decamelize converts a camelCase external name to the canonical snake_case
// column name. Already-snake input passes through unchanged.
func Decamelize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)
	for i, r := range s {
		if unicode.IsUpper(r) {
			if i > 0 {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
