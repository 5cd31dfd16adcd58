// internals/helpers/query/compiler.go
package query

import (
	"fmt"
	"strings"

	"gorm.io/gorm"

	"libsense_backend/internals/helpers/tags"
)

type Op string

const (
	OpIn      Op = "in"
	OpLike    Op = "like"
	OpBetween Op = "between"
)

// Filter is one user-supplied predicate. Val is the raw decoded JSON value:
// string, []any, [a,b] range, or nil.
type Filter struct {
	Op  Op
	Col string
	Val any
}

// Sorter is the user-chosen ordering; the resolver's tie-break id column is
// always appended in the same direction.
type Sorter struct {
	Col  string
	Desc bool
}

// Spec is the abstract query description the compiler turns into a concrete
// statement. Filters are commutative ANDs; fuzzy search and tags-IN group
// their own sub-predicates internally before joining the conjunction.
// RawSuffix carries a server-built business rule (never user input) that the
// generic filter vocabulary cannot express.
type Spec struct {
	Filters   []Filter
	Sorter    *Sorter
	Fuzzy     string
	RawSuffix string
	RawArgs   []any
	PageIndex int
	PageSize  int // -1 means no limit (report export)
}

// Compile applies filters, fuzzy search and the raw suffix to the base query.
// Sorting and pagination are left to the executor so the matching-row count
// can be taken first.
func Compile(db *gorm.DB, r *Resolver, s Spec) (*gorm.DB, error) {
	for _, f := range s.Filters {
		var err error
		db, err = applyFilter(db, r, f)
		if err != nil {
			return nil, err
		}
	}
	if s.Fuzzy != "" {
		db = applyFuzzy(db, r, s.Fuzzy)
	}
	if s.RawSuffix != "" {
		db = db.Where(s.RawSuffix, s.RawArgs...)
	}
	return db, nil
}

func applyFilter(db *gorm.DB, r *Resolver, f Filter) (*gorm.DB, error) {
	col, err := r.Resolve(f.Col)
	if err != nil {
		return nil, err
	}
	switch f.Op {
	case OpIn:
		list, err := valueList(f)
		if err != nil {
			return nil, err
		}
		if len(list) == 0 {
			return nil, fmt.Errorf("%w: in on %q wants a non-empty list", ErrBadValue, f.Col)
		}
		// tags is a delimited text column, not a real list: IN decomposes
		// into one bracketed-token test per value, all required.
		if Decamelize(f.Col) == "tags" {
			for _, v := range list {
				db = db.Where(col+" LIKE ?", "%"+tags.Token(fmt.Sprint(v))+"%")
			}
			return db, nil
		}
		return db.Where(col+" IN ?", list), nil

	case OpLike:
		if f.Val == nil {
			return db.Where(col + " IS NULL"), nil
		}
		v, ok := f.Val.(string)
		if !ok {
			return nil, fmt.Errorf("%w: like on %q wants a string", ErrBadValue, f.Col)
		}
		return db.Where(col+" LIKE ?", "%"+v+"%"), nil

	case OpBetween:
		list, err := valueList(f)
		if err != nil {
			return nil, err
		}
		if len(list) != 2 {
			return nil, fmt.Errorf("%w: between on %q wants [low, high]", ErrBadValue, f.Col)
		}
		return db.Where(col+" BETWEEN ? AND ?", list[0], list[1]), nil

	default:
		return nil, fmt.Errorf("%w: unsupported operator %q", ErrBadValue, f.Op)
	}
}

func applyFuzzy(db *gorm.DB, r *Resolver, term string) *gorm.DB {
	pattern := "%" + term + "%"
	parts := make([]string, 0, len(r.FuzzyCols))
	args := make([]any, 0, len(r.FuzzyCols))
	for _, col := range r.FuzzyCols {
		parts = append(parts, col+" LIKE ?")
		args = append(args, pattern)
	}
	return db.Where("("+strings.Join(parts, " OR ")+")", args...)
}

func valueList(f Filter) ([]any, error) {
	switch v := f.Val.(type) {
	case []any:
		return v, nil
	case []string:
		out := make([]any, len(v))
		for i, s := range v {
			out[i] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: %s on %q wants a list", ErrBadValue, f.Op, f.Col)
	}
}
