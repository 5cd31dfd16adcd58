// internals/helpers/query/executor.go
package query

import "gorm.io/gorm"

// Run compiles the spec against the prepared base query (joins and row
// selection already attached by the report shape), counts the matching rows,
// then scans one page into dest. The count is taken before offset/limit so
// every page of the same filter set reports the same total.
func Run(base *gorm.DB, r *Resolver, s Spec, dest any) (int64, error) {
	q, err := Compile(base, r, s)
	if err != nil {
		return 0, err
	}

	var total int64
	if err := q.Count(&total).Error; err != nil {
		return 0, err
	}

	q, err = order(q, r, s)
	if err != nil {
		return 0, err
	}
	if s.PageIndex > 0 && s.PageSize > 0 {
		q = q.Offset(s.PageIndex * s.PageSize)
	}
	if s.PageSize > 0 {
		q = q.Limit(s.PageSize)
	}
	if err := q.Scan(dest).Error; err != nil {
		return 0, err
	}
	return total, nil
}

// Statement compiles and sorts the spec without executing or paginating it.
// Report export streams the full result set from the returned query instead
// of materializing page envelopes.
func Statement(base *gorm.DB, r *Resolver, s Spec) (*gorm.DB, error) {
	q, err := Compile(base, r, s)
	if err != nil {
		return nil, err
	}
	return order(q, r, s)
}

// order applies the user sort plus the fixed id tie-break. Equal primary sort
// values would otherwise shuffle rows between pages.
func order(db *gorm.DB, r *Resolver, s Spec) (*gorm.DB, error) {
	dir := ""
	if s.Sorter != nil {
		col, err := r.Resolve(s.Sorter.Col)
		if err != nil {
			return nil, err
		}
		if s.Sorter.Desc {
			dir = " DESC"
		}
		db = db.Order(col + dir)
	}
	return db.Order(r.TieBreak + dir), nil
}
