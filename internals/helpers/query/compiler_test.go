package query

import (
	"fmt"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"
)

type book struct {
	ID          int     `gorm:"primaryKey"`
	Title       string
	Barcode     *string
	Tags        *string
	CreatedDate *time.Time
	Price       float64
}

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&book{}))
	return db
}

func strp(s string) *string { return &s }

func seedBooks(t *testing.T, db *gorm.DB, books []book) {
	t.Helper()
	require.NoError(t, db.Create(&books).Error)
}

func bookResolver() *Resolver {
	return &Resolver{
		Default: Table{Name: "books", Columns: []string{
			"id", "title", "barcode", "tags", "created_date", "price",
		}},
		TieBreak:  "books.id",
		FuzzyCols: []string{"books.title", "books.barcode"},
	}
}

func bookBase(db *gorm.DB) *gorm.DB {
	return db.Table("books").Select("*")
}

func ids(rows []book) []int {
	out := make([]int, len(rows))
	for i, r := range rows {
		out[i] = r.ID
	}
	return out
}

func TestResolveLastTableWins(t *testing.T) {
	r := &Resolver{
		Default: Table{Name: "orders", Columns: []string{"id", "order_number"}},
		Tables: []Table{
			{Name: "notes", Columns: []string{"taken_by", "order_number"}},
			{Name: "extra", Columns: []string{"tags", "order_number"}},
		},
	}
	got, err := r.Resolve("orderNumber")
	require.NoError(t, err)
	// duplicated across three tables: the last declared table owns it
	assert.Equal(t, "extra.order_number", got)

	got, err = r.Resolve("takenBy")
	require.NoError(t, err)
	assert.Equal(t, "notes.taken_by", got)

	got, err = r.Resolve("id")
	require.NoError(t, err)
	assert.Equal(t, "orders.id", got)
}

func TestResolveUnknownColumn(t *testing.T) {
	r := bookResolver()
	_, err := r.Resolve("noSuchColumn")
	assert.ErrorIs(t, err, ErrUnknownColumn)

	// propagates out of Run untouched, as a client-input error
	db := openTestDB(t)
	var rows []book
	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: OpLike, Col: "noSuchColumn", Val: "x"}},
	}, &rows)
	assert.ErrorIs(t, err, ErrUnknownColumn)
}

func TestDecamelize(t *testing.T) {
	cases := map[string]string{
		"orderNumber":          "order_number",
		"overrideReminderTime": "override_reminder_time",
		"created_date":         "created_date",
		"tags":                 "tags",
	}
	for in, want := range cases {
		assert.Equal(t, want, Decamelize(in))
	}
}

func TestFilterCommutativity(t *testing.T) {
	db := openTestDB(t)
	seedBooks(t, db, []book{
		{ID: 1, Title: "Go in Action", Barcode: strp("B1"), Price: 10},
		{ID: 2, Title: "Go Web", Barcode: strp("B2"), Price: 30},
		{ID: 3, Title: "Rust Book", Barcode: strp("B3"), Price: 30},
		{ID: 4, Title: "Go Systems", Barcode: strp("B4"), Price: 50},
	})

	a := Filter{Op: OpLike, Col: "title", Val: "Go"}
	b := Filter{Op: OpBetween, Col: "price", Val: []any{20, 60}}

	var ab, ba []book
	_, err := Run(bookBase(db), bookResolver(), Spec{Filters: []Filter{a, b}, PageSize: -1}, &ab)
	require.NoError(t, err)
	_, err = Run(bookBase(db), bookResolver(), Spec{Filters: []Filter{b, a}, PageSize: -1}, &ba)
	require.NoError(t, err)

	assert.Equal(t, ids(ab), ids(ba))
	assert.ElementsMatch(t, []int{2, 4}, ids(ab))
}

func TestBetweenInclusive(t *testing.T) {
	db := openTestDB(t)
	seedBooks(t, db, []book{
		{ID: 1, Price: 9}, {ID: 2, Price: 10}, {ID: 3, Price: 20}, {ID: 4, Price: 21},
	})
	var rows []book
	_, err := Run(bookBase(db), bookResolver(), Spec{
		Filters:  []Filter{{Op: OpBetween, Col: "price", Val: []any{10, 20}}},
		PageSize: -1,
	}, &rows)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 3}, ids(rows))
}

func TestLikeNilMeansIsNull(t *testing.T) {
	db := openTestDB(t)
	seedBooks(t, db, []book{
		{ID: 1, Barcode: strp("31142")},
		{ID: 2, Barcode: nil},
		{ID: 3, Barcode: nil},
	})
	var rows []book
	_, err := Run(bookBase(db), bookResolver(), Spec{
		Filters:  []Filter{{Op: OpLike, Col: "barcode", Val: nil}},
		PageSize: -1,
	}, &rows)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{2, 3}, ids(rows))
}

func TestTagsInRequiresAllListedTags(t *testing.T) {
	db := openTestDB(t)
	seedBooks(t, db, []book{
		{ID: 1, Tags: strp("[Local][Rush]")},
		{ID: 2, Tags: strp("[Rush]")},
		{ID: 3, Tags: strp("[Local]")},
		{ID: 4, Tags: strp("[Local][Rush][CDL]")},
		{ID: 5, Tags: strp("[NYC]")}, // must not match a [NY] test
	})
	var rows []book
	_, err := Run(bookBase(db), bookResolver(), Spec{
		Filters:  []Filter{{Op: OpIn, Col: "tags", Val: []any{"Rush", "Local"}}},
		PageSize: -1,
	}, &rows)
	require.NoError(t, err)
	assert.ElementsMatch(t, []int{1, 4}, ids(rows))

	rows = nil
	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters:  []Filter{{Op: OpIn, Col: "tags", Val: []any{"NY"}}},
		PageSize: -1,
	}, &rows)
	require.NoError(t, err)
	assert.Empty(t, rows, "bracketed token test must not match NYC")
}

func TestFuzzyORSemantics(t *testing.T) {
	db := openTestDB(t)
	seedBooks(t, db, []book{
		{ID: 1, Title: "moby dick", Barcode: strp("111")},
		{ID: 2, Title: "whales", Barcode: strp("moby999")},
		{ID: 3, Title: "plankton", Barcode: strp("222")},
	})

	// fuzzy matches title on one row, barcode on another
	var fuzzy []book
	_, err := Run(bookBase(db), bookResolver(), Spec{Fuzzy: "moby", PageSize: -1}, &fuzzy)
	require.NoError(t, err)

	// equivalent union of single-field LIKE filters
	var byTitle, byBarcode []book
	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: OpLike, Col: "title", Val: "moby"}}, PageSize: -1}, &byTitle)
	require.NoError(t, err)
	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: OpLike, Col: "barcode", Val: "moby"}}, PageSize: -1}, &byBarcode)
	require.NoError(t, err)

	union := map[int]bool{}
	for _, r := range append(byTitle, byBarcode...) {
		union[r.ID] = true
	}
	assert.Len(t, fuzzy, len(union))
	for _, r := range fuzzy {
		assert.True(t, union[r.ID])
	}
}

func TestPaginationTotalInvariant(t *testing.T) {
	db := openTestDB(t)
	same := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	var books []book
	for i := 1; i <= 10; i++ {
		// identical sort key on every row: only the tie-break keeps pages stable
		books = append(books, book{ID: i, Title: fmt.Sprintf("vol %d", i), CreatedDate: &same})
	}
	seedBooks(t, db, books)

	const pageSize = 3
	seen := map[int]int{}
	var firstTotal int64
	for page := 0; page < 4; page++ {
		var rows []book
		total, err := Run(bookBase(db), bookResolver(), Spec{
			Sorter:    &Sorter{Col: "createdDate", Desc: true},
			PageIndex: page,
			PageSize:  pageSize,
		}, &rows)
		require.NoError(t, err)
		if page == 0 {
			firstTotal = total
		}
		assert.Equal(t, firstTotal, total, "total must be identical on every page")
		for _, r := range rows {
			seen[r.ID]++
		}
	}
	assert.EqualValues(t, 10, firstTotal)
	assert.Len(t, seen, 10, "every row appears")
	for id, n := range seen {
		assert.Equal(t, 1, n, "row %d must appear on exactly one page", id)
	}
}

func TestPageSizeMinusOneReturnsEverything(t *testing.T) {
	db := openTestDB(t)
	var books []book
	for i := 1; i <= 25; i++ {
		books = append(books, book{ID: i})
	}
	seedBooks(t, db, books)

	var rows []book
	total, err := Run(bookBase(db), bookResolver(), Spec{PageSize: -1}, &rows)
	require.NoError(t, err)
	assert.EqualValues(t, 25, total)
	assert.Len(t, rows, 25)
}

func TestSorterDirectionWithTieBreak(t *testing.T) {
	db := openTestDB(t)
	d1 := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	d2 := time.Date(2024, 2, 1, 0, 0, 0, 0, time.UTC)
	seedBooks(t, db, []book{
		{ID: 1, CreatedDate: &d2},
		{ID: 2, CreatedDate: &d1},
		{ID: 3, CreatedDate: &d2},
	})
	var rows []book
	_, err := Run(bookBase(db), bookResolver(), Spec{
		Sorter:   &Sorter{Col: "createdDate", Desc: true},
		PageSize: -1,
	}, &rows)
	require.NoError(t, err)
	// desc date, then desc id among equals
	assert.Equal(t, []int{3, 1, 2}, ids(rows))
}

func TestBadValues(t *testing.T) {
	db := openTestDB(t)
	var rows []book
	_, err := Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: OpBetween, Col: "price", Val: []any{1}}},
	}, &rows)
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: OpIn, Col: "title", Val: "not-a-list"}},
	}, &rows)
	assert.ErrorIs(t, err, ErrBadValue)

	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: Op("eq"), Col: "title", Val: "x"}},
	}, &rows)
	assert.ErrorIs(t, err, ErrBadValue)

	// an empty IN list would render IN (NULL) and silently match nothing
	_, err = Run(bookBase(db), bookResolver(), Spec{
		Filters: []Filter{{Op: OpIn, Col: "title", Val: []any{}}},
	}, &rows)
	assert.ErrorIs(t, err, ErrBadValue)
}
