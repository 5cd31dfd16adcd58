package helper

import (
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type pageRow struct {
	ID int `json:"id"`
}

func pageBody(t *testing.T, handler fiber.Handler) string {
	t.Helper()
	app := fiber.New()
	app.Get("/", handler)

	resp, err := app.Test(httptest.NewRequest("GET", "/", nil))
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return string(body)
}

func TestJsonPageEmptyResultIsList(t *testing.T) {
	// a zero-match Scan leaves the slice nil; the envelope must still
	// carry [] so clients can iterate blindly
	body := pageBody(t, func(c *fiber.Ctx) error {
		return JsonPage(c, 0, 10, 0, []pageRow(nil))
	})
	assert.JSONEq(t, `{"pageIndex":0,"pageLimit":10,"totalRecords":0,"result":[]}`, body)
}

func TestJsonPageUntypedNilResultIsList(t *testing.T) {
	body := pageBody(t, func(c *fiber.Ctx) error {
		return JsonPage(c, 2, 5, 0, nil)
	})
	assert.JSONEq(t, `{"pageIndex":2,"pageLimit":5,"totalRecords":0,"result":[]}`, body)
}

func TestJsonPageKeepsRows(t *testing.T) {
	body := pageBody(t, func(c *fiber.Ctx) error {
		return JsonPage(c, 1, 2, 5, []pageRow{{ID: 7}, {ID: 9}})
	})
	assert.JSONEq(t, `{"pageIndex":1,"pageLimit":2,"totalRecords":5,"result":[{"id":7},{"id":9}]}`, body)
}
