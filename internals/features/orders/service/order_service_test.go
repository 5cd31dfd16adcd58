package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"libsense_backend/internals/features/orders/dto"
	"libsense_backend/internals/features/orders/model"
	"libsense_backend/internals/helpers/query"
	"libsense_backend/internals/helpers/tags"
)

func newOrderService(t *testing.T) (*OrderService, *ReportService) {
	t.Helper()
	reports := newTestService(t)
	return NewOrderService(reports.DB), reports
}

func createOrder(t *testing.T, db *gorm.DB, id int, barcode string, tagList []string) {
	t.Helper()
	var bc *string
	if barcode != "" {
		bc = &barcode
	}
	require.NoError(t, db.Create(&model.OrderModel{
		ID: id, BSN: "b", OrderNumber: "X", VendorCode: "V", Barcode: bc,
		CreatedDate: daysAgo(2),
	}).Error)
	enc := tags.Encode(tagList)
	require.NoError(t, db.Create(&model.ExtraInfoModel{ID: id, OrderNumber: "X", Tags: &enc}).Error)
}

func loadExtra(t *testing.T, db *gorm.DB, id int) model.ExtraInfoModel {
	t.Helper()
	var extra model.ExtraInfoModel
	require.NoError(t, db.First(&extra, id).Error)
	return extra
}

func TestPatchRejectsSensitiveOnUnfinishedBarcode(t *testing.T) {
	svc, _ := newOrderService(t)
	createOrder(t, svc.DB, 1, "3114-", nil) // placeholder hyphen

	sensitive := true
	err := svc.Patch(dto.PatchOrderRequest{BookID: 1, Sensitive: &sensitive}, "staff")
	assert.ErrorIs(t, err, ErrBarcodeNotFinalized)

	// nothing persisted
	extra := loadExtra(t, svc.DB, 1)
	assert.False(t, tags.Has(deref(extra.Tags), tags.Sensitive))
}

func TestPatchMarksSensitiveOnFinalBarcode(t *testing.T) {
	svc, _ := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142001234", []string{tags.Rush})

	sensitive := true
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 1, Sensitive: &sensitive}, "staff"))
	extra := loadExtra(t, svc.DB, 1)
	assert.True(t, tags.Has(deref(extra.Tags), tags.Sensitive))
	assert.True(t, tags.Has(deref(extra.Tags), tags.Rush), "existing tags survive")

	sensitive = false
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 1, Sensitive: &sensitive}, "staff"))
	extra = loadExtra(t, svc.DB, 1)
	assert.False(t, tags.Has(deref(extra.Tags), tags.Sensitive))
}

func TestPatchRejectsCheckAnywayOffTagged(t *testing.T) {
	svc, _ := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142", []string{tags.Reserve})

	on := true
	err := svc.Patch(dto.PatchOrderRequest{BookID: 1, CheckAnyway: &on}, "staff")
	assert.ErrorIs(t, err, ErrCheckAnywayNotEligible)
}

func TestPatchAcceptsCheckAnywayOnRushLocalOrCDL(t *testing.T) {
	svc, _ := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142", []string{tags.Rush, tags.Local})
	createOrder(t, svc.DB, 2, "31143", []string{tags.CDL})

	on := true
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 1, CheckAnyway: &on}, "staff"))
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 2, CheckAnyway: &on}, "staff"))
	assert.True(t, loadExtra(t, svc.DB, 1).CheckAnyway)
	assert.True(t, loadExtra(t, svc.DB, 2).CheckAnyway)
}

func TestPatchUnknownOrder(t *testing.T) {
	svc, _ := newOrderService(t)
	err := svc.Patch(dto.PatchOrderRequest{BookID: 404}, "staff")
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func TestTrackingNoteUpsertAndClear(t *testing.T) {
	svc, _ := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142", nil)

	note := "vendor claims shipped"
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 1, TrackingNote: &note}, "alice"))
	var n model.TrackingNoteModel
	require.NoError(t, svc.DB.First(&n, "book_id = ?", 1).Error)
	assert.Equal(t, "vendor claims shipped", n.TrackingNote)
	assert.Equal(t, "alice", n.TakenBy)

	note = "arrived at dock"
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 1, TrackingNote: &note}, "bob"))
	var count int64
	svc.DB.Model(&model.TrackingNoteModel{}).Where("book_id = ?", 1).Count(&count)
	assert.EqualValues(t, 1, count, "note is upserted, not duplicated")
	require.NoError(t, svc.DB.First(&n, "book_id = ?", 1).Error)
	assert.Equal(t, "bob", n.TakenBy)

	empty := ""
	require.NoError(t, svc.Patch(dto.PatchOrderRequest{BookID: 1, TrackingNote: &empty}, "bob"))
	svc.DB.Model(&model.TrackingNoteModel{}).Where("book_id = ?", 1).Count(&count)
	assert.EqualValues(t, 0, count)
}

func TestMarkAndRemoveCDL(t *testing.T) {
	svc, reports := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142", []string{tags.Rush})

	require.NoError(t, svc.MarkCDL(1))
	extra := loadExtra(t, svc.DB, 1)
	assert.True(t, extra.CDLFlag)
	assert.True(t, tags.Has(deref(extra.Tags), tags.CDL))

	// now visible in the CDL report
	_, total, err := reports.CDLOrders(querySpecAll())
	require.NoError(t, err)
	assert.EqualValues(t, 1, total)

	require.NoError(t, svc.RemoveCDL(1))
	extra = loadExtra(t, svc.DB, 1)
	assert.False(t, extra.CDLFlag)
	assert.False(t, tags.Has(deref(extra.Tags), tags.CDL))
	assert.True(t, tags.Has(deref(extra.Tags), tags.Rush))

	_, total, err = reports.CDLOrders(querySpecAll())
	require.NoError(t, err)
	assert.EqualValues(t, 0, total)

	assert.ErrorIs(t, svc.RemoveCDL(1), ErrCDLNotFound)
}

func TestBulkCheckedAndAttention(t *testing.T) {
	svc, _ := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142", nil)
	createOrder(t, svc.DB, 2, "31143", nil)
	createOrder(t, svc.DB, 3, "31144", nil)

	require.NoError(t, svc.SetChecked(dto.CheckedRequest{ID: []int{1, 2}, Checked: true}))
	require.NoError(t, svc.SetAttention(dto.AttentionRequest{ID: []int{3}, Attention: true}))

	assert.True(t, loadExtra(t, svc.DB, 1).Checked)
	assert.True(t, loadExtra(t, svc.DB, 2).Checked)
	assert.False(t, loadExtra(t, svc.DB, 3).Checked)
	assert.True(t, loadExtra(t, svc.DB, 3).Attention)
}

func TestDetailDecodesTags(t *testing.T) {
	svc, reports := newOrderService(t)
	createOrder(t, svc.DB, 1, "31142", []string{tags.Rush, tags.Local})

	row, err := svc.Detail(reports, 1)
	require.NoError(t, err)
	assert.Equal(t, []string{tags.Rush, tags.Local}, row.Tags)

	_, err = svc.Detail(reports, 404)
	assert.ErrorIs(t, err, ErrOrderNotFound)
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func querySpecAll() query.Spec { return query.Spec{PageSize: -1} }
