package service

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"libsense_backend/internals/configs"
	orderModel "libsense_backend/internals/features/orders/model"
	vendorModel "libsense_backend/internals/features/vendors/model"
	"libsense_backend/internals/helpers/tags"
)

type stubSettings struct {
	settings configs.Settings
}

func (s stubSettings) Current() configs.Settings            { return s.settings }
func (s stubSettings) Reload() error                        { return nil }
func (s stubSettings) Update(func(*configs.Settings)) error { return nil }

func newIngestService(t *testing.T) *IngestService {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormLogger.Default.LogMode(gormLogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&orderModel.OrderModel{},
		&orderModel.ExtraInfoModel{},
		&vendorModel.VendorModel{},
	))
	return NewIngestService(db, stubSettings{settings: configs.Settings{
		RushOrderTypes: []string{"R"},
	}})
}

func feedCSV(t *testing.T, rows string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "feed.csv")
	require.NoError(t, os.WriteFile(path, []byte(rows), 0o644))
	return path
}

const feedHeader = "BSN,Z13_TITLE,Z30_BARCODE,Z68_ORDER_NUMBER,Z68_ORDER_TYPE,Z68_VENDOR_CODE,Z68_OPEN_DATE,Z30_MATERIAL\n"

func TestIngestInsertsAndRederivesTags(t *testing.T) {
	svc := newIngestService(t)
	require.NoError(t, svc.DB.Create(&vendorModel.VendorModel{VendorCode: "LOC", Local: true}).Error)

	path := feedCSV(t, feedHeader+
		"101,First Title,31142001,NYUSH20230001,R,LOC,20230110,BOOK\n"+
		"102,Second Title,31142002,NYUSH20230002,M,FAR,20230111,DVD\n")

	stats, err := svc.IngestFile(path)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.RowsRead)
	assert.Equal(t, 2, stats.Inserted)
	assert.Equal(t, 0, stats.Updated)
	assert.Equal(t, 2, stats.TagsFlushed)

	var first orderModel.OrderModel
	require.NoError(t, svc.DB.First(&first, "order_number = ?", "NYUSH20230001").Error)
	assert.Equal(t, "101", first.BSN)
	require.NotNil(t, first.CreatedDate)
	assert.Equal(t, "2023-01-10", first.CreatedDate.Format("2006-01-02"))

	var extra orderModel.ExtraInfoModel
	require.NoError(t, svc.DB.First(&extra, first.ID).Error)
	assert.True(t, tags.Has(*extra.Tags, tags.Rush))
	assert.True(t, tags.Has(*extra.Tags, tags.Local))

	var second orderModel.OrderModel
	require.NoError(t, svc.DB.First(&second, "order_number = ?", "NYUSH20230002").Error)
	extra = orderModel.ExtraInfoModel{}
	require.NoError(t, svc.DB.First(&extra, second.ID).Error)
	assert.True(t, tags.Has(*extra.Tags, tags.NonRush))
	assert.True(t, tags.Has(*extra.Tags, tags.NY))
	assert.True(t, tags.Has(*extra.Tags, tags.DVD))
}

func TestIngestUpsertsByOrderNumber(t *testing.T) {
	svc := newIngestService(t)

	path := feedCSV(t, feedHeader+
		"101,Old Title,31142001,NYUSH20230001,R,LOC,20230110,BOOK\n")
	_, err := svc.IngestFile(path)
	require.NoError(t, err)

	path = feedCSV(t, feedHeader+
		"101,New Title,31142001,NYUSH20230001,R,LOC,20230110,BOOK\n")
	stats, err := svc.IngestFile(path)
	require.NoError(t, err)
	assert.Equal(t, 0, stats.Inserted)
	assert.Equal(t, 1, stats.Updated)

	var count int64
	svc.DB.Model(&orderModel.OrderModel{}).Count(&count)
	assert.EqualValues(t, 1, count)

	var ord orderModel.OrderModel
	require.NoError(t, svc.DB.First(&ord, "order_number = ?", "NYUSH20230001").Error)
	require.NotNil(t, ord.Title)
	assert.Equal(t, "New Title", *ord.Title)
}

func TestIngestBlankCellsKeepStoredValues(t *testing.T) {
	svc := newIngestService(t)

	path := feedCSV(t, feedHeader+
		"101,Keeper,31142001,NYUSH20230001,R,LOC,20230110,BOOK\n")
	_, err := svc.IngestFile(path)
	require.NoError(t, err)

	// re-export with barcode and material blank: a blank cell means the
	// feed does not know, never that the value was cleared
	path = feedCSV(t, feedHeader+
		"101,Keeper,,NYUSH20230001,R,LOC,20230110,\n")
	_, err = svc.IngestFile(path)
	require.NoError(t, err)

	var ord orderModel.OrderModel
	require.NoError(t, svc.DB.First(&ord, "order_number = ?", "NYUSH20230001").Error)
	require.NotNil(t, ord.Barcode)
	assert.Equal(t, "31142001", *ord.Barcode)
	require.NotNil(t, ord.Material)
	assert.Equal(t, "BOOK", *ord.Material)
}

func TestIngestDuplicateBarcodesKeepLast(t *testing.T) {
	svc := newIngestService(t)

	path := feedCSV(t, feedHeader+
		"101,First,31142001,NYUSH20230001,R,LOC,20230110,BOOK\n"+
		"102,Second,31142001,NYUSH20230002,R,LOC,20230111,BOOK\n")
	stats, err := svc.IngestFile(path)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.DuplicateBarcodes)
	assert.Equal(t, 1, stats.Inserted)

	var ord orderModel.OrderModel
	require.NoError(t, svc.DB.First(&ord, "barcode = ?", "31142001").Error)
	assert.Equal(t, "NYUSH20230002", ord.OrderNumber)
}

func TestIngestReversesNewestFirstFeed(t *testing.T) {
	svc := newIngestService(t)

	path := feedCSV(t, feedHeader+
		"102,Newer,31142002,NYUSH20230002,R,LOC,20230111,BOOK\n"+
		"101,Older,31142001,NYUSH20230001,R,LOC,20230110,BOOK\n")
	_, err := svc.IngestFile(path)
	require.NoError(t, err)

	// oldest row inserted first, so it owns the lower id
	var older, newer orderModel.OrderModel
	require.NoError(t, svc.DB.First(&older, "order_number = ?", "NYUSH20230001").Error)
	require.NoError(t, svc.DB.First(&newer, "order_number = ?", "NYUSH20230002").Error)
	assert.Less(t, older.ID, newer.ID)
}

func TestIngestRejectsBadFeeds(t *testing.T) {
	svc := newIngestService(t)

	_, err := svc.IngestFile(filepath.Join(t.TempDir(), "feed.txt"))
	assert.ErrorIs(t, err, ErrUnsupportedFile)

	path := feedCSV(t, "A,B,C\n1,2,3\n")
	_, err = svc.IngestFile(path)
	assert.ErrorIs(t, err, ErrMissingColumns)

	path = feedCSV(t, feedHeader)
	_, err = svc.IngestFile(path)
	assert.ErrorIs(t, err, ErrEmptyFeed)
}

func TestFlushPreservesManualTags(t *testing.T) {
	svc := newIngestService(t)
	require.NoError(t, svc.DB.Create(&vendorModel.VendorModel{VendorCode: "LOC", Local: true}).Error)

	rush := "R"
	require.NoError(t, svc.DB.Create(&orderModel.OrderModel{
		ID: 1, BSN: "101", OrderNumber: "X1", VendorCode: "LOC", OrderType: &rush,
	}).Error)
	manual := tags.Encode([]string{tags.Sensitive, tags.Reserve})
	require.NoError(t, svc.DB.Create(&orderModel.ExtraInfoModel{
		ID: 1, OrderNumber: "X1", Tags: &manual, CDLFlag: true,
	}).Error)

	flushed, err := svc.FlushTags()
	require.NoError(t, err)
	assert.Equal(t, 1, flushed)

	var extra orderModel.ExtraInfoModel
	require.NoError(t, svc.DB.First(&extra, 1).Error)
	for _, want := range []string{tags.Rush, tags.Local, tags.CDL, tags.Sensitive, tags.Reserve} {
		assert.True(t, tags.Has(*extra.Tags, want), want)
	}
	assert.False(t, tags.Has(*extra.Tags, tags.NonRush))
	assert.False(t, tags.Has(*extra.Tags, tags.NY))
}

func TestMetadataVocabulary(t *testing.T) {
	svc := newIngestService(t)
	book, dvd := "BOOK", "DVD"
	ips := "XX"
	older := time.Date(2019, 3, 2, 0, 0, 0, 0, time.UTC)
	newer := time.Date(2023, 1, 10, 0, 0, 0, 0, time.UTC)
	require.NoError(t, svc.DB.Create(&orderModel.OrderModel{
		ID: 1, BSN: "101", OrderNumber: "X1", VendorCode: "LOC",
		Material: &book, IPSCode: &ips, CreatedDate: &newer,
	}).Error)
	require.NoError(t, svc.DB.Create(&orderModel.OrderModel{
		ID: 2, BSN: "102", OrderNumber: "X2", VendorCode: "FAR",
		Material: &dvd, CreatedDate: &older,
	}).Error)

	meta, err := Metadata(svc.DB)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"LOC", "FAR"}, meta.Vendors)
	assert.ElementsMatch(t, []string{"BOOK", "DVD"}, meta.Material)
	assert.Equal(t, []string{"XX"}, meta.IPSCode)
	assert.Equal(t, tags.All, meta.Tags)
	assert.Contains(t, meta.SupportedReport, "Rush-Local")
	require.NotNil(t, meta.OldestDate)
	assert.Equal(t, "2019-03-02", meta.OldestDate.Format("2006-01-02"))
}
