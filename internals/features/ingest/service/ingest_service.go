// file: internals/features/ingest/service/ingest_service.go
package service

import (
	"encoding/csv"
	"errors"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	orderModel "libsense_backend/internals/features/orders/model"
	vendorModel "libsense_backend/internals/features/vendors/model"
	"libsense_backend/internals/helpers/tags"
	"libsense_backend/internals/logger"
)

var (
	ErrIngestBusy      = errors.New("an ingestion run is already in progress")
	ErrUnsupportedFile = errors.New("only .csv, .xls and .xlsx feeds are supported")
	ErrEmptyFeed       = errors.New("feed has no data rows")
	ErrMissingColumns  = errors.New("feed is missing required columns")
)

// feedColumns maps the acquisition system's export headers onto order
// fields. Headers not listed here are ignored.
var feedColumns = map[string]string{
	"BSN":                     "bsn",
	"Z13_TITLE":               "title",
	"Z71_TEXT":                "arrival_text",
	"Z71_OPEN_DATE":           "arrival_date",
	"Z71_USER_NAME":           "arrival_operator",
	"Z71_DATA":                "items_created",
	"Z30_BARCODE":             "barcode",
	"Z30_ITEM_PROCESS_STATUS": "ips_code",
	"ITEM_PROCESS_STATUS":     "ips",
	"Z30_ITEM_STATUS":         "item_status",
	"Z30_MATERIAL":            "material",
	"Z30_COLLECTION":          "collection",
	"Z30_PROCESS_STATUS_DATE": "ips_date",
	"Z30_UPDATE_DATE":         "ips_update_date",
	"Z30_CATALOGER":           "ips_code_operator",
	"UPDATE_DATE":             "update_date",
	"Z68_OPEN_DATE":           "created_date",
	"Z68_SUB_LIBRARY":         "sublibrary",
	"Z68_ORDER_STATUS":        "order_status",
	"Z68_INVOICE_STATUS":      "invoice_status",
	"Z68_MATERIAL_TYPE":       "material_type",
	"Z68_ORDER_NUMBER":        "order_number",
	"Z68_ORDER_TYPE":          "order_type",
	"Z68_TOTAL_PRICE":         "total_price",
	"Z68_ORDERING_UNIT":       "order_unit",
	"Z68_ARRIVAL_STATUS":      "arrival_status",
	"Z68_ORDER_STATUS_DATE_X": "order_status_update_date",
	"Z68_VENDOR_CODE":         "vendor_code",
	"Z68_LIBRARY_NOTE":        "library_note",
}

// dateColumns carry compact yyyymmdd values in the feed.
var dateColumns = map[string]bool{
	"arrival_date":             true,
	"ips_date":                 true,
	"ips_update_date":          true,
	"update_date":              true,
	"created_date":             true,
	"order_status_update_date": true,
}

type Stats struct {
	RowsRead          int `json:"rowsRead"`
	Inserted          int `json:"inserted"`
	Updated           int `json:"updated"`
	DuplicateBarcodes int `json:"duplicateBarcodes"`
	TagsFlushed       int `json:"tagsFlushed"`
}

// IngestService loads acquisition feed exports into the orders table and
// recomputes derived tags afterwards. Only one run can be active at a time.
type IngestService struct {
	DB       *gorm.DB
	Settings configs.SettingsProvider

	mu sync.Mutex
}

func NewIngestService(db *gorm.DB, settings configs.SettingsProvider) *IngestService {
	return &IngestService{DB: db, Settings: settings}
}

// IngestFile parses one feed export and upserts its rows, keyed on order
// number. It finishes with a tag flush so derived tags match the new data.
func (s *IngestService) IngestFile(path string) (Stats, error) {
	if !s.mu.TryLock() {
		return Stats{}, ErrIngestBusy
	}
	defer s.mu.Unlock()

	rows, err := readFeed(path)
	if err != nil {
		return Stats{}, err
	}
	records, stats, err := parseFeed(rows)
	if err != nil {
		return stats, err
	}

	err = s.DB.Transaction(func(tx *gorm.DB) error {
		for i := range records {
			rec := &records[i]
			var existing orderModel.OrderModel
			res := tx.Where("order_number = ?", rec.OrderNumber).Limit(1).Find(&existing)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected > 0 {
				rec.ID = existing.ID
				// struct update: blank feed cells stay nil and never
				// clear a stored value
				if err := tx.Model(&existing).Updates(rec).Error; err != nil {
					return err
				}
				stats.Updated++
				continue
			}
			if err := tx.Create(rec).Error; err != nil {
				return err
			}
			stats.Inserted++
		}
		return nil
	})
	if err != nil {
		return stats, err
	}

	flushed, err := s.FlushTags()
	if err != nil {
		return stats, err
	}
	stats.TagsFlushed = flushed

	logger.Log.Info("feed ingested",
		zap.String("file", filepath.Base(path)),
		zap.Int("rows", stats.RowsRead),
		zap.Int("inserted", stats.Inserted),
		zap.Int("updated", stats.Updated),
		zap.Int("tagsFlushed", stats.TagsFlushed),
	)
	return stats, nil
}

// FlushTags recomputes every order's derived tags from current data:
// Local/NY from the vendor profile, Rush/Non-Rush from the order type,
// DVD from the material code, CDL from the cdl flag. Manually managed
// tags (Sensitive, Reserve, ILL) survive untouched.
func (s *IngestService) FlushTags() (int, error) {
	rushTypes := map[string]bool{}
	for _, t := range s.Settings.Current().RushOrderTypes {
		rushTypes[t] = true
	}

	var orders []orderModel.OrderModel
	if err := s.DB.Find(&orders).Error; err != nil {
		return 0, err
	}
	var vendors []vendorModel.VendorModel
	if err := s.DB.Find(&vendors).Error; err != nil {
		return 0, err
	}
	localVendor := map[string]bool{}
	for _, v := range vendors {
		localVendor[v.VendorCode] = v.Local
	}

	flushed := 0
	err := s.DB.Transaction(func(tx *gorm.DB) error {
		for _, ord := range orders {
			var extra orderModel.ExtraInfoModel
			res := tx.Limit(1).Find(&extra, "id = ?", ord.ID)
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				extra = orderModel.ExtraInfoModel{ID: ord.ID, OrderNumber: ord.OrderNumber}
			}

			next := deriveTags(&ord, &extra, localVendor, rushTypes)
			encoded := tags.Encode(next)
			if extra.Tags != nil && *extra.Tags == encoded {
				continue
			}
			extra.Tags = &encoded
			if err := tx.Save(&extra).Error; err != nil {
				return err
			}
			flushed++
		}
		return nil
	})
	return flushed, err
}

func deriveTags(ord *orderModel.OrderModel, extra *orderModel.ExtraInfoModel, localVendor, rushTypes map[string]bool) []string {
	current := map[string]bool{}
	if extra.Tags != nil {
		if list, err := tags.Decode(*extra.Tags); err == nil {
			for _, t := range list {
				current[t] = true
			}
		}
	}

	derived := []string{}
	if localVendor[ord.VendorCode] {
		derived = append(derived, tags.Local)
	} else {
		derived = append(derived, tags.NY)
	}
	if ord.OrderType != nil && rushTypes[*ord.OrderType] {
		derived = append(derived, tags.Rush)
	} else {
		derived = append(derived, tags.NonRush)
	}
	if ord.Material != nil && strings.Contains(strings.ToUpper(*ord.Material), "DVD") {
		derived = append(derived, tags.DVD)
	}
	if extra.CDLFlag {
		derived = append(derived, tags.CDL)
	}
	for _, manual := range []string{tags.Sensitive, tags.Reserve, tags.ILL} {
		if current[manual] {
			derived = append(derived, manual)
		}
	}
	return derived
}

/* ===============================
   Feed parsing
=================================*/

func readFeed(path string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xls", ".xlsx":
		f, err := excelize.OpenFile(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, ErrEmptyFeed
		}
		return f.GetRows(sheets[0])
	case ".csv":
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()
		r := csv.NewReader(f)
		r.FieldsPerRecord = -1
		return r.ReadAll()
	default:
		return nil, ErrUnsupportedFile
	}
}

func parseFeed(rows [][]string) ([]orderModel.OrderModel, Stats, error) {
	var stats Stats
	if len(rows) < 2 {
		return nil, stats, ErrEmptyFeed
	}

	colField := map[int]string{}
	for idx, header := range rows[0] {
		if field, ok := feedColumns[strings.TrimSpace(header)]; ok {
			colField[idx] = field
		}
	}
	seen := map[string]bool{}
	for _, field := range colField {
		seen[field] = true
	}
	if !seen["order_number"] || !seen["vendor_code"] || !seen["bsn"] {
		return nil, stats, ErrMissingColumns
	}

	// The feed exports newest first half the time; we always want oldest
	// first so new orders key sequentially.
	body := rows[1:]
	if firstDate(body, rows[0]) > lastDate(body, rows[0]) {
		reversed := make([][]string, len(body))
		for i, row := range body {
			reversed[len(body)-1-i] = row
		}
		body = reversed
	}

	var records []orderModel.OrderModel
	byBarcode := map[string]int{} // barcode -> index in records, last wins
	for _, row := range body {
		stats.RowsRead++
		rec := orderModel.OrderModel{}
		for idx, field := range colField {
			if idx >= len(row) {
				continue
			}
			setField(&rec, field, strings.TrimSpace(row[idx]))
		}
		if rec.OrderNumber == "" {
			continue
		}
		if rec.Barcode != nil && *rec.Barcode != "" && *rec.Barcode != orderModel.BarcodePlaceholder {
			if prev, dup := byBarcode[*rec.Barcode]; dup {
				records[prev] = rec
				stats.DuplicateBarcodes++
				continue
			}
			byBarcode[*rec.Barcode] = len(records)
		}
		records = append(records, rec)
	}
	return records, stats, nil
}

func setField(rec *orderModel.OrderModel, field, value string) {
	if value == "" {
		return
	}
	if dateColumns[field] {
		t, err := parseFeedDate(value)
		if err != nil {
			return
		}
		switch field {
		case "arrival_date":
			rec.ArrivalDate = &t
		case "ips_date":
			rec.IPSDate = &t
		case "ips_update_date":
			rec.IPSUpdateDate = &t
		case "update_date":
			rec.UpdateDate = &t
		case "created_date":
			rec.CreatedDate = &t
		case "order_status_update_date":
			rec.OrderStatusUpdateDate = &t
		}
		return
	}
	switch field {
	case "bsn":
		rec.BSN = value
	case "title":
		rec.Title = &value
	case "arrival_text":
		rec.ArrivalText = &value
	case "arrival_operator":
		rec.ArrivalOperator = &value
	case "items_created":
		rec.ItemsCreated = &value
	case "barcode":
		rec.Barcode = &value
	case "ips_code":
		rec.IPSCode = &value
	case "ips":
		rec.IPS = &value
	case "item_status":
		rec.ItemStatus = &value
	case "material":
		rec.Material = &value
	case "collection":
		rec.Collection = &value
	case "ips_code_operator":
		rec.IPSCodeOperator = &value
	case "sublibrary":
		rec.Sublibrary = &value
	case "order_status":
		rec.OrderStatus = &value
	case "invoice_status":
		rec.InvoiceStatus = &value
	case "material_type":
		rec.MaterialType = &value
	case "order_number":
		rec.OrderNumber = value
	case "order_type":
		rec.OrderType = &value
	case "total_price":
		if p, err := strconv.ParseFloat(value, 64); err == nil {
			rec.TotalPrice = &p
		}
	case "order_unit":
		rec.OrderUnit = &value
	case "arrival_status":
		rec.ArrivalStatus = &value
	case "vendor_code":
		rec.VendorCode = value
	case "library_note":
		rec.LibraryNote = &value
	}
}

// parseFeedDate accepts the feed's compact yyyymmdd form as well as an
// already-dashed date.
func parseFeedDate(s string) (time.Time, error) {
	if len(s) == 8 {
		return time.Parse("20060102", s)
	}
	return time.Parse("2006-01-02", s)
}

func firstDate(body [][]string, header []string) string {
	return openDateAt(body, header, 0)
}

func lastDate(body [][]string, header []string) string {
	return openDateAt(body, header, len(body)-1)
}

func openDateAt(body [][]string, header []string, i int) string {
	if i < 0 || i >= len(body) {
		return ""
	}
	for idx, h := range header {
		if strings.TrimSpace(h) == "Z68_OPEN_DATE" && idx < len(body[i]) {
			return strings.TrimSpace(body[i][idx])
		}
	}
	return ""
}
