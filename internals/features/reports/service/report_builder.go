// file: internals/features/reports/service/report_builder.go
package service

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"gorm.io/gorm"

	orderDTO "libsense_backend/internals/features/orders/dto"
	orderService "libsense_backend/internals/features/orders/service"
	"libsense_backend/internals/helpers/query"
)

// ReportType is the name of a scheduled/downloadable report.
type ReportType string

const (
	ReportRushLocal ReportType = "Rush-Local"
	ReportCDLOrder  ReportType = "CDLOrder"
	ReportShanghai  ReportType = "ShanghaiOrder"
)

var ErrUnknownReport = errors.New("unknown report type")

// Builder turns a report shape into a CSV file for download or mailing.
type Builder struct {
	Reports *orderService.ReportService
}

func NewBuilder(reports *orderService.ReportService) *Builder {
	return &Builder{Reports: reports}
}

// BuildCSV runs the named report unpaginated and renders it as CSV.
// Returns the file content and a dated filename.
func (b *Builder) BuildCSV(kind ReportType) ([]byte, string, error) {
	spec := query.Spec{PageSize: -1}
	filename := fmt.Sprintf("%s-%s.csv", kind, time.Now().Format("2006-01-02"))

	switch kind {
	case ReportRushLocal:
		stmt, err := b.Reports.OverdueRushLocalStatement(spec)
		if err != nil {
			return nil, "", err
		}
		rows, err := scanOrderRows(stmt)
		if err != nil {
			return nil, "", err
		}
		content, err := orderRowsCSV(rows)
		return content, filename, err
	case ReportShanghai:
		stmt, err := b.Reports.ShanghaiStatement(spec)
		if err != nil {
			return nil, "", err
		}
		rows, err := scanOrderRows(stmt)
		if err != nil {
			return nil, "", err
		}
		content, err := orderRowsCSV(rows)
		return content, filename, err
	case ReportCDLOrder:
		stmt, err := b.Reports.CDLOrdersStatement(spec)
		if err != nil {
			return nil, "", err
		}
		var rows []orderDTO.CDLOrderRow
		if err := stmt.Scan(&rows).Error; err != nil {
			return nil, "", err
		}
		for i := range rows {
			rows[i].DecodeTags()
		}
		content, err := cdlRowsCSV(rows)
		return content, filename, err
	default:
		return nil, "", ErrUnknownReport
	}
}

func scanOrderRows(stmt *gorm.DB) ([]orderDTO.OrderRow, error) {
	var rows []orderDTO.OrderRow
	if err := stmt.Scan(&rows).Error; err != nil {
		return nil, err
	}
	for i := range rows {
		rows[i].DecodeTags()
	}
	return rows, nil
}

var orderHeader = []string{
	"id", "orderNumber", "bsn", "title", "barcode", "vendorCode",
	"createdDate", "arrivalDate", "orderStatus", "sublibrary",
	"material", "orderType", "tags", "trackingNote", "notifyIn",
}

func orderRowsCSV(rows []orderDTO.OrderRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(orderHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		if err := w.Write(orderRecord(&r)); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

var cdlHeader = append(append([]string{}, orderHeader...),
	"cdlItemStatus", "orderRequestDate", "scanningVendorPaymentDate",
	"pdfDeliveryDate", "physicalCopyStatus", "author", "pages",
)

func cdlRowsCSV(rows []orderDTO.CDLOrderRow) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(cdlHeader); err != nil {
		return nil, err
	}
	for _, r := range rows {
		rec := append(orderRecord(&r.OrderRow),
			strOrEmpty(r.CDLItemStatus),
			dateOrEmpty(r.OrderRequestDate),
			dateOrEmpty(r.ScanningVendorPaymentDate),
			dateOrEmpty(r.PDFDeliveryDate),
			strOrEmpty(r.PhysicalCopyStatus),
			strOrEmpty(r.Author),
			strOrEmpty(r.Pages),
		)
		if err := w.Write(rec); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

func orderRecord(r *orderDTO.OrderRow) []string {
	notifyIn := ""
	if r.NotifyIn != nil {
		notifyIn = strconv.Itoa(*r.NotifyIn)
	}
	return []string{
		strconv.Itoa(r.ID),
		strOrEmpty(r.OrderNumber),
		strOrEmpty(r.BSN),
		strOrEmpty(r.Title),
		strOrEmpty(r.Barcode),
		strOrEmpty(r.VendorCode),
		dateOrEmpty(r.CreatedDate),
		dateOrEmpty(r.ArrivalDate),
		strOrEmpty(r.OrderStatus),
		strOrEmpty(r.Sublibrary),
		strOrEmpty(r.Material),
		strOrEmpty(r.OrderType),
		strings.Join(r.Tags, ";"),
		strOrEmpty(r.TrackingNote),
		notifyIn,
	}
}

func strOrEmpty(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func dateOrEmpty(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format("2006-01-02")
}
