// internals/features/orders/service/reports.go
package service

import (
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	"libsense_backend/internals/features/orders/dto"
	"libsense_backend/internals/features/orders/model"
	vendorModel "libsense_backend/internals/features/vendors/model"
	"libsense_backend/internals/helpers/query"
	"libsense_backend/internals/helpers/tags"
)

// ReportService owns the five report shapes. Each shape is a fixed join
// graph, a column resolver, and for the overdue shapes a raw business-rule
// suffix the generic filter vocabulary cannot express.
type ReportService struct {
	DB       *gorm.DB
	Settings configs.SettingsProvider
}

func NewReportService(db *gorm.DB, settings configs.SettingsProvider) *ReportService {
	return &ReportService{DB: db, Settings: settings}
}

var (
	tblOrders  = model.OrderModel{}.TableName()
	tblExtra   = model.ExtraInfoModel{}.TableName()
	tblNotes   = model.TrackingNoteModel{}.TableName()
	tblCDL     = model.CDLOrderModel{}.TableName()
	tblVendors = vendorModel.VendorModel{}.TableName()
)

var orderColumns = []string{
	"id", "bsn", "title", "arrival_text", "arrival_date", "arrival_operator",
	"items_created", "barcode", "ips_code", "ips", "item_status", "material",
	"collection", "ips_date", "ips_update_date", "ips_code_operator",
	"update_date", "created_date", "sublibrary", "order_status",
	"invoice_status", "material_type", "order_number", "order_type",
	"total_price", "order_unit", "arrival_status", "order_status_update_date",
	"vendor_code", "library_note",
}

var extraInfoColumns = []string{
	"tags", "checked", "attention", "check_anyway", "cdl_flag",
	"override_reminder_time", "reminder_receiver",
}

var noteColumns = []string{"tracking_note", "taken_by"}

var cdlColumns = []string{
	"cdl_item_status", "order_request_date", "order_purchased_date",
	"due_date", "physical_copy_status", "scanning_vendor_payment_date",
	"pdf_delivery_date", "back_to_karms_date", "bobcat_permanent_link",
	"circ_pdf_url", "vendor_file_url", "file_password", "author", "pages",
}

var vendorColumns = []string{"notify_in", "local"}

// fuzzyColumns are the fixed identifying columns every fuzzy term is OR-ed
// across, regardless of other filters.
func fuzzyColumns() []string {
	return []string{
		tblOrders + ".barcode",
		tblOrders + ".bsn",
		tblOrders + ".library_note",
		tblOrders + ".title",
		tblOrders + ".order_number",
	}
}

// Side tables are declared after the default order table, so a column listed
// twice resolves to the later table (tags, checked and friends always hit
// extra_info even though extra_info also carries id and order_number).
func (s *ReportService) generalResolver() *query.Resolver {
	return &query.Resolver{
		Default: query.Table{Name: tblOrders, Columns: orderColumns},
		Tables: []query.Table{
			{Name: tblNotes, Columns: noteColumns},
			{Name: tblExtra, Columns: extraInfoColumns},
		},
		TieBreak:  tblOrders + ".id",
		FuzzyCols: fuzzyColumns(),
	}
}

func (s *ReportService) cdlResolver() *query.Resolver {
	return &query.Resolver{
		Default: query.Table{Name: tblOrders, Columns: orderColumns},
		Tables: []query.Table{
			{Name: tblNotes, Columns: noteColumns},
			{Name: tblExtra, Columns: extraInfoColumns},
			{Name: tblCDL, Columns: cdlColumns},
		},
		TieBreak:  tblCDL + ".book_id",
		FuzzyCols: fuzzyColumns(),
	}
}

func (s *ReportService) rushLocalResolver() *query.Resolver {
	return &query.Resolver{
		Default: query.Table{Name: tblOrders, Columns: orderColumns},
		Tables: []query.Table{
			{Name: tblNotes, Columns: noteColumns},
			{Name: tblVendors, Columns: vendorColumns},
			{Name: tblExtra, Columns: extraInfoColumns},
		},
		TieBreak:  tblOrders + ".id",
		FuzzyCols: fuzzyColumns(),
	}
}

/* ===============================
   Select lists (explicit mapping)
=================================*/

func orderSelect() string {
	sel := ""
	for i, c := range orderColumns {
		if i > 0 {
			sel += ", "
		}
		sel += tblOrders + "." + c
	}
	return sel
}

func extraSelect() string {
	return tblExtra + ".tags, " + tblExtra + ".cdl_flag, " + tblExtra + ".checked, " +
		tblExtra + ".attention, " + tblExtra + ".check_anyway, " + tblExtra + ".override_reminder_time"
}

func noteSelect() string {
	return tblNotes + ".tracking_note, " + tblNotes + ".taken_by, " + tblNotes + ".date AS note_date"
}

func cdlSelect() string {
	sel := ""
	for i, c := range cdlColumns {
		if i > 0 {
			sel += ", "
		}
		sel += tblCDL + "." + c
	}
	return sel
}

/* ===============================
   Base queries (join graphs)
=================================*/

func (s *ReportService) generalBase() *gorm.DB {
	return s.DB.Table(tblOrders).
		Select(orderSelect()+", "+extraSelect()+", "+noteSelect()).
		Joins("LEFT JOIN "+tblExtra+" ON "+tblExtra+".id = "+tblOrders+".id").
		Joins("LEFT JOIN " + tblNotes + " ON " + tblNotes + ".book_id = " + tblOrders + ".id")
}

func (s *ReportService) cdlBase() *gorm.DB {
	return s.DB.Table(tblCDL).
		Select(orderSelect()+", "+extraSelect()+", "+noteSelect()+", "+cdlSelect()).
		Joins("JOIN "+tblOrders+" ON "+tblOrders+".id = "+tblCDL+".book_id").
		Joins("LEFT JOIN "+tblExtra+" ON "+tblExtra+".id = "+tblCDL+".book_id").
		Joins("LEFT JOIN " + tblNotes + " ON " + tblNotes + ".book_id = " + tblCDL + ".book_id")
}

func (s *ReportService) rushLocalBase() *gorm.DB {
	return s.DB.Table(tblOrders).
		Select(orderSelect()+", "+extraSelect()+", "+noteSelect()+", "+tblVendors+".notify_in").
		Joins("JOIN "+tblExtra+" ON "+tblExtra+".id = "+tblOrders+".id").
		Joins("JOIN "+tblVendors+" ON "+tblVendors+".vendor_code = "+tblOrders+".vendor_code").
		Joins("LEFT JOIN " + tblNotes + " ON " + tblNotes + ".book_id = " + tblOrders + ".id")
}

func (s *ReportService) overdueCDLBase() *gorm.DB {
	return s.DB.Table(tblCDL).
		Select(orderSelect()+", "+extraSelect()+", "+noteSelect()+", "+cdlSelect()).
		Joins("JOIN "+tblOrders+" ON "+tblOrders+".id = "+tblCDL+".book_id").
		Joins("JOIN "+tblExtra+" ON "+tblExtra+".id = "+tblCDL+".book_id").
		Joins("LEFT JOIN " + tblNotes + " ON " + tblNotes + ".book_id = " + tblCDL + ".book_id")
}

func (s *ReportService) shanghaiBase() *gorm.DB {
	return s.DB.Table(tblOrders).
		Select(orderSelect()+", "+extraSelect()+", "+noteSelect()).
		Joins("JOIN "+tblExtra+" ON "+tblExtra+".id = "+tblOrders+".id").
		Joins("LEFT JOIN " + tblNotes + " ON " + tblNotes + ".book_id = " + tblOrders + ".id")
}

/* ===============================
   Raw business-rule suffixes
=================================*/

// rushLocalSuffix is the overdue rule for rush local orders: either staff
// forced the row in with check_anyway, or the order has not arrived, is not
// cancelled, sat longer than the vendor's promised turnaround, and nobody
// checked it (or the manual snooze already expired). Strict >, so an order at
// exactly notify_in days is not overdue yet.
func (s *ReportService) rushLocalSuffix() string {
	return "(" + tblExtra + ".check_anyway = TRUE OR (" +
		tblOrders + ".arrival_date IS NULL" +
		" AND " + tblOrders + ".order_status <> '" + model.OrderStatusCancelled + "'" +
		" AND " + query.DaysSince(s.DB, tblOrders+".created_date") + " > " + tblVendors + ".notify_in" +
		" AND (" + tblExtra + ".checked = FALSE OR (" +
		tblExtra + ".override_reminder_time IS NOT NULL AND " +
		query.Now(s.DB) + " > " + tblExtra + ".override_reminder_time))))"
}

// cdlSuffix is the overdue rule for CDL scans. The threshold is the current
// fleet average scan turnaround, recomputed on every invocation.
func (s *ReportService) cdlSuffix() string {
	return "(" + tblExtra + ".check_anyway = TRUE OR (" +
		tblCDL + ".pdf_delivery_date IS NULL" +
		" AND " + query.DaysSince(s.DB, tblCDL+".order_request_date") + " > ?" +
		" AND (" + tblExtra + ".checked = FALSE OR (" +
		tblExtra + ".override_reminder_time IS NOT NULL AND " +
		query.Now(s.DB) + " > " + tblExtra + ".override_reminder_time))))"
}

// AverageCDLScanDays is the dynamic overdue threshold: mean whole-day scan
// turnaround over completed CDL orders requested after the configured vendor
// cutoff. Zero when nothing has completed yet. Deliberately not cached; the
// cutoff is runtime-mutable.
func (s *ReportService) AverageCDLScanDays() (int, error) {
	cutoff := s.Settings.Current().CDLCutoff()
	expr := query.DaysBetween(s.DB, tblCDL+".order_request_date", tblCDL+".pdf_delivery_date")

	var avg float64
	err := s.DB.Table(tblCDL).
		Select("COALESCE(AVG("+expr+"), 0)").
		Where(tblCDL+".pdf_delivery_date IS NOT NULL").
		Where(tblCDL+".order_request_date IS NOT NULL").
		Where(tblCDL+".order_request_date > ?", cutoff).
		Scan(&avg).Error
	if err != nil {
		return 0, err
	}
	return int(avg), nil
}

/* ===============================
   The five shapes
=================================*/

// GeneralOrders: Order left-joined with ExtraInfo and TrackingNote. Outer
// joins on purpose; rows missing their companions still appear with nulls.
func (s *ReportService) GeneralOrders(spec query.Spec) ([]dto.OrderRow, int64, error) {
	var rows []dto.OrderRow
	total, err := query.Run(s.generalBase(), s.generalResolver(), spec, &rows)
	if err != nil {
		return nil, 0, err
	}
	decodeAll(rows)
	return rows, total, nil
}

// CDLOrders: inner join on cdl_info, so only CDL-flagged orders qualify.
func (s *ReportService) CDLOrders(spec query.Spec) ([]dto.CDLOrderRow, int64, error) {
	var rows []dto.CDLOrderRow
	total, err := query.Run(s.cdlBase(), s.cdlResolver(), spec, &rows)
	if err != nil {
		return nil, 0, err
	}
	decodeAllCDL(rows)
	return rows, total, nil
}

// OverdueRushLocal: the tag filter is applied before the suffix, always.
// That means check_anyway pulls in rows regardless of dates but never
// bypasses the Rush+Local tag requirement.
func (s *ReportService) OverdueRushLocal(spec query.Spec) ([]dto.OrderRow, int64, error) {
	spec = s.rushLocalSpec(spec)
	var rows []dto.OrderRow
	total, err := query.Run(s.rushLocalBase(), s.rushLocalResolver(), spec, &rows)
	if err != nil {
		return nil, 0, err
	}
	decodeAll(rows)
	return rows, total, nil
}

func (s *ReportService) rushLocalSpec(spec query.Spec) query.Spec {
	fixed := []query.Filter{{Op: query.OpIn, Col: "tags", Val: []string{tags.Rush, tags.Local}}}
	spec.Filters = append(fixed, spec.Filters...)
	spec.RawSuffix = s.rushLocalSuffix()
	spec.RawArgs = nil
	return spec
}

func (s *ReportService) OverdueCDL(spec query.Spec) ([]dto.CDLOrderRow, int64, error) {
	spec, err := s.overdueCDLSpec(spec)
	if err != nil {
		return nil, 0, err
	}
	var rows []dto.CDLOrderRow
	total, err := query.Run(s.overdueCDLBase(), s.cdlResolver(), spec, &rows)
	if err != nil {
		return nil, 0, err
	}
	decodeAllCDL(rows)
	return rows, total, nil
}

func (s *ReportService) overdueCDLSpec(spec query.Spec) (query.Spec, error) {
	threshold, err := s.AverageCDLScanDays()
	if err != nil {
		return spec, err
	}
	spec.RawSuffix = s.cdlSuffix()
	spec.RawArgs = []any{threshold}
	return spec, nil
}

// Shanghai: the campus report. Window is fixed at three years of orders;
// campus and material codes come from runtime settings; newest first unless
// the caller sorts explicitly.
func (s *ReportService) Shanghai(spec query.Spec) ([]dto.OrderRow, int64, error) {
	spec = s.shanghaiSpec(spec)
	var rows []dto.OrderRow
	total, err := query.Run(s.shanghaiBase(), s.generalResolver(), spec, &rows)
	if err != nil {
		return nil, 0, err
	}
	decodeAll(rows)
	return rows, total, nil
}

func (s *ReportService) shanghaiSpec(spec query.Spec) query.Spec {
	set := s.Settings.Current()
	fixed := []query.Filter{
		{Op: query.OpLike, Col: "sublibrary", Val: set.ShanghaiSublibrary},
		{Op: query.OpLike, Col: "orderType", Val: set.ShanghaiMaterialCode},
	}
	spec.Filters = append(fixed, spec.Filters...)
	spec.RawSuffix = query.DaysSince(s.DB, tblOrders+".created_date") + " <= 1095"
	spec.RawArgs = nil
	if spec.Sorter == nil {
		spec.Sorter = &query.Sorter{Col: "createdDate", Desc: true}
	}
	return spec
}

/* ===============================
   Export statements (no pagination)
=================================*/

// Statement variants return the compiled, sorted, unpaginated query for CSV
// export, so report files stream straight off the cursor.

func (s *ReportService) OverdueRushLocalStatement(spec query.Spec) (*gorm.DB, error) {
	return query.Statement(s.rushLocalBase(), s.rushLocalResolver(), s.rushLocalSpec(spec))
}

func (s *ReportService) CDLOrdersStatement(spec query.Spec) (*gorm.DB, error) {
	return query.Statement(s.cdlBase(), s.cdlResolver(), spec)
}

func (s *ReportService) ShanghaiStatement(spec query.Spec) (*gorm.DB, error) {
	return query.Statement(s.shanghaiBase(), s.generalResolver(), s.shanghaiSpec(spec))
}

/* ===============================
   Pending counts (overview)
=================================*/

func (s *ReportService) PendingRushLocalCount() (int64, error) {
	q, err := query.Compile(s.rushLocalBase(), s.rushLocalResolver(), s.rushLocalSpec(query.Spec{}))
	if err != nil {
		return 0, err
	}
	var total int64
	err = q.Count(&total).Error
	return total, err
}

func (s *ReportService) PendingCDLCount() (int64, error) {
	spec, err := s.overdueCDLSpec(query.Spec{})
	if err != nil {
		return 0, err
	}
	q, err := query.Compile(s.overdueCDLBase(), s.cdlResolver(), spec)
	if err != nil {
		return 0, err
	}
	var total int64
	err = q.Count(&total).Error
	return total, err
}

func decodeAll(rows []dto.OrderRow) {
	for i := range rows {
		rows[i].DecodeTags()
	}
}

func decodeAllCDL(rows []dto.CDLOrderRow) {
	for i := range rows {
		rows[i].DecodeTags()
	}
}
