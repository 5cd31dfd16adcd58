// internals/features/orders/dto/order_dto.go
package dto

import (
	"time"

	"go.uber.org/zap"

	"libsense_backend/internals/helpers/query"
	"libsense_backend/internals/helpers/tags"
	"libsense_backend/internals/logger"
)

// The order API keeps the legacy camelCase wire contract; the query layer
// decamelizes column names back to the canonical snake_case.

type FieldFilter struct {
	Op  string `json:"op" validate:"required,oneof=in like between"`
	Col string `json:"col" validate:"required"`
	Val any    `json:"val"`
}

type SortCol struct {
	Col  string `json:"col" validate:"required"`
	Desc bool   `json:"desc"`
}

// OrderViews selects which report shape answers the generic order query.
// Precedence when several are set: cdlView+pendingCdl, cdlView,
// pendingRushLocal, then the general order listing. Prioritize is reserved
// and currently ignored.
type OrderViews struct {
	CDLView          bool `json:"cdlView"`
	PendingRushLocal bool `json:"pendingRushLocal"`
	PendingCDL       bool `json:"pendingCdl"`
	Prioritize       bool `json:"prioritize"`
}

type PageableOrderRequest struct {
	PageIndex int           `json:"pageIndex" validate:"min=0"`
	PageSize  int           `json:"pageSize"`
	Filters   []FieldFilter `json:"filters" validate:"dive"`
	Sorter    *SortCol      `json:"sorter"`
	Fuzzy     string        `json:"fuzzy"`
	Views     OrderViews    `json:"views"`
}

// Spec lowers the wire request into the compiler's query description.
func (r PageableOrderRequest) Spec() query.Spec {
	s := query.Spec{
		Fuzzy:     r.Fuzzy,
		PageIndex: r.PageIndex,
		PageSize:  r.PageSize,
	}
	if s.PageSize == 0 {
		s.PageSize = 10
	}
	for _, f := range r.Filters {
		s.Filters = append(s.Filters, query.Filter{Op: query.Op(f.Op), Col: f.Col, Val: f.Val})
	}
	if r.Sorter != nil {
		s.Sorter = &query.Sorter{Col: r.Sorter.Col, Desc: r.Sorter.Desc}
	}
	return s
}

/* ===============================
   Row views (joined, flattened)
=================================*/

// OrderRow is the flattened general-order row: order columns plus the
// ExtraInfo companion and the optional tracking note. Explicitly mapped, so
// two joined tables can never silently clobber each other's fields.
type OrderRow struct {
	ID          int        `gorm:"column:id" json:"id"`
	BSN         *string    `gorm:"column:bsn" json:"bsn,omitempty"`
	Barcode     *string    `gorm:"column:barcode" json:"barcode,omitempty"`
	Title       *string    `gorm:"column:title" json:"title,omitempty"`
	OrderNumber *string    `gorm:"column:order_number" json:"orderNumber,omitempty"`
	CreatedDate *time.Time `gorm:"column:created_date" json:"createdDate,omitempty"`
	ArrivalDate *time.Time `gorm:"column:arrival_date" json:"arrivalDate,omitempty"`

	IPSCode         *string    `gorm:"column:ips_code" json:"ipsCode,omitempty"`
	IPS             *string    `gorm:"column:ips" json:"ips,omitempty"`
	IPSDate         *time.Time `gorm:"column:ips_date" json:"ipsDate,omitempty"`
	IPSUpdateDate   *time.Time `gorm:"column:ips_update_date" json:"ipsUpdateDate,omitempty"`
	IPSCodeOperator *string    `gorm:"column:ips_code_operator" json:"ipsCodeOperator,omitempty"`

	VendorCode  *string `gorm:"column:vendor_code" json:"vendorCode,omitempty"`
	LibraryNote *string `gorm:"column:library_note" json:"libraryNote,omitempty"`

	ArrivalText     *string    `gorm:"column:arrival_text" json:"arrivalText,omitempty"`
	ArrivalStatus   *string    `gorm:"column:arrival_status" json:"arrivalStatus,omitempty"`
	ArrivalOperator *string    `gorm:"column:arrival_operator" json:"arrivalOperator,omitempty"`
	ItemsCreated    *string    `gorm:"column:items_created" json:"itemsCreated,omitempty"`
	ItemStatus      *string    `gorm:"column:item_status" json:"itemStatus,omitempty"`
	Material        *string    `gorm:"column:material" json:"material,omitempty"`
	Collection      *string    `gorm:"column:collection" json:"collection,omitempty"`
	UpdateDate      *time.Time `gorm:"column:update_date" json:"updateDate,omitempty"`
	Sublibrary      *string    `gorm:"column:sublibrary" json:"sublibrary,omitempty"`
	OrderStatus     *string    `gorm:"column:order_status" json:"orderStatus,omitempty"`
	InvoiceStatus   *string    `gorm:"column:invoice_status" json:"invoiceStatus,omitempty"`
	MaterialType    *string    `gorm:"column:material_type" json:"materialType,omitempty"`
	OrderType       *string    `gorm:"column:order_type" json:"orderType,omitempty"`
	OrderUnit       *string    `gorm:"column:order_unit" json:"orderUnit,omitempty"`
	TotalPrice      *float64   `gorm:"column:total_price" json:"totalPrice,omitempty"`

	OrderStatusUpdateDate *time.Time `gorm:"column:order_status_update_date" json:"orderStatusUpdateDate,omitempty"`

	// extra_info companion
	TagsRaw              *string    `gorm:"column:tags" json:"-"`
	Tags                 []string   `gorm:"-" json:"tags"`
	CDLFlag              bool       `gorm:"column:cdl_flag" json:"cdlFlag"`
	Checked              bool       `gorm:"column:checked" json:"checked"`
	Attention            bool       `gorm:"column:attention" json:"attention"`
	CheckAnyway          bool       `gorm:"column:check_anyway" json:"checkAnyway"`
	OverrideReminderTime *time.Time `gorm:"column:override_reminder_time" json:"overrideReminderTime,omitempty"`

	// optional tracking note
	TrackingNote *string    `gorm:"column:tracking_note" json:"trackingNote,omitempty"`
	TakenBy      *string    `gorm:"column:taken_by" json:"takenBy,omitempty"`
	NoteDate     *time.Time `gorm:"column:note_date" json:"noteDate,omitempty"`

	// vendor SLA, selected by the overdue rush-local shape only
	NotifyIn *int `gorm:"column:notify_in" json:"notifyIn,omitempty"`
}

// DecodeTags turns the raw tags column into the list form and applies the
// cdl_flag enrichment. Malformed legacy strings degrade to an empty set and
// are logged, never fatal.
func (r *OrderRow) DecodeTags() {
	decoded := []string{}
	if r.TagsRaw != nil && *r.TagsRaw != "" {
		var err error
		decoded, err = tags.Decode(*r.TagsRaw)
		if err != nil {
			logger.Log.Warn("malformed tags, treating as empty",
				zap.Int("order_id", r.ID), zap.String("tags", *r.TagsRaw))
			decoded = []string{}
		}
	}
	r.Tags = tags.WithCDL(decoded, r.CDLFlag)
}

// CDLOrderRow extends the flattened row with the cdl_info columns.
type CDLOrderRow struct {
	OrderRow `gorm:"embedded"`

	CDLItemStatus             *string    `gorm:"column:cdl_item_status" json:"cdlItemStatus,omitempty"`
	OrderRequestDate          *time.Time `gorm:"column:order_request_date" json:"orderRequestDate,omitempty"`
	OrderPurchasedDate        *time.Time `gorm:"column:order_purchased_date" json:"orderPurchasedDate,omitempty"`
	DueDate                   *time.Time `gorm:"column:due_date" json:"dueDate,omitempty"`
	PhysicalCopyStatus        *string    `gorm:"column:physical_copy_status" json:"physicalCopyStatus,omitempty"`
	ScanningVendorPaymentDate *time.Time `gorm:"column:scanning_vendor_payment_date" json:"scanningVendorPaymentDate,omitempty"`
	PDFDeliveryDate           *time.Time `gorm:"column:pdf_delivery_date" json:"pdfDeliveryDate,omitempty"`
	BackToKARMSDate           *string    `gorm:"column:back_to_karms_date" json:"backToKarmsDate,omitempty"`
	BobcatPermanentLink       *string    `gorm:"column:bobcat_permanent_link" json:"bobcatPermanentLink,omitempty"`
	CircPDFURL                *string    `gorm:"column:circ_pdf_url" json:"circPdfUrl,omitempty"`
	VendorFileURL             *string    `gorm:"column:vendor_file_url" json:"vendorFileUrl,omitempty"`
	FilePassword              *string    `gorm:"column:file_password" json:"filePassword,omitempty"`
	Author                    *string    `gorm:"column:author" json:"author,omitempty"`
	Pages                     *string    `gorm:"column:pages" json:"pages,omitempty"`
}

/* ===============================
   Mutation requests
=================================*/

type CDLRequest struct {
	CDLItemStatus             *string `json:"cdlItemStatus"`
	OrderRequestDate          *string `json:"orderRequestDate"`
	OrderPurchasedDate        *string `json:"orderPurchasedDate"`
	DueDate                   *string `json:"dueDate"`
	PhysicalCopyStatus        *string `json:"physicalCopyStatus"`
	ScanningVendorPaymentDate *string `json:"scanningVendorPaymentDate"`
	PDFDeliveryDate           *string `json:"pdfDeliveryDate"`
	BackToKARMSDate           *string `json:"backToKarmsDate"`
	BobcatPermanentLink       *string `json:"bobcatPermanentLink"`
	CircPDFURL                *string `json:"circPdfUrl"`
	VendorFileURL             *string `json:"vendorFileUrl"`
	FilePassword              *string `json:"filePassword"`
	Author                    *string `json:"author"`
	Pages                     *string `json:"pages"`
}

type PatchOrderRequest struct {
	BookID               int         `json:"bookId" validate:"required,min=1"`
	TrackingNote         *string     `json:"trackingNote"`
	Checked              *bool       `json:"checked"`
	CheckAnyway          *bool       `json:"checkAnyway"`
	Attention            *bool       `json:"attention"`
	OverrideReminderTime *string     `json:"overrideReminderTime"` // yyyy-mm-dd
	Sensitive            *bool       `json:"sensitive"`
	CDL                  *CDLRequest `json:"cdl"`
}

type NewCDLRequest struct {
	BookID int `json:"bookId" validate:"required,min=1"`
}

type CheckedRequest struct {
	ID      []int `json:"id" validate:"required,min=1"`
	Checked bool  `json:"checked"`
}

type AttentionRequest struct {
	ID        []int `json:"id" validate:"required,min=1"`
	Attention bool  `json:"attention"`
}

/* ===============================
   Overview
=================================*/

type Overview struct {
	LocalRushPending int64 `json:"localRushPending"`
	CDLPending       int64 `json:"cdlPending"`

	AvgCDLScan   int `json:"avgCdlScan"`
	AvgCDL       int `json:"avgCdl"`
	AvgRushNYC   int `json:"avgRushNyc"`
	AvgRushLocal int `json:"avgRushLocal"`

	MaxCDLScan   int `json:"maxCdlScan"`
	MaxCDL       int `json:"maxCdl"`
	MaxRushNYC   int `json:"maxRushNyc"`
	MaxRushLocal int `json:"maxRushLocal"`

	MinCDLScan   int `json:"minCdlScan"`
	MinCDL       int `json:"minCdl"`
	MinRushNYC   int `json:"minRushNyc"`
	MinRushLocal int `json:"minRushLocal"`
}

type MetaData struct {
	IPSCode            []string   `json:"ipsCode"`
	Tags               []string   `json:"tags"`
	Vendors            []string   `json:"vendors"`
	OldestDate         *time.Time `json:"oldestDate,omitempty"`
	Material           []string   `json:"material"`
	MaterialType       []string   `json:"materialType"`
	CDLTags            []string   `json:"cdlTags"`
	SupportedReport    []string   `json:"supportedReport"`
	PhysicalCopyStatus []string   `json:"physicalCopyStatus"`
}
