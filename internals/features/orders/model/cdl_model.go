// internals/features/orders/model/cdl_model.go
package model

import (
	"database/sql/driver"
	"strings"
	"time"
)

// CDLItemStatus values as the frontend shows them (ENUM in DB).
type CDLItemStatus string

const (
	CDLStatusSilent        CDLItemStatus = "CDL Silent"
	CDLStatusCircPDFAvail  CDLItemStatus = "Circ PDF Available"
	CDLStatusVendPDFAvail  CDLItemStatus = "Vendor PDF Available"
	CDLStatusDVD           CDLItemStatus = "CDL DVD"
	CDLStatusRequested     CDLItemStatus = "Requested"
	CDLStatusOnLoan        CDLItemStatus = "On Loan"
)

func (s *CDLItemStatus) Scan(value any) error {
	switch v := value.(type) {
	case string:
		*s = CDLItemStatus(strings.TrimSpace(v))
	case []byte:
		*s = CDLItemStatus(strings.TrimSpace(string(v)))
	case nil:
		*s = ""
	}
	return nil
}

func (s CDLItemStatus) Value() (driver.Value, error) { return string(s), nil }

// PhysicalCopyStatus of the book backing a CDL scan.
type PhysicalCopyStatus string

const (
	PhysicalNotArrived PhysicalCopyStatus = "Not Arrived"
	PhysicalOnShelf    PhysicalCopyStatus = "On Shelf"
	PhysicalDVD        PhysicalCopyStatus = "DVD"
)

// CDLOrderModel extends an order under the digital-lending workflow, 1:1
// optional, keyed by the order id. Created when staff flag the order CDL and
// dropped when the flag is revoked.
type CDLOrderModel struct {
	BookID        int            `gorm:"primaryKey;column:book_id" json:"book_id"`
	CDLItemStatus *CDLItemStatus `gorm:"column:cdl_item_status" json:"cdl_item_status,omitempty"`

	OrderRequestDate          *time.Time `gorm:"column:order_request_date" json:"order_request_date,omitempty"`
	OrderPurchasedDate        *time.Time `gorm:"column:order_purchased_date" json:"order_purchased_date,omitempty"`
	DueDate                   *time.Time `gorm:"column:due_date" json:"due_date,omitempty"`
	ScanningVendorPaymentDate *time.Time `gorm:"column:scanning_vendor_payment_date" json:"scanning_vendor_payment_date,omitempty"`
	PDFDeliveryDate           *time.Time `gorm:"column:pdf_delivery_date" json:"pdf_delivery_date,omitempty"`

	// Free text in legacy data, sometimes a date, sometimes "N/A".
	BackToKARMSDate *string `gorm:"column:back_to_karms_date" json:"back_to_karms_date,omitempty"`

	PhysicalCopyStatus *PhysicalCopyStatus `gorm:"column:physical_copy_status" json:"physical_copy_status,omitempty"`
	BobcatPermanentLink *string            `gorm:"column:bobcat_permanent_link" json:"bobcat_permanent_link,omitempty"`
	CircPDFURL          *string            `gorm:"column:circ_pdf_url" json:"circ_pdf_url,omitempty"`
	VendorFileURL       *string            `gorm:"column:vendor_file_url" json:"vendor_file_url,omitempty"`
	FilePassword        *string            `gorm:"column:file_password" json:"file_password,omitempty"`
	Author              *string            `gorm:"column:author" json:"author,omitempty"`
	Pages               *string            `gorm:"column:pages" json:"pages,omitempty"`
}

func (CDLOrderModel) TableName() string { return "cdl_info" }
