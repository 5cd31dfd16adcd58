// internals/features/orders/model/order_model.go
package model

import "time"

// Order mirrors one row of the vendor acquisition feed. Rows are created by
// bulk ingestion and only ever touched again by reconciliation or staff
// edits.
type OrderModel struct {
	ID           int     `gorm:"primaryKey;autoIncrement;column:id" json:"id"`
	BSN          string  `gorm:"not null;column:bsn" json:"bsn"`
	Title        *string `gorm:"column:title" json:"title,omitempty"`
	ArrivalText  *string `gorm:"column:arrival_text" json:"arrival_text,omitempty"`
	ArrivalDate  *time.Time `gorm:"column:arrival_date" json:"arrival_date,omitempty"`
	ArrivalOperator *string `gorm:"column:arrival_operator" json:"arrival_operator,omitempty"`
	ItemsCreated *string `gorm:"column:items_created" json:"items_created,omitempty"`

	// Barcode may carry a "-" placeholder until cataloging finalizes it.
	Barcode *string `gorm:"column:barcode" json:"barcode,omitempty"`

	IPSCode         *string    `gorm:"column:ips_code" json:"ips_code,omitempty"`
	IPS             *string    `gorm:"column:ips" json:"ips,omitempty"`
	ItemStatus      *string    `gorm:"column:item_status" json:"item_status,omitempty"`
	Material        *string    `gorm:"column:material" json:"material,omitempty"`
	Collection      *string    `gorm:"column:collection" json:"collection,omitempty"`
	IPSDate         *time.Time `gorm:"column:ips_date" json:"ips_date,omitempty"`
	IPSUpdateDate   *time.Time `gorm:"column:ips_update_date" json:"ips_update_date,omitempty"`
	IPSCodeOperator *string    `gorm:"column:ips_code_operator" json:"ips_code_operator,omitempty"`
	UpdateDate      *time.Time `gorm:"column:update_date" json:"update_date,omitempty"`
	CreatedDate     *time.Time `gorm:"column:created_date" json:"created_date,omitempty"`
	Sublibrary      *string    `gorm:"column:sublibrary" json:"sublibrary,omitempty"`
	OrderStatus     *string    `gorm:"column:order_status" json:"order_status,omitempty"`
	InvoiceStatus   *string    `gorm:"column:invoice_status" json:"invoice_status,omitempty"`
	MaterialType    *string    `gorm:"column:material_type" json:"material_type,omitempty"`
	OrderNumber     string     `gorm:"column:order_number" json:"order_number"`
	OrderType       *string    `gorm:"column:order_type" json:"order_type,omitempty"`
	TotalPrice      *float64   `gorm:"column:total_price" json:"total_price,omitempty"`
	OrderUnit       *string    `gorm:"column:order_unit" json:"order_unit,omitempty"`
	ArrivalStatus   *string    `gorm:"column:arrival_status" json:"arrival_status,omitempty"`
	OrderStatusUpdateDate *time.Time `gorm:"column:order_status_update_date" json:"order_status_update_date,omitempty"`
	VendorCode      string     `gorm:"not null;column:vendor_code" json:"vendor_code"`
	LibraryNote     *string    `gorm:"column:library_note" json:"library_note,omitempty"`
}

func (OrderModel) TableName() string { return "nyc_orders" }

// OrderStatusCancelled is the feed's code for a cancelled order; the overdue
// rules and the overview aggregates skip these rows.
const OrderStatusCancelled = "VC"

// BarcodePlaceholder marks a barcode cataloging has not finalized yet.
const BarcodePlaceholder = "-"

// BarcodeFinalized reports whether the order's barcode can be keyed on.
func (o *OrderModel) BarcodeFinalized() bool {
	if o.Barcode == nil {
		return false
	}
	b := *o.Barcode
	return b != "" && !containsPlaceholder(b)
}

func containsPlaceholder(b string) bool {
	for i := 0; i < len(b); i++ {
		if b[i] == '-' {
			return true
		}
	}
	return false
}
