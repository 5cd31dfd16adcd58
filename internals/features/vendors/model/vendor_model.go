// internals/features/vendors/model/vendor_model.go
package model

// VendorModel holds per-vendor SLA data: expected turnaround in days and
// whether the vendor ships locally (Local tag) or from NY/abroad.
type VendorModel struct {
	VendorCode string `gorm:"primaryKey;column:vendor_code" json:"vendor_code"`
	NotifyIn   *int   `gorm:"column:notify_in" json:"notify_in,omitempty"`
	Local      bool   `gorm:"column:local;default:false" json:"local"`
}

func (VendorModel) TableName() string { return "vendors" }
