// internals/features/orders/model/extra_info_model.go
package model

import "time"

// ExtraInfoModel is the system-managed 1:1 companion of an order: everything
// staff record that the vendor feed knows nothing about. The tags column is
// a single bracketed-token string (see helpers/tags).
type ExtraInfoModel struct {
	ID          int     `gorm:"primaryKey;column:id" json:"id"`
	OrderNumber string  `gorm:"column:order_number" json:"order_number"`
	Tags        *string `gorm:"column:tags" json:"tags,omitempty"`

	ReminderReceiver *string `gorm:"column:reminder_receiver" json:"reminder_receiver,omitempty"`

	CDLFlag     bool `gorm:"column:cdl_flag;default:false" json:"cdl_flag"`
	Checked     bool `gorm:"column:checked;default:false" json:"checked"`
	Attention   bool `gorm:"column:attention;default:false" json:"attention"`
	CheckAnyway bool `gorm:"column:check_anyway;default:false" json:"check_anyway"`

	// When set, suppresses the default SLA window until the given time.
	OverrideReminderTime *time.Time `gorm:"column:override_reminder_time" json:"override_reminder_time,omitempty"`
}

func (ExtraInfoModel) TableName() string { return "extra_info" }
