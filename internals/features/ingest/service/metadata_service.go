// file: internals/features/ingest/service/metadata_service.go
package service

import (
	"time"

	"gorm.io/gorm"

	"libsense_backend/internals/features/orders/dto"
	"libsense_backend/internals/features/orders/model"
	"libsense_backend/internals/helpers/tags"
)

var supportedReports = []string{"Rush-Local", "CDLOrder", "ShanghaiOrder"}

// Metadata collects the distinct vocabulary the frontend needs to build
// filter dropdowns: live column values plus the fixed enums.
func Metadata(db *gorm.DB) (dto.MetaData, error) {
	meta := dto.MetaData{
		Tags:            tags.All,
		SupportedReport: supportedReports,
		CDLTags: []string{
			string(model.CDLStatusSilent),
			string(model.CDLStatusCircPDFAvail),
			string(model.CDLStatusVendPDFAvail),
			string(model.CDLStatusDVD),
			string(model.CDLStatusRequested),
			string(model.CDLStatusOnLoan),
		},
		PhysicalCopyStatus: []string{
			string(model.PhysicalNotArrived),
			string(model.PhysicalOnShelf),
			string(model.PhysicalDVD),
		},
	}

	orders := func() *gorm.DB { return db.Model(&model.OrderModel{}) }
	if err := orders().Distinct("ips_code").Where("ips_code IS NOT NULL").
		Order("ips_code").Pluck("ips_code", &meta.IPSCode).Error; err != nil {
		return meta, err
	}
	if err := orders().Distinct("vendor_code").
		Order("vendor_code").Pluck("vendor_code", &meta.Vendors).Error; err != nil {
		return meta, err
	}
	if err := orders().Distinct("material").Where("material IS NOT NULL").
		Order("material").Pluck("material", &meta.Material).Error; err != nil {
		return meta, err
	}
	if err := orders().Distinct("material_type").Where("material_type IS NOT NULL").
		Order("material_type").Pluck("material_type", &meta.MaterialType).Error; err != nil {
		return meta, err
	}

	var oldest *time.Time
	if err := orders().Select("MIN(created_date)").Scan(&oldest).Error; err != nil {
		return meta, err
	}
	meta.OldestDate = oldest
	return meta, nil
}
