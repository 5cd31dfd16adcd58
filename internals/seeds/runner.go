package seeds

import (
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"libsense_backend/internals/configs"
	userModel "libsense_backend/internals/features/users/model"
	vendorModel "libsense_backend/internals/features/vendors/model"
	"libsense_backend/internals/logger"
)

// RunAllSeeds bootstraps a fresh database: one admin account and the
// vendor profiles the overdue rules depend on. Existing rows are left
// alone, so it is safe on every start.
func RunAllSeeds(db *gorm.DB) {
	seedAdminUser(db)
	seedVendors(db)
}

func seedAdminUser(db *gorm.DB) {
	var count int64
	if err := db.Model(&userModel.UserModel{}).Count(&count).Error; err != nil {
		logger.Log.Error("seed: could not count users", zap.Error(err))
		return
	}
	if count > 0 {
		return
	}

	password := configs.GetEnv("SEED_ADMIN_PASSWORD", "changeme-now")
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		logger.Log.Error("seed: could not hash admin password", zap.Error(err))
		return
	}
	admin := userModel.UserModel{
		Username: configs.GetEnv("SEED_ADMIN_USERNAME", "admin"),
		Password: string(hash),
		Role:     userModel.RoleAdmin,
	}
	if err := db.Create(&admin).Error; err != nil {
		logger.Log.Error("seed: could not create admin user", zap.Error(err))
		return
	}
	logger.Log.Info("seed: created initial admin user", zap.String("username", admin.Username))
}

func seedVendors(db *gorm.DB) {
	notify := func(n int) *int { return &n }
	defaults := []vendorModel.VendorModel{
		{VendorCode: "BW-LOCAL", NotifyIn: notify(10), Local: true},
		{VendorCode: "BW-NY", NotifyIn: notify(30), Local: false},
	}
	for _, v := range defaults {
		var existing vendorModel.VendorModel
		res := db.Limit(1).Find(&existing, "vendor_code = ?", v.VendorCode)
		if res.Error != nil || res.RowsAffected > 0 {
			continue
		}
		if err := db.Create(&v).Error; err != nil {
			logger.Log.Error("seed: could not create vendor",
				zap.String("vendor", v.VendorCode), zap.Error(err))
		}
	}
}
