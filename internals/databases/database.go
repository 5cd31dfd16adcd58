// internals/databases/database.go
package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"
	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	orderModel "libsense_backend/internals/features/orders/model"
	presetModel "libsense_backend/internals/features/presets/model"
	userModel "libsense_backend/internals/features/users/model"
	vendorModel "libsense_backend/internals/features/vendors/model"
	"libsense_backend/internals/logger"
)

var DB *gorm.DB

// ConnectDB opens the GORM handle. DB_DRIVER selects the engine: the
// production instance runs MySQL, newer deployments run Postgres. Date
// arithmetic in the overdue rules goes through the query dialect helpers, so
// both work.
func ConnectDB() {
	driver := getenv("DB_DRIVER", "postgres")

	var dial gorm.Dialector
	switch driver {
	case "mysql":
		dsn := fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "3306"),
			getenv("DB_NAME", "libsense"),
		)
		dial = mysql.Open(dsn)
	default:
		dsn := fmt.Sprintf(
			"postgres://%s:%s@%s:%s/%s?sslmode=%s&application_name=libsense&options=-c statement_timeout=3000",
			os.Getenv("DB_USER"),
			os.Getenv("DB_PASSWORD"),
			getenv("DB_HOST", "localhost"),
			getenv("DB_PORT", "5432"),
			getenv("DB_NAME", "libsense"),
			getenv("DB_SSLMODE", "disable"),
		)
		dial = postgres.New(postgres.Config{
			DSN:                  dsn,
			PreferSimpleProtocol: true, // safe behind PgBouncer transaction pooling
		})
	}

	db, err := gorm.Open(dial, &gorm.Config{
		Logger: NewGormZapLogger(),
	})
	if err != nil {
		log.Fatalf("db connect failed: %v", err)
	}
	DB = db
	logger.Log.Info("database connected", zap.String("driver", driver))
}

// Migrate creates or updates every table the app owns.
func Migrate() {
	err := DB.AutoMigrate(
		&orderModel.OrderModel{},
		&orderModel.ExtraInfoModel{},
		&orderModel.TrackingNoteModel{},
		&orderModel.CDLOrderModel{},
		&vendorModel.VendorModel{},
		&userModel.UserModel{},
		&presetModel.PresetModel{},
	)
	if err != nil {
		log.Fatalf("db migrate failed: %v", err)
	}
}

func TunePool() {
	sqlDB, err := DB.DB()
	if err != nil {
		logger.Log.Warn("pool tune failed", zap.Error(err))
		return
	}
	sqlDB.SetMaxOpenConns(20)
	sqlDB.SetMaxIdleConns(10)
	sqlDB.SetConnMaxIdleTime(60 * time.Second)
	sqlDB.SetConnMaxLifetime(10 * time.Minute)
}

func WarmUpQueries() {
	go func() {
		time.Sleep(500 * time.Millisecond)
		if err := ping(); err != nil {
			logger.Log.Warn("warm-up ping failed", zap.Error(err))
		}
	}()
}

func ping() error {
	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Ping()
}

func getenv(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

// =======================
// GORM LOGGER (zap)
// =======================

type gormZapLogger struct {
	SlowThreshold time.Duration
	LogLevel      gormLogger.LogLevel
}

func NewGormZapLogger() gormLogger.Interface {
	return &gormZapLogger{
		SlowThreshold: 200 * time.Millisecond,
		LogLevel:      gormLogger.Warn,
	}
}

func (l *gormZapLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	l.LogLevel = level
	return l
}

func (l *gormZapLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	logger.Log.Sugar().Infof(msg, data...)
}

func (l *gormZapLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	logger.Log.Sugar().Warnf(msg, data...)
}

func (l *gormZapLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	logger.Log.Sugar().Errorf(msg, data...)
}

func (l *gormZapLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	elapsed := time.Since(begin)
	sql, rows := fc()

	switch {
	case err != nil && l.LogLevel >= gormLogger.Error:
		logger.Log.Error("query failed",
			zap.Error(err), zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case elapsed > l.SlowThreshold && l.LogLevel >= gormLogger.Warn:
		logger.Log.Warn("slow query",
			zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	case l.LogLevel >= gormLogger.Info:
		logger.Log.Debug("query",
			zap.Duration("elapsed", elapsed), zap.Int64("rows", rows), zap.String("sql", sql))
	}
}
