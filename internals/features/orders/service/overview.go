// internals/features/orders/service/overview.go
package service

import (
	"time"

	"gorm.io/gorm"

	"libsense_backend/internals/features/orders/dto"
	"libsense_backend/internals/features/orders/model"
	"libsense_backend/internals/helpers/query"
	"libsense_backend/internals/helpers/tags"
)

// Dashboard aggregates. Read-only, independent of the compiler; every
// aggregate coalesces to 0 so the payload stays non-nullable even on an
// empty database.

type aggRow struct {
	Avg float64 `gorm:"column:avg_days"`
	Min float64 `gorm:"column:min_days"`
	Max float64 `gorm:"column:max_days"`
}

func (s *ReportService) Overview() (dto.Overview, error) {
	var out dto.Overview

	pendingRL, err := s.PendingRushLocalCount()
	if err != nil {
		return out, err
	}
	pendingCDL, err := s.PendingCDLCount()
	if err != nil {
		return out, err
	}
	out.LocalRushPending = pendingRL
	out.CDLPending = pendingCDL

	cutoff := s.Settings.Current().StatsCutoff()

	// CDL scan turnaround: request to PDF delivery.
	scan, err := s.aggregate(
		s.DB.Table(tblCDL).
			Joins("JOIN "+tblOrders+" ON "+tblOrders+".id = "+tblCDL+".book_id").
			Where(tblCDL+".pdf_delivery_date IS NOT NULL").
			Where(tblCDL+".order_request_date IS NOT NULL"),
		query.DaysBetween(s.DB, tblCDL+".order_request_date", tblCDL+".pdf_delivery_date"),
		cutoff,
	)
	if err != nil {
		return out, err
	}
	out.AvgCDLScan, out.MinCDLScan, out.MaxCDLScan = int(scan.Avg), int(scan.Min), int(scan.Max)

	// CDL arrival: order creation to physical arrival, CDL orders only.
	cdl, err := s.aggregate(
		s.DB.Table(tblOrders).
			Joins("JOIN "+tblCDL+" ON "+tblCDL+".book_id = "+tblOrders+".id").
			Where(tblOrders+".arrival_date IS NOT NULL"),
		query.DaysBetween(s.DB, tblOrders+".created_date", tblOrders+".arrival_date"),
		cutoff,
	)
	if err != nil {
		return out, err
	}
	out.AvgCDL, out.MinCDL, out.MaxCDL = int(cdl.Avg), int(cdl.Min), int(cdl.Max)

	nyc, err := s.aggregate(s.taggedArrivals(tags.Rush, tags.NY),
		query.DaysBetween(s.DB, tblOrders+".created_date", tblOrders+".arrival_date"), cutoff)
	if err != nil {
		return out, err
	}
	out.AvgRushNYC, out.MinRushNYC, out.MaxRushNYC = int(nyc.Avg), int(nyc.Min), int(nyc.Max)

	local, err := s.aggregate(s.taggedArrivals(tags.Rush, tags.Local),
		query.DaysBetween(s.DB, tblOrders+".created_date", tblOrders+".arrival_date"), cutoff)
	if err != nil {
		return out, err
	}
	out.AvgRushLocal, out.MinRushLocal, out.MaxRushLocal = int(local.Avg), int(local.Min), int(local.Max)

	return out, nil
}

func (s *ReportService) taggedArrivals(required ...string) *gorm.DB {
	q := s.DB.Table(tblOrders).
		Joins("JOIN "+tblExtra+" ON "+tblExtra+".id = "+tblOrders+".id").
		Where(tblOrders + ".arrival_date IS NOT NULL")
	for _, t := range required {
		q = q.Where(tblExtra+".tags LIKE ?", "%"+tags.Token(t)+"%")
	}
	return q
}

func (s *ReportService) aggregate(base *gorm.DB, expr string, cutoff time.Time) (aggRow, error) {
	var row aggRow
	q := base.
		Select("COALESCE(AVG("+expr+"), 0) AS avg_days, COALESCE(MIN("+expr+"), 0) AS min_days, COALESCE(MAX("+expr+"), 0) AS max_days").
		Where(tblOrders+".order_status <> ?", model.OrderStatusCancelled).
		Where(tblOrders + ".created_date IS NOT NULL")
	if !cutoff.IsZero() {
		q = q.Where(tblOrders+".created_date > ?", cutoff)
	}
	err := q.Scan(&row).Error
	return row, err
}
