// internals/features/orders/service/order_service.go
package service

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"

	"libsense_backend/internals/features/orders/dto"
	"libsense_backend/internals/features/orders/model"
	"libsense_backend/internals/helpers/tags"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrCDLNotFound   = errors.New("order is not under CDL workflow")

	// Business-rule preconditions, rejected synchronously, never ignored.
	ErrBarcodeNotFinalized    = errors.New("barcode is not finalized yet, cannot mark sensitivity")
	ErrCheckAnywayNotEligible = errors.New("check-anyway only applies to Rush+Local or CDL orders")
)

// OrderService covers the single-order mutations: note upsert, review marks,
// CDL lifecycle, sensitivity. Each public method is one transaction.
type OrderService struct {
	DB *gorm.DB
}

func NewOrderService(db *gorm.DB) *OrderService {
	return &OrderService{DB: db}
}

// Detail loads one flattened order row through the general join graph.
func (s *OrderService) Detail(reports *ReportService, id int) (*dto.OrderRow, error) {
	var row dto.OrderRow
	res := reports.generalBase().Where(tblOrders+".id = ?", id).Limit(1).Scan(&row)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return nil, ErrOrderNotFound
	}
	row.DecodeTags()
	return &row, nil
}

// Patch applies one staff edit to an order. Preconditions are checked inside
// the transaction so concurrent tag edits cannot slip an ineligible
// check-anyway through.
func (s *OrderService) Patch(req dto.PatchOrderRequest, username string) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var order model.OrderModel
		if err := tx.First(&order, req.BookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		extra, err := ensureExtraInfo(tx, &order)
		if err != nil {
			return err
		}

		updates := map[string]any{}

		if req.Checked != nil {
			updates["checked"] = *req.Checked
		}
		if req.Attention != nil {
			updates["attention"] = *req.Attention
		}
		if req.OverrideReminderTime != nil {
			t, err := parseDay(*req.OverrideReminderTime)
			if err != nil {
				return err
			}
			updates["override_reminder_time"] = t
		}

		if req.CheckAnyway != nil {
			if *req.CheckAnyway && !checkAnywayEligible(extra) {
				return ErrCheckAnywayNotEligible
			}
			updates["check_anyway"] = *req.CheckAnyway
		}

		if req.Sensitive != nil {
			if !order.BarcodeFinalized() {
				return ErrBarcodeNotFinalized
			}
			cur := decodeOrEmpty(extra.Tags)
			next := toggleTag(cur, tags.Sensitive, *req.Sensitive)
			updates["tags"] = tags.Encode(next)
		}

		if len(updates) > 0 {
			if err := tx.Model(&model.ExtraInfoModel{}).
				Where("id = ?", order.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		if req.TrackingNote != nil {
			if err := upsertNote(tx, order.ID, *req.TrackingNote, username); err != nil {
				return err
			}
		}

		if req.CDL != nil {
			if err := updateCDL(tx, order.ID, req.CDL); err != nil {
				return err
			}
		}
		return nil
	})
}

// MarkCDL pulls an order into the digital-lending workflow: cdl_info row,
// cdl_flag, and the [CDL] tag, atomically.
func (s *OrderService) MarkCDL(bookID int) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		var order model.OrderModel
		if err := tx.First(&order, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrOrderNotFound
			}
			return err
		}
		extra, err := ensureExtraInfo(tx, &order)
		if err != nil {
			return err
		}

		status := model.CDLStatusRequested
		now := time.Now()
		cdl := model.CDLOrderModel{
			BookID:           bookID,
			CDLItemStatus:    &status,
			OrderRequestDate: &now,
		}
		if err := tx.Where("book_id = ?", bookID).
			FirstOrCreate(&cdl).Error; err != nil {
			return err
		}

		next := toggleTag(decodeOrEmpty(extra.Tags), tags.CDL, true)
		return tx.Model(&model.ExtraInfoModel{}).Where("id = ?", bookID).
			Updates(map[string]any{"cdl_flag": true, "tags": tags.Encode(next)}).Error
	})
}

// RemoveCDL revokes CDL status: drops the cdl_info row and clears flag + tag.
func (s *OrderService) RemoveCDL(bookID int) error {
	return s.DB.Transaction(func(tx *gorm.DB) error {
		res := tx.Delete(&model.CDLOrderModel{}, "book_id = ?", bookID)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrCDLNotFound
		}

		var extra model.ExtraInfoModel
		if err := tx.First(&extra, bookID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil // data drift, nothing to clear
			}
			return err
		}
		next := toggleTag(decodeOrEmpty(extra.Tags), tags.CDL, false)
		return tx.Model(&model.ExtraInfoModel{}).Where("id = ?", bookID).
			Updates(map[string]any{"cdl_flag": false, "tags": tags.Encode(next)}).Error
	})
}

// SetChecked flips the checked mark on a batch of orders.
func (s *OrderService) SetChecked(req dto.CheckedRequest) error {
	return s.DB.Model(&model.ExtraInfoModel{}).
		Where("id IN ?", req.ID).
		Update("checked", req.Checked).Error
}

// SetAttention flips the attention mark on a batch of orders.
func (s *OrderService) SetAttention(req dto.AttentionRequest) error {
	return s.DB.Model(&model.ExtraInfoModel{}).
		Where("id IN ?", req.ID).
		Update("attention", req.Attention).Error
}

/* ===============================
   internals
=================================*/

// ensureExtraInfo loads the order's companion row, creating the empty shell
// on first touch; ingestion may have raced ahead of the tag flush.
func ensureExtraInfo(tx *gorm.DB, order *model.OrderModel) (*model.ExtraInfoModel, error) {
	extra := model.ExtraInfoModel{ID: order.ID, OrderNumber: order.OrderNumber}
	if err := tx.Where("id = ?", order.ID).FirstOrCreate(&extra).Error; err != nil {
		return nil, err
	}
	return &extra, nil
}

func checkAnywayEligible(extra *model.ExtraInfoModel) bool {
	if extra.CDLFlag {
		return true
	}
	enc := ""
	if extra.Tags != nil {
		enc = *extra.Tags
	}
	return (tags.Has(enc, tags.Rush) && tags.Has(enc, tags.Local)) || tags.Has(enc, tags.CDL)
}

func upsertNote(tx *gorm.DB, bookID int, text, username string) error {
	var note model.TrackingNoteModel
	err := tx.Where("book_id = ?", bookID).First(&note).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		if text == "" {
			return nil
		}
		return tx.Create(&model.TrackingNoteModel{
			BookID:       bookID,
			TrackingNote: text,
			TakenBy:      username,
			Date:         time.Now(),
		}).Error
	case err != nil:
		return err
	}
	if text == "" {
		return tx.Delete(&note).Error
	}
	return tx.Model(&note).Updates(map[string]any{
		"tracking_note": text,
		"taken_by":      username,
		"date":          time.Now(),
	}).Error
}

func updateCDL(tx *gorm.DB, bookID int, req *dto.CDLRequest) error {
	var cdl model.CDLOrderModel
	if err := tx.First(&cdl, "book_id = ?", bookID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCDLNotFound
		}
		return err
	}

	updates := map[string]any{}
	setStr := func(col string, v *string) {
		if v != nil {
			updates[col] = *v
		}
	}
	setDay := func(col string, v *string) error {
		if v == nil {
			return nil
		}
		t, err := parseDay(*v)
		if err != nil {
			return err
		}
		updates[col] = t
		return nil
	}

	setStr("cdl_item_status", req.CDLItemStatus)
	setStr("physical_copy_status", req.PhysicalCopyStatus)
	setStr("back_to_karms_date", req.BackToKARMSDate)
	setStr("bobcat_permanent_link", req.BobcatPermanentLink)
	setStr("circ_pdf_url", req.CircPDFURL)
	setStr("vendor_file_url", req.VendorFileURL)
	setStr("file_password", req.FilePassword)
	setStr("author", req.Author)
	setStr("pages", req.Pages)

	for col, v := range map[string]*string{
		"order_request_date":           req.OrderRequestDate,
		"order_purchased_date":         req.OrderPurchasedDate,
		"due_date":                     req.DueDate,
		"scanning_vendor_payment_date": req.ScanningVendorPaymentDate,
		"pdf_delivery_date":            req.PDFDeliveryDate,
	} {
		if err := setDay(col, v); err != nil {
			return err
		}
	}

	if len(updates) == 0 {
		return nil
	}
	return tx.Model(&cdl).Updates(updates).Error
}

func decodeOrEmpty(raw *string) []string {
	if raw == nil || *raw == "" {
		return []string{}
	}
	list, err := tags.Decode(*raw)
	if err != nil {
		return []string{}
	}
	return list
}

func toggleTag(list []string, tag string, on bool) []string {
	out := make([]string, 0, len(list)+1)
	for _, t := range list {
		if t != tag {
			out = append(out, t)
		}
	}
	if on {
		out = append(out, tag)
	}
	return out
}

func parseDay(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("bad date %q, want yyyy-mm-dd", s)
	}
	return t, nil
}
