// internals/features/orders/service/dispatch.go
package service

import "libsense_backend/internals/features/orders/dto"

// Query routes the generic order query to a report shape by its views flags.
// The precedence is the historical contract and must stay exactly this:
// cdlView+pendingCdl, then cdlView, then pendingRushLocal, then the general
// listing.
func (s *ReportService) Query(req dto.PageableOrderRequest) (any, int64, error) {
	spec := req.Spec()
	v := req.Views
	switch {
	case v.CDLView && v.PendingCDL:
		rows, total, err := s.OverdueCDL(spec)
		return rows, total, err
	case v.CDLView:
		rows, total, err := s.CDLOrders(spec)
		return rows, total, err
	case v.PendingRushLocal:
		rows, total, err := s.OverdueRushLocal(spec)
		return rows, total, err
	default:
		rows, total, err := s.GeneralOrders(spec)
		return rows, total, err
	}
}
