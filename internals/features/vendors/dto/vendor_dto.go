// file: internals/features/vendors/dto/vendor_dto.go
package dto

type VendorRequest struct {
	VendorCode string `json:"vendorCode" validate:"required,max=32"`
	NotifyIn   *int   `json:"notifyIn" validate:"omitempty,min=1"`
	Local      bool   `json:"local"`
}

type VendorResponse struct {
	VendorCode string `json:"vendorCode"`
	NotifyIn   *int   `json:"notifyIn,omitempty"`
	Local      bool   `json:"local"`
}
