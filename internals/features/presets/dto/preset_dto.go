// file: internals/features/presets/dto/preset_dto.go
package dto

import (
	"encoding/json"

	orderDTO "libsense_backend/internals/features/orders/dto"
)

type SavePresetRequest struct {
	Name  string                        `json:"name" validate:"required,max=128"`
	Query orderDTO.PageableOrderRequest `json:"query"`
}

type PresetResponse struct {
	ID    int             `json:"id"`
	Name  string          `json:"name"`
	Query json.RawMessage `json:"query"`
}
