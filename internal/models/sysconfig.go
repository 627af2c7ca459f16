package models

import "time"

// SystemConfig is the singleton admin-editable configuration document.
type SystemConfig struct {
	Values     map[string]any `json:"values"`
	ModifiedAt time.Time      `json:"modified_at"`
	ModifiedBy string         `json:"modified_by,omitempty"`
}
