package dto

import "github.com/pratik-mahalle/vigil/internal/domain/settings"

// FoldersPayload is the body of PUT /config/folders and the response of
// GET /config/folders
type FoldersPayload struct {
	Folders []settings.MonitoredFolder `json:"folders" validate:"dive"`
}

// AwayWindowsPayload is the body of PUT /config/away-windows and the
// response of GET /config/away-windows
type AwayWindowsPayload struct {
	Windows []settings.AwayWindow `json:"windows" validate:"dive"`
}
