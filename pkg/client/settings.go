package client

import "context"

// SettingsService handles agent configuration API calls
type SettingsService struct {
	client *Client
}

type foldersPayload struct {
	Folders []MonitoredFolder `json:"folders"`
}

type windowsPayload struct {
	Windows []AwayWindow `json:"windows"`
}

// GetFolders retrieves the monitored folder set
func (s *SettingsService) GetFolders(ctx context.Context) ([]MonitoredFolder, error) {
	var result foldersPayload
	if err := s.client.doRequest(ctx, "GET", "/api/config/folders", nil, &result); err != nil {
		return nil, err
	}
	return result.Folders, nil
}

// SetFolders replaces the monitored folder set wholesale
func (s *SettingsService) SetFolders(ctx context.Context, folders []MonitoredFolder) ([]MonitoredFolder, error) {
	var result foldersPayload
	err := s.client.doRequest(ctx, "PUT", "/api/config/folders", foldersPayload{Folders: folders}, &result)
	if err != nil {
		return nil, err
	}
	return result.Folders, nil
}

// GetAwayWindows retrieves the away window set
func (s *SettingsService) GetAwayWindows(ctx context.Context) ([]AwayWindow, error) {
	var result windowsPayload
	if err := s.client.doRequest(ctx, "GET", "/api/config/away-windows", nil, &result); err != nil {
		return nil, err
	}
	return result.Windows, nil
}

// SetAwayWindows replaces the away window set wholesale
func (s *SettingsService) SetAwayWindows(ctx context.Context, windows []AwayWindow) ([]AwayWindow, error) {
	var result windowsPayload
	err := s.client.doRequest(ctx, "PUT", "/api/config/away-windows", windowsPayload{Windows: windows}, &result)
	if err != nil {
		return nil, err
	}
	return result.Windows, nil
}

// GetAlertConfig retrieves the alert routing configuration
func (s *SettingsService) GetAlertConfig(ctx context.Context) (*AlertConfig, error) {
	var result AlertConfig
	if err := s.client.doRequest(ctx, "GET", "/api/config/alerts", nil, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SetAlertConfig replaces the alert routing configuration
func (s *SettingsService) SetAlertConfig(ctx context.Context, cfg AlertConfig) (*AlertConfig, error) {
	var result AlertConfig
	if err := s.client.doRequest(ctx, "PUT", "/api/config/alerts", cfg, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
