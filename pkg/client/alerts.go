package client

import (
	"context"
	"net/url"
	"strconv"
)

// AlertService handles alert-related API calls
type AlertService struct {
	client *Client
}

// AlertListOptions contains options for listing alerts
type AlertListOptions struct {
	ListOptions
	Severity     string
	Acknowledged *bool
	ActiveOnly   bool
}

type alertList struct {
	Alerts []Alert `json:"alerts"`
	Count  int     `json:"count"`
	Total  int64   `json:"total"`
}

// SnoozeResult reports when a snoozed alert resurfaces
type SnoozeResult struct {
	SnoozedUntil string `json:"snoozed_until"`
}

// List retrieves alerts, newest first
func (s *AlertService) List(ctx context.Context, opts *AlertListOptions) ([]Alert, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}
		if opts.Severity != "" {
			query.Set("severity", opts.Severity)
		}
		if opts.Acknowledged != nil {
			query.Set("acknowledged", strconv.FormatBool(*opts.Acknowledged))
		}
		if opts.ActiveOnly {
			query.Set("active", "true")
		}
	}

	path := "/api/alerts"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result alertList
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Alerts, nil
}

// Get retrieves a single alert by ID
func (s *AlertService) Get(ctx context.Context, id string) (*Alert, error) {
	var a Alert
	if err := s.client.doRequest(ctx, "GET", "/api/alerts/"+id, nil, &a); err != nil {
		return nil, err
	}
	return &a, nil
}

// Acknowledge marks an alert as seen. Acknowledging twice is not an
// error.
func (s *AlertService) Acknowledge(ctx context.Context, id string) error {
	return s.client.doRequest(ctx, "POST", "/api/alerts/"+id+"/acknowledge", nil, nil)
}

// Snooze hides an alert from active listings for the given number of
// hours
func (s *AlertService) Snooze(ctx context.Context, id string, hours float64) (*SnoozeResult, error) {
	body := map[string]float64{"hours": hours}
	var result SnoozeResult
	if err := s.client.doRequest(ctx, "POST", "/api/alerts/"+id+"/snooze", body, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
