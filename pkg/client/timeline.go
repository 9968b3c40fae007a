package client

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// TimelineService handles timeline event API calls
type TimelineService struct {
	client *Client
}

// TimelineListOptions contains options for listing events
type TimelineListOptions struct {
	ListOptions
	Category string
	Action   string
	Since    *time.Time
}

type eventList struct {
	Events []Event `json:"events"`
	Count  int     `json:"count"`
	Total  int64   `json:"total"`
}

// List retrieves timeline events, newest first
func (s *TimelineService) List(ctx context.Context, opts *TimelineListOptions) ([]Event, error) {
	query := url.Values{}
	if opts != nil {
		if opts.Limit > 0 {
			query.Set("limit", strconv.Itoa(opts.Limit))
		}
		if opts.Offset > 0 {
			query.Set("offset", strconv.Itoa(opts.Offset))
		}
		if opts.Category != "" {
			query.Set("category", opts.Category)
		}
		if opts.Action != "" {
			query.Set("action", opts.Action)
		}
		if opts.Since != nil {
			query.Set("since", opts.Since.Format(time.RFC3339))
		}
	}

	path := "/api/timeline"
	if len(query) > 0 {
		path += "?" + query.Encode()
	}

	var result eventList
	if err := s.client.doRequest(ctx, "GET", path, nil, &result); err != nil {
		return nil, err
	}
	return result.Events, nil
}

// Get retrieves a single event by ID
func (s *TimelineService) Get(ctx context.Context, id string) (*Event, error) {
	var ev Event
	if err := s.client.doRequest(ctx, "GET", "/api/timeline/"+id, nil, &ev); err != nil {
		return nil, err
	}
	return &ev, nil
}

// Status retrieves the agent's runtime status
func (c *Client) Status(ctx context.Context) (*Status, error) {
	var st Status
	if err := c.doRequest(ctx, "GET", "/api/status", nil, &st); err != nil {
		return nil, err
	}
	return &st, nil
}

// Health checks whether the agent is reachable and healthy
func (c *Client) Health(ctx context.Context) error {
	return c.doRequest(ctx, "GET", "/healthz", nil, nil)
}
