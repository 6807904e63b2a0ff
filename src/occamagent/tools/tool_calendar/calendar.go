// Package tool_calendar exposes the user's Google Calendar to the model:
// listing upcoming events and creating or updating events through the
// Calendar v3 REST API with service-account credentials.
package tool_calendar

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"golang.org/x/oauth2/google"

	"github.com/alexboden/occam-claw/src/toolbox"
)

// Tool names.
const (
	ListName   = "list_calendar_events"
	CreateName = "create_calendar_event"
	UpdateName = "update_calendar_event"
)

const (
	defaultBaseURL  = "https://www.googleapis.com/calendar/v3"
	calendarScope   = "https://www.googleapis.com/auth/calendar"
	defaultTimezone = "America/Toronto"
	defaultDays     = 7
)

// Service talks to a Google Calendar v3 compatible endpoint.
type Service struct {
	HTTPClient *http.Client
	BaseURL    string
	CalendarID string
}

// NewService builds a Service from a service-account credentials file.
func NewService(ctx context.Context, credentialsPath, calendarID string) (*Service, error) {
	data, err := os.ReadFile(credentialsPath)
	if err != nil {
		return nil, fmt.Errorf("reading credentials: %w", err)
	}
	conf, err := google.JWTConfigFromJSON(data, calendarScope)
	if err != nil {
		return nil, fmt.Errorf("parsing service account credentials: %w", err)
	}
	if calendarID == "" {
		calendarID = "primary"
	}
	return &Service{
		HTTPClient: conf.Client(ctx),
		BaseURL:    defaultBaseURL,
		CalendarID: calendarID,
	}, nil
}

// Tools returns the three calendar tools backed by this service.
func (s *Service) Tools() ([]toolbox.Tool, error) {
	listTool, err := toolbox.NewTool(ListName,
		"List upcoming calendar events for the next N days.", s.list)
	if err != nil {
		return nil, err
	}
	createTool, err := toolbox.NewTool(CreateName,
		"Create a new calendar event.", s.create)
	if err != nil {
		return nil, err
	}
	updateTool, err := toolbox.NewTool(UpdateName,
		"Update an existing calendar event. Use list_calendar_events first to get the event ID.", s.update)
	if err != nil {
		return nil, err
	}
	return []toolbox.Tool{listTool, createTool, updateTool}, nil
}

// event is the wire shape of a Calendar v3 event, reduced to the fields the
// assistant uses.
type event struct {
	ID          string     `json:"id,omitempty"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Location    string     `json:"location,omitempty"`
	Start       *eventTime `json:"start,omitempty"`
	End         *eventTime `json:"end,omitempty"`
	HTMLLink    string     `json:"htmlLink,omitempty"`
}

type eventTime struct {
	DateTime string `json:"dateTime,omitempty"`
	Date     string `json:"date,omitempty"`
	TimeZone string `json:"timeZone,omitempty"`
}

func (t *eventTime) display() string {
	if t == nil {
		return ""
	}
	if t.DateTime != "" {
		return t.DateTime
	}
	return t.Date
}

// ListInput selects the lookahead window.
type ListInput struct {
	Days int `json:"days,omitempty" description:"Number of days ahead to look. Default 7."`
}

// EventSummary is one listed event.
type EventSummary struct {
	ID          string `json:"id"`
	Summary     string `json:"summary"`
	Start       string `json:"start"`
	End         string `json:"end"`
	Location    string `json:"location"`
	Description string `json:"description"`
}

// ListOutput is the listing result.
type ListOutput struct {
	Events []EventSummary `json:"events"`
}

func (s *Service) list(ctx context.Context, input ListInput) (ListOutput, error) {
	days := input.Days
	if days <= 0 {
		days = defaultDays
	}
	now := time.Now().UTC()

	query := url.Values{}
	query.Set("timeMin", now.Format(time.RFC3339))
	query.Set("timeMax", now.AddDate(0, 0, days).Format(time.RFC3339))
	query.Set("singleEvents", "true")
	query.Set("orderBy", "startTime")

	var result struct {
		Items []event `json:"items"`
	}
	if err := s.do(ctx, http.MethodGet, s.eventsURL("")+"?"+query.Encode(), nil, &result); err != nil {
		return ListOutput{}, err
	}

	events := make([]EventSummary, 0, len(result.Items))
	for _, e := range result.Items {
		summary := e.Summary
		if summary == "" {
			summary = "(no title)"
		}
		events = append(events, EventSummary{
			ID:          e.ID,
			Summary:     summary,
			Start:       e.Start.display(),
			End:         e.End.display(),
			Location:    e.Location,
			Description: e.Description,
		})
	}
	return ListOutput{Events: events}, nil
}

// CreateInput describes a new event.
type CreateInput struct {
	Summary     string `json:"summary" required:"true" description:"Event title."`
	Start       string `json:"start" required:"true" description:"ISO 8601 datetime with offset, e.g. 2026-02-15T14:00:00-05:00"`
	End         string `json:"end" required:"true" description:"ISO 8601 datetime with offset, e.g. 2026-02-15T15:00:00-05:00"`
	Description string `json:"description,omitempty" description:"Event description."`
	Timezone    string `json:"timezone,omitempty" description:"IANA timezone. Default America/Toronto."`
}

// MutationOutput reports a created or updated event. Old carries the prior
// field values on updates so the caller can show what changed.
type MutationOutput struct {
	ID      string     `json:"id"`
	Summary string     `json:"summary"`
	Link    string     `json:"link"`
	Old     *OldValues `json:"old,omitempty"`
}

// OldValues are the pre-update field values.
type OldValues struct {
	Summary     string `json:"summary,omitempty"`
	Start       string `json:"start,omitempty"`
	End         string `json:"end,omitempty"`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (s *Service) create(ctx context.Context, input CreateInput) (MutationOutput, error) {
	tz := input.Timezone
	if tz == "" {
		tz = defaultTimezone
	}
	body := event{
		Summary:     input.Summary,
		Description: input.Description,
		Start:       &eventTime{DateTime: input.Start, TimeZone: tz},
		End:         &eventTime{DateTime: input.End, TimeZone: tz},
	}

	var created event
	if err := s.do(ctx, http.MethodPost, s.eventsURL(""), &body, &created); err != nil {
		return MutationOutput{}, err
	}
	return MutationOutput{ID: created.ID, Summary: created.Summary, Link: created.HTMLLink}, nil
}

// UpdateInput patches an existing event; empty fields are left unchanged.
type UpdateInput struct {
	EventID     string `json:"event_id" required:"true" description:"The event ID from list_calendar_events."`
	Summary     string `json:"summary,omitempty"`
	Start       string `json:"start,omitempty" description:"ISO 8601 datetime with offset."`
	End         string `json:"end,omitempty" description:"ISO 8601 datetime with offset."`
	Description string `json:"description,omitempty"`
	Location    string `json:"location,omitempty"`
}

func (s *Service) update(ctx context.Context, input UpdateInput) (MutationOutput, error) {
	if input.EventID == "" {
		return MutationOutput{}, fmt.Errorf("event_id is required")
	}

	var existing event
	if err := s.do(ctx, http.MethodGet, s.eventsURL(input.EventID), nil, &existing); err != nil {
		return MutationOutput{}, err
	}

	old := &OldValues{
		Summary:     existing.Summary,
		Start:       existing.Start.display(),
		End:         existing.End.display(),
		Description: existing.Description,
		Location:    existing.Location,
	}

	if input.Summary != "" {
		existing.Summary = input.Summary
	}
	if input.Description != "" {
		existing.Description = input.Description
	}
	if input.Location != "" {
		existing.Location = input.Location
	}
	if input.Start != "" {
		if existing.Start == nil {
			existing.Start = &eventTime{}
		}
		existing.Start.DateTime = input.Start
		existing.Start.Date = ""
	}
	if input.End != "" {
		if existing.End == nil {
			existing.End = &eventTime{}
		}
		existing.End.DateTime = input.End
		existing.End.Date = ""
	}

	var updated event
	if err := s.do(ctx, http.MethodPut, s.eventsURL(input.EventID), &existing, &updated); err != nil {
		return MutationOutput{}, err
	}
	return MutationOutput{ID: updated.ID, Summary: updated.Summary, Link: updated.HTMLLink, Old: old}, nil
}

func (s *Service) eventsURL(eventID string) string {
	base := strings.TrimRight(s.BaseURL, "/") + "/calendars/" + url.PathEscape(s.CalendarID) + "/events"
	if eventID != "" {
		base += "/" + url.PathEscape(eventID)
	}
	return base
}

func (s *Service) do(ctx context.Context, method, endpoint string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := s.HTTPClient.Do(req)
	if err != nil {
		return fmt.Errorf("calendar request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		detail, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("calendar request failed: %s %s", strconv.Itoa(resp.StatusCode), strings.TrimSpace(string(detail)))
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
