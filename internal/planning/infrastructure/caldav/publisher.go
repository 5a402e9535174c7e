// Package caldav publishes the planned schedule to a CalDAV calendar
// (Nextcloud, Fastmail, Apple Calendar, etc.).
package caldav

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/emersion/go-ical"
	"github.com/emersion/go-webdav"
	"github.com/emersion/go-webdav/caldav"

	"github.com/taktline/taktline/internal/planning/application"
	"github.com/taktline/taktline/pkg/observability"
)

// PropXTaktline marks events owned by this system. Only marked events are
// ever deleted on cleanup.
const PropXTaktline = "X-TAKTLINE"

// Publisher implements application.SchedulePublisher over CalDAV with basic
// auth.
type Publisher struct {
	baseURL       string
	username      string
	password      string
	calendarPath  string // Specific calendar path, or empty to use the first one found
	logger        *slog.Logger
	deleteMissing bool
}

// NewPublisher creates a CalDAV schedule publisher.
func NewPublisher(baseURL, username, password string, logger *slog.Logger) *Publisher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Publisher{
		baseURL:       baseURL,
		username:      username,
		password:      password,
		logger:        logger,
		deleteMissing: false,
	}
}

// WithDeleteMissing enables deletion of events absent from the published set.
func (p *Publisher) WithDeleteMissing(enabled bool) *Publisher {
	p.deleteMissing = enabled
	return p
}

// WithCalendarPath sets the specific calendar path to use.
func (p *Publisher) WithCalendarPath(path string) *Publisher {
	p.calendarPath = path
	return p
}

// Publish upserts one calendar event per schedule entry. Event UIDs are
// derived from the job and procedure sequence, so a regeneration that moves
// an entry updates its event in place instead of churning the calendar.
func (p *Publisher) Publish(ctx context.Context, entries []application.CalendarEntry) (*application.PublishResult, error) {
	client, err := p.getClient()
	if err != nil {
		return nil, err
	}

	calPath, err := p.findCalendarPath(ctx, client)
	if err != nil {
		return nil, fmt.Errorf("failed to find calendar: %w", err)
	}
	defer observability.LogDuration(p.logger, "caldav publish", time.Now())

	result := &application.PublishResult{}
	keepPaths := make(map[string]struct{}, len(entries))

	for _, entry := range entries {
		eventPath := fmt.Sprintf("%s%s.ics", calPath, eventUID(entry))
		keepPaths[eventPath] = struct{}{}

		cal := toICalendar(entry)
		updated, err := p.upsertEvent(ctx, client, eventPath, cal)
		if err != nil {
			p.logger.Warn("caldav publish failed", "event_path", eventPath, "error", err)
			result.Failed++
			continue
		}
		if updated {
			result.Updated++
		} else {
			result.Created++
		}
	}

	if p.deleteMissing {
		deleted, err := p.deleteMissingEvents(ctx, client, calPath, keepPaths)
		if err != nil {
			p.logger.Warn("caldav delete missing failed", "error", err)
		} else {
			result.Deleted = deleted
		}
	}

	return result, nil
}

// Helper methods

func (p *Publisher) getClient() (*caldav.Client, error) {
	httpClient := &http.Client{
		Timeout: 30 * time.Second,
		Transport: &basicAuthTransport{
			username: p.username,
			password: p.password,
			base:     http.DefaultTransport,
		},
	}

	client, err := caldav.NewClient(webdav.HTTPClientWithBasicAuth(httpClient, p.username, p.password), p.baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create caldav client: %w", err)
	}
	return client, nil
}

func (p *Publisher) findCalendarPath(ctx context.Context, client *caldav.Client) (string, error) {
	if p.calendarPath != "" {
		return p.calendarPath, nil
	}

	principal, err := client.FindCurrentUserPrincipal(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to find principal: %w", err)
	}

	homeSet, err := client.FindCalendarHomeSet(ctx, principal)
	if err != nil {
		return "", fmt.Errorf("failed to find calendar home set: %w", err)
	}

	cals, err := client.FindCalendars(ctx, homeSet)
	if err != nil {
		return "", fmt.Errorf("failed to find calendars: %w", err)
	}

	if len(cals) == 0 {
		return "", fmt.Errorf("no calendars found")
	}

	return cals[0].Path, nil
}

func (p *Publisher) upsertEvent(ctx context.Context, client *caldav.Client, eventPath string, cal *ical.Calendar) (bool, error) {
	// Check if event exists first
	_, err := client.GetCalendarObject(ctx, eventPath)
	exists := err == nil

	// Put the event (creates or updates)
	_, err = client.PutCalendarObject(ctx, eventPath, cal)
	if err != nil {
		return false, err
	}

	return exists, nil
}

func (p *Publisher) deleteMissingEvents(ctx context.Context, client *caldav.Client, calPath string, keepPaths map[string]struct{}) (int, error) {
	query := &caldav.CalendarQuery{
		CompRequest: caldav.CalendarCompRequest{
			Name: "VCALENDAR",
			Comps: []caldav.CalendarCompRequest{
				{
					Name:  "VEVENT",
					Props: []string{"UID", PropXTaktline},
				},
			},
		},
		CompFilter: caldav.CompFilter{
			Name: "VCALENDAR",
			Comps: []caldav.CompFilter{
				{Name: "VEVENT"},
			},
		},
	}

	objects, err := client.QueryCalendar(ctx, calPath, query)
	if err != nil {
		return 0, err
	}

	deleted := 0
	for _, obj := range objects {
		// Never touch events we did not create
		if !isTaktlineEvent(&obj) {
			continue
		}

		if _, ok := keepPaths[obj.Path]; ok {
			continue
		}

		if err := client.RemoveAll(ctx, obj.Path); err != nil {
			p.logger.Warn("failed to delete caldav event", "path", obj.Path, "error", err)
			continue
		}
		deleted++
	}

	return deleted, nil
}

// eventUID derives a stable identifier for an entry. Entry row IDs change on
// every regeneration; the job and procedure sequence do not.
func eventUID(entry application.CalendarEntry) string {
	return fmt.Sprintf("taktline-job%d-seq%d", entry.JobID, entry.Sequence)
}

// isTaktlineEvent checks if a calendar object has the X-TAKTLINE property set.
func isTaktlineEvent(obj *caldav.CalendarObject) bool {
	if obj == nil || obj.Data == nil {
		return false
	}

	for _, child := range obj.Data.Children {
		if child.Name == ical.CompEvent {
			if props := child.Props[PropXTaktline]; len(props) > 0 {
				if props[0].Value == "1" {
					return true
				}
			}
		}
	}

	return false
}

// toICalendar converts a schedule entry to an ical.Calendar.
func toICalendar(entry application.CalendarEntry) *ical.Calendar {
	cal := ical.NewCalendar()
	cal.Props.SetText(ical.PropVersion, "2.0")
	cal.Props.SetText(ical.PropProductID, "-//Taktline//Schedule Publisher//EN")

	event := ical.NewEvent()
	event.Props.SetText(ical.PropUID, eventUID(entry))
	event.Props.SetDateTime(ical.PropDateTimeStamp, time.Now().UTC())
	event.Props.SetDateTime(ical.PropDateTimeStart, entry.Start.UTC())
	event.Props.SetDateTime(ical.PropDateTimeEnd, entry.End.UTC())
	event.Props.SetText(ical.PropSummary, fmt.Sprintf("%s: %s", entry.JobName, entry.ProcedureName))

	description := fmt.Sprintf("Job: %s\nProcedure %d: %s\nManpower: %d", entry.JobName, entry.Sequence, entry.ProcedureName, entry.Manpower)
	description += "\n\nManaged by Taktline"
	event.Props.SetText(ical.PropDescription, description)

	// Custom property to identify events this system created
	taktlineProp := ical.NewProp(PropXTaktline)
	taktlineProp.Value = "1"
	event.Props[PropXTaktline] = []ical.Prop{*taktlineProp}

	cal.Children = append(cal.Children, event.Component)

	return cal
}

// calendarToString serializes an ical.Calendar to a string (for debugging).
func calendarToString(cal *ical.Calendar) string {
	var buf bytes.Buffer
	enc := ical.NewEncoder(&buf)
	if err := enc.Encode(cal); err != nil {
		return ""
	}
	return buf.String()
}

type basicAuthTransport struct {
	username string
	password string
	base     http.RoundTripper
}

func (t *basicAuthTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req.SetBasicAuth(t.username, t.password)
	return t.base.RoundTrip(req)
}
