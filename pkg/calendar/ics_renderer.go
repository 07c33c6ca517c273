package calendar

import (
	"fmt"

	ical "github.com/arran4/golang-ical"

	"github.com/delat04/agda/pkg/event"
)

// ICSRenderer serializes a set of events into an iCalendar document.
type ICSRenderer interface {
	RenderEvents(events []event.Event) (string, error)
}

type ICSRendererImpl struct {
	calendarName string
}

func NewICSRenderer(calendarName string) *ICSRendererImpl {
	return &ICSRendererImpl{calendarName: calendarName}
}

func (r *ICSRendererImpl) RenderEvents(events []event.Event) (string, error) {
	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	cal.SetProductId("-//agda//calendar//EN")
	cal.SetXWRCalName(r.calendarName)

	for _, e := range events {
		if !e.HasValidSpan() {
			// same policy as bucketing: one bad event never fails the export
			continue
		}

		ve := cal.AddEvent(fmt.Sprintf("%s@agda", e.ID))
		ve.SetSummary(e.Title)
		if e.Description != "" {
			ve.SetDescription(e.Description)
		}
		if e.Location != "" {
			ve.SetLocation(e.Location)
		}
		if e.Organizer != "" && e.ContactEmail != "" {
			ve.SetOrganizer("mailto:"+e.ContactEmail, ical.WithCN(e.Organizer))
		}

		if e.AllDay {
			ve.SetAllDayStartAt(e.Start)
			ve.SetAllDayEndAt(e.End.AddDate(0, 0, 1))
		} else {
			ve.SetStartAt(e.Start)
			ve.SetEndAt(e.End)
		}

		if !e.CreatedAt.IsZero() {
			ve.SetCreatedTime(e.CreatedAt)
		}
		if !e.UpdatedAt.IsZero() {
			ve.SetModifiedAt(e.UpdatedAt)
			ve.SetDtStampTime(e.UpdatedAt)
		}
	}

	return cal.Serialize(), nil
}
