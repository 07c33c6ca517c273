package calendar

import (
	"strings"
	"testing"
	"time"

	"github.com/delat04/agda/pkg/event"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestICSRendererRenderEvents(t *testing.T) {
	renderer := NewICSRenderer("Agda")

	t.Run("serializes a timed event with its fields", func(t *testing.T) {
		e := timedEvent("conf-1", time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC), 2*time.Hour)
		e.Title = "Tech Conference"
		e.Description = "Annual meetup"
		e.Location = "Main Hall"
		e.Organizer = "Jane Doe"
		e.ContactEmail = "jane@example.com"

		out, err := renderer.RenderEvents([]event.Event{e})

		require.NoError(t, err)
		assert.Contains(t, out, "BEGIN:VCALENDAR")
		assert.Contains(t, out, "END:VCALENDAR")
		assert.Contains(t, out, "UID:conf-1@agda")
		assert.Contains(t, out, "SUMMARY:Tech Conference")
		assert.Contains(t, out, "DESCRIPTION:Annual meetup")
		assert.Contains(t, out, "LOCATION:Main Hall")
		assert.Contains(t, out, "mailto:jane@example.com")
	})

	t.Run("all-day events use date-only values", func(t *testing.T) {
		e := timedEvent("holiday", day(2025, time.April, 18), 0)
		e.AllDay = true

		out, err := renderer.RenderEvents([]event.Event{e})

		require.NoError(t, err)
		assert.Contains(t, out, "VALUE=DATE")
	})

	t.Run("invalid events are skipped, not fatal", func(t *testing.T) {
		valid := timedEvent("ok", time.Date(2025, time.April, 17, 10, 0, 0, 0, time.UTC), time.Hour)

		out, err := renderer.RenderEvents([]event.Event{{ID: "broken"}, valid})

		require.NoError(t, err)
		assert.Contains(t, out, "ok@agda")
		assert.NotContains(t, out, "broken@agda")
	})

	t.Run("empty list still yields a valid document", func(t *testing.T) {
		out, err := renderer.RenderEvents(nil)

		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "BEGIN:VCALENDAR"))
		assert.NotContains(t, out, "BEGIN:VEVENT")
	})
}
