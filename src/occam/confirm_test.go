package occam

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatCalendarActionCreate(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	args := json.RawMessage(`{"summary":"Dentist","start":"2026-02-18T15:00:00-05:00","end":"2026-02-18T16:00:00-05:00","location":"123 Main St"}`)
	result := `{"id":"evt-1","link":"https://cal.example/evt-1"}`

	out := formatCalendarAction("create_calendar_event", args, result, loc)
	assert.Contains(t, out, "**Event Created**")
	assert.Contains(t, out, "*Title:* Dentist")
	assert.Contains(t, out, "*Start:* Feb 18, 3:00 PM EST")
	assert.Contains(t, out, "*End:* Feb 18, 4:00 PM EST")
	assert.Contains(t, out, "*Location:* 123 Main St")
	assert.Contains(t, out, "*Link:* https://cal.example/evt-1")
}

func TestFormatCalendarActionUpdateShowsDiff(t *testing.T) {
	loc, err := time.LoadLocation("America/Toronto")
	require.NoError(t, err)

	args := json.RawMessage(`{"start":"2026-02-18T16:00:00-05:00"}`)
	result := `{"id":"evt-1","link":"https://cal.example/evt-1","old":{"summary":"Dentist","start":"2026-02-18T15:00:00-05:00"}}`

	out := formatCalendarAction("update_calendar_event", args, result, loc)
	assert.Contains(t, out, "**Event Updated**")
	assert.Contains(t, out, "*Title:* Dentist")
	assert.Contains(t, out, "*Start:* Feb 18, 3:00 PM EST → Feb 18, 4:00 PM EST")
	assert.NotContains(t, out, "*End:*")
}

func TestFormatCalendarActionIgnoresNonMutations(t *testing.T) {
	assert.Empty(t, formatCalendarAction("list_calendar_events", nil, `{"id":"evt-1"}`, time.UTC))
	assert.Empty(t, formatCalendarAction("web_search", nil, `{"id":"x"}`, time.UTC))
}

func TestFormatCalendarActionIgnoresMalformedResults(t *testing.T) {
	assert.Empty(t, formatCalendarAction("create_calendar_event", nil, `not json`, time.UTC))
	assert.Empty(t, formatCalendarAction("create_calendar_event", nil, `{"link":"x"}`, time.UTC))
}

func TestFmtTimeFallsBackToRawString(t *testing.T) {
	assert.Equal(t, "tomorrow at 3", fmtTime("tomorrow at 3", time.UTC))
}
