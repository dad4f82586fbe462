package market

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ═══════════════════════════════════════════════════════════════════════════════
// WINDOW LABELS
// ═══════════════════════════════════════════════════════════════════════════════
//
// Both venues embed the quarter-hour window in their market titles, in
// slightly different spellings ("9:15AM-9:30AM" vs "9:15-9:30AM"). All
// label matching funnels through ParseWindowLabel so a venue changing its
// title format breaks exactly one function.
//
// ═══════════════════════════════════════════════════════════════════════════════

const WindowMinutes = 15

// Window labels are quoted in US Eastern regardless of where the bot runs
var easternTZ = mustLoadEastern()

func mustLoadEastern() *time.Location {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		panic("tzdata missing America/New_York: " + err.Error())
	}
	return loc
}

// labelPattern matches "H:MM(AM|PM)?-H:MM(AM|PM)" with optional spaces
var labelPattern = regexp.MustCompile(`(?i)(\d{1,2}):(\d{2})\s*(AM|PM)?\s*-\s*(\d{1,2}):(\d{2})\s*(AM|PM)`)

// Label is a parsed time-window label
type Label struct {
	StartHour, StartMinute int
	EndHour, EndMinute     int
	StartMeridiem          string // "AM" or "PM"
	EndMeridiem            string
}

// String renders the canonical form, e.g. "9:15AM-9:30AM"
func (l Label) String() string {
	return fmt.Sprintf("%d:%02d%s-%d:%02d%s",
		l.StartHour, l.StartMinute, l.StartMeridiem,
		l.EndHour, l.EndMinute, l.EndMeridiem)
}

// ParseWindowLabel extracts the window label from a venue market title.
// A missing meridiem on the start time inherits the end time's meridiem.
// Returns false when the title carries no recognizable label.
func ParseWindowLabel(title string) (Label, bool) {
	m := labelPattern.FindStringSubmatch(title)
	if m == nil {
		return Label{}, false
	}

	startHour, _ := strconv.Atoi(m[1])
	startMin, _ := strconv.Atoi(m[2])
	endHour, _ := strconv.Atoi(m[4])
	endMin, _ := strconv.Atoi(m[5])

	endMeridiem := strings.ToUpper(m[6])
	startMeridiem := strings.ToUpper(m[3])
	if startMeridiem == "" {
		startMeridiem = endMeridiem
	}

	return Label{
		StartHour:     startHour,
		StartMinute:   startMin,
		EndHour:       endHour,
		EndMinute:     endMin,
		StartMeridiem: startMeridiem,
		EndMeridiem:   endMeridiem,
	}, true
}

// ExpectedLabel computes the canonical label of the quarter-hour bucket
// containing now, in US Eastern. Both venues' titles for the active
// window must embed this label.
func ExpectedLabel(now time.Time) Label {
	et := now.In(easternTZ)
	start := et.Truncate(time.Duration(WindowMinutes) * time.Minute)
	end := start.Add(time.Duration(WindowMinutes) * time.Minute)

	label, _ := ParseWindowLabel(start.Format("3:04PM") + "-" + end.Format("3:04PM"))
	return label
}

// NextBoundary returns when the current quarter-hour window ends
func NextBoundary(now time.Time) time.Time {
	et := now.In(easternTZ)
	return et.Truncate(time.Duration(WindowMinutes) * time.Minute).
		Add(time.Duration(WindowMinutes) * time.Minute)
}
