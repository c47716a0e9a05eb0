package region

import "time"

// termWindow is an approximate Gregorian window for a solar term or
// festival. The true dates need astronomical calculation; these ranges
// are wide enough to cover the year-to-year drift.
type termWindow struct {
	month time.Month
	start int
	end   int
}

// solarTermRanges holds the calendar days that outrank plain weather
// in Chinese food culture: dumplings at 冬至, 贴秋膘 at 立秋, congee
// at 腊八, and so on.
var solarTermRanges = map[string][]termWindow{
	"冬至": {{time.December, 20, 24}},
	"入伏": {{time.July, 11, 25}},
	"立秋": {{time.August, 5, 12}},
	"腊八": {{time.January, 8, 28}},
	"清明": {{time.April, 3, 6}},
	"立夏": {{time.May, 3, 8}},
}

// IsSolarTerm reports whether the date falls inside the named term's
// window. Unknown terms never match.
func IsSolarTerm(date time.Time, term string) bool {
	for _, w := range solarTermRanges[term] {
		if date.Month() == w.month && w.start <= date.Day() && date.Day() <= w.end {
			return true
		}
	}
	return false
}

// ActiveSolarTerms returns every term whose window contains the date.
func ActiveSolarTerms(date time.Time) []string {
	var active []string
	for term := range solarTermRanges {
		if IsSolarTerm(date, term) {
			active = append(active, term)
		}
	}
	return active
}
