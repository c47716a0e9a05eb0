package rules

import (
	"strconv"
	"strings"
)

// Open-ended temperature bounds. Prefix forms like ">30" become a
// range against the opposite sentinel.
const (
	TempFloor   = -999
	TempCeiling = 999
)

// TempRange is an inclusive temperature interval in degrees Celsius.
type TempRange struct {
	Lo float64
	Hi float64
}

// Contains reports whether t falls inside the inclusive range.
func (r TempRange) Contains(t float64) bool {
	return r.Lo <= t && t <= r.Hi
}

// ParseTempRange parses the temperature condition grammar:
//
//	"0,15"  -> [0, 15]
//	">30"   -> (30, 999]   ">=30" -> [30, 999]
//	"<10"   -> [-999, 10)  "<=10" -> [-999, 10]
//
// The reference semantics treat > and >= identically (inclusive both
// ends), so this does too. Returns ok=false for anything malformed.
func ParseTempRange(value string) (TempRange, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if s == "" {
		return TempRange{}, false
	}
	if strings.Contains(s, ",") {
		parts := strings.Split(s, ",")
		if len(parts) != 2 {
			return TempRange{}, false
		}
		lo, err1 := strconv.ParseFloat(parts[0], 64)
		hi, err2 := strconv.ParseFloat(parts[1], 64)
		if err1 != nil || err2 != nil {
			return TempRange{}, false
		}
		return TempRange{Lo: lo, Hi: hi}, true
	}
	for _, p := range []struct {
		prefix string
		upper  bool
	}{
		{">=", false},
		{"<=", true},
		{">", false},
		{"<", true},
	} {
		if !strings.HasPrefix(s, p.prefix) {
			continue
		}
		t, err := strconv.ParseFloat(s[len(p.prefix):], 64)
		if err != nil {
			return TempRange{}, false
		}
		if p.upper {
			return TempRange{Lo: TempFloor, Hi: t}, true
		}
		return TempRange{Lo: t, Hi: TempCeiling}, true
	}
	return TempRange{}, false
}

// HourRange is an inclusive hour-of-day interval.
type HourRange struct {
	Start int
	End   int
}

// Contains reports whether h falls inside the inclusive range.
func (r HourRange) Contains(h int) bool {
	return r.Start <= h && h <= r.End
}

// ParseHourRange parses "startHour,endHour", e.g. "8,11" for a
// breakfast window or "14,18" for the afternoon.
func ParseHourRange(value string) (HourRange, bool) {
	s := strings.ReplaceAll(strings.TrimSpace(value), " ", "")
	if s == "" || !strings.Contains(s, ",") {
		return HourRange{}, false
	}
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return HourRange{}, false
	}
	start, err1 := strconv.Atoi(parts[0])
	end, err2 := strconv.Atoi(parts[1])
	if err1 != nil || err2 != nil {
		return HourRange{}, false
	}
	return HourRange{Start: start, End: end}, true
}

// dayAlias maps three-letter English day names to weekday indices,
// 0=Monday through 6=Sunday.
var dayAlias = map[string]int{
	"mon": 0, "tue": 1, "wed": 2, "thu": 3, "fri": 4, "sat": 5, "sun": 6,
}

// ParseWeekdaySet parses a comma list of weekday indices or aliases:
// "6" is Sunday, "4,5,6" and "fri,sat,sun" are the weekend run-up.
// Unrecognized entries are dropped; an empty result is malformed.
func ParseWeekdaySet(value string) (map[int]bool, bool) {
	s := strings.ToLower(strings.TrimSpace(value))
	if s == "" {
		return nil, false
	}
	days := make(map[int]bool)
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if d, err := strconv.Atoi(part); err == nil && d >= 0 && d <= 6 {
			days[d] = true
		} else if d, ok := dayAlias[part]; ok {
			days[d] = true
		}
	}
	if len(days) == 0 {
		return nil, false
	}
	return days, true
}
