package rules

// Kind is the closed set of environment dimensions a condition can test.
type Kind string

const (
	KindWeather        Kind = "weather"
	KindTemperature    Kind = "temperature"
	KindTimeOfDay      Kind = "time_of_day"
	KindWeekday        Kind = "weekday"
	KindRegion         Kind = "region"
	KindCity           Kind = "city"
	KindChinaSubregion Kind = "china_subregion"
	KindSolarTerm      Kind = "solar_term"
)

var SupportedKinds = []Kind{
	KindWeather,
	KindTemperature,
	KindTimeOfDay,
	KindWeekday,
	KindRegion,
	KindCity,
	KindChinaSubregion,
	KindSolarTerm,
}

// Operator selects how a condition value is compared. Temperature and
// time-of-day conditions encode their comparison in the value itself
// (range grammar), so the operator field is ignored for those kinds.
type Operator string

const (
	OperatorEquals Operator = "=="
	OperatorInSet  Operator = "in"
)

// AbsentPolicy says what happens when the context lacks the data a
// condition kind needs.
type AbsentPolicy int

const (
	// AbsentSkip treats the condition as passing when its data is
	// missing, so generic rules still fire under partial context.
	AbsentSkip AbsentPolicy = iota
	// AbsentFail treats the condition as failing when its data is
	// missing. Used by the kinds whose whole purpose is to scope a
	// rule to a calendar or region the context may not be in.
	AbsentFail
)

// OnAbsent returns the missing-data policy for the kind. Only the
// Greater-China kinds hard-fail; everything else degrades to a pass.
func (k Kind) OnAbsent() AbsentPolicy {
	switch k {
	case KindChinaSubregion, KindSolarTerm:
		return AbsentFail
	default:
		return AbsentSkip
	}
}

// Known reports whether k is one of the supported kinds.
func (k Kind) Known() bool {
	for _, s := range SupportedKinds {
		if k == s {
			return true
		}
	}
	return false
}
