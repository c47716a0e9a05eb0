// Package region classifies a store's location along the cultural
// axes the rule engine conditions on: a coarse comfort-food region,
// a Greater-China subregion, and the traditional solar-term calendar.
package region

import "strings"

// Cultural region clusters. Different clusters reach for different
// comfort food under the same weather.
const (
	Western  = "western"
	UK       = "uk"
	EastAsia = "east_asia"
	Tropical = "tropical"
)

// DefaultRegion is the fallback for unknown or missing countries.
const DefaultRegion = Western

var countryToRegion = map[string]string{
	// Western: North America, western Europe, Australasia.
	"US": Western, "CA": Western, "AU": Western, "NZ": Western,
	"DE": Western, "FR": Western, "IT": Western, "ES": Western,
	"NL": Western, "BE": Western, "AT": Western, "CH": Western,
	"PL": Western, "SE": Western, "NO": Western, "FI": Western,
	"PT": Western, "GR": Western, "IE": Western,
	// The UK gets its own tea-and-buns cluster.
	"GB": UK, "UK": UK,
	// East Asia: rice, noodles, hot soup.
	"CN": EastAsia, "JP": EastAsia, "KR": EastAsia,
	"TW": EastAsia, "HK": EastAsia, "MO": EastAsia,
	// Tropical: southeast and south Asia.
	"SG": Tropical, "MY": Tropical, "TH": Tropical, "VN": Tropical,
	"ID": Tropical, "PH": Tropical, "MM": Tropical, "KH": Tropical,
	"LA": Tropical, "IN": Tropical, "PK": Tropical, "BD": Tropical,
	"LK": Tropical, "NP": Tropical,
}

// FromCountry maps an ISO 3166-1 alpha-2 country code to its cultural
// region, defaulting to western for everything unmapped.
func FromCountry(countryCode string) string {
	if countryCode == "" {
		return DefaultRegion
	}
	if r, ok := countryToRegion[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return r
	}
	return DefaultRegion
}

var greaterChina = map[string]bool{"CN": true, "HK": true, "MO": true, "TW": true}

// IsGreaterChina reports whether the country participates in the
// subregion and solar-term rule dimensions.
func IsGreaterChina(countryCode string) bool {
	return greaterChina[strings.ToUpper(strings.TrimSpace(countryCode))]
}

var countryToTimezone = map[string]string{
	"AU": "Australia/Adelaide",
	"CN": "Asia/Shanghai",
	"JP": "Asia/Tokyo",
	"GB": "Europe/London",
	"US": "America/New_York",
	"SG": "Asia/Singapore",
	"HK": "Asia/Hong_Kong",
	"TW": "Asia/Taipei",
}

// TimezoneForCountry gives a representative IANA timezone for stores
// that carry no timezone of their own.
func TimezoneForCountry(countryCode string) string {
	if tz, ok := countryToTimezone[strings.ToUpper(strings.TrimSpace(countryCode))]; ok {
		return tz
	}
	return "Australia/Adelaide"
}
