package domain

import (
	"fmt"
	"log/slog"
	"regexp"
	"slices"
	"strconv"
	"strings"
	"time"
)

const (
	// unknownValue is the site's placeholder for missing data.
	unknownValue = "?"

	// unknownCountry is returned by CountryOfLocation for an empty location.
	unknownCountry = "?"

	dateLayout = "January 2, 2006"
)

// countRe matches the numbers (or "?") in "15 (passengers:13 crew:2)".
var countRe = regexp.MustCompile(`\?|\d+`)

// usStates holds two-letter codes and full names; both map to "USA".
var usStates = map[string]bool{}

func init() {
	for _, s := range [][2]string{
		{"AL", "Alabama"}, {"AK", "Alaska"}, {"AZ", "Arizona"}, {"AR", "Arkansas"},
		{"CA", "California"}, {"CO", "Colorado"}, {"CT", "Connecticut"}, {"DE", "Delaware"},
		{"DC", "District Of Columbia"}, {"FL", "Florida"}, {"GA", "Georgia"}, {"HI", "Hawaii"},
		{"ID", "Idaho"}, {"IL", "Illinois"}, {"IN", "Indiana"}, {"IA", "Iowa"},
		{"KS", "Kansas"}, {"KY", "Kentucky"}, {"LA", "Louisiana"}, {"ME", "Maine"},
		{"MD", "Maryland"}, {"MA", "Massachusetts"}, {"MI", "Michigan"}, {"MN", "Minnesota"},
		{"MS", "Mississippi"}, {"MO", "Missouri"}, {"MT", "Montana"}, {"NE", "Nebraska"},
		{"NV", "Nevada"}, {"NH", "New Hampshire"}, {"NJ", "New Jersey"}, {"NM", "New Mexico"},
		{"NY", "New York"}, {"NC", "North Carolina"}, {"ND", "North Dakota"}, {"OH", "Ohio"},
		{"OK", "Oklahoma"}, {"OR", "Oregon"}, {"PA", "Pennsylvania"}, {"RI", "Rhode Island"},
		{"SC", "South Carolina"}, {"SD", "South Dakota"}, {"TN", "Tennessee"}, {"TX", "Texas"},
		{"UT", "Utah"}, {"VT", "Vermont"}, {"VA", "Virginia"}, {"WA", "Washington"},
		{"WV", "West Virginia"}, {"WI", "Wisconsin"}, {"WY", "Wyoming"},
	} {
		usStates[s[0]] = true
		usStates[s[1]] = true
	}
}

// Clean converts a scraped record into an Accident. Registration, flight
// number and cn/ln are dropped. Returns an error only when the date is
// unparsable, since the date orders the whole database.
func Clean(raw RawAccident) (Accident, error) {
	date, err := time.Parse(dateLayout, cleanValue(raw.Date))
	if err != nil {
		return Accident{}, fmt.Errorf("parse date %q: %w", raw.Date, err)
	}

	route := cleanValue(raw.Route)
	origin, destination := SplitRoute(route)
	location := cleanValue(raw.Location)

	return Accident{
		ID:              raw.ID(),
		Date:            date,
		Time:            cleanValue(raw.Time),
		Location:        location,
		LocationCountry: CountryOfLocation(location),
		Operator:        cleanValue(raw.Operator),
		Route:           route,
		Origin:          origin,
		Destination:     destination,
		AircraftType:    cleanValue(raw.AircraftType),
		Aboard:          SplitCounts(cleanValue(raw.Aboard)),
		Fatalities:      SplitCounts(cleanValue(raw.Fatalities)),
		Ground:          intOrNil(cleanValue(raw.Ground)),
		Summary:         cleanValue(raw.Summary),
	}, nil
}

// CleanAll cleans every record, drops the ones with an unparsable date and
// returns the rest ordered by date. Records on the same date keep their
// scrape order.
func CleanAll(raws []RawAccident, logger *slog.Logger) []Accident {
	out := make([]Accident, 0, len(raws))
	for _, raw := range raws {
		a, err := Clean(raw)
		if err != nil {
			logger.Warn("dropping accident with bad date", "id", raw.ID(), "error", err)
			continue
		}
		out = append(out, a)
	}
	slices.SortStableFunc(out, func(a, b Accident) int {
		return a.Date.Compare(b.Date)
	})
	return out
}

// SplitRoute splits "A - B - C" into origin "A" and destination "C".
// A route without a separator is both origin and destination.
func SplitRoute(route string) (origin, destination string) {
	if route == "" {
		return "", ""
	}
	hops := strings.Split(route, " - ")
	return strings.TrimSpace(hops[0]), strings.TrimSpace(hops[len(hops)-1])
}

// SplitCounts splits a count field such as "15 (passengers:13 crew:2)".
// Values are assigned in order to total, passengers and crew; "?" and missing
// values stay nil.
func SplitCounts(entry string) Counts {
	var c Counts
	targets := []**int{&c.Total, &c.Passengers, &c.Crew}
	for i, m := range countRe.FindAllString(entry, len(targets)) {
		*targets[i] = intOrNil(m)
	}
	return c
}

// CountryOfLocation returns the country named at the end of a location such
// as "St. Moritz, Switzerland". US state names and codes map to "USA".
func CountryOfLocation(location string) string {
	if location == "" {
		return unknownCountry
	}
	parts := strings.Split(location, ",")
	country := strings.TrimSpace(parts[len(parts)-1])
	if usStates[country] {
		return "USA"
	}
	return country
}

func cleanValue(s string) string {
	s = strings.TrimSpace(s)
	if s == unknownValue {
		return ""
	}
	return s
}

func intOrNil(s string) *int {
	v, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return nil
	}
	return &v
}
