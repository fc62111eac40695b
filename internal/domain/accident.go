package domain

import (
	"fmt"
	"strings"
	"time"
)

// RawAccident is one accident detail page as scraped, before cleaning.
// The csv tags are the column names of the yearly snapshot files; cleaning
// expects exactly these names.
type RawAccident struct {
	Year         int       `csv:"Year" json:"year"`
	Number       int       `csv:"Number" json:"number"`
	Date         string    `csv:"Date" json:"date"`
	Time         string    `csv:"Time" json:"time"`
	Location     string    `csv:"Location" json:"location"`
	Operator     string    `csv:"Operator" json:"operator"`
	FlightNumber string    `csv:"Flight #" json:"flight_number"`
	Route        string    `csv:"Route" json:"route"`
	AircraftType string    `csv:"AC Type" json:"aircraft_type"`
	Registration string    `csv:"Registration" json:"registration"`
	CNLN         string    `csv:"cn / ln" json:"cn_ln"`
	Aboard       string    `csv:"Aboard" json:"aboard"`
	Fatalities   string    `csv:"Fatalities" json:"fatalities"`
	Ground       string    `csv:"Ground" json:"ground"`
	Summary      string    `csv:"Summary" json:"summary"`
	ScrapedAt    time.Time `csv:"Scraped At" json:"scraped_at"`
}

// ID identifies an accident by year and its number within that year.
func (r RawAccident) ID() string {
	return accidentID(r.Year, r.Number)
}

func accidentID(year, number int) string {
	return fmt.Sprintf("%d-%d", year, number)
}

// Counts holds a split "15 (passengers:13 crew:2)" field. Nil means unknown.
type Counts struct {
	Total      *int `json:"total"`
	Passengers *int `json:"passengers,omitempty"`
	Crew       *int `json:"crew,omitempty"`
}

// Accident is the cleaned representation of a RawAccident.
type Accident struct {
	ID              string    `json:"id"`
	Date            time.Time `json:"date"`
	Time            string    `json:"time,omitempty"`
	Location        string    `json:"location,omitempty"`
	LocationCountry string    `json:"location_country"`
	Operator        string    `json:"operator,omitempty"`
	Route           string    `json:"route,omitempty"`
	Origin          string    `json:"origin,omitempty"`
	Destination     string    `json:"destination,omitempty"`
	AircraftType    string    `json:"aircraft_type,omitempty"`
	Aboard          Counts    `json:"aboard"`
	Fatalities      Counts    `json:"fatalities"`
	Ground          *int      `json:"ground"`
	Summary         string    `json:"summary,omitempty"`
}

// FatalitiesTotal returns the total fatality count, or 0 when unknown.
func (a Accident) FatalitiesTotal() int {
	if a.Fatalities.Total == nil {
		return 0
	}
	return *a.Fatalities.Total
}

// RawAccidentFromFields builds a RawAccident from the label/value pairs of a
// detail page. Labels are matched case- and whitespace-insensitively, with or
// without the trailing colon. Unknown labels are ignored.
func RawAccidentFromFields(year, number int, fields map[string]string) RawAccident {
	rec := RawAccident{
		Year:      year,
		Number:    number,
		ScrapedAt: clock.Now().UTC(),
	}
	for label, value := range fields {
		value = normalizeSpace(value)
		switch normalizeLabel(label) {
		case "date":
			rec.Date = value
		case "time":
			rec.Time = value
		case "location":
			rec.Location = value
		case "operator":
			rec.Operator = value
		case "flight #":
			rec.FlightNumber = value
		case "route":
			rec.Route = value
		case "ac type", "type":
			rec.AircraftType = value
		case "registration":
			rec.Registration = value
		case "cn / ln":
			rec.CNLN = value
		case "aboard":
			rec.Aboard = value
		case "fatalities":
			rec.Fatalities = value
		case "ground":
			rec.Ground = value
		case "summary":
			rec.Summary = value
		}
	}
	return rec
}

func normalizeLabel(label string) string {
	label = strings.TrimSuffix(normalizeSpace(label), ":")
	return strings.ToLower(strings.TrimSpace(label))
}

func normalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
