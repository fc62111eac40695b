// Package domain models aviation accident records scraped from
// planecrashinfo.com and the geographic helpers used to place them on a map.
//
// # Data Source
//
// The site publishes one index page (database.htm) listing every year with
// data, one page per year (<year>/<year>.htm) with a table row per accident,
// and one detail page per accident (<year>/<year>-<n>.htm). A detail page is a
// two-column table of "Label:" / value rows.
//
// # Site Conventions
//
// Labels end with a colon and sometimes carry irregular spacing
// ("AC  Type:", "cn / ln:"). They are normalized by [RawAccidentFromFields]
// and stored without the colon.
//
// Unknown values:
//
//	"?" is the site's sentinel for unknown. Cleaning turns it into an empty
//	string, or a nil count.
//
// Dates:
//
//	"January 01, 1921". Records whose date cannot be parsed are dropped by
//	[CleanAll] with a warning.
//
// Route:
//
//	"Bergen - Oslo - Cairo". Origin is the first hop, destination the last.
//
// Counts (Aboard, Fatalities):
//
//	"15 (passengers:13 crew:2)" -> total 15, passengers 13, crew 2.
//	Any of the three may be "?".
//
// Location:
//
//	"St. Moritz, Switzerland" -> country "Switzerland".
//	US locations name the state ("Jackson, Mississippi", or "Jackson, MS"),
//	which maps to "USA".
//
// # Geolocations
//
// Origin and destination place names are geocoded into a [Geolocations] map.
// A nil entry records a place that was looked up and not found, so reruns can
// retry it while skipping places already located.
package domain
