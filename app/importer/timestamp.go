package importer

import (
	"fmt"
	"strings"
	"time"

	// Exports name their zone; the binary must not depend on the host's zoneinfo.
	_ "time/tzdata"
)

// TimestampLayout is the export's MM/DD/YYYY HH:MM:SS AM|PM format.
const TimestampLayout = "1/2/2006 3:04:05 PM"

// ParseTimestamp reads an export timestamp as wall-clock time in loc at
// the zone's standard offset for that year, ignoring daylight saving, and
// returns it in UTC.
func ParseTimestamp(value string, loc *time.Location) (time.Time, error) {
	naive, err := time.Parse(TimestampLayout, strings.ToUpper(strings.TrimSpace(value)))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid timestamp %q: %w", value, err)
	}
	if loc == nil {
		loc = time.UTC
	}

	zone := time.FixedZone(loc.String(), standardOffset(loc, naive.Year()))
	local := time.Date(naive.Year(), naive.Month(), naive.Day(),
		naive.Hour(), naive.Minute(), naive.Second(), 0, zone)
	return local.UTC(), nil
}

// standardOffset is the smaller of the January and July offsets, which is
// the non-DST offset in both hemispheres.
func standardOffset(loc *time.Location, year int) int {
	_, jan := time.Date(year, time.January, 1, 0, 0, 0, 0, loc).Zone()
	_, jul := time.Date(year, time.July, 1, 0, 0, 0, 0, loc).Zone()
	if jul < jan {
		return jul
	}
	return jan
}
