package schedule

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Block is one exclusively-held time interval for a doctor on a date.
// BookingID is nil for administrative blocks a doctor places directly.
// Times are minutes since midnight, half-open [Start, End).
type Block struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	DoctorID  uuid.UUID  `db:"doctor_id" json:"doctor_id"`
	Date      time.Time  `db:"date" json:"date"`
	Start     int        `db:"time_start" json:"time_start"`
	End       int        `db:"time_end" json:"time_end"`
	BookingID *uuid.UUID `db:"booking_id" json:"booking_id,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// Overlaps reports whether [s1,e1) and [s2,e2) intersect.
func Overlaps(s1, e1, s2, e2 int) bool {
	return !(e1 <= s2 || s1 >= e2)
}

const minutesPerDay = 24 * 60

// ParseClock converts "HH:MM" (seconds tolerated and ignored) to minutes
// since midnight.
func ParseClock(s string) (int, error) {
	var h, m int
	if _, err := fmt.Sscanf(s, "%d:%d", &h, &m); err != nil {
		return 0, fmt.Errorf("invalid clock time %q", s)
	}
	if h < 0 || h > 23 || m < 0 || m > 59 {
		return 0, fmt.Errorf("clock time %q out of range", s)
	}
	return h*60 + m, nil
}

// FormatClock renders minutes since midnight as "HH:MM".
func FormatClock(min int) string {
	min = ((min % minutesPerDay) + minutesPerDay) % minutesPerDay
	return fmt.Sprintf("%02d:%02d", min/60, min%60)
}

// AddMinutes advances a clock time, wrapping at the 24h boundary. The date
// does not roll over; an interval that would cross midnight keeps the wrapped
// end time on the same date.
func AddMinutes(startMin, delta int) int {
	return (startMin + delta) % minutesPerDay
}

// ParseDate parses a calendar date in YYYY-MM-DD form.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q", s)
	}
	return d, nil
}
