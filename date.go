package filterable

import (
	"time"

	"github.com/araddon/dateparse"
	"github.com/pkg/errors"
	"github.com/spf13/cast"
)

const dateLayout = `2006-01-02`

/*
Parses a date leniently: "2024-01-03", "2024-01-03T10:00:00Z", "01/03/2024",
"Jan 3 2024" and so on. Values that are already times are used as-is.
The result is truncated to the start of its day in `loc`.
*/
func parseDay(val interface{}, loc *time.Location) (time.Time, error) {
	var inst time.Time

	switch val := val.(type) {
	case time.Time:
		inst = val.In(loc)
	case *time.Time:
		if val == nil {
			return inst, errors.New(`[filterable] can't parse nil as a date`)
		}
		inst = val.In(loc)
	default:
		str, err := cast.ToStringE(val)
		if err != nil {
			return inst, errors.Wrapf(err, `[filterable] can't parse %T as a date`, val)
		}

		inst, err = dateparse.ParseIn(str, loc)
		if err != nil {
			return inst, errors.Wrapf(err, `[filterable] failed to parse %q as a date`, str)
		}
		inst = inst.In(loc)
	}

	return startOfDay(inst), nil
}

func startOfDay(inst time.Time) time.Time {
	year, month, day := inst.Date()
	return time.Date(year, month, day, 0, 0, 0, 0, inst.Location())
}

/*
Last instant of the day: the start of the next day minus one microsecond,
which is the resolution of SQL timestamps.
*/
func endOfDay(inst time.Time) time.Time {
	return startOfDay(inst).AddDate(0, 0, 1).Add(-time.Microsecond)
}
