package weather

import (
	"math"
	"time"
)

const (
	// SampleLayout is the provider timestamp format of a RawSample.
	SampleLayout = "2006-01-02 15:04:05"
	dateLayout   = "2006-01-02"
)

// calendarDate returns the YYYY-MM-DD prefix of a sample timestamp.
// Callers guarantee the timestamp is at least that long.
func calendarDate(ts string) string {
	return ts[:len(dateLayout)]
}

// displayDate turns YYYY-MM-DD into DD-MM.
func displayDate(date string) string {
	return date[8:10] + "-" + date[5:7]
}

// dayGroup is the running aggregate of one contiguous run of samples.
type dayGroup struct {
	date  string
	sum   float64
	count int
	low   float64
	high  float64
}

func openDay(date string) dayGroup {
	return dayGroup{
		date: date,
		low:  math.Inf(1),
		high: math.Inf(-1),
	}
}

func (g dayGroup) fold(temp float64) dayGroup {
	g.sum += temp
	g.count++
	g.low = math.Min(g.low, temp)
	g.high = math.Max(g.high, temp)
	return g
}

func (g dayGroup) summary() DailySummary {
	return DailySummary{
		Date:               g.date,
		DisplayDate:        displayDate(g.date),
		AverageTemperature: g.sum / float64(g.count),
		HighTemperature:    g.high,
		LowTemperature:     g.low,
	}
}

// AggregateForecast folds an ordered stream of 3-hour samples into per-day
// summaries, one per contiguous run of samples sharing a calendar date.
//
// A day is only emitted once a sample for a different date follows it, so the
// last run in the stream never produces a summary. The returned skip count is
// 1 when the first summary is for today (a day already in progress) and 0
// otherwise; callers show summaries[skip:].
//
// Samples must be non-empty and carry well-formed timestamps.
func AggregateForecast(samples []RawSample, today time.Time) ([]DailySummary, int) {
	summaries := make([]DailySummary, 0, 5)
	if len(samples) == 0 {
		return summaries, 0
	}

	group := openDay(calendarDate(samples[0].TimestampText))
	for _, s := range samples {
		date := calendarDate(s.TimestampText)
		if date != group.date {
			summaries = append(summaries, group.summary())
			group = openDay(date)
		}
		group = group.fold(s.TemperatureC)
	}

	skip := 0
	if len(summaries) > 0 && summaries[0].Date == today.Format(dateLayout) {
		skip = 1
	}
	return summaries, skip
}
