package dentcloud

import (
	"context"
	"errors"
	"strconv"
	"strings"
	"time"
)

// Parameters selects the readings returned by Data.
type Parameters struct {
	Year   int
	Month  time.Month
	// Day and Hour narrow the window. The API expects Day to be set when Hour is.
	Day  *int
	Hour *int
	// Topics are TopicInfo.RequestKey values, e.g. "kWHNet" or "A".
	Topics []string
	Meter  Meter
}

// Validate reports parameters the API would reject.
func (p Parameters) Validate() error {
	if p.Month < time.January || p.Month > time.December {
		return errors.New("dentcloud: month must be between 1 and 12")
	}
	if len(p.Topics) == 0 {
		return errors.New("dentcloud: at least one topic is required")
	}
	if p.Meter == "" {
		return errors.New("dentcloud: meter is required")
	}
	return nil
}

// Query builds the getData query string pairs.
func (p Parameters) Query() Query {
	q := Query{
		{Key: "request", Value: "getData"},
		{Key: "year", Value: strconv.Itoa(p.Year)},
		{Key: "month", Value: strconv.Itoa(int(p.Month))},
		{Key: "topics", Value: FormatTopics(p.Topics)},
		{Key: "meter", Value: p.Meter},
	}
	if p.Day != nil {
		q = q.Add("day", strconv.Itoa(*p.Day))
	}
	if p.Hour != nil {
		q = q.Add("hour", strconv.Itoa(*p.Hour))
	}
	return q
}

// FormatTopics renders topics the way the API expects them, e.g. "[ kWHNet, A ]".
func FormatTopics(topics []string) string {
	return "[ " + strings.Join(topics, ", ") + " ]"
}

// Data fetches the readings selected by p.
func (s *Session) Data(ctx context.Context, p Parameters) (Data, error) {
	if err := p.Validate(); err != nil {
		return Data{}, err
	}
	return send[Data](ctx, s, p.Query())
}
