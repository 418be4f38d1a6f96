package dentcloud

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"
)

// TimeLayout is the combined layout of a row's "date" and "time" fields.
const TimeLayout = "2006-01-02 15:04"

const (
	dateField = "date"
	timeField = "time"
)

// Measurements maps a channel or element identifier to its value.
type Measurements map[string]float64

// IDs returns the identifiers in ascending order.
func (m Measurements) IDs() []string {
	ids := make([]string, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// DisplacementPowerFactor holds power factor values per channel and per element.
type DisplacementPowerFactor struct {
	Channels Measurements `json:"channels"`
	Elements Measurements `json:"elements"`
}

// Reading is every measurement reported for one timestamp.
type Reading struct {
	// Time is a wall-clock time. The API does not say which timezone it is in;
	// assume the timezone of the meter's real world location. It is stored in
	// UTC only as a carrier and never converted.
	Time                     time.Time               `json:"time"`
	AmpsChannels             Measurements            `json:"ampsChannels"`
	KilowattHoursNetElements Measurements            `json:"kilowattHoursNetElements"`
	DemandKilowattElements   Measurements            `json:"demandKilowattElements"`
	DisplacementPowerFactor  DisplacementPowerFactor `json:"displacementPowerFactor"`
}

func newReading() Reading {
	return Reading{
		AmpsChannels:             Measurements{},
		KilowattHoursNetElements: Measurements{},
		DemandKilowattElements:   Measurements{},
		DisplacementPowerFactor: DisplacementPowerFactor{
			Channels: Measurements{},
			Elements: Measurements{},
		},
	}
}

// UnmarshalJSON builds a Reading from one flat row of a getData response:
//
//	{"date":"2024-01-01","time":"08:00","A/Ch/1":"3.5","kWHNet/Elm/2":"N/A"}
//
// Values that are not numbers are dropped.
func (r *Reading) UnmarshalJSON(b []byte) error {
	var flat map[string]string
	if err := json.Unmarshal(b, &flat); err != nil {
		return err
	}

	date, ok := flat[dateField]
	if !ok {
		return &missingFieldError{shape: "topic", field: dateField}
	}
	clock, ok := flat[timeField]
	if !ok {
		return &missingFieldError{shape: "topic", field: timeField}
	}

	ts, err := time.Parse(TimeLayout, date+" "+clock)
	if err != nil {
		return fmt.Errorf("topic: invalid timestamp: %w", err)
	}

	reading := newReading()
	reading.Time = ts

	for name, raw := range flat {
		if name == dateField || name == timeField {
			continue
		}

		value, ok := parseValue(raw)
		if !ok {
			continue
		}

		key, err := ParseKey(name)
		if err != nil {
			return err
		}
		reading.target(key.Category)[key.ID] = value
	}

	*r = reading
	return nil
}

// parseValue reads a decimal float. strconv also accepts hexadecimal
// mantissas with underscores, which the API never sends.
func parseValue(raw string) (float64, bool) {
	digits := strings.TrimLeft(raw, "+-")
	if len(digits) >= 2 && digits[0] == '0' && (digits[1] == 'x' || digits[1] == 'X') {
		return 0, false
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, false
	}
	return value, true
}

func (r *Reading) target(c Category) Measurements {
	switch c {
	case AmpChannel:
		return r.AmpsChannels
	case KilowattHourNetElement:
		return r.KilowattHoursNetElements
	case DemandKilowattElement:
		return r.DemandKilowattElements
	case DisplacementPowerFactorChannel:
		return r.DisplacementPowerFactor.Channels
	case DisplacementPowerFactorElement:
		return r.DisplacementPowerFactor.Elements
	}
	panic(fmt.Sprintf("dentcloud: no measurement group for %v", c))
}
