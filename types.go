package dentcloud

import "encoding/json"

// Meter is an opaque meter identifier, e.g. "P482311252".
type Meter = string

// Meters is the response to a getMeters request.
type Meters struct {
	Success bool    `json:"success"`
	Meters  []Meter `json:"meters"`
}

func (m *Meters) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success *bool    `json:"success"`
		Meters  *[]Meter `json:"meters"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Success == nil {
		return &missingFieldError{shape: "meters", field: "success"}
	}
	if raw.Meters == nil {
		return &missingFieldError{shape: "meters", field: "meters"}
	}

	m.Success = *raw.Success
	m.Meters = *raw.Meters
	return nil
}

// TopicInfo describes a topic that may be requested with Data.
type TopicInfo struct {
	// Unit is the shorthand unit, e.g. "kWh".
	Unit string `json:"unit"`
	// RequestKey goes into Parameters.Topics.
	RequestKey string `json:"requestKey"`
	// Description is the full name.
	Description string `json:"description"`
}

// Topics is the response to a getTopics request.
type Topics struct {
	Success bool        `json:"success"`
	Topics  []TopicInfo `json:"topics"`
}

func (t *Topics) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success *bool        `json:"success"`
		Topics  *[]TopicInfo `json:"topics"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Success == nil {
		return &missingFieldError{shape: "topics", field: "success"}
	}
	if raw.Topics == nil {
		return &missingFieldError{shape: "topics", field: "topics"}
	}

	t.Success = *raw.Success
	t.Topics = *raw.Topics
	return nil
}

// Data is the response to a getData request.
type Data struct {
	// Headers lists the measurement keys present in Topics. The "date" and
	// "time" headers are folded into Reading.Time and do not appear here.
	Headers []Key `json:"headers"`
	// Topics holds one reading per row returned.
	Topics []Reading `json:"topics"`
}

func (d *Data) UnmarshalJSON(b []byte) error {
	var raw struct {
		Headers *[]string  `json:"headers"`
		Topics  *[]Reading `json:"topics"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Headers == nil {
		return &missingFieldError{shape: "data", field: "headers"}
	}
	if raw.Topics == nil {
		return &missingFieldError{shape: "data", field: "topics"}
	}

	headers := make([]Key, 0, len(*raw.Headers))
	for _, name := range *raw.Headers {
		if name == dateField || name == timeField {
			continue
		}
		key, err := ParseKey(name)
		if err != nil {
			return err
		}
		headers = append(headers, key)
	}

	d.Headers = headers
	d.Topics = *raw.Topics
	return nil
}

// Latest returns the reading with the most recent time.
func (d Data) Latest() (Reading, bool) {
	if len(d.Topics) == 0 {
		return Reading{}, false
	}
	latest := d.Topics[0]
	for _, r := range d.Topics[1:] {
		if r.Time.After(latest.Time) {
			latest = r
		}
	}
	return latest, true
}

// apiError is the body the API returns for a failed request.
type apiError struct {
	Success bool
	Error   string
}

func (e *apiError) UnmarshalJSON(b []byte) error {
	var raw struct {
		Success *bool   `json:"success"`
		Error   *string `json:"error"`
	}
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	if raw.Success == nil {
		return &missingFieldError{shape: "error", field: "success"}
	}
	if raw.Error == nil {
		return &missingFieldError{shape: "error", field: "error"}
	}

	e.Success = *raw.Success
	e.Error = *raw.Error
	return nil
}
