package dentcloud

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Category identifies which measurement group a field name belongs to.
type Category int

const (
	AmpChannel Category = iota + 1
	KilowattHourNetElement
	DemandKilowattElement
	DisplacementPowerFactorChannel
	DisplacementPowerFactorElement
)

// Field name segments as used by the DentCloud API
const (
	fieldAmps           = "A"
	fieldKilowattHours  = "kWHNet"
	fieldPowerFactor    = "dPF"
	fieldDemandKilowatt = "DemandkW"

	subChannel = "Ch"
	subElement = "Elm"
)

var categoryNames = map[Category]string{
	AmpChannel:                     "ampChannel",
	KilowattHourNetElement:         "kilowattHourNetElement",
	DemandKilowattElement:          "demandKilowattElement",
	DisplacementPowerFactorChannel: "displacementPowerFactorChannel",
	DisplacementPowerFactorElement: "displacementPowerFactorElement",
}

func (c Category) String() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return fmt.Sprintf("Category(%d)", int(c))
}

// segments returns the raw field and sub-field a category is encoded as.
func (c Category) segments() (string, string) {
	switch c {
	case AmpChannel:
		return fieldAmps, subChannel
	case KilowattHourNetElement:
		return fieldKilowattHours, subElement
	case DemandKilowattElement:
		return fieldDemandKilowatt, subElement
	case DisplacementPowerFactorChannel:
		return fieldPowerFactor, subChannel
	case DisplacementPowerFactorElement:
		return fieldPowerFactor, subElement
	}
	return "", ""
}

// Key is a decoded field name: the measurement category plus the channel
// or element identifier it was reported for.
type Key struct {
	Category Category
	ID       string
}

// ParseKey decodes a raw field name such as "A/Ch/1" or "kWHNet/Elm/3".
//
// The API only reports the categories listed above; anything else means the
// vendor added a field type this package does not know about yet.
func ParseKey(raw string) (Key, error) {
	parts := strings.Split(raw, "/")
	if len(parts) != 3 {
		return Key{}, &KeyError{Raw: raw}
	}

	field, sub, id := parts[0], parts[1], parts[2]

	var category Category
	switch {
	case field == fieldAmps && sub == subChannel:
		category = AmpChannel
	case field == fieldKilowattHours && sub == subElement:
		category = KilowattHourNetElement
	case field == fieldPowerFactor && sub == subChannel:
		category = DisplacementPowerFactorChannel
	case field == fieldPowerFactor && sub == subElement:
		category = DisplacementPowerFactorElement
	case field == fieldDemandKilowatt && sub == subElement:
		category = DemandKilowattElement
	default:
		return Key{}, &KeyError{Raw: raw}
	}

	return Key{Category: category, ID: id}, nil
}

// String renders the key back into the API's field name form.
func (k Key) String() string {
	field, sub := k.Category.segments()
	return field + "/" + sub + "/" + k.ID
}

// MarshalJSON encodes the key as a single-entry object, e.g. {"ampChannel":"1"}.
func (k Key) MarshalJSON() ([]byte, error) {
	return json.Marshal(map[string]string{k.Category.String(): k.ID})
}
