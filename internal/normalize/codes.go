package normalize

import "strings"

const (
	RaceOtherUnknown = "Other/Unknown"
	EthnicityUnknown = "Unknown"
)

var raceCodes = map[string]string{
	"1": "Asian",
	"2": "Black",
	"3": "Caucasian",
	"4": RaceOtherUnknown,
}

var ethnicityCodes = map[string]string{
	"1": "Hispanic",
	"2": "Not Hispanic",
	"3": EthnicityUnknown,
}

// DecodeRace maps a MEM_RACE code to its label. Labels that are already
// decoded pass through; any other value, including nil, is Other/Unknown.
func DecodeRace(v *string) string {
	return decode(v, raceCodes, RaceOtherUnknown)
}

// DecodeEthnicity maps a MEM_ETHNICITY code to its label. Labels that are
// already decoded pass through; any other value, including nil, is Unknown.
func DecodeEthnicity(v *string) string {
	return decode(v, ethnicityCodes, EthnicityUnknown)
}

func decode(v *string, table map[string]string, fallback string) string {
	if v == nil {
		return fallback
	}
	s := strings.TrimSpace(*v)
	// Codes sometimes arrive as floats from loosely typed exports ("2.0").
	s = strings.TrimSuffix(s, ".0")
	if label, ok := table[s]; ok {
		return label
	}
	for _, label := range table {
		if s == label {
			return s
		}
	}
	return fallback
}
