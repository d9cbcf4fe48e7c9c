package period

import "time"

// Trimester markers used by sub-group rotations.
const (
	Annual          = "anual"
	FirstTrimester  = "1er_trimestre"
	SecondTrimester = "2do_trimestre"
	ThirdTrimester  = "3er_trimestre"
)

var Trimesters = []string{FirstTrimester, SecondTrimester, ThirdTrimester}

// TrimesterOf returns the rotation trimester of date; false during the summer break (Jan-Feb).
func TrimesterOf(date time.Time) (string, bool) {
	switch m := date.Month(); {
	case m >= time.March && m <= time.May:
		return FirstTrimester, true
	case m >= time.June && m <= time.August:
		return SecondTrimester, true
	case m >= time.September:
		return ThirdTrimester, true
	}
	return "", false
}

func IsTrimester(marker string) bool {
	for _, t := range Trimesters {
		if t == marker {
			return true
		}
	}
	return false
}
