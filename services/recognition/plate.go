package recognition

import "strings"

// NormalizePlate uppercases a plate and strips spaces and dashes.
func NormalizePlate(plate string) string {
	plate = strings.ToUpper(strings.TrimSpace(plate))
	return strings.NewReplacer(" ", "", "-", "").Replace(plate)
}
