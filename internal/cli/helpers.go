package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
)

// parseVariantSpec reads a semicolon separated list of key=value pairs.
// Bare "control" and "required" keys act as flags.
func parseVariantSpec(spec string) (domain.NewVariant, error) {
	var v domain.NewVariant
	for _, part := range strings.Split(spec, ";") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		key, value, hasValue := strings.Cut(part, "=")
		key = strings.ToLower(strings.TrimSpace(key))
		value = strings.TrimSpace(value)

		switch key {
		case "name":
			v.Name = value
		case "weight":
			w, err := strconv.Atoi(value)
			if err != nil {
				return v, fmt.Errorf("variant %q: invalid weight %q", spec, value)
			}
			v.TrafficWeight = w
		case "control":
			v.IsControl = !hasValue || parseFlag(value)
		case "required":
			v.Overrides.Required = !hasValue || parseFlag(value)
		case "label":
			v.Overrides.Label = strPtr(value)
		case "placeholder":
			v.Overrides.Placeholder = strPtr(value)
		case "helper":
			v.Overrides.HelperText = strPtr(value)
		default:
			return v, fmt.Errorf("variant %q: unknown key %q", spec, key)
		}
	}
	if v.Name == "" {
		return v, fmt.Errorf("variant %q: name is required", spec)
	}
	return v, nil
}

func parseFlag(s string) bool {
	b, err := strconv.ParseBool(s)
	return err == nil && b
}

func strPtr(s string) *string {
	return &s
}

func deref(s *string) string {
	if s == nil {
		return "-"
	}
	return *s
}

func formatLift(c domain.Comparison) string {
	if c.Improvement == nil && c.ControlZeroConversions {
		return "n/a (control 0 conversions)"
	}
	return util.FormatLift(c.Improvement)
}

func repeatChar(c rune, n int) string {
	return strings.Repeat(string(c), n)
}
