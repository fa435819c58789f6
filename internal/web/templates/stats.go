// Package templates renders the admin HTML pages.
package templates

import (
	"fmt"

	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
)

func testSummary(t domain.Test) string {
	return fmt.Sprintf(" %s.%s · traffic %d%% · created %s",
		t.FormName, t.FieldName, t.TrafficAllocation, util.FormatDateTime(t.CreatedAt))
}

func variantName(v domain.VariantStats) string {
	if v.IsControl {
		return v.VariantName + " (control)"
	}
	return v.VariantName
}

func liftLabel(c domain.Comparison) string {
	if c.ControlZeroConversions {
		return "n/a (control had no conversions)"
	}
	return util.FormatLift(c.Improvement)
}
