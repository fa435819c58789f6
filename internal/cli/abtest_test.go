package cli

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/domain"
)

func TestParseVariantSpec(t *testing.T) {
	tests := []struct {
		name    string
		spec    string
		want    domain.NewVariant
		wantErr string
	}{
		{
			name: "control flag",
			spec: "name=Control;weight=50;control",
			want: domain.NewVariant{Name: "Control", TrafficWeight: 50, IsControl: true},
		},
		{
			name: "overrides",
			spec: "name=Mobile; weight=50; label=Mobile number; placeholder=07...; helper=We never call after 8pm; required",
			want: domain.NewVariant{
				Name:          "Mobile",
				TrafficWeight: 50,
				Overrides: domain.FieldOverrides{
					Label:       strPtr("Mobile number"),
					Placeholder: strPtr("07..."),
					HelperText:  strPtr("We never call after 8pm"),
					Required:    true,
				},
			},
		},
		{
			name: "explicit false control",
			spec: "name=B;weight=10;control=false",
			want: domain.NewVariant{Name: "B", TrafficWeight: 10},
		},
		{name: "bad weight", spec: "name=A;weight=half", wantErr: "invalid weight"},
		{name: "unknown key", spec: "name=A;colour=red", wantErr: "unknown key"},
		{name: "missing name", spec: "weight=50", wantErr: "name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseVariantSpec(tt.spec)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBuildNewTest(t *testing.T) {
	in, err := buildNewTest("Phone label", "contact_form", "phone", "Label wording", 80, "active",
		[]string{"name=Control;weight=50;control", "name=Mobile;weight=50"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusActive, in.Status)
	assert.Equal(t, 80, in.TrafficAllocation)
	require.NotNil(t, in.Description)
	assert.Equal(t, "Label wording", *in.Description)
	assert.Len(t, in.Variants, 2)

	_, err = buildNewTest("x", "f", "g", "", 100, "archived", nil)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestCreateAndReport(t *testing.T) {
	ctx := context.Background()
	app := testApp(t)

	in, err := buildNewTest("Phone label", "contact_form", "phone", "", 100, "active",
		[]string{"name=Control;weight=50;control", "name=Mobile;weight=50;label=Mobile number"})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, createTest(ctx, app.Service, &out, in))
	assert.Contains(t, out.String(), `Created test "Phone label"`)

	tests := app.Service.ListTests(ctx)
	require.Len(t, tests, 1)
	id := tests[0].ID

	out.Reset()
	printTestList(&out, tests)
	assert.Contains(t, out.String(), "contact_form")
	assert.Contains(t, out.String(), "active")

	details, err := app.Service.GetTestDetails(ctx, id)
	require.NoError(t, err)
	out.Reset()
	printTestDetails(&out, details)
	assert.Contains(t, out.String(), "Target: contact_form.phone")
	assert.Contains(t, out.String(), "Mobile number")

	control := details.Variants[0]
	treatment := details.Variants[1]
	track := func(v domain.Variant, typ domain.EventType, n int) {
		for i := range n {
			require.NoError(t, app.Service.TrackTestEvent(ctx, abtest.TrackEventInput{
				TestID: id, VariantID: v.ID, SessionID: v.Name + string(rune('a'+i%26)), Type: typ,
			}))
		}
	}
	track(control, domain.EventImpression, 20)
	track(control, domain.EventFormSuccess, 2)
	track(treatment, domain.EventImpression, 20)
	track(treatment, domain.EventFormSuccess, 4)

	stats, err := app.Service.GetTestStatistics(ctx, id)
	require.NoError(t, err)
	out.Reset()
	printStatistics(&out, stats)
	report := out.String()
	assert.Contains(t, report, "Control (control)")
	assert.Contains(t, report, "+100.0%")
	assert.Contains(t, report, "TREATMENT")
}

func TestPrintTestList_Empty(t *testing.T) {
	var out bytes.Buffer
	printTestList(&out, nil)
	assert.Equal(t, "No tests found.", strings.TrimSpace(out.String()))
}

func TestFormatLift(t *testing.T) {
	lift := 12.345
	assert.Equal(t, "+12.3%", formatLift(domain.Comparison{Improvement: &lift}))
	assert.Equal(t, "n/a (control 0 conversions)", formatLift(domain.Comparison{ControlZeroConversions: true}))
	assert.Equal(t, "n/a", formatLift(domain.Comparison{}))
}
