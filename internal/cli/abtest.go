package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/formab/internal/abtest"
	"github.com/emiliopalmerini/formab/internal/domain"
	"github.com/emiliopalmerini/formab/internal/util"
)

var testCmd = &cobra.Command{
	Use:   "test",
	Short: "Manage A/B tests",
	Long:  `Create, list, inspect and change the status of form-field A/B tests.`,
}

var testCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new A/B test",
	Long: `Create a new A/B test with its variants. Tests start as drafts unless
--status is given. Variant weights must sum to 100 and exactly one variant
must be the control.

Examples:
  formab test create "Phone label" --form contact_form --field phone \
    --variant "name=Control;weight=50;control" \
    --variant "name=Mobile;weight=50;label=Mobile number;placeholder=07..."`,
	Args: cobra.ExactArgs(1),
	RunE: runTestCreate,
}

var testListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all A/B tests",
	RunE:  runTestList,
}

var testShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a test and its variants",
	Args:  cobra.ExactArgs(1),
	RunE:  runTestShow,
}

var testStatusCmd = &cobra.Command{
	Use:   "status <id> <draft|active|paused|completed>",
	Short: "Change the status of a test",
	Long: `Change the status of a test. Only one test per form field can be active.

Examples:
  formab test status 3f2a... active`,
	Args: cobra.ExactArgs(2),
	RunE: runTestStatus,
}

var testStatsCmd = &cobra.Command{
	Use:   "stats <id>",
	Short: "Show statistics for a test",
	Long: `Show per-variant event counts and rates, and the significance of each
treatment against the control.

Examples:
  formab test stats 3f2a...`,
	Args: cobra.ExactArgs(1),
	RunE: runTestStats,
}

// Flags
var (
	testForm        string
	testField       string
	testDescription string
	testAllocation  int
	testStatus      string
	testVariants    []string
)

func init() {
	testCmd.AddCommand(testCreateCmd)
	testCmd.AddCommand(testListCmd)
	testCmd.AddCommand(testShowCmd)
	testCmd.AddCommand(testStatusCmd)
	testCmd.AddCommand(testStatsCmd)

	testCreateCmd.Flags().StringVarP(&testForm, "form", "f", "", "Form the test targets")
	testCreateCmd.Flags().StringVar(&testField, "field", "", "Field the test targets")
	testCreateCmd.Flags().StringVarP(&testDescription, "description", "d", "", "Description of the test")
	testCreateCmd.Flags().IntVar(&testAllocation, "allocation", 100, "Traffic allocation percentage")
	testCreateCmd.Flags().StringVar(&testStatus, "status", "", "Initial status (default draft)")
	testCreateCmd.Flags().StringArrayVar(&testVariants, "variant", nil, "Variant spec, repeatable: name=..;weight=..;control;label=..;placeholder=..;helper=..;required")
	_ = testCreateCmd.MarkFlagRequired("form")
	_ = testCreateCmd.MarkFlagRequired("field")
	_ = testCreateCmd.MarkFlagRequired("variant")
}

// withApp opens an AppContext for the duration of fn.
func withApp(cmd *cobra.Command, fn func(ctx context.Context, app *AppContext) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	app, err := NewAppContext(ctx)
	if err != nil {
		return err
	}
	defer app.Close(ctx)
	return fn(ctx, app)
}

func runTestCreate(cmd *cobra.Command, args []string) error {
	in, err := buildNewTest(args[0], testForm, testField, testDescription, testAllocation, testStatus, testVariants)
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		return createTest(ctx, app.Service, cmd.OutOrStdout(), in)
	})
}

func runTestList(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		printTestList(cmd.OutOrStdout(), app.Service.ListTests(ctx))
		return nil
	})
}

func runTestShow(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		details, err := app.Service.GetTestDetails(ctx, args[0])
		if err != nil {
			return err
		}
		printTestDetails(cmd.OutOrStdout(), details)
		return nil
	})
}

func runTestStatus(cmd *cobra.Command, args []string) error {
	status, err := domain.ParseTestStatus(args[1])
	if err != nil {
		return err
	}
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		if err := app.Service.UpdateTestStatus(ctx, args[0], status); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Test %s is now %s\n", args[0], status)
		return nil
	})
}

func runTestStats(cmd *cobra.Command, args []string) error {
	return withApp(cmd, func(ctx context.Context, app *AppContext) error {
		stats, err := app.Service.GetTestStatistics(ctx, args[0])
		if err != nil {
			return err
		}
		printStatistics(cmd.OutOrStdout(), stats)
		return nil
	})
}

func buildNewTest(name, form, field, description string, allocation int, status string, specs []string) (domain.NewTest, error) {
	in := domain.NewTest{
		Name:              name,
		FormName:          form,
		FieldName:         field,
		TrafficAllocation: allocation,
		Description:       util.StringPtr(description),
	}
	if status != "" {
		s, err := domain.ParseTestStatus(status)
		if err != nil {
			return in, err
		}
		in.Status = s
	}
	for _, spec := range specs {
		v, err := parseVariantSpec(spec)
		if err != nil {
			return in, err
		}
		in.Variants = append(in.Variants, v)
	}
	return in, nil
}

func createTest(ctx context.Context, svc *abtest.Service, w io.Writer, in domain.NewTest) error {
	test, err := svc.CreateTest(ctx, in)
	if err != nil {
		return err
	}
	fmt.Fprintf(w, "Created test %q (%s) as %s\n", test.Name, test.ID, test.Status)
	return nil
}

func printTestList(w io.Writer, tests []*domain.Test) {
	if len(tests) == 0 {
		fmt.Fprintln(w, "No tests found.")
		return
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tFORM\tFIELD\tSTATUS\tALLOC\tCREATED")
	for _, t := range tests {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%d%%\t%s\n",
			t.ID, t.Name, t.FormName, t.FieldName, t.Status, t.TrafficAllocation,
			util.FormatDateTime(t.CreatedAt))
	}
	tw.Flush()
}

func printTestDetails(w io.Writer, d *abtest.TestDetails) {
	t := d.Test
	fmt.Fprintf(w, "Test: %s\n", t.Name)
	fmt.Fprintf(w, "ID: %s\n", t.ID)
	if t.Description != nil {
		fmt.Fprintf(w, "Description: %s\n", *t.Description)
	}
	fmt.Fprintf(w, "Target: %s.%s\n", t.FormName, t.FieldName)
	fmt.Fprintf(w, "Status: %s\n", t.Status)
	fmt.Fprintf(w, "Traffic allocation: %d%%\n", t.TrafficAllocation)
	fmt.Fprintln(w)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tWEIGHT\tCONTROL\tLABEL\tPLACEHOLDER")
	for _, v := range d.Variants {
		control := ""
		if v.IsControl {
			control = "yes"
		}
		fmt.Fprintf(tw, "%s\t%d\t%s\t%s\t%s\n",
			v.Name, v.TrafficWeight, control, deref(v.Overrides.Label), deref(v.Overrides.Placeholder))
	}
	tw.Flush()
}

func printStatistics(w io.Writer, s *domain.TestStatistics) {
	fmt.Fprintf(w, "Statistics: %s (%s)\n", s.Test.Name, s.Test.Status)
	fmt.Fprintln(w, repeatChar('=', 60))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "VARIANT\tIMPRESSIONS\tFOCUSES\tERRORS\tSUBMITS\tCONVERSIONS\tENGAGE\tERROR\tCONVERT")
	for _, v := range s.Variants {
		name := v.VariantName
		if v.IsControl {
			name += " (control)"
		}
		fmt.Fprintf(tw, "%s\t%d\t%d\t%d\t%d\t%d\t%.1f%%\t%.1f%%\t%.1f%%\n",
			name, v.Impressions, v.Focuses, v.Errors, v.Submissions, v.Conversions,
			v.EngagementRate, v.ErrorRate, v.ConversionRate)
	}
	tw.Flush()

	if len(s.Comparisons) == 0 {
		return
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Comparisons vs control")
	fmt.Fprintln(w, repeatChar('-', 60))
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "TREATMENT\tLIFT\tZ\tP-VALUE\tSIGNIFICANT")
	for _, c := range s.Comparisons {
		significant := "no"
		if c.Significant {
			significant = "yes"
		}
		fmt.Fprintf(tw, "%s\t%s\t%.3f\t%s\t%s\n",
			c.TreatmentName, formatLift(c), c.ZScore, util.FormatPValue(c.PValue), significant)
	}
	tw.Flush()
}
