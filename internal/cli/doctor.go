package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/modelmint/mintkey/internal/config"
	"github.com/modelmint/mintkey/internal/doctor"
	"github.com/modelmint/mintkey/internal/errors"
	"github.com/modelmint/mintkey/internal/logger"
	"github.com/modelmint/mintkey/internal/ui"
)

var (
	doctorPaths PathFlags
	doctorJSON  bool
	doctorFix   bool
)

func init() {
	AddPathFlags(doctorCmd, &doctorPaths)
	doctorCmd.Flags().BoolVar(&doctorJSON, "json", false, "output in JSON format")
	doctorCmd.Flags().BoolVar(&doctorFix, "fix", false, "attempt automatic fixes where possible")
}

// DoctorOutput represents the JSON output for doctor command.
type DoctorOutput struct {
	Categories []doctor.CategoryResults `json:"categories"`
	Summary    SummaryOutput            `json:"summary"`
}

// SummaryOutput summarizes the check results.
type SummaryOutput struct {
	Pass     int  `json:"pass"`
	Warn     int  `json:"warn"`
	Fail     int  `json:"fail"`
	Fixable  int  `json:"fixable"`
	AllClear bool `json:"all_clear"`
}

// doctorCommand implements the doctor command logic. Failing checks exit 1
// after the report is printed.
func doctorCommand(w io.Writer, flags PathFlags, fix, asJSON bool) error {
	target, err := doctorTarget(flags)
	if err != nil {
		return err
	}

	checks := doctor.NewChecks(target)
	results := doctor.RunAll(checks)

	if fix {
		var errs []error
		results, errs = doctor.FixAll(checks, results)
		log := logger.NewEnvLogger("[doctor]")
		for _, err := range errs {
			log.Warn("fix failed: %s", errors.Summary(err))
		}
	}

	categories := doctor.GroupByCategory(checks, results)
	if asJSON {
		if err := outputDoctorJSON(w, categories, results); err != nil {
			return err
		}
	} else {
		outputDoctorText(w, categories, results, fix)
	}

	if doctor.HasFailures(results) {
		return errors.NewExitError(1)
	}
	return nil
}

// doctorTarget resolves what to inspect. A broken config still gets a run
// against the defaults so the config checks can report the problem.
func doctorTarget(flags PathFlags) (doctor.Target, error) {
	cfg, _, err := config.LoadOrDefault(Config())
	if err != nil {
		cfg = config.DefaultConfig()
	}
	flags.Apply(cfg)
	if config.Validate(cfg) != nil {
		cfg = config.DefaultConfig()
	}
	applyColor(cfg)

	paths, err := cfg.Resolve()
	if err != nil {
		return doctor.Target{}, err
	}

	return doctor.Target{
		ConfigPath: Config(),
		Keys:       keyPair(cfg, paths),
		EnvFile:    paths.EnvFile,
	}, nil
}

func outputDoctorJSON(w io.Writer, categories []doctor.CategoryResults, results []doctor.CheckResult) error {
	counts := doctor.CountByStatus(results)
	output := DoctorOutput{
		Categories: categories,
		Summary: SummaryOutput{
			Pass:     counts[doctor.StatusPass],
			Warn:     counts[doctor.StatusWarn],
			Fail:     counts[doctor.StatusFail],
			Fixable:  doctor.FixableCount(results),
			AllClear: !doctor.HasIssues(results),
		},
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(output)
}

func outputDoctorText(w io.Writer, categories []doctor.CategoryResults, results []doctor.CheckResult, fixed bool) {
	fmt.Fprint(w, ui.RenderHeader(ui.HeaderInfo{
		Title:   "mintkey doctor",
		Version: formatVersion(version),
	}))
	fmt.Fprintln(w)

	table := make([]ui.DoctorCategory, 0, len(categories))
	for _, cat := range categories {
		rows := make([]ui.DoctorCheckRow, 0, len(cat.Results))
		for _, r := range cat.Results {
			rows = append(rows, ui.DoctorCheckRow{
				Status:     r.Status.String(),
				Message:    r.Message,
				Suggestion: r.Suggestion,
			})
		}
		table = append(table, ui.DoctorCategory{Name: cat.Name, Rows: rows})
	}
	fmt.Fprint(w, ui.RenderDoctorTable(table))

	fmt.Fprintln(w, ui.Muted(strings.Repeat("━", ui.HeaderWidth)))

	if !doctor.HasIssues(results) {
		fmt.Fprintln(w, ui.StatusLine(ui.StatusSuccess, doctor.Summary(results)))
		return
	}

	status := ui.StatusWarning
	if doctor.HasFailures(results) {
		status = ui.StatusFail
	}
	fmt.Fprintln(w, ui.StatusLine(status, doctor.Summary(results)))

	if doctor.FixableCount(results) > 0 && !fixed {
		fmt.Fprintf(w, "\n  Run with %s to attempt automatic fixes where possible.\n", ui.Highlight("--fix"))
	}
}
