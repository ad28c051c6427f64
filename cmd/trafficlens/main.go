// Package main provides the CLI entrypoint for trafficlens.
package main

import (
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/mvern/trafficlens/internal/aggregate"
	"github.com/mvern/trafficlens/internal/chart"
	"github.com/mvern/trafficlens/internal/chartui"
	"github.com/mvern/trafficlens/internal/config"
	"github.com/mvern/trafficlens/internal/generate"
	"github.com/mvern/trafficlens/internal/model"
	"github.com/mvern/trafficlens/internal/parse"
	"github.com/mvern/trafficlens/internal/report"
)

const (
	defaultThreshold = 60.0
	defaultJunctionA = "Elm Avenue/Rabbit Road"
	defaultJunctionB = "Hanley Highway/Westway"
	defaultRows      = 500
)

var (
	analyzeDate      string
	analyzeThreshold float64
	analyzeJunctionA string
	analyzeJunctionB string
	analyzeOut       string
	analyzeNoChart   bool

	generateRows int
	generateSeed int64
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "trafficlens <survey.csv>",
		Short:         "Traffic survey analyzer",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runAnalyzeCmd,
	}
	addAnalyzeFlags(rootCmd)
	rootCmd.Flags().StringVar(&analyzeOut, "out", "", "report output path (default: XDG data dir)")
	rootCmd.Flags().BoolVar(&analyzeNoChart, "no-chart", false, "print the report instead of opening the chart window")

	rootCmd.AddCommand(newChartCmd())
	rootCmd.AddCommand(newGenerateCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringVar(&analyzeDate, "date", "", "survey date in DD-MM-YYYY format (required)")
	cmd.Flags().Float64Var(&analyzeThreshold, "threshold", defaultThreshold, "speed limit; faster records count as violations")
	cmd.Flags().StringVar(&analyzeJunctionA, "junction-a", defaultJunctionA, "first junction of the comparison pair")
	cmd.Flags().StringVar(&analyzeJunctionB, "junction-b", defaultJunctionB, "second junction of the comparison pair")
}

func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args[0])
	if err != nil {
		return err
	}
	summary, counts, series, err := runPipeline(cfg)
	if err != nil {
		return err
	}
	if err := report.WriteFile(cfg.ReportPath, summary, counts); err != nil {
		return err
	}
	logErrf("Report saved to %s\n", cfg.ReportPath)

	if analyzeNoChart {
		return report.RenderSummary(cmd.OutOrStdout(), summary, counts)
	}
	window := chartui.NewModel(summary, counts, series)
	program := tea.NewProgram(window, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chart window: %w", err)
	}
	return nil
}

func newChartCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chart <survey.csv>",
		Short: "Show the hourly histogram without writing a report",
		Args:  cobra.ExactArgs(1),
		RunE:  runChartCmd,
	}
	addAnalyzeFlags(cmd)
	return cmd
}

func runChartCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildRunConfig(cmd, args[0])
	if err != nil {
		return err
	}
	summary, counts, series, err := runPipeline(cfg)
	if err != nil {
		return err
	}
	window := chartui.NewModel(summary, counts, series)
	program := tea.NewProgram(window, tea.WithAltScreen())
	if _, err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chart window: %w", err)
	}
	return nil
}

// runPipeline executes one full analysis pass: open, parse, aggregate,
// snapshot. Everything downstream consumes the returned read-only values.
func runPipeline(cfg model.RunConfig) (aggregate.Summary, parse.Counts, []chart.Series, error) {
	file, err := os.Open(cfg.InputPath)
	if err != nil {
		return aggregate.Summary{}, parse.Counts{}, nil, fmt.Errorf("failed to open input: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logErrf("failed to close input: %v\n", cerr)
		}
	}()

	var reader io.Reader = file
	if info, err := file.Stat(); err == nil && info.Size() > 0 {
		bar := progressbar.DefaultBytes(info.Size(), "scanning rows")
		pr := progressbar.NewReader(file, bar)
		reader = &pr
	}

	records, counts, err := parse.ReadRecords(reader, cfg.Date)
	if err != nil {
		return aggregate.Summary{}, parse.Counts{}, nil, err
	}

	state := aggregate.NewState(cfg.Threshold)
	for _, rec := range records {
		state.Add(rec)
	}
	summary := state.Snapshot(cfg)
	series := []chart.Series{
		chart.HourlySeries(state, cfg.JunctionA),
		chart.HourlySeries(state, cfg.JunctionB),
	}
	return summary, counts, series, nil
}

func buildRunConfig(cmd *cobra.Command, inputPath string) (model.RunConfig, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return model.RunConfig{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyFloatConfig(cmd, "threshold", &analyzeThreshold, fileCfg.Analyze.Threshold)
	applyStringConfig(cmd, "junction-a", &analyzeJunctionA, fileCfg.Analyze.JunctionA)
	applyStringConfig(cmd, "junction-b", &analyzeJunctionB, fileCfg.Analyze.JunctionB)
	applyStringConfig(cmd, "out", &analyzeOut, fileCfg.Analyze.Out)

	if analyzeDate == "" {
		return model.RunConfig{}, fmt.Errorf("--date is required (format DD-MM-YYYY)")
	}
	date, err := time.Parse(parse.DateLayout, analyzeDate)
	if err != nil {
		return model.RunConfig{}, fmt.Errorf("invalid --date value: %w", err)
	}
	if analyzeThreshold < 0 {
		return model.RunConfig{}, fmt.Errorf("--threshold must be >= 0")
	}
	if strings.TrimSpace(analyzeJunctionA) == "" || strings.TrimSpace(analyzeJunctionB) == "" {
		return model.RunConfig{}, fmt.Errorf("--junction-a and --junction-b must not be empty")
	}
	out := analyzeOut
	if out == "" {
		out = config.DefaultReportPath()
	}
	return model.RunConfig{
		Date:       date,
		InputPath:  inputPath,
		ReportPath: out,
		Threshold:  analyzeThreshold,
		JunctionA:  analyzeJunctionA,
		JunctionB:  analyzeJunctionB,
	}, nil
}

func newGenerateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "generate <out.csv>",
		Short: "Generate a synthetic survey file",
		Args:  cobra.ExactArgs(1),
		RunE:  runGenerateCmd,
	}
	cmd.Flags().StringVar(&analyzeDate, "date", "", "survey date in DD-MM-YYYY format (required)")
	cmd.Flags().StringVar(&analyzeJunctionA, "junction-a", defaultJunctionA, "first junction")
	cmd.Flags().StringVar(&analyzeJunctionB, "junction-b", defaultJunctionB, "second junction")
	cmd.Flags().IntVar(&generateRows, "rows", defaultRows, "number of rows to generate")
	cmd.Flags().Int64Var(&generateSeed, "seed", 0, "random seed (0: time-based)")
	return cmd
}

func runGenerateCmd(_ *cobra.Command, args []string) error {
	if analyzeDate == "" {
		return fmt.Errorf("--date is required (format DD-MM-YYYY)")
	}
	date, err := time.Parse(parse.DateLayout, analyzeDate)
	if err != nil {
		return fmt.Errorf("invalid --date value: %w", err)
	}
	if generateRows <= 0 {
		return fmt.Errorf("--rows must be greater than 0")
	}
	seed := generateSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	gen := generate.New(seed)
	rows := gen.Rows(date, []string{analyzeJunctionA, analyzeJunctionB}, generateRows)

	file, err := os.Create(args[0])
	if err != nil {
		return fmt.Errorf("failed to create output: %w", err)
	}
	defer func() {
		if cerr := file.Close(); cerr != nil {
			logErrf("failed to close output: %v\n", cerr)
		}
	}()
	if err := generate.WriteCSV(file, rows); err != nil {
		return err
	}
	logErrf("Wrote %s (%d rows)\n", args[0], generateRows)
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := config.DefaultConfigPath()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyFloatConfig(cmd *cobra.Command, name string, target, value *float64) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# trafficlens configuration
# Uncomment a value to enable it. CLI flags override config values.

[analyze]
# threshold = %.1f         # Speed limit; faster records count as violations
# junction-a = %q
# junction-b = %q
# out = "results.txt"      # Report output path
`,
		defaultThreshold,
		defaultJunctionA,
		defaultJunctionB,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
