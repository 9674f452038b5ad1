package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"perl2py/internal/cache"
	"perl2py/internal/config"
	"perl2py/internal/diag"
	"perl2py/internal/driver"
	"perl2py/internal/rules"
	"perl2py/internal/version"
)

var convertCmd = &cobra.Command{
	Use:   "convert [flags] <file.pl|directory>...",
	Short: "Convert Perl files into Python",
	Long:  `Convert Perl scripts (.pl) and modules (.pm) into Python 3 files and report what could not be converted faithfully`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args, false)
	},
}

var checkCmd = &cobra.Command{
	Use:   "check [flags] <file.pl|directory>...",
	Short: "Report conversion diagnostics without writing files",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runConvert(cmd, args, true)
	},
}

func init() {
	for _, c := range []*cobra.Command{convertCmd, checkCmd} {
		c.Flags().BoolP("recursive", "r", false, "descend into subdirectories")
		c.Flags().Int("jobs", 0, "max parallel units (0=auto)")
		c.Flags().String("format", "pretty", "diagnostics format (pretty|json|short|sarif)")
		c.Flags().String("min-severity", "partial", "lowest severity reported (converted|partial|unrecognized|error)")
		c.Flags().Bool("cache", false, "reuse conversions from the on-disk cache")
		c.Flags().String("cache-dir", "", "cache directory (default $XDG_CACHE_HOME/perl2py)")
		c.Flags().Bool("verify", false, "parse every output as Python and report syntax errors")
		c.Flags().String("path-mode", "auto", "how paths are shown (auto|absolute|relative|basename)")
		c.Flags().Bool("with-notes", false, "include diagnostic notes in output")
	}
	convertCmd.Flags().StringP("output", "o", "", "output directory (default: next to each input)")
	convertCmd.Flags().Bool("dry-run", false, "convert and report without writing files")
	convertCmd.Flags().Bool("stdout", false, "print converted Python to stdout instead of writing files")
	convertCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
}

type reportOptions struct {
	format    string
	min       diag.Severity
	pathMode  string
	withNotes bool
	color     bool
	quiet     bool
	timings   bool
}

func runConvert(cmd *cobra.Command, args []string, checkOnly bool) error {
	defer dumpTraceOnPanic()

	flags := cmd.Flags()
	recursive, _ := flags.GetBool("recursive")
	jobs, _ := flags.GetInt("jobs")
	useCache, _ := flags.GetBool("cache")
	cacheDir, _ := flags.GetString("cache-dir")
	verifyOut, _ := flags.GetBool("verify")

	rep, err := readReportOptions(cmd)
	if err != nil {
		return err
	}

	table, err := loadRules(cmd)
	if err != nil {
		return err
	}

	inputs, err := driver.Collect(args, recursive)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no .pl or .pm files found in %s", strings.Join(args, ", "))
	}

	maxDiagnostics, err := cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return fmt.Errorf("failed to get max-diagnostics flag: %w", err)
	}
	opts := driver.Options{
		Jobs:           jobs,
		DryRun:         checkOnly,
		Verify:         verifyOut,
		Version:        version.Version,
		MaxDiagnostics: maxDiagnostics,
	}
	toStdout := false
	mode := uiModeOff
	if !checkOnly {
		opts.OutDir, _ = flags.GetString("output")
		dry, _ := flags.GetBool("dry-run")
		toStdout, _ = flags.GetBool("stdout")
		opts.DryRun = dry || toStdout
		uiFlag, _ := flags.GetString("ui")
		if mode, err = readUIMode(uiFlag); err != nil {
			return err
		}
	}
	if useCache {
		if opts.Cache, err = cache.Open(cacheDir); err != nil {
			return fmt.Errorf("failed to open cache: %w", err)
		}
	}

	ctx := cmd.Context()
	var batch *driver.Batch
	if !rep.quiet && !toStdout && rep.format == "pretty" && shouldUseTUI(mode, len(inputs)) {
		batch, err = runWithUI(ctx, "converting", inputs, table, opts)
	} else {
		batch, err = driver.Run(ctx, inputs, table, opts)
	}
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if toStdout {
		for i := range batch.Units {
			if u := &batch.Units[i]; u.Result != nil {
				fmt.Fprint(out, u.Result.Output)
			}
		}
		out = cmd.ErrOrStderr()
	}
	if err := writeReport(out, batch, rep); err != nil {
		return err
	}
	if rep.timings {
		if err := printTimings(cmd.ErrOrStderr(), batch, rep.format == "json"); err != nil {
			return err
		}
	}
	if n := batch.Failed(); n > 0 {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d of %d units failed\n", n, len(batch.Units))
		return errUnitsFailed
	}
	return nil
}

func readReportOptions(cmd *cobra.Command) (reportOptions, error) {
	var rep reportOptions
	flags := cmd.Flags()
	rep.format, _ = flags.GetString("format")
	rep.format = strings.ToLower(rep.format)
	switch rep.format {
	case "pretty", "json", "short", "sarif":
	default:
		return rep, fmt.Errorf("unknown format %q (expected pretty|json|short|sarif)", rep.format)
	}
	minStr, _ := flags.GetString("min-severity")
	minSev, err := diag.ParseSeverity(minStr)
	if err != nil {
		return rep, err
	}
	rep.min = minSev
	rep.pathMode, _ = flags.GetString("path-mode")
	rep.withNotes, _ = flags.GetBool("with-notes")

	root := cmd.Root().PersistentFlags()
	colorFlag, err := root.GetString("color")
	if err != nil {
		return rep, fmt.Errorf("failed to get color flag: %w", err)
	}
	if rep.color, err = useColor(colorFlag, os.Stdout); err != nil {
		return rep, err
	}
	if rep.quiet, err = root.GetBool("quiet"); err != nil {
		return rep, fmt.Errorf("failed to get quiet flag: %w", err)
	}
	if rep.timings, err = root.GetBool("timings"); err != nil {
		return rep, fmt.Errorf("failed to get timings flag: %w", err)
	}
	return rep, nil
}

// loadRules resolves the effective rule table from --config, the
// environment or the nearest perl2py.toml.
func loadRules(cmd *cobra.Command) (*rules.Table, error) {
	flagValue, err := cmd.Root().PersistentFlags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to get config flag: %w", err)
	}
	path, err := config.Locate(flagValue, ".")
	if err != nil {
		return nil, err
	}
	table, err := config.LoadTable(path)
	if err != nil {
		if path != "" {
			return nil, fmt.Errorf("%s: %w", path, err)
		}
		return nil, err
	}
	return table, nil
}
