package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"sveltefmt/internal/config"
	"sveltefmt/internal/diagfmt"
	"sveltefmt/internal/driver"
	"sveltefmt/internal/observ"
)

var fmtCmd = &cobra.Command{
	Use:   "fmt [flags] [path...]",
	Short: "Format Svelte components",
	Long: `Format .svelte files in place. Directories are walked recursively.
With no paths, or with "-", the component is read from stdin and printed.`,
	RunE: runFmt,
}

func init() {
	fmtCmd.Flags().Bool("check", false, "list files that are not formatted instead of rewriting them")
	fmtCmd.Flags().Bool("stdout", false, "print formatted code to stdout instead of rewriting files")
	fmtCmd.Flags().String("format", "text", "output format (text|json)")
	fmtCmd.Flags().String("ui", "auto", "progress view (auto|on|off)")
	fmtCmd.Flags().String("stdin-filepath", "stdin.svelte", "path used for config lookup and diagnostics when reading stdin")
	addFormatFlags(fmtCmd)
}

// addFormatFlags registers the flags shared by fmt and watch.
func addFormatFlags(cmd *cobra.Command) {
	cmd.Flags().IntP("jobs", "j", 0, "files formatted in parallel (0 = GOMAXPROCS)")
	cmd.Flags().Bool("no-cache", false, "do not read or write the output cache")
	cmd.Flags().Bool("clear-cache", false, "empty the output cache before formatting")
	cmd.Flags().Bool("verify", false, "format every output twice and fail files that are not stable")
	cmd.Flags().String("config", "", "use this config file instead of searching for one")
	addOptionFlags(cmd)
}

// addOptionFlags registers flags that override config file values.
func addOptionFlags(cmd *cobra.Command) {
	cmd.Flags().String("sort-order", "", "order of top-level sections, e.g. scripts-styles-markup")
	cmd.Flags().Bool("strict", false, "keep attribute values quoted exactly as written")
	cmd.Flags().Bool("bracket-new-line", false, "put the closing > of broken tags on its own line")
	cmd.Flags().Int("print-width", 0, "line width the printer tries to stay within")
	cmd.Flags().Int("tab-width", 0, "columns per indentation level")
	cmd.Flags().Bool("use-tabs", false, "indent with tabs")
	cmd.Flags().String("parser", "", "program that runs the parser bridge (default node)")
}

// readOverrides turns changed option flags into a config.File.
func readOverrides(cmd *cobra.Command) (config.File, error) {
	var f config.File
	flags := cmd.Flags()
	if flags.Changed("sort-order") {
		v, err := flags.GetString("sort-order")
		if err != nil {
			return f, err
		}
		f.SortOrder = &v
	}
	for name, dst := range map[string]**bool{
		"strict":           &f.StrictMode,
		"bracket-new-line": &f.BracketNewLine,
		"use-tabs":         &f.UseTabs,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetBool(name)
		if err != nil {
			return f, err
		}
		*dst = &v
	}
	for name, dst := range map[string]**int{
		"print-width": &f.PrintWidth,
		"tab-width":   &f.TabWidth,
	} {
		if !flags.Changed(name) {
			continue
		}
		v, err := flags.GetInt(name)
		if err != nil {
			return f, err
		}
		*dst = &v
	}
	if flags.Changed("parser") {
		v, err := flags.GetString("parser")
		if err != nil {
			return f, err
		}
		f.Parser = &v
	}
	return f, nil
}

// driverOptions builds the options shared by fmt and watch.
func driverOptions(cmd *cobra.Command, mode driver.Mode) (driver.Options, error) {
	flags := cmd.Flags()
	jobs, err := flags.GetInt("jobs")
	if err != nil {
		return driver.Options{}, err
	}
	verify, err := flags.GetBool("verify")
	if err != nil {
		return driver.Options{}, err
	}
	noCache, err := flags.GetBool("no-cache")
	if err != nil {
		return driver.Options{}, err
	}
	explicit, err := flags.GetString("config")
	if err != nil {
		return driver.Options{}, err
	}
	overrides, err := readOverrides(cmd)
	if err != nil {
		return driver.Options{}, err
	}
	timings, err := cmd.Root().PersistentFlags().GetBool("timings")
	if err != nil {
		return driver.Options{}, err
	}

	opts := driver.Options{
		Mode:     mode,
		Jobs:     jobs,
		Verify:   verify,
		Resolver: &config.Resolver{Explicit: explicit, Overrides: overrides},
	}
	if timings {
		opts.Timer = observ.NewTimer()
	}
	if !noCache {
		cache, err := driver.OpenCache("sveltefmt")
		if err != nil {
			// без кэша работаем как обычно
			fmt.Fprintf(cmd.ErrOrStderr(), "fmt: cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}
	if wipe, _ := cmd.Flags().GetBool("clear-cache"); wipe && opts.Cache != nil {
		if err := opts.Cache.Clear(); err != nil {
			return driver.Options{}, fmt.Errorf("clear cache %s: %w", opts.Cache.Dir(), err)
		}
	}
	return opts, nil
}

func runFmt(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	cleanup, err := setupTracing(cmd)
	if err != nil {
		return err
	}
	defer cleanup()

	flags := cmd.Flags()
	check, err := flags.GetBool("check")
	if err != nil {
		return err
	}
	toStdout, err := flags.GetBool("stdout")
	if err != nil {
		return err
	}
	outputFormat, err := flags.GetString("format")
	if err != nil {
		return err
	}
	outputFormat = strings.ToLower(outputFormat)
	if outputFormat != "text" && outputFormat != "json" {
		return fmt.Errorf("fmt: unsupported output format %q", outputFormat)
	}
	if toStdout && check {
		return fmt.Errorf("fmt: --stdout cannot be used with --check")
	}
	if toStdout && outputFormat != "text" {
		return fmt.Errorf("fmt: --stdout is only supported with text output")
	}
	uiValue, err := flags.GetString("ui")
	if err != nil {
		return err
	}
	uiSel, err := parseSwitch("ui", uiValue)
	if err != nil {
		return err
	}

	mode := driver.ModeWrite
	switch {
	case check:
		mode = driver.ModeCheck
	case toStdout:
		mode = driver.ModeStdout
	}
	opts, err := driverOptions(cmd, mode)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	var rep *driver.Report
	stdin := len(args) == 0 || (len(args) == 1 && args[0] == "-")
	if stdin {
		name, err := flags.GetString("stdin-filepath")
		if err != nil {
			return err
		}
		content, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return fmt.Errorf("fmt: read stdin: %w", err)
		}
		rep, err = driver.FormatSource(ctx, name, content, opts)
		if err != nil {
			return err
		}
		if !check {
			toStdout = true
		}
	} else {
		files, err := driver.CollectFiles(args)
		if err != nil {
			return err
		}
		if !toStdout && outputFormat == "text" && shouldUseTUI(uiSel, len(files)) {
			rep, err = runFormatWithUI(ctx, fmt.Sprintf("sveltefmt %s", mode), files, opts)
		} else {
			rep, err = driver.FormatFiles(ctx, files, opts)
		}
		if err != nil {
			return err
		}
	}

	out := fmtOutput{cmd: cmd, check: check, stdout: toStdout}
	switch outputFormat {
	case "json":
		err = out.json(rep)
	default:
		err = out.text(rep)
	}
	if err != nil {
		return err
	}
	if opts.Timer != nil {
		fmt.Fprint(cmd.ErrOrStderr(), opts.Timer.Summary())
	}

	if rep.Failed() > 0 {
		return fmt.Errorf("fmt: failed to format %d file(s)", rep.Failed())
	}
	if check && rep.Changed() > 0 {
		return fmt.Errorf("fmt: formatting changes required")
	}
	return nil
}

type fmtOutput struct {
	cmd    *cobra.Command
	check  bool
	stdout bool
}

func (o fmtOutput) maxDiagnostics() int {
	n, err := o.cmd.Root().PersistentFlags().GetInt("max-diagnostics")
	if err != nil {
		return 0
	}
	return n
}

func (o fmtOutput) quiet() bool {
	q, err := o.cmd.Root().PersistentFlags().GetBool("quiet")
	return err == nil && q
}

func (o fmtOutput) text(rep *driver.Report) error {
	stdout := o.cmd.OutOrStdout()
	quiet := o.quiet()
	for _, res := range rep.Results {
		if res.Err != nil {
			continue
		}
		switch {
		case o.stdout:
			if _, err := stdout.Write(res.Formatted); err != nil {
				return err
			}
		case o.check && res.Changed && !quiet:
			fmt.Fprintln(stdout, res.Path)
		case !o.check && res.Changed && !quiet:
			fmt.Fprintf(stdout, "reformatted %s\n", res.Path)
		}
	}
	if rep.Failed() == 0 {
		return nil
	}
	return diagfmt.Pretty(o.cmd.ErrOrStderr(), rep.Diagnostics(o.maxDiagnostics()), rep.Files, diagfmt.PrettyOpts{
		Color:     !color.NoColor,
		Paths:     diagPaths(o.cmd),
		ShowNotes: true,
	})
}

type fmtFileJSON struct {
	Path    string `json:"path"`
	Changed bool   `json:"changed"`
	Cached  bool   `json:"cached,omitempty"`
	Error   string `json:"error,omitempty"`
}

type fmtReportJSON struct {
	Check       bool           `json:"check"`
	Files       []fmtFileJSON  `json:"files"`
	Diagnostics diagfmt.Report `json:"diagnostics"`
}

func (o fmtOutput) json(rep *driver.Report) error {
	payload := fmtReportJSON{Check: o.check, Files: make([]fmtFileJSON, 0, len(rep.Results))}
	for _, res := range rep.Results {
		f := fmtFileJSON{Path: res.Path, Changed: res.Changed, Cached: res.Cached}
		if res.Err != nil {
			f.Error = res.Err.Error()
		}
		payload.Files = append(payload.Files, f)
	}
	payload.Diagnostics = diagfmt.Build(rep.Diagnostics(o.maxDiagnostics()), rep.Files, diagfmt.JSONOpts{
		Paths:            diagPaths(o.cmd),
		IncludePositions: true,
		IncludeNotes:     true,
	})
	enc := json.NewEncoder(o.cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(payload)
}
