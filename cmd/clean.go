// Package cmd — clean command.
// This is the main command that orchestrates the run:
// config → read or fetch → pipeline → write → report.
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/gaurav-prasanna/mailscrub/config"
	"github.com/gaurav-prasanna/mailscrub/core/batch"
	"github.com/gaurav-prasanna/mailscrub/core/fetch"
	"github.com/gaurav-prasanna/mailscrub/core/normalize"
	"github.com/gaurav-prasanna/mailscrub/core/output"
	"github.com/gaurav-prasanna/mailscrub/core/pipeline"
	"github.com/gaurav-prasanna/mailscrub/core/report"
)

// Flag variables.
var (
	flagOutput        string
	flagWidth         int
	flagNoMsoWrappers bool
	flagNoPreheader   bool
	flagNoCSSClean    bool
	flagVerbose       bool
	flagStatsJSON     bool
	flagText          bool
	flagOutputDir     string
	flagJobs          int
	flagConfig        string
)

var cleanCmd = &cobra.Command{
	Use:   "clean <input>...",
	Short: "Clean one or more email exports",
	Long: `Clean reads each input (a local file or an http(s) URL such as a campaign
"view in browser" link), removes editor bloat and writes <name>-clean.html
next to it, or into --output-dir.

Examples:
  mailscrub clean campaign.html
  mailscrub clean campaign.html -o - --no-mso-wrappers
  mailscrub clean exports/*.html --output-dir ./clean --jobs 4 --text
  mailscrub clean https://us1.campaign-archive.com/?u=abc&id=123 -v`,
	Args: cobra.MinimumNArgs(1),
	RunE: runClean,
}

func init() {
	rootCmd.AddCommand(cleanCmd)

	// Output flags.
	cleanCmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Output file, - for stdout (default: <input>-clean.html)")
	cleanCmd.Flags().StringVar(&flagOutputDir, "output-dir", "", "Directory for output files (default: next to the input)")
	cleanCmd.Flags().BoolVar(&flagText, "text", false, "Also write a plain-text alternative (<input>-clean.txt)")

	// Pipeline flags.
	cleanCmd.Flags().IntVarP(&flagWidth, "width", "w", 660, "Max width for MSO wrappers, in pixels")
	cleanCmd.Flags().BoolVar(&flagNoMsoWrappers, "no-mso-wrappers", false, "Do not add MSO conditional wrappers")
	cleanCmd.Flags().BoolVar(&flagNoPreheader, "no-preheader-fix", false, "Do not modify the preheader")
	cleanCmd.Flags().BoolVar(&flagNoCSSClean, "no-css-clean", false, "Do not purge unused CSS")

	// Reporting flags.
	cleanCmd.Flags().BoolVarP(&flagVerbose, "verbose", "v", false, "Show stats (lines, size, transforms)")
	cleanCmd.Flags().BoolVar(&flagStatsJSON, "stats-json", false, "Print stats as JSON on stdout")

	cleanCmd.Flags().IntVar(&flagJobs, "jobs", 1, "Number of inputs cleaned concurrently")
	cleanCmd.Flags().StringVar(&flagConfig, "config", "", "YAML configuration file")
}

func runClean(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfiguration(flagConfig)
	if err != nil {
		return err
	}
	applyFlags(cmd, cfg)
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	if flagOutput == batch.Stdout && (flagStatsJSON || flagVerbose) {
		return fmt.Errorf("--output - cannot be combined with --verbose or --stats-json")
	}

	log, err := cfg.Logging.Prepare()
	if err != nil {
		return fmt.Errorf("initializing logger: %w", err)
	}
	defer func() { _ = log.Sync() }()

	classifier, err := cfg.Classifier()
	if err != nil {
		return err
	}

	writer, err := output.New(flagOutputDir)
	if err != nil {
		return fmt.Errorf("initializing output writer: %w", err)
	}

	queue := batch.NewQueue()
	for _, in := range args {
		if !queue.Add(in) {
			log.Debug("Skipping duplicate input", zap.String("input", in))
		}
	}

	stdout := cmd.OutOrStdout()
	processor := batch.NewProcessor(
		pipeline.NewWithClassifier(classifier, log),
		fetch.New(log),
		normalize.New(),
		writer,
		batch.Settings{
			Options: cfg.Pipeline,
			Output:  flagOutput,
			Text:    flagText,
			Jobs:    flagJobs,
		},
		stdout,
		log,
	)

	summaries, runErr := processor.Run(cmd.Context(), queue.All())
	if err := printSummaries(stdout, summaries); err != nil {
		return err
	}
	if runErr != nil {
		return fmt.Errorf("%d of %d inputs failed: %w", queue.Len()-len(summaries), queue.Len(), runErr)
	}
	return nil
}

// applyFlags overrides configuration values with flags given explicitly on
// the command line.
func applyFlags(cmd *cobra.Command, cfg *config.Config) {
	flags := cmd.Flags()
	if flags.Changed("width") {
		cfg.Pipeline.Width = flagWidth
	}
	if flags.Changed("no-mso-wrappers") {
		cfg.Pipeline.MsoWrappers = !flagNoMsoWrappers
	}
	if flags.Changed("no-preheader-fix") {
		cfg.Pipeline.PreheaderFix = !flagNoPreheader
	}
	if flags.Changed("no-css-clean") {
		cfg.Pipeline.CSSClean = !flagNoCSSClean
	}
}

func printSummaries(w io.Writer, summaries []report.Summary) error {
	if flagStatsJSON {
		data, err := report.NewJSONRenderer().Render(summaries)
		if err != nil {
			return err
		}
		_, err = w.Write(data)
		return err
	}
	if flagOutput == batch.Stdout {
		return nil
	}
	for _, s := range summaries {
		fmt.Fprintf(w, "✓ Written: %s\n", s.Output)
		if flagVerbose {
			if err := report.WriteText(w, s); err != nil {
				return err
			}
		}
	}
	return nil
}
