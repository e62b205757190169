package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ppiankov/truthquest/internal/model"
	"github.com/ppiankov/truthquest/internal/pipeline"
	"github.com/ppiankov/truthquest/internal/transcript"
)

var (
	outJSON        string
	outMD          string
	checkMode      string
	videoRef       string
	transcriptsDir string
	timeout        time.Duration
	verifiers      int
	noCache        bool
	enrichPages    int
	llmProvider    string
	llmModel       string
	skipPreflight  bool
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze [transcript-file]",
	Short: "Fact-check one transcript and grade its credibility",
	Long: `Analyze runs one transcript through the full pipeline:
- Extract the factual claims with a language model
- Pick a random sample of 5-7 claims (or all of them with --mode full)
- Search the web for evidence on each claim and judge it
- Aggregate the verdicts into a 0-100 score and letter grade

The transcript is a .txt file or a JSON file shaped like
{"full": "...", "segments": [...]}. With --video, the transcript is read from
<transcripts-dir>/<video-id>.json or .txt instead.

Example:
  truthquest analyze talk.txt
  truthquest analyze talk.json --mode full --json report.json --md report.md
  truthquest analyze --video https://youtu.be/dQw4w9WgXcQ --transcripts-dir ./transcripts`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Input flags
	analyzeCmd.Flags().StringVar(&videoRef, "video", "", "YouTube URL or video id to analyze instead of a file")
	analyzeCmd.Flags().StringVar(&transcriptsDir, "transcripts-dir", "", "directory of stored transcripts (overrides transcripts.dir)")
	analyzeCmd.Flags().StringVar(&checkMode, "mode", "sample", "check mode: sample (5-7 facts) or full")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path (empty to skip)")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	addRunFlags(analyzeCmd)
	analyzeCmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "overall analysis timeout")
}

// addRunFlags registers the flags shared by analyze and batch
func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().IntVar(&verifiers, "verifiers", 0, "concurrent fact verifications (overrides concurrency.verifiers)")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the search result cache")
	cmd.Flags().IntVar(&enrichPages, "enrich", -1, "fetch the top N result pages per claim for richer evidence (0 disables)")
	cmd.Flags().StringVar(&llmProvider, "llm-provider", "", "LLM provider (openai, anthropic, ollama)")
	cmd.Flags().StringVar(&llmModel, "llm-model", "", "LLM model name")
	cmd.Flags().BoolVar(&skipPreflight, "skip-preflight", false, "skip checking that the language models are reachable before running")
}

// preflight fails fast when a configured language model cannot be reached
func preflight(ctx context.Context, p *pipeline.Pipeline) error {
	if skipPreflight {
		return nil
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "Checking language model availability...\n")
	}
	if err := p.Preflight(ctx); err != nil {
		return fmt.Errorf("preflight: %w (use --skip-preflight to run anyway)", err)
	}
	return nil
}

// applyRunFlags overlays explicitly set flags onto cfg
func applyRunFlags(cfg *model.Config) {
	if verifiers > 0 {
		cfg.Concurrency.Verifiers = verifiers
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if enrichPages >= 0 {
		cfg.Search.EnrichPages = enrichPages
	}
	if llmProvider != "" {
		cfg.LLM.Provider = llmProvider
		cfg.LLM.APIKey = ""
	}
	if llmModel != "" {
		cfg.LLM.Model = llmModel
	}
	if transcriptsDir != "" {
		cfg.Transcripts.Dir = transcriptsDir
	}
	if verbose {
		cfg.Output.Verbose = true
	}
}

// buildPipeline loads configuration, applies flags and wires the pipeline
func buildPipeline() (*model.Config, *pipeline.Pipeline, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	applyRunFlags(cfg)
	applyProviderEnv(cfg, os.Getenv)

	var log io.Writer = io.Discard
	if cfg.Output.Verbose {
		log = os.Stderr
	}

	p, err := pipeline.NewFromConfig(cfg, log)
	if err != nil {
		return nil, nil, err
	}
	return cfg, p, nil
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	if len(args) == 0 && videoRef == "" {
		return fmt.Errorf("provide a transcript file or --video")
	}
	if len(args) == 1 && videoRef != "" {
		return fmt.Errorf("provide either a transcript file or --video, not both")
	}

	mode, err := model.ParseMode(checkMode)
	if err != nil {
		return err
	}

	_, p, err := buildPipeline()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	if err := preflight(ctx, p); err != nil {
		return err
	}

	var t *transcript.Transcript
	if videoRef != "" {
		t, err = p.FetchTranscript(ctx, videoRef)
	} else {
		t, err = transcript.Load(args[0])
	}
	if err != nil {
		return fmt.Errorf("load transcript: %w", err)
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing %d transcript segments (%s mode)\n", len(t.Segments), mode)
		fmt.Fprintf(os.Stderr, "Timeout: %v\n\n", timeout)
	}

	report, err := p.RunTranscript(ctx, t, mode)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if outJSON != "" {
		if err := pipeline.WriteJSON(report, outJSON); err != nil {
			return fmt.Errorf("render JSON: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote JSON: %s\n", outJSON)
		}
	}
	if outMD != "" {
		if err := pipeline.WriteMarkdown(report, outMD); err != nil {
			return fmt.Errorf("render markdown: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote Markdown: %s\n", outMD)
		}
	}

	pipeline.PrintSummary(os.Stdout, report)
	return nil
}
