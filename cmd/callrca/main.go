// Command callrca reads a UMTS drive-test NMF log and writes the call
// root-cause report as JSON.
//
//	callrca [flags] [log.nmf | log.nmf.gz | log.nmf.zst]
//
// With no path the log is read from stdin.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"

	"github.com/banshee-data/callrca/internal/analysis"
	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/monitoring"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/version"
)

var (
	configPath  = flag.String("config", "", "Tuning config file (.json, .yaml); defaults are used when empty")
	window      = flag.Float64("window", 0, "Snapshot window in seconds, overriding the config")
	outPath     = flag.String("out", "", "Write the report here instead of stdout")
	pretty      = flag.Bool("pretty", false, "Indent the JSON report")
	workers     = flag.Int("workers", 0, "Sessions classified in parallel (0 = GOMAXPROCS)")
	quiet       = flag.Bool("quiet", false, "Suppress diagnostics and the summary on stderr")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()
	if *showVersion {
		fmt.Printf("callrca %s built %s\n", version.String(), version.BuildTime)
		return
	}
	if flag.NArg() > 1 {
		log.Fatalf("expected at most one log file, got %d", flag.NArg())
	}
	if *quiet {
		monitoring.SetLogger(nil)
	}

	th, err := loadThresholds(*configPath, *window)
	if err != nil {
		log.Fatalf("config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var opts []analysis.Option
	if *workers > 0 {
		opts = append(opts, analysis.WithWorkers(*workers))
	}
	a := analysis.New(th, opts...)

	var rep *analysis.Report
	if path := flag.Arg(0); path != "" && path != "-" {
		rep, err = a.AnalyzeFile(ctx, path)
	} else {
		rep, err = a.AnalyzeReader(ctx, "stdin", os.Stdin)
	}
	if err != nil {
		log.Fatalf("analysis failed: %v", err)
	}

	if err := writeReport(*outPath, rep, *pretty); err != nil {
		log.Fatalf("write report: %v", err)
	}
	if !*quiet {
		fmt.Fprintln(os.Stderr, summaryLine(rep))
	}
}

// loadThresholds resolves the tuning file, if any, and applies a positive
// window override.
func loadThresholds(path string, windowSeconds float64) (config.Thresholds, error) {
	cfg := config.EmptyTuningConfig()
	if path != "" {
		loaded, err := config.LoadTuningConfig(path)
		if err != nil {
			return config.Thresholds{}, err
		}
		cfg = loaded
	}
	if windowSeconds != 0 {
		cfg.WindowSeconds = &windowSeconds
		if err := cfg.Validate(); err != nil {
			return config.Thresholds{}, err
		}
	}
	return cfg.Thresholds(), nil
}

func writeReport(path string, rep *analysis.Report, indent bool) error {
	var w io.Writer = os.Stdout
	if path != "" {
		f, err := os.Create(path)
		if err != nil {
			return err
		}
		defer f.Close()
		w = f
	}
	return encodeReport(w, rep, indent)
}

func encodeReport(w io.Writer, rep *analysis.Report, indent bool) error {
	enc := json.NewEncoder(w)
	if indent {
		enc.SetIndent("", "  ")
	}
	return enc.Encode(rep)
}

// summaryLine condenses a report into one human readable line.
func summaryLine(rep *analysis.Report) string {
	o := rep.Summary.Outcomes
	return fmt.Sprintf("%s calls: %s ok, %s setup failures, %s drops, %s incomplete, %s unclassified; %s lines skipped",
		humanize.Comma(int64(rep.Summary.TotalCaaSessions)),
		humanize.Comma(int64(o[session.Success])),
		humanize.Comma(int64(o[session.CallSetupFailure])),
		humanize.Comma(int64(o[session.DropCall])),
		humanize.Comma(int64(o[session.IncompleteEnd])),
		humanize.Comma(int64(o[session.Unclassified])),
		humanize.Comma(int64(rep.Diagnostics.SkippedTotal)))
}
