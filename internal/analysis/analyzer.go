// Package analysis runs the two-pass root-cause pipeline over a drive-test
// log: the first pass routes records into the radio store, the signalling
// timeline and the session builder; the second pass finalizes every call and
// classifies the failed ones.
package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"runtime"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/banshee-data/callrca/internal/config"
	"github.com/banshee-data/callrca/internal/evidence"
	"github.com/banshee-data/callrca/internal/monitoring"
	"github.com/banshee-data/callrca/internal/narrative"
	"github.com/banshee-data/callrca/internal/nmf"
	"github.com/banshee-data/callrca/internal/radio"
	"github.com/banshee-data/callrca/internal/rca"
	"github.com/banshee-data/callrca/internal/session"
	"github.com/banshee-data/callrca/internal/snapshot"
	"github.com/banshee-data/callrca/internal/timeline"
	"github.com/banshee-data/callrca/internal/timeutil"
	"github.com/banshee-data/callrca/internal/version"
)

// Analyzer turns NMF input into a Report. It holds no per-run state and may
// be reused.
type Analyzer struct {
	th      config.Thresholds
	clock   timeutil.Clock
	newID   func() string
	workers int
}

// Option configures an Analyzer.
type Option func(*Analyzer)

// WithClock stamps reports with c instead of the wall clock.
func WithClock(c timeutil.Clock) Option {
	return func(a *Analyzer) { a.clock = c }
}

// WithIDFunc replaces the report id generator.
func WithIDFunc(f func() string) Option {
	return func(a *Analyzer) { a.newID = f }
}

// WithWorkers sets how many sessions are classified in parallel. Values
// below one mean one.
func WithWorkers(n int) Option {
	return func(a *Analyzer) { a.workers = max(1, n) }
}

// New returns an Analyzer using th.
func New(th config.Thresholds, opts ...Option) *Analyzer {
	a := &Analyzer{
		th:      th,
		clock:   timeutil.RealClock{},
		newID:   func() string { return uuid.New().String() },
		workers: runtime.GOMAXPROCS(0),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// run is the state of one analysis.
type run struct {
	th       config.Thresholds
	store    *radio.Store
	events   *timeline.Log
	sessions *session.Builder
	skips    *monitoring.SkipCounter
}

func (a *Analyzer) newRun(skips *monitoring.SkipCounter) *run {
	return &run{
		th:       a.th,
		store:    radio.NewStore(),
		events:   timeline.NewLog(),
		sessions: session.NewBuilder(skips),
		skips:    skips,
	}
}

func (r *run) ingest(rec nmf.Record) {
	switch rec.Kind() {
	case nmf.KindCallControl:
		if _, ok := r.sessions.Ingest(rec); ok {
			r.events.Add(rec)
		}
	case nmf.KindRadio:
		if !r.store.Add(rec) {
			r.skips.Add(monitoring.SkipEmptyRadioRow)
		}
		r.events.Add(rec)
	case nmf.KindTimeline:
		r.events.Add(rec)
	}
}

// Analyze runs the pipeline over already parsed records.
func (a *Analyzer) Analyze(records []nmf.Record) *Report {
	r := a.newRun(monitoring.NewSkipCounter())
	for _, rec := range records {
		r.ingest(rec)
	}
	return a.finish(r)
}

// AnalyzeReader parses an NMF stream and analyzes it. source names the
// stream in diagnostics. Skipped lines are counted, not returned as errors.
func (a *Analyzer) AnalyzeReader(ctx context.Context, source string, in io.Reader) (*Report, error) {
	skips := monitoring.NewSkipCounter()
	r := a.newRun(skips)
	rd := nmf.NewReader(in, a.th.RolloverThreshold, skips)
	for n := 0; ; n++ {
		if n%4096 == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}
		rec, err := rd.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("analyze %s: %w", source, err)
		}
		r.ingest(rec)
	}
	rep := a.finish(r)
	skips.Report(source)
	return rep, nil
}

// AnalyzeFile opens path, decompressing .gz and .zst logs, and analyzes it.
func (a *Analyzer) AnalyzeFile(ctx context.Context, path string) (*Report, error) {
	f, err := nmf.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return a.AnalyzeReader(ctx, path, f)
}

func (a *Analyzer) finish(r *run) *Report {
	sessions := r.sessions.Finalize()
	reports := make([]SessionReport, len(sessions))

	jobs := make(chan int)
	var wg sync.WaitGroup
	for w := 0; w < min(a.workers, max(1, len(sessions))); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for k := range jobs {
				reports[k] = r.analyzeSession(sessions[k])
			}
		}()
	}
	for k := range sessions {
		jobs <- k
	}
	close(jobs)
	wg.Wait()

	rep := &Report{
		ID:            a.newID(),
		GeneratedAt:   a.clock.Now().UTC().Format(time.RFC3339Nano),
		EngineVersion: version.String(),
		Summary:       newSummary(),
		Sessions:      reports,
		RadioSeries:   RadioSeries{ByDevice: r.store.Counts()},
		Diagnostics: Diagnostics{
			SkippedTotal: r.skips.Total(),
			Skipped:      r.skips.Counts(),
		},
	}
	for _, s := range sessions {
		rep.Summary.count(s.ResultType)
	}
	return rep
}

func trendBasis(rt session.ResultType, th config.Thresholds) string {
	if rt == session.CallSetupFailure {
		return fmt.Sprintf("last %gs before setup failure", th.WindowSeconds)
	}
	return fmt.Sprintf("last %gs before drop/end", th.WindowSeconds)
}

// analyzeSession runs the second pass for one finalized session. It only
// reads the shared store and timeline.
func (r *run) analyzeSession(s *session.Session) SessionReport {
	th := r.th
	failed := s.ResultType == session.CallSetupFailure || s.ResultType == session.DropCall
	dev := r.store.Device(s.DeviceID)
	events := r.events.Events(s.DeviceID)

	var snap *snapshot.Snapshot
	if failed && s.EndTsReal != nil {
		snap = snapshot.Build(dev, *s.EndTsReal, th)
		snap.TrendBasis = trendBasis(s.ResultType, th)
	}
	s.AttachTimeline(events)

	var bundle *evidence.Bundle
	if s.ResultType == session.CallSetupFailure {
		bundle = evidence.Build(s, dev, events, th)
	}

	cls := rca.Classify(s, snap, th)
	story := narrative.Build(narrative.Input{Session: s, Classification: cls, Snapshot: snap}, th)

	out := SessionReport{
		Session:                  s,
		StartTsIso:               timeutil.FormatMillisPtr(s.StartTs),
		ConnectedTsIso:           timeutil.FormatMillisPtr(s.ConnectedTs),
		EndTsCadIso:              timeutil.FormatMillisPtr(s.EndTsCad),
		EndTsCafIso:              timeutil.FormatMillisPtr(s.EndTsCaf),
		EndTsCareIso:             timeutil.FormatMillisPtr(s.EndTsCare),
		EndTsRealIso:             timeutil.FormatMillisPtr(s.EndTsReal),
		CallStartTs:              s.StartTs,
		Category:                 cls.Category,
		Domain:                   cls.Domain,
		Confidence:               cls.Confidence,
		Reason:                   cls.Reason,
		Classification:           Classification{Classification: cls, Narrative: story},
		Snapshot:                 snap,
		ContextBundle:            bundle,
		SetupFailureDeepAnalysis: rca.BuildDeepAnalysis(s, snap, bundle, cls, story.Recommendations, th),
	}
	out.CallStartTsIso = out.StartTsIso

	out.MarkerTs = snap.MarkerTs()
	if out.MarkerTs == nil {
		out.MarkerTs = s.EndTsReal
	}
	out.MarkerTsIso = timeutil.FormatMillisPtr(out.MarkerTs)

	if s.EndTsReal != nil {
		start := *s.EndTsReal - th.WindowMillis()
		out.AnalysisWindowStartTs = &start
		out.AnalysisWindowStartTsIso = timeutil.FormatMillisPtr(&start)
	}
	return out
}
