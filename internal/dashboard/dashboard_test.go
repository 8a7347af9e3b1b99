package dashboard

import (
	"context"
	"errors"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"options-dashboard/internal/config"
	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
	"options-dashboard/internal/notify"
	"options-dashboard/internal/screener"
	"options-dashboard/internal/validator"
)

type fakeLoader struct {
	load models.SymbolLoad
	err  error
}

func (f *fakeLoader) Load(ctx context.Context) (models.SymbolLoad, error) { return f.load, f.err }

type fakeCache struct {
	res        validator.CacheResult
	candidates []string
	ttl        time.Duration
}

func (f *fakeCache) GetOrValidate(ctx context.Context, candidates []string, ttl time.Duration) (validator.CacheResult, error) {
	f.candidates, f.ttl = candidates, ttl
	return f.res, nil
}

type fakeScanner struct {
	res screener.Result
	got []string
}

func (f *fakeScanner) Run(ctx context.Context, symbols []string) (screener.Result, error) {
	f.got = symbols
	return f.res, nil
}

type fakeChains struct {
	chain models.OptionChain
	err   error
	asked []string
}

func (f *fakeChains) Chain(ctx context.Context, symbol string) (models.OptionChain, error) {
	f.asked = append(f.asked, symbol)
	return f.chain, f.err
}

func newFixture() (*fakeLoader, *fakeCache, *fakeScanner, *fakeChains) {
	loader := &fakeLoader{load: models.SymbolLoad{
		Symbols: []string{"TCS", "SBIN", "INFY"},
		Source:  "file",
		Status:  models.SourceFallback,
		Warning: "remote symbol source failed",
	}}
	cache := &fakeCache{res: validator.CacheResult{Symbols: []string{"TCS", "SBIN"}, Hit: true}}
	scanner := &fakeScanner{res: screener.Result{
		Scanned: 2,
		Rows: []models.BreakoutRow{
			{Symbol: "SBIN", Price: 585, Signal: "Below Yesterday Low"},
			{Symbol: "TCS", Price: 975, Signal: "Above 20EMA"},
			{Symbol: "FLAT", Price: 5000},
		},
		Warnings: []string{"INFY: history unavailable"},
	}}
	chains := &fakeChains{chain: models.OptionChain{Symbol: "TCS", Underlying: 975, Rows: []models.OptionChainRow{
		{Strike: 900}, {Strike: 950}, {Strike: 1000}, {Strike: 1050},
	}}}
	return loader, cache, scanner, chains
}

func TestRefreshAssemblesState(t *testing.T) {
	loader, cache, scanner, chains := newFixture()
	r := NewRefresher(loader, cache, scanner, chains, Options{TopN: 10, CacheTTL: time.Hour, ChainSymbol: "TCS", ChainStrikes: 1}, zerolog.Nop())

	state, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}

	if cache.ttl != time.Hour || len(cache.candidates) != 3 {
		t.Errorf("cache called with %v %v", cache.candidates, cache.ttl)
	}
	if len(scanner.got) != 2 {
		t.Errorf("scanner got %v", scanner.got)
	}
	if state.Candidates != 3 || !state.CacheHit || state.Scanned != 2 {
		t.Errorf("counts wrong: %+v", state)
	}
	if len(state.Breakouts) != 2 || state.Breakouts[0].Symbol != "TCS" {
		t.Errorf("breakouts = %+v", state.Breakouts)
	}
	if len(state.Suggestions) != 2 || state.Suggestions[0].Strike != 1000 || state.Suggestions[1].Direction != models.DirectionPut {
		t.Errorf("suggestions = %+v", state.Suggestions)
	}
	if state.Chain == nil || len(state.Chain.Rows) != 3 {
		t.Errorf("chain not windowed: %+v", state.Chain)
	}
	if len(state.Warnings) != 2 || !state.Load.Degraded() {
		t.Errorf("warnings = %v", state.Warnings)
	}
	if state.GeneratedAt.IsZero() {
		t.Error("GeneratedAt not set")
	}
}

func TestRefreshLoaderErrorIsFatal(t *testing.T) {
	loader, cache, scanner, chains := newFixture()
	loader.err = errors.New("no symbol file")

	_, err := NewRefresher(loader, cache, scanner, chains, Options{}, zerolog.Nop()).Refresh(context.Background())
	if err == nil || !strings.Contains(err.Error(), "no symbol file") {
		t.Fatalf("err = %v", err)
	}
	if scanner.got != nil {
		t.Error("scanner ran after loader failure")
	}
}

func TestRefreshChainErrorIsWarning(t *testing.T) {
	loader, cache, scanner, chains := newFixture()
	chains.err = errors.New("circuit breaker is open")

	r := NewRefresher(loader, cache, scanner, chains, Options{}, zerolog.Nop())
	state, err := r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if len(chains.asked) != 0 || state.Chain != nil {
		t.Error("chain fetched without a selection")
	}

	r.SelectChain("SBIN")
	state, err = r.Refresh(context.Background())
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if state.Chain != nil {
		t.Error("chain set despite error")
	}
	last := state.Warnings[len(state.Warnings)-1]
	if !strings.Contains(last, "option chain SBIN") {
		t.Errorf("warnings = %v", state.Warnings)
	}
}

func TestClampInterval(t *testing.T) {
	tests := map[time.Duration]time.Duration{
		time.Second:      config.MinRefreshInterval,
		45 * time.Second: 45 * time.Second,
		time.Hour:        config.MaxRefreshInterval,
	}
	for in, want := range tests {
		if got := ClampInterval(in); got != want {
			t.Errorf("ClampInterval(%v) = %v, want %v", in, got, want)
		}
	}
}

type scriptedRefresher struct {
	mu     sync.Mutex
	states []models.DashboardState
	err    error
	calls  int
}

func (s *scriptedRefresher) Refresh(ctx context.Context) (models.DashboardState, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := s.calls
	s.calls++
	if s.err != nil {
		return models.DashboardState{}, s.err
	}
	if i >= len(s.states) {
		i = len(s.states) - 1
	}
	return s.states[i], nil
}

type recordingSink struct {
	mu       sync.Mutex
	rendered []models.DashboardState
	errs     []error
}

func (s *recordingSink) Render(state models.DashboardState) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rendered = append(s.rendered, state)
	return nil
}

func (s *recordingSink) RenderError(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
}

type recordingNotifier struct {
	notify.NoOpNotifier
	sent [][]models.BreakoutRow
}

func (n *recordingNotifier) SendBreakouts(ctx context.Context, rows []models.BreakoutRow) error {
	n.sent = append(n.sent, rows)
	return nil
}

func breakouts(symbols ...string) models.DashboardState {
	var rows []models.BreakoutRow
	for _, s := range symbols {
		rows = append(rows, models.BreakoutRow{Symbol: s, Signal: "Above 20EMA"})
	}
	return models.DashboardState{Breakouts: rows}
}

func TestTickNotifiesNewBreakouts(t *testing.T) {
	ref := &scriptedRefresher{states: []models.DashboardState{
		breakouts("TCS", "SBIN"),
		breakouts("TCS", "INFY"),
		breakouts("TCS", "INFY"),
		breakouts("SBIN"),
	}}
	sink := &recordingSink{}
	notifier := &recordingNotifier{}
	r := NewRunner(ref, sink, notifier, time.Minute, zerolog.Nop())

	for i := 0; i < 4; i++ {
		r.Tick(context.Background())
	}

	if len(sink.rendered) != 4 || r.Cycles() != 4 {
		t.Fatalf("rendered %d, cycles %d", len(sink.rendered), r.Cycles())
	}
	if len(notifier.sent) != 2 {
		t.Fatalf("notifications = %v", notifier.sent)
	}
	if notifier.sent[0][0].Symbol != "INFY" || notifier.sent[1][0].Symbol != "SBIN" {
		t.Errorf("notifications = %v", notifier.sent)
	}
}

func TestTickRendersErrors(t *testing.T) {
	ref := &scriptedRefresher{err: errors.New("symbol file missing")}
	sink := &recordingSink{}
	r := NewRunner(ref, sink, nil, time.Minute, zerolog.Nop())

	if err := r.Tick(context.Background()); err == nil || apperrors.IsFatal(err) {
		t.Errorf("Tick err = %v, want a non-fatal error", err)
	}
	if len(sink.errs) != 1 || len(sink.rendered) != 0 {
		t.Errorf("errs=%v rendered=%d", sink.errs, len(sink.rendered))
	}
}

func TestRunAbortsOnFatalSourceError(t *testing.T) {
	missing := apperrors.NewSourceError("file", "/missing.csv", os.ErrNotExist)
	ref := &scriptedRefresher{err: apperrors.Wrap(missing, "loading symbols")}
	sink := &recordingSink{}
	r := NewRunner(ref, sink, nil, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	err := r.Run(ctx)
	if !errors.Is(err, os.ErrNotExist) {
		t.Fatalf("Run err = %v, want the source error", err)
	}
	if ctx.Err() != nil {
		t.Error("Run waited for the context instead of aborting")
	}
	if r.Cycles() != 1 || len(sink.errs) != 1 {
		t.Errorf("cycles=%d errs=%d", r.Cycles(), len(sink.errs))
	}
}

func TestRunKeepsGoingAfterTransientError(t *testing.T) {
	ref := &scriptedRefresher{err: errors.New("yahoo: connection reset")}
	r := NewRunner(ref, &recordingSink{}, nil, time.Minute, zerolog.Nop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	select {
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(100 * time.Millisecond):
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	ref := &scriptedRefresher{states: []models.DashboardState{breakouts("TCS")}}
	sink := &recordingSink{}
	r := NewRunner(ref, sink, nil, time.Second, zerolog.Nop())
	if r.Interval() != config.MinRefreshInterval {
		t.Errorf("interval not clamped: %v", r.Interval())
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	deadline := time.After(5 * time.Second)
	for r.Cycles() < 1 {
		select {
		case <-deadline:
			t.Fatal("first refresh did not run")
		case <-time.After(10 * time.Millisecond):
		}
	}
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
	if r.Cycles() != 1 {
		t.Errorf("cycles = %d, want 1", r.Cycles())
	}
}

type recordingSelector struct {
	picks []string
}

func (s *recordingSelector) SelectChain(symbol string) {
	s.picks = append(s.picks, symbol)
}

func TestWatchSelection(t *testing.T) {
	sel := &recordingSelector{}
	WatchSelection(context.Background(), strings.NewReader("tcs\n\n  m&m \n-\n***\nsbin"), sel, zerolog.Nop())

	want := []string{"TCS", "MM", "", "SBIN"}
	if strings.Join(sel.picks, ",") != strings.Join(want, ",") || len(sel.picks) != len(want) {
		t.Errorf("picks = %q, want %q", sel.picks, want)
	}
}

func TestWatchSelectionDrivesRefresh(t *testing.T) {
	loader, cache, scanner, chains := newFixture()
	r := NewRefresher(loader, cache, scanner, chains, Options{}, zerolog.Nop())

	WatchSelection(context.Background(), strings.NewReader("infy\n"), r, zerolog.Nop())
	if _, err := r.Refresh(context.Background()); err != nil {
		t.Fatal(err)
	}
	if len(chains.asked) != 1 || chains.asked[0] != "INFY" {
		t.Errorf("chain requests = %v", chains.asked)
	}
}
