package cli

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"options-dashboard/internal/models"
)

const chartTemplate = `{"chart":{"result":[{"timestamp":[1732000000,1732086400],
"indicators":{"quote":[{"open":[100,101],"high":[105,104],"low":[95,96],"close":[100,%s],"volume":[1000,1200]}]}}],"error":null}}`

func newFakeMarket(t *testing.T) *httptest.Server {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("/chart/TCS.NS", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, chartTemplate, "110")
	})
	mux.HandleFunc("/chart/INFY.NS", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprintf(w, chartTemplate, "100")
	})
	mux.HandleFunc("/chart/", func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

func writeConfigDir(t *testing.T, srvURL string) string {
	t.Helper()
	dir := t.TempDir()
	toml := fmt.Sprintf(`
[symbols]
file = "fno.csv"

[validator]
base_delay = "1ms"
pause_min = "0s"
pause_max = "0s"

[provider]
history_url = "%s/chart"
nse_base_url = "%s"
requests_per_second = 1000.0
burst = 10

[logging]
file = false
`, srvURL, srvURL)
	if err := os.WriteFile(filepath.Join(dir, "dashboard.toml"), []byte(toml), 0644); err != nil {
		t.Fatal(err)
	}
	csv := "SYMBOL,LOT\ntcs,175\nInfy,400\nbogus,1\nTCS,175\n"
	if err := os.WriteFile(filepath.Join(dir, "fno.csv"), []byte(csv), 0644); err != nil {
		t.Fatal(err)
	}
	return dir
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	app := &App{Logger: zerolog.Nop(), LogOut: io.Discard}
	root := NewRootCmd(app)
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(io.Discard)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestVersionCommand(t *testing.T) {
	out, err := execute(t, "version", "--json")
	if err != nil {
		t.Fatal(err)
	}
	var v map[string]string
	if err := json.Unmarshal([]byte(out), &v); err != nil || v["version"] != Version {
		t.Errorf("version output = %q (%v)", out, err)
	}
}

func TestConfigPathSkipsLoading(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "missing")
	out, err := execute(t, "--config", dir, "config", "path")
	if err != nil {
		t.Fatal(err)
	}
	if strings.TrimSpace(out) != dir {
		t.Errorf("path = %q", out)
	}
	if _, err := os.Stat(filepath.Join(dir, "dashboard.toml")); !os.IsNotExist(err) {
		t.Error("config path should not create a template")
	}
}

func TestMissingConfigCreatesTemplate(t *testing.T) {
	dir := t.TempDir()
	_, err := execute(t, "--config", dir, "config", "validate")
	if err == nil || !strings.Contains(err.Error(), "created template") {
		t.Fatalf("err = %v", err)
	}
}

func TestScreenJSON(t *testing.T) {
	srv := newFakeMarket(t)
	dir := writeConfigDir(t, srv.URL)

	out, err := execute(t, "--config", dir, "--json", "screen")
	if err != nil {
		t.Fatalf("screen: %v\n%s", err, out)
	}

	var state models.DashboardState
	if err := json.Unmarshal([]byte(out), &state); err != nil {
		t.Fatalf("invalid JSON: %v\n%s", err, out)
	}
	if state.Candidates != 3 {
		t.Errorf("Candidates = %d, want 3", state.Candidates)
	}
	if strings.Join(state.Validated, ",") != "TCS,INFY" {
		t.Errorf("Validated = %v", state.Validated)
	}
	if len(state.Breakouts) != 1 || state.Breakouts[0].Symbol != "TCS" {
		t.Fatalf("Breakouts = %+v", state.Breakouts)
	}
	if state.Breakouts[0].Signal != "Above 20EMA | Above Yesterday High" {
		t.Errorf("Signal = %q", state.Breakouts[0].Signal)
	}
	if len(state.Suggestions) != 1 || state.Suggestions[0].Strike != 100 {
		t.Errorf("Suggestions = %+v", state.Suggestions)
	}

	cache, err := os.ReadFile(filepath.Join(dir, "valid_symbols.csv"))
	if err != nil {
		t.Fatalf("cache not written: %v", err)
	}
	if !strings.HasPrefix(string(cache), "SYMBOL\n") {
		t.Errorf("cache = %q", cache)
	}

	// Second run is served from the cache.
	out, err = execute(t, "--config", dir, "--json", "screen")
	if err != nil {
		t.Fatal(err)
	}
	if err := json.Unmarshal([]byte(out), &state); err != nil || !state.CacheHit {
		t.Errorf("expected cache hit: %v %+v", err, state)
	}
}

func TestSymbolsListAndClearCache(t *testing.T) {
	srv := newFakeMarket(t)
	dir := writeConfigDir(t, srv.URL)

	out, err := execute(t, "--config", dir, "--json", "symbols", "list")
	if err != nil {
		t.Fatal(err)
	}
	var load models.SymbolLoad
	if err := json.Unmarshal([]byte(out), &load); err != nil {
		t.Fatal(err)
	}
	if strings.Join(load.Symbols, ",") != "TCS,INFY,BOGUS" || load.Status != models.SourcePrimary {
		t.Errorf("load = %+v", load)
	}

	if err := os.WriteFile(filepath.Join(dir, "valid_symbols.csv"), []byte("SYMBOL\nTCS\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := execute(t, "--config", dir, "symbols", "clear-cache"); err != nil {
		t.Fatal(err)
	}
	if _, err := os.Stat(filepath.Join(dir, "valid_symbols.csv")); !os.IsNotExist(err) {
		t.Error("cache file still present")
	}
}

func TestRunRejectsBadInterval(t *testing.T) {
	srv := newFakeMarket(t)
	dir := writeConfigDir(t, srv.URL)

	_, err := execute(t, "--config", dir, "run", "--interval", "5s")
	if err == nil || !strings.Contains(err.Error(), "refresh_interval") {
		t.Errorf("err = %v", err)
	}
}

func TestConfigShowMasksSecrets(t *testing.T) {
	srv := newFakeMarket(t)
	dir := writeConfigDir(t, srv.URL)
	f, err := os.OpenFile(filepath.Join(dir, "dashboard.toml"), os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		t.Fatal(err)
	}
	fmt.Fprint(f, "\n[notifications.telegram]\nenabled = true\nbot_token = \"123456:SECRETTOKEN\"\nchat_id = \"42\"\n")
	f.Close()

	for _, args := range [][]string{{"config", "show"}, {"--json", "config", "show"}} {
		out, err := execute(t, append([]string{"--config", dir}, args...)...)
		if err != nil {
			t.Fatal(err)
		}
		if strings.Contains(out, "SECRETTOKEN") {
			t.Errorf("%v leaked the bot token:\n%s", args, out)
		}
		if !strings.Contains(out, "1234") {
			t.Errorf("%v should show the masked token prefix:\n%s", args, out)
		}
	}
}
