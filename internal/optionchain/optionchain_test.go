package optionchain

import (
	"context"
	"errors"
	"testing"

	"github.com/rs/zerolog"

	apperrors "options-dashboard/internal/errors"
	"options-dashboard/internal/models"
	"options-dashboard/internal/provider"
)

type fakeChain struct {
	payload *provider.ChainPayload
	err     error
}

func (f *fakeChain) FetchChainPayload(ctx context.Context, symbol string) (*provider.ChainPayload, error) {
	return f.payload, f.err
}

func side(strike, ltp, oi float64) *provider.ChainSide {
	return &provider.ChainSide{StrikePrice: strike, LastPrice: ltp, OpenInterest: oi}
}

func samplePayload() *provider.ChainPayload {
	return &provider.ChainPayload{Records: provider.ChainRecords{
		ExpiryDates:     []string{"28-Nov-2024", "26-Dec-2024"},
		Timestamp:       "22-Nov-2024 15:30:00",
		UnderlyingValue: 1287,
		Data: []provider.ChainRecord{
			{StrikePrice: 1300, ExpiryDate: "28-Nov-2024", CE: side(1300, 12.5, 5000), PE: side(1300, 24, 3100)},
			{StrikePrice: 1250, ExpiryDate: "28-Nov-2024", CE: side(1250, 41, 2000), PE: side(1250, 4.1, 7000)},
			{StrikePrice: 1350, ExpiryDate: "28-Nov-2024", CE: side(1350, 2, 9000)},
			{StrikePrice: 1200, ExpiryDate: "28-Nov-2024", PE: side(1200, 1.2, 12000)},
			{StrikePrice: 1300, ExpiryDate: "26-Dec-2024", CE: side(1300, 40, 100), PE: side(1300, 50, 100)},
		},
	}}
}

func TestFlattenDropsSingleSided(t *testing.T) {
	chain := Flatten("RELIANCE", samplePayload())

	if len(chain.Rows) != 2 {
		t.Fatalf("rows = %+v", chain.Rows)
	}
	if chain.Rows[0].Strike != 1250 || chain.Rows[1].Strike != 1300 {
		t.Errorf("rows not sorted by strike: %+v", chain.Rows)
	}
	want := models.OptionChainRow{Strike: 1300, CallPrice: 12.5, CallOI: 5000, PutPrice: 24, PutOI: 3100}
	if chain.Rows[1] != want {
		t.Errorf("row = %+v, want %+v", chain.Rows[1], want)
	}
	if chain.Expiry != "28-Nov-2024" || chain.Underlying != 1287 || chain.Timestamp == "" {
		t.Errorf("metadata not carried: %+v", chain)
	}
}

func TestFlattenWithoutExpiryList(t *testing.T) {
	payload := &provider.ChainPayload{Records: provider.ChainRecords{Data: []provider.ChainRecord{
		{StrikePrice: 100, CE: side(100, 1, 1), PE: side(100, 2, 2)},
		{StrikePrice: 100, ExpiryDate: "x", CE: side(100, 3, 3), PE: side(100, 4, 4)},
	}}}
	if chain := Flatten("X", payload); len(chain.Rows) != 2 {
		t.Errorf("rows = %+v", chain.Rows)
	}
	if chain := Flatten("X", nil); len(chain.Rows) != 0 {
		t.Errorf("nil payload should produce no rows")
	}
}

func TestViewerChain(t *testing.T) {
	v := NewViewer(&fakeChain{payload: samplePayload()}, zerolog.Nop())
	chain, err := v.Chain(context.Background(), "RELIANCE")
	if err != nil {
		t.Fatalf("Chain: %v", err)
	}
	if chain.Symbol != "RELIANCE" || chain.FetchedAt.IsZero() {
		t.Errorf("unexpected chain: %+v", chain)
	}
}

func TestViewerChainErrors(t *testing.T) {
	v := NewViewer(&fakeChain{err: apperrors.ErrCircuitOpen}, zerolog.Nop())
	if _, err := v.Chain(context.Background(), "TCS"); !errors.Is(err, apperrors.ErrCircuitOpen) {
		t.Errorf("err = %v", err)
	}

	empty := &provider.ChainPayload{Records: provider.ChainRecords{Data: []provider.ChainRecord{
		{StrikePrice: 100, CE: side(100, 1, 1)},
	}}}
	v = NewViewer(&fakeChain{payload: empty}, zerolog.Nop())
	if _, err := v.Chain(context.Background(), "TCS"); !errors.Is(err, apperrors.ErrNoData) {
		t.Errorf("err = %v, want ErrNoData", err)
	}
}

func TestWindow(t *testing.T) {
	chain := models.OptionChain{Underlying: 1310}
	for s := 1000.0; s <= 1600; s += 50 {
		chain.Rows = append(chain.Rows, models.OptionChainRow{Strike: s})
	}

	w := Window(chain, 2)
	if len(w.Rows) != 5 || w.Rows[0].Strike != 1200 || w.Rows[4].Strike != 1400 {
		t.Errorf("window = %+v", w.Rows)
	}

	chain.Underlying = 1010
	w = Window(chain, 3)
	if len(w.Rows) != 4 || w.Rows[0].Strike != 1000 {
		t.Errorf("window at lower edge = %+v", w.Rows)
	}

	if got := Window(chain, 0); len(got.Rows) != len(chain.Rows) {
		t.Errorf("n=0 should not trim")
	}
}
