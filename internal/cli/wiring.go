package cli

import (
	"options-dashboard/internal/config"
	"options-dashboard/internal/dashboard"
	"options-dashboard/internal/optionchain"
	"options-dashboard/internal/provider"
	"options-dashboard/internal/screener"
	"options-dashboard/internal/symbols"
	"options-dashboard/internal/validator"
)

// services are the collaborators of one command invocation. All HTTP
// clients share one limiter.
type services struct {
	cfg   *config.Config
	yahoo *provider.YahooClient
	nse   *provider.NSEClient
}

func (app *App) services() *services {
	cfg := app.Config
	limiter := provider.NewLimiter(cfg.Provider)
	return &services{
		cfg:   cfg,
		yahoo: provider.NewYahooClient(cfg.Provider, cfg.Symbols.ExchangeSuffix, limiter, app.Logger),
		nse:   provider.NewNSEClient(cfg.Provider, cfg.Symbols.ListingURL, limiter, app.Logger),
	}
}

func (app *App) loader(s *services) *symbols.Loader {
	var primary symbols.Source
	if s.cfg.Symbols.UseRemote {
		primary = symbols.NewRemoteSource(s.nse)
	}
	return symbols.NewLoader(primary, symbols.NewFileSource(s.cfg.Symbols.File, s.cfg.Symbols.Column), app.Logger)
}

func (app *App) cache(s *services) *validator.Cache {
	v := validator.New(s.yahoo, s.cfg.Validator, app.Logger)
	return validator.NewCache(s.cfg.Validator.CacheFile, v, app.Logger)
}

func (app *App) refresher(s *services, chainSymbol string) *dashboard.Refresher {
	return dashboard.NewRefresher(
		app.loader(s),
		app.cache(s),
		screener.New(s.yahoo, s.cfg.Screener, app.Logger),
		optionchain.NewViewer(s.nse, app.Logger),
		dashboard.Options{
			TopN:         s.cfg.Screener.TopN,
			CacheTTL:     s.cfg.Validator.CacheTTL,
			ChainSymbol:  symbols.Normalize(chainSymbol),
			ChainStrikes: s.cfg.UI.ChainStrikes,
		},
		app.Logger,
	)
}
