// Package bootstrap is the single initialization point of an exportkit
// application.
//
// NewApp loads nothing by itself: give it a validated config (see
// config.LoadConfig) and a part catalog. Starting the app scans the
// catalog, binds the export records into the configured backend (arena,
// dig or vessel) and publishes the result as App.Exports; optional
// components export telemetry over OTLP and serve the diagnostics
// endpoint.
//
//	var cfg config.AppConfig
//	if err := config.LoadConfig("orders", &cfg); err != nil {
//	    return err
//	}
//	app, err := bootstrap.NewApp(&cfg, catalog.New().MustProvide(NewOrderService))
//	if err != nil {
//	    return err
//	}
//	return app.RunTask(ctx, func(ctx context.Context) error {
//	    svc, err := facade.GetExportedValue[OrderService](app.Exports)
//	    ...
//	})
//
// Components start in registration order (telemetry, exports, diagnostics,
// then application components) and stop in reverse; stopping the exports
// component disposes the shared instances.
package bootstrap
