/*
Package log provides structured logging for Vitals built on zerolog.

All packages log through component child loggers created with WithComponent,
so every line carries a stable component field:

	logger := log.WithComponent("dispatcher")
	logger.Warn().Str("alert_key", key).Msg("alert suppressed by cooldown")

Init must be called once at process start. Console output is the default;
JSON output is intended for production where lines are shipped to a log
collector.
*/
package log
