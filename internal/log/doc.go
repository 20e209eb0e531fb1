// Package log builds the slog loggers of cnesreport.
//
// Every logger returned here wraps its output handler in a SecureHandler,
// which masks SonarQube access tokens and HTTP credentials before they
// reach the output. The token given with --token is logged as "***REDACTED***"
// even in verbose mode:
//
//	logger := log.NewSecureLogger(os.Stderr, verbose)
//	logger.Debug("connecting", "server", cfg.ServerURL, "token", cfg.Token)
//	slog.SetDefault(logger)
package log
