// Package logging provides the zap logger used by the rainctl binaries.
//
// Logging is silent by default so command output stays clean; setting
// RAINMACHINE_LOG_LEVEL enables structured diagnostics on stderr. The
// library itself never uses this package; library consumers inject their
// own *zap.Logger through rainmachine.WithLogger.
package logging
