// Package logging builds the structured logger used across fieldflow.
// Grounded on zap usage in the pack's config-loading code (e.g.
// zap.Strings(...) field construction for warnings): fatal I/O errors on
// one source (spec.md §7) are logged as warnings with structured
// filename/error fields so the run can continue onto the next source,
// while a parser's *SyntaxError aborts the run with an Error-level log
// carrying file and line fields.
package logging

import "go.uber.org/zap"

// New builds a production logger, or a development one (human-readable,
// stack traces on Warn+) when verbose is set.
func New(verbose bool) (*zap.Logger, error) {
	if verbose {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// SourceOpenFailed logs a non-fatal I/O error: the named source could not
// be opened, but the run continues onto the remaining sources.
func SourceOpenFailed(log *zap.Logger, filename string, err error) {
	log.Warn("could not open source, skipping", zap.String("filename", filename), zap.Error(err))
}

// ParseFailed logs a fatal parse error that aborts the entire run.
func ParseFailed(log *zap.Logger, filename string, line int64, err error) {
	log.Error("fatal parse error", zap.String("filename", filename), zap.Int64("line", line), zap.Error(err))
}
