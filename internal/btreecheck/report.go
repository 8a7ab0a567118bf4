package btreecheck

import "github.com/rs/zerolog"

// Reporter is the fatal-reporting sink the core delegates to. A structural
// violation is surfaced by returning a *StructuralError up the call chain;
// Reporter exists alongside that for the "unknown feature" channel and for
// narration a caller may want logged as the walk proceeds.
type Reporter interface {
	Report(subsystem, msg string, blockNr uint64)
	ReportUnknown(feature string)
}

// LogReporter is the default Reporter, logging through zerolog. It does not
// itself abort the process; cmd/ decides what a logged structural report
// means for the exit code.
type LogReporter struct {
	log zerolog.Logger
}

func NewLogReporter(log zerolog.Logger) *LogReporter {
	return &LogReporter{log: log}
}

func (r *LogReporter) Report(subsystem, msg string, blockNr uint64) {
	r.log.Error().Str("subsystem", subsystem).Uint64("block", blockNr).Msg(msg)
}

func (r *LogReporter) ReportUnknown(feature string) {
	r.log.Warn().Str("feature", feature).Msg("unsupported feature encountered")
}
