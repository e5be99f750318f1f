// Package logging sets up the global logger with telemetry hooks.
// For this to work this package needs to be imported with the blank
// identifier by the binary.
// It also exports a component logger constructor for packages that want
// their entries tagged without building fields by hand.
package logging

import (
	"os"
	"strconv"
	"strings"

	log "github.com/sirupsen/logrus"
	"go.opentelemetry.io/otel/trace"
)

// ComponentField is the field every component logger carries.
const ComponentField = "component"

// init adds the context hooks and reads the level and formatter from the
// environment. At debug level the caller is reported too.
func init() {
	log.AddHook(&logrusContextHook{})
	log.AddHook(&logrusFieldFilterHook{})

	level, err := levelFromEnv()
	if err != nil {
		log.Fatal(err)
	}
	log.SetLevel(level)

	log.SetFormatter(formatterFromEnv())

	if log.StandardLogger().GetLevel() == log.DebugLevel {
		log.SetReportCaller(true)
	}
}

// levelFromEnv parses LOG_LEVEL, info when unset.
func levelFromEnv() (log.Level, error) {
	logLevel, ok := os.LookupEnv("LOG_LEVEL")
	if !ok {
		logLevel = "info"
	}

	return log.ParseLevel(strings.ToLower(logLevel))
}

// formatterFromEnv returns a new formatter based on LOG_FORMAT.
func formatterFromEnv() log.Formatter {
	if os.Getenv("LOG_FORMAT") == "json" {
		return &log.JSONFormatter{}
	}

	return &log.TextFormatter{}
}

// NewComponentLogger returns an entry on the standard logger tagged with the
// component name.
func NewComponentLogger(component string) *log.Entry {
	return log.WithField(ComponentField, component)
}

type logrusContextHook struct {
}

func (hook *logrusContextHook) Levels() []log.Level {
	return log.AllLevels
}

// Fire extracts the trace and span ids from the entry context and adds them
// as dd.trace_id and dd.span_id, the Datadog naming.
func (hook *logrusContextHook) Fire(entry *log.Entry) error {
	span := trace.SpanFromContext(entry.Context).SpanContext()

	if span.IsValid() {
		entry.Data["dd.trace_id"] = convertTraceID(span.TraceID().String())
		entry.Data["dd.span_id"] = convertTraceID(span.SpanID().String())
	}

	return nil
}

type logrusFieldFilterHook struct{}

func (h *logrusFieldFilterHook) Levels() []log.Level {
	return log.AllLevels
}

func (h *logrusFieldFilterHook) Fire(entry *log.Entry) error {
	// hostname keeps Datadog from indexing the entry
	delete(entry.Data, "hostname")

	return nil
}

// Took from DD https://docs.datadoghq.com/tracing/other_telemetry/connect_logs_and_traces/opentelemetry?tab=go
func convertTraceID(id string) string {
	if len(id) < 16 {
		return ""
	}
	if len(id) > 16 {
		id = id[16:]
	}
	intValue, err := strconv.ParseUint(id, 16, 64)
	if err != nil {
		return ""
	}

	return strconv.FormatUint(intValue, 10)
}
