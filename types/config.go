package types

import (
	"log"
	"os"
)

// Logger is the minimal logging seam the engine writes through; components
// and the driver never call the standard library logger directly so that a
// host application can redirect or structure output.
type Logger interface {
	Printf(format string, v ...any)
}

// defaultLogger wraps the standard library logger, writing to stderr with a
// timestamp prefix.
type defaultLogger struct {
	*log.Logger
}

func (l *defaultLogger) Printf(format string, v ...any) {
	l.Logger.Printf(format, v...)
}

// NewDefaultLogger returns the Logger used when no Option overrides it.
func NewDefaultLogger() Logger {
	return &defaultLogger{Logger: log.New(os.Stderr, "draid: ", log.LstdFlags)}
}

// ScriptEngine is satisfied by the expr/goja-backed context-enrichment
// evaluators: it derives extra info entries from a component's declared
// parameters.
type ScriptEngine interface {
	// Name identifies the engine as selected by a workflow description's
	// enrich_engine field ("expr", "js").
	Name() string
	// Eval runs source against params and returns the derived info entries.
	Eval(source string, params map[string]any) (map[string]string, error)
}

// Config collects the engine's dependencies. It is built once via Option
// values and never mutated afterwards, so a single Config can be shared
// safely across concurrent component processing within a batch.
type Config struct {
	Logger         Logger
	ScriptEngines  map[string]ScriptEngine
	OnObligation   func(componentURI string, ob ActivatedObligation)
	MQTTBrokerURL  string
}

// Option mutates a Config under construction.
type Option func(*Config)

// NewConfig builds a Config from functional options, applying defaults for
// anything left unset.
func NewConfig(opts ...Option) Config {
	c := Config{
		Logger:        NewDefaultLogger(),
		ScriptEngines: map[string]ScriptEngine{},
	}
	for _, opt := range opts {
		opt(&c)
	}
	return c
}

// WithLogger overrides the default Logger.
func WithLogger(l Logger) Option {
	return func(c *Config) { c.Logger = l }
}

// WithScriptEngine registers a ScriptEngine under its own Name().
func WithScriptEngine(e ScriptEngine) Option {
	return func(c *Config) { c.ScriptEngines[e.Name()] = e }
}

// WithObligationSink installs a callback invoked for every obligation
// activated during a run, in addition to recording it on the graph.
func WithObligationSink(f func(componentURI string, ob ActivatedObligation)) Option {
	return func(c *Config) { c.OnObligation = f }
}

// WithMQTTBroker records a broker URL in Config.MQTTBrokerURL. The mqtt
// package's Connect takes its broker URL as an argument and does not read
// this field.
func WithMQTTBroker(url string) Option {
	return func(c *Config) { c.MQTTBrokerURL = url }
}
