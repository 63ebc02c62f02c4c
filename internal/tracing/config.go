// Package tracing wires OpenTelemetry spans around provisioning steps.
// It is off unless LEXCTL_OTEL_ENABLED is set.
package tracing

import "errors"

// OTLP exporter protocols.
const (
	ProtocolHTTP = "otlphttp"
	ProtocolGRPC = "otlpgrpc"
)

// ServiceName is the resource service.name and the tracer name.
const ServiceName = "lexctl"

// Config controls the exporter.
type Config struct {
	Enabled     bool    `yaml:"enabled" env:"ENABLED"`
	Endpoint    string  `yaml:"endpoint" env:"ENDPOINT"`
	Protocol    string  `yaml:"protocol" env:"PROTOCOL"`
	Insecure    bool    `yaml:"insecure" env:"INSECURE"`
	SampleRatio float64 `yaml:"sample_ratio" env:"SAMPLE_RATIO"`
}

// DefaultConfig has tracing disabled.
func DefaultConfig() Config {
	return Config{
		Protocol:    ProtocolHTTP,
		SampleRatio: 1.0,
	}
}

// Validate is a no-op when tracing is disabled.
func (c Config) Validate() error {
	if !c.Enabled {
		return nil
	}
	switch c.Protocol {
	case ProtocolHTTP, ProtocolGRPC:
	default:
		return errors.New("tracing: protocol must be 'otlphttp' or 'otlpgrpc'")
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return errors.New("tracing: sample_ratio must be between 0 and 1")
	}
	return nil
}
