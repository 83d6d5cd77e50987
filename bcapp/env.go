package bcapp

import (
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/cockroachdb/errors"
	"go.uber.org/zap/zapcore"
)

// Environment defines the interface that all environment configurations must implement.
// Embed BaseEnvironment in your struct to satisfy this interface.
type Environment interface {
	port() int
	serviceName() string
	readinessCheckPath() string
	logLevel() zapcore.Level
	otelExporter() string
	writeTimeout() time.Duration
	locations() map[string]string
	memoryLimit() int
	fileRoot() string
	awsRegion() string
}

// BaseEnvironment contains the environment variables every content server reads.
// Embed this in your custom environment struct.
type BaseEnvironment struct {
	Port               int           `env:"BC_PORT,required"`
	ServiceName        string        `env:"BC_SERVICE_NAME,required"`
	ReadinessCheckPath string        `env:"BC_READINESS_CHECK_PATH" envDefault:"/health"`
	LogLevel           zapcore.Level `env:"BC_LOG_LEVEL" envDefault:"info"`
	OtelExporter       string        `env:"BC_OTEL_EXPORTER" envDefault:"stdout"`
	WriteTimeout       time.Duration `env:"BC_WRITE_TIMEOUT" envDefault:"30s"`
	// Locations maps mux patterns to a directive and its optional argument, e.g.
	// "GET /hello=content_text hi;GET /file=content_file /srv/index.html".
	Locations   map[string]string `env:"BC_LOCATIONS" envSeparator:";" envKeyValSeparator:"="`
	MemoryLimit int               `env:"BC_MEMORY_LIMIT" envDefault:"-1"`
	// FileRoot is joined with relative file paths before they are opened.
	FileRoot  string `env:"BC_FILE_ROOT"`
	AWSRegion string `env:"AWS_REGION" envDefault:"us-east-1"`
}

func (e BaseEnvironment) port() int {
	return e.Port
}

func (e BaseEnvironment) serviceName() string {
	return e.ServiceName
}

func (e BaseEnvironment) readinessCheckPath() string {
	return e.ReadinessCheckPath
}

func (e BaseEnvironment) logLevel() zapcore.Level {
	return e.LogLevel
}

func (e BaseEnvironment) otelExporter() string {
	return e.OtelExporter
}

func (e BaseEnvironment) writeTimeout() time.Duration {
	return e.WriteTimeout
}

func (e BaseEnvironment) locations() map[string]string {
	return e.Locations
}

func (e BaseEnvironment) memoryLimit() int {
	return e.MemoryLimit
}

func (e BaseEnvironment) fileRoot() string {
	return e.FileRoot
}

func (e BaseEnvironment) awsRegion() string {
	return e.AWSRegion
}

var _ Environment = BaseEnvironment{}

// ParseEnv parses environment variables into the given Environment type.
func ParseEnv[E Environment]() func() (E, error) {
	return func() (e E, err error) {
		if err := env.Parse(&e); err != nil {
			return e, errors.Wrap(err, "failed to parse environment")
		}
		return e, nil
	}
}
