// Package schema holds the runtime configuration shared by the CLI and the
// resolution engine.
package schema

// DefaultParamsFile is the parameters file consulted when a pipeline
// definition doesn't name one explicitly.
const DefaultParamsFile = "params.yaml"

// LogsConfiguration controls logging output.
type LogsConfiguration struct {
	// Level is one of Debug, Info, Warning, Error, Off.
	Level string `yaml:"level" json:"level" mapstructure:"level"`

	// File is the log destination; /dev/stderr when empty.
	File string `yaml:"file" json:"file" mapstructure:"file"`
}

// Configuration is the top-level paramflow configuration.
type Configuration struct {
	Logs LogsConfiguration `yaml:"logs" json:"logs" mapstructure:"logs"`

	// ParamsFile overrides the default parameters file name.
	ParamsFile string `yaml:"params_file" json:"params_file" mapstructure:"params_file"`

	// TrackPerf enables call timing collection in pkg/perf.
	TrackPerf bool `yaml:"track_perf" json:"track_perf" mapstructure:"track_perf"`
}

// NewConfiguration returns a Configuration with defaults applied.
func NewConfiguration() *Configuration {
	return &Configuration{
		Logs:       LogsConfiguration{Level: "Info", File: "/dev/stderr"},
		ParamsFile: DefaultParamsFile,
	}
}

// ParamsFileOrDefault returns the configured parameters file name, falling
// back to DefaultParamsFile.
func (c *Configuration) ParamsFileOrDefault() string {
	if c == nil || c.ParamsFile == "" {
		return DefaultParamsFile
	}
	return c.ParamsFile
}
