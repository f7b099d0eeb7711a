package sweep

import "fmt"

// ConfigError reports an invalid run configuration. Configuration errors
// are raised before any task executes; a run that fails this way never
// starts.
type ConfigError struct {
	Reason string
}

func (e *ConfigError) Error() string {
	return "sweep config: " + e.Reason
}

// Configf builds a ConfigError from a format string.
func Configf(format string, args ...any) error {
	return &ConfigError{Reason: fmt.Sprintf(format, args...)}
}
