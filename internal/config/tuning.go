package config

import (
	"github.com/charmbracelet/log"
	gameconfig "github.com/tomz197/circus/internal/loop/config"
)

// TuningEnv names the variable holding the tuning file path.
const TuningEnv = "CIRCUS_TUNING"

// OpenTuning loads the tuning file named by CIRCUS_TUNING and keeps it
// hot-reloaded. Without the variable the defaults are used and nothing is
// watched. The returned stop function is never nil.
func OpenTuning(logger *log.Logger) (*TuningSource, func() error, error) {
	path := GetEnv(TuningEnv, "")
	t, err := gameconfig.LoadTuning(path)
	if err != nil {
		return nil, nil, err
	}
	source := NewTuningSource(t)
	if path == "" {
		return source, func() error { return nil }, nil
	}

	w, err := WatchTuning(path, source, logger)
	if err != nil {
		return nil, nil, err
	}
	if logger != nil {
		logger.Info("tuning loaded", "path", path, "lives", t.Lives)
	}
	return source, w.Close, nil
}
