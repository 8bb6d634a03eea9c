package logger

import (
	"sort"
	"sync"

	"github.com/rs/zerolog"
)

// subsystems holds the loggers of the composition subsystems (reader,
// binder, catalog, facade and the backends), keyed by name.
var subsystems = &subsystemRegistry{
	loggers: make(map[string]*Logger),
}

type subsystemRegistry struct {
	mu      sync.RWMutex
	loggers map[string]*Logger
}

// Register installs l as the logger of subsystem name.
func Register(name string, l *Logger) {
	subsystems.mu.Lock()
	defer subsystems.mu.Unlock()
	subsystems.loggers[name] = l
}

// Get returns the logger of subsystem name. Unconfigured subsystems get the
// global logger tagged with the name, built on every call so a later Init
// still takes effect.
func Get(name string) *Logger {
	subsystems.mu.RLock()
	l, ok := subsystems.loggers[name]
	subsystems.mu.RUnlock()
	if ok {
		return l
	}
	return GetGlobalLogger().WithComponent(name)
}

// Subsystems lists the configured subsystem names, sorted.
func Subsystems() []string {
	subsystems.mu.RLock()
	defer subsystems.mu.RUnlock()
	names := make([]string, 0, len(subsystems.loggers))
	for name := range subsystems.loggers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Reset drops every configured subsystem logger.
func Reset() {
	subsystems.mu.Lock()
	defer subsystems.mu.Unlock()
	subsystems.loggers = make(map[string]*Logger)
}

// configureSubsystems replaces the registry with one logger per entry of
// levels, derived from base at the given level. It returns the lowest
// level in use so the global zerolog level does not filter an override.
func configureSubsystems(base *Logger, levels map[string]string, lowest zerolog.Level) zerolog.Level {
	loggers := make(map[string]*Logger, len(levels))
	for name, raw := range levels {
		level, err := zerolog.ParseLevel(raw)
		if err != nil {
			continue
		}
		l := base.WithComponent(name)
		l.logger = l.logger.Level(level)
		loggers[name] = l
		lowest = min(lowest, level)
	}

	subsystems.mu.Lock()
	subsystems.loggers = loggers
	subsystems.mu.Unlock()
	return lowest
}
