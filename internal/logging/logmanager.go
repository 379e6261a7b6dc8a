//
//  Copyright © Manetu Inc. All rights reserved.
//

package logging

//lint:file-ignore U1001 Ignore all unused code, it's external

import (
	"strings"
	"sync"

	"go.uber.org/zap/zapcore"
)

// LogManager keeps track of all instantiated loggers
type LogManager struct {
	loggers  map[string]*Logger
	defLevel zapcore.Level
}

// Manager's singleton variables
var (
	manager *LogManager
	mu      sync.RWMutex
	once    sync.Once
)

// resetForTesting resets the manager state - only for testing
func resetForTesting() {
	mu.Lock()
	defer mu.Unlock()
	manager = nil
	once = sync.Once{}
}

func initManager() {
	manager = &LogManager{
		loggers:  make(map[string]*Logger),
		defLevel: zapcore.InfoLevel,
	}
}

// GetLogger returns a logger for the specified module
func GetLogger(module string) *Logger {
	once.Do(initManager)

	mu.RLock()
	if l := manager.loggers[module]; l != nil {
		mu.RUnlock()
		return l
	}
	mu.RUnlock()

	mu.Lock()
	defer mu.Unlock()

	// Double-check after acquiring write lock
	if l := manager.loggers[module]; l != nil {
		return l
	}

	l := newLogger(module)
	l.SetLevel(manager.defLevel)
	manager.loggers[module] = l

	return l
}

// parseLevel converts a string level to zapcore.Level. Unrecognized levels
// degrade to info rather than failing.
func parseLevel(levelStr string) zapcore.Level {
	switch strings.ToLower(levelStr) {
	case "panic":
		return zapcore.PanicLevel
	case "fatal":
		return zapcore.FatalLevel
	case "error":
		return zapcore.ErrorLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "info":
		return zapcore.InfoLevel
	case "debug", "trace":
		return zapcore.DebugLevel
	default:
		return zapcore.InfoLevel
	}
}

var levelWhitespace = strings.NewReplacer(" ", "", "\t", "", "\n", "")

// UpdateLogLevels updates log levels from a string of the form:
// "mod1:debug;mod2:error;.:info"
// Allows whitespace for readability
func UpdateLogLevels(logstr string) error {
	once.Do(initManager)

	logstr = levelWhitespace.Replace(logstr)

	mu.Lock()
	defer mu.Unlock()

	// Explicit module entries win over the "." default, regardless of the
	// order they appear in the string.
	explicit := make(map[string]bool)
	var defLevel zapcore.Level
	hasDefault := false

	for _, entry := range strings.Split(logstr, ";") {
		module, levelStr, ok := strings.Cut(entry, ":")
		if !ok {
			continue
		}

		level := parseLevel(levelStr)
		if module == "." {
			defLevel = level
			hasDefault = true
			continue
		}

		explicit[module] = true
		l := manager.loggers[module]
		if l == nil {
			l = newLogger(module)
			manager.loggers[module] = l
		}
		l.SetLevel(level)
	}

	if hasDefault {
		manager.defLevel = defLevel
		for mod, l := range manager.loggers {
			if !explicit[mod] {
				l.SetLevel(defLevel)
			}
		}
	}

	return nil
}
