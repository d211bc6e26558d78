package core

import glog "github.com/goliatone/go-logger/glog"

func defaultLogger(name string) Logger {
	_, logger := glog.Resolve(name, nil, nil)
	return glog.Ensure(logger)
}

// resolveLogger applies provider > logger > nop precedence.
func resolveLogger(name string, provider LoggerProvider, logger Logger) Logger {
	if provider != nil {
		if named := provider.GetLogger(name); named != nil {
			return glog.Ensure(named)
		}
	}
	if logger != nil {
		return glog.Ensure(logger)
	}
	return defaultLogger(name)
}

func componentLogger(logger Logger, component string) Logger {
	if logger == nil {
		return defaultLogger("payments." + component)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		return fieldsLogger.WithFields(map[string]any{"component": component})
	}
	return logger
}
