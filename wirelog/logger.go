package wirelog

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// Logger allows you to control logging with message levels and subsystem controls.
// The "Include" flags below select which prefix fields are included in each log message; each
//   SystemConfig constructor sets its own combination of them.
// Subsystem log entries can be enabled per subsystem.
// For example the parent package can specify if they want to see logs from a subsystem and how
//   they want to see them.
//
// Sample Setup:
// // Create a log config that logs to stderr and set it up.
// logConfig := wirelog.NewDevelopmentConfig()
// logConfig.EnableSubSystem(peer.SubSystem)
//
// // Attach the log config to the context.
// ctx := wirelog.ContextWithLogConfig(context.Background(), logConfig)
//

type Level int

const (
	LevelDebug   Level = -2
	LevelVerbose Level = -1
	LevelInfo    Level = 0
	LevelWarn    Level = 1
	LevelError   Level = 2
	LevelFatal   Level = 3 // Calls exit
	LevelPanic   Level = 4 // Calls panic
)

// Log entry formatting (which prefix fields to include)
const (
	IncludeDate      = 0x01 // date in the local time zone: 2018/01/01
	IncludeTime      = 0x02 // time in the local time zone: 06:54:32
	IncludeMicro     = 0x04 // microseconds .123123
	IncludeCaller    = 0x08 // file name and line number
	IncludeSystem    = 0x10 // subsystem name
	IncludeLevel     = 0x20 // level of log entry
	IncludeTimeStamp = 0x40 // unix timestamp
)

// Returns a context with the logging config attached.
func ContextWithLogConfig(ctx context.Context, config *Config) context.Context {
	return context.WithValue(ctx, configKey, config)
}

func ContextWithNoLogger(ctx context.Context) context.Context {
	return context.WithValue(ctx, configKey, &emptyConfig)
}

// Returns a context with the logging subsystem attached.
func ContextWithLogSubSystem(ctx context.Context, subsystem string) context.Context {
	return context.WithValue(ctx, subSystemKey, subsystem)
}

// Returns a context with the logging subsystem cleared. Used when a context is passed back from a
//   subsystem.
func ContextWithOutLogSubSystem(ctx context.Context) context.Context {
	return context.WithValue(ctx, subSystemKey, nil)
}

// Returns a context with the log trace attached. Every entry logged with it carries the trace.
func ContextWithLogTrace(ctx context.Context, trace string) context.Context {
	return context.WithValue(ctx, traceKey, trace)
}

// ContextWithLogFields attaches fields that every subsequent log call made with the returned
//   context includes, on top of whatever fields the call itself supplies. A field named the same
//   as one already attached replaces it rather than appearing twice.
func ContextWithLogFields(ctx context.Context, fields ...Field) context.Context {
	return context.WithValue(ctx, fieldsKey, mergeFields(contextFields(ctx), fields))
}

func contextFields(ctx context.Context) []Field {
	value := ctx.Value(fieldsKey)
	if value == nil {
		return nil
	}

	fields, ok := value.([]Field)
	if !ok {
		return nil
	}

	return fields
}

// mergeFields layers overrides on top of base, replacing any base field whose name collides
//   with one in overrides instead of emitting both.
func mergeFields(base, overrides []Field) []Field {
	if len(overrides) == 0 {
		return base
	}

	result := make([]Field, len(base), len(base)+len(overrides))
	copy(result, base)

outer:
	for _, field := range overrides {
		for i, existing := range result {
			if existing.Name() == field.Name() {
				result[i] = field
				continue outer
			}
		}
		result = append(result, field)
	}

	return result
}

// GetCaller adjusts a caller-relative skip count for helpers, like LoggerObject's methods, that
//   call into LogDepth through one extra stack frame of their own.
func GetCaller(skip int) int {
	return skip + 1
}

// Log an entry to the main Outputs if:
//   There is no subsystem specified or if the current subsystem is included in the attached
//     Config.IncludedSubSystems.
//   And the level is equal to or above the specified minimum logging level.
// Logs to the Config.SubSystems if the level is above minimum.
func Log(ctx context.Context, level Level, format string, values ...interface{}) error {
	return LogDepth(ctx, level, 1, format, values...)
}

// Debug adds a debug level entry to the log.
func Debug(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelDebug, 1, format, values...)
}

// Verbose adds a verbose level entry to the log.
func Verbose(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelVerbose, 1, format, values...)
}

// Info adds a info level entry to the log.
func Info(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelInfo, 1, format, values...)
}

// Warn adds a warn level entry to the log.
func Warn(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelWarn, 1, format, values...)
}

// Error adds a error level entry to the log.
func Error(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelError, 1, format, values...)
}

// Fatal adds a fatal level entry to the log and then calls os.Exit(1).
func Fatal(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelFatal, 1, format, values...)
}

// Panic adds a panic level entry to the log and then calls panic().
func Panic(ctx context.Context, format string, values ...interface{}) error {
	return LogDepth(ctx, LevelPanic, 1, format, values...)
}

// DebugWithFields is Debug with structured fields attached to just this entry.
func DebugWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelDebug, 1, fields, format, values...)
}

// InfoWithFields is Info with structured fields attached to just this entry.
func InfoWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelInfo, 1, fields, format, values...)
}

// WarnWithFields is Warn with structured fields attached to just this entry.
func WarnWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelWarn, 1, fields, format, values...)
}

// ErrorWithFields is Error with structured fields attached to just this entry.
func ErrorWithFields(ctx context.Context, fields []Field, format string, values ...interface{}) error {
	return LogDepthWithFields(ctx, LevelError, 1, fields, format, values...)
}

func getTrace(ctx context.Context) string {
	traceValue := ctx.Value(traceKey)
	if traceValue == nil {
		return ""
	}

	trace, ok := traceValue.(string)
	if !ok {
		return ""
	}

	return trace
}

// Same as Log, but the number of levels above the current call in the stack from which to get the
//   file name/line of code can be specified as depth.
func LogDepth(ctx context.Context, level Level, depth int, format string, values ...interface{}) error {
	err := LogDepthWithFields(ctx, level, depth+1, nil, format, values...)
	switch level {
	case LevelFatal:
		os.Exit(1)
	case LevelPanic:
		panic(fmt.Sprintf(format, values...))
	}
	return err
}

// LogDepthWithFields is LogDepth with structured fields attached to just this entry, merged on
//   top of any fields the context already carries via ContextWithLogFields.
func LogDepthWithFields(ctx context.Context, level Level, depth int, fields []Field, format string,
	values ...interface{}) error {

	configValue := ctx.Value(configKey)
	if configValue == nil {
		// Config not specified. Use default config.
		configValue = &DefaultConfig
	}

	config, ok := configValue.(*Config)
	if !ok {
		return errors.New("Invalid Config Type")
	}

	if config == &emptyConfig {
		return nil
	}

	trace := getTrace(ctx)
	entryFields := mergeFields(contextFields(ctx), fields)

	config.mutex.Lock()
	defer config.mutex.Unlock()

	subsystem := "Main"
	subsystemValue := ctx.Value(subSystemKey)
	if subsystemValue != nil {
		var ok bool
		subsystem, ok = subsystemValue.(string)
		if !ok {
			return errors.New("Invalid SubSystem Type")
		}
		// Log to subsystem specific config
		subConfig, subExists := config.SubSystems[subsystem]
		if subExists {
			var err error
			if config.IsText {
				err = subConfig.logText(subsystem, level, depth+1, trace, entryFields, format, values...)
			} else {
				err = subConfig.logJSON(subsystem, level, depth+1, trace, entryFields, format, values...)
			}
			if err != nil {
				return err
			}
		}

		include, includeExists := config.IncludedSubSystems[subsystem]
		if !includeExists || !include {
			return nil // Don't log to main config
		}
	}

	// Log to main config
	if config.IsText {
		return config.Main.logText(subsystem, level, depth+1, trace, entryFields, format, values...)
	}
	return config.Main.logJSON(subsystem, level, depth+1, trace, entryFields, format, values...)
}

// Keys for context key/pairs
type loggerkey int

const (
	configKey    loggerkey = 1
	subSystemKey loggerkey = 2
	traceKey     loggerkey = 3
	fieldsKey    loggerkey = 4
)
