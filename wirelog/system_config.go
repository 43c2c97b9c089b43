package wirelog

import (
	"bytes"
	"fmt"
	"os"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/pkg/errors"
)

var (
	levelName = []string{
		"debug",
		"verbose",
		"info",
		"warn",
		"error",
		"fatal",
		"panic",
	}

	tab        = []byte{byte('\t')}
	comma      = []byte{byte(',')}
	newLine    = []byte{byte('\n')}
	openCurly  = []byte{byte('{')}
	closeCurly = []byte{byte('}')}
)

const (
	// levelOffset is the amount to add to change the lowest log level to zero so it aligns with the
	// levelName list
	levelOffset = 2
)

// SystemConfig defines the configuration the main system or a subsystem with custom settings.
type SystemConfig struct {
	minLevel   Level
	stackLevel Level
	isText     bool
	output     Output
	fields     []Field
	format     int

	first bool
}

// Copy makes a separate copy so if the fields are modified in one copy they will not be in another.
func (sc SystemConfig) Copy() SystemConfig {
	result := sc
	result.fields = make([]Field, len(sc.fields))
	copy(result.fields, sc.fields)
	return result
}

// newSystemConfig creates a new logger system config.
// isText selects tab separators and date/time prefix fields instead of JSON's comma separators
//   and unix timestamp; Config.IsText picks whether logText or logJSON writes the entry.
func newSystemConfig(isDevelopment, isText bool, filePath string) (*SystemConfig, error) {
	result := &SystemConfig{
		isText:     isText,
		stackLevel: LevelError,
		minLevel:   LevelInfo,
		format:     IncludeCaller | IncludeLevel | IncludeSystem,
	}

	if isText {
		result.format |= IncludeDate | IncludeTime | IncludeMicro
	} else {
		result.format |= IncludeTimeStamp
	}

	if isDevelopment {
		result.minLevel = LevelDebug
	}

	if len(filePath) > 0 {
		if filePath == "dummy" { // for benchmarking
			result.output = &dummyWriter{}
		} else {
			file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
			if err != nil {
				return nil, errors.Wrap(err, "open file")
			}

			result.output = &fileWriter{file: file}
		}
	} else {
		result.output = &printer{}
	}

	return result, nil
}

// newEmptySystemConfig creates a new logger system config that doesn't log.
func newEmptySystemConfig() (*SystemConfig, error) {
	return &SystemConfig{}, nil
}

// NewProductionLogger creates a system config that logs info level and above, JSON formatted, to
//   stderr.
func NewProductionLogger() (*SystemConfig, error) {
	return newSystemConfig(false, false, "")
}

// NewProductionTextLogger is NewProductionLogger, tab delimited instead of JSON.
func NewProductionTextLogger() (*SystemConfig, error) {
	return newSystemConfig(false, true, "")
}

// NewDevelopmentLogger creates a system config that logs debug level and above, JSON formatted,
//   to stderr.
func NewDevelopmentLogger() (*SystemConfig, error) {
	return newSystemConfig(true, false, "")
}

// NewDevelopmentTextLogger is NewDevelopmentLogger, tab delimited instead of JSON.
func NewDevelopmentTextLogger() (*SystemConfig, error) {
	return newSystemConfig(true, true, "")
}

// NewEmptyLogger creates a system config that discards everything written to it.
func NewEmptyLogger() (*SystemConfig, error) {
	return newEmptySystemConfig()
}

// addField adds a field to the log outputs
func (s *SystemConfig) addField(newField Field) {
	for i, field := range s.fields {
		if field.Name() == newField.Name() {
			s.fields[i] = newField
			return
		}
	}

	s.fields = append(s.fields, newField)
}

// addSubSystem adds a subsystem to the log outputs
func (s *SystemConfig) addSubSystem(name string) {
	for i, field := range s.fields {
		if field.Name() == "subsystem" {
			s.fields[i] = String("subsystem", name)
			return
		}
	}

	s.fields = append(s.fields, String("subsystem", name))
}

// removeSubSystem removes the subsystem from the log outputs
func (s *SystemConfig) removeSubSystem() {
	for i, field := range s.fields {
		if field.Name() == "subsystem" {
			s.fields = append(s.fields[:i], s.fields[i+1:]...)
			return
		}
	}
}

func (config *SystemConfig) writeField(format string, values ...interface{}) {
	if config.first {
		config.first = false
	} else if config.isText {
		config.output.Write(tab)
	} else {
		config.output.Write(comma)
	}

	fmt.Fprintf(config.output, format, values...)
}

// logJSON writes one JSON-formatted entry for subsystem, merging config.fields with the
//   call-specific fields passed in.
func (config *SystemConfig) logJSON(subsystem string, level Level, depth int, trace string,
	fields []Field, format string, values ...interface{}) error {

	if config.output == nil {
		return nil
	}

	if config.minLevel > level {
		return nil // Level is below minimum
	}

	config.output.Lock()
	defer config.output.Unlock()

	config.first = true
	config.output.Write(openCurly)

	// Write Level
	if config.format&IncludeLevel != 0 {
		config.writeField("\"level\":\"%s\"", levelName[level+levelOffset])
	}

	// Create log entry
	now := time.Now()

	// Append timestamp
	if config.format&IncludeTimeStamp != 0 {
		config.writeField("\"ts\":%d.%06d", now.Unix(), now.Nanosecond()/1e3)
	}

	// Append Date
	var datetime bytes.Buffer
	if config.format&IncludeDate != 0 {
		year, month, day := now.Date()
		fmt.Fprintf(&datetime, "%04d/%02d/%02d", year, month, day)
		if config.format&IncludeTime != 0 {
			fmt.Fprint(&datetime, []byte(" "))
		}
	}

	// Append Time
	if config.format&IncludeTime != 0 {
		hour, min, sec := now.Clock()
		fmt.Fprintf(&datetime, "%02d:%02d:%02d", hour, min, sec)
		if config.format&IncludeMicro != 0 {
			fmt.Fprintf(&datetime, ".%06d", now.Nanosecond()/1e3)
		}
	}

	if datetime.Len() > 0 {
		name := ""
		if config.format&IncludeDate != 0 {
			name = "date"
		}
		if config.format&IncludeTime != 0 {
			name += "time"
		}

		config.writeField("\"%s\":\"%s\"", name, string(datetime.Bytes()))
	}

	// Append Caller
	if config.format&IncludeCaller != 0 {
		_, filepath, line, ok := runtime.Caller(depth + 1)
		if ok {
			fileParts := strings.Split(filepath, string(os.PathSeparator))
			l := len(fileParts)
			if l >= 2 {
				filepath = fileParts[l-2] + string(os.PathSeparator) + fileParts[l-1]
			} else if l != 0 {
				filepath = fileParts[0]
			}
		} else {
			filepath = "???"
			line = 0
		}

		config.writeField("\"caller\":\"%s:%d\"", filepath, line)
	}

	// Append subsystem
	if config.format&IncludeSystem != 0 && subsystem != "" {
		config.writeField("\"system\":\"%s\"", subsystem)
	}

	// Append trace
	if trace != "" {
		config.writeField("\"trace\":\"%s\"", trace)
	}

	// Append actual log entry
	config.writeField("\"msg\":\"%s\"", fmt.Sprintf(format, values...))

	for _, field := range config.fields {
		config.writeField("\"%s\":%s", field.Name(), field.ValueJSON())
	}

	for _, field := range fields {
		config.writeField("\"%s\":%s", field.Name(), field.ValueJSON())
	}

	config.output.Write(closeCurly)
	config.output.Write(newLine)

	return nil
}

// logText writes one tab-delimited entry for subsystem, merging config.fields with the
//   call-specific fields passed in.
func (config *SystemConfig) logText(subsystem string, level Level, depth int, trace string,
	fields []Field, format string, values ...interface{}) error {

	if config.output == nil {
		return nil
	}

	if config.minLevel > level {
		return nil // Level is below minimum
	}

	// Write full entry to output
	config.output.Lock()
	defer config.output.Unlock()

	config.first = true

	// Write Level
	if config.format&IncludeLevel != 0 {
		config.writeField("%s", levelName[level+levelOffset])
	}

	// Create log entry
	now := time.Now()

	// Append timestamp
	if config.format&IncludeTimeStamp != 0 {
		config.writeField("ts %d.%06d", now.Unix(), now.Nanosecond()/1e3)
	}

	// Append Date
	var datetime bytes.Buffer
	if config.format&IncludeDate != 0 {
		year, month, day := now.Date()
		fmt.Fprintf(&datetime, "%04d/%02d/%02d", year, month, day)
		if config.format&IncludeTime != 0 {
			fmt.Fprint(&datetime, []byte(" "))
		}
	}

	// Append Time
	if config.format&IncludeTime != 0 {
		hour, min, sec := now.Clock()
		fmt.Fprintf(&datetime, "%02d:%02d:%02d", hour, min, sec)
		if config.format&IncludeMicro != 0 {
			fmt.Fprintf(&datetime, ".%06d", now.Nanosecond()/1e3)
		}
	}

	if datetime.Len() > 0 {
		config.writeField("%s", string(datetime.Bytes()))
	}

	// Append Caller
	if config.format&IncludeCaller != 0 {
		_, filepath, line, ok := runtime.Caller(depth + 1)
		if ok {
			fileParts := strings.Split(filepath, string(os.PathSeparator))
			l := len(fileParts)
			if l >= 2 {
				filepath = fileParts[l-2] + string(os.PathSeparator) + fileParts[l-1]
			} else if l != 0 {
				filepath = fileParts[0]
			}
		} else {
			filepath = "???"
			line = 0
		}

		config.writeField("%s:%d", filepath, line)
	}

	// Append subsystem
	if config.format&IncludeSystem != 0 && subsystem != "" {
		config.writeField("%s", subsystem)
	}

	// Append trace
	if trace != "" {
		config.writeField("%s", trace)
	}

	// Append actual log entry
	config.writeField("%s", fmt.Sprintf(format, values...))

	for _, field := range config.fields {
		fmt.Fprintf(config.output, ", %s: %s", field.Name(), field.ValueJSON())
	}

	for _, field := range fields {
		fmt.Fprintf(config.output, ", %s: %s", field.Name(), field.ValueJSON())
	}

	config.output.Write(newLine)

	return nil
}

type Output interface {
	Write([]byte) (int, error)
	Lock()
	Unlock()
}

type fileWriter struct {
	file *os.File
	lock sync.Mutex
}

func (w *fileWriter) Write(b []byte) (int, error) {
	return w.file.Write(b)
}

func (w *fileWriter) Lock() {
	w.lock.Lock()
}

func (w *fileWriter) Unlock() {
	w.file.Sync()
	w.lock.Unlock()
}

type printer struct {
	lock sync.Mutex
}

func (p *printer) Write(b []byte) (int, error) {
	return os.Stderr.Write(b)
}

func (p *printer) Lock() {
	p.lock.Lock()
}

func (p *printer) Unlock() {
	p.lock.Unlock()
}

type dummyWriter struct {
	lock sync.Mutex
}

func (d *dummyWriter) Write(b []byte) (int, error) {
	return len(b), nil
}

func (d *dummyWriter) Lock() {
	d.lock.Lock()
}

func (d *dummyWriter) Unlock() {
	d.lock.Unlock()
}
