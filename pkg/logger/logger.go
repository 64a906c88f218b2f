package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

type LogLevel string

const (
	DEBUG LogLevel = "debug"
	INFO  LogLevel = "info"
	WARN  LogLevel = "warn"
	ERROR LogLevel = "error"
)

var levelOrder = map[LogLevel]int{
	DEBUG: 0,
	INFO:  1,
	WARN:  2,
	ERROR: 3,
}

// Logger emits structured events: an event name followed by key/value pairs,
// as text or JSON lines.
type Logger struct {
	level      LogLevel
	jsonFormat bool
	out        io.Writer
	context    map[string]string
	mu         *sync.Mutex
}

var (
	global *Logger
	once   sync.Once
)

// Init configures the process-wide logger. A nil writer discards output,
// which tests use to keep logs quiet.
func Init(level LogLevel, jsonFormat bool, out io.Writer) {
	if out == nil {
		out = io.Discard
	}
	global = &Logger{
		level:      normalizeLevel(level),
		jsonFormat: jsonFormat,
		out:        out,
		context:    map[string]string{},
		mu:         &sync.Mutex{},
	}
}

// GetLogger returns the process-wide logger, initializing a default one if
// Init was never called.
func GetLogger() *Logger {
	once.Do(func() {
		if global == nil {
			Init(INFO, false, os.Stdout)
		}
	})
	return global
}

// WithContext returns a child logger that attaches the given key/value to
// every event.
func (l *Logger) WithContext(key, value string) *Logger {
	ctx := make(map[string]string, len(l.context)+1)
	for k, v := range l.context {
		ctx[k] = v
	}
	ctx[key] = value
	return &Logger{
		level:      l.level,
		jsonFormat: l.jsonFormat,
		out:        l.out,
		context:    ctx,
		mu:         l.mu,
	}
}

// WithContext attaches a key/value to the global logger.
func WithContext(key, value string) *Logger {
	return GetLogger().WithContext(key, value)
}

func (l *Logger) Debug(event string, kv ...interface{}) { l.log(DEBUG, event, kv...) }
func (l *Logger) Info(event string, kv ...interface{})  { l.log(INFO, event, kv...) }
func (l *Logger) Warn(event string, kv ...interface{})  { l.log(WARN, event, kv...) }
func (l *Logger) Error(event string, kv ...interface{}) { l.log(ERROR, event, kv...) }

func (l *Logger) log(level LogLevel, event string, kv ...interface{}) {
	if levelOrder[level] < levelOrder[l.level] {
		return
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if l.jsonFormat {
		entry := map[string]interface{}{
			"ts":    time.Now().Format(time.RFC3339),
			"level": string(level),
			"event": event,
		}
		for k, v := range l.context {
			entry[k] = v
		}
		for i := 0; i+1 < len(kv); i += 2 {
			key, ok := kv[i].(string)
			if !ok {
				key = fmt.Sprintf("%v", kv[i])
			}
			entry[key] = kv[i+1]
		}
		data, err := json.Marshal(entry)
		if err != nil {
			return
		}
		fmt.Fprintln(l.out, string(data))
		return
	}

	var b strings.Builder
	b.WriteString(time.Now().Format("2006-01-02 15:04:05"))
	b.WriteString(" [")
	b.WriteString(strings.ToUpper(string(level)))
	b.WriteString("] ")
	b.WriteString(event)
	for k, v := range l.context {
		fmt.Fprintf(&b, " %s=%s", k, v)
	}
	for i := 0; i+1 < len(kv); i += 2 {
		fmt.Fprintf(&b, " %v=%v", kv[i], kv[i+1])
	}
	fmt.Fprintln(l.out, b.String())
}

func normalizeLevel(level LogLevel) LogLevel {
	switch LogLevel(strings.ToLower(string(level))) {
	case DEBUG, INFO, WARN, ERROR:
		return LogLevel(strings.ToLower(string(level)))
	default:
		return INFO
	}
}
