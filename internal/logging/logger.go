package logging

import (
	"encoding/json"
	"io"
	"log"
	"os"
	"sync"
	"time"
)

// Fields carries the structured key/value pairs attached to a log line.
type Fields map[string]interface{}

var (
	mu  sync.Mutex
	out io.Writer = os.Stderr
)

// SetOutput redirects log lines, mainly for tests.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	out = w
}

func emit(level, msg string, err error, fields Fields) {
	line := make(Fields, len(fields)+4)
	for k, v := range fields {
		line[k] = v
	}
	line["level"] = level
	line["ts"] = time.Now().UTC().Format(time.RFC3339)
	line["msg"] = msg
	if err != nil {
		line["error"] = err.Error()
	}
	b, merr := json.Marshal(line)
	if merr != nil {
		// fallback to plain logging
		log.Printf("%s: %s (%v)\n", level, msg, line)
		return
	}
	mu.Lock()
	defer mu.Unlock()
	out.Write(append(b, '\n'))
}

// Info logs an informational message with optional fields.
func Info(msg string, fields Fields) {
	emit("info", msg, nil, fields)
}

// Warn logs a recoverable anomaly.
func Warn(msg string, err error, fields Fields) {
	emit("warn", msg, err, fields)
}

// Error logs an error message and includes the error text in the fields.
func Error(msg string, err error, fields Fields) {
	emit("error", msg, err, fields)
}

// Fatal logs a fatal error and exits the process.
func Fatal(msg string, err error, fields Fields) {
	emit("fatal", msg, err, fields)
	os.Exit(1)
}
