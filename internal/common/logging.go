package common

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/phuslu/log"
	"github.com/ternarybob/arbor"
	"github.com/ternarybob/arbor/models"
	"github.com/ternarybob/arbor/writers"
)

// Logger wraps arbor.ILogger to provide a consistent interface
type Logger struct {
	arbor.ILogger
}

// discardWriter implements writers.IWriter and discards all output.
type discardWriter struct{}

func (w *discardWriter) Write(p []byte) (int, error)           { return len(p), nil }
func (w *discardWriter) WithLevel(_ log.Level) writers.IWriter { return w }
func (w *discardWriter) GetFilePath() string                   { return "" }
func (w *discardWriter) Close() error                          { return nil }

// writerAdapter adapts an io.Writer to arbor's IWriter interface, rendering
// each JSON event as a single text line.
type writerAdapter struct {
	out   io.Writer
	level log.Level
}

func (w *writerAdapter) Write(p []byte) (int, error) {
	var evt models.LogEvent
	if err := json.Unmarshal(p, &evt); err != nil {
		return w.out.Write(p)
	}
	if evt.Level < w.level {
		return len(p), nil
	}
	msg := evt.Message
	for k, v := range evt.Fields {
		msg += fmt.Sprintf(" %s=%v", k, v)
	}
	if evt.Error != "" {
		msg += fmt.Sprintf(" error=%s", evt.Error)
	}
	msg += "\n"
	return w.out.Write([]byte(msg))
}

func (w *writerAdapter) WithLevel(level log.Level) writers.IWriter {
	w.level = level
	return w
}

func (w *writerAdapter) GetFilePath() string { return "" }
func (w *writerAdapter) Close() error        { return nil }

// NewLogger creates a logger with the given level writing to console and file.
func NewLogger(level string) *Logger {
	return NewLoggerFromConfig(LoggingConfig{
		Level:   level,
		Outputs: []string{"console", "file"},
	})
}

// NewLoggerFromConfig creates a logger configured from LoggingConfig.
// Supports console (stderr) and file writers; a memory writer is always attached.
func NewLoggerFromConfig(cfg LoggingConfig) *Logger {
	level := cfg.Level
	if level == "" {
		level = "info"
	}

	outputs := cfg.Outputs
	if len(outputs) == 0 {
		outputs = []string{"console"}
	}

	l := arbor.NewLogger()
	for _, out := range outputs {
		switch out {
		case "console":
			l = l.WithConsoleWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeConsole,
				Writer:     os.Stderr,
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			})
		case "file":
			filePath := cfg.FilePath
			if filePath == "" {
				filePath = "logs/portafolio.log"
			}
			maxSize := int64(cfg.MaxSizeMB) * 1024 * 1024
			if maxSize <= 0 {
				maxSize = 10 * 1024 * 1024
			}
			maxBackups := cfg.MaxBackups
			if maxBackups <= 0 {
				maxBackups = 3
			}
			l = l.WithFileWriter(models.WriterConfiguration{
				Type:       models.LogWriterTypeFile,
				FileName:   filePath,
				MaxSize:    maxSize,
				MaxBackups: maxBackups,
				TimeFormat: "2006-01-02T15:04:05Z07:00",
			})
		}
	}

	l = l.WithMemoryWriter(models.WriterConfiguration{
		Type: models.LogWriterTypeMemory,
	}).WithLevelFromString(level)

	return &Logger{ILogger: l}
}

// NewLoggerWithOutput creates a logger writing plain text lines to w.
func NewLoggerWithOutput(level string, w io.Writer) *Logger {
	adapter := &writerAdapter{out: w, level: log.TraceLevel}
	arborLogger := arbor.NewLogger().
		WithWriters([]writers.IWriter{adapter}).
		WithLevelFromString(level)
	return &Logger{ILogger: arborLogger}
}

// NewDefaultLogger creates a console logger at info level
func NewDefaultLogger() *Logger {
	return NewLoggerFromConfig(LoggingConfig{Level: "info", Outputs: []string{"console"}})
}

// NewSilentLogger creates a logger that discards all output.
func NewSilentLogger() *Logger {
	arborLogger := arbor.NewLogger().WithWriters([]writers.IWriter{&discardWriter{}})
	return &Logger{ILogger: arborLogger}
}

// WithCorrelationId returns a new Logger with a correlation ID set.
func (l *Logger) WithCorrelationId(id string) *Logger {
	return &Logger{ILogger: l.ILogger.WithCorrelationId(id)}
}
