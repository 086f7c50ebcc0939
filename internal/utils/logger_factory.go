package utils

import (
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Supported log levels.
const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Supported log formats. Structured emits one JSON object per entry.
const (
	LogFormatStructured LogFormat = "structured"
	LogFormatConsole    LogFormat = "console"
)

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// LoggerFactory builds zap loggers for the configured level and format.
type LoggerFactory struct{}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger writes to standard error so log entries never mix with report output.
func (factory *LoggerFactory) CreateLogger(requestedLogLevel LogLevel, requestedLogFormat LogFormat) (*zap.Logger, error) {
	return factory.CreateLoggerWithWriter(requestedLogLevel, requestedLogFormat, zapcore.Lock(os.Stderr))
}

// CreateLoggerWithWriter builds a logger writing to writer. Level and format
// names are matched case-insensitively.
func (factory *LoggerFactory) CreateLoggerWithWriter(requestedLogLevel LogLevel, requestedLogFormat LogFormat, writer io.Writer) (*zap.Logger, error) {
	zapLogLevel, levelExists := logLevelMapping[LogLevel(normalizeSetting(string(requestedLogLevel)))]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, requestedLogLevel)
	}

	encoder, encoderError := newEncoder(LogFormat(normalizeSetting(string(requestedLogFormat))))
	if encoderError != nil {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, requestedLogFormat)
	}

	core := zapcore.NewCore(encoder, zapcore.AddSync(writer), zap.NewAtomicLevelAt(zapLogLevel))
	return zap.New(core, zap.ErrorOutput(zapcore.Lock(os.Stderr))), nil
}

func newEncoder(format LogFormat) (zapcore.Encoder, error) {
	switch format {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), nil
	case LogFormatConsole:
		encoderConfig := zap.NewDevelopmentEncoderConfig()
		encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfig), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, format)
	}
}

func normalizeSetting(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
