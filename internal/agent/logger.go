package agent

import (
	"os"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger provides structured logging for agent operations.
type Logger struct {
	zap *zap.Logger
}

// NewLogger creates a Logger that appends JSON records to a file. If
// logPath is empty, logging is disabled.
func NewLogger(logPath string) (*Logger, error) {
	if logPath == "" {
		return &Logger{zap: zap.NewNop()}, nil
	}

	logFile, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return nil, err
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()),
		zapcore.AddSync(logFile),
		zapcore.InfoLevel,
	)

	return &Logger{zap: zap.New(core)}, nil
}

// Zap exposes the underlying logger for components that take a
// *zap.Logger directly.
func (l *Logger) Zap() *zap.Logger {
	return l.zap
}

// Close syncs the logger (should be called on shutdown).
func (l *Logger) Close() error {
	return l.zap.Sync()
}

// RoundStarted logs the start of a generation round.
func (l *Logger) RoundStarted(round, maxRounds int) {
	l.zap.Info("round started",
		zap.Int("round", round),
		zap.Int("max_rounds", maxRounds),
	)
}

// LLMCall logs an LLM API call.
func (l *Logger) LLMCall(model string, promptTokens, completionTokens int, duration time.Duration) {
	l.zap.Info("llm call",
		zap.String("model", model),
		zap.Int("prompt_tokens", promptTokens),
		zap.Int("completion_tokens", completionTokens),
		zap.Int("total_tokens", promptTokens+completionTokens),
		zap.Duration("duration", duration),
	)
}

// PatchApplied logs a successful diff application.
func (l *Logger) PatchApplied(round, hunks, fuzziness int) {
	l.zap.Info("patch applied",
		zap.Int("round", round),
		zap.Int("hunks", hunks),
		zap.Int("fuzziness", fuzziness),
	)
}

// PatchFailed logs a diff that could not be located in the current code.
func (l *Logger) PatchFailed(round, fuzziness int) {
	l.zap.Warn("patch failed",
		zap.Int("round", round),
		zap.Int("fuzziness", fuzziness),
	)
}

// SandboxRun logs one program execution.
func (l *Logger) SandboxRun(method string, exitCode int, timedOut bool, duration time.Duration) {
	l.zap.Info("sandbox run",
		zap.String("method", method),
		zap.Int("exit_code", exitCode),
		zap.Bool("timed_out", timedOut),
		zap.Duration("duration", duration),
	)
}

// RunFinished logs the overall task outcome.
func (l *Logger) RunFinished(success bool, rounds int) {
	l.zap.Info("run finished",
		zap.Bool("success", success),
		zap.Int("rounds", rounds),
	)
}

// Error logs an error.
func (l *Logger) Error(msg string, err error) {
	l.zap.Error(msg, zap.Error(err))
}

// Info logs an info message.
func (l *Logger) Info(msg string, fields ...zap.Field) {
	l.zap.Info(msg, fields...)
}
