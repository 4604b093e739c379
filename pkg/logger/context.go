package logger

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ContextKey is the type for context keys
type ContextKey string

const (
	// CommandIDKey is the context key for the per-command correlation ID
	CommandIDKey ContextKey = "command_id"
	// CommandKey is the context key for the menu command name
	CommandKey ContextKey = "command"
)

// NewCommandContext tags ctx with a fresh command ID and the command name.
func NewCommandContext(ctx context.Context, command string) context.Context {
	ctx = context.WithValue(ctx, CommandIDKey, uuid.New().String())
	return context.WithValue(ctx, CommandKey, command)
}

// WithContext creates a logger with context fields (command_id, command)
func WithContext(ctx context.Context, logger *zap.Logger) *zap.Logger {
	fields := make([]zap.Field, 0, 2)

	if id := GetCommandID(ctx); id != "" {
		fields = append(fields, zap.String("command_id", id))
	}
	if name := GetCommand(ctx); name != "" {
		fields = append(fields, zap.String("command", name))
	}

	if len(fields) > 0 {
		return logger.With(fields...)
	}

	return logger
}

// GetCommandID extracts the command ID from context
func GetCommandID(ctx context.Context) string {
	if v := ctx.Value(CommandIDKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

// GetCommand extracts the command name from context
func GetCommand(ctx context.Context) string {
	if v := ctx.Value(CommandKey); v != nil {
		if name, ok := v.(string); ok {
			return name
		}
	}
	return ""
}
