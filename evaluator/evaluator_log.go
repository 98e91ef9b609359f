package evaluator

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
)

// logc logs a message with the current function context from the call stack.
func (e *Evaluator) logc(ctx context.Context, level slog.Level, msg string, args ...any) {
	e.logcWithCallerDepth(ctx, level, 2, msg, args...)
}

// for user, use logc instead of this function
func (e *Evaluator) logcWithCallerDepth(ctx context.Context, level slog.Level, depth int, msg string, args ...any) {
	if !e.logger.Enabled(ctx, level) {
		return
	}

	if _, file, line, ok := runtime.Caller(depth); ok {
		args = append([]any{slog.String("exec_pos", fmt.Sprintf("%s:%d", file, line))}, args...)
	}

	if len(e.callStack) > 0 {
		frame := e.callStack[len(e.callStack)-1]
		posStr := ""
		if frame.Pos.IsValid() {
			posStr = e.fset.Position(frame.Pos).String()
		}
		args = append([]any{
			slog.String("in_func", frame.Function),
			slog.String("in_func_pos", posStr),
		}, args...)
	}

	e.logger.Log(ctx, level, msg, args...)
}
