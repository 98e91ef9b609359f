package evaluator

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/podhmo/flang/object"
)

func (e *Evaluator) newError(ctx context.Context, kind error, node object.Node, format string, args ...any) *object.Error {
	return e.newErrorWithCallerDepth(ctx, 3, kind, node, format, args...)
}

func (e *Evaluator) newErrorWithCallerDepth(ctx context.Context, depth int, kind error, node object.Node, format string, args ...any) *object.Error {
	frames := make([]*object.CallFrame, len(e.callStack))
	copy(frames, e.callStack)

	err := object.NewError(kind, node, format, args...)
	err.CallStack = frames
	err.AttachFileSet(e.fset, e.sources)

	posStr := "-"
	if node != nil && node.Pos().IsValid() {
		posStr = e.fset.Position(node.Pos()).String()
	}
	e.logcWithCallerDepth(ctx, slog.LevelDebug, depth, "runtime error", "kind", kind.Error(), "message", fmt.Sprintf(format, args...), "pos", posStr)
	return err
}
