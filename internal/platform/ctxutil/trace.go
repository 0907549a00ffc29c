package ctxutil

import "context"

type runDataKey struct{}

// RunData ties log lines and spans deep in a load back to the run that
// started them.
type RunData struct {
	RunID   string
	Kind    string
	TraceID string
}

func WithRunData(ctx context.Context, rd *RunData) context.Context {
	return context.WithValue(Default(ctx), runDataKey{}, rd)
}

func GetRunData(ctx context.Context) *RunData {
	if ctx == nil {
		return nil
	}
	if rd, ok := ctx.Value(runDataKey{}).(*RunData); ok {
		return rd
	}
	return nil
}

// KV returns the run identifiers as logger key/value pairs.
func (rd *RunData) KV() []interface{} {
	if rd == nil {
		return nil
	}
	kv := []interface{}{"run_id", rd.RunID, "kind", rd.Kind}
	if rd.TraceID != "" {
		kv = append(kv, "trace_id", rd.TraceID)
	}
	return kv
}

// Default returns context.Background() when ctx is nil.
func Default(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
