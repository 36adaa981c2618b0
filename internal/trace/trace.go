// Package trace 在 context 里携带单次运行的 trace ID，日志行统一带 TRACE=id 前缀。
package trace

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"log"
	"sync"
)

type ctxKey int

const traceIDKey ctxKey = 0

const traceIDBytes = 4

func WithTraceID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, traceIDKey, id)
}

func TraceID(ctx context.Context) string {
	if id, ok := ctx.Value(traceIDKey).(string); ok {
		return id
	}
	return ""
}

func NewTraceID() string {
	b := make([]byte, traceIDBytes)
	if _, err := rand.Read(b); err != nil {
		return "0"
	}
	return hex.EncodeToString(b)
}

var logMu sync.Mutex

// Log 打一行日志，行首固定 TRACE=id，单次运行内可直接 grep。
func Log(ctx context.Context, format string, args ...interface{}) {
	id := TraceID(ctx)
	if id == "" {
		id = "-"
	}
	logMu.Lock()
	msg := fmt.Sprintf(format, args...)
	log.Printf("TRACE=%s | %s", id, msg)
	logMu.Unlock()
}
