package core

import (
	"context"
	"sort"
	"strings"
	"time"

	goerrors "github.com/goliatone/go-errors"
)

func (p *Plugin) observeOperation(
	ctx context.Context,
	startedAt time.Time,
	operation string,
	err error,
	fields map[string]any,
) {
	if p == nil {
		return
	}
	operation = normalizeOperation(operation)
	if operation == "" {
		operation = "unknown"
	}
	status := "success"
	if err != nil {
		status = "failure"
	}
	duration := time.Since(startedAt)

	contextFields := cloneFields(fields)
	contextFields["operation"] = operation
	contextFields["status"] = status
	contextFields["duration_ms"] = duration.Milliseconds()
	tags := map[string]string{
		"operation": operation,
		"status":    status,
	}
	if err != nil {
		contextFields["error"] = err.Error()
		if mapped := p.mapError(err); mapped != nil {
			contextFields["text_code"] = mapped.TextCode
			tags["text_code"] = mapped.TextCode
		}
	}

	p.recordCounter(ctx, operationMetric(operation, "total"), 1, tags)
	p.recordHistogram(ctx, operationMetric(operation, "duration_ms"), float64(duration.Milliseconds()), tags)

	if err != nil {
		p.logWithLevel(ctx, "error", operation+" failed", contextFields)
		return
	}
	p.logWithLevel(ctx, "info", operation+" succeeded", contextFields)
}

func (p *Plugin) mapError(err error) *goerrors.Error {
	if p.errorMapper == nil {
		return MapError(err)
	}
	return p.errorMapper(err)
}

func (p *Plugin) logWithLevel(ctx context.Context, level string, message string, fields map[string]any) {
	if p == nil || p.logger == nil {
		return
	}
	logger := p.logger
	if ctx != nil {
		logger = logger.WithContext(ctx)
	}
	if fieldsLogger, ok := logger.(FieldsLogger); ok {
		logger = fieldsLogger.WithFields(cloneFields(fields))
	}
	args := flattenFields(fields)
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "error":
		logger.Error(message, args...)
	case "warn":
		logger.Warn(message, args...)
	default:
		logger.Info(message, args...)
	}
}

func (p *Plugin) recordCounter(ctx context.Context, name string, value int64, tags map[string]string) {
	if p == nil || p.metricsRecorder == nil {
		return
	}
	p.metricsRecorder.IncCounter(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func (p *Plugin) recordHistogram(ctx context.Context, name string, value float64, tags map[string]string) {
	if p == nil || p.metricsRecorder == nil {
		return
	}
	p.metricsRecorder.ObserveHistogram(ctx, strings.TrimSpace(name), value, cloneTags(tags))
}

func cloneFields(fields map[string]any) map[string]any {
	if len(fields) == 0 {
		return map[string]any{}
	}
	copied := make(map[string]any, len(fields))
	for key, value := range fields {
		copied[key] = value
	}
	return copied
}

func flattenFields(fields map[string]any) []any {
	if len(fields) == 0 {
		return nil
	}
	keys := make([]string, 0, len(fields))
	for key := range fields {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	args := make([]any, 0, len(keys)*2)
	for _, key := range keys {
		args = append(args, key, fields[key])
	}
	return args
}

func normalizeOperation(operation string) string {
	operation = strings.TrimSpace(strings.ToLower(operation))
	operation = strings.ReplaceAll(operation, " ", "_")
	operation = strings.ReplaceAll(operation, "-", "_")
	return operation
}
