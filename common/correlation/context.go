package correlation

import (
	"context"
	"encoding/json"
	"maps"

	"github.com/DataDog/dd-trace-go/v2/ddtrace/tracer"
	"github.com/google/uuid"

	"github.com/rainbow-me/myapp/common/headers"
	"github.com/rainbow-me/myapp/common/logger"
)

// Standard correlation keys
const (
	IDKey        = "correlation_id"
	RequestIDKey = "request_id"
)

// ContextCorrelationHeader HTTP header name for correlation context
const ContextCorrelationHeader = headers.HeaderXCorrelationData

// RequestIDHeader HTTP header name for the per-request identifier
const RequestIDHeader = headers.HeaderXRequestID

type correlationContextKey struct{}

type requestIDContextKey struct{}

// Data represents the correlation context data
type Data map[string]string

// ContextWithCorrelation parses the correlation header into the context.
// A correlation id is generated when none was received.
func ContextWithCorrelation(ctx context.Context, val string) context.Context {
	if val != "" {
		data, err := ParseCorrelationHeader(val)
		if err != nil {
			logger.FromContext(ctx).Warn("failed to parse correlation header", logger.Error(err))
		} else {
			ctx = Set(ctx, data)
		}
	}
	if ID(ctx) == "" {
		ctx = SetID(ctx, uuid.NewString())
	}
	return ctx
}

// ContextWithRequestID stores the request identifier in the context, generating a UUID v4 when
// the inbound value is empty. Every request handled by the web application gets one.
func ContextWithRequestID(ctx context.Context, requestID string) context.Context {
	if requestID == "" {
		requestID = uuid.NewString()
	}
	ctx = context.WithValue(ctx, requestIDContextKey{}, requestID)
	return logger.ContextWithFields(ctx, []logger.Field{logger.String(RequestIDKey, requestID)})
}

// RequestIDFromContext returns the request identifier, or an empty string if none was set.
func RequestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return v
	}
	return ""
}

// Set merges values into a copy of the correlation data held by ctx.
// Empty keys and values are skipped. The stored map must be treated as read-only.
func Set(ctx context.Context, values map[string]string) context.Context {
	if len(values) == 0 {
		return ctx
	}

	data := maps.Clone(Get(ctx))
	for k, v := range values {
		if k != "" && v != "" {
			data[k] = v
		}
	}

	if span, ok := tracer.SpanFromContext(ctx); ok {
		for k, v := range data {
			span.SetBaggageItem(k, v)
		}
	}

	ctx = context.WithValue(ctx, correlationContextKey{}, data)
	return logger.ContextWithFields(ctx, toLogFields(data))
}

// SetKey sets a single correlation value. An empty value removes the key.
func SetKey(ctx context.Context, key, value string) context.Context {
	if key == "" {
		return ctx
	}

	data := maps.Clone(Get(ctx))
	if value != "" {
		data[key] = value
	} else {
		delete(data, key)
	}

	if span, ok := tracer.SpanFromContext(ctx); ok {
		span.SetBaggageItem(key, value)
	}

	ctx = context.WithValue(ctx, correlationContextKey{}, data)
	return logger.ContextWithFields(ctx, toLogFields(data))
}

// Get returns the correlation data from the context, never nil.
func Get(ctx context.Context) Data {
	if ctx == nil {
		return make(Data)
	}
	if v, ok := ctx.Value(correlationContextKey{}).(Data); ok && v != nil {
		return v
	}
	return make(Data)
}

// GetValue returns a specific correlation value by key.
func GetValue(ctx context.Context, key string) string {
	if key == "" {
		return ""
	}
	return Get(ctx)[key]
}

// ID returns the correlation ID from the correlation context.
func ID(ctx context.Context) string {
	return GetValue(ctx, IDKey)
}

// SetID sets the correlation ID in the correlation context.
func SetID(ctx context.Context, correlationID string) context.Context {
	return SetKey(ctx, IDKey, correlationID)
}

func toLogFields(data Data) []logger.Field {
	if len(data) == 0 {
		return nil
	}
	fields := make([]logger.Field, 0, len(data))
	for key, value := range data {
		if value != "" {
			fields = append(fields, logger.String(key, value))
		}
	}
	return fields
}

// Generate creates the correlation header value from the context.
func Generate(ctx context.Context) string {
	data := Get(ctx)
	if len(data) == 0 {
		return ""
	}
	j, _ := json.Marshal(data)
	return string(j)
}

// ParseCorrelationHeader parses the correlation header string into a Data map.
func ParseCorrelationHeader(headerVal string) (Data, error) {
	var data Data
	err := json.Unmarshal([]byte(headerVal), &data)
	return data, err
}
