package headers

// Request Identification Headers
const (
	// HeaderXRequestID carries the per-request identifier. Inbound values are trusted and reused,
	// otherwise one is generated; it is always echoed back on the response.
	HeaderXRequestID = "x-request-id"
)

// Correlation and Trace ID Headers
const (
	// HeaderXCorrelationID is used to correlate related requests across multiple
	// services in a distributed system
	HeaderXCorrelationID = "x-correlation-id"

	// HeaderXCorrelationData carries the JSON encoded correlation map between services
	HeaderXCorrelationData = "x-correlation-data"

	// HeaderXTraceID exposes the DataDog trace id of the request to callers.
	HeaderXTraceID = "x-trace-id"

	// HeaderTraceParent is the W3C trace context header
	HeaderTraceParent = "traceparent"
)

// Caching and content headers
const (
	HeaderCacheControl = "Cache-Control"
	HeaderAccept       = "Accept"

	CacheControlNoStore = "no-store"
)

// Client Identification Headers
const (
	// HeaderClientTaggingHeader identifies the calling application
	HeaderClientTaggingHeader = "x-client-id"
)

// GetHeadersToExpose lists the response headers browsers may read across origins.
func GetHeadersToExpose() []string {
	return []string{
		HeaderXRequestID,
		HeaderXTraceID,
	}
}
