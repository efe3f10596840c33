// Package errorview decides which identifier an error page shows to the user.
//
// The identifier lets a user quote something support can search for. When a distributed trace is
// active its id is the most useful one, since it links every service the request touched;
// otherwise the per-request identifier assigned on ingress is used.
package errorview

// RequestContext carries the identifiers known for the request being reported. Callers fill it
// explicitly; nothing is read from ambient state.
type RequestContext struct {
	// ActiveTraceID identifies the active tracing span, empty when tracing is not active.
	ActiveTraceID string
	// TraceIdentifier is the per-request identifier assigned to every inbound request.
	TraceIdentifier string
}

// ViewModel is handed to the error template. An empty RequestID means unset.
type ViewModel struct {
	RequestID string `json:"requestId,omitempty"`
}

// ShowRequestID reports whether the page should display the request id block.
func (m ViewModel) ShowRequestID() bool {
	return m.RequestID != ""
}

// Resolve prefers the active trace id and falls back to the request's trace identifier.
func Resolve(rc RequestContext) ViewModel {
	if rc.ActiveTraceID != "" {
		return ViewModel{RequestID: rc.ActiveTraceID}
	}
	return ViewModel{RequestID: rc.TraceIdentifier}
}
