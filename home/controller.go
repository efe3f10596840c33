// Package home serves the landing, privacy and error pages.
package home

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/common/correlation"
	"github.com/rainbow-me/myapp/common/env"
	"github.com/rainbow-me/myapp/common/headers"
	"github.com/rainbow-me/myapp/common/logger"
	"github.com/rainbow-me/myapp/errorview"
	"github.com/rainbow-me/myapp/observability"
)

const (
	indexView   = "index.html"
	privacyView = "privacy.html"
	errorView   = "error.html"

	errorMessage = "An error occurred while processing your request."
)

type page struct {
	Title string
}

type errorPage struct {
	Title               string
	Model               errorview.ViewModel
	ShowDevelopmentHint bool
}

type errorResponse struct {
	Message   string `json:"message"`
	RequestID string `json:"requestId,omitempty"`
}

type Controller struct {
	environment env.Environment
}

func NewController(environment env.Environment) *Controller {
	return &Controller{environment: environment}
}

// Register mounts the controller under the conventional {controller}/{action} routes.
func (h *Controller) Register(r gin.IRouter) {
	r.GET("/", h.Index)
	r.GET("/Home", h.Index)
	r.GET("/Home/Index", h.Index)
	r.GET("/Privacy", h.Privacy)
	r.GET("/Home/Privacy", h.Privacy)
	r.GET("/Error", h.Error)
	r.GET("/Home/Error", h.Error)
	r.StaticFS("/static", StaticFS())
}

func (h *Controller) Index(c *gin.Context) {
	c.HTML(http.StatusOK, indexView, page{Title: "Home Page"})
}

func (h *Controller) Privacy(c *gin.Context) {
	c.HTML(http.StatusOK, privacyView, page{Title: "Privacy Policy"})
}

// Error renders the error page for a direct visit.
func (h *Controller) Error(c *gin.Context) {
	h.RenderError(c, http.StatusOK, nil)
}

// RenderError renders the error page with the given status. It doubles as the ErrorRenderer of
// the gin interceptors, so panics and handler errors land on the same page.
func (h *Controller) RenderError(c *gin.Context, status int, err error) {
	ctx := c.Request.Context()
	model := errorview.Resolve(requestContext(c))

	if err != nil {
		logger.FromContext(ctx).Debug("Rendering error page",
			logger.Int("status", status),
			logger.String("shown_request_id", model.RequestID),
		)
	}

	c.Header(headers.HeaderCacheControl, headers.CacheControlNoStore)
	switch c.NegotiateFormat(gin.MIMEHTML, gin.MIMEJSON) {
	case gin.MIMEJSON:
		c.JSON(status, errorResponse{Message: errorMessage, RequestID: model.RequestID})
	default:
		c.HTML(status, errorView, errorPage{
			Title:               "Error",
			Model:               model,
			ShowDevelopmentHint: h.environment != env.EnvironmentProduction,
		})
	}
	c.Abort()
}

// requestContext collects the identifiers of the current request from the values the tracing and
// correlation middlewares stored in the request context.
func requestContext(c *gin.Context) errorview.RequestContext {
	ctx := c.Request.Context()
	return errorview.RequestContext{
		ActiveTraceID:   observability.ActiveTraceID(ctx),
		TraceIdentifier: correlation.RequestIDFromContext(ctx),
	}
}
