package app

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/rainbow-me/myapp/home"
	myhttp "github.com/rainbow-me/myapp/http"
	gininterceptors "github.com/rainbow-me/myapp/http/interceptors/gin"
	"github.com/rainbow-me/myapp/probe"
)

// Handler builds the public web handler: the Home routes behind the default interceptors, with
// the Home error page rendering handler errors, panics and unknown routes.
func (a *App) Handler() http.Handler {
	controller := home.NewController(a.environment)

	opts := []gininterceptors.InterceptorOpt{
		gininterceptors.WithTracingEnabled(a.cfg.Tracing.Enabled),
		gininterceptors.WithCompressionLevel(a.cfg.HTTP.CompressionLevel),
		gininterceptors.WithTimeout(a.cfg.HTTP.RequestTimeout),
		gininterceptors.WithErrorRenderer(controller.RenderError),
		gininterceptors.WithEnvironment(a.environment),
	}
	if a.cfg.HTTP.Trace {
		opts = append(opts, gininterceptors.WithHTTPTrace())
	} else if a.cfg.HTTP.Debug {
		opts = append(opts, gininterceptors.WithHTTPDebug())
	}

	engine := gin.New()
	engine.Use(gininterceptors.DefaultInterceptors(opts...)...)
	engine.SetHTMLTemplate(home.Templates())

	controller.Register(engine)
	engine.GET(probe.HealthPath, func(c *gin.Context) {
		c.JSON(http.StatusOK, probe.Health{Status: probe.StatusOK})
	})
	engine.NoRoute(gininterceptors.NotFoundHandler(controller.RenderError))

	handler := a.cfg.HTTP.CORS.Apply(engine)
	if a.cfg.HTTP.ProxyHeaders {
		handler = myhttp.WithProxyHeaders(handler)
	}
	return handler
}
