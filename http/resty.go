package http

import (
	"net/http"

	"github.com/go-resty/resty/v2"

	"github.com/rainbow-me/myapp/common/logger"
	interceptors "github.com/rainbow-me/myapp/http/interceptors/resty"
)

// NewRestyWithClient builds a resty client on top of client with our tracing and correlation
// interceptors installed.
func NewRestyWithClient(client *http.Client, log *logger.Logger, opt ...interceptors.InterceptorOpt) *resty.Client {
	restyClient := resty.NewWithClient(client)
	interceptors.InjectInterceptors(restyClient, opt...)

	if log != nil {
		restyClient.SetLogger(log)
	}
	return restyClient
}
