package health

import (
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	"google.golang.org/grpc/health/grpc_health_v1"
)

// Server reports the serving status of the whole process and of named services.
type Server struct {
	*health.Server
	services []string
}

// NewServer returns a health server that starts as SERVING for the process and each service.
func NewServer(services ...string) *Server {
	s := &Server{Server: health.NewServer(), services: services}
	s.SetServing(true)
	return s
}

// Register exposes the health service on srv.
func (s *Server) Register(srv *grpc.Server) {
	grpc_health_v1.RegisterHealthServer(srv, s.Server)
}

// SetServing flips the process and every registered service between SERVING and NOT_SERVING.
func (s *Server) SetServing(serving bool) {
	status := grpc_health_v1.HealthCheckResponse_NOT_SERVING
	if serving {
		status = grpc_health_v1.HealthCheckResponse_SERVING
	}
	s.SetServingStatus("", status)
	for _, name := range s.services {
		s.SetServingStatus(name, status)
	}
}
