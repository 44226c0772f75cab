package grpc

import (
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc"
	"google.golang.org/grpc/health"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/realtime"
	"liyu1981.xyz/ward-alert-service/pkg/session"
)

type WardServer struct {
	Hospital         *hospital.Hospital
	Sessions         *session.Manager
	Realtime         realtime.Channel
	RateLimiterStore *hospital.RateLimiterStore
	UnimplementedWardServiceServer
}

func (s *WardServer) logger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameGrpcServer)
}

func (s *WardServer) GetLimiter(bedID string) *rate.Limiter {
	if s.RateLimiterStore == nil {
		return nil
	} else {
		return s.RateLimiterStore.GetLimiter(bedID)
	}
}

func (s *WardServer) CheckBedLimiter(bedID string) bool {
	limiter := s.GetLimiter(bedID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

// NewServer builds a grpc.Server carrying WardService and the standard health
// service. Authentication runs before the per-bed rate limit.
func NewServer(ws *WardServer, opts ...grpc.ServerOption) *grpc.Server {
	opts = append(opts,
		grpc.ChainUnaryInterceptor(
			ws.CreateAuthInterceptor(),
			ws.CreateRateLimitInterceptor(&CreateAlertRequest{}),
		),
		grpc.ChainStreamInterceptor(ws.CreateStreamAuthInterceptor()),
	)
	server := grpc.NewServer(opts...)
	RegisterWardServiceServer(server, ws)

	healthServer := health.NewServer()
	healthServer.SetServingStatus(WardService_ServiceDesc.ServiceName, healthpb.HealthCheckResponse_SERVING)
	healthpb.RegisterHealthServer(server, healthServer)

	return server
}
