package grpc

import (
	"context"
	"reflect"
	"strings"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/session"
)

// methodRoles lists who may call each guarded method. Methods missing here,
// ValidateToken and the health service, are public.
var methodRoles = map[string][]models.Role{
	WardService_CreateAlert_FullMethodName:  {models.RolePatient},
	WardService_ConfirmAlert_FullMethodName: {models.RoleNurse},
	WardService_DismissAlert_FullMethodName: {models.RoleNurse},
	WardService_ListPending_FullMethodName:  {models.RoleSuperadmin, models.RoleWardAdmin, models.RoleNurse},
	WardService_PostLimiter_FullMethodName:  {models.RoleSuperadmin, models.RoleWardAdmin},
	WardService_WatchAlerts_FullMethodName:  {models.RoleWardAdmin, models.RoleNurse},
}

func (s *WardServer) authenticate(ctx context.Context, fullMethod string) (context.Context, error) {
	roles, guarded := methodRoles[fullMethod]
	if !guarded {
		return ctx, nil
	}

	var token string
	if md, ok := metadata.FromIncomingContext(ctx); ok {
		for _, v := range md.Get("authorization") {
			if t, ok := strings.CutPrefix(v, "Bearer "); ok {
				token = strings.TrimSpace(t)
			}
		}
	}

	sess, err := s.Sessions.Authenticate(token)
	if err != nil {
		return nil, status.Error(codes.Unauthenticated, session.ErrInvalidSession.Error())
	}
	if !sess.HasRole(roles...) {
		return nil, status.Errorf(codes.PermissionDenied, "role %s may not call %s", sess.Role, fullMethod)
	}
	return session.WithContext(ctx, sess), nil
}

func (s *WardServer) CreateAuthInterceptor() grpc.UnaryServerInterceptor {
	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		ctx, err := s.authenticate(ctx, info.FullMethod)
		if err != nil {
			return nil, err
		}
		return handler(ctx, req)
	}
}

type authedStream struct {
	grpc.ServerStream
	ctx context.Context
}

func (a *authedStream) Context() context.Context {
	return a.ctx
}

func (s *WardServer) CreateStreamAuthInterceptor() grpc.StreamServerInterceptor {
	return func(
		srv any,
		ss grpc.ServerStream,
		info *grpc.StreamServerInfo,
		handler grpc.StreamHandler,
	) error {
		ctx, err := s.authenticate(ss.Context(), info.FullMethod)
		if err != nil {
			return err
		}
		return handler(srv, &authedStream{ServerStream: ss, ctx: ctx})
	}
}

// CreateRateLimitInterceptor limits the target request types per bed. The bed
// comes from the request, or from the patient session when the request has none.
func (s *WardServer) CreateRateLimitInterceptor(targetReqTypes ...any) grpc.UnaryServerInterceptor {
	targetTypeMap := common.Reducer(targetReqTypes,
		func(m map[reflect.Type]bool, t any) map[reflect.Type]bool {
			m[reflect.TypeOf(t)] = true
			return m
		},
		map[reflect.Type]bool{},
	)

	return func(
		ctx context.Context,
		req any,
		info *grpc.UnaryServerInfo,
		handler grpc.UnaryHandler,
	) (any, error) {
		if _, ok := targetTypeMap[reflect.TypeOf(req)]; ok {
			if r, ok := req.(interface{ GetBedId() string }); ok {
				bedID := r.GetBedId()
				if sess, ok := session.FromContext(ctx); ok && sess.BedID != "" {
					bedID = sess.BedID
				}
				if !s.CheckBedLimiter(bedID) {
					return nil, status.Errorf(codes.ResourceExhausted, "rate limit exceeded")
				}
			}
		}

		return handler(ctx, req)
	}
}
