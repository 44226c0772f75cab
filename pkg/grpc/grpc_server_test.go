package grpc

import (
	"context"
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/hospital/mocks"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/realtime"
	"liyu1981.xyz/ward-alert-service/pkg/session"
	_ "liyu1981.xyz/ward-alert-service/pkg/testing"
)

const bufSize = 1024 * 1024

type testEnv struct {
	client   WardServiceClient
	conn     *grpc.ClientConn
	ws       *WardServer
	alert    *mocks.MockIAlert
	roster   *mocks.MockIRoster
	identity *mocks.MockIIdentity
}

func startTestServer(t *testing.T, limiterStore *hospital.RateLimiterStore, channel realtime.Channel) *testEnv {
	ctrl := gomock.NewController(t)
	env := &testEnv{
		alert:    mocks.NewMockIAlert(ctrl),
		roster:   mocks.NewMockIRoster(ctrl),
		identity: mocks.NewMockIIdentity(ctrl),
	}
	h := (&hospital.Hospital{}).WithServices(hospital.ServiceOpts{
		Alert:    env.alert,
		Roster:   env.roster,
		Identity: env.identity,
	})
	env.ws = &WardServer{
		Hospital:         h,
		Sessions:         session.NewManager("test-secret", time.Hour),
		Realtime:         channel,
		RateLimiterStore: limiterStore,
	}

	listener := bufconn.Listen(bufSize)
	server := NewServer(env.ws)
	go func() {
		_ = server.Serve(listener)
	}()
	t.Cleanup(server.Stop)

	conn, err := grpc.DialContext(context.Background(), "bufnet",
		grpc.WithContextDialer(func(ctx context.Context, s string) (net.Conn, error) {
			return listener.Dial()
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	env.conn = conn
	env.client = NewWardServiceClient(conn)
	return env
}

func (env *testEnv) as(t *testing.T, id session.Identity) context.Context {
	s, err := env.ws.Sessions.Login(id)
	require.NoError(t, err)
	return metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+s.Token)
}

var (
	patientMaria = session.Identity{Role: models.RolePatient, UserID: "p1", DisplayName: "Maria", WardID: "w1", BedID: "101"}
	nurseAna     = session.Identity{Role: models.RoleNurse, UserID: "n1", DisplayName: "Ana", WardID: "w1"}
	wardAdmin    = session.Identity{Role: models.RoleWardAdmin, UserID: "w1", WardID: "w1"}
)

func TestHealthService(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	resp, err := healthpb.NewHealthClient(env.conn).Check(context.Background(),
		&healthpb.HealthCheckRequest{Service: WardService_ServiceDesc.ServiceName})
	require.NoError(t, err)
	assert.Equal(t, healthpb.HealthCheckResponse_SERVING, resp.Status)
}

func TestValidateTokenThenCreateAlert(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	env.identity.EXPECT().ValidateToken(gomock.Any(), "101", "tok-abc").Return(&hospital.TokenValidation{
		Valid:   true,
		Patient: &models.Patient{ID: "p1", WardID: "w1", BedID: "101", Name: "Maria"},
	}, nil)
	env.roster.EXPECT().FindPatientByBed(gomock.Any(), "101").
		Return(&models.Patient{ID: "p1", WardID: "w1", BedID: "101"}, nil)
	env.alert.EXPECT().CreateAlert(gomock.Any(), hospital.CreateAlertInput{
		BedID: "101", PatientID: "p1", PatientName: "Maria", WardID: "w1",
	}).Return(&hospital.AlertReceipt{
		Alert:         models.Alert{ID: "a1", BedID: "101"},
		NurseAssigned: true,
	}, nil)

	validation, err := env.client.ValidateToken(context.Background(), &ValidateTokenRequest{BedId: "101", Token: "tok-abc"})
	require.NoError(t, err)
	require.True(t, validation.Status.Success)
	require.True(t, validation.Valid)
	assert.Equal(t, "Maria", validation.Patient.Name)

	ctx := metadata.AppendToOutgoingContext(context.Background(), "authorization", "Bearer "+validation.SessionToken)
	resp, err := env.client.CreateAlert(ctx, &CreateAlertRequest{})
	require.NoError(t, err)
	require.True(t, resp.Status.Success, resp.Status.Message)
	assert.Equal(t, "a1", resp.Receipt.Alert.ID)

	resp, err = env.client.CreateAlert(ctx, &CreateAlertRequest{BedId: "202"})
	require.NoError(t, err)
	assert.False(t, resp.Status.Success)
	assert.Equal(t, errBedMismatch.Error(), resp.Status.Message)
}

func TestValidateTokenRejected(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	env.identity.EXPECT().ValidateToken(gomock.Any(), "101", "tok-old").Return(&hospital.TokenValidation{Valid: false}, nil)

	resp, err := env.client.ValidateToken(context.Background(), &ValidateTokenRequest{BedId: "101", Token: "tok-old"})
	require.NoError(t, err)
	assert.True(t, resp.Status.Success)
	assert.False(t, resp.Valid)
	assert.Empty(t, resp.SessionToken)

	resp, err = env.client.ValidateToken(context.Background(), &ValidateTokenRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Status.Success)
	assert.Contains(t, resp.Status.Message, "validation error")
}

func TestAuthInterceptor(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	_, err := env.client.ConfirmAlert(context.Background(), &ResolveAlertRequest{AlertId: "a1"})
	require.Error(t, err)
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	_, err = env.client.CreateAlert(env.as(t, nurseAna), &CreateAlertRequest{})
	require.Error(t, err)
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	_, err = env.client.PostLimiter(env.as(t, patientMaria), &PostLimiterRequest{BedId: "101", BedRate: 1, BedBurst: 1})
	assert.Equal(t, codes.PermissionDenied, status.Code(err))

	// a newer login ends the older session
	old := env.as(t, nurseAna)
	_ = env.as(t, nurseAna)
	_, err = env.client.ConfirmAlert(old, &ResolveAlertRequest{AlertId: "a1"})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestCreateAlertAfterDischarge(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	env.roster.EXPECT().FindPatientByBed(gomock.Any(), "101").Return(nil, hospital.ErrPatientNotFound)
	env.alert.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).Times(0)

	ctx := env.as(t, patientMaria)
	_, err := env.client.CreateAlert(ctx, &CreateAlertRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))

	// the session is gone, so the interceptor refuses the retry
	_, err = env.client.CreateAlert(ctx, &CreateAlertRequest{})
	assert.Equal(t, codes.Unauthenticated, status.Code(err))
}

func TestRateLimitInterceptor_CreateAlert(t *testing.T) {
	common.SetTestLoggerNop()

	limiterStore := hospital.NewRateLimiterStore(2, 2) // 2 requests per second per bed
	env := startTestServer(t, limiterStore, nil)

	env.roster.EXPECT().FindPatientByBed(gomock.Any(), "101").
		Return(&models.Patient{ID: "p1", WardID: "w1", BedID: "101"}, nil).Times(2)
	env.alert.EXPECT().CreateAlert(gomock.Any(), gomock.Any()).
		Return(&hospital.AlertReceipt{Alert: models.Alert{ID: "a1"}}, nil).Times(2)

	ctx := env.as(t, patientMaria)
	for i := 0; i < 2; i++ {
		resp, err := env.client.CreateAlert(ctx, &CreateAlertRequest{})
		require.NoError(t, err)
		require.True(t, resp.Status.Success)
	}

	_, err := env.client.CreateAlert(ctx, &CreateAlertRequest{})
	require.Error(t, err)
	st, ok := status.FromError(err)
	require.True(t, ok)
	require.Equal(t, codes.ResourceExhausted, st.Code(), "expected ResourceExhausted code")
}

func TestConfirmAndDismiss(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)
	ctx := env.as(t, nurseAna)

	env.alert.EXPECT().ConfirmAlert(gomock.Any(), hospital.ResolveInput{AlertID: "a1", NurseID: "n1", WardID: "w1"}).Return(&hospital.AlertReceipt{
		Alert: models.Alert{ID: "a1", Confirmed: true, Resolution: models.ResolutionConfirmed},
	}, nil)
	env.alert.EXPECT().DismissAlert(gomock.Any(), hospital.ResolveInput{AlertID: "missing", NurseID: "n1", WardID: "w1"}).
		Return(nil, hospital.ErrAlertNotFound)

	resp, err := env.client.ConfirmAlert(ctx, &ResolveAlertRequest{AlertId: "a1"})
	require.NoError(t, err)
	require.True(t, resp.Status.Success)
	assert.Equal(t, models.ResolutionConfirmed, resp.Receipt.Alert.Resolution)

	resp, err = env.client.DismissAlert(ctx, &ResolveAlertRequest{AlertId: "missing"})
	require.NoError(t, err)
	assert.False(t, resp.Status.Success)
	assert.Equal(t, hospital.ErrAlertNotFound.Error(), resp.Status.Message)

	resp, err = env.client.ConfirmAlert(ctx, &ResolveAlertRequest{})
	require.NoError(t, err)
	assert.False(t, resp.Status.Success)
	assert.Contains(t, resp.Status.Message, "validation error")
}

func TestListPendingScopes(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	pending := []models.Alert{{ID: "a1", BedID: "101"}}
	env.roster.EXPECT().GetNurse(gomock.Any(), "n1").Return(&models.Nurse{ID: "n1", BedIDs: []string{"101"}}, nil)
	env.alert.EXPECT().ListPending(gomock.Any(), []string{"101"}).Return(pending, nil)
	env.roster.EXPECT().ListBeds(gomock.Any(), "w1").Return([]models.Bed{{ID: "101"}, {ID: "102"}}, nil)
	env.alert.EXPECT().ListPending(gomock.Any(), []string{"101", "102"}).Return(pending, nil)

	resp, err := env.client.ListPending(env.as(t, nurseAna), &ListPendingRequest{})
	require.NoError(t, err)
	require.True(t, resp.Status.Success)
	require.Len(t, resp.Alerts, 1)
	assert.Equal(t, "a1", resp.Alerts[0].ID)

	resp, err = env.client.ListPending(env.as(t, wardAdmin), &ListPendingRequest{})
	require.NoError(t, err)
	assert.Len(t, resp.Alerts, 1)
}

func TestListPendingOutsideWard(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	env.roster.EXPECT().GetNurse(gomock.Any(), "n1").Return(&models.Nurse{ID: "n1", BedIDs: []string{"101", "102"}}, nil).Times(2)
	env.roster.EXPECT().ListBeds(gomock.Any(), "w1").Return([]models.Bed{{ID: "101"}}, nil)
	env.alert.EXPECT().ListPending(gomock.Any(), []string{"102"}).Return(nil, nil)

	resp, err := env.client.ListPending(env.as(t, nurseAna), &ListPendingRequest{BedIds: []string{"A1"}})
	require.NoError(t, err)
	require.True(t, resp.Status.Success)
	assert.Empty(t, resp.Alerts)

	resp, err = env.client.ListPending(env.as(t, wardAdmin), &ListPendingRequest{BedIds: []string{"A1"}})
	require.NoError(t, err)
	assert.Empty(t, resp.Alerts)

	resp, err = env.client.ListPending(env.as(t, nurseAna), &ListPendingRequest{BedIds: []string{"A1", "102"}})
	require.NoError(t, err)
	require.True(t, resp.Status.Success)
}

func TestPostLimiter(t *testing.T) {
	common.SetTestLoggerNop()
	limiterStore := hospital.NewRateLimiterStore(hospital.DefaultHelpRate, hospital.DefaultHelpBurst)
	env := startTestServer(t, limiterStore, nil)
	ctx := env.as(t, wardAdmin)

	env.roster.EXPECT().GetBed(gomock.Any(), "101").Return(&models.Bed{ID: "101", WardID: "w1"}, nil)
	env.roster.EXPECT().GetBed(gomock.Any(), "other").Return(&models.Bed{ID: "other", WardID: "w2"}, nil)

	resp, err := env.client.PostLimiter(ctx, &PostLimiterRequest{BedId: "101", BedRate: 10, BedBurst: 3})
	require.NoError(t, err)
	require.True(t, resp.Status.Success)
	for i := 0; i < 3; i++ {
		assert.True(t, env.ws.CheckBedLimiter("101"))
	}

	resp, err = env.client.PostLimiter(ctx, &PostLimiterRequest{BedId: "other", BedRate: 10, BedBurst: 3})
	require.NoError(t, err)
	assert.False(t, resp.Status.Success)

	resp, err = env.client.PostLimiter(ctx, &PostLimiterRequest{BedRate: 10, BedBurst: 3})
	require.NoError(t, err)
	assert.False(t, resp.Status.Success)
	assert.Contains(t, resp.Status.Message, "validation error")
}

type fakeChannel struct {
	events []realtime.Event
}

type fakeSubscription struct {
	ch chan realtime.Event
}

func (s *fakeSubscription) Events() <-chan realtime.Event { return s.ch }
func (s *fakeSubscription) Stop()                         {}

func (f *fakeChannel) Watch(ctx context.Context, filter realtime.Filter) (realtime.Subscription, error) {
	ch := make(chan realtime.Event, len(f.events))
	for _, ev := range f.events {
		if filter.Match(ev.Alert) {
			ch <- ev
		}
	}
	close(ch)
	return &fakeSubscription{ch: ch}, nil
}

func TestWatchAlerts(t *testing.T) {
	common.SetTestLoggerNop()
	channel := &fakeChannel{events: []realtime.Event{
		{Kind: models.AlertEventAdded, Alert: models.Alert{ID: "a1", BedID: "101"}},
		{Kind: models.AlertEventAdded, Alert: models.Alert{ID: "a2", BedID: "999"}},
		{Kind: models.AlertEventRemoved, Alert: models.Alert{ID: "a1", BedID: "101", Confirmed: true}},
	}}
	env := startTestServer(t, nil, channel)
	env.roster.EXPECT().GetNurse(gomock.Any(), "n1").Return(&models.Nurse{ID: "n1", BedIDs: []string{"101"}}, nil).Times(2)

	stream, err := env.client.WatchAlerts(env.as(t, nurseAna), &WatchAlertsRequest{BedIds: []string{"999"}})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.FailedPrecondition, status.Code(err))

	stream, err = env.client.WatchAlerts(env.as(t, nurseAna), &WatchAlertsRequest{BedIds: []string{"101"}})
	require.NoError(t, err)

	var got []AlertEvent
	for {
		ev, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, *ev)
	}

	require.Len(t, got, 2)
	assert.Equal(t, models.AlertEventAdded, got[0].Kind)
	assert.Equal(t, models.AlertEventRemoved, got[1].Kind)
	assert.True(t, got[1].Alert.Confirmed)
}

func TestWatchAlertsWithoutChannel(t *testing.T) {
	common.SetTestLoggerNop()
	env := startTestServer(t, nil, nil)

	stream, err := env.client.WatchAlerts(env.as(t, nurseAna), &WatchAlertsRequest{BedIds: []string{"101"}})
	require.NoError(t, err)
	_, err = stream.Recv()
	assert.Equal(t, codes.Unavailable, status.Code(err))
}
