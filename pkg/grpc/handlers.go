package grpc

import (
	"context"
	"errors"
	"fmt"

	z "github.com/Oudwins/zog"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/realtime"
	"liyu1981.xyz/ward-alert-service/pkg/session"
)

var errBedMismatch = errors.New("bed does not belong to this session")

func validateID(id *string) z.ZogIssueList {
	var idValidator = z.String().Min(1).Required()
	return idValidator.Validate(id)
}

func validationError(issues z.ZogIssueList) *StatusResponse {
	return &StatusResponse{Success: false, Message: fmt.Sprintf("validation error: %v", issues)}
}

func receiptStatus(receipt *hospital.AlertReceipt) *StatusResponse {
	st := statusOK()
	if receipt.Notice != "" {
		st.Message = receipt.Notice
	}
	return st
}

func (s *WardServer) CreateAlert(ctx context.Context, req *CreateAlertRequest) (*AlertResponse, error) {
	sess, _ := session.FromContext(ctx)
	if req.BedId != "" && req.BedId != sess.BedID {
		return &AlertResponse{Status: statusFailed(errBedMismatch)}, nil
	}

	onBed, err := s.Hospital.PatientOnBed(ctx, sess.BedID, sess.UserID)
	if err != nil {
		return &AlertResponse{Status: statusFailed(err)}, nil
	}
	if !onBed {
		s.Sessions.Revoke(sess.Role, sess.UserID)
		return nil, status.Error(codes.Unauthenticated, session.ErrInvalidSession.Error())
	}

	receipt, err := s.Hospital.Alert.CreateAlert(ctx, hospital.CreateAlertInput{
		BedID:       sess.BedID,
		PatientID:   sess.UserID,
		PatientName: sess.DisplayName,
		WardID:      sess.WardID,
	})
	if err != nil {
		return &AlertResponse{Status: statusFailed(err)}, nil
	}
	return &AlertResponse{Status: receiptStatus(receipt), Receipt: receipt}, nil
}

func resolveInput(ctx context.Context, alertID string) hospital.ResolveInput {
	sess, _ := session.FromContext(ctx)
	return hospital.ResolveInput{AlertID: alertID, NurseID: sess.UserID, WardID: sess.WardID}
}

func (s *WardServer) ConfirmAlert(ctx context.Context, req *ResolveAlertRequest) (*AlertResponse, error) {
	if err := validateID(&req.AlertId); err != nil {
		return &AlertResponse{Status: validationError(err)}, nil
	}
	receipt, err := s.Hospital.Alert.ConfirmAlert(ctx, resolveInput(ctx, req.AlertId))
	if err != nil {
		return &AlertResponse{Status: statusFailed(err)}, nil
	}
	return &AlertResponse{Status: receiptStatus(receipt), Receipt: receipt}, nil
}

func (s *WardServer) DismissAlert(ctx context.Context, req *ResolveAlertRequest) (*AlertResponse, error) {
	if err := validateID(&req.AlertId); err != nil {
		return &AlertResponse{Status: validationError(err)}, nil
	}
	receipt, err := s.Hospital.Alert.DismissAlert(ctx, resolveInput(ctx, req.AlertId))
	if err != nil {
		return &AlertResponse{Status: statusFailed(err)}, nil
	}
	return &AlertResponse{Status: receiptStatus(receipt), Receipt: receipt}, nil
}

func (s *WardServer) callerBeds(ctx context.Context) (bedIDs []string, all bool, err error) {
	sess, _ := session.FromContext(ctx)
	switch sess.Role {
	case models.RoleNurse:
		nurse, err := s.Hospital.Roster.GetNurse(ctx, sess.UserID)
		if err != nil {
			return nil, false, err
		}
		return nurse.BedIDs, false, nil
	case models.RoleWardAdmin:
		beds, err := s.Hospital.Roster.ListBeds(ctx, sess.WardID)
		if err != nil {
			return nil, false, err
		}
		return common.Mapper(beds, func(b models.Bed) string { return b.ID }), false, nil
	}
	return nil, true, nil
}

// bedScope mirrors the HTTP rule: a nurse sees its assigned beds, a ward
// admin its ward, and requested beds only narrow that. all is true for the
// super admin without a filter.
func (s *WardServer) bedScope(ctx context.Context, requested []string) (bedIDs []string, all bool, err error) {
	allowed, all, err := s.callerBeds(ctx)
	if err != nil || len(requested) == 0 {
		return allowed, all, err
	}
	if all {
		return requested, false, nil
	}
	visible := common.StringSet(allowed)
	return common.Filter(requested, func(id string) bool { return visible[id] }), false, nil
}

func (s *WardServer) ListPending(ctx context.Context, req *ListPendingRequest) (*ListPendingResponse, error) {
	bedIDs, all, err := s.bedScope(ctx, req.BedIds)
	if err != nil {
		return &ListPendingResponse{Status: statusFailed(err)}, nil
	}
	if len(bedIDs) == 0 && !all {
		return &ListPendingResponse{Status: statusOK(), Alerts: []models.Alert{}}, nil
	}

	alerts, err := s.Hospital.Alert.ListPending(ctx, bedIDs)
	if err != nil {
		return &ListPendingResponse{Status: statusFailed(err)}, nil
	}
	return &ListPendingResponse{Status: statusOK(), Alerts: alerts}, nil
}

func (s *WardServer) ValidateToken(ctx context.Context, req *ValidateTokenRequest) (*ValidateTokenResponse, error) {
	if err := validateID(&req.BedId); err != nil {
		return &ValidateTokenResponse{Status: validationError(err)}, nil
	}

	result, err := s.Hospital.Identity.ValidateToken(ctx, req.BedId, req.Token)
	if err != nil {
		return &ValidateTokenResponse{Status: statusFailed(err)}, nil
	}
	if !result.Valid {
		return &ValidateTokenResponse{Status: statusOK(), Valid: false}, nil
	}

	p := result.Patient
	sess, err := s.Sessions.Login(session.Identity{
		Role:        models.RolePatient,
		UserID:      p.ID,
		DisplayName: p.Name,
		WardID:      p.WardID,
		BedID:       p.BedID,
	})
	if err != nil {
		return &ValidateTokenResponse{Status: statusFailed(err)}, nil
	}
	return &ValidateTokenResponse{Status: statusOK(), Valid: true, Patient: p, SessionToken: sess.Token}, nil
}

func (s *WardServer) PostLimiter(ctx context.Context, req *PostLimiterRequest) (*PostLimiterResponse, error) {
	if err := validateID(&req.BedId); err != nil {
		return &PostLimiterResponse{Status: validationError(err)}, nil
	}

	var rateValidator = z.Float64().Required()
	if err := rateValidator.Validate(&req.BedRate); err != nil {
		return &PostLimiterResponse{Status: validationError(err)}, nil
	}

	var burstValidator = z.Int32().Required()
	if err := burstValidator.Validate(&req.BedBurst); err != nil {
		return &PostLimiterResponse{Status: validationError(err)}, nil
	}

	bed, err := s.Hospital.Roster.GetBed(ctx, req.BedId)
	if err != nil {
		return &PostLimiterResponse{Status: statusFailed(err)}, nil
	}
	if sess, _ := session.FromContext(ctx); sess.Role != models.RoleSuperadmin && sess.WardID != bed.WardID {
		return &PostLimiterResponse{Status: statusFailed(hospital.ErrBedNotFound)}, nil
	}

	if s.RateLimiterStore == nil {
		return &PostLimiterResponse{
			Status: &StatusResponse{
				Success: false,
				Message: "RateLimiterStore is not used. No effect.",
			},
		}, nil
	}

	s.RateLimiterStore.SetLimiter(req.BedId, rate.Limit(req.BedRate), int(req.BedBurst))
	return &PostLimiterResponse{Status: statusOK()}, nil
}

// WatchAlerts streams realtime changes until the client goes away.
func (s *WardServer) WatchAlerts(req *WatchAlertsRequest, stream WardService_WatchAlertsServer) error {
	if s.Realtime == nil {
		return status.Error(codes.Unavailable, realtime.ErrNoChannel.Error())
	}

	ctx := stream.Context()
	bedIDs, all, err := s.bedScope(ctx, req.BedIds)
	if err != nil {
		return status.Error(codes.Internal, err.Error())
	}
	if len(bedIDs) == 0 && !all {
		return status.Error(codes.FailedPrecondition, "no beds assigned")
	}

	sub, err := s.Realtime.Watch(ctx, realtime.Filter{BedIDs: bedIDs})
	if err != nil {
		return status.Error(codes.Unavailable, err.Error())
	}
	defer sub.Stop()

	s.logger().Info("Alert watch opened", zap.Strings("bed_ids", bedIDs))
	for {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return nil
			}
			if err := stream.Send(&ev); err != nil {
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
