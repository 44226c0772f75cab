package http

import (
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/export"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/push"
	"liyu1981.xyz/ward-alert-service/pkg/realtime"
	"liyu1981.xyz/ward-alert-service/pkg/session"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// callerBeds lists the beds the session may see: a nurse its assigned beds,
// a ward admin every bed of its ward. all is true for the super admin.
func (rs *RestfulServer) callerBeds(c *gin.Context) (bedIDs []string, all bool, err error) {
	ctx := c.Request.Context()
	s := currentSession(c)
	switch s.Role {
	case models.RoleNurse:
		nurse, err := rs.Hospital.Roster.GetNurse(ctx, s.UserID)
		if err != nil {
			return nil, false, err
		}
		return nurse.BedIDs, false, nil
	case models.RoleWardAdmin:
		beds, err := rs.Hospital.Roster.ListBeds(ctx, s.WardID)
		if err != nil {
			return nil, false, err
		}
		return common.Mapper(beds, func(b models.Bed) string { return b.ID }), false, nil
	}
	return nil, true, nil
}

// bedScope resolves the beds an alert query covers. Explicit ?bed_id= values
// (repeated or comma separated) narrow the caller's own beds and never widen
// them. all is true only for the super admin without a filter.
func (rs *RestfulServer) bedScope(c *gin.Context) (bedIDs []string, all bool, err error) {
	var requested []string
	for _, v := range c.QueryArray("bed_id") {
		for _, id := range strings.Split(v, ",") {
			if id = strings.TrimSpace(id); id != "" {
				requested = append(requested, id)
			}
		}
	}

	allowed, all, err := rs.callerBeds(c)
	if err != nil || len(requested) == 0 {
		return allowed, all, err
	}
	if all {
		return requested, false, nil
	}
	visible := common.StringSet(allowed)
	return common.Filter(requested, func(id string) bool { return visible[id] }), false, nil
}

func (rs *RestfulServer) ListPendingAlerts(c *gin.Context) {
	bedIDs, all, err := rs.bedScope(c)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	if len(bedIDs) == 0 && !all {
		respond(c, http.StatusOK, []models.Alert{}, "")
		return
	}

	alerts, err := rs.Hospital.Alert.ListPending(c.Request.Context(), bedIDs)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, alerts, "")
}

// CreateAlert is the patient's help button. The bed and patient come from the
// session, never from the body, and the patient must still occupy the bed.
func (rs *RestfulServer) CreateAlert(c *gin.Context) {
	s := currentSession(c)

	onBed, err := rs.Hospital.PatientOnBed(c.Request.Context(), s.BedID, s.UserID)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	if !onBed {
		rs.Sessions.Revoke(s.Role, s.UserID)
		fail(c, http.StatusUnauthorized, session.ErrInvalidSession)
		return
	}

	if !rs.CheckBedLimiter(s.BedID) {
		fail(c, http.StatusTooManyRequests, "help already requested, please wait")
		return
	}

	receipt, err := rs.Hospital.Alert.CreateAlert(c.Request.Context(), hospital.CreateAlertInput{
		BedID:       s.BedID,
		PatientID:   s.UserID,
		PatientName: s.DisplayName,
		WardID:      s.WardID,
	})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusCreated, receipt, receipt.Notice)
}

// resolveInput limits a resolve to alerts of the nurse's own ward.
func resolveInput(c *gin.Context) hospital.ResolveInput {
	s := currentSession(c)
	return hospital.ResolveInput{AlertID: c.Param("id"), NurseID: s.UserID, WardID: s.WardID}
}

func (rs *RestfulServer) ConfirmAlert(c *gin.Context) {
	receipt, err := rs.Hospital.Alert.ConfirmAlert(c.Request.Context(), resolveInput(c))
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, receipt, receipt.Notice)
}

func (rs *RestfulServer) DismissAlert(c *gin.Context) {
	receipt, err := rs.Hospital.Alert.DismissAlert(c.Request.Context(), resolveInput(c))
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, receipt, receipt.Notice)
}

// StreamAlerts relays the realtime channel as server-sent events named after
// the change kind. The subscription ends with the request.
func (rs *RestfulServer) StreamAlerts(c *gin.Context) {
	if rs.Realtime == nil {
		fail(c, http.StatusServiceUnavailable, realtime.ErrNoChannel)
		return
	}
	bedIDs, all, err := rs.bedScope(c)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	if len(bedIDs) == 0 && !all {
		fail(c, http.StatusNotFound, "no beds assigned")
		return
	}

	ctx := c.Request.Context()
	sub, err := rs.Realtime.Watch(ctx, realtime.Filter{BedIDs: bedIDs})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	defer sub.Stop()

	s := currentSession(c)
	rs.logger().Info("Alert stream opened", zap.String("user_id", s.UserID), zap.Strings("bed_ids", bedIDs))

	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Stream(func(w io.Writer) bool {
		select {
		case ev, ok := <-sub.Events():
			if !ok {
				return false
			}
			c.SSEvent(string(ev.Kind), ev.Alert)
			return true
		case <-ctx.Done():
			return false
		}
	})

	rs.logger().Info("Alert stream closed", zap.String("user_id", s.UserID))
}

func (rs *RestfulServer) ExportAlerts(c *gin.Context) {
	wardID := c.Param("id")
	if !inScope(c, wardID, hospital.ErrWardNotFound) {
		return
	}

	alerts, err := rs.Hospital.Alert.GetAlertHistory(c.Request.Context(), wardID)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	data, err := export.AlertHistory(alerts)
	if err != nil {
		rs.failWith(c, err)
		return
	}

	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="alerts-%s.xlsx"`, wardID))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// NotifyRequest is validated with gin binding: zog shapes cannot describe the
// free-form data map.
type NotifyRequest struct {
	Token string            `json:"token" binding:"required"`
	Title string            `json:"title"`
	Body  string            `json:"body"`
	Data  map[string]string `json:"data"`
}

func (rs *RestfulServer) Notify(c *gin.Context) {
	var req NotifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	if rs.Relay == nil {
		fail(c, http.StatusServiceUnavailable, push.ErrMissingCredential)
		return
	}

	err := rs.Relay.Notify(c.Request.Context(), push.Message{
		Token: req.Token,
		Title: req.Title,
		Body:  req.Body,
		Data:  req.Data,
	})
	if err != nil {
		rs.logger().Warn("Push relay failed", zap.Error(err))
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "")
}
