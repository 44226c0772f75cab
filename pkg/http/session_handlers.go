package http

import (
	"errors"
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/session"
)

// LoginRequest carries the credential of one role: username/password for
// admins, the badge id for nurses, bed id and token for patients.
type LoginRequest struct {
	Role     string `json:"role"`
	Username string `json:"username"`
	Password string `json:"password"`
	UserID   string `json:"user_id"`
	BedID    string `json:"bed_id"`
	Token    string `json:"token"`
}

var loginRequestSchema = z.Struct(z.Shape{
	"Role":     z.String().Required(),
	"Username": z.String().Optional(),
	"Password": z.String().Optional(),
	"UserID":   z.String().Optional(),
	"BedID":    z.String().Optional(),
	"Token":    z.String().Optional(),
})

func (rs *RestfulServer) Login(c *gin.Context) {
	var req LoginRequest
	if err := loginRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	identity, err := rs.identify(c, req)
	if err != nil {
		rs.failWith(c, err)
		return
	}

	s, err := rs.Sessions.Login(*identity)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, s, "")
}

func (rs *RestfulServer) identify(c *gin.Context, req LoginRequest) (*session.Identity, error) {
	ctx := c.Request.Context()

	switch models.Role(req.Role) {
	case models.RoleSuperadmin:
		if !rs.Superadmin.Match(req.Username, req.Password) {
			return nil, hospital.ErrInvalidCredentials
		}
		return &session.Identity{Role: models.RoleSuperadmin, UserID: req.Username, DisplayName: req.Username}, nil

	case models.RoleWardAdmin:
		ward, err := rs.Hospital.Roster.AuthenticateWard(ctx, req.Username, req.Password)
		if err != nil {
			return nil, err
		}
		return &session.Identity{Role: models.RoleWardAdmin, UserID: ward.ID, DisplayName: ward.Name, WardID: ward.ID}, nil

	case models.RoleNurse:
		if req.UserID == "" {
			return nil, hospital.ErrInvalidCredentials
		}
		nurse, err := rs.Hospital.Roster.GetNurse(ctx, req.UserID)
		if errors.Is(err, hospital.ErrNurseNotFound) {
			return nil, hospital.ErrInvalidCredentials
		}
		if err != nil {
			return nil, err
		}
		return &session.Identity{Role: models.RoleNurse, UserID: nurse.ID, DisplayName: nurse.Name, WardID: nurse.WardID}, nil

	case models.RolePatient:
		return rs.identifyPatient(c, req.BedID, req.Token)
	}
	return nil, hospital.ErrInvalidCredentials
}

func (rs *RestfulServer) identifyPatient(c *gin.Context, bedID, token string) (*session.Identity, error) {
	result, err := rs.Hospital.Identity.ValidateToken(c.Request.Context(), bedID, token)
	if err != nil {
		return nil, err
	}
	if !result.Valid {
		return nil, hospital.ErrInvalidCredentials
	}
	p := result.Patient
	return &session.Identity{Role: models.RolePatient, UserID: p.ID, DisplayName: p.Name, WardID: p.WardID, BedID: p.BedID}, nil
}

func (rs *RestfulServer) Logout(c *gin.Context) {
	if err := rs.Sessions.Logout(bearerToken(c)); err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "")
}

type validateTokenResponse struct {
	Valid   bool             `json:"valid"`
	Patient *models.Patient  `json:"patient,omitempty"`
	Session *session.Session `json:"session,omitempty"`
}

// ValidateToken is the landing of the bed QR code: a valid pair signs the
// patient in straight away.
func (rs *RestfulServer) ValidateToken(c *gin.Context) {
	result, err := rs.Hospital.Identity.ValidateToken(c.Request.Context(), c.Query("bed_id"), c.Query("token"))
	if err != nil {
		rs.failWith(c, err)
		return
	}
	if !result.Valid {
		respond(c, http.StatusOK, validateTokenResponse{Valid: false}, "")
		return
	}

	p := result.Patient
	s, err := rs.Sessions.Login(session.Identity{
		Role:        models.RolePatient,
		UserID:      p.ID,
		DisplayName: p.Name,
		WardID:      p.WardID,
		BedID:       p.BedID,
	})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, validateTokenResponse{Valid: true, Patient: p, Session: s}, "")
}
