package http

import (
	"crypto/subtle"
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/push"
	"liyu1981.xyz/ward-alert-service/pkg/realtime"
	"liyu1981.xyz/ward-alert-service/pkg/session"
	"liyu1981.xyz/ward-alert-service/pkg/store"
)

// Credentials of the built-in super admin. An empty Username disables the account.
type Credentials struct {
	Username string
	Password string
}

func (c Credentials) Match(username, password string) bool {
	if c.Username == "" {
		return false
	}
	userOK := subtle.ConstantTimeCompare([]byte(c.Username), []byte(username)) == 1
	passOK := subtle.ConstantTimeCompare([]byte(c.Password), []byte(password)) == 1
	return userOK && passOK
}

type RestfulServer struct {
	Server           *gin.Engine
	Hospital         *hospital.Hospital
	Sessions         *session.Manager
	Realtime         realtime.Channel
	Relay            push.Notifier
	RateLimiterStore *hospital.RateLimiterStore
	Superadmin       Credentials
}

func (rs *RestfulServer) logger() *zap.Logger {
	return common.GetLoggerWith(common.LoggerNameRestfulServer)
}

func (rs *RestfulServer) GetLimiter(bedID string) *rate.Limiter {
	if rs.RateLimiterStore == nil {
		return nil
	} else {
		return rs.RateLimiterStore.GetLimiter(bedID)
	}
}

func (rs *RestfulServer) CheckBedLimiter(bedID string) bool {
	limiter := rs.GetLimiter(bedID)
	if limiter == nil {
		return true
	}
	return limiter.Allow()
}

func (rs *RestfulServer) SetLimiter(bedID string, bedRate float64, bedBurst int) {
	if rs.RateLimiterStore == nil {
		return
	}
	rs.RateLimiterStore.SetLimiter(bedID, rate.Limit(bedRate), bedBurst)
}

func (rs *RestfulServer) Setup() {
	rs.Server.GET("/healthz", rs.HealthCheck)

	rs.Server.POST("/login", rs.Login)
	rs.Server.POST("/logout", rs.requireRole(), rs.Logout)
	rs.Server.GET("/validate-token", rs.ValidateToken)
	rs.Server.POST("/notify", rs.requireRole(), rs.Notify)

	admins := []models.Role{models.RoleSuperadmin, models.RoleWardAdmin}

	wards := rs.Server.Group("/wards")
	{
		wards.GET("", rs.requireRole(models.RoleSuperadmin), rs.ListWards)
		wards.POST("", rs.requireRole(models.RoleSuperadmin), rs.CreateWard)
		wards.PUT("/:id/credentials", rs.requireRole(models.RoleSuperadmin), rs.RotateWardCredentials)
		wards.GET("/:id/alerts/export", rs.requireRole(admins...), rs.ExportAlerts)
	}

	beds := rs.Server.Group("/beds", rs.requireRole(admins...))
	{
		beds.GET("", rs.ListBeds)
		beds.POST("", rs.CreateBed)
		beds.PUT("/:id", rs.UpdateBed)
		beds.DELETE("/:id", rs.DeleteBed)
		beds.PUT("/:id/nurse", rs.AssignBed)
		beds.PUT("/:id/limiter", rs.PostLimiter)
	}

	nurses := rs.Server.Group("/nurses")
	{
		nurses.GET("", rs.requireRole(admins...), rs.ListNurses)
		nurses.POST("", rs.requireRole(admins...), rs.CreateNurse)
		nurses.PUT("/:id", rs.requireRole(models.RoleSuperadmin, models.RoleWardAdmin, models.RoleNurse), rs.UpdateNurse)
		nurses.DELETE("/:id", rs.requireRole(admins...), rs.DeleteNurse)
	}

	patients := rs.Server.Group("/patients", rs.requireRole(admins...))
	{
		patients.GET("", rs.ListPatients)
		patients.POST("", rs.AdmitPatient)
		patients.PUT("/:id", rs.UpdatePatient)
		patients.DELETE("/:id", rs.DischargePatient)
	}

	alerts := rs.Server.Group("/alerts")
	{
		alerts.GET("", rs.requireRole(models.RoleSuperadmin, models.RoleWardAdmin, models.RoleNurse), rs.ListPendingAlerts)
		alerts.POST("", rs.requireRole(models.RolePatient), rs.CreateAlert)
		alerts.POST("/:id/confirm", rs.requireRole(models.RoleNurse), rs.ConfirmAlert)
		alerts.POST("/:id/dismiss", rs.requireRole(models.RoleNurse), rs.DismissAlert)
		alerts.GET("/stream", rs.requireRole(models.RoleWardAdmin, models.RoleNurse), rs.StreamAlerts)
	}
}

// Envelope is the body of every JSON answer.
type Envelope struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Notice  string `json:"notice,omitempty"`
	Error   any    `json:"error,omitempty"`
}

func respond(c *gin.Context, status int, data any, notice string) {
	c.JSON(status, Envelope{Success: true, Data: data, Notice: notice})
}

func fail(c *gin.Context, status int, err any) {
	if e, ok := err.(error); ok {
		err = e.Error()
	}
	c.AbortWithStatusJSON(status, Envelope{Success: false, Error: err})
}

func statusFor(err error) int {
	var gatewayErr *push.GatewayError
	switch {
	case errors.Is(err, hospital.ErrAlertNotFound),
		errors.Is(err, hospital.ErrBedNotFound),
		errors.Is(err, hospital.ErrWardNotFound),
		errors.Is(err, hospital.ErrNurseNotFound),
		errors.Is(err, hospital.ErrPatientNotFound),
		errors.Is(err, store.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, hospital.ErrBedOccupied),
		errors.Is(err, hospital.ErrUsernameTaken),
		errors.Is(err, hospital.ErrWardMismatch):
		return http.StatusConflict
	case errors.Is(err, hospital.ErrInvalidCredentials),
		errors.Is(err, session.ErrInvalidSession):
		return http.StatusUnauthorized
	case errors.Is(err, push.ErrMissingToken):
		return http.StatusBadRequest
	case errors.Is(err, push.ErrMissingCredential):
		return http.StatusServiceUnavailable
	case errors.As(err, &gatewayErr):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// failWith maps a core error onto its status; unexpected errors are logged.
func (rs *RestfulServer) failWith(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		rs.logger().Error("Request failed", zap.String("path", c.FullPath()), zap.Error(err))
	}
	fail(c, status, err)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		return strings.TrimSpace(token)
	}
	return ""
}

// requireRole authenticates the bearer token and, when roles are given,
// admits only those roles. The session travels in the request context.
func (rs *RestfulServer) requireRole(roles ...models.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		s, err := rs.Sessions.Authenticate(bearerToken(c))
		if err != nil {
			fail(c, http.StatusUnauthorized, session.ErrInvalidSession)
			return
		}
		if len(roles) > 0 && !s.HasRole(roles...) {
			fail(c, http.StatusForbidden, "forbidden")
			return
		}
		c.Request = c.Request.WithContext(session.WithContext(c.Request.Context(), s))
		c.Next()
	}
}

func currentSession(c *gin.Context) *session.Session {
	s, _ := session.FromContext(c.Request.Context())
	return s
}

// wardScope resolves the ward a request works on: a ward admin is pinned to
// its own ward, the super admin names one with ?ward_id=.
func wardScope(c *gin.Context) (string, bool) {
	s := currentSession(c)
	if s.Role == models.RoleSuperadmin {
		wardID := c.Query("ward_id")
		if wardID == "" {
			fail(c, http.StatusBadRequest, "ward_id is required")
			return "", false
		}
		return wardID, true
	}
	return s.WardID, true
}

// inScope reports whether a record of wardID is visible to the caller, and
// answers 404 when it is not.
func inScope(c *gin.Context, wardID string, notFound error) bool {
	s := currentSession(c)
	if s.Role == models.RoleSuperadmin || s.WardID == wardID {
		return true
	}
	fail(c, http.StatusNotFound, notFound)
	return false
}

func (rs *RestfulServer) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
