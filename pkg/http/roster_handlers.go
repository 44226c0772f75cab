package http

import (
	"net/http"

	z "github.com/Oudwins/zog"
	"github.com/Oudwins/zog/zhttp"
	"github.com/gin-gonic/gin"

	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/hospital"
	"liyu1981.xyz/ward-alert-service/pkg/models"
)

// optional turns an omitted update field into "leave unchanged".
func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

type WardRequest struct {
	Name     string `json:"name"`
	Location string `json:"location"`
	Username string `json:"username"`
	Password string `json:"password"`
}

var wardRequestSchema = z.Struct(z.Shape{
	"Name":     z.String().Required(),
	"Location": z.String().Optional(),
	"Username": z.String().Required(),
	"Password": z.String().Required(),
})

func (rs *RestfulServer) ListWards(c *gin.Context) {
	wards, err := rs.Hospital.Roster.ListWards(c.Request.Context())
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, common.Mapper(wards, models.Ward.Public), "")
}

func (rs *RestfulServer) CreateWard(c *gin.Context) {
	var req WardRequest
	if err := wardRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ward, err := rs.Hospital.Roster.CreateWard(c.Request.Context(), hospital.WardInput{
		Name:     req.Name,
		Location: req.Location,
		Username: req.Username,
		Password: req.Password,
	})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusCreated, ward.Public(), "")
}

type CredentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

var credentialsRequestSchema = z.Struct(z.Shape{
	"Username": z.String().Required(),
	"Password": z.String().Required(),
})

func (rs *RestfulServer) RotateWardCredentials(c *gin.Context) {
	var req CredentialsRequest
	if err := credentialsRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	ward, err := rs.Hospital.Roster.RotateWardCredentials(c.Request.Context(), c.Param("id"), req.Username, req.Password)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, ward.Public(), "")
}

type BedRequest struct {
	ID    string `json:"id"`
	Label string `json:"label"`
}

var bedRequestSchema = z.Struct(z.Shape{
	"ID":    z.String().Optional(),
	"Label": z.String().Optional(),
})

func (rs *RestfulServer) ListBeds(c *gin.Context) {
	wardID, ok := wardScope(c)
	if !ok {
		return
	}
	beds, err := rs.Hospital.Roster.ListBeds(c.Request.Context(), wardID)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, beds, "")
}

func (rs *RestfulServer) CreateBed(c *gin.Context) {
	wardID, ok := wardScope(c)
	if !ok {
		return
	}
	var req BedRequest
	if err := bedRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	bed, err := rs.Hospital.Roster.CreateBed(c.Request.Context(), hospital.BedInput{ID: req.ID, WardID: wardID, Label: req.Label})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusCreated, bed, "")
}

// scopedBed loads the bed named in the path if the caller may see it.
func (rs *RestfulServer) scopedBed(c *gin.Context) (*models.Bed, bool) {
	bed, err := rs.Hospital.Roster.GetBed(c.Request.Context(), c.Param("id"))
	if err != nil {
		rs.failWith(c, err)
		return nil, false
	}
	return bed, inScope(c, bed.WardID, hospital.ErrBedNotFound)
}

func (rs *RestfulServer) UpdateBed(c *gin.Context) {
	var req BedRequest
	if err := bedRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	bed, ok := rs.scopedBed(c)
	if !ok {
		return
	}

	updated, err := rs.Hospital.Roster.UpdateBed(c.Request.Context(), bed.ID, hospital.BedUpdate{Label: optional(req.Label)})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, updated, "")
}

func (rs *RestfulServer) DeleteBed(c *gin.Context) {
	bed, ok := rs.scopedBed(c)
	if !ok {
		return
	}
	if err := rs.Hospital.Roster.DeleteBed(c.Request.Context(), bed.ID); err != nil {
		rs.failWith(c, err)
		return
	}
	if rs.RateLimiterStore != nil {
		rs.RateLimiterStore.Forget(bed.ID)
	}
	respond(c, http.StatusOK, nil, "")
}

type AssignRequest struct {
	NurseID string `json:"nurse_id"`
}

var assignRequestSchema = z.Struct(z.Shape{
	"NurseID": z.String().Required(),
})

func (rs *RestfulServer) AssignBed(c *gin.Context) {
	var req AssignRequest
	if err := assignRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	bed, ok := rs.scopedBed(c)
	if !ok {
		return
	}

	assigned, err := rs.Hospital.Roster.AssignBed(c.Request.Context(), bed.ID, req.NurseID)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, assigned, "")
}

type LimiterRequest struct {
	Rate  float64 `json:"rate"`
	Burst int     `json:"burst"`
}

var limiterRequestSchema = z.Struct(z.Shape{
	"rate":  z.Float64().Required(),
	"burst": z.Int().Required(),
})

func (rs *RestfulServer) PostLimiter(c *gin.Context) {
	var req LimiterRequest
	if err := limiterRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	bed, ok := rs.scopedBed(c)
	if !ok {
		return
	}

	rs.SetLimiter(bed.ID, req.Rate, req.Burst)
	respond(c, http.StatusOK, nil, "")
}

type NurseRequest struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	PushToken string `json:"push_token"`
}

var nurseRequestSchema = z.Struct(z.Shape{
	"ID":        z.String().Optional(),
	"Name":      z.String().Required(),
	"Email":     z.String().Optional(),
	"PushToken": z.String().Optional(),
})

var nurseUpdateSchema = z.Struct(z.Shape{
	"Name":      z.String().Optional(),
	"Email":     z.String().Optional(),
	"PushToken": z.String().Optional(),
})

func (rs *RestfulServer) ListNurses(c *gin.Context) {
	wardID, ok := wardScope(c)
	if !ok {
		return
	}
	nurses, err := rs.Hospital.Roster.ListNurses(c.Request.Context(), wardID)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, nurses, "")
}

func (rs *RestfulServer) CreateNurse(c *gin.Context) {
	wardID, ok := wardScope(c)
	if !ok {
		return
	}
	var req NurseRequest
	if err := nurseRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	nurse, err := rs.Hospital.Roster.CreateNurse(c.Request.Context(), hospital.NurseInput{
		ID:        req.ID,
		WardID:    wardID,
		Name:      req.Name,
		Email:     req.Email,
		PushToken: req.PushToken,
	})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusCreated, nurse, "")
}

func (rs *RestfulServer) scopedNurse(c *gin.Context) (*models.Nurse, bool) {
	nurse, err := rs.Hospital.Roster.GetNurse(c.Request.Context(), c.Param("id"))
	if err != nil {
		rs.failWith(c, err)
		return nil, false
	}
	return nurse, inScope(c, nurse.WardID, hospital.ErrNurseNotFound)
}

// UpdateNurse lets admins edit any field; a nurse may only register the push
// token of its own device.
func (rs *RestfulServer) UpdateNurse(c *gin.Context) {
	var req NurseRequest
	if err := nurseUpdateSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	update := hospital.NurseUpdate{PushToken: optional(req.PushToken)}
	if s := currentSession(c); s.Role == models.RoleNurse {
		if s.UserID != c.Param("id") {
			fail(c, http.StatusForbidden, "forbidden")
			return
		}
	} else {
		update.Name = optional(req.Name)
		update.Email = optional(req.Email)
	}

	nurse, ok := rs.scopedNurse(c)
	if !ok {
		return
	}
	updated, err := rs.Hospital.Roster.UpdateNurse(c.Request.Context(), nurse.ID, update)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, updated, "")
}

func (rs *RestfulServer) DeleteNurse(c *gin.Context) {
	nurse, ok := rs.scopedNurse(c)
	if !ok {
		return
	}
	if err := rs.Hospital.Roster.DeleteNurse(c.Request.Context(), nurse.ID); err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, nil, "")
}

type PatientRequest struct {
	BedID     string `json:"bed_id"`
	Name      string `json:"name"`
	Treatment string `json:"treatment"`
	Notes     string `json:"notes"`
}

var patientRequestSchema = z.Struct(z.Shape{
	"BedID":     z.String().Required(),
	"Name":      z.String().Required(),
	"Treatment": z.String().Optional(),
	"Notes":     z.String().Optional(),
})

var patientUpdateSchema = z.Struct(z.Shape{
	"BedID":     z.String().Optional(),
	"Name":      z.String().Optional(),
	"Treatment": z.String().Optional(),
	"Notes":     z.String().Optional(),
})

func (rs *RestfulServer) ListPatients(c *gin.Context) {
	wardID, ok := wardScope(c)
	if !ok {
		return
	}
	patients, err := rs.Hospital.Roster.ListPatients(c.Request.Context(), wardID)
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusOK, patients, "")
}

// AdmitPatient answers with the bed access URL the ward prints as a QR code.
func (rs *RestfulServer) AdmitPatient(c *gin.Context) {
	wardID, ok := wardScope(c)
	if !ok {
		return
	}
	var req PatientRequest
	if err := patientRequestSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}

	admission, err := rs.Hospital.Roster.AdmitPatient(c.Request.Context(), hospital.PatientInput{
		WardID:    wardID,
		BedID:     req.BedID,
		Name:      req.Name,
		Treatment: req.Treatment,
		Notes:     req.Notes,
	})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	respond(c, http.StatusCreated, admission, "")
}

func (rs *RestfulServer) scopedPatient(c *gin.Context) (*models.Patient, bool) {
	patient, err := rs.Hospital.Roster.GetPatient(c.Request.Context(), c.Param("id"))
	if err != nil {
		rs.failWith(c, err)
		return nil, false
	}
	return patient, inScope(c, patient.WardID, hospital.ErrPatientNotFound)
}

func (rs *RestfulServer) UpdatePatient(c *gin.Context) {
	var req PatientRequest
	if err := patientUpdateSchema.Parse(zhttp.Request(c.Request), &req); err != nil {
		fail(c, http.StatusBadRequest, err)
		return
	}
	patient, ok := rs.scopedPatient(c)
	if !ok {
		return
	}

	admission, err := rs.Hospital.Roster.UpdatePatient(c.Request.Context(), patient.ID, hospital.PatientUpdate{
		BedID:     optional(req.BedID),
		Name:      optional(req.Name),
		Treatment: optional(req.Treatment),
		Notes:     optional(req.Notes),
	})
	if err != nil {
		rs.failWith(c, err)
		return
	}
	if admission.Patient.BedID != patient.BedID {
		rs.Sessions.Revoke(models.RolePatient, patient.ID)
	}
	respond(c, http.StatusOK, admission, "")
}

// DischargePatient also ends the patient's session on the bed.
func (rs *RestfulServer) DischargePatient(c *gin.Context) {
	patient, ok := rs.scopedPatient(c)
	if !ok {
		return
	}
	if err := rs.Hospital.Roster.DischargePatient(c.Request.Context(), patient.ID); err != nil {
		rs.failWith(c, err)
		return
	}
	rs.Sessions.Revoke(models.RolePatient, patient.ID)
	respond(c, http.StatusOK, nil, "")
}
