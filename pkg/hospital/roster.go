package hospital

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"liyu1981.xyz/ward-alert-service/pkg/common"
	"liyu1981.xyz/ward-alert-service/pkg/models"
	"liyu1981.xyz/ward-alert-service/pkg/store"
)

func (h *Hospital) rosterLogger() *zap.Logger {
	return common.GetCategoryLogger(common.LoggerNameHospitalCore, common.LoggerCategoryRoster)
}

// get loads one record and maps store.ErrNotFound onto notFound.
func (h *Hospital) get(ctx context.Context, res store.Resource, id string, out any, notFound error) error {
	if id == "" {
		return notFound
	}
	_, err := h.Store.Get(ctx, res, id, out)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", notFound, id)
	}
	return err
}

func wardFilter(wardID string) store.Filter {
	if wardID == "" {
		return store.Filter{}
	}
	return store.Filter{"ward_id": wardID}
}

func withoutBed(bedIDs []string, bedID string) []string {
	return common.Filter(bedIDs, func(id string) bool { return id != bedID })
}

// Wards

func (h *Hospital) usernameTaken(ctx context.Context, username, exceptWardID string) (bool, error) {
	var wards []models.Ward
	if _, err := h.Store.List(ctx, store.Wards, store.Filter{"username": username}, &wards); err != nil {
		return false, err
	}
	for _, w := range wards {
		if w.ID != exceptWardID {
			return true, nil
		}
	}
	return false, nil
}

func (h *Hospital) createWard(ctx context.Context, input WardInput) (*models.Ward, error) {
	taken, err := h.usernameTaken(ctx, input.Username, "")
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), h.hashCost())
	if err != nil {
		return nil, err
	}

	ward := models.Ward{
		ID:           uuid.NewString(),
		Name:         input.Name,
		Location:     input.Location,
		Username:     input.Username,
		PasswordHash: string(hash),
		CreatedAt:    time.Now().UTC(),
	}
	if _, err := h.Store.Create(ctx, store.Wards, &ward); err != nil {
		return nil, err
	}

	h.rosterLogger().Info("Ward created", zap.String("ward_id", ward.ID), zap.String("name", ward.Name))
	public := ward.Public()
	return &public, nil
}

func (h *Hospital) getWard(ctx context.Context, wardID string) (*models.Ward, error) {
	var ward models.Ward
	if err := h.get(ctx, store.Wards, wardID, &ward, ErrWardNotFound); err != nil {
		return nil, err
	}
	public := ward.Public()
	return &public, nil
}

func (h *Hospital) listWards(ctx context.Context) ([]models.Ward, error) {
	var wards []models.Ward
	if _, err := h.Store.List(ctx, store.Wards, nil, &wards); err != nil {
		return nil, err
	}
	public := common.Mapper(wards, models.Ward.Public)
	sort.SliceStable(public, func(i, j int) bool { return public[i].Name < public[j].Name })
	return public, nil
}

func (h *Hospital) rotateWardCredentials(ctx context.Context, wardID, username, password string) (*models.Ward, error) {
	if _, err := h.getWard(ctx, wardID); err != nil {
		return nil, err
	}
	taken, err := h.usernameTaken(ctx, username, wardID)
	if err != nil {
		return nil, err
	}
	if taken {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), h.hashCost())
	if err != nil {
		return nil, err
	}
	if _, err := h.Store.Update(ctx, store.Wards, wardID, map[string]any{
		"username":      username,
		"password_hash": string(hash),
	}); err != nil {
		return nil, err
	}

	h.rosterLogger().Info("Ward credentials rotated", zap.String("ward_id", wardID))
	return h.getWard(ctx, wardID)
}

func (h *Hospital) authenticateWard(ctx context.Context, username, password string) (*models.Ward, error) {
	var wards []models.Ward
	if _, err := h.Store.List(ctx, store.Wards, store.Filter{"username": username}, &wards); err != nil {
		return nil, err
	}
	if len(wards) == 0 {
		return nil, ErrInvalidCredentials
	}
	ward := wards[0]
	if bcrypt.CompareHashAndPassword([]byte(ward.PasswordHash), []byte(password)) != nil {
		return nil, ErrInvalidCredentials
	}
	public := ward.Public()
	return &public, nil
}

// Beds

func (h *Hospital) createBed(ctx context.Context, input BedInput) (*models.Bed, error) {
	if _, err := h.getWard(ctx, input.WardID); err != nil {
		return nil, err
	}

	bed := models.Bed{
		ID:     input.ID,
		WardID: input.WardID,
		Label:  input.Label,
		State:  models.BedStateFree,
	}
	if bed.ID == "" {
		bed.ID = uuid.NewString()
	}
	if bed.Label == "" {
		bed.Label = bed.ID
	}
	if _, err := h.Store.Create(ctx, store.Beds, &bed); err != nil {
		return nil, err
	}

	h.rosterLogger().Info("Bed created", zap.String("bed_id", bed.ID), zap.String("ward_id", bed.WardID))
	return &bed, nil
}

func (h *Hospital) getBed(ctx context.Context, bedID string) (*models.Bed, error) {
	var bed models.Bed
	if err := h.get(ctx, store.Beds, bedID, &bed, ErrBedNotFound); err != nil {
		return nil, err
	}
	nurse, err := h.nurseForBed(ctx, bed.WardID, bed.ID)
	if err != nil {
		return nil, err
	}
	if nurse != nil {
		bed.AssignedNurseID = nurse.ID
	}
	return &bed, nil
}

// listBeds fills AssignedNurseID from the nurses' bed sets.
func (h *Hospital) listBeds(ctx context.Context, wardID string) ([]models.Bed, error) {
	var beds []models.Bed
	if _, err := h.Store.List(ctx, store.Beds, wardFilter(wardID), &beds); err != nil {
		return nil, err
	}
	var nurses []models.Nurse
	if _, err := h.Store.List(ctx, store.Nurses, wardFilter(wardID), &nurses); err != nil {
		return nil, err
	}

	owner := map[string]string{}
	for _, n := range nurses {
		for _, bedID := range n.BedIDs {
			owner[bedID] = n.ID
		}
	}
	if beds == nil {
		beds = []models.Bed{}
	}
	for i := range beds {
		beds[i].AssignedNurseID = owner[beds[i].ID]
	}
	sort.SliceStable(beds, func(i, j int) bool { return beds[i].Label < beds[j].Label })
	return beds, nil
}

func (h *Hospital) updateBed(ctx context.Context, bedID string, update BedUpdate) (*models.Bed, error) {
	if _, err := h.getBed(ctx, bedID); err != nil {
		return nil, err
	}
	if update.Label != nil {
		if _, err := h.Store.Update(ctx, store.Beds, bedID, map[string]any{"label": *update.Label}); err != nil {
			return nil, err
		}
	}
	return h.getBed(ctx, bedID)
}

func (h *Hospital) deleteBed(ctx context.Context, bedID string) error {
	bed, err := h.getBed(ctx, bedID)
	if err != nil {
		return err
	}
	if bed.State == models.BedStateOccupied {
		return fmt.Errorf("%w: %s", ErrBedOccupied, bedID)
	}
	if err := h.unassignBed(ctx, bed.WardID, bedID, ""); err != nil {
		return err
	}
	if err := h.Identity.RevokeToken(ctx, bedID); err != nil {
		return err
	}
	if _, err := h.Store.Delete(ctx, store.Beds, bedID); err != nil {
		return err
	}

	h.rosterLogger().Info("Bed deleted", zap.String("bed_id", bedID))
	return nil
}

// unassignBed drops bedID from every nurse of the ward except keepNurseID.
func (h *Hospital) unassignBed(ctx context.Context, wardID, bedID, keepNurseID string) error {
	var nurses []models.Nurse
	if _, err := h.Store.List(ctx, store.Nurses, wardFilter(wardID), &nurses); err != nil {
		return err
	}
	for _, n := range nurses {
		if n.ID == keepNurseID || !n.HasBed(bedID) {
			continue
		}
		if _, err := h.Store.Update(ctx, store.Nurses, n.ID, map[string]any{
			"bed_ids": withoutBed(n.BedIDs, bedID),
		}); err != nil {
			return err
		}
	}
	return nil
}

// assignBed gives bedID to nurseID only; an empty nurseID leaves the bed unassigned.
func (h *Hospital) assignBed(ctx context.Context, bedID, nurseID string) (*models.Bed, error) {
	bed, err := h.getBed(ctx, bedID)
	if err != nil {
		return nil, err
	}

	var nurse *models.Nurse
	if nurseID != "" {
		if nurse, err = h.getNurse(ctx, nurseID); err != nil {
			return nil, err
		}
		if nurse.WardID != bed.WardID {
			return nil, ErrWardMismatch
		}
	}

	if err := h.unassignBed(ctx, bed.WardID, bedID, nurseID); err != nil {
		return nil, err
	}
	if nurse != nil && !nurse.HasBed(bedID) {
		if _, err := h.Store.Update(ctx, store.Nurses, nurse.ID, map[string]any{
			"bed_ids": append(append([]string{}, nurse.BedIDs...), bedID),
		}); err != nil {
			return nil, err
		}
	}

	bed.AssignedNurseID = nurseID
	h.rosterLogger().Info("Bed assigned", zap.String("bed_id", bedID), zap.String("nurse_id", nurseID))
	return bed, nil
}

// Nurses

func (h *Hospital) createNurse(ctx context.Context, input NurseInput) (*models.Nurse, error) {
	if _, err := h.getWard(ctx, input.WardID); err != nil {
		return nil, err
	}

	nurse := models.Nurse{
		ID:        input.ID,
		WardID:    input.WardID,
		Name:      input.Name,
		Email:     input.Email,
		BedIDs:    []string{},
		PushToken: input.PushToken,
	}
	if nurse.ID == "" {
		nurse.ID = uuid.NewString()
	}
	if _, err := h.Store.Create(ctx, store.Nurses, &nurse); err != nil {
		return nil, err
	}

	h.rosterLogger().Info("Nurse created", zap.String("nurse_id", nurse.ID), zap.String("ward_id", nurse.WardID))
	return &nurse, nil
}

func (h *Hospital) getNurse(ctx context.Context, nurseID string) (*models.Nurse, error) {
	var nurse models.Nurse
	if err := h.get(ctx, store.Nurses, nurseID, &nurse, ErrNurseNotFound); err != nil {
		return nil, err
	}
	return &nurse, nil
}

func (h *Hospital) listNurses(ctx context.Context, wardID string) ([]models.Nurse, error) {
	var nurses []models.Nurse
	if _, err := h.Store.List(ctx, store.Nurses, wardFilter(wardID), &nurses); err != nil {
		return nil, err
	}
	if nurses == nil {
		nurses = []models.Nurse{}
	}
	sort.SliceStable(nurses, func(i, j int) bool { return nurses[i].Name < nurses[j].Name })
	return nurses, nil
}

func (h *Hospital) updateNurse(ctx context.Context, nurseID string, update NurseUpdate) (*models.Nurse, error) {
	if _, err := h.getNurse(ctx, nurseID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
	}
	if update.Email != nil {
		fields["email"] = *update.Email
	}
	if update.PushToken != nil {
		fields["push_token"] = *update.PushToken
	}
	if len(fields) > 0 {
		if _, err := h.Store.Update(ctx, store.Nurses, nurseID, fields); err != nil {
			return nil, err
		}
	}
	return h.getNurse(ctx, nurseID)
}

func (h *Hospital) deleteNurse(ctx context.Context, nurseID string) error {
	_, err := h.Store.Delete(ctx, store.Nurses, nurseID)
	if errors.Is(err, store.ErrNotFound) {
		return fmt.Errorf("%w: %s", ErrNurseNotFound, nurseID)
	}
	if err == nil {
		h.rosterLogger().Info("Nurse deleted", zap.String("nurse_id", nurseID))
	}
	return err
}

// Patients

func (h *Hospital) accessURL(bedID, token string) string {
	query := url.Values{"bed_id": {bedID}, "token": {token}}
	return strings.TrimRight(h.PublicURL, "/") + "/patient?" + query.Encode()
}

func (h *Hospital) setBedOccupant(ctx context.Context, bedID, occupant string) error {
	state := models.BedStateFree
	if occupant != "" {
		state = models.BedStateOccupied
	}
	_, err := h.Store.Update(ctx, store.Beds, bedID, map[string]any{
		"state":         state,
		"occupant_name": occupant,
	})
	return err
}

// freeBedFor checks that bedID can take a patient of wardID.
func (h *Hospital) freeBedFor(ctx context.Context, wardID, bedID string) (*models.Bed, error) {
	bed, err := h.getBed(ctx, bedID)
	if err != nil {
		return nil, err
	}
	if wardID != "" && bed.WardID != wardID {
		return nil, ErrWardMismatch
	}
	if bed.State == models.BedStateOccupied {
		return nil, fmt.Errorf("%w: %s", ErrBedOccupied, bedID)
	}
	return bed, nil
}

func (h *Hospital) admitPatient(ctx context.Context, input PatientInput) (*Admission, error) {
	bed, err := h.freeBedFor(ctx, input.WardID, input.BedID)
	if err != nil {
		return nil, err
	}

	patient := models.Patient{
		ID:        uuid.NewString(),
		WardID:    bed.WardID,
		BedID:     bed.ID,
		Name:      input.Name,
		Treatment: input.Treatment,
		Notes:     input.Notes,
		CreatedAt: time.Now().UTC(),
	}
	if _, err := h.Store.Create(ctx, store.Patients, &patient); err != nil {
		return nil, err
	}
	if err := h.setBedOccupant(ctx, bed.ID, patient.Name); err != nil {
		return nil, err
	}

	token, err := h.Identity.IssueToken(ctx, bed.ID, patient.ID)
	if err != nil {
		return nil, err
	}

	h.rosterLogger().Info("Patient admitted", zap.String("patient_id", patient.ID), zap.String("bed_id", bed.ID))
	return &Admission{Patient: patient, Token: token, AccessURL: h.accessURL(bed.ID, token)}, nil
}

func (h *Hospital) getPatient(ctx context.Context, patientID string) (*models.Patient, error) {
	var patient models.Patient
	if err := h.get(ctx, store.Patients, patientID, &patient, ErrPatientNotFound); err != nil {
		return nil, err
	}
	return &patient, nil
}

func (h *Hospital) listPatients(ctx context.Context, wardID string) ([]models.Patient, error) {
	var patients []models.Patient
	if _, err := h.Store.List(ctx, store.Patients, wardFilter(wardID), &patients); err != nil {
		return nil, err
	}
	if patients == nil {
		patients = []models.Patient{}
	}
	sort.SliceStable(patients, func(i, j int) bool { return patients[i].Name < patients[j].Name })
	return patients, nil
}

func (h *Hospital) findPatientByBed(ctx context.Context, bedID string) (*models.Patient, error) {
	var patients []models.Patient
	if _, err := h.Store.List(ctx, store.Patients, store.Filter{"bed_id": bedID}, &patients); err != nil {
		return nil, err
	}
	if len(patients) == 0 {
		return nil, fmt.Errorf("%w: bed %s", ErrPatientNotFound, bedID)
	}
	return &patients[0], nil
}

// updatePatient moving to another bed frees the old one, occupies the new
// one and moves the access token with the patient.
func (h *Hospital) updatePatient(ctx context.Context, patientID string, update PatientUpdate) (*Admission, error) {
	patient, err := h.getPatient(ctx, patientID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if update.Name != nil {
		fields["name"] = *update.Name
		patient.Name = *update.Name
	}
	if update.Treatment != nil {
		fields["treatment"] = *update.Treatment
		patient.Treatment = *update.Treatment
	}
	if update.Notes != nil {
		fields["notes"] = *update.Notes
		patient.Notes = *update.Notes
	}

	oldBedID := patient.BedID
	moving := update.BedID != nil && *update.BedID != oldBedID
	if moving {
		if _, err := h.freeBedFor(ctx, patient.WardID, *update.BedID); err != nil {
			return nil, err
		}
		fields["bed_id"] = *update.BedID
		patient.BedID = *update.BedID
	}

	if len(fields) > 0 {
		if _, err := h.Store.Update(ctx, store.Patients, patientID, fields); err != nil {
			return nil, err
		}
	}

	admission := &Admission{Patient: *patient}
	if !moving {
		if update.Name != nil {
			if err := h.setBedOccupant(ctx, patient.BedID, patient.Name); err != nil {
				return nil, err
			}
		}
		return admission, nil
	}

	if err := h.setBedOccupant(ctx, oldBedID, ""); err != nil {
		return nil, err
	}
	if err := h.Identity.RevokeToken(ctx, oldBedID); err != nil {
		return nil, err
	}
	if err := h.setBedOccupant(ctx, patient.BedID, patient.Name); err != nil {
		return nil, err
	}
	token, err := h.Identity.IssueToken(ctx, patient.BedID, patient.ID)
	if err != nil {
		return nil, err
	}
	admission.Token = token
	admission.AccessURL = h.accessURL(patient.BedID, token)

	h.rosterLogger().Info("Patient moved",
		zap.String("patient_id", patientID), zap.String("from_bed", oldBedID), zap.String("to_bed", patient.BedID))
	return admission, nil
}

func (h *Hospital) dischargePatient(ctx context.Context, patientID string) error {
	patient, err := h.getPatient(ctx, patientID)
	if err != nil {
		return err
	}
	if _, err := h.Store.Delete(ctx, store.Patients, patientID); err != nil {
		return err
	}
	if err := h.setBedOccupant(ctx, patient.BedID, ""); err != nil {
		return err
	}
	if err := h.Identity.RevokeToken(ctx, patient.BedID); err != nil {
		return err
	}

	h.rosterLogger().Info("Patient discharged", zap.String("patient_id", patientID), zap.String("bed_id", patient.BedID))
	return nil
}

type IRosterImpl struct {
	hospital *Hospital
}

func (ir *IRosterImpl) CreateWard(ctx context.Context, input WardInput) (*models.Ward, error) {
	return ir.hospital.createWard(ctx, input)
}

func (ir *IRosterImpl) GetWard(ctx context.Context, wardID string) (*models.Ward, error) {
	return ir.hospital.getWard(ctx, wardID)
}

func (ir *IRosterImpl) ListWards(ctx context.Context) ([]models.Ward, error) {
	return ir.hospital.listWards(ctx)
}

func (ir *IRosterImpl) RotateWardCredentials(ctx context.Context, wardID, username, password string) (*models.Ward, error) {
	return ir.hospital.rotateWardCredentials(ctx, wardID, username, password)
}

func (ir *IRosterImpl) AuthenticateWard(ctx context.Context, username, password string) (*models.Ward, error) {
	return ir.hospital.authenticateWard(ctx, username, password)
}

func (ir *IRosterImpl) CreateBed(ctx context.Context, input BedInput) (*models.Bed, error) {
	return ir.hospital.createBed(ctx, input)
}

func (ir *IRosterImpl) GetBed(ctx context.Context, bedID string) (*models.Bed, error) {
	return ir.hospital.getBed(ctx, bedID)
}

func (ir *IRosterImpl) ListBeds(ctx context.Context, wardID string) ([]models.Bed, error) {
	return ir.hospital.listBeds(ctx, wardID)
}

func (ir *IRosterImpl) UpdateBed(ctx context.Context, bedID string, update BedUpdate) (*models.Bed, error) {
	return ir.hospital.updateBed(ctx, bedID, update)
}

func (ir *IRosterImpl) DeleteBed(ctx context.Context, bedID string) error {
	return ir.hospital.deleteBed(ctx, bedID)
}

func (ir *IRosterImpl) AssignBed(ctx context.Context, bedID, nurseID string) (*models.Bed, error) {
	return ir.hospital.assignBed(ctx, bedID, nurseID)
}

func (ir *IRosterImpl) CreateNurse(ctx context.Context, input NurseInput) (*models.Nurse, error) {
	return ir.hospital.createNurse(ctx, input)
}

func (ir *IRosterImpl) GetNurse(ctx context.Context, nurseID string) (*models.Nurse, error) {
	return ir.hospital.getNurse(ctx, nurseID)
}

func (ir *IRosterImpl) ListNurses(ctx context.Context, wardID string) ([]models.Nurse, error) {
	return ir.hospital.listNurses(ctx, wardID)
}

func (ir *IRosterImpl) UpdateNurse(ctx context.Context, nurseID string, update NurseUpdate) (*models.Nurse, error) {
	return ir.hospital.updateNurse(ctx, nurseID, update)
}

func (ir *IRosterImpl) DeleteNurse(ctx context.Context, nurseID string) error {
	return ir.hospital.deleteNurse(ctx, nurseID)
}

func (ir *IRosterImpl) AdmitPatient(ctx context.Context, input PatientInput) (*Admission, error) {
	return ir.hospital.admitPatient(ctx, input)
}

func (ir *IRosterImpl) GetPatient(ctx context.Context, patientID string) (*models.Patient, error) {
	return ir.hospital.getPatient(ctx, patientID)
}

func (ir *IRosterImpl) ListPatients(ctx context.Context, wardID string) ([]models.Patient, error) {
	return ir.hospital.listPatients(ctx, wardID)
}

func (ir *IRosterImpl) UpdatePatient(ctx context.Context, patientID string, update PatientUpdate) (*Admission, error) {
	return ir.hospital.updatePatient(ctx, patientID, update)
}

func (ir *IRosterImpl) DischargePatient(ctx context.Context, patientID string) error {
	return ir.hospital.dischargePatient(ctx, patientID)
}

func (ir *IRosterImpl) FindPatientByBed(ctx context.Context, bedID string) (*models.Patient, error) {
	return ir.hospital.findPatientByBed(ctx, bedID)
}

func (h *Hospital) GetIRoster() IRoster {
	return &IRosterImpl{hospital: h}
}
