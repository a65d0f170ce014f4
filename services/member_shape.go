package services

import (
	"strconv"
	"strings"
	"time"

	"club-management-system/models"
)

// ProfileDetails is the role-keyed view of a member profile. Exactly one of
// the payload fields is non-nil, matching Role. Services and callers work on
// this shape; the flat MemberProfile row is only produced and consumed here.
type ProfileDetails struct {
	Role    string          `json:"role"`
	Athlete *AthleteDetails `json:"athlete,omitempty"`
	Coach   *CoachDetails   `json:"coach,omitempty"`
	Staff   *StaffDetails   `json:"staff,omitempty"`
}

type AthleteDetails struct {
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Sports           []string   `json:"sports,omitempty"`
	WeightKG         *float64   `json:"weight_kg,omitempty"`
	HeightCM         *float64   `json:"height_cm,omitempty"`
	StrongPoint      string     `json:"strong_point,omitempty"`
	WeakPoint        string     `json:"weak_point,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	TeamID           string     `json:"team_id,omitempty"`
}

type CoachDetails struct {
	Specialties     []string `json:"specialties,omitempty"`
	Certifications  string   `json:"certifications,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`
}

type StaffDetails struct {
	Department string     `json:"department,omitempty"`
	Position   string     `json:"position,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

const staffAddressSep = " | "

// applyDetails writes d onto the flat row, clearing every column the role
// does not use so a role change can never leave stale values behind.
func applyDetails(rec *models.MemberProfile, d ProfileDetails) {
	rec.DateOfBirth = nil
	rec.Sports = nil
	rec.WeightKG = nil
	rec.HeightCM = nil
	rec.StrongPoint = nil
	rec.WeakPoint = nil
	rec.EmergencyContact = nil
	rec.Address = nil
	rec.TeamID = nil

	switch d.Role {
	case models.RoleAthlete:
		a := d.Athlete
		if a == nil {
			return
		}
		rec.DateOfBirth = a.DateOfBirth
		rec.Sports = joinedList(a.Sports)
		rec.WeightKG = a.WeightKG
		rec.HeightCM = a.HeightCM
		rec.StrongPoint = optional(a.StrongPoint)
		rec.WeakPoint = optional(a.WeakPoint)
		rec.EmergencyContact = optional(a.EmergencyContact)
		rec.TeamID = optional(a.TeamID)
	case models.RoleCoach:
		c := d.Coach
		if c == nil {
			return
		}
		// Coach columns ride in the shared athlete slots: specialties in
		// sports, certifications in strong_point, experience in weak_point.
		rec.Sports = joinedList(c.Specialties)
		rec.StrongPoint = optional(c.Certifications)
		if c.ExperienceYears > 0 {
			rec.WeakPoint = optional(strconv.Itoa(c.ExperienceYears))
		}
	case models.RoleStaff:
		s := d.Staff
		if s == nil {
			return
		}
		rec.Address = optional(encodeStaffAddress(s))
	}
}

// detailsFromRecord decodes the flat row back into the union for the given
// role.
func detailsFromRecord(role string, rec *models.MemberProfile) ProfileDetails {
	d := ProfileDetails{Role: role}
	if rec == nil {
		return d
	}
	switch role {
	case models.RoleAthlete:
		d.Athlete = &AthleteDetails{
			DateOfBirth:      rec.DateOfBirth,
			Sports:           splitList(rec.Sports),
			WeightKG:         rec.WeightKG,
			HeightCM:         rec.HeightCM,
			StrongPoint:      deref(rec.StrongPoint),
			WeakPoint:        deref(rec.WeakPoint),
			EmergencyContact: deref(rec.EmergencyContact),
			TeamID:           deref(rec.TeamID),
		}
	case models.RoleCoach:
		c := &CoachDetails{
			Specialties:    splitList(rec.Sports),
			Certifications: deref(rec.StrongPoint),
		}
		if v := deref(rec.WeakPoint); v != "" {
			c.ExperienceYears, _ = strconv.Atoi(v)
		}
		d.Coach = c
	case models.RoleStaff:
		d.Staff = decodeStaffAddress(deref(rec.Address))
	}
	return d
}

func encodeStaffAddress(s *StaffDetails) string {
	parts := []string{s.Department, s.Position}
	if s.HireDate != nil {
		parts = append(parts, s.HireDate.Format("2006-01-02"))
	}
	return strings.Join(parts, staffAddressSep)
}

func decodeStaffAddress(addr string) *StaffDetails {
	s := &StaffDetails{}
	if addr == "" {
		return s
	}
	parts := strings.Split(addr, staffAddressSep)
	if len(parts) > 0 {
		s.Department = parts[0]
	}
	if len(parts) > 1 {
		s.Position = parts[1]
	}
	if len(parts) > 2 {
		if t, err := time.Parse("2006-01-02", parts[2]); err == nil {
			s.HireDate = &t
		}
	}
	return s
}

func joinedList(items []string) *string {
	var kept []string
	for _, it := range items {
		if v := strings.TrimSpace(it); v != "" {
			kept = append(kept, v)
		}
	}
	if len(kept) == 0 {
		return nil
	}
	return optional(strings.Join(kept, ","))
}

func splitList(joined *string) []string {
	if joined == nil || *joined == "" {
		return nil
	}
	return strings.Split(*joined, ",")
}

func optional(v string) *string {
	if v == "" {
		return nil
	}
	return &v
}

func deref(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}
