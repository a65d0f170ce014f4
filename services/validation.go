package services

import (
	"strings"
	"time"

	"club-management-system/models"
)

const (
	phoneDigits   = 8
	minMemberAge  = 5
	defaultSecret = "club1234" // hashed default when no password is supplied
)

// memberRoles are the roles a member record may carry. Admin and Manager
// identities come from the administrative provisioning path, never from
// member creation.
var memberRoles = map[string]bool{
	models.RoleAthlete: true,
	models.RoleCoach:   true,
	models.RoleStaff:   true,
}

var subscriptionStatuses = map[string]bool{
	models.SubscriptionStatusActive:   true,
	models.SubscriptionStatusInactive: true,
	models.SubscriptionStatusPending:  true,
}

// salaryTypeForRole maps a role onto its compensation type.
func salaryTypeForRole(role string) string {
	switch role {
	case models.RoleCoach:
		return models.SalaryTypeCoach
	case models.RoleStaff:
		return models.SalaryTypeStaff
	case models.RoleManager, models.RoleAdmin:
		return models.SalaryTypeManager
	default:
		return models.SalaryTypePlayer
	}
}

// normalizePhone strips every non-digit and truncates to 8 digits. Fewer than
// 8 digits is rejected; extra digits are dropped silently, carrying over the
// historical behavior of the platform.
func normalizePhone(field, raw string) (string, error) {
	var b strings.Builder
	for _, r := range raw {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	digits := b.String()
	if len(digits) < phoneDigits {
		return "", validationErr(field, "must contain at least 8 digits")
	}
	return digits[:phoneDigits], nil
}

// yearsBetween computes full calendar years from dob to now, by year, month
// and day comparison rather than day counts.
func yearsBetween(dob, now time.Time) int {
	years := now.Year() - dob.Year()
	if now.Month() < dob.Month() || (now.Month() == dob.Month() && now.Day() < dob.Day()) {
		years--
	}
	return years
}

func checkDateOfBirth(dob time.Time, now time.Time) error {
	if dob.After(now) {
		return validationErr("date_of_birth", "cannot be in the future")
	}
	if yearsBetween(dob, now) < minMemberAge {
		return validationErr("date_of_birth", "member must be at least 5 years old")
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
