package services

import (
	"context"
	"testing"
	"time"

	"club-management-system/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func newMemberService(t *testing.T) (*MemberService, *gorm.DB) {
	t.Helper()
	db := testDB(t)
	return NewMemberService(db, NewSubscriptionService(db)), db
}

func athleteInput() CreateMemberInput {
	dob := time.Now().AddDate(-20, 0, 0)
	weight := 72.5
	return CreateMemberInput{
		Email:            "athlete@club.test",
		Password:         "secret-pass",
		FirstName:        "Maya",
		LastName:         "Jensen",
		Phone:            "12-34-56-78",
		DateOfBirth:      &dob,
		Sports:           []string{"judo", "wrestling"},
		WeightKG:         &weight,
		StrongPoint:      "ground game",
		WeakPoint:        "stamina",
		EmergencyContact: "87654321",
	}
}

func TestCreateAthleteShapesProfile(t *testing.T) {
	svc, db := newMemberService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	assert.Equal(t, models.RoleAthlete, member.Role, "role defaults to athlete")
	assert.Equal(t, "athlete@club.test", member.Email)
	assert.Equal(t, "12345678", member.Phone)

	require.NotNil(t, member.Details.Athlete)
	assert.Nil(t, member.Details.Coach)
	assert.Nil(t, member.Details.Staff)
	assert.Equal(t, []string{"judo", "wrestling"}, member.Details.Athlete.Sports)
	assert.Equal(t, "ground game", member.Details.Athlete.StrongPoint)
	assert.Equal(t, "87654321", member.Details.Athlete.EmergencyContact)

	// The stored row carries no role-inapplicable columns.
	var profile models.MemberProfile
	require.NoError(t, db.First(&profile, "user_id = ?", member.ID).Error)
	assert.Nil(t, profile.Address, "athlete row must not carry staff data")
	assert.NotNil(t, profile.DateOfBirth)

	// Password hash never leaves the service.
	var user models.User
	require.NoError(t, db.First(&user, "id = ?", member.ID).Error)
	assert.NotEmpty(t, user.PasswordHash)
	assert.NotEqual(t, "secret-pass", user.PasswordHash)
}

func TestCreateRejectsShortPhone(t *testing.T) {
	svc, _ := newMemberService(t)
	input := athleteInput()
	input.Phone = "123-4567"

	_, err := svc.Create(context.Background(), input)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "phone", ve.Field)
}

func TestCreateTruncatesLongPhone(t *testing.T) {
	svc, _ := newMemberService(t)
	input := athleteInput()
	input.Phone = "12345678909876"

	member, err := svc.Create(context.Background(), input)
	require.NoError(t, err)
	assert.Equal(t, "12345678", member.Phone)
}

func TestCreateRejectsUnderageAthlete(t *testing.T) {
	svc, _ := newMemberService(t)
	input := athleteInput()
	dob := time.Now().AddDate(-4, 0, 0)
	input.DateOfBirth = &dob

	_, err := svc.Create(context.Background(), input)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "date_of_birth", ve.Field)
}

func TestCreateDuplicateEmailIsCaseInsensitive(t *testing.T) {
	svc, db := newMemberService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	second := athleteInput()
	second.Email = "ATHLETE@Club.Test"
	_, err = svc.Create(ctx, second)
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	var count int64
	require.NoError(t, db.Model(&models.User{}).Count(&count).Error)
	assert.EqualValues(t, 1, count, "exactly one identity must exist")
}

func TestCreateRejectsPrivilegedRoles(t *testing.T) {
	svc, _ := newMemberService(t)
	for _, role := range []string{models.RoleAdmin, models.RoleManager} {
		input := athleteInput()
		input.Role = role
		_, err := svc.Create(context.Background(), input)
		var ve *ValidationError
		require.ErrorAs(t, err, &ve, "role %s must not pass member creation", role)
	}
}

func TestCreateCoachRequiresSpecialties(t *testing.T) {
	svc, _ := newMemberService(t)
	input := athleteInput()
	input.Role = models.RoleCoach
	input.Specialties = nil

	_, err := svc.Create(context.Background(), input)
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, "specialties", ve.Field)
}

func TestCreateCoachMapsSharedColumns(t *testing.T) {
	svc, db := newMemberService(t)
	input := athleteInput()
	input.Email = "coach@club.test"
	input.Role = models.RoleCoach
	input.Specialties = []string{"judo"}
	input.Certifications = "IJF Level 2"
	input.ExperienceYears = 7

	member, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, member.Details.Coach)
	assert.Nil(t, member.Details.Athlete)
	assert.Equal(t, []string{"judo"}, member.Details.Coach.Specialties)
	assert.Equal(t, "IJF Level 2", member.Details.Coach.Certifications)
	assert.Equal(t, 7, member.Details.Coach.ExperienceYears)

	var profile models.MemberProfile
	require.NoError(t, db.First(&profile, "user_id = ?", member.ID).Error)
	require.NotNil(t, profile.StrongPoint)
	assert.Equal(t, "IJF Level 2", *profile.StrongPoint)
	require.NotNil(t, profile.WeakPoint)
	assert.Equal(t, "7", *profile.WeakPoint)
	assert.Nil(t, profile.DateOfBirth, "coach row must not carry athlete dates")
}

func TestCreateStaffFoldsAddress(t *testing.T) {
	svc, db := newMemberService(t)
	hire := time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)
	input := CreateMemberInput{
		Email:      "staff@club.test",
		Role:       models.RoleStaff,
		FirstName:  "Pia",
		LastName:   "Olsen",
		Phone:      "11223344",
		Department: "Facilities",
		Position:   "Caretaker",
		HireDate:   &hire,
	}

	member, err := svc.Create(context.Background(), input)
	require.NoError(t, err)

	require.NotNil(t, member.Details.Staff)
	assert.Equal(t, "Facilities", member.Details.Staff.Department)
	assert.Equal(t, "Caretaker", member.Details.Staff.Position)
	require.NotNil(t, member.Details.Staff.HireDate)
	assert.True(t, hire.Equal(*member.Details.Staff.HireDate))

	var profile models.MemberProfile
	require.NoError(t, db.First(&profile, "user_id = ?", member.ID).Error)
	assert.Nil(t, profile.DateOfBirth, "staff row must not carry athlete data")
	assert.Nil(t, profile.Sports)
	require.NotNil(t, profile.Address)
	assert.Equal(t, "Facilities | Caretaker | 2024-03-01", *profile.Address)
}

func TestCreateWithBaseSalaryUpsertsMonthlyRow(t *testing.T) {
	svc, db := newMemberService(t)
	ctx := context.Background()
	input := athleteInput()
	input.BaseSalary = 1500

	member, err := svc.Create(ctx, input)
	require.NoError(t, err)

	var salary models.Salary
	require.NoError(t, db.First(&salary, "user_id = ?", member.ID).Error)
	assert.Equal(t, time.Now().Format("2006-01"), salary.Month)
	assert.Equal(t, models.SalaryTypePlayer, salary.Type)
	assert.Equal(t, models.SalaryStatusPending, salary.Status)
	assert.EqualValues(t, 1500, salary.Amount)

	// Same month again updates in place, no second row.
	raise := 1800.0
	_, err = svc.Update(ctx, member.ID, UpdateMemberInput{BaseSalary: &raise})
	require.NoError(t, err)

	var count int64
	require.NoError(t, db.Model(&models.Salary{}).Where("user_id = ?", member.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
	require.NoError(t, db.First(&salary, "user_id = ?", member.ID).Error)
	assert.EqualValues(t, 1800, salary.Amount)
}

func TestCreateWithUnknownTeamFails(t *testing.T) {
	svc, _ := newMemberService(t)
	input := athleteInput()
	input.TeamID = "no-such-team"

	_, err := svc.Create(context.Background(), input)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "team", nf.Resource)
}

func TestUpdatePartialLeavesOtherFields(t *testing.T) {
	svc, _ := newMemberService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	name := "Maja"
	updated, err := svc.Update(ctx, member.ID, UpdateMemberInput{FirstName: &name})
	require.NoError(t, err)

	assert.Equal(t, "Maja", updated.FirstName)
	assert.Equal(t, member.Email, updated.Email)
	assert.Equal(t, member.Phone, updated.Phone)
	require.NotNil(t, updated.Details.Athlete)
	assert.Equal(t, member.Details.Athlete.Sports, updated.Details.Athlete.Sports)
}

func TestUpdateEmailUniquenessExcludesSelf(t *testing.T) {
	svc, _ := newMemberService(t)
	ctx := context.Background()

	first, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	secondInput := athleteInput()
	secondInput.Email = "other@club.test"
	second, err := svc.Create(ctx, secondInput)
	require.NoError(t, err)

	// Taking the first member's address conflicts.
	email := first.Email
	_, err = svc.Update(ctx, second.ID, UpdateMemberInput{Email: &email})
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)

	// Re-submitting one's own address does not.
	own := second.Email
	_, err = svc.Update(ctx, second.ID, UpdateMemberInput{Email: &own})
	require.NoError(t, err)
}

func TestUpdatePhoneCannotBeCleared(t *testing.T) {
	svc, _ := newMemberService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	empty := ""
	_, err = svc.Update(ctx, member.ID, UpdateMemberInput{Phone: &empty})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)

	refreshed, err := svc.Get(ctx, member.ID)
	require.NoError(t, err)
	assert.Equal(t, "12345678", refreshed.Phone)
}

func TestUpdateRoleChangeClearsPreviousRoleFields(t *testing.T) {
	svc, db := newMemberService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	role := models.RoleStaff
	dept := "Administration"
	pos := "Secretary"
	updated, err := svc.Update(ctx, member.ID, UpdateMemberInput{
		Role:       &role,
		Department: &dept,
		Position:   &pos,
	})
	require.NoError(t, err)

	assert.Equal(t, models.RoleStaff, updated.Role)
	require.NotNil(t, updated.Details.Staff)
	assert.Nil(t, updated.Details.Athlete)

	var profile models.MemberProfile
	require.NoError(t, db.First(&profile, "user_id = ?", member.ID).Error)
	assert.Nil(t, profile.DateOfBirth, "athlete fields must not survive a role change")
	assert.Nil(t, profile.Sports)
	assert.Nil(t, profile.EmergencyContact)
	require.NotNil(t, profile.Address)
}

func TestUpdateStatusSynchronizesSubscription(t *testing.T) {
	svc, db := newMemberService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)
	assert.Nil(t, member.Subscription)

	withSub, err := svc.UpdateStatus(ctx, member.ID, models.SubscriptionStatusActive)
	require.NoError(t, err)
	require.NotNil(t, withSub.Subscription)
	assert.Equal(t, models.SubscriptionStatusActive, withSub.Subscription.Status)

	again, err := svc.UpdateStatus(ctx, member.ID, models.SubscriptionStatusInactive)
	require.NoError(t, err)
	require.NotNil(t, again.Subscription)
	assert.Equal(t, withSub.Subscription.ID, again.Subscription.ID, "status change must not create a second row")
	assert.Equal(t, models.SubscriptionStatusInactive, again.Subscription.Status)

	var count int64
	require.NoError(t, db.Model(&models.Subscription{}).Where("user_id = ?", member.ID).Count(&count).Error)
	assert.EqualValues(t, 1, count)
}

func TestDeleteRemovesIdentity(t *testing.T) {
	svc, db := newMemberService(t)
	ctx := context.Background()

	member, err := svc.Create(ctx, athleteInput())
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, member.ID))

	var users, profiles int64
	require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
	require.NoError(t, db.Model(&models.MemberProfile{}).Count(&profiles).Error)
	assert.Zero(t, users, "no orphaned identity rows")
	assert.Zero(t, profiles)

	_, err = svc.Get(ctx, member.ID)
	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)

	err = svc.Delete(ctx, member.ID)
	require.ErrorAs(t, err, &nf)
}

func TestProvisionAccount(t *testing.T) {
	svc, _ := newMemberService(t)
	ctx := context.Background()

	account, err := svc.ProvisionAccount(ctx, ProvisionAccountInput{
		Email:     "Admin@Club.Test",
		Password:  "super-secret",
		Role:      models.RoleAdmin,
		FirstName: "Root",
	})
	require.NoError(t, err)
	assert.Equal(t, "admin@club.test", account.Email)
	assert.Empty(t, account.PasswordHash)

	_, err = svc.ProvisionAccount(ctx, ProvisionAccountInput{
		Email:    "athlete2@club.test",
		Password: "pw",
		Role:     models.RoleAthlete,
	})
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
}
