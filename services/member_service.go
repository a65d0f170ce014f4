package services

import (
	"context"
	"errors"
	"time"

	"club-management-system/models"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const bcryptCost = 10

// MemberService orchestrates the identity + profile + compensation fan-out of
// a member record. Every mutation runs in one transaction: a profile never
// exists without its identity and the other way round.
type MemberService struct {
	DB            *gorm.DB
	Subscriptions *SubscriptionService
}

func NewMemberService(db *gorm.DB, subscriptions *SubscriptionService) *MemberService {
	return &MemberService{DB: db, Subscriptions: subscriptions}
}

// CreateMemberInput carries identity fields plus the role-specific profile
// fields. Fields outside the chosen role are ignored.
type CreateMemberInput struct {
	Email     string `json:"email"`
	Password  string `json:"password,omitempty"`
	Role      string `json:"role,omitempty"` // defaults to athlete
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone"`

	BaseSalary float64 `json:"base_salary,omitempty"`

	// Athlete
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Sports           []string   `json:"sports,omitempty"`
	WeightKG         *float64   `json:"weight_kg,omitempty"`
	HeightCM         *float64   `json:"height_cm,omitempty"`
	StrongPoint      string     `json:"strong_point,omitempty"`
	WeakPoint        string     `json:"weak_point,omitempty"`
	EmergencyContact string     `json:"emergency_contact,omitempty"`
	TeamID           string     `json:"team_id,omitempty"`

	// Coach
	Specialties     []string `json:"specialties,omitempty"`
	Certifications  string   `json:"certifications,omitempty"`
	ExperienceYears int      `json:"experience_years,omitempty"`

	// Staff
	Department string     `json:"department,omitempty"`
	Position   string     `json:"position,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

// UpdateMemberInput supports partial updates: nil leaves a field untouched,
// a pointer to the zero value clears it. Phone is the exception — once set it
// cannot be cleared, and any supplied value must still normalize to 8 digits.
type UpdateMemberInput struct {
	Email     *string `json:"email,omitempty"`
	Password  *string `json:"password,omitempty"`
	Role      *string `json:"role,omitempty"`
	FirstName *string `json:"first_name,omitempty"`
	LastName  *string `json:"last_name,omitempty"`
	Phone     *string `json:"phone,omitempty"`

	BaseSalary *float64 `json:"base_salary,omitempty"`

	// Athlete
	DateOfBirth      *time.Time `json:"date_of_birth,omitempty"`
	Sports           *[]string  `json:"sports,omitempty"`
	WeightKG         *float64   `json:"weight_kg,omitempty"`
	HeightCM         *float64   `json:"height_cm,omitempty"`
	StrongPoint      *string    `json:"strong_point,omitempty"`
	WeakPoint        *string    `json:"weak_point,omitempty"`
	EmergencyContact *string    `json:"emergency_contact,omitempty"`
	TeamID           *string    `json:"team_id,omitempty"`

	// Coach
	Specialties     *[]string `json:"specialties,omitempty"`
	Certifications  *string   `json:"certifications,omitempty"`
	ExperienceYears *int      `json:"experience_years,omitempty"`

	// Staff
	Department *string    `json:"department,omitempty"`
	Position   *string    `json:"position,omitempty"`
	HireDate   *time.Time `json:"hire_date,omitempty"`
}

// TeamSummary is the joined team slice of a member aggregate.
type TeamSummary struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	Discipline string `json:"discipline"`
}

// MemberAggregate is the composed read model: identity minus the password
// hash, the role-shaped profile, the joined team, and the current
// subscription.
type MemberAggregate struct {
	ID           string               `json:"id"`
	Email        string               `json:"email"`
	Role         string               `json:"role"`
	FirstName    string               `json:"first_name"`
	LastName     string               `json:"last_name"`
	Phone        string               `json:"phone"`
	PhotoURL     string               `json:"photo_url,omitempty"`
	Details      ProfileDetails       `json:"details"`
	Team         *TeamSummary         `json:"team,omitempty"`
	Subscription *models.Subscription `json:"subscription,omitempty"`
	CreatedAt    time.Time            `json:"created_at"`
	UpdatedAt    time.Time            `json:"updated_at"`
}

// Create validates the input, then inserts identity, profile and (optionally)
// the current month's salary as one atomic unit.
func (s *MemberService) Create(ctx context.Context, input CreateMemberInput) (*MemberAggregate, error) {
	role := input.Role
	if role == "" {
		role = models.RoleAthlete
	}
	if role == models.RoleAdmin || role == models.RoleManager {
		return nil, validationErr("role", "admin and manager accounts are provisioned separately, not via member creation")
	}
	if !memberRoles[role] {
		return nil, validationErr("role", "must be one of athlete, coach, staff")
	}

	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, validationErr("email", "is required")
	}

	phone, err := normalizePhone("phone", input.Phone)
	if err != nil {
		return nil, err
	}
	emergency := ""
	if input.EmergencyContact != "" {
		emergency, err = normalizePhone("emergency_contact", input.EmergencyContact)
		if err != nil {
			return nil, err
		}
	}

	if input.DateOfBirth != nil {
		if err := checkDateOfBirth(*input.DateOfBirth, time.Now()); err != nil {
			return nil, err
		}
	}
	if role == models.RoleCoach && joinedList(input.Specialties) == nil {
		return nil, validationErr("specialties", "required for coach members")
	}

	var taken int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("email = ?", email).Count(&taken).Error; err != nil {
		return nil, err
	}
	if taken > 0 {
		return nil, conflictErr("member", "email already registered")
	}

	if input.TeamID != "" {
		var teamCount int64
		if err := s.DB.WithContext(ctx).Model(&models.Team{}).Where("id = ?", input.TeamID).Count(&teamCount).Error; err != nil {
			return nil, err
		}
		if teamCount == 0 {
			return nil, notFoundErr("team", input.TeamID)
		}
	}

	password := input.Password
	if password == "" {
		password = defaultSecret
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         role,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        phone,
	}
	details := detailsFromInput(role, input, emergency)

	err = withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Create(&user).Error; err != nil {
			if isDuplicateKey(err) {
				return conflictErr("member", "email already registered")
			}
			return err
		}
		profile := models.MemberProfile{
			ID:     uuid.NewString(),
			UserID: user.ID,
		}
		applyDetails(&profile, details)
		if err := tx.Create(&profile).Error; err != nil {
			return err
		}
		if input.BaseSalary > 0 {
			if err := upsertSalary(tx, user.ID, role, input.BaseSalary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, user.ID)
}

// upsertSalary writes the current calendar month's compensation row, keyed on
// (user, month). A second call in the same month updates in place.
func upsertSalary(tx *gorm.DB, userID, role string, amount float64) error {
	salary := models.Salary{
		ID:     uuid.NewString(),
		UserID: userID,
		Month:  time.Now().Format("2006-01"),
		Amount: amount,
		Type:   salaryTypeForRole(role),
		Status: models.SalaryStatusPending,
	}
	return tx.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "month"}},
		DoUpdates: clause.AssignmentColumns([]string{"amount", "type", "status"}),
	}).Create(&salary).Error
}

// Get returns the member aggregate or NotFoundError.
func (s *MemberService) Get(ctx context.Context, id string) (*MemberAggregate, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("member", id)
		}
		return nil, err
	}
	return s.aggregate(ctx, &user)
}

// List returns all member aggregates, newest first.
func (s *MemberService) List(ctx context.Context) ([]MemberAggregate, error) {
	var users []models.User
	if err := s.DB.WithContext(ctx).
		Where("role IN ?", []string{models.RoleAthlete, models.RoleCoach, models.RoleStaff}).
		Order("created_at DESC").
		Find(&users).Error; err != nil {
		return nil, err
	}
	out := make([]MemberAggregate, 0, len(users))
	for i := range users {
		agg, err := s.aggregate(ctx, &users[i])
		if err != nil {
			return nil, err
		}
		out = append(out, *agg)
	}
	return out, nil
}

// Update applies a partial update to identity and profile fields in one
// transaction. A role change rebuilds the profile from the supplied
// role-specific fields so no column from the previous role leaks through.
func (s *MemberService) Update(ctx context.Context, id string, input UpdateMemberInput) (*MemberAggregate, error) {
	var user models.User
	if err := s.DB.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("member", id)
		}
		return nil, err
	}
	var profile models.MemberProfile
	if err := s.DB.WithContext(ctx).First(&profile, "user_id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("member", id)
		}
		return nil, err
	}

	userUpdates := map[string]interface{}{}

	if input.Email != nil {
		email := normalizeEmail(*input.Email)
		if email == "" {
			return nil, validationErr("email", "cannot be cleared")
		}
		if email != user.Email {
			var taken int64
			if err := s.DB.WithContext(ctx).Model(&models.User{}).
				Where("email = ? AND id <> ?", email, id).
				Count(&taken).Error; err != nil {
				return nil, err
			}
			if taken > 0 {
				return nil, conflictErr("member", "email already registered")
			}
		}
		userUpdates["email"] = email
	}
	if input.Phone != nil {
		phone, err := normalizePhone("phone", *input.Phone)
		if err != nil {
			return nil, err
		}
		userUpdates["phone"] = phone
	}
	if input.Password != nil && *input.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(*input.Password), bcryptCost)
		if err != nil {
			return nil, err
		}
		userUpdates["password_hash"] = string(hash)
	}
	if input.FirstName != nil {
		userUpdates["first_name"] = *input.FirstName
	}
	if input.LastName != nil {
		userUpdates["last_name"] = *input.LastName
	}

	role := user.Role
	roleChanged := false
	if input.Role != nil && *input.Role != user.Role {
		role = *input.Role
		if role == models.RoleAdmin || role == models.RoleManager {
			return nil, validationErr("role", "admin and manager accounts are provisioned separately, not via member update")
		}
		if !memberRoles[role] {
			return nil, validationErr("role", "must be one of athlete, coach, staff")
		}
		roleChanged = true
		userUpdates["role"] = role
	}

	details := detailsFromRecord(role, &profile)
	if roleChanged {
		// Discard the previous role's payload entirely.
		details = ProfileDetails{Role: role}
	}
	if err := mergeDetails(&details, input); err != nil {
		return nil, err
	}
	if role == models.RoleCoach {
		if details.Coach == nil || joinedList(details.Coach.Specialties) == nil {
			return nil, validationErr("specialties", "required for coach members")
		}
	}
	if details.Athlete != nil && details.Athlete.TeamID != "" {
		var teamCount int64
		if err := s.DB.WithContext(ctx).Model(&models.Team{}).Where("id = ?", details.Athlete.TeamID).Count(&teamCount).Error; err != nil {
			return nil, err
		}
		if teamCount == 0 {
			return nil, notFoundErr("team", details.Athlete.TeamID)
		}
	}

	err := withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		if len(userUpdates) > 0 {
			if err := tx.Model(&models.User{}).Where("id = ?", id).Updates(userUpdates).Error; err != nil {
				if isDuplicateKey(err) {
					return conflictErr("member", "email already registered")
				}
				return err
			}
		}
		applyDetails(&profile, details)
		if err := tx.Save(&profile).Error; err != nil {
			return err
		}
		if input.BaseSalary != nil && *input.BaseSalary > 0 {
			if err := upsertSalary(tx, id, role, *input.BaseSalary); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

// UpdateStatus reconciles the member's status into subscription state and
// returns the refreshed aggregate.
func (s *MemberService) UpdateStatus(ctx context.Context, id, status string) (*MemberAggregate, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, notFoundErr("member", id)
	}
	if _, err := s.Subscriptions.SetStatus(ctx, id, status); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the profile and every dependent row, cascading to the
// identity. No orphaned identity survives.
func (s *MemberService) Delete(ctx context.Context, id string) error {
	return withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		result := tx.Where("user_id = ?", id).Delete(&models.MemberProfile{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundErr("member", id)
		}
		for _, dependent := range []interface{}{
			&models.TeamMember{},
			&models.EventParticipant{},
			&models.Salary{},
			&models.Subscription{},
		} {
			if err := tx.Where("user_id = ?", id).Delete(dependent).Error; err != nil {
				return err
			}
		}
		if err := tx.Model(&models.Team{}).Where("coach_id = ?", id).Update("coach_id", nil).Error; err != nil {
			return err
		}
		return tx.Delete(&models.User{}, "id = ?", id).Error
	})
}

// ProvisionAccountInput creates an Admin or Manager identity. These accounts
// carry no member profile and are kept off the member-creation path.
type ProvisionAccountInput struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	Role      string `json:"role"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Phone     string `json:"phone,omitempty"`
}

func (s *MemberService) ProvisionAccount(ctx context.Context, input ProvisionAccountInput) (*models.User, error) {
	if input.Role != models.RoleAdmin && input.Role != models.RoleManager {
		return nil, validationErr("role", "must be admin or manager")
	}
	email := normalizeEmail(input.Email)
	if email == "" {
		return nil, validationErr("email", "is required")
	}
	if input.Password == "" {
		return nil, validationErr("password", "is required")
	}
	phone := ""
	if input.Phone != "" {
		var err error
		phone, err = normalizePhone("phone", input.Phone)
		if err != nil {
			return nil, err
		}
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, err
	}
	user := models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: string(hash),
		Role:         input.Role,
		FirstName:    input.FirstName,
		LastName:     input.LastName,
		Phone:        phone,
	}
	if err := s.DB.WithContext(ctx).Create(&user).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictErr("account", "email already registered")
		}
		return nil, err
	}
	user.PasswordHash = ""
	return &user, nil
}

// SetPhotoURL stores the uploaded photo location on the identity row.
func (s *MemberService) SetPhotoURL(ctx context.Context, id, url string) error {
	result := s.DB.WithContext(ctx).Model(&models.User{}).Where("id = ?", id).Update("photo_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr("member", id)
	}
	return nil
}

func (s *MemberService) aggregate(ctx context.Context, user *models.User) (*MemberAggregate, error) {
	agg := &MemberAggregate{
		ID:        user.ID,
		Email:     user.Email,
		Role:      user.Role,
		FirstName: user.FirstName,
		LastName:  user.LastName,
		Phone:     user.Phone,
		PhotoURL:  user.PhotoURL,
		Details:   ProfileDetails{Role: user.Role},
		CreatedAt: user.CreatedAt,
		UpdatedAt: user.UpdatedAt,
	}

	var profile models.MemberProfile
	err := s.DB.WithContext(ctx).Preload("Team").First(&profile, "user_id = ?", user.ID).Error
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	if err == nil {
		agg.Details = detailsFromRecord(user.Role, &profile)
		if profile.Team != nil {
			agg.Team = &TeamSummary{
				ID:         profile.Team.ID,
				Name:       profile.Team.Name,
				Discipline: profile.Team.Discipline,
			}
		}
	}

	if s.Subscriptions != nil {
		sub, err := s.Subscriptions.Current(ctx, user.ID)
		if err != nil {
			return nil, err
		}
		agg.Subscription = sub
	}
	return agg, nil
}

// detailsFromInput shapes the create input into the union for the given role.
func detailsFromInput(role string, input CreateMemberInput, emergency string) ProfileDetails {
	d := ProfileDetails{Role: role}
	switch role {
	case models.RoleAthlete:
		d.Athlete = &AthleteDetails{
			DateOfBirth:      input.DateOfBirth,
			Sports:           input.Sports,
			WeightKG:         input.WeightKG,
			HeightCM:         input.HeightCM,
			StrongPoint:      input.StrongPoint,
			WeakPoint:        input.WeakPoint,
			EmergencyContact: emergency,
			TeamID:           input.TeamID,
		}
	case models.RoleCoach:
		d.Coach = &CoachDetails{
			Specialties:     input.Specialties,
			Certifications:  input.Certifications,
			ExperienceYears: input.ExperienceYears,
		}
	case models.RoleStaff:
		d.Staff = &StaffDetails{
			Department: input.Department,
			Position:   input.Position,
			HireDate:   input.HireDate,
		}
	}
	return d
}

// mergeDetails folds the update input's role-specific fields into details.
func mergeDetails(d *ProfileDetails, input UpdateMemberInput) error {
	switch d.Role {
	case models.RoleAthlete:
		if d.Athlete == nil {
			d.Athlete = &AthleteDetails{}
		}
		a := d.Athlete
		if input.DateOfBirth != nil {
			if !input.DateOfBirth.IsZero() {
				if err := checkDateOfBirth(*input.DateOfBirth, time.Now()); err != nil {
					return err
				}
				a.DateOfBirth = input.DateOfBirth
			} else {
				a.DateOfBirth = nil
			}
		}
		if input.Sports != nil {
			a.Sports = *input.Sports
		}
		if input.WeightKG != nil {
			a.WeightKG = input.WeightKG
		}
		if input.HeightCM != nil {
			a.HeightCM = input.HeightCM
		}
		if input.StrongPoint != nil {
			a.StrongPoint = *input.StrongPoint
		}
		if input.WeakPoint != nil {
			a.WeakPoint = *input.WeakPoint
		}
		if input.EmergencyContact != nil {
			if *input.EmergencyContact == "" {
				a.EmergencyContact = ""
			} else {
				normalized, err := normalizePhone("emergency_contact", *input.EmergencyContact)
				if err != nil {
					return err
				}
				a.EmergencyContact = normalized
			}
		}
		if input.TeamID != nil {
			a.TeamID = *input.TeamID
		}
	case models.RoleCoach:
		if d.Coach == nil {
			d.Coach = &CoachDetails{}
		}
		c := d.Coach
		if input.Specialties != nil {
			c.Specialties = *input.Specialties
		}
		if input.Certifications != nil {
			c.Certifications = *input.Certifications
		}
		if input.ExperienceYears != nil {
			c.ExperienceYears = *input.ExperienceYears
		}
	case models.RoleStaff:
		if d.Staff == nil {
			d.Staff = &StaffDetails{}
		}
		st := d.Staff
		if input.Department != nil {
			st.Department = *input.Department
		}
		if input.Position != nil {
			st.Position = *input.Position
		}
		if input.HireDate != nil {
			if input.HireDate.IsZero() {
				st.HireDate = nil
			} else {
				st.HireDate = input.HireDate
			}
		}
	}
	return nil
}
