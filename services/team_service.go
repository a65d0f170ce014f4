package services

import (
	"context"
	"errors"

	"club-management-system/models"

	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"
)

// TeamService guards two roster invariants: a coach leads at most one team,
// and an assigned coach is always visible on the roster exactly once.
//
// The coach-uniqueness check is advisory (query-then-write): two concurrent
// creates with the same coach can both pass it before either commits. Callers
// needing strict enforcement should add a partial unique index on
// teams.coach_id.
type TeamService struct {
	DB *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{DB: db}
}

type CreateTeamInput struct {
	Name       string   `json:"name"`
	Discipline string   `json:"discipline"`
	CoachID    *string  `json:"coach_id,omitempty"`
	MemberIDs  []string `json:"member_ids,omitempty"`
}

// UpdateTeamInput: nil leaves a field as is. A non-nil MemberIDs — even an
// empty one — replaces the whole roster.
type UpdateTeamInput struct {
	Name       *string   `json:"name,omitempty"`
	Discipline *string   `json:"discipline,omitempty"`
	CoachID    *string   `json:"coach_id,omitempty"` // pointer to "" clears the coach
	MemberIDs  *[]string `json:"member_ids,omitempty"`
}

// virtualRosterID derives the synthesized coach entry's id from the team id,
// so the projection is stable across reads without persisting the row.
func virtualRosterID(teamID string) string {
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte("team-coach:"+teamID)).String()
}

// CreateTeam inserts the team and one roster entry per distinct id in the
// union of MemberIDs and the coach.
func (s *TeamService) CreateTeam(ctx context.Context, input CreateTeamInput) (*models.Team, error) {
	if input.Name == "" {
		return nil, validationErr("name", "is required")
	}

	coachID := deref(input.CoachID)
	if coachID != "" {
		if err := s.checkCoachFree(ctx, coachID, ""); err != nil {
			return nil, err
		}
	}

	team := models.Team{
		ID:         uuid.NewString(),
		Name:       input.Name,
		Slug:       slug.Make(input.Name),
		Discipline: input.Discipline,
		CoachID:    input.CoachID,
	}
	if coachID == "" {
		team.CoachID = nil
	}

	roster := rosterUnion(input.MemberIDs, coachID)

	err := withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Create(&team).Error; err != nil {
			return err
		}
		for _, userID := range roster {
			entry := models.TeamMember{
				ID:     uuid.NewString(),
				TeamID: team.ID,
				UserID: userID,
			}
			if err := tx.Create(&entry).Error; err != nil {
				if isDuplicateKey(err) {
					return conflictErr("roster", "duplicate roster entry")
				}
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTeam(ctx, team.ID)
}

// GetTeam returns the team with coach, roster and member count, including the
// synthesized virtual coach entry when the coach has no stored row.
func (s *TeamService) GetTeam(ctx context.Context, id string) (*models.Team, error) {
	var team models.Team
	err := s.DB.WithContext(ctx).
		Preload("Coach").
		Preload("Members").
		Preload("Members.User").
		First(&team, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("team", id)
		}
		return nil, err
	}
	s.project(&team)
	return &team, nil
}

// ListTeams returns all teams under the same projection rule as GetTeam.
func (s *TeamService) ListTeams(ctx context.Context) ([]models.Team, error) {
	var teams []models.Team
	err := s.DB.WithContext(ctx).
		Preload("Coach").
		Preload("Members").
		Preload("Members.User").
		Order("created_at DESC").
		Find(&teams).Error
	if err != nil {
		return nil, err
	}
	for i := range teams {
		s.project(&teams[i])
	}
	return teams, nil
}

// UpdateTeam patches team fields. A full roster replacement happens only when
// MemberIDs is present; otherwise a coach change upserts just the new coach's
// entry and leaves the rest of the roster alone.
func (s *TeamService) UpdateTeam(ctx context.Context, id string, input UpdateTeamInput) (*models.Team, error) {
	var team models.Team
	if err := s.DB.WithContext(ctx).First(&team, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("team", id)
		}
		return nil, err
	}

	effectiveCoach := deref(team.CoachID)
	coachChanged := false
	if input.CoachID != nil && *input.CoachID != effectiveCoach {
		effectiveCoach = *input.CoachID
		coachChanged = true
	}
	if coachChanged && effectiveCoach != "" {
		if err := s.checkCoachFree(ctx, effectiveCoach, id); err != nil {
			return nil, err
		}
	}

	updates := map[string]interface{}{}
	if input.Name != nil && *input.Name != "" {
		updates["name"] = *input.Name
		updates["slug"] = slug.Make(*input.Name)
	}
	if input.Discipline != nil {
		updates["discipline"] = *input.Discipline
	}
	if coachChanged {
		if effectiveCoach == "" {
			updates["coach_id"] = nil
		} else {
			updates["coach_id"] = effectiveCoach
		}
	}

	err := withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		if len(updates) > 0 {
			if err := tx.Model(&models.Team{}).Where("id = ?", id).Updates(updates).Error; err != nil {
				return err
			}
		}

		if input.MemberIDs != nil {
			// Wholesale replacement: drop and recreate from the new union.
			if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
				return err
			}
			for _, userID := range rosterUnion(*input.MemberIDs, effectiveCoach) {
				entry := models.TeamMember{
					ID:     uuid.NewString(),
					TeamID: id,
					UserID: userID,
				}
				if err := tx.Create(&entry).Error; err != nil {
					if isDuplicateKey(err) {
						return conflictErr("roster", "duplicate roster entry")
					}
					return err
				}
			}
			return nil
		}

		if coachChanged && effectiveCoach != "" {
			// Targeted upsert: the new coach joins, nobody else moves.
			var count int64
			if err := tx.Model(&models.TeamMember{}).
				Where("team_id = ? AND user_id = ?", id, effectiveCoach).
				Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				entry := models.TeamMember{
					ID:     uuid.NewString(),
					TeamID: id,
					UserID: effectiveCoach,
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	return s.GetTeam(ctx, id)
}

// DeleteTeam removes the team with its roster and detaches member profiles.
func (s *TeamService) DeleteTeam(ctx context.Context, id string) error {
	return withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Where("team_id = ?", id).Delete(&models.TeamMember{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&models.MemberProfile{}).Where("team_id = ?", id).Update("team_id", nil).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Team{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundErr("team", id)
		}
		return nil
	})
}

// AddMember inserts a single roster entry.
func (s *TeamService) AddMember(ctx context.Context, teamID, userID string) (*models.TeamMember, error) {
	var count int64
	if err := s.DB.WithContext(ctx).Model(&models.Team{}).Where("id = ?", teamID).Count(&count).Error; err != nil {
		return nil, err
	}
	if count == 0 {
		return nil, notFoundErr("team", teamID)
	}
	entry := models.TeamMember{
		ID:     uuid.NewString(),
		TeamID: teamID,
		UserID: userID,
	}
	if err := s.DB.WithContext(ctx).Create(&entry).Error; err != nil {
		if isDuplicateKey(err) {
			return nil, conflictErr("roster", "user already on the roster")
		}
		return nil, err
	}
	return &entry, nil
}

// RemoveMember deletes a single roster entry.
func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	result := s.DB.WithContext(ctx).
		Where("team_id = ? AND user_id = ?", teamID, userID).
		Delete(&models.TeamMember{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr("roster entry", teamID+"/"+userID)
	}
	return nil
}

// checkCoachFree fails with ConflictError when another team already has this
// coach. excludeTeamID skips the team being updated.
func (s *TeamService) checkCoachFree(ctx context.Context, coachID, excludeTeamID string) error {
	query := s.DB.WithContext(ctx).Model(&models.Team{}).Where("coach_id = ?", coachID)
	if excludeTeamID != "" {
		query = query.Where("id <> ?", excludeTeamID)
	}
	var count int64
	if err := query.Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return conflictErr("team", "coach already leads another team")
	}
	return nil
}

// project fills the computed fields and synthesizes the virtual coach entry
// when the coach is assigned but has no stored roster row.
func (s *TeamService) project(team *models.Team) {
	if team.CoachID != nil && *team.CoachID != "" {
		onRoster := false
		for i := range team.Members {
			if team.Members[i].UserID == *team.CoachID {
				onRoster = true
				break
			}
		}
		if !onRoster {
			entry := models.TeamMember{
				ID:      virtualRosterID(team.ID),
				TeamID:  team.ID,
				UserID:  *team.CoachID,
				Virtual: true,
			}
			if team.Coach != nil {
				entry.User = *team.Coach
			}
			team.Members = append(team.Members, entry)
		}
	}
	team.MemberCount = len(team.Members)
}

// rosterUnion deduplicates the member ids plus the coach, dropping blanks.
func rosterUnion(memberIDs []string, coachID string) []string {
	seen := map[string]bool{}
	var out []string
	add := func(id string) {
		if id == "" || seen[id] {
			return
		}
		seen[id] = true
		out = append(out, id)
	}
	for _, id := range memberIDs {
		add(id)
	}
	add(coachID)
	return out
}

// SetLogoURL stores the uploaded logo location.
func (s *TeamService) SetLogoURL(ctx context.Context, id, url string) error {
	result := s.DB.WithContext(ctx).Model(&models.Team{}).Where("id = ?", id).Update("logo_url", url)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr("team", id)
	}
	return nil
}
