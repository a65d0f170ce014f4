package services

import (
	"context"
	"errors"
	"time"

	"club-management-system/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// EventService guards event capacity and registration idempotency. Register
// locks the event row for the duration of the check-and-act, so two
// concurrent registrations for the last slot cannot both commit.
type EventService struct {
	DB *gorm.DB
}

func NewEventService(db *gorm.DB) *EventService {
	return &EventService{DB: db}
}

type CreateEventInput struct {
	Name        string    `json:"name"`
	Description string    `json:"description,omitempty"`
	Location    string    `json:"location,omitempty"`
	StartTime   time.Time `json:"start_time"`
	EndTime     time.Time `json:"end_time,omitempty"`
	Capacity    int       `json:"capacity"`
}

func (s *EventService) CreateEvent(ctx context.Context, input CreateEventInput) (*models.Event, error) {
	if input.Name == "" {
		return nil, validationErr("name", "is required")
	}
	if input.Capacity <= 0 {
		return nil, validationErr("capacity", "must be a positive integer")
	}
	if input.StartTime.IsZero() {
		return nil, validationErr("start_time", "is required")
	}
	event := models.Event{
		ID:          uuid.NewString(),
		Name:        input.Name,
		Description: input.Description,
		Location:    input.Location,
		StartTime:   input.StartTime,
		EndTime:     input.EndTime,
		Capacity:    input.Capacity,
	}
	if err := s.DB.WithContext(ctx).Create(&event).Error; err != nil {
		return nil, err
	}
	event.AvailableSlots = int64(event.Capacity)
	return &event, nil
}

func (s *EventService) GetEvent(ctx context.Context, id string) (*models.Event, error) {
	var event models.Event
	err := s.DB.WithContext(ctx).
		Preload("Participants", func(db *gorm.DB) *gorm.DB {
			return db.Order("registered_at ASC")
		}).
		Preload("Participants.User").
		First(&event, "id = ?", id).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("event", id)
		}
		return nil, err
	}
	event.ParticipantCount = int64(len(event.Participants))
	event.AvailableSlots = int64(event.Capacity) - event.ParticipantCount
	return &event, nil
}

func (s *EventService) ListEvents(ctx context.Context) ([]models.Event, error) {
	var events []models.Event
	if err := s.DB.WithContext(ctx).
		Preload("Participants").
		Order("start_time ASC").
		Find(&events).Error; err != nil {
		return nil, err
	}
	for i := range events {
		events[i].ParticipantCount = int64(len(events[i].Participants))
		events[i].AvailableSlots = int64(events[i].Capacity) - events[i].ParticipantCount
	}
	return events, nil
}

func (s *EventService) DeleteEvent(ctx context.Context, id string) error {
	return withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		if err := tx.Where("event_id = ?", id).Delete(&models.EventParticipant{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&models.Event{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return notFoundErr("event", id)
		}
		return nil
	})
}

// Register adds the user to the event. Existence, capacity and duplicate
// checks all read the snapshot pinned by the row lock, then the insert lands
// in the same transaction.
func (s *EventService) Register(ctx context.Context, eventID, userID string) (*models.EventParticipant, error) {
	if userID == "" {
		return nil, validationErr("user_id", "is required")
	}
	var participant models.EventParticipant
	err := withRetry(ctx, s.DB, func(tx *gorm.DB) error {
		var event models.Event
		if err := lockForUpdate(tx).First(&event, "id = ?", eventID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return notFoundErr("event", eventID)
			}
			return err
		}

		var count int64
		if err := tx.Model(&models.EventParticipant{}).
			Where("event_id = ?", eventID).
			Count(&count).Error; err != nil {
			return err
		}
		if count >= int64(event.Capacity) {
			return &CapacityError{EventID: eventID, Capacity: event.Capacity}
		}

		var existing int64
		if err := tx.Model(&models.EventParticipant{}).
			Where("event_id = ? AND user_id = ?", eventID, userID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return conflictErr("registration", "user already registered for this event")
		}

		participant = models.EventParticipant{
			ID:      uuid.NewString(),
			EventID: eventID,
			UserID:  userID,
		}
		if err := tx.Create(&participant).Error; err != nil {
			if isDuplicateKey(err) {
				return conflictErr("registration", "user already registered for this event")
			}
			return err
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// Unregister removes the user's registration.
func (s *EventService) Unregister(ctx context.Context, eventID, userID string) error {
	result := s.DB.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		Delete(&models.EventParticipant{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return notFoundErr("registration", eventID+"/"+userID)
	}
	return nil
}

// RecordResult stores the participant's result (placement, score, note).
func (s *EventService) RecordResult(ctx context.Context, eventID, userID, result string) (*models.EventParticipant, error) {
	var participant models.EventParticipant
	err := s.DB.WithContext(ctx).
		Where("event_id = ? AND user_id = ?", eventID, userID).
		First(&participant).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, notFoundErr("registration", eventID+"/"+userID)
		}
		return nil, err
	}
	if err := s.DB.WithContext(ctx).Model(&participant).Update("result", result).Error; err != nil {
		return nil, err
	}
	return &participant, nil
}
