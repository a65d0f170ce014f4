package handlers

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"club-management-system/models"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func testApp(t *testing.T) (*fiber.App, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:handlers-%s?mode=memory&cache=shared", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		TranslateError: true,
		Logger:         logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.Team{},
		&models.TeamMember{},
		&models.MemberProfile{},
		&models.Salary{},
		&models.Event{},
		&models.EventParticipant{},
		&models.Subscription{},
	))

	subscriptionService := services.NewSubscriptionService(db)
	memberService := services.NewMemberService(db, subscriptionService)
	eventService := services.NewEventService(db)
	teamService := services.NewTeamService(db)

	app := fiber.New()
	SetupMemberRoutes(app, memberService)
	SetupTeamRoutes(app, teamService)
	SetupEventRoutes(app, eventService, subscriptionService)
	return app, db
}

func doJSON(t *testing.T, app *fiber.App, method, path string, body interface{}) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-User-ID", "test-admin")
	req.Header.Set("X-User-Roles", "admin")
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out interface{}) {
	t.Helper()
	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func TestSecuredRoutesRequireUserContext(t *testing.T) {
	app, _ := testApp(t)

	req := httptest.NewRequest(http.MethodGet, "/members", nil)
	resp, err := app.Test(req, -1)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func TestCreateMemberEndToEnd(t *testing.T) {
	app, _ := testApp(t)

	resp := doJSON(t, app, http.MethodPost, "/members", fiber.Map{
		"email":      "maya@club.test",
		"first_name": "Maya",
		"last_name":  "Jensen",
		"phone":      "12 34 56 78",
		"sports":     []string{"judo"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var member services.MemberAggregate
	decodeBody(t, resp, &member)
	assert.Equal(t, "maya@club.test", member.Email)
	assert.Equal(t, "12345678", member.Phone)
	assert.Equal(t, models.RoleAthlete, member.Role)
	require.NotNil(t, member.Details.Athlete)

	// Duplicate email maps to 409.
	resp = doJSON(t, app, http.MethodPost, "/members", fiber.Map{
		"email":      "MAYA@club.test",
		"first_name": "Other",
		"phone":      "11112222",
	})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Bad phone maps to 400.
	resp = doJSON(t, app, http.MethodPost, "/members", fiber.Map{
		"email": "short@club.test",
		"phone": "1234",
	})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestMemberStatusAndNotFoundMapping(t *testing.T) {
	app, _ := testApp(t)

	resp := doJSON(t, app, http.MethodPost, "/members", fiber.Map{
		"email": "status@club.test",
		"phone": "12345678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var member services.MemberAggregate
	decodeBody(t, resp, &member)

	resp = doJSON(t, app, http.MethodPatch, "/members/"+member.ID+"/status", fiber.Map{"status": "active"})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var updated services.MemberAggregate
	decodeBody(t, resp, &updated)
	require.NotNil(t, updated.Subscription)
	assert.Equal(t, models.SubscriptionStatusActive, updated.Subscription.Status)

	resp = doJSON(t, app, http.MethodPatch, "/members/"+member.ID+"/status", fiber.Map{"status": "bogus"})
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/members/no-such-id", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestEventRegistrationStatusMapping(t *testing.T) {
	app, db := testApp(t)

	resp := doJSON(t, app, http.MethodPost, "/events", fiber.Map{
		"name":       "Club Cup",
		"start_time": time.Now().Add(24 * time.Hour).Format(time.RFC3339),
		"capacity":   1,
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var event models.Event
	decodeBody(t, resp, &event)

	first := models.User{ID: uuid.NewString(), Email: "a@club.test", PasswordHash: "x", Role: models.RoleAthlete, Phone: "12345678"}
	second := models.User{ID: uuid.NewString(), Email: "b@club.test", PasswordHash: "x", Role: models.RoleAthlete, Phone: "12345678"}
	require.NoError(t, db.Create(&first).Error)
	require.NoError(t, db.Create(&second).Error)

	resp = doJSON(t, app, http.MethodPost, "/events/"+event.ID+"/register", fiber.Map{"user_id": first.ID})
	assert.Equal(t, http.StatusCreated, resp.StatusCode)

	// Same user again: 409.
	resp = doJSON(t, app, http.MethodPost, "/events/"+event.ID+"/register", fiber.Map{"user_id": first.ID})
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	// Capacity reached: 403.
	resp = doJSON(t, app, http.MethodPost, "/events/"+event.ID+"/register", fiber.Map{"user_id": second.ID})
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	// Unknown event: 404.
	resp = doJSON(t, app, http.MethodPost, "/events/nope/register", fiber.Map{"user_id": second.ID})
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestSubscriptionHistoryEndpoint(t *testing.T) {
	app, _ := testApp(t)

	resp := doJSON(t, app, http.MethodPost, "/members", fiber.Map{
		"email": "history@club.test",
		"phone": "12345678",
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)
	var member services.MemberAggregate
	decodeBody(t, resp, &member)

	resp = doJSON(t, app, http.MethodPatch, "/members/"+member.ID+"/status", fiber.Map{"status": "pending"})
	require.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doJSON(t, app, http.MethodGet, "/members/"+member.ID+"/subscriptions", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var history []models.Subscription
	decodeBody(t, resp, &history)
	require.Len(t, history, 1)
	assert.Equal(t, models.SubscriptionStatusPending, history[0].Status)
}
