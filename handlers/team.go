package handlers

import (
	"path/filepath"

	"club-management-system/middleware"
	"club-management-system/services"
	"club-management-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupTeamRoutes(app *fiber.App, teamService *services.TeamService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/teams", createTeam(teamService))
	secured.Get("/teams", listTeams(teamService))
	secured.Get("/teams/:id", getTeam(teamService))
	secured.Put("/teams/:id", updateTeam(teamService))
	secured.Delete("/teams/:id", deleteTeam(teamService))
	secured.Post("/teams/:id/logo", uploadTeamLogo(teamService))

	secured.Post("/teams/:id/members", addTeamMember(teamService))
	secured.Delete("/teams/:id/members/:user_id", removeTeamMember(teamService))
}

func createTeam(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input services.CreateTeamInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		team, err := s.CreateTeam(c.Context(), input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(team)
	}
}

func listTeams(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		teams, err := s.ListTeams(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(teams)
	}
}

func getTeam(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		team, err := s.GetTeam(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(team)
	}
}

func updateTeam(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input services.UpdateTeamInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		team, err := s.UpdateTeam(c.Context(), c.Params("id"), input)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(team)
	}
}

func deleteTeam(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.DeleteTeam(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "team deleted"})
	}
}

func addTeamMember(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		if req.UserID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "user_id is required"})
		}
		entry, err := s.AddMember(c.Context(), c.Params("id"), req.UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(entry)
	}
}

func removeTeamMember(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.RemoveMember(c.Context(), c.Params("id"), c.Params("user_id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "roster entry removed"})
	}
}

func uploadTeamLogo(s *services.TeamService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		logo, err := c.FormFile("logo")
		if err != nil || logo.Size == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "logo file is required"})
		}
		ext := filepath.Ext(logo.Filename)
		if ext == "" {
			ext = ".png"
		}
		key := "teams/logos/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(logo, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload logo"})
		}
		if err := s.SetLogoURL(c.Context(), id, url); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"logo_url": url})
	}
}
