package handlers

import (
	"path/filepath"

	"club-management-system/middleware"
	"club-management-system/services"
	"club-management-system/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

func SetupMemberRoutes(app *fiber.App, memberService *services.MemberService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/members", createMember(memberService))
	secured.Get("/members", listMembers(memberService))
	secured.Get("/members/:id", getMember(memberService))
	secured.Put("/members/:id", updateMember(memberService))
	secured.Patch("/members/:id/status", updateMemberStatus(memberService))
	secured.Delete("/members/:id", deleteMember(memberService))
	secured.Post("/members/:id/photo", uploadMemberPhoto(memberService))

	admin := secured.Group("/admin")
	admin.Post("/accounts", provisionAccount(memberService))
}

func createMember(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input services.CreateMemberInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		member, err := s.Create(c.Context(), input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(member)
	}
}

func listMembers(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		members, err := s.List(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(members)
	}
}

func getMember(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		member, err := s.Get(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(member)
	}
}

func updateMember(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input services.UpdateMemberInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		member, err := s.Update(c.Context(), c.Params("id"), input)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(member)
	}
}

func updateMemberStatus(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type Req struct {
			Status string `json:"status"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		member, err := s.UpdateStatus(c.Context(), c.Params("id"), req.Status)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(member)
	}
}

func deleteMember(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Delete(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "member deleted"})
	}
}

func uploadMemberPhoto(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := c.Params("id")
		photo, err := c.FormFile("photo")
		if err != nil || photo.Size == 0 {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "photo file is required"})
		}
		ext := filepath.Ext(photo.Filename)
		if ext == "" {
			ext = ".jpg"
		}
		key := "members/photos/" + uuid.NewString() + ext
		url, err := utils.UploadFileToR2(photo, key)
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to upload photo"})
		}
		if err := s.SetPhotoURL(c.Context(), id, url); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"photo_url": url})
	}
}

func provisionAccount(s *services.MemberService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input services.ProvisionAccountInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		account, err := s.ProvisionAccount(c.Context(), input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(account)
	}
}
