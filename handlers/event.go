package handlers

import (
	"club-management-system/middleware"
	"club-management-system/services"

	"github.com/gofiber/fiber/v2"
)

func SetupEventRoutes(app *fiber.App, eventService *services.EventService, subscriptionService *services.SubscriptionService) {
	secured := app.Group("/", middleware.UserContextMiddleware())

	secured.Post("/events", createEvent(eventService))
	secured.Get("/events", listEvents(eventService))
	secured.Get("/events/:id", getEvent(eventService))
	secured.Delete("/events/:id", deleteEvent(eventService))

	secured.Post("/events/:id/register", registerParticipant(eventService))
	secured.Delete("/events/:id/participants/:user_id", unregisterParticipant(eventService))
	secured.Patch("/events/:id/participants/:user_id/result", recordResult(eventService))

	secured.Get("/members/:id/subscriptions", subscriptionHistory(subscriptionService))
}

func createEvent(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var input services.CreateEventInput
		if err := c.BodyParser(&input); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON", "details": err.Error()})
		}
		event, err := s.CreateEvent(c.Context(), input)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(event)
	}
}

func listEvents(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		events, err := s.ListEvents(c.Context())
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(events)
	}
}

func getEvent(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		event, err := s.GetEvent(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(event)
	}
}

func deleteEvent(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.DeleteEvent(c.Context(), c.Params("id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "event deleted"})
	}
}

func registerParticipant(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type Req struct {
			UserID string `json:"user_id"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		participant, err := s.Register(c.Context(), c.Params("id"), req.UserID)
		if err != nil {
			return respondError(c, err)
		}
		return c.Status(fiber.StatusCreated).JSON(participant)
	}
}

func unregisterParticipant(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := s.Unregister(c.Context(), c.Params("id"), c.Params("user_id")); err != nil {
			return respondError(c, err)
		}
		return c.JSON(fiber.Map{"message": "registration removed"})
	}
}

func recordResult(s *services.EventService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		type Req struct {
			Result string `json:"result"`
		}
		var req Req
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid JSON"})
		}
		participant, err := s.RecordResult(c.Context(), c.Params("id"), c.Params("user_id"), req.Result)
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(participant)
	}
}

func subscriptionHistory(s *services.SubscriptionService) fiber.Handler {
	return func(c *fiber.Ctx) error {
		subs, err := s.History(c.Context(), c.Params("id"))
		if err != nil {
			return respondError(c, err)
		}
		return c.JSON(subs)
	}
}
