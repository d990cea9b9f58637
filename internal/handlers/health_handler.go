package handlers

import "github.com/gofiber/fiber/v2"

// HandleHealth answers the API probe.
//
//	@Summary	API probe
//	@Produce	json
//	@Success	200	{object}	HealthResponse
//	@Router		/ [get]
func HandleHealth(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(HealthResponse{Msg: MsgHealth})
}
