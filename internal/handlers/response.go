package handlers

import "github.com/gofiber/fiber/v2"

// Response messages.
const (
	MsgProductNotFound = "Producto no encontrado"
	MsgProductDeleted  = "Producto Eliminado"
	MsgInternalError   = "Error interno del servidor"
	MsgHealth          = "desde Api"
)

// DataResponse wraps a successful payload.
type DataResponse[T any] struct {
	OK   bool `json:"ok" example:"true"`
	Data T    `json:"data"`
}

// ErrorResponse wraps a single error message.
type ErrorResponse struct {
	OK    bool   `json:"ok" example:"false"`
	Error string `json:"error" example:"Producto no encontrado"`
}

// HealthResponse is the body of the API probe.
type HealthResponse struct {
	Msg string `json:"msg" example:"desde Api"`
}

func respond[T any](c *fiber.Ctx, status int, data T) error {
	return c.Status(status).JSON(DataResponse[T]{OK: true, Data: data})
}

func respondError(c *fiber.Ctx, status int, msg string) error {
	return c.Status(status).JSON(ErrorResponse{OK: false, Error: msg})
}

func notFound(c *fiber.Ctx) error {
	return respondError(c, fiber.StatusNotFound, MsgProductNotFound)
}
