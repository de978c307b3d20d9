package responses

import (
	"errors"

	"github.com/UnderratedBeast/UniqueFabric-Backend/apperrors"
	"github.com/UnderratedBeast/UniqueFabric-Backend/configs"
	"github.com/gofiber/fiber/v2"
	log "github.com/sirupsen/logrus"
)

// ApiResponse is the uniform JSON envelope for every endpoint.
type ApiResponse struct {
	Status  int        `json:"status"`
	Message string     `json:"message"`
	Result  *fiber.Map `json:"result"`
}

func OK(c *fiber.Ctx, message string, result *fiber.Map) error {
	return c.Status(fiber.StatusOK).JSON(ApiResponse{
		Status:  fiber.StatusOK,
		Message: message,
		Result:  result,
	})
}

func Created(c *fiber.Ctx, message string, result *fiber.Map) error {
	return c.Status(fiber.StatusCreated).JSON(ApiResponse{
		Status:  fiber.StatusCreated,
		Message: message,
		Result:  result,
	})
}

func BadRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ApiResponse{
		Status:  fiber.StatusBadRequest,
		Message: message,
	})
}

func Unauthorized(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ApiResponse{
		Status:  fiber.StatusUnauthorized,
		Message: message,
	})
}

// Error maps a service or store error to the envelope. Internal causes are
// only echoed back in development mode.
func Error(c *fiber.Ctx, err error) error {
	status := apperrors.StatusCode(err)
	message := apperrors.Message(err)

	if status == fiber.StatusInternalServerError {
		log.WithFields(log.Fields{
			"path": c.Path(),
			"err":  err,
		}).Error("request failed")
		if configs.IsDevelopment() {
			var appErr *apperrors.Error
			if errors.As(err, &appErr) && appErr.Err != nil {
				return c.Status(status).JSON(ApiResponse{
					Status:  status,
					Message: message,
					Result:  &fiber.Map{"error": appErr.Err.Error()},
				})
			}
		}
	}

	return c.Status(status).JSON(ApiResponse{
		Status:  status,
		Message: message,
	})
}
