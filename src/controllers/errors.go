package controllers

import (
	"errors"
	"go-restaurant-pos/src/controllers/models"
	"go-restaurant-pos/src/infrastructure/log"
	"go-restaurant-pos/src/services/order/domain"

	"github.com/gofiber/fiber/v2"
)

// ErrorHandler renders every error returned by a handler as an ErrorResponse.
func ErrorHandler(logger log.Logger) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		response := errorResponse(err)
		if response.Code >= fiber.StatusInternalServerError {
			logger.Exception(c.UserContext(), "HTTP request error", err)
		}
		return c.Status(response.Code).JSON(response)
	}
}

func errorResponse(err error) models.ErrorResponse {
	response := models.ErrorResponse{Error: true, Code: fiber.StatusInternalServerError, Message: "internal server error"}

	var fiberErr *fiber.Error
	var transitionErr *domain.TransitionError
	var menuErr *domain.MenuReferenceError

	switch {
	case errors.As(err, &fiberErr):
		response.Code = fiberErr.Code
		response.Message = fiberErr.Message
	case errors.As(err, &transitionErr):
		response.Code = fiber.StatusConflict
		response.Message = err.Error()
		response.OrderID = transitionErr.OrderID
		response.From = transitionErr.From.String()
		response.To = transitionErr.To.String()
	case errors.As(err, &menuErr):
		response.Code = fiber.StatusUnprocessableEntity
		response.Message = err.Error()
		response.MenuItemID = menuErr.MenuItemID
	case errors.Is(err, domain.ErrEmptyCart),
		errors.Is(err, domain.ErrInvalidQuantity),
		errors.Is(err, domain.ErrInvalidTableNumber):
		response.Code = fiber.StatusBadRequest
		response.Message = err.Error()
	case errors.Is(err, domain.ErrOrderNotFound):
		response.Code = fiber.StatusNotFound
		response.Message = err.Error()
	case errors.Is(err, domain.ErrDuplicateOrderNumber):
		response.Code = fiber.StatusConflict
		response.Message = err.Error()
	case errors.Is(err, domain.ErrStorageUnavailable):
		response.Code = fiber.StatusServiceUnavailable
		response.Message = domain.ErrStorageUnavailable.Error()
	}
	return response
}
