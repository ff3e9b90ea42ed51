package service

import "github.com/gofiber/fiber/v2"

// ErrSubmissionNotFound reads as a 404 through the error handler.
var ErrSubmissionNotFound = fiber.NewError(fiber.StatusNotFound, "submission not found")
