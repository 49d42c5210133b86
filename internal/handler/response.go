package handler

import (
	"errors"
	"strconv"

	"bodega-pos/internal/cart"
	"bodega-pos/internal/ledger"
	"bodega-pos/internal/middleware"
	"bodega-pos/internal/repository"
	"bodega-pos/internal/service"

	"github.com/gofiber/fiber/v2"
)

// ledgerStatus maps a ledger error kind to the HTTP status it is reported with.
func ledgerStatus(kind ledger.ErrorKind) int {
	switch kind {
	case ledger.ValidationError:
		return 400
	case ledger.NotFoundError:
		return 404
	case ledger.StockExceededError:
		return 409
	}
	return 500
}

// sendResult writes a ledger Result as {success, data} or {success, error{kind, message}}.
func sendResult[T any](c *fiber.Ctx, res ledger.Result[T], okStatus int) error {
	if !res.Success {
		return c.Status(ledgerStatus(res.Err.Kind)).JSON(res)
	}
	return c.Status(okStatus).JSON(res)
}

// errorStatus picks the status of a catalog, user or cart error. Anything
// unrecognised is the caller's fault and reported as fallback.
func errorStatus(err error, fallback int) int {
	switch {
	case errors.Is(err, service.ErrProductNotFound),
		errors.Is(err, service.ErrCustomerNotFound),
		errors.Is(err, service.ErrSupplierNotFound),
		errors.Is(err, service.ErrUserNotFound),
		errors.Is(err, cart.ErrNotInCart),
		repository.IsNotFound(err):
		return 404
	case errors.Is(err, repository.ErrInUse),
		errors.Is(err, repository.ErrDuplicate),
		errors.Is(err, service.ErrEmailExists),
		errors.Is(err, service.ErrLastAdmin),
		errors.Is(err, cart.ErrStockExceeded):
		return 409
	}
	return fallback
}

func sendError(c *fiber.Ctx, err error, fallback int) error {
	return c.Status(errorStatus(err, fallback)).JSON(fiber.Map{"error": err.Error()})
}

// paramID parses a positive integer route parameter.
func paramID(c *fiber.Ctx, name string) (uint, bool) {
	id, err := strconv.ParseUint(c.Params(name), 10, 64)
	if err != nil || id == 0 {
		return 0, false
	}
	return uint(id), true
}

// operatorID reads the signed-in operator from the request session.
func operatorID(c *fiber.Ctx) (string, bool) {
	sess := middleware.Session(c)
	if sess == nil {
		return "", false
	}
	id, err := sess.OperatorID()
	return id, err == nil
}
