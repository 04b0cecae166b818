package handler

import (
	"github.com/labstack/echo/v4"

	"hackreg-backend/errs"
)

const databaseName = "hackreg"

func fail(c echo.Context, err error) error {
	return c.JSON(errs.StatusCode(err), echo.Map{"message": err.Error()})
}
