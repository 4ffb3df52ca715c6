package http

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"
)

// SuccessResponse writes a 200 envelope around data.
func SuccessResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, APIResponse{Success: true, Data: data})
}

// ListResponse writes a paginated list response.
func ListResponse(c echo.Context, rows interface{}, total int64) error {
	return c.JSON(http.StatusOK, ListDataResponse{Success: true, Data: rows, Total: total})
}

// BadRequestResponse writes a 400 with validation details.
func BadRequestResponse(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusBadRequest, APIResponse{
		Success: false,
		Message: http.StatusText(http.StatusBadRequest),
		Data:    data,
	})
}

// NotFoundResponse writes a 404.
func NotFoundResponse(c echo.Context, message string) error {
	return c.JSON(http.StatusNotFound, APIResponse{Success: false, Message: message})
}

// InternalServerErrorResponse writes a 500.
func InternalServerErrorResponse(c echo.Context) error {
	return c.JSON(http.StatusInternalServerError, APIResponse{
		Success: false,
		Message: "Something went wrong",
	})
}

// AppErrorResponse maps an AppError to its HTTP status, everything else to 500.
func AppErrorResponse(c echo.Context, err error) error {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return c.JSON(appErr.Status, APIResponse{Success: false, Message: appErr.Message, Data: appErr.Params})
	}
	return InternalServerErrorResponse(c)
}
