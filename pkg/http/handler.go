package http

import "github.com/labstack/echo/v4"

// Handler defines HTTP route registration interface.
type Handler interface {
	RegisterRoutes(e *echo.Echo)
}

type handlerGroup []Handler

func (g handlerGroup) RegisterRoutes(e *echo.Echo) {
	for _, h := range g {
		if h != nil {
			h.RegisterRoutes(e)
		}
	}
}

// CombineHandlers bundles several handlers into one route registrar.
func CombineHandlers(handlers ...Handler) Handler {
	return handlerGroup(handlers)
}
