package node

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/lioia/personalized-pagerank/pkg/utils"
)

type httpHandler struct {
	service *Service
}

// HTTP API in front of the service
func NewHTTPServer(service *Service) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Use(middleware.Recover())
	e.Use(logRequests(utils.ServerLog))

	h := &httpHandler{service: service}
	e.GET("/health", h.health)
	e.POST("/solve", h.solve)
	e.POST("/render", h.render)
	return e
}

// Log method, path and the status actually sent
func logRequests(logf func(format string, v ...any)) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if err := next(c); err != nil {
				// Let the error handler write the response first
				c.Error(err)
			}
			logf("%s %s -> %d", c.Request().Method, c.Request().URL.Path, c.Response().Status)
			return nil
		}
	}
}

func (h *httpHandler) health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *httpHandler) solve(c echo.Context) error {
	var req SolveRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	resp, err := h.service.Solve(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.JSON(http.StatusOK, resp)
}

func (h *httpHandler) render(c echo.Context) error {
	var req SolveRequest
	if err := c.Bind(&req); err != nil {
		return err
	}
	svg, err := h.service.Render(c.Request().Context(), &req)
	if err != nil {
		return httpError(err)
	}
	return c.Blob(http.StatusOK, "image/svg+xml", svg)
}

func httpError(err error) error {
	if IsInvalid(err) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
}
