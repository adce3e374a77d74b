// Package mockapi is a local fake of the remote catalog/subscription
// backend. It serves the same wire surface and envelope so the CLI and
// the e2e tests can run without the hosted API.
package mockapi

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/sirupsen/logrus"

	"github.com/vibast-solutions/lib-go-subtrack/app/factory"
	"github.com/vibast-solutions/lib-go-subtrack/app/types"
)

type Server struct {
	store  *Store
	logger logrus.FieldLogger
}

func NewServer(store *Store) *Server {
	return &Server{
		store:  store,
		logger: factory.NewModuleLogger("mock-api"),
	}
}

// Echo builds the routing for the §6-shaped surface.
func (s *Server) Echo() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Use(echomiddleware.Recover())
	e.Use(s.requireBearerToken)

	e.GET("/subscriptions", s.listSubscriptions)
	e.GET("/stats", s.getStats)
	e.GET("/categories", s.listCategories)
	e.GET("/catalog/subscriptions", s.listCatalog)
	e.GET("/catalog/subscriptions/:id", s.getCatalog)
	e.POST("/subscriptions/preset", s.createPreset)
	e.POST("/subscriptions/custom", s.createCustom)
	e.PUT("/subscriptions/:id", s.updateSubscription)
	e.DELETE("/subscriptions/:id", s.deleteSubscription)

	return e
}

func (s *Server) requireBearerToken(next echo.HandlerFunc) echo.HandlerFunc {
	return func(ctx echo.Context) error {
		header := ctx.Request().Header.Get("Authorization")
		if !strings.HasPrefix(header, "Bearer ") || strings.TrimSpace(strings.TrimPrefix(header, "Bearer ")) == "" {
			return s.writeError(ctx, http.StatusUnauthorized, "missing or invalid token")
		}
		return next(ctx)
	}
}

func (s *Server) listSubscriptions(ctx echo.Context) error {
	return s.writeData(ctx, http.StatusOK, s.store.ListSubscriptions())
}

func (s *Server) getStats(ctx echo.Context) error {
	return s.writeData(ctx, http.StatusOK, s.store.Stats())
}

func (s *Server) listCategories(ctx echo.Context) error {
	return s.writeData(ctx, http.StatusOK, s.store.Categories())
}

func (s *Server) listCatalog(ctx echo.Context) error {
	var categoryID uint64
	if raw := strings.TrimSpace(ctx.QueryParam("category_id")); raw != "" {
		parsed, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return s.writeError(ctx, http.StatusBadRequest, "invalid category_id")
		}
		categoryID = parsed
	}
	return s.writeData(ctx, http.StatusOK, s.store.Catalog(categoryID))
}

func (s *Server) getCatalog(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return s.writeError(ctx, http.StatusBadRequest, "invalid id")
	}

	item, err := s.store.CatalogByID(id)
	if err != nil {
		return s.writeError(ctx, http.StatusNotFound, "catalog subscription not found")
	}
	return s.writeData(ctx, http.StatusOK, item)
}

func (s *Server) createPreset(ctx echo.Context) error {
	var req types.CreatePresetRequest
	if err := ctx.Bind(&req); err != nil {
		return s.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
	}

	rec, err := s.store.CreatePreset(&req)
	if err != nil {
		if errors.Is(err, ErrPlanNotFound) {
			return s.writeError(ctx, http.StatusNotFound, "plan not found")
		}
		factory.LoggerWithContext(s.logger, ctx).WithError(err).Error("Create preset subscription failed")
		return s.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return s.writeData(ctx, http.StatusCreated, rec)
}

func (s *Server) createCustom(ctx echo.Context) error {
	var req types.CreateCustomRequest
	if err := ctx.Bind(&req); err != nil {
		return s.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
	}

	rec, err := s.store.CreateCustom(&req)
	if err != nil {
		factory.LoggerWithContext(s.logger, ctx).WithError(err).Error("Create custom subscription failed")
		return s.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return s.writeData(ctx, http.StatusCreated, rec)
}

func (s *Server) updateSubscription(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return s.writeError(ctx, http.StatusBadRequest, "invalid id")
	}

	var req types.UpdateSubscriptionRequest
	if err := ctx.Bind(&req); err != nil {
		return s.writeError(ctx, http.StatusBadRequest, "invalid request body")
	}
	if err := req.Validate(); err != nil {
		return s.writeError(ctx, http.StatusUnprocessableEntity, err.Error())
	}

	rec, err := s.store.Update(id, &req)
	if err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return s.writeError(ctx, http.StatusNotFound, "subscription not found")
		}
		factory.LoggerWithContext(s.logger, ctx).WithError(err).Error("Update subscription failed")
		return s.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return s.writeData(ctx, http.StatusOK, rec)
}

func (s *Server) deleteSubscription(ctx echo.Context) error {
	id, err := parseID(ctx)
	if err != nil {
		return s.writeError(ctx, http.StatusBadRequest, "invalid id")
	}

	if err := s.store.Delete(id); err != nil {
		if errors.Is(err, ErrSubscriptionNotFound) {
			return s.writeError(ctx, http.StatusNotFound, "subscription not found")
		}
		factory.LoggerWithContext(s.logger, ctx).WithError(err).Error("Delete subscription failed")
		return s.writeError(ctx, http.StatusInternalServerError, "internal server error")
	}
	return ctx.JSON(http.StatusOK, map[string]any{"success": true})
}

func (s *Server) writeData(ctx echo.Context, statusCode int, data any) error {
	return ctx.JSON(statusCode, map[string]any{"success": true, "data": data})
}

func (s *Server) writeError(ctx echo.Context, statusCode int, message string) error {
	return ctx.JSON(statusCode, map[string]any{"success": false, "message": message})
}

func parseID(ctx echo.Context) (uint64, error) {
	return strconv.ParseUint(ctx.Param("id"), 10, 64)
}
