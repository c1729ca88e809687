package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/hoshiyaar/paathshala/core/review"
)

func (s *Server) registerReviewAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	rg := g.Group("/review")
	rg.POST("/incorrect", s.reviewRecordIncorrect)
	rg.GET("/incorrect", s.reviewListIncorrect)
	rg.POST("/backfill-module-ids", s.reviewBackfillModuleIDs, jwt, adminMiddleware())
}

func (s *Server) reviewRecordIncorrect(ctx echo.Context) error {
	data := new(review.NewIncorrect)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := s.validateStruct(data); err != nil {
		return err
	}
	rec, err := s.deps.ReviewSvc.RecordIncorrect(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, rec)
}

func (s *Server) reviewListIncorrect(ctx echo.Context) error {
	chapter, _ := strconv.Atoi(ctx.QueryParam("chapter"))
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	records, err := s.deps.ReviewSvc.Incorrect(ctx.Request().Context(), review.Filter{
		UserID:   ctx.QueryParam("userId"),
		ModuleID: ctx.QueryParam("moduleId"),
		Subject:  ctx.QueryParam("subject"),
		Chapter:  chapter,
		Limit:    limit,
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, records)
}

func (s *Server) reviewBackfillModuleIDs(ctx echo.Context) error {
	limit, _ := strconv.Atoi(ctx.QueryParam("limit"))
	res, err := s.deps.ReviewSvc.BackfillModuleIDs(ctx.Request().Context(), limit)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
