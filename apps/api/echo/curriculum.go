package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoshiyaar/paathshala/core/curriculum"
)

func (s *Server) registerCurriculumAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	cg := g.Group("/curriculum")

	// read endpoints back the learner-facing content browser
	cg.GET("/boards", s.curriculumBoards)
	cg.GET("/classes", s.curriculumClasses)
	cg.GET("/subjects", s.curriculumSubjects)
	cg.GET("/chapters", s.curriculumChapters)
	cg.GET("/units", s.curriculumUnits)
	cg.GET("/modules", s.curriculumModules)
	cg.GET("/modules/:id/items", s.curriculumItems)

	// authoring endpoints
	ag := cg.Group("", jwt, adminMiddleware())
	ag.POST("/import", s.curriculumImport)
	ag.PUT("/items/:id/image", s.curriculumSetItemImage)
	ag.POST("/backfill-subjects", s.curriculumBackfillSubjects)
	ag.POST("/backfill-units", s.curriculumBackfillUnits)
}

func (s *Server) curriculumImport(ctx echo.Context) error {
	data := new(curriculum.ImportPayload)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	summary, err := s.deps.CurriculumSvc.Import(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}

func (s *Server) curriculumBoards(ctx echo.Context) error {
	boards, err := s.deps.CurriculumSvc.Boards(ctx.Request().Context())
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, boards)
}

func (s *Server) curriculumClasses(ctx echo.Context) error {
	classes, err := s.deps.CurriculumSvc.Classes(ctx.Request().Context(), ctx.QueryParam("board"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, classes)
}

// curriculumSubjects lists subjects either for a learner (userId, scoped by
// their resolved board/class) or by board/class names.
func (s *Server) curriculumSubjects(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	opts := curriculum.SubjectListOptions{
		Board: ctx.QueryParam("board"),
		Class: ctx.QueryParam("class"),
	}
	if userID := ctx.QueryParam("userId"); userID != "" {
		l, err := s.deps.LearnerSvc.GetByID(reqCtx, userID)
		if err != nil {
			return err
		}
		opts = curriculum.SubjectListOptions{BoardID: l.BoardID, ClassID: l.ClassID}
	}
	subjects, err := s.deps.CurriculumSvc.Subjects(reqCtx, opts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, subjects)
}

// curriculumChapters lists chapters either for a learner (userId, scoped by
// their resolved subject) or by subject id / hierarchy names.
func (s *Server) curriculumChapters(ctx echo.Context) error {
	reqCtx := ctx.Request().Context()
	opts := curriculum.ChapterListOptions{
		SubjectID: ctx.QueryParam("subjectId"),
		Board:     ctx.QueryParam("board"),
		Subject:   ctx.QueryParam("subject"),
		Class:     ctx.QueryParam("class"),
	}
	if userID := ctx.QueryParam("userId"); userID != "" {
		l, err := s.deps.LearnerSvc.GetByID(reqCtx, userID)
		if err != nil {
			return err
		}
		if l.SubjectID != "" {
			opts = curriculum.ChapterListOptions{SubjectID: l.SubjectID}
		}
	}
	chapters, err := s.deps.CurriculumSvc.Chapters(reqCtx, opts)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, chapters)
}

func (s *Server) curriculumUnits(ctx echo.Context) error {
	units, err := s.deps.CurriculumSvc.Units(ctx.Request().Context(), ctx.QueryParam("chapterId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, units)
}

func (s *Server) curriculumModules(ctx echo.Context) error {
	modules, err := s.deps.CurriculumSvc.Modules(ctx.Request().Context(), curriculum.ModuleFilter{
		ChapterID: ctx.QueryParam("chapterId"),
		UnitID:    ctx.QueryParam("unitId"),
	})
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, modules)
}

func (s *Server) curriculumItems(ctx echo.Context) error {
	items, err := s.deps.CurriculumSvc.Items(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, items)
}

func (s *Server) curriculumSetItemImage(ctx echo.Context) error {
	data := new(curriculum.SetItemImage)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	item, err := s.deps.CurriculumSvc.SetItemImage(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, item)
}

func (s *Server) curriculumBackfillSubjects(ctx echo.Context) error {
	res, err := s.deps.CurriculumSvc.BackfillSubjects(
		ctx.Request().Context(),
		ctx.QueryParam("board"),
		ctx.QueryParam("class"),
		ctx.QueryParam("subject"),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}

func (s *Server) curriculumBackfillUnits(ctx echo.Context) error {
	res, err := s.deps.CurriculumSvc.BackfillUnits(ctx.Request().Context(), ctx.QueryParam("chapterId"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, res)
}
