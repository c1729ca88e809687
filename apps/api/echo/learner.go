package echoapi

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/hoshiyaar/paathshala/core/learner"
)

type (
	LoginResponse struct {
		Token   string          `json:"token"`
		Learner learner.Learner `json:"user"`
	}

	UsernameCheckResponse struct {
		Username  string `json:"username"`
		Available bool   `json:"available"`
	}
)

func (s *Server) registerAuthAPI(g *echo.Group) {
	ag := g.Group("/auth")
	ag.POST("/register", s.learnerRegister)
	ag.POST("/login", s.learnerLogin)
	ag.GET("/check-username", s.learnerCheckUsername)
}

func (s *Server) registerLearnerAPI(g *echo.Group) {
	lg := g.Group("/learners")
	lg.GET("/:id", s.learnerRetrieve)
	lg.PUT("/:id/onboarding", s.learnerUpdateOnboarding)

	// progress endpoints are keyed by the id in the path/payload; the
	// mobile clients call them without a token
	g.PUT("/progress", s.learnerUpdateProgress)
	g.GET("/progress/:id", s.learnerProgress)
	g.GET("/module-progress/:id", s.learnerModuleProgress)
	g.GET("/progress-summary/:id", s.learnerProgressSummary)
}

func (s *Server) learnerRegister(ctx echo.Context) error {
	data := new(learner.NewLearner)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := s.validateStruct(data); err != nil {
		return err
	}

	l, err := s.deps.LearnerSvc.Register(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}

	claims := s.getLearnerClaims(l)
	token, err := s.generateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusCreated, LoginResponse{Token: token, Learner: l})
}

func (s *Server) learnerLogin(ctx echo.Context) error {
	data := new(learner.Credentials)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := s.validateStruct(data); err != nil {
		return err
	}

	claims, l, err := s.authenticate(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	token, err := s.generateToken(claims)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, LoginResponse{Token: token, Learner: l})
}

func (s *Server) learnerCheckUsername(ctx echo.Context) error {
	username := ctx.QueryParam("username")
	if username == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "username is required")
	}
	available, err := s.deps.LearnerSvc.UsernameAvailable(ctx.Request().Context(), username)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, UsernameCheckResponse{Username: username, Available: available})
}

func (s *Server) learnerRetrieve(ctx echo.Context) error {
	l, err := s.deps.LearnerSvc.GetByID(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

func (s *Server) learnerUpdateOnboarding(ctx echo.Context) error {
	data := new(learner.UpdateOnboarding)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := s.validateStruct(data); err != nil {
		return err
	}

	l, err := s.deps.LearnerSvc.UpdateOnboarding(ctx.Request().Context(), ctx.Param("id"), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, l)
}

func (s *Server) learnerUpdateProgress(ctx echo.Context) error {
	data := new(learner.ProgressUpdate)
	if err := ctx.Bind(data); err != nil {
		return err
	}
	if err := s.validateStruct(data); err != nil {
		return err
	}

	progress, err := s.deps.LearnerSvc.UpdateProgress(ctx.Request().Context(), *data)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, progress)
}

func (s *Server) learnerProgress(ctx echo.Context) error {
	progress, err := s.deps.LearnerSvc.Progress(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, progress)
}

func (s *Server) learnerModuleProgress(ctx echo.Context) error {
	modules, err := s.deps.LearnerSvc.ModuleProgress(
		ctx.Request().Context(),
		ctx.Param("id"),
		ctx.QueryParam("subject"),
		ctx.QueryParam("chapter"),
	)
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, echo.Map{"completedModules": modules})
}

func (s *Server) learnerProgressSummary(ctx echo.Context) error {
	summary, err := s.deps.LearnerSvc.ProgressSummary(ctx.Request().Context(), ctx.Param("id"))
	if err != nil {
		return err
	}
	return ctx.JSON(http.StatusOK, summary)
}
