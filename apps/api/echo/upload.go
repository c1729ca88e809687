package echoapi

import (
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"

	"github.com/hoshiyaar/paathshala/core"
)

func (s *Server) registerUploadAPI(g *echo.Group, jwt echo.MiddlewareFunc) {
	ug := g.Group("/uploads", jwt, adminMiddleware())
	ug.POST("", s.uploadFiles)
}

// uploadFiles stores one or more multipart files ("files" field) and
// returns their URLs, for attaching to curriculum items.
func (s *Server) uploadFiles(ctx echo.Context) error {
	if s.deps.FileStore == nil {
		return echo.NewHTTPError(http.StatusServiceUnavailable, "file storage not configured")
	}

	form, err := ctx.MultipartForm()
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "multipart form expected")
	}
	files := form.File["files"]
	if len(files) == 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "no files provided")
	}

	folder := ctx.FormValue("folder")
	uploads := make([]core.FileUpload, 0, len(files))
	if admin, err := s.getContextLearner(ctx); err == nil {
		s.deps.Logger.Info("uploading " + strconv.Itoa(len(files)) + " file(s) for " + admin.Username)
	}
	for _, fh := range files {
		f, err := fh.Open()
		if err != nil {
			return errors.Wrap(err, "opening uploaded file")
		}
		up, err := s.deps.FileStore.Upload(ctx.Request().Context(), f, folder)
		_ = f.Close()
		if err != nil {
			return errors.Wrap(err, "storing uploaded file")
		}
		uploads = append(uploads, up)
	}
	return ctx.JSON(http.StatusCreated, echo.Map{"uploads": uploads})
}
