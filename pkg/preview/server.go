// Package preview serves a read-only HTTP view of a running session: the
// form's validation state and the results page in any registered format.
// Field values are never exposed.
package preview

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/goliatone/go-formflow"
	"github.com/goliatone/go-formflow/pkg/form"
	"github.com/goliatone/go-formflow/pkg/logging"
	"github.com/goliatone/go-formflow/pkg/navigation"
	"github.com/goliatone/go-formflow/pkg/render"
)

// Source is the session being previewed. *formflow.App satisfies it.
type Source interface {
	Route(ctx context.Context) (navigation.Route, error)
	FormView(ctx context.Context) (form.View, error)
	Render(ctx context.Context, name string) ([]byte, string, error)
	Renderers() []string
}

var _ Source = (*formflow.App)(nil)

// APIError is the JSON body of every non-2xx response.
type APIError struct {
	Status  int    `json:"-"`
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Option configures the server.
type Option func(*Server)

// WithLogger logs requests at debug level.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logging.OrDiscard(logger)
	}
}

// WithDefaultFormat sets the renderer used when a request names none.
func WithDefaultFormat(name string) Option {
	return func(s *Server) {
		if name != "" {
			s.format = name
		}
	}
}

// Server wraps an echo instance bound to one Source.
type Server struct {
	src    Source
	echo   *echo.Echo
	logger *slog.Logger
	format string
}

// New builds the server and its routes.
func New(src Source, options ...Option) *Server {
	s := &Server{
		src:    src,
		logger: logging.Discard(),
		format: "html",
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(s)
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.handleError
	e.Use(middleware.Recover())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod: true,
		LogURI:    true,
		LogStatus: true,
		LogValuesFunc: func(_ echo.Context, v middleware.RequestLoggerValues) error {
			s.logger.Debug("preview request",
				slog.String("method", v.Method),
				slog.String("uri", v.URI),
				slog.Int("status", v.Status),
			)
			return nil
		},
	}))

	api := e.Group("/api")
	api.GET("/health", s.handleHealth)
	api.GET("/form", s.handleForm)
	api.GET("/results", s.handleResults)
	api.GET("/renderers", s.handleRenderers)

	s.echo = e
	return s
}

// Handler exposes the routes for tests and custom listeners.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Start listens on addr until ctx ends.
func (s *Server) Start(ctx context.Context, addr string) error {
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := s.echo.Shutdown(shutdownCtx); err != nil {
			s.logger.Warn("preview shutdown", slog.String("error", err.Error()))
		}
	}()

	s.logger.Info("preview listening", slog.String("addr", addr))
	if err := s.echo.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("preview: %w", err)
	}
	return nil
}

func (s *Server) handleHealth(c echo.Context) error {
	route, err := s.src.Route(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{
		"status": "ok",
		"route":  string(route),
	})
}

type fieldResponse struct {
	Name    string `json:"name"`
	Label   string `json:"label"`
	Dirty   bool   `json:"dirty"`
	Typing  bool   `json:"typing"`
	Message string `json:"message,omitempty"`
}

type formResponse struct {
	Session          string          `json:"session"`
	Fields           []fieldResponse `json:"fields"`
	FileName         string          `json:"fileName,omitempty"`
	FileError        string          `json:"fileError,omitempty"`
	IngestionPending bool            `json:"ingestionPending"`
	Rows             int             `json:"rows"`
	Submitted        bool            `json:"submitted"`
	CanSubmit        bool            `json:"canSubmit"`
	Errors           []string        `json:"errors,omitempty"`
}

func (s *Server) handleForm(c echo.Context) error {
	view, err := s.src.FormView(c.Request().Context())
	if err != nil {
		return err
	}

	resp := formResponse{
		Session:          view.Session,
		Fields:           make([]fieldResponse, 0, len(view.Fields)),
		FileName:         view.FileName,
		FileError:        view.FileError,
		IngestionPending: view.IngestionPending,
		Rows:             view.Rows,
		Submitted:        view.Submitted,
		CanSubmit:        view.CanSubmit,
		Errors:           view.Errors,
	}
	for _, field := range view.Fields {
		resp.Fields = append(resp.Fields, fieldResponse{
			Name:    string(field.Name),
			Label:   field.Label,
			Dirty:   field.Dirty,
			Typing:  field.Typing,
			Message: field.Message,
		})
	}
	return c.JSON(http.StatusOK, resp)
}

func (s *Server) handleResults(c echo.Context) error {
	format := c.QueryParam("format")
	if format == "" {
		format = s.format
	}
	out, contentType, err := s.src.Render(c.Request().Context(), format)
	if err != nil {
		return err
	}
	return c.Blob(http.StatusOK, contentType, out)
}

func (s *Server) handleRenderers(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string][]string{"renderers": s.src.Renderers()})
}

func (s *Server) handleError(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	apiErr := toAPIError(err)
	if apiErr.Status >= http.StatusInternalServerError {
		s.logger.Error("preview failed", slog.String("uri", c.Request().RequestURI), slog.String("error", err.Error()))
	}
	if writeErr := c.JSON(apiErr.Status, apiErr); writeErr != nil {
		s.logger.Warn("preview write error", slog.String("error", writeErr.Error()))
	}
}

func toAPIError(err error) *APIError {
	var apiErr *APIError
	var httpErr *echo.HTTPError
	switch {
	case errors.As(err, &apiErr):
		return apiErr
	case errors.Is(err, formflow.ErrNotOnForm):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "form is not active"}
	case errors.Is(err, formflow.ErrNotOnResults):
		return &APIError{Status: http.StatusNotFound, Code: "NOT_FOUND", Message: "no results to show"}
	case errors.Is(err, render.ErrNotFound):
		return &APIError{Status: http.StatusBadRequest, Code: "BAD_REQUEST", Message: "unknown format", Details: err.Error()}
	case errors.As(err, &httpErr):
		return &APIError{Status: httpErr.Code, Code: http.StatusText(httpErr.Code), Message: fmt.Sprint(httpErr.Message)}
	default:
		return &APIError{Status: http.StatusInternalServerError, Code: "INTERNAL", Message: "internal error", Details: err.Error()}
	}
}
