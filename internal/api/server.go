package api

import (
	"embed"
	"html/template"
	"io"
	"net/http"

	"github.com/goccy/go-json"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"

	"jobloss/internal/catalog"
	"jobloss/internal/models"
)

//go:embed templates/*.html
var templateFS embed.FS

// NewServer builds the echo instance serving the dashboard.
func NewServer(h *Handler, debug bool) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Debug = debug
	e.JSONSerializer = JSONSerializer{}
	e.Renderer = &pageRenderer{
		tmpl: template.Must(template.ParseFS(templateFS, "templates/*.html")),
	}

	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			fields := []zap.Field{
				zap.String("method", v.Method),
				zap.String("uri", v.URI),
				zap.Int("status", v.Status),
				zap.Duration("latency", v.Latency),
			}
			if v.Error != nil {
				zap.L().Error("request", append(fields, zap.Error(v.Error))...)
				return nil
			}
			zap.L().Info("request", fields...)
			return nil
		},
	}))

	h.RegisterRoutes(e)
	return e
}

// JSONSerializer encodes echo responses with goccy/go-json.
type JSONSerializer struct{}

func (JSONSerializer) Serialize(c echo.Context, i interface{}, indent string) error {
	enc := json.NewEncoder(c.Response())
	if indent != "" {
		enc.SetIndent("", indent)
	}
	return enc.Encode(i)
}

func (JSONSerializer) Deserialize(c echo.Context, i interface{}) error {
	if err := json.NewDecoder(c.Request().Body).Decode(i); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error()).SetInternal(err)
	}
	return nil
}

type pageRenderer struct {
	tmpl *template.Template
}

func (r *pageRenderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	return r.tmpl.ExecuteTemplate(w, name, data)
}

type pageData struct {
	Options []models.SectorOption
	Default string
}

func (h *Handler) GetPage(c echo.Context) error {
	return c.Render(http.StatusOK, "index.html", pageData{
		Options: catalog.Options(),
		Default: string(catalog.Default),
	})
}
