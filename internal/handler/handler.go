package handler

import (
	"context"

	"crypto-weather/internal/domain"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/otel/trace"
)

// WeatherService is the analysis engine surface the HTTP layer needs.
type WeatherService interface {
	Current(ctx context.Context) (*domain.WeatherReport, error)
	Run(ctx context.Context) (*domain.WeatherReport, error)
	Augment(ctx context.Context, report *domain.WeatherReport)
}

// SettingsStore persists the user preference set. A nil store disables
// the settings endpoints' writes.
type SettingsStore interface {
	Load(ctx context.Context) (domain.Settings, error)
	Save(ctx context.Context, settings domain.Settings) error
}

type Handler struct {
	tracer   trace.Tracer
	weather  WeatherService
	settings SettingsStore
}

func New(tracer trace.Tracer, weather WeatherService, settings SettingsStore) *Handler {
	return &Handler{
		tracer:   tracer,
		weather:  weather,
		settings: settings,
	}
}

// RegisterRoutes mounts the routes. Any middleware applies to the /api
// group only, so health stays open for probes.
func (h *Handler) RegisterRoutes(r *gin.Engine, middleware ...gin.HandlerFunc) {
	r.GET("/health", h.Health)

	api := r.Group("/api", middleware...)
	api.GET("/weather", h.GetWeather)
	api.POST("/weather/refresh", h.RefreshWeather)
	api.GET("/settings", h.GetSettings)
	api.PUT("/settings", h.UpdateSettings)
}
