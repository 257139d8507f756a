package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
)

// GetWeather godoc
// @Summary      Get the current market weather report
// @Description  Returns the latest analysis cycle's report: condition, metrics, forecast, and alerts
// @Tags         weather
// @Produce      json
// @Success      200  {object}  domain.WeatherReport
// @Failure      503  {object}  map[string]string
// @Router       /api/weather [get]
func (h *Handler) GetWeather(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-weather")
	defer span.End()

	report, err := h.weather.Current(ctx)
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, report)
}

// RefreshWeather godoc
// @Summary      Run an analysis cycle now
// @Description  Fetches fresh market data, publishes a new report, and kicks off AI forecast augmentation in the background
// @Tags         weather
// @Produce      json
// @Success      200  {object}  domain.WeatherReport
// @Failure      500  {object}  map[string]string
// @Router       /api/weather/refresh [post]
func (h *Handler) RefreshWeather(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.refresh-weather")
	defer span.End()

	report, err := h.weather.Run(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	// The report renders immediately; the AI forecast lands later if the
	// model produces a usable one.
	go h.weather.Augment(context.Background(), report)

	c.JSON(http.StatusOK, report)
}
