package handler

import (
	"net/http"

	"crypto-weather/internal/domain"

	"github.com/gin-gonic/gin"
)

// GetSettings godoc
// @Summary      Get the stored preference set
// @Description  Returns the persisted settings, or the defaults when no store is configured
// @Tags         settings
// @Produce      json
// @Success      200  {object}  domain.Settings
// @Failure      500  {object}  map[string]string
// @Router       /api/settings [get]
func (h *Handler) GetSettings(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.get-settings")
	defer span.End()

	if h.settings == nil {
		c.JSON(http.StatusOK, domain.DefaultSettings())
		return
	}

	settings, err := h.settings.Load(ctx)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}

// UpdateSettings godoc
// @Summary      Replace the stored preference set
// @Description  Validates and persists the full settings document; the next cycle runs under it
// @Tags         settings
// @Accept       json
// @Produce      json
// @Success      200  {object}  domain.Settings
// @Failure      400  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/settings [put]
func (h *Handler) UpdateSettings(c *gin.Context) {
	ctx, span := h.tracer.Start(c.Request.Context(), "handler.update-settings")
	defer span.End()

	if h.settings == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "settings persistence is not configured"})
		return
	}

	var settings domain.Settings
	if err := c.ShouldBindJSON(&settings); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid settings payload: " + err.Error()})
		return
	}

	if !settings.APITier.IsValid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "api_tier must be demo or pro"})
		return
	}
	if settings.UpdateIntervalMins <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "update_interval_mins must be positive"})
		return
	}
	if len(settings.TrackedAssets) == 0 {
		settings.TrackedAssets = append([]string(nil), domain.DefaultTrackedAssets...)
	}

	if err := h.settings.Save(ctx, settings); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, settings)
}
