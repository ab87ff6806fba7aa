package v1

import (
	"net/http"

	"contact-backend/internal/usecase"

	"github.com/gin-gonic/gin"
)

const livenessText = "Backend is running"

type HealthHandler struct {
	healthUC usecase.HealthUsecase
}

// NewHealthHandler registers GET / on root and GET /health on api.
func NewHealthHandler(root gin.IRoutes, api *gin.RouterGroup, healthUC usecase.HealthUsecase) {
	handler := &HealthHandler{healthUC: healthUC}

	root.GET("/", handler.Liveness)
	api.GET("/health", handler.Readiness)
}

// Liveness godoc
// @Summary      Liveness
// @Produce      plain
// @Success      200  {string}  string  "Backend is running"
// @Router       / [get]
func (h *HealthHandler) Liveness(c *gin.Context) {
	c.String(http.StatusOK, livenessText)
}

// Readiness godoc
// @Summary      Readiness
// @Description  Reports database and redis reachability.
// @Produce      json
// @Success      200  {object}  map[string]string
// @Failure      503  {object}  map[string]string
// @Router       /api/health [get]
func (h *HealthHandler) Readiness(c *gin.Context) {
	status := h.healthUC.Check(c.Request.Context())
	code := http.StatusOK
	if status["status"] != "ok" {
		code = http.StatusServiceUnavailable
	}
	c.JSON(code, status)
}
