package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/filmrec/filmrec/internal/stats"
)

// StatsController serves the weekly and all-time statistics payloads.
type StatsController struct {
	service *stats.Service
}

func NewStatsController(service *stats.Service) *StatsController {
	return &StatsController{service: service}
}

// Weekly returns this week's watch activity compared to last week.
func (ctrl *StatsController) Weekly(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	payload, err := ctrl.service.Weekly(userID)
	if err != nil {
		respondInternalError(c, err, "weekly stats")
		return
	}

	c.JSON(http.StatusOK, payload)
}

// AllTime returns lifetime totals for the user.
func (ctrl *StatsController) AllTime(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	totals, err := ctrl.service.AllTime(userID)
	if err != nil {
		respondInternalError(c, err, "all-time stats")
		return
	}

	c.JSON(http.StatusOK, totals)
}
