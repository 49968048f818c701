package handlers

import (
	"net/http"

	"mailassign-be/internal/models"
	"mailassign-be/internal/repository"

	"github.com/gin-gonic/gin"
)

type StatisticsHandler struct {
	repo *repository.StatisticsRepository
}

func NewStatisticsHandler(repo *repository.StatisticsRepository) *StatisticsHandler {
	return &StatisticsHandler{repo: repo}
}

// GetStatistics godoc
// @Summary Get assignment statistics for the dashboard
// @Description Returns assignment distribution per assignee and rule plus a daily trend
// @Tags statistics
// @Security ApiKeyAuth
// @Param period query string false "Time period: 7d, 30d, 90d" default(30d)
// @Success 200 {object} models.StatisticsResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /statistics [get]
func (h *StatisticsHandler) GetStatistics(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	// Parse period parameter
	period := c.DefaultQuery("period", "30d")
	var days int
	switch period {
	case "7d":
		days = 7
	case "90d":
		days = 90
	default:
		days = 30
		period = "30d"
	}

	ctx := c.Request.Context()
	accountIDStr := accountID.(string)

	byAssignee, err := h.repo.GetByAssignee(ctx, accountIDStr, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get assignee stats: " + err.Error()})
		return
	}

	byRule, err := h.repo.GetByRule(ctx, accountIDStr, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get rule stats: " + err.Error()})
		return
	}

	trend, err := h.repo.GetAssignmentTrend(ctx, accountIDStr, days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get assignment trend: " + err.Error()})
		return
	}

	assigned, unassigned, err := h.repo.GetTotals(ctx, accountIDStr)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to get counts: " + err.Error()})
		return
	}

	c.JSON(http.StatusOK, models.StatisticsResponse{
		ByAssignee:      byAssignee,
		ByRule:          byRule,
		AssignmentTrend: trend,
		TotalAssigned:   assigned,
		TotalUnassigned: unassigned,
		Period:          period,
	})
}
