package handlers

import (
	"net/http"
	"time"

	"mailassign-be/internal/models"
	"mailassign-be/internal/repository"

	"github.com/gin-gonic/gin"
	"go.mongodb.org/mongo-driver/mongo"
)

// RuleHandler manages the assignment-rule CRUD surface
type RuleHandler struct {
	ruleRepo *repository.RuleRepository
}

func NewRuleHandler(ruleRepo *repository.RuleRepository) *RuleHandler {
	return &RuleHandler{ruleRepo: ruleRepo}
}

// RuleRequest is the payload for creating or updating a rule
type RuleRequest struct {
	Name        string            `json:"name" binding:"required"`
	Description string            `json:"description"`
	Priority    int               `json:"priority"`
	Enabled     *bool             `json:"enabled"`
	StopOnMatch bool              `json:"stopOnMatch"`
	Conditions  models.Conditions `json:"conditions"`
	Actions     models.Actions    `json:"actions"`
}

// ListRules godoc
// @Summary List assignment rules in evaluation order
// @Tags rules
// @Security ApiKeyAuth
// @Produce json
// @Success 200 {array} models.Rule
// @Failure 401 {object} models.ErrorResponse
// @Router /rules [get]
func (h *RuleHandler) ListRules(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	rules, err := h.ruleRepo.ListByAccount(c.Request.Context(), accountID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to load rules",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"rules": rules})
}

// GetRule godoc
// @Summary Get a single rule
// @Tags rules
// @Security ApiKeyAuth
// @Produce json
// @Param ruleId path string true "Rule ID"
// @Success 200 {object} models.Rule
// @Failure 404 {object} models.ErrorResponse
// @Router /rules/{ruleId} [get]
func (h *RuleHandler) GetRule(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	rule, err := h.ruleRepo.GetByID(c.Request.Context(), accountID.(string), c.Param("ruleId"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Rule not found",
		})
		return
	}

	c.JSON(http.StatusOK, rule)
}

// CreateRule godoc
// @Summary Create an assignment rule
// @Tags rules
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body RuleRequest true "Rule payload"
// @Success 201 {object} models.Rule
// @Failure 400 {object} models.ErrorResponse
// @Router /rules [post]
func (h *RuleHandler) CreateRule(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	now := time.Now().UTC()
	rule := &models.Rule{
		AccountID:   accountID.(string),
		Name:        req.Name,
		Description: req.Description,
		Priority:    req.Priority,
		Enabled:     enabled,
		StopOnMatch: req.StopOnMatch,
		Conditions:  req.Conditions,
		Actions:     req.Actions,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := rule.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "malformed_rule",
			Message: err.Error(),
		})
		return
	}

	if err := h.ruleRepo.Create(c.Request.Context(), rule); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to create rule",
		})
		return
	}

	c.JSON(http.StatusCreated, rule)
}

// UpdateRule godoc
// @Summary Update an assignment rule
// @Tags rules
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param ruleId path string true "Rule ID"
// @Param payload body RuleRequest true "Rule payload"
// @Success 200 {object} models.Rule
// @Failure 400 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /rules/{ruleId} [put]
func (h *RuleHandler) UpdateRule(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	ctx := c.Request.Context()
	rule, err := h.ruleRepo.GetByID(ctx, accountID.(string), c.Param("ruleId"))
	if err != nil {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Rule not found",
		})
		return
	}

	var req RuleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	rule.Name = req.Name
	rule.Description = req.Description
	rule.Priority = req.Priority
	if req.Enabled != nil {
		rule.Enabled = *req.Enabled
	}
	rule.StopOnMatch = req.StopOnMatch
	rule.Conditions = req.Conditions
	rule.Actions = req.Actions
	rule.UpdatedAt = time.Now().UTC()

	if err := rule.Validate(); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "malformed_rule",
			Message: err.Error(),
		})
		return
	}

	if err := h.ruleRepo.Update(ctx, rule); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Rule not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to update rule",
		})
		return
	}

	c.JSON(http.StatusOK, rule)
}

// DeleteRule godoc
// @Summary Delete an assignment rule
// @Tags rules
// @Security ApiKeyAuth
// @Param ruleId path string true "Rule ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /rules/{ruleId} [delete]
func (h *RuleHandler) DeleteRule(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	if err := h.ruleRepo.Delete(c.Request.Context(), accountID.(string), c.Param("ruleId")); err != nil {
		if err == mongo.ErrNoDocuments {
			c.JSON(http.StatusNotFound, models.ErrorResponse{
				Error:   "not_found",
				Message: "Rule not found",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to delete rule",
		})
		return
	}

	c.Status(http.StatusNoContent)
}
