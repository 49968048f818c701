package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"mailassign-be/internal/models"
	"mailassign-be/internal/repository"
	"mailassign-be/internal/rules"
	"mailassign-be/internal/services"
	"mailassign-be/internal/utils"

	"github.com/gin-gonic/gin"
)

const bodyPreviewMaxLen = 500

// AssignmentHandler exposes the assignment pipeline over HTTP: inbound
// email intake, dry-run previews, manual assignment and the assignment list.
type AssignmentHandler struct {
	emailRepo  *repository.EmailRepository
	assignRepo *repository.AssignmentRepository
	service    *services.AssignmentService
}

func NewAssignmentHandler(emailRepo *repository.EmailRepository, assignRepo *repository.AssignmentRepository, service *services.AssignmentService) *AssignmentHandler {
	return &AssignmentHandler{
		emailRepo:  emailRepo,
		assignRepo: assignRepo,
		service:    service,
	}
}

// InboundEmailRequest is the parsed email metadata handed over by the
// mail-fetch layer (or by the preview endpoint).
type InboundEmailRequest struct {
	MessageID  string    `json:"messageId"`
	UID        uint32    `json:"uid"`
	Subject    string    `json:"subject"`
	FromName   string    `json:"fromName"`
	FromEmail  string    `json:"fromEmail" binding:"required,email"`
	Body       string    `json:"body"`
	ReceivedAt time.Time `json:"receivedAt"`
}

func (r *InboundEmailRequest) toModel(accountID string) *models.InboundEmail {
	receivedAt := r.ReceivedAt
	if receivedAt.IsZero() {
		receivedAt = time.Now().UTC()
	}
	return &models.InboundEmail{
		AccountID: accountID,
		MessageID: r.MessageID,
		UID:       r.UID,
		Subject:   r.Subject,
		From: models.EmailAddress{
			Name:  r.FromName,
			Email: r.FromEmail,
		},
		BodyPreview: utils.SanitizeBodyPreview(r.Body, bodyPreviewMaxLen),
		ReceivedAt:  receivedAt,
		CreatedAt:   time.Now().UTC(),
	}
}

// ManualAssignRequest picks an assignee for one email by hand
type ManualAssignRequest struct {
	UserID string `json:"userId" binding:"required"`
	Note   string `json:"note"`
}

// PreviewResponse reports a dry-run evaluation
type PreviewResponse struct {
	Matched       bool       `json:"matched"`
	MatchedRuleID string     `json:"matchedRuleId,omitempty"`
	MatchedRules  []string   `json:"matchedRules,omitempty"`
	Assignee      string     `json:"assignee,omitempty"`
	Priority      string     `json:"priority,omitempty"`
	DueDate       *time.Time `json:"dueDate,omitempty"`
	Tags          []string   `json:"tags,omitempty"`
	TemplateID    string     `json:"templateId,omitempty"`
}

// IngestEmail godoc
// @Summary Queue parsed inbound email metadata for assignment
// @Tags emails
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body InboundEmailRequest true "Email metadata"
// @Success 201 {object} models.InboundEmail
// @Failure 400 {object} models.ErrorResponse
// @Router /emails [post]
func (h *AssignmentHandler) IngestEmail(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req InboundEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	email := req.toModel(accountID.(string))
	if err := h.emailRepo.Create(c.Request.Context(), email); err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to queue email",
		})
		return
	}

	c.JSON(http.StatusCreated, email)
}

// PreviewAssignment godoc
// @Summary Dry-run the rule engine against email metadata
// @Description Evaluates the account's rules without consuming rotation state or writing an assignment
// @Tags rules
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param payload body InboundEmailRequest true "Email metadata"
// @Success 200 {object} PreviewResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /rules/preview [post]
func (h *AssignmentHandler) PreviewAssignment(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req InboundEmailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	email := req.toModel(accountID.(string))
	res, matched, err := h.service.Preview(c.Request.Context(), email)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to evaluate rules",
		})
		return
	}

	resp := PreviewResponse{
		Matched:       len(matched) > 0,
		MatchedRuleID: res.MatchedRuleID,
		Assignee:      res.Assignee,
		Priority:      res.Priority,
		DueDate:       res.DueDate,
		Tags:          res.Tags,
		TemplateID:    res.TemplateID,
	}
	for _, r := range matched {
		resp.MatchedRules = append(resp.MatchedRules, r.ID.Hex())
	}

	c.JSON(http.StatusOK, resp)
}

// ManualAssign godoc
// @Summary Assign an email to a team member by hand
// @Tags assignments
// @Security ApiKeyAuth
// @Accept json
// @Produce json
// @Param emailId path string true "Inbound email ID"
// @Param payload body ManualAssignRequest true "Assignee"
// @Success 201 {object} models.Assignment
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse
// @Router /emails/{emailId}/assign [post]
func (h *AssignmentHandler) ManualAssign(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	var req ManualAssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: err.Error(),
		})
		return
	}

	ctx := c.Request.Context()
	email, err := h.emailRepo.GetByID(ctx, c.Param("emailId"))
	if err != nil || email.AccountID != accountID.(string) {
		c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: "Email not found",
		})
		return
	}

	assignment, err := h.service.AssignManually(ctx, email, req.UserID, req.Note)
	if err != nil {
		switch {
		case errors.Is(err, rules.ErrAlreadyAssigned):
			resp := gin.H{
				"error":   "already_assigned",
				"message": "An assignment already exists for this email",
			}
			if existing, lookupErr := h.assignRepo.GetByEmailIdentity(ctx, email.AccountID, email.Identity()); lookupErr == nil {
				resp["assignment"] = existing
			}
			c.JSON(http.StatusConflict, resp)
		case errors.Is(err, rules.ErrInvalidAssignee):
			c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_assignee",
				Message: "User does not belong to this account",
			})
		default:
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "server_error",
				Message: "Failed to create assignment",
			})
		}
		return
	}

	c.JSON(http.StatusCreated, assignment)
}

// ListAssignments godoc
// @Summary List assignments for the account, newest first
// @Tags assignments
// @Security ApiKeyAuth
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param perPage query int false "Items per page" default(20)
// @Param assignee query string false "Only assignments routed to this user"
// @Success 200 {object} models.AssignmentListResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /assignments [get]
func (h *AssignmentHandler) ListAssignments(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "unauthorized"})
		return
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	perPage, _ := strconv.Atoi(c.DefaultQuery("perPage", "20"))
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 100 {
		perPage = 20
	}

	if assignee := c.Query("assignee"); assignee != "" {
		assignments, err := h.assignRepo.ListByAssignee(c.Request.Context(), accountID.(string), assignee, perPage)
		if err != nil {
			c.JSON(http.StatusInternalServerError, models.ErrorResponse{
				Error:   "server_error",
				Message: "Failed to load assignments",
			})
			return
		}
		c.JSON(http.StatusOK, models.AssignmentListResponse{
			Assignments: assignments,
			Total:       len(assignments),
			Page:        1,
			PerPage:     perPage,
		})
		return
	}

	assignments, total, err := h.assignRepo.List(c.Request.Context(), accountID.(string), page, perPage)
	if err != nil {
		c.JSON(http.StatusInternalServerError, models.ErrorResponse{
			Error:   "server_error",
			Message: "Failed to load assignments",
		})
		return
	}

	c.JSON(http.StatusOK, models.AssignmentListResponse{
		Assignments: assignments,
		Total:       total,
		Page:        page,
		PerPage:     perPage,
		HasNextPage: page*perPage < total,
	})
}
