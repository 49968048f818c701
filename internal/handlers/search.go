package handlers

import (
	"net/http"
	"strings"

	"mailassign-be/internal/models"
	"mailassign-be/internal/repository"

	"github.com/gin-gonic/gin"
	"github.com/sahilm/fuzzy"
)

// SearchHandler provides fuzzy search over assignment rules, so operators
// can find a rule by name without knowing its exact spelling.
type SearchHandler struct {
	ruleRepo *repository.RuleRepository
}

func NewSearchHandler(ruleRepo *repository.RuleRepository) *SearchHandler {
	return &SearchHandler{ruleRepo: ruleRepo}
}

// RuleSearchResult represents a single search result with score
type RuleSearchResult struct {
	Rule  *models.Rule `json:"rule"`
	Score int          `json:"score"`
}

// RuleSearchResponse is the response for rule search
type RuleSearchResponse struct {
	Results []RuleSearchResult `json:"results"`
	Query   string             `json:"query"`
	Total   int                `json:"total"`
}

// SearchRules godoc
// @Summary Fuzzy-search assignment rules by name and description
// @Tags search
// @Security ApiKeyAuth
// @Produce json
// @Param q query string true "Search query"
// @Success 200 {object} RuleSearchResponse
// @Failure 401 {object} models.ErrorResponse
// @Failure 500 {object} models.ErrorResponse
// @Router /rules/search [get]
func (h *SearchHandler) SearchRules(c *gin.Context) {
	accountID, exists := c.Get("accountID")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
		return
	}

	query := strings.TrimSpace(c.Query("q"))
	if query == "" {
		c.JSON(http.StatusOK, RuleSearchResponse{Results: []RuleSearchResult{}, Query: query})
		return
	}

	rules, err := h.ruleRepo.ListByAccount(c.Request.Context(), accountID.(string))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch rules: " + err.Error()})
		return
	}

	haystack := make([]string, len(rules))
	for i := range rules {
		haystack[i] = rules[i].Name + " " + rules[i].Description
	}

	matches := fuzzy.Find(query, haystack)

	results := make([]RuleSearchResult, 0, len(matches))
	for _, m := range matches {
		results = append(results, RuleSearchResult{
			Rule:  &rules[m.Index],
			Score: m.Score,
		})
	}

	c.JSON(http.StatusOK, RuleSearchResponse{
		Results: results,
		Query:   query,
		Total:   len(results),
	})
}
