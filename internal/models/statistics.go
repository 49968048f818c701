package models

// AssigneeStats - count of assignments routed to one user
type AssigneeStats struct {
	UserID string `json:"userId" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

// RuleHitStats - count of assignments produced by one rule
type RuleHitStats struct {
	RuleID string `json:"ruleId" bson:"_id"`
	Count  int    `json:"count" bson:"count"`
}

// AssignmentTrendPoint - count of assignments created on a specific date
type AssignmentTrendPoint struct {
	Date  string `json:"date" bson:"_id"` // YYYY-MM-DD format
	Count int    `json:"count" bson:"count"`
}

// StatisticsResponse - complete statistics response for the dashboard
type StatisticsResponse struct {
	ByAssignee      []AssigneeStats        `json:"byAssignee"`
	ByRule          []RuleHitStats         `json:"byRule"`
	AssignmentTrend []AssignmentTrendPoint `json:"assignmentTrend"`
	TotalAssigned   int                    `json:"totalAssigned"`
	TotalUnassigned int                    `json:"totalUnassigned"`
	Period          string                 `json:"period"` // "7d", "30d", "90d"
}
