package handler

import (
	"net/http"
	"strconv"

	"github.com/marcnyamweya/TaxApi/internal/service"
	"github.com/marcnyamweya/TaxApi/pkg/pagination"
	"github.com/marcnyamweya/TaxApi/pkg/response"

	"github.com/gin-gonic/gin"
)

type AuditHandler struct {
	auditService service.AuditService
}

func NewAuditHandler(auditService service.AuditService) *AuditHandler {
	return &AuditHandler{auditService: auditService}
}

func (h *AuditHandler) RegisterRoutes(router *gin.RouterGroup) {
	group := router.Group("/api/audit-logs")
	{
		group.GET("", h.GetAuditLogs)
	}
}

// GetAuditLogs retrieves paginated audit entries, newest first
// @Summary      Get audit logs
// @Description  Retrieves the audit trail, optionally filtered by event type or submission
// @Tags         audit
// @Produce      json
// @Param        event_type     query     string  false  "Filter by event type (SUBMISSION, STATUS_CHANGE, VALIDATION_FAILURE, SYSTEM_ERROR, CALCULATION)"
// @Param        submission_id  query     int     false  "Filter by submission ID"
// @Param        page           query     int     false  "Page number (default 1)"
// @Param        limit          query     int     false  "Number of items per page (default 20)"
// @Success      200            {object}  response.Response{data=object}
// @Router       /api/audit-logs [get]
func (h *AuditHandler) GetAuditLogs(c *gin.Context) {
	params := pagination.Parse(c)
	query := service.AuditQuery{
		EventType:    c.Query("event_type"),
		SubmissionID: pagination.QueryUint(c, "submission_id"),
		Page:         params.Page,
		Limit:        params.Limit,
	}

	logs, total, err := h.auditService.List(c.Request.Context(), query)
	if err != nil {
		respondError(c, err)
		return
	}

	c.Header("X-Total-Count", strconv.FormatInt(total, 10))
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"logs":  logs,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
