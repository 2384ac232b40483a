package handler

import (
	"net/http"
	"strconv"

	"github.com/marcnyamweya/TaxApi/internal/middleware"
	"github.com/marcnyamweya/TaxApi/internal/repository"
	"github.com/marcnyamweya/TaxApi/internal/service"
	"github.com/marcnyamweya/TaxApi/pkg/pagination"
	"github.com/marcnyamweya/TaxApi/pkg/response"

	"github.com/gin-gonic/gin"
)

type SubmissionHandler struct {
	submissionService service.SubmissionService
	auditService      service.AuditService
}

func NewSubmissionHandler(submissionService service.SubmissionService, auditService service.AuditService) *SubmissionHandler {
	return &SubmissionHandler{
		submissionService: submissionService,
		auditService:      auditService,
	}
}

func (h *SubmissionHandler) RegisterRoutes(router *gin.RouterGroup) {
	subs := router.Group("/api/tax-submissions")
	{
		subs.GET("", h.ListSubmissions)
		subs.GET("/:id", h.GetSubmission)
		subs.POST("", h.CreateSubmission)
		subs.PATCH("/:id/status", h.UpdateStatus)
		subs.DELETE("/:id", h.DeleteSubmission)
		subs.GET("/:id/audit", h.GetSubmissionAudit)
	}
}

// ListSubmissions returns submissions, optionally filtered by client or status
// @Summary      List tax submissions
// @Tags         submissions
// @Produce      json
// @Param        client_id  query     int     false  "Filter by client ID"
// @Param        status     query     string  false  "Filter by status"
// @Param        page       query     int     false  "Page number (default 1)"
// @Param        limit      query     int     false  "Items per page (default 20)"
// @Success      200        {object}  response.Response{data=object}
// @Router       /api/tax-submissions [get]
func (h *SubmissionHandler) ListSubmissions(c *gin.Context) {
	params := pagination.Parse(c)
	filter := repository.SubmissionFilter{
		ClientID: pagination.QueryUint(c, "client_id"),
		Status:   c.Query("status"),
		Page:     params.Page,
		Limit:    params.Limit,
	}

	subs, total, err := h.submissionService.ListSubmissions(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"submissions": subs,
		"total":       total,
		"page":        params.Page,
		"limit":       params.Limit,
	}))
}

// GetSubmission returns a single submission by ID
// @Summary      Get tax submission
// @Tags         submissions
// @Produce      json
// @Param        id   path      int  true  "Submission ID"
// @Success      200  {object}  response.Response{data=service.TaxSubmissionResponse}
// @Failure      404  {object}  response.Response
// @Router       /api/tax-submissions/{id} [get]
func (h *SubmissionHandler) GetSubmission(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid submission id"))
		return
	}

	sub, err := h.submissionService.GetSubmission(c.Request.Context(), id)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}

// CreateSubmission validates tax data, calculates liability and stores the record
// @Summary      Submit tax data
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        payload  body      service.CreateTaxSubmissionRequest  true  "Submission payload"
// @Success      201      {object}  response.Response{data=service.TaxSubmissionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Router       /api/tax-submissions [post]
func (h *SubmissionHandler) CreateSubmission(c *gin.Context) {
	var req service.CreateTaxSubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}

	sub, err := h.submissionService.CreateSubmission(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, sub))
}

// UpdateStatus transitions a submission through its workflow
// @Summary      Transition submission status
// @Description  Allowed: SUBMITTED→UNDER_REVIEW, UNDER_REVIEW→APPROVED/REJECTED, APPROVED→FILED
// @Tags         submissions
// @Accept       json
// @Produce      json
// @Param        id       path      int                                    true  "Submission ID"
// @Param        payload  body      service.UpdateSubmissionStatusRequest  true  "Requested transition"
// @Success      200      {object}  response.Response{data=service.TaxSubmissionResponse}
// @Failure      400      {object}  response.Response
// @Failure      404      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /api/tax-submissions/{id}/status [patch]
func (h *SubmissionHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid submission id"))
		return
	}

	var req service.UpdateSubmissionStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "Invalid request payload: "+err.Error()))
		return
	}
	req.PerformedBy = middleware.Actor(c, req.PerformedBy)

	sub, err := h.submissionService.UpdateStatus(c.Request.Context(), id, req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, sub))
}

// DeleteSubmission removes a submission; its audit trail survives
// @Summary      Delete tax submission
// @Tags         submissions
// @Produce      json
// @Param        id   path      int  true  "Submission ID"
// @Success      200  {object}  response.Response
// @Failure      404  {object}  response.Response
// @Router       /api/tax-submissions/{id} [delete]
func (h *SubmissionHandler) DeleteSubmission(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid submission id"))
		return
	}

	actor := middleware.Actor(c, "System")
	if err := h.submissionService.DeleteSubmission(c.Request.Context(), id, actor); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{"deleted": id}))
}

// GetSubmissionAudit returns the audit trail of one submission, newest first
// @Summary      Get submission audit trail
// @Tags         submissions
// @Produce      json
// @Param        id     path      int  true   "Submission ID"
// @Param        page   query     int  false  "Page number (default 1)"
// @Param        limit  query     int  false  "Items per page (default 20)"
// @Success      200    {object}  response.Response{data=object}
// @Failure      404    {object}  response.Response
// @Router       /api/tax-submissions/{id}/audit [get]
func (h *SubmissionHandler) GetSubmissionAudit(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid submission id"))
		return
	}

	params := pagination.Parse(c)
	logs, total, err := h.auditService.ListForSubmission(c.Request.Context(), id, params.Page, params.Limit)
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
