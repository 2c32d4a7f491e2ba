package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/managerate/managerate/internal/services"
	"github.com/managerate/managerate/pkg/response"
)

// VerificationHandler serves the employment verification workflow.
type VerificationHandler struct {
	verifications *services.VerificationService

	// exposeCodes echoes the issued code in the response when no real mail
	// transport is configured, so local clients can complete the flow.
	exposeCodes bool
}

func NewVerificationHandler(verifications *services.VerificationService, exposeCodes bool) *VerificationHandler {
	return &VerificationHandler{verifications: verifications, exposeCodes: exposeCodes}
}

type requestVerificationRequest struct {
	ManagerID string `json:"manager_id" validate:"required"`
	WorkEmail string `json:"work_email" validate:"required,email"`

	EmploymentStart *time.Time `json:"employment_start"`
	EmploymentEnd   *time.Time `json:"employment_end"`
}

type confirmVerificationRequest struct {
	ManagerID string `json:"manager_id" validate:"required"`
	Code      string `json:"code" validate:"required,len=6"`
}

// POST /api/verification/request
func (h *VerificationHandler) Request(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req requestVerificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	verification, err := h.verifications.Request(requestContext(c), services.RequestVerificationInput{
		UserID:          userID,
		ManagerID:       req.ManagerID,
		WorkEmail:       req.WorkEmail,
		EmploymentStart: req.EmploymentStart,
		EmploymentEnd:   req.EmploymentEnd,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	payload := gin.H{
		"id":         verification.ID,
		"manager_id": verification.ManagerID,
		"work_email": verification.WorkEmail,
		"expires_at": verification.ExpiresAt,
	}
	if h.exposeCodes {
		payload["debug_code"] = verification.Code
	}

	response.Success(c, http.StatusCreated, payload)
}

// POST /api/verification/confirm
func (h *VerificationHandler) Confirm(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req confirmVerificationRequest
	if !bindAndValidate(c, &req) {
		return
	}

	err := h.verifications.Confirm(requestContext(c), userID, req.ManagerID, req.Code)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{"message": "Employment verified"})
}
