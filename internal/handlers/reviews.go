package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/managerate/managerate/internal/services"
	"github.com/managerate/managerate/pkg/response"
)

// ReviewHandler serves review submission and per-manager listings.
type ReviewHandler struct {
	reviews *services.ReviewService
}

func NewReviewHandler(reviews *services.ReviewService) *ReviewHandler {
	return &ReviewHandler{reviews: reviews}
}

type createReviewRequest struct {
	ManagerID string `json:"manager_id" validate:"required"`

	OverallRating   int `json:"overall_rating" validate:"required,gte=1,lte=5"`
	Communication   int `json:"communication" validate:"required,gte=1,lte=5"`
	Fairness        int `json:"fairness" validate:"required,gte=1,lte=5"`
	GrowthSupport   int `json:"growth_support" validate:"required,gte=1,lte=5"`
	WorkLifeBalance int `json:"work_life_balance" validate:"required,gte=1,lte=5"`

	TextReview     string `json:"text_review" validate:"omitempty,min=50,max=2000"`
	IsAnonymous    *bool  `json:"is_anonymous"`
	WouldWorkAgain string `json:"would_work_again" validate:"required,oneof=yes no maybe"`
}

// POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		return
	}

	var req createReviewRequest
	if !bindAndValidate(c, &req) {
		return
	}

	review, err := h.reviews.Create(requestContext(c), services.CreateReviewInput{
		UserID:          userID,
		ManagerID:       req.ManagerID,
		OverallRating:   req.OverallRating,
		Communication:   req.Communication,
		Fairness:        req.Fairness,
		GrowthSupport:   req.GrowthSupport,
		WorkLifeBalance: req.WorkLifeBalance,
		TextReview:      req.TextReview,
		IsAnonymous:     req.IsAnonymous,
		WouldWorkAgain:  req.WouldWorkAgain,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, review)
}

// GET /api/reviews/manager/:managerId?limit=&offset=
func (h *ReviewHandler) ListByManager(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 20)
	offset := parseIntQuery(c, "offset", 0)

	reviews, total, err := h.reviews.ListByManager(requestContext(c), c.Param("managerId"), limit, offset)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.SuccessWithMeta(c, http.StatusOK, reviews, &response.Meta{
		Limit:  limit,
		Offset: offset,
		Total:  total,
	})
}
