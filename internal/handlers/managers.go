package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/managerate/managerate/internal/services"
	"github.com/managerate/managerate/pkg/response"
)

// ManagerHandler serves manager profiles and the aggregated read side.
type ManagerHandler struct {
	managers *services.ManagerService
}

func NewManagerHandler(managers *services.ManagerService) *ManagerHandler {
	return &ManagerHandler{managers: managers}
}

type createManagerRequest struct {
	Name       string `json:"name" validate:"required,min=2,max=100"`
	Company    string `json:"company" validate:"required,min=2,max=100"`
	Department string `json:"department" validate:"omitempty,max=100"`
	Title      string `json:"title" validate:"omitempty,max=100"`
}

// GET /api/managers/search?q=&company=
func (h *ManagerHandler) Search(c *gin.Context) {
	results, err := h.managers.Search(requestContext(c), c.Query("q"), c.Query("company"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// GET /api/managers/trending?limit=
func (h *ManagerHandler) Trending(c *gin.Context) {
	limit := parseIntQuery(c, "limit", 0)

	results, err := h.managers.Trending(requestContext(c), limit)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, results)
}

// GET /api/managers/companies
func (h *ManagerHandler) Companies(c *gin.Context) {
	companies, err := h.managers.Companies(requestContext(c))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, companies)
}

// GET /api/managers/:id
func (h *ManagerHandler) Get(c *gin.Context) {
	detail, err := h.managers.GetByID(requestContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, detail)
}

// POST /api/managers
func (h *ManagerHandler) Create(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}

	var req createManagerRequest
	if !bindAndValidate(c, &req) {
		return
	}

	manager, err := h.managers.Create(requestContext(c), services.CreateManagerInput{
		Name:       req.Name,
		Company:    req.Company,
		Department: req.Department,
		Title:      req.Title,
	})
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusCreated, manager)
}
