package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/service"
)

// IdeaHandler handles idea endpoints.
type IdeaHandler struct {
	ideaService service.IdeaService
}

// NewIdeaHandler creates a new idea handler.
func NewIdeaHandler(ideaService service.IdeaService) *IdeaHandler {
	return &IdeaHandler{ideaService: ideaService}
}

// CreateIdeaRequest represents a new idea.
type CreateIdeaRequest struct {
	Name            string `json:"name" validate:"required"`
	Description     string `json:"description" validate:"required"`
	ProblemCategory string `json:"problemCategory" validate:"required"`
	Solution        string `json:"solution" validate:"required"`
	Visibility      string `json:"visibility" validate:"omitempty,oneof=public private"`
}

// UpdateIdeaRequest carries the fields to change. Omitted fields stay as they are.
type UpdateIdeaRequest struct {
	Name            *string `json:"name"`
	Description     *string `json:"description"`
	ProblemCategory *string `json:"problemCategory"`
	Solution        *string `json:"solution"`
	Visibility      *string `json:"visibility"`
}

// Create godoc
// @Summary Create an idea
// @Tags ideas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateIdeaRequest true "Idea"
// @Success 201 {object} model.Idea
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ideas [post]
func (h *IdeaHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateIdeaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	idea, err := h.ideaService.CreateIdea(c.Request().Context(), userID, service.IdeaInput{
		Name:            req.Name,
		Description:     req.Description,
		ProblemCategory: req.ProblemCategory,
		Solution:        req.Solution,
		Visibility:      model.Visibility(req.Visibility),
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, idea)
}

// List godoc
// @Summary List the caller's ideas
// @Description Ideas the caller owns or holds a role on, newest first.
// @Tags ideas
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Idea
// @Failure 401 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ideas [get]
func (h *IdeaHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	ideas, err := h.ideaService.ListIdeasFor(c.Request().Context(), userID)
	if err != nil {
		return serviceError(err)
	}
	if ideas == nil {
		ideas = []model.Idea{}
	}

	return c.JSON(http.StatusOK, ideas)
}

// Get godoc
// @Summary Get an idea
// @Tags ideas
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idea ID"
// @Success 200 {object} model.Idea
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ideas/{id} [get]
func (h *IdeaHandler) Get(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ideaID, err := pathUUID(c, "id", "INVALID_IDEA_ID")
	if err != nil {
		return err
	}

	idea, err := h.ideaService.GetIdea(c.Request().Context(), ideaID, userID)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, idea)
}

// Update godoc
// @Summary Update an idea
// @Description Only the owner may update. Omitted fields are left unchanged.
// @Tags ideas
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idea ID"
// @Param request body UpdateIdeaRequest true "Fields to change"
// @Success 200 {object} model.Idea
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ideas/{id} [put]
func (h *IdeaHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ideaID, err := pathUUID(c, "id", "INVALID_IDEA_ID")
	if err != nil {
		return err
	}

	var req UpdateIdeaRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	patch := service.IdeaPatch{
		Name:            req.Name,
		Description:     req.Description,
		ProblemCategory: req.ProblemCategory,
		Solution:        req.Solution,
	}
	if req.Visibility != nil {
		v := model.Visibility(*req.Visibility)
		patch.Visibility = &v
	}

	idea, err := h.ideaService.UpdateIdea(c.Request().Context(), ideaID, userID, patch)
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusOK, idea)
}
