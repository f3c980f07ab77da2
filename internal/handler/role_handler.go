package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/service"
)

// RoleHandler handles role endpoints nested under an idea.
type RoleHandler struct {
	roleService service.RoleService
}

// NewRoleHandler creates a new role handler.
func NewRoleHandler(roleService service.RoleService) *RoleHandler {
	return &RoleHandler{roleService: roleService}
}

// AddRoleRequest assigns a role to the user with the given email.
// Which detail fields are read depends on role.
type AddRoleRequest struct {
	Email            string           `json:"email"`
	Role             string           `json:"role"`
	EquityPercentage *decimal.Decimal `json:"equityPercentage,omitempty" swaggertype:"number"`
	DebtAmount       *decimal.Decimal `json:"debtAmount,omitempty" swaggertype:"number"`
	StartDate        *Date            `json:"startDate,omitempty" swaggertype:"string" example:"2024-01-01"`
	EndDate          *Date            `json:"endDate,omitempty" swaggertype:"string" example:"2024-12-31"`
}

// Add godoc
// @Summary Assign a role on an idea
// @Tags roles
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idea ID"
// @Param request body AddRoleRequest true "Role assignment"
// @Success 201 {object} model.IdeaRole
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ideas/{id}/roles [post]
func (h *RoleHandler) Add(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ideaID, err := pathUUID(c, "id", "INVALID_IDEA_ID")
	if err != nil {
		return err
	}

	var req AddRoleRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	role, err := h.roleService.AddRole(c.Request().Context(), ideaID, userID, req.Email, service.RoleRequest{
		Kind:             model.RoleKind(req.Role),
		EquityPercentage: req.EquityPercentage,
		DebtAmount:       req.DebtAmount,
		StartDate:        req.StartDate.timePtr(),
		EndDate:          req.EndDate.timePtr(),
	})
	if err != nil {
		return serviceError(err)
	}

	return c.JSON(http.StatusCreated, role)
}

// List godoc
// @Summary List roles on an idea
// @Tags roles
// @Produce json
// @Security BearerAuth
// @Param id path string true "Idea ID"
// @Success 200 {array} model.IdeaRole
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /ideas/{id}/roles [get]
func (h *RoleHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ideaID, err := pathUUID(c, "id", "INVALID_IDEA_ID")
	if err != nil {
		return err
	}

	roles, err := h.roleService.ListRoles(c.Request().Context(), ideaID, userID)
	if err != nil {
		return serviceError(err)
	}
	if roles == nil {
		roles = []model.IdeaRole{}
	}

	return c.JSON(http.StatusOK, roles)
}

// Remove godoc
// @Summary Remove a role from an idea
// @Description The IDEA_OWNER role cannot be removed.
// @Tags roles
// @Security BearerAuth
// @Param id path string true "Idea ID"
// @Param roleId path string true "Role ID"
// @Success 204
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /ideas/{id}/roles/{roleId} [delete]
func (h *RoleHandler) Remove(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	ideaID, err := pathUUID(c, "id", "INVALID_IDEA_ID")
	if err != nil {
		return err
	}
	roleID, err := pathUUID(c, "roleId", "INVALID_ROLE_ID")
	if err != nil {
		return err
	}

	if err := h.roleService.RemoveRole(c.Request().Context(), ideaID, roleID, userID); err != nil {
		return serviceError(err)
	}
	return c.NoContent(http.StatusNoContent)
}
