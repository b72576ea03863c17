package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	adopthttpmapper "github.com/pawhaven/adoption-api/internal/domains/adoptions/adapters/http/mapper"
	adoptapp "github.com/pawhaven/adoption-api/internal/domains/adoptions/application"
	adoptports "github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	apierrors "github.com/pawhaven/adoption-api/internal/shared/errors"
)

// AdoptionAPI wires HTTP transport with the reconciliation service.
type AdoptionAPI struct {
	service   adoptports.Service
	responder *apierrors.ChainedResponder
}

// NewAdoptionAPI creates an AdoptionAPI backed by the provided service.
func NewAdoptionAPI(service adoptports.Service) *AdoptionAPI {
	return &AdoptionAPI{
		service:   service,
		responder: apierrors.NewChainedResponder("", adoptionErrorMapper),
	}
}

func adoptionErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, adoptapp.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, adoptapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, adoptapp.ErrAlreadyAdopted):
		return apierrors.ErrAlreadyAdopted.WithDetail(err.Error()), true
	case errors.Is(err, adoptapp.ErrReconciliationPending):
		return apierrors.ErrReconciliationPending.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// Post /v1/adoptions
// Submit an adoption for the authenticated user
func (api *AdoptionAPI) SubmitAdoption(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		api.responder.Unauthorized(c, "missing bearer token")
		return
	}
	var payload adopthttpmapper.SubmitAdoption
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	input := adoptports.SubmitAdoptionInput{PetID: payload.PetID, UserID: principal.UserID}
	saved, err := api.service.SubmitAdoption(c.Request.Context(), input)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, adopthttpmapper.FromProjection(saved))
}

// Delete /v1/adoptions/:recordId
// Cancel an adoption; admins may cancel on behalf of any user
func (api *AdoptionAPI) CancelAdoption(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		api.responder.Unauthorized(c, "missing bearer token")
		return
	}
	input := adoptports.CancelAdoptionInput{
		RecordID:      c.Param("recordId"),
		RequestedBy:   principal.UserID,
		AdminOverride: principal.IsAdmin(),
	}
	if err := api.service.CancelAdoption(c.Request.Context(), input); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Get /v1/adoptions
// List the authenticated user's active adoptions; admins may filter by userId
func (api *AdoptionAPI) ListMyAdoptions(c *gin.Context) {
	principal, ok := principalFrom(c)
	if !ok {
		api.responder.Unauthorized(c, "missing bearer token")
		return
	}
	userID := principal.UserID
	if requested := c.Query("userId"); requested != "" && requested != principal.UserID {
		if !principal.IsAdmin() {
			api.responder.Respond(c, apierrors.ErrForbidden.WithDetail("listing another user's adoptions requires the admin role"))
			return
		}
		userID = requested
	}
	list, err := api.service.ListByUser(c.Request.Context(), userID)
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, adopthttpmapper.FromProjectionList(list))
}
