package httpserver

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	pethttpmapper "github.com/pawhaven/adoption-api/internal/domains/pets/adapters/http/mapper"
	petsapp "github.com/pawhaven/adoption-api/internal/domains/pets/application"
	petports "github.com/pawhaven/adoption-api/internal/domains/pets/ports"
	apierrors "github.com/pawhaven/adoption-api/internal/shared/errors"
)

// PetAPI wires HTTP transport with the pets bounded context service.
type PetAPI struct {
	service   petports.Service
	responder *apierrors.ChainedResponder
}

// NewPetAPI creates a PetAPI backed by the provided service.
func NewPetAPI(service petports.Service) *PetAPI {
	return &PetAPI{
		service:   service,
		responder: apierrors.NewChainedResponder("", petErrorMapper),
	}
}

func petErrorMapper(err error) (apierrors.ProblemDetail, bool) {
	switch {
	case errors.Is(err, petports.ErrNotFound):
		return apierrors.ErrNotFound.WithDetail(err.Error()), true
	case errors.Is(err, petsapp.ErrInvalidInput):
		return apierrors.ErrValidation.WithDetail(err.Error()), true
	case errors.Is(err, petsapp.ErrHasActiveAdoption):
		return apierrors.ErrConflict.WithDetail(err.Error()), true
	}
	return apierrors.ProblemDetail{}, false
}

// Post /v1/pets
// Add a pet to the catalog (admin)
func (api *PetAPI) CreatePet(c *gin.Context) {
	var payload pethttpmapper.CreatePet
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	saved, err := api.service.CreatePet(c.Request.Context(), pethttpmapper.ToCreateInput(payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, pethttpmapper.FromProjection(saved))
}

// Patch /v1/pets/:petId
// Partially update a catalog entry (admin)
func (api *PetAPI) UpdatePet(c *gin.Context) {
	var payload pethttpmapper.MutationPet
	if err := c.ShouldBindJSON(&payload); err != nil {
		api.responder.BadRequest(c, err.Error())
		return
	}
	updated, err := api.service.UpdatePet(c.Request.Context(), pethttpmapper.ToUpdateInput(c.Param("petId"), payload))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(updated))
}

// Get /v1/pets/:petId
// Find pet by ID
func (api *PetAPI) GetPetByID(c *gin.Context) {
	pet, err := api.service.GetByID(c.Request.Context(), c.Param("petId"))
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjection(pet))
}

// Get /v1/pets
// List pets; ?all=true returns the full catalog, otherwise only available pets
func (api *PetAPI) FindPets(c *gin.Context) {
	var (
		result []*petports.PetProjection
		err    error
	)
	if c.Query("all") == "true" {
		result, err = api.service.List(c.Request.Context())
	} else {
		result, err = api.service.FindAvailable(c.Request.Context())
	}
	if err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.JSON(http.StatusOK, pethttpmapper.FromProjectionList(result))
}

// Delete /v1/pets/:petId
// Remove a pet from the catalog (admin); blocked while an adoption is active
func (api *PetAPI) DeletePet(c *gin.Context) {
	if err := api.service.Delete(c.Request.Context(), c.Param("petId")); err != nil {
		api.responder.RespondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}
