// Package httpserver wires the gin transport: routes, authentication, and
// the translation from the application error taxonomy to RFC 7807 responses.
package httpserver

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	adoptports "github.com/pawhaven/adoption-api/internal/domains/adoptions/ports"
	petports "github.com/pawhaven/adoption-api/internal/domains/pets/ports"
	"github.com/pawhaven/adoption-api/internal/identity"
)

const serviceName = "adoption-api"

// Config carries the collaborators the router needs.
type Config struct {
	Pets      petports.Service
	Adoptions adoptports.Service
	Verifier  identity.Verifier
	Logger    *slog.Logger
}

// NewRouter builds the gin engine with middleware and the full route table.
func NewRouter(cfg Config) *gin.Engine {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(otelgin.Middleware(serviceName))

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	petAPI := NewPetAPI(cfg.Pets)
	adoptionAPI := NewAdoptionAPI(cfg.Adoptions)
	auth := NewAuthMiddleware(cfg.Verifier, logger)

	v1 := router.Group("/v1")
	{
		// Browsing the catalog is public.
		v1.GET("/pets", petAPI.FindPets)
		v1.GET("/pets/:petId", petAPI.GetPetByID)

		// Catalog mutations are administrative.
		admin := v1.Group("/pets")
		admin.Use(auth.RequireAuth(), auth.RequireAdmin())
		{
			admin.POST("", petAPI.CreatePet)
			admin.PATCH("/:petId", petAPI.UpdatePet)
			admin.DELETE("/:petId", petAPI.DeletePet)
		}

		// Adoption workflow requires an authenticated principal.
		adoptions := v1.Group("/adoptions")
		adoptions.Use(auth.RequireAuth())
		{
			adoptions.POST("", adoptionAPI.SubmitAdoption)
			adoptions.GET("", adoptionAPI.ListMyAdoptions)
			adoptions.DELETE("/:recordId", adoptionAPI.CancelAdoption)
		}
	}

	return router
}
