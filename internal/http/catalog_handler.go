package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"genefy/internal/service"
)

// CatalogHandler expone el catálogo cargado (solo lectura).
type CatalogHandler struct {
	engine *service.MatingEngine
}

func NewCatalogHandler(engine *service.MatingEngine) *CatalogHandler {
	return &CatalogHandler{engine: engine}
}

// ListTraits maneja GET /catalog/traits.
func (h *CatalogHandler) ListTraits(c *gin.Context) {
	reg := h.engine.Registry()
	c.JSON(http.StatusOK, gin.H{
		"version":    h.engine.CatalogVersion(),
		"categories": reg.Categories(),
		"traits":     reg.All(),
	})
}

// ListHaplotypes maneja GET /catalog/haplotypes/:breed. Raza desconocida = lista vacía.
func (h *CatalogHandler) ListHaplotypes(c *gin.Context) {
	haps := h.engine.Haplotypes()
	breed := haps.BreedCode(c.Param("breed"))
	c.JSON(http.StatusOK, gin.H{
		"breed":      breed,
		"haplotypes": haps.Applicable(breed),
	})
}
