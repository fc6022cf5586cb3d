package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"physioplan/internal/services"
)

type MetaDataHandler struct {
	meta services.MetaDataService
}

func NewMetaDataHandler(meta services.MetaDataService) *MetaDataHandler {
	return &MetaDataHandler{meta: meta}
}

// @Summary      Pain type vocabulary
// @Tags         Meta
// @Produce      json
// @Success      200  {array}  string
// @Router       /meta/pain-types [get]
func (h *MetaDataHandler) GetPainTypes(c *gin.Context) {
	data, err := h.meta.GetPainTypes()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}

// @Summary      Injury area vocabulary
// @Tags         Meta
// @Produce      json
// @Success      200  {array}  string
// @Router       /meta/injury-areas [get]
func (h *MetaDataHandler) GetInjuryAreas(c *gin.Context) {
	data, err := h.meta.GetInjuryAreas()
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, data)
}
