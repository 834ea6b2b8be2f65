package handler

import (
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/experiencepoints/api/internal/catalog"
	"github.com/experiencepoints/api/internal/validation"
)

type templatesResponse struct {
	Templates []catalog.Template `json:"templates"`
}

type factRequest struct {
	SearchTerm string `json:"searchTerm"`
}

type factResponse struct {
	Fact     string `json:"fact"`
	Activity string `json:"activity"`
}

type CatalogHandler struct {
	catalog   *catalog.Catalog
	validator *validator.Validate
}

func NewCatalogHandler(cat *catalog.Catalog) *CatalogHandler {
	return &CatalogHandler{
		catalog:   cat,
		validator: newValidator(),
	}
}

func (h *CatalogHandler) Templates(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, templatesResponse{Templates: h.catalog.Templates()})
}

func (h *CatalogHandler) Fact(w http.ResponseWriter, r *http.Request) {
	var req factRequest
	err := decode(r, h.validator, &req)
	if err != nil {
		writeError(w, r, err)
		return
	}

	if strings.TrimSpace(req.SearchTerm) == "" {
		writeError(w, r, &validation.Error{Message: "No search term provided"})
		return
	}

	activity, fact := h.catalog.RandomFact(req.SearchTerm)
	writeJSON(w, http.StatusOK, factResponse{Fact: fact, Activity: activity})
}
