package handlers

import (
	"fmt"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"physioplan/internal/pdf"
	"physioplan/internal/services"
)

type PlanHandler struct {
	plans       services.PlanService
	submissions services.SubmissionQueries
	pdfGen      pdf.Generator
}

func NewPlanHandler(plans services.PlanService, submissions services.SubmissionQueries, pdfGen pdf.Generator) *PlanHandler {
	return &PlanHandler{plans: plans, submissions: submissions, pdfGen: pdfGen}
}

// @Summary      List own exercise plans
// @Tags         Exercises
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Plan
// @Router       /exercises [get]
func (h *PlanHandler) ListMine(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	plans, err := h.plans.ListByEmail(identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plans)
}

// @Summary      Get the plan of a pain record
// @Tags         Exercises
// @Produce      json
// @Security     BearerAuth
// @Param        painDataId  path      string  true  "Pain record id"
// @Success      200         {object}  models.Plan
// @Failure      404         {object}  map[string]string
// @Router       /exercises/paindata/{painDataId} [get]
func (h *PlanHandler) GetBySubmission(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	plan, err := h.plans.GetBySubmission(c.Param("painDataId"), identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// @Summary      Get a plan by id
// @Tags         Exercises
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Plan id"
// @Success      200  {object}  models.Plan
// @Failure      404  {object}  map[string]string
// @Router       /exercises/id/{id} [get]
func (h *PlanHandler) GetByID(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	plan, err := h.plans.GetOwned(c.Param("id"), identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// @Summary      Update completed sets of one exercise
// @Description  Sets the completed-set count of one item and recomputes the plan progress
// @Tags         Exercises
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        id     path      string  true  "Plan id"
// @Param        index  path      int     true  "Exercise index"
// @Success      200    {object}  models.Plan
// @Failure      404    {object}  map[string]string
// @Failure      422    {object}  map[string]string
// @Router       /exercises/{id}/items/{index}/completion [patch]
func (h *PlanHandler) UpdateCompletion(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid exercise index"})
		return
	}
	var req struct {
		CompletedSets *int `json:"completed_sets" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	plan, err := h.plans.ApplyCompletion(identity.Email, c.Param("id"), index, *req.CompletedSets)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, plan)
}

// @Summary      Download a plan as PDF
// @Tags         Exercises
// @Produce      application/pdf
// @Security     BearerAuth
// @Param        id  path  string  true  "Plan id"
// @Success      200
// @Failure      404  {object}  map[string]string
// @Router       /exercises/{id}/pdf [get]
func (h *PlanHandler) DownloadPDF(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	plan, err := h.plans.GetOwned(c.Param("id"), identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	// the submission enriches the header; the export works without it
	sub, _ := h.submissions.GetOwned(plan.SubmissionID, identity.Email)

	path, err := h.pdfGen.GeneratePlan(plan, sub)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to generate pdf"})
		return
	}
	c.FileAttachment(path, fmt.Sprintf("exercise_plan_%s.pdf", plan.ID))
}
