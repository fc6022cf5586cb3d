package handlers

import (
	"fmt"
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"physioplan/internal/models"
	"physioplan/internal/services"
)

type IntakeHandler struct {
	intake      services.IntakeService
	submissions services.SubmissionQueries
	filesRoot   string
}

func NewIntakeHandler(intake services.IntakeService, submissions services.SubmissionQueries, filesRoot string) *IntakeHandler {
	return &IntakeHandler{intake: intake, submissions: submissions, filesRoot: filesRoot}
}

// @Summary      Submit a pain report
// @Description  Runs the intake pipeline: clinical validation, duplicate check, persistence and exercise-plan generation
// @Tags         PainData
// @Accept       json
// @Accept       mpfd
// @Produce      json
// @Security     BearerAuth
// @Success      201  {object}  services.IntakeResult
// @Failure      400  {object}  map[string]interface{}
// @Failure      409  {object}  map[string]interface{}
// @Failure      502  {object}  map[string]interface{}
// @Router       /paindata [post]
func (h *IntakeHandler) Create(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}

	input, err := h.bindIntake(c)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.intake.SubmitAndGeneratePlan(c.Request.Context(), identity, input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Pain data saved successfully", "data": result})
}

// bindIntake accepts either a JSON body or a multipart form with an
// optional doctorSlip file. The file is stored under the files root and
// only its relative path travels with the submission.
func (h *IntakeHandler) bindIntake(c *gin.Context) (*models.IntakeInput, error) {
	ct := c.ContentType()
	if !strings.HasPrefix(ct, "multipart/") {
		var input models.IntakeInput
		if err := c.ShouldBindJSON(&input); err != nil {
			return nil, err
		}
		return &input, nil
	}

	severity, _ := strconv.Atoi(c.PostForm("pain_severity"))
	input := &models.IntakeInput{
		ChiefComplaint: c.PostForm("chief_complaint"),
		Severity:       severity,
		History:        c.PostForm("history"),
		ExtraContext:   c.PostForm("extra_context"),
		InjuryArea:     c.PostForm("injury_area"),
	}
	if goals := c.PostForm("goals"); goals != "" {
		for _, g := range strings.Split(goals, ",") {
			if g = strings.TrimSpace(g); g != "" {
				input.Goals = append(input.Goals, g)
			}
		}
	}

	file, err := c.FormFile("doctorSlip")
	if err == nil && file != nil {
		rel := filepath.Join("slips", uuid.NewString()+filepath.Ext(file.Filename))
		dst := filepath.Join(h.filesRoot, rel)
		if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
			return nil, fmt.Errorf("prepare upload dir: %w", err)
		}
		if err := c.SaveUploadedFile(file, dst); err != nil {
			return nil, fmt.Errorf("save doctor slip: %w", err)
		}
		input.DoctorSlipPath = filepath.ToSlash(rel)
		log.Printf("[paindata][upload] saved doctor slip path=%s size=%d", rel, file.Size)
	}
	return input, nil
}

// @Summary      List own pain reports
// @Tags         PainData
// @Produce      json
// @Security     BearerAuth
// @Success      200  {array}  models.Submission
// @Router       /paindata [get]
func (h *IntakeHandler) ListMine(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	subs, err := h.submissions.ListByEmail(identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, subs)
}

// @Summary      Get one pain report
// @Tags         PainData
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pain record id"
// @Success      200  {object}  models.Submission
// @Failure      404  {object}  map[string]string
// @Router       /paindata/{id} [get]
func (h *IntakeHandler) GetByID(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	sub, err := h.submissions.GetOwned(c.Param("id"), identity.Email)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sub)
}

// @Summary      Regenerate the plan for a submission
// @Description  Retries plan generation for a pain record whose plan stage failed
// @Tags         PainData
// @Produce      json
// @Security     BearerAuth
// @Param        id   path      string  true  "Pain record id"
// @Success      201  {object}  models.Plan
// @Failure      404  {object}  map[string]string
// @Failure      409  {object}  map[string]string
// @Router       /paindata/{id}/plan [post]
func (h *IntakeHandler) RegeneratePlan(c *gin.Context) {
	identity, ok := getIdentity(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
		return
	}
	plan, err := h.intake.RegeneratePlan(c.Request.Context(), identity, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": "Exercise plan created", "exercise": plan})
}
