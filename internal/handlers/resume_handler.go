package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/datatypes"

	"resume-screener/internal/models"
	"resume-screener/internal/repositories"
	"resume-screener/internal/services"
)

type ResumeHandler struct {
	roleRepo       repositories.RoleRepository
	resumeRepo     repositories.ResumeRepository
	storageService services.BlobStorageService
	geminiService  services.GeminiService
	extractor      services.TextExtractor
	resumeIndex    services.ResumeIndexService
	promptBuilder  *services.PromptBuilder
}

func NewResumeHandler(
	roleRepo repositories.RoleRepository,
	resumeRepo repositories.ResumeRepository,
	storageService services.BlobStorageService,
	geminiService services.GeminiService,
	extractor services.TextExtractor,
	resumeIndex services.ResumeIndexService,
) *ResumeHandler {
	return &ResumeHandler{
		roleRepo:       roleRepo,
		resumeRepo:     resumeRepo,
		storageService: storageService,
		geminiService:  geminiService,
		extractor:      extractor,
		resumeIndex:    resumeIndex,
		promptBuilder:  services.NewPromptBuilder(),
	}
}

// HandleUploadResume handles POST /api/roles/:role_id/upload-resume.
//
// The sequence is fixed: role lookup, rubric check, text extraction, blob
// upload, AI evaluation, row insert. An AI failure during evaluation does
// not abort the upload; the row is saved with score 0 and an error
// payload. An already-shaped *fiber.Error coming out of the evaluation
// step propagates as-is instead.
func (h *ResumeHandler) HandleUploadResume(c *fiber.Ctx) error {
	roleID, err := uuid.Parse(c.Params("role_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role ID format",
		})
	}

	// 1. Job description and rubric for the role
	role, err := h.roleRepo.FindByID(roleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Role not found.",
			})
		}

		log.Printf("❌ Error fetching role data for resume upload: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching role data",
		})
	}

	if !role.HasRubric() {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "No evaluation rubric found for this role. Please generate one first.",
		})
	}

	// 2. Extract text from the resume file
	fileHeader, err := c.FormFile("resume_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "resume_file is required",
		})
	}

	kind, err := services.ResolveFileKind(fileHeader.Filename)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Unsupported file type. Please upload PDF or DOCX.",
		})
	}

	src, err := fileHeader.Open()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to open uploaded file",
		})
	}
	data, err := io.ReadAll(src)
	src.Close()
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "failed to read uploaded file",
		})
	}

	resumeText, err := h.extractor.ExtractText(data, kind)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}

	if strings.TrimSpace(resumeText) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not extract text from the resume. File might be empty or corrupted.",
		})
	}

	// 3. Upload the raw file to blob storage
	objectKey := services.BuildObjectKey(roleID, fileHeader.Filename)
	contentType := fileHeader.Header.Get("Content-Type")
	if err := h.storageService.Upload(c.Context(), objectKey, data, contentType); err != nil {
		log.Printf("❌ Error uploading file to blob storage: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error uploading resume file",
		})
	}
	fileURL := h.storageService.PublicURL(objectKey)

	// 4. AI evaluation. Failures degrade to an error payload instead of
	// aborting; the file is already uploaded and the row is still saved.
	score := 0
	var details interface{}

	prompt := h.promptBuilder.BuildEvaluationPrompt(role.Description, *role.RubricText, resumeText)
	result, err := h.geminiService.EvaluateResume(c.Context(), prompt)
	if err != nil {
		var fiberErr *fiber.Error
		if errors.As(err, &fiberErr) {
			return fiberErr
		}

		log.Printf("❌ Error during resume evaluation: %v\n", err)
		details = models.EvaluationFailure{
			Error:   err.Error(),
			Message: "AI evaluation failed. Please check logs.",
		}
	} else {
		score = result.OverallScore
		details = result
	}

	detailsJSON, err := json.Marshal(details)
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error encoding evaluation results",
		})
	}

	// 5. Save the resume row
	resume := models.Resume{
		ID:                uuid.New(),
		RoleID:            roleID,
		FileName:          fileHeader.Filename,
		FileURL:           fileURL,
		Score:             score,
		EvaluationDetails: datatypes.JSON(detailsJSON),
		CreatedAt:         time.Now(),
	}

	if err := h.resumeRepo.Create(&resume); err != nil {
		log.Printf("❌ Error saving evaluation to database: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error saving evaluation results",
		})
	}

	// Index the resume for similarity lookups. Never fatal.
	h.indexResume(c, resume.ID, roleID, resumeText)

	return c.Status(fiber.StatusCreated).JSON([]models.Resume{resume})
}

func (h *ResumeHandler) indexResume(c *fiber.Ctx, resumeID, roleID uuid.UUID, text string) {
	embedding, err := h.geminiService.GenerateEmbedding(c.Context(), text)
	if err != nil {
		log.Printf("⚠️  Failed to embed resume %s for indexing: %v\n", resumeID, err)
		return
	}

	if err := h.resumeIndex.IndexResume(c.Context(), resumeID.String(), roleID.String(), embedding); err != nil {
		log.Printf("⚠️  Failed to index resume %s: %v\n", resumeID, err)
	}
}

// HandleListResults handles GET /api/roles/:role_id/results.
func (h *ResumeHandler) HandleListResults(c *fiber.Ctx) error {
	roleID, err := uuid.Parse(c.Params("role_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role ID format",
		})
	}

	resumes, err := h.resumeRepo.FindByRoleID(roleID)
	if err != nil {
		log.Printf("❌ Error fetching resume results: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching resume results",
		})
	}

	return c.JSON(resumes)
}

// HandleListSimilar handles GET /api/roles/:role_id/resumes/:resume_id/similar.
func (h *ResumeHandler) HandleListSimilar(c *fiber.Ctx) error {
	roleID, err := uuid.Parse(c.Params("role_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role ID format",
		})
	}

	resumeID, err := uuid.Parse(c.Params("resume_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid resume ID format",
		})
	}

	resume, err := h.resumeRepo.FindByID(resumeID)
	if err != nil || resume.RoleID != roleID {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Resume not found",
		})
	}

	similar, err := h.resumeIndex.SearchSimilar(c.Context(), resumeID.String(), roleID.String(), 5)
	if err != nil {
		log.Printf("❌ Error searching similar resumes: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error searching similar resumes",
		})
	}

	if similar == nil {
		similar = []models.SimilarResume{}
	}

	return c.JSON(similar)
}
