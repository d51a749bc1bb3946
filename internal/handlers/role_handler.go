package handlers

import (
	"errors"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"resume-screener/internal/models"
	"resume-screener/internal/repositories"
	"resume-screener/internal/services"
)

type RoleHandler struct {
	roleRepo      repositories.RoleRepository
	geminiService services.GeminiService
	promptBuilder *services.PromptBuilder
}

func NewRoleHandler(
	roleRepo repositories.RoleRepository,
	geminiService services.GeminiService,
) *RoleHandler {
	return &RoleHandler{
		roleRepo:      roleRepo,
		geminiService: geminiService,
		promptBuilder: services.NewPromptBuilder(),
	}
}

// HandleCreateRole handles POST /api/roles. When an old rubric is
// provided, a new rubric is generated before anything is written; any AI
// failure aborts the whole operation.
func (h *RoleHandler) HandleCreateRole(c *fiber.Ctx) error {
	title := c.FormValue("title")
	description := c.FormValue("description")
	oldRubric := c.FormValue("old_rubric")

	if title == "" || description == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "title and description are required",
		})
	}

	var rubricText *string
	if oldRubric != "" {
		prompt := h.promptBuilder.BuildRubricPrompt(oldRubric, description)
		rubric, err := h.geminiService.GenerateRubric(c.Context(), prompt)
		if err != nil {
			log.Printf("❌ Error generating rubric with AI: %v\n", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Error generating rubric with AI: " + err.Error(),
			})
		}
		rubricText = &rubric
	}

	role := models.Role{
		ID:          uuid.New(),
		Title:       title,
		Description: description,
		RubricText:  rubricText,
		CreatedAt:   time.Now(),
	}

	if err := h.roleRepo.Create(&role); err != nil {
		log.Printf("❌ Error creating role: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error creating role",
		})
	}

	return c.Status(fiber.StatusCreated).JSON([]models.Role{role})
}

// HandleListRoles handles GET /api/roles.
func (h *RoleHandler) HandleListRoles(c *fiber.Ctx) error {
	roles, err := h.roleRepo.FindAll()
	if err != nil {
		log.Printf("❌ Error fetching roles: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching roles",
		})
	}

	return c.JSON(roles)
}

// HandleGetRole handles GET /api/roles/:role_id.
func (h *RoleHandler) HandleGetRole(c *fiber.Ctx) error {
	roleID, err := uuid.Parse(c.Params("role_id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid role ID format",
		})
	}

	role, err := h.roleRepo.FindByID(roleID)
	if err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Role not found",
			})
		}

		log.Printf("❌ Error fetching role details: %v\n", err)
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Error fetching role details",
		})
	}

	return c.JSON(role)
}
