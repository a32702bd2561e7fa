package rest

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
	"github.com/Nirvanjha2004/outreach-composer/pkg/ingest"
	"github.com/Nirvanjha2004/outreach-composer/pkg/utils"
	"github.com/Nirvanjha2004/outreach-composer/validations"
)

// Composer handles the wizard REST endpoints
type Composer struct {
	Service domainComposer.IComposerUsecase
}

// InitRestComposer registers all composer routes
func InitRestComposer(app fiber.Router, service domainComposer.IComposerUsecase) Composer {
	rest := Composer{Service: service}

	composer := app.Group("/composer")

	// Sessions
	composer.Post("/sessions", rest.OpenSession)
	composer.Get("/sessions/:id", rest.GetSession)
	composer.Delete("/sessions/:id", rest.CloseSession)

	// Targets
	composer.Post("/sessions/:id/targets/upload", rest.UploadTargets)
	composer.Post("/sessions/:id/targets/paste", rest.PasteTargets)
	composer.Post("/sessions/:id/targets/resolve", rest.ResolveTargets)
	composer.Delete("/sessions/:id/targets", rest.ClearTargets)

	// Creators
	composer.Get("/sessions/:id/creators", rest.ListCreators)
	composer.Post("/sessions/:id/creators/toggle", rest.ToggleCreator)
	composer.Post("/sessions/:id/creators/select-all", rest.SelectAllCreators)

	// Message sequence
	composer.Post("/sessions/:id/sequence/steps", rest.AddStep)
	composer.Put("/sessions/:id/sequence/steps/:stepNumber", rest.EditStep)
	composer.Delete("/sessions/:id/sequence/steps/:stepNumber", rest.RemoveStep)

	// Sender accounts
	composer.Post("/sessions/:id/accounts/refresh", rest.RefreshAccounts)
	composer.Post("/sessions/:id/accounts/toggle", rest.ToggleAccount)

	// Basics, scheduling, limits
	composer.Put("/sessions/:id/basics", rest.UpdateBasics)
	composer.Put("/sessions/:id/schedule", rest.UpdateSchedule)
	composer.Put("/sessions/:id/limits", rest.UpdateLimits)

	// Navigation and submission
	composer.Post("/sessions/:id/advance", rest.Advance)
	composer.Post("/sessions/:id/back", rest.Back)
	composer.Post("/sessions/:id/submit", rest.Submit)

	// Helpers
	composer.Get("/sample-csv", rest.SampleCSV)

	return rest
}

// bearerToken extracts the token forwarded to the backend collaborators
func bearerToken(c *fiber.Ctx) string {
	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, "Bearer ") {
		return strings.TrimPrefix(header, "Bearer ")
	}
	return ""
}

func sessionID(c *fiber.Ctx) (uuid.UUID, error) {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return uuid.Nil, c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid session ID"})
	}
	return id, nil
}

// handleServiceError maps the error taxonomy onto HTTP responses
func (h *Composer) handleServiceError(c *fiber.Ctx, err error) error {
	var ingErr *ingest.Error
	if errors.As(err, &ingErr) {
		return c.Status(400).JSON(utils.ResponseData{
			Status:  400,
			Code:    strings.ToUpper(string(ingErr.Reason)),
			Message: ingErr.Message,
		})
	}

	var valErr validations.ValidationError
	if errors.As(err, &valErr) {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "VALIDATION_ERROR", Message: valErr.Message})
	}

	switch {
	case errors.Is(err, domainComposer.ErrSessionNotFound),
		errors.Is(err, domainComposer.ErrStepNotFound),
		errors.Is(err, domainComposer.ErrCreatorNotFound),
		errors.Is(err, domainComposer.ErrAccountNotFound):
		return c.Status(404).JSON(utils.ResponseData{Status: 404, Code: "NOT_FOUND", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrViewOnly):
		return c.Status(409).JSON(utils.ResponseData{Status: 409, Code: "VIEW_ONLY", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrStepBlocked):
		return c.Status(409).JSON(utils.ResponseData{Status: 409, Code: "STEP_BLOCKED", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrLastStep),
		errors.Is(err, domainComposer.ErrNoTargets):
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrUnauthorized):
		return c.Status(401).JSON(utils.ResponseData{Status: 401, Code: "UNAUTHORIZED", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrLookupUnavailable):
		return c.Status(502).JSON(utils.ResponseData{Status: 502, Code: "LOOKUP_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrAccountsUnavailable):
		return c.Status(502).JSON(utils.ResponseData{Status: 502, Code: "ACCOUNTS_UNAVAILABLE", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrSubmissionFailed):
		return c.Status(502).JSON(utils.ResponseData{Status: 502, Code: "SUBMISSION_FAILED", Message: err.Error()})
	case errors.Is(err, domainComposer.ErrHydrationFailed):
		return c.Status(502).JSON(utils.ResponseData{Status: 502, Code: "HYDRATION_FAILED", Message: err.Error()})
	}

	return c.Status(500).JSON(utils.ResponseData{Status: 500, Code: "ERROR", Message: err.Error()})
}

// ============================================================================
// Session Endpoints
// ============================================================================

func (h *Composer) OpenSession(c *fiber.Ctx) error {
	var req domainComposer.OpenSessionRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}
	req.Token = bearerToken(c)

	view, err := h.Service.OpenSession(c.UserContext(), req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Session opened", Results: view})
}

func (h *Composer) GetSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.GetSession(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Session retrieved", Results: view})
}

func (h *Composer) CloseSession(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	if err := h.Service.CloseSession(c.UserContext(), id); err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Session closed"})
}

// ============================================================================
// Target Endpoints
// ============================================================================

func (h *Composer) UploadTargets(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	file, err := c.FormFile("file")
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "CSV file is required"})
	}

	f, err := file.Open()
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Failed to open file"})
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Failed to read file"})
	}

	view, err := h.Service.ImportTargetsFromFile(c.UserContext(), id, file.Filename, data)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Targets imported", Results: view})
}

func (h *Composer) PasteTargets(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.PasteTargetsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.ImportTargetsFromText(c.UserContext(), id, req.Text)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Targets imported", Results: view})
}

func (h *Composer) ResolveTargets(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.ResolveTargets(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Targets resolved", Results: view})
}

func (h *Composer) ClearTargets(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.ClearTargets(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Targets cleared", Results: view})
}

// ============================================================================
// Creator Endpoints
// ============================================================================

func (h *Composer) ListCreators(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	creators, err := h.Service.ListCreators(c.UserContext(), id, c.Query("search"))
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{
		Status:  200,
		Code:    "SUCCESS",
		Message: "Creators retrieved",
		Results: fiber.Map{"creators": creators, "total": len(creators)},
	})
}

func (h *Composer) ToggleCreator(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.ToggleCreatorRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.ToggleCreator(c.UserContext(), id, req.Username)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Creator toggled", Results: view})
}

func (h *Composer) SelectAllCreators(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.SelectAllRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.SelectAllCreators(c.UserContext(), id, req.Selected)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Selection updated", Results: view})
}

// ============================================================================
// Sequence Endpoints
// ============================================================================

func (h *Composer) AddStep(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.AddStep(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Step added", Results: view})
}

func (h *Composer) EditStep(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	stepNumber, err := strconv.Atoi(c.Params("stepNumber"))
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid step number"})
	}

	var req domainComposer.EditStepRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}
	req.StepNumber = stepNumber

	view, err := h.Service.EditStep(c.UserContext(), id, req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Step updated", Results: view})
}

func (h *Composer) RemoveStep(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	stepNumber, err := strconv.Atoi(c.Params("stepNumber"))
	if err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid step number"})
	}

	view, err := h.Service.RemoveStep(c.UserContext(), id, stepNumber)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Step removed", Results: view})
}

// ============================================================================
// Account Endpoints
// ============================================================================

func (h *Composer) RefreshAccounts(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.RefreshAccounts(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Accounts refreshed", Results: view})
}

func (h *Composer) ToggleAccount(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.ToggleAccountRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.ToggleAccount(c.UserContext(), id, req.AccountID)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Account toggled", Results: view})
}

// ============================================================================
// Basics, Scheduling, Limits
// ============================================================================

func (h *Composer) UpdateBasics(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.BasicsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.UpdateBasics(c.UserContext(), id, req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Basics updated", Results: view})
}

func (h *Composer) UpdateSchedule(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.ScheduleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.UpdateSchedule(c.UserContext(), id, req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Schedule updated", Results: view})
}

func (h *Composer) UpdateLimits(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.LimitsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	view, err := h.Service.UpdateLimits(c.UserContext(), id, req)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Limits updated", Results: view})
}

// ============================================================================
// Navigation & Submission
// ============================================================================

func (h *Composer) Advance(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.Advance(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Advanced", Results: view})
}

func (h *Composer) Back(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	view, err := h.Service.Back(c.UserContext(), id)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Moved back", Results: view})
}

func (h *Composer) Submit(c *fiber.Ctx) error {
	id, err := sessionID(c)
	if err != nil {
		return err
	}

	var req domainComposer.SubmitRequest
	if err := c.BodyParser(&req); err != nil && !errors.Is(err, fiber.ErrUnprocessableEntity) {
		return c.Status(400).JSON(utils.ResponseData{Status: 400, Code: "ERROR", Message: "Invalid request body"})
	}

	campaign, err := h.Service.Submit(c.UserContext(), id, req.Launch)
	if err != nil {
		return h.handleServiceError(c, err)
	}

	return c.JSON(utils.ResponseData{Status: 200, Code: "SUCCESS", Message: "Campaign submitted", Results: campaign})
}

// ============================================================================
// Helpers
// ============================================================================

func (h *Composer) SampleCSV(c *fiber.Ctx) error {
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="sample_targets.csv"`)
	return c.SendString(h.Service.SampleCSV())
}
