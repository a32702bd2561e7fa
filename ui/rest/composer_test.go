package rest

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
	"github.com/Nirvanjha2004/outreach-composer/pkg/ingest"
	"github.com/Nirvanjha2004/outreach-composer/validations"
)

// stubService returns canned results so handler routing and error
// mapping can be exercised without a backend.
type stubService struct {
	err       error
	lastToken string
	lastText  string
	lastFile  string
	lastStep  int
}

func (s *stubService) view() *domainComposer.SessionView {
	return &domainComposer.SessionView{ID: uuid.New(), StepName: "basic_info_and_creators"}
}

func (s *stubService) OpenSession(_ context.Context, req domainComposer.OpenSessionRequest) (*domainComposer.SessionView, error) {
	s.lastToken = req.Token
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) GetSession(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) CloseSession(context.Context, uuid.UUID) error { return s.err }

func (s *stubService) ImportTargetsFromFile(_ context.Context, _ uuid.UUID, filename string, _ []byte) (*domainComposer.SessionView, error) {
	s.lastFile = filename
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) ImportTargetsFromText(_ context.Context, _ uuid.UUID, raw string) (*domainComposer.SessionView, error) {
	s.lastText = raw
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) ResolveTargets(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) ClearTargets(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) ListCreators(context.Context, uuid.UUID, string) ([]domainComposer.CreatorProfile, error) {
	if s.err != nil {
		return nil, s.err
	}
	return []domainComposer.CreatorProfile{{Username: "johndoe"}}, nil
}

func (s *stubService) ToggleCreator(context.Context, uuid.UUID, string) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) SelectAllCreators(context.Context, uuid.UUID, bool) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) AddStep(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) EditStep(_ context.Context, _ uuid.UUID, req domainComposer.EditStepRequest) (*domainComposer.SessionView, error) {
	s.lastStep = req.StepNumber
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) RemoveStep(_ context.Context, _ uuid.UUID, stepNumber int) (*domainComposer.SessionView, error) {
	s.lastStep = stepNumber
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) RefreshAccounts(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) ToggleAccount(context.Context, uuid.UUID, string) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) UpdateBasics(context.Context, uuid.UUID, domainComposer.BasicsRequest) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) UpdateSchedule(context.Context, uuid.UUID, domainComposer.ScheduleRequest) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) UpdateLimits(context.Context, uuid.UUID, domainComposer.LimitsRequest) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) Advance(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) Back(context.Context, uuid.UUID) (*domainComposer.SessionView, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.view(), nil
}

func (s *stubService) Submit(context.Context, uuid.UUID, bool) (*domainComposer.Campaign, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &domainComposer.Campaign{ID: "cmp-1", Name: "Summer Launch"}, nil
}

func (s *stubService) SampleCSV() string {
	return "username\njohndoe\n"
}

func (s *stubService) StartSessionJanitor(context.Context) {}
func (s *stubService) StopSessionJanitor()                 {}

func newTestApp(stub *stubService) *fiber.App {
	app := fiber.New()
	InitRestComposer(app, stub)
	return app
}

func doRequest(t *testing.T, app *fiber.App, method, path string, body any) (*http.Response, map[string]any) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(raw)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	payload := map[string]any{}
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	if len(raw) > 0 && strings.Contains(resp.Header.Get(fiber.HeaderContentType), "json") {
		require.NoError(t, json.Unmarshal(raw, &payload))
	}
	return resp, payload
}

func TestOpenSessionForwardsBearerToken(t *testing.T) {
	stub := &stubService{}
	app := newTestApp(stub)

	req := httptest.NewRequest(http.MethodPost, "/composer/sessions", strings.NewReader(`{}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set(fiber.HeaderAuthorization, "Bearer tok-123")

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "tok-123", stub.lastToken)
}

func TestGetSessionRejectsMalformedID(t *testing.T) {
	app := newTestApp(&stubService{})

	resp, payload := doRequest(t, app, http.MethodGet, "/composer/sessions/not-a-uuid", nil)
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid session ID", payload["message"])
}

func TestSessionNotFoundMapsTo404(t *testing.T) {
	app := newTestApp(&stubService{err: domainComposer.ErrSessionNotFound})

	resp, payload := doRequest(t, app, http.MethodGet, "/composer/sessions/"+uuid.NewString(), nil)
	assert.Equal(t, 404, resp.StatusCode)
	assert.Equal(t, "NOT_FOUND", payload["code"])
}

func TestViewOnlyMapsTo409(t *testing.T) {
	app := newTestApp(&stubService{err: domainComposer.ErrViewOnly})

	resp, payload := doRequest(t, app, http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/targets/paste",
		domainComposer.PasteTargetsRequest{Text: "johndoe"})
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, "VIEW_ONLY", payload["code"])
}

func TestStepBlockedMapsTo409(t *testing.T) {
	app := newTestApp(&stubService{err: domainComposer.ErrStepBlocked})

	resp, payload := doRequest(t, app, http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/advance", nil)
	assert.Equal(t, 409, resp.StatusCode)
	assert.Equal(t, "STEP_BLOCKED", payload["code"])
}

func TestIngestErrorMapsToReasonCode(t *testing.T) {
	app := newTestApp(&stubService{err: &ingest.Error{
		Reason:  ingest.ReasonTooManyHandles,
		Message: "maximum 100 usernames allowed",
	}})

	resp, payload := doRequest(t, app, http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/targets/paste",
		domainComposer.PasteTargetsRequest{Text: "johndoe"})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "TOO_MANY_HANDLES", payload["code"])
	assert.Equal(t, "maximum 100 usernames allowed", payload["message"])
}

func TestValidationErrorMapsTo400(t *testing.T) {
	app := newTestApp(&stubService{err: validations.ValidationError{Message: "name: cannot be blank."}})

	resp, payload := doRequest(t, app, http.MethodPut, "/composer/sessions/"+uuid.NewString()+"/basics",
		domainComposer.BasicsRequest{})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "VALIDATION_ERROR", payload["code"])
}

func TestUnauthorizedMapsTo401(t *testing.T) {
	app := newTestApp(&stubService{err: domainComposer.ErrUnauthorized})

	resp, payload := doRequest(t, app, http.MethodPost, "/composer/sessions", map[string]any{})
	assert.Equal(t, 401, resp.StatusCode)
	assert.Equal(t, "UNAUTHORIZED", payload["code"])
}

func TestLookupUnavailableMapsTo502(t *testing.T) {
	app := newTestApp(&stubService{err: domainComposer.ErrLookupUnavailable})

	resp, payload := doRequest(t, app, http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/targets/resolve", nil)
	assert.Equal(t, 502, resp.StatusCode)
	assert.Equal(t, "LOOKUP_UNAVAILABLE", payload["code"])
}

func TestEditStepParsesStepNumberFromPath(t *testing.T) {
	stub := &stubService{}
	app := newTestApp(stub)

	content := "Hello"
	resp, _ := doRequest(t, app, http.MethodPut, "/composer/sessions/"+uuid.NewString()+"/sequence/steps/3",
		domainComposer.EditStepRequest{Content: &content})
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, 3, stub.lastStep)
}

func TestEditStepRejectsBadStepNumber(t *testing.T) {
	app := newTestApp(&stubService{})

	resp, payload := doRequest(t, app, http.MethodPut, "/composer/sessions/"+uuid.NewString()+"/sequence/steps/abc",
		domainComposer.EditStepRequest{})
	assert.Equal(t, 400, resp.StatusCode)
	assert.Equal(t, "Invalid step number", payload["message"])
}

func TestUploadTargetsAcceptsMultipart(t *testing.T) {
	stub := &stubService{}
	app := newTestApp(stub)

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", "targets.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte("username\njohndoe\n"))
	require.NoError(t, err)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/targets/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "targets.csv", stub.lastFile)
}

func TestUploadTargetsRequiresFile(t *testing.T) {
	app := newTestApp(&stubService{})

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.Close())

	req := httptest.NewRequest(http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/targets/upload", &buf)
	req.Header.Set(fiber.HeaderContentType, writer.FormDataContentType())

	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 400, resp.StatusCode)
}

func TestSubmitReturnsCampaign(t *testing.T) {
	app := newTestApp(&stubService{})

	resp, payload := doRequest(t, app, http.MethodPost, "/composer/sessions/"+uuid.NewString()+"/submit",
		domainComposer.SubmitRequest{Launch: true})
	assert.Equal(t, 200, resp.StatusCode)

	results, ok := payload["results"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "cmp-1", results["id"])
}

func TestSampleCSVDownload(t *testing.T) {
	app := newTestApp(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/composer/sample-csv", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	assert.Equal(t, 200, resp.StatusCode)
	assert.Equal(t, "text/csv", resp.Header.Get(fiber.HeaderContentType))

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "johndoe")
}
