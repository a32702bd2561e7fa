package composer

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// IComposerUsecase defines the wizard operations exposed over REST
type IComposerUsecase interface {
	// Session lifecycle
	OpenSession(ctx context.Context, req OpenSessionRequest) (*SessionView, error)
	GetSession(ctx context.Context, id uuid.UUID) (*SessionView, error)
	CloseSession(ctx context.Context, id uuid.UUID) error

	// Target ingestion and resolution
	ImportTargetsFromFile(ctx context.Context, id uuid.UUID, filename string, data []byte) (*SessionView, error)
	ImportTargetsFromText(ctx context.Context, id uuid.UUID, raw string) (*SessionView, error)
	ResolveTargets(ctx context.Context, id uuid.UUID) (*SessionView, error)
	ClearTargets(ctx context.Context, id uuid.UUID) (*SessionView, error)

	// Creator selection
	ListCreators(ctx context.Context, id uuid.UUID, search string) ([]CreatorProfile, error)
	ToggleCreator(ctx context.Context, id uuid.UUID, username string) (*SessionView, error)
	SelectAllCreators(ctx context.Context, id uuid.UUID, selected bool) (*SessionView, error)

	// Message sequence
	AddStep(ctx context.Context, id uuid.UUID) (*SessionView, error)
	EditStep(ctx context.Context, id uuid.UUID, req EditStepRequest) (*SessionView, error)
	RemoveStep(ctx context.Context, id uuid.UUID, stepNumber int) (*SessionView, error)

	// Sender accounts
	RefreshAccounts(ctx context.Context, id uuid.UUID) (*SessionView, error)
	ToggleAccount(ctx context.Context, id uuid.UUID, accountID string) (*SessionView, error)

	// Basics, scheduling, limits
	UpdateBasics(ctx context.Context, id uuid.UUID, req BasicsRequest) (*SessionView, error)
	UpdateSchedule(ctx context.Context, id uuid.UUID, req ScheduleRequest) (*SessionView, error)
	UpdateLimits(ctx context.Context, id uuid.UUID, req LimitsRequest) (*SessionView, error)

	// Navigation and submission
	Advance(ctx context.Context, id uuid.UUID) (*SessionView, error)
	Back(ctx context.Context, id uuid.UUID) (*SessionView, error)
	Submit(ctx context.Context, id uuid.UUID, launch bool) (*Campaign, error)

	// Helpers
	SampleCSV() string

	// Session eviction worker
	StartSessionJanitor(ctx context.Context)
	StopSessionJanitor()
}

// ISessionStore holds in-flight wizard sessions
type ISessionStore interface {
	Put(session *Session)
	Get(id uuid.UUID) (*Session, bool)
	Delete(id uuid.UUID)
	Sweep(idleFor time.Duration) int
	StartJanitor(ctx context.Context)
	StopJanitor()
}

// ICreatorLookup resolves usernames to creator profiles in one batch call
type ICreatorLookup interface {
	BatchUserDetails(ctx context.Context, token string, usernames []string) (*ResolutionResult, error)
}

// IAccountDirectory lists the workspace's sender accounts
type IAccountDirectory interface {
	ListAccounts(ctx context.Context, token, workspaceEmail string) ([]SenderAccount, error)
}

// ICampaignGateway persists campaign records in the external backend
type ICampaignGateway interface {
	GetCampaign(ctx context.Context, token, id string) (*Campaign, error)
	CreateCampaign(ctx context.Context, token string, draft CampaignDraft) (*Campaign, error)
	UpdateCampaign(ctx context.Context, token, id string, draft CampaignDraft) (*Campaign, error)
	StartCampaign(ctx context.Context, token, id string) error
}

// IIdentityGateway validates bearer tokens
type IIdentityGateway interface {
	ValidateToken(ctx context.Context, token string) (*Operator, error)
}
