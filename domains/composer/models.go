package composer

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

// WizardStep identifies one of the five composer steps
type WizardStep int

const (
	StepBasicInfoAndCreators WizardStep = iota
	StepMessageSequence
	StepSenderAccounts
	StepScheduling
	StepReviewAndLaunch
)

func (s WizardStep) String() string {
	switch s {
	case StepBasicInfoAndCreators:
		return "basic_info_and_creators"
	case StepMessageSequence:
		return "message_sequence"
	case StepSenderAccounts:
		return "sender_accounts"
	case StepScheduling:
		return "scheduling"
	case StepReviewAndLaunch:
		return "review_and_launch"
	}
	return "unknown"
}

// SessionMode distinguishes editable sessions from read-only ones
type SessionMode string

const (
	SessionModeCompose SessionMode = "compose"
	SessionModeView    SessionMode = "view"
)

// ActionType is one outreach action in a message sequence
type ActionType string

const (
	ActionFollow   ActionType = "follow"
	ActionMessage  ActionType = "message"
	ActionUnfollow ActionType = "unfollow"
)

// CreatorProfile is an immutable snapshot returned by the lookup service,
// cached per session only
type CreatorProfile struct {
	Username        string    `json:"username"`
	FullName        string    `json:"full_name"`
	FollowersCount  int       `json:"followers_count"`
	FollowingCount  int       `json:"following_count"`
	MediaCount      int       `json:"media_count"`
	EngagementRate  float64   `json:"engagement_rate"` // percent
	AverageLikes    float64   `json:"average_likes"`
	AverageComments float64   `json:"average_comments"`
	IsVerified      bool      `json:"is_verified"`
	IsPrivate       bool      `json:"is_private"`
	EnrichedAt      time.Time `json:"enriched_at"`
}

// SequenceStep is one ordered action in a campaign's outreach plan.
// StepNumber is a stable identifier assigned at creation and never reused;
// Order is the 1-based execution position, recomputed on add/remove.
type SequenceStep struct {
	StepNumber int        `json:"step_number"`
	Order      int        `json:"order"`
	ActionType ActionType `json:"action_type"`
	Content    string     `json:"content,omitempty"`
	DelayHours int        `json:"delay_hours"`
	IsActive   bool       `json:"is_active"`
}

// SenderAccount is a workspace Instagram account that can send outreach
type SenderAccount struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsActive bool   `json:"is_active"`
}

// OperationalWindow bounds when the backend may execute campaign actions
type OperationalWindow struct {
	StartTime      string `json:"start_time"` // HH:MM
	EndTime        string `json:"end_time"`   // HH:MM
	Timezone       string `json:"timezone"`
	ActiveWeekdays []int  `json:"active_weekdays"` // 0=Sunday .. 6=Saturday
}

// Limits holds the per-day pacing settings sent to the backend
type Limits struct {
	MaxDailyFollows       int  `json:"max_daily_follows"`
	MaxDailyMessages      int  `json:"max_daily_messages"`
	FollowUpDelayHours    int  `json:"follow_up_delay_hours"`
	RandomizeDelay        bool `json:"randomize_delay"`
	DelayVariationPercent int  `json:"delay_variation_percent"`
}

// CampaignDraft is the in-memory campaign being composed. It is owned
// exclusively by one session and discarded on submit or session close.
type CampaignDraft struct {
	Name              string                    `json:"name"`
	Description       string                    `json:"description"`
	TargetUsernames   []string                  `json:"target_usernames"`
	ResolvedCreators  map[string]CreatorProfile `json:"resolved_creators"`
	SelectedUsernames map[string]bool           `json:"selected_usernames"`
	FailedUsernames   []string                  `json:"failed_usernames"`
	MessageSequence   []SequenceStep            `json:"message_sequence"`
	SenderAccounts    []SenderAccount           `json:"sender_accounts"`
	OperationalWindow OperationalWindow         `json:"operational_window"`
	Limits            Limits                    `json:"limits"`
}

// NewDraft returns a draft with the product defaults: an initial follow
// plus a follow-up message, weekday business hours, conservative limits.
func NewDraft() CampaignDraft {
	return CampaignDraft{
		ResolvedCreators:  make(map[string]CreatorProfile),
		SelectedUsernames: make(map[string]bool),
		MessageSequence: []SequenceStep{
			{StepNumber: 1, Order: 1, ActionType: ActionFollow, DelayHours: 0, IsActive: true},
			{StepNumber: 2, Order: 2, ActionType: ActionMessage, Content: "Hi! I love your content and would like to discuss a collaboration. Are you interested?", DelayHours: 72, IsActive: true},
		},
		OperationalWindow: OperationalWindow{
			StartTime:      "09:00",
			EndTime:        "17:00",
			Timezone:       "UTC",
			ActiveWeekdays: []int{1, 2, 3, 4, 5},
		},
		Limits: Limits{
			MaxDailyFollows:       50,
			MaxDailyMessages:      20,
			FollowUpDelayHours:    48,
			RandomizeDelay:        true,
			DelayVariationPercent: 30,
		},
	}
}

// Session is one wizard run. Mu guards every mutable field; callers hold it
// across reads and writes but never across network calls.
type Session struct {
	Mu sync.Mutex

	ID             uuid.UUID
	Mode           SessionMode
	Step           WizardStep
	Draft          CampaignDraft
	CampaignID     string // non-empty when hydrated from an existing record
	Token          string
	WorkspaceEmail string
	NextStepNumber int
	ResolveSeq     uint64
	Resolving      bool
	Submitting     bool
	CreatedAt      time.Time
	LastActive     time.Time
}

// Touch records activity for TTL eviction. Caller holds Mu.
func (s *Session) Touch() {
	s.LastActive = time.Now()
}

// IdleSince returns the last activity time. Safe to call without Mu held.
func (s *Session) IdleSince() time.Time {
	s.Mu.Lock()
	defer s.Mu.Unlock()
	return s.LastActive
}

// SessionView is the read model returned by every wizard endpoint
type SessionView struct {
	ID              uuid.UUID     `json:"id"`
	Mode            SessionMode   `json:"mode"`
	Step            WizardStep    `json:"step"`
	StepName        string        `json:"step_name"`
	CampaignID      string        `json:"campaign_id,omitempty"`
	Draft           CampaignDraft `json:"draft"`
	Resolving       bool          `json:"resolving"`
	Submitting      bool          `json:"submitting"`
	SelectedCount   int           `json:"selected_count"`
	ResolvedCount   int           `json:"resolved_count"`
	FailedUsernames []string      `json:"failed_usernames"`
}

// Campaign is a persisted record as returned by the persistence service
type Campaign struct {
	ID                string            `json:"id"`
	Name              string            `json:"name"`
	Description       string            `json:"description,omitempty"`
	Status            string            `json:"status"`
	SelectedCreators  []CreatorProfile  `json:"selected_creators"`
	MessageSequence   []SequenceStep    `json:"message_sequence"`
	SenderAccounts    []SenderAccount   `json:"sender_accounts"`
	OperationalWindow OperationalWindow `json:"operational_window"`
	Limits            Limits            `json:"limits"`
	CreatedAt         time.Time         `json:"created_at,omitempty"`
	UpdatedAt         time.Time         `json:"updated_at,omitempty"`
}

// ResolutionResult is the outcome of one batch lookup call
type ResolutionResult struct {
	Resolved     map[string]CreatorProfile `json:"resolved"`
	Failed       []string                  `json:"failed"`
	TotalSuccess int                       `json:"total_success"`
	TotalFailed  int                       `json:"total_failed"`
}

// Operator is the identity behind a bearer token
type Operator struct {
	Email          string `json:"email"`
	Name           string `json:"name"`
	WorkspaceEmail string `json:"workspace_email"`
}
