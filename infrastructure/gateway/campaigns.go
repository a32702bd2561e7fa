package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// Campaigns persists campaign records through the backend
type Campaigns struct {
	client *Client
}

// NewCampaigns creates the campaign persistence gateway
func NewCampaigns(client *Client) *Campaigns {
	return &Campaigns{client: client}
}

type stepWire struct {
	StepNumber int    `json:"stepNumber"`
	Order      int    `json:"order"`
	ActionType string `json:"actionType"`
	Content    string `json:"content,omitempty"`
	DelayHours int    `json:"delayHours"`
	IsActive   bool   `json:"isActive"`
}

type windowWire struct {
	StartTime      string `json:"startTime"`
	EndTime        string `json:"endTime"`
	Timezone       string `json:"timezone"`
	ActiveWeekdays []int  `json:"activeWeekdays"`
}

type settingsWire struct {
	MaxDailyFollows       int  `json:"maxDailyFollows"`
	MaxDailyMessages      int  `json:"maxDailyMessages"`
	FollowUpDelayHours    int  `json:"followUpDelayHours"`
	RandomizeDelay        bool `json:"randomizeDelay"`
	DelayVariationPercent int  `json:"delayVariationPercent"`
}

type senderWire struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	IsActive bool   `json:"isActive"`
}

type campaignWire struct {
	ID                  string        `json:"id,omitempty"`
	Name                string        `json:"name"`
	Description         string        `json:"description,omitempty"`
	Status              string        `json:"status,omitempty"`
	SelectedInfluencers []creatorWire `json:"selectedInfluencers"`
	MessageSequence     []stepWire    `json:"messageSequence"`
	SenderAccounts      []senderWire  `json:"senderAccounts"`
	OperationalHours    windowWire    `json:"operationalHours"`
	Settings            settingsWire  `json:"settings"`
	CreatedAt           time.Time     `json:"createdAt,omitempty"`
	UpdatedAt           time.Time     `json:"updatedAt,omitempty"`
}

type campaignResponse struct {
	Campaign campaignWire `json:"campaign"`
}

// GetCampaign fetches one record for edit or view hydration
func (g *Campaigns) GetCampaign(ctx context.Context, token, id string) (*domainComposer.Campaign, error) {
	var out campaignResponse
	if err := g.client.do(fasthttp.MethodGet, "/api/campaigns/"+url.PathEscape(id), token, nil, &out); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainComposer.ErrHydrationFailed, err)
	}
	campaign := fromCampaignWire(out.Campaign)
	return &campaign, nil
}

// CreateCampaign submits a fresh draft
func (g *Campaigns) CreateCampaign(ctx context.Context, token string, draft domainComposer.CampaignDraft) (*domainComposer.Campaign, error) {
	var out campaignResponse
	if err := g.client.do(fasthttp.MethodPost, "/api/campaigns", token, toCampaignWire(draft, ""), &out); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainComposer.ErrSubmissionFailed, err)
	}
	campaign := fromCampaignWire(out.Campaign)
	return &campaign, nil
}

// UpdateCampaign replaces an existing record with the edited draft
func (g *Campaigns) UpdateCampaign(ctx context.Context, token, id string, draft domainComposer.CampaignDraft) (*domainComposer.Campaign, error) {
	var out campaignResponse
	if err := g.client.do(fasthttp.MethodPut, "/api/campaigns/"+url.PathEscape(id), token, toCampaignWire(draft, id), &out); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainComposer.ErrSubmissionFailed, err)
	}
	campaign := fromCampaignWire(out.Campaign)
	return &campaign, nil
}

// StartCampaign triggers the backend's draft-to-running transition
func (g *Campaigns) StartCampaign(ctx context.Context, token, id string) error {
	if err := g.client.do(fasthttp.MethodPost, "/api/campaigns/"+url.PathEscape(id)+"/start", token, nil, nil); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return err
		}
		return fmt.Errorf("%w: %v", domainComposer.ErrSubmissionFailed, err)
	}
	return nil
}

func toCampaignWire(draft domainComposer.CampaignDraft, id string) campaignWire {
	wire := campaignWire{
		ID:                  id,
		Name:                draft.Name,
		Description:         draft.Description,
		SelectedInfluencers: make([]creatorWire, 0, len(draft.SelectedUsernames)),
		MessageSequence:     make([]stepWire, 0, len(draft.MessageSequence)),
		SenderAccounts:      make([]senderWire, 0, len(draft.SenderAccounts)),
		OperationalHours: windowWire{
			StartTime:      draft.OperationalWindow.StartTime,
			EndTime:        draft.OperationalWindow.EndTime,
			Timezone:       draft.OperationalWindow.Timezone,
			ActiveWeekdays: draft.OperationalWindow.ActiveWeekdays,
		},
		Settings: settingsWire{
			MaxDailyFollows:       draft.Limits.MaxDailyFollows,
			MaxDailyMessages:      draft.Limits.MaxDailyMessages,
			FollowUpDelayHours:    draft.Limits.FollowUpDelayHours,
			RandomizeDelay:        draft.Limits.RandomizeDelay,
			DelayVariationPercent: draft.Limits.DelayVariationPercent,
		},
	}

	// Serialize selected creators in target order for a stable payload
	for _, username := range draft.TargetUsernames {
		if !draft.SelectedUsernames[username] {
			continue
		}
		profile, ok := draft.ResolvedCreators[username]
		if !ok {
			continue
		}
		wire.SelectedInfluencers = append(wire.SelectedInfluencers, toCreatorWire(profile))
	}
	for _, step := range draft.MessageSequence {
		wire.MessageSequence = append(wire.MessageSequence, stepWire{
			StepNumber: step.StepNumber,
			Order:      step.Order,
			ActionType: string(step.ActionType),
			Content:    step.Content,
			DelayHours: step.DelayHours,
			IsActive:   step.IsActive,
		})
	}
	for _, account := range draft.SenderAccounts {
		if !account.IsActive {
			continue
		}
		wire.SenderAccounts = append(wire.SenderAccounts, senderWire{
			ID:       account.ID,
			Username: account.Username,
			IsActive: account.IsActive,
		})
	}
	return wire
}

func toCreatorWire(profile domainComposer.CreatorProfile) creatorWire {
	followers := profile.FollowersCount
	following := profile.FollowingCount
	media := profile.MediaCount
	engagement := profile.EngagementRate
	likes := profile.AverageLikes
	comments := profile.AverageComments
	verified := profile.IsVerified
	private := profile.IsPrivate

	return creatorWire{
		Username:         profile.Username,
		FullNameCamel:    profile.FullName,
		FollowersCamel:   &followers,
		FollowingCamel:   &following,
		MediaCamel:       &media,
		EngagementCamel:  &engagement,
		AvgLikesCamel:    &likes,
		AvgCommentsCamel: &comments,
		IsVerifiedCamel:  &verified,
		IsPrivateCamel:   &private,
	}
}

func fromCampaignWire(wire campaignWire) domainComposer.Campaign {
	campaign := domainComposer.Campaign{
		ID:          wire.ID,
		Name:        wire.Name,
		Description: wire.Description,
		Status:      wire.Status,
		OperationalWindow: domainComposer.OperationalWindow{
			StartTime:      wire.OperationalHours.StartTime,
			EndTime:        wire.OperationalHours.EndTime,
			Timezone:       wire.OperationalHours.Timezone,
			ActiveWeekdays: wire.OperationalHours.ActiveWeekdays,
		},
		Limits: domainComposer.Limits{
			MaxDailyFollows:       wire.Settings.MaxDailyFollows,
			MaxDailyMessages:      wire.Settings.MaxDailyMessages,
			FollowUpDelayHours:    wire.Settings.FollowUpDelayHours,
			RandomizeDelay:        wire.Settings.RandomizeDelay,
			DelayVariationPercent: wire.Settings.DelayVariationPercent,
		},
		CreatedAt: wire.CreatedAt,
		UpdatedAt: wire.UpdatedAt,
	}
	for _, creator := range wire.SelectedInfluencers {
		profile := normalizeCreator(creator)
		if profile.Username == "" {
			continue
		}
		campaign.SelectedCreators = append(campaign.SelectedCreators, profile)
	}
	for i, step := range wire.MessageSequence {
		order := step.Order
		if order == 0 {
			order = i + 1
		}
		campaign.MessageSequence = append(campaign.MessageSequence, domainComposer.SequenceStep{
			StepNumber: step.StepNumber,
			Order:      order,
			ActionType: domainComposer.ActionType(strings.ToLower(step.ActionType)),
			Content:    step.Content,
			DelayHours: step.DelayHours,
			IsActive:   step.IsActive,
		})
	}
	for _, account := range wire.SenderAccounts {
		campaign.SenderAccounts = append(campaign.SenderAccounts, domainComposer.SenderAccount{
			ID:       account.ID,
			Username: account.Username,
			IsActive: account.IsActive,
		})
	}
	return campaign
}
