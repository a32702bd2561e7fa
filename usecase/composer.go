package usecase

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
	"github.com/Nirvanjha2004/outreach-composer/pkg/ingest"
	"github.com/Nirvanjha2004/outreach-composer/validations"
)

// ComposerService implements IComposerUsecase
type ComposerService struct {
	store     domainComposer.ISessionStore
	lookup    domainComposer.ICreatorLookup
	campaigns domainComposer.ICampaignGateway
	accounts  domainComposer.IAccountDirectory
	identity  domainComposer.IIdentityGateway
}

// NewComposerService creates a new composer service
func NewComposerService(
	store domainComposer.ISessionStore,
	lookup domainComposer.ICreatorLookup,
	campaigns domainComposer.ICampaignGateway,
	accounts domainComposer.IAccountDirectory,
	identity domainComposer.IIdentityGateway,
) *ComposerService {
	return &ComposerService{
		store:     store,
		lookup:    lookup,
		campaigns: campaigns,
		accounts:  accounts,
		identity:  identity,
	}
}

// ============================================================================
// Session Lifecycle
// ============================================================================

func (s *ComposerService) OpenSession(ctx context.Context, req domainComposer.OpenSessionRequest) (*domainComposer.SessionView, error) {
	if err := validations.ValidateOpenSession(req); err != nil {
		return nil, err
	}

	operator, err := s.identity.ValidateToken(ctx, req.Token)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	sess := &domainComposer.Session{
		ID:             uuid.New(),
		Mode:           domainComposer.SessionModeCompose,
		Step:           domainComposer.StepBasicInfoAndCreators,
		Draft:          domainComposer.NewDraft(),
		Token:          req.Token,
		WorkspaceEmail: operator.WorkspaceEmail,
		NextStepNumber: 3,
		CreatedAt:      now,
		LastActive:     now,
	}
	if req.ViewMode {
		sess.Mode = domainComposer.SessionModeView
	}

	if req.CampaignID != "" {
		record, err := s.campaigns.GetCampaign(ctx, req.Token, req.CampaignID)
		if err != nil {
			return nil, err
		}
		hydrateDraft(sess, record)
	}

	// Best effort at open; the sender step has an explicit refresh
	if accounts, err := s.accounts.ListAccounts(ctx, req.Token, operator.WorkspaceEmail); err != nil {
		logrus.WithField("error", err.Error()).Warn("Composer: Failed to fetch sender accounts at session open")
	} else {
		mergeAccounts(&sess.Draft, accounts)
	}

	s.store.Put(sess)

	logrus.WithFields(logrus.Fields{
		"session_id":  sess.ID,
		"mode":        sess.Mode,
		"campaign_id": req.CampaignID,
		"operator":    operator.Email,
	}).Info("Composer: Session opened")

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	return viewOf(sess), nil
}

func (s *ComposerService) GetSession(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	sess.Touch()
	return viewOf(sess), nil
}

func (s *ComposerService) CloseSession(ctx context.Context, id uuid.UUID) error {
	if _, err := s.session(id); err != nil {
		return err
	}
	s.store.Delete(id)

	logrus.WithField("session_id", id).Info("Composer: Session closed")
	return nil
}

// ============================================================================
// Target Ingestion & Resolution
// ============================================================================

func (s *ComposerService) ImportTargetsFromFile(ctx context.Context, id uuid.UUID, filename string, data []byte) (*domainComposer.SessionView, error) {
	return s.importTargets(ctx, id, func() ([]string, error) {
		return ingest.IngestFile(filename, data)
	})
}

func (s *ComposerService) ImportTargetsFromText(ctx context.Context, id uuid.UUID, raw string) (*domainComposer.SessionView, error) {
	if err := validations.ValidatePasteTargets(domainComposer.PasteTargetsRequest{Text: raw}); err != nil {
		return nil, err
	}
	return s.importTargets(ctx, id, func() ([]string, error) {
		return ingest.Ingest(raw)
	})
}

func (s *ComposerService) importTargets(ctx context.Context, id uuid.UUID, parse func() ([]string, error)) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	if sess.Mode == domainComposer.SessionModeView {
		sess.Mu.Unlock()
		return nil, domainComposer.ErrViewOnly
	}

	// Ingest failures leave the previous draft untouched
	handles, err := parse()
	if err != nil {
		sess.Mu.Unlock()
		return nil, err
	}

	sess.Draft.TargetUsernames = handles
	sess.Draft.ResolvedCreators = make(map[string]domainComposer.CreatorProfile)
	sess.Draft.SelectedUsernames = make(map[string]bool)
	sess.Draft.FailedUsernames = nil
	seq := beginResolution(sess)
	token := sess.Token
	sess.Touch()
	sess.Mu.Unlock()

	logrus.WithFields(logrus.Fields{
		"session_id": id,
		"targets":    len(handles),
	}).Info("Composer: Targets imported, resolving")

	result, lookupErr := s.lookup.BatchUserDetails(ctx, token, handles)
	return s.applyResolution(id, seq, result, lookupErr)
}

func (s *ComposerService) ResolveTargets(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	if sess.Mode == domainComposer.SessionModeView {
		sess.Mu.Unlock()
		return nil, domainComposer.ErrViewOnly
	}
	if len(sess.Draft.TargetUsernames) == 0 {
		sess.Mu.Unlock()
		return nil, domainComposer.ErrNoTargets
	}
	handles := append([]string(nil), sess.Draft.TargetUsernames...)
	seq := beginResolution(sess)
	token := sess.Token
	sess.Touch()
	sess.Mu.Unlock()

	result, lookupErr := s.lookup.BatchUserDetails(ctx, token, handles)
	return s.applyResolution(id, seq, result, lookupErr)
}

// beginResolution allocates the supersession token; caller holds the session lock
func beginResolution(sess *domainComposer.Session) uint64 {
	sess.ResolveSeq++
	sess.Resolving = true
	return sess.ResolveSeq
}

// applyResolution applies a lookup outcome unless a newer request superseded
// it or the session is gone
func (s *ComposerService) applyResolution(id uuid.UUID, seq uint64, result *domainComposer.ResolutionResult, lookupErr error) (*domainComposer.SessionView, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		logrus.WithField("session_id", id).Info("Composer: Dropping resolution response for closed session")
		return nil, domainComposer.ErrSessionNotFound
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	if sess.ResolveSeq != seq {
		logrus.WithFields(logrus.Fields{
			"session_id": id,
			"stale_seq":  seq,
			"active_seq": sess.ResolveSeq,
		}).Info("Composer: Dropping superseded resolution response")
		return viewOf(sess), nil
	}

	sess.Resolving = false
	sess.Touch()

	if lookupErr != nil {
		// Targets stay in place so the operator can retry without re-uploading
		return nil, lookupErr
	}

	targets := make(map[string]struct{}, len(sess.Draft.TargetUsernames))
	for _, username := range sess.Draft.TargetUsernames {
		targets[username] = struct{}{}
	}

	resolved := make(map[string]domainComposer.CreatorProfile, len(result.Resolved))
	selected := make(map[string]bool, len(result.Resolved))
	for username, profile := range result.Resolved {
		if _, requested := targets[username]; !requested {
			continue
		}
		resolved[username] = profile
		selected[username] = true
	}

	sess.Draft.ResolvedCreators = resolved
	sess.Draft.SelectedUsernames = selected
	sess.Draft.FailedUsernames = result.Failed

	logrus.WithFields(logrus.Fields{
		"session_id": id,
		"resolved":   len(resolved),
		"failed":     len(result.Failed),
	}).Info("Composer: Targets resolved")

	return viewOf(sess), nil
}

func (s *ComposerService) ClearTargets(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	sess.Draft.TargetUsernames = nil
	sess.Draft.ResolvedCreators = make(map[string]domainComposer.CreatorProfile)
	sess.Draft.SelectedUsernames = make(map[string]bool)
	sess.Draft.FailedUsernames = nil
	// Invalidate any in-flight lookup so its response is discarded
	sess.ResolveSeq++
	sess.Resolving = false
	sess.Touch()

	return viewOf(sess), nil
}

// ============================================================================
// Creator Selection
// ============================================================================

func (s *ComposerService) ListCreators(ctx context.Context, id uuid.UUID, search string) ([]domainComposer.CreatorProfile, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	query := strings.ToLower(strings.TrimSpace(search))
	creators := make([]domainComposer.CreatorProfile, 0, len(sess.Draft.ResolvedCreators))
	for _, username := range sess.Draft.TargetUsernames {
		profile, ok := sess.Draft.ResolvedCreators[username]
		if !ok {
			continue
		}
		if query != "" &&
			!strings.Contains(strings.ToLower(profile.Username), query) &&
			!strings.Contains(strings.ToLower(profile.FullName), query) {
			continue
		}
		creators = append(creators, profile)
	}
	return creators, nil
}

func (s *ComposerService) ToggleCreator(ctx context.Context, id uuid.UUID, username string) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	username = strings.ToLower(strings.TrimSpace(username))
	if _, ok := sess.Draft.ResolvedCreators[username]; !ok {
		return nil, domainComposer.ErrCreatorNotFound
	}

	if sess.Draft.SelectedUsernames[username] {
		delete(sess.Draft.SelectedUsernames, username)
	} else {
		sess.Draft.SelectedUsernames[username] = true
	}
	sess.Touch()

	return viewOf(sess), nil
}

func (s *ComposerService) SelectAllCreators(ctx context.Context, id uuid.UUID, selected bool) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	sess.Draft.SelectedUsernames = make(map[string]bool, len(sess.Draft.ResolvedCreators))
	if selected {
		for username := range sess.Draft.ResolvedCreators {
			sess.Draft.SelectedUsernames[username] = true
		}
	}
	sess.Touch()

	return viewOf(sess), nil
}

// ============================================================================
// Message Sequence
// ============================================================================

func (s *ComposerService) AddStep(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	step := domainComposer.SequenceStep{
		StepNumber: sess.NextStepNumber,
		Order:      len(sess.Draft.MessageSequence) + 1,
		ActionType: domainComposer.ActionMessage,
		DelayHours: 24,
		IsActive:   true,
	}
	sess.NextStepNumber++
	sess.Draft.MessageSequence = append(sess.Draft.MessageSequence, step)
	sess.Touch()

	return viewOf(sess), nil
}

func (s *ComposerService) EditStep(ctx context.Context, id uuid.UUID, req domainComposer.EditStepRequest) (*domainComposer.SessionView, error) {
	if err := validations.ValidateEditStep(req); err != nil {
		return nil, err
	}

	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	idx := stepIndex(sess.Draft.MessageSequence, req.StepNumber)
	if idx < 0 {
		return nil, domainComposer.ErrStepNotFound
	}
	step := &sess.Draft.MessageSequence[idx]

	if req.ActionType != nil {
		step.ActionType = domainComposer.ActionType(strings.ToLower(*req.ActionType))
	}
	if req.Content != nil {
		step.Content = *req.Content
	}
	if req.IsActive != nil {
		step.IsActive = *req.IsActive
	}
	if req.DelayHours != nil {
		step.DelayHours = *req.DelayHours
	}

	// Compliance floor, clamped silently: the opening follow may fire
	// immediately, everything else waits at least 3 hours
	floor := 3
	if idx == 0 && step.ActionType == domainComposer.ActionFollow {
		floor = 0
	}
	if step.DelayHours < floor {
		step.DelayHours = floor
	}
	sess.Touch()

	return viewOf(sess), nil
}

func (s *ComposerService) RemoveStep(ctx context.Context, id uuid.UUID, stepNumber int) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	if len(sess.Draft.MessageSequence) <= 1 {
		return nil, domainComposer.ErrLastStep
	}
	idx := stepIndex(sess.Draft.MessageSequence, stepNumber)
	if idx < 0 {
		return nil, domainComposer.ErrStepNotFound
	}

	sess.Draft.MessageSequence = append(sess.Draft.MessageSequence[:idx], sess.Draft.MessageSequence[idx+1:]...)
	for i := range sess.Draft.MessageSequence {
		sess.Draft.MessageSequence[i].Order = i + 1
	}
	sess.Touch()

	return viewOf(sess), nil
}

func stepIndex(sequence []domainComposer.SequenceStep, stepNumber int) int {
	for i, step := range sequence {
		if step.StepNumber == stepNumber {
			return i
		}
	}
	return -1
}

// ============================================================================
// Sender Accounts
// ============================================================================

func (s *ComposerService) RefreshAccounts(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	if sess.Mode == domainComposer.SessionModeView {
		sess.Mu.Unlock()
		return nil, domainComposer.ErrViewOnly
	}
	token := sess.Token
	workspace := sess.WorkspaceEmail
	sess.Mu.Unlock()

	accounts, err := s.accounts.ListAccounts(ctx, token, workspace)
	if err != nil {
		return nil, err
	}

	sess, err = s.session(id)
	if err != nil {
		return nil, err
	}
	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	mergeAccounts(&sess.Draft, accounts)
	sess.Touch()

	return viewOf(sess), nil
}

func (s *ComposerService) ToggleAccount(ctx context.Context, id uuid.UUID, accountID string) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}

	for i := range sess.Draft.SenderAccounts {
		if sess.Draft.SenderAccounts[i].ID == accountID {
			sess.Draft.SenderAccounts[i].IsActive = !sess.Draft.SenderAccounts[i].IsActive
			sess.Touch()
			return viewOf(sess), nil
		}
	}
	return nil, domainComposer.ErrAccountNotFound
}

// mergeAccounts replaces the draft's account list with the directory's,
// preserving activation the operator already made
func mergeAccounts(draft *domainComposer.CampaignDraft, fetched []domainComposer.SenderAccount) {
	known := make(map[string]bool, len(draft.SenderAccounts))
	for _, account := range draft.SenderAccounts {
		known[account.ID] = account.IsActive
	}

	merged := make([]domainComposer.SenderAccount, 0, len(fetched))
	for _, account := range fetched {
		if active, seen := known[account.ID]; seen {
			account.IsActive = active
		}
		merged = append(merged, account)
	}
	draft.SenderAccounts = merged
}

// ============================================================================
// Basics, Scheduling, Limits
// ============================================================================

func (s *ComposerService) UpdateBasics(ctx context.Context, id uuid.UUID, req domainComposer.BasicsRequest) (*domainComposer.SessionView, error) {
	if err := validations.ValidateBasics(req); err != nil {
		return nil, err
	}
	return s.mutate(id, func(sess *domainComposer.Session) error {
		sess.Draft.Name = strings.TrimSpace(req.Name)
		sess.Draft.Description = strings.TrimSpace(req.Description)
		return nil
	})
}

func (s *ComposerService) UpdateSchedule(ctx context.Context, id uuid.UUID, req domainComposer.ScheduleRequest) (*domainComposer.SessionView, error) {
	if err := validations.ValidateSchedule(req); err != nil {
		return nil, err
	}
	return s.mutate(id, func(sess *domainComposer.Session) error {
		sess.Draft.OperationalWindow = domainComposer.OperationalWindow{
			StartTime:      req.StartTime,
			EndTime:        req.EndTime,
			Timezone:       req.Timezone,
			ActiveWeekdays: req.ActiveWeekdays,
		}
		return nil
	})
}

func (s *ComposerService) UpdateLimits(ctx context.Context, id uuid.UUID, req domainComposer.LimitsRequest) (*domainComposer.SessionView, error) {
	if err := validations.ValidateLimits(req); err != nil {
		return nil, err
	}
	return s.mutate(id, func(sess *domainComposer.Session) error {
		sess.Draft.Limits = domainComposer.Limits{
			MaxDailyFollows:       req.MaxDailyFollows,
			MaxDailyMessages:      req.MaxDailyMessages,
			FollowUpDelayHours:    req.FollowUpDelayHours,
			RandomizeDelay:        req.RandomizeDelay,
			DelayVariationPercent: req.DelayVariationPercent,
		}
		return nil
	})
}

// mutate runs fn under the session lock, rejecting view-only sessions
func (s *ComposerService) mutate(id uuid.UUID, fn func(*domainComposer.Session) error) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()
	if sess.Mode == domainComposer.SessionModeView {
		return nil, domainComposer.ErrViewOnly
	}
	if err := fn(sess); err != nil {
		return nil, err
	}
	sess.Touch()
	return viewOf(sess), nil
}

// ============================================================================
// Navigation & Submission
// ============================================================================

func (s *ComposerService) Advance(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	if sess.Step >= domainComposer.StepReviewAndLaunch {
		return nil, fmt.Errorf("%w: already at the review step", domainComposer.ErrStepBlocked)
	}
	if sess.Mode == domainComposer.SessionModeCompose {
		if err := advanceGate(sess); err != nil {
			return nil, err
		}
	}
	sess.Step++
	sess.Touch()

	logrus.WithFields(logrus.Fields{
		"session_id": sess.ID,
		"step":       sess.Step.String(),
	}).Info("Composer: Advanced step")

	return viewOf(sess), nil
}

func (s *ComposerService) Back(ctx context.Context, id uuid.UUID) (*domainComposer.SessionView, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	defer sess.Mu.Unlock()

	if sess.Step > domainComposer.StepBasicInfoAndCreators {
		sess.Step--
	}
	sess.Touch()

	return viewOf(sess), nil
}

// advanceGate enforces the forward-navigation requirements; caller holds
// the session lock
func advanceGate(sess *domainComposer.Session) error {
	draft := &sess.Draft

	switch sess.Step {
	case domainComposer.StepBasicInfoAndCreators:
		if strings.TrimSpace(draft.Name) == "" {
			return fmt.Errorf("%w: campaign name is required", domainComposer.ErrStepBlocked)
		}
		if len(draft.TargetUsernames) == 0 {
			return fmt.Errorf("%w: at least one target username is required", domainComposer.ErrStepBlocked)
		}
		if len(draft.ResolvedCreators) > 0 && len(draft.SelectedUsernames) == 0 {
			return fmt.Errorf("%w: select at least one creator", domainComposer.ErrStepBlocked)
		}
	case domainComposer.StepSenderAccounts:
		if countActive(draft.SenderAccounts) == 0 {
			return fmt.Errorf("%w: activate at least one sender account", domainComposer.ErrStepBlocked)
		}
	}
	return nil
}

func countActive(accounts []domainComposer.SenderAccount) int {
	active := 0
	for _, account := range accounts {
		if account.IsActive {
			active++
		}
	}
	return active
}

func (s *ComposerService) Submit(ctx context.Context, id uuid.UUID, launch bool) (*domainComposer.Campaign, error) {
	sess, err := s.session(id)
	if err != nil {
		return nil, err
	}

	sess.Mu.Lock()
	if sess.Mode == domainComposer.SessionModeView {
		sess.Mu.Unlock()
		return nil, domainComposer.ErrViewOnly
	}
	if sess.Step != domainComposer.StepReviewAndLaunch {
		sess.Mu.Unlock()
		return nil, fmt.Errorf("%w: submit is only available at the review step", domainComposer.ErrStepBlocked)
	}
	if sess.Submitting {
		sess.Mu.Unlock()
		return nil, fmt.Errorf("%w: a submission is already in flight", domainComposer.ErrStepBlocked)
	}
	if err := validateDraftForSubmit(&sess.Draft); err != nil {
		sess.Mu.Unlock()
		return nil, err
	}
	sess.Submitting = true
	token := sess.Token
	campaignID := sess.CampaignID
	draft := cloneDraft(sess.Draft)
	sess.Mu.Unlock()

	var record *domainComposer.Campaign
	if campaignID == "" {
		record, err = s.campaigns.CreateCampaign(ctx, token, draft)
	} else {
		record, err = s.campaigns.UpdateCampaign(ctx, token, campaignID, draft)
	}
	if err == nil && launch {
		err = s.campaigns.StartCampaign(ctx, token, record.ID)
	}

	if err != nil {
		// The session stays at review with everything intact for a retry.
		// If the record was persisted but the launch failed, retries update
		// it instead of creating a duplicate.
		if sess, ok := s.store.Get(id); ok {
			sess.Mu.Lock()
			sess.Submitting = false
			if record != nil && sess.CampaignID == "" {
				sess.CampaignID = record.ID
			}
			sess.Touch()
			sess.Mu.Unlock()
		}
		return nil, err
	}

	s.store.Delete(id)

	logrus.WithFields(logrus.Fields{
		"session_id":  id,
		"campaign_id": record.ID,
		"launched":    launch,
	}).Info("Composer: Campaign submitted")

	return record, nil
}

func validateDraftForSubmit(draft *domainComposer.CampaignDraft) error {
	if strings.TrimSpace(draft.Name) == "" {
		return fmt.Errorf("%w: campaign name is required", domainComposer.ErrStepBlocked)
	}
	if len(draft.TargetUsernames) == 0 {
		return fmt.Errorf("%w: at least one target username is required", domainComposer.ErrStepBlocked)
	}
	if len(draft.SelectedUsernames) == 0 {
		return fmt.Errorf("%w: select at least one creator", domainComposer.ErrStepBlocked)
	}
	if len(draft.MessageSequence) == 0 {
		return fmt.Errorf("%w: message sequence must not be empty", domainComposer.ErrStepBlocked)
	}
	for _, step := range draft.MessageSequence {
		if step.IsActive && step.ActionType == domainComposer.ActionMessage && strings.TrimSpace(step.Content) == "" {
			return fmt.Errorf("%w: message step %d has no content", domainComposer.ErrStepBlocked, step.StepNumber)
		}
	}
	if countActive(draft.SenderAccounts) == 0 {
		return fmt.Errorf("%w: activate at least one sender account", domainComposer.ErrStepBlocked)
	}
	return nil
}

// ============================================================================
// Helpers
// ============================================================================

func (s *ComposerService) SampleCSV() string {
	return "username\njohndoe\njanedoe\n@creator_handle\nhttps://instagram.com/another_creator\n"
}

func (s *ComposerService) StartSessionJanitor(ctx context.Context) {
	s.store.StartJanitor(ctx)
}

func (s *ComposerService) StopSessionJanitor() {
	s.store.StopJanitor()
}

func (s *ComposerService) session(id uuid.UUID) (*domainComposer.Session, error) {
	sess, ok := s.store.Get(id)
	if !ok {
		return nil, domainComposer.ErrSessionNotFound
	}
	return sess, nil
}

// hydrateDraft loads an existing record into a fresh session for edit or view
func hydrateDraft(sess *domainComposer.Session, record *domainComposer.Campaign) {
	sess.CampaignID = record.ID
	draft := &sess.Draft

	draft.Name = record.Name
	draft.Description = record.Description
	draft.TargetUsernames = nil
	draft.ResolvedCreators = make(map[string]domainComposer.CreatorProfile, len(record.SelectedCreators))
	draft.SelectedUsernames = make(map[string]bool, len(record.SelectedCreators))
	for _, creator := range record.SelectedCreators {
		draft.TargetUsernames = append(draft.TargetUsernames, creator.Username)
		draft.ResolvedCreators[creator.Username] = creator
		draft.SelectedUsernames[creator.Username] = true
	}

	if len(record.MessageSequence) > 0 {
		draft.MessageSequence = append([]domainComposer.SequenceStep(nil), record.MessageSequence...)
		next := 1
		for i := range draft.MessageSequence {
			draft.MessageSequence[i].Order = i + 1
			if draft.MessageSequence[i].StepNumber >= next {
				next = draft.MessageSequence[i].StepNumber + 1
			}
		}
		sess.NextStepNumber = next
	}
	if len(record.SenderAccounts) > 0 {
		draft.SenderAccounts = append([]domainComposer.SenderAccount(nil), record.SenderAccounts...)
	}
	if record.OperationalWindow.StartTime != "" {
		draft.OperationalWindow = record.OperationalWindow
	}
	if record.Limits.MaxDailyFollows > 0 {
		draft.Limits = record.Limits
	}
}

// viewOf builds the read model; caller holds the session lock. The draft is
// deep-copied so rendering never races a late resolution write.
func viewOf(sess *domainComposer.Session) *domainComposer.SessionView {
	draft := cloneDraft(sess.Draft)
	failed := draft.FailedUsernames
	if failed == nil {
		failed = []string{}
	}

	return &domainComposer.SessionView{
		ID:              sess.ID,
		Mode:            sess.Mode,
		Step:            sess.Step,
		StepName:        sess.Step.String(),
		CampaignID:      sess.CampaignID,
		Draft:           draft,
		Resolving:       sess.Resolving,
		Submitting:      sess.Submitting,
		SelectedCount:   len(draft.SelectedUsernames),
		ResolvedCount:   len(draft.ResolvedCreators),
		FailedUsernames: failed,
	}
}

func cloneDraft(draft domainComposer.CampaignDraft) domainComposer.CampaignDraft {
	out := draft
	out.TargetUsernames = append([]string(nil), draft.TargetUsernames...)
	out.FailedUsernames = append([]string(nil), draft.FailedUsernames...)
	out.MessageSequence = append([]domainComposer.SequenceStep(nil), draft.MessageSequence...)
	out.SenderAccounts = append([]domainComposer.SenderAccount(nil), draft.SenderAccounts...)
	out.OperationalWindow.ActiveWeekdays = append([]int(nil), draft.OperationalWindow.ActiveWeekdays...)

	out.ResolvedCreators = make(map[string]domainComposer.CreatorProfile, len(draft.ResolvedCreators))
	for username, profile := range draft.ResolvedCreators {
		out.ResolvedCreators[username] = profile
	}
	out.SelectedUsernames = make(map[string]bool, len(draft.SelectedUsernames))
	for username := range draft.SelectedUsernames {
		out.SelectedUsernames[username] = true
	}
	return out
}
