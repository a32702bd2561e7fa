package composer

// OpenSessionRequest starts a wizard session, empty or hydrated from an
// existing campaign record
type OpenSessionRequest struct {
	Token      string `json:"-"` // Set from Authorization header
	CampaignID string `json:"campaign_id" form:"campaign_id"`
	ViewMode   bool   `json:"view_mode" form:"view_mode"`
}

// PasteTargetsRequest carries pasted username text
type PasteTargetsRequest struct {
	Text string `json:"text" form:"text"`
}

// BasicsRequest updates name and description
type BasicsRequest struct {
	Name        string `json:"name" form:"name"`
	Description string `json:"description" form:"description"`
}

// ToggleCreatorRequest flips one creator's selection
type ToggleCreatorRequest struct {
	Username string `json:"username" form:"username"`
}

// SelectAllRequest selects or deselects every resolved creator
type SelectAllRequest struct {
	Selected bool `json:"selected" form:"selected"`
}

// EditStepRequest updates one sequence step; nil fields are left unchanged
type EditStepRequest struct {
	StepNumber int     `json:"-"`
	ActionType *string `json:"action_type"`
	Content    *string `json:"content"`
	DelayHours *int    `json:"delay_hours"`
	IsActive   *bool   `json:"is_active"`
}

// ToggleAccountRequest flips one sender account's active flag
type ToggleAccountRequest struct {
	AccountID string `json:"account_id" form:"account_id"`
}

// ScheduleRequest updates the operational window
type ScheduleRequest struct {
	StartTime      string `json:"start_time" form:"start_time"`
	EndTime        string `json:"end_time" form:"end_time"`
	Timezone       string `json:"timezone" form:"timezone"`
	ActiveWeekdays []int  `json:"active_weekdays" form:"active_weekdays"`
}

// LimitsRequest updates the pacing limits
type LimitsRequest struct {
	MaxDailyFollows       int  `json:"max_daily_follows" form:"max_daily_follows"`
	MaxDailyMessages      int  `json:"max_daily_messages" form:"max_daily_messages"`
	FollowUpDelayHours    int  `json:"follow_up_delay_hours" form:"follow_up_delay_hours"`
	RandomizeDelay        bool `json:"randomize_delay" form:"randomize_delay"`
	DelayVariationPercent int  `json:"delay_variation_percent" form:"delay_variation_percent"`
}

// SubmitRequest finalizes the session; Launch also starts the campaign
type SubmitRequest struct {
	Launch bool `json:"launch" form:"launch"`
}
