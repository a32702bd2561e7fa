package validations

import (
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// ValidationError marks request validation failures so the REST layer can
// map them to a 400
type ValidationError struct {
	Message string
}

func (e ValidationError) Error() string {
	return e.Message
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return ValidationError{Message: err.Error()}
}

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):[0-5][0-9]$`)

func ValidateOpenSession(request domainComposer.OpenSessionRequest) error {
	return wrap(validation.ValidateStruct(&request,
		validation.Field(&request.Token, validation.Required),
		validation.Field(&request.CampaignID,
			validation.Required.When(request.ViewMode).Error("view mode requires a campaign id")),
	))
}

func ValidatePasteTargets(request domainComposer.PasteTargetsRequest) error {
	return wrap(validation.ValidateStruct(&request,
		validation.Field(&request.Text, validation.Required),
	))
}

func ValidateBasics(request domainComposer.BasicsRequest) error {
	return wrap(validation.ValidateStruct(&request,
		validation.Field(&request.Name, validation.Required, validation.Length(1, 120)),
		validation.Field(&request.Description, validation.Length(0, 2000)),
	))
}

func ValidateEditStep(request domainComposer.EditStepRequest) error {
	return wrap(validation.ValidateStruct(&request,
		validation.Field(&request.ActionType,
			validation.In(
				string(domainComposer.ActionFollow),
				string(domainComposer.ActionMessage),
				string(domainComposer.ActionUnfollow),
			)),
		validation.Field(&request.DelayHours, validation.Max(24*30)),
	))
}

func ValidateSchedule(request domainComposer.ScheduleRequest) error {
	return wrap(validation.ValidateStruct(&request,
		validation.Field(&request.StartTime, validation.Required,
			validation.Match(clockPattern).Error("must be HH:MM")),
		validation.Field(&request.EndTime, validation.Required,
			validation.Match(clockPattern).Error("must be HH:MM")),
		validation.Field(&request.Timezone, validation.Required),
		validation.Field(&request.ActiveWeekdays, validation.Required,
			validation.Each(validation.Min(0), validation.Max(6))),
	))
}

func ValidateLimits(request domainComposer.LimitsRequest) error {
	return wrap(validation.ValidateStruct(&request,
		validation.Field(&request.MaxDailyFollows, validation.Required, validation.Min(1), validation.Max(200)),
		validation.Field(&request.MaxDailyMessages, validation.Required, validation.Min(1), validation.Max(200)),
		validation.Field(&request.FollowUpDelayHours, validation.Min(0), validation.Max(24*30)),
		validation.Field(&request.DelayVariationPercent, validation.Min(0), validation.Max(100)),
	))
}
