package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/valyala/fasthttp"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// Lookup resolves usernames through the creator lookup service
type Lookup struct {
	client *Client
}

// NewLookup creates the creator lookup gateway
func NewLookup(client *Client) *Lookup {
	return &Lookup{client: client}
}

// creatorWire tolerates both field-naming conventions the backend emits.
// Snake_case carries engagement as a 0..1 fraction, camelCase as a percent.
type creatorWire struct {
	Username string `json:"username"`

	FullName      string `json:"full_name"`
	FullNameCamel string `json:"fullName"`

	FollowersCount *int `json:"followers_count"`
	FollowersCamel *int `json:"followersCount"`
	FollowingCount *int `json:"following_count"`
	FollowingCamel *int `json:"followingCount"`
	MediaCount     *int `json:"media_count"`
	MediaCamel     *int `json:"mediaCount"`

	EngagementRate  *float64 `json:"engagement_rate"`
	EngagementCamel *float64 `json:"engagementRate"`

	AvgLikes         *float64 `json:"avg_likes"`
	AvgLikesCamel    *float64 `json:"averageLikes"`
	AvgComments      *float64 `json:"avg_comments"`
	AvgCommentsCamel *float64 `json:"averageComments"`

	IsVerified      *bool `json:"is_verified"`
	IsVerifiedCamel *bool `json:"isVerified"`
	IsPrivate       *bool `json:"is_private"`
	IsPrivateCamel  *bool `json:"isPrivate"`
}

type batchUserDetailsResponse struct {
	Users           []creatorWire `json:"users"`
	FailedUsernames []string      `json:"failedUsernames"`
	TotalSuccess    int           `json:"totalSuccess"`
	TotalFailed     int           `json:"totalFailed"`
}

// BatchUserDetails resolves all usernames in one call. Partial failures are
// reported in the result; transport failures become ErrLookupUnavailable.
func (l *Lookup) BatchUserDetails(ctx context.Context, token string, usernames []string) (*domainComposer.ResolutionResult, error) {
	body := map[string][]string{"usernames": usernames}

	var out batchUserDetailsResponse
	if err := l.client.do(fasthttp.MethodPost, "/api/campaigns/batch-user-details", token, body, &out); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainComposer.ErrLookupUnavailable, err)
	}

	result := &domainComposer.ResolutionResult{
		Resolved:     make(map[string]domainComposer.CreatorProfile, len(out.Users)),
		Failed:       out.FailedUsernames,
		TotalSuccess: out.TotalSuccess,
		TotalFailed:  out.TotalFailed,
	}
	if result.Failed == nil {
		result.Failed = []string{}
	}
	for _, wire := range out.Users {
		profile := normalizeCreator(wire)
		if profile.Username == "" {
			continue
		}
		result.Resolved[profile.Username] = profile
	}
	return result, nil
}

// normalizeCreator collapses the alternate wire shapes into the canonical
// profile; nothing past this boundary sees the raw payload
func normalizeCreator(wire creatorWire) domainComposer.CreatorProfile {
	engagement := 0.0
	switch {
	case wire.EngagementRate != nil:
		engagement = *wire.EngagementRate * 100
	case wire.EngagementCamel != nil:
		engagement = *wire.EngagementCamel
	}

	return domainComposer.CreatorProfile{
		Username:        strings.ToLower(wire.Username),
		FullName:        pickString(wire.FullName, wire.FullNameCamel),
		FollowersCount:  pickInt(wire.FollowersCount, wire.FollowersCamel),
		FollowingCount:  pickInt(wire.FollowingCount, wire.FollowingCamel),
		MediaCount:      pickInt(wire.MediaCount, wire.MediaCamel),
		EngagementRate:  engagement,
		AverageLikes:    pickFloat(wire.AvgLikes, wire.AvgLikesCamel),
		AverageComments: pickFloat(wire.AvgComments, wire.AvgCommentsCamel),
		IsVerified:      pickBool(wire.IsVerified, wire.IsVerifiedCamel),
		IsPrivate:       pickBool(wire.IsPrivate, wire.IsPrivateCamel),
		EnrichedAt:      time.Now(),
	}
}

func pickString(snake, camel string) string {
	if snake != "" {
		return snake
	}
	return camel
}

func pickInt(snake, camel *int) int {
	if snake != nil {
		return *snake
	}
	if camel != nil {
		return *camel
	}
	return 0
}

func pickFloat(snake, camel *float64) float64 {
	if snake != nil {
		return *snake
	}
	if camel != nil {
		return *camel
	}
	return 0
}

func pickBool(snake, camel *bool) bool {
	if snake != nil {
		return *snake
	}
	if camel != nil {
		return *camel
	}
	return false
}
