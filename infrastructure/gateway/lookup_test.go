package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

func TestBatchUserDetailsNormalizesBothCasings(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/campaigns/batch-user-details", r.URL.Path)
		require.Equal(t, "Bearer tok", r.Header.Get("Authorization"))

		var body map[string][]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Equal(t, []string{"johndoe", "janedoe", "ghost"}, body["usernames"])

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {
				"users": [
					{
						"username": "johndoe",
						"full_name": "John Doe",
						"followers_count": 12000,
						"following_count": 300,
						"media_count": 80,
						"engagement_rate": 0.045,
						"avg_likes": 540,
						"avg_comments": 22,
						"is_verified": true,
						"is_private": false
					},
					{
						"username": "JaneDoe",
						"fullName": "Jane Doe",
						"followersCount": 8000,
						"followingCount": 150,
						"mediaCount": 45,
						"engagementRate": 3.2,
						"averageLikes": 260,
						"averageComments": 14,
						"isVerified": false,
						"isPrivate": true
					}
				],
				"failedUsernames": ["ghost"],
				"totalSuccess": 2,
				"totalFailed": 1
			}
		}`))
	}))
	defer server.Close()

	lookup := NewLookup(NewClient(server.URL, 5*time.Second))
	result, err := lookup.BatchUserDetails(context.Background(), "tok", []string{"johndoe", "janedoe", "ghost"})
	require.NoError(t, err)

	require.Len(t, result.Resolved, 2)
	assert.Equal(t, []string{"ghost"}, result.Failed)
	assert.Equal(t, 2, result.TotalSuccess)
	assert.Equal(t, 1, result.TotalFailed)

	john := result.Resolved["johndoe"]
	assert.Equal(t, "John Doe", john.FullName)
	assert.Equal(t, 12000, john.FollowersCount)
	assert.InDelta(t, 4.5, john.EngagementRate, 0.0001)
	assert.True(t, john.IsVerified)
	assert.False(t, john.IsPrivate)

	// camelCase payload, key lowercased at the boundary
	jane := result.Resolved["janedoe"]
	assert.Equal(t, "Jane Doe", jane.FullName)
	assert.Equal(t, 8000, jane.FollowersCount)
	assert.InDelta(t, 3.2, jane.EngagementRate, 0.0001)
	assert.True(t, jane.IsPrivate)
}

func TestBatchUserDetailsTransportFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	server.Close() // nothing listening anymore

	lookup := NewLookup(NewClient(server.URL, time.Second))
	result, err := lookup.BatchUserDetails(context.Background(), "tok", []string{"johndoe"})
	assert.Nil(t, result)
	assert.ErrorIs(t, err, domainComposer.ErrLookupUnavailable)
}

func TestBatchUserDetailsBackendFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"success": false, "message": "lookup pool exhausted"}`))
	}))
	defer server.Close()

	lookup := NewLookup(NewClient(server.URL, time.Second))
	_, err := lookup.BatchUserDetails(context.Background(), "tok", []string{"johndoe"})
	assert.ErrorIs(t, err, domainComposer.ErrLookupUnavailable)
}

func TestTokenRejectionMapsToUnauthorized(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success": false, "message": "token expired"}`))
	}))
	defer server.Close()

	lookup := NewLookup(NewClient(server.URL, time.Second))
	_, err := lookup.BatchUserDetails(context.Background(), "tok", []string{"johndoe"})
	assert.ErrorIs(t, err, domainComposer.ErrUnauthorized)
}

func TestListAccounts(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/instagram/accounts/all", r.URL.Path)
		require.Equal(t, "ops@acme.io", r.URL.Query().Get("workspaceEmail"))

		_, _ = w.Write([]byte(`{
			"success": true,
			"data": {"accounts": [
				{"id": "acc-1", "username": "acme_outreach", "isActive": true},
				{"id": "acc-2", "username": "acme_backup", "is_active": false}
			]}
		}`))
	}))
	defer server.Close()

	directory := NewDirectory(NewClient(server.URL, time.Second))
	accounts, err := directory.ListAccounts(context.Background(), "tok", "ops@acme.io")
	require.NoError(t, err)
	require.Len(t, accounts, 2)
	assert.Equal(t, "acme_outreach", accounts[0].Username)
	assert.True(t, accounts[0].IsActive)
	assert.False(t, accounts[1].IsActive)
}

func TestValidateToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/auth/validate-token", r.URL.Path)
		_, _ = w.Write([]byte(`{"success": true, "data": {"user": {"email": "ops@acme.io", "name": "Ops", "workspaceEmail": "workspace@acme.io"}}}`))
	}))
	defer server.Close()

	identity := NewIdentity(NewClient(server.URL, time.Second))
	operator, err := identity.ValidateToken(context.Background(), "tok")
	require.NoError(t, err)
	assert.Equal(t, "ops@acme.io", operator.Email)
	assert.Equal(t, "workspace@acme.io", operator.WorkspaceEmail)
}

func TestValidateTokenPlain401(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"success": false, "message": "nope"}`))
	}))
	defer server.Close()

	identity := NewIdentity(NewClient(server.URL, time.Second))
	_, err := identity.ValidateToken(context.Background(), "tok")
	assert.ErrorIs(t, err, domainComposer.ErrUnauthorized)
}

func TestCreateCampaignSerializesSelectedOnly(t *testing.T) {
	var captured campaignWire
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/campaigns", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&captured))

		_, _ = w.Write([]byte(`{"success": true, "data": {"campaign": {"id": "cmp-1", "name": "Launch", "status": "draft"}}}`))
	}))
	defer server.Close()

	draft := domainComposer.NewDraft()
	draft.Name = "Launch"
	draft.TargetUsernames = []string{"johndoe", "janedoe"}
	draft.ResolvedCreators = map[string]domainComposer.CreatorProfile{
		"johndoe": {Username: "johndoe"},
		"janedoe": {Username: "janedoe"},
	}
	draft.SelectedUsernames = map[string]bool{"johndoe": true}
	draft.SenderAccounts = []domainComposer.SenderAccount{
		{ID: "acc-1", Username: "acme_outreach", IsActive: true},
		{ID: "acc-2", Username: "acme_backup", IsActive: false},
	}

	campaigns := NewCampaigns(NewClient(server.URL, time.Second))
	record, err := campaigns.CreateCampaign(context.Background(), "tok", draft)
	require.NoError(t, err)
	assert.Equal(t, "cmp-1", record.ID)
	assert.Equal(t, "draft", record.Status)

	require.Len(t, captured.SelectedInfluencers, 1)
	assert.Equal(t, "johndoe", captured.SelectedInfluencers[0].Username)
	require.Len(t, captured.SenderAccounts, 1)
	assert.Equal(t, "acc-1", captured.SenderAccounts[0].ID)
	assert.Len(t, captured.MessageSequence, 2)
}

func TestSubmissionFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`{"success": false, "message": "persistence offline"}`))
	}))
	defer server.Close()

	campaigns := NewCampaigns(NewClient(server.URL, time.Second))
	_, err := campaigns.CreateCampaign(context.Background(), "tok", domainComposer.NewDraft())
	assert.ErrorIs(t, err, domainComposer.ErrSubmissionFailed)
}
