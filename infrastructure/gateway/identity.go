package gateway

import (
	"context"
	"errors"
	"fmt"

	"github.com/valyala/fasthttp"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// Identity validates bearer tokens against the identity service
type Identity struct {
	client *Client
}

// NewIdentity creates the identity gateway
func NewIdentity(client *Client) *Identity {
	return &Identity{client: client}
}

type operatorWire struct {
	Email               string `json:"email"`
	Name                string `json:"name"`
	WorkspaceEmail      string `json:"workspace_email"`
	WorkspaceEmailCamel string `json:"workspaceEmail"`
}

type validateTokenResponse struct {
	User operatorWire `json:"user"`
}

// ValidateToken resolves the operator behind a token. Any 401 here means the
// token is unusable regardless of the message.
func (i *Identity) ValidateToken(ctx context.Context, token string) (*domainComposer.Operator, error) {
	var out validateTokenResponse
	if err := i.client.do(fasthttp.MethodGet, "/api/auth/validate-token", token, nil, &out); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return nil, err
		}
		var backendErr *BackendError
		if errors.As(err, &backendErr) && backendErr.StatusCode == fasthttp.StatusUnauthorized {
			return nil, domainComposer.ErrUnauthorized
		}
		return nil, fmt.Errorf("token validation failed: %w", err)
	}

	operator := &domainComposer.Operator{
		Email:          out.User.Email,
		Name:           out.User.Name,
		WorkspaceEmail: pickString(out.User.WorkspaceEmail, out.User.WorkspaceEmailCamel),
	}
	if operator.WorkspaceEmail == "" {
		operator.WorkspaceEmail = operator.Email
	}
	return operator, nil
}
