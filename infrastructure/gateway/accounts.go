package gateway

import (
	"context"
	"errors"
	"fmt"
	"net/url"

	"github.com/valyala/fasthttp"

	domainComposer "github.com/Nirvanjha2004/outreach-composer/domains/composer"
)

// Directory lists the sender accounts available to a workspace
type Directory struct {
	client *Client
}

// NewDirectory creates the account directory gateway
func NewDirectory(client *Client) *Directory {
	return &Directory{client: client}
}

type accountWire struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	IsActive      *bool  `json:"is_active"`
	IsActiveCamel *bool  `json:"isActive"`
}

type listAccountsResponse struct {
	Accounts []accountWire `json:"accounts"`
}

// ListAccounts fetches all workspace sender accounts
func (d *Directory) ListAccounts(ctx context.Context, token, workspaceEmail string) ([]domainComposer.SenderAccount, error) {
	path := "/api/instagram/accounts/all?workspaceEmail=" + url.QueryEscape(workspaceEmail)

	var out listAccountsResponse
	if err := d.client.do(fasthttp.MethodGet, path, token, nil, &out); err != nil {
		if errors.Is(err, domainComposer.ErrUnauthorized) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", domainComposer.ErrAccountsUnavailable, err)
	}

	accounts := make([]domainComposer.SenderAccount, 0, len(out.Accounts))
	for _, wire := range out.Accounts {
		accounts = append(accounts, domainComposer.SenderAccount{
			ID:       wire.ID,
			Username: wire.Username,
			IsActive: pickBool(wire.IsActive, wire.IsActiveCamel),
		})
	}
	return accounts, nil
}
