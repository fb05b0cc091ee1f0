package truelayer

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"

	"github.com/etnz/expenses"
	ilog "github.com/etnz/expenses/internal/logger"
)

var logger = ilog.Get()

// ErrReauthRequired marks a connection whose consent has expired: the bank
// wants the user to authorize again, no amount of retrying will help.
var ErrReauthRequired = errors.New("re-authentication with the bank required")

const (
	prodAPIBase     = "https://api.truelayer.com"
	prodAuthBase    = "https://auth.truelayer.com"
	sandboxAPIBase  = "https://api.truelayer-sandbox.com"
	sandboxAuthBase = "https://auth.truelayer-sandbox.com"

	// refreshMargin renews tokens slightly before they expire, a token that
	// dies mid-pagination wastes the whole fetch.
	refreshMargin = time.Minute

	// defaultScopes covers everything the sync reads, plus offline_access
	// which is what makes the bank hand out a refresh token.
	defaultScopes = "info accounts balance cards transactions offline_access"

	prodProviders    = "uk-ob-all uk-oauth-all ie-ob-all"
	sandboxProviders = "uk-cs-mock uk-ob-all uk-oauth-all"
)

// Account describes one account or card reachable through a connection.
type Account struct {
	ID       string
	Kind     string // "account" or "card", they live on different endpoints
	Name     string // display label, including the currency when known
	Currency string
	Provider string
}

// Transaction is one raw feed transaction. Fields stay strings: conversion
// and validation happen in Convert, on the ledger's terms.
type Transaction struct {
	Timestamp   string // ISO 8601
	Description string
	Amount      string // signed, negative for money out
	Type        string // DEBIT, CREDIT, or empty when the bank does not say
}

// Client calls the TrueLayer auth and data APIs.
type Client struct {
	http         *http.Client
	apiBase      string
	authBase     string
	clientID     string
	clientSecret string
	scopes       string
	providers    string
	now          func() time.Time
}

// NewClient reads the TRUELAYER_CLIENT_ID and TRUELAYER_CLIENT_SECRET
// credentials from the environment, usually via the .env file the config
// loader picks up. TRUELAYER_ENV=production selects the live API, anything
// else stays on the sandbox where mistakes are free.
//
// A nil httpClient falls back to the day-cached client, which is right for
// the read paths: account listings and transaction pages are idempotent.
func NewClient(httpClient *http.Client) (*Client, error) {
	id := os.Getenv("TRUELAYER_CLIENT_ID")
	secret := os.Getenv("TRUELAYER_CLIENT_SECRET")
	if id == "" || secret == "" {
		return nil, fmt.Errorf("TrueLayer credentials not found, set TRUELAYER_CLIENT_ID and TRUELAYER_CLIENT_SECRET")
	}
	apiBase, authBase, providers := sandboxAPIBase, sandboxAuthBase, sandboxProviders
	if os.Getenv("TRUELAYER_ENV") == "production" {
		apiBase, authBase, providers = prodAPIBase, prodAuthBase, prodProviders
	}
	if p := os.Getenv("TRUELAYER_PROVIDERS"); p != "" {
		providers = p
	}
	scopes := defaultScopes
	if s := os.Getenv("TRUELAYER_SCOPES"); s != "" {
		scopes = s
	}
	if httpClient == nil {
		httpClient = expenses.CachedClient()
	}
	return &Client{
		http:         httpClient,
		apiBase:      apiBase,
		authBase:     authBase,
		clientID:     id,
		clientSecret: secret,
		scopes:       scopes,
		providers:    providers,
		now:          time.Now,
	}, nil
}

// AuthURL builds the consent page address the user must visit to authorize a
// new bank connection. The bank redirects to redirectURI with a ?code=
// parameter once the user approves.
func (c *Client) AuthURL(redirectURI string) string {
	params := url.Values{
		"response_type": {"code"},
		"client_id":     {c.clientID},
		"scope":         {c.scopes},
		"redirect_uri":  {redirectURI},
		"providers":     {c.providers},
	}
	return c.authBase + "/?" + params.Encode()
}

// Exchange trades an authorization code for tokens, the last step of the
// consent flow. The redirect URI must be the one the code was issued for.
// The returned connection carries tokens only, the caller names it.
func (c *Client) Exchange(ctx context.Context, code, redirectURI string) (Connection, error) {
	token, err := c.token(ctx, url.Values{
		"grant_type":    {"authorization_code"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"redirect_uri":  {redirectURI},
		"code":          {code},
	})
	if err != nil {
		return Connection{}, fmt.Errorf("cannot exchange authorization code: %w", err)
	}
	return Connection{
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		ExpiresAt:    c.now().Add(time.Duration(token.ExpiresIn) * time.Second),
	}, nil
}

// EnsureFresh refreshes the connection's access token when it is about to
// expire, and reports whether it did so the caller knows to persist the
// rotated tokens. A connection without a refresh token or expiry time is used
// as it is.
func (c *Client) EnsureFresh(ctx context.Context, conn *Connection) (bool, error) {
	if conn.RefreshToken == "" || conn.ExpiresAt.IsZero() {
		logger.Warn().Str("connection", conn.ID).Msg("not enough information to refresh, using the stored token")
		return false, nil
	}
	if c.now().Before(conn.ExpiresAt.Add(-refreshMargin)) {
		return false, nil
	}
	logger.Info().Str("provider", conn.Provider).Msg("access token expired, refreshing")
	if err := c.Refresh(ctx, conn); err != nil {
		return false, err
	}
	return true, nil
}

// Refresh exchanges the connection's refresh token for a fresh access token,
// updating the connection in place. Banks may rotate the refresh token too.
func (c *Client) Refresh(ctx context.Context, conn *Connection) error {
	token, err := c.token(ctx, url.Values{
		"grant_type":    {"refresh_token"},
		"client_id":     {c.clientID},
		"client_secret": {c.clientSecret},
		"refresh_token": {conn.RefreshToken},
	})
	if err != nil {
		return fmt.Errorf("cannot refresh token: %w", err)
	}

	conn.AccessToken = token.AccessToken
	conn.ExpiresAt = c.now().Add(time.Duration(token.ExpiresIn) * time.Second)
	if token.RefreshToken != "" {
		conn.RefreshToken = token.RefreshToken
	}
	logger.Info().Str("provider", conn.Provider).Time("expires_at", conn.ExpiresAt).Msg("access token refreshed")
	return nil
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// token posts a grant to the token endpoint. A 400 invalid_grant answer means
// the user's consent is gone, which surfaces as ErrReauthRequired.
func (c *Client) token(ctx context.Context, form url.Values) (tokenResponse, error) {
	var token tokenResponse
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.authBase+"/connect/token", strings.NewReader(form.Encode()))
	if err != nil {
		return token, err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := c.http.Do(req)
	if err != nil {
		return token, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return token, err
	}

	if resp.StatusCode == http.StatusBadRequest {
		var apiErr struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error == "invalid_grant" {
			return token, fmt.Errorf("grant rejected as invalid_grant: %w", ErrReauthRequired)
		}
	}
	if resp.StatusCode != http.StatusOK {
		return token, fmt.Errorf("token endpoint answered %s: %s", resp.Status, body)
	}

	if err := json.Unmarshal(body, &token); err != nil {
		return token, fmt.Errorf("cannot parse token response: %w", err)
	}
	if token.AccessToken == "" {
		return token, fmt.Errorf("token response carries no access token")
	}
	if token.ExpiresIn <= 0 {
		token.ExpiresIn = 3600
	}
	return token, nil
}

// Accounts lists the bank accounts and cards behind an access token. The two
// endpoints fail independently: plenty of banks expose one and not the other,
// so a failure on either side is logged and the other side still counts.
func (c *Client) Accounts(ctx context.Context, accessToken string) ([]Account, error) {
	var all []Account
	var firstErr error

	for _, src := range []struct{ path, kind string }{
		{"/data/v1/accounts", "account"},
		{"/data/v1/cards", "card"},
	} {
		doc, err := c.getJSON(ctx, c.apiBase+src.path, accessToken)
		if err != nil {
			logger.Warn().Err(err).Str("endpoint", src.path).Msg("cannot list")
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		all = append(all, parseAccounts(doc, src.kind)...)
	}

	if len(all) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return all, nil
}

// parseAccounts reads the results array of an accounts or cards response.
func parseAccounts(doc any, kind string) []Account {
	var accounts []Account
	for _, item := range getList(doc, "$.results") {
		acc := Account{
			ID:       getString(item, "$.account_id"),
			Kind:     kind,
			Currency: getString(item, "$.currency"),
			Provider: getString(item, "$.provider.display_name"),
		}
		if acc.Provider == "" {
			acc.Provider = getString(item, "$.provider.provider_id")
		}
		acc.Name = accountName(item)
		if acc.Currency != "" {
			acc.Name = fmt.Sprintf("%s (%s)", acc.Name, acc.Currency)
		}
		if acc.ID == "" {
			logger.Warn().Str("kind", kind).Msg("skipping listed account without an id")
			continue
		}
		accounts = append(accounts, acc)
	}
	return accounts
}

// accountName labels an account for the source tag: the display name when the
// bank provides one, otherwise the account type plus the last digits.
func accountName(item any) string {
	if name := getString(item, "$.display_name"); name != "" {
		return name
	}
	number := getString(item, "$.account_number.number")
	if number == "" {
		number = getString(item, "$.card_number.number")
	}
	if len(number) > 4 {
		number = number[len(number)-4:]
	}
	accountType := getString(item, "$.account_type")
	switch {
	case accountType != "" && number != "":
		return accountType + " " + number
	case accountType != "":
		return accountType
	case number != "":
		return "Account " + number
	}
	return "Account"
}

// ProviderName returns the display name of the bank behind the accounts.
// Technical provider ids like "ob-lloyds" are cleaned up for humans.
func ProviderName(accounts []Account) string {
	if len(accounts) == 0 || accounts[0].Provider == "" {
		return "Unknown Bank"
	}
	name := accounts[0].Provider
	for _, prefix := range []string{"ob-", "oauth-", "xs2a-"} {
		if rest, ok := strings.CutPrefix(name, prefix); ok && rest != "" {
			return strings.ToUpper(rest[:1]) + rest[1:]
		}
	}
	return name
}

// Transactions fetches every transaction page for one account or card within
// [from, to], following the next_cursor pagination until the feed runs dry.
func (c *Client) Transactions(ctx context.Context, accessToken string, account Account, from, to expenses.Date) ([]Transaction, error) {
	endpoint := fmt.Sprintf("%s/data/v1/accounts/%s/transactions", c.apiBase, account.ID)
	if account.Kind == "card" {
		endpoint = fmt.Sprintf("%s/data/v1/cards/%s/transactions", c.apiBase, account.ID)
	}

	params := url.Values{"from": {from.String()}, "to": {to.String()}}
	var all []Transaction
	for {
		doc, err := c.getJSON(ctx, endpoint+"?"+params.Encode(), accessToken)
		if err != nil {
			return nil, err
		}
		for _, item := range getList(doc, "$.results") {
			all = append(all, Transaction{
				Timestamp:   getString(item, "$.timestamp"),
				Description: getString(item, "$.description"),
				Amount:      getNumber(item, "$.amount"),
				Type:        getString(item, "$.transaction_type"),
			})
		}

		cursor := getString(doc, "$.next_cursor")
		if cursor == "" {
			break
		}
		params.Set("cursor", cursor)
	}

	logger.Info().Int("transactions", len(all)).Str("account", account.Name).Msg("fetched")
	return all, nil
}

// getJSON performs an authorized GET and decodes the response. Numbers are
// kept as json.Number so amounts survive without a float round-trip.
func (c *Client) getJSON(ctx context.Context, addr, accessToken string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, addr, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusForbidden && bytes.Contains(body, []byte("sca_exceeded")) {
		return nil, fmt.Errorf("strong customer authentication expired: %w", ErrReauthRequired)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("cannot http GET %v/%v: %v", req.URL.Host, req.URL.Path, resp.Status)
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	var doc any
	if err := dec.Decode(&doc); err != nil {
		return nil, fmt.Errorf("cannot parse response from %v: %w", req.URL.Path, err)
	}
	return doc, nil
}

// getList resolves a jsonpath to a list. Anything else is an empty list.
func getList(doc any, path string) []any {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return nil
	}
	list, _ := v.([]any)
	return list
}

// getString resolves a jsonpath to a string, "" when absent or not a string.
func getString(doc any, path string) string {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return ""
	}
	s, _ := v.(string)
	return s
}

// getNumber resolves a jsonpath to the textual form of a number.
func getNumber(doc any, path string) string {
	v, err := jsonpath.Get(path, doc)
	if err != nil {
		return ""
	}
	switch n := v.(type) {
	case json.Number:
		return n.String()
	case string:
		return n
	case float64:
		return fmt.Sprintf("%g", n)
	}
	return ""
}
