package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"os"
	"strings"
	"time"

	"golang.org/x/oauth2"
	goauth "golang.org/x/oauth2/google"
	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"batchdesk/internal/core"
	ports "batchdesk/internal/sheets"
)

// DefaultSheetName is the tab holding the batch rows.
const DefaultSheetName = "Batches"

// Config selects the spreadsheet and how to authenticate against it.
// Service account credentials win over an OAuth client + token pair.
type Config struct {
	SpreadsheetID string
	SheetName     string

	ServiceAccountJSON string
	ServiceAccountFile string

	OAuthClientJSON string
	OAuthClientFile string
	OAuthTokenJSON  string
	OAuthTokenFile  string
}

// valuesAPI is the slice of the Sheets values service the client needs.
type valuesAPI interface {
	Get(ctx context.Context, rng string) ([][]interface{}, error)
	Clear(ctx context.Context, rng string) error
	Update(ctx context.Context, rng string, values [][]interface{}) error
}

type Client struct {
	values        valuesAPI
	spreadsheetID string
	sheetName     string
}

var _ ports.RowStore = (*Client)(nil)

// New creates a Sheets-backed row store.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing spreadsheet id")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return newClient(serviceValues{svc: svc, spreadsheetID: cfg.SpreadsheetID}, cfg), nil
}

func newClient(v valuesAPI, cfg Config) *Client {
	name := strings.TrimSpace(cfg.SheetName)
	if name == "" {
		name = DefaultSheetName
	}
	return &Client{values: v, spreadsheetID: cfg.SpreadsheetID, sheetName: name}
}

// newSheetsService initializes a Sheets Service from service account credentials,
// falling back to a stored OAuth token.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	serviceAccountJSON := strings.TrimSpace(cfg.ServiceAccountJSON)
	serviceAccountFile := strings.TrimSpace(cfg.ServiceAccountFile)

	slog.InfoContext(ctx, "Checking Google credentials",
		"has_service_account_json", serviceAccountJSON != "",
		"service_account_file", serviceAccountFile,
		"has_oauth_token", cfg.OAuthTokenJSON != "" || cfg.OAuthTokenFile != "")

	var credentialsJSON []byte
	var err error
	switch {
	case serviceAccountJSON != "":
		credentialsJSON = []byte(serviceAccountJSON)
	case serviceAccountFile != "":
		credentialsJSON, err = os.ReadFile(serviceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
	default:
		return newOAuthService(ctx, cfg)
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created with service account")
	return service, nil
}

// newOAuthService builds the service from an installed-app OAuth client and a
// token saved by cmd/oauth-init.
func newOAuthService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	clientJSON, err := jsonFromInlineOrFile(cfg.OAuthClientJSON, cfg.OAuthClientFile)
	if err != nil {
		return nil, fmt.Errorf("oauth client: %w", err)
	}
	tokenJSON, err := jsonFromInlineOrFile(cfg.OAuthTokenJSON, cfg.OAuthTokenFile)
	if err != nil {
		return nil, fmt.Errorf("oauth token: %w", err)
	}
	if clientJSON == nil || tokenJSON == nil {
		return nil, errors.New("missing credentials (set GOOGLE_SERVICE_ACCOUNT_JSON, GOOGLE_SERVICE_ACCOUNT_FILE, or an OAuth client and token)")
	}
	oauthCfg, err := goauth.ConfigFromJSON(clientJSON, gsheet.SpreadsheetsScope)
	if err != nil {
		return nil, fmt.Errorf("parse oauth client: %w", err)
	}
	tok, err := decodeToken(tokenJSON)
	if err != nil {
		return nil, err
	}
	ctx = context.WithValue(ctx, oauth2.HTTPClient, newHTTPClientWithPooling())
	service, err := gsheet.NewService(ctx, goption.WithHTTPClient(oauthCfg.Client(ctx, tok)))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	slog.InfoContext(ctx, "Google Sheets service created with OAuth token")
	return service, nil
}

func jsonFromInlineOrFile(inline, file string) ([]byte, error) {
	if s := strings.TrimSpace(inline); s != "" {
		return []byte(s), nil
	}
	if f := strings.TrimSpace(file); f != "" {
		b, err := os.ReadFile(f)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", f, err)
		}
		return b, nil
	}
	return nil, nil
}

// newHTTPClientWithPooling creates an HTTP client for the Sheets API with
// connection pooling and bounded timeouts.
func newHTTPClientWithPooling() *http.Client {
	dialer := &net.Dialer{
		Timeout:   30 * time.Second,
		KeepAlive: 30 * time.Second,
	}
	transport := &http.Transport{
		DialContext:           dialer.DialContext,
		MaxIdleConns:          100,
		MaxIdleConnsPerHost:   10,
		MaxConnsPerHost:       50,
		IdleConnTimeout:       90 * time.Second,
		TLSHandshakeTimeout:   10 * time.Second,
		ResponseHeaderTimeout: 30 * time.Second,
		ExpectContinueTimeout: 1 * time.Second,
		ForceAttemptHTTP2:     true,
	}
	return &http.Client{
		Transport: transport,
		Timeout:   60 * time.Second,
	}
}

func (c *Client) dataRange() string {
	return fmt.Sprintf("'%s'!A:Z", strings.ReplaceAll(c.sheetName, "'", "''"))
}

func (c *Client) originRange() string {
	return fmt.Sprintf("'%s'!A1", strings.ReplaceAll(c.sheetName, "'", "''"))
}

// Load reads the whole sheet. The first row is the header.
func (c *Client) Load(ctx context.Context) (ports.Table, error) {
	if c.values == nil {
		return ports.Table{}, fmt.Errorf("sheets service not initialized: %w", core.ErrStoreUnavailable)
	}
	rng := c.dataRange()
	values, err := c.values.Get(ctx, rng)
	if err != nil {
		return ports.Table{}, fmt.Errorf("read %s: %w: %w", rng, core.ErrStoreUnavailable, err)
	}
	t, err := parseValues(values)
	if err != nil {
		return ports.Table{}, fmt.Errorf("parse %s: %w: %w", rng, core.ErrStoreUnavailable, err)
	}
	return t, nil
}

// Replace overwrites the sheet with t.
//
// The version check re-reads the sheet first; the clear+write pair that follows
// is not atomic for other readers of the same spreadsheet.
func (c *Client) Replace(ctx context.Context, t ports.Table) error {
	if c.values == nil {
		return fmt.Errorf("sheets service not initialized: %w", core.ErrStoreUnavailable)
	}
	rng := c.dataRange()
	if t.Version != "" {
		current, err := c.values.Get(ctx, rng)
		if err != nil {
			return fmt.Errorf("read %s: %w: %w", rng, core.ErrStoreUnavailable, err)
		}
		if v := versionOf(current); v != t.Version {
			slog.WarnContext(ctx, "Sheet changed since load", "sheet", c.sheetName, "loaded_version", t.Version, "current_version", v)
			return fmt.Errorf("sheet %s: %w", c.sheetName, core.ErrConcurrentModification)
		}
	}
	if err := c.values.Clear(ctx, rng); err != nil {
		return fmt.Errorf("clear %s: %w: %w", rng, core.ErrStoreUnavailable, err)
	}
	out := toValues(t)
	if err := c.values.Update(ctx, c.originRange(), out); err != nil {
		return fmt.Errorf("write %s: %w: %w", c.originRange(), core.ErrStoreUnavailable, err)
	}
	slog.DebugContext(ctx, "Sheet replaced", "sheet", c.sheetName, "rows", len(out)-1)
	return nil
}

// serviceValues adapts *gsheet.Service to valuesAPI.
type serviceValues struct {
	svc           *gsheet.Service
	spreadsheetID string
}

// Get reads raw cell values. Date cells come back as serial numbers, so the
// spreadsheet locale cannot reorder day and month.
func (s serviceValues) Get(ctx context.Context, rng string) ([][]interface{}, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, rng).
		ValueRenderOption("UNFORMATTED_VALUE").
		DateTimeRenderOption("SERIAL_NUMBER").
		Context(ctx).Do()
	if err != nil {
		return nil, err
	}
	return resp.Values, nil
}

func (s serviceValues) Clear(ctx context.Context, rng string) error {
	_, err := s.svc.Spreadsheets.Values.Clear(s.spreadsheetID, rng, &gsheet.ClearValuesRequest{}).Context(ctx).Do()
	return err
}

func (s serviceValues) Update(ctx context.Context, rng string, values [][]interface{}) error {
	vr := &gsheet.ValueRange{Values: values}
	_, err := s.svc.Spreadsheets.Values.Update(s.spreadsheetID, rng, vr).
		ValueInputOption("USER_ENTERED").Context(ctx).Do()
	return err
}
