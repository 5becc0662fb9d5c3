package odoo

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/semmidev/odoodrive/internal/config"
)

const (
	backupPath  = "/web/database/backup"
	chunkSize   = 8192
	errBodySize = 512
	pageSize    = 64 << 10
)

var alertPattern = regexp.MustCompile(`(?s)class="alert alert-danger"[^>]*>\s*(.*?)\s*<`)

// Client requests database exports from an Odoo server.
type Client struct {
	baseURL        string
	masterPassword string
	database       string
	format         string
	httpClient     *http.Client
}

func New(cfg *config.OdooConfig, format string) *Client {
	return NewWithHTTPClient(cfg, format, &http.Client{Timeout: cfg.Timeout})
}

func NewWithHTTPClient(cfg *config.OdooConfig, format string, httpClient *http.Client) *Client {
	return &Client{
		baseURL:        strings.TrimRight(cfg.URL, "/"),
		masterPassword: cfg.MasterPassword,
		database:       cfg.Database,
		format:         format,
		httpClient:     httpClient,
	}
}

func (c *Client) GetName() string {
	return c.database
}

func (c *Client) GetFormat() string {
	return c.format
}

// Backup streams the export to outputPath. A partially written file is left
// behind on failure; the caller owns its removal.
func (c *Client) Backup(ctx context.Context, outputPath string) error {
	form := url.Values{}
	form.Set("master_pwd", c.masterPassword)
	form.Set("name", c.database)
	form.Set("backup_format", c.format)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+backupPath, strings.NewReader(form.Encode()))
	if err != nil {
		return fmt.Errorf("failed to build backup request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Accept", "application/octet-stream")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("backup request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("backup request returned %s: %s", resp.Status, readSnippet(resp.Body))
	}

	// Odoo renders its database manager page, with status 200, when the dump
	// fails (wrong master password, unknown database).
	if isHTML(resp.Header.Get("Content-Type")) {
		return fmt.Errorf("server returned an error page instead of an archive: %s", readErrorPage(resp.Body))
	}

	out, err := os.Create(outputPath)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	written, err := io.CopyBuffer(out, resp.Body, make([]byte, chunkSize))
	if err != nil {
		out.Close()
		return fmt.Errorf("failed to write backup file after %d bytes: %w", written, err)
	}

	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close backup file: %w", err)
	}

	if written == 0 {
		return fmt.Errorf("server returned an empty archive")
	}

	return nil
}

func isHTML(contentType string) bool {
	if contentType == "" {
		return false
	}
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == "text/html"
}

func readSnippet(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, errBodySize))
	return strings.TrimSpace(string(b))
}

// readErrorPage pulls the alert text out of Odoo's error page, falling back
// to the start of the body.
func readErrorPage(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, pageSize))
	if m := alertPattern.FindSubmatch(b); m != nil {
		return strings.TrimSpace(string(m[1]))
	}
	if len(b) > errBodySize {
		b = b[:errBodySize]
	}
	return strings.TrimSpace(string(b))
}
