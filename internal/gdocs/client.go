package gdocs

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/google"
	"github.com/MikeSquared-Agency/minutes/internal/extractor"
)

const (
	defaultDriveURL = "https://www.googleapis.com/drive/v3"
	defaultDocsURL  = "https://docs.googleapis.com/v1"

	// MimeTypeDocument is the Drive mime type of a native Google Doc.
	MimeTypeDocument = "application/vnd.google-apps.document"

	pageSize = 100
)

var scopes = []string{
	"https://www.googleapis.com/auth/drive.readonly",
	"https://www.googleapis.com/auth/documents.readonly",
}

// Client lists meeting-notes documents in Drive and fetches their bodies from the Docs API.
type Client struct {
	client   *http.Client
	driveURL string
	docsURL  string
}

// NewClient builds a client authenticated with a service-account key. When
// subject is set the service account impersonates that user, which is how
// notes stored in a personal Drive are reached.
func NewClient(ctx context.Context, credentialsJSON []byte, subject string) (*Client, error) {
	conf, err := google.JWTConfigFromJSON(credentialsJSON, scopes...)
	if err != nil {
		return nil, fmt.Errorf("parse google credentials: %w", err)
	}
	conf.Subject = subject

	hc := conf.Client(ctx)
	hc.Timeout = 30 * time.Second
	return New(hc), nil
}

// New wraps an already-authenticated HTTP client.
func New(hc *http.Client) *Client {
	return &Client{
		client:   hc,
		driveURL: defaultDriveURL,
		docsURL:  defaultDocsURL,
	}
}

// SetTestEndpoints points the client at test servers.
func (c *Client) SetTestEndpoints(driveURL, docsURL string) {
	c.driveURL = driveURL
	c.docsURL = docsURL
}

// Query narrows the Drive listing.
type Query struct {
	FolderID     string
	NameContains string
	FullText     string
}

// String renders the Drive search expression.
func (q Query) String() string {
	clauses := []string{
		fmt.Sprintf("mimeType = '%s'", MimeTypeDocument),
		"trashed = false",
	}
	if q.FolderID != "" {
		clauses = append(clauses, fmt.Sprintf("'%s' in parents", escape(q.FolderID)))
	}
	if q.NameContains != "" {
		clauses = append(clauses, fmt.Sprintf("name contains '%s'", escape(q.NameContains)))
	}
	if q.FullText != "" {
		clauses = append(clauses, fmt.Sprintf("fullText contains '%s'", escape(q.FullText)))
	}
	return strings.Join(clauses, " and ")
}

func escape(v string) string {
	v = strings.ReplaceAll(v, `\`, `\\`)
	return strings.ReplaceAll(v, `'`, `\'`)
}

type fileList struct {
	Files []struct {
		ID          string    `json:"id"`
		Name        string    `json:"name"`
		MimeType    string    `json:"mimeType"`
		CreatedTime time.Time `json:"createdTime"`
		WebViewLink string    `json:"webViewLink"`
	} `json:"files"`
	NextPageToken string `json:"nextPageToken"`
}

// ListDocuments returns every document matching q, newest first.
func (c *Client) ListDocuments(ctx context.Context, q Query) ([]extractor.DocumentHandle, error) {
	var docs []extractor.DocumentHandle
	pageToken := ""
	for {
		params := url.Values{}
		params.Set("q", q.String())
		params.Set("orderBy", "createdTime desc")
		params.Set("pageSize", fmt.Sprint(pageSize))
		params.Set("fields", "nextPageToken,files(id,name,mimeType,createdTime,webViewLink)")
		params.Set("supportsAllDrives", "true")
		params.Set("includeItemsFromAllDrives", "true")
		if pageToken != "" {
			params.Set("pageToken", pageToken)
		}

		var page fileList
		if err := c.getJSON(ctx, c.driveURL+"/files?"+params.Encode(), &page); err != nil {
			return nil, fmt.Errorf("list drive files: %w", err)
		}
		for _, f := range page.Files {
			docs = append(docs, extractor.DocumentHandle{
				ID:          f.ID,
				Name:        f.Name,
				MimeType:    f.MimeType,
				CreatedAt:   f.CreatedTime,
				WebViewLink: f.WebViewLink,
			})
		}

		if page.NextPageToken == "" {
			return docs, nil
		}
		pageToken = page.NextPageToken
	}
}

// FetchContent downloads a document and returns its top-level paragraphs.
func (c *Client) FetchContent(ctx context.Context, documentID string) ([]extractor.Paragraph, error) {
	var doc document
	if err := c.getJSON(ctx, c.docsURL+"/documents/"+url.PathEscape(documentID), &doc); err != nil {
		return nil, fmt.Errorf("get document %s: %w", documentID, err)
	}
	return doc.paragraphs(), nil
}

func (c *Client) getJSON(ctx context.Context, endpoint string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr struct {
			Error struct {
				Code    int    `json:"code"`
				Message string `json:"message"`
			} `json:"error"`
		}
		if json.Unmarshal(body, &apiErr) == nil && apiErr.Error.Message != "" {
			return fmt.Errorf("api error %d: %s", resp.StatusCode, apiErr.Error.Message)
		}
		return fmt.Errorf("api error %d: %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}
