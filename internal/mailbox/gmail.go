package mailbox

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
	gmailv1 "google.golang.org/api/gmail/v1"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
)

const (
	DefaultBaseURL = "https://gmail.googleapis.com/"
	defaultTimeout = 15 * time.Second

	// Gmail's alias for the authenticated account.
	mailboxUser = "me"
)

// GmailClient is a read-only Gmail REST client. It never modifies message
// state on the provider side.
type GmailClient struct {
	baseURL   string
	timeout   time.Duration
	transport http.RoundTripper
}

func NewGmailClient(baseURL string, timeout time.Duration) *GmailClient {
	return newGmailClient(baseURL, timeout, nil)
}

func newGmailClient(baseURL string, timeout time.Duration, transport http.RoundTripper) *GmailClient {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if !strings.HasSuffix(baseURL, "/") {
		baseURL += "/"
	}
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GmailClient{baseURL: baseURL, timeout: timeout, transport: transport}
}

// Search returns the ids of messages matching query, newest first as the
// provider orders them.
func (c *GmailClient) Search(ctx context.Context, cred identity.Credential, query string, maxResults int64) ([]string, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return nil, err
	}

	resp, err := svc.Users.Messages.List(mailboxUser).
		Q(query).
		MaxResults(maxResults).
		Context(ctx).
		Do()
	if err != nil {
		return nil, classify("list messages", err)
	}

	ids := make([]string, 0, len(resp.Messages))
	for _, m := range resp.Messages {
		if m == nil || m.Id == "" {
			continue
		}
		ids = append(ids, m.Id)
	}
	return ids, nil
}

// Get fetches the full payload of one message.
func (c *GmailClient) Get(ctx context.Context, cred identity.Credential, id string) (Message, error) {
	svc, err := c.service(ctx, cred)
	if err != nil {
		return Message{}, err
	}

	msg, err := svc.Users.Messages.Get(mailboxUser, id).
		Format("full").
		Context(ctx).
		Do()
	if err != nil {
		return Message{}, classify("get message "+id, err)
	}

	out := Message{ID: msg.Id}
	if msg.Payload != nil {
		for _, h := range msg.Payload.Headers {
			if h == nil {
				continue
			}
			out.Headers = append(out.Headers, Header{Name: h.Name, Value: h.Value})
		}
		out.Payload = convertPart(msg.Payload)
	}
	return out, nil
}

func (c *GmailClient) service(ctx context.Context, cred identity.Credential) (*gmailv1.Service, error) {
	if strings.TrimSpace(cred.AccessToken) == "" {
		return nil, fmt.Errorf("%w: mailbox credential is missing", domain.ErrAuth)
	}

	token := &oauth2.Token{
		AccessToken: cred.AccessToken,
		TokenType:   "Bearer",
		Expiry:      cred.Expiry,
	}
	httpClient := &http.Client{
		Timeout: c.timeout,
		Transport: &oauth2.Transport{
			Source: oauth2.StaticTokenSource(token),
			Base:   c.transport,
		},
	}

	svc, err := gmailv1.NewService(ctx,
		option.WithHTTPClient(httpClient),
		option.WithEndpoint(c.baseURL),
	)
	if err != nil {
		return nil, fmt.Errorf("create gmail service: %w", err)
	}
	return svc, nil
}

func convertPart(p *gmailv1.MessagePart) Part {
	if p == nil {
		return Part{}
	}
	out := Part{MimeType: p.MimeType}
	if p.Body != nil {
		out.Data = p.Body.Data
	}
	for _, sub := range p.Parts {
		if sub == nil {
			continue
		}
		out.Parts = append(out.Parts, convertPart(sub))
	}
	return out
}

// classify wraps provider rejections of the credential as domain.ErrAuth.
func classify(op string, err error) error {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		if apiErr.Code == http.StatusUnauthorized || apiErr.Code == http.StatusForbidden {
			return fmt.Errorf("%w: %s: provider returned %d", domain.ErrAuth, op, apiErr.Code)
		}
		return fmt.Errorf("%s: provider returned %d: %w", op, apiErr.Code, err)
	}
	return fmt.Errorf("%s: %w", op, err)
}
