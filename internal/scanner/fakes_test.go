package scanner

import (
	"context"
	"encoding/base64"
	"fmt"
	"sync"
	"time"

	"github.com/kursadbilgin/applytrack/internal/domain"
	"github.com/kursadbilgin/applytrack/internal/identity"
	"github.com/kursadbilgin/applytrack/internal/mailbox"
)

type fakeMailbox struct {
	mu       sync.Mutex
	searchFn func(ctx context.Context, query string, maxResults int64) ([]string, error)
	getFn    func(ctx context.Context, id string) (mailbox.Message, error)
	messages map[string]mailbox.Message
	order    []string

	searchCalls int
	getCalls    []string
}

func (f *fakeMailbox) Search(ctx context.Context, cred identity.Credential, query string, maxResults int64) ([]string, error) {
	f.mu.Lock()
	f.searchCalls++
	f.mu.Unlock()
	if f.searchFn != nil {
		return f.searchFn(ctx, query, maxResults)
	}
	return f.order, nil
}

func (f *fakeMailbox) Get(ctx context.Context, cred identity.Credential, id string) (mailbox.Message, error) {
	f.mu.Lock()
	f.getCalls = append(f.getCalls, id)
	f.mu.Unlock()
	if f.getFn != nil {
		return f.getFn(ctx, id)
	}
	msg, ok := f.messages[id]
	if !ok {
		return mailbox.Message{}, fmt.Errorf("message %s not found", id)
	}
	return msg, nil
}

func (f *fakeMailbox) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.searchCalls + len(f.getCalls)
}

// newFakeMailbox serves msgs newest first in the given order.
func newFakeMailbox(msgs ...mailbox.Message) *fakeMailbox {
	f := &fakeMailbox{messages: make(map[string]mailbox.Message, len(msgs))}
	for _, m := range msgs {
		f.messages[m.ID] = m
		f.order = append(f.order, m.ID)
	}
	return f
}

type fakeStore struct {
	mu       sync.Mutex
	appendFn func(ctx context.Context, n domain.Notification) (domain.Notification, error)
	nextID   int64
	appended []domain.Notification
}

func (f *fakeStore) Append(ctx context.Context, n domain.Notification) (domain.Notification, error) {
	if f.appendFn != nil {
		return f.appendFn(ctx, n)
	}
	// Same contract as the gorm store.
	if err := n.Validate(); err != nil {
		return domain.Notification{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	n.ID = f.nextID
	n.CreatedAt = time.Unix(1_700_000_000+f.nextID, 0)
	f.appended = append(f.appended, n)
	return n, nil
}

type fakeRateLimiter struct {
	waitFn func(ctx context.Context, key string) error
}

func (f *fakeRateLimiter) Allow(ctx context.Context, key string) (bool, error) {
	return true, nil
}

func (f *fakeRateLimiter) Wait(ctx context.Context, key string) error {
	if f.waitFn != nil {
		return f.waitFn(ctx, key)
	}
	return nil
}

func textMessage(id, from, subject, body string) mailbox.Message {
	return mailbox.Message{
		ID: id,
		Headers: []mailbox.Header{
			{Name: "From", Value: from},
			{Name: "Subject", Value: subject},
		},
		Payload: mailbox.Part{
			MimeType: "text/plain",
			Data:     base64.RawURLEncoding.EncodeToString([]byte(body)),
		},
	}
}

func validCredential() identity.Credential {
	return identity.Credential{AccessToken: "token", Expiry: time.Now().Add(time.Hour)}
}
