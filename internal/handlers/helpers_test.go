package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/AsifaBeedi/jewel-site-booster/internal/middleware"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
	"github.com/AsifaBeedi/jewel-site-booster/internal/store"
)

type fakeEvents struct {
	mu     sync.Mutex
	visits []*models.PageVisit
	clicks []*models.ClickEvent
	err    error
}

func (f *fakeEvents) InsertPageVisit(_ context.Context, v *models.PageVisit) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	v.ID = int64(len(f.visits) + 1)
	f.visits = append(f.visits, v)
	return nil
}

func (f *fakeEvents) InsertClickEvent(_ context.Context, c *models.ClickEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	c.ID = int64(len(f.clicks) + 1)
	f.clicks = append(f.clicks, c)
	return nil
}

type fakeReader struct {
	visits []models.PageVisit
	clicks []models.ClickEvent
	err    error
}

func (f *fakeReader) CountPageVisits(context.Context) (int64, error) {
	return int64(len(f.visits)), f.err
}

func (f *fakeReader) CountClickEvents(context.Context) (int64, error) {
	return int64(len(f.clicks)), f.err
}

func (f *fakeReader) ClickButtonIDs(context.Context) ([]string, error) {
	ids := make([]string, 0, len(f.clicks))
	for _, c := range f.clicks {
		ids = append(ids, c.ButtonID)
	}
	return ids, f.err
}

func (f *fakeReader) VisitUTMSources(context.Context) ([]string, error) {
	var sources []string
	for _, v := range f.visits {
		if v.Source != "" {
			sources = append(sources, v.Source)
		}
	}
	return sources, f.err
}

func (f *fakeReader) RecentPageVisits(context.Context, int) ([]models.PageVisit, error) {
	return f.visits, f.err
}

func (f *fakeReader) RecentClickEvents(context.Context, int) ([]models.ClickEvent, error) {
	return f.clicks, f.err
}

func (f *fakeReader) AllPageVisits(context.Context) ([]models.PageVisit, error) {
	return f.visits, f.err
}

func (f *fakeReader) AllClickEvents(context.Context) ([]models.ClickEvent, error) {
	return f.clicks, f.err
}

type fakeAccounts struct {
	mu       sync.Mutex
	users    map[string]*models.User
	sessions []models.Session
	deleted  []uuid.UUID
	err      error
}

func newFakeAccounts(users ...*models.User) *fakeAccounts {
	f := &fakeAccounts{users: map[string]*models.User{}}
	for _, u := range users {
		f.users[u.Username] = u
	}
	return f
}

func (f *fakeAccounts) UserByUsername(_ context.Context, username string) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	u, ok := f.users[username]
	if !ok {
		return nil, store.ErrNotFound
	}
	return u, nil
}

func (f *fakeAccounts) UserByID(_ context.Context, id uuid.UUID) (*models.User, error) {
	if f.err != nil {
		return nil, f.err
	}
	for _, u := range f.users {
		if u.ID == id {
			return u, nil
		}
	}
	return nil, store.ErrNotFound
}

func (f *fakeAccounts) CreateSession(_ context.Context, session models.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.sessions = append(f.sessions, session)
	return nil
}

func (f *fakeAccounts) DeleteSession(_ context.Context, id uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return f.err
	}
	f.deleted = append(f.deleted, id)
	return nil
}

var errBoom = errors.New("boom")

// authenticateAs makes every non-empty token resolve to user.
func authenticateAs(t *testing.T, user *middleware.UserContext) {
	t.Helper()
	prev := middleware.SetSessionValidator(func(context.Context, string) (*middleware.UserContext, error) {
		if user == nil {
			return nil, middleware.ErrInvalidSession
		}
		return user, nil
	})
	t.Cleanup(func() { middleware.SetSessionValidator(prev) })
}

func withSession(req *http.Request) *http.Request {
	req.AddCookie(&http.Cookie{Name: middleware.SessionCookieName, Value: "token"})
	return req
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var payload map[string]any
	require.NoError(t, json.Unmarshal(body, &payload), string(body))
	return payload
}
