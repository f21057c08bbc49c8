package store

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AsifaBeedi/jewel-site-booster/internal/database"
	"github.com/AsifaBeedi/jewel-site-booster/internal/models"
)

func newSQLiteStore(t *testing.T) *Store {
	t.Helper()
	url := "sqlite://" + filepath.Join(t.TempDir(), "booster.db")
	require.NoError(t, database.RunMigrations(database.DriverSQLite, url))

	db, err := database.Open(database.DriverSQLite, url)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(db)
}

func TestSQLiteEventRoundTrip(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	base := time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)
	tick := 0
	s.now = func() time.Time {
		tick++
		return base.Add(time.Duration(tick) * time.Second)
	}

	visit := &models.PageVisit{
		PagePath:    "/shop",
		Attribution: models.Attribution{Source: "newsletter"},
		UserAgent:   "Mozilla/5.0",
		SessionID:   "s1",
	}
	require.NoError(t, s.InsertPageVisit(ctx, visit))
	require.NoError(t, s.InsertPageVisit(ctx, &models.PageVisit{PagePath: "/about", SessionID: "s1"}))
	require.NoError(t, s.InsertClickEvent(ctx, &models.ClickEvent{
		ButtonID:   "hero-cta",
		ButtonText: "Explore Collections",
		PagePath:   "/",
		UserAgent:  "Mozilla/5.0",
		SessionID:  "s1",
	}))

	visits, err := s.CountPageVisits(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(2), visits)

	clicks, err := s.CountClickEvents(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), clicks)

	sources, err := s.VisitUTMSources(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"newsletter"}, sources)

	recent, err := s.RecentPageVisits(ctx, 10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, "/about", recent[0].PagePath, "newest first")
	assert.Equal(t, "/shop", recent[1].PagePath)
	assert.Equal(t, "newsletter", recent[1].Source)
	assert.Equal(t, "Mozilla/5.0", recent[1].UserAgent)
	assert.Equal(t, "s1", recent[1].SessionID)
	assert.True(t, recent[1].CreatedAt.Equal(base.Add(time.Second)))

	limited, err := s.RecentPageVisits(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	allClicks, err := s.AllClickEvents(ctx)
	require.NoError(t, err)
	require.Len(t, allClicks, 1)
	assert.Equal(t, "hero-cta", allClicks[0].ButtonID)
	assert.Equal(t, "Explore Collections", allClicks[0].ButtonText)
	assert.False(t, allClicks[0].CreatedAt.IsZero())

	ids, err := s.ClickButtonIDs(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"hero-cta"}, ids)
}

func TestSQLiteUsersAndSessions(t *testing.T) {
	s := newSQLiteStore(t)
	ctx := context.Background()

	name := "Shop Owner"
	user, err := s.CreateUser(ctx, "owner", "$2a$10$hash", &name)
	require.NoError(t, err)

	loaded, err := s.UserByUsername(ctx, "owner")
	require.NoError(t, err)
	assert.Equal(t, user.ID, loaded.ID)
	require.NotNil(t, loaded.Name)
	assert.Equal(t, name, *loaded.Name)

	session := models.Session{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: "tokenhash",
		ExpiresAt: time.Now().Add(time.Hour),
		UserAgent: "ua",
	}
	require.NoError(t, s.CreateSession(ctx, session))

	su, err := s.ValidateSession(ctx, "tokenhash")
	require.NoError(t, err)
	assert.Equal(t, "owner", su.Username)
	assert.Equal(t, session.ID, su.SessionID)

	require.NoError(t, s.UpdatePassword(ctx, "owner", "$2a$10$other"))
	_, err = s.ValidateSession(ctx, "tokenhash")
	assert.ErrorIs(t, err, ErrNotFound, "password reset revokes sessions")

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Len(t, users, 1)

	require.NoError(t, s.DeleteUser(ctx, "owner"))
	_, err = s.UserByID(ctx, user.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}
