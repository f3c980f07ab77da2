package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/BolajiAkerele2013/Cookit/internal/auth"
	"github.com/BolajiAkerele2013/Cookit/internal/db"
	"github.com/BolajiAkerele2013/Cookit/internal/model"
	"github.com/BolajiAkerele2013/Cookit/internal/repository"
)

func TestLoadFixture_RejectsUnknownFields(t *testing.T) {
	_, err := LoadFixture(strings.NewReader("users:\n  - email: a@x.com\n    pasword: typo\n"))
	assert.Error(t, err)
}

func TestSeeder_ApplyIsRepeatable(t *testing.T) {
	ctx := context.Background()

	f, err := os.Open("fixture.yaml")
	require.NoError(t, err)
	defer f.Close()
	fx, err := LoadFixture(f)
	require.NoError(t, err)
	require.Len(t, fx.Users, 3)

	store, err := db.Open(ctx, db.DriverSQLite, "file::memory:?_pragma=foreign_keys(1)", nil)
	require.NoError(t, err)
	defer store.Close()
	require.NoError(t, store.Migrate(ctx))

	s := newSeeder(store, auth.PlainScheme{}, slog.New(slog.NewTextHandler(io.Discard, nil)))
	require.NoError(t, s.Apply(ctx, fx))
	require.NoError(t, s.Apply(ctx, fx))

	users := repository.NewUserRepository(store.DB())
	alice, err := users.FindByEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.Equal(t, []string{"product", "go"}, []string(alice.Skills))

	ideas, err := s.ideas.ListIdeasFor(ctx, alice.ID)
	require.NoError(t, err)
	assert.Len(t, ideas, 2)

	var solar model.Idea
	for _, i := range ideas {
		if i.Name == "Solar Microgrid Marketplace" {
			solar = i
		}
	}
	require.Equal(t, model.VisibilityPublic, solar.Visibility)

	roles, err := s.roles.ListRoles(ctx, solar.ID, alice.ID)
	require.NoError(t, err)
	assert.Len(t, roles, 4)
}
