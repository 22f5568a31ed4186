package session

import (
	"context"
	"testing"
	"time"

	"attendance-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIssueAndParse(t *testing.T) {
	m := NewManager("secret", time.Hour)

	token, expires, err := m.Issue(models.SeedAdmin())
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().Add(time.Hour), expires, 5*time.Second)

	claims, err := m.Parse(token)
	require.NoError(t, err)
	assert.Equal(t, models.SeedAdminID, claims.AccountID)
	assert.Equal(t, string(models.RoleAdmin), claims.Role)
}

func TestParseRejectsForeignSecret(t *testing.T) {
	token, _, err := NewManager("one", time.Hour).Issue(models.SeedAdmin())
	require.NoError(t, err)

	_, err = NewManager("two", time.Hour).Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)

	_, err = NewManager("one", time.Hour).Parse("not-a-token")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestParseRejectsExpired(t *testing.T) {
	m := NewManager("secret", time.Minute)
	issued := time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return issued }

	token, _, err := m.Issue(models.SeedAdmin())
	require.NoError(t, err)

	m.now = func() time.Time { return issued.Add(2 * time.Minute) }
	_, err = m.Parse(token)
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestContext(t *testing.T) {
	_, ok := FromContext(context.Background())
	assert.False(t, ok)

	ctx := WithSession(context.Background(), Session{Account: models.SeedAdmin()})
	s, ok := FromContext(ctx)
	require.True(t, ok)
	assert.True(t, s.IsAdmin())
}
