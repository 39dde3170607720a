package repository

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"commit-tracker/internal/model"
)

// newTestDB opens a fresh in-memory database migrated through the same path
// production uses.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	name := strings.ReplaceAll(t.Name(), "/", "_")
	db, err := NewDB(fmt.Sprintf("file:%s?mode=memory&cache=shared", name))
	require.NoError(t, err)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *model.User {
	t.Helper()
	user := &model.User{Email: email, Name: "Test User"}
	require.NoError(t, NewUserRepository(db).Create(context.Background(), user))
	return user
}
