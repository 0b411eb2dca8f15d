// Package testutil holds the fixtures shared by the API and CLI tests.
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/MorenaCaparros/plataformaAPA-sub001/core/profile"
	"github.com/MorenaCaparros/plataformaAPA-sub001/storage/database"
)

// NopLogger discards everything.
type NopLogger struct{}

func (NopLogger) Debug(string, ...interface{}) {}
func (NopLogger) Info(string, ...interface{})  {}
func (NopLogger) Warn(string, ...interface{})  {}
func (NopLogger) Error(string, ...interface{}) {}
func (NopLogger) Fatal(string, ...interface{}) {}

// OpenDB opens a migrated in-memory sqlite database, closed when the test ends.
func OpenDB(t *testing.T) *sqlx.DB {
	t.Helper()
	db, err := database.OpenSQLite(":memory:")
	if err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	if err = database.Migrate(db); err != nil {
		t.Fatalf("OpenDB() failed: %v", err)
	}
	return db
}

func CreateProfile(
	t *testing.T,
	repo profile.Repository,
	name, uname, email, pwd, role string,
	isActive bool,
	createdAt ...time.Time,
) profile.Profile {
	t.Helper()
	tstamp := time.Now().UTC()
	if len(createdAt) > 0 {
		tstamp = createdAt[0].UTC()
	}
	p := profile.Profile{
		Name:      name,
		Username:  uname,
		Email:     email,
		Role:      role,
		CreatedAt: tstamp,
		UpdatedAt: tstamp,
	}
	p.SetActive(isActive)
	if pwd != "" {
		if err := p.SetPassword(pwd); err != nil {
			t.Fatalf("CreateProfile() failed: %v", err)
		}
	}
	p, err := repo.CreateProfile(context.Background(), p)
	if err != nil {
		t.Fatalf("CreateProfile() failed: %v", err)
	}
	return p
}
