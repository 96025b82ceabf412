package cmd

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sadopc/focusnest/internal/config"
	"github.com/sadopc/focusnest/internal/store"
)

type cli struct {
	t   *testing.T
	dir string
	db  string
}

func newCLI(t *testing.T) *cli {
	t.Helper()
	t.Setenv("DATABASE_URL", "")
	t.Setenv("FOCUSNEST_DB_PATH", "")
	t.Setenv("FOCUSNEST_JWT_SECRET", "")
	t.Setenv("FOCUSNEST_DEBUG", "")
	dir := t.TempDir()
	return &cli{t: t, dir: dir, db: filepath.Join(dir, "test.db")}
}

// run executes one command with stdin and returns its stdout.
func (c *cli) run(stdin string, args ...string) (string, error) {
	c.t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetIn(strings.NewReader(stdin))
	root.SetArgs(append([]string{"--config-dir", c.dir, "--db", c.db}, args...))
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func (c *cli) addUser(email string, extra ...string) string {
	c.t.Helper()
	args := append([]string{"user", "add", "--email", email, "--first-name", "Sam", "--password-stdin"}, extra...)
	out, err := c.run("password123\n", args...)
	require.NoError(c.t, err)
	return out
}

func TestUserAddFirstIsAdmin(t *testing.T) {
	c := newCLI(t)
	assert.Equal(t, "Created sam@example.com (admin)\n", c.addUser("sam@example.com"))
	assert.Equal(t, "Created alex@example.com (user)\n", c.addUser("alex@example.com"))
	assert.Equal(t, "Created kim@example.com (admin)\n", c.addUser("kim@example.com", "--admin"))
}

func TestUserAddRejectsDuplicate(t *testing.T) {
	c := newCLI(t)
	c.addUser("sam@example.com")
	_, err := c.run("password123\n", "user", "add", "--email", "sam@example.com", "--first-name", "Sam", "--password-stdin")
	assert.Error(t, err)
}

func TestUserAddRequiresFlagsWithoutForm(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("password123\n", "user", "add", "--password-stdin")
	assert.ErrorContains(t, err, "--email")
}

func TestLoginLogout(t *testing.T) {
	c := newCLI(t)
	c.addUser("sam@example.com")

	_, err := c.run("wrong-password\n", "login", "--email", "sam@example.com", "--password-stdin")
	assert.Error(t, err)

	out, err := c.run("password123\n", "login", "--email", "sam@example.com", "--password-stdin")
	require.NoError(t, err)
	assert.Equal(t, "Signed in as sam@example.com\n", out)

	cfg := config.Config{Dir: c.dir}
	token, err := cfg.LoadToken()
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	out, err = c.run("", "logout")
	require.NoError(t, err)
	assert.Equal(t, "Signed out\n", out)
	_, err = cfg.LoadToken()
	assert.ErrorIs(t, err, config.ErrNotLoggedIn)
}

func TestExportRequiresLogin(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "export", "--output", "-")
	assert.ErrorIs(t, err, config.ErrNotLoggedIn)
}

func TestExportJSONToStdout(t *testing.T) {
	c := newCLI(t)
	c.addUser("sam@example.com")
	_, err := c.run("password123\n", "login", "--email", "sam@example.com", "--password-stdin")
	require.NoError(t, err)

	out, err := c.run("", "export", "--format", "json", "--output", "-")
	require.NoError(t, err)

	var doc struct {
		User struct {
			Email string `json:"email"`
		} `json:"user"`
		Counts struct {
			Tasks int `json:"tasks"`
		} `json:"counts"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "sam@example.com", doc.User.Email)
	assert.Equal(t, 0, doc.Counts.Tasks)
}

func TestExportCSVToFile(t *testing.T) {
	c := newCLI(t)
	c.addUser("sam@example.com")
	_, err := c.run("password123\n", "login", "--email", "sam@example.com", "--password-stdin")
	require.NoError(t, err)

	path := filepath.Join(t.TempDir(), "out.csv")
	out, err := c.run("", "export", "--output", path)
	require.NoError(t, err)
	assert.Equal(t, "Exported to "+path+"\n", out)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "kind,id,time,text,status,created_at"))
}

func TestExportRejectsUnknownFormat(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "export", "--format", "xml")
	assert.ErrorContains(t, err, "unknown format")
}

func TestSeed(t *testing.T) {
	c := newCLI(t)
	out, err := c.run("", "seed")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "Seeded "))

	s, err := store.New(c.db)
	require.NoError(t, err)
	defer s.Close()
	courses, err := s.ListCourses(context.Background())
	require.NoError(t, err)
	assert.NotEmpty(t, courses)
}

func TestSeedIfEmptyKeepsExistingCatalog(t *testing.T) {
	s, err := store.NewMemory()
	require.NoError(t, err)
	defer s.Close()
	ctx := context.Background()

	require.NoError(t, seedIfEmpty(ctx, s))
	first, err := s.ListCourses(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, first)

	require.NoError(t, seedIfEmpty(ctx, s))
	second, err := s.ListCourses(ctx)
	require.NoError(t, err)
	assert.Len(t, second, len(first))
}

func TestServeUntilSignalReturnsServeError(t *testing.T) {
	boom := errors.New("address in use")
	err := serveUntilSignal(context.Background(),
		func() error { return boom },
		func(context.Context) error { return nil })
	assert.ErrorIs(t, err, boom)
}

func TestServeUntilSignalShutsDownOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	stopped := make(chan struct{})
	shutdownCalled := false

	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	err := serveUntilSignal(ctx,
		func() error { <-stopped; return nil },
		func(context.Context) error { shutdownCalled = true; close(stopped); return nil })
	require.NoError(t, err)
	assert.True(t, shutdownCalled)
}

func TestReadPassword(t *testing.T) {
	p, err := readPassword(strings.NewReader("hunter22\r\n"))
	require.NoError(t, err)
	assert.Equal(t, "hunter22", p)

	p, err = readPassword(strings.NewReader("no-newline"))
	require.NoError(t, err)
	assert.Equal(t, "no-newline", p)

	_, err = readPassword(strings.NewReader("\n"))
	assert.Error(t, err)
}

func TestRootRejectsArgs(t *testing.T) {
	c := newCLI(t)
	_, err := c.run("", "bogus")
	assert.Error(t, err)
}
