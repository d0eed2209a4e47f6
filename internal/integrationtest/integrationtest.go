// Package integrationtest provides server and db helpers used in integration tests.
package integrationtest

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-petr/campus-wallet/cmd/httpserver"
	"github.com/go-petr/campus-wallet/internal/domain"
	"github.com/go-petr/campus-wallet/internal/middleware"
	"github.com/go-petr/campus-wallet/pkg/configpkg"
	"github.com/go-petr/campus-wallet/pkg/dbpkg"
	"github.com/go-petr/campus-wallet/pkg/randompkg"
	"github.com/go-petr/campus-wallet/pkg/tokenpkg"
	"github.com/rs/zerolog"
)

// SetupServer returns a test server backed by the store the config selects.
//
// With the postgres store the database is flushed after the test.
func SetupServer(t *testing.T, configPath string) *httpserver.Server {
	t.Helper()

	config, err := configpkg.Load(configPath)
	if err != nil {
		t.Fatalf(`configpkg.Load(%q) returned error: %v`, configPath, err)
	}

	zerolog.SetGlobalLevel(zerolog.FatalLevel)

	logger := middleware.CreateLogger(config)

	var db *sql.DB
	if config.StoreDriver == configpkg.StorePostgres {
		db = SetupDB(t, config.DBDriver, config.DBSource)
	}

	gin.SetMode(gin.ReleaseMode)

	server, err := httpserver.New(db, logger, config)
	if err != nil {
		t.Fatalf(`httpserver.New(db, logger, config) returned error: %v`, err)
	}

	t.Cleanup(server.Close)

	return server
}

// SeedIdentity registers a random profile with the given role.
func SeedIdentity(t *testing.T, server *httpserver.Server, role domain.Role) domain.Identity {
	t.Helper()

	p, err := server.Directory.Seed(context.Background(), domain.Identity{
		ID:   randompkg.AccountID(string(role)),
		Name: randompkg.Name(),
		Role: role,
	})
	if err != nil {
		t.Fatalf("server.Directory.Seed returned error: %v", err)
	}

	return p
}

// Client sends authorized JSON requests to the server on behalf of one identity.
type Client struct {
	t      *testing.T
	server *httpserver.Server
	maker  tokenpkg.Maker
	id     domain.Identity
}

// NewClient returns a client acting as id.
func NewClient(t *testing.T, server *httpserver.Server, id domain.Identity) *Client {
	t.Helper()

	maker, err := tokenpkg.NewMaker(server.Config.TokenType, server.Config.TokenSymmetricKey)
	if err != nil {
		t.Fatalf("tokenpkg.NewMaker returned error: %v", err)
	}

	return &Client{t: t, server: server, maker: maker, id: id}
}

// Do sends the request and decodes the response body into out when out is not nil.
func (c *Client) Do(method, path string, body, out any) int {
	c.t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			c.t.Fatalf("encoding request body: %v", err)
		}
	}

	req, err := http.NewRequest(method, path, &buf)
	if err != nil {
		c.t.Fatalf("http.NewRequest returned error: %v", err)
	}

	err = middleware.AddAuthorization(req, c.maker, middleware.AuthTypeBearer,
		c.id.ID, string(c.id.Role), c.server.Config.AccessTokenDuration)
	if err != nil {
		c.t.Fatalf("middleware.AddAuthorization returned error: %v", err)
	}

	recorder := httptest.NewRecorder()
	c.server.ServeHTTP(recorder, req)

	if out != nil {
		if err := json.NewDecoder(recorder.Body).Decode(out); err != nil {
			c.t.Fatalf("decoding response body: %v", err)
		}
	}

	return recorder.Code
}

// Flush flushes all db tables without droping.
func Flush(t *testing.T, db *sql.DB) {
	t.Helper()

	var tables string

	const query = `
	SELECT string_agg(table_name, ', ')
	FROM information_schema.tables
	WHERE table_schema='public' AND table_name <> 'gorp_migrations';`

	row := db.QueryRow(query)

	err := row.Scan(&tables)
	if err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}

	if _, err := db.Exec(`TRUNCATE TABLE ` + tables + " CASCADE"); err != nil {
		t.Fatalf("db cleanup failed. err: %v", err)
	}
}

// SetupDB sets up connection with database for testing and then cleans it.
func SetupDB(t *testing.T, driver, source string) *sql.DB {
	t.Helper()

	db, err := dbpkg.Setup(driver, source)
	if err != nil {
		t.Fatalf("db initialization failed. err: %v", err)
	}

	t.Cleanup(func() {
		Flush(t, db)

		if err := db.Close(); err != nil {
			t.Fatalf("db cleanup failed. err: %v", err)
		}
	})

	return db
}
