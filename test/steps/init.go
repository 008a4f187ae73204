package steps

import (
	"database/sql"
	"fmt"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	embeddedpostgres "github.com/fergusstrange/embedded-postgres"
	_ "github.com/lib/pq"

	"github.com/livepeer/reframe-media/store"
)

const testDatabaseURL = "host=127.0.0.1 port=15432 sslmode=disable user=postgres password=postgres dbname=reframe_test"

// StartDatabase boots a throwaway Postgres on a nonstandard port and
// applies store.Schema, giving every scenario a clean database without
// requiring a Postgres install in the test environment.
func StartDatabase() (*embeddedpostgres.EmbeddedPostgres, error) {
	db := embeddedpostgres.NewDatabase(embeddedpostgres.DefaultConfig().
		Port(15432).
		Username("postgres").
		Password("postgres").
		Database("reframe_test"))
	if err := db.Start(); err != nil {
		return nil, fmt.Errorf("starting embedded postgres: %w", err)
	}

	conn, err := sql.Open("postgres", testDatabaseURL)
	if err != nil {
		db.Stop()
		return nil, err
	}
	defer conn.Close()

	if _, err := conn.Exec(store.Schema); err != nil {
		db.Stop()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return db, nil
}

// WaitForStartup polls the api-server's status endpoint until it answers
// or the retry budget is exhausted.
func WaitForStartup(baseURL string) error {
	operation := func() error {
		resp, err := http.Get(baseURL + "/system/status")
		if err != nil {
			return err
		}
		defer resp.Body.Close()
		if resp.StatusCode >= 500 {
			return fmt.Errorf("status endpoint returned %d", resp.StatusCode)
		}
		return nil
	}

	policy := backoff.WithMaxRetries(backoff.NewConstantBackOff(200*time.Millisecond), 50)
	return backoff.Retry(operation, policy)
}
