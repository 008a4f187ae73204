package cucumber

import (
	"context"
	"fmt"
	"net"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/cucumber/godog"
	embeddedpostgres "github.com/fergusstrange/embedded-postgres"

	"github.com/livepeer/reframe-media/test/steps"
)

var (
	apiPort = 18080
	baseURL = fmt.Sprintf("http://127.0.0.1:%d", apiPort)
	app     *exec.Cmd
	db      *embeddedpostgres.EmbeddedPostgres
)

func init() {
	buildApp := exec.Command("go", "build", "-o", "test/app", "./cmd/api-server")
	buildApp.Dir = ".."
	buildApp.Stdout = os.Stderr
	buildApp.Stderr = os.Stderr
	if err := buildApp.Run(); err != nil {
		panic(fmt.Errorf("building api-server under test: %w", err))
	}
}

func startApp(mediaRoot string) error {
	var err error
	db, err = steps.StartDatabase()
	if err != nil {
		return err
	}

	app = exec.Command("./app",
		"-port", strconv.Itoa(apiPort),
		"-database-url", "host=127.0.0.1 port=15432 sslmode=disable user=postgres password=postgres dbname=reframe_test",
		"-media-root", mediaRoot,
		"-transcribe-backend", transcribeBackendUnderTest(),
		"-diarize-backend", "noop",
		"-prom-port", strconv.Itoa(freePort()),
	)
	outfile, err := os.Create("app.log")
	if err != nil {
		return err
	}
	app.Stdout = outfile
	app.Stderr = outfile
	if err := app.Start(); err != nil {
		return err
	}

	return steps.WaitForStartup(baseURL)
}

// transcribeBackendUnderTest defaults to "noop" so the suite runs offline;
// set REFRAME_TEST_TRANSCRIBE_BACKEND to a real backend to also exercise
// the @requires-real-transcriber scenario.
func transcribeBackendUnderTest() string {
	if v := os.Getenv("REFRAME_TEST_TRANSCRIBE_BACKEND"); v != "" {
		return v
	}
	return "noop"
}

func freePort() int {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0
	}
	defer l.Close()
	return l.Addr().(*net.TCPAddr).Port
}

func InitializeScenario(ctx *godog.ScenarioContext) {
	mediaRoot, err := os.MkdirTemp("", "reframe-media-cucumber-*")
	if err != nil {
		panic(err)
	}
	fixtureDir := filepath.Join(mediaRoot, "fixtures")
	if err := os.MkdirAll(fixtureDir, 0o755); err != nil {
		panic(err)
	}

	stepContext := steps.NewStepContext(baseURL, mediaRoot, fixtureDir)
	steps.RegisterSteps(ctx, stepContext)

	ctx.BeforeScenario(func(sc *godog.Scenario) {
		if app == nil {
			if err := startApp(mediaRoot); err != nil {
				panic(fmt.Errorf("starting api-server under test: %w", err))
			}
		}
	})

	ctx.After(func(ctx context.Context, sc *godog.Scenario, err error) (context.Context, error) {
		return ctx, nil
	})
}

func TestFeatures(t *testing.T) {
	tags := ""
	if transcribeBackendUnderTest() == "noop" {
		tags = "~@requires-real-transcriber"
	}

	suite := godog.TestSuite{
		ScenarioInitializer: InitializeScenario,
		Options: &godog.Options{
			TestingT:      t,
			Strict:        true,
			StopOnFailure: false,
			Format:        "pretty",
			Paths:         []string{"features"},
			Tags:          tags,
		},
	}

	if suite.Run() != 0 {
		t.Fatal("non-zero status returned, failed to run feature tests")
	}

	if app != nil && app.Process != nil {
		_ = app.Process.Kill()
		_ = app.Wait()
	}
	if db != nil {
		_ = db.Stop()
	}
}
