package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gavv/httpexpect/v2"
	"github.com/stretchr/testify/suite"
)

// fakeBoot implements Readiness for handler tests.
type fakeBoot struct {
	ready       bool
	ensureErr   error
	ensureCalls int
}

func (f *fakeBoot) EnsureReady(ctx context.Context) error {
	f.ensureCalls++
	return f.ensureErr
}

func (f *fakeBoot) Ready() bool { return f.ready }

type HealthTestSuite struct {
	suite.Suite
	boot   *fakeBoot
	e      *httpexpect.Expect
	server *httptest.Server
}

func (suite *HealthTestSuite) SetupTest() {
	suite.boot = &fakeBoot{}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /health", Health(suite.boot))

	suite.server = httptest.NewServer(mux)
	suite.e = httpexpect.Default(suite.T(), suite.server.URL)
}

func (suite *HealthTestSuite) TearDownTest() {
	suite.server.Close()
}

func (suite *HealthTestSuite) TestHealth_BeforeBootstrap() {
	obj := suite.e.GET("/health").
		Expect().
		Status(http.StatusOK).
		JSON().Object()

	obj.HasValue("status", "ok")
	obj.HasValue("dbInitialized", false)

	// Health must never trigger initialization.
	suite.Zero(suite.boot.ensureCalls)
}

func (suite *HealthTestSuite) TestHealth_AfterBootstrap() {
	suite.boot.ready = true

	suite.e.GET("/health").
		Expect().
		Status(http.StatusOK).
		JSON().Object().
		HasValue("dbInitialized", true)
}

func (suite *HealthTestSuite) TestHealth_WrongMethod() {
	suite.e.POST("/health").
		Expect().
		Status(http.StatusMethodNotAllowed)
}

func TestHealthTestSuite(t *testing.T) {
	suite.Run(t, new(HealthTestSuite))
}
