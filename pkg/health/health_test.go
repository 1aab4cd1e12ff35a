package health

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/suite"

	"github.com/srediag/atomicx/pkg/atomicx"
	"github.com/srediag/atomicx/pkg/registry"
)

type HealthTestSuite struct {
	suite.Suite
}

func (s *HealthTestSuite) status(h http.Handler, path string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	rw := httptest.NewRecorder()
	h.ServeHTTP(rw, req)
	return rw.Code
}

func (s *HealthTestSuite) TestLiveness() {
	h := NewHandler()
	s.Equal(http.StatusOK, s.status(h, "/live"))
	s.Equal(http.StatusOK, s.status(h, "/live"))
}

func (s *HealthTestSuite) TestProbeCheckRepeats() {
	check := ProbeCheck()
	for i := 0; i < 10; i++ {
		s.Require().NoError(check())
	}
}

func (s *HealthTestSuite) TestFlagCheckFlipsReadiness() {
	lost := atomicx.NewBool(false)
	h := NewHandler()
	h.AddReadinessCheck("no-lost-updates", FlagCheck(lost, "lost updates detected"))
	s.Equal(http.StatusOK, s.status(h, "/ready"))

	lost.Store(true)
	s.Equal(http.StatusServiceUnavailable, s.status(h, "/ready"))
	s.Equal(http.StatusOK, s.status(h, "/live"))
}

func (s *HealthTestSuite) TestCellCheck() {
	reg := registry.New()
	check := CellCheck(reg, "depth", func(e *registry.Entry) error {
		if e.Cell.(*atomicx.IntCell).Load() > 10 {
			return errors.New("too deep")
		}
		return nil
	})
	s.Error(check(), "missing cell")

	depth, err := reg.Int("depth", 3)
	s.Require().NoError(err)
	s.NoError(check())
	depth.Add(10)
	s.EqualError(check(), "too deep")
}

func TestHealthTestSuite(t *testing.T) {
	suite.Run(t, new(HealthTestSuite))
}
