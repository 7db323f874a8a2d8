package ioqueue

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"go.uber.org/goleak"
)

// ConnTestSuite exercises a stubConn pair the way the teacher's own
// transport/test.ConnTestSuite exercises its transport.Conn pairs:
// read/write/close across both ends, with goleak verifying no recv/send
// goroutine survives past TearDownTest.
type ConnTestSuite struct {
	suite.Suite
	C1, C2 Conn
}

func (s *ConnTestSuite) SetupTest() {
	s.C1, s.C2 = NewStubConnPair("c1", "c2")
}

func (s *ConnTestSuite) TearDownTest() {
	defer goleak.VerifyNone(s.T())
	s.C1.Close(nil)
	s.C2.Close(nil)
	// Give the Close-spawned goroutines (none currently, but Recv/Send
	// goroutines that raced the close) a moment to unwind before goleak
	// samples.
	time.Sleep(10 * time.Millisecond)
}

func TestConnSuite(t *testing.T) {
	suite.Run(t, new(ConnTestSuite))
}

func (s *ConnTestSuite) TestReadWrite() {
	data := []byte("Hello, World!")

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		s.C1.Send(data, func(ok bool, n int, err error) {
			defer wg.Done()
			s.Require().True(ok)
			s.Require().NoError(err)
			s.Equal(len(data), n)
		})
	}()
	go func() {
		buf := make([]byte, len(data))
		s.C2.Recv(buf, time.Time{}, func(ok bool, n int, err error) {
			defer wg.Done()
			s.Require().True(ok)
			s.Require().NoError(err)
			s.Equal(data, buf[:n])
		})
	}()
	wg.Wait()
}

func (s *ConnTestSuite) TestCloseSignalsPeer() {
	s.C1.Close(nil)

	buf := make([]byte, 10)
	done := make(chan struct{})
	s.C2.Recv(buf, time.Time{}, func(ok bool, n int, err error) {
		s.True(ok)
		s.Zero(n)
		close(done)
	})
	<-done
}

func (s *ConnTestSuite) TestRecvDeadlineExceeded() {
	done := make(chan struct{})
	buf := make([]byte, 10)
	s.C1.Recv(buf, time.Now().Add(-time.Second), func(ok bool, n int, err error) {
		s.False(ok)
		s.ErrorIs(err, ErrCancelled)
		close(done)
	})
	<-done
}
