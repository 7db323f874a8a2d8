package ioqueue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestStubConnPair_RoundTrip(t *testing.T) {
	a, b := NewStubConnPair("a:1", "b:1")

	done := make(chan struct{})
	a.Send([]byte("hello"), func(ok bool, n int, err error) {
		require.True(t, ok)
		require.NoError(t, err)
		require.Equal(t, 5, n)
		close(done)
	})
	<-done

	buf := make([]byte, 16)
	recvDone := make(chan struct{})
	b.Recv(buf, time.Time{}, func(ok bool, n int, err error) {
		require.True(t, ok)
		require.NoError(t, err)
		require.Equal(t, "hello", string(buf[:n]))
		close(recvDone)
	})
	<-recvDone
}

func TestStubConn_RecvDeadlineExpires(t *testing.T) {
	a, _ := NewStubConnPair("a:1", "b:1")

	buf := make([]byte, 16)
	done := make(chan struct{})
	a.Recv(buf, time.Now().Add(20*time.Millisecond), func(ok bool, n int, err error) {
		require.False(t, ok)
		require.ErrorIs(t, err, ErrCancelled)
		close(done)
	})
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for cancellation")
	}
}

func TestStubConn_CloseSignalsPeerClose(t *testing.T) {
	a, b := NewStubConnPair("a:1", "b:1")
	a.Close(nil)

	buf := make([]byte, 16)
	done := make(chan struct{})
	b.Recv(buf, time.Time{}, func(ok bool, n int, err error) {
		require.True(t, ok)
		require.Equal(t, 0, n)
		close(done)
	})
	<-done
}
