package gateway

import (
	"io"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func loopbackPair(t *testing.T) (a, b net.Conn) {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	defer ln.Close()

	acceptCh := make(chan net.Conn, 1)
	go func() {
		conn, _ := ln.Accept()
		acceptCh <- conn
	}()

	client, err := net.Dial("tcp", ln.Addr().String())
	require.NoError(t, err)
	server := <-acceptCh
	require.NotNil(t, server)
	return client, server
}

func TestSpliceForwardsBothDirections(t *testing.T) {
	clientSide, proxyClientSide := loopbackPair(t)
	upstreamSide, proxyUpstreamSide := loopbackPair(t)
	defer clientSide.Close()
	defer upstreamSide.Close()

	done := make(chan error, 1)
	go func() {
		done <- Splice(proxyClientSide, proxyUpstreamSide)
	}()

	_, err := clientSide.Write([]byte("ping"))
	require.NoError(t, err)
	buf := make([]byte, 4)
	_, err = io.ReadFull(upstreamSide, buf)
	require.NoError(t, err)
	require.Equal(t, "ping", string(buf))

	_, err = upstreamSide.Write([]byte("pong"))
	require.NoError(t, err)
	_, err = io.ReadFull(clientSide, buf)
	require.NoError(t, err)
	require.Equal(t, "pong", string(buf))

	clientSide.Close()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("splice did not terminate after client close")
	}
}
