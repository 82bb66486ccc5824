package executiveproc

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestForwardStderrPublishesRegion(t *testing.T) {
	sup := &Supervisor{}
	r := strings.NewReader("some startup noise\nprotected state at 0x1000-0x1020\nother log line\n")

	sup.forwardStderr(context.Background(), 42, r)

	pid, addr, size, ok := sup.Region()
	require.True(t, ok)
	require.Equal(t, 42, pid)
	require.Equal(t, uintptr(0x1000), addr)
	require.Equal(t, uintptr(0x20), size)
}

func TestForwardStderrIgnoresMalformedRange(t *testing.T) {
	sup := &Supervisor{}
	r := strings.NewReader("protected state at 0x2000-0x1000\n")
	sup.forwardStderr(context.Background(), 1, r)
	_, _, _, ok := sup.Region()
	require.False(t, ok, "an end below start must not publish a region")
}

func TestRegionClearedWhenOwningPidExits(t *testing.T) {
	sup := &Supervisor{}
	sup.cur = region{pid: 7, addr: 0x1000, size: 0x10}

	pid, _, _, ok := sup.Region()
	require.True(t, ok)
	require.Equal(t, 7, pid)

	sup.mu.Lock()
	if sup.cur.pid == 7 {
		sup.cur = region{}
	}
	sup.mu.Unlock()

	_, _, _, ok = sup.Region()
	require.False(t, ok)
}
