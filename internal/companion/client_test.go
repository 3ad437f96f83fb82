package companion

import (
	"context"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/five82/cuesync/internal/fakecompanion"
	"github.com/five82/cuesync/internal/schedule"
)

func newFake(t *testing.T, seed map[string]string) (*fakecompanion.Store, *Client) {
	t.Helper()
	store := fakecompanion.NewStore(seed)
	server := httptest.NewServer(fakecompanion.NewHandler(store, nil))
	t.Cleanup(server.Close)

	c, err := NewClient(strings.TrimPrefix(server.URL, "http://"))
	require.NoError(t, err)
	return store, c
}

func closedAddr(t *testing.T) string {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	addr := ln.Addr().String()
	require.NoError(t, ln.Close())
	return addr
}

func allFields(date string) schedule.Fields {
	doc, _ := schedule.Parse([]byte(`{"` + date + `": {"song1": "Amazing Grace", "song1path": "C:/media/grace.xspf"}}`))
	return doc.FieldsFor(date)
}

func TestNewClient_BaseURL(t *testing.T) {
	c, err := NewClient("192.168.1.20")
	require.NoError(t, err)
	assert.Equal(t, "http://192.168.1.20:8000/api/custom-variable", c.BaseURL())
	assert.Equal(t, "192.168.1.20", c.Host())

	c, err = NewClient("  companion.local:9000 ")
	require.NoError(t, err)
	assert.Equal(t, "http://companion.local:9000/api/custom-variable", c.BaseURL())

	c, err = NewClient("::1")
	require.NoError(t, err)
	assert.Equal(t, "http://[::1]:8000/api/custom-variable", c.BaseURL())

	_, err = NewClient("   ")
	assert.Error(t, err)
	_, err = NewClient("not a host")
	assert.Error(t, err)
}

func TestVariables_TableIsComplete(t *testing.T) {
	vars := Variables()
	require.Len(t, vars, 13)
	assert.Equal(t, VariableServiceDate, vars[0])

	seen := map[string]bool{}
	for _, name := range schedule.FieldNames {
		v, ok := VariableFor[name]
		require.True(t, ok, "field %s has no variable", name)
		assert.True(t, strings.HasPrefix(v, VariablePrefix))
		assert.False(t, seen[v], "duplicate variable %s", v)
		seen[v] = true
	}
	assert.Equal(t, "9amSong1", VariableFor[schedule.FieldSong1])
	assert.Equal(t, "9amCommunionPath", VariableFor[schedule.FieldCommunionPath])
}

func TestPing(t *testing.T) {
	_, c := newFake(t, map[string]string{VariableServiceDate: "07/07/2024"})
	assert.True(t, c.Ping(context.Background()))

	// Port open but variable missing.
	_, c = newFake(t, nil)
	assert.False(t, c.Ping(context.Background()))

	c, err := NewClient(closedAddr(t))
	require.NoError(t, err)
	assert.False(t, c.Ping(context.Background()))

	c, err = NewClient("host.invalid")
	require.NoError(t, err)
	assert.False(t, c.Ping(context.Background()))
}

func TestPing_TimeoutIsFalse(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	t.Cleanup(server.Close)
	t.Cleanup(func() { close(release) })

	c, err := NewClient(strings.TrimPrefix(server.URL, "http://"))
	require.NoError(t, err)
	c.pingTimeout = 50 * time.Millisecond

	start := time.Now()
	assert.False(t, c.Ping(context.Background()))
	assert.Less(t, time.Since(start), 2*time.Second)
}

func TestReadCurrentDate(t *testing.T) {
	store, c := newFake(t, map[string]string{VariableServiceDate: "  14/07/2024\n"})
	got, ok := c.ReadCurrentDate(context.Background())
	require.True(t, ok)
	assert.Equal(t, "14/07/2024", got)

	store.Fail(VariableServiceDate, http.StatusInternalServerError)
	_, ok = c.ReadCurrentDate(context.Background())
	assert.False(t, ok)

	down, err := NewClient(closedAddr(t))
	require.NoError(t, err)
	_, ok = down.ReadCurrentDate(context.Background())
	assert.False(t, ok)
}

func TestPush_WritesDateThenFields(t *testing.T) {
	store, c := newFake(t, map[string]string{VariableServiceDate: "01/01/2024"})

	errs := c.Push(context.Background(), allFields("07/07/2024"), "07/07/2024")
	assert.Empty(t, errs)

	writes := store.Writes()
	require.Len(t, writes, 13)
	assert.Equal(t, VariableServiceDate, writes[0].Variable)
	assert.Equal(t, "07/07/2024", writes[0].Value)
	for i, w := range writes {
		assert.Equal(t, http.MethodPost, w.Method)
		assert.Equal(t, Variables()[i], w.Variable)
	}

	values := store.Values()
	assert.Equal(t, "07/07/2024", values[VariableServiceDate])
	assert.Equal(t, "Amazing Grace", values["9amSong1"])
	assert.Equal(t, "C:/media/grace.xspf", values["9amSong1Path"])
	assert.Equal(t, schedule.Placeholder, values["9amCommunion"])
}

func TestPush_IgnoresUnknownFields(t *testing.T) {
	store, c := newFake(t, nil)
	errs := c.Push(context.Background(), map[string]string{"song2": "Be Still", "projector": "on"}, "07/07/2024")
	assert.Empty(t, errs)

	writes := store.Writes()
	require.Len(t, writes, 2)
	assert.Equal(t, "9amSong2", writes[1].Variable)
}

func TestPush_PartialFailureContinues(t *testing.T) {
	store, c := newFake(t, nil)
	store.Fail("9amSong2", http.StatusBadGateway)
	store.Fail("9amEndPath", http.StatusNotFound)

	errs := c.Push(context.Background(), allFields("07/07/2024"), "07/07/2024")
	require.Len(t, errs, 2)
	assert.Equal(t, "9amSong2", errs[0].Variable)
	assert.Equal(t, "9amEndPath", errs[1].Variable)
	assert.Contains(t, errs[0].Error(), "status 502")

	// Everything else still landed.
	assert.Len(t, store.Writes(), 11)
}

func TestPush_UnreachableTargetFailsEveryWrite(t *testing.T) {
	c, err := NewClient(closedAddr(t))
	require.NoError(t, err)

	errs := c.Push(context.Background(), allFields("07/07/2024"), "07/07/2024")
	require.Len(t, errs, 13)
	for i, e := range errs {
		assert.Equal(t, Variables()[i], e.Variable)
		assert.Error(t, e.Err)
	}
}

func TestPush_ParallelKeepsDateFirstAndErrorOrder(t *testing.T) {
	var inFlight, peak int32
	var dateDone atomic.Bool
	var fieldBeforeDate atomic.Bool

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := atomic.AddInt32(&inFlight, 1)
		defer atomic.AddInt32(&inFlight, -1)
		for {
			p := atomic.LoadInt32(&peak)
			if n <= p || atomic.CompareAndSwapInt32(&peak, p, n) {
				break
			}
		}
		if strings.Contains(r.URL.Path, VariableServiceDate) {
			time.Sleep(20 * time.Millisecond)
			dateDone.Store(true)
			return
		}
		if !dateDone.Load() {
			fieldBeforeDate.Store(true)
		}
		time.Sleep(10 * time.Millisecond)
		if strings.HasSuffix(r.URL.Path, "Path/value") {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
	}))
	t.Cleanup(server.Close)

	c, err := NewClient(strings.TrimPrefix(server.URL, "http://"), WithWorkers(4))
	require.NoError(t, err)

	errs := c.Push(context.Background(), allFields("07/07/2024"), "07/07/2024")
	require.Len(t, errs, 6)
	want := []string{"9amSong1Path", "9amSong2Path", "9amSong3Path", "9amStartPath", "9amEndPath", "9amCommunionPath"}
	for i, e := range errs {
		assert.Equal(t, want[i], e.Variable)
	}
	assert.False(t, fieldBeforeDate.Load(), "field written before service date")
	assert.LessOrEqual(t, atomic.LoadInt32(&peak), int32(4))
}
