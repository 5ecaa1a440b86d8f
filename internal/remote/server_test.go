package remote

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/JPM1118/diapo/internal/slides"
	"github.com/JPM1118/diapo/internal/testutil"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T, total int) (*Server, *slides.Controller, *testutil.FakeScheduler, *httptest.Server) {
	t.Helper()
	sched := &testutil.FakeScheduler{}
	c, err := slides.New(total, slides.WithScheduler(sched))
	require.NoError(t, err)

	s := New(nil, 10*time.Second)
	s.Attach(c)

	ts := httptest.NewServer(s.Handler())
	t.Cleanup(ts.Close)
	return s, c, sched, ts
}

func post(t *testing.T, url, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeInfo(t *testing.T, resp *http.Response) slides.Info {
	t.Helper()
	var info slides.Info
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&info))
	return info
}

func TestServer_Info(t *testing.T) {
	_, _, _, ts := newTestServer(t, 11)

	resp, err := http.Get(ts.URL + "/api/info")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, slides.Info{Current: 1, Total: 11, IsFirst: true}, decodeInfo(t, resp))
}

func TestServer_NextPrev(t *testing.T) {
	_, c, _, ts := newTestServer(t, 3)

	info := decodeInfo(t, post(t, ts.URL+"/api/next", ""))
	assert.Equal(t, 2, info.Current)

	info = decodeInfo(t, post(t, ts.URL+"/api/last", ""))
	assert.True(t, info.IsLast)

	info = decodeInfo(t, post(t, ts.URL+"/api/next", ""))
	assert.Equal(t, 3, info.Current, "next on last slide is ignored")

	info = decodeInfo(t, post(t, ts.URL+"/api/prev", ""))
	assert.Equal(t, 2, info.Current)

	info = decodeInfo(t, post(t, ts.URL+"/api/first", ""))
	assert.Equal(t, 1, info.Current)
	assert.Equal(t, 1, c.Info().Current)
}

func TestServer_GoTo(t *testing.T) {
	_, _, _, ts := newTestServer(t, 11)

	info := decodeInfo(t, post(t, ts.URL+"/api/goto/5", ""))
	assert.Equal(t, 5, info.Current)

	resp := post(t, ts.URL+"/api/goto/0", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 5, decodeInfo(t, resp).Current, "out-of-range goto is ignored")

	resp = post(t, ts.URL+"/api/goto/five", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_WrongMethod(t *testing.T) {
	_, _, _, ts := newTestServer(t, 3)

	for _, path := range []string{"/api/next", "/api/goto/2", "/api/autoplay"} {
		resp, err := http.Get(ts.URL + path)
		require.NoError(t, err)
		resp.Body.Close()
		assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode, "GET %s", path)
	}

	resp := post(t, ts.URL+"/api/info", "")
	assert.Equal(t, http.StatusMethodNotAllowed, resp.StatusCode)
}

func TestServer_AutoPlay(t *testing.T) {
	_, c, sched, ts := newTestServer(t, 3)

	resp := post(t, ts.URL+"/api/autoplay", `{"interval":"3s"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var ap autoPlayResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&ap))
	assert.True(t, ap.Running)
	assert.Equal(t, "3s", ap.Interval)
	require.Len(t, sched.Active(), 1)

	sched.Fire()
	assert.Equal(t, 2, c.Info().Current)

	req, err := http.NewRequest(http.MethodDelete, ts.URL+"/api/autoplay", nil)
	require.NoError(t, err)
	dresp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	defer dresp.Body.Close()
	assert.Equal(t, http.StatusOK, dresp.StatusCode)
	assert.Empty(t, sched.Active())
}

func TestServer_AutoPlayDefaultAndInvalid(t *testing.T) {
	_, c, _, ts := newTestServer(t, 3)

	resp := post(t, ts.URL+"/api/autoplay", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	interval, running := c.AutoPlay()
	assert.True(t, running)
	assert.Equal(t, 10*time.Second, interval)

	resp = post(t, ts.URL+"/api/autoplay", `{"interval":"-2s"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp = post(t, ts.URL+"/api/autoplay", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestServer_NotAttached(t *testing.T) {
	s := New(nil, time.Second)
	ts := httptest.NewServer(s.Handler())
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/api/info")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
}

func dialWS(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { conn.Close() })
	return conn
}

func readInfo(t *testing.T, conn *websocket.Conn) slides.Info {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var info slides.Info
	require.NoError(t, conn.ReadJSON(&info))
	return info
}

func TestServer_WebSocketPushesChanges(t *testing.T) {
	_, _, _, ts := newTestServer(t, 4)
	conn := dialWS(t, ts)

	assert.Equal(t, 1, readInfo(t, conn).Current, "initial position")

	post(t, ts.URL+"/api/next", "")
	info := readInfo(t, conn)
	assert.Equal(t, 2, info.Current)
	assert.Equal(t, 4, info.Total)
}

func TestServer_WebSocketCommands(t *testing.T) {
	_, c, _, ts := newTestServer(t, 5)
	conn := dialWS(t, ts)
	readInfo(t, conn)

	require.NoError(t, conn.WriteJSON(command{Action: "goto", Slide: 4}))
	assert.Equal(t, 4, readInfo(t, conn).Current)

	require.NoError(t, conn.WriteJSON(command{Action: "prev"}))
	assert.Equal(t, 3, readInfo(t, conn).Current)
	assert.Equal(t, 3, c.Info().Current)
}

func TestServer_AttachSwitchesController(t *testing.T) {
	s, _, _, ts := newTestServer(t, 4)
	conn := dialWS(t, ts)
	readInfo(t, conn)

	next, err := slides.New(9, slides.WithScheduler(&testutil.FakeScheduler{}), slides.WithStart(6))
	require.NoError(t, err)
	s.Attach(next)

	info := readInfo(t, conn)
	assert.Equal(t, slides.Info{Current: 6, Total: 9}, info)

	next.Next()
	assert.Equal(t, 7, readInfo(t, conn).Current)
}

func TestServer_WebSocketSurvivesBadCommands(t *testing.T) {
	_, c, _, ts := newTestServer(t, 5)
	conn := dialWS(t, ts)
	readInfo(t, conn)

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{"action":"goto","slide":"3"}`)))
	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte(`{not json`)))
	require.NoError(t, conn.WriteJSON(command{Action: "next"}))

	assert.Equal(t, 2, readInfo(t, conn).Current, "connection should survive malformed commands")
	assert.Equal(t, 2, c.Info().Current)
}
