package http

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/mockorbit/interviewd/internal/adapters/rtc"
	"github.com/mockorbit/interviewd/internal/adapters/signal"
	"github.com/mockorbit/interviewd/internal/app"
	"github.com/mockorbit/interviewd/internal/app/orch"
	"github.com/mockorbit/interviewd/internal/config"
	"github.com/mockorbit/interviewd/internal/core"
	"github.com/mockorbit/interviewd/internal/domain"
)

type fakeConn struct {
	id     core.ConnID
	mu     sync.Mutex
	closed bool
	code   int
}

func (c *fakeConn) ID() core.ConnID { return c.id }

func (c *fakeConn) TrySend(core.Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return core.ErrConnClosed
	}
	return nil
}

func (c *fakeConn) Close(code int, _ string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.closed {
		c.closed, c.code = true, code
	}
}

func (c *fakeConn) closeCode() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.code
}

func setup(t *testing.T, adminToken string) (*gin.Engine, *orch.Orchestrator) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	o := orch.New(app.NewRoomManager(app.NewRegistry(), 0), nil)
	ctl := signal.NewController(context.Background(), o, nil, signal.Options{})
	ice, err := rtc.ICEServers(nil)
	if err != nil {
		t.Fatalf("ice: %v", err)
	}
	cfg := &config.Config{Mode: "test", AdminToken: adminToken, AllowedOrigins: []string{"http://localhost:3000"}}
	return SetupRouter(cfg, o, ctl, ice), o
}

func join(t *testing.T, o *orch.Orchestrator, room, user string) *fakeConn {
	t.Helper()
	c := &fakeConn{id: core.ConnID(room + "/" + user)}
	if _, err := o.Join(orch.Session{RoomID: domain.RoomID(room), UserID: domain.UserID(user), Role: domain.RoleInterviewer, Conn: c}); err != nil {
		t.Fatalf("join: %v", err)
	}
	return c
}

func do(r http.Handler, method, path, token string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, nil)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHealthAndICE(t *testing.T) {
	r, _ := setup(t, "")

	if w := do(r, http.MethodGet, "/healthz", ""); w.Code != http.StatusOK {
		t.Fatalf("healthz: %d", w.Code)
	}

	w := do(r, http.MethodGet, "/api/v1/ice-servers", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ice-servers: %d", w.Code)
	}
	var body struct {
		ICEServers []struct {
			URLs []string `json:"urls"`
		} `json:"iceServers"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.ICEServers) != 1 || body.ICEServers[0].URLs[0] != rtc.DefaultSTUN {
		t.Fatalf("unexpected body %s", w.Body.String())
	}
}

func TestAdminAuth(t *testing.T) {
	disabled, _ := setup(t, "")
	if w := do(disabled, http.MethodGet, "/api/v1/rooms", "anything"); w.Code != http.StatusNotFound {
		t.Fatalf("disabled admin api: want 404, got %d", w.Code)
	}

	r, _ := setup(t, "root")
	if w := do(r, http.MethodGet, "/api/v1/rooms", ""); w.Code != http.StatusUnauthorized {
		t.Fatalf("no token: want 401, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/rooms", "wrong"); w.Code != http.StatusUnauthorized {
		t.Fatalf("wrong token: want 401, got %d", w.Code)
	}
	if w := do(r, http.MethodGet, "/api/v1/rooms", "root"); w.Code != http.StatusOK {
		t.Fatalf("good token: want 200, got %d", w.Code)
	}
}

func TestRoomsAPI(t *testing.T) {
	r, o := setup(t, "root")
	alice := join(t, o, "iv1", "alice")
	bob := join(t, o, "iv1", "bob")
	carol := join(t, o, "iv2", "carol")

	w := do(r, http.MethodGet, "/api/v1/rooms", "root")
	var list struct {
		Rooms []core.RoomInfo `json:"rooms"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(list.Rooms) != 2 {
		t.Fatalf("want 2 rooms, got %s", w.Body.String())
	}

	w = do(r, http.MethodGet, "/api/v1/rooms/iv1", "root")
	var info core.RoomInfo
	if err := json.Unmarshal(w.Body.Bytes(), &info); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if info.MemberCount != 2 || len(info.Members) != 2 || info.Members[0].ID != "alice" {
		t.Fatalf("unexpected info %s", w.Body.String())
	}
	if w := do(r, http.MethodGet, "/api/v1/rooms/nope", "root"); w.Code != http.StatusNotFound {
		t.Fatalf("missing room: want 404, got %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/v1/rooms/iv1/members/bob", "root"); w.Code != http.StatusNoContent {
		t.Fatalf("kick: want 204, got %d", w.Code)
	}
	if bob.closeCode() != core.CloseForbidden {
		t.Fatalf("kicked member closed with %d", bob.closeCode())
	}
	if got := o.Rooms.Members("iv1"); len(got) != 1 || got[0] != "alice" {
		t.Fatalf("want [alice], got %v", got)
	}
	if w := do(r, http.MethodDelete, "/api/v1/rooms/iv1/members/bob", "root"); w.Code != http.StatusNotFound {
		t.Fatalf("second kick: want 404, got %d", w.Code)
	}

	if w := do(r, http.MethodDelete, "/api/v1/rooms/iv1", "root"); w.Code != http.StatusNoContent {
		t.Fatalf("end: want 204, got %d", w.Code)
	}
	if alice.closeCode() != core.CloseNormal {
		t.Fatalf("ended member closed with %d", alice.closeCode())
	}
	if o.Rooms.RoomExists("iv1") {
		t.Fatal("room should be gone")
	}
	if w := do(r, http.MethodDelete, "/api/v1/rooms/iv1", "root"); w.Code != http.StatusNotFound {
		t.Fatalf("second end: want 404, got %d", w.Code)
	}
	if carol.closeCode() != 0 {
		t.Fatal("other rooms must be untouched")
	}
}

func TestCORS(t *testing.T) {
	r, _ := setup(t, "")
	req := httptest.NewRequest(http.MethodOptions, "/api/v1/ice-servers", nil)
	req.Header.Set("Origin", "http://localhost:3000")
	req.Header.Set("Access-Control-Request-Method", http.MethodGet)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	if got := w.Header().Get("Access-Control-Allow-Origin"); got != "http://localhost:3000" {
		t.Fatalf("unexpected allow-origin %q", got)
	}
}
