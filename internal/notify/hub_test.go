package notify

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type event struct {
	ReportID string `json:"report_id"`
	Status   string `json:"status"`
}

func dial(t *testing.T, hub *Hub, citizenID string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = hub.ServeWS(w, r, citizenID)
	}))
	t.Cleanup(srv.Close)

	url := "ws" + strings.TrimPrefix(srv.URL, "http")
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("连接失败: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func waitConnections(t *testing.T, hub *Hub, citizenID string, want int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for hub.Connections(citizenID) != want {
		if time.Now().After(deadline) {
			t.Fatalf("期望 %d 个连接，实际 %d", want, hub.Connections(citizenID))
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestHub_PublishToOwner(t *testing.T) {
	hub := NewHub(zap.NewNop())
	owner := dial(t, hub, "1")
	other := dial(t, hub, "3")
	waitConnections(t, hub, "1", 1)
	waitConnections(t, hub, "3", 1)

	hub.Publish("1", event{ReportID: "r-1", Status: "approved"})

	_ = owner.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got event
	if err := owner.ReadJSON(&got); err != nil {
		t.Fatalf("读取通知失败: %v", err)
	}
	if got.ReportID != "r-1" || got.Status != "approved" {
		t.Errorf("通知内容不符: %+v", got)
	}

	_ = other.SetReadDeadline(time.Now().Add(200 * time.Millisecond))
	if err := other.ReadJSON(&got); err == nil {
		t.Error("其他市民不应收到通知")
	}
}

func TestHub_UnregisterOnClose(t *testing.T) {
	hub := NewHub(zap.NewNop())
	conn := dial(t, hub, "1")
	waitConnections(t, hub, "1", 1)

	conn.Close()
	waitConnections(t, hub, "1", 0)

	// 没有连接时发布不应出错
	hub.Publish("1", event{ReportID: "r-1", Status: "assigned"})
}

func TestHub_PublishDoesNotWaitForStalledClient(t *testing.T) {
	hub := NewHub(zap.NewNop())
	// stalled 从不读取，写缓冲会被塞满
	_ = dial(t, hub, "1")
	healthy := dial(t, hub, "3")
	waitConnections(t, hub, "1", 1)
	waitConnections(t, hub, "3", 1)

	big := event{ReportID: "r-1", Status: strings.Repeat("x", 64*1024)}
	start := time.Now()
	for i := 0; i < 200; i++ {
		hub.Publish("1", big)
	}
	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("Publish 被卡住的连接阻塞了 %v", elapsed)
	}

	hub.Publish("3", event{ReportID: "r-2", Status: "approved"})
	_ = healthy.SetReadDeadline(time.Now().Add(2 * time.Second))
	var got event
	if err := healthy.ReadJSON(&got); err != nil {
		t.Fatalf("读取通知失败: %v", err)
	}
	if got.ReportID != "r-2" {
		t.Errorf("通知内容不符: %+v", got)
	}
}
