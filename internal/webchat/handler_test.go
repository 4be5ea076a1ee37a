package webchat

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/websocket"

	"github.com/wolfman30/realestate-concierge/internal/archive"
	"github.com/wolfman30/realestate-concierge/internal/conversation"
	"github.com/wolfman30/realestate-concierge/pkg/logging"
)

type mockService struct {
	mu    sync.Mutex
	got   []conversation.InboundMessage
	reply string
	err   error
}

func (m *mockService) HandleInboundMessage(_ context.Context, msg conversation.InboundMessage) (*conversation.Response, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.got = append(m.got, msg)
	if m.err != nil {
		return nil, m.err
	}
	return &conversation.Response{UserID: msg.UserID, Message: m.reply}, nil
}

type mockPublisher struct {
	jobs []conversation.Job
	err  error
}

func (m *mockPublisher) Enqueue(_ context.Context, job conversation.Job) (string, error) {
	if m.err != nil {
		return "", m.err
	}
	m.jobs = append(m.jobs, job)
	return "job-1", nil
}

type mockHistory struct {
	turns []archive.TurnRecord
}

func (m *mockHistory) ListTurns(_ context.Context, userID string, limit int) ([]archive.TurnRecord, error) {
	var out []archive.TurnRecord
	for _, t := range m.turns {
		if t.UserID == userID {
			out = append(out, t)
		}
	}
	return out, nil
}

func quietLogger() *logging.Logger {
	return logging.NewWithWriter(io.Discard, "error")
}

func TestUserID(t *testing.T) {
	assert.Equal(t, "web:sess456", UserID("sess456"))
}

func TestGenerateSessionID(t *testing.T) {
	s1 := generateSessionID()
	s2 := generateSessionID()
	assert.NotEqual(t, s1, s2)
	assert.Len(t, s1, 32)
}

func TestHandleMessage_Inline(t *testing.T) {
	svc := &mockService{reply: "Welcome! Choose 1 for English"}
	h := NewHandler(svc, quietLogger())

	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(`{"session_id":"sess1","text":"hi"}`))
	w := httptest.NewRecorder()
	h.HandleMessage(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "replied", resp["status"])
	assert.Equal(t, "Welcome! Choose 1 for English", resp["reply"])
	require.Len(t, svc.got, 1)
	assert.Equal(t, "web:sess1", svc.got[0].UserID)
}

func TestHandleMessage_Queued(t *testing.T) {
	svc := &mockService{}
	pub := &mockPublisher{}
	h := NewHandler(svc, quietLogger(), WithPublisher(pub))

	req := httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(`{"text":"1"}`))
	w := httptest.NewRecorder()
	h.HandleMessage(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp map[string]string
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "queued", resp["status"])
	assert.NotEmpty(t, resp["session_id"])
	require.Len(t, pub.jobs, 1)
	assert.Equal(t, Channel, pub.jobs[0].Channel)
	assert.Equal(t, UserID(resp["session_id"]), pub.jobs[0].ReplyTo)
	assert.Empty(t, svc.got)
}

func TestHandleMessage_Errors(t *testing.T) {
	h := NewHandler(&mockService{}, quietLogger())

	w := httptest.NewRecorder()
	h.HandleMessage(w, httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.HandleMessage(w, httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(`{"text":"  "}`)))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	h = NewHandler(&mockService{err: errors.New("boom")}, quietLogger())
	w = httptest.NewRecorder()
	h.HandleMessage(w, httptest.NewRequest(http.MethodPost, "/chat/message", strings.NewReader(`{"text":"hi"}`)))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestHandleHistory(t *testing.T) {
	at := time.Date(2025, 12, 1, 9, 0, 0, 0, time.UTC)
	hist := &mockHistory{turns: []archive.TurnRecord{
		{UserID: "web:s1", Inbound: "1", Reply: "Buy or rent?", At: at.Add(time.Minute)},
		{UserID: "web:s1", Inbound: "hi", Reply: "Welcome", At: at},
	}}
	h := NewHandler(&mockService{}, quietLogger(), WithHistory(hist))

	w := httptest.NewRecorder()
	h.HandleHistory(w, httptest.NewRequest(http.MethodGet, "/chat/history?session=s1", nil))

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Messages []HistoryMessage `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.Len(t, resp.Messages, 4)
	assert.Equal(t, "hi", resp.Messages[0].Text)
	assert.Equal(t, "user", resp.Messages[0].Role)
	assert.Equal(t, "Welcome", resp.Messages[1].Text)
	assert.Equal(t, "Buy or rent?", resp.Messages[3].Text)

	w = httptest.NewRecorder()
	h.HandleHistory(w, httptest.NewRequest(http.MethodGet, "/chat/history", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func dialTestServer(t *testing.T, h *Handler, session string) *websocket.Conn {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(h.HandleWebSocket))
	t.Cleanup(srv.Close)
	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/chat/ws?session=" + session
	conn, err := websocket.Dial(wsURL, "", srv.URL)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func receive(t *testing.T, conn *websocket.Conn) OutboundMessage {
	t.Helper()
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg OutboundMessage
	require.NoError(t, websocket.JSON.Receive(conn, &msg))
	return msg
}

func receiveType(t *testing.T, conn *websocket.Conn, typ string) OutboundMessage {
	t.Helper()
	for i := 0; i < 5; i++ {
		msg := receive(t, conn)
		if msg.Type == typ {
			return msg
		}
	}
	t.Fatalf("no %q message received", typ)
	return OutboundMessage{}
}

func TestWebSocket_InlineConversation(t *testing.T) {
	svc := &mockService{reply: "Namaste"}
	h := NewHandler(svc, quietLogger())
	conn := dialTestServer(t, h, "abc")

	session := receive(t, conn)
	assert.Equal(t, "session", session.Type)
	assert.Equal(t, "abc", session.SessionID)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "ping"}))
	assert.Equal(t, "pong", receive(t, conn).Type)

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "hi"}))
	reply := receiveType(t, conn, "message")
	assert.Equal(t, "Namaste", reply.Text)
	assert.Equal(t, "assistant", reply.Role)
}

func TestWebSocket_ReplyMessengerDelivers(t *testing.T) {
	pub := &mockPublisher{}
	h := NewHandler(&mockService{}, quietLogger(), WithPublisher(pub))
	messenger := NewReplyMessenger(h, quietLogger())
	conn := dialTestServer(t, h, "q1")
	receiveType(t, conn, "session")

	require.NoError(t, websocket.JSON.Send(conn, InboundMessage{Type: "message", Text: "1"}))
	receiveType(t, conn, "typing")

	require.NoError(t, messenger.SendReply(context.Background(), conversation.OutboundReply{Channel: Channel, UserID: "web:q1", Body: "Buy or rent?"}))
	reply := receiveType(t, conn, "message")
	assert.Equal(t, "Buy or rent?", reply.Text)

	require.NoError(t, messenger.SendMedia(context.Background(), "web:q1", "Brochure", "https://docs.example.com/b.pdf"))
	media := receiveType(t, conn, "media")
	assert.Equal(t, "https://docs.example.com/b.pdf", media.URL)
	assert.Equal(t, "Brochure", media.Text)
}

func TestReplyMessenger_Offline(t *testing.T) {
	h := NewHandler(&mockService{}, quietLogger())
	m := NewReplyMessenger(h, quietLogger())

	assert.NoError(t, m.SendReply(context.Background(), conversation.OutboundReply{UserID: "web:gone", Body: "hi"}))
	assert.ErrorIs(t, m.SendMedia(context.Background(), "web:gone", "Brochure", "u"), ErrNotConnected)
}

func TestTurnsToHistorySkipsEmpty(t *testing.T) {
	got := turnsToHistory([]archive.TurnRecord{{Inbound: "", Reply: "Welcome back"}})
	require.Len(t, got, 1)
	assert.Equal(t, "assistant", got[0].Role)
}
