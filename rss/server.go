package rss

import (
	"context"
	"encoding/json"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/AjianNie/TelegramForwarder2/internal/logger"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		// 服务只监听本机，放行所有 Origin
		return true
	},
}

// Server 本机管理服务：写入/查询条目，WS 推送新条目事件。
// 只接受回环地址的请求，供本机的 RSS 渲染端消费。
type Server struct {
	store  *EntryStore
	server *http.Server

	mu      sync.RWMutex
	running bool

	connections   map[string]*Connection
	connectionsMu sync.RWMutex
}

// NewServer 创建管理服务
func NewServer(store *EntryStore, host string, port int) *Server {
	s := &Server{
		store:       store,
		connections: make(map[string]*Connection),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/api/rules/", s.handleEntries)
	mux.HandleFunc("/ws", s.handleWebSocket)

	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", host, port),
		Handler:      s.localOnly(mux),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	return s
}

// Add 写入条目并广播给已连接的客户端
func (s *Server) Add(ctx context.Context, e *Entry) error {
	if err := s.store.Add(ctx, e); err != nil {
		return err
	}
	s.broadcast(e)
	return nil
}

// Start 启动服务
func (s *Server) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("rss server already running")
	}
	s.running = true
	s.mu.Unlock()

	go func() {
		logger.Info("RSS admin server started", zap.String("addr", s.server.Addr))
		if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("RSS admin server error", zap.Error(err))
		}
	}()

	go func() {
		<-ctx.Done()
		s.Stop()
	}()

	return nil
}

// Stop 停止服务
func (s *Server) Stop() error {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return nil
	}
	s.running = false
	s.mu.Unlock()

	s.closeAllConnections()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(ctx); err != nil {
		logger.Error("Failed to shutdown RSS admin server", zap.Error(err))
		return err
	}

	logger.Info("RSS admin server stopped")
	return nil
}

// localOnly 拒绝非回环地址的请求
func (s *Server) localOnly(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr
		}
		ip := net.ParseIP(host)
		if ip == nil || !ip.IsLoopback() {
			logger.Warn("Rejected non-local RSS request",
				zap.String("remote_addr", r.RemoteAddr),
			)
			http.Error(w, "Forbidden", http.StatusForbidden)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"time":   time.Now().Unix(),
	})
}

// handleEntries 处理 /api/rules/{id}/entries
func (s *Server) handleEntries(w http.ResponseWriter, r *http.Request) {
	rest := strings.TrimPrefix(r.URL.Path, "/api/rules/")
	parts := strings.Split(strings.Trim(rest, "/"), "/")
	if len(parts) != 2 || parts[1] != "entries" {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}
	ruleID, err := strconv.ParseInt(parts[0], 10, 64)
	if err != nil {
		http.Error(w, "Invalid rule id", http.StatusBadRequest)
		return
	}

	switch r.Method {
	case http.MethodGet:
		limit := 0
		if v := r.URL.Query().Get("limit"); v != "" {
			limit, _ = strconv.Atoi(v)
		}
		entries, err := s.store.List(r.Context(), ruleID, limit)
		if err != nil {
			logger.Error("Failed to list RSS entries",
				zap.Int64("rule_id", ruleID), zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(entries)

	case http.MethodPost:
		var e Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			http.Error(w, "Invalid entry", http.StatusBadRequest)
			return
		}
		e.RuleID = ruleID
		if e.ID == "" {
			e.ID = uuid.New().String()
		}
		if e.Published.IsZero() {
			e.Published = time.Now()
		}
		if err := s.Add(r.Context(), &e); err != nil {
			logger.Error("Failed to add RSS entry",
				zap.Int64("rule_id", ruleID), zap.Error(err))
			http.Error(w, "Internal error", http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(map[string]string{"id": e.ID})

	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Error("Failed to upgrade to WebSocket", zap.Error(err))
		return
	}

	connection := &Connection{Conn: conn, ID: uuid.New().String()}
	s.addConnection(connection)

	logger.Info("RSS WebSocket connected",
		zap.String("connection_id", connection.ID),
		zap.String("remote_addr", r.RemoteAddr),
	)

	go s.readLoop(connection)
}

// readLoop 仅用于感知客户端断开，服务端不处理入站消息
func (s *Server) readLoop(conn *Connection) {
	defer func() {
		conn.Close()
		s.removeConnection(conn.ID)
		logger.Info("RSS WebSocket closed", zap.String("connection_id", conn.ID))
	}()

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				logger.Error("RSS WebSocket error",
					zap.String("connection_id", conn.ID), zap.Error(err))
			}
			return
		}
	}
}

// broadcast 推送 entry.created 事件到所有连接
func (s *Server) broadcast(e *Entry) {
	event := map[string]interface{}{
		"event": "entry.created",
		"entry": e,
	}

	s.connectionsMu.RLock()
	defer s.connectionsMu.RUnlock()
	for _, conn := range s.connections {
		if err := conn.SendJSON(event); err != nil {
			logger.Error("Failed to broadcast RSS entry",
				zap.String("connection_id", conn.ID), zap.Error(err))
		}
	}
}

func (s *Server) addConnection(conn *Connection) {
	s.connectionsMu.Lock()
	defer s.connectionsMu.Unlock()
	s.connections[conn.ID] = conn
}

func (s *Server) removeConnection(id string) {
	s.connectionsMu.Lock()
	defer s.connectionsMu.Unlock()
	delete(s.connections, id)
}

func (s *Server) closeAllConnections() {
	s.connectionsMu.Lock()
	defer s.connectionsMu.Unlock()
	for id, conn := range s.connections {
		conn.Close()
		delete(s.connections, id)
	}
}

// Connection WebSocket 连接
type Connection struct {
	*websocket.Conn
	ID string
	mu sync.Mutex
}

// SendJSON 发送 JSON 消息
func (c *Connection) SendJSON(v interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.WriteJSON(v)
}

// Close 关闭连接
func (c *Connection) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	message := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	c.WriteMessage(websocket.CloseMessage, message)
	return c.Conn.Close()
}
