// internal/service/inventory/interfaces/stock_watch.go
package interfaces

import (
	"context"
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"vertex/internal/pkg/logger"
	"vertex/internal/service/inventory/application"
	"vertex/internal/service/inventory/domain"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool { // 简化处理，允许所有跨域
		return true
	},
}

// StockChangeEvent 是推给看板订阅方的台账变更消息。
type StockChangeEvent struct {
	Op           string    `json:"op"`
	ProductID    uint64    `json:"productId"`
	Quantity     int       `json:"quantity"`
	Reserved     int       `json:"reserved"`
	Available    int       `json:"available"`
	ReorderLevel int       `json:"reorderLevel"`
	OccurredAt   time.Time `json:"occurredAt"`
}

// StockWatchHub 维护所有看板 WebSocket 连接并广播台账变更。
// 它作为 ChangeListener 挂在应用服务上，慢客户端直接丢弃消息，绝不阻塞主流程。
type StockWatchHub struct {
	mu      sync.RWMutex
	clients map[*watchClient]struct{}
	done    chan struct{}
}

type watchClient struct {
	conn *websocket.Conn
	send chan []byte
}

var _ application.ChangeListener = (*StockWatchHub)(nil)

func NewStockWatchHub() *StockWatchHub {
	return &StockWatchHub{
		clients: make(map[*watchClient]struct{}),
		done:    make(chan struct{}),
	}
}

// StockChanged 实现 ChangeListener，把变更广播给所有在线看板。
func (h *StockWatchHub) StockChanged(ctx context.Context, record *domain.StockRecord, op string) {
	event := StockChangeEvent{
		Op:           op,
		ProductID:    record.ProductID,
		Quantity:     record.Quantity,
		Reserved:     record.Reserved,
		Available:    record.Available(),
		ReorderLevel: record.ReorderLevel,
		OccurredAt:   time.Now(),
	}
	payload, err := json.Marshal(event)
	if err != nil {
		logger.Ctx(ctx).Error().Err(err).Msg("Failed to marshal stock change event")
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients {
		select {
		case client.send <- payload:
		default:
			// 客户端消费不过来，丢弃本条
		}
	}
}

// ServeWS 把 HTTP 请求升级为 WebSocket 并注册到 Hub。
func (h *StockWatchHub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		logger.Ctx(r.Context()).Error().Err(err).Msg("Failed to upgrade stock watch connection")
		return
	}

	client := &watchClient{conn: conn, send: make(chan []byte, 256)}
	h.mu.Lock()
	h.clients[client] = struct{}{}
	h.mu.Unlock()
	logger.Ctx(r.Context()).Info().Str("remote", conn.RemoteAddr().String()).Msg("Stock watch client connected")

	go h.writePump(client)
	go h.readPump(client)
}

// Close 关闭所有连接，服务停机时调用。
func (h *StockWatchHub) Close() {
	close(h.done)
	h.mu.Lock()
	defer h.mu.Unlock()
	for client := range h.clients {
		client.conn.Close()
		delete(h.clients, client)
	}
}

func (h *StockWatchHub) writePump(c *watchClient) {
	defer c.conn.Close()
	for {
		select {
		case payload, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				return
			}
		case <-h.done:
			return
		}
	}
}

// readPump 只消费心跳和关闭帧，读失败即注销连接。
func (h *StockWatchHub) readPump(c *watchClient) {
	defer func() {
		h.mu.Lock()
		if _, ok := h.clients[c]; ok {
			delete(h.clients, c)
			close(c.send)
		}
		h.mu.Unlock()
		c.conn.Close()
	}()
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			return
		}
	}
}
