package hub

import (
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"newspulse/internal/cache"
	"newspulse/internal/domain"
)

// Conn is a subscriber connection owned by the transport layer. Send delivers
// one serialized message and returns an error once the peer is gone.
// Implementations must be comparable (pointer types) and safe for concurrent
// Send calls.
type Conn interface {
	Send(payload []byte) error
}

// Message types delivered to subscribers.
const (
	TypeSnapshot = "snapshot"
	TypeArticles = "articles-update"
	TypeTrending = "trending-update"
	TypeStatus   = "status-update"
)

// Envelope is the frame serialized onto every subscriber connection.
type Envelope struct {
	Type      string    `json:"type"`
	Data      any       `json:"data"`
	Timestamp time.Time `json:"timestamp"`
}

// ArticlesPayload carries one cycle's processed articles.
type ArticlesPayload struct {
	Articles []domain.ProcessedArticle `json:"articles"`
	Count    int                       `json:"count"`
}

// TrendingPayload carries one cycle's trending topics.
type TrendingPayload struct {
	Topics []domain.TrendingTopic `json:"topics"`
}

// Status reports pipeline health after a completed cycle.
type Status struct {
	EnricherOnline    bool      `json:"enricher_online"`
	ArticlesProcessed int       `json:"articles_processed"`
	LastUpdate        time.Time `json:"last_update"`
}

// SnapshotPayload is the initial message sent to a joining subscriber, holding
// both components of the current snapshot.
type SnapshotPayload struct {
	Version  uint64                    `json:"version"`
	Articles []domain.ProcessedArticle `json:"articles"`
	Count    int                       `json:"count"`
	Topics   []domain.TrendingTopic    `json:"topics"`
}

// Hub tracks live subscriber connections and fans out snapshot updates.
// Delivery is best-effort: a failed send evicts that connection and never
// aborts delivery to the rest.
type Hub struct {
	snapshots *cache.SnapshotCache
	logger    *slog.Logger

	mu    sync.Mutex
	conns map[Conn]string
}

// New builds a hub reading initial snapshots from the given cache.
func New(snapshots *cache.SnapshotCache, logger *slog.Logger) *Hub {
	if logger == nil {
		logger = slog.Default()
	}
	return &Hub{
		snapshots: snapshots,
		logger:    logger,
		conns:     map[Conn]string{},
	}
}

// Register adds the connection to the live set and immediately sends it the
// current snapshot so late joiners are not starved until the next cycle.
func (h *Hub) Register(conn Conn) {
	if conn == nil {
		return
	}

	id := uuid.NewString()
	h.mu.Lock()
	if _, ok := h.conns[conn]; ok {
		h.mu.Unlock()
		return
	}
	h.conns[conn] = id
	total := len(h.conns)
	h.mu.Unlock()

	h.logger.Debug("subscriber joined", "conn", id, "total", total)

	snap := h.snapshots.Current()
	payload, err := marshal(TypeSnapshot, SnapshotPayload{
		Version:  snap.Version,
		Articles: articleList(snap.Articles),
		Count:    len(snap.Articles),
		Topics:   topicList(snap.Trending),
	})
	if err != nil {
		h.logger.Error("marshal initial snapshot", "error", err)
		return
	}
	if err := conn.Send(payload); err != nil {
		h.logger.Debug("initial send failed", "conn", id, "error", err)
		h.Unregister(conn)
	}
}

// Unregister removes the connection. Idempotent; unknown connections are a
// no-op.
func (h *Hub) Unregister(conn Conn) {
	h.mu.Lock()
	id, ok := h.conns[conn]
	if ok {
		delete(h.conns, conn)
	}
	total := len(h.conns)
	h.mu.Unlock()

	if ok {
		h.logger.Debug("subscriber left", "conn", id, "total", total)
	}
}

// Count returns the current live-set size.
func (h *Hub) Count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.conns)
}

// BroadcastArticles fans out the article component of a new snapshot.
func (h *Hub) BroadcastArticles(articles []domain.ProcessedArticle) {
	h.broadcast(TypeArticles, ArticlesPayload{Articles: articleList(articles), Count: len(articles)})
}

// BroadcastTrending fans out the trending component of a new snapshot.
func (h *Hub) BroadcastTrending(topics []domain.TrendingTopic) {
	h.broadcast(TypeTrending, TrendingPayload{Topics: topicList(topics)})
}

// BroadcastStatus fans out a pipeline status record.
func (h *Hub) BroadcastStatus(status Status) {
	h.broadcast(TypeStatus, status)
}

func (h *Hub) broadcast(msgType string, data any) {
	payload, err := marshal(msgType, data)
	if err != nil {
		h.logger.Error("marshal broadcast", "type", msgType, "error", err)
		return
	}

	// Sends happen outside the lock so a slow subscriber cannot block
	// register/unregister. A connection joining mid-broadcast may miss this
	// message; it already received the snapshot it joined on.
	h.mu.Lock()
	targets := make(map[Conn]string, len(h.conns))
	for conn, id := range h.conns {
		targets[conn] = id
	}
	h.mu.Unlock()

	for conn, id := range targets {
		if err := conn.Send(payload); err != nil {
			h.logger.Debug("send failed, dropping subscriber", "conn", id, "type", msgType, "error", err)
			h.Unregister(conn)
		}
	}
}

// Subscribers always see lists, never null, even before the first cycle.
func articleList(articles []domain.ProcessedArticle) []domain.ProcessedArticle {
	if articles == nil {
		return []domain.ProcessedArticle{}
	}
	return articles
}

func topicList(topics []domain.TrendingTopic) []domain.TrendingTopic {
	if topics == nil {
		return []domain.TrendingTopic{}
	}
	return topics
}

func marshal(msgType string, data any) ([]byte, error) {
	return json.Marshal(Envelope{
		Type:      msgType,
		Data:      data,
		Timestamp: time.Now().UTC(),
	})
}
