package main

import (
	"context"
	"encoding/json"
	"fmt"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/radieske/live-cashout-engine/internal/shared/config"
	sharedkafka "github.com/radieske/live-cashout-engine/internal/shared/kafka"
	"github.com/radieske/live-cashout-engine/internal/shared/logger"
	"github.com/radieske/live-cashout-engine/pkg/contracts/events"
)

var (
	upgrader = websocket.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin:     func(r *http.Request) bool { return true },
	}

	// Catálogo fixo de partidas simuladas
	fixtures = []events.MatchTick{
		{MatchID: "MATCH_001", HomeTeam: "Flamengo", AwayTeam: "Palmeiras", IsDerby: false},
		{MatchID: "MATCH_002", HomeTeam: "Grêmio", AwayTeam: "Internacional", IsDerby: true},
		{MatchID: "MATCH_003", HomeTeam: "Corinthians", AwayTeam: "Santos", IsDerby: true},
		{MatchID: "MATCH_004", HomeTeam: "São Paulo", AwayTeam: "Vasco", IsDerby: false},
	}

	wsConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "simulator_ws_connections",
		Help: "Clientes WebSocket conectados",
	})
	ticksPublished = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "simulator_ticks_published_total",
		Help: "Ticks publicados no Kafka",
	})
)

type clientConn struct {
	id   string
	conn *websocket.Conn
}

// hub gerencia os clientes WS de inspeção e faz broadcast dos ticks.
type hub struct {
	mu      sync.RWMutex
	clients map[string]*clientConn
	log     *zap.Logger
}

func newHub(log *zap.Logger) *hub {
	return &hub{clients: make(map[string]*clientConn), log: log}
}

func (h *hub) add(c *clientConn) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c.id] = c
	wsConnections.Inc()
	h.log.Info("ws client connected", zap.String("client_id", c.id))
}

func (h *hub) remove(id string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := h.clients[id]; ok {
		delete(h.clients, id)
		wsConnections.Dec()
		h.log.Info("ws client disconnected", zap.String("client_id", id))
	}
}

func (h *hub) broadcast(v any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	msg, _ := json.Marshal(v)
	for id, c := range h.clients {
		c.conn.SetWriteDeadline(time.Now().Add(2 * time.Second))
		if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
			h.log.Warn("ws write failed", zap.String("client_id", id), zap.Error(err))
			_ = c.conn.Close()
		}
	}
}

// matchClock evolui uma partida: SCHEDULED -> LIVE -> FINISHED, com gols
// aleatórios enquanto o jogo corre.
type matchClock struct {
	tick    events.MatchTick
	version int
}

func (m *matchClock) advance() events.MatchTick {
	m.version++
	t := &m.tick

	switch t.Status {
	case "", "SCHEDULED":
		t.Status = "SCHEDULED"
		// 30% de chance de começar a cada tick
		if rand.Intn(100) < 30 {
			t.Status = "LIVE"
			t.Minute = 0
		}
	case "LIVE":
		t.Minute += 1 + rand.Intn(3)
		// ~8% de chance de gol por tick; derbies um pouco mais
		goalChance := 8
		if t.IsDerby {
			goalChance = 11
		}
		if rand.Intn(100) < goalChance {
			if rand.Intn(2) == 0 {
				t.HomeScore++
			} else {
				t.AwayScore++
			}
		}
		if t.Minute >= 90 {
			t.Minute = 90
			t.Status = "FINISHED"
		}
	}

	t.Version = m.version
	t.UpdatedAt = time.Now().UTC()
	return *t
}

func main() {
	cfg := config.Load()
	log, err := logger.New(cfg.ServiceName, cfg.Env)
	if err != nil {
		panic(err)
	}
	defer log.Sync()

	prometheus.MustRegister(wsConnections, ticksPublished)

	writer := sharedkafka.NewWriter(cfg.KafkaBrokers, cfg.TopicMatchTicks)
	defer writer.Close()

	h := newHub(log)

	clocks := make([]*matchClock, len(fixtures))
	for i, f := range fixtures {
		f.Source = cfg.ServiceName
		clocks[i] = &matchClock{tick: f}
	}

	// Avança os relógios e publica os ticks a cada intervalo
	go func() {
		ticker := time.NewTicker(cfg.SimulatorTickEvery)
		defer ticker.Stop()
		for range ticker.C {
			for _, c := range clocks {
				tick := c.advance()

				b, _ := json.Marshal(tick)
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				if err := sharedkafka.WriteJSON(ctx, writer, tick.MatchID, b); err != nil {
					log.Warn("kafka publish failed", zap.String("match_id", tick.MatchID), zap.Error(err))
				} else {
					ticksPublished.Inc()
				}
				cancel()

				h.broadcast(tick)
			}
		}
	}()

	// ==== MUX PÚBLICO: /ws (inspeção dos ticks)
	appMux := http.NewServeMux()
	appMux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Warn("ws upgrade failed", zap.Error(err))
			return
		}
		id := fmt.Sprintf("%d", time.Now().UnixNano())
		c := &clientConn{id: id, conn: conn}
		h.add(c)

		go func() {
			defer func() {
				h.remove(id)
				_ = conn.Close()
			}()
			for {
				// Lê e descarta mensagens do cliente para manter o socket limpo
				if _, _, err := conn.ReadMessage(); err != nil {
					return
				}
			}
		}()
	})

	// ==== MUX DE MÉTRICAS
	metricsMux := http.NewServeMux()
	metricsMux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	metricsMux.Handle("/metrics", promhttp.Handler())

	go func() {
		addr := fmt.Sprintf(":%s", cfg.MetricsPort)
		log.Info("match simulator (metrics) running", zap.String("addr", addr))
		if err := http.ListenAndServe(addr, metricsMux); err != nil {
			log.Fatal("metrics server error", zap.Error(err))
		}
	}()

	publicAddr := fmt.Sprintf(":%s", cfg.HTTPPort)
	log.Info("match simulator (public) running",
		zap.String("addr", publicAddr),
		zap.String("paths", "/ws"),
	)
	if err := http.ListenAndServe(publicAddr, appMux); err != nil {
		log.Fatal("public server error", zap.Error(err))
	}
}
