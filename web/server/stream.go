package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

const (
	// maxFramePixels caps how many pixels go into one binary frame
	maxFramePixels = 1024
	// frameFlushInterval bounds how long a finished pixel waits before it is sent
	frameFlushInterval = 100 * time.Millisecond
	pingInterval       = 30 * time.Second
	writeWait          = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// StreamMessage is a JSON control message sent alongside binary pixel frames
type StreamMessage struct {
	Type    string          `json:"type"` // "start", "console", "complete", "error"
	Start   *StartInfo      `json:"start,omitempty"`
	Console *ConsoleMessage `json:"console,omitempty"`
	Stats   *Stats          `json:"stats,omitempty"`
	Elapsed int64           `json:"elapsedMs,omitempty"`
	Error   string          `json:"error,omitempty"`
}

// StartInfo describes the image the client should allocate
type StartInfo struct {
	Scene           string `json:"scene"`
	Width           int    `json:"width"`
	Height          int    `json:"height"`
	SamplesPerPixel int    `json:"samplesPerPixel"`
	MaxDepth        int    `json:"maxDepth"`
	Seed            uint64 `json:"seed"`
	Workers         int    `json:"workers"`
	Primitives      int    `json:"primitives"`
}

// outboundMessage is one websocket write queued for the writer goroutine
type outboundMessage struct {
	messageType int
	data        []byte
}

// streamSession owns the websocket for one render
type streamSession struct {
	conn   *websocket.Conn
	send   chan outboundMessage
	ctx    context.Context
	cancel context.CancelFunc
}

// queue hands a message to the writer. It returns false once the session is cancelled.
func (ss *streamSession) queue(messageType int, data []byte) bool {
	select {
	case ss.send <- outboundMessage{messageType: messageType, data: data}:
		return true
	case <-ss.ctx.Done():
		return false
	}
}

// queueJSON encodes and queues a control message
func (ss *streamSession) queueJSON(msg StreamMessage) bool {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Printf("Error encoding %s message: %v", msg.Type, err)
		return false
	}
	return ss.queue(websocket.TextMessage, data)
}

// writeLoop is the only goroutine that writes to the connection
func (ss *streamSession) writeLoop(done chan<- struct{}) {
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		close(done)
	}()

	for {
		select {
		case msg, ok := <-ss.send:
			ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				closeMsg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "render finished")
				_ = ss.conn.WriteMessage(websocket.CloseMessage, closeMsg)
				return
			}
			if err := ss.conn.WriteMessage(msg.messageType, msg.data); err != nil {
				log.Printf("Websocket write error: %v", err)
				ss.cancel()
				return
			}
		case <-ticker.C:
			ss.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := ss.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				ss.cancel()
				return
			}
		}
	}
}

// readLoop discards client messages and cancels the render when the client goes away
func (ss *streamSession) readLoop() {
	defer ss.cancel()
	for {
		if _, _, err := ss.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// handleStream renders a scene and streams finished pixels over a websocket
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	var req RenderRequest
	if err := s.parseCommonSceneParams(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	camera, err := parseCameraOverrides(r.URL.Query())
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)

	sceneObj, err := s.createScene(&req, camera, webLogger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	raytracer, err := renderer.NewRaytracer(sceneObj, sceneObj.SamplingConfig, webLogger)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Println("upgrade:", err)
		return
	}
	defer conn.Close()

	s.activeStreams.Add(1)
	defer s.activeStreams.Add(-1)

	ctx, cancel := context.WithCancel(r.Context())
	defer cancel()

	session := &streamSession{
		conn:   conn,
		send:   make(chan outboundMessage, 64),
		ctx:    ctx,
		cancel: cancel,
	}
	writerDone := make(chan struct{})
	go session.writeLoop(writerDone)
	go session.readLoop()

	config := raytracer.Config()
	session.queueJSON(StreamMessage{Type: "start", Start: &StartInfo{
		Scene:           req.Scene,
		Width:           config.Width,
		Height:          config.Height,
		SamplesPerPixel: config.SamplesPerPixel,
		MaxDepth:        config.MaxDepth,
		Seed:            raytracer.Seed(),
		Workers:         config.NumWorkers,
		Primitives:      sceneObj.GetPrimitiveCount(),
	}})

	stats := s.streamPixels(session, raytracer, consoleChan)
	close(session.send)
	<-writerDone

	log.Printf("Stream %s finished: %d pixels in %v", renderID, stats.TotalPixels, stats.Elapsed)
}

// streamPixels runs the render, batching results into binary frames. It always
// drains the render so the worker pool can shut down, even after the client leaves.
func (s *Server) streamPixels(session *streamSession, raytracer *renderer.Raytracer, consoleChan <-chan ConsoleMessage) renderer.RenderStats {
	startTime := time.Now()
	stats := renderer.RenderStats{MaxSamples: raytracer.Config().SamplesPerPixel}

	ticker := time.NewTicker(frameFlushInterval)
	defer ticker.Stop()

	batch := make([]PixelRecord, 0, maxFramePixels)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		session.queue(websocket.BinaryMessage, EncodePixelFrame(batch))
		batch = batch[:0]
	}

	results, errChan := raytracer.Render(session.ctx)
	for results != nil {
		select {
		case result, ok := <-results:
			if !ok {
				results = nil
				break
			}
			stats.AddPixel(result.Stats)
			batch = append(batch, newPixelRecord(result))
			if len(batch) >= maxFramePixels {
				flush()
			}
		case msg := <-consoleChan:
			session.queueJSON(StreamMessage{Type: "console", Console: &msg})
		case <-ticker.C:
			flush()
		}
	}
	flush()
	stats.Elapsed = time.Since(startTime)

	// Console output logged while the last pixels finished
	s.flushConsole(session, consoleChan)

	if err := <-errChan; err != nil {
		session.queueJSON(StreamMessage{Type: "error", Error: err.Error()})
		return stats
	}

	wireStats := newStats(stats)
	session.queueJSON(StreamMessage{Type: "complete", Stats: &wireStats, Elapsed: stats.Elapsed.Milliseconds()})
	return stats
}

// flushConsole forwards any console messages still waiting in the channel
func (s *Server) flushConsole(session *streamSession, consoleChan <-chan ConsoleMessage) {
	for {
		select {
		case msg := <-consoleChan:
			session.queueJSON(StreamMessage{Type: "console", Console: &msg})
		default:
			return
		}
	}
}
