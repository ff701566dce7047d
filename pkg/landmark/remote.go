package landmark

import (
	"StorySignGolang/internal/entity"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
	"golang.org/x/net/context"
)

const remoteURLEnv = "HARMONY_DETECTOR_URL"

// remoteDetector streams frames to an external landmark inference service
// over a websocket. The service is expected to run a single-face detector
// with fixed detection/tracking confidence thresholds; this client only
// forwards frames and parses responses.
type remoteDetector struct {
	url          string
	conn         *websocket.Conn
	mu           sync.Mutex
	log          *logrus.Logger
	pingInterval time.Duration
	readTimeout  time.Duration
	writeTimeout time.Duration
	done         chan struct{}
}

type remoteResponse struct {
	Faces      int              `json:"faces"`
	Landmarks  entity.Landmarks `json:"landmarks"`
	ImageShape [2]int           `json:"image_shape"`
	Error      string           `json:"error,omitempty"`
}

func NewRemoteDetector(log *logrus.Logger) (Detector, error) {
	url := os.Getenv(remoteURLEnv)
	if url == "" {
		return nil, fmt.Errorf("%s not configured", remoteURLEnv)
	}

	d := &remoteDetector{
		url:          url,
		log:          log,
		pingInterval: 30 * time.Second,
		readTimeout:  10 * time.Second,
		writeTimeout: 5 * time.Second,
		done:         make(chan struct{}),
	}

	go func() {
		if err := d.reconnect(); err != nil {
			log.Warnf("Initial connection to landmark service failed: %v. Will retry on demand.", err)
		} else {
			log.Info("Connected to landmark inference service")
		}
	}()

	return d, nil
}

func (d *remoteDetector) reconnect() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.dialLocked()
}

// dialLocked establishes a fresh connection. Caller must hold d.mu.
func (d *remoteDetector) dialLocked() error {
	if d.conn != nil {
		d.conn.Close()
		d.conn = nil
	}

	dialer := websocket.DefaultDialer
	dialer.HandshakeTimeout = 10 * time.Second

	conn, _, err := dialer.Dial(d.url, nil)
	if err != nil {
		return fmt.Errorf("failed to connect to %s: %w", d.url, err)
	}

	conn.SetPingHandler(func(appData string) error {
		err := conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(d.writeTimeout))
		if err != nil {
			d.log.Errorf("Error sending pong to landmark service: %v", err)
		}
		return nil
	})

	d.conn = conn
	go d.keepAlive(conn)

	return nil
}

func (d *remoteDetector) keepAlive(conn *websocket.Conn) {
	ticker := time.NewTicker(d.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case <-d.done:
			return
		case <-ticker.C:
		}

		d.mu.Lock()
		if d.conn != conn {
			d.mu.Unlock()
			return
		}

		err := conn.WriteControl(websocket.PingMessage, []byte{}, time.Now().Add(d.writeTimeout))
		if err != nil {
			d.log.Warnf("Ping to landmark service failed, marking connection as dead: %v", err)
			d.conn = nil
			d.mu.Unlock()
			return
		}
		d.mu.Unlock()
	}
}

func (d *remoteDetector) Detect(ctx context.Context, frame *Frame) (*Result, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn == nil {
		if err := d.dialLocked(); err != nil {
			return nil, errors.Join(ErrDetectionFailed, err)
		}
	}
	conn := d.conn

	deadline := time.Now().Add(d.writeTimeout)
	if ctxDeadline, ok := ctx.Deadline(); ok && ctxDeadline.Before(deadline) {
		deadline = ctxDeadline
	}

	if err := conn.SetWriteDeadline(deadline); err != nil {
		return nil, errors.Join(ErrDetectionFailed, err)
	}
	if err := conn.WriteMessage(websocket.BinaryMessage, frame.Data); err != nil {
		d.conn = nil
		return nil, errors.Join(ErrDetectionFailed, err)
	}

	if err := conn.SetReadDeadline(time.Now().Add(d.readTimeout)); err != nil {
		return nil, errors.Join(ErrDetectionFailed, err)
	}
	_, message, err := conn.ReadMessage()
	if err != nil {
		d.conn = nil
		return nil, errors.Join(ErrDetectionFailed, err)
	}

	var resp remoteResponse
	if err := json.Unmarshal(message, &resp); err != nil {
		return nil, errors.Join(ErrDetectionFailed, err)
	}
	if resp.Error != "" {
		d.log.Warnf("Landmark service error: %s", resp.Error)
		return nil, ErrDetectionFailed
	}
	if resp.Faces == 0 || len(resp.Landmarks) == 0 {
		return nil, ErrNoFaceDetected
	}

	shape := resp.ImageShape
	if shape == [2]int{} {
		shape = [2]int{frame.Height, frame.Width}
	}

	return &Result{Landmarks: resp.Landmarks, ImageShape: shape}, nil
}

func (d *remoteDetector) Close() error {
	close(d.done)

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.conn != nil {
		err := d.conn.Close()
		d.conn = nil
		return err
	}
	return nil
}
