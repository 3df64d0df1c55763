package server

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sync"

	"github.com/gorilla/websocket"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/philipparndt/gcodeview/pkg/sim"
)

// Command is a playback request sent by a websocket client
type Command struct {
	Command string  `json:"command"`
	GCode   string  `json:"gcode,omitempty"`
	Index   int     `json:"index,omitempty"`
	Speed   float64 `json:"speed,omitempty"`
	Reverse bool    `json:"reverse,omitempty"`
}

// Message is sent to websocket clients
type Message struct {
	Type         string     `json:"type"`
	Frame        *sim.Frame `json:"frame,omitempty"`
	SegmentCount int        `json:"segmentCount,omitempty"`
	Error        string     `json:"error,omitempty"`
}

// jsonConn is the writing side of a websocket connection
type jsonConn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// session owns one websocket connection and its playback controller.
// Only the write loop writes to the connection.
type session struct {
	conn      jsonConn
	out       chan Message
	done      chan struct{}
	ctrl      *sim.Controller
	closeOnce sync.Once
}

func newSession(conn jsonConn) *session {
	return &session{
		conn: conn,
		out:  make(chan Message, 64),
		done: make(chan struct{}),
	}
}

func (s *Server) simulate(w http.ResponseWriter, req *http.Request) {
	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		log.Printf("ERROR: upgrade: %+v", err)
		return
	}
	defer conn.Close()

	sess := newSession(conn)
	sess.ctrl = sim.New(gcode.NewToolpath(), sim.Options{
		Speed:     s.cfg.Simulation.Speed,
		Scheduler: s.scheduler,
		OnFrame: func(f sim.Frame) {
			sess.send(Message{Type: "frame", Frame: &f})
		},
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sess.writeLoop()
	}()

	for {
		var cmd Command
		if err := conn.ReadJSON(&cmd); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				log.Printf("ERROR: read command: %+v", err)
			}
			break
		}
		if err := s.apply(req.Context(), sess, cmd); err != nil {
			sess.send(Message{Type: "error", Error: err.Error()})
		}
	}

	sess.close()
	wg.Wait()
}

// close stops the session once: pending and future sends return, playback
// is paused and the connection is closed, which also ends the read loop
func (sess *session) close() {
	sess.closeOnce.Do(func() {
		close(sess.done)
		if sess.ctrl != nil {
			sess.ctrl.Pause()
		}
		sess.conn.Close()
	})
}

func (sess *session) send(msg Message) {
	select {
	case sess.out <- msg:
	case <-sess.done:
	}
}

func (sess *session) writeLoop() {
	for {
		select {
		case msg := <-sess.out:
			if err := sess.conn.WriteJSON(msg); err != nil {
				log.Printf("ERROR: write %s: %+v", msg.Type, err)
				sess.close()
				return
			}
		case <-sess.done:
			return
		}
	}
}

func (s *Server) apply(ctx context.Context, sess *session, cmd Command) error {
	ctrl := sess.ctrl
	switch cmd.Command {
	case "load":
		parser := gcode.NewParser()
		parser.ArcSegments = s.cfg.Parser.ArcSegments
		res := loader.Load(ctx, cmd.GCode, loader.Options{
			ChunkSize: s.cfg.Loader.ChunkSize,
			Parser:    parser,
		})
		if res.Err != nil {
			return fmt.Errorf("failed to load: %w", res.Err)
		}
		sess.send(Message{Type: "loaded", SegmentCount: res.Toolpath.Len()})
		ctrl.SetToolpath(res.Toolpath)
	case "play":
		ctrl.Play()
	case "pause":
		ctrl.Pause()
	case "stop", "rewind":
		ctrl.Stop()
	case "forward":
		ctrl.FastForward()
	case "seek":
		ctrl.Seek(cmd.Index)
	case "step":
		ctrl.StepForward()
	case "back":
		ctrl.StepBackward()
	case "speed":
		ctrl.SetSpeed(cmd.Speed)
	case "reverse":
		ctrl.SetReverse(cmd.Reverse)
	case "frame":
		f := ctrl.Frame()
		sess.send(Message{Type: "frame", Frame: &f})
	default:
		return fmt.Errorf("unknown command %q", cmd.Command)
	}
	return nil
}
