// Package server exposes the parser, the loader and the playback
// controller over HTTP
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"strconv"

	sse "github.com/alexandrevicenzi/go-sse"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/philipparndt/gcodeview/pkg/config"
	"github.com/philipparndt/gcodeview/pkg/gcode"
	"github.com/philipparndt/gcodeview/pkg/geometry"
	"github.com/philipparndt/gcodeview/pkg/loader"
	"github.com/philipparndt/gcodeview/pkg/sim"
)

// ProgressChannel is the SSE channel that receives loader progress
const ProgressChannel = "/events/progress"

// maxBody limits uploaded G-code programs
const maxBody = 64 << 20

// Options configures a Server
type Options struct {
	Config *config.Config
	// Scheduler drives playback on websocket sessions
	Scheduler sim.Scheduler
}

// Server routes the API requests
type Server struct {
	http.Handler
	cfg       *config.Config
	scheduler sim.Scheduler
	sse       *sse.Server
	upgrader  websocket.Upgrader
}

// New creates a server with its routes registered
func New(opts Options) *Server {
	if opts.Config == nil {
		opts.Config = config.Default()
	}
	if opts.Scheduler == nil {
		opts.Scheduler = sim.RealScheduler{}
	}

	r := mux.NewRouter()
	s := &Server{
		Handler:   r,
		cfg:       opts.Config,
		scheduler: opts.Scheduler,
		sse: sse.NewServer(&sse.Options{
			Logger: log.New(io.Discard, "", 0),
		}),
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}

	r.HandleFunc("/api/parse", s.parse).Methods(http.MethodPost)
	r.HandleFunc("/api/validate", s.validate).Methods(http.MethodPost)
	r.HandleFunc("/ws/simulate", s.simulate)
	r.PathPrefix("/events/").Handler(s.sse)

	return s
}

// Close disconnects every SSE client
func (s *Server) Close() {
	s.sse.Shutdown()
}

// ListenAndServe serves until ctx is done
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{Addr: addr, Handler: s}
	errc := make(chan error, 1)
	go func() {
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return fmt.Errorf("failed to serve on %s: %w", addr, err)
	case <-ctx.Done():
		s.Close()
		return srv.Shutdown(context.Background())
	}
}

type segmentJSON struct {
	Start geometry.Vector3 `json:"start"`
	End   geometry.Vector3 `json:"end"`
	Mode  gcode.Mode       `json:"mode"`
	Line  int              `json:"line"`
}

type boundsJSON struct {
	Min geometry.Vector3 `json:"min"`
	Max geometry.Vector3 `json:"max"`
}

type parseResponse struct {
	LineCount    int           `json:"lineCount"`
	ChunkCount   int           `json:"chunkCount"`
	SegmentCount int           `json:"segmentCount"`
	Counts       gcode.Counts  `json:"counts"`
	Skipped      []int         `json:"skipped"`
	AnyDrawn     bool          `json:"anyDrawn"`
	Final        gcode.State   `json:"final"`
	Bounds       *boundsJSON   `json:"bounds,omitempty"`
	Segments     []segmentJSON `json:"segments,omitempty"`
	Cancelled    bool          `json:"cancelled,omitempty"`
}

type validateResponse struct {
	ChunkCount int            `json:"chunkCount"`
	Valid      bool           `json:"valid"`
	Issues     []loader.Issue `json:"issues"`
}

func (s *Server) load(w http.ResponseWriter, req *http.Request, keepChunks bool) (*loader.Result, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, req.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("failed to read body: %w", err)
	}

	chunkSize := s.cfg.Loader.ChunkSize
	if v := req.URL.Query().Get("chunkSize"); v != "" {
		chunkSize, err = strconv.Atoi(v)
		if err != nil || chunkSize < 1 {
			return nil, fmt.Errorf("invalid chunkSize %q", v)
		}
	}

	parser := gcode.NewParser()
	parser.ArcSegments = s.cfg.Parser.ArcSegments

	res := loader.Load(req.Context(), string(data), loader.Options{
		ChunkSize:  chunkSize,
		KeepChunks: keepChunks,
		Parser:     parser,
		OnProgress: s.publishProgress,
	})
	if res.Err != nil && !res.Cancelled {
		return nil, res.Err
	}
	return res, nil
}

func (s *Server) publishProgress(p loader.Progress) {
	data, err := json.Marshal(p)
	if err != nil {
		log.Printf("ERROR: marshal progress: %+v", err)
		return
	}
	s.sse.SendMessage(ProgressChannel, sse.SimpleMessage(string(data)))
}

func (s *Server) parse(w http.ResponseWriter, req *http.Request) {
	res, err := s.load(w, req, false)
	if err != nil {
		log.Printf("ERROR: parse: %+v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	tp := res.Toolpath
	out := parseResponse{
		LineCount:    res.LineCount,
		ChunkCount:   res.ChunkCount,
		SegmentCount: tp.Len(),
		Counts:       tp.Counts,
		Skipped:      tp.Skipped,
		AnyDrawn:     tp.AnyDrawn,
		Final:        tp.Final,
		Cancelled:    res.Cancelled,
	}
	if out.Skipped == nil {
		out.Skipped = []int{}
	}
	if bounds := tp.Bounds(); !bounds.IsEmpty() {
		out.Bounds = &boundsJSON{Min: bounds.Min, Max: bounds.Max}
	}
	if withSegments, _ := strconv.ParseBool(req.URL.Query().Get("segments")); withSegments {
		out.Segments = make([]segmentJSON, tp.Len())
		for i, seg := range tp.Segments {
			out.Segments[i] = segmentJSON{Start: seg.Start, End: seg.End, Mode: tp.Modes[i], Line: tp.LineMap[i]}
		}
	}

	writeJSON(w, out)
}

func (s *Server) validate(w http.ResponseWriter, req *http.Request) {
	res, err := s.load(w, req, true)
	if err != nil {
		log.Printf("ERROR: validate: %+v", err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	issues := loader.Validate(res.Chunks)
	if issues == nil {
		issues = []loader.Issue{}
	}
	writeJSON(w, validateResponse{
		ChunkCount: res.ChunkCount,
		Valid:      len(issues) == 0,
		Issues:     issues,
	})
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Println("ERROR: encode:", err)
	}
}
