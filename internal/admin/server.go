package admin

import (
	"context"
	"embed"
	"encoding/json"
	"html/template"
	"net/http"

	"treadlink/internal/chart"
	"treadlink/internal/config"
	"treadlink/internal/link"
	"treadlink/internal/scenario"
	"treadlink/internal/telemetry"
)

// Server exposes the link status page and JSON control endpoints.
type Server struct {
	Link   *link.Manager
	Engine *scenario.Engine
	Store  *telemetry.Store
	Series *chart.Series
	Cfg    *config.Scenario

	tpl    *template.Template
	runCtx context.Context
}

//go:embed templates/index.html
var content embed.FS

// NewServer wires the admin surface over the running components.
func NewServer(lm *link.Manager, eng *scenario.Engine, store *telemetry.Store, series *chart.Series, cfg *config.Scenario) *Server {
	tpl := template.Must(template.New("index.html").ParseFS(content, "templates/index.html"))
	return &Server{Link: lm, Engine: eng, Store: store, Series: series, Cfg: cfg, tpl: tpl, runCtx: context.Background()}
}

func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/status", s.handleStatus)
	mux.HandleFunc("/telemetry", s.handleTelemetry)
	mux.HandleFunc("/chart", s.handleChart)
	mux.HandleFunc("/connect", s.handleConnect)
	mux.HandleFunc("/disconnect", s.handleDisconnect)
	mux.HandleFunc("/scenario/start", s.handleScenarioStart)
	mux.HandleFunc("/scenario/stop", s.handleScenarioStop)
	return mux
}

// Start serves until ctx is done.
func (s *Server) Start(ctx context.Context, addr string) error {
	s.runCtx = ctx
	srv := &http.Server{Addr: addr, Handler: s.routes()}
	go func() {
		<-ctx.Done()
		srv.Shutdown(context.Background())
	}()
	return srv.ListenAndServe()
}

// Status is the JSON shape of /status.
type Status struct {
	LinkState     link.State      `json:"link_state"`
	Address       string          `json:"address"`
	Scenario      string          `json:"scenario,omitempty"`
	Running       bool            `json:"running"`
	SpeedTarget   float64         `json:"speed_target"`
	InclineTarget float64         `json:"incline_target"`
	Telemetry     telemetry.State `json:"telemetry"`
}

func (s *Server) status() Status {
	speed, incline := s.Engine.Targets()
	return Status{
		LinkState:     s.Link.State(),
		Address:       s.Link.Address(),
		Scenario:      s.Engine.Name(),
		Running:       s.Engine.Running(),
		SpeedTarget:   speed,
		InclineTarget: incline,
		Telemetry:     s.Store.Snapshot(),
	}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	s.tpl.Execute(w, s.status())
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.status())
}

func (s *Server) handleTelemetry(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Store.Snapshot())
}

func (s *Server) handleChart(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(s.Series.Points())
}

func (s *Server) handleConnect(w http.ResponseWriter, r *http.Request) {
	addr := r.URL.Query().Get("addr")
	if addr == "" {
		addr = s.Cfg.Link.Address
	}
	if err := s.Link.Connect(addr); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleDisconnect(w http.ResponseWriter, r *http.Request) {
	s.Link.Disconnect()
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScenarioStart(w http.ResponseWriter, r *http.Request) {
	s.Engine.Start(s.runCtx, s.Cfg)
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) handleScenarioStop(w http.ResponseWriter, r *http.Request) {
	s.Engine.Stop()
	w.WriteHeader(http.StatusNoContent)
}
