package main

import (
	"encoding/json"
	"errors"
	"html/template"
	"io"
	"log"
	"net/http"
	"os"
	"path/filepath"

	"github.com/pivolan/chart_builder/config"
	"github.com/pivolan/chart_builder/dataset"
	"github.com/pivolan/chart_builder/domain/models"
	"github.com/pivolan/chart_builder/plot"
	"github.com/pivolan/chart_builder/session"
	uuid "github.com/satori/go.uuid"
)

// maxUploadSize limits the multipart form kept in memory; the rest spills to disk.
const maxUploadSize = 32 << 20

// uploadNotifier is told about datasets uploaded through a link handed out by the bot.
type uploadNotifier interface {
	SessionReady(uploadID string, s *session.Session)
}

type server struct {
	cfg      *config.Config
	registry *session.Registry
	notifier uploadNotifier
}

func newServer(cfg *config.Config, registry *session.Registry, notifier uploadNotifier) *server {
	return &server{cfg: cfg, registry: registry, notifier: notifier}
}

func (s *server) routes() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/upload", s.handleUpload)
	mux.HandleFunc("/api/session", s.handleSession)
	mux.HandleFunc("/api/bind", s.handleBind)
	mux.HandleFunc("/api/chart-type", s.handleChartType)
	mux.HandleFunc("/api/drag/start", s.handleDragStart)
	mux.HandleFunc("/api/drag/end", s.handleDragEnd)
	mux.HandleFunc("/chart.png", s.handleChartPNG)
	mux.HandleFunc("/chart.html", s.handleChartHTML)
	mux.HandleFunc("/ws", s.handleWS)
	return mux
}

var uploadForm = template.Must(template.New("upload").Parse(`<!DOCTYPE html>
<html>
<head><title>Chart builder</title></head>
<body>
<form action="/upload" method="post" enctype="multipart/form-data">
<input type="hidden" name="uuid" value="{{.}}">
<input type="file" name="file" accept=".csv,.json,.xlsx,.zip,.gz,.lz4">
<button type="submit">Upload</button>
</form>
</body>
</html>
`))

func (s *server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	id := r.URL.Query().Get("id")
	if err := uploadForm.Execute(w, id); err != nil {
		http.Error(w, "Error rendering upload form", http.StatusInternalServerError)
	}
}

func (s *server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if err := r.ParseMultipartForm(maxUploadSize); err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}

	// Get the file from the form data
	file, header, err := r.FormFile("file")
	if err != nil {
		http.Error(w, "Error uploading file", http.StatusBadRequest)
		return
	}
	defer file.Close()

	id := r.FormValue("uuid")
	if id == "" {
		id = uuid.NewV4().String()
	} else if _, err := uuid.FromString(id); err != nil {
		http.Error(w, "Error getting uuid", http.StatusBadRequest)
		return
	}

	dir := filepath.Join(s.cfg.UploadDir, id)
	if err := os.MkdirAll(dir, 0755); err != nil {
		http.Error(w, "Error creating upload dir", http.StatusInternalServerError)
		return
	}
	filePath := filepath.Join(dir, filepath.Base(header.Filename))
	if err := saveUpload(filePath, file); err != nil {
		log.Printf("Error saving file %s: %v", filePath, err)
		http.Error(w, "Error saving file", http.StatusInternalServerError)
		return
	}

	records, err := dataset.Load(filePath)
	if err != nil {
		log.Printf("Error loading %s: %v", filePath, err)
		http.Error(w, "Error reading dataset: "+err.Error(), http.StatusBadRequest)
		return
	}
	sess, err := s.registry.CreateWithID(id, records)
	if err != nil && !errors.Is(err, models.ErrEmptyDataset) {
		writeError(w, err)
		return
	}
	if s.notifier != nil {
		s.notifier.SessionReady(id, sess)
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}

type bindRequest struct {
	ID        string `json:"id"`
	Channel   string `json:"channel"`
	Field     string `json:"field"`
	Zone      string `json:"zone"`
	ChartType string `json:"chartType"`
}

type dropResponse struct {
	Result   string           `json:"result"`
	Changed  bool             `json:"changed"`
	Snapshot session.Snapshot `json:"snapshot"`
}

func (s *server) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.Snapshot())
}

func (s *server) handleBind(w http.ResponseWriter, r *http.Request) {
	req, sess, ok := s.decode(w, r)
	if !ok {
		return
	}
	snap, err := sess.Bind(req.Channel, req.Field)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleChartType(w http.ResponseWriter, r *http.Request) {
	req, sess, ok := s.decode(w, r)
	if !ok {
		return
	}
	snap, err := sess.SetChartType(req.ChartType)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, snap)
}

func (s *server) handleDragStart(w http.ResponseWriter, r *http.Request) {
	req, sess, ok := s.decode(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, sess.DragStart(req.Field))
}

// handleDragEnd never fails on a rejected drop; the result tells what happened.
func (s *server) handleDragEnd(w http.ResponseWriter, r *http.Request) {
	req, sess, ok := s.decode(w, r)
	if !ok {
		return
	}
	res, snap := sess.DragEnd(req.Field, req.Zone)
	writeJSON(w, http.StatusOK, dropResponse{Result: res.String(), Changed: res.Changed(), Snapshot: snap})
}

func (s *server) handleChartPNG(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if !s.chartReady(w, snap) {
		return
	}
	png, err := plot.RenderPNG(snap.Descriptor, s.size())
	if err != nil {
		writeError(w, err)
		return
	}
	w.Header().Set("Content-Type", "image/png")
	w.Write(png)
}

func (s *server) handleChartHTML(w http.ResponseWriter, r *http.Request) {
	sess, ok := s.lookup(w, r.URL.Query().Get("id"))
	if !ok {
		return
	}
	snap := sess.Snapshot()
	if !s.chartReady(w, snap) {
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := plot.RenderHTML(w, snap.Descriptor, s.size()); err != nil {
		log.Printf("Error rendering html chart for %s: %v", snap.ID, err)
	}
}

func (s *server) chartReady(w http.ResponseWriter, snap session.Snapshot) bool {
	if snap.Error != "" {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"error": snap.Error})
		return false
	}
	if !snap.Descriptor.Renderable {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"placeholder": snap.Descriptor.Placeholder})
		return false
	}
	return true
}

func (s *server) size() plot.Size {
	return plot.Size{Width: s.cfg.ChartWidth, Height: s.cfg.ChartHeight}
}

func (s *server) lookup(w http.ResponseWriter, id string) (*session.Session, bool) {
	if id == "" {
		http.Error(w, "id is required", http.StatusBadRequest)
		return nil, false
	}
	sess, ok := s.registry.Get(id)
	if !ok {
		http.Error(w, "session not found", http.StatusNotFound)
		return nil, false
	}
	return sess, true
}

func (s *server) decode(w http.ResponseWriter, r *http.Request) (bindRequest, *session.Session, bool) {
	var req bindRequest
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return req, nil, false
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid json: "+err.Error(), http.StatusBadRequest)
		return req, nil, false
	}
	sess, ok := s.lookup(w, req.ID)
	return req, sess, ok
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrUnknownField),
		errors.Is(err, models.ErrUnknownChannel),
		errors.Is(err, models.ErrUnknownChartType):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrKindMismatch),
		errors.Is(err, models.ErrInsufficientBinding),
		errors.Is(err, models.ErrNonNumericMeasure),
		errors.Is(err, models.ErrEmptyDataset),
		errors.Is(err, plot.ErrNothingToDraw):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, statusFor(err), map[string]string{"error": err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error writing response: %v", err)
	}
}
