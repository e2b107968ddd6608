package api

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	log "log/slog"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"jarvis/internal/brain"
)

const (
	StatusRunning   = "Jarvis backend is running"
	ReplyNotCaught  = "I didn't catch that. Please try again."
	ReplyAudioError = "An error occurred while processing audio."
)

// FileTranscriber turns an audio file on disk into text.
type FileTranscriber interface {
	TranscribeFile(ctx context.Context, path string) (string, error)
}

type Options struct {
	MaxUpload int64  // bytes; 0 means 25 MiB
	TempDir   string // "" means os.TempDir()
	Echo      bool   // reply with the transcript instead of asking the brain
}

// Server is stateless across requests: every request gets a fresh, empty
// brain context and its own temp file.
type Server struct {
	brain brain.Brain
	stt   FileTranscriber
	opt   Options
}

func NewServer(b brain.Brain, stt FileTranscriber, opt Options) *Server {
	if opt.MaxUpload <= 0 {
		opt.MaxUpload = 25 << 20
	}
	return &Server{brain: b, stt: stt, opt: opt}
}

type textRequest struct {
	Text string `json:"text"`
}

type replyResponse struct {
	UserText    string `json:"user_text"`
	JarvisReply string `json:"jarvis_reply"`
	Error       string `json:"error,omitempty"`
}

type errorResponse struct {
	Error       string `json:"error"`
	JarvisReply string `json:"jarvis_reply,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": StatusRunning})
}

func (s *Server) handleText(w http.ResponseWriter, r *http.Request) {
	var req textRequest
	if err := json.NewDecoder(io.LimitReader(r.Body, 1<<20)).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}

	text := strings.TrimSpace(req.Text)
	if text == "" {
		writeJSON(w, http.StatusOK, replyResponse{JarvisReply: ReplyNotCaught})
		return
	}

	writeJSON(w, http.StatusOK, s.reply(r.Context(), text))
}

func (s *Server) handleSpeech(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.opt.MaxUpload)

	file, hdr, err := r.FormFile("file")
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "missing audio file: " + err.Error()})
		return
	}
	defer file.Close()

	path, err := s.spool(file, hdr, requestID(r.Context()))
	if err != nil {
		log.Error("Failed to store upload", "err", err)
		writeJSON(w, http.StatusOK, errorResponse{Error: err.Error(), JarvisReply: ReplyAudioError})
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			log.Warn("Failed to remove upload", "path", path, "err", err)
		}
	}()

	text, err := s.stt.TranscribeFile(r.Context(), path)
	if err != nil {
		log.Error("Failed to transcribe upload", "err", err)
		writeJSON(w, http.StatusOK, errorResponse{Error: err.Error(), JarvisReply: ReplyAudioError})
		return
	}

	if text == "" {
		writeJSON(w, http.StatusOK, replyResponse{JarvisReply: ReplyNotCaught})
		return
	}

	if s.opt.Echo {
		writeJSON(w, http.StatusOK, replyResponse{UserText: text, JarvisReply: text})
		return
	}

	writeJSON(w, http.StatusOK, s.reply(r.Context(), text))
}

func (s *Server) reply(ctx context.Context, text string) replyResponse {
	reply, err := s.brain.Think(ctx, text, brain.Context{})
	if err != nil {
		log.Error("Brain failed", "text", text, "err", err)
		return replyResponse{UserText: text, JarvisReply: brain.ReplyConfused, Error: err.Error()}
	}
	return replyResponse{UserText: text, JarvisReply: reply}
}

var audioExts = map[string]bool{".wav": true, ".mp3": true, ".ogg": true, ".oga": true, ".opus": true}

// spool copies the upload to a request-scoped temp file and returns its path.
func (s *Server) spool(src multipart.File, hdr *multipart.FileHeader, id string) (string, error) {
	ext := strings.ToLower(filepath.Ext(hdr.Filename))
	if !audioExts[ext] {
		ext = ".wav"
	}

	f, err := os.CreateTemp(s.opt.TempDir, "jarvis-"+id+"-*"+ext)
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}

	if _, err := io.Copy(f, src); err != nil {
		f.Close()
		os.Remove(f.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return "", fmt.Errorf("close temp file: %w", err)
	}

	return f.Name(), nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Warn("Failed to write response", "err", err)
	}
}
