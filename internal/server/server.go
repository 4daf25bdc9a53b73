// Package server is the HTTP backend behind the client commands: it copies
// datasets between buckets, accepts link files and reports progress.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"eiractl/internal/datasets"
	"eiractl/internal/models"
	"eiractl/pkg/utils"
)

const maxUploadBytes = 32 << 20

type DatasetCopier interface {
	CopyDataset(ctx context.Context, d datasets.Descriptor) ([]string, error)
}

type BatchStarter interface {
	Start(ctx context.Context, path string) error
}

type StatusSource interface {
	Snapshot() models.StatusSnapshot
}

type Options struct {
	Datasets     datasets.Table
	Copier       DatasetCopier
	Batches      BatchStarter
	Status       StatusSource
	UploadDir    string
	Token        string
	RequireToken bool
	Logger       *slog.Logger
	// BaseContext outlives individual requests; background batches use it.
	BaseContext context.Context
}

type Server struct {
	opts   Options
	logger *slog.Logger
}

func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.BaseContext == nil {
		opts.BaseContext = context.Background()
	}
	return &Server{opts: opts, logger: opts.Logger}
}

func (s *Server) RegisterRoutes(mux *http.ServeMux) {
	mux.Handle("POST /fetch/{type}", s.requireToken(http.HandlerFunc(s.handleFetch)))
	mux.HandleFunc("POST /upload-txt", s.handleUploadTxt)
	mux.HandleFunc("GET /status", s.handleStatus)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintln(w, "ok")
	})
}

// Handler returns the routes wrapped in request logging.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	s.RegisterRoutes(mux)
	return requestLogger(s.logger, mux)
}

func (s *Server) handleFetch(w http.ResponseWriter, r *http.Request) {
	datasetType := r.PathValue("type")
	d, ok := s.opts.Datasets.Lookup(datasetType)
	if !ok {
		writeError(w, http.StatusBadRequest, "Invalid dataset")
		return
	}

	copied, err := s.opts.Copier.CopyDataset(r.Context(), d)
	if err != nil {
		s.logger.Error("dataset copy failed", "dataset", datasetType, "copied", len(copied), "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	s.logger.Info("fetched dataset", "dataset", datasetType, "copied", len(copied), "sub_bucket", d.SubBucket)
	writeJSON(w, http.StatusOK, models.CopyResult{
		Status:    "success",
		Copied:    copied,
		SubBucket: d.SubBucket,
	})
}

func (s *Server) handleUploadTxt(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		// A part named "file" without a filename is parsed as a plain value.
		if _, ok := r.MultipartForm.Value["file"]; ok {
			writeError(w, http.StatusBadRequest, "No selected file")
			return
		}
		writeError(w, http.StatusBadRequest, "No file part")
		return
	}
	defer file.Close()

	if header.Filename == "" {
		writeError(w, http.StatusBadRequest, "No selected file")
		return
	}
	if !strings.HasSuffix(header.Filename, ".txt") {
		writeError(w, http.StatusBadRequest, "Only .txt files allowed")
		return
	}

	filename := SecureFilename(header.Filename)
	savePath, size, err := s.save(file, filename)
	if err != nil {
		s.logger.Error("failed to save upload", "file", filename, "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to save file")
		return
	}

	s.logger.Info("link file saved", "file", savePath, "size", utils.FormatBytes(size))

	if err := s.opts.Batches.Start(s.opts.BaseContext, savePath); err != nil {
		s.logger.Error("failed to start batch", "file", savePath, "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, models.UploadResponse{
		Status:  "success",
		Message: fmt.Sprintf("File %s uploaded. Processing started.", filename),
	})
}

func (s *Server) save(src io.Reader, filename string) (string, int64, error) {
	if err := os.MkdirAll(s.opts.UploadDir, 0o755); err != nil {
		return "", 0, err
	}
	savePath := filepath.Join(s.opts.UploadDir, filename)
	dst, err := os.Create(savePath)
	if err != nil {
		return "", 0, err
	}
	defer dst.Close()

	n, err := io.Copy(dst, src)
	if err != nil {
		return "", n, err
	}
	return savePath, n, dst.Close()
}

func (s *Server) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.opts.Status.Snapshot())
}

func (s *Server) requireToken(next http.Handler) http.Handler {
	if !s.opts.RequireToken {
		return next
	}
	expected := "Bearer " + s.opts.Token
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != expected {
			writeError(w, http.StatusUnauthorized, "Unauthorized")
			return
		}
		next.ServeHTTP(w, r)
	})
}

var unsafeFilenameChars = regexp.MustCompile(`[^A-Za-z0-9_.-]+`)

// SecureFilename reduces a client-supplied name to a safe base name.
func SecureFilename(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = filepath.Base(name)
	name = strings.Join(strings.Fields(name), "_")
	name = unsafeFilenameChars.ReplaceAllString(name, "")
	name = strings.TrimLeft(name, "._")
	if name == "" || name == "txt" {
		return "upload.txt"
	}
	return name
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Debug("failed to write response", "error", err)
	}
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, models.APIError{Error: message})
}
