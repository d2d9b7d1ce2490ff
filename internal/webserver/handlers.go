package webserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net/http"
	"strconv"
	"svgslice/internal/pipeline"
	"svgslice/internal/profile"
	"svgslice/internal/slicer"
	"svgslice/internal/svgcheck"
	"time"
)

// Slicer runs the drawing-to-gcode pipeline
type Slicer interface {
	Slice(ctx context.Context, settings slicer.Settings) (pipeline.Result, error)
}

// Server serves the slicing pipeline over HTTP
type Server struct {
	slicer         Slicer
	logger         *slog.Logger
	defaultProfile string
	maxUploadBytes int64
}

// sliceRequest is the JSON body of POST /slice; unset settings come from the profile
type sliceRequest struct {
	Profile       string `json:"profile"`
	CustomProfile string `json:"profile_toml"`
	SVG           string `json:"svg"`
	profile.Overrides
}

func New(s Slicer, logger *slog.Logger, defaultProfile string, maxUploadBytes int64) (*Server, error) {
	err := LoadTranslations()
	if err != nil {
		return nil, fmt.Errorf("failed to load translations: %w", err)
	}

	if logger == nil {
		logger = slog.Default()
	}

	if maxUploadBytes <= 0 {
		maxUploadBytes = DefaultMaxUploadBytes
	}

	return &Server{
		slicer:         s,
		logger:         logger,
		defaultProfile: defaultProfile,
		maxUploadBytes: maxUploadBytes,
	}, nil
}

// Routes returns the complete handler tree with middleware applied
func (s *Server) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /slice", s.SliceHandler)
	mux.HandleFunc("GET /profiles", s.ProfilesHandler)
	mux.HandleFunc("GET /profiles/{name}", ProfileHandler)
	mux.HandleFunc("GET /healthz", HealthHandler)

	return LoggingMiddleware(s.logger, CompressionMiddleware(mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)

	go func() {
		s.logger.Info("Server started", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		s.logger.Info("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		return srv.Shutdown(shutdownCtx)
	}
}

func (s *Server) SliceHandler(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With("handler", "SliceHandler")
	log.Info("Received slice request", "remote_addr", r.RemoteAddr)

	lang := GetLanguageFromRequest(r)

	settings, filename, err := s.receiveRequest(w, r)
	if err != nil {
		log.Error("Failed to receive request", "error", err)
		WriteErrorResponseWithLang(w, err, StatusCode(err), lang)

		return
	}

	res, err := s.slicer.Slice(r.Context(), settings)
	if err != nil {
		log.Error("Request processing failed", "error", err)
		WriteErrorResponseWithLang(w, err, StatusCode(err), lang)

		return
	}

	sendResponse(w, res, filename)

	log.Info("Request processed", "run", res.RunID, "filename", filename, "bytes", len(res.GCode))
}

func sendResponse(w http.ResponseWriter, res pipeline.Result, filename string) {
	h := w.Header()
	h.Set("Content-Type", "text/plain; charset=utf-8")
	h.Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", GCodeFilename(filename)))
	h.Set("X-Run-Id", res.RunID)
	h.Set("X-Gcode-Lines", strconv.Itoa(res.Summary.Lines))
	h.Set("X-Gcode-Print-Moves", strconv.Itoa(res.Summary.PrintMoves))
	h.Set("X-Gcode-Layers", strconv.Itoa(res.Summary.Layers))

	_, _ = io.WriteString(w, res.GCode)
}

func (s *Server) receiveRequest(w http.ResponseWriter, r *http.Request) (slicer.Settings, string, error) {
	r.Body = http.MaxBytesReader(w, r.Body, s.maxUploadBytes)

	mediaType := "application/json"

	if ct := r.Header.Get("Content-Type"); ct != "" {
		var err error

		mediaType, _, err = mime.ParseMediaType(ct)
		if err != nil {
			return slicer.Settings{}, "", badRequest("invalid content type %q: %w", ct, err)
		}
	}

	var (
		settings slicer.Settings
		filename string
		err      error
	)

	switch mediaType {
	case "application/json":
		settings, err = s.decodeJSON(r)
		filename = "drawing.svg"
	case "multipart/form-data":
		settings, filename, err = s.decodeForm(r)
	default:
		err = badRequest("unsupported content type %q", mediaType)
	}

	if err != nil {
		return settings, filename, err
	}

	info, err := svgcheck.Validate(settings.SVG)
	if err != nil {
		return settings, filename, badRequest("%w", err)
	}

	s.logger.Debug("Drawing accepted",
		"width", info.Width,
		"height", info.Height,
		"view_box", info.ViewBox,
		"elements", info.Elements)

	return settings, filename, nil
}

func (s *Server) decodeJSON(r *http.Request) (slicer.Settings, error) {
	var req sliceRequest

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	err := dec.Decode(&req)
	if err != nil {
		return slicer.Settings{}, badRequest("invalid json body: %w", err)
	}

	base, err := s.loadProfile(req.Profile, req.CustomProfile)
	if err != nil {
		return slicer.Settings{}, err
	}

	settings := profile.Apply(base, req.Overrides)
	settings.SVG = req.SVG

	return settings, nil
}

func (s *Server) decodeForm(r *http.Request) (slicer.Settings, string, error) {
	err := r.ParseMultipartForm(MaxFormSize)
	if err != nil {
		return slicer.Settings{}, "", badRequest("form parsing error: %w", err)
	}

	base, err := s.loadProfile(r.FormValue("profile"), r.FormValue("profile_toml"))
	if err != nil {
		return slicer.Settings{}, "", err
	}

	overrides, err := parseFormOverrides(r)
	if err != nil {
		return slicer.Settings{}, "", err
	}

	settings := profile.Apply(base, overrides)

	file, header, err := r.FormFile("svg")
	if errors.Is(err, http.ErrMissingFile) {
		// small drawings may come as a plain form field
		settings.SVG = r.FormValue("svg")
		return settings, "drawing.svg", nil
	}

	if err != nil {
		return slicer.Settings{}, "", badRequest("file retrieval error: %w", err)
	}
	defer file.Close()

	err = ValidateFileUpload(file, header, s.maxUploadBytes)
	if err != nil {
		return slicer.Settings{}, "", badRequest("%w", err)
	}

	data, err := io.ReadAll(file)
	if err != nil {
		return slicer.Settings{}, "", badRequest("file reading error: %w", err)
	}

	settings.SVG = string(data)

	return settings, header.Filename, nil
}

// loadProfile resolves the base settings: a custom TOML profile wins over a named one
func (s *Server) loadProfile(name, custom string) (slicer.Settings, error) {
	if custom != "" {
		p, err := profile.Parse([]byte(custom))
		if err != nil {
			return slicer.Settings{}, badRequest("invalid custom profile: %w", err)
		}

		s.logger.Debug("Using custom profile", "profile", p.Name)

		return p.Settings, nil
	}

	if name == "" {
		name = s.defaultProfile
	}

	if name == "" {
		return slicer.Settings{}, nil
	}

	p, err := profile.Load(name)
	if err != nil {
		return slicer.Settings{}, badRequest("%w", err)
	}

	return p.Settings, nil
}

// parseFormOverrides reads the optional print settings of a multipart request; empty fields are skipped
func parseFormOverrides(r *http.Request) (profile.Overrides, error) {
	var o profile.Overrides

	floats := []struct {
		key string
		dst **float64
	}{
		{"fill_density", &o.FillDensity},
		{"fill_overlap", &o.FillOverlap},
	}

	for _, f := range floats {
		v := r.FormValue(f.key)
		if v == "" {
			continue
		}

		parsed, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return o, badRequest("invalid %s value %q: %w", f.key, v, err)
		}

		*f.dst = &parsed
	}

	ints := []struct {
		key string
		dst **int
	}{
		{"fill_angle", &o.FillAngle},
		{"fill_speed", &o.FillSpeed},
		{"perimeters", &o.Perimeters},
		{"perimeter_speed", &o.PerimeterSpeed},
	}

	for _, f := range ints {
		v := r.FormValue(f.key)
		if v == "" {
			continue
		}

		parsed, err := strconv.Atoi(v)
		if err != nil {
			return o, badRequest("invalid %s value %q: %w", f.key, v, err)
		}

		*f.dst = &parsed
	}

	if v := r.FormValue("fill_pattern"); v != "" {
		pattern, err := slicer.ParseFillPattern(v)
		if err != nil {
			return o, badRequest("%w", err)
		}

		o.FillPattern = &pattern
	}

	if v := r.FormValue("fill_connected"); v != "" {
		connected, err := strconv.ParseBool(v)
		if err != nil {
			return o, badRequest("invalid fill_connected value %q: %w", v, err)
		}

		o.FillConnected = &connected
	}

	return o, nil
}

type profileInfo struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// ProfilesHandler lists the built-in print profiles
func (s *Server) ProfilesHandler(w http.ResponseWriter, r *http.Request) {
	log := s.logger.With("handler", "ProfilesHandler")

	names := profile.Names()
	list := make([]profileInfo, 0, len(names))

	for _, name := range names {
		p, err := profile.Load(name)
		if err != nil {
			log.Error("Failed to load profile", "profile", name, "error", err)
			continue
		}

		list = append(list, profileInfo{Name: p.Name, Description: p.Description})
	}

	log.Debug("Listed profiles", "count", len(list))

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// ProfileHandler returns one profile as TOML, the format accepted for custom profiles
func ProfileHandler(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")

	data, err := profile.Raw(name)
	if err != nil {
		lang := GetLanguageFromRequest(r)
		err = badRequest("%w", err)
		WriteErrorResponseWithLang(w, err, StatusCode(err), lang)

		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write(data)
}

func HealthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = io.WriteString(w, "ok")
}
