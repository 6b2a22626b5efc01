package server

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"sync/atomic"

	"github.com/df07/go-sphere-pathtracer/pkg/core"
	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
	"github.com/df07/go-sphere-pathtracer/pkg/scene"
)

const (
	minImageSize = 16
	maxImageSize = 2000
	maxSamples   = 10000
	maxDepth     = 500
)

// Server handles web requests for the path tracer
type Server struct {
	port          int
	staticDir     string
	activeStreams atomic.Int64
}

// NewServer creates a new web server
func NewServer(port int) *Server {
	return &Server{port: port, staticDir: "static/"}
}

// RenderRequest represents a render request from the client
type RenderRequest struct {
	Scene           string `json:"scene"`           // Scene name (e.g., "random")
	Width           int    `json:"width"`           // Image width
	Height          int    `json:"height"`          // Image height
	SamplesPerPixel int    `json:"samplesPerPixel"` // Samples per pixel
	MaxDepth        int    `json:"maxDepth"`        // Maximum ray bounce depth
	Seed            uint64 `json:"seed"`            // Random seed (0 = time based)
}

// Stats represents render statistics
type Stats struct {
	TotalPixels    int     `json:"totalPixels"`
	TotalSamples   int64   `json:"totalSamples"`
	AverageSamples float64 `json:"averageSamples"`
	MaxSamples     int     `json:"maxSamples"`
	MinSamples     int     `json:"minSamples"`
	MaxSamplesUsed int     `json:"maxSamplesUsed"`
}

func newStats(stats renderer.RenderStats) Stats {
	return Stats{
		TotalPixels:    stats.TotalPixels,
		TotalSamples:   int64(stats.TotalSamples),
		AverageSamples: stats.AverageSamples,
		MaxSamples:     stats.MaxSamples,
		MinSamples:     stats.MinSamples,
		MaxSamplesUsed: stats.MaxSamplesUsed,
	}
}

// Handler returns the HTTP routes served by the server
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	// Serve static files
	mux.Handle("/", http.FileServer(http.Dir(s.staticDir)))

	// API endpoints
	mux.HandleFunc("/api/stream", s.handleStream)
	mux.HandleFunc("/api/health", s.handleHealth)
	mux.HandleFunc("/api/scenes", s.handleScenes)
	mux.HandleFunc("/api/scene-config", s.handleSceneConfig)
	mux.HandleFunc("/api/inspect", s.handleInspect)

	return mux
}

// Start starts the web server
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.port)
	log.Printf("Starting web server on http://localhost%s", addr)
	return http.ListenAndServe(addr, s.Handler())
}

// writeJSON writes a JSON response with the given status
func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Error encoding response: %v", err)
	}
}

// writeError writes a JSON error body
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}

// handleHealth provides a simple health check endpoint
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":        "ok",
		"activeStreams": s.ActiveStreams(),
	})
}

// ActiveStreams returns the number of renders currently streaming to clients
func (s *Server) ActiveStreams() int64 {
	return s.activeStreams.Load()
}

// handleScenes lists the available scenes grouped by category
func (s *Server) handleScenes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, scene.ListAllScenes())
}

// parseCommonSceneParams parses the scene and image parameters shared by render and inspect.
// Unset parameters fall back to the scene's own defaults.
func (s *Server) parseCommonSceneParams(r *http.Request, req *RenderRequest) error {
	query := r.URL.Query()

	req.Scene = query.Get("scene")
	if req.Scene == "" {
		req.Scene = "default"
	}

	seed, err := parseUintParam(query, "seed", 0)
	if err != nil {
		return err
	}
	req.Seed = seed

	defaults, err := scene.Create(req.Scene, scene.Options{Seed: 1})
	if err != nil {
		return err
	}
	config := defaults.SamplingConfig

	if req.Width, err = parseIntParam(query, "width", min(config.Width, maxImageSize), minImageSize, maxImageSize); err != nil {
		return err
	}
	defaultHeight := scene.HeightForWidth(req.Width, defaults.CameraConfig.AspectRatio)
	if req.Height, err = parseIntParam(query, "height", max(defaultHeight, minImageSize), minImageSize, maxImageSize); err != nil {
		return err
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "spp", config.SamplesPerPixel, 1, maxSamples); err != nil {
		return err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", config.MaxDepth, 0, maxDepth); err != nil {
		return err
	}
	return nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseUintParam parses an unsigned integer parameter from URL query
func parseUintParam(values url.Values, key string, defaultValue uint64) (uint64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseUint(value, 10, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseFloatParam parses a float parameter from URL query with validation
func parseFloatParam(values url.Values, key string, defaultValue, min, max float64) (float64, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %f and %f, got: %f", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// parseCameraOverrides reads optional camera parameters (vfov, aperture).
// Only parameters present in the query override the scene, so aperture=0 turns off depth of field.
func parseCameraOverrides(values url.Values) (*renderer.CameraOverrides, error) {
	var overrides renderer.CameraOverrides
	set := false

	if values.Has("vfov") {
		vfov, err := parseFloatParam(values, "vfov", 0, 1, 179)
		if err != nil {
			return nil, err
		}
		overrides.VFov = &vfov
		set = true
	}
	if values.Has("aperture") {
		aperture, err := parseFloatParam(values, "aperture", 0, 0, 10)
		if err != nil {
			return nil, err
		}
		overrides.Aperture = &aperture
		set = true
	}

	if !set {
		return nil, nil
	}
	return &overrides, nil
}

// createScene builds the requested scene and applies the request's sampling settings
func (s *Server) createScene(req *RenderRequest, camera *renderer.CameraOverrides, logger core.Logger) (*scene.Scene, error) {
	sceneObj, err := scene.Create(req.Scene, scene.Options{Seed: req.Seed, Camera: camera})
	if err != nil {
		return nil, err
	}

	sceneObj.SamplingConfig.Width = req.Width
	sceneObj.SamplingConfig.Height = req.Height
	sceneObj.SamplingConfig.SamplesPerPixel = req.SamplesPerPixel
	sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	sceneObj.SamplingConfig.Seed = req.Seed

	// Match the camera to the requested image shape
	if aspect := float64(req.Width) / float64(req.Height); aspect != sceneObj.CameraConfig.AspectRatio {
		sceneObj.CameraConfig.AspectRatio = aspect
		sceneObj.Camera = renderer.NewCamera(sceneObj.CameraConfig)
	}

	if logger != nil {
		logger.Printf("Created %s scene with %d spheres\n", req.Scene, sceneObj.GetPrimitiveCount())
	}
	return sceneObj, nil
}

// handleSceneConfig returns the default configuration for a scene
func (s *Server) handleSceneConfig(w http.ResponseWriter, r *http.Request) {
	sceneName := r.URL.Query().Get("scene")
	if sceneName == "" {
		sceneName = "default"
	}

	sceneObj, err := scene.Create(sceneName, scene.Options{Seed: 1})
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Return the scene's sampling configuration with validation limits
	config := sceneObj.SamplingConfig
	camera := sceneObj.CameraConfig
	response := map[string]interface{}{
		"scene": sceneName,
		"defaults": map[string]interface{}{
			"width":           config.Width,
			"height":          config.Height,
			"samplesPerPixel": config.SamplesPerPixel,
			"maxDepth":        config.MaxDepth,
			"vfov":            camera.VFov,
			"aperture":        camera.Aperture,
			"aspectRatio":     camera.AspectRatio,
		},
		"limits": map[string]interface{}{
			"width":           map[string]int{"min": minImageSize, "max": maxImageSize},
			"height":          map[string]int{"min": minImageSize, "max": maxImageSize},
			"samplesPerPixel": map[string]int{"min": 1, "max": maxSamples},
			"maxDepth":        map[string]int{"min": 0, "max": maxDepth},
			"vfov":            map[string]float64{"min": 1, "max": 179},
			"aperture":        map[string]float64{"min": 0, "max": 10},
		},
	}

	writeJSON(w, http.StatusOK, response)
}
