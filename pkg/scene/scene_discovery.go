package scene

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/df07/go-sphere-pathtracer/pkg/renderer"
)

// ErrUnknownScene is returned when a scene name is not registered
var ErrUnknownScene = errors.New("unknown scene")

// SceneInfo represents a registered scene with its metadata
type SceneInfo struct {
	ID          string `json:"id"`          // Unique identifier
	DisplayName string `json:"displayName"` // UI display name
	Description string `json:"description"` // Optional description
	Group       string `json:"group"`       // Grouping category
}

// SceneGroup represents a group of related scenes
type SceneGroup struct {
	Name   string      `json:"name"`
	Scenes []SceneInfo `json:"scenes"`
}

// ScenesResponse represents the complete response for /api/scenes
type ScenesResponse struct {
	Groups []SceneGroup `json:"groups"`
}

// Options carries the inputs a scene builder may need
type Options struct {
	Seed   uint64                    // Layout seed for randomized scenes (0 = clock)
	Camera *renderer.CameraOverrides // Optional camera override
}

type sceneEntry struct {
	info  SceneInfo
	build func(opts Options) *Scene
}

const builtInGroup = "Built-in Scenes"

// cameraOverrides turns an optional override into the variadic form the builders take
func (o Options) cameraOverrides() []renderer.CameraOverrides {
	if o.Camera == nil {
		return nil
	}
	return []renderer.CameraOverrides{*o.Camera}
}

var registry = []sceneEntry{
	{
		info: SceneInfo{ID: "random", Description: "Field of random spheres around three large ones", Group: builtInGroup},
		build: func(opts Options) *Scene {
			return NewRandomScene(opts.Seed, opts.cameraOverrides()...)
		},
	},
	{
		info: SceneInfo{ID: "default", Description: "Spheres of every material, including hollow glass", Group: builtInGroup},
		build: func(opts Options) *Scene {
			return NewDefaultScene(opts.cameraOverrides()...)
		},
	},
	{
		info: SceneInfo{ID: "single-sphere", Description: "One grey diffuse sphere under the sky", Group: "Test Scenes"},
		build: func(opts Options) *Scene {
			return NewSingleSphereScene(opts.cameraOverrides()...)
		},
	},
	{
		info: SceneInfo{ID: "sphere-grid", Description: "Grid of rainbow-colored metallic spheres", Group: builtInGroup},
		build: func(opts Options) *Scene {
			return NewSphereGridScene(opts.cameraOverrides()...)
		},
	},
}

// Names returns the registered scene identifiers in registration order
func Names() []string {
	names := make([]string, 0, len(registry))
	for _, entry := range registry {
		names = append(names, entry.info.ID)
	}
	return names
}

// Create builds the named scene
func Create(name string, opts Options) (*Scene, error) {
	for _, entry := range registry {
		if entry.info.ID == name {
			return entry.build(opts), nil
		}
	}
	return nil, fmt.Errorf("%w: %q (available: %s)", ErrUnknownScene, name, strings.Join(Names(), ", "))
}

// ListAllScenes returns the registered scenes, grouped by category
func ListAllScenes() ScenesResponse {
	var response ScenesResponse

	groupMap := make(map[string][]SceneInfo)
	for _, entry := range registry {
		info := entry.info
		info.DisplayName = titleCase(info.ID)
		groupMap[info.Group] = append(groupMap[info.Group], info)
	}

	// Built-in first, then alphabetical
	var groupNames []string
	for groupName := range groupMap {
		if groupName != builtInGroup {
			groupNames = append(groupNames, groupName)
		}
	}
	sort.Strings(groupNames)

	if scenes, exists := groupMap[builtInGroup]; exists {
		response.Groups = append(response.Groups, SceneGroup{Name: builtInGroup, Scenes: scenes})
	}
	for _, groupName := range groupNames {
		response.Groups = append(response.Groups, SceneGroup{
			Name:   groupName,
			Scenes: groupMap[groupName],
		})
	}

	return response
}

// titleCase converts an identifier to title case
// e.g., "sphere-grid" -> "Sphere Grid"
func titleCase(s string) string {
	// Replace hyphens and underscores with spaces
	s = strings.ReplaceAll(s, "-", " ")
	s = strings.ReplaceAll(s, "_", " ")

	// Title case each word
	words := strings.Fields(s)
	for i, word := range words {
		if len(word) > 0 {
			words[i] = strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
		}
	}

	return strings.Join(words, " ")
}
