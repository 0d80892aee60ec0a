package version

import (
	"embed"
	"fmt"
	"slices"
	"sort"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/ocf-bpm/bpm-go/pkg/model"
)

//go:embed manifests/*.yaml
var manifestFS embed.FS

// Manifest describes the resources a device type requires.
type Manifest struct {
	Version     string                  `yaml:"version"`
	Description string                  `yaml:"description"`
	DeviceType  string                  `yaml:"device_type"`
	Resources   map[string]ResourceSpec `yaml:"resources"`
}

// ResourceSpec describes a single resource within a manifest.
type ResourceSpec struct {
	Mandatory  bool     `yaml:"mandatory"`
	Observable bool     `yaml:"observable"`
	Types      []string `yaml:"types"`
	Interfaces []string `yaml:"interfaces"`
}

// ---------------------------------------------------------------------------
// Cache
// ---------------------------------------------------------------------------

var (
	cacheMu sync.RWMutex
	cache   = make(map[string]*Manifest)
)

// LoadManifest loads a manifest by version string (e.g. "1.1").
func LoadManifest(ver string) (*Manifest, error) {
	cacheMu.RLock()
	if m, ok := cache[ver]; ok {
		cacheMu.RUnlock()
		return m, nil
	}
	cacheMu.RUnlock()

	data, err := manifestFS.ReadFile("manifests/" + ver + ".yaml")
	if err != nil {
		return nil, fmt.Errorf("manifest version %q not found: %w", ver, err)
	}

	var m Manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest %q: %w", ver, err)
	}

	cacheMu.Lock()
	cache[ver] = &m
	cacheMu.Unlock()

	return &m, nil
}

// LoadCurrentManifest loads the manifest for the current OCF version.
func LoadCurrentManifest() (*Manifest, error) {
	return LoadManifest(Current)
}

// AvailableManifests returns the version strings of all embedded manifests.
func AvailableManifests() ([]string, error) {
	entries, err := manifestFS.ReadDir("manifests")
	if err != nil {
		return nil, fmt.Errorf("reading manifests directory: %w", err)
	}

	var versions []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasSuffix(name, ".yaml") {
			versions = append(versions, strings.TrimSuffix(name, ".yaml"))
		}
	}
	sort.Strings(versions)
	return versions, nil
}

// MandatoryResources returns the hrefs of all mandatory resources, sorted.
func (m *Manifest) MandatoryResources() []string {
	var out []string
	for href, rs := range m.Resources {
		if rs.Mandatory {
			out = append(out, href)
		}
	}
	sort.Strings(out)
	return out
}

// ---------------------------------------------------------------------------
// Validation
// ---------------------------------------------------------------------------

// ValidationResult holds the outcome of validating a device against a manifest.
type ValidationResult struct {
	Valid    bool
	Errors   []string
	Warnings []string
}

// ValidateLinks checks the discovery links of a device against a manifest.
// Missing mandatory resources, resource types and interfaces are errors.
// Observability mismatches and resources the manifest does not know are
// warnings.
func ValidateLinks(m *Manifest, links []model.Representation) ValidationResult {
	var result ValidationResult

	byHref := make(map[string]model.Representation, len(links))
	for _, l := range links {
		href, _ := l.GetString(model.KeyHref)
		byHref[href] = l
	}

	hrefs := make([]string, 0, len(m.Resources))
	for href := range m.Resources {
		hrefs = append(hrefs, href)
	}
	sort.Strings(hrefs)

	for _, href := range hrefs {
		rs := m.Resources[href]
		link, present := byHref[href]
		if !present {
			if rs.Mandatory {
				result.Errors = append(result.Errors,
					fmt.Sprintf("mandatory resource %s missing", href))
			}
			continue
		}

		types, _ := link.GetStringArray(model.KeyResourceTypes)
		for _, rt := range rs.Types {
			if !slices.Contains(types, rt) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("resource %s missing resource type %s", href, rt))
			}
		}

		ifs, _ := link.GetStringArray(model.KeyInterfaces)
		for _, itf := range rs.Interfaces {
			if !slices.Contains(ifs, itf) {
				result.Errors = append(result.Errors,
					fmt.Sprintf("resource %s missing interface %s", href, itf))
			}
		}

		if observable := linkObservable(link); observable != rs.Observable {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("resource %s observable = %t, manifest expects %t", href, observable, rs.Observable))
		}
	}

	for _, l := range links {
		href, _ := l.GetString(model.KeyHref)
		if _, known := m.Resources[href]; !known && !strings.HasPrefix(href, "/oic/") {
			result.Warnings = append(result.Warnings,
				fmt.Sprintf("resource %s not in manifest %s", href, m.Version))
		}
	}

	result.Valid = len(result.Errors) == 0
	return result
}

func linkObservable(link model.Representation) bool {
	policy, ok := link.GetObject(model.KeyPolicy)
	if !ok {
		return false
	}
	bm, _ := policy.GetInt(model.KeyBitmap)
	return uint8(bm)&model.BitmapObservable != 0
}
