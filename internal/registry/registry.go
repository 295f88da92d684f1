// Package registry holds the fixed, ordered list of monitored endpoints.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"go.uber.org/multierr"
	"gopkg.in/yaml.v3"

	"github.com/hamed0406/pinger/internal/domain"
)

const DefaultProtocol = "HTTP"

var ErrInvalidRegistry = errors.New("invalid endpoint registry")

type Registry struct {
	endpoints []domain.Endpoint
}

// file is the on-disk shape shared by the YAML, TOML and JSON formats.
type file struct {
	Endpoints []domain.Endpoint `json:"endpoints" yaml:"endpoints" toml:"endpoints"`
}

// New validates eps and freezes their order. Every problem found is reported,
// not just the first.
func New(eps []domain.Endpoint) (*Registry, error) {
	out := make([]domain.Endpoint, 0, len(eps))
	names := make(map[string]int, len(eps))
	urls := make(map[string]int, len(eps))

	var errs error
	for i, ep := range eps {
		ep.Name = strings.TrimSpace(ep.Name)
		ep.URL = strings.TrimSpace(ep.URL)
		ep.Protocol = strings.TrimSpace(ep.Protocol)
		if ep.Protocol == "" {
			ep.Protocol = DefaultProtocol
		}

		if ep.Name == "" {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %d: name is empty", i))
		} else if j, dup := names[ep.Name]; dup {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %d: name %q already used by endpoint %d", i, ep.Name, j))
		} else {
			names[ep.Name] = i
		}

		if err := validateURL(ep.URL); err != nil {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %d (%s): %w", i, ep.Name, err))
		} else if j, dup := urls[ep.URL]; dup {
			errs = multierr.Append(errs, fmt.Errorf("endpoint %d: url %q already used by endpoint %d", i, ep.URL, j))
		} else {
			urls[ep.URL] = i
		}

		out = append(out, ep)
	}
	if errs != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidRegistry, errs)
	}
	return &Registry{endpoints: out}, nil
}

// Load reads a registry file. The format follows the extension:
// .yaml/.yml, .toml or .json.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read registry %s: %w", path, err)
	}

	var f file
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, &f)
	case ".toml":
		err = toml.Unmarshal(data, &f)
	case ".json":
		err = json.Unmarshal(data, &f)
	default:
		return nil, fmt.Errorf("%w: unsupported registry format %q", ErrInvalidRegistry, ext)
	}
	if err != nil {
		return nil, fmt.Errorf("parse registry %s: %w", path, err)
	}
	if len(f.Endpoints) == 0 {
		return nil, fmt.Errorf("%w: %s lists no endpoints", ErrInvalidRegistry, path)
	}
	return New(f.Endpoints)
}

// Default is used when no registry file is configured.
func Default() *Registry {
	r, _ := New([]domain.Endpoint{
		{Name: "Google", URL: "https://www.google.com", Protocol: DefaultProtocol},
		{Name: "GitHub", URL: "https://github.com", Protocol: DefaultProtocol},
	})
	return r
}

// Endpoints returns a copy of the registry in its fixed order.
func (r *Registry) Endpoints() []domain.Endpoint {
	return append([]domain.Endpoint(nil), r.endpoints...)
}

func (r *Registry) Len() int { return len(r.endpoints) }

func validateURL(raw string) error {
	if raw == "" {
		return errors.New("url is empty")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("url %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("url %q: missing host", raw)
	}
	return nil
}
