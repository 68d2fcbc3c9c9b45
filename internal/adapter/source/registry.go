package source

import (
	"fmt"
	"log/slog"

	"canasta/internal/domain/model"
	"canasta/internal/domain/port"
)

// Renderers holds the page loaders available to adapters. Browser may be nil
// when headless Chrome is disabled.
type Renderers struct {
	HTTP    Renderer
	Browser Renderer
}

// Build turns enabled source definitions into adapters, keeping their order.
// Registration order is the tie-break order used by the engines.
func Build(defs []model.SourceDefinition, r Renderers, log *slog.Logger) ([]port.SourcePort, error) {
	var sources []port.SourcePort
	seen := make(map[string]bool)

	for _, def := range defs {
		if !def.Enabled {
			continue
		}
		if def.Name == "" {
			return nil, fmt.Errorf("source definition without name")
		}
		if seen[def.Name] {
			return nil, fmt.Errorf("duplicate source %q", def.Name)
		}
		seen[def.Name] = true

		renderer := r.HTTP
		if def.Browser {
			if r.Browser == nil {
				log.Warn("browser rendering requested but disabled, using plain HTTP", "source", def.Name)
			} else {
				renderer = r.Browser
			}
		}

		var src port.SourcePort
		switch def.Kind {
		case model.SourceHTML:
			if def.SearchURL == "" || def.Selectors.Item == "" || def.Selectors.Price == "" {
				return nil, fmt.Errorf("source %q: html sources need search_url and item/price selectors", def.Name)
			}
			src = NewHTMLSource(def, renderer, log)
		case model.SourceVTEX:
			if def.BaseURL == "" {
				return nil, fmt.Errorf("source %q: vtex sources need base_url", def.Name)
			}
			src = NewVTEXSource(def, r.HTTP, log)
		case model.SourceFixture:
			src = NewFixtureSource(def.Name, def.Prices, log)
		default:
			return nil, fmt.Errorf("source %q: unknown kind %q", def.Name, def.Kind)
		}

		sources = append(sources, NewPoliteSource(src, def.RPS))
		log.Info("source registered", "source", def.Name, "kind", def.Kind, "browser", def.Browser && r.Browser != nil)
	}

	if len(sources) == 0 {
		return nil, fmt.Errorf("no enabled sources")
	}
	return sources, nil
}

// Names lists source names in registration order.
func Names(sources []port.SourcePort) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name()
	}
	return names
}
