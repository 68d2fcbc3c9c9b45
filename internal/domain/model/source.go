package model

// SourceKind selects the adapter implementation for a source definition.
type SourceKind string

const (
	SourceHTML    SourceKind = "html"
	SourceVTEX    SourceKind = "vtex"
	SourceFixture SourceKind = "fixture"
)

// SourceDefinition describes one supermarket the service can query. It is
// read from the YAML config or from the Postgres source catalog.
type SourceDefinition struct {
	Name      string             `yaml:"name" json:"name"`
	Kind      SourceKind         `yaml:"kind" json:"kind"`
	BaseURL   string             `yaml:"base_url" json:"base_url"`
	SearchURL string             `yaml:"search_url" json:"search_url"`
	Browser   bool               `yaml:"browser" json:"browser"`
	Selectors SelectorSet        `yaml:"selectors" json:"selectors"`
	Prices    map[string]float64 `yaml:"prices" json:"prices"`
	RPS       float64            `yaml:"rps" json:"rps"`
	Enabled   bool               `yaml:"enabled" json:"enabled"`
}

// SelectorSet names the CSS classes that mark a listing and its fields on a
// search results page.
type SelectorSet struct {
	Item  string `yaml:"item" json:"item"`
	Name  string `yaml:"name" json:"name"`
	Price string `yaml:"price" json:"price"`
	Unit  string `yaml:"unit" json:"unit"`
	Link  string `yaml:"link" json:"link"`
}
