package loam

// RevisionMetadata is the front matter of a revision document.
// It uses "mapstructure" tags to match the YAML/JSON keys authors write.
type RevisionMetadata struct {
	ID string `json:"id" mapstructure:"id"`

	// Parent references the predecessor. DownRevision is accepted as an alias.
	Parent       string `json:"parent" mapstructure:"parent"`
	DownRevision string `json:"down_revision" mapstructure:"down_revision"`

	Label   string `json:"label" mapstructure:"label"`
	Message string `json:"message" mapstructure:"message"`

	// Created is a timestamp or a string such as "2024-01-05 10:13:02.116812".
	Created any  `json:"created" mapstructure:"created"`
	Default bool `json:"default" mapstructure:"default"`

	// Up and Down hold op maps decoded by the compiler.
	Up   []any `json:"up" mapstructure:"up"`
	Down []any `json:"down" mapstructure:"down"`
}
