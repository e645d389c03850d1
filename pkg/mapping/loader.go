package mapping

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
	"github.com/tidwall/jsonc"
	"gopkg.in/yaml.v3"
)

// Format is a mapping file syntax.
type Format int

const (
	// FormatTOML is the default mapping format.
	FormatTOML Format = iota
	// FormatYAML is selected by .yaml and .yml extensions.
	FormatYAML
	// FormatJSON is selected by .json and .jsonc extensions. Comments and
	// trailing commas are allowed.
	FormatJSON
)

// String returns the format name.
func (f Format) String() string {
	switch f {
	case FormatTOML:
		return "toml"
	case FormatYAML:
		return "yaml"
	case FormatJSON:
		return "json"
	default:
		return "unknown"
	}
}

// FormatForPath picks the format from the file extension. Unknown
// extensions are treated as TOML.
func FormatForPath(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	case ".json", ".jsonc":
		return FormatJSON
	default:
		return FormatTOML
	}
}

// LoadError describes a mapping file that could not be loaded.
type LoadError struct {
	File    string
	Message string
	Cause   error
}

func (e *LoadError) Error() string {
	var b strings.Builder
	if e.File != "" {
		b.WriteString(e.File)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

func (e *LoadError) Unwrap() error {
	return e.Cause
}

// document is the on-disk shape of a mapping file.
type document struct {
	Mappings []fileEntry `json:"mappings" yaml:"mappings" toml:"mappings"`
}

// fileEntry accepts both "topic" and the older "sub_topic" key.
type fileEntry struct {
	Topic    string   `json:"topic" yaml:"topic" toml:"topic"`
	SubTopic string   `json:"sub_topic" yaml:"sub_topic" toml:"sub_topic"`
	Actions  []Action `json:"actions" yaml:"actions" toml:"actions"`
}

// Parse decodes mapping data in the given format and validates it.
func Parse(data []byte, format Format) ([]Entry, error) {
	var doc document
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	case FormatJSON:
		err = json.Unmarshal(jsonc.ToJSON(data), &doc)
	default:
		err = toml.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, &LoadError{Message: "failed to parse " + format.String(), Cause: err}
	}

	entries := make([]Entry, 0, len(doc.Mappings))
	for i, fe := range doc.Mappings {
		topic := fe.Topic
		if topic == "" {
			topic = fe.SubTopic
		}
		if topic == "" {
			return nil, &LoadError{Message: fmt.Sprintf("mapping %d: topic is required", i)}
		}
		for j, a := range fe.Actions {
			if a.Kind == 0 {
				return nil, &LoadError{Message: fmt.Sprintf("mapping %q action %d: action_type is required", topic, j)}
			}
		}
		entries = append(entries, Entry{Topic: topic, Actions: fe.Actions})
	}
	return entries, nil
}

// LoadFile reads and parses the mapping file at path.
//
// A missing file is not an error: a default empty mapping file is written in
// its place and an empty table is returned.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		if werr := WriteDefault(path); werr != nil {
			return nil, werr
		}
		return Empty(), nil
	}
	if err != nil {
		return nil, &LoadError{File: path, Message: "failed to read file", Cause: err}
	}

	entries, err := Parse(data, FormatForPath(path))
	if err != nil {
		var le *LoadError
		if errors.As(err, &le) {
			le.File = path
			return nil, le
		}
		return nil, &LoadError{File: path, Message: err.Error()}
	}
	return NewTable(entries), nil
}

const defaultTOML = `# MIDI mappings for the subpub relay.
#
# [[mappings]]
# topic = "drums/kick"
#
# [[mappings.actions]]
# action_type = "note_on_off"   # note_on, note_off, note_on_off, cc, program_change
# channel = 9
# note = 36
# velocity = 110
# duration_ms = 80

mappings = []
`

const defaultYAML = `# MIDI mappings for the subpub relay.
#
# mappings:
#   - topic: drums/kick
#     actions:
#       - action_type: note_on_off   # note_on, note_off, note_on_off, cc, program_change
#         channel: 9
#         note: 36
#         velocity: 110
#         duration_ms: 80
mappings: []
`

const defaultJSON = `// MIDI mappings for the subpub relay.
// {"topic": "drums/kick", "actions": [{"action_type": "note_on_off", "channel": 9, "note": 36}]}
{
  "mappings": []
}
`

// WriteDefault writes an empty mapping file, in the format implied by the
// path's extension, with a commented example.
func WriteDefault(path string) error {
	var content string
	switch FormatForPath(path) {
	case FormatYAML:
		content = defaultYAML
	case FormatJSON:
		content = defaultJSON
	default:
		content = defaultTOML
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return &LoadError{File: path, Message: "failed to create directory", Cause: err}
		}
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return &LoadError{File: path, Message: "failed to write default mapping file", Cause: err}
	}
	return nil
}
