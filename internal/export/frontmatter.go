package export

import (
	"bytes"
	"sort"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"

	"cropsight/internal/agronomy"
)

// PageMeta is the YAML frontmatter carried by every report page.
type PageMeta struct {
	Title      string                   `yaml:"title"`
	Persona    string                   `yaml:"persona,omitempty"`
	Crop       string                   `yaml:"crop"`
	Confidence float64                  `yaml:"confidence"`
	Risk       string                   `yaml:"risk"`
	Inputs     *agronomy.MeasurementSet `yaml:"inputs,omitempty"`
	Tags       []string                 `yaml:"tags"`
}

// ParsePage splits a report page into its frontmatter and body.
func ParsePage(data []byte) (PageMeta, string, error) {
	fm, body, err := splitFrontmatter(data)
	if err != nil {
		return PageMeta{}, "", err
	}
	var meta PageMeta
	if err := yaml.Unmarshal(fm, &meta); err != nil {
		return PageMeta{}, "", eris.Wrap(err, "export: unmarshal frontmatter")
	}
	return meta, string(body), nil
}

// splitFrontmatter splits a markdown document into its frontmatter (raw YAML
// bytes) and body. The document must begin with "---\n"; the closing "---"
// line ends the frontmatter block.
func splitFrontmatter(data []byte) (frontmatter []byte, body []byte, err error) {
	const delim = "---\n"
	if !bytes.HasPrefix(data, []byte(delim)) {
		return nil, nil, eris.New("export: missing opening --- delimiter")
	}
	rest := data[len(delim):]
	idx := bytes.Index(rest, []byte("\n---"))
	if idx < 0 {
		return nil, nil, eris.New("export: missing closing --- delimiter")
	}
	fm := rest[:idx]
	tail := rest[idx+4:]
	for len(tail) > 0 && tail[0] == '\n' {
		tail = tail[1:]
	}
	return fm, tail, nil
}

// withFrontmatter marshals meta as YAML frontmatter ahead of body. Tags are
// sorted so output is stable.
func withFrontmatter(meta PageMeta, body string) (string, error) {
	tags := make([]string, len(meta.Tags))
	copy(tags, meta.Tags)
	sort.Strings(tags)
	meta.Tags = tags

	fm, err := yaml.Marshal(meta)
	if err != nil {
		return "", eris.Wrap(err, "export: marshal frontmatter")
	}
	var buf bytes.Buffer
	buf.WriteString("---\n")
	buf.Write(fm)
	buf.WriteString("---\n\n")
	buf.WriteString(body)
	return buf.String(), nil
}
