// Package docs embeds the user manual, one markdown file per topic, served
// by the 'exps topic' command.
package docs

import (
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"strings"
)

//go:embed *.md
var manual embed.FS

// GetTopic returns the markdown content of one topic. The special name "*"
// expands to the whole manual.
func GetTopic(name string) (string, error) {
	if name == "*" {
		return GetTopics(GetAllTopics()...)
	}
	content, err := manual.ReadFile(name + ".md")
	if err != nil {
		return "", fmt.Errorf("unknown topic %q", name)
	}
	return string(content), nil
}

// GetTopics concatenates several topics into one document.
func GetTopics(names ...string) (string, error) {
	var b strings.Builder
	for _, name := range names {
		content, err := GetTopic(name)
		if err != nil {
			return "", err
		}
		b.WriteString(content)
		b.WriteString("\n")
	}
	return b.String(), nil
}

// GetAllTopics lists the topic names, sorted. The readme is the table of
// contents, not a topic.
func GetAllTopics() []string {
	files, _ := fs.Glob(manual, "*.md")
	names := make([]string, 0, len(files))
	for _, file := range files {
		if name := strings.TrimSuffix(file, ".md"); name != "readme" {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}
