// Copyright (c) HashiCorp, Inc.
// SPDX-License-Identifier: MPL-2.0

package ipk

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"
)

// Field is a single control field. Values that span multiple lines keep
// their line breaks, with the leading continuation blank of each line
// removed.
type Field struct {
	Name  string
	Value string
}

// Control holds the parsed control data of a package. The named fields
// cover the data every package carries; Fields preserves the complete
// stanza in order of appearance, including the named ones.
type Control struct {
	Package      string
	Version      string
	Architecture string
	Maintainer   string
	Description  string

	Fields []Field
}

// Get returns the value of the named field, matching the name case
// insensitively, or the empty string if the field is not present.
func (c *Control) Get(name string) string {
	for _, f := range c.Fields {
		if strings.EqualFold(f.Name, name) {
			return f.Value
		}
	}
	return ""
}

// ParseControl parses control data from src. The expected format is a
// single stanza of `Name: value` lines, where lines starting with a blank
// continue the value of the preceding field. Parsing stops at the first
// empty line; anything after it is ignored.
func ParseControl(src io.Reader) (*Control, error) {
	c := &Control{}
	line := 0

	scanner := bufio.NewScanner(src)
	for scanner.Scan() {
		text := strings.TrimSuffix(scanner.Text(), "\r")
		line++

		// blank lines before the stanza are tolerated, the first one
		// after it ends parsing
		if strings.TrimSpace(text) == "" {
			if len(c.Fields) == 0 {
				continue
			}
			break
		}

		// continuation of the previous field
		if text[0] == ' ' || text[0] == '\t' {
			if len(c.Fields) == 0 {
				return nil, fmt.Errorf("line %d: continuation without a field", line)
			}
			c.Fields[len(c.Fields)-1].Value += "\n" + text[1:]
			continue
		}

		name, value, ok := strings.Cut(text, ":")
		if !ok || strings.TrimSpace(name) == "" {
			return nil, fmt.Errorf("line %d: malformed control line", line)
		}
		c.Fields = append(c.Fields, Field{
			Name:  strings.TrimSpace(name),
			Value: strings.TrimSpace(value),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("cannot read control data: %w", err)
	}
	if len(c.Fields) == 0 {
		return nil, fmt.Errorf("no control fields found")
	}

	c.Package = c.Get("Package")
	c.Version = c.Get("Version")
	c.Architecture = c.Get("Architecture")
	c.Maintainer = c.Get("Maintainer")
	c.Description = c.Get("Description")

	return c, nil
}

// ReadControl extracts the control entry of p and parses it. If ctx is
// nil, context.Background() is used. If cfg is nil, the default
// configuration is used.
func ReadControl(ctx context.Context, p *Package, cfg *Config) (*Control, error) {
	var buf bytes.Buffer
	if err := ExtractControlFile(ctx, p, &buf, cfg); err != nil {
		return nil, err
	}
	c, err := ParseControl(&buf)
	if err != nil {
		return nil, fmt.Errorf("package %s: %w", p.String(), err)
	}
	return c, nil
}
