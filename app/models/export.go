package models

import (
	"bytes"
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// ExternalPost is one post of a blog export.
type ExternalPost struct {
	Title       string            `yaml:"title" json:"title" validate:"required"`
	Description string            `yaml:"description" json:"description"`
	TextMore    string            `yaml:"mt_text_more" json:"mt_text_more"`
	DateCreated string            `yaml:"dateCreated" json:"dateCreated" validate:"required"`
	Author      string            `yaml:"author" json:"author" validate:"required"`
	AuthorEmail string            `yaml:"authorEmail" json:"authorEmail"`
	Permalink   string            `yaml:"permalink" json:"permalink" validate:"required"`
	Categories  []string          `yaml:"category" json:"category"`
	Comments    []ExternalComment `yaml:"comments" json:"comments" validate:"dive"`
}

// ExternalComment is a comment nested under an ExternalPost.
type ExternalComment struct {
	CommentID     ExternalID `yaml:"commentId" json:"commentId"`
	CommentParent ExternalID `yaml:"commentParent" json:"commentParent"`
	Body          string     `yaml:"body" json:"body"`
	DateCreated   string     `yaml:"dateCreated" json:"dateCreated" validate:"required"`
	Author        string     `yaml:"author" json:"author" validate:"required"`
	AuthorEmail   string     `yaml:"authorEmail" json:"authorEmail"`
}

// Validate checks the record and its comments.
func (p *ExternalPost) Validate() error {
	return validate.Struct(p)
}

// ExternalID is an id from the export. Exports write ids as numbers or
// strings; both decode to the same value. An empty ExternalID means none.
type ExternalID string

func (id *ExternalID) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.ScalarNode {
		return fmt.Errorf("line %d: id must be a scalar", value.Line)
	}
	if value.Tag == "!!null" {
		*id = ""
		return nil
	}
	*id = ExternalID(value.Value)
	return nil
}

func (id *ExternalID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ExternalID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id must be a string or number: %w", err)
	}
	*id = ExternalID(n.String())
	return nil
}
