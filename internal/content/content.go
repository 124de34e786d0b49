// Package content holds the parameters a set is configured with: the
// introduction page and the ordered list of questions.
package content

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

var (
	// ErrNoQuestions is returned for content without questions.
	ErrNoQuestions = errors.New("content has no questions")

	// ErrDuplicateID is returned when two content files share an ID.
	ErrDuplicateID = errors.New("duplicate content id")
)

// Introduction configures the optional intro page.
type Introduction struct {
	ShowIntroPage   bool   `json:"showIntroPage" yaml:"showIntroPage"`
	Title           string `json:"introductionTitle,omitempty" yaml:"introductionTitle,omitempty"`
	Text            string `json:"introductionText,omitempty" yaml:"introductionText,omitempty"`
	StartButtonText string `json:"introductionButtonLabel,omitempty" yaml:"introductionButtonLabel,omitempty"`
}

// Question configures one spoken-answer question.
type Question struct {
	SubContentID        string   `json:"subContentId" yaml:"subContentId"`
	Question            string   `json:"question" yaml:"question" validate:"required"`
	AcceptedAnswers     []string `json:"acceptedAnswers" yaml:"acceptedAnswers"`
	InputLanguage       string   `json:"inputLanguage,omitempty" yaml:"inputLanguage,omitempty"`
	CorrectAnswerText   string   `json:"correctAnswerText,omitempty" yaml:"correctAnswerText,omitempty"`
	IncorrectAnswerText string   `json:"incorrectAnswerText,omitempty" yaml:"incorrectAnswerText,omitempty"`
}

// Params is the full configuration of a set.
type Params struct {
	ID           string       `json:"id,omitempty" yaml:"id,omitempty"`
	Title        string       `json:"title,omitempty" yaml:"title,omitempty"`
	Introduction Introduction `json:"introduction" yaml:"introduction"`
	Questions    []Question   `json:"questions" yaml:"questions" validate:"dive"`
}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks that the params describe a usable set.
func (p *Params) Validate() error {
	if len(p.Questions) == 0 {
		return ErrNoQuestions
	}
	if err := validate.Struct(p); err != nil {
		return fmt.Errorf("invalid content: %w", err)
	}
	return nil
}

// Format selects the encoding of a content file.
type Format int

const (
	FormatJSON Format = iota
	FormatYAML
)

// FormatFor picks the format from a file extension; anything other than
// .yaml/.yml is read as JSON.
func FormatFor(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Parse decodes and validates params. Questions without a sub-content ID
// get a positional one, and a missing ID is left for the caller to fill.
func Parse(data []byte, format Format) (*Params, error) {
	var p Params
	var err error
	switch format {
	case FormatYAML:
		err = yaml.Unmarshal(data, &p)
	default:
		err = json.Unmarshal(data, &p)
	}
	if err != nil {
		return nil, fmt.Errorf("parse content: %w", err)
	}

	for i := range p.Questions {
		if p.Questions[i].SubContentID == "" {
			p.Questions[i].SubContentID = fmt.Sprintf("q-%d", i+1)
		}
	}

	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Load reads a content file. The content ID defaults to the file name
// without extension.
func Load(path string) (*Params, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content: %w", err)
	}
	p, err := Parse(data, FormatFor(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	if p.ID == "" {
		p.ID = strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	}
	return p, nil
}

// DisplayTitle returns the title, falling back to the content ID.
func (p *Params) DisplayTitle() string {
	if p.Title != "" {
		return p.Title
	}
	if p.ID != "" {
		return p.ID
	}
	return "Speak the Words Set"
}

// LoadAll loads every path. A directory contributes its .json, .yaml and
// .yml files in name order. Duplicate content IDs are rejected.
func LoadAll(paths []string) ([]*Params, error) {
	var files []string
	for _, path := range paths {
		info, err := os.Stat(path)
		if err != nil {
			return nil, fmt.Errorf("stat content: %w", err)
		}
		if !info.IsDir() {
			files = append(files, path)
			continue
		}
		entries, err := os.ReadDir(path)
		if err != nil {
			return nil, fmt.Errorf("read content dir: %w", err)
		}
		for _, e := range entries {
			if e.IsDir() {
				continue
			}
			switch strings.ToLower(filepath.Ext(e.Name())) {
			case ".json", ".yaml", ".yml":
				files = append(files, filepath.Join(path, e.Name()))
			}
		}
	}

	seen := make(map[string]string, len(files))
	out := make([]*Params, 0, len(files))
	for _, f := range files {
		p, err := Load(f)
		if err != nil {
			return nil, err
		}
		if prev, ok := seen[p.ID]; ok {
			return nil, fmt.Errorf("%w: %q in %s and %s", ErrDuplicateID, p.ID, prev, f)
		}
		seen[p.ID] = f
		out = append(out, p)
	}
	return out, nil
}
