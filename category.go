//
// Copyright 2026 Cristian Maglie. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
//

package modelfetch

import (
	"github.com/juju/errors"
)

// Category selects the content directory a model is stored in.
type Category int

const (
	// LLM is a large language model, stored under "llm".
	LLM Category = iota + 1
	// Whisper is a speech recognition model, stored under "whisper".
	Whisper
	// TTS is a speech synthesis model, stored under "tts".
	TTS
)

var categoryLabels = map[Category]string{
	LLM:     "llm",
	Whisper: "whisper",
	TTS:     "tts",
}

// Categories returns all the known categories.
func Categories() []Category {
	return []Category{LLM, Whisper, TTS}
}

// String returns the directory label of the category.
func (c Category) String() string {
	if label, ok := categoryLabels[c]; ok {
		return label
	}
	return "invalid"
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	_, ok := categoryLabels[c]
	return ok
}

// ParseCategory returns the category with the given directory label.
func ParseCategory(label string) (Category, error) {
	for c, l := range categoryLabels {
		if l == label {
			return c, nil
		}
	}
	return 0, errors.NotValidf("category %q", label)
}

// MarshalText implements encoding.TextMarshaler.
func (c Category) MarshalText() ([]byte, error) {
	if !c.Valid() {
		return nil, errors.NotValidf("category %d", int(c))
	}
	return []byte(c.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Category) UnmarshalText(text []byte) error {
	parsed, err := ParseCategory(string(text))
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
