// Package language holds the fixed table of supported languages and the
// identifier that maps free text to one of them.
package language

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownLanguage is returned when a name or code is not in the table.
var ErrUnknownLanguage = errors.New("unknown language")

// UnknownName is the display name reported when detection cannot place the text.
const UnknownName = "Inconnue"

// Descriptor describes one supported language.
type Descriptor struct {
	Name   string `json:"name" yaml:"name"`     // French display name shown to users
	Code   string `json:"code" yaml:"code"`     // NLLB translation code, e.g. "fra_Latn"
	Speech string `json:"speech" yaml:"speech"` // ISO-639-1 speech code, e.g. "fr"
}

// Known reports whether d is one of the supported languages.
func (d Descriptor) Known() bool {
	return d.Name != UnknownName && d.Name != ""
}

var table = []Descriptor{
	{Name: "Français", Code: "fra_Latn", Speech: "fr"},
	{Name: "Anglais", Code: "eng_Latn", Speech: "en"},
	{Name: "Arabe", Code: "ary_Arab", Speech: "ar"},
	{Name: "Espagnol", Code: "spa_Latn", Speech: "es"},
}

// Supported returns the supported languages in menu order.
func Supported() []Descriptor {
	out := make([]Descriptor, len(table))
	copy(out, table)
	return out
}

// Default is the language assumed when nothing better is known.
func Default() Descriptor { return table[0] }

// Unknown is the descriptor reported for undetectable text. It carries the
// default translation and speech codes so downstream calls still work.
func Unknown() Descriptor {
	d := Default()
	d.Name = UnknownName
	return d
}

// Lookup resolves a display name, translation code or speech code.
// Matching is case-insensitive.
func Lookup(key string) (Descriptor, error) {
	k := strings.TrimSpace(key)
	for _, d := range table {
		if strings.EqualFold(d.Name, k) || strings.EqualFold(d.Code, k) || strings.EqualFold(d.Speech, k) {
			return d, nil
		}
	}
	return Descriptor{}, fmt.Errorf("%w: %q", ErrUnknownLanguage, key)
}

// BySpeech resolves an ISO-639-1 code.
func BySpeech(code string) (Descriptor, bool) {
	for _, d := range table {
		if strings.EqualFold(d.Speech, code) {
			return d, true
		}
	}
	return Descriptor{}, false
}

// ByCode resolves a translation code.
func ByCode(code string) (Descriptor, bool) {
	for _, d := range table {
		if d.Code == code {
			return d, true
		}
	}
	return Descriptor{}, false
}
