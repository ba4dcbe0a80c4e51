package scitokens

import (
	"encoding/json"
	"fmt"
	"strings"
	"unicode"

	"gopkg.in/ini.v1"
)

// Audience configuration lives in section-based key/value text. Every
// section whose name case-insensitively starts with "global" contributes, in
// file order:
//
//	audience      — comma- or space-delimited audience names
//	audience_json — a JSON array of audience name strings
//
// parseAudienceConfig returns the concatenated list or a wrapped ErrConfig.
// Nothing is committed on failure; the caller keeps its previous list.
func parseAudienceConfig(src []byte) ([]string, error) {
	file, err := ini.Load(src)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrConfig, err)
	}

	var audiences []string
	for _, section := range file.Sections() {
		if !strings.HasPrefix(strings.ToLower(section.Name()), "global") {
			continue
		}

		if section.HasKey("audience") {
			audiences = append(audiences, splitAudienceList(section.Key("audience").String())...)
		}

		if section.HasKey("audience_json") {
			parsed, err := parseAudienceJSON(section.Key("audience_json").String())
			if err != nil {
				return nil, err
			}
			audiences = append(audiences, parsed...)
		}
	}

	return audiences, nil
}

// splitAudienceList splits on commas and whitespace, discarding empty
// fragments, so "alice, bob carol" yields three names.
func splitAudienceList(value string) []string {
	return strings.FieldsFunc(value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

// parseAudienceJSON decodes a JSON array of strings. A non-array value or
// any non-string element is a hard configuration error: the whole reload
// aborts rather than committing a partial list. Empty string elements are
// discarded, matching how the key=value form drops empty fragments.
func parseAudienceJSON(value string) ([]string, error) {
	var raw []any
	if err := json.Unmarshal([]byte(value), &raw); err != nil {
		return nil, fmt.Errorf("%w: audience_json is not a JSON array: %v", ErrConfig, err)
	}

	out := make([]string, 0, len(raw))
	for i, element := range raw {
		s, ok := element.(string)
		if !ok {
			return nil, fmt.Errorf("%w: audience_json element %d is not a string", ErrConfig, i)
		}
		if s == "" {
			continue
		}
		out = append(out, s)
	}
	return out, nil
}
