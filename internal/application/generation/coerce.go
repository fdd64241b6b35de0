package generation

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/khoahotran/studyplan/pkg/apperror"
	"github.com/khoahotran/studyplan/pkg/logger"
	"go.uber.org/zap"
)

// certificationListKeys are the wrapper fields a certification list may be nested under.
var certificationListKeys = []string{"certifications", "recommendations"}

// Coercer recovers domain drafts from loosely formatted generator output.
// Items failing their schema are dropped and logged; the rest are kept.
type Coercer struct {
	log logger.Logger
}

func NewCoercer(log logger.Logger) *Coercer {
	return &Coercer{log: log}
}

// CoerceRoadmap extracts a roadmap object. A roadmap whose topic list is empty in the
// output is returned as is; one whose topics were all invalid is malformed.
func (c *Coercer) CoerceRoadmap(raw string) (*RoadmapDraft, error) {
	found, ok := locate(raw, "{", func(v any) bool {
		obj, ok := v.(map[string]any)
		if !ok {
			return false
		}
		_, ok = obj["topics"].([]any)
		return ok
	})
	if !ok {
		return nil, apperror.NewMalformedGeneration("no roadmap object with a topics list found in generator output", nil)
	}

	obj := found.(map[string]any)
	draft := &RoadmapDraft{
		Title:       stringField(obj, "title"),
		Description: stringField(obj, "description"),
	}
	if weeks, ok := numberField(obj, "estimated_duration_weeks").Int(); ok && weeks > 0 {
		draft.EstimatedDurationWeeks = weeks
	}

	items := obj["topics"].([]any)
	for i, item := range items {
		var topic TopicDraft
		if err := c.decodeItem(topicSchemaName, i, item, &topic); err != nil {
			continue
		}
		topic.TopicName = strings.TrimSpace(topic.TopicName)
		draft.Topics = append(draft.Topics, topic)
	}

	if len(items) > 0 && len(draft.Topics) == 0 {
		return nil, apperror.NewMalformedGeneration(fmt.Sprintf("all %d generated topics were invalid", len(items)), nil)
	}
	return draft, nil
}

// CoerceCertifications accepts a bare list, a wrapper object holding the list, or a
// single certification object, and normalizes all of them to a slice.
func (c *Coercer) CoerceCertifications(raw string) ([]CertificationDraft, error) {
	found, ok := locate(raw, "{[", func(v any) bool {
		_, ok := certificationItems(v)
		return ok
	})
	if !ok {
		return nil, apperror.NewMalformedGeneration("no certification list found in generator output", nil)
	}

	items, _ := certificationItems(found)
	out := make([]CertificationDraft, 0, len(items))
	for i, item := range items {
		var cert CertificationDraft
		if err := c.decodeItem(certificationSchemaName, i, item, &cert); err != nil {
			continue
		}
		cert.Name = strings.TrimSpace(cert.Name)
		cert.Provider = strings.TrimSpace(cert.Provider)
		out = append(out, cert)
	}

	if len(items) > 0 && len(out) == 0 {
		return nil, apperror.NewMalformedGeneration(fmt.Sprintf("all %d generated certifications were invalid", len(items)), nil)
	}
	return out, nil
}

func (c *Coercer) decodeItem(schema string, index int, item any, dst any) error {
	if err := validateItem(schema, item); err != nil {
		c.log.Warn("Dropping generated item that fails schema",
			zap.String("schema", schema),
			zap.Int("index", index),
			zap.String("reason", err.Error()),
		)
		return err
	}
	b, err := json.Marshal(item)
	if err == nil {
		err = json.Unmarshal(b, dst)
	}
	if err != nil {
		c.log.Warn("Dropping generated item that cannot be decoded",
			zap.String("schema", schema),
			zap.Int("index", index),
			zap.Error(err),
		)
	}
	return err
}

func certificationItems(v any) ([]any, bool) {
	switch t := v.(type) {
	case []any:
		return t, true
	case map[string]any:
		for _, key := range certificationListKeys {
			if list, ok := t[key].([]any); ok {
				return list, true
			}
		}
		if _, ok := t["name"]; ok {
			return []any{t}, true
		}
	}
	return nil, false
}

// locate tries a direct parse of the whole text, then every balanced region starting
// with one of openers, in order of appearance. The first value accepted wins.
func locate(raw string, openers string, accept func(any) bool) (any, bool) {
	if v, ok := parse(strings.TrimSpace(raw)); ok && accept(v) {
		return v, true
	}
	for i := 0; i < len(raw); i++ {
		if !strings.ContainsRune(openers, rune(raw[i])) {
			continue
		}
		end, ok := balancedEnd(raw, i)
		if !ok {
			continue
		}
		if v, ok := parse(raw[i : end+1]); ok && accept(v) {
			return v, true
		}
	}
	return nil, false
}

func parse(s string) (any, bool) {
	if s == "" {
		return nil, false
	}
	var v any
	if err := json.Unmarshal([]byte(s), &v); err != nil {
		return nil, false
	}
	return v, true
}

// balancedEnd returns the index of the bracket closing the one at start.
// Brackets inside JSON strings are ignored; a mismatched closer ends the search.
func balancedEnd(s string, start int) (int, bool) {
	var stack []byte
	inString, escaped := false, false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			stack = append(stack, '}')
		case '[':
			stack = append(stack, ']')
		case '}', ']':
			if len(stack) == 0 || stack[len(stack)-1] != ch {
				return 0, false
			}
			stack = stack[:len(stack)-1]
			if len(stack) == 0 {
				return i, true
			}
		}
	}
	return 0, false
}

func stringField(obj map[string]any, key string) string {
	s, _ := obj[key].(string)
	return strings.TrimSpace(s)
}

func numberField(obj map[string]any, key string) looseNumber {
	var n looseNumber
	if v, ok := obj[key]; ok {
		if b, err := json.Marshal(v); err == nil {
			_ = n.UnmarshalJSON(b)
		}
	}
	return n
}
