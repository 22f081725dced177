package analysis

import "strings"

// Rule maps a set of trigger substrings to a tag
type Rule[T comparable] struct {
	Tag      T
	Triggers []string
}

// KeywordTable is an ordered list of rules. Every keyword-driven decision in
// the app (sentiment, themes, memory categories, emotions) goes through it.
// Matching is case-insensitive substring containment.
type KeywordTable[T comparable] []Rule[T]

// First returns the tag of the first rule with a trigger in text
func (t KeywordTable[T]) First(text string) (T, bool) {
	lower := strings.ToLower(text)
	for _, r := range t {
		if r.matches(lower) {
			return r.Tag, true
		}
	}
	var zero T
	return zero, false
}

// All returns the tags of every matching rule, in table order
func (t KeywordTable[T]) All(text string) []T {
	lower := strings.ToLower(text)
	tags := []T{}
	for _, r := range t {
		if r.matches(lower) {
			tags = append(tags, r.Tag)
		}
	}
	return tags
}

// Any reports whether the rule tagged tag matches text
func (t KeywordTable[T]) Any(tag T, text string) bool {
	lower := strings.ToLower(text)
	for _, r := range t {
		if r.Tag == tag && r.matches(lower) {
			return true
		}
	}
	return false
}

func (r Rule[T]) matches(lower string) bool {
	for _, trigger := range r.Triggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
