package services

import (
	"context"
	"regexp"
	"strings"

	"notegraph/domain/core/entities"
	"notegraph/domain/core/valueobjects"
)

var (
	wikiLinkRe = regexp.MustCompile(`\[\[([^\]]+)\]\]`)
	noteLinkRe = regexp.MustCompile(`\[([^\]]+)\]\(note://([^)\s]+)\)`)
)

// TitleResolver resolves a document title to its id. Unresolvable titles
// are not errors; the extractor turns them into placeholder targets.
type TitleResolver interface {
	ResolveTitle(ctx context.Context, title string) (valueobjects.DocumentID, bool)
}

// LinkExtractor derives a document's outgoing reference set from its
// content. It is pure and stateless: the same content always yields the
// same deduplicated edge set, so re-running it accumulates nothing.
type LinkExtractor struct {
	resolver TitleResolver
}

// NewLinkExtractor creates an extractor backed by the given resolver
func NewLinkExtractor(resolver TitleResolver) *LinkExtractor {
	return &LinkExtractor{resolver: resolver}
}

// Extract scans content for wiki references ([[Title]]) and resolved note
// links ([anchor](note://id)) and returns the deduplicated outgoing edges
// for the document. Titles that do not resolve become placeholder targets;
// they resolve lazily once the named document is created.
func (e *LinkExtractor) Extract(ctx context.Context, from valueobjects.DocumentID, content string) []entities.Link {
	seen := make(map[string]bool)
	var links []entities.Link

	add := func(l entities.Link) {
		if l.To.Equals(from) {
			return // self references carry no graph information
		}
		if !seen[l.Key()] {
			seen[l.Key()] = true
			links = append(links, l)
		}
	}

	for _, m := range wikiLinkRe.FindAllStringSubmatch(content, -1) {
		title := strings.TrimSpace(m[1])
		if title == "" {
			continue
		}
		target, ok := e.resolver.ResolveTitle(ctx, title)
		if !ok {
			target = valueobjects.NewPlaceholderID(title)
		}
		add(entities.NewLink(from, target, title))
	}

	for _, m := range noteLinkRe.FindAllStringSubmatch(content, -1) {
		anchor := strings.TrimSpace(m[1])
		target, err := valueobjects.NewDocumentIDFromString(m[2])
		if err != nil {
			continue // malformed target, leave it to the renderer
		}
		add(entities.NewLink(from, target, anchor))
	}

	return links
}
