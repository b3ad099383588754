package service

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/noah-isme/wiki-drafts/internal/models"
)

var canonicalNamespaces = map[int]string{
	1:  "Talk",
	2:  "User",
	3:  "User_talk",
	4:  "Project",
	5:  "Project_talk",
	6:  "File",
	7:  "File_talk",
	8:  "MediaWiki",
	10: "Template",
	11: "Template_talk",
	12: "Help",
	13: "Help_talk",
	14: "Category",
	15: "Category_talk",
}

// PageLinker builds wiki URLs for the page a draft edits.
type PageLinker struct {
	baseURL string
}

// NewPageLinker constructs a linker rooted at the wiki script path, e.g. https://wiki.example.org/w.
func NewPageLinker(baseURL string) *PageLinker {
	return &PageLinker{baseURL: strings.TrimRight(baseURL, "/")}
}

// EditURL opens the page editor in approval view, optionally on one section.
func (l *PageLinker) EditURL(page models.PageRef, section *int) string {
	return l.build(page, "&action=edit&wpApproveView=1", section)
}

// ViewURL shows the page, optionally anchored on one section.
func (l *PageLinker) ViewURL(page models.PageRef, section *int) string {
	return l.build(page, "", section)
}

func (l *PageLinker) build(page models.PageRef, extra string, section *int) string {
	var b strings.Builder
	b.WriteString(l.baseURL)
	b.WriteString("/index.php?title=")
	b.WriteString(url.QueryEscape(FullTitle(page)))
	b.WriteString(extra)
	if section != nil && *section >= 0 {
		b.WriteString("&section=")
		b.WriteString(strconv.Itoa(*section))
	}
	return b.String()
}

// FullTitle returns the prefixed page title with spaces as underscores.
func FullTitle(page models.PageRef) string {
	title := strings.ReplaceAll(strings.TrimSpace(page.Title), " ", "_")
	if prefix, ok := canonicalNamespaces[page.Namespace]; ok {
		return prefix + ":" + title
	}
	return title
}
