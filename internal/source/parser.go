// internal/source/parser.go
package source

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"

	custom_errors "commit-watcher/internal/errors"
	"commit-watcher/internal/model"
)

// Selectors for the latest commit block on the feed page.
const (
	commitSelector    = "div.commit.columns"
	idAttr            = "like-id"
	authorSelector    = "div.author"
	repoSelector      = "span.repo"
	branchSelector    = "span.branch"
	changesetSelector = "span.changeset"
	messageSelector   = "div.commits-message"
	avatarSelector    = "div.avatar"
)

var avatarURLPattern = regexp.MustCompile(`url\('?([^'\)]+)'?\)`)

// Extract parses the feed page and returns its latest commit.
//
// The result is three-way: a fully populated commit, errors.ErrNoCommit when
// the page has no commit block, or a *errors.ParseError when the block is
// present but a required field is missing or malformed. Only AvatarURL is
// allowed to be empty.
func Extract(doc []byte) (*model.Commit, error) {
	page, err := goquery.NewDocumentFromReader(bytes.NewReader(doc))
	if err != nil {
		return nil, &custom_errors.ParseError{Field: "document", Err: err}
	}

	block := page.Find(commitSelector).First()
	if block.Length() == 0 {
		return nil, custom_errors.ErrNoCommit
	}

	rawID, ok := block.Attr(idAttr)
	if !ok {
		return nil, &custom_errors.ParseError{Field: "id"}
	}
	id, err := strconv.ParseInt(strings.TrimSpace(rawID), 10, 64)
	if err != nil {
		return nil, &custom_errors.ParseError{Field: "id", Err: err}
	}

	commit := &model.Commit{ID: id}
	fields := []struct {
		name     string
		selector string
		dst      *string
	}{
		{"author", authorSelector, &commit.Author},
		{"repo", repoSelector, &commit.Repo},
		{"branch", branchSelector, &commit.Branch},
		{"changeset", changesetSelector, &commit.Changeset},
		{"message", messageSelector, &commit.Message},
	}
	for _, f := range fields {
		text, ok := requiredText(block, f.selector)
		if !ok {
			return nil, &custom_errors.ParseError{Field: f.name}
		}
		*f.dst = text
	}

	commit.AvatarURL = avatarURL(block)
	return commit, nil
}

func requiredText(block *goquery.Selection, selector string) (string, bool) {
	sel := block.Find(selector).First()
	if sel.Length() == 0 {
		return "", false
	}
	text := strings.TrimSpace(sel.Text())
	return text, text != ""
}

func avatarURL(block *goquery.Selection) string {
	style, ok := block.Find(avatarSelector).First().Attr("style")
	if !ok {
		return ""
	}
	m := avatarURLPattern.FindStringSubmatch(style)
	if m == nil {
		return ""
	}
	return strings.Trim(m[1], "\" ")
}
