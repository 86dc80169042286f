// internal/model/models.go
package model

import "fmt"

// Commit is a single entry scraped from the commit feed page.
type Commit struct {
	ID        int64  `json:"id"`
	Author    string `json:"author"`
	Repo      string `json:"repo"`
	Branch    string `json:"branch"`
	Changeset string `json:"changeset"`
	Message   string `json:"message"`
	AvatarURL string `json:"avatar_url,omitempty"` // empty when the page has no avatar style
}

// Title renders the repo/branch/changeset line shown above the message.
func (c Commit) Title() string {
	return fmt.Sprintf("%s/%s#%s", c.Repo, c.Branch, c.Changeset)
}
