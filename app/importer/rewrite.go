package importer

import (
	"bufio"
	"fmt"
	"io"
	"log"
	"net/url"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"blogport/app/models"
)

// urlPattern finds absolute links in HTML bodies. Trailing punctuation is
// left out of the match.
var urlPattern = regexp.MustCompile(`(?i)(?:https?|ftp|file)://[-A-Z0-9+&@#/%?=~_|!:,.;]*[-A-Z0-9+&@#/%=~_|]`)

type rewriteTarget struct {
	host string
	url  string
}

// RewriteMap maps the paths of old permalinks to the canonical URLs of the
// posts imported from them.
type RewriteMap struct {
	targets map[string][]rewriteTarget
	skipped int
}

// BuildRewriteMap indexes every post that carries an import permalink.
// Posts must be ordered by id; the first post claiming a path wins.
func BuildRewriteMap(posts []*models.Post, siteURL string, logger *log.Logger) *RewriteMap {
	m := &RewriteMap{targets: make(map[string][]rewriteTarget)}
	for _, post := range posts {
		if post.ObPermalink == "" {
			continue
		}
		old, err := url.Parse(post.ObPermalink)
		if err != nil {
			logger.Printf("Unable to parse permalink %q of post %d: %v", post.ObPermalink, post.ID, err)
			m.skipped++
			continue
		}
		m.targets[old.Path] = append(m.targets[old.Path], rewriteTarget{
			host: old.Host,
			url:  post.CanonicalURL(siteURL),
		})
	}
	return m
}

// Len is the number of posts in the map.
func (m *RewriteMap) Len() int {
	n := 0
	for _, targets := range m.targets {
		n += len(targets)
	}
	return n
}

// Lookup returns the canonical URL for a link to an old permalink. A
// permalink recorded with a host only matches links to that host. Links
// carrying a query string are never rewritten; a fragment is kept.
func (m *RewriteMap) Lookup(link string) (string, bool) {
	u, err := url.Parse(link)
	if err != nil || u.RawQuery != "" || u.ForceQuery {
		return "", false
	}

	var match string
	for _, target := range m.targets[u.Path] {
		if target.host == "" && match == "" {
			match = target.url
		}
		if target.host != "" && strings.EqualFold(target.host, u.Host) {
			match = target.url
			break
		}
	}
	if match == "" {
		return "", false
	}
	if u.Fragment != "" {
		match += "#" + u.EscapedFragment()
	}
	return match, true
}

// LookupPath returns the canonical URL of the first post imported from a
// permalink with the given path, whatever host it was recorded under.
func (m *RewriteMap) LookupPath(path string) (string, bool) {
	targets := m.targets[path]
	if len(targets) == 0 {
		return "", false
	}
	return targets[0].url, true
}

// Rewrite replaces every mapped link in text. Unmapped links are left
// byte-for-byte unchanged.
func (m *RewriteMap) Rewrite(text string) (string, bool) {
	changed := false
	out := urlPattern.ReplaceAllStringFunc(text, func(link string) string {
		if canonical, ok := m.Lookup(link); ok {
			changed = changed || canonical != link
			return canonical
		}
		return link
	})
	return out, changed
}

// WriteTable writes one "<old-path> <new-url>" line per post, sorted by
// path. Lines that would not survive a whitespace-separated UTF-8 file are
// logged and skipped.
func (m *RewriteMap) WriteTable(w io.Writer, logger *log.Logger) (written, skipped int, err error) {
	paths := make([]string, 0, len(m.targets))
	for path := range m.targets {
		paths = append(paths, path)
	}
	sort.Strings(paths)

	bw := bufio.NewWriter(w)
	for _, path := range paths {
		for _, target := range m.targets[path] {
			if !tableField(path) || !tableField(target.url) {
				logger.Printf("Unable to write to rewrite map: %q %q", path, target.url)
				skipped++
				continue
			}
			if _, err := fmt.Fprintf(bw, "%s %s\n", path, target.url); err != nil {
				return written, skipped, fmt.Errorf("write rewrite map: %w", err)
			}
			written++
		}
	}
	if err := bw.Flush(); err != nil {
		return written, skipped, fmt.Errorf("write rewrite map: %w", err)
	}
	return written, skipped, nil
}

func tableField(s string) bool {
	return s != "" && utf8.ValidString(s) && strings.IndexFunc(s, unicode.IsSpace) < 0
}

// RewriteURLs builds the rewrite map from every imported post in the store,
// writes it to w when w is non-nil, and rewrites links in all those posts
// and their comments.
func (r *Run) RewriteURLs(w io.Writer) (*RewriteMap, error) {
	posts, err := r.posts.ListImported()
	if err != nil {
		return nil, fmt.Errorf("list imported posts: %w", err)
	}

	rewrites := BuildRewriteMap(posts, r.opts.SiteURL, r.logger)
	r.result.RewriteEntries = rewrites.Len()
	r.result.RewriteSkipped = rewrites.skipped
	if w != nil {
		written, skipped, err := rewrites.WriteTable(w, r.logger)
		if err != nil {
			return nil, err
		}
		r.result.RewriteEntries = written
		r.result.RewriteSkipped += skipped
	}

	r.logger.Printf("Post processing imported content")
	for _, post := range posts {
		if err := r.rewritePost(post, rewrites); err != nil {
			return nil, err
		}
	}
	return rewrites, nil
}

func (r *Run) rewritePost(post *models.Post, rewrites *RewriteMap) error {
	if body, changed := rewrites.Rewrite(post.Content); changed {
		post.Content = body
		if err := r.posts.Update(post); err != nil {
			return fmt.Errorf("update post %d: %w", post.ID, err)
		}
		r.result.PostsRewritten++
	}

	comments, err := r.comments.ListByPost(post.ID)
	if err != nil {
		return fmt.Errorf("list comments of post %d: %w", post.ID, err)
	}
	for _, comment := range comments {
		body, changed := rewrites.Rewrite(comment.Body)
		if !changed {
			continue
		}
		comment.Body = body
		if err := r.comments.Update(comment); err != nil {
			return fmt.Errorf("update comment %d: %w", comment.ID, err)
		}
		r.result.CommentsRewritten++
	}
	return nil
}
