// Package indexer implements C9: the indexing orchestrator that turns a
// git clone request or a direct file upsert into per-file pipeline runs
// against a vector store.
package indexer

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/Aman-CERP/codevector/internal/cverrors"
)

// allowedDomains is the fixed set of git hosts this indexer will clone
// from, grounded on we0-index's utils/git_parse.py.
var allowedDomains = map[string]bool{
	"github.com":    true,
	"gitlab.com":    true,
	"gitee.com":     true,
	"bitbucket.org": true,
	"codeberg.org":  true,
}

var (
	sshPattern   = regexp.MustCompile(`^git@([^:]+):([^/]+)/([^/.]+)(?:\.git)?$`)
	httpsPattern = regexp.MustCompile(`^https?://([^/]+)/([^/]+)/([^/.]+)(?:\.git)?$`)
)

// RepoRef is a parsed, allow-listed git repository reference.
type RepoRef struct {
	Domain string
	Owner  string
	Repo   string
}

// ParseGitURL accepts SSH (git@host:owner/repo[.git]) and HTTP(S) forms,
// rejecting any domain not in the allow-list.
func ParseGitURL(rawURL string) (RepoRef, error) {
	trimmed := strings.TrimSpace(rawURL)
	if trimmed == "" {
		return RepoRef{}, cverrors.Validation("git url must not be empty")
	}

	var m []string
	if sshPattern.MatchString(trimmed) {
		m = sshPattern.FindStringSubmatch(trimmed)
	} else if httpsPattern.MatchString(trimmed) {
		m = httpsPattern.FindStringSubmatch(trimmed)
	} else {
		return RepoRef{}, cverrors.Validation("unrecognized git url format: " + rawURL)
	}

	domain := strings.ToLower(m[1])
	if !allowedDomains[domain] {
		return RepoRef{}, cverrors.Validation("git host not in allow-list: " + domain)
	}
	return RepoRef{Domain: domain, Owner: m[2], Repo: m[3]}, nil
}

// Credentials optionally authenticates a clone URL.
type Credentials struct {
	Username    string
	Password    string
	AccessToken string
}

func (c Credentials) empty() bool {
	return c.AccessToken == "" && c.Username == "" && c.Password == ""
}

// AuthenticatedCloneURL rewrites a plain https://host/owner/repo URL into
// a credential-bearing one per spec.md §4.9/§8 S6:
//   - access_token present: token:x-oauth-basic@host/...
//   - else username/password present: username:password@host/...
//   - both URL-encoded; no credentials leaves the URL unchanged.
func AuthenticatedCloneURL(ref RepoRef, creds Credentials) string {
	base := fmt.Sprintf("https://%s/%s/%s", ref.Domain, ref.Owner, ref.Repo)
	if creds.empty() {
		return base
	}

	var userinfo string
	if creds.AccessToken != "" {
		userinfo = fmt.Sprintf("%s:x-oauth-basic", url.QueryEscape(creds.AccessToken))
	} else {
		userinfo = fmt.Sprintf("%s:%s", url.QueryEscape(creds.Username), url.QueryEscape(creds.Password))
	}
	return fmt.Sprintf("https://%s@%s/%s/%s", userinfo, ref.Domain, ref.Owner, ref.Repo)
}
