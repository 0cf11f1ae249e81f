package corpus

import (
	"context"
	"encoding/base64"
	"fmt"
	"os"
	"path"
	"strings"

	"github.com/gofri/go-github-ratelimit/github_ratelimit"
	"github.com/google/go-github/v81/github"
)

// GitHubSource serves corpus documents from a repository directory. It is
// the remote counterpart of Dir for deployments whose knowledge base lives
// in a docs repo instead of a mounted volume.
type GitHubSource struct {
	client   *github.Client
	owner    string
	repo     string
	basePath string
}

// NewGitHubSource creates a Source over owner/repo at basePath. If the
// GITHUB_TOKEN environment variable is set the client is authenticated,
// which raises the rate limit from 60 to 5000 requests per hour; secondary
// rate limits are handled by the waiter transport either way.
func NewGitHubSource(owner, repo, basePath string) (*GitHubSource, error) {
	rateLimiter, err := github_ratelimit.NewRateLimitWaiterClient(nil)
	if err != nil {
		return nil, fmt.Errorf("create rate limit client: %w", err)
	}

	ghClient := github.NewClient(rateLimiter)
	if token := os.Getenv("GITHUB_TOKEN"); token != "" {
		ghClient = ghClient.WithAuthToken(token)
	}

	return &GitHubSource{
		client:   ghClient,
		owner:    owner,
		repo:     repo,
		basePath: basePath,
	}, nil
}

func (s *GitHubSource) List(ctx context.Context) ([]string, error) {
	return s.listRecursive(ctx, s.basePath, "")
}

func (s *GitHubSource) listRecursive(ctx context.Context, fullPath, relativePath string) ([]string, error) {
	var names []string

	_, dirContents, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get contents of %s: %w", fullPath, err)
	}

	for _, item := range dirContents {
		if item.Type == nil || item.Name == nil {
			continue
		}

		itemRelPath := path.Join(relativePath, *item.Name)

		switch *item.Type {
		case "file":
			if Supported(*item.Name) {
				names = append(names, itemRelPath)
			}
		case "dir":
			sub, err := s.listRecursive(ctx, path.Join(fullPath, *item.Name), itemRelPath)
			if err != nil {
				return nil, err
			}
			names = append(names, sub...)
		}
	}

	return names, nil
}

func (s *GitHubSource) Fetch(ctx context.Context, name string) ([]byte, error) {
	fullPath := path.Join(s.basePath, name)

	fileContent, _, _, err := s.client.Repositories.GetContents(ctx, s.owner, s.repo, fullPath, nil)
	if err != nil {
		return nil, fmt.Errorf("get content of %s: %w", fullPath, err)
	}
	return decodeContents(fileContent, fullPath)
}

// decodeContents unwraps a contents-API response. Files over 1 MB come
// back with a nil Content and a download URL instead of inline data; we
// surface that as an error so ingestion records the file as failed rather
// than crashing.
func decodeContents(fileContent *github.RepositoryContent, fullPath string) ([]byte, error) {
	if fileContent == nil {
		return nil, fmt.Errorf("no file content returned for %s", fullPath)
	}
	if fileContent.Content == nil {
		return nil, fmt.Errorf("no inline content for %s (file exceeds the contents API size limit)", fullPath)
	}

	raw := *fileContent.Content
	if fileContent.Encoding != nil && *fileContent.Encoding == "base64" {
		decoded, err := base64.StdEncoding.DecodeString(raw)
		if err != nil {
			return nil, fmt.Errorf("decode content of %s: %w", fullPath, err)
		}
		return decoded, nil
	}
	return []byte(raw), nil
}

// ParseRepo splits an "owner/repo" slug.
func ParseRepo(slug string) (owner, repo string, err error) {
	parts := strings.SplitN(slug, "/", 2)
	if len(parts) != 2 || parts[0] == "" || parts[1] == "" {
		return "", "", fmt.Errorf("invalid repository slug %q, want owner/repo", slug)
	}
	return parts[0], parts[1], nil
}
