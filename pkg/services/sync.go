package services

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os/exec"
	"strings"
)

// ErrRemoteNoScheme means a token was given for a remote that is not a URL,
// such as a local path or an scp-style address.
var ErrRemoteNoScheme = errors.New("remote url has no scheme for token credentials")

// ExecuteGitWithToken runs git in dir, swapping the named remote for its URL
// with token credentials. The token never appears in the returned log.
func ExecuteGitWithToken(ctx context.Context, dir, remote, token string, args ...string) (string, error) {
	newArgs := make([]string, len(args))
	copy(newArgs, args)

	var remoteURL, authenticatedURL string
	if token != "" {
		cmdGetURL := exec.CommandContext(ctx, "git", "remote", "get-url", remote)
		cmdGetURL.Dir = dir
		outURL, err := cmdGetURL.Output()
		if err != nil {
			return "Failed to get remote url", fmt.Errorf("git remote get-url %s: %w", remote, err)
		}
		remoteURL = strings.TrimSpace(string(outURL))
		u, err := url.Parse(remoteURL)
		if err != nil {
			return "Invalid remote url", fmt.Errorf("parse remote url: %w", err)
		}
		if u.Scheme == "" {
			return "Invalid remote url", fmt.Errorf("%w: %s", ErrRemoteNoScheme, remote)
		}
		u.User = url.UserPassword("oauth2", token)
		authenticatedURL = u.String()
		for i, v := range newArgs {
			if v == remote {
				newArgs[i] = authenticatedURL
			}
		}
	}

	cmd := exec.CommandContext(ctx, "git", newArgs...)
	cmd.Dir = dir
	output, err := cmd.CombinedOutput()
	return redact(string(output), token, authenticatedURL, remoteURL), err
}

func redact(log, token, authenticatedURL, remoteURL string) string {
	if authenticatedURL != "" {
		log = strings.ReplaceAll(log, authenticatedURL, remoteURL)
	}
	if token != "" {
		log = strings.ReplaceAll(log, token, "***")
	}
	return log
}

// SyncContent pulls the content repository and invalidates the library.
func SyncContent(ctx context.Context, lib *Library, remote, branch, token string) (string, error) {
	log, err := ExecuteGitWithToken(ctx, lib.Root(), remote, token, "pull", "--ff-only", remote, branch)
	if err != nil {
		return log, err
	}
	lib.Invalidate()
	return log, nil
}
