package site

import (
	"github.com/go-git/go-git/v5"
)

// headCommit returns the HEAD commit hash of the git repository containing
// dir, or "" when there is none.
func headCommit(dir string) string {
	repo, err := git.PlainOpenWithOptions(dir, &git.PlainOpenOptions{DetectDotGit: true})
	if err != nil {
		return ""
	}
	ref, err := repo.Head()
	if err != nil {
		return ""
	}
	return ref.Hash().String()
}
