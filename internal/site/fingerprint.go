package site

import (
	"strings"

	"github.com/inful/mdfp"
	"gopkg.in/yaml.v3"
)

// fingerprint hashes a rendered page together with its identifying fields.
// yaml.v3 emits map keys sorted, so equal inputs give equal fingerprints.
func fingerprint(fields map[string]any, body string) (string, error) {
	head := ""
	if len(fields) > 0 {
		out, err := yaml.Marshal(fields)
		if err != nil {
			return "", err
		}
		head = strings.TrimSuffix(string(out), "\n")
	}
	return mdfp.CalculateFingerprintFromParts(head, body), nil
}
