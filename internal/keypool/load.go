package keypool

import (
	"os"
	"strings"
)

// keyFilePaths is the fixed priority-ordered set of key file locations. The
// first existing, non-empty file wins.
var keyFilePaths = []string{
	"data/keys/keys_high.txt",
	"data/keys/keys_medium_high.txt",
	"data/keys/keys_medium.txt",
	"data/keys/active_keys.txt",
	"data/keys/total_keys.txt",
}

// loadCredentialsFromDisk probes keyFilePaths, followed by any
// caller-supplied extra search paths, in priority order and parses the
// first existing non-empty file into a credential list.
func loadCredentialsFromDisk(extraPaths []string) ([]Credential, string, error) {
	for _, path := range append(append([]string{}, keyFilePaths...), extraPaths...) {
		data, err := os.ReadFile(path)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return nil, path, err
		}
		creds := parseKeyFile(string(data))
		if len(creds) == 0 {
			continue
		}
		return creds, path, nil
	}
	return nil, "", nil
}

// parseKeyFile splits raw key-file content on commas and newlines, dropping
// blank entries and lines beginning with '#'.
func parseKeyFile(raw string) []Credential {
	var out []Credential
	for _, line := range strings.Split(raw, "\n") {
		for _, field := range strings.Split(line, ",") {
			entry := strings.TrimSpace(field)
			if entry == "" || strings.HasPrefix(entry, "#") {
				continue
			}
			out = append(out, Credential(entry))
		}
	}
	return out
}
