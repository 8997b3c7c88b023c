package core

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/tailscale/hujson"

	"github.com/skopdev/skop/internal/log"
)

// descriptorPath is the conventional location of a marketplace descriptor
// inside a repository.
const descriptorPath = ".claude-plugin/marketplace.json"

const defaultRawHost = "https://raw.githubusercontent.com"

var httpClient = &http.Client{Timeout: 30 * time.Second}

// rawHost returns the base URL used to fetch raw repository files.
// Overridable via SKOP_RAW_HOST for testing against a local server.
func rawHost() string {
	if h := os.Getenv("SKOP_RAW_HOST"); h != "" {
		return h
	}
	return defaultRawHost
}

// MarketplaceURL builds the raw-content URL for a repository's marketplace
// descriptor on the default branch. repo is "owner/name" shorthand.
func MarketplaceURL(repo string) string {
	return fmt.Sprintf("%s/%s/main/%s", rawHost(), repo, descriptorPath)
}

// FetchMarketplace downloads and parses the marketplace descriptor for the
// given "owner/name" repository. Any transport or parse failure is fatal to
// the whole run, since nothing can be installed without a descriptor.
func FetchMarketplace(repo string) (*Marketplace, error) {
	url := MarketplaceURL(repo)
	log.Sugar().Debugf("Fetching marketplace from %s", url)

	resp, err := httpClient.Get(url)
	if err != nil {
		return nil, fmt.Errorf("fetching marketplace from %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("fetching marketplace from %s: HTTP %d", url, resp.StatusCode)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading marketplace response: %w", err)
	}

	m, err := parseMarketplace(data)
	if err != nil {
		return nil, fmt.Errorf("parsing marketplace from %s: %w", url, err)
	}
	return m, nil
}

// ReadMarketplaceFromRepo reads a marketplace descriptor from a cloned
// repository on disk. A missing or malformed descriptor is not an error;
// it returns (nil, nil) so callers fall through to other resolution
// strategies. Only the top-level fetched descriptor treats malformed JSON
// as fatal.
func ReadMarketplaceFromRepo(repoRoot string) (*Marketplace, error) {
	p := filepath.Join(repoRoot, filepath.FromSlash(descriptorPath))
	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading %s: %w", p, err)
	}

	m, err := parseMarketplace(data)
	if err != nil {
		log.Sugar().Warnf("Ignoring malformed nested marketplace at %s: %v", p, err)
		return nil, nil
	}
	return m, nil
}

// parseMarketplace decodes a descriptor, tolerating comments and trailing
// commas the way Claude's own tooling does.
func parseMarketplace(data []byte) (*Marketplace, error) {
	std, err := hujson.Standardize(data)
	if err != nil {
		// Not valid JWCC either; let encoding/json produce its error on
		// the original bytes for a clearer message.
		std = data
	}

	var m Marketplace
	if err := json.Unmarshal(std, &m); err != nil {
		return nil, err
	}
	if m.Name == "" {
		return nil, fmt.Errorf("marketplace descriptor missing required 'name' field")
	}
	return &m, nil
}
