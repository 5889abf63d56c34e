// Package update checks GitHub releases and swaps the running executable
// for the newest published build.
package update

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Version is stamped at release build time; the default marks a dev build.
var Version = "0.0.0-dev"

const repo = "Fepozopo/tiv"

var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

type releaseAsset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
}

type release struct {
	TagName    string         `json:"tag_name"`
	Name       string         `json:"name"`
	Draft      bool           `json:"draft"`
	Prerelease bool           `json:"prerelease"`
	Assets     []releaseAsset `json:"assets"`
}

// parseTag extracts a semantic version from a release tag, falling back to
// the release title when the tag itself carries none.
func parseTag(tag, name string) (semver.Version, bool) {
	match := semverRe.FindString(tag)
	if match == "" {
		match = semverRe.FindString(name)
	}
	if match == "" {
		return semver.Version{}, false
	}
	v, err := semver.Parse(strings.TrimPrefix(match, "v"))
	if err != nil {
		return semver.Version{}, false
	}
	return v, true
}

// pickAsset prefers assets named for a platform; otherwise the first one.
func pickAsset(assets []releaseAsset) string {
	for _, a := range assets {
		n := strings.ToLower(a.Name)
		if strings.Contains(n, "linux") || strings.Contains(n, "darwin") ||
			strings.Contains(n, "windows") || strings.Contains(n, "amd64") ||
			strings.Contains(n, "arm64") {
			return a.BrowserDownloadURL
		}
	}
	if len(assets) > 0 {
		return assets[0].BrowserDownloadURL
	}
	return ""
}

// latestRelease walks the GitHub releases list and returns the highest
// published semver. The selfupdate library's own detector wants strict
// "vX.Y.Z" tags; scanning for a semver substring tolerates looser tagging.
func latestRelease(repo string) (*selfupdate.Release, bool, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(fmt.Sprintf("https://api.github.com/repos/%s/releases", repo))
	if err != nil {
		return nil, false, fmt.Errorf("github request: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, false, fmt.Errorf("github API status %d: %s", resp.StatusCode, string(body))
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("github response: %w", err)
	}

	var releases []release
	if err := json.Unmarshal(body, &releases); err != nil {
		return nil, false, fmt.Errorf("decode releases: %w", err)
	}

	type candidate struct {
		ver      semver.Version
		assetURL string
	}
	var candidates []candidate
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		v, ok := parseTag(r.TagName, r.Name)
		if !ok {
			continue
		}
		candidates = append(candidates, candidate{ver: v, assetURL: pickAsset(r.Assets)})
	}
	if len(candidates) == 0 {
		return nil, false, nil
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].ver.GT(candidates[j].ver)
	})
	return &selfupdate.Release{
		Version:  candidates[0].ver,
		AssetURL: candidates[0].assetURL,
	}, true, nil
}

// Check compares the running build against the newest GitHub release and,
// with the user's go-ahead, replaces the executable in place. It runs
// before the viewer takes the terminal, so stdin/stdout prompting is fine.
func Check() error {
	fmt.Printf("current version: %s\n", Version)

	latest, found, err := latestRelease(repo)
	if err != nil {
		return fmt.Errorf("update check: %w", err)
	}
	if !found {
		fmt.Printf("no releases found for %s\n", repo)
		return nil
	}
	fmt.Printf("latest version: %s\n", latest.Version)

	current, err := semver.Parse(strings.TrimPrefix(Version, "v"))
	if err == nil && !latest.Version.GT(current) {
		fmt.Println("already up to date")
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Println("new version has no downloadable asset; see the releases page")
		return nil
	}

	answer, err := promptLine(fmt.Sprintf("update to %s? (y/N): ", latest.Version))
	if err != nil {
		return fmt.Errorf("reading answer: %w", err)
	}
	switch strings.TrimSpace(strings.ToLower(answer)) {
	case "y", "yes":
	default:
		fmt.Println("update cancelled")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("locating executable: %w", err)
	}
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update: %w", err)
	}
	fmt.Printf("updated to %s, restart to use it\n", latest.Version)
	return nil
}

func promptLine(prompt string) (string, error) {
	fmt.Print(prompt)
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return "", err
	}
	return line, nil
}
