package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"regexp"
	"runtime"
	"sort"
	"strings"
	"time"

	"github.com/blang/semver"
	"github.com/rhysd/go-github-selfupdate/selfupdate"
)

// Repo is the GitHub repository releases are fetched from.
const Repo = "Fepozopo/grainer"

type githubRelease struct {
	TagName    string `json:"tag_name"`
	Name       string `json:"name"`
	Draft      bool   `json:"draft"`
	Prerelease bool   `json:"prerelease"`
	Assets     []struct {
		Name               string `json:"name"`
		BrowserDownloadURL string `json:"browser_download_url"`
	} `json:"assets"`
}

// semverRe finds v1.2.3-style versions inside tag names like "grainer-v1.2.3".
var semverRe = regexp.MustCompile(`v?\d+\.\d+\.\d+(-[0-9A-Za-z.-]+)?(\+[0-9A-Za-z.-]+)?`)

func fetchReleases(repo string) ([]githubRelease, error) {
	apiURL := fmt.Sprintf("https://api.github.com/repos/%s/releases", repo)
	client := &http.Client{Timeout: 10 * time.Second}
	resp, err := client.Get(apiURL)
	if err != nil {
		return nil, fmt.Errorf("github API request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("github API returned status %d: %s", resp.StatusCode, string(body))
	}
	var releases []githubRelease
	if err := json.NewDecoder(resp.Body).Decode(&releases); err != nil {
		return nil, fmt.Errorf("failed to decode github releases: %w", err)
	}
	return releases, nil
}

// latestRelease picks the highest published, non-prerelease semver release
// and the asset matching goos/goarch. It tolerates tag prefixes.
func latestRelease(releases []githubRelease, goos, goarch string) (*selfupdate.Release, bool) {
	var candidates []*selfupdate.Release
	for _, r := range releases {
		if r.Draft || r.Prerelease {
			continue
		}
		match := semverRe.FindString(r.TagName)
		if match == "" {
			match = semverRe.FindString(r.Name)
		}
		if match == "" {
			continue
		}
		v, err := semver.Parse(strings.TrimPrefix(match, "v"))
		if err != nil {
			continue
		}
		rel := &selfupdate.Release{Version: v}
		for _, a := range r.Assets {
			name := strings.ToLower(a.Name)
			if strings.Contains(name, goos) && strings.Contains(name, goarch) {
				rel.AssetURL = a.BrowserDownloadURL
				break
			}
		}
		candidates = append(candidates, rel)
	}
	if len(candidates) == 0 {
		return nil, false
	}
	sort.Slice(candidates, func(i, j int) bool {
		return candidates[i].Version.GT(candidates[j].Version)
	})
	return candidates[0], true
}

// CheckForUpdates compares Version against the newest GitHub release and,
// after confirmation on stdin, replaces the running binary.
func CheckForUpdates(w io.Writer) error {
	fmt.Fprintf(w, "Current version: %s\n", Version)
	current, err := semver.Parse(strings.TrimPrefix(Version, "v"))
	if err != nil {
		return fmt.Errorf("could not parse current version %q: %w", Version, err)
	}

	releases, err := fetchReleases(Repo)
	if err != nil {
		return fmt.Errorf("update check failed: %w", err)
	}
	latest, found := latestRelease(releases, runtime.GOOS, runtime.GOARCH)
	if !found {
		fmt.Fprintf(w, "No releases found for %s.\n", Repo)
		return nil
	}
	fmt.Fprintf(w, "Latest version: %s\n", latest.Version)

	if !latest.Version.GT(current) {
		fmt.Fprintf(w, "You are already running the latest version: %s.\n", current)
		return nil
	}
	if latest.AssetURL == "" {
		fmt.Fprintf(w, "A new version (%s) is available but there is no asset for %s/%s.\n", latest.Version, runtime.GOOS, runtime.GOARCH)
		fmt.Fprintln(w, "Please visit the project releases page to download the new version.")
		return nil
	}

	fmt.Fprintf(w, "A new version (%s) is available. Update now? (y/N): ", latest.Version)
	answer, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && err != io.EOF {
		return fmt.Errorf("failed reading input: %w", err)
	}
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(w, "Update cancelled.")
		return nil
	}

	exe, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate executable: %w", err)
	}
	fmt.Fprintln(w, "Updating...")
	if err := selfupdate.UpdateTo(latest.AssetURL, exe); err != nil {
		return fmt.Errorf("update failed: %w", err)
	}
	fmt.Fprintf(w, "Updated to version %s.\n", latest.Version)
	return nil
}
