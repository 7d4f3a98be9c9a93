package cli

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const releasesJSON = `[
  {"tag_name": "v0.3.0-rc.1", "prerelease": true, "assets": []},
  {"tag_name": "grainer-v0.2.1", "assets": [
    {"name": "grainer_linux_amd64.tar.gz", "browser_download_url": "https://example.invalid/linux"},
    {"name": "grainer_darwin_arm64.tar.gz", "browser_download_url": "https://example.invalid/darwin"}
  ]},
  {"tag_name": "v0.1.0", "assets": []},
  {"tag_name": "nightly", "name": "not a version", "assets": []},
  {"tag_name": "v9.9.9", "draft": true, "assets": []}
]`

func TestLatestRelease(t *testing.T) {
	var releases []githubRelease
	require.NoError(t, json.Unmarshal([]byte(releasesJSON), &releases))

	rel, ok := latestRelease(releases, "darwin", "arm64")
	require.True(t, ok)
	assert.Equal(t, "0.2.1", rel.Version.String())
	assert.Equal(t, "https://example.invalid/darwin", rel.AssetURL)

	rel, ok = latestRelease(releases, "windows", "amd64")
	require.True(t, ok)
	assert.Empty(t, rel.AssetURL)
}

func TestLatestReleaseNone(t *testing.T) {
	_, ok := latestRelease(nil, "linux", "amd64")
	assert.False(t, ok)
}
