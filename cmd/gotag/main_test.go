package main

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/json"
	"encoding/pem"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
	"gopkg.in/yaml.v3"

	"github.com/odvcencio/gotag/pkg/object"
	"github.com/odvcencio/gotag/pkg/release"
	"github.com/odvcencio/gotag/pkg/repo"
)

// runGotag executes a fresh command tree and returns stdout and stderr.
func runGotag(t *testing.T, stdin string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(append([]string{"--no-color"}, args...))
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, errOut, err := runGotag(t, "", args...)
	if err != nil {
		t.Fatalf("gotag %s: %v\nstderr: %s", strings.Join(args, " "), err, errOut)
	}
	return out
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("MkdirAll: %v", err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
}

// sandbox builds a repository with submodules "core" and "docs" using the
// CLI itself. docs tags with an empty prefix.
func sandbox(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	mustRun(t, "-C", root, "init")
	for _, sub := range []string{"core", "docs"} {
		dir := filepath.Join(root, sub)
		mustRun(t, "init", dir)
		writeFile(t, filepath.Join(dir, "README"), sub+"\n")
		mustRun(t, "-C", dir, "commit", "-m", "initial "+sub, "--author", "tester")
		mustRun(t, "-C", root, "submodule", "add", sub, sub)
	}
	mustRun(t, "-C", filepath.Join(root, "docs"), "config", "set", "release.tag_prefix", "")
	writeFile(t, filepath.Join(root, "main.go"), "package main\n")
	mustRun(t, "-C", root, "commit", "-m", "initial", "--author", "tester")
	return root
}

func tagsOf(t *testing.T, dir string) []string {
	t.Helper()
	out := mustRun(t, "-C", dir, "tag")
	return strings.Fields(out)
}

func TestVersionCmd(t *testing.T) {
	out := mustRun(t, "version")
	if strings.TrimSpace(out) != version {
		t.Fatalf("version output = %q, want %q", out, version)
	}
}

func TestSubmoduleList(t *testing.T) {
	root := sandbox(t)
	out := mustRun(t, "-C", root, "submodule")
	lines := strings.Split(strings.TrimSpace(out), "\n")
	if len(lines) != 2 || lines[0] != "core\tcore" || lines[1] != "docs\tdocs" {
		t.Fatalf("submodule output = %q", out)
	}
}

func TestTagReleaseRecursive(t *testing.T) {
	root := sandbox(t)
	out := mustRun(t, "-C", root, "tag-release", "--no-ask", "5.0.0-beta1")
	if !strings.Contains(out, "completed") {
		t.Fatalf("report = %q, want completed", out)
	}
	want := map[string]string{
		root:                        "v5.0.0-beta1",
		filepath.Join(root, "core"): "v5.0.0-beta1",
		filepath.Join(root, "docs"): "5.0.0-beta1",
	}
	for dir, tag := range want {
		if tags := tagsOf(t, dir); len(tags) != 1 || tags[0] != tag {
			t.Fatalf("tags of %s = %v, want [%s]", dir, tags, tag)
		}
	}
}

func TestTagReleaseShallow(t *testing.T) {
	root := sandbox(t)
	mustRun(t, "-C", root, "tag-release", "--no-ask", "--shallow", "5.0.0-beta1")
	if tags := tagsOf(t, root); len(tags) != 1 || tags[0] != "v5.0.0-beta1" {
		t.Fatalf("top tags = %v, want [v5.0.0-beta1]", tags)
	}
	for _, sub := range []string{"core", "docs"} {
		if tags := tagsOf(t, filepath.Join(root, sub)); len(tags) != 0 {
			t.Fatalf("%s tags = %v, want none", sub, tags)
		}
	}
}

func TestTagReleaseRejectsInvalidVersion(t *testing.T) {
	root := sandbox(t)
	for _, raw := range []string{"v5.0.0-beta1", "0.0.0beta1"} {
		_, _, err := runGotag(t, "", "-C", root, "tag-release", "--no-ask", raw)
		if !errors.Is(err, release.ErrInvalidVersion) {
			t.Fatalf("tag-release %s error = %v, want ErrInvalidVersion", raw, err)
		}
		if !strings.HasPrefix(err.Error(), "validate: ") {
			t.Fatalf("error %q does not name the stage", err)
		}
	}
	if tags := tagsOf(t, root); len(tags) != 0 {
		t.Fatalf("tags = %v after invalid versions", tags)
	}
}

func TestTagReleaseCollisionReportsJSON(t *testing.T) {
	root := sandbox(t)
	mustRun(t, "-C", filepath.Join(root, "core"), "tag", "v1.2.0")

	out, _, err := runGotag(t, "", "-C", root, "tag-release", "--no-ask", "--format", "json", "1.2.0")
	var exists *release.TagExistsError
	if !errors.As(err, &exists) || exists.Repo != "core" {
		t.Fatalf("tag-release error = %v, want TagExistsError for core", err)
	}
	if !strings.HasPrefix(err.Error(), "check: ") {
		t.Fatalf("error %q does not name the stage", err)
	}
	var report struct {
		State   string `json:"state"`
		Results []struct {
			Repo   string `json:"repo"`
			Status string `json:"status"`
		} `json:"results"`
	}
	if err := json.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report %q: %v", out, err)
	}
	if report.State != "aborted" || len(report.Results) != 3 {
		t.Fatalf("report = %+v, want aborted with 3 results", report)
	}
	if tags := tagsOf(t, root); len(tags) != 0 {
		t.Fatalf("top repository tagged despite collision: %v", tags)
	}
}

func TestTagReleaseYAMLReport(t *testing.T) {
	root := sandbox(t)
	out := mustRun(t, "-C", root, "tag-release", "--no-ask", "--format", "yaml", "2.0.0")
	var report struct {
		Version string `yaml:"version"`
		Mode    string `yaml:"mode"`
		Results []struct {
			Tag string `yaml:"tag"`
		} `yaml:"results"`
	}
	if err := yaml.Unmarshal([]byte(out), &report); err != nil {
		t.Fatalf("decode report %q: %v", out, err)
	}
	if report.Version != "2.0.0" || report.Mode != "recursive" || len(report.Results) != 3 {
		t.Fatalf("report = %+v", report)
	}
	if report.Results[2].Tag != "2.0.0" {
		t.Fatalf("docs tag = %q, want 2.0.0", report.Results[2].Tag)
	}
}

func TestTagReleaseConfirmation(t *testing.T) {
	root := sandbox(t)
	_, errOut, err := runGotag(t, "n\n", "-C", root, "tag-release", "3.0.0")
	if err != nil {
		t.Fatalf("declined release: %v", err)
	}
	if !strings.Contains(errOut, "Create 3 tag(s)?") || !strings.Contains(errOut, "aborted") {
		t.Fatalf("stderr = %q", errOut)
	}
	if tags := tagsOf(t, root); len(tags) != 0 {
		t.Fatalf("declined release created tags: %v", tags)
	}

	if _, _, err := runGotag(t, "yes\n", "-C", root, "tag-release", "3.0.0"); err != nil {
		t.Fatalf("confirmed release: %v", err)
	}
	if tags := tagsOf(t, root); len(tags) != 1 {
		t.Fatalf("confirmed release tags = %v", tags)
	}
}

func TestTagReleaseNoAskFromEnvironment(t *testing.T) {
	root := sandbox(t)
	t.Setenv("GOTAG_NO_ASK", "true")
	if _, _, err := runGotag(t, "", "-C", root, "tag-release", "--shallow", "1.0.0"); err != nil {
		t.Fatalf("tag-release: %v", err)
	}
	if tags := tagsOf(t, root); len(tags) != 1 || tags[0] != "v1.0.0" {
		t.Fatalf("tags = %v, want [v1.0.0]", tags)
	}
}

func TestTagReleaseConfigFile(t *testing.T) {
	root := sandbox(t)
	cfg := filepath.Join(t.TempDir(), "gotag.yaml")
	writeFile(t, cfg, "no-ask: true\nshallow: true\n")
	if _, _, err := runGotag(t, "", "-C", root, "--config", cfg, "tag-release", "1.1.0"); err != nil {
		t.Fatalf("tag-release: %v", err)
	}
	if tags := tagsOf(t, filepath.Join(root, "core")); len(tags) != 0 {
		t.Fatalf("config shallow ignored, core tags = %v", tags)
	}
	if tags := tagsOf(t, root); len(tags) != 1 {
		t.Fatalf("top tags = %v", tags)
	}
}

func TestTagReleaseSigned(t *testing.T) {
	root := sandbox(t)
	_, priv, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("GenerateKey: %v", err)
	}
	block, err := ssh.MarshalPrivateKey(priv, "release")
	if err != nil {
		t.Fatalf("MarshalPrivateKey: %v", err)
	}
	keyPath := filepath.Join(t.TempDir(), "id_ed25519")
	writeFile(t, keyPath, string(pem.EncodeToMemory(block)))

	mustRun(t, "-C", root, "tag-release", "--no-ask", "--shallow", "--sign", "--signing-key", keyPath, "--tagger", "Rel <rel@example.com>", "4.0.0")

	r, err := repo.Open(root)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	h, err := r.ResolveTag("v4.0.0")
	if err != nil {
		t.Fatalf("ResolveTag: %v", err)
	}
	tag, err := r.Store.ReadTag(h)
	if err != nil {
		t.Fatalf("ReadTag: %v", err)
	}
	if tag.Tagger != "Rel <rel@example.com>" || tag.Message != "Release v4.0.0\n" {
		t.Fatalf("tag = %+v", tag)
	}
	if err := verifySSHTagSignature(object.MarshalTagPayload(tag), tag.Signature); err != nil {
		t.Fatalf("signature does not verify: %v", err)
	}
}

func TestConfigShow(t *testing.T) {
	root := sandbox(t)
	mustRun(t, "-C", root, "config", "set", "release.tag_prefix", "rel-")
	out := mustRun(t, "-C", root, "config")
	if !strings.Contains(out, `tag_prefix = "rel-"`) {
		t.Fatalf("config output = %q", out)
	}
	mustRun(t, "-C", root, "tag-release", "--no-ask", "--shallow", "0.1.0")
	if tags := tagsOf(t, root); len(tags) != 1 || tags[0] != "rel-0.1.0" {
		t.Fatalf("tags = %v, want [rel-0.1.0]", tags)
	}
}

func TestUnknownFormat(t *testing.T) {
	root := sandbox(t)
	if _, _, err := runGotag(t, "", "-C", root, "tag-release", "--format", "xml", "1.0.0"); err == nil {
		t.Fatal("tag-release accepted --format xml")
	}
}

func TestTagReleaseEnvFile(t *testing.T) {
	root := sandbox(t)
	envFile := filepath.Join(t.TempDir(), "release.env")
	writeFile(t, envFile, "GOTAG_NO_ASK=true\nGOTAG_FORMAT=json\n")
	t.Cleanup(func() {
		os.Unsetenv("GOTAG_NO_ASK")
		os.Unsetenv("GOTAG_FORMAT")
	})

	out, _, err := runGotag(t, "", "-C", root, "--env-file", envFile, "tag-release", "--shallow", "1.3.0")
	if err != nil {
		t.Fatalf("tag-release: %v", err)
	}
	if !strings.HasPrefix(strings.TrimSpace(out), "{") {
		t.Fatalf("GOTAG_FORMAT from env file ignored, output = %q", out)
	}
	if tags := tagsOf(t, root); len(tags) != 1 || tags[0] != "v1.3.0" {
		t.Fatalf("tags = %v, want [v1.3.0]", tags)
	}
}
