package pipeline

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/betterde/fabr/internal/project"
	"github.com/betterde/fabr/internal/prompt"
	"github.com/betterde/fabr/internal/registry"
)

type scriptedPrompter struct {
	answers []string
	labels  []string
	err     error
}

func (s *scriptedPrompter) Select(string, []string) (int, error) {
	return 0, s.err
}

func (s *scriptedPrompter) Input(label string, validate func(string) error) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	s.labels = append(s.labels, label)
	if len(s.answers) == 0 {
		return "", errors.New("no scripted answer left")
	}
	answer := s.answers[0]
	s.answers = s.answers[1:]
	if validate != nil {
		if err := validate(answer); err != nil {
			return "", err
		}
	}
	return answer, nil
}

func scaffoldTemplate(t *testing.T, files map[string]string) string {
	t.Helper()
	src := t.TempDir()
	for rel, content := range files {
		path := filepath.Join(src, rel)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	}
	return src
}

func newRun(t *testing.T, src string, opts Options) (*Pipeline, *bytes.Buffer) {
	t.Helper()
	color.NoColor = true
	buf := &bytes.Buffer{}
	opts.Template = registry.Template{Slug: "fixture", Name: "Fixture", Repo: src}
	if opts.ProjectName == "" {
		opts.ProjectName = "demo"
	}
	if opts.TargetDir == "" {
		opts.TargetDir = filepath.Join(t.TempDir(), opts.ProjectName)
	}
	opts.Out = buf
	return New(opts), buf
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestRunHappyPath(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	src := scaffoldTemplate(t, map[string]string{
		"README.md": "# APP_NAME\n\nby AUTHOR\n",
		"fabr.config.json": `{
			"preSetupCommand": "echo pre >> steps.log",
			"postSetupCommand": "echo post >> steps.log",
			"installCommand": "echo install >> steps.log",
			"postInstallCommand": "echo post-install >> steps.log",
			"placeholders": [
				{"key": "APP_NAME", "prompt": "Application name?"},
				{"key": "AUTHOR", "prompt": "Author name?"}
			]
		}`,
	})
	prompter := &scriptedPrompter{answers: []string{"demo-app", "Jordan"}}
	p, _ := newRun(t, src, Options{Prompter: prompter})

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, "# demo-app\n\nby Jordan\n", readFile(t, filepath.Join(p.Dir(), "README.md")))
	assert.Equal(t, "pre\npost\ninstall\npost-install\n", readFile(t, filepath.Join(p.Dir(), "steps.log")),
		"setup commands must run in pipeline order")
	assert.Equal(t, []string{"Application name?", "Author name?"}, prompter.labels,
		"placeholders are asked in declaration order")
	assert.NoFileExists(t, project.Path(p.Dir()), "config must be consumed and removed")
}

func TestRunWithoutConfig(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"README.md": "# plain\n",
	})
	p, buf := newRun(t, src, Options{})

	require.NoError(t, p.Run(context.Background()))

	assert.Contains(t, buf.String(), "no fabr.config.json found")
	assert.Equal(t, "# plain\n", readFile(t, filepath.Join(p.Dir(), "README.md")))
}

func TestRunInvalidConfigDegrades(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"README.md":        "# plain\n",
		"fabr.config.json": `{"installCommand": 42}`,
	})
	p, buf := newRun(t, src, Options{})

	require.NoError(t, p.Run(context.Background()), "a malformed optional config must never block provisioning")

	assert.Contains(t, buf.String(), "ignoring invalid fabr.config.json")
	assert.NoFileExists(t, project.Path(p.Dir()), "even an invalid config is removed at cleanup")
}

func TestRunStageFailureAborts(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	src := scaffoldTemplate(t, map[string]string{
		"fabr.config.json": `{
			"preSetupCommand": "exit 7",
			"installCommand": "echo install >> steps.log"
		}`,
	})
	p, _ := newRun(t, src, Options{})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pre-setup")
	assert.NoFileExists(t, filepath.Join(p.Dir(), "steps.log"), "later stages must not run after a failure")
	assert.FileExists(t, project.Path(p.Dir()), "cleanup does not run after an aborted pipeline")
}

func TestRunCanceledPrompt(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"README.md": "APP_NAME",
		"fabr.config.json": `{
			"placeholders": [{"key": "APP_NAME", "prompt": "Application name?"}]
		}`,
	})
	p, _ := newRun(t, src, Options{Prompter: &scriptedPrompter{err: prompt.ErrCanceled}})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.ErrorIs(t, err, prompt.ErrCanceled)
}

func TestRunPresetValues(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"main.go": "package APP_NAME // by AUTHOR\n",
		"fabr.config.json": `{
			"placeholders": [
				{"key": "APP_NAME", "prompt": "Application name?"},
				{"key": "AUTHOR", "prompt": "Author name?"}
			]
		}`,
	})
	p, _ := newRun(t, src, Options{
		Values: map[string]string{"APP_NAME": "widget", "AUTHOR": "Sam"},
	})

	require.NoError(t, p.Run(context.Background()), "preset values must not require a prompter")
	assert.Equal(t, "package widget // by Sam\n", readFile(t, filepath.Join(p.Dir(), "main.go")))
}

func TestRunMixedPresetAndPromptedValues(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"words.txt": "FIRST SECOND THIRD",
		"fabr.config.json": `{
			"placeholders": [
				{"key": "FIRST", "prompt": "First?"},
				{"key": "SECOND", "prompt": "Second?"},
				{"key": "THIRD", "prompt": "Third?"}
			]
		}`,
	})
	prompter := &scriptedPrompter{answers: []string{"one", "three"}}
	p, _ := newRun(t, src, Options{
		Prompter: prompter,
		Values:   map[string]string{"SECOND": "two"},
	})

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, []string{"First?", "Third?"}, prompter.labels,
		"seeded placeholders are not prompted for")
	assert.Equal(t, "one two three", readFile(t, filepath.Join(p.Dir(), "words.txt")),
		"values apply in declaration order regardless of how they were supplied")
}

func TestRunIgnoreGlobs(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"README.md":       "# APP_NAME\n",
		"assets/logo.svg": "<!-- APP_NAME -->\n",
		"docs/guide.md":   "APP_NAME manual\n",
		"fabr.config.json": `{
			"placeholders": [{"key": "APP_NAME", "prompt": "Application name?"}],
			"ignore": ["assets/**", "docs/guide.md"]
		}`,
	})
	p, _ := newRun(t, src, Options{Values: map[string]string{"APP_NAME": "widget"}})

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, "# widget\n", readFile(t, filepath.Join(p.Dir(), "README.md")))
	assert.Equal(t, "<!-- APP_NAME -->\n", readFile(t, filepath.Join(p.Dir(), "assets", "logo.svg")),
		"ignored paths keep their tokens")
	assert.Equal(t, "APP_NAME manual\n", readFile(t, filepath.Join(p.Dir(), "docs", "guide.md")))
}

func TestRunMissingValueWithoutPrompter(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{
		"fabr.config.json": `{
			"placeholders": [{"key": "APP_NAME", "prompt": "Application name?"}]
		}`,
	})
	p, _ := newRun(t, src, Options{})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "APP_NAME")
}

func TestRunSkipInstall(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("relies on sh")
	}
	src := scaffoldTemplate(t, map[string]string{
		"fabr.config.json": `{
			"preSetupCommand": "echo pre >> steps.log",
			"postSetupCommand": "echo post >> steps.log",
			"installCommand": "echo install >> steps.log",
			"postInstallCommand": "echo post-install >> steps.log"
		}`,
	})
	p, buf := newRun(t, src, Options{SkipInstall: true})

	require.NoError(t, p.Run(context.Background()))

	assert.Equal(t, "pre\npost\npost-install\n", readFile(t, filepath.Join(p.Dir(), "steps.log")),
		"only the install stage is skipped, post-install still runs")
	assert.Contains(t, buf.String(), "skipping dependency install")
}

func TestRunTargetOccupied(t *testing.T) {
	src := scaffoldTemplate(t, map[string]string{"README.md": "x"})
	target := filepath.Join(t.TempDir(), "demo")
	require.NoError(t, os.MkdirAll(target, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(target, "keep.txt"), []byte("x"), 0o644))

	p, _ := newRun(t, src, Options{TargetDir: target})

	err := p.Run(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "exists and is non-empty")
	assert.FileExists(t, filepath.Join(target, "keep.txt"))
}

func TestNewDefaultsTargetDir(t *testing.T) {
	p := New(Options{ProjectName: "demo"})
	assert.Equal(t, "."+string(filepath.Separator)+"demo", p.Dir())
}
