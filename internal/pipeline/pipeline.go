// Package pipeline orchestrates project provisioning as a fixed
// sequence of stages. Each stage runs only if every stage before it
// succeeded; the first failure aborts the run and leaves the partially
// provisioned directory in place for inspection.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/betterde/fabr/internal/fetch"
	"github.com/betterde/fabr/internal/project"
	"github.com/betterde/fabr/internal/prompt"
	"github.com/betterde/fabr/internal/registry"
	"github.com/betterde/fabr/internal/replace"
	"github.com/betterde/fabr/internal/runner"
	"github.com/betterde/fabr/internal/ui"
)

// Options configure a single provisioning run.
type Options struct {
	Template    registry.Template
	ProjectName string
	// TargetDir receives the project; defaults to ./<ProjectName>.
	TargetDir string
	// Prompter answers placeholder questions. It may be nil when every
	// declared placeholder has a preset value.
	Prompter prompt.Prompter
	// Out receives status output; defaults to os.Stdout.
	Out io.Writer
	// Values preset placeholder answers by key, bypassing the prompt.
	Values map[string]string
	// SkipInstall turns the dependency install stage into a no-op.
	SkipInstall bool
}

// Pipeline provisions one project. Exactly one pipeline runs per
// process; stages are strictly sequential.
type Pipeline struct {
	opts   Options
	dir    string
	out    io.Writer
	runner *runner.Runner

	config       *project.Config
	replacements []replace.Replacement
}

type stage struct {
	name string
	run  func(context.Context) error
}

// New assembles a pipeline for the given options.
func New(opts Options) *Pipeline {
	dir := opts.TargetDir
	if dir == "" {
		dir = "." + string(filepath.Separator) + opts.ProjectName
	}
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}
	return &Pipeline{
		opts:   opts,
		dir:    dir,
		out:    out,
		runner: runner.New(dir, out),
	}
}

// Dir returns the directory the project is provisioned into.
func (p *Pipeline) Dir() string {
	return p.dir
}

// Run executes all stages in order and stops at the first failure.
// A prompt dismissed by the user surfaces as prompt.ErrCanceled.
func (p *Pipeline) Run(ctx context.Context) error {
	for _, s := range p.stages() {
		logrus.WithField("stage", s.name).Debug("entering stage")
		if err := s.run(ctx); err != nil {
			return fmt.Errorf("%s: %w", s.name, err)
		}
	}
	return nil
}

func (p *Pipeline) stages() []stage {
	return []stage{
		{name: "fetch template", run: p.fetch},
		{name: "locate config", run: p.locateConfig},
		{name: "pre-setup", run: p.preSetup},
		{name: "collect placeholders", run: p.collectPlaceholders},
		{name: "replace placeholders", run: p.replacePlaceholders},
		{name: "post-setup", run: p.postSetup},
		{name: "install dependencies", run: p.install},
		{name: "post-install", run: p.postInstall},
		{name: "cleanup", run: p.cleanup},
	}
}

func (p *Pipeline) fetch(ctx context.Context) error {
	if err := fetch.EnsureTarget(p.dir); err != nil {
		return err
	}
	spinner := ui.NewSpinner(p.out, fmt.Sprintf("fetching template %s", p.opts.Template.Slug))
	spinner.Start()
	err := fetch.Fetch(ctx, p.opts.Template.Repo, p.dir)
	spinner.Stop(err)
	return err
}

func (p *Pipeline) locateConfig(context.Context) error {
	if !project.Exists(p.dir) {
		ui.Warnf(p.out, "no %s found, continuing without advanced setup", project.ConfigFileName)
		p.config = &project.Config{}
		return nil
	}
	cfg, err := project.Load(p.dir)
	if err != nil {
		ui.Warnf(p.out, "ignoring invalid %s: %v", project.ConfigFileName, err)
		p.config = &project.Config{}
		return nil
	}
	p.config = cfg
	return nil
}

func (p *Pipeline) preSetup(ctx context.Context) error {
	return p.runner.Run(ctx, "running pre-setup", p.config.PreSetupCommand)
}

func (p *Pipeline) collectPlaceholders(context.Context) error {
	for _, ph := range p.config.Placeholders {
		value, preset := p.opts.Values[ph.Key]
		if !preset {
			if p.opts.Prompter == nil {
				return fmt.Errorf("placeholder %s has no preset value and no prompt is available", ph.Key)
			}
			answer, err := p.opts.Prompter.Input(ph.Prompt, prompt.NonEmpty(ph.Key))
			if err != nil {
				return err
			}
			value = answer
		}
		p.replacements = append(p.replacements, replace.Replacement{Token: ph.Key, Value: value})
	}
	return nil
}

func (p *Pipeline) replacePlaceholders(context.Context) error {
	if len(p.replacements) == 0 {
		return nil
	}
	ignores := append([]string{}, replace.DefaultIgnores...)
	ignores = append(ignores, p.config.Ignore...)
	if err := replace.Apply(p.dir, p.replacements, ignores); err != nil {
		return err
	}
	ui.Successf(p.out, "placeholders replaced")
	return nil
}

func (p *Pipeline) postSetup(ctx context.Context) error {
	return p.runner.Run(ctx, "running post-setup", p.config.PostSetupCommand)
}

func (p *Pipeline) install(ctx context.Context) error {
	if p.opts.SkipInstall {
		ui.Infof(p.out, "skipping dependency install")
		return nil
	}
	return p.runner.Run(ctx, "installing dependencies", p.config.InstallCommand)
}

func (p *Pipeline) postInstall(ctx context.Context) error {
	return p.runner.Run(ctx, "running post-install", p.config.PostInstallCommand)
}

// cleanup removes the consumed config file so it never ships with the
// generated project. Failing to remove it is a real failure: the file
// must not survive a successful run.
func (p *Pipeline) cleanup(context.Context) error {
	return project.Remove(p.dir)
}
