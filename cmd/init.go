/*
Copyright © 2025 George <george@betterde.com>

Permission is hereby granted, free of charge, to any person obtaining a copy
of this software and associated documentation files (the "Software"), to deal
in the Software without restriction, including without limitation the rights
to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
copies of the Software, and to permit persons to whom the Software is
furnished to do so, subject to the following conditions:

The above copyright notice and this permission notice shall be included in
all copies or substantial portions of the Software.

THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
THE SOFTWARE.
*/
package cmd

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/betterde/fabr/internal/pipeline"
	"github.com/betterde/fabr/internal/prompt"
	"github.com/betterde/fabr/internal/registry"
	"github.com/betterde/fabr/internal/ui"
)

// initCmd represents the init command
var initCmd = &cobra.Command{
	Use:   "init [template] [name]",
	Short: "Initialize a new project from a template",
	Long: `Initialize a new project from a template.

Without arguments the template and project name are asked interactively.
The template's repository is fetched into a directory named after the
project, placeholder tokens are substituted and the setup commands the
template declares are executed in order.`,
	Args: cobra.MaximumNArgs(2),
	RunE: initProject,
}

var (
	setValues   []string
	skipInstall bool
)

func init() {
	rootCmd.AddCommand(initCmd)

	initCmd.Flags().StringArrayVar(&setValues, "set", nil, "preset a placeholder value as KEY=VALUE (repeatable)")
	initCmd.Flags().BoolVar(&skipInstall, "skip-install", false, "skip the dependency install step")
}

func initProject(cmd *cobra.Command, args []string) error {
	values, err := parseSetValues(setValues)
	if err != nil {
		return err
	}

	reg, err := loadRegistry()
	if err != nil {
		return err
	}

	prompter := &prompt.Terminal{}

	tpl, err := chooseTemplate(reg, args, prompter)
	if err != nil {
		return err
	}

	name, err := chooseName(args, prompter)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	p := pipeline.New(pipeline.Options{
		Template:    tpl,
		ProjectName: name,
		Prompter:    prompter,
		Out:         out,
		Values:      values,
		SkipInstall: skipInstall,
	})

	ui.Titlef(out, "Creating %s from template %s", name, tpl.Slug)
	if err := p.Run(cmd.Context()); err != nil {
		return err
	}

	ui.Successf(out, "initialized %s in %s", name, p.Dir())
	return nil
}

// chooseTemplate resolves the template from the first argument, or asks
// the user to pick one from the catalog.
func chooseTemplate(reg *registry.Registry, args []string, prompter prompt.Prompter) (registry.Template, error) {
	if len(args) >= 1 {
		return reg.Find(args[0])
	}
	if len(reg.Templates) == 0 {
		return registry.Template{}, fmt.Errorf("the template registry is empty")
	}
	labels := make([]string, 0, len(reg.Templates))
	for _, t := range reg.Templates {
		labels = append(labels, fmt.Sprintf("%s (%s)", t.Name, t.Slug))
	}
	i, err := prompter.Select("Choose a template", labels)
	if err != nil {
		return registry.Template{}, err
	}
	return reg.Templates[i], nil
}

// chooseName resolves the project name from the second argument, or
// asks for one.
func chooseName(args []string, prompter prompt.Prompter) (string, error) {
	if len(args) >= 2 {
		name := args[1]
		if err := prompt.ValidateProjectName(name); err != nil {
			return "", err
		}
		return name, nil
	}
	return prompter.Input("Project name", prompt.ValidateProjectName)
}

func parseSetValues(pairs []string) (map[string]string, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	values := make(map[string]string, len(pairs))
	for _, pair := range pairs {
		key, value, ok := strings.Cut(pair, "=")
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q, expected KEY=VALUE", pair)
		}
		values[key] = value
	}
	return values, nil
}
