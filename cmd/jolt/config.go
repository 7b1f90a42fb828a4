package main

import (
	"fmt"

	"github.com/reusee/jolt/configs"
	"github.com/reusee/jolt/joltconfigs"
	"go.yaml.in/yaml/v3"
)

// Settings are the resolved configuration values.
type Settings struct {
	Files        []string `yaml:"files"`
	PrintResults bool     `yaml:"print_results"`
	ShowElapsed  bool     `yaml:"show_elapsed"`
	StaticCheck  bool     `yaml:"static_check"`
	Timeout      string   `yaml:"timeout"`
	HistoryFile  string   `yaml:"history_file"`
	Prompt       string   `yaml:"prompt"`
}

func (Module) Settings(
	loader configs.Loader,
	printResults joltconfigs.PrintResults,
	showElapsed joltconfigs.ShowElapsed,
	staticCheck joltconfigs.StaticCheck,
	timeout joltconfigs.Timeout,
	historyFile joltconfigs.HistoryFile,
	prompt joltconfigs.Prompt,
) Settings {
	files, err := loader.Files()
	if err != nil {
		panic(wrap(err))
	}
	return Settings{
		Files:        files,
		PrintResults: bool(printResults),
		ShowElapsed:  bool(showElapsed),
		StaticCheck:  bool(staticCheck),
		Timeout:      timeout.String(),
		HistoryFile:  string(historyFile),
		Prompt:       string(prompt),
	}
}

// Config prints settings as YAML.
func (d *Driver) Config(settings Settings) error {
	out, err := yaml.Marshal(settings)
	if err != nil {
		return wrap(err)
	}
	_, err = d.stdout.Write(out)
	return err
}

// ConfigFiles prints the loaded cue files, one per line.
func (d *Driver) ConfigFiles(settings Settings) error {
	for _, path := range settings.Files {
		if _, err := fmt.Fprintln(d.stdout, path); err != nil {
			return err
		}
	}
	return nil
}
