package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/jwebster45206/scene-engine/pkg/catalog"
	"github.com/jwebster45206/scene-engine/pkg/scene"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

// run validates the given scene files, or the compiled catalog when none
// are given, and returns the process exit code.
func run(args []string, stdout, stderr io.Writer) int {
	validator := &SceneValidator{known: make(map[scene.Key]bool)}
	for _, s := range catalog.Default().All() {
		validator.known[s.Key()] = true
	}

	var scenes []*scene.Scene
	if len(args) == 0 {
		fmt.Fprintln(stdout, "Validating compiled catalog...")
		scenes = catalog.Default().All()
	} else {
		for _, filename := range args {
			fmt.Fprintf(stdout, "Validating %s...\n", filename)
			loaded, err := loadFile(filename)
			if err != nil {
				fmt.Fprintf(stderr, "Validation failed: %v\n", err)
				return 1
			}
			scenes = append(scenes, loaded...)
		}
		for _, s := range scenes {
			validator.known[s.Key()] = true
		}
	}

	failed := 0
	for _, s := range scenes {
		if errs := validator.validateScene(s); len(errs) > 0 {
			failed++
			fmt.Fprintf(stderr, "validation errors in scene %s:\n%s\n", s.Key(), strings.Join(errs, "\n"))
		}
	}
	if failed > 0 {
		fmt.Fprintf(stderr, "Validation failed: %d of %d scenes have violations\n", failed, len(scenes))
		return 1
	}

	fmt.Fprintf(stdout, "%d scenes are valid!\n", len(scenes))
	return 0
}

type SceneValidator struct {
	known map[scene.Key]bool
}

func (v *SceneValidator) validateScene(s *scene.Scene) []string {
	var errs []string
	for _, msg := range scene.Validate(s).Violations {
		errs = append(errs, "  - "+msg)
	}
	for i, ch := range s.Choices {
		if !v.known[ch.NextKey()] {
			errs = append(errs, fmt.Sprintf("  - choices[%d] targets unknown scene %s", i, ch.NextKey()))
		}
	}
	for i, ns := range s.NextScenes {
		if !v.known[ns.Key()] {
			errs = append(errs, fmt.Sprintf("  - next_scenes[%d] targets unknown scene %s", i, ns.Key()))
		}
	}
	if aa, ok := s.AutoAdvance(); ok && !v.known[aa.NextScene] {
		errs = append(errs, fmt.Sprintf("  - auto-advance targets unknown scene %s", aa.NextScene))
	}
	return errs
}

// loadFile strictly decodes one scene object or an array of scenes.
func loadFile(filename string) ([]*scene.Scene, error) {
	if !strings.HasSuffix(filepath.Base(filename), ".json") {
		return nil, fmt.Errorf("scene file must have .json extension: %s", filepath.Base(filename))
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("file %s contains invalid JSON", filename)
	}

	trimmed := bytes.TrimSpace(data)
	decoder := json.NewDecoder(bytes.NewReader(trimmed))
	decoder.DisallowUnknownFields()

	if len(trimmed) > 0 && trimmed[0] == '[' {
		var scenes []*scene.Scene
		if err := decoder.Decode(&scenes); err != nil {
			return nil, fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
		}
		return scenes, nil
	}

	var s scene.Scene
	if err := decoder.Decode(&s); err != nil {
		return nil, fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}
	return []*scene.Scene{&s}, nil
}
