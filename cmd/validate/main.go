package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"sort"
	"strings"

	"github.com/jwebster45206/arena-engine/pkg/assets"
	"github.com/jwebster45206/arena-engine/pkg/comp"
)

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintf(os.Stderr, "Usage: %s <comp.json> [assets.json]\n", os.Args[0])
		os.Exit(1)
	}

	validator := &CompValidator{}
	if len(os.Args) > 2 {
		a, err := assets.Load(os.Args[2])
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load assets: %v\n", err)
			os.Exit(1)
		}
		validator.assets = a
	}

	filename := os.Args[1]
	if err := validator.validateFile(filename); err != nil {
		fmt.Fprintf(os.Stderr, "Validation failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Println("Comp file is valid!")
}

// CompValidator checks a composition file strictly, and against static game data when given.
type CompValidator struct {
	assets *assets.Assets
	errors []string
}

func (v *CompValidator) validateFile(filename string) error {
	fmt.Printf("Validating %s...\n", filename)

	baseName := filepath.Base(filename)
	if !strings.HasSuffix(baseName, ".json") {
		return fmt.Errorf("comp file must have .json extension: %s", baseName)
	}

	nameWithoutExt := strings.TrimSuffix(baseName, ".json")
	if !isValidCompFilename(nameWithoutExt) {
		return fmt.Errorf("comp filename '%s' must be lowercase snake_case (e.g., fast_nine.json, not Fast-Nine.json)", baseName)
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return fmt.Errorf("failed to read file %s: %w", filename, err)
	}
	return v.validateData(data, filename)
}

func (v *CompValidator) validateData(data []byte, filename string) error {
	v.errors = nil

	if !json.Valid(data) {
		return fmt.Errorf("file %s contains invalid JSON", filename)
	}

	var c comp.Comp
	decoder := json.NewDecoder(bytes.NewReader(data))
	decoder.DisallowUnknownFields()

	if err := decoder.Decode(&c); err != nil {
		return fmt.Errorf("file %s failed strict JSON unmarshaling: %w", filename, err)
	}

	if err := c.Validate(); err != nil {
		return err
	}
	v.validateComp(&c)

	if len(v.errors) > 0 {
		return fmt.Errorf("validation errors in %s:\n%s", filename, strings.Join(v.errors, "\n"))
	}
	return nil
}

func (v *CompValidator) validateComp(c *comp.Comp) {
	if strings.TrimSpace(c.Name) == "" {
		v.addError("comp has no name")
	}

	finals := 0
	headliners := 0
	for _, name := range sortedNames(c) {
		ch := c.Champions[name]
		if ch.FinalComp {
			finals++
		}
		if c.HeadlinerTag(name) != 0 {
			headliners++
		}
		v.validateItems(name, ch.Items)
		if v.assets != nil {
			if _, ok := v.assets.Cost(name); !ok {
				v.addError(fmt.Sprintf("champion '%s' is not in the assets file", name))
			}
		}
	}
	if finals == 0 {
		v.addError("no champion is marked final_comp")
	}
	if headliners == 0 {
		v.addError("no champion has a headliner flag set; headliners will never be bought")
	}

	for _, aug := range c.Augments {
		for _, avoid := range c.AvoidAugments {
			if strings.Contains(aug, avoid) {
				v.addError(fmt.Sprintf("augment '%s' is both preferred and avoided (matches '%s')", aug, avoid))
			}
		}
	}
}

func (v *CompValidator) validateItems(champion string, items []string) {
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			v.addError(fmt.Sprintf("champion '%s' has an empty item name", champion))
			continue
		}
		if v.assets != nil && !v.assets.IsFullItem(item) {
			v.addError(fmt.Sprintf("champion '%s' builds '%s', which is not a full item", champion, item))
		}
	}
	if len(items) > 3 {
		v.addError(fmt.Sprintf("champion '%s' lists %d items; a unit holds at most 3", champion, len(items)))
	}
}

func (v *CompValidator) addError(msg string) {
	if slices.Contains(v.errors, "  - "+msg) {
		return
	}
	v.errors = append(v.errors, "  - "+msg)
}

func sortedNames(c *comp.Comp) []string {
	names := make([]string, 0, len(c.Champions))
	for name := range c.Champions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

var validFilenameRegex = regexp.MustCompile(`^[a-z][a-z0-9_]*[a-z0-9]$|^[a-z]$`)

func isValidCompFilename(name string) bool {
	// Allow 'x.' prefix for experimental comps
	name = strings.TrimPrefix(name, "x.")
	return validFilenameRegex.MatchString(name)
}
