package source

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"unicode/utf8"

	"gopkg.in/yaml.v3"

	"wealthos/governance/pkg/governance"
)

// MaxFileSize bounds a single rule file.
const MaxFileSize = 1 << 20

// ruleFile is the on-disk layout of a rules document.
type ruleFile struct {
	Rules []governance.Rule `yaml:"rules"`
}

var knownTypes = map[governance.RuleType]bool{
	governance.RuleQualityThreshold: true,
	governance.RuleStaleThreshold:   true,
	governance.RuleReconThreshold:   true,
	governance.RuleEmitException:    true,
}

var knownSeverities = map[governance.Severity]bool{
	"":                          true,
	governance.SeverityLow:      true,
	governance.SeverityMedium:   true,
	governance.SeverityHigh:     true,
	governance.SeverityCritical: true,
}

// Load reads rules from a single YAML file or every .yaml/.yml file under a
// directory. Rule ids must be unique across all files.
func Load(path string) ([]governance.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to access path", Cause: err}
	}
	if !info.IsDir() {
		return LoadFile(path)
	}
	return LoadDirectory(path)
}

// LoadFile reads and validates one rules document.
func LoadFile(path string) ([]governance.Rule, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to access file", Cause: err}
	}
	if !info.Mode().IsRegular() {
		return nil, &LoadError{FilePath: path, Message: "not a regular file"}
	}
	if info.Size() > MaxFileSize {
		return nil, &LoadError{
			FilePath: path,
			Message:  fmt.Sprintf("file size %d bytes exceeds maximum %d bytes", info.Size(), MaxFileSize),
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{FilePath: path, Message: "failed to read file", Cause: err}
	}
	if !utf8.Valid(data) {
		return nil, &LoadError{FilePath: path, Message: "file contains invalid UTF-8 encoding"}
	}

	return Parse(path, data)
}

// Parse decodes a rules document. name is used in error messages only.
func Parse(name string, data []byte) ([]governance.Rule, error) {
	var doc ruleFile
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &ParseError{FilePath: name, Message: "YAML parsing failed", Cause: err}
	}

	seen := make(map[string]bool, len(doc.Rules))
	for i, r := range doc.Rules {
		if r.ID == "" {
			return nil, &ParseError{FilePath: name, Message: fmt.Sprintf("rule %d has no id", i+1)}
		}
		if seen[r.ID] {
			return nil, &ParseError{FilePath: name, RuleID: r.ID, Message: "duplicate rule id"}
		}
		seen[r.ID] = true

		if !knownTypes[r.RuleTypeKey] {
			return nil, &ParseError{FilePath: name, RuleID: r.ID, Message: fmt.Sprintf("unknown rule type %q", r.RuleTypeKey)}
		}
		if !knownSeverities[r.Config.Severity] {
			return nil, &ParseError{FilePath: name, RuleID: r.ID, Message: fmt.Sprintf("unknown severity %q", r.Config.Severity)}
		}
		for _, d := range r.AppliesTo.Domains {
			if !d.Valid() {
				return nil, &ParseError{FilePath: name, RuleID: r.ID, Message: fmt.Sprintf("unknown domain %q", d)}
			}
		}
		if r.Config.Threshold < 0 || r.Config.Threshold > 100 {
			return nil, &ParseError{FilePath: name, RuleID: r.ID, Message: "threshold must be between 0 and 100"}
		}
		if r.Config.Days < 0 || r.Config.DeltaPercent < 0 {
			return nil, &ParseError{FilePath: name, RuleID: r.ID, Message: "days and delta_percent must not be negative"}
		}
	}

	return doc.Rules, nil
}

// LoadDirectory loads every rule file under dir in lexical path order.
// Rules from files that parse are returned alongside an *ErrorList for the
// files that did not.
func LoadDirectory(dir string) ([]governance.Rule, error) {
	files, err := collectFiles(dir)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &LoadError{FilePath: dir, Message: "no rule files found in directory"}
	}

	var all []governance.Rule
	seen := make(map[string]string)
	errList := &ErrorList{}

	for _, path := range files {
		loaded, err := LoadFile(path)
		if err != nil {
			errList.Add(err)
			continue
		}
		for _, r := range loaded {
			if prev, dup := seen[r.ID]; dup {
				errList.Add(&ParseError{FilePath: path, RuleID: r.ID, Message: "rule id already defined in " + prev})
				continue
			}
			seen[r.ID] = path
			all = append(all, r)
		}
	}

	if errList.HasErrors() {
		return all, errList
	}
	return all, nil
}

func collectFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if strings.HasPrefix(d.Name(), ".") && path != dir {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if hasRuleExtension(path) {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, &LoadError{FilePath: dir, Message: "failed to walk directory", Cause: err}
	}
	sort.Strings(files)
	return files, nil
}

func hasRuleExtension(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	}
	return false
}
