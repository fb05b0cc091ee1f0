package expenses

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"
)

// builtinCategories seeds default_categories.json the first time the
// application needs category names. Kept sorted, saves normalize to sorted
// order and the seed should round-trip unchanged.
var builtinCategories = CategorySet{
	Expense: {
		"Coffee", "Dining", "Entertainment", "Fuel", "Groceries", "Health",
		"Other", "Rent", "Shopping", "Subscriptions", "Transport", "Travel",
		"Utilities",
	},
	Income: {
		"Dividends", "Freelance Income", "Interest", "Other Income",
		"Refunds", "Salary/Wages",
	},
}

// CategorySet holds the category names the user picks from, per transaction
// type. It is stored as default_categories.json in the data directory.
type CategorySet map[TxType][]string

// Names returns the category names for one transaction type.
func (s CategorySet) Names(t TxType) []string { return s[t] }

// Add inserts a category name for the given type. It reports whether the set
// changed: names are compared case-insensitively.
func (s CategorySet) Add(t TxType, name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return false
	}
	for _, existing := range s[t] {
		if strings.EqualFold(existing, name) {
			return false
		}
	}
	s[t] = append(s[t], name)
	return true
}

func (s CategorySet) clone() CategorySet {
	out := make(CategorySet, len(s))
	for t, names := range s {
		out[t] = append([]string(nil), names...)
	}
	return out
}

// LoadCategorySet reads default_categories.json.
//
// Two formats are accepted: the current per-type object
// {"expense": [...], "income": [...]} and the legacy bare list, which counts
// entirely as expense categories. A missing or unreadable file is replaced
// with the built-in defaults so the next run finds a file to edit.
func LoadCategorySet(cfg *Config) CategorySet {
	data, err := os.ReadFile(cfg.DefaultCategoriesFile())
	if errors.Is(err, fs.ErrNotExist) {
		return seedBuiltinCategories(cfg)
	}
	if err != nil {
		logger.Warn().Err(err).Msg("cannot read category names")
		return builtinCategories.clone()
	}

	var byType CategorySet
	if err := json.Unmarshal(data, &byType); err == nil {
		return byType
	}
	var legacy []string
	if err := json.Unmarshal(data, &legacy); err == nil {
		return CategorySet{Expense: legacy}
	}

	logger.Warn().Str("file", cfg.DefaultCategoriesFile()).Msg("category names file is unreadable, resetting to defaults")
	return seedBuiltinCategories(cfg)
}

func seedBuiltinCategories(cfg *Config) CategorySet {
	seeded := builtinCategories.clone()
	if err := SaveCategorySet(cfg, seeded); err != nil {
		logger.Warn().Err(err).Msg("cannot save default category names")
	}
	return seeded
}

// SaveCategorySet writes the category names, sorted and deduplicated, with
// owner-only permissions.
func SaveCategorySet(cfg *Config, s CategorySet) error {
	normalized := make(CategorySet, len(s))
	for t, names := range s {
		seen := make(map[string]bool, len(names))
		kept := make([]string, 0, len(names))
		for _, name := range names {
			name = strings.TrimSpace(name)
			if name == "" || seen[strings.ToLower(name)] {
				continue
			}
			seen[strings.ToLower(name)] = true
			kept = append(kept, name)
		}
		sort.Strings(kept)
		normalized[t] = kept
	}
	return writeJSONFile(cfg, cfg.DefaultCategoriesFile(), normalized)
}

// LoadAssignments reads the merchant to category assignments from
// categories.json. A missing or unreadable file is an empty map: assignments
// are a convenience, never a reason to fail.
func LoadAssignments(cfg *Config) map[string]string {
	return loadJSONMap(cfg.CategoriesFile())
}

// SaveAssignments writes the merchant to category assignments.
func SaveAssignments(cfg *Config, assignments map[string]string) error {
	return writeJSONFile(cfg, cfg.CategoriesFile(), assignments)
}

// loadJSONMap reads a string map from path, tolerating absence and damage.
func loadJSONMap(path string) map[string]string {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]string{}
	}
	if err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("cannot read side-file")
		return map[string]string{}
	}
	m := map[string]string{}
	if err := json.Unmarshal(data, &m); err != nil {
		logger.Warn().Err(err).Str("file", path).Msg("side-file is unreadable, ignoring it")
		return map[string]string{}
	}
	return m
}

// writeJSONFile writes v indented to path with owner-only permissions,
// creating the data directory on the way.
func writeJSONFile(cfg *Config, path string, v any) error {
	if err := os.MkdirAll(cfg.Dir, 0o700); err != nil {
		return fmt.Errorf("cannot create data directory: %w", err)
	}
	data, err := json.MarshalIndent(v, "", "    ")
	if err != nil {
		return fmt.Errorf("cannot encode %q: %w", path, err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o600); err != nil {
		return fmt.Errorf("cannot write %q: %w", path, err)
	}
	return nil
}
