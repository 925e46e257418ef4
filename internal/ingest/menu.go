package ingest

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// CleanMenuJSON loads a JSON array of menu items, standardizes the fields,
// and writes the cleaned array. Items missing item_code or item_name are
// dropped, as are duplicate (code, name) pairs.
func CleanMenuJSON(inPath, outPath string) (int, error) {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return 0, fmt.Errorf("read menu json: %w", err)
	}
	var items []map[string]interface{}
	if err := json.Unmarshal(data, &items); err != nil {
		return 0, fmt.Errorf("parse menu json: %w", err)
	}

	titler := cases.Title(language.English)
	seen := map[[2]string]struct{}{}
	cleaned := make([]map[string]interface{}, 0, len(items))
	for _, item := range items {
		code := stringField(item, "item_code")
		name := stringField(item, "item_name")
		if code == "" || name == "" {
			continue
		}
		key := [2]string{code, name}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}

		item["item_name"] = titler.String(strings.TrimSpace(name))
		if v := stringField(item, "primary_dietary_flag"); v != "" {
			item["primary_dietary_flag"] = strings.ReplaceAll(strings.ToUpper(v), " ", "")
		}
		if v := stringField(item, "all_dietary_flags"); v != "" {
			item["all_dietary_flags"] = strings.ReplaceAll(titler.String(v), "-", " ")
		}
		cleaned = append(cleaned, item)
	}

	out, err := json.MarshalIndent(cleaned, "", "  ")
	if err != nil {
		return 0, err
	}
	if err := os.WriteFile(outPath, out, 0o644); err != nil {
		return 0, fmt.Errorf("write cleaned json: %w", err)
	}
	return len(cleaned), nil
}

func stringField(item map[string]interface{}, key string) string {
	v, ok := item[key]
	if !ok || v == nil {
		return ""
	}
	return fmt.Sprint(v)
}
