package ingest

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// LoadJSON loads a JSON or JSONL file into a list of objects. A top-level
// object becomes a single-item list; array items and JSONL lines that are
// not objects are wrapped as {"value": x}.
func LoadJSON(path string) ([]map[string]interface{}, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("json not found: %s: %w", path, err)
	}
	if strings.EqualFold(filepath.Ext(path), ".jsonl") {
		return loadJSONL(path)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read json %s: %w", path, err)
	}
	var raw interface{}
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse json %s: %w", path, err)
	}
	switch v := raw.(type) {
	case map[string]interface{}:
		return []map[string]interface{}{v}, nil
	case []interface{}:
		items := make([]map[string]interface{}, 0, len(v))
		for _, x := range v {
			items = append(items, wrapItem(x))
		}
		return items, nil
	default:
		return []map[string]interface{}{{"value": fmt.Sprint(raw)}}, nil
	}
}

func loadJSONL(path string) ([]map[string]interface{}, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open jsonl %s: %w", path, err)
	}
	defer f.Close()

	var items []map[string]interface{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var raw interface{}
		if err := json.Unmarshal([]byte(line), &raw); err != nil {
			return nil, fmt.Errorf("parse jsonl %s: %w", path, err)
		}
		items = append(items, wrapItem(raw))
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read jsonl %s: %w", path, err)
	}
	return items, nil
}

func wrapItem(x interface{}) map[string]interface{} {
	if obj, ok := x.(map[string]interface{}); ok {
		return obj
	}
	return map[string]interface{}{"value": x}
}
