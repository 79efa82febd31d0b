// cmd/contentcheck/importer.go
package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/tidwall/sjson"
	"github.com/xuri/excelize/v2"
)

type importConfig struct {
	File  string
	Sheet string
	Out   string
}

// runImport は xlsx の行を words.json 形式に変換します。
// 期待する列順: id, malayalam, transliteration, english, category, difficulty。
// 先頭行はヘッダとして読み飛ばします。
func runImport(cfg importConfig) error {
	f, err := excelize.OpenFile(cfg.File)
	if err != nil {
		return fmt.Errorf("failed to open xlsx file: %w", err)
	}
	defer f.Close()

	rows, err := f.GetRows(cfg.Sheet)
	if err != nil {
		return fmt.Errorf("failed to read sheet %q: %w", cfg.Sheet, err)
	}

	out := []byte("[]")
	count := 0
	skipped := 0

	for i, row := range rows {
		if i == 0 {
			continue // ヘッダ行
		}
		if len(row) < 6 {
			skipped++
			continue
		}

		id := strings.TrimSpace(row[0])
		difficulty := strings.ToLower(strings.TrimSpace(row[5]))
		if id == "" || !validDifficulties[difficulty] {
			color.New(color.FgYellow).Printf("skipping row %d: id=%q difficulty=%q\n", i+1, id, difficulty)
			skipped++
			continue
		}

		prefix := fmt.Sprintf("%d", count)
		for field, value := range map[string]string{
			"id":              id,
			"malayalam":       strings.TrimSpace(row[1]),
			"transliteration": strings.TrimSpace(row[2]),
			"english":         strings.TrimSpace(row[3]),
			"category":        strings.TrimSpace(row[4]),
			"difficulty":      difficulty,
		} {
			out, err = sjson.SetBytes(out, prefix+"."+field, value)
			if err != nil {
				return fmt.Errorf("failed to build output JSON: %w", err)
			}
		}
		count++
	}

	if err := os.WriteFile(cfg.Out, out, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", cfg.Out, err)
	}

	color.New(color.FgGreen).Printf("imported %d word(s) to %s (%d skipped)\n", count, cfg.Out, skipped)
	return nil
}
