// cmd/contentcheck/audit.go
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/tidwall/gjson"
)

var validDifficulties = map[string]bool{
	"beginner":     true,
	"intermediate": true,
	"advanced":     true,
}

var validLetterTypes = map[string]bool{
	"vowel":     true,
	"consonant": true,
	"number":    true,
	"conjunct":  true,
	"symbol":    true,
}

// runAudit はカタログの 3 ファイルを検証し、問題があれば非 0 で終了します
func runAudit(dir string) error {
	var problems []string

	letters, err := parseArray(filepath.Join(dir, "letters.json"))
	if err != nil {
		return err
	}
	problems = append(problems, auditLetters(letters)...)

	words, err := parseArray(filepath.Join(dir, "words.json"))
	if err != nil {
		return err
	}
	problems = append(problems, auditWords(words)...)

	grammar, err := parseArray(filepath.Join(dir, "grammar.json"))
	if err != nil {
		return err
	}
	problems = append(problems, auditGrammar(grammar)...)

	color.New(color.FgHiCyan).Printf("letters: %d  words: %d  grammar lessons: %d\n",
		len(letters.Array()), len(words.Array()), len(grammar.Array()))

	if len(problems) > 0 {
		for _, p := range problems {
			color.New(color.FgHiRed).Println(p)
		}
		return fmt.Errorf("%d problem(s) found", len(problems))
	}

	color.New(color.FgGreen).Println("all content files OK")
	return nil
}

func parseArray(path string) (gjson.Result, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return gjson.Result{}, err
	}
	if !gjson.ValidBytes(raw) {
		return gjson.Result{}, fmt.Errorf("%s: invalid JSON", path)
	}
	parsed := gjson.ParseBytes(raw)
	if !parsed.IsArray() {
		return gjson.Result{}, fmt.Errorf("%s: top-level value must be an array", path)
	}
	return parsed, nil
}

func auditLetters(letters gjson.Result) []string {
	var problems []string
	seen := map[string]bool{}

	letters.ForEach(func(_, l gjson.Result) bool {
		id := l.Get("id").String()
		if id == "" {
			problems = append(problems, fmt.Sprintf("letters: entry %s has no id", l.Raw))
			return true
		}
		if seen[id] {
			problems = append(problems, fmt.Sprintf("letters: duplicate id %q", id))
		}
		seen[id] = true

		for _, field := range []string{"malayalam", "transliteration"} {
			if l.Get(field).String() == "" {
				problems = append(problems, fmt.Sprintf("letters: %s is missing %q", id, field))
			}
		}
		if !validLetterTypes[l.Get("type").String()] {
			problems = append(problems, fmt.Sprintf("letters: %s has invalid type %q", id, l.Get("type").String()))
		}
		if !validDifficulties[l.Get("difficulty").String()] {
			problems = append(problems, fmt.Sprintf("letters: %s has invalid difficulty %q", id, l.Get("difficulty").String()))
		}
		return true
	})
	return problems
}

func auditWords(words gjson.Result) []string {
	var problems []string
	seen := map[string]bool{}

	words.ForEach(func(_, w gjson.Result) bool {
		id := w.Get("id").String()
		if id == "" {
			problems = append(problems, fmt.Sprintf("words: entry %s has no id", w.Raw))
			return true
		}
		if seen[id] {
			problems = append(problems, fmt.Sprintf("words: duplicate id %q", id))
		}
		seen[id] = true

		for _, field := range []string{"malayalam", "transliteration", "english", "category"} {
			if w.Get(field).String() == "" {
				problems = append(problems, fmt.Sprintf("words: %s is missing %q", id, field))
			}
		}
		if !validDifficulties[w.Get("difficulty").String()] {
			problems = append(problems, fmt.Sprintf("words: %s has invalid difficulty %q", id, w.Get("difficulty").String()))
		}
		return true
	})
	return problems
}

func auditGrammar(lessons gjson.Result) []string {
	var problems []string
	seen := map[string]bool{}

	lessons.ForEach(func(_, l gjson.Result) bool {
		id := l.Get("id").String()
		if id == "" {
			problems = append(problems, fmt.Sprintf("grammar: entry %s has no id", l.Raw))
			return true
		}
		if seen[id] {
			problems = append(problems, fmt.Sprintf("grammar: duplicate id %q", id))
		}
		seen[id] = true

		if l.Get("title").String() == "" {
			problems = append(problems, fmt.Sprintf("grammar: %s is missing \"title\"", id))
		}
		if !validDifficulties[l.Get("difficulty").String()] {
			problems = append(problems, fmt.Sprintf("grammar: %s has invalid difficulty %q", id, l.Get("difficulty").String()))
		}
		if len(l.Get("concepts").Array()) == 0 {
			problems = append(problems, fmt.Sprintf("grammar: %s has no concepts", id))
		}
		return true
	})
	return problems
}
