// internal/catalog/catalog.go
package catalog

import (
	"embed"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/samber/lo"

	"go_malayalam_trainer/internal/model"
)

//go:embed data/*.json
var dataFS embed.FS

// Catalog はビルド時に埋め込まれた学習コンテンツ（文字・単語・文法レッスン）を保持します。
// 読み取り専用であり、起動後に変更されることはありません。
type Catalog struct {
	letters  []model.Letter
	words    []model.Word
	grammar  []model.GrammarLesson
	letterix map[string]int
	wordix   map[string]int
}

// New は埋め込みデータを読み込んで Catalog を生成します。
// データが不正な場合（JSON 破損、ID 重複、不正な難易度）はエラーを返します。
func New() (*Catalog, error) {
	c := &Catalog{
		letterix: make(map[string]int),
		wordix:   make(map[string]int),
	}

	if err := loadJSON("data/letters.json", &c.letters); err != nil {
		return nil, err
	}
	if err := loadJSON("data/words.json", &c.words); err != nil {
		return nil, err
	}
	if err := loadJSON("data/grammar.json", &c.grammar); err != nil {
		return nil, err
	}

	for i, l := range c.letters {
		if _, dup := c.letterix[l.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate letter id %q", l.ID)
		}
		if !l.Difficulty.Valid() {
			return nil, fmt.Errorf("catalog: letter %q has invalid difficulty %q", l.ID, l.Difficulty)
		}
		c.letterix[l.ID] = i
	}
	for i, w := range c.words {
		if _, dup := c.wordix[w.ID]; dup {
			return nil, fmt.Errorf("catalog: duplicate word id %q", w.ID)
		}
		if !w.Difficulty.Valid() {
			return nil, fmt.Errorf("catalog: word %q has invalid difficulty %q", w.ID, w.Difficulty)
		}
		c.wordix[w.ID] = i
	}

	return c, nil
}

func loadJSON(name string, dst any) error {
	raw, err := dataFS.ReadFile(name)
	if err != nil {
		return fmt.Errorf("catalog: read %s: %w", name, err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("catalog: parse %s: %w", name, err)
	}
	return nil
}

// Letters は文字一覧を返します。letterType が空でない場合は種別で絞り込みます。
// 返却されるスライスは呼び出し側が自由に変更してよいコピーです。
func (c *Catalog) Letters(letterType model.LetterType) []model.Letter {
	if letterType == "" {
		return append([]model.Letter(nil), c.letters...)
	}
	return lo.Filter(c.letters, func(l model.Letter, _ int) bool {
		return l.Type == letterType
	})
}

// Words は単語一覧を返します。category・difficulty が空でない場合はそれぞれで絞り込みます。
func (c *Catalog) Words(category string, difficulty model.Difficulty) []model.Word {
	return lo.Filter(c.words, func(w model.Word, _ int) bool {
		if category != "" && w.Category != category {
			return false
		}
		if difficulty != "" && w.Difficulty != difficulty {
			return false
		}
		return true
	})
}

// WordCategories は単語カテゴリの一覧をソート済みで返します。
func (c *Catalog) WordCategories() []string {
	cats := lo.Uniq(lo.Map(c.words, func(w model.Word, _ int) string {
		return w.Category
	}))
	sort.Strings(cats)
	return cats
}

// Grammar は文法レッスン一覧を返します。
func (c *Catalog) Grammar() []model.GrammarLesson {
	return append([]model.GrammarLesson(nil), c.grammar...)
}

// GrammarLessonByID は ID でレッスンを検索します。見つからない場合は ok=false を返します。
func (c *Catalog) GrammarLessonByID(id string) (model.GrammarLesson, bool) {
	return lo.Find(c.grammar, func(l model.GrammarLesson) bool {
		return l.ID == id
	})
}

// LetterByID は ID で文字を検索します
func (c *Catalog) LetterByID(id string) (model.Letter, bool) {
	i, ok := c.letterix[id]
	if !ok {
		return model.Letter{}, false
	}
	return c.letters[i], true
}

// WordByID は ID で単語を検索します
func (c *Catalog) WordByID(id string) (model.Word, bool) {
	i, ok := c.wordix[id]
	if !ok {
		return model.Word{}, false
	}
	return c.words[i], true
}

// HasLetter は文字 ID が存在するかどうかを返します
func (c *Catalog) HasLetter(id string) bool {
	_, ok := c.letterix[id]
	return ok
}

// HasWord は単語 ID が存在するかどうかを返します
func (c *Catalog) HasWord(id string) bool {
	_, ok := c.wordix[id]
	return ok
}
