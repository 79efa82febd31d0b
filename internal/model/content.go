// internal/model/content.go
package model

// Difficulty はコンテンツの難易度を表します
type Difficulty string

const (
	DifficultyBeginner     Difficulty = "beginner"
	DifficultyIntermediate Difficulty = "intermediate"
	DifficultyAdvanced     Difficulty = "advanced"
)

// Valid は定義済みの難易度かどうかを返します
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return true
	}
	return false
}

// LetterType は文字の種別を表します
type LetterType string

const (
	LetterTypeVowel     LetterType = "vowel"
	LetterTypeConsonant LetterType = "consonant"
	LetterTypeNumber    LetterType = "number"
	LetterTypeConjunct  LetterType = "conjunct"
	LetterTypeSymbol    LetterType = "symbol"
)

// LetterExample は文字を使った例語です
type LetterExample struct {
	Word            string `json:"word"`
	Transliteration string `json:"transliteration"`
	English         string `json:"english"`
}

// Letter はマラヤーラム文字（文字・数字・記号）を表します。
// ビルド時に作成される読み取り専用レコードで、実行時に変更されることはありません。
type Letter struct {
	ID              string          `json:"id"`
	Malayalam       string          `json:"malayalam"`
	Transliteration string          `json:"transliteration"`
	Type            LetterType      `json:"type"`
	Pronunciation   string          `json:"pronunciation,omitempty"`
	Difficulty      Difficulty      `json:"difficulty"`
	Description     string          `json:"description,omitempty"`
	Examples        []LetterExample `json:"examples,omitempty"`
}

// Word はマラヤーラム語の単語を表します
type Word struct {
	ID              string     `json:"id"`
	Malayalam       string     `json:"malayalam"`
	Transliteration string     `json:"transliteration"`
	English         string     `json:"english"`
	Category        string     `json:"category"`
	Difficulty      Difficulty `json:"difficulty"`
}

// GrammarExample は文法概念の例文です
type GrammarExample struct {
	Malayalam       string `json:"malayalam"`
	Transliteration string `json:"transliteration"`
	English         string `json:"english"`
	Breakdown       string `json:"breakdown,omitempty"`
}

// GrammarConcept は文法レッスン内の 1 概念を表します
type GrammarConcept struct {
	ID                     string           `json:"id"`
	Concept                string           `json:"concept"`
	ConceptMalayalam       string           `json:"concept_malayalam"`
	ConceptTransliteration string           `json:"concept_transliteration"`
	Explanation            string           `json:"explanation"`
	Examples               []GrammarExample `json:"examples,omitempty"`
}

// GrammarLesson は文法レッスン（概念の集まり）を表します
type GrammarLesson struct {
	ID                   string           `json:"id"`
	Title                string           `json:"title"`
	TitleMalayalam       string           `json:"title_malayalam"`
	TitleTransliteration string           `json:"title_transliteration"`
	Difficulty           Difficulty       `json:"difficulty"`
	Concepts             []GrammarConcept `json:"concepts"`
}
