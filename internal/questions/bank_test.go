package questions

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shakegang/arcade/internal/trivia"
)

func TestEmbeddedBankCoversEveryCategory(t *testing.T) {
	b, err := Embedded()
	if err != nil {
		t.Fatalf("Embedded: %v", err)
	}
	for _, c := range trivia.Categories {
		qs := b.QuestionsFor(c)
		if len(qs) == 0 {
			t.Fatalf("category %s has no questions", c)
		}
		for _, q := range qs {
			if !q.Multiple && len(q.Correct) != 1 {
				t.Fatalf("%s: single-answer question with %d correct", c, len(q.Correct))
			}
		}
	}
}

func TestParseSingleAndMulti(t *testing.T) {
	b, err := Parse([]byte(`{
		"music": [
			{"question": "q1", "options": ["a","b","c"], "correctIndex": 0},
			{"question": "q2", "options": ["a","b","c","d"], "correctIndexes": [1, 3], "audioUrl": "https://x/y.mp3"}
		]
	}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	qs := b.QuestionsFor(trivia.CategoryMusic)
	if len(qs) != 2 {
		t.Fatalf("len = %d", len(qs))
	}
	if qs[0].Multiple || len(qs[0].Correct) != 1 || qs[0].Correct[0] != 0 {
		t.Fatalf("single = %+v", qs[0])
	}
	if !qs[1].Multiple || len(qs[1].Correct) != 2 || qs[1].AudioURL == "" {
		t.Fatalf("multi = %+v", qs[1])
	}
	if got := b.Stats()[trivia.CategoryMusic]; got != 2 {
		t.Fatalf("stats = %d", got)
	}
	if len(b.QuestionsFor(trivia.CategoryPantCookie)) != 0 {
		t.Fatal("missing category should be empty")
	}
}

func TestParseRejects(t *testing.T) {
	cases := map[string]string{
		"bad json":        `{`,
		"bad category":    `{"sports": []}`,
		"empty prompt":    `{"music": [{"question": " ", "options": ["a","b"], "correctIndex": 0}]}`,
		"one option":      `{"music": [{"question": "q", "options": ["a"], "correctIndex": 0}]}`,
		"no answer":       `{"music": [{"question": "q", "options": ["a","b"]}]}`,
		"out of range":    `{"music": [{"question": "q", "options": ["a","b"], "correctIndex": 2}]}`,
		"duplicate multi": `{"music": [{"question": "q", "options": ["a","b"], "correctIndexes": [1,1]}]}`,
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			if _, err := Parse([]byte(doc)); err == nil {
				t.Fatalf("expected error for %s", name)
			}
		})
	}
}

func TestLoadFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bank.json")
	doc := `{"shurahiwa": [{"question": "q", "options": ["a","b"], "correctIndex": 1}]}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}
	b, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(b.QuestionsFor(trivia.CategoryShuraHiwa)) != 1 {
		t.Fatal("file bank not loaded")
	}
	if _, err := Load(filepath.Join(t.TempDir(), "missing.json")); err == nil || !strings.Contains(err.Error(), "read question bank") {
		t.Fatalf("missing file err = %v", err)
	}
}
