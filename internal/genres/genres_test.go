package genres

import (
	"math/rand/v2"
	"slices"
	"testing"
)

func TestVocabulariesAreParallel(t *testing.T) {
	t.Parallel()
	for _, lang := range Languages() {
		if got := len(Core(lang)); got != 20 {
			t.Fatalf("%s core: expected 20 genres, got %d", lang, got)
		}
		if got := len(Extended(lang)); got != 20 {
			t.Fatalf("%s extended: expected 20 genres, got %d", lang, got)
		}
	}
}

func TestTranslateRoundTrip(t *testing.T) {
	t.Parallel()
	for _, from := range Languages() {
		for _, to := range Languages() {
			for _, genre := range Combined(from) {
				there := Translate(genre, from, to)
				back := Translate(there, to, from)
				if back != genre {
					t.Fatalf("round trip %s->%s->%s: %q became %q (via %q)", from, to, from, genre, back, there)
				}
			}
		}
	}
}

func TestTranslatePassthrough(t *testing.T) {
	t.Parallel()
	for _, lang := range Languages() {
		for _, genre := range Combined(lang) {
			if got := Translate(genre, lang, lang); got != genre {
				t.Fatalf("same-language translate changed %q to %q", genre, got)
			}
		}
	}

	if got := Translate("not-a-real-genre", Ukrainian, English); got != "not-a-real-genre" {
		t.Fatalf("expected unknown genre to pass through, got %q", got)
	}
}

func TestTranslateUsesPositionalCorrespondence(t *testing.T) {
	t.Parallel()
	cases := []struct {
		genre    string
		from, to Lang
		want     string
	}{
		{"Бойовик", Ukrainian, English, "Action"},
		{"Action", English, Russian, "Боевик"},
		{"Тёмное фэнтези", Russian, Ukrainian, "Темне фентезі"},
		{"Coming of Age", English, Ukrainian, "Про дорослішання"},
		{"Драма", Ukrainian, Russian, "Драма"},
	}
	for _, tc := range cases {
		if got := Translate(tc.genre, tc.from, tc.to); got != tc.want {
			t.Fatalf("Translate(%q, %s, %s) = %q, want %q", tc.genre, tc.from, tc.to, got, tc.want)
		}
	}
}

func TestNormalizeDetectsRecordingLanguage(t *testing.T) {
	t.Parallel()
	if got := Normalize("Бойовик", English); got != "Action" {
		t.Fatalf("expected Action, got %q", got)
	}
	if got := Normalize("Sci-Fi", Russian); got != "Научная фантастика" {
		t.Fatalf("expected Научная фантастика, got %q", got)
	}
	if got := Normalize("anime", English); got != "anime" {
		t.Fatalf("expected free text to pass through, got %q", got)
	}
}

func TestNormalizeAllPreservesOrder(t *testing.T) {
	t.Parallel()
	got := NormalizeAll([]string{"Бойовик", "Comedy", "anime"}, English)
	want := []string{"Action", "Comedy", "anime"}
	if !slices.Equal(got, want) {
		t.Fatalf("NormalizeAll = %v, want %v", got, want)
	}
	if NormalizeAll(nil, English) != nil {
		t.Fatal("expected nil for empty input")
	}
}

func TestParseLang(t *testing.T) {
	t.Parallel()
	cases := map[string]Lang{
		"ua":    Ukrainian,
		"uk-UA": Ukrainian,
		"ru-RU": Russian,
		"en":    English,
		"en-US": English,
		" EN ":  English,
	}
	for input, want := range cases {
		got, ok := ParseLang(input)
		if !ok || got != want {
			t.Fatalf("ParseLang(%q) = %q, %v; want %q", input, got, ok, want)
		}
	}
	if _, ok := ParseLang("de-DE"); ok {
		t.Fatal("expected de-DE to be rejected")
	}
	if English.Locale() != "en-US" || Ukrainian.Locale() != "uk-UA" || Russian.Locale() != "ru-RU" {
		t.Fatal("unexpected locale mapping")
	}
}

func TestProviderIDsAcceptAnyLanguageAndDropUnmapped(t *testing.T) {
	t.Parallel()
	got := ProviderIDs(ProviderTMDB, []string{"Бойовик", "Комедия", "Cyberpunk", "made-up", "Action"})
	want := []int{28, 35}
	if !slices.Equal(got, want) {
		t.Fatalf("expected %v, got %v", want, got)
	}

	jikan := ProviderIDs(ProviderJikan, []string{"Fantasy", "Темне фентезі", "Меха / Роботы"})
	if !slices.Equal(jikan, []int{10, 18}) {
		t.Fatalf("expected collapsed jikan ids [10 18], got %v", jikan)
	}

	if ids := ProviderIDs(ProviderJikan, nil); ids != nil {
		t.Fatalf("expected nil for empty input, got %v", ids)
	}
}

func TestIsAnimeSynonym(t *testing.T) {
	t.Parallel()
	for _, name := range []string{"Anime", "АНИМЕ", "аніме", "анiме", "Manga", "японское"} {
		if !IsAnimeSynonym(name) {
			t.Fatalf("expected %q to be recognized", name)
		}
	}
	for _, name := range []string{"Animation", "Action", ""} {
		if IsAnimeSynonym(name) {
			t.Fatalf("expected %q not to be recognized", name)
		}
	}
	if !ContainsAnimeSynonym([]string{"Drama", "anime"}) {
		t.Fatal("expected list containing anime to match")
	}
}

func TestSampleIsDeterministicWithSeededSource(t *testing.T) {
	t.Parallel()
	vocab := Combined(English)

	first := Sample(vocab, 3, rand.New(rand.NewPCG(7, 11)))
	second := Sample(vocab, 3, rand.New(rand.NewPCG(7, 11)))
	if !slices.Equal(first, second) {
		t.Fatalf("expected identical samples, got %v and %v", first, second)
	}
	if len(first) != 3 {
		t.Fatalf("expected 3 genres, got %d", len(first))
	}

	seen := map[string]bool{}
	for _, g := range first {
		if seen[g] {
			t.Fatalf("duplicate genre %q in sample %v", g, first)
		}
		seen[g] = true
		if !Contains(English, g) {
			t.Fatalf("sampled genre %q not in vocabulary", g)
		}
	}
}

func TestSampleCapsAtVocabularySize(t *testing.T) {
	t.Parallel()
	got := Sample([]string{"a", "b"}, 5, rand.New(rand.NewPCG(1, 2)))
	if len(got) != 2 {
		t.Fatalf("expected 2 entries, got %v", got)
	}
	if Sample(nil, 3, nil) != nil {
		t.Fatal("expected nil for empty vocabulary")
	}
}
