package genres

import (
	"slices"
	"strings"
)

// Lang identifies one of the human-language genre vocabularies.
type Lang string

const (
	Ukrainian Lang = "ua"
	Russian   Lang = "ru"
	English   Lang = "en"
)

// Languages lists the supported vocabularies in lookup order.
func Languages() []Lang {
	return []Lang{Ukrainian, Russian, English}
}

// Locale returns the catalog locale used when querying providers.
func (l Lang) Locale() string {
	switch l {
	case Ukrainian:
		return "uk-UA"
	case Russian:
		return "ru-RU"
	default:
		return "en-US"
	}
}

// Valid reports whether l is a supported vocabulary.
func (l Lang) Valid() bool {
	_, ok := vocabularies[l]
	return ok
}

// ParseLang accepts either a vocabulary code (ua, ru, en) or a catalog
// locale (uk-UA, ru-RU, en-US) and returns the matching language.
func ParseLang(value string) (Lang, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	base, _, _ := strings.Cut(strings.ReplaceAll(normalized, "_", "-"), "-")

	switch base {
	case "ua", "uk":
		return Ukrainian, true
	case "ru":
		return Russian, true
	case "en":
		return English, true
	default:
		return "", false
	}
}

type vocabulary struct {
	core     []string
	extended []string
	combined []string
}

// Core genres are offered on the dislike step, core+extended on the like step.
// The same semantic genre occupies the same index in every language.
var vocabularies = map[Lang]vocabulary{
	Ukrainian: newVocabulary(
		[]string{
			"Бойовик",
			"Пригоди",
			"Комедія",
			"Драма",
			"Романтика",
			"Фентезі",
			"Наукова фантастика",
			"Містика / Детектив",
			"Жахи",
			"Трилер",
			"Повсякденність",
			"Спорт",
			"Надприродне",
			"Історичний",
			"Військовий",
			"Кримінал",
			"Сімейний",
			"Мюзикл",
			"Документальний",
			"Вестерн",
		},
		[]string{
			"Психологічний",
			"Супергерої",
			"Кіберпанк",
			"Постапокаліпсис",
			"Меха / Роботи",
			"Ісекай (інший світ)",
			"Вампірський",
			"Монстри",
			"Шкільний",
			"Айдоли / Шоу-бізнес",
			"Романтична комедія",
			"Зворушливий",
			"Темне фентезі",
			"Детектив",
			"Культова класика",
			"Добрий / Позитивний",
			"Мрачний / Жорсткий",
			"Реальна історія",
			"Футуристичний",
			"Про дорослішання",
		},
	),
	Russian: newVocabulary(
		[]string{
			"Боевик",
			"Приключения",
			"Комедия",
			"Драма",
			"Романтика",
			"Фэнтези",
			"Научная фантастика",
			"Мистика / Детектив",
			"Ужасы",
			"Триллер",
			"Повседневность",
			"Спорт",
			"Сверхъестественное",
			"Исторический",
			"Военный",
			"Криминал",
			"Семейный",
			"Мюзикл",
			"Документальный",
			"Вестерн",
		},
		[]string{
			"Психологический",
			"Супергерои",
			"Киберпанк",
			"Постапокалипсис",
			"Меха / Роботы",
			"Исекай (другой мир)",
			"Вампирский",
			"Монстры",
			"Школьный",
			"Айдолы / Шоу-бизнес",
			"Романтическая комедия",
			"Душераздирающий",
			"Тёмное фэнтези",
			"Детектив",
			"Культовая классика",
			"Добрый / Позитивный",
			"Мрачный / Жёсткий",
			"Реальная история",
			"Футуристический",
			"Про взросление",
		},
	),
	English: newVocabulary(
		[]string{
			"Action",
			"Adventure",
			"Comedy",
			"Drama",
			"Romance",
			"Fantasy",
			"Sci-Fi",
			"Mystery",
			"Horror",
			"Thriller",
			"Slice of Life",
			"Sports",
			"Supernatural",
			"Historical",
			"War",
			"Crime",
			"Family",
			"Musical",
			"Documentary",
			"Western",
		},
		[]string{
			"Psychological",
			"Superhero",
			"Cyberpunk",
			"Post-Apocalyptic",
			"Mecha / Robots",
			"Isekai (Another World)",
			"Vampire",
			"Monster",
			"School",
			"Idol / Showbiz",
			"Rom-Com",
			"Tearjerker",
			"Dark Fantasy",
			"Detective",
			"Cult Classic",
			"Feel Good",
			"Gritty",
			"True Story",
			"Futuristic",
			"Coming of Age",
		},
	),
}

func newVocabulary(core, extended []string) vocabulary {
	return vocabulary{
		core:     core,
		extended: extended,
		combined: slices.Concat(core, extended),
	}
}

// Core returns a copy of the core tier for lang, or nil for an unknown language.
func Core(lang Lang) []string {
	return slices.Clone(vocabularies[lang].core)
}

// Extended returns a copy of the extended tier for lang.
func Extended(lang Lang) []string {
	return slices.Clone(vocabularies[lang].extended)
}

// Combined returns a copy of core followed by extended for lang.
func Combined(lang Lang) []string {
	return slices.Clone(vocabularies[lang].combined)
}

// Contains reports whether genre is part of lang's combined vocabulary.
func Contains(lang Lang, genre string) bool {
	return indexIn(lang, genre) >= 0
}

// Known reports whether genre belongs to any supported vocabulary.
func Known(genre string) bool {
	_, ok := LanguageOf(genre)
	return ok
}

// LanguageOf returns the first vocabulary that contains genre.
func LanguageOf(genre string) (Lang, bool) {
	for _, lang := range Languages() {
		if Contains(lang, genre) {
			return lang, true
		}
	}
	return "", false
}

func indexIn(lang Lang, genre string) int {
	return slices.Index(vocabularies[lang].combined, genre)
}
