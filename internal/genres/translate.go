package genres

// Translate converts genre from one vocabulary into another using positional
// correspondence across the combined lists. Genres that are already part of
// the target vocabulary, or that no vocabulary knows about, come back unchanged.
func Translate(genre string, from, to Lang) string {
	if from == to || Contains(to, genre) {
		return genre
	}

	idx := indexIn(from, genre)
	if idx < 0 {
		return genre
	}

	target := vocabularies[to].combined
	if idx >= len(target) {
		return genre
	}
	return target[idx]
}

// Normalize translates genre into lang without knowing which language it was
// recorded in. Participants may have picked their genres before the session
// language changed, so every genre is resolved on its own.
func Normalize(genre string, lang Lang) string {
	if Contains(lang, genre) {
		return genre
	}

	from, ok := LanguageOf(genre)
	if !ok {
		return genre
	}
	return Translate(genre, from, lang)
}

// NormalizeAll applies Normalize to every entry, preserving order.
func NormalizeAll(names []string, lang Lang) []string {
	if len(names) == 0 {
		return nil
	}

	out := make([]string, 0, len(names))
	for _, name := range names {
		out = append(out, Normalize(name, lang))
	}
	return out
}

// canonical returns the English name used as the key of the provider tables.
func canonical(genre string) string {
	return Normalize(genre, English)
}
