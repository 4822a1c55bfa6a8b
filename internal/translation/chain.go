package translation

// ChainPolicy decides the provider order for a target language.
type ChainPolicy struct {
	Primary         []string
	Alternate       []string
	PreferAlternate map[string]struct{}
}

// NewChainPolicy builds a policy from provider name lists and the set of
// target languages that should try the alternate providers first.
func NewChainPolicy(primary, alternate, preferAlternate []string) ChainPolicy {
	prefer := make(map[string]struct{}, len(preferAlternate))
	for _, code := range preferAlternate {
		normalized := normalizeLangCode(code)
		if normalized == "" {
			continue
		}
		prefer[normalized] = struct{}{}
	}
	return ChainPolicy{
		Primary:         normalizeNames(primary),
		Alternate:       normalizeNames(alternate),
		PreferAlternate: prefer,
	}
}

// Select returns the ordered provider names for targetLang. Names appear once.
func (p ChainPolicy) Select(targetLang string) []string {
	first, second := p.Primary, p.Alternate
	if _, ok := p.PreferAlternate[normalizeLangCode(targetLang)]; ok {
		first, second = p.Alternate, p.Primary
	}

	out := make([]string, 0, len(first)+len(second))
	seen := make(map[string]struct{}, len(first)+len(second))
	for _, group := range [][]string{first, second} {
		for _, name := range group {
			if _, dup := seen[name]; dup {
				continue
			}
			seen[name] = struct{}{}
			out = append(out, name)
		}
	}
	return out
}

// WithExtra appends providers to the end of the primary group.
func (p ChainPolicy) WithExtra(names ...string) ChainPolicy {
	primary := append([]string(nil), p.Primary...)
	primary = append(primary, normalizeNames(names)...)
	p.Primary = primary
	return p
}

func normalizeNames(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		normalized := normalizeProviderName(name)
		if normalized == "" {
			continue
		}
		out = append(out, normalized)
	}
	return out
}
