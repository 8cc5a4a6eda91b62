package normalize

import "regexp"

// aliasRule rewrites a colloquial or former place name to the spelling the
// directory actually indexes. Rules are applied in order against the raw
// input; each match contributes one extra search variant.
type aliasRule struct {
	pattern     *regexp.Regexp
	replacement string
}

// aliasRules covers the folk/official renames that show up most in scraped
// travel writing. The reverse direction matters too: older directory entries
// sometimes only index the former name.
var aliasRules = []aliasRule{
	{regexp.MustCompile(`(?i)\bbombay\b`), "Mumbai"},
	{regexp.MustCompile(`(?i)\bcalcutta\b`), "Kolkata"},
	{regexp.MustCompile(`(?i)\bmadras\b`), "Chennai"},
	{regexp.MustCompile(`(?i)\bbenares\b`), "Varanasi"},
	{regexp.MustCompile(`(?i)\bbanaras\b`), "Varanasi"},
	{regexp.MustCompile(`(?i)\bbangalore\b`), "Bengaluru"},
	{regexp.MustCompile(`(?i)\bbengaluru\b`), "Bangalore"},
	{regexp.MustCompile(`(?i)\bmysore\b`), "Mysuru"},
	{regexp.MustCompile(`(?i)\bpondicherry\b`), "Puducherry"},
	{regexp.MustCompile(`(?i)\bgurgaon\b`), "Gurugram"},
	{regexp.MustCompile(`(?i)\btrivandrum\b`), "Thiruvananthapuram"},
	{regexp.MustCompile(`(?i)\bcochin\b`), "Kochi"},
	{regexp.MustCompile(`(?i)\bcalicut\b`), "Kozhikode"},
	{regexp.MustCompile(`(?i)\bpoona\b`), "Pune"},
	{regexp.MustCompile(`(?i)\bbaroda\b`), "Vadodara"},
	{regexp.MustCompile(`(?i)\ballahabad\b`), "Prayagraj"},
	{regexp.MustCompile(`(?i)\borissa\b`), "Odisha"},
}

// ExpandAliases returns the original name plus any known alternate spellings,
// deduplicated on normalized form. Always returns at least the input, so a
// caller can range over the result without a fallback path.
func ExpandAliases(name string) []string {
	variants := []string{name}
	seen := map[string]bool{Normalize(name): true}

	for _, rule := range aliasRules {
		if !rule.pattern.MatchString(name) {
			continue
		}
		v := rule.pattern.ReplaceAllString(name, rule.replacement)
		if key := Normalize(v); !seen[key] {
			seen[key] = true
			variants = append(variants, v)
		}
	}
	return variants
}
