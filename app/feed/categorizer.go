package feed

import (
	"regexp"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type categoryRule struct {
	category Category
	pattern  *regexp.Regexp
}

// Order matters: the first matching rule decides the category.
var categoryRules = []categoryRule{
	{CategoryAI, regexp.MustCompile(`\bai\b|artificial intelligence|machine learning|llm|chatgpt|claude|gemini|midjourney|stable diffusion|neural|deep learning|openai|anthropic`)},
	{CategoryCoding, regexp.MustCompile(`\bcode\b|coding|programming|developer|github|javascript|python|react|angular|vue|nodejs|typescript|software engineering`)},
	{CategoryGaming, regexp.MustCompile(`\bgame\b|gaming|playstation|xbox|nintendo|switch|steam|console|fortnite|minecraft`)},
	{CategoryGadgets, regexp.MustCompile(`\bphone\b|smartphone|laptop|tablet|watch|headphone|earbud|camera|drone|smart home|device|iphone|samsung|pixel`)},
	{CategorySoftware, regexp.MustCompile(`\bapp\b|software|windows|macos|ios|android|update|browser|chrome|firefox|safari|microsoft|google|apple`)},
}

// Categorize assigns an article to the first category whose keywords
// appear in its title or content, falling back to general.
func Categorize(title, content string) Category {
	text := cases.Lower(language.Und).String(title + " " + content)

	for _, rule := range categoryRules {
		if rule.pattern.MatchString(text) {
			return rule.category
		}
	}

	return CategoryGeneral
}

func (c Category) Valid() bool {
	switch c {
	case CategoryAI, CategoryCoding, CategoryGaming, CategoryGadgets, CategorySoftware, CategoryGeneral:
		return true
	}
	return false
}
