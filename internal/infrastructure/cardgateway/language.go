package cardgateway

import (
	"golang.org/x/text/language"
)

// Hosted payment page language codes.
var consumerLanguages = []struct {
	tag  language.Tag
	code string
}{
	{language.Spanish, "001"},
	{language.English, "002"},
	{language.Catalan, "003"},
	{language.French, "004"},
	{language.German, "005"},
	{language.Dutch, "006"},
	{language.Italian, "007"},
	{language.Swedish, "008"},
	{language.Portuguese, "009"},
	{language.Polish, "011"},
	{language.Make("gl"), "012"},
	{language.Make("eu"), "013"},
}

var consumerLanguageMatcher = func() language.Matcher {
	tags := make([]language.Tag, len(consumerLanguages))
	for i, l := range consumerLanguages {
		tags[i] = l.tag
	}
	return language.NewMatcher(tags)
}()

// ConsumerLanguage maps a BCP 47 tag or Accept-Language value to the gateway's
// numeric language code. Unmatched or empty input yields fallback.
func ConsumerLanguage(pref, fallback string) string {
	if pref == "" {
		return fallback
	}
	tags, _, err := language.ParseAcceptLanguage(pref)
	if err != nil || len(tags) == 0 {
		return fallback
	}
	_, idx, conf := consumerLanguageMatcher.Match(tags...)
	if conf == language.No {
		return fallback
	}
	return consumerLanguages[idx].code
}
