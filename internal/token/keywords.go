package token

var keywords = map[string]Kind{
	"capsule": KwCapsule,
	"link":    KwLink,
	"true":    KwTrue,
	"false":   KwFalse,
}

// LookupKeyword возвращает kind ключевого слова. Регистр важен.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
