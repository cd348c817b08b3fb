package token

var keywords = map[string]Kind{
	"namespace": KwNamespace,
	"using":     KwUsing,
	"global":    KwGlobal,
	"extern":    KwExtern,
	"alias":     KwAlias,
	"class":     KwClass,
	"struct":    KwStruct,
	"interface": KwInterface,
	"record":    KwRecord,
	"enum":      KwEnum,
	"public":    KwPublic,
	"private":   KwPrivate,
	"internal":  KwInternal,
	"protected": KwProtected,
	"static":    KwStatic,
	"async":     KwAsync,
	"abstract":  KwAbstract,
	"virtual":   KwVirtual,
	"override":  KwOverride,
	"sealed":    KwSealed,
	"partial":   KwPartial,
	"return":    KwReturn,
	"await":     KwAwait,
	"null":      KwNull,
	"void":      KwVoid,
	"throw":     KwThrow,
}

// LookupKeyword возвращает тип и bool если это ключевое слово.
// Ключевые слова регистрозависимые - только lowercase версии распознаются.
func LookupKeyword(ident string) (Kind, bool) {
	k, ok := keywords[ident]
	return k, ok
}
