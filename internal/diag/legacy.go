package diag

// Null-comparison warnings used to be reported under the single id CMP4472.
// They were later split into CMP4473/CMP4474; an override configured for CMP4472
// still governs them so existing suppressions keep working.
var legacyUmbrella = map[Code]Code{
	CmpNullComparisonFalse: CmpNullComparison,
	CmpNullComparisonTrue:  CmpNullComparison,
}

func legacyUmbrellaOf(c Code) (Code, bool) {
	u, ok := legacyUmbrella[c]
	return u, ok
}
