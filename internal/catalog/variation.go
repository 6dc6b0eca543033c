package catalog

import "regexp"

// variationSuffix matches a trailing colour/size code ("-BLK", "_XL") or
// numeric suffix ("-001").
var variationSuffix = regexp.MustCompile(`(?i)[-_]([A-Z]{2,4}|[0-9]+)$`)

// BaseSKU strips one variation suffix. CHAIR-BLK and CHAIR-RED share the
// base CHAIR.
func BaseSKU(sku string) string {
	return variationSuffix.ReplaceAllString(sku, "")
}
