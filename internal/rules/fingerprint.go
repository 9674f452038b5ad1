package rules

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"sort"
	"strings"
)

// Fingerprint is a stable digest of the whole table, used in cache keys.
func (t *Table) Fingerprint() string {
	h := sha256.New()

	writeSorted(h, "builtin", t.builtins, func(b Builtin) string {
		return fmt.Sprintf("%s|%s|%s|%s|%t", b.Template, b.Nullary, b.Variadic, strings.Join(b.Imports, ","), b.Mutates)
	})
	writeSorted(h, "module", t.modules, func(s string) string { return s })
	writeSorted(h, "op", t.operators, func(s string) string { return s })
	writeSorted(h, "sigil", t.sigils, func(s SigilStrategy) string { return string(s.Mode) + "|" + s.Suffix })

	o := t.options
	fmt.Fprintf(h, "options=%t,%t,%t,%t,%t,%d\n",
		o.PreserveComments, o.ConvertPODToDocstrings, o.EmitHeader,
		o.FStringInterpolation, o.StrictFallback, o.Indent)

	return hex.EncodeToString(h.Sum(nil))
}

func writeSorted[V any](w io.Writer, section string, m map[string]V, render func(V) string) {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(w, "%s:%q=%q\n", section, k, render(m[k]))
	}
}
