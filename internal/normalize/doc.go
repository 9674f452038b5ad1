// Package normalize repairs a translated draft before it is rendered.
//
// Назначение: фиксированный порядок шаблонов-ремонтов, каждый применяется до
// неподвижной точки и идемпотентен; результат - копия буфера и список ремонтов.
// Порядок: malformed-conditional, bad-unless-negation, broken-interpolation,
// empty-block, missing-shim, missing-import, indentation.
// Не делает: перевода Perl; работает только с текстом Python.
// Зависимости: internal/draft, internal/diag.
package normalize
