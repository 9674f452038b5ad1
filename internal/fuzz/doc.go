// Package fuzztests houses Go fuzz harnesses that exercise the conversion
// pipeline (source -> lexer -> matcher -> engine). Its goal is to smoke test
// robustness and guard against panics, broken tiling and unstable
// normalization on arbitrary inputs.
//
// Назначение: запускать fuzz-обработчики, которые загружают байты в FileSet и
// прогоняют их через лексер, сопоставитель и движок.
//
// Не делает: генерацию корпусов, запись файлов, выполнение CLI.
//
// Зависимости: internal/source, internal/lexer, internal/matcher,
// internal/engine, internal/normalize, internal/testkit.
package fuzztests
