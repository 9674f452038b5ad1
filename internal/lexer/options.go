package lexer

// Reporter — тонкий интерфейс, чтобы не тянуть diag сюда.
// Лексер **только вызывает** его с параметрами; форматирует diag внешний слой.
type Reporter interface {
	Report(kind string, pos uint32, msg string)
}

type Options struct {
	// Program enables whole-file handling: POD blocks, __END__ tails and
	// here-document bodies are recognized as trivia.
	Program  bool
	Reporter Reporter // может быть nil — тогда ошибки игнорируем (но продолжаем лексить)
}

func (lx *Lexer) report(kind string, pos uint32, msg string) {
	if lx.opts.Reporter != nil {
		lx.opts.Reporter.Report(kind, pos, msg)
	}
}
